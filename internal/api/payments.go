package api

import (
	"io"       // Raw body capture
	"net/http" // HTTP status codes

	"github.com/techadnank9/alien-miniapp-uber/internal/middleware" // Subject context key
	"github.com/techadnank9/alien-miniapp-uber/internal/payments"   // Settlement service

	"github.com/gin-gonic/gin"      // Gin web framework
	"github.com/shopspring/decimal" // Exact decimal amounts
)

// SignatureHeader carries the payment network's detached signature.
const SignatureHeader = "X-Alien-Signature"

// InvoiceRequest mints a new invoice
type InvoiceRequest struct {
	Amount string  `json:"amount" binding:"required"` // Amount in token units, as a string
	RideID *string `json:"rideId"`                    // Optional ride reference
}

// CreateInvoiceHandler mints an invoice for the verified caller.
// Runs behind BearerAuthMiddleware.
func CreateInvoiceHandler(settlement *payments.Settlement) gin.HandlerFunc {
	return func(c *gin.Context) {
		subject := c.GetString(middleware.SubjectKey) // Verified subject id
		if subject == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req InvoiceRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		amount, err := decimal.NewFromString(req.Amount) // Amounts travel as strings
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid amount"})
			return
		}
		inv, err := settlement.CreateInvoice(c.Request.Context(), subject, amount, req.RideID)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, inv) // {invoice, recipient, amount}
	}
}

// WebhookHandler reconciles a signed notification from the payment network.
// The body is read raw and handed to settlement untouched; any parsing happens
// only after the signature checks out.
func WebhookHandler(settlement *payments.Settlement) gin.HandlerFunc {
	return func(c *gin.Context) {
		rawBody, err := io.ReadAll(c.Request.Body) // Exact signed bytes
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unreadable body"})
			return
		}
		if err := settlement.HandleWebhook(c.Request.Context(), c.GetHeader(SignatureHeader), rawBody); err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true}) // Ack to the network
	}
}
