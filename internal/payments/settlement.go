package payments

import (
	"context"          // Request-scoped cancellation
	"crypto/ed25519"   // Webhook signature verification
	"encoding/base64"  // Signature decoding
	"encoding/hex"     // Signature decoding fallback
	"encoding/json"    // Payload parsing (only after verification)
	"errors"           // Error matching
	"fmt"              // Error formatting

	"github.com/techadnank9/alien-miniapp-uber/internal/domain" // Importing domain models
	"github.com/techadnank9/alien-miniapp-uber/internal/utils"  // Sentinel errors
	"github.com/techadnank9/alien-miniapp-uber/internal/wallet" // Wallet ledger for reconciliation

	"github.com/google/uuid"        // Unguessable invoice ids
	"github.com/shopspring/decimal" // Exact decimal amounts
	"github.com/sirupsen/logrus"    // Logging library
	"gorm.io/gorm"                  // GORM ORM library
)

// centsPerToken converts ride fares (cents) into ALIEN token units.
var centsPerToken = decimal.NewFromInt(100)

// Settlement mints externally-verifiable invoices and reconciles the signed
// webhook notifications the payment network sends back.
type Settlement struct {
	db        *gorm.DB          // Database handle
	recipient string            // Process-wide recipient address
	publicKey ed25519.PublicKey // Webhook verification key
	ledger    *wallet.Ledger    // Debited when a ride invoice is paid (optional)
}

// NewSettlement creates a Settlement. ledger may be nil to skip wallet reconciliation.
func NewSettlement(db *gorm.DB, recipient string, publicKey ed25519.PublicKey, ledger *wallet.Ledger) *Settlement {
	return &Settlement{db: db, recipient: recipient, publicKey: publicKey, ledger: ledger}
}

// Invoice is the response to an invoice request.
type Invoice struct {
	Invoice   string          `json:"invoice"`   // Unguessable invoice id
	Recipient string          `json:"recipient"` // Configured recipient address
	Amount    decimal.Decimal `json:"amount"`    // Requested amount
}

// NewInvoiceID mints a globally unique, unguessable invoice identifier.
// uuid v4 draws from crypto/rand, so the id cannot be enumerated.
func NewInvoiceID() string {
	return "inv_" + uuid.NewString()
}

// CreateInvoice persists a CREATED PaymentIntent for the verified subject and
// returns the invoice handed to the payment network. The subject's User row
// (and its wallet) is created on first sight; existing rows are left untouched.
func (s *Settlement) CreateInvoice(ctx context.Context, subjectID string, amount decimal.Decimal, rideID *string) (*Invoice, error) {
	if subjectID == "" {
		return nil, fmt.Errorf("missing subject: %w", utils.ErrUnauthorized)
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("invoice amount must be positive: %w", utils.ErrValidation)
	}
	user, err := s.ensureUser(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	return s.mint(ctx, user.ID, amount, rideID)
}

// CreateForRide mints an invoice for a completed ride's fare, at most once per
// ride. A second call for the same ride fails with ErrInvoiceConflict.
func (s *Settlement) CreateForRide(ctx context.Context, ride *domain.Ride) (err error) {
	if ride.FareCents <= 0 {
		return fmt.Errorf("ride %s has no fare: %w", ride.ID, utils.ErrValidation)
	}
	var existing domain.PaymentIntent
	lookupErr := s.db.WithContext(ctx).Where("ride_id = ?", ride.ID).First(&existing).Error
	if lookupErr == nil {
		return fmt.Errorf("ride %s already invoiced as %s: %w", ride.ID, existing.Invoice, utils.ErrInvoiceConflict)
	}
	if !errors.Is(lookupErr, gorm.ErrRecordNotFound) {
		return lookupErr
	}
	amount := decimal.NewFromInt(ride.FareCents).Div(centsPerToken)
	rideID := ride.ID
	_, err = s.mint(ctx, ride.RiderID, amount, &rideID)
	return err
}

// mint persists the intent and returns the invoice descriptor.
func (s *Settlement) mint(ctx context.Context, userID string, amount decimal.Decimal, rideID *string) (*Invoice, error) {
	intent := domain.PaymentIntent{
		UserID:    userID,                      // Owning user
		RideID:    rideID,                      // Optional ride reference
		Amount:    amount,                      // Requested amount
		Token:     "ALIEN",                     // Token descriptor
		Network:   "alien",                     // Network descriptor
		Recipient: s.recipient,                 // Never taken from the request
		Invoice:   NewInvoiceID(),              // Unguessable invoice id
		Status:    domain.PaymentStatusCreated, // Awaiting confirmation
	}
	if err := s.db.WithContext(ctx).Create(&intent).Error; err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"user_id": userID,                // Owning user
		"invoice": intent.Invoice,        // Minted invoice
		"amount":  amount.String(),       // Requested amount
	}).Info("Invoice created")
	return &Invoice{Invoice: intent.Invoice, Recipient: intent.Recipient, Amount: intent.Amount}, nil
}

// ensureUser looks a user up by alien subject id and creates it (with an empty
// wallet) when absent. Existing users are not modified here.
func (s *Settlement) ensureUser(ctx context.Context, subjectID string) (*domain.User, error) {
	var user domain.User
	err := s.db.WithContext(ctx).Where("alien_user_id = ?", subjectID).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	user = domain.User{
		AlienUserID: subjectID,        // External subject id
		Name:        "Rider",          // Default display name
		Role:        domain.RoleRider, // Default role
		Wallet:      &domain.Wallet{}, // Cascade-created empty wallet
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// webhookPayload is the structured body of a webhook notification.
type webhookPayload struct {
	Invoice string `json:"invoice"` // Invoice id under reconciliation
	Status  string `json:"status"`  // New status; empty defaults to PAID
}

// decodeSignature returns the plausible decodings of the signature header.
// Base64 is tried first, then hex; a hex string is frequently also valid
// base64, so both candidates are kept and verification decides.
func decodeSignature(sig string) [][]byte {
	var candidates [][]byte
	if raw, err := base64.StdEncoding.DecodeString(sig); err == nil && len(raw) == ed25519.SignatureSize {
		candidates = append(candidates, raw)
	}
	if raw, err := hex.DecodeString(sig); err == nil && len(raw) == ed25519.SignatureSize {
		candidates = append(candidates, raw)
	}
	return candidates
}

// HandleWebhook verifies the signature against the untouched raw request bytes
// and reconciles the matching PaymentIntent exactly once. PAID and FAILED are
// terminal, so replays and status cycles alike are no-ops, not errors.
func (s *Settlement) HandleWebhook(ctx context.Context, signature string, rawBody []byte) error {
	if signature == "" {
		return fmt.Errorf("missing signature header: %w", utils.ErrUnauthorized)
	}
	if len(s.publicKey) != ed25519.PublicKeySize {
		return fmt.Errorf("webhook public key: %w", utils.ErrConfiguration)
	}
	// Verification runs over the exact bytes the network signed; the body is
	// parsed only afterwards, since re-serialized JSON is not byte-identical.
	verified := false
	for _, sig := range decodeSignature(signature) {
		if ed25519.Verify(s.publicKey, rawBody, sig) {
			verified = true
			break
		}
	}
	if !verified {
		return fmt.Errorf("signature mismatch: %w", utils.ErrUnauthorized)
	}
	var payload webhookPayload
	if err := json.Unmarshal(rawBody, &payload); err != nil {
		return fmt.Errorf("webhook body: %w", utils.ErrValidation)
	}
	if payload.Invoice == "" {
		return fmt.Errorf("webhook without invoice: %w", utils.ErrValidation)
	}
	status := payload.Status
	if status == "" {
		status = domain.PaymentStatusPaid // Absent status means the invoice was paid
	}
	// Conditional update keyed by invoice id: duplicate deliveries match zero
	// rows, and PAID/FAILED are terminal, so a signed sequence that cycles back
	// to PAID cannot re-apply the status and reach the wallet twice
	res := s.db.WithContext(ctx).Model(&domain.PaymentIntent{}).
		Where("invoice = ? AND status NOT IN ? AND status <> ?",
			payload.Invoice, []string{domain.PaymentStatusPaid, domain.PaymentStatusFailed}, status).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := s.db.WithContext(ctx).Model(&domain.PaymentIntent{}).
			Where("invoice = ?", payload.Invoice).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return fmt.Errorf("invoice %s: %w", payload.Invoice, utils.ErrNotFound)
		}
		// Replayed delivery, or the intent already settled terminally
		logrus.WithField("invoice", payload.Invoice).Info("Webhook ignored, invoice already reconciled")
		return nil
	}
	logrus.WithFields(logrus.Fields{
		"invoice": payload.Invoice, // Reconciled invoice
		"status":  status,          // Applied status
	}).Info("Webhook reconciled")
	if status == domain.PaymentStatusPaid {
		s.settleWallet(ctx, payload.Invoice)
	}
	return nil
}

// settleWallet debits the rider's wallet once for a freshly paid ride invoice.
// The debit rides on the conditional status update above, so a replayed webhook
// can never reach here twice for the same invoice.
func (s *Settlement) settleWallet(ctx context.Context, invoice string) {
	if s.ledger == nil {
		return
	}
	var intent domain.PaymentIntent
	if err := s.db.WithContext(ctx).Where("invoice = ?", invoice).First(&intent).Error; err != nil {
		logrus.WithField("invoice", invoice).Error("Paid intent lookup failed")
		return
	}
	if intent.RideID == nil {
		return // Standalone topup invoice, nothing to reconcile
	}
	if _, err := s.ledger.Debit(ctx, intent.UserID, intent.Amount.InexactFloat64(), "Ride payment", intent.RideID); err != nil {
		// The payment network was already acked; the ledger gap is surfaced for ops
		logrus.WithFields(logrus.Fields{
			"invoice": invoice,       // Paid invoice
			"user_id": intent.UserID, // Rider
			"error":   err.Error(),   // Debit failure
		}).Error("Wallet settlement failed")
	}
}
