package middleware

import (
	"errors"   // Error matching
	"net/http" // HTTP status codes
	"strings"  // String manipulation

	"github.com/techadnank9/alien-miniapp-uber/internal/alien" // Token verification
	"github.com/techadnank9/alien-miniapp-uber/internal/utils" // Sentinel errors

	"github.com/gin-gonic/gin" // Gin web framework
)

// SubjectKey is the context key carrying the verified alien subject id.
const SubjectKey = "alienUserID"

// BearerAuthMiddleware extracts the Bearer token, verifies it through the
// identity verifier and stores the subject id in the request context.
func BearerAuthMiddleware(verifier alien.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization") // Get Authorization header
		// Check if the Authorization header is present and properly formatted
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			// If not, abort with unauthorized status
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing Bearer token"})
			return
		}
		token := strings.TrimPrefix(authHeader, "Bearer ") // Extract the token string
		subject, err := verifier.Verify(c.Request.Context(), token)
		if err != nil {
			// Upstream failures are not the caller's fault; everything else is a bad credential
			switch {
			case errors.Is(err, utils.ErrUpstreamTimeout):
				c.AbortWithStatusJSON(http.StatusGatewayTimeout, gin.H{"error": "Auth verification timed out"})
			case errors.Is(err, utils.ErrUpstreamUnavailable):
				c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": "Auth service unavailable"})
			default:
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			}
			return
		}
		c.Set(SubjectKey, subject) // Store subject id in context
		c.Next()                   // Proceed to the next handler
	}
}
