package alien

import (
	"bytes"         // Request body buffer
	"context"       // Context for bounded calls
	"encoding/json" // JSON encoding/decoding
	"errors"        // Error matching
	"fmt"           // Error formatting
	"net/http"      // HTTP client
	"time"          // Timeout durations

	"github.com/golang-jwt/jwt/v5" // JWT library

	"github.com/techadnank9/alien-miniapp-uber/internal/utils" // Sentinel errors
)

// TokenVerifier resolves a bearer credential to a stable subject id.
// The Alien network's verification internals are a black box behind this.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (string, error)
}

// HTTPVerifier verifies tokens against the remote Alien auth endpoint.
type HTTPVerifier struct {
	URL     string        // Verify endpoint
	Timeout time.Duration // Bound on each call
	Client  *http.Client  // HTTP client (zero value usable)
}

// NewHTTPVerifier creates a verifier for the given endpoint with a bounded timeout.
func NewHTTPVerifier(url string, timeout time.Duration) *HTTPVerifier {
	return &HTTPVerifier{URL: url, Timeout: timeout, Client: &http.Client{}}
}

// verifyRequest is the wire payload sent to the verify endpoint.
type verifyRequest struct {
	Token string `json:"token"` // Bearer token under verification
}

// verifyResponse is the wire payload returned by the verify endpoint.
type verifyResponse struct {
	Sub string `json:"sub"` // Stable subject id
}

// Verify posts the token to the verify endpoint and returns the subject id.
// Timeouts surface as ErrUpstreamTimeout; connection failures as ErrUpstreamUnavailable.
func (v *HTTPVerifier) Verify(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", fmt.Errorf("missing bearer token: %w", utils.ErrUnauthorized)
	}
	ctx, cancel := context.WithTimeout(ctx, v.Timeout) // Bound the call
	defer cancel()
	body, err := json.Marshal(verifyRequest{Token: token})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.URL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := v.Client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("auth verify: %w", utils.ErrUpstreamTimeout)
		}
		return "", fmt.Errorf("auth verify: %w", utils.ErrUpstreamUnavailable)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("auth verify status %d: %w", resp.StatusCode, utils.ErrUnauthorized)
	}
	var out verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("auth verify decode: %w", utils.ErrUpstreamUnavailable)
	}
	if out.Sub == "" {
		return "", fmt.Errorf("auth verify empty subject: %w", utils.ErrUnauthorized)
	}
	return out.Sub, nil
}

// JWTVerifier verifies tokens locally with a shared HS256 secret.
// Used in development when no remote verify endpoint is configured.
type JWTVerifier struct {
	Secret string // Shared secret
}

// Verify parses and validates the token, returning its subject claim.
func (v *JWTVerifier) Verify(_ context.Context, token string) (string, error) {
	if token == "" {
		return "", fmt.Errorf("missing bearer token: %w", utils.ErrUnauthorized)
	}
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		return []byte(v.Secret), nil // Return the secret key for validation
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !parsed.Valid {
		return "", fmt.Errorf("invalid token: %w", utils.ErrUnauthorized)
	}
	sub, err := parsed.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", fmt.Errorf("token without subject: %w", utils.ErrUnauthorized)
	}
	return sub, nil
}
