package alien

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techadnank9/alien-miniapp-uber/internal/utils"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret, subject string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestJWTVerifier(t *testing.T) {
	v := &JWTVerifier{Secret: testSecret}
	ctx := context.Background()

	sub, err := v.Verify(ctx, signToken(t, testSecret, "alien-42"))
	require.NoError(t, err)
	assert.Equal(t, "alien-42", sub)

	_, err = v.Verify(ctx, "")
	assert.True(t, errors.Is(err, utils.ErrUnauthorized))

	_, err = v.Verify(ctx, "not-a-token")
	assert.True(t, errors.Is(err, utils.ErrUnauthorized))

	// Wrong secret
	_, err = v.Verify(ctx, signToken(t, "other-secret", "alien-42"))
	assert.True(t, errors.Is(err, utils.ErrUnauthorized))

	// Valid signature but no subject
	_, err = v.Verify(ctx, signToken(t, testSecret, ""))
	assert.True(t, errors.Is(err, utils.ErrUnauthorized))
}

func TestHTTPVerifier(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"sub":"alien-99"}`))
	}))
	defer srv.Close()

	v := NewHTTPVerifier(srv.URL, time.Second)
	sub, err := v.Verify(context.Background(), "some-token")
	require.NoError(t, err)
	assert.Equal(t, "alien-99", sub)
}

func TestHTTPVerifierRejectsNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	v := NewHTTPVerifier(srv.URL, time.Second)
	_, err := v.Verify(context.Background(), "bad-token")
	assert.True(t, errors.Is(err, utils.ErrUnauthorized))
}

func TestHTTPVerifierTimeout(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block // Hold the request past the verifier's deadline
	}))
	defer srv.Close()
	defer close(block)

	v := NewHTTPVerifier(srv.URL, 50*time.Millisecond)
	start := time.Now()
	_, err := v.Verify(context.Background(), "some-token")
	assert.True(t, errors.Is(err, utils.ErrUpstreamTimeout))
	assert.Less(t, time.Since(start), time.Second) // Bounded, never hangs
}

func TestHTTPVerifierUnavailable(t *testing.T) {
	v := NewHTTPVerifier("http://127.0.0.1:1", time.Second) // Nothing listens here
	_, err := v.Verify(context.Background(), "some-token")
	assert.True(t, errors.Is(err, utils.ErrUpstreamUnavailable))
}

func TestHTTPVerifierMissingToken(t *testing.T) {
	v := NewHTTPVerifier("http://example.invalid", time.Second)
	_, err := v.Verify(context.Background(), "")
	assert.True(t, errors.Is(err, utils.ErrUnauthorized))
}
