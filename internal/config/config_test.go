package config

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techadnank9/alien-miniapp-uber/internal/utils"
)

func testKey(t *testing.T) ed25519.PublicKey {
	t.Helper()
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	return pub
}

func TestValidateRequiresPaymentSecrets(t *testing.T) {
	pub := testKey(t)

	cfg := &Config{AuthJWTSecret: "s"}
	assert.True(t, errors.Is(cfg.Validate(), utils.ErrConfiguration)) // No recipient

	cfg.RecipientAddress = "alien1abc"
	assert.True(t, errors.Is(cfg.Validate(), utils.ErrConfiguration)) // No webhook key

	cfg.WebhookPublicKey = base64.StdEncoding.EncodeToString(pub)
	assert.NoError(t, cfg.Validate())

	cfg.AuthJWTSecret = ""
	assert.True(t, errors.Is(cfg.Validate(), utils.ErrConfiguration)) // No verifier at all

	cfg.AuthVerifyURL = "http://auth.example/verify"
	assert.NoError(t, cfg.Validate())
}

func TestWebhookKeyDecoding(t *testing.T) {
	pub := testKey(t)

	cfg := &Config{WebhookPublicKey: base64.StdEncoding.EncodeToString(pub)}
	key, err := cfg.WebhookKey()
	require.NoError(t, err)
	assert.Equal(t, pub, key)

	cfg = &Config{WebhookPublicKey: hex.EncodeToString(pub)}
	key, err = cfg.WebhookKey()
	require.NoError(t, err)
	assert.Equal(t, pub, key)

	cfg = &Config{WebhookPublicKey: "tooshort"}
	_, err = cfg.WebhookKey()
	assert.True(t, errors.Is(err, utils.ErrConfiguration))

	cfg = &Config{}
	_, err = cfg.WebhookKey()
	assert.True(t, errors.Is(err, utils.ErrConfiguration))
}
