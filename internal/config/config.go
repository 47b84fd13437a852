package config

import (
	"crypto/ed25519"    // Webhook signature key type
	"encoding/base64"   // Public key decoding
	"encoding/hex"      // Public key decoding fallback
	"fmt"               // Error formatting
	"os"                // For environment variables
	"strconv"           // For string to int conversion
	"time"              // Timeout durations

	"github.com/joho/godotenv" // For loading .env files

	"github.com/techadnank9/alien-miniapp-uber/internal/utils" // Sentinel errors
)

// Config holds the application configuration
type Config struct {
	AppPort          string        // Application port
	DBUser           string        // Database user
	DBPassword       string        // Database password
	DBHost           string        // Database host
	DBPort           string        // Database port
	DBName           string        // Database name
	RedisAddr        string        // Redis server address
	RedisPass        string        // Redis password
	RedisDB          int           // Redis database number
	AuthVerifyURL    string        // Alien auth verify endpoint (empty = local JWT verifier)
	AuthJWTSecret    string        // Shared secret for the local JWT verifier
	AuthTimeout      time.Duration // Bound on identity verifier calls
	RecipientAddress string        // ALIEN recipient address for invoices
	WebhookPublicKey string        // Raw webhook public key (base64 or hex)
	IsProd           bool          // Is production environment
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	timeout := 5 * time.Second // Default verifier timeout
	if v, err := strconv.Atoi(os.Getenv("AUTH_TIMEOUT_SECONDS")); err == nil && v > 0 {
		timeout = time.Duration(v) * time.Second // Override if valid
	}
	return &Config{
		AppPort:          os.Getenv("APP_PORT"),                // Application port
		DBUser:           os.Getenv("DB_USER"),                 // Database user
		DBPassword:       os.Getenv("DB_PASSWORD"),             // Database password
		DBHost:           os.Getenv("DB_HOST"),                 // Database host
		DBPort:           os.Getenv("DB_PORT"),                 // Database port
		DBName:           os.Getenv("DB_NAME"),                 // Database name
		RedisAddr:        os.Getenv("REDIS_ADDR"),              // Redis server address
		RedisPass:        os.Getenv("REDIS_PASS"),              // Redis password
		RedisDB:          redisDB,                              // Redis database number
		AuthVerifyURL:    os.Getenv("ALIEN_AUTH_VERIFY_URL"),   // Remote verify endpoint
		AuthJWTSecret:    os.Getenv("ALIEN_AUTH_JWT_SECRET"),   // Local verifier secret
		AuthTimeout:      timeout,                              // Verifier timeout
		RecipientAddress: os.Getenv("ALIEN_RECIPIENT_ADDRESS"), // Invoice recipient address
		WebhookPublicKey: os.Getenv("WEBHOOK_PUBLIC_KEY"),      // Webhook verification key
		IsProd:           os.Getenv("IS_PROD") == "true",       // Is production environment
	}
}

// Validate checks that process-wide secrets required by the payment flow are present.
// Missing configuration is fatal at startup, never surfaced per-request.
func (c *Config) Validate() error {
	if c.RecipientAddress == "" {
		return fmt.Errorf("ALIEN_RECIPIENT_ADDRESS: %w", utils.ErrConfiguration)
	}
	if c.WebhookPublicKey == "" {
		return fmt.Errorf("WEBHOOK_PUBLIC_KEY: %w", utils.ErrConfiguration)
	}
	if _, err := c.WebhookKey(); err != nil {
		return err
	}
	if c.AuthVerifyURL == "" && c.AuthJWTSecret == "" {
		return fmt.Errorf("ALIEN_AUTH_VERIFY_URL or ALIEN_AUTH_JWT_SECRET: %w", utils.ErrConfiguration)
	}
	return nil
}

// WebhookKey decodes the configured webhook public key. Base64 is tried first,
// hex as a fallback, mirroring how the network encodes signatures.
func (c *Config) WebhookKey() (ed25519.PublicKey, error) {
	if c.WebhookPublicKey == "" {
		return nil, fmt.Errorf("WEBHOOK_PUBLIC_KEY: %w", utils.ErrConfiguration)
	}
	// A hex key usually also decodes as base64, so a decoding only counts
	// when it yields a key of the right size
	if raw, err := base64.StdEncoding.DecodeString(c.WebhookPublicKey); err == nil && len(raw) == ed25519.PublicKeySize {
		return ed25519.PublicKey(raw), nil
	}
	if raw, err := hex.DecodeString(c.WebhookPublicKey); err == nil && len(raw) == ed25519.PublicKeySize {
		return ed25519.PublicKey(raw), nil
	}
	return nil, fmt.Errorf("WEBHOOK_PUBLIC_KEY undecodable: %w", utils.ErrConfiguration)
}
