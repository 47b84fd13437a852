package main

import (
	"context" // context package is needed for Redis operations
	"log"     // log package is needed for logging

	"github.com/techadnank9/alien-miniapp-uber/internal/alien"      // Identity verifier clients
	"github.com/techadnank9/alien-miniapp-uber/internal/api"        // Custom package for API handlers
	"github.com/techadnank9/alien-miniapp-uber/internal/config"     // Custom package for configuration
	"github.com/techadnank9/alien-miniapp-uber/internal/drivers"    // Driver directory
	"github.com/techadnank9/alien-miniapp-uber/internal/middleware" // Custom package for middleware
	"github.com/techadnank9/alien-miniapp-uber/internal/payments"   // Payment settlement
	"github.com/techadnank9/alien-miniapp-uber/internal/ride"       // Ride lifecycle
	"github.com/techadnank9/alien-miniapp-uber/internal/wallet"     // Wallet ledger
	"github.com/techadnank9/alien-miniapp-uber/internal/ws"         // Realtime hub

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
	"gorm.io/driver/mysql"         // MySQL driver for GORM
	"gorm.io/gorm"                 // GORM ORM library
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Required secrets are checked once here; a missing recipient address or
	// webhook key must never surface as a per-request failure
	if err := cfg.Validate(); err != nil {
		logrus.Fatalf("invalid configuration: %v", err)
	}
	webhookKey, err := cfg.WebhookKey() // Decode the webhook verification key
	if err != nil {
		logrus.Fatalf("invalid configuration: %v", err)
	}

	// Setup Data Source Name (DSN) and connect to the database
	dsn := cfg.DBUser + ":" + cfg.DBPassword + "@tcp(" + cfg.DBHost + ":" + cfg.DBPort + ")/" + cfg.DBName + "?parseTime=true"
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}

	// Setup Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr, // Redis server address
		Password: cfg.RedisPass, // Redis password
		DB:       cfg.RedisDB,   // Redis database number
	})

	// Test Redis connection
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}

	// Identity verifier: remote endpoint when configured, local JWT otherwise
	var verifier alien.TokenVerifier
	if cfg.AuthVerifyURL != "" {
		verifier = alien.NewHTTPVerifier(cfg.AuthVerifyURL, cfg.AuthTimeout)
	} else {
		verifier = &alien.JWTVerifier{Secret: cfg.AuthJWTSecret}
	}

	// Realtime hub fans ride updates out to all connected subscribers
	hub := ws.NewHub()
	go hub.Run()

	// Domain services, constructed once and handed to the handlers
	ledger := wallet.NewLedger(db)
	settlement := payments.NewSettlement(db, cfg.RecipientAddress, webhookKey, ledger)
	rides := ride.NewService(db, hub, settlement)
	directory := drivers.NewDirectory(db, redisClient)

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup Gin
	r := gin.Default() // Gin router instance

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	// Health + realtime
	r.GET("/health", api.HealthHandler())                         // Liveness endpoint
	r.GET("/ws", func(c *gin.Context) { hub.ServeWS(c.Writer, c.Request) }) // WebSocket upgrade

	// Auth routes (protected by bearer verification)
	r.POST("/auth/alien", middleware.BearerAuthMiddleware(verifier), api.AlienAuthHandler(db))

	// Driver routes
	r.POST("/drivers", api.CreateDriverHandler(directory))                    // Register/update driver
	r.GET("/drivers/nearby", api.NearbyDriversHandler(directory, redisClient)) // Nearby candidates
	r.PATCH("/drivers/:id/location", api.UpdateDriverLocationHandler(directory)) // Position update

	// Ride routes
	r.POST("/rides", api.RequestRideHandler(rides))              // Request ride
	r.GET("/rides/open", api.OpenRidesHandler(rides))            // Open rides listing
	r.GET("/rides/:id", api.GetRideHandler(rides))               // Ride lookup
	r.PATCH("/rides/:id/accept", api.AcceptRideHandler(rides))   // Assign driver
	r.PATCH("/rides/:id/start", api.StartRideHandler(rides))     // Start trip
	r.PATCH("/rides/:id/complete", api.CompleteRideHandler(rides)) // Complete trip
	r.PATCH("/rides/:id/cancel", api.CancelRideHandler(rides))   // Cancel ride

	// Wallet routes
	r.GET("/wallet/:userId", api.GetWalletHandler(ledger, redisClient)) // Wallet + transactions
	r.POST("/wallet/topup", api.TopupHandler(ledger, redisClient))      // Credit wallet
	r.POST("/wallet/pay", api.PayHandler(ledger, redisClient))          // Debit wallet

	// Payment routes
	r.POST("/payments/invoice", middleware.BearerAuthMiddleware(verifier), api.CreateInvoiceHandler(settlement)) // Mint invoice
	r.POST("/payments/webhook", api.WebhookHandler(settlement))                                                  // Signed network callback

	log.Println("Server running on " + cfg.AppPort) // Log server start
	r.Run(":" + cfg.AppPort)                        // Start the server on port cfg.AppPort
}
