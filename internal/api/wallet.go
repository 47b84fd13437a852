package api

import (
	"context"  // Context for Redis operations
	"net/http" // HTTP status codes
	"time"     // Cache TTL

	"github.com/techadnank9/alien-miniapp-uber/internal/domain" // Importing domain models
	"github.com/techadnank9/alien-miniapp-uber/internal/utils"  // Cache helpers
	"github.com/techadnank9/alien-miniapp-uber/internal/wallet" // Wallet ledger

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
)

// TopupRequest credits a wallet
type TopupRequest struct {
	UserID string  `json:"userId" binding:"required"`      // Wallet owner
	Amount float64 `json:"amount" binding:"required,gt=0"` // Credit amount
}

// PayRequest debits a wallet
type PayRequest struct {
	UserID string  `json:"userId" binding:"required"`      // Wallet owner
	Amount float64 `json:"amount" binding:"required,gt=0"` // Debit amount
	Reason string  `json:"reason" binding:"required"`      // Transaction reason
	RideID *string `json:"rideId"`                         // Optional ride reference
}

// GetWalletHandler returns the wallet with its transaction history, served
// from a short redis cache when possible
func GetWalletHandler(ledger *wallet.Ledger, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Param("userId")               // Wallet owner from path
		cacheKey := utils.WalletCacheKey(userID)  // Cache key for wallet
		ctx := context.Background()               // Context for Redis operations
		var cached domain.Wallet                  // Wallet struct to hold cached data
		if rdb != nil {
			if found, err := utils.GetCache(ctx, rdb, cacheKey, &cached); err == nil && found {
				c.JSON(http.StatusOK, gin.H{"wallet": cached, "cached": true})
				return
			}
		}
		w, err := ledger.Get(c.Request.Context(), userID)
		if err != nil {
			fail(c, err)
			return
		}
		if rdb != nil {
			_ = utils.SetCache(ctx, rdb, cacheKey, w, 60*time.Second) // Cache the wallet for 60 seconds
		}
		c.JSON(http.StatusOK, gin.H{"wallet": w, "cached": false})
	}
}

// TopupHandler credits a wallet and appends the matching transaction
func TopupHandler(ledger *wallet.Ledger, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req TopupRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		w, err := ledger.TopUp(c.Request.Context(), req.UserID, req.Amount)
		if err != nil {
			fail(c, err)
			return
		}
		invalidateWallet(rdb, req.UserID)          // Stale cache must not outlive the write
		c.JSON(http.StatusOK, gin.H{"wallet": w}) // Return updated wallet
	}
}

// PayHandler debits a wallet and appends the matching transaction
func PayHandler(ledger *wallet.Ledger, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req PayRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		w, err := ledger.Debit(c.Request.Context(), req.UserID, req.Amount, req.Reason, req.RideID)
		if err != nil {
			fail(c, err)
			return
		}
		invalidateWallet(rdb, req.UserID)          // Stale cache must not outlive the write
		c.JSON(http.StatusOK, gin.H{"wallet": w}) // Return updated wallet
	}
}

// invalidateWallet drops the cached wallet after a ledger mutation
func invalidateWallet(rdb *redis.Client, userID string) {
	if rdb == nil {
		return
	}
	_ = utils.DeleteCache(context.Background(), rdb, utils.WalletCacheKey(userID))
}
