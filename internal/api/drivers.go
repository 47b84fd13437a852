package api

import (
	"context"  // Context for Redis operations
	"net/http" // HTTP status codes
	"strconv"  // Query coordinate parsing
	"time"     // Cache TTL

	"github.com/techadnank9/alien-miniapp-uber/internal/drivers" // Driver directory
	"github.com/techadnank9/alien-miniapp-uber/internal/utils"   // Cache helpers

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
)

// CreateDriverRequest registers or updates a driver profile
type CreateDriverRequest struct {
	UserID  string `json:"userId" binding:"required"`  // Owning user
	Vehicle string `json:"vehicle" binding:"required"` // Vehicle descriptor
	IsAi    *bool  `json:"isAi"`                       // Optional AI flag
}

// DriverLocationRequest carries a position update
type DriverLocationRequest struct {
	Lat *float64 `json:"lat" binding:"required"` // Latitude
	Lng *float64 `json:"lng" binding:"required"` // Longitude
}

// CreateDriverHandler upserts a driver profile keyed by its owning user
func CreateDriverHandler(dir *drivers.Directory) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateDriverRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		isAi := req.IsAi != nil && *req.IsAi // Defaults to false
		driver, err := dir.Register(c.Request.Context(), req.UserID, req.Vehicle, isAi)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"driver": driver}) // Return driver record
	}
}

// NearbyDriversHandler lists candidate drivers around a coordinate, with a
// short redis cache in front of the lookup
func NearbyDriversHandler(dir *drivers.Directory, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		latF, err := strconv.ParseFloat(c.Query("lat"), 64) // Parse latitude
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid coordinates"})
			return
		}
		lngF, err := strconv.ParseFloat(c.Query("lng"), 64) // Parse longitude
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid coordinates"})
			return
		}
		cacheKey := utils.NearbyCacheKey(latF, lngF) // Key from parsed coordinates only
		ctx := context.Background()                  // Context for Redis operations
		var cached []drivers.NearbyDriver
		if rdb != nil {
			if found, err := utils.GetCache(ctx, rdb, cacheKey, &cached); err == nil && found {
				c.JSON(http.StatusOK, gin.H{"drivers": cached, "cached": true})
				return
			}
		}
		list, err := dir.Nearby(c.Request.Context(), latF, lngF)
		if err != nil {
			fail(c, err)
			return
		}
		if rdb != nil {
			_ = utils.SetCache(ctx, rdb, cacheKey, list, 10*time.Second) // Positions go stale fast
		}
		c.JSON(http.StatusOK, gin.H{"drivers": list, "cached": false})
	}
}

// UpdateDriverLocationHandler stores a driver's position
func UpdateDriverLocationHandler(dir *drivers.Directory) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req DriverLocationRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		driver, err := dir.UpdateLocation(c.Request.Context(), c.Param("id"), *req.Lat, *req.Lng)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"driver": driver}) // Return updated driver
	}
}
