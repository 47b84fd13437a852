package api

import (
	"net/http" // HTTP status codes
	"time"     // Timestamp

	"github.com/gin-gonic/gin" // Gin web framework
)

// HealthHandler reports process liveness
func HealthHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "ts": time.Now().UTC().Format(time.RFC3339)})
	}
}
