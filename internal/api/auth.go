package api

import (
	"errors"   // Error matching
	"net/http" // HTTP status codes

	"github.com/techadnank9/alien-miniapp-uber/internal/domain"     // Importing domain models
	"github.com/techadnank9/alien-miniapp-uber/internal/middleware" // Subject context key

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// AuthRequest carries the optional role selection
type AuthRequest struct {
	Role string `json:"role" binding:"omitempty,oneof=RIDER DRIVER"` // Optional role
}

// AlienAuthHandler upserts the user for the verified subject id and returns the
// full record. Runs behind BearerAuthMiddleware, which puts the subject in context.
//
// Merge semantics on re-auth: name is reset to the default and role is set to
// the requested role (RIDER when omitted); wallet and driver rows are untouched.
func AlienAuthHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		subject := c.GetString(middleware.SubjectKey) // Verified subject id
		if subject == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req AuthRequest // Bind JSON request to struct (body may be empty)
		if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		role := req.Role
		if role == "" {
			role = domain.RoleRider // Default role
		}
		var user domain.User // Lookup by the external natural key
		err := db.Where("alien_user_id = ?", subject).First(&user).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Create branch: user plus cascade-created empty wallet
			user = domain.User{
				AlienUserID: subject,          // External subject id
				Name:        "Rider",          // Default display name
				Role:        role,             // Chosen role
				Wallet:      &domain.Wallet{}, // Wallet created atomically with the user
			}
			if err := db.Create(&user).Error; err != nil {
				logrus.WithFields(logrus.Fields{
					"alien_user_id": subject,     // Subject id
					"error":         err.Error(), // Creation failure
				}).Error("User create failed")
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
				return
			}
		} else if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load user"})
			return
		} else {
			// Update branch: refresh name and role only
			if err := db.Model(&user).Updates(map[string]any{"name": "Rider", "role": role}).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
				return
			}
		}
		// Reload with wallet and driver attached
		if err := db.Preload("Wallet").Preload("Driver").Where("id = ?", user.ID).First(&user).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load user"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": user}) // Return full user record
	}
}
