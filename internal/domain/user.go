package domain

import (
	"github.com/google/uuid" // UUID generation for primary keys
	"gorm.io/gorm"           // GORM ORM library
)

// User roles
const (
	RoleRider  = "RIDER"  // Rider role
	RoleDriver = "DRIVER" // Driver role
)

// User Model
type User struct {
	ID          string  `gorm:"primaryKey;size:36" json:"id"`                                 // Primary key (UUID)
	AlienUserID string  `gorm:"uniqueIndex;size:128;not null" json:"alienUserId"`             // Externally issued subject id
	Name        string  `gorm:"not null" json:"name"`                                         // Display name
	Role        string  `gorm:"size:16;default:RIDER" json:"role"`                            // Role: RIDER or DRIVER
	Wallet      *Wallet `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"wallet"` // One-to-one relationship with Wallet
	Driver      *Driver `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"driver"` // Optional driver profile
}

// BeforeCreate assigns a UUID primary key
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString() // Generate UUID if not set
	}
	return nil
}
