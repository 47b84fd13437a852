package domain

import (
	"github.com/google/uuid" // UUID generation for primary keys
	"gorm.io/gorm"           // GORM ORM library
)

// Driver Model
type Driver struct {
	ID       string  `gorm:"primaryKey;size:36" json:"id"`               // Primary key (UUID)
	UserID   string  `gorm:"uniqueIndex;size:36;not null" json:"userId"` // Foreign key to User (one driver profile per user)
	Vehicle  string  `gorm:"not null" json:"vehicle"`                    // Vehicle descriptor
	IsAi     bool    `gorm:"default:false" json:"isAi"`                  // AI-controlled driver flag
	IsActive bool    `gorm:"default:true" json:"isActive"`               // Active flag (inactive drivers are hidden from nearby)
	Lat      float64 `json:"lat"`                                       // Last known latitude
	Lng      float64 `json:"lng"`                                       // Last known longitude
}

// BeforeCreate assigns a UUID primary key
func (d *Driver) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString() // Generate UUID if not set
	}
	return nil
}
