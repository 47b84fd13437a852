package domain

import (
	"github.com/google/uuid" // UUID generation for primary keys
	"gorm.io/gorm"           // GORM ORM library
)

// RideStatus represents the current status of a ride.
type RideStatus string

// Ride lifecycle statuses
const (
	RideStatusMatching  RideStatus = "MATCHING"  // Waiting for a driver
	RideStatusAssigned  RideStatus = "ASSIGNED"  // Driver accepted
	RideStatusStarted   RideStatus = "STARTED"   // Trip in progress
	RideStatusCompleted RideStatus = "COMPLETED" // Trip finished (terminal)
	RideStatusCancelled RideStatus = "CANCELLED" // Cancelled before start (terminal)
)

// Terminal reports whether the status admits no further transition.
func (s RideStatus) Terminal() bool {
	return s == RideStatusCompleted || s == RideStatusCancelled
}

// Ride Model
type Ride struct {
	ID        string     `gorm:"primaryKey;size:36" json:"id"`          // Primary key (UUID)
	RiderID   string     `gorm:"index;size:36;not null" json:"riderId"` // Rider reference (weak, by id only)
	DriverID  *string    `gorm:"size:36" json:"driverId"`               // Driver reference, set on accept
	PickupLat float64    `gorm:"not null" json:"pickupLat"`             // Pickup latitude
	PickupLng float64    `gorm:"not null" json:"pickupLng"`             // Pickup longitude
	DropLat   float64    `gorm:"not null" json:"dropLat"`               // Dropoff latitude
	DropLng   float64    `gorm:"not null" json:"dropLng"`               // Dropoff longitude
	FareCents int64      `gorm:"not null;default:0" json:"fareCents"`   // Fare in cents (0 when unset)
	Status    RideStatus `gorm:"index;size:16;not null" json:"status"`  // Authoritative lifecycle field
	CreatedAt int64      `gorm:"autoCreateTime:milli" json:"createdAt"` // Timestamp of creation in milliseconds
	UpdatedAt int64      `gorm:"autoUpdateTime:milli" json:"updatedAt"` // Timestamp of last transition in milliseconds
}

// BeforeCreate assigns a UUID primary key
func (r *Ride) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString() // Generate UUID if not set
	}
	return nil
}
