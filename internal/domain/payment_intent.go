package domain

import (
	"github.com/google/uuid"       // UUID generation for primary keys
	"github.com/shopspring/decimal" // Exact decimal amounts
	"gorm.io/gorm"                 // GORM ORM library
)

// PaymentIntent statuses
const (
	PaymentStatusCreated = "CREATED" // Invoice minted, awaiting network confirmation
	PaymentStatusPaid    = "PAID"    // Confirmed by the payment network
	PaymentStatusFailed  = "FAILED"  // Rejected by the payment network
)

// PaymentIntent tracks one pending off-system payment request.
type PaymentIntent struct {
	ID        string          `gorm:"primaryKey;size:36" json:"id"`                 // Primary key (UUID)
	UserID    string          `gorm:"index;size:36;not null" json:"userId"`         // Owning user
	RideID    *string         `gorm:"index;size:36" json:"rideId,omitempty"`        // Optional ride reference
	Amount    decimal.Decimal `gorm:"type:decimal(38,18);not null" json:"amount"`   // Requested amount in token units
	Token     string          `gorm:"size:16;default:ALIEN" json:"token"`           // Token descriptor
	Network   string          `gorm:"size:16;default:alien" json:"network"`         // Network descriptor
	Recipient string          `gorm:"not null" json:"recipient"`                    // Configured recipient address
	Invoice   string          `gorm:"uniqueIndex;size:64;not null" json:"invoice"`  // Unguessable external invoice id
	Status    string          `gorm:"index;size:16;not null" json:"status"`         // CREATED until webhook confirmation
	CreatedAt int64           `gorm:"autoCreateTime:milli" json:"createdAt"`        // Timestamp of creation in milliseconds
	UpdatedAt int64           `gorm:"autoUpdateTime:milli" json:"updatedAt"`        // Timestamp of last update in milliseconds
}

// BeforeCreate assigns a UUID primary key
func (p *PaymentIntent) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString() // Generate UUID if not set
	}
	return nil
}
