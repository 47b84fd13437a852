package domain

import (
	"github.com/google/uuid" // UUID generation for primary keys
	"gorm.io/gorm"           // GORM ORM library
)

// Transaction Model (immutable ledger entry)
type Transaction struct {
	ID        string  `gorm:"primaryKey;size:36" json:"id"`            // Primary key (UUID)
	WalletID  string  `gorm:"index;size:36;not null" json:"walletId"`  // Foreign key to Wallet
	Amount    float64 `gorm:"not null" json:"amount"`                  // Signed amount (positive credit, negative debit)
	Reason    string  `gorm:"not null" json:"reason"`                  // Reason: Topup, ride fare, ...
	RideID    *string `gorm:"size:36" json:"rideId,omitempty"`         // Optional ride reference
	CreatedAt int64   `gorm:"autoCreateTime:milli" json:"createdAt"`   // Timestamp of creation in milliseconds
}

// BeforeCreate assigns a UUID primary key
func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString() // Generate UUID if not set
	}
	return nil
}
