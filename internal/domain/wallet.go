package domain

import (
	"github.com/google/uuid" // UUID generation for primary keys
	"gorm.io/gorm"           // GORM ORM library
)

// Wallet Model
type Wallet struct {
	ID       string        `gorm:"primaryKey;size:36" json:"id"`            // Primary key (UUID)
	UserID   string        `gorm:"uniqueIndex;size:36;not null" json:"userId"` // Foreign key to User (one wallet per user)
	Balance  float64       `gorm:"not null;default:0" json:"balance"`       // Wallet balance
	Currency string        `gorm:"size:16;default:ALIEN" json:"currency"`   // Settlement currency
	Txs      []Transaction `gorm:"foreignKey:WalletID" json:"txs"`          // Append-only transaction history
}

// BeforeCreate assigns a UUID primary key
func (w *Wallet) BeforeCreate(tx *gorm.DB) error {
	if w.ID == "" {
		w.ID = uuid.NewString() // Generate UUID if not set
	}
	return nil
}
