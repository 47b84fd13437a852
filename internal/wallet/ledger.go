package wallet

import (
	"context" // Request-scoped cancellation
	"errors"  // Error matching
	"fmt"     // Error formatting
	"time"    // Timestamps for logging

	"github.com/techadnank9/alien-miniapp-uber/internal/domain" // Importing domain models
	"github.com/techadnank9/alien-miniapp-uber/internal/utils"  // Sentinel errors

	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// Ledger applies signed balance deltas atomically and keeps the append-only
// transaction trail consistent with the balance.
type Ledger struct {
	db *gorm.DB // Database handle
}

// NewLedger creates a Ledger over the given database handle.
func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

// Get returns the wallet for userID with its transaction history, oldest first.
func (l *Ledger) Get(ctx context.Context, userID string) (*domain.Wallet, error) {
	var w domain.Wallet
	err := l.db.WithContext(ctx).
		Preload("Txs", func(db *gorm.DB) *gorm.DB { return db.Order("created_at asc") }).
		Where("user_id = ?", userID).First(&w).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("wallet for user %s: %w", userID, utils.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// TopUp credits the wallet and appends a Topup transaction in one store transaction.
func (l *Ledger) TopUp(ctx context.Context, userID string, amount float64) (*domain.Wallet, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("topup amount must be positive: %w", utils.ErrValidation)
	}
	return l.apply(ctx, userID, amount, "Topup", nil)
}

// Debit charges the wallet and appends a negative transaction in one store
// transaction. A debit that would drive the balance negative fails with
// ErrInsufficientFunds and writes nothing.
func (l *Ledger) Debit(ctx context.Context, userID string, amount float64, reason string, rideID *string) (*domain.Wallet, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("debit amount must be positive: %w", utils.ErrValidation)
	}
	if reason == "" {
		return nil, fmt.Errorf("debit reason required: %w", utils.ErrValidation)
	}
	return l.apply(ctx, userID, -amount, reason, rideID)
}

// apply mutates the balance and appends the matching transaction atomically.
// The balance change is a single conditional increment at the store, so two
// concurrent deltas can never both read the same pre-update balance, and a
// debit past zero matches no row at all.
func (l *Ledger) apply(ctx context.Context, userID string, delta float64, reason string, rideID *string) (*domain.Wallet, error) {
	var wallet domain.Wallet
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).First(&wallet).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("wallet for user %s: %w", userID, utils.ErrNotFound)
			}
			return err
		}
		// Guarded atomic increment: the WHERE clause re-checks the balance at
		// the store, not the value read above
		res := tx.Model(&domain.Wallet{}).
			Where("user_id = ? AND balance + ? >= 0", userID, delta).
			Update("balance", gorm.Expr("balance + ?", delta))
		if res.Error != nil {
			return res.Error // Return error to rollback
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("balance cannot cover %.2f: %w", -delta, utils.ErrInsufficientFunds)
		}
		t := domain.Transaction{
			WalletID: wallet.ID, // Owning wallet
			Amount:   delta,     // Signed amount
			Reason:   reason,    // Transaction reason
			RideID:   rideID,    // Optional ride reference
		}
		if err := tx.Create(&t).Error; err != nil {
			return err // Return error to rollback
		}
		return nil // Commit transaction
	})
	if err != nil {
		return nil, err
	}
	// Log successful ledger mutation
	logrus.WithFields(logrus.Fields{
		"user_id":   userID,                          // Wallet owner
		"amount":    delta,                           // Signed amount
		"reason":    reason,                          // Transaction reason
		"timestamp": time.Now().Format(time.RFC3339), // Current timestamp
	}).Info("Ledger mutation")
	return l.Get(ctx, userID)
}
