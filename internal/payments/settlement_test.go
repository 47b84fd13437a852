package payments

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/techadnank9/alien-miniapp-uber/internal/domain"
	"github.com/techadnank9/alien-miniapp-uber/internal/utils"
	"github.com/techadnank9/alien-miniapp-uber/internal/wallet"
)

const testRecipient = "alien1recipientaddress"

func newTestSettlement(t *testing.T) (*Settlement, *gorm.DB, ed25519.PrivateKey) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&domain.User{}, &domain.Wallet{}, &domain.Transaction{},
		&domain.Ride{}, &domain.PaymentIntent{}))

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	return NewSettlement(db, testRecipient, pub, wallet.NewLedger(db)), db, priv
}

func TestCreateInvoice(t *testing.T) {
	s, db, _ := newTestSettlement(t)
	ctx := context.Background()

	inv, err := s.CreateInvoice(ctx, "alien-7", decimal.RequireFromString("2.5"), nil)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(inv.Invoice, "inv_"))
	assert.Equal(t, testRecipient, inv.Recipient)
	assert.Equal(t, "2.5", inv.Amount.String())

	// The subject's user and wallet were created on first sight
	var user domain.User
	require.NoError(t, db.Preload("Wallet").Where("alien_user_id = ?", "alien-7").First(&user).Error)
	require.NotNil(t, user.Wallet)
	assert.Equal(t, 0.0, user.Wallet.Balance)

	var intent domain.PaymentIntent
	require.NoError(t, db.Where("invoice = ?", inv.Invoice).First(&intent).Error)
	assert.Equal(t, domain.PaymentStatusCreated, intent.Status)
	assert.Equal(t, user.ID, intent.UserID)
	assert.Nil(t, intent.RideID)
}

func TestCreateInvoiceValidation(t *testing.T) {
	s, _, _ := newTestSettlement(t)
	ctx := context.Background()

	_, err := s.CreateInvoice(ctx, "", decimal.NewFromInt(1), nil)
	assert.True(t, errors.Is(err, utils.ErrUnauthorized))

	_, err = s.CreateInvoice(ctx, "alien-7", decimal.Zero, nil)
	assert.True(t, errors.Is(err, utils.ErrValidation))
}

func TestInvoiceIDsAreUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := NewInvoiceID()
		assert.True(t, strings.HasPrefix(id, "inv_"))
		assert.False(t, seen[id])
		seen[id] = true
	}
}

func TestCreateForRideOncePerRide(t *testing.T) {
	s, db, _ := newTestSettlement(t)
	ctx := context.Background()

	user := domain.User{AlienUserID: "alien-1", Name: "Rider", Wallet: &domain.Wallet{}}
	require.NoError(t, db.Create(&user).Error)
	ride := domain.Ride{RiderID: user.ID, Status: domain.RideStatusCompleted, FareCents: 500}
	require.NoError(t, db.Create(&ride).Error)

	require.NoError(t, s.CreateForRide(ctx, &ride))

	var intent domain.PaymentIntent
	require.NoError(t, db.Where("ride_id = ?", ride.ID).First(&intent).Error)
	assert.Equal(t, "5", intent.Amount.String()) // 500 cents = 5 tokens

	err := s.CreateForRide(ctx, &ride)
	assert.True(t, errors.Is(err, utils.ErrInvoiceConflict))

	var count int64
	require.NoError(t, db.Model(&domain.PaymentIntent{}).Where("ride_id = ?", ride.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func signedBody(t *testing.T, priv ed25519.PrivateKey, body string) (string, []byte) {
	t.Helper()
	raw := []byte(body)
	sig := ed25519.Sign(priv, raw)
	return base64.StdEncoding.EncodeToString(sig), raw
}

func TestWebhookPaysInvoice(t *testing.T) {
	s, db, priv := newTestSettlement(t)
	ctx := context.Background()

	inv, err := s.CreateInvoice(ctx, "alien-1", decimal.NewFromInt(3), nil)
	require.NoError(t, err)

	sig, raw := signedBody(t, priv, `{"invoice":"`+inv.Invoice+`","status":"PAID"}`)
	require.NoError(t, s.HandleWebhook(ctx, sig, raw))

	var intent domain.PaymentIntent
	require.NoError(t, db.Where("invoice = ?", inv.Invoice).First(&intent).Error)
	assert.Equal(t, domain.PaymentStatusPaid, intent.Status)
}

func TestWebhookStatusDefaultsToPaid(t *testing.T) {
	s, db, priv := newTestSettlement(t)
	ctx := context.Background()

	inv, err := s.CreateInvoice(ctx, "alien-1", decimal.NewFromInt(3), nil)
	require.NoError(t, err)

	sig, raw := signedBody(t, priv, `{"invoice":"`+inv.Invoice+`"}`)
	require.NoError(t, s.HandleWebhook(ctx, sig, raw))

	var intent domain.PaymentIntent
	require.NoError(t, db.Where("invoice = ?", inv.Invoice).First(&intent).Error)
	assert.Equal(t, domain.PaymentStatusPaid, intent.Status)
}

func TestWebhookAcceptsHexSignature(t *testing.T) {
	s, db, priv := newTestSettlement(t)
	ctx := context.Background()

	inv, err := s.CreateInvoice(ctx, "alien-1", decimal.NewFromInt(3), nil)
	require.NoError(t, err)

	raw := []byte(`{"invoice":"` + inv.Invoice + `","status":"PAID"}`)
	sig := hex.EncodeToString(ed25519.Sign(priv, raw))
	require.NoError(t, s.HandleWebhook(ctx, sig, raw))

	var intent domain.PaymentIntent
	require.NoError(t, db.Where("invoice = ?", inv.Invoice).First(&intent).Error)
	assert.Equal(t, domain.PaymentStatusPaid, intent.Status)
}

func TestWebhookRejectsTamperedBody(t *testing.T) {
	s, _, priv := newTestSettlement(t)
	ctx := context.Background()

	inv, err := s.CreateInvoice(ctx, "alien-1", decimal.NewFromInt(3), nil)
	require.NoError(t, err)

	sig, raw := signedBody(t, priv, `{"invoice":"`+inv.Invoice+`","status":"PAID"}`)
	tampered := append([]byte{}, raw...)
	tampered[len(tampered)-2] ^= 1 // Flip one bit after signing

	err = s.HandleWebhook(ctx, sig, tampered)
	assert.True(t, errors.Is(err, utils.ErrUnauthorized))
}

func TestWebhookRejectsMissingSignature(t *testing.T) {
	s, _, _ := newTestSettlement(t)
	err := s.HandleWebhook(context.Background(), "", []byte(`{}`))
	assert.True(t, errors.Is(err, utils.ErrUnauthorized))
}

func TestWebhookRejectsGarbageSignature(t *testing.T) {
	s, _, _ := newTestSettlement(t)
	err := s.HandleWebhook(context.Background(), "not-base64-or-hex!", []byte(`{}`))
	assert.True(t, errors.Is(err, utils.ErrUnauthorized))
}

func TestWebhookUnknownInvoice(t *testing.T) {
	s, _, priv := newTestSettlement(t)
	sig, raw := signedBody(t, priv, `{"invoice":"inv_unknown","status":"PAID"}`)
	err := s.HandleWebhook(context.Background(), sig, raw)
	assert.True(t, errors.Is(err, utils.ErrNotFound))
}

func TestWebhookReplayIsIdempotent(t *testing.T) {
	s, db, priv := newTestSettlement(t)
	ctx := context.Background()

	// A completed ride with a funded rider wallet
	user := domain.User{AlienUserID: "alien-1", Name: "Rider", Wallet: &domain.Wallet{}}
	require.NoError(t, db.Create(&user).Error)
	ledger := wallet.NewLedger(db)
	_, err := ledger.TopUp(ctx, user.ID, 10)
	require.NoError(t, err)

	ride := domain.Ride{RiderID: user.ID, Status: domain.RideStatusCompleted, FareCents: 500}
	require.NoError(t, db.Create(&ride).Error)
	require.NoError(t, s.CreateForRide(ctx, &ride))

	var intent domain.PaymentIntent
	require.NoError(t, db.Where("ride_id = ?", ride.ID).First(&intent).Error)

	sig, raw := signedBody(t, priv, `{"invoice":"`+intent.Invoice+`","status":"PAID"}`)
	require.NoError(t, s.HandleWebhook(ctx, sig, raw))

	// First delivery debited the rider's wallet for the fare
	w, err := ledger.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.InDelta(t, 5.0, w.Balance, 1e-9)
	assert.Len(t, w.Txs, 2)

	// Replay: not an error, no second status change, no second debit
	require.NoError(t, s.HandleWebhook(ctx, sig, raw))

	require.NoError(t, db.Where("invoice = ?", intent.Invoice).First(&intent).Error)
	assert.Equal(t, domain.PaymentStatusPaid, intent.Status)

	w, err = ledger.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.InDelta(t, 5.0, w.Balance, 1e-9)
	assert.Len(t, w.Txs, 2)
}

func TestWebhookStatusCycleDebitsOnce(t *testing.T) {
	s, db, priv := newTestSettlement(t)
	ctx := context.Background()

	user := domain.User{AlienUserID: "alien-1", Name: "Rider", Wallet: &domain.Wallet{}}
	require.NoError(t, db.Create(&user).Error)
	ledger := wallet.NewLedger(db)
	_, err := ledger.TopUp(ctx, user.ID, 20)
	require.NoError(t, err)

	ride := domain.Ride{RiderID: user.ID, Status: domain.RideStatusCompleted, FareCents: 500}
	require.NoError(t, db.Create(&ride).Error)
	require.NoError(t, s.CreateForRide(ctx, &ride))

	var intent domain.PaymentIntent
	require.NoError(t, db.Where("ride_id = ?", ride.ID).First(&intent).Error)

	// Validly signed PAID, then FAILED, then PAID again. The first delivery
	// settles the invoice terminally; the later ones must change nothing.
	for _, status := range []string{"PAID", "FAILED", "PAID"} {
		sig, raw := signedBody(t, priv, `{"invoice":"`+intent.Invoice+`","status":"`+status+`"}`)
		require.NoError(t, s.HandleWebhook(ctx, sig, raw))
	}

	require.NoError(t, db.Where("invoice = ?", intent.Invoice).First(&intent).Error)
	assert.Equal(t, domain.PaymentStatusPaid, intent.Status)

	w, err := ledger.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.InDelta(t, 15.0, w.Balance, 1e-9) // One topup, one fare debit
	assert.Len(t, w.Txs, 2)
}
