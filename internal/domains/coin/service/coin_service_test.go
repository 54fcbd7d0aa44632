package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rez-backend/internal/domains/coin/model"
	"rez-backend/pkg/clock"
)

var testNow = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

type mockCoinRepo struct {
	insertFn        func(ctx context.Context, txn *model.CoinTransaction) error
	insertRedeemFn  func(ctx context.Context, txn *model.CoinTransaction) (bool, error)
	expireCreditsFn func(ctx context.Context, now time.Time) (int64, error)
}

func (m *mockCoinRepo) Insert(ctx context.Context, txn *model.CoinTransaction) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, txn)
	}
	return nil
}

func (m *mockCoinRepo) GetBalance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func (m *mockCoinRepo) ListByUser(ctx context.Context, userID uuid.UUID, page, limit int) ([]*model.CoinTransaction, int, error) {
	return nil, 0, nil
}

func (m *mockCoinRepo) InsertRedeem(ctx context.Context, txn *model.CoinTransaction) (bool, error) {
	if m.insertRedeemFn != nil {
		return m.insertRedeemFn(ctx, txn)
	}
	return true, nil
}

func (m *mockCoinRepo) ExpireCredits(ctx context.Context, now time.Time) (int64, error) {
	if m.expireCreditsFn != nil {
		return m.expireCreditsFn(ctx, now)
	}
	return 0, nil
}

func TestEarnFromOrder_TwoPercentRounded(t *testing.T) {
	var saved *model.CoinTransaction
	repo := &mockCoinRepo{
		insertFn: func(ctx context.Context, txn *model.CoinTransaction) error {
			saved = txn
			return nil
		},
	}
	svc := NewCoinService(repo, clock.NewMockClock(testNow))

	userID, orderID := uuid.New(), uuid.New()
	// 2% của 1575 = 31.5, round half-up = 32
	err := svc.EarnFromOrder(context.Background(), userID, orderID, decimal.NewFromInt(1575))
	require.NoError(t, err)
	require.NotNil(t, saved)

	assert.Equal(t, model.TypeEarn, saved.Type)
	assert.True(t, saved.Amount.Equal(decimal.NewFromInt(32)), "got %s", saved.Amount)
	require.NotNil(t, saved.ExpiresAt)
	assert.Equal(t, testNow.AddDate(0, 0, 90), *saved.ExpiresAt)
}

func TestEarnFromOrder_ZeroAmountSkipsInsert(t *testing.T) {
	inserted := false
	repo := &mockCoinRepo{
		insertFn: func(ctx context.Context, txn *model.CoinTransaction) error {
			inserted = true
			return nil
		},
	}
	svc := NewCoinService(repo, clock.NewMockClock(testNow))

	// 2% của 10 = 0.2, round về 0 - không ghi ledger row rỗng
	err := svc.EarnFromOrder(context.Background(), uuid.New(), uuid.New(), decimal.NewFromInt(10))
	require.NoError(t, err)
	assert.False(t, inserted)
}

func TestRedeem_NegativeLedgerRow(t *testing.T) {
	var saved *model.CoinTransaction
	repo := &mockCoinRepo{
		insertRedeemFn: func(ctx context.Context, txn *model.CoinTransaction) (bool, error) {
			saved = txn
			return true, nil
		},
	}
	svc := NewCoinService(repo, clock.NewMockClock(testNow))

	txn, err := svc.Redeem(context.Background(), model.RedeemRequest{
		UserID: uuid.New(),
		Amount: 50,
	})
	require.NoError(t, err)
	require.NotNil(t, saved)

	assert.Equal(t, model.TypeRedeem, txn.Type)
	assert.True(t, txn.Amount.Equal(decimal.NewFromInt(-50)), "redeem rows are negative, got %s", txn.Amount)
}

func TestRedeem_InsufficientBalance(t *testing.T) {
	repo := &mockCoinRepo{
		insertRedeemFn: func(ctx context.Context, txn *model.CoinTransaction) (bool, error) {
			return false, nil
		},
	}
	svc := NewCoinService(repo, clock.NewMockClock(testNow))

	_, err := svc.Redeem(context.Background(), model.RedeemRequest{
		UserID: uuid.New(),
		Amount: 500,
	})
	assert.ErrorIs(t, err, model.ErrInsufficientBalance)
}

func TestExpireCredits_UsesInjectedClock(t *testing.T) {
	clk := clock.NewMockClock(testNow)
	var passedNow time.Time
	repo := &mockCoinRepo{
		expireCreditsFn: func(ctx context.Context, now time.Time) (int64, error) {
			passedNow = now
			return 3, nil
		},
	}
	svc := NewCoinService(repo, clk)

	clk.Add(2 * time.Hour)
	count, err := svc.ExpireCredits(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
	assert.Equal(t, testNow.Add(2*time.Hour), passedNow)
}
