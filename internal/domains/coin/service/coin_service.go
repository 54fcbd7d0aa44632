package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"rez-backend/internal/domains/coin/model"
	"rez-backend/internal/domains/coin/repository"
	"rez-backend/pkg/clock"
	"rez-backend/pkg/logger"
)

// Coins earn theo % giá trị đơn completed, hết hạn sau 90 ngày
const (
	earnRatePercent = 2
	coinExpiryDays  = 90
)

// ServiceInterface định nghĩa business logic cho coin domain
type ServiceInterface interface {
	GetBalance(ctx context.Context, userID uuid.UUID) (*model.BalanceResponse, error)
	GetHistory(ctx context.Context, userID uuid.UUID, page, limit int) ([]*model.CoinTransaction, int, error)
	EarnFromOrder(ctx context.Context, userID, orderID uuid.UUID, orderTotal decimal.Decimal) error
	Redeem(ctx context.Context, req model.RedeemRequest) (*model.CoinTransaction, error)
	ExpireCredits(ctx context.Context) (int64, error)
}

// CoinService xử lý business logic cho promo coins
type CoinService struct {
	repo repository.CoinRepository
	clk  clock.Clock
}

// NewCoinService tạo service mới
func NewCoinService(repo repository.CoinRepository, clk clock.Clock) ServiceInterface {
	return &CoinService{repo: repo, clk: clk}
}

func (s *CoinService) GetBalance(ctx context.Context, userID uuid.UUID) (*model.BalanceResponse, error) {
	balance, err := s.repo.GetBalance(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &model.BalanceResponse{UserID: userID, Balance: balance}, nil
}

func (s *CoinService) GetHistory(ctx context.Context, userID uuid.UUID, page, limit int) ([]*model.CoinTransaction, int, error) {
	return s.repo.ListByUser(ctx, userID, page, limit)
}

// EarnFromOrder cộng coin khi đơn chuyển completed (order service gọi hook)
func (s *CoinService) EarnFromOrder(ctx context.Context, userID, orderID uuid.UUID, orderTotal decimal.Decimal) error {
	amount := orderTotal.Mul(decimal.NewFromInt(earnRatePercent)).Div(decimal.NewFromInt(100)).Round(0)
	if !amount.IsPositive() {
		return nil
	}

	now := s.clk.Now()
	expiresAt := now.AddDate(0, 0, coinExpiryDays)

	txn := &model.CoinTransaction{
		ID:        uuid.New(),
		UserID:    userID,
		Type:      model.TypeEarn,
		Amount:    amount,
		Reason:    "Order completed",
		OrderID:   &orderID,
		ExpiresAt: &expiresAt,
		CreatedAt: now,
	}

	if err := s.repo.Insert(ctx, txn); err != nil {
		return err
	}

	logger.Info("Coins earned", map[string]interface{}{
		"user_id":  userID.String(),
		"order_id": orderID.String(),
		"amount":   amount.String(),
	})
	return nil
}

// Redeem trừ coin vào đơn. Balance guard nằm trong statement insert:
// số dư không bao giờ âm, kể cả dưới concurrent redeem.
func (s *CoinService) Redeem(ctx context.Context, req model.RedeemRequest) (*model.CoinTransaction, error) {
	txn := &model.CoinTransaction{
		ID:        uuid.New(),
		UserID:    req.UserID,
		Type:      model.TypeRedeem,
		Amount:    decimal.NewFromInt(req.Amount).Neg(),
		Reason:    "Coins redeemed",
		OrderID:   req.OrderID,
		CreatedAt: s.clk.Now(),
	}

	ok, err := s.repo.InsertRedeem(ctx, txn)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, model.ErrInsufficientBalance
	}

	logger.Info("Coins redeemed", map[string]interface{}{
		"user_id": req.UserID.String(),
		"amount":  req.Amount,
	})
	return txn, nil
}

// ExpireCredits chạy bởi worker job hàng giờ
func (s *CoinService) ExpireCredits(ctx context.Context) (int64, error) {
	count, err := s.repo.ExpireCredits(ctx, s.clk.Now())
	if err != nil {
		return 0, err
	}
	if count > 0 {
		logger.Info("Coin credits expired", map[string]interface{}{
			"count": count,
		})
	}
	return count, nil
}
