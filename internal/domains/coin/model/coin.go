package model

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInsufficientBalance = errors.New("insufficient coin balance")
)

// TransactionType - loại giao dịch coin
type TransactionType string

const (
	TypeEarn    TransactionType = "earn"
	TypeRedeem  TransactionType = "redeem"
	TypeExpire  TransactionType = "expire"
)

// CoinTransaction - một dòng trong ledger coin, append-only.
// Balance = SUM(amount) trên các dòng của user; earn dương, redeem/expire âm.
type CoinTransaction struct {
	ID      uuid.UUID       `json:"id" db:"id"`
	UserID  uuid.UUID       `json:"user_id" db:"user_id"`
	Type    TransactionType `json:"type" db:"type"`
	Amount  decimal.Decimal `json:"amount" db:"amount"`
	Reason  string          `json:"reason" db:"reason"`
	OrderID *uuid.UUID      `json:"order_id,omitempty" db:"order_id"`

	// ExpiresAt chỉ set cho earn; expiry job quét các credit quá hạn
	ExpiresAt *time.Time `json:"expires_at,omitempty" db:"expires_at"`
	// Expired đánh dấu credit đã bị expiry job xử lý (tránh expire hai lần)
	Expired bool `json:"expired" db:"expired"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// RedeemRequest - user đổi coin trừ vào đơn hàng
type RedeemRequest struct {
	Amount  int64      `json:"amount"`
	OrderID *uuid.UUID `json:"order_id,omitempty"`
	UserID  uuid.UUID  `json:"-"`
}

func (r RedeemRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Amount,
			validation.Required.Error("Amount is required"),
			validation.Min(int64(1)).Error("Amount must be at least 1"),
		),
	)
}

// BalanceResponse - số dư coin hiện tại
type BalanceResponse struct {
	UserID  uuid.UUID       `json:"user_id"`
	Balance decimal.Decimal `json:"balance"`
}
