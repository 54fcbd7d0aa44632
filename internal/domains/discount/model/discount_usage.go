package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DiscountUsage - bản ghi ledger append-only, tạo đúng một lần cho mỗi lần
// apply thành công, không bao giờ sửa hay xóa. Là nguồn sự thật duy nhất cho
// per-user usage count.
type DiscountUsage struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	DiscountID uuid.UUID       `json:"discount_id" db:"discount_id"`
	UserID     uuid.UUID       `json:"user_id" db:"user_id"`
	OrderID    uuid.UUID       `json:"order_id" db:"order_id"`

	DiscountAmount decimal.Decimal `json:"discount_amount" db:"discount_amount"`
	OrderValue     decimal.Decimal `json:"order_value" db:"order_value"`
	UsedAt         time.Time       `json:"used_at" db:"used_at"`

	// Snapshot tại thời điểm sử dụng - giữ nguyên cho reporting
	// kể cả khi Discount bị edit sau này
	DiscountCode  *string         `json:"discount_code,omitempty" db:"discount_code"`
	DiscountType  DiscountType    `json:"discount_type" db:"discount_type"`
	DiscountValue decimal.Decimal `json:"discount_value" db:"discount_value"`
}

// UsageAnalytics - aggregate trên ledger cho admin dashboard
type UsageAnalytics struct {
	DiscountID         uuid.UUID       `json:"discount_id"`
	TotalUses          int             `json:"total_uses"`
	TotalAmountGranted decimal.Decimal `json:"total_amount_granted"`
	TotalOrderValue    decimal.Decimal `json:"total_order_value"`
	UniqueUsers        int             `json:"unique_users"`
	FirstUsedAt        *time.Time      `json:"first_used_at,omitempty"`
	LastUsedAt         *time.Time      `json:"last_used_at,omitempty"`
}
