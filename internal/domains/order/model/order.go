package model

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrInvalidTransition  = errors.New("invalid order status transition")
)

// OrderStatus - lifecycle: pending -> confirmed -> completed, hoặc cancelled
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusConfirmed OrderStatus = "confirmed"
	StatusCompleted OrderStatus = "completed"
	StatusCancelled OrderStatus = "cancelled"
)

// CanTransitionTo kiểm tra transition hợp lệ
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusConfirmed || next == StatusCancelled
	case StatusConfirmed:
		return next == StatusCompleted || next == StatusCancelled
	}
	return false
}

// OrderItem - line item, lưu jsonb trong order row
type OrderItem struct {
	ProductID  uuid.UUID       `json:"product_id"`
	CategoryID uuid.UUID       `json:"category_id"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	Quantity   int             `json:"quantity"`
}

// Order - đơn hàng
type Order struct {
	ID          uuid.UUID   `json:"id" db:"id"`
	OrderNumber string      `json:"order_number" db:"order_number"`
	UserID      uuid.UUID   `json:"user_id" db:"user_id"`
	StoreID     uuid.UUID   `json:"store_id" db:"store_id"`
	Items       []OrderItem `json:"items" db:"items"`

	Subtotal       decimal.Decimal `json:"subtotal" db:"subtotal"`
	DiscountID     *uuid.UUID      `json:"discount_id,omitempty" db:"discount_id"`
	DiscountAmount decimal.Decimal `json:"discount_amount" db:"discount_amount"`
	Total          decimal.Decimal `json:"total" db:"total"`

	Status        OrderStatus `json:"status" db:"status"`
	PaymentMethod string      `json:"payment_method" db:"payment_method"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// CreateOrderRequest - user tạo đơn, optional kèm discount
type CreateOrderRequest struct {
	StoreID       uuid.UUID   `json:"store_id"`
	Items         []OrderItem `json:"items"`
	DiscountID    *uuid.UUID  `json:"discount_id,omitempty"`
	PaymentMethod string      `json:"payment_method"`
	UserID        uuid.UUID   `json:"-"`
}

func (r CreateOrderRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.StoreID, validation.Required.Error("Store ID is required")),
		validation.Field(&r.Items,
			validation.Required.Error("Order must have at least one item"),
			validation.Length(1, 100),
		),
		validation.Field(&r.PaymentMethod,
			validation.Required.Error("Payment method is required"),
			validation.In("online", "offline", "card", "bill").Error("Invalid payment method"),
		),
	)
}

// Subtotal tính tổng tiền từ line items
func (r CreateOrderRequest) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range r.Items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// ProductIDs trả về danh sách product id trong đơn
func (r CreateOrderRequest) ProductIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(r.Items))
	for _, item := range r.Items {
		ids = append(ids, item.ProductID)
	}
	return ids
}

// CategoryIDs trả về danh sách category id trong đơn
func (r CreateOrderRequest) CategoryIDs() []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(r.Items))
	ids := make([]uuid.UUID, 0, len(r.Items))
	for _, item := range r.Items {
		if _, ok := seen[item.CategoryID]; ok {
			continue
		}
		seen[item.CategoryID] = struct{}{}
		ids = append(ids, item.CategoryID)
	}
	return ids
}

// ItemCount tổng số line items (tính theo quantity)
func (r CreateOrderRequest) ItemCount() int {
	count := 0
	for _, item := range r.Items {
		count += item.Quantity
	}
	return count
}

// UpdateStatusRequest - admin chuyển trạng thái đơn
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

func (r UpdateStatusRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Status,
			validation.Required.Error("Status is required"),
			validation.In("confirmed", "completed", "cancelled").Error("Invalid status"),
		),
	)
}
