package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// positiveDecimal là rule cho decimal.Decimal - ozzo Min/Max chỉ hiểu
// numeric kinds, không hiểu struct.
var positiveDecimal = validation.By(func(value interface{}) error {
	d, ok := value.(decimal.Decimal)
	if !ok {
		return validation.NewError("validation_invalid_decimal", "Must be a decimal value")
	}
	if !d.IsPositive() {
		return validation.NewError("validation_min_decimal", "Order value must be greater than 0")
	}
	return nil
})

// -------------------------------------------------------------------
// PUBLIC REQUESTS
// -------------------------------------------------------------------

// ValidateDiscountRequest - request kiểm tra một discount với order context.
// UserID lấy từ JWT (nếu có), không nhận từ body.
type ValidateDiscountRequest struct {
	Code          string          `json:"code,omitempty"`
	DiscountID    *uuid.UUID      `json:"discount_id,omitempty"`
	OrderValue    decimal.Decimal `json:"order_value"`
	ProductIDs    []uuid.UUID     `json:"product_ids,omitempty"`
	CategoryIDs   []uuid.UUID     `json:"category_ids,omitempty"`
	ItemCount     int             `json:"item_count,omitempty"`
	PaymentMethod string          `json:"payment_method,omitempty"` // online, offline, bill, card
	UserID        *uuid.UUID      `json:"-"`
}

func (r ValidateDiscountRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Code,
			validation.Required.When(r.DiscountID == nil).Error("Either code or discount_id is required"),
			validation.Length(0, 50),
		),
		validation.Field(&r.OrderValue,
			validation.Required.Error("Order value is required"),
			positiveDecimal,
		),
		validation.Field(&r.ItemCount, validation.Min(0)),
	)
}

// ApplyDiscountRequest - request ghi nhận usage (chỉ cho user đã đăng nhập).
// Mang đầy đủ order context như validate: recheck tại apply phải thấy đúng
// cart/payment, nếu không discount scope product/category/payment sẽ rớt.
type ApplyDiscountRequest struct {
	DiscountID    uuid.UUID       `json:"discount_id"`
	OrderID       uuid.UUID       `json:"order_id"`
	OrderValue    decimal.Decimal `json:"order_value"`
	ProductIDs    []uuid.UUID     `json:"product_ids,omitempty"`
	CategoryIDs   []uuid.UUID     `json:"category_ids,omitempty"`
	ItemCount     int             `json:"item_count,omitempty"`
	PaymentMethod string          `json:"payment_method,omitempty"`
	UserID        uuid.UUID       `json:"-"`
}

func (r ApplyDiscountRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.DiscountID, validation.Required.Error("Discount ID is required")),
		validation.Field(&r.OrderID, validation.Required.Error("Order ID is required")),
		validation.Field(&r.OrderValue,
			validation.Required.Error("Order value is required"),
			positiveDecimal,
		),
	)
}

// ValidateCardOfferRequest - request kiểm tra card offer theo BIN/loại thẻ
type ValidateCardOfferRequest struct {
	CardNumber string          `json:"card_number"` // chỉ cần 6 số đầu, không lưu
	CardType   string          `json:"card_type"`   // credit / debit
	Bank       string          `json:"bank,omitempty"`
	OrderValue decimal.Decimal `json:"order_value"`
}

func (r ValidateCardOfferRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.CardNumber,
			validation.Required.Error("Card number prefix is required"),
			validation.Length(6, 19).Error("Card number must have at least 6 digits"),
			is.Digit.Error("Card number must contain digits only"),
		),
		validation.Field(&r.CardType,
			validation.Required.Error("Card type is required"),
			validation.In("credit", "debit").Error("Card type must be credit or debit"),
		),
		validation.Field(&r.OrderValue,
			validation.Required.Error("Order value is required"),
			positiveDecimal,
		),
	)
}

// ListDiscountsFilter - filter cho public listing
type ListDiscountsFilter struct {
	ApplicableOn  string     `form:"applicableOn"`
	Type          string     `form:"type"`
	MinValue      *float64   `form:"minValue"`
	MaxValue      *float64   `form:"maxValue"`
	PaymentMethod string     `form:"paymentMethod"`
	CardType      string     `form:"cardType"`
	StoreID       *uuid.UUID `form:"-"`
	Page          int        `form:"page"`
	Limit         int        `form:"limit"`
}

// -------------------------------------------------------------------
// ADMIN REQUESTS
// -------------------------------------------------------------------

// CreateDiscountRequest - admin tạo discount mới
type CreateDiscountRequest struct {
	Code        *string `json:"code,omitempty"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`

	Type              string   `json:"type"`
	Value             float64  `json:"value"`
	MinOrderValue     float64  `json:"min_order_value"`
	MaxDiscountAmount *float64 `json:"max_discount_amount,omitempty"`

	ApplicableOn         string      `json:"applicable_on"`
	ApplicableProducts   []uuid.UUID `json:"applicable_products,omitempty"`
	ApplicableCategories []uuid.UUID `json:"applicable_categories,omitempty"`
	CardOffer            *CardOffer  `json:"card_offer,omitempty"`

	ValidFrom  time.Time `json:"valid_from"`
	ValidUntil time.Time `json:"valid_until"`

	UsageLimit        *int `json:"usage_limit,omitempty"`
	UsageLimitPerUser *int `json:"usage_limit_per_user,omitempty"`
	Priority          int  `json:"priority"`

	Restrictions Restrictions `json:"restrictions"`

	Scope      string     `json:"scope"`
	MerchantID *uuid.UUID `json:"merchant_id,omitempty"`
	StoreID    *uuid.UUID `json:"store_id,omitempty"`

	IsActive bool `json:"is_active"`
}

func (r CreateDiscountRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name,
			validation.Required.Error("Name is required"),
			validation.Length(3, 200),
		),
		validation.Field(&r.Type,
			validation.Required,
			validation.In("percentage", "fixed").Error("Type must be percentage or fixed"),
		),
		validation.Field(&r.Value,
			validation.Required.Error("Value is required"),
			validation.Min(0.01).Error("Value must be greater than 0"),
			validation.When(r.Type == "percentage",
				validation.Max(100.0).Error("Percentage value cannot exceed 100"),
			),
		),
		validation.Field(&r.MinOrderValue, validation.Min(0.0)),
		validation.Field(&r.ApplicableOn,
			validation.Required,
			validation.In("all", "specific_products", "specific_categories", "bill_payment", "card_payment"),
		),
		validation.Field(&r.ApplicableProducts,
			validation.Required.When(r.ApplicableOn == "specific_products").Error("Applicable products are required"),
		),
		validation.Field(&r.ApplicableCategories,
			validation.Required.When(r.ApplicableOn == "specific_categories").Error("Applicable categories are required"),
		),
		validation.Field(&r.ValidFrom, validation.Required.Error("Valid from is required")),
		validation.Field(&r.ValidUntil,
			validation.Required.Error("Valid until is required"),
			validation.By(func(interface{}) error {
				if r.ValidUntil.Before(r.ValidFrom) {
					return validation.NewError("validation_invalid_window", "Valid until must not be before valid from")
				}
				return nil
			}),
		),
		validation.Field(&r.Scope,
			validation.Required,
			validation.In("global", "merchant", "store"),
		),
		validation.Field(&r.MerchantID,
			validation.Required.When(r.Scope == "merchant").Error("Merchant ID is required for merchant scope"),
		),
		validation.Field(&r.StoreID,
			validation.Required.When(r.Scope == "store").Error("Store ID is required for store scope"),
		),
	)
}

// UpdateDiscountRequest dùng chung shape với create; mọi field gửi lên sẽ ghi đè
type UpdateDiscountRequest = CreateDiscountRequest

// -------------------------------------------------------------------
// RESPONSES
// -------------------------------------------------------------------

// EligibilityResult - kết quả của eligibility check
type EligibilityResult struct {
	Can    bool   `json:"can"`
	Reason string `json:"reason,omitempty"`
}

// Eligible trả về result pass
func Eligible() EligibilityResult {
	return EligibilityResult{Can: true}
}

// Ineligible trả về result fail kèm reason
func Ineligible(reason string) EligibilityResult {
	return EligibilityResult{Can: false, Reason: reason}
}

// ValidateDiscountResponse - kết quả validate: eligibility + số tiền
type ValidateDiscountResponse struct {
	Valid          bool            `json:"valid"`
	Reason         string          `json:"reason,omitempty"`
	Discount       *Discount       `json:"discount,omitempty"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	FinalAmount    decimal.Decimal `json:"final_amount"` // order_value - discount_amount, clamp >= 0
}

// ApplyDiscountResponse - kết quả apply thành công
type ApplyDiscountResponse struct {
	UsageID        uuid.UUID       `json:"usage_id"`
	DiscountID     uuid.UUID       `json:"discount_id"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	FinalAmount    decimal.Decimal `json:"final_amount"`
	UsedAt         time.Time       `json:"used_at"`
}

// DiscountOfferItem - một dòng trong listing offers, kèm amount tính sẵn
type DiscountOfferItem struct {
	Discount       *Discount       `json:"discount"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	CanApply       bool            `json:"can_apply"`
}
