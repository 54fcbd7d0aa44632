package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DiscountType - loại giảm giá
type DiscountType string

const (
	DiscountTypePercentage DiscountType = "percentage"
	DiscountTypeFixed      DiscountType = "fixed"
)

func (dt DiscountType) IsValid() bool {
	switch dt {
	case DiscountTypePercentage, DiscountTypeFixed:
		return true
	}
	return false
}

func (dt DiscountType) String() string {
	return string(dt)
}

// ApplicableOn - phạm vi áp dụng của discount
type ApplicableOn string

const (
	ApplicableOnAll                ApplicableOn = "all"
	ApplicableOnSpecificProducts   ApplicableOn = "specific_products"
	ApplicableOnSpecificCategories ApplicableOn = "specific_categories"
	ApplicableOnBillPayment        ApplicableOn = "bill_payment"
	ApplicableOnCardPayment        ApplicableOn = "card_payment"
)

func (a ApplicableOn) IsValid() bool {
	switch a {
	case ApplicableOnAll, ApplicableOnSpecificProducts, ApplicableOnSpecificCategories,
		ApplicableOnBillPayment, ApplicableOnCardPayment:
		return true
	}
	return false
}

func (a ApplicableOn) String() string {
	return string(a)
}

// DiscountScope - phạm vi sở hữu: toàn hệ thống, theo merchant hoặc theo store
type DiscountScope string

const (
	ScopeGlobal   DiscountScope = "global"
	ScopeMerchant DiscountScope = "merchant"
	ScopeStore    DiscountScope = "store"
)

func (s DiscountScope) IsValid() bool {
	switch s {
	case ScopeGlobal, ScopeMerchant, ScopeStore:
		return true
	}
	return false
}

// Restrictions - các điều kiện phụ, mỗi field là một veto độc lập.
// Pointer fields phân biệt "không set" với "set giá trị biên" (vd: MinItemCount = 0).
type Restrictions struct {
	MinItemCount              *int        `json:"min_item_count,omitempty" db:"min_item_count"`
	MaxItemCount              *int        `json:"max_item_count,omitempty" db:"max_item_count"`
	NewUsersOnly              bool        `json:"new_users_only" db:"new_users_only"`
	ExcludedProducts          []uuid.UUID `json:"excluded_products,omitempty" db:"excluded_products"`
	ExcludedCategories        []uuid.UUID `json:"excluded_categories,omitempty" db:"excluded_categories"`
	SingleVoucherPerBill      bool        `json:"single_voucher_per_bill" db:"single_voucher_per_bill"`
	IsOfflineOnly             bool        `json:"is_offline_only" db:"is_offline_only"`
	NotValidAboveStoreDiscount bool       `json:"not_valid_above_store_discount" db:"not_valid_above_store_discount"`
}

// CardOffer - metadata riêng cho discount loại card_payment
type CardOffer struct {
	CardTypes []string `json:"card_types,omitempty" db:"card_types"` // credit, debit
	Banks     []string `json:"banks,omitempty" db:"banks"`
	BINs      []string `json:"bins,omitempty" db:"bins"` // 6 số đầu của thẻ
}

// Discount - entity cấu hình giảm giá. Được tạo bởi admin/merchant,
// chỉ mutate qua increment used_count, không bao giờ xóa (deactivate qua is_active).
type Discount struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Code        *string   `json:"code,omitempty" db:"code"` // nullable - một số discount auto-apply không có code
	Name        string    `json:"name" db:"name"`
	Description *string   `json:"description,omitempty" db:"description"`

	// Rule
	Type              DiscountType     `json:"type" db:"type"`
	Value             decimal.Decimal  `json:"value" db:"value"`
	MinOrderValue     decimal.Decimal  `json:"min_order_value" db:"min_order_value"`
	MaxDiscountAmount *decimal.Decimal `json:"max_discount_amount,omitempty" db:"max_discount_amount"`

	// Applicability
	ApplicableOn         ApplicableOn `json:"applicable_on" db:"applicable_on"`
	ApplicableProducts   []uuid.UUID  `json:"applicable_products,omitempty" db:"applicable_products"`
	ApplicableCategories []uuid.UUID  `json:"applicable_categories,omitempty" db:"applicable_categories"`
	CardOffer            *CardOffer   `json:"card_offer,omitempty" db:"card_offer"`

	// Temporal window - cả hai mốc đều inclusive
	ValidFrom  time.Time `json:"valid_from" db:"valid_from"`
	ValidUntil time.Time `json:"valid_until" db:"valid_until"`

	// Usage limits
	UsageLimit        *int `json:"usage_limit,omitempty" db:"usage_limit"`
	UsedCount         int  `json:"used_count" db:"used_count"`
	UsageLimitPerUser *int `json:"usage_limit_per_user,omitempty" db:"usage_limit_per_user"`

	Priority     int          `json:"priority" db:"priority"`
	Restrictions Restrictions `json:"restrictions" db:"restrictions"`

	// Scope binding
	Scope      DiscountScope `json:"scope" db:"scope"`
	MerchantID *uuid.UUID    `json:"merchant_id,omitempty" db:"merchant_id"`
	StoreID    *uuid.UUID    `json:"store_id,omitempty" db:"store_id"`

	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// NormalizeCode chuẩn hóa code: trim + uppercase (lookup case-insensitive)
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// HasUsageHeadroom kiểm tra global usage limit còn slot không.
// Chỉ dùng cho eligibility check; increment thực hiện ở repository với conditional write.
func (d *Discount) HasUsageHeadroom() bool {
	if d.UsageLimit == nil {
		return true
	}
	return d.UsedCount < *d.UsageLimit
}

// AppliesToProduct kiểm tra discount có áp dụng cho product cụ thể không
func (d *Discount) AppliesToProduct(productID uuid.UUID) bool {
	switch d.ApplicableOn {
	case ApplicableOnAll:
		return true
	case ApplicableOnSpecificProducts:
		for _, id := range d.ApplicableProducts {
			if id == productID {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// MatchesCard kiểm tra card offer có match với thẻ không.
// Mỗi tập rỗng được hiểu là "không giới hạn theo chiều đó".
func (d *Discount) MatchesCard(cardType, bank, bin string) bool {
	if d.ApplicableOn != ApplicableOnCardPayment || d.CardOffer == nil {
		return false
	}
	if len(d.CardOffer.CardTypes) > 0 && !containsFold(d.CardOffer.CardTypes, cardType) {
		return false
	}
	if len(d.CardOffer.Banks) > 0 && !containsFold(d.CardOffer.Banks, bank) {
		return false
	}
	if len(d.CardOffer.BINs) > 0 {
		matched := false
		for _, b := range d.CardOffer.BINs {
			if b != "" && strings.HasPrefix(bin, b) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

func containsFold(set []string, v string) bool {
	for _, s := range set {
		if strings.EqualFold(s, v) {
			return true
		}
	}
	return false
}
