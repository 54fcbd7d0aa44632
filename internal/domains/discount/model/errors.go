package model

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrDiscountNotFound - code/id không resolve được discount nào
	ErrDiscountNotFound = errors.New("discount not found")

	// ErrZeroAmount - eligibility pass nhưng amount tính ra = 0
	// (vd: order value tụt xuống dưới floor giữa check và calculate)
	ErrZeroAmount = errors.New("discount amount is zero")

	// ErrUsageLimitRace - conditional increment thấy limit đã bị request
	// song song chiếm hết. Caller xử lý như Ineligible, không retry.
	ErrUsageLimitRace = errors.New("discount usage limit exhausted by concurrent request")

	// ErrDuplicateCode - admin tạo/sửa discount với code đã tồn tại
	ErrDuplicateCode = errors.New("discount code already exists")
)

// Reason strings - client hiển thị nguyên văn, test assert nguyên văn.
const (
	ReasonNotActive         = "This discount is not active"
	ReasonNotYetActive      = "This discount is not yet active"
	ReasonExpired           = "This discount has expired"
	ReasonUsageLimitReached = "This discount has reached its usage limit"

	ReasonNoProductsInCart   = "This discount is only valid for specific products"
	ReasonNoCategoriesInCart = "This discount is only valid for specific categories"
	ReasonProductsNotMatch   = "This discount is not applicable to selected products"
	ReasonCategoriesNotMatch = "This discount is not applicable to selected categories"

	ReasonBillPaymentOnly = "This discount is only valid for bill payments"
	ReasonCardPaymentOnly = "This discount is only valid for card payments"

	ReasonNewUsersOnly       = "This discount is only available for new users"
	ReasonSingleVoucher      = "Only one voucher can be applied per bill"
	ReasonExcludedItems      = "This discount cannot be used with some items in your cart"
	ReasonUserLimitReached   = "You have reached the usage limit for this discount"
	ReasonOfflineOnly        = "This discount is only valid for offline purchases"
	ReasonNotAboveStoreOffer = "This discount cannot be combined with a store discount"

	// Eligibility pass nhưng calculator ra 0 (vd: fixed discount lớn hơn
	// order value sau clamp)
	ReasonZeroAmount = "This discount does not reduce this order value"
)

// MinOrderReason nhúng threshold vào message (đơn vị ₹, không có phần thập phân)
func MinOrderReason(minOrderValue decimal.Decimal) string {
	return fmt.Sprintf("Minimum order value of ₹%s required", minOrderValue.Round(0).String())
}

// MinItemCountReason / MaxItemCountReason nhúng bound vào message
func MinItemCountReason(min int) string {
	return fmt.Sprintf("This discount requires at least %d items in your cart", min)
}

func MaxItemCountReason(max int) string {
	return fmt.Sprintf("This discount allows at most %d items in your cart", max)
}

// IneligibleError - một check trong eligibility chain fail.
// Luôn mang reason cụ thể của check đó, không bao giờ là "cannot apply" chung chung.
type IneligibleError struct {
	Reason string
}

func (e *IneligibleError) Error() string {
	return e.Reason
}

// NewIneligible tạo IneligibleError với reason cụ thể
func NewIneligible(reason string) *IneligibleError {
	return &IneligibleError{Reason: reason}
}

// AsIneligible unwrap err về *IneligibleError nếu có
func AsIneligible(err error) (*IneligibleError, bool) {
	var ie *IneligibleError
	if errors.As(err, &ie) {
		return ie, true
	}
	return nil, false
}
