package service

import (
	"rez-backend/internal/domains/discount/model"

	"github.com/shopspring/decimal"
)

// Calculator xử lý logic tính số tiền giảm giá.
// Pure function - không side effect, gọi speculative được
// (vd: preview nhiều candidate discount trước khi user chọn).
type Calculator struct{}

// NewCalculator tạo instance mới
func NewCalculator() *Calculator {
	return &Calculator{}
}

// Calculate tính số tiền giảm giá cho một order value.
//
// Business Logic:
// 1. orderValue < min_order_value: trả về 0 (floor)
// 2. Percentage: amount = orderValue × value / 100
// 3. Fixed: amount = value (KHÔNG clamp theo orderValue - caller tự clamp
//    final_amount = orderValue - amount về >= 0, vì fixed discount
//    misconfigured có thể vượt order total)
// 4. max_discount_amount set và amount vượt cap: clamp về cap
// 5. Làm tròn half-up về đơn vị ₹ nguyên
func (c *Calculator) Calculate(d *model.Discount, orderValue decimal.Decimal) decimal.Decimal {
	if orderValue.LessThan(d.MinOrderValue) {
		return decimal.Zero
	}

	var amount decimal.Decimal
	switch d.Type {
	case model.DiscountTypePercentage:
		amount = orderValue.Mul(d.Value).Div(decimal.NewFromInt(100))
	case model.DiscountTypeFixed:
		amount = d.Value
	default:
		return decimal.Zero
	}

	if d.MaxDiscountAmount != nil && amount.GreaterThan(*d.MaxDiscountAmount) {
		amount = *d.MaxDiscountAmount
	}

	if amount.IsNegative() {
		return decimal.Zero
	}

	// Round half-up về số nguyên (>= 0.5 làm tròn lên)
	return amount.Round(0)
}

// FinalAmount tính số tiền phải trả sau giảm giá, clamp về 0 khi
// discount amount vượt order value
func (c *Calculator) FinalAmount(orderValue, discountAmount decimal.Decimal) decimal.Decimal {
	final := orderValue.Sub(discountAmount)
	if final.IsNegative() {
		return decimal.Zero
	}
	return final
}
