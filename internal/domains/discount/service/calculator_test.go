package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"rez-backend/internal/domains/discount/model"
)

func decPtr(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func percentageDiscount(value, minOrder int64, maxAmount *decimal.Decimal) *model.Discount {
	return &model.Discount{
		Type:              model.DiscountTypePercentage,
		Value:             decimal.NewFromInt(value),
		MinOrderValue:     decimal.NewFromInt(minOrder),
		MaxDiscountAmount: maxAmount,
	}
}

func fixedDiscount(value, minOrder int64) *model.Discount {
	return &model.Discount{
		Type:          model.DiscountTypeFixed,
		Value:         decimal.NewFromInt(value),
		MinOrderValue: decimal.NewFromInt(minOrder),
	}
}

func TestCalculate_PercentageWithCap(t *testing.T) {
	calc := NewCalculator()

	// 10% của 2000 = 200, clamp về cap 100
	d := percentageDiscount(10, 500, decPtr(100))
	amount := calc.Calculate(d, decimal.NewFromInt(2000))

	assert.True(t, amount.Equal(decimal.NewFromInt(100)),
		"expected 100, got %s", amount)
}

func TestCalculate_BelowMinOrderValue(t *testing.T) {
	calc := NewCalculator()

	d := percentageDiscount(10, 500, decPtr(100))
	amount := calc.Calculate(d, decimal.NewFromInt(400))

	assert.True(t, amount.IsZero(), "expected 0 below min order value, got %s", amount)
}

func TestCalculate_PercentageWithoutCap(t *testing.T) {
	calc := NewCalculator()

	d := percentageDiscount(10, 0, nil)
	amount := calc.Calculate(d, decimal.NewFromInt(2000))

	assert.True(t, amount.Equal(decimal.NewFromInt(200)))
}

func TestCalculate_FixedNotClampedToOrderValue(t *testing.T) {
	calc := NewCalculator()

	// Fixed 50 trên đơn 30: calculator trả 50 nguyên vẹn,
	// caller chịu trách nhiệm clamp final amount về >= 0
	d := fixedDiscount(50, 0)
	amount := calc.Calculate(d, decimal.NewFromInt(30))

	assert.True(t, amount.Equal(decimal.NewFromInt(50)))

	final := calc.FinalAmount(decimal.NewFromInt(30), amount)
	assert.True(t, final.IsZero(), "final amount must clamp to 0, got %s", final)
}

func TestCalculate_FixedRespectsCap(t *testing.T) {
	calc := NewCalculator()

	d := fixedDiscount(500, 0)
	cap := decimal.NewFromInt(100)
	d.MaxDiscountAmount = &cap

	amount := calc.Calculate(d, decimal.NewFromInt(1000))
	assert.True(t, amount.Equal(cap))
}

func TestCalculate_PercentageNeverExceedsOrderValue(t *testing.T) {
	calc := NewCalculator()

	for _, value := range []int64{1, 25, 50, 99, 100} {
		d := percentageDiscount(value, 0, nil)
		for _, orderValue := range []int64{1, 10, 499, 1000, 99999} {
			v := decimal.NewFromInt(orderValue)
			amount := calc.Calculate(d, v)
			assert.True(t, amount.LessThanOrEqual(v),
				"value=%d order=%d amount=%s", value, orderValue, amount)
		}
	}
}

func TestCalculate_CapHoldsForAnyInput(t *testing.T) {
	calc := NewCalculator()
	cap := decimal.NewFromInt(150)

	for _, value := range []int64{5, 50, 100} {
		d := percentageDiscount(value, 0, &cap)
		for _, orderValue := range []int64{100, 5000, 1000000} {
			amount := calc.Calculate(d, decimal.NewFromInt(orderValue))
			assert.True(t, amount.LessThanOrEqual(cap),
				"value=%d order=%d amount=%s", value, orderValue, amount)
		}
	}
}

func TestCalculate_MonotonicInOrderValue(t *testing.T) {
	calc := NewCalculator()
	d := percentageDiscount(15, 0, decPtr(300))

	prev := decimal.Zero
	for orderValue := int64(100); orderValue <= 5000; orderValue += 100 {
		amount := calc.Calculate(d, decimal.NewFromInt(orderValue))
		assert.True(t, amount.GreaterThanOrEqual(prev),
			"amount decreased at order=%d: %s < %s", orderValue, amount, prev)
		prev = amount
	}
}

func TestCalculate_Idempotent(t *testing.T) {
	calc := NewCalculator()
	d := percentageDiscount(13, 200, decPtr(777))
	orderValue := decimal.NewFromInt(3333)

	first := calc.Calculate(d, orderValue)
	second := calc.Calculate(d, orderValue)

	assert.True(t, first.Equal(second))
}

func TestCalculate_RoundsHalfUp(t *testing.T) {
	calc := NewCalculator()

	// 5% của 1010 = 50.5 -> 51
	d := percentageDiscount(5, 0, nil)
	amount := calc.Calculate(d, decimal.NewFromInt(1010))
	assert.True(t, amount.Equal(decimal.NewFromInt(51)), "expected 51, got %s", amount)

	// 5% của 1008 = 50.4 -> 50
	amount = calc.Calculate(d, decimal.NewFromInt(1008))
	assert.True(t, amount.Equal(decimal.NewFromInt(50)), "expected 50, got %s", amount)
}

func TestCalculate_UnknownTypeReturnsZero(t *testing.T) {
	calc := NewCalculator()

	d := &model.Discount{
		Type:  model.DiscountType("bogus"),
		Value: decimal.NewFromInt(10),
	}
	assert.True(t, calc.Calculate(d, decimal.NewFromInt(1000)).IsZero())
}

func TestFinalAmount_NormalCase(t *testing.T) {
	calc := NewCalculator()

	final := calc.FinalAmount(decimal.NewFromInt(2000), decimal.NewFromInt(100))
	assert.True(t, final.Equal(decimal.NewFromInt(1900)))
}
