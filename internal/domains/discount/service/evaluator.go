package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"rez-backend/internal/domains/discount/model"
)

// OrderContext - ngữ cảnh order tại thời điểm check eligibility
type OrderContext struct {
	UserID      *uuid.UUID // nil cho anonymous checkout
	OrderValue  decimal.Decimal
	ProductIDs  []uuid.UUID
	CategoryIDs []uuid.UUID
	ItemCount   int
	Now         time.Time

	// Flags cho restriction checks
	IsOnline         bool // online order (restriction is_offline_only)
	HasStoreDiscount bool // đơn đã có store-level discount
	HasOtherVoucher  bool // đơn đã gắn voucher khác (single_voucher_per_bill)

	PaymentMethod string // "bill" / "card" cho các scope tương ứng
}

// UsageCountFunc đếm số lần một user đã dùng một discount (từ ledger)
type UsageCountFunc func(ctx context.Context, discountID, userID uuid.UUID) (int, error)

// CompletedOrderCountFunc đếm số order đã hoàn thành của user (cho new_users_only)
type CompletedOrderCountFunc func(ctx context.Context, userID uuid.UUID) (int, error)

// Evaluator kiểm tra một discount có áp dụng được cho một order context không.
// Chuỗi check short-circuit: check đầu tiên fail quyết định reason, không side effect.
type Evaluator struct {
	usageCount UsageCountFunc
	orderCount CompletedOrderCountFunc
}

// NewEvaluator tạo instance mới
func NewEvaluator(usageCount UsageCountFunc, orderCount CompletedOrderCountFunc) *Evaluator {
	return &Evaluator{
		usageCount: usageCount,
		orderCount: orderCount,
	}
}

// CanApply chạy chuỗi eligibility checks theo thứ tự cố định:
//
//  1. is_active
//  2. now >= valid_from (inclusive)
//  3. now <= valid_until (inclusive)
//  4. global usage limit còn slot
//  5. order value >= min_order_value
//  6. applicability scope (products/categories/bill/card)
//  7. restrictions - mỗi field một veto độc lập
//  8. per-user limit (đếm từ ledger; skip khi anonymous - preview chỉ
//     mang tính advisory, enforcement nằm ở flow apply có auth)
//
// Error trả về chỉ khi lookup hạ tầng fail; mọi rejection nghiệp vụ
// nằm trong EligibilityResult.Reason.
func (e *Evaluator) CanApply(ctx context.Context, d *model.Discount, octx OrderContext) (model.EligibilityResult, error) {
	// 1. Active flag
	if !d.IsActive {
		return model.Ineligible(model.ReasonNotActive), nil
	}

	// 2-3. Temporal window, cả hai mốc inclusive
	if octx.Now.Before(d.ValidFrom) {
		return model.Ineligible(model.ReasonNotYetActive), nil
	}
	if octx.Now.After(d.ValidUntil) {
		return model.Ineligible(model.ReasonExpired), nil
	}

	// 4. Global usage limit
	if !d.HasUsageHeadroom() {
		return model.Ineligible(model.ReasonUsageLimitReached), nil
	}

	// 5. Minimum order value
	if octx.OrderValue.LessThan(d.MinOrderValue) {
		return model.Ineligible(model.MinOrderReason(d.MinOrderValue)), nil
	}

	// 6. Applicability scope
	if result := e.checkApplicability(d, octx); !result.Can {
		return result, nil
	}

	// 7. Restrictions
	if result, err := e.checkRestrictions(ctx, d, octx); err != nil {
		return model.EligibilityResult{}, err
	} else if !result.Can {
		return result, nil
	}

	// 8. Per-user limit - chỉ enforce được khi biết user
	if d.UsageLimitPerUser != nil && octx.UserID != nil {
		count, err := e.usageCount(ctx, d.ID, *octx.UserID)
		if err != nil {
			return model.EligibilityResult{}, fmt.Errorf("count user usage: %w", err)
		}
		if count >= *d.UsageLimitPerUser {
			return model.Ineligible(model.ReasonUserLimitReached), nil
		}
	}

	return model.Eligible(), nil
}

// checkApplicability dispatch theo applicable_on. Switch exhaustive:
// thêm scope mới phải thêm case ở đây.
func (e *Evaluator) checkApplicability(d *model.Discount, octx OrderContext) model.EligibilityResult {
	switch d.ApplicableOn {
	case model.ApplicableOnAll:
		return model.Eligible()

	case model.ApplicableOnSpecificProducts:
		if len(octx.ProductIDs) == 0 {
			return model.Ineligible(model.ReasonNoProductsInCart)
		}
		if !intersects(octx.ProductIDs, d.ApplicableProducts) {
			return model.Ineligible(model.ReasonProductsNotMatch)
		}
		return model.Eligible()

	case model.ApplicableOnSpecificCategories:
		if len(octx.CategoryIDs) == 0 {
			return model.Ineligible(model.ReasonNoCategoriesInCart)
		}
		if !intersects(octx.CategoryIDs, d.ApplicableCategories) {
			return model.Ineligible(model.ReasonCategoriesNotMatch)
		}
		return model.Eligible()

	case model.ApplicableOnBillPayment:
		if octx.PaymentMethod != "bill" {
			return model.Ineligible(model.ReasonBillPaymentOnly)
		}
		return model.Eligible()

	case model.ApplicableOnCardPayment:
		if octx.PaymentMethod != "card" {
			return model.Ineligible(model.ReasonCardPaymentOnly)
		}
		return model.Eligible()

	default:
		return model.Ineligible(model.ReasonNotActive)
	}
}

// checkRestrictions chạy các veto độc lập trong restriction block
func (e *Evaluator) checkRestrictions(ctx context.Context, d *model.Discount, octx OrderContext) (model.EligibilityResult, error) {
	r := d.Restrictions

	if r.NewUsersOnly && octx.UserID != nil {
		completed, err := e.orderCount(ctx, *octx.UserID)
		if err != nil {
			return model.EligibilityResult{}, fmt.Errorf("count completed orders: %w", err)
		}
		if completed > 0 {
			return model.Ineligible(model.ReasonNewUsersOnly), nil
		}
	}

	// Item count bounds - pointer phân biệt "không set" với 0
	if r.MinItemCount != nil && octx.ItemCount < *r.MinItemCount {
		return model.Ineligible(model.MinItemCountReason(*r.MinItemCount)), nil
	}
	if r.MaxItemCount != nil && octx.ItemCount > *r.MaxItemCount {
		return model.Ineligible(model.MaxItemCountReason(*r.MaxItemCount)), nil
	}

	if len(r.ExcludedProducts) > 0 && intersects(octx.ProductIDs, r.ExcludedProducts) {
		return model.Ineligible(model.ReasonExcludedItems), nil
	}
	if len(r.ExcludedCategories) > 0 && intersects(octx.CategoryIDs, r.ExcludedCategories) {
		return model.Ineligible(model.ReasonExcludedItems), nil
	}

	if r.SingleVoucherPerBill && octx.HasOtherVoucher {
		return model.Ineligible(model.ReasonSingleVoucher), nil
	}
	if r.IsOfflineOnly && octx.IsOnline {
		return model.Ineligible(model.ReasonOfflineOnly), nil
	}
	if r.NotValidAboveStoreDiscount && octx.HasStoreDiscount {
		return model.Ineligible(model.ReasonNotAboveStoreOffer), nil
	}

	return model.Eligible(), nil
}

func intersects(a, b []uuid.UUID) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	set := make(map[uuid.UUID]struct{}, len(b))
	for _, id := range b {
		set[id] = struct{}{}
	}
	for _, id := range a {
		if _, ok := set[id]; ok {
			return true
		}
	}
	return false
}
