package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rez-backend/internal/domains/discount/model"
)

func intPtr(v int) *int { return &v }

// baseDiscount trả về discount pass mọi check với context mặc định
func baseDiscount() *model.Discount {
	return &model.Discount{
		ID:            uuid.New(),
		Type:          model.DiscountTypePercentage,
		Value:         decimal.NewFromInt(10),
		MinOrderValue: decimal.NewFromInt(500),
		ApplicableOn:  model.ApplicableOnAll,
		ValidFrom:     time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		ValidUntil:    time.Date(2026, 12, 31, 23, 59, 59, 0, time.UTC),
		IsActive:      true,
	}
}

func baseContext() OrderContext {
	return OrderContext{
		OrderValue: decimal.NewFromInt(2000),
		ItemCount:  3,
		Now:        time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC),
		IsOnline:   true,
	}
}

func newTestEvaluator(usageCount int, completedOrders int) *Evaluator {
	return NewEvaluator(
		func(ctx context.Context, discountID, userID uuid.UUID) (int, error) {
			return usageCount, nil
		},
		func(ctx context.Context, userID uuid.UUID) (int, error) {
			return completedOrders, nil
		},
	)
}

func TestCanApply_AllChecksPass(t *testing.T) {
	e := newTestEvaluator(0, 0)

	result, err := e.CanApply(context.Background(), baseDiscount(), baseContext())
	require.NoError(t, err)
	assert.True(t, result.Can)
	assert.Empty(t, result.Reason)
}

func TestCanApply_Inactive(t *testing.T) {
	e := newTestEvaluator(0, 0)

	d := baseDiscount()
	d.IsActive = false

	result, err := e.CanApply(context.Background(), d, baseContext())
	require.NoError(t, err)
	assert.False(t, result.Can)
	assert.Equal(t, "This discount is not active", result.Reason)
}

func TestCanApply_NotYetActive(t *testing.T) {
	e := newTestEvaluator(0, 0)

	d := baseDiscount()
	octx := baseContext()
	octx.Now = d.ValidFrom.Add(-time.Second)

	result, err := e.CanApply(context.Background(), d, octx)
	require.NoError(t, err)
	assert.False(t, result.Can)
	assert.Equal(t, "This discount is not yet active", result.Reason)
}

func TestCanApply_Expired(t *testing.T) {
	e := newTestEvaluator(0, 0)

	d := baseDiscount()
	octx := baseContext()
	octx.Now = d.ValidUntil.Add(time.Second)

	result, err := e.CanApply(context.Background(), d, octx)
	require.NoError(t, err)
	assert.False(t, result.Can)
	assert.Equal(t, "This discount has expired", result.Reason)
}

func TestCanApply_WindowBoundariesInclusive(t *testing.T) {
	e := newTestEvaluator(0, 0)
	d := baseDiscount()

	for _, now := range []time.Time{d.ValidFrom, d.ValidUntil} {
		octx := baseContext()
		octx.Now = now

		result, err := e.CanApply(context.Background(), d, octx)
		require.NoError(t, err)
		assert.True(t, result.Can, "boundary %s must be inclusive", now)
	}
}

func TestCanApply_NeverPassesOutsideWindow(t *testing.T) {
	e := newTestEvaluator(0, 0)
	d := baseDiscount()

	outside := []time.Time{
		d.ValidFrom.Add(-24 * time.Hour),
		d.ValidFrom.Add(-time.Nanosecond),
		d.ValidUntil.Add(time.Nanosecond),
		d.ValidUntil.Add(24 * time.Hour),
	}
	for _, now := range outside {
		octx := baseContext()
		octx.Now = now

		result, err := e.CanApply(context.Background(), d, octx)
		require.NoError(t, err)
		assert.False(t, result.Can, "must reject at %s", now)
	}
}

func TestCanApply_UsageLimitReached(t *testing.T) {
	e := newTestEvaluator(0, 0)

	// usage_limit chiếm ưu thế trước mọi field khác phía sau
	d := baseDiscount()
	d.UsageLimit = intPtr(1)
	d.UsedCount = 1
	d.MinOrderValue = decimal.NewFromInt(999999) // check 5 không bao giờ chạy tới

	result, err := e.CanApply(context.Background(), d, baseContext())
	require.NoError(t, err)
	assert.False(t, result.Can)
	assert.Equal(t, "This discount has reached its usage limit", result.Reason)
}

func TestCanApply_UsageLimitWithHeadroom(t *testing.T) {
	e := newTestEvaluator(0, 0)

	d := baseDiscount()
	d.UsageLimit = intPtr(10)
	d.UsedCount = 9

	result, err := e.CanApply(context.Background(), d, baseContext())
	require.NoError(t, err)
	assert.True(t, result.Can)
}

func TestCanApply_MinOrderValueEmbedsThreshold(t *testing.T) {
	e := newTestEvaluator(0, 0)

	d := baseDiscount()
	octx := baseContext()
	octx.OrderValue = decimal.NewFromInt(400)

	result, err := e.CanApply(context.Background(), d, octx)
	require.NoError(t, err)
	assert.False(t, result.Can)
	assert.Equal(t, "Minimum order value of ₹500 required", result.Reason)
}

func TestCanApply_SpecificProducts(t *testing.T) {
	e := newTestEvaluator(0, 0)

	target := uuid.New()
	d := baseDiscount()
	d.ApplicableOn = model.ApplicableOnSpecificProducts
	d.ApplicableProducts = []uuid.UUID{target}

	// Cart không có product nào
	octx := baseContext()
	result, err := e.CanApply(context.Background(), d, octx)
	require.NoError(t, err)
	assert.False(t, result.Can)
	assert.Equal(t, "This discount is only valid for specific products", result.Reason)

	// Cart có product không match
	octx.ProductIDs = []uuid.UUID{uuid.New()}
	result, err = e.CanApply(context.Background(), d, octx)
	require.NoError(t, err)
	assert.False(t, result.Can)
	assert.Equal(t, "This discount is not applicable to selected products", result.Reason)

	// Cart có product match
	octx.ProductIDs = []uuid.UUID{uuid.New(), target}
	result, err = e.CanApply(context.Background(), d, octx)
	require.NoError(t, err)
	assert.True(t, result.Can)
}

func TestCanApply_SpecificCategories(t *testing.T) {
	e := newTestEvaluator(0, 0)

	target := uuid.New()
	d := baseDiscount()
	d.ApplicableOn = model.ApplicableOnSpecificCategories
	d.ApplicableCategories = []uuid.UUID{target}

	octx := baseContext()
	octx.CategoryIDs = []uuid.UUID{uuid.New()}

	result, err := e.CanApply(context.Background(), d, octx)
	require.NoError(t, err)
	assert.False(t, result.Can)
	assert.Equal(t, "This discount is not applicable to selected categories", result.Reason)

	octx.CategoryIDs = append(octx.CategoryIDs, target)
	result, err = e.CanApply(context.Background(), d, octx)
	require.NoError(t, err)
	assert.True(t, result.Can)
}

func TestCanApply_BillPaymentScope(t *testing.T) {
	e := newTestEvaluator(0, 0)

	d := baseDiscount()
	d.ApplicableOn = model.ApplicableOnBillPayment

	octx := baseContext()
	result, err := e.CanApply(context.Background(), d, octx)
	require.NoError(t, err)
	assert.False(t, result.Can)

	octx.PaymentMethod = "bill"
	result, err = e.CanApply(context.Background(), d, octx)
	require.NoError(t, err)
	assert.True(t, result.Can)
}

func TestCanApply_NewUsersOnly(t *testing.T) {
	userID := uuid.New()

	d := baseDiscount()
	d.Restrictions.NewUsersOnly = true

	octx := baseContext()
	octx.UserID = &userID

	// User đã có order completed
	e := newTestEvaluator(0, 3)
	result, err := e.CanApply(context.Background(), d, octx)
	require.NoError(t, err)
	assert.False(t, result.Can)
	assert.Equal(t, "This discount is only available for new users", result.Reason)

	// User mới
	e = newTestEvaluator(0, 0)
	result, err = e.CanApply(context.Background(), d, octx)
	require.NoError(t, err)
	assert.True(t, result.Can)
}

func TestCanApply_ItemCountBounds(t *testing.T) {
	e := newTestEvaluator(0, 0)

	d := baseDiscount()
	d.Restrictions.MinItemCount = intPtr(2)
	d.Restrictions.MaxItemCount = intPtr(5)

	octx := baseContext()

	octx.ItemCount = 1
	result, err := e.CanApply(context.Background(), d, octx)
	require.NoError(t, err)
	assert.False(t, result.Can)
	assert.Equal(t, "This discount requires at least 2 items in your cart", result.Reason)

	octx.ItemCount = 6
	result, err = e.CanApply(context.Background(), d, octx)
	require.NoError(t, err)
	assert.False(t, result.Can)
	assert.Equal(t, "This discount allows at most 5 items in your cart", result.Reason)

	octx.ItemCount = 3
	result, err = e.CanApply(context.Background(), d, octx)
	require.NoError(t, err)
	assert.True(t, result.Can)
}

func TestCanApply_MinItemCountZeroIsEnforced(t *testing.T) {
	// "không set" (nil) khác với "set 0": pointer giữ phân biệt đó
	e := newTestEvaluator(0, 0)

	d := baseDiscount()
	d.Restrictions.MinItemCount = intPtr(0)

	octx := baseContext()
	octx.ItemCount = 0

	result, err := e.CanApply(context.Background(), d, octx)
	require.NoError(t, err)
	assert.True(t, result.Can)
}

func TestCanApply_ExcludedProducts(t *testing.T) {
	e := newTestEvaluator(0, 0)

	excluded := uuid.New()
	d := baseDiscount()
	d.Restrictions.ExcludedProducts = []uuid.UUID{excluded}

	octx := baseContext()
	octx.ProductIDs = []uuid.UUID{uuid.New(), excluded}

	result, err := e.CanApply(context.Background(), d, octx)
	require.NoError(t, err)
	assert.False(t, result.Can)
	assert.Equal(t, "This discount cannot be used with some items in your cart", result.Reason)
}

func TestCanApply_OfflineOnly(t *testing.T) {
	e := newTestEvaluator(0, 0)

	d := baseDiscount()
	d.Restrictions.IsOfflineOnly = true

	octx := baseContext()
	octx.IsOnline = true

	result, err := e.CanApply(context.Background(), d, octx)
	require.NoError(t, err)
	assert.False(t, result.Can)

	octx.IsOnline = false
	result, err = e.CanApply(context.Background(), d, octx)
	require.NoError(t, err)
	assert.True(t, result.Can)
}

func TestCanApply_SingleVoucherPerBill(t *testing.T) {
	e := newTestEvaluator(0, 0)

	d := baseDiscount()
	d.Restrictions.SingleVoucherPerBill = true

	octx := baseContext()
	octx.HasOtherVoucher = true

	result, err := e.CanApply(context.Background(), d, octx)
	require.NoError(t, err)
	assert.False(t, result.Can)
	assert.Equal(t, "Only one voucher can be applied per bill", result.Reason)
}

func TestCanApply_PerUserLimitReached(t *testing.T) {
	userID := uuid.New()

	d := baseDiscount()
	d.UsageLimitPerUser = intPtr(2)

	octx := baseContext()
	octx.UserID = &userID

	e := newTestEvaluator(2, 0)
	result, err := e.CanApply(context.Background(), d, octx)
	require.NoError(t, err)
	assert.False(t, result.Can)
	assert.Equal(t, "You have reached the usage limit for this discount", result.Reason)

	e = newTestEvaluator(1, 0)
	result, err = e.CanApply(context.Background(), d, octx)
	require.NoError(t, err)
	assert.True(t, result.Can)
}

func TestCanApply_PerUserLimitSkippedForAnonymous(t *testing.T) {
	// Anonymous preview: per-user limit không check được trước khi
	// đăng nhập, enforcement nằm ở flow apply
	counterCalled := false
	e := NewEvaluator(
		func(ctx context.Context, discountID, userID uuid.UUID) (int, error) {
			counterCalled = true
			return 999, nil
		},
		func(ctx context.Context, userID uuid.UUID) (int, error) {
			return 0, nil
		},
	)

	d := baseDiscount()
	d.UsageLimitPerUser = intPtr(1)

	octx := baseContext()
	octx.UserID = nil

	result, err := e.CanApply(context.Background(), d, octx)
	require.NoError(t, err)
	assert.True(t, result.Can)
	assert.False(t, counterCalled, "usage counter must not run for anonymous context")
}

func TestCanApply_CheckOrderFirstFailureWins(t *testing.T) {
	e := newTestEvaluator(0, 0)

	// Discount fail đồng thời nhiều check: inactive thắng vì đứng đầu chuỗi
	d := baseDiscount()
	d.IsActive = false
	d.UsageLimit = intPtr(1)
	d.UsedCount = 5
	d.MinOrderValue = decimal.NewFromInt(999999)

	octx := baseContext()
	octx.Now = d.ValidUntil.Add(time.Hour)

	result, err := e.CanApply(context.Background(), d, octx)
	require.NoError(t, err)
	assert.Equal(t, "This discount is not active", result.Reason)
}
