package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	discountModel "rez-backend/internal/domains/discount/model"
	"rez-backend/internal/domains/order/model"
	"rez-backend/pkg/clock"
)

var testNow = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

// -------------------------------------------------------------------
// MOCKS
// -------------------------------------------------------------------

type mockOrderRepo struct {
	findByIDFn     func(ctx context.Context, id uuid.UUID) (*model.Order, error)
	createFn       func(ctx context.Context, o *model.Order) error
	updateStatusFn func(ctx context.Context, id uuid.UUID, from, to model.OrderStatus) error
}

func (m *mockOrderRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, model.ErrOrderNotFound
}

func (m *mockOrderRepo) ListByUser(ctx context.Context, userID uuid.UUID, page, limit int) ([]*model.Order, int, error) {
	return nil, 0, nil
}

func (m *mockOrderRepo) Create(ctx context.Context, o *model.Order) error {
	if m.createFn != nil {
		return m.createFn(ctx, o)
	}
	return nil
}

func (m *mockOrderRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.OrderStatus) error {
	if m.updateStatusFn != nil {
		return m.updateStatusFn(ctx, id, from, to)
	}
	return nil
}

func (m *mockOrderRepo) GetCompletedOrderCount(ctx context.Context, userID uuid.UUID) (int, error) {
	return 0, nil
}

type mockDiscountService struct {
	validateFn func(ctx context.Context, req discountModel.ValidateDiscountRequest) (*discountModel.ValidateDiscountResponse, error)
	applyFn    func(ctx context.Context, req discountModel.ApplyDiscountRequest) (*discountModel.ApplyDiscountResponse, error)
}

func (m *mockDiscountService) ListActive(ctx context.Context, filter *discountModel.ListDiscountsFilter) ([]*discountModel.Discount, int, error) {
	return nil, 0, nil
}

func (m *mockDiscountService) GetByID(ctx context.Context, id uuid.UUID) (*discountModel.Discount, error) {
	return nil, discountModel.ErrDiscountNotFound
}

func (m *mockDiscountService) ListBillPaymentOffers(ctx context.Context, orderValue decimal.Decimal) ([]discountModel.DiscountOfferItem, error) {
	return nil, nil
}

func (m *mockDiscountService) ListProductOffers(ctx context.Context, productID uuid.UUID, userID *uuid.UUID) ([]discountModel.DiscountOfferItem, error) {
	return nil, nil
}

func (m *mockDiscountService) Validate(ctx context.Context, req discountModel.ValidateDiscountRequest) (*discountModel.ValidateDiscountResponse, error) {
	if m.validateFn != nil {
		return m.validateFn(ctx, req)
	}
	return nil, discountModel.ErrDiscountNotFound
}

func (m *mockDiscountService) Apply(ctx context.Context, req discountModel.ApplyDiscountRequest) (*discountModel.ApplyDiscountResponse, error) {
	if m.applyFn != nil {
		return m.applyFn(ctx, req)
	}
	return nil, discountModel.ErrDiscountNotFound
}

func (m *mockDiscountService) GetUserHistory(ctx context.Context, userID uuid.UUID, page, limit int) ([]*discountModel.DiscountUsage, int, error) {
	return nil, 0, nil
}

func (m *mockDiscountService) ValidateCardOffer(ctx context.Context, req discountModel.ValidateCardOfferRequest) (*discountModel.ValidateDiscountResponse, error) {
	return nil, nil
}

func (m *mockDiscountService) Create(ctx context.Context, req discountModel.CreateDiscountRequest) (*discountModel.Discount, error) {
	return nil, nil
}

func (m *mockDiscountService) Update(ctx context.Context, id uuid.UUID, req discountModel.UpdateDiscountRequest) (*discountModel.Discount, error) {
	return nil, nil
}

func (m *mockDiscountService) SetActive(ctx context.Context, id uuid.UUID, isActive bool) error {
	return nil
}

func (m *mockDiscountService) GetAnalytics(ctx context.Context, id uuid.UUID) (*discountModel.UsageAnalytics, error) {
	return nil, nil
}

func (m *mockDiscountService) DeactivateExpired(ctx context.Context) (int64, error) {
	return 0, nil
}

// -------------------------------------------------------------------
// HELPERS
// -------------------------------------------------------------------

func twoItemRequest(userID uuid.UUID, discountID *uuid.UUID) model.CreateOrderRequest {
	return model.CreateOrderRequest{
		StoreID: uuid.New(),
		Items: []model.OrderItem{
			{ProductID: uuid.New(), CategoryID: uuid.New(), Name: "Paneer Tikka", Price: decimal.NewFromInt(800), Quantity: 2},
			{ProductID: uuid.New(), CategoryID: uuid.New(), Name: "Masala Chai", Price: decimal.NewFromInt(400), Quantity: 1},
		},
		DiscountID:    discountID,
		PaymentMethod: "online",
		UserID:        userID,
	}
}

// -------------------------------------------------------------------
// TESTS
// -------------------------------------------------------------------

func TestCreate_WithoutDiscount(t *testing.T) {
	var created *model.Order
	repo := &mockOrderRepo{
		createFn: func(ctx context.Context, o *model.Order) error {
			created = o
			return nil
		},
	}
	svc := NewOrderService(repo, &mockDiscountService{}, clock.NewMockClock(testNow), nil, nil)

	order, err := svc.Create(context.Background(), twoItemRequest(uuid.New(), nil))
	require.NoError(t, err)
	require.NotNil(t, created)

	// 800*2 + 400 = 2000
	assert.True(t, order.Subtotal.Equal(decimal.NewFromInt(2000)))
	assert.True(t, order.Total.Equal(decimal.NewFromInt(2000)))
	assert.True(t, order.DiscountAmount.IsZero())
	assert.Equal(t, model.StatusPending, order.Status)
	assert.Contains(t, order.OrderNumber, "ORD-20260615-")
}

func TestCreate_WithDiscount_AppliesAndDeducts(t *testing.T) {
	userID := uuid.New()
	discountID := uuid.New()

	var applyReq discountModel.ApplyDiscountRequest
	discounts := &mockDiscountService{
		validateFn: func(ctx context.Context, req discountModel.ValidateDiscountRequest) (*discountModel.ValidateDiscountResponse, error) {
			require.NotNil(t, req.UserID)
			assert.Equal(t, userID, *req.UserID)
			assert.Equal(t, 3, req.ItemCount)
			assert.Len(t, req.ProductIDs, 2)
			return &discountModel.ValidateDiscountResponse{
				Valid:          true,
				DiscountAmount: decimal.NewFromInt(100),
				FinalAmount:    decimal.NewFromInt(1900),
			}, nil
		},
		applyFn: func(ctx context.Context, req discountModel.ApplyDiscountRequest) (*discountModel.ApplyDiscountResponse, error) {
			applyReq = req
			return &discountModel.ApplyDiscountResponse{
				UsageID:        uuid.New(),
				DiscountID:     req.DiscountID,
				DiscountAmount: decimal.NewFromInt(100),
				FinalAmount:    decimal.NewFromInt(1900),
				UsedAt:         testNow,
			}, nil
		},
	}
	svc := NewOrderService(&mockOrderRepo{}, discounts, clock.NewMockClock(testNow), nil, nil)

	order, err := svc.Create(context.Background(), twoItemRequest(userID, &discountID))
	require.NoError(t, err)

	assert.Equal(t, discountID, applyReq.DiscountID)
	assert.Equal(t, order.ID, applyReq.OrderID)
	// Apply recheck chạy lại eligibility nên phải thấy đúng cart context
	assert.Len(t, applyReq.ProductIDs, 2)
	assert.Equal(t, 3, applyReq.ItemCount)
	assert.True(t, order.DiscountAmount.Equal(decimal.NewFromInt(100)))
	assert.True(t, order.Total.Equal(decimal.NewFromInt(1900)))
}

func TestCreate_ResolvesCategoriesFromProductDomain(t *testing.T) {
	userID := uuid.New()
	discountID := uuid.New()
	resolvedCategory := uuid.New()

	var validateReq discountModel.ValidateDiscountRequest
	var applyReq discountModel.ApplyDiscountRequest
	discounts := &mockDiscountService{
		validateFn: func(ctx context.Context, req discountModel.ValidateDiscountRequest) (*discountModel.ValidateDiscountResponse, error) {
			validateReq = req
			return &discountModel.ValidateDiscountResponse{Valid: true}, nil
		},
		applyFn: func(ctx context.Context, req discountModel.ApplyDiscountRequest) (*discountModel.ApplyDiscountResponse, error) {
			applyReq = req
			return &discountModel.ApplyDiscountResponse{DiscountID: req.DiscountID}, nil
		},
	}
	resolver := func(ctx context.Context, productIDs []uuid.UUID) ([]uuid.UUID, error) {
		assert.Len(t, productIDs, 2)
		return []uuid.UUID{resolvedCategory}, nil
	}
	svc := NewOrderService(&mockOrderRepo{}, discounts, clock.NewMockClock(testNow), resolver, nil)

	_, err := svc.Create(context.Background(), twoItemRequest(userID, &discountID))
	require.NoError(t, err)

	// Category đến từ product lookup, không phải từ request items,
	// và validate lẫn apply thấy cùng một danh sách
	assert.Equal(t, []uuid.UUID{resolvedCategory}, validateReq.CategoryIDs)
	assert.Equal(t, []uuid.UUID{resolvedCategory}, applyReq.CategoryIDs)
}

func TestCreate_IneligibleDiscount_RejectsOrder(t *testing.T) {
	discountID := uuid.New()
	discounts := &mockDiscountService{
		validateFn: func(ctx context.Context, req discountModel.ValidateDiscountRequest) (*discountModel.ValidateDiscountResponse, error) {
			return &discountModel.ValidateDiscountResponse{
				Valid:  false,
				Reason: discountModel.ReasonExpired,
			}, nil
		},
	}

	inserted := false
	repo := &mockOrderRepo{
		createFn: func(ctx context.Context, o *model.Order) error {
			inserted = true
			return nil
		},
	}
	svc := NewOrderService(repo, discounts, clock.NewMockClock(testNow), nil, nil)

	_, err := svc.Create(context.Background(), twoItemRequest(uuid.New(), &discountID))
	require.Error(t, err)

	ineligible, ok := discountModel.AsIneligible(err)
	require.True(t, ok)
	assert.Equal(t, discountModel.ReasonExpired, ineligible.Reason)
	assert.False(t, inserted, "order must not be inserted when discount is ineligible")
}

func TestUpdateStatus_ValidTransition(t *testing.T) {
	orderID := uuid.New()
	repo := &mockOrderRepo{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*model.Order, error) {
			return &model.Order{ID: orderID, Status: model.StatusPending}, nil
		},
	}
	svc := NewOrderService(repo, &mockDiscountService{}, clock.NewMockClock(testNow), nil, nil)

	err := svc.UpdateStatus(context.Background(), orderID, model.StatusConfirmed)
	assert.NoError(t, err)
}

func TestUpdateStatus_InvalidTransition(t *testing.T) {
	orderID := uuid.New()
	repo := &mockOrderRepo{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*model.Order, error) {
			return &model.Order{ID: orderID, Status: model.StatusCompleted}, nil
		},
	}
	svc := NewOrderService(repo, &mockDiscountService{}, clock.NewMockClock(testNow), nil, nil)

	err := svc.UpdateStatus(context.Background(), orderID, model.StatusPending)
	assert.ErrorIs(t, err, model.ErrInvalidTransition)
}

func TestUpdateStatus_CompletedFiresHook(t *testing.T) {
	orderID := uuid.New()
	userID := uuid.New()
	repo := &mockOrderRepo{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*model.Order, error) {
			return &model.Order{
				ID:     orderID,
				UserID: userID,
				Status: model.StatusConfirmed,
				Total:  decimal.NewFromInt(1500),
			}, nil
		},
	}

	var hookOrder *model.Order
	svc := NewOrderService(repo, &mockDiscountService{}, clock.NewMockClock(testNow), nil,
		func(ctx context.Context, order *model.Order) {
			hookOrder = order
		})

	err := svc.UpdateStatus(context.Background(), orderID, model.StatusCompleted)
	require.NoError(t, err)
	require.NotNil(t, hookOrder, "completion hook must fire")
	assert.Equal(t, userID, hookOrder.UserID)
	assert.Equal(t, model.StatusCompleted, hookOrder.Status)
}

func TestUpdateStatus_CancelledDoesNotFireHook(t *testing.T) {
	orderID := uuid.New()
	repo := &mockOrderRepo{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*model.Order, error) {
			return &model.Order{ID: orderID, Status: model.StatusPending}, nil
		},
	}

	fired := false
	svc := NewOrderService(repo, &mockDiscountService{}, clock.NewMockClock(testNow), nil,
		func(ctx context.Context, order *model.Order) {
			fired = true
		})

	err := svc.UpdateStatus(context.Background(), orderID, model.StatusCancelled)
	require.NoError(t, err)
	assert.False(t, fired)
}
