package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rez-backend/internal/domains/discount/model"
	"rez-backend/pkg/clock"
)

// -------------------------------------------------------------------
// MOCKS
// -------------------------------------------------------------------

type mockDiscountRepo struct {
	findByIDFn       func(ctx context.Context, id uuid.UUID) (*model.Discount, error)
	findByCodeFn     func(ctx context.Context, code string) (*model.Discount, error)
	incrementUsageFn func(ctx context.Context, tx pgx.Tx, id uuid.UUID) (bool, error)
	deactivateFn     func(ctx context.Context, now time.Time) (int64, error)
}

func (m *mockDiscountRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Discount, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, model.ErrDiscountNotFound
}

func (m *mockDiscountRepo) FindByCode(ctx context.Context, code string) (*model.Discount, error) {
	if m.findByCodeFn != nil {
		return m.findByCodeFn(ctx, code)
	}
	return nil, model.ErrDiscountNotFound
}

func (m *mockDiscountRepo) ListActive(ctx context.Context, filter *model.ListDiscountsFilter, now time.Time) ([]*model.Discount, int, error) {
	return nil, 0, nil
}

func (m *mockDiscountRepo) ListForProduct(ctx context.Context, productID uuid.UUID, now time.Time) ([]*model.Discount, error) {
	return nil, nil
}

func (m *mockDiscountRepo) ListByApplicableOn(ctx context.Context, applicableOn model.ApplicableOn, now time.Time) ([]*model.Discount, error) {
	return nil, nil
}

func (m *mockDiscountRepo) Create(ctx context.Context, d *model.Discount) error { return nil }
func (m *mockDiscountRepo) Update(ctx context.Context, d *model.Discount) error { return nil }
func (m *mockDiscountRepo) UpdateStatus(ctx context.Context, id uuid.UUID, isActive bool) error {
	return nil
}

func (m *mockDiscountRepo) CheckCodeExists(ctx context.Context, code string, excludeID *uuid.UUID) (bool, error) {
	return false, nil
}

func (m *mockDiscountRepo) IncrementUsage(ctx context.Context, tx pgx.Tx, id uuid.UUID) (bool, error) {
	if m.incrementUsageFn != nil {
		return m.incrementUsageFn(ctx, tx, id)
	}
	return true, nil
}

func (m *mockDiscountRepo) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	if m.deactivateFn != nil {
		return m.deactivateFn(ctx, now)
	}
	return 0, nil
}

type mockUsageRepo struct {
	insertFn func(ctx context.Context, tx pgx.Tx, usage *model.DiscountUsage) error
	countFn  func(ctx context.Context, discountID, userID uuid.UUID) (int, error)
}

func (m *mockUsageRepo) Insert(ctx context.Context, tx pgx.Tx, usage *model.DiscountUsage) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, tx, usage)
	}
	return nil
}

func (m *mockUsageRepo) CountByDiscountAndUser(ctx context.Context, discountID, userID uuid.UUID) (int, error) {
	if m.countFn != nil {
		return m.countFn(ctx, discountID, userID)
	}
	return 0, nil
}

func (m *mockUsageRepo) ListByUser(ctx context.Context, userID uuid.UUID, page, limit int) ([]*model.DiscountUsage, int, error) {
	return nil, 0, nil
}

func (m *mockUsageRepo) GetAnalytics(ctx context.Context, discountID uuid.UUID) (*model.UsageAnalytics, error) {
	return &model.UsageAnalytics{DiscountID: discountID}, nil
}

type noopCache struct{}

func (noopCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	return false, nil
}
func (noopCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return nil
}
func (noopCache) Delete(ctx context.Context, keys ...string) error          { return nil }
func (noopCache) DeletePattern(ctx context.Context, pattern string) error   { return nil }
func (noopCache) Ping(ctx context.Context) error                            { return nil }

var testNow = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestService(repo *mockDiscountRepo, usageRepo *mockUsageRepo, clk clock.Clock) *DiscountService {
	return &DiscountService{
		repo:      repo,
		usageRepo: usageRepo,
		runTx: func(ctx context.Context, fn func(pgx.Tx) error) error {
			return fn(nil)
		},
		cache:      noopCache{},
		clk:        clk,
		calculator: NewCalculator(),
		evaluator: NewEvaluator(
			usageRepo.CountByDiscountAndUser,
			func(ctx context.Context, userID uuid.UUID) (int, error) { return 0, nil },
		),
	}
}

// applicableDiscount - discount 10% min 500 cap 100, active trong window chứa testNow
func applicableDiscount() *model.Discount {
	cap := decimal.NewFromInt(100)
	return &model.Discount{
		ID:                uuid.New(),
		Type:              model.DiscountTypePercentage,
		Value:             decimal.NewFromInt(10),
		MinOrderValue:     decimal.NewFromInt(500),
		MaxDiscountAmount: &cap,
		ApplicableOn:      model.ApplicableOnAll,
		ValidFrom:         testNow.Add(-24 * time.Hour),
		ValidUntil:        testNow.Add(24 * time.Hour),
		IsActive:          true,
	}
}

// -------------------------------------------------------------------
// VALIDATE
// -------------------------------------------------------------------

func TestValidate_Success(t *testing.T) {
	d := applicableDiscount()
	repo := &mockDiscountRepo{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*model.Discount, error) {
			return d, nil
		},
	}
	svc := newTestService(repo, &mockUsageRepo{}, clock.NewMockClock(testNow))

	result, err := svc.Validate(context.Background(), model.ValidateDiscountRequest{
		DiscountID: &d.ID,
		OrderValue: decimal.NewFromInt(2000),
	})
	require.NoError(t, err)

	assert.True(t, result.Valid)
	assert.True(t, result.DiscountAmount.Equal(decimal.NewFromInt(100)),
		"10%% of 2000 capped at 100, got %s", result.DiscountAmount)
	assert.True(t, result.FinalAmount.Equal(decimal.NewFromInt(1900)))
}

func TestValidate_BelowMinOrderValue(t *testing.T) {
	d := applicableDiscount()
	repo := &mockDiscountRepo{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*model.Discount, error) {
			return d, nil
		},
	}
	svc := newTestService(repo, &mockUsageRepo{}, clock.NewMockClock(testNow))

	result, err := svc.Validate(context.Background(), model.ValidateDiscountRequest{
		DiscountID: &d.ID,
		OrderValue: decimal.NewFromInt(400),
	})
	require.NoError(t, err)

	assert.False(t, result.Valid)
	assert.Equal(t, "Minimum order value of ₹500 required", result.Reason)
	assert.True(t, result.DiscountAmount.IsZero())
	assert.True(t, result.FinalAmount.Equal(decimal.NewFromInt(400)))
}

func TestValidate_ZeroAmountCarriesReason(t *testing.T) {
	// 0.01% của 600 = 0.06, round về 0: eligible nhưng không giảm đồng nào
	d := applicableDiscount()
	d.Value = decimal.NewFromFloat(0.01)
	repo := &mockDiscountRepo{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*model.Discount, error) {
			return d, nil
		},
	}
	svc := newTestService(repo, &mockUsageRepo{}, clock.NewMockClock(testNow))

	result, err := svc.Validate(context.Background(), model.ValidateDiscountRequest{
		DiscountID: &d.ID,
		OrderValue: decimal.NewFromInt(600),
	})
	require.NoError(t, err)

	assert.False(t, result.Valid)
	assert.Equal(t, model.ReasonZeroAmount, result.Reason)
	assert.True(t, result.DiscountAmount.IsZero())
	assert.True(t, result.FinalAmount.Equal(decimal.NewFromInt(600)))
}

func TestValidate_ByCode(t *testing.T) {
	d := applicableDiscount()
	code := "SAVE10"
	d.Code = &code

	var lookedUp string
	repo := &mockDiscountRepo{
		findByCodeFn: func(ctx context.Context, c string) (*model.Discount, error) {
			lookedUp = c
			return d, nil
		},
	}
	svc := newTestService(repo, &mockUsageRepo{}, clock.NewMockClock(testNow))

	result, err := svc.Validate(context.Background(), model.ValidateDiscountRequest{
		Code:       "save10",
		OrderValue: decimal.NewFromInt(2000),
	})
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Equal(t, "save10", lookedUp) // repo tự normalize uppercase
}

func TestValidate_NotFound(t *testing.T) {
	svc := newTestService(&mockDiscountRepo{}, &mockUsageRepo{}, clock.NewMockClock(testNow))

	_, err := svc.Validate(context.Background(), model.ValidateDiscountRequest{
		Code:       "NOPE",
		OrderValue: decimal.NewFromInt(1000),
	})
	assert.ErrorIs(t, err, model.ErrDiscountNotFound)
}

func TestValidate_MockClockControlsTemporalChecks(t *testing.T) {
	d := applicableDiscount()
	repo := &mockDiscountRepo{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*model.Discount, error) {
			return d, nil
		},
	}

	clk := clock.NewMockClock(testNow)
	svc := newTestService(repo, &mockUsageRepo{}, clk)

	req := model.ValidateDiscountRequest{
		DiscountID: &d.ID,
		OrderValue: decimal.NewFromInt(2000),
	}

	result, err := svc.Validate(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, result.Valid)

	// Tua clock qua valid_until: cùng request giờ phải fail
	clk.Add(72 * time.Hour)
	result, err = svc.Validate(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, "This discount has expired", result.Reason)
}

// -------------------------------------------------------------------
// APPLY
// -------------------------------------------------------------------

func TestApply_Success(t *testing.T) {
	d := applicableDiscount()
	code := "SAVE10"
	d.Code = &code

	var inserted *model.DiscountUsage
	var incremented bool

	repo := &mockDiscountRepo{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*model.Discount, error) {
			return d, nil
		},
		incrementUsageFn: func(ctx context.Context, tx pgx.Tx, id uuid.UUID) (bool, error) {
			incremented = true
			return true, nil
		},
	}
	usageRepo := &mockUsageRepo{
		insertFn: func(ctx context.Context, tx pgx.Tx, usage *model.DiscountUsage) error {
			inserted = usage
			return nil
		},
	}
	svc := newTestService(repo, usageRepo, clock.NewMockClock(testNow))

	userID := uuid.New()
	orderID := uuid.New()

	result, err := svc.Apply(context.Background(), model.ApplyDiscountRequest{
		DiscountID: d.ID,
		OrderID:    orderID,
		OrderValue: decimal.NewFromInt(2000),
		UserID:     userID,
	})
	require.NoError(t, err)

	assert.True(t, result.DiscountAmount.Equal(decimal.NewFromInt(100)))
	assert.True(t, result.FinalAmount.Equal(decimal.NewFromInt(1900)))
	assert.True(t, incremented, "used_count must be incremented")

	// Usage row giữ snapshot tại thời điểm apply
	require.NotNil(t, inserted)
	assert.Equal(t, d.ID, inserted.DiscountID)
	assert.Equal(t, userID, inserted.UserID)
	assert.Equal(t, orderID, inserted.OrderID)
	assert.Equal(t, "SAVE10", *inserted.DiscountCode)
	assert.Equal(t, model.DiscountTypePercentage, inserted.DiscountType)
	assert.True(t, inserted.DiscountValue.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, testNow, inserted.UsedAt)
}

func TestApply_ScopedDiscountSeesCartContext(t *testing.T) {
	productID := uuid.New()
	minItems := 2
	d := applicableDiscount()
	d.ApplicableOn = model.ApplicableOnSpecificProducts
	d.ApplicableProducts = []uuid.UUID{productID}
	d.Restrictions.MinItemCount = &minItems

	repo := &mockDiscountRepo{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*model.Discount, error) {
			return d, nil
		},
	}
	svc := newTestService(repo, &mockUsageRepo{}, clock.NewMockClock(testNow))

	// Cart khớp scope + đủ min item count: apply phải pass y như validate
	resp, err := svc.Apply(context.Background(), model.ApplyDiscountRequest{
		DiscountID: d.ID,
		OrderID:    uuid.New(),
		OrderValue: decimal.NewFromInt(1000),
		ProductIDs: []uuid.UUID{productID},
		ItemCount:  2,
		UserID:     uuid.New(),
	})
	require.NoError(t, err)
	assert.True(t, resp.DiscountAmount.Equal(decimal.NewFromInt(100)))

	// Cart không chứa product trong scope thì vẫn phải rớt
	_, err = svc.Apply(context.Background(), model.ApplyDiscountRequest{
		DiscountID: d.ID,
		OrderID:    uuid.New(),
		OrderValue: decimal.NewFromInt(1000),
		ProductIDs: []uuid.UUID{uuid.New()},
		ItemCount:  2,
		UserID:     uuid.New(),
	})
	ie, ok := model.AsIneligible(err)
	require.True(t, ok)
	assert.Equal(t, model.ReasonProductsNotMatch, ie.Reason)
}

func TestApply_ZeroAmount(t *testing.T) {
	// Min order 0 + value 0.01% để eligibility pass nhưng amount
	// làm tròn về 0 tại bước recompute
	d := applicableDiscount()
	d.MinOrderValue = decimal.Zero
	d.Value = decimal.NewFromFloat(0.01)
	d.MaxDiscountAmount = nil

	repo := &mockDiscountRepo{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*model.Discount, error) {
			return d, nil
		},
	}

	inserted := false
	usageRepo := &mockUsageRepo{
		insertFn: func(ctx context.Context, tx pgx.Tx, usage *model.DiscountUsage) error {
			inserted = true
			return nil
		},
	}
	svc := newTestService(repo, usageRepo, clock.NewMockClock(testNow))

	_, err := svc.Apply(context.Background(), model.ApplyDiscountRequest{
		DiscountID: d.ID,
		OrderID:    uuid.New(),
		OrderValue: decimal.NewFromInt(100), // 0.01% của 100 = 0.01 -> round về 0
		UserID:     uuid.New(),
	})

	assert.ErrorIs(t, err, model.ErrZeroAmount)
	assert.False(t, inserted, "zero-value usage must never be recorded")
}

func TestApply_IneligibleCarriesReason(t *testing.T) {
	d := applicableDiscount()
	d.UsageLimit = intPtr(1)
	d.UsedCount = 1

	repo := &mockDiscountRepo{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*model.Discount, error) {
			return d, nil
		},
	}
	svc := newTestService(repo, &mockUsageRepo{}, clock.NewMockClock(testNow))

	_, err := svc.Apply(context.Background(), model.ApplyDiscountRequest{
		DiscountID: d.ID,
		OrderID:    uuid.New(),
		OrderValue: decimal.NewFromInt(2000),
		UserID:     uuid.New(),
	})

	ie, ok := model.AsIneligible(err)
	require.True(t, ok, "expected IneligibleError, got %v", err)
	assert.Equal(t, "This discount has reached its usage limit", ie.Reason)
}

func TestApply_PerUserLimitEnforced(t *testing.T) {
	d := applicableDiscount()
	d.UsageLimitPerUser = intPtr(1)

	repo := &mockDiscountRepo{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*model.Discount, error) {
			return d, nil
		},
	}
	usageRepo := &mockUsageRepo{
		countFn: func(ctx context.Context, discountID, userID uuid.UUID) (int, error) {
			return 1, nil
		},
	}
	svc := newTestService(repo, usageRepo, clock.NewMockClock(testNow))

	_, err := svc.Apply(context.Background(), model.ApplyDiscountRequest{
		DiscountID: d.ID,
		OrderID:    uuid.New(),
		OrderValue: decimal.NewFromInt(2000),
		UserID:     uuid.New(),
	})

	ie, ok := model.AsIneligible(err)
	require.True(t, ok)
	assert.Equal(t, "You have reached the usage limit for this discount", ie.Reason)
}

func TestApply_ConcurrencyConflict(t *testing.T) {
	d := applicableDiscount()
	d.UsageLimit = intPtr(1)
	d.UsedCount = 0

	repo := &mockDiscountRepo{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*model.Discount, error) {
			return d, nil
		},
		incrementUsageFn: func(ctx context.Context, tx pgx.Tx, id uuid.UUID) (bool, error) {
			// Conditional increment không còn slot: request khác thắng
			return false, nil
		},
	}
	svc := newTestService(repo, &mockUsageRepo{}, clock.NewMockClock(testNow))

	_, err := svc.Apply(context.Background(), model.ApplyDiscountRequest{
		DiscountID: d.ID,
		OrderID:    uuid.New(),
		OrderValue: decimal.NewFromInt(2000),
		UserID:     uuid.New(),
	})

	assert.ErrorIs(t, err, model.ErrUsageLimitRace)
}

func TestApply_ConcurrentRequestsExactlyOneWins(t *testing.T) {
	// Hai request tranh slot cuối cùng của usage_limit=1:
	// conditional increment đảm bảo đúng một request thành công
	d := applicableDiscount()
	d.UsageLimit = intPtr(1)
	d.UsedCount = 0

	var mu sync.Mutex
	usedCount := 0

	repo := &mockDiscountRepo{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*model.Discount, error) {
			// Cả hai request đọc snapshot còn headroom
			copied := *d
			return &copied, nil
		},
		incrementUsageFn: func(ctx context.Context, tx pgx.Tx, id uuid.UUID) (bool, error) {
			mu.Lock()
			defer mu.Unlock()
			if usedCount >= *d.UsageLimit {
				return false, nil
			}
			usedCount++
			return true, nil
		},
	}
	svc := newTestService(repo, &mockUsageRepo{}, clock.NewMockClock(testNow))

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.Apply(context.Background(), model.ApplyDiscountRequest{
				DiscountID: d.ID,
				OrderID:    uuid.New(),
				OrderValue: decimal.NewFromInt(2000),
				UserID:     uuid.New(),
			})
			results[i] = err
		}(i)
	}
	wg.Wait()

	successes, conflicts := 0, 0
	for _, err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, model.ErrUsageLimitRace):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, successes, "exactly one request must win")
	assert.Equal(t, 1, conflicts, "the loser must see the conflict")
	assert.Equal(t, 1, usedCount, "counter must end at the limit, never past it")
}

func TestApply_InsertFailurePropagates(t *testing.T) {
	d := applicableDiscount()

	repo := &mockDiscountRepo{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*model.Discount, error) {
			return d, nil
		},
	}
	usageRepo := &mockUsageRepo{
		insertFn: func(ctx context.Context, tx pgx.Tx, usage *model.DiscountUsage) error {
			return errors.New("connection reset")
		},
	}
	svc := newTestService(repo, usageRepo, clock.NewMockClock(testNow))

	_, err := svc.Apply(context.Background(), model.ApplyDiscountRequest{
		DiscountID: d.ID,
		OrderID:    uuid.New(),
		OrderValue: decimal.NewFromInt(2000),
		UserID:     uuid.New(),
	})
	assert.Error(t, err)
}

// -------------------------------------------------------------------
// WORKER
// -------------------------------------------------------------------

func TestDeactivateExpired_UsesInjectedClock(t *testing.T) {
	var receivedNow time.Time
	repo := &mockDiscountRepo{
		deactivateFn: func(ctx context.Context, now time.Time) (int64, error) {
			receivedNow = now
			return 3, nil
		},
	}
	svc := newTestService(repo, &mockUsageRepo{}, clock.NewMockClock(testNow))

	count, err := svc.DeactivateExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
	assert.Equal(t, testNow, receivedNow)
}

func TestCreate_StoreScopeDenormalizesMerchant(t *testing.T) {
	storeID := uuid.New()
	merchantID := uuid.New()

	svc := newTestService(&mockDiscountRepo{}, &mockUsageRepo{}, clock.NewMockClock(testNow))
	svc.resolveMerchant = func(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
		assert.Equal(t, storeID, id)
		return merchantID, nil
	}

	d, err := svc.Create(context.Background(), model.CreateDiscountRequest{
		Name:         "Store opening deal",
		Type:         "percentage",
		Value:        10,
		ApplicableOn: "all",
		ValidFrom:    testNow,
		ValidUntil:   testNow.Add(24 * time.Hour),
		Scope:        "store",
		StoreID:      &storeID,
		IsActive:     true,
	})
	require.NoError(t, err)
	require.NotNil(t, d.MerchantID)
	assert.Equal(t, merchantID, *d.MerchantID)
}

func TestCreate_StoreScopeUnknownStoreRejected(t *testing.T) {
	storeID := uuid.New()

	svc := newTestService(&mockDiscountRepo{}, &mockUsageRepo{}, clock.NewMockClock(testNow))
	svc.resolveMerchant = func(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
		return uuid.Nil, errors.New("store not found")
	}

	_, err := svc.Create(context.Background(), model.CreateDiscountRequest{
		Name:         "Store opening deal",
		Type:         "percentage",
		Value:        10,
		ApplicableOn: "all",
		ValidFrom:    testNow,
		ValidUntil:   testNow.Add(24 * time.Hour),
		Scope:        "store",
		StoreID:      &storeID,
	})
	require.Error(t, err)
}
