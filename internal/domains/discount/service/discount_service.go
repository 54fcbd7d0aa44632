package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"rez-backend/internal/domains/discount/model"
	"rez-backend/internal/domains/discount/repository"
	"rez-backend/pkg/cache"
	"rez-backend/pkg/clock"
	"rez-backend/pkg/database"
	"rez-backend/pkg/logger"
)

const (
	cacheKeyBillOffers  = "discounts:offers:bill_payment"
	cacheKeyCardOffers  = "discounts:offers:card_payment"
	cachePatternOffers  = "discounts:offers:*"
	offerCacheTTL       = 2 * time.Minute
)

// TxRunner chạy một function trong transaction. Mặc định wrap
// database.WithTransaction trên pgxpool; test thay bằng runner giả.
type TxRunner func(ctx context.Context, fn func(pgx.Tx) error) error

// MerchantIDFunc resolve merchant của một store - lookup từ store domain,
// truyền function để tránh import cycle.
type MerchantIDFunc func(ctx context.Context, storeID uuid.UUID) (uuid.UUID, error)

// DiscountService điều phối evaluator + calculator + usage recorder
type DiscountService struct {
	repo            repository.DiscountRepository
	usageRepo       repository.UsageRepository
	runTx           TxRunner
	cache           cache.Cache
	clk             clock.Clock
	calculator      *Calculator
	evaluator       *Evaluator
	resolveMerchant MerchantIDFunc
}

// NewDiscountService tạo service mới. orderCount là lookup từ order domain
// (số order completed của user) - truyền function để tránh import cycle.
func NewDiscountService(
	repo repository.DiscountRepository,
	usageRepo repository.UsageRepository,
	pool *pgxpool.Pool,
	cacheClient cache.Cache,
	clk clock.Clock,
	orderCount CompletedOrderCountFunc,
	resolveMerchant MerchantIDFunc,
) ServiceInterface {
	calculator := NewCalculator()
	evaluator := NewEvaluator(usageRepo.CountByDiscountAndUser, orderCount)

	return &DiscountService{
		repo:      repo,
		usageRepo: usageRepo,
		runTx: func(ctx context.Context, fn func(pgx.Tx) error) error {
			return database.WithTransaction(ctx, pool, fn)
		},
		cache:           cacheClient,
		clk:             clk,
		calculator:      calculator,
		evaluator:       evaluator,
		resolveMerchant: resolveMerchant,
	}
}

// -------------------------------------------------------------------
// PUBLIC OPERATIONS
// -------------------------------------------------------------------

// ListActive liệt kê discount active với filter + pagination
func (s *DiscountService) ListActive(ctx context.Context, filter *model.ListDiscountsFilter) ([]*model.Discount, int, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 50 {
		filter.Limit = 20
	}
	return s.repo.ListActive(ctx, filter, s.clk.Now())
}

// GetByID lấy chi tiết một discount
func (s *DiscountService) GetByID(ctx context.Context, id uuid.UUID) (*model.Discount, error) {
	return s.repo.FindByID(ctx, id)
}

// ListBillPaymentOffers liệt kê offers bill payment, mỗi dòng kèm số tiền
// giảm tính trên orderValue và flag can_apply. Không filter min-order ở đây:
// client hiển thị cả offer chưa đủ điều kiện kèm lý do.
func (s *DiscountService) ListBillPaymentOffers(ctx context.Context, orderValue decimal.Decimal) ([]model.DiscountOfferItem, error) {
	discounts, err := s.cachedOffersList(ctx, cacheKeyBillOffers, model.ApplicableOnBillPayment)
	if err != nil {
		return nil, err
	}

	items := make([]model.DiscountOfferItem, 0, len(discounts))
	for _, d := range discounts {
		amount := s.calculator.Calculate(d, orderValue)
		items = append(items, model.DiscountOfferItem{
			Discount:       d,
			DiscountAmount: amount,
			CanApply:       amount.IsPositive() && d.HasUsageHeadroom(),
		})
	}
	return items, nil
}

// ListProductOffers liệt kê offers áp dụng được cho một product.
// Khi user đã đăng nhập, lọc bỏ offer user đã dùng hết per-user limit.
func (s *DiscountService) ListProductOffers(ctx context.Context, productID uuid.UUID, userID *uuid.UUID) ([]model.DiscountOfferItem, error) {
	discounts, err := s.repo.ListForProduct(ctx, productID, s.clk.Now())
	if err != nil {
		return nil, err
	}

	items := make([]model.DiscountOfferItem, 0, len(discounts))
	for _, d := range discounts {
		if !d.HasUsageHeadroom() {
			continue
		}
		if userID != nil && d.UsageLimitPerUser != nil {
			count, err := s.usageRepo.CountByDiscountAndUser(ctx, d.ID, *userID)
			if err != nil {
				return nil, fmt.Errorf("count user usage: %w", err)
			}
			if count >= *d.UsageLimitPerUser {
				continue
			}
		}
		items = append(items, model.DiscountOfferItem{
			Discount: d,
			CanApply: true,
		})
	}
	return items, nil
}

// Validate chạy full eligibility + tính amount cho một order context.
// Rejection nghiệp vụ trả về trong response (Valid=false + Reason),
// không phải error - error chỉ dành cho infrastructure failure.
func (s *DiscountService) Validate(ctx context.Context, req model.ValidateDiscountRequest) (*model.ValidateDiscountResponse, error) {
	d, err := s.resolveDiscount(ctx, req.Code, req.DiscountID)
	if err != nil {
		return nil, err
	}

	octx := OrderContext{
		UserID:        req.UserID,
		OrderValue:    req.OrderValue,
		ProductIDs:    req.ProductIDs,
		CategoryIDs:   req.CategoryIDs,
		ItemCount:     req.ItemCount,
		PaymentMethod: req.PaymentMethod,
		IsOnline:      req.PaymentMethod != "offline",
		Now:           s.clk.Now(),
	}

	result, err := s.evaluator.CanApply(ctx, d, octx)
	if err != nil {
		return nil, err
	}
	if !result.Can {
		return &model.ValidateDiscountResponse{
			Valid:          false,
			Reason:         result.Reason,
			DiscountAmount: decimal.Zero,
			FinalAmount:    req.OrderValue,
		}, nil
	}

	amount := s.calculator.Calculate(d, req.OrderValue)
	resp := &model.ValidateDiscountResponse{
		Valid:          amount.IsPositive(),
		Discount:       d,
		DiscountAmount: amount,
		FinalAmount:    s.calculator.FinalAmount(req.OrderValue, amount),
	}
	if !resp.Valid {
		resp.Reason = model.ReasonZeroAmount
	}
	return resp, nil
}

// Apply ghi nhận một lần sử dụng discount. Toàn bộ trong một transaction:
//
//  1. Recompute amount - bằng 0 thì fail với ErrZeroAmount, không bao giờ
//     ghi usage row giá trị 0
//  2. Insert usage row với snapshot code/type/value tại thời điểm này
//  3. Conditional increment used_count - 0 rows affected nghĩa là request
//     song song đã chiếm slot cuối, trả ErrUsageLimitRace và rollback
//     luôn cả usage row. Caller không retry.
func (s *DiscountService) Apply(ctx context.Context, req model.ApplyDiscountRequest) (*model.ApplyDiscountResponse, error) {
	d, err := s.repo.FindByID(ctx, req.DiscountID)
	if err != nil {
		return nil, err
	}

	now := s.clk.Now()
	octx := OrderContext{
		UserID:        &req.UserID,
		OrderValue:    req.OrderValue,
		ProductIDs:    req.ProductIDs,
		CategoryIDs:   req.CategoryIDs,
		ItemCount:     req.ItemCount,
		PaymentMethod: req.PaymentMethod,
		IsOnline:      req.PaymentMethod != "offline",
		Now:           now,
	}

	result, err := s.evaluator.CanApply(ctx, d, octx)
	if err != nil {
		return nil, err
	}
	if !result.Can {
		return nil, model.NewIneligible(result.Reason)
	}

	amount := s.calculator.Calculate(d, req.OrderValue)
	if amount.IsZero() {
		return nil, model.ErrZeroAmount
	}

	usage := &model.DiscountUsage{
		ID:             uuid.New(),
		DiscountID:     d.ID,
		UserID:         req.UserID,
		OrderID:        req.OrderID,
		DiscountAmount: amount,
		OrderValue:     req.OrderValue,
		UsedAt:         now,
		DiscountCode:   d.Code,
		DiscountType:   d.Type,
		DiscountValue:  d.Value,
	}

	err = s.runTx(ctx, func(tx pgx.Tx) error {
		if err := s.usageRepo.Insert(ctx, tx, usage); err != nil {
			return err
		}
		ok, err := s.repo.IncrementUsage(ctx, tx, d.ID)
		if err != nil {
			return err
		}
		if !ok {
			return model.ErrUsageLimitRace
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Discount applied", map[string]interface{}{
		"discount_id": d.ID.String(),
		"user_id":     req.UserID.String(),
		"order_id":    req.OrderID.String(),
		"amount":      amount.String(),
	})

	return &model.ApplyDiscountResponse{
		UsageID:        usage.ID,
		DiscountID:     d.ID,
		DiscountAmount: amount,
		FinalAmount:    s.calculator.FinalAmount(req.OrderValue, amount),
		UsedAt:         now,
	}, nil
}

// GetUserHistory trả về lịch sử usage của user, phân trang
func (s *DiscountService) GetUserHistory(ctx context.Context, userID uuid.UUID, page, limit int) ([]*model.DiscountUsage, int, error) {
	return s.usageRepo.ListByUser(ctx, userID, page, limit)
}

// ValidateCardOffer tìm card offer tốt nhất match với thẻ (theo BIN/loại/bank),
// trả về offer có amount cao nhất
func (s *DiscountService) ValidateCardOffer(ctx context.Context, req model.ValidateCardOfferRequest) (*model.ValidateDiscountResponse, error) {
	offers, err := s.cachedOffersList(ctx, cacheKeyCardOffers, model.ApplicableOnCardPayment)
	if err != nil {
		return nil, err
	}

	bin := req.CardNumber
	if len(bin) > 6 {
		bin = bin[:6]
	}

	var (
		best       *model.Discount
		bestAmount = decimal.Zero
	)
	for _, d := range offers {
		if !d.MatchesCard(req.CardType, req.Bank, bin) || !d.HasUsageHeadroom() {
			continue
		}
		amount := s.calculator.Calculate(d, req.OrderValue)
		if amount.GreaterThan(bestAmount) {
			best = d
			bestAmount = amount
		}
	}

	if best == nil {
		return &model.ValidateDiscountResponse{
			Valid:          false,
			Reason:         "No card offers available for this card",
			DiscountAmount: decimal.Zero,
			FinalAmount:    req.OrderValue,
		}, nil
	}

	return &model.ValidateDiscountResponse{
		Valid:          true,
		Discount:       best,
		DiscountAmount: bestAmount,
		FinalAmount:    s.calculator.FinalAmount(req.OrderValue, bestAmount),
	}, nil
}

// -------------------------------------------------------------------
// ADMIN OPERATIONS
// -------------------------------------------------------------------

// Create tạo discount mới từ admin request
func (s *DiscountService) Create(ctx context.Context, req model.CreateDiscountRequest) (*model.Discount, error) {
	d, err := s.buildFromRequest(req)
	if err != nil {
		return nil, err
	}
	if err := s.fillScopeMerchant(ctx, d); err != nil {
		return nil, err
	}

	if d.Code != nil {
		exists, err := s.repo.CheckCodeExists(ctx, *d.Code, nil)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, model.ErrDuplicateCode
		}
	}

	now := s.clk.Now()
	d.ID = uuid.New()
	d.CreatedAt = now
	d.UpdatedAt = now

	if err := s.repo.Create(ctx, d); err != nil {
		return nil, err
	}

	s.invalidateOfferCache(ctx)
	return d, nil
}

// Update ghi đè config discount. used_count giữ nguyên.
func (s *DiscountService) Update(ctx context.Context, id uuid.UUID, req model.UpdateDiscountRequest) (*model.Discount, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	d, err := s.buildFromRequest(req)
	if err != nil {
		return nil, err
	}
	if err := s.fillScopeMerchant(ctx, d); err != nil {
		return nil, err
	}

	if d.Code != nil {
		exists, err := s.repo.CheckCodeExists(ctx, *d.Code, &id)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, model.ErrDuplicateCode
		}
	}

	d.ID = id
	d.UsedCount = existing.UsedCount
	d.CreatedAt = existing.CreatedAt
	d.UpdatedAt = s.clk.Now()

	if err := s.repo.Update(ctx, d); err != nil {
		return nil, err
	}

	s.invalidateOfferCache(ctx)
	return d, nil
}

// SetActive bật/tắt discount (không bao giờ xóa)
func (s *DiscountService) SetActive(ctx context.Context, id uuid.UUID, isActive bool) error {
	if err := s.repo.UpdateStatus(ctx, id, isActive); err != nil {
		return err
	}
	s.invalidateOfferCache(ctx)
	return nil
}

// GetAnalytics trả về aggregate trên usage ledger cho admin dashboard
func (s *DiscountService) GetAnalytics(ctx context.Context, id uuid.UUID) (*model.UsageAnalytics, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, err
	}
	return s.usageRepo.GetAnalytics(ctx, id)
}

// DeactivateExpired tắt các discount đã qua valid_until (worker gọi định kỳ)
func (s *DiscountService) DeactivateExpired(ctx context.Context) (int64, error) {
	count, err := s.repo.DeactivateExpired(ctx, s.clk.Now())
	if err != nil {
		return 0, err
	}
	if count > 0 {
		s.invalidateOfferCache(ctx)
		logger.Info("Expired discounts deactivated", map[string]interface{}{
			"count": count,
		})
	}
	return count, nil
}

// -------------------------------------------------------------------
// HELPERS
// -------------------------------------------------------------------

// fillScopeMerchant denormalize merchant_id cho discount scope store,
// đồng thời verify store tồn tại trước khi ghi
func (s *DiscountService) fillScopeMerchant(ctx context.Context, d *model.Discount) error {
	if d.Scope != model.ScopeStore || d.StoreID == nil || s.resolveMerchant == nil {
		return nil
	}
	merchantID, err := s.resolveMerchant(ctx, *d.StoreID)
	if err != nil {
		return fmt.Errorf("resolve store merchant: %w", err)
	}
	d.MerchantID = &merchantID
	return nil
}

// resolveDiscount tìm discount theo id hoặc code (ưu tiên id)
func (s *DiscountService) resolveDiscount(ctx context.Context, code string, id *uuid.UUID) (*model.Discount, error) {
	if id != nil {
		return s.repo.FindByID(ctx, *id)
	}
	return s.repo.FindByCode(ctx, code)
}

// cachedOffersList đọc listing theo applicable_on qua cache ngắn hạn
func (s *DiscountService) cachedOffersList(ctx context.Context, key string, applicableOn model.ApplicableOn) ([]*model.Discount, error) {
	var cached []*model.Discount
	if found, err := s.cache.Get(ctx, key, &cached); err == nil && found {
		return cached, nil
	}

	discounts, err := s.repo.ListByApplicableOn(ctx, applicableOn, s.clk.Now())
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, discounts, offerCacheTTL); err != nil {
		// Cache fail không chặn response
		logger.Debug("Failed to cache offers list", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
	return discounts, nil
}

func (s *DiscountService) invalidateOfferCache(ctx context.Context) {
	if err := s.cache.DeletePattern(ctx, cachePatternOffers); err != nil {
		logger.Debug("Failed to invalidate offer cache", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

// buildFromRequest chuyển admin request về entity, validate enum values
func (s *DiscountService) buildFromRequest(req model.CreateDiscountRequest) (*model.Discount, error) {
	dType := model.DiscountType(req.Type)
	if !dType.IsValid() {
		return nil, fmt.Errorf("invalid discount type: %s", req.Type)
	}
	applicableOn := model.ApplicableOn(req.ApplicableOn)
	if !applicableOn.IsValid() {
		return nil, fmt.Errorf("invalid applicable_on: %s", req.ApplicableOn)
	}
	scope := model.DiscountScope(req.Scope)
	if !scope.IsValid() {
		return nil, fmt.Errorf("invalid scope: %s", req.Scope)
	}

	var code *string
	if req.Code != nil && *req.Code != "" {
		normalized := model.NormalizeCode(*req.Code)
		code = &normalized
	}

	var maxAmount *decimal.Decimal
	if req.MaxDiscountAmount != nil {
		m := decimal.NewFromFloat(*req.MaxDiscountAmount)
		maxAmount = &m
	}

	return &model.Discount{
		Code:        code,
		Name:        req.Name,
		Description: req.Description,

		Type:              dType,
		Value:             decimal.NewFromFloat(req.Value),
		MinOrderValue:     decimal.NewFromFloat(req.MinOrderValue),
		MaxDiscountAmount: maxAmount,

		ApplicableOn:         applicableOn,
		ApplicableProducts:   req.ApplicableProducts,
		ApplicableCategories: req.ApplicableCategories,
		CardOffer:            req.CardOffer,

		ValidFrom:  req.ValidFrom,
		ValidUntil: req.ValidUntil,

		UsageLimit:        req.UsageLimit,
		UsageLimitPerUser: req.UsageLimitPerUser,
		Priority:          req.Priority,
		Restrictions:      req.Restrictions,

		Scope:      scope,
		MerchantID: req.MerchantID,
		StoreID:    req.StoreID,

		IsActive: req.IsActive,
	}, nil
}
