package service

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	discountModel "rez-backend/internal/domains/discount/model"
	discountService "rez-backend/internal/domains/discount/service"
	"rez-backend/internal/domains/order/model"
	"rez-backend/internal/domains/order/repository"
	"rez-backend/pkg/clock"
	"rez-backend/pkg/logger"
)

// ServiceInterface định nghĩa business logic cho order domain
type ServiceInterface interface {
	Create(ctx context.Context, req model.CreateOrderRequest) (*model.Order, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID, page, limit int) ([]*model.Order, int, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) error
	GetCompletedOrderCount(ctx context.Context, userID uuid.UUID) (int, error)
}

// OrderService xử lý business logic cho order, tích hợp discount flow
type OrderService struct {
	repo      repository.OrderRepository
	discounts discountService.ServiceInterface
	clk       clock.Clock

	// Lookup category từ product domain. Category client gửi trong
	// items không đáng tin cho discount matching.
	// Truyền function để tránh import cycle.
	resolveCategories func(ctx context.Context, productIDs []uuid.UUID) ([]uuid.UUID, error)

	// Hook cho coin domain: award coins khi đơn chuyển completed.
	onCompleted func(ctx context.Context, order *model.Order)
}

// NewOrderService tạo service mới
func NewOrderService(
	repo repository.OrderRepository,
	discounts discountService.ServiceInterface,
	clk clock.Clock,
	resolveCategories func(ctx context.Context, productIDs []uuid.UUID) ([]uuid.UUID, error),
	onCompleted func(ctx context.Context, order *model.Order),
) ServiceInterface {
	return &OrderService{
		repo:              repo,
		discounts:         discounts,
		clk:               clk,
		resolveCategories: resolveCategories,
		onCompleted:       onCompleted,
	}
}

// Create tạo đơn hàng, optional áp discount.
//
// Flow với discount:
// 1. Validate discount với full order context (eligibility + amount)
// 2. Apply: ghi usage ledger + increment counter (transaction riêng
//    của discount domain)
// 3. Insert order với discount amount đã chốt
//
// Apply trước insert: nếu insert order fail sau khi apply thành công,
// hệ thống còn lại một usage row mồ côi - vô hại vì chỉ là audit trail,
// ngược lại (order có discount nhưng chưa ghi usage) mới là lỗi đếm.
func (s *OrderService) Create(ctx context.Context, req model.CreateOrderRequest) (*model.Order, error) {
	now := s.clk.Now()
	subtotal := req.Subtotal()
	orderID := uuid.New()

	discountAmount := decimal.Zero
	if req.DiscountID != nil {
		categoryIDs := req.CategoryIDs()
		if s.resolveCategories != nil {
			resolved, err := s.resolveCategories(ctx, req.ProductIDs())
			if err != nil {
				return nil, fmt.Errorf("resolve order categories: %w", err)
			}
			categoryIDs = resolved
		}

		validateReq := discountModel.ValidateDiscountRequest{
			DiscountID:    req.DiscountID,
			OrderValue:    subtotal,
			ProductIDs:    req.ProductIDs(),
			CategoryIDs:   categoryIDs,
			ItemCount:     req.ItemCount(),
			PaymentMethod: req.PaymentMethod,
			UserID:        &req.UserID,
		}
		result, err := s.discounts.Validate(ctx, validateReq)
		if err != nil {
			return nil, err
		}
		if !result.Valid {
			return nil, discountModel.NewIneligible(result.Reason)
		}

		applied, err := s.discounts.Apply(ctx, discountModel.ApplyDiscountRequest{
			DiscountID:    *req.DiscountID,
			OrderID:       orderID,
			OrderValue:    subtotal,
			ProductIDs:    req.ProductIDs(),
			CategoryIDs:   categoryIDs,
			ItemCount:     req.ItemCount(),
			PaymentMethod: req.PaymentMethod,
			UserID:        req.UserID,
		})
		if err != nil {
			return nil, err
		}
		discountAmount = applied.DiscountAmount
	}

	total := subtotal.Sub(discountAmount)
	if total.IsNegative() {
		total = decimal.Zero
	}

	order := &model.Order{
		ID:             orderID,
		OrderNumber:    generateOrderNumber(now),
		UserID:         req.UserID,
		StoreID:        req.StoreID,
		Items:          req.Items,
		Subtotal:       subtotal,
		DiscountID:     req.DiscountID,
		DiscountAmount: discountAmount,
		Total:          total,
		Status:         model.StatusPending,
		PaymentMethod:  req.PaymentMethod,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.Create(ctx, order); err != nil {
		return nil, err
	}

	logger.Info("Order created", map[string]interface{}{
		"order_id":        order.ID.String(),
		"order_number":    order.OrderNumber,
		"user_id":         order.UserID.String(),
		"total":           order.Total.String(),
		"discount_amount": discountAmount.String(),
	})
	return order, nil
}

func (s *OrderService) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *OrderService) ListByUser(ctx context.Context, userID uuid.UUID, page, limit int) ([]*model.Order, int, error) {
	return s.repo.ListByUser(ctx, userID, page, limit)
}

// UpdateStatus chuyển trạng thái đơn, validate transition trước khi ghi
func (s *OrderService) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) error {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if !order.Status.CanTransitionTo(status) {
		return model.ErrInvalidTransition
	}

	if err := s.repo.UpdateStatus(ctx, id, order.Status, status); err != nil {
		return err
	}

	if status == model.StatusCompleted && s.onCompleted != nil {
		order.Status = status
		s.onCompleted(ctx, order)
	}
	return nil
}

func (s *OrderService) GetCompletedOrderCount(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.repo.GetCompletedOrderCount(ctx, userID)
}

// generateOrderNumber sinh mã đơn dạng ORD-20260615-XXXXXX
func generateOrderNumber(now time.Time) string {
	return fmt.Sprintf("ORD-%s-%06d", now.Format("20060102"), rand.Intn(1000000))
}
