package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"rez-backend/internal/domains/discount/model"
)

// ServiceInterface định nghĩa business logic cho discount domain
type ServiceInterface interface {
	// Public
	ListActive(ctx context.Context, filter *model.ListDiscountsFilter) ([]*model.Discount, int, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Discount, error)
	ListBillPaymentOffers(ctx context.Context, orderValue decimal.Decimal) ([]model.DiscountOfferItem, error)
	ListProductOffers(ctx context.Context, productID uuid.UUID, userID *uuid.UUID) ([]model.DiscountOfferItem, error)
	Validate(ctx context.Context, req model.ValidateDiscountRequest) (*model.ValidateDiscountResponse, error)
	Apply(ctx context.Context, req model.ApplyDiscountRequest) (*model.ApplyDiscountResponse, error)
	GetUserHistory(ctx context.Context, userID uuid.UUID, page, limit int) ([]*model.DiscountUsage, int, error)
	ValidateCardOffer(ctx context.Context, req model.ValidateCardOfferRequest) (*model.ValidateDiscountResponse, error)

	// Admin
	Create(ctx context.Context, req model.CreateDiscountRequest) (*model.Discount, error)
	Update(ctx context.Context, id uuid.UUID, req model.UpdateDiscountRequest) (*model.Discount, error)
	SetActive(ctx context.Context, id uuid.UUID, isActive bool) error
	GetAnalytics(ctx context.Context, id uuid.UUID) (*model.UsageAnalytics, error)

	// Worker
	DeactivateExpired(ctx context.Context) (int64, error)
}
