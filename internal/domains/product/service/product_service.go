package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"rez-backend/internal/domains/product/model"
	"rez-backend/internal/domains/product/repository"
	"rez-backend/internal/shared/utils"
)

// ServiceInterface định nghĩa business logic cho product domain
type ServiceInterface interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	GetCategoryIDs(ctx context.Context, productIDs []uuid.UUID) ([]uuid.UUID, error)
	List(ctx context.Context, filter *model.ListProductsFilter) ([]*model.Product, int, error)
	Create(ctx context.Context, req model.CreateProductRequest) (*model.Product, error)
	Update(ctx context.Context, id uuid.UUID, req model.CreateProductRequest) (*model.Product, error)
	SetActive(ctx context.Context, id uuid.UUID, isActive bool) error
}

// ProductService xử lý business logic cho product
type ProductService struct {
	repo repository.ProductRepository
}

// NewProductService tạo service mới
func NewProductService(repo repository.ProductRepository) ServiceInterface {
	return &ProductService{repo: repo}
}

func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *ProductService) GetCategoryIDs(ctx context.Context, productIDs []uuid.UUID) ([]uuid.UUID, error) {
	return s.repo.GetCategoryIDs(ctx, productIDs)
}

func (s *ProductService) List(ctx context.Context, filter *model.ListProductsFilter) ([]*model.Product, int, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 50 {
		filter.Limit = 20
	}
	return s.repo.List(ctx, filter)
}

func (s *ProductService) Create(ctx context.Context, req model.CreateProductRequest) (*model.Product, error) {
	now := time.Now()

	var originalPrice *decimal.Decimal
	if req.OriginalPrice != nil {
		op := decimal.NewFromFloat(*req.OriginalPrice)
		originalPrice = &op
	}

	product := &model.Product{
		ID:            uuid.New(),
		StoreID:       req.StoreID,
		CategoryID:    req.CategoryID,
		Name:          req.Name,
		Slug:          utils.GenerateSlug(req.Name),
		Description:   req.Description,
		Price:         decimal.NewFromFloat(req.Price),
		OriginalPrice: originalPrice,
		Stock:         req.Stock,
		Images:        req.Images,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *ProductService) Update(ctx context.Context, id uuid.UUID, req model.CreateProductRequest) (*model.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var originalPrice *decimal.Decimal
	if req.OriginalPrice != nil {
		op := decimal.NewFromFloat(*req.OriginalPrice)
		originalPrice = &op
	}

	product.CategoryID = req.CategoryID
	product.Name = req.Name
	product.Slug = utils.GenerateSlug(req.Name)
	product.Description = req.Description
	product.Price = decimal.NewFromFloat(req.Price)
	product.OriginalPrice = originalPrice
	product.Stock = req.Stock
	product.Images = req.Images
	product.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *ProductService) SetActive(ctx context.Context, id uuid.UUID, isActive bool) error {
	return s.repo.UpdateStatus(ctx, id, isActive)
}
