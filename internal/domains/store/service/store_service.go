package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"rez-backend/internal/domains/store/model"
	"rez-backend/internal/domains/store/repository"
	"rez-backend/internal/shared/utils"
)

// ServiceInterface định nghĩa business logic cho store domain
type ServiceInterface interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Store, error)
	GetBySlug(ctx context.Context, slug string) (*model.Store, error)
	GetMerchantID(ctx context.Context, storeID uuid.UUID) (uuid.UUID, error)
	List(ctx context.Context, filter *model.ListStoresFilter) ([]*model.Store, int, error)
	Create(ctx context.Context, req model.CreateStoreRequest) (*model.Store, error)
	Update(ctx context.Context, id uuid.UUID, req model.CreateStoreRequest) (*model.Store, error)
	SetActive(ctx context.Context, id uuid.UUID, isActive bool) error
}

// StoreService xử lý business logic cho store
type StoreService struct {
	repo repository.StoreRepository
}

// NewStoreService tạo service mới
func NewStoreService(repo repository.StoreRepository) ServiceInterface {
	return &StoreService{repo: repo}
}

func (s *StoreService) GetByID(ctx context.Context, id uuid.UUID) (*model.Store, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *StoreService) GetBySlug(ctx context.Context, slug string) (*model.Store, error) {
	return s.repo.FindBySlug(ctx, slug)
}

func (s *StoreService) GetMerchantID(ctx context.Context, storeID uuid.UUID) (uuid.UUID, error) {
	return s.repo.GetMerchantID(ctx, storeID)
}

func (s *StoreService) List(ctx context.Context, filter *model.ListStoresFilter) ([]*model.Store, int, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 50 {
		filter.Limit = 20
	}
	return s.repo.List(ctx, filter)
}

func (s *StoreService) Create(ctx context.Context, req model.CreateStoreRequest) (*model.Store, error) {
	now := time.Now()
	store := &model.Store{
		ID:          uuid.New(),
		MerchantID:  req.MerchantID,
		Name:        req.Name,
		Slug:        utils.GenerateSlug(req.Name),
		Description: req.Description,
		LogoURL:     req.LogoURL,
		AddressLine: req.AddressLine,
		City:        req.City,
		State:       req.State,
		Pincode:     req.Pincode,
		Rating:      decimal.Zero,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, store); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *StoreService) Update(ctx context.Context, id uuid.UUID, req model.CreateStoreRequest) (*model.Store, error) {
	store, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	store.Name = req.Name
	store.Slug = utils.GenerateSlug(req.Name)
	store.Description = req.Description
	store.LogoURL = req.LogoURL
	store.AddressLine = req.AddressLine
	store.City = req.City
	store.State = req.State
	store.Pincode = req.Pincode
	store.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, store); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *StoreService) SetActive(ctx context.Context, id uuid.UUID, isActive bool) error {
	return s.repo.UpdateStatus(ctx, id, isActive)
}
