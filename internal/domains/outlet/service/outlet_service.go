package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"rez-backend/internal/domains/outlet/model"
	"rez-backend/internal/domains/outlet/repository"
)

const (
	defaultRadiusKm = 5.0
	maxRadiusKm     = 50.0
	maxNearbyLimit  = 50
)

// ServiceInterface định nghĩa business logic cho outlet domain
type ServiceInterface interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Outlet, error)
	ListByStore(ctx context.Context, storeID uuid.UUID) ([]*model.Outlet, error)
	FindNearby(ctx context.Context, lat, lng, radiusKm float64) ([]*model.NearbyOutlet, error)
	Create(ctx context.Context, req model.CreateOutletRequest) (*model.Outlet, error)
	Update(ctx context.Context, id uuid.UUID, req model.CreateOutletRequest) (*model.Outlet, error)
}

// OutletService xử lý business logic cho outlet
type OutletService struct {
	repo repository.OutletRepository
}

// NewOutletService tạo service mới
func NewOutletService(repo repository.OutletRepository) ServiceInterface {
	return &OutletService{repo: repo}
}

func (s *OutletService) GetByID(ctx context.Context, id uuid.UUID) (*model.Outlet, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *OutletService) ListByStore(ctx context.Context, storeID uuid.UUID) ([]*model.Outlet, error) {
	return s.repo.ListByStore(ctx, storeID)
}

func (s *OutletService) FindNearby(ctx context.Context, lat, lng, radiusKm float64) ([]*model.NearbyOutlet, error) {
	if radiusKm <= 0 {
		radiusKm = defaultRadiusKm
	}
	if radiusKm > maxRadiusKm {
		radiusKm = maxRadiusKm
	}
	return s.repo.FindNearby(ctx, lat, lng, radiusKm, maxNearbyLimit)
}

func (s *OutletService) Create(ctx context.Context, req model.CreateOutletRequest) (*model.Outlet, error) {
	now := time.Now()
	outlet := &model.Outlet{
		ID:          uuid.New(),
		StoreID:     req.StoreID,
		Name:        req.Name,
		AddressLine: req.AddressLine,
		City:        req.City,
		Pincode:     req.Pincode,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Phone:       req.Phone,
		OpensAt:     req.OpensAt,
		ClosesAt:    req.ClosesAt,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, outlet); err != nil {
		return nil, err
	}
	return outlet, nil
}

func (s *OutletService) Update(ctx context.Context, id uuid.UUID, req model.CreateOutletRequest) (*model.Outlet, error) {
	outlet, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	outlet.Name = req.Name
	outlet.AddressLine = req.AddressLine
	outlet.City = req.City
	outlet.Pincode = req.Pincode
	outlet.Latitude = req.Latitude
	outlet.Longitude = req.Longitude
	outlet.Phone = req.Phone
	outlet.OpensAt = req.OpensAt
	outlet.ClosesAt = req.ClosesAt
	outlet.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, outlet); err != nil {
		return nil, err
	}
	return outlet, nil
}
