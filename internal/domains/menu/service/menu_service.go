package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"rez-backend/internal/domains/menu/model"
	"rez-backend/internal/domains/menu/repository"
	"rez-backend/pkg/cache"
)

const menuCacheTTL = 5 * time.Minute

// ServiceInterface định nghĩa business logic cho menu domain
type ServiceInterface interface {
	GetMenuByStore(ctx context.Context, storeID uuid.UUID) ([]*model.MenuSection, error)
	CreateSection(ctx context.Context, req model.CreateSectionRequest) (*model.MenuSection, error)
	UpdateSection(ctx context.Context, id uuid.UUID, req model.CreateSectionRequest) (*model.MenuSection, error)
	DeleteSection(ctx context.Context, id uuid.UUID) error
	CreateItem(ctx context.Context, req model.CreateItemRequest) (*model.MenuItem, error)
	UpdateItem(ctx context.Context, id uuid.UUID, req model.CreateItemRequest) (*model.MenuItem, error)
	SetItemAvailability(ctx context.Context, id uuid.UUID, available bool) error
	DeleteItem(ctx context.Context, id uuid.UUID) error
}

// MenuService xử lý business logic cho menu
type MenuService struct {
	repo  repository.MenuRepository
	cache cache.Cache
}

func NewMenuService(repo repository.MenuRepository, cacheClient cache.Cache) ServiceInterface {
	return &MenuService{repo: repo, cache: cacheClient}
}

// GetMenuByStore đọc menu qua cache: menu thay đổi ít, TTL ngắn là đủ.
func (s *MenuService) GetMenuByStore(ctx context.Context, storeID uuid.UUID) ([]*model.MenuSection, error) {
	cacheKey := menuCacheKey(storeID)

	var sections []*model.MenuSection
	if found, err := s.cache.Get(ctx, cacheKey, &sections); err == nil && found {
		return sections, nil
	}

	sections, err := s.repo.GetMenuByStore(ctx, storeID)
	if err != nil {
		return nil, err
	}

	_ = s.cache.Set(ctx, cacheKey, sections, menuCacheTTL)
	return sections, nil
}

func (s *MenuService) CreateSection(ctx context.Context, req model.CreateSectionRequest) (*model.MenuSection, error) {
	now := time.Now()
	section := &model.MenuSection{
		ID:        uuid.New(),
		StoreID:   req.StoreID,
		Name:      req.Name,
		SortOrder: req.SortOrder,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateSection(ctx, section); err != nil {
		return nil, err
	}
	s.invalidateMenu(ctx, section.StoreID)
	return section, nil
}

func (s *MenuService) UpdateSection(ctx context.Context, id uuid.UUID, req model.CreateSectionRequest) (*model.MenuSection, error) {
	section, err := s.repo.FindSectionByID(ctx, id)
	if err != nil {
		return nil, err
	}

	section.Name = req.Name
	section.SortOrder = req.SortOrder
	section.UpdatedAt = time.Now()

	if err := s.repo.UpdateSection(ctx, section); err != nil {
		return nil, err
	}
	s.invalidateMenu(ctx, section.StoreID)
	return section, nil
}

func (s *MenuService) DeleteSection(ctx context.Context, id uuid.UUID) error {
	section, err := s.repo.FindSectionByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteSection(ctx, id); err != nil {
		return err
	}
	s.invalidateMenu(ctx, section.StoreID)
	return nil
}

func (s *MenuService) CreateItem(ctx context.Context, req model.CreateItemRequest) (*model.MenuItem, error) {
	section, err := s.repo.FindSectionByID(ctx, req.SectionID)
	if err != nil {
		return nil, err
	}

	available := true
	if req.IsAvailable != nil {
		available = *req.IsAvailable
	}

	now := time.Now()
	item := &model.MenuItem{
		ID:          uuid.New(),
		SectionID:   req.SectionID,
		Name:        req.Name,
		Description: req.Description,
		Price:       decimal.NewFromFloat(req.Price),
		IsVeg:       req.IsVeg,
		IsAvailable: available,
		ImageURL:    req.ImageURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.CreateItem(ctx, item); err != nil {
		return nil, err
	}
	s.invalidateMenu(ctx, section.StoreID)
	return item, nil
}

func (s *MenuService) UpdateItem(ctx context.Context, id uuid.UUID, req model.CreateItemRequest) (*model.MenuItem, error) {
	item, err := s.repo.FindItemByID(ctx, id)
	if err != nil {
		return nil, err
	}

	item.Name = req.Name
	item.Description = req.Description
	item.Price = decimal.NewFromFloat(req.Price)
	item.IsVeg = req.IsVeg
	if req.IsAvailable != nil {
		item.IsAvailable = *req.IsAvailable
	}
	item.ImageURL = req.ImageURL
	item.UpdatedAt = time.Now()

	if err := s.repo.UpdateItem(ctx, item); err != nil {
		return nil, err
	}
	s.invalidateMenuBySection(ctx, item.SectionID)
	return item, nil
}

func (s *MenuService) SetItemAvailability(ctx context.Context, id uuid.UUID, available bool) error {
	item, err := s.repo.FindItemByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.SetItemAvailability(ctx, id, available); err != nil {
		return err
	}
	s.invalidateMenuBySection(ctx, item.SectionID)
	return nil
}

func (s *MenuService) DeleteItem(ctx context.Context, id uuid.UUID) error {
	item, err := s.repo.FindItemByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteItem(ctx, id); err != nil {
		return err
	}
	s.invalidateMenuBySection(ctx, item.SectionID)
	return nil
}

func menuCacheKey(storeID uuid.UUID) string {
	return fmt.Sprintf("menus:store:%s", storeID)
}

func (s *MenuService) invalidateMenu(ctx context.Context, storeID uuid.UUID) {
	_ = s.cache.Delete(ctx, menuCacheKey(storeID))
}

func (s *MenuService) invalidateMenuBySection(ctx context.Context, sectionID uuid.UUID) {
	section, err := s.repo.FindSectionByID(ctx, sectionID)
	if err != nil {
		return
	}
	s.invalidateMenu(ctx, section.StoreID)
}
