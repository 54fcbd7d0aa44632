package service

import (
	"context"

	"github.com/google/uuid"

	"rez-backend/internal/domains/consultation/model"
	"rez-backend/internal/domains/consultation/repository"
	"rez-backend/pkg/clock"
)

// ServiceInterface định nghĩa business logic cho consultation domain
type ServiceInterface interface {
	Create(ctx context.Context, userID uuid.UUID, req model.CreateConsultationRequest) (*model.Consultation, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Consultation, error)
	ListByUser(ctx context.Context, userID uuid.UUID, page, limit int) ([]*model.Consultation, int, error)
	ListByStore(ctx context.Context, storeID uuid.UUID, page, limit int) ([]*model.Consultation, int, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, next model.ConsultationStatus) (*model.Consultation, error)
	Cancel(ctx context.Context, id, userID uuid.UUID) (*model.Consultation, error)
}

// ConsultationService xử lý business logic cho consultation
type ConsultationService struct {
	repo repository.ConsultationRepository
	clk  clock.Clock
}

func NewConsultationService(repo repository.ConsultationRepository, clk clock.Clock) ServiceInterface {
	return &ConsultationService{repo: repo, clk: clk}
}

func (s *ConsultationService) Create(ctx context.Context, userID uuid.UUID, req model.CreateConsultationRequest) (*model.Consultation, error) {
	now := s.clk.Now()
	if !req.ScheduledAt.After(now) {
		return nil, model.ErrSlotInPast
	}

	consultation := &model.Consultation{
		ID:          uuid.New(),
		StoreID:     req.StoreID,
		UserID:      userID,
		ScheduledAt: req.ScheduledAt,
		Note:        req.Note,
		Status:      model.StatusRequested,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, consultation); err != nil {
		return nil, err
	}
	return consultation, nil
}

func (s *ConsultationService) GetByID(ctx context.Context, id uuid.UUID) (*model.Consultation, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *ConsultationService) ListByUser(ctx context.Context, userID uuid.UUID, page, limit int) ([]*model.Consultation, int, error) {
	page, limit = normalizePage(page, limit)
	return s.repo.ListByUser(ctx, userID, page, limit)
}

func (s *ConsultationService) ListByStore(ctx context.Context, storeID uuid.UUID, page, limit int) ([]*model.Consultation, int, error) {
	page, limit = normalizePage(page, limit)
	return s.repo.ListByStore(ctx, storeID, page, limit)
}

// UpdateStatus validate transition trên bản ghi hiện tại rồi đẩy guard xuống
// SQL: WHERE status = <from> chặn hai request chuyển trạng thái cùng lúc.
func (s *ConsultationService) UpdateStatus(ctx context.Context, id uuid.UUID, next model.ConsultationStatus) (*model.Consultation, error) {
	consultation, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !consultation.Status.CanTransitionTo(next) {
		return nil, model.ErrInvalidTransition
	}

	if err := s.repo.UpdateStatus(ctx, id, consultation.Status, next); err != nil {
		return nil, err
	}

	consultation.Status = next
	consultation.UpdatedAt = s.clk.Now()
	return consultation, nil
}

// Cancel cho phép chính chủ booking hủy khi còn ở requested/confirmed.
func (s *ConsultationService) Cancel(ctx context.Context, id, userID uuid.UUID) (*model.Consultation, error) {
	consultation, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if consultation.UserID != userID {
		return nil, model.ErrConsultationNotFound
	}
	if !consultation.Status.CanTransitionTo(model.StatusCancelled) {
		return nil, model.ErrInvalidTransition
	}

	if err := s.repo.UpdateStatus(ctx, id, consultation.Status, model.StatusCancelled); err != nil {
		return nil, err
	}

	consultation.Status = model.StatusCancelled
	consultation.UpdatedAt = s.clk.Now()
	return consultation, nil
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 20
	}
	return page, limit
}
