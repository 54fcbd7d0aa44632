package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rez-backend/internal/domains/consultation/model"
	"rez-backend/pkg/clock"
)

var testNow = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

type mockConsultationRepo struct {
	findByIDFn     func(ctx context.Context, id uuid.UUID) (*model.Consultation, error)
	createFn       func(ctx context.Context, c *model.Consultation) error
	updateStatusFn func(ctx context.Context, id uuid.UUID, from, to model.ConsultationStatus) error
}

func (m *mockConsultationRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Consultation, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, model.ErrConsultationNotFound
}

func (m *mockConsultationRepo) ListByUser(ctx context.Context, userID uuid.UUID, page, limit int) ([]*model.Consultation, int, error) {
	return nil, 0, nil
}

func (m *mockConsultationRepo) ListByStore(ctx context.Context, storeID uuid.UUID, page, limit int) ([]*model.Consultation, int, error) {
	return nil, 0, nil
}

func (m *mockConsultationRepo) Create(ctx context.Context, c *model.Consultation) error {
	if m.createFn != nil {
		return m.createFn(ctx, c)
	}
	return nil
}

func (m *mockConsultationRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.ConsultationStatus) error {
	if m.updateStatusFn != nil {
		return m.updateStatusFn(ctx, id, from, to)
	}
	return nil
}

func TestCreate_StartsAsRequested(t *testing.T) {
	var saved *model.Consultation
	repo := &mockConsultationRepo{
		createFn: func(ctx context.Context, c *model.Consultation) error {
			saved = c
			return nil
		},
	}
	svc := NewConsultationService(repo, clock.NewMockClock(testNow))

	userID := uuid.New()
	consultation, err := svc.Create(context.Background(), userID, model.CreateConsultationRequest{
		StoreID:     uuid.New(),
		ScheduledAt: testNow.Add(48 * time.Hour),
	})
	require.NoError(t, err)
	require.NotNil(t, saved)

	assert.Equal(t, model.StatusRequested, consultation.Status)
	assert.Equal(t, userID, consultation.UserID)
}

func TestCreate_SlotInPastRejected(t *testing.T) {
	svc := NewConsultationService(&mockConsultationRepo{}, clock.NewMockClock(testNow))

	_, err := svc.Create(context.Background(), uuid.New(), model.CreateConsultationRequest{
		StoreID:     uuid.New(),
		ScheduledAt: testNow.Add(-time.Hour),
	})
	assert.ErrorIs(t, err, model.ErrSlotInPast)

	// đúng thời điểm hiện tại cũng không hợp lệ
	_, err = svc.Create(context.Background(), uuid.New(), model.CreateConsultationRequest{
		StoreID:     uuid.New(),
		ScheduledAt: testNow,
	})
	assert.ErrorIs(t, err, model.ErrSlotInPast)
}

func TestUpdateStatus_Transitions(t *testing.T) {
	tests := []struct {
		name    string
		from    model.ConsultationStatus
		to      model.ConsultationStatus
		wantErr bool
	}{
		{"requested to confirmed", model.StatusRequested, model.StatusConfirmed, false},
		{"requested to cancelled", model.StatusRequested, model.StatusCancelled, false},
		{"confirmed to completed", model.StatusConfirmed, model.StatusCompleted, false},
		{"confirmed to cancelled", model.StatusConfirmed, model.StatusCancelled, false},
		{"requested to completed skips confirm", model.StatusRequested, model.StatusCompleted, true},
		{"completed is terminal", model.StatusCompleted, model.StatusCancelled, true},
		{"cancelled is terminal", model.StatusCancelled, model.StatusConfirmed, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := uuid.New()
			repo := &mockConsultationRepo{
				findByIDFn: func(ctx context.Context, _ uuid.UUID) (*model.Consultation, error) {
					return &model.Consultation{ID: id, Status: tt.from}, nil
				},
			}
			svc := NewConsultationService(repo, clock.NewMockClock(testNow))

			updated, err := svc.UpdateStatus(context.Background(), id, tt.to)
			if tt.wantErr {
				assert.ErrorIs(t, err, model.ErrInvalidTransition)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.to, updated.Status)
		})
	}
}

func TestCancel_OnlyOwner(t *testing.T) {
	id := uuid.New()
	owner := uuid.New()
	repo := &mockConsultationRepo{
		findByIDFn: func(ctx context.Context, _ uuid.UUID) (*model.Consultation, error) {
			return &model.Consultation{ID: id, UserID: owner, Status: model.StatusRequested}, nil
		},
	}
	svc := NewConsultationService(repo, clock.NewMockClock(testNow))

	// Người khác cancel: trả not found, không lộ sự tồn tại của booking
	_, err := svc.Cancel(context.Background(), id, uuid.New())
	assert.ErrorIs(t, err, model.ErrConsultationNotFound)

	updated, err := svc.Cancel(context.Background(), id, owner)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, updated.Status)
}

func TestCancel_CompletedCannotBeCancelled(t *testing.T) {
	id := uuid.New()
	owner := uuid.New()
	repo := &mockConsultationRepo{
		findByIDFn: func(ctx context.Context, _ uuid.UUID) (*model.Consultation, error) {
			return &model.Consultation{ID: id, UserID: owner, Status: model.StatusCompleted}, nil
		},
	}
	svc := NewConsultationService(repo, clock.NewMockClock(testNow))

	_, err := svc.Cancel(context.Background(), id, owner)
	assert.ErrorIs(t, err, model.ErrInvalidTransition)
}
