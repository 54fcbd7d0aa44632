package model

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

var (
	ErrConsultationNotFound = errors.New("consultation not found")
	ErrInvalidTransition    = errors.New("invalid consultation status transition")
	ErrSlotInPast           = errors.New("scheduled slot must be in the future")
)

// ConsultationStatus - trạng thái booking
type ConsultationStatus string

const (
	StatusRequested ConsultationStatus = "requested"
	StatusConfirmed ConsultationStatus = "confirmed"
	StatusCompleted ConsultationStatus = "completed"
	StatusCancelled ConsultationStatus = "cancelled"
)

func (s ConsultationStatus) IsValid() bool {
	switch s {
	case StatusRequested, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo kiểm tra transition hợp lệ:
// requested -> confirmed | cancelled
// confirmed -> completed | cancelled
func (s ConsultationStatus) CanTransitionTo(next ConsultationStatus) bool {
	switch s {
	case StatusRequested:
		return next == StatusConfirmed || next == StatusCancelled
	case StatusConfirmed:
		return next == StatusCompleted || next == StatusCancelled
	}
	return false
}

// Consultation - booking tư vấn tại store
type Consultation struct {
	ID          uuid.UUID          `json:"id" db:"id"`
	StoreID     uuid.UUID          `json:"store_id" db:"store_id"`
	UserID      uuid.UUID          `json:"user_id" db:"user_id"`
	ScheduledAt time.Time          `json:"scheduled_at" db:"scheduled_at"`
	Note        *string            `json:"note,omitempty" db:"note"`
	Status      ConsultationStatus `json:"status" db:"status"`
	CreatedAt   time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at" db:"updated_at"`
}

// CreateConsultationRequest - tạo booking mới
type CreateConsultationRequest struct {
	StoreID     uuid.UUID `json:"store_id"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Note        *string   `json:"note,omitempty"`
}

func (r CreateConsultationRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.StoreID, validation.Required.Error("Store ID is required")),
		validation.Field(&r.ScheduledAt, validation.Required.Error("Scheduled slot is required")),
	)
}

// UpdateStatusRequest - chuyển trạng thái booking
type UpdateStatusRequest struct {
	Status ConsultationStatus `json:"status"`
}

func (r UpdateStatusRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Status, validation.Required.Error("Status is required"),
			validation.In(StatusConfirmed, StatusCompleted, StatusCancelled).
				Error("Status must be one of: confirmed, completed, cancelled")),
	)
}
