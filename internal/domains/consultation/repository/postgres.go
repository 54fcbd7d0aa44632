package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"rez-backend/internal/domains/consultation/model"
)

// ConsultationRepository định nghĩa data access cho consultation
type ConsultationRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Consultation, error)
	ListByUser(ctx context.Context, userID uuid.UUID, page, limit int) ([]*model.Consultation, int, error)
	ListByStore(ctx context.Context, storeID uuid.UUID, page, limit int) ([]*model.Consultation, int, error)
	Create(ctx context.Context, consultation *model.Consultation) error
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.ConsultationStatus) error
}

type postgresConsultationRepository struct {
	db *pgxpool.Pool
}

func NewPostgresConsultationRepository(db *pgxpool.Pool) ConsultationRepository {
	return &postgresConsultationRepository{db: db}
}

const consultationColumns = `id, store_id, user_id, scheduled_at, note, status, created_at, updated_at`

func scanConsultation(row pgx.Row) (*model.Consultation, error) {
	c := &model.Consultation{}
	err := row.Scan(&c.ID, &c.StoreID, &c.UserID, &c.ScheduledAt, &c.Note,
		&c.Status, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *postgresConsultationRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Consultation, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+consultationColumns+`
		FROM consultations
		WHERE id = $1
	`, id)
	c, err := scanConsultation(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrConsultationNotFound
		}
		return nil, fmt.Errorf("failed to find consultation: %w", err)
	}
	return c, nil
}

func (r *postgresConsultationRepository) ListByUser(ctx context.Context, userID uuid.UUID, page, limit int) ([]*model.Consultation, int, error) {
	return r.list(ctx, "user_id", userID, page, limit)
}

func (r *postgresConsultationRepository) ListByStore(ctx context.Context, storeID uuid.UUID, page, limit int) ([]*model.Consultation, int, error) {
	return r.list(ctx, "store_id", storeID, page, limit)
}

func (r *postgresConsultationRepository) list(ctx context.Context, column string, id uuid.UUID, page, limit int) ([]*model.Consultation, int, error) {
	var total int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM consultations WHERE `+column+` = $1`, id,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count consultations: %w", err)
	}

	offset := (page - 1) * limit
	rows, err := r.db.Query(ctx, `
		SELECT `+consultationColumns+`
		FROM consultations
		WHERE `+column+` = $1
		ORDER BY scheduled_at DESC
		LIMIT $2 OFFSET $3
	`, id, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query consultations: %w", err)
	}
	defer rows.Close()

	consultations := make([]*model.Consultation, 0)
	for rows.Next() {
		c, err := scanConsultation(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan consultation: %w", err)
		}
		consultations = append(consultations, c)
	}
	return consultations, total, rows.Err()
}

func (r *postgresConsultationRepository) Create(ctx context.Context, consultation *model.Consultation) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO consultations (id, store_id, user_id, scheduled_at, note, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, consultation.ID, consultation.StoreID, consultation.UserID, consultation.ScheduledAt,
		consultation.Note, consultation.Status, consultation.CreatedAt, consultation.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create consultation: %w", err)
	}
	return nil
}

// UpdateStatus guard theo trạng thái hiện tại trong WHERE: nếu một request
// khác đã chuyển trạng thái trước, RowsAffected = 0 và transition bị từ chối.
func (r *postgresConsultationRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.ConsultationStatus) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE consultations
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
	`, id, from, to)
	if err != nil {
		return fmt.Errorf("failed to update consultation status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrInvalidTransition
	}
	return nil
}
