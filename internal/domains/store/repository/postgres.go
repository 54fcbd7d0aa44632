package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"rez-backend/internal/domains/store/model"
)

// StoreRepository định nghĩa interface cho store data access
type StoreRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Store, error)
	FindBySlug(ctx context.Context, slug string) (*model.Store, error)
	GetMerchantID(ctx context.Context, storeID uuid.UUID) (uuid.UUID, error)
	List(ctx context.Context, filter *model.ListStoresFilter) ([]*model.Store, int, error)
	Create(ctx context.Context, s *model.Store) error
	Update(ctx context.Context, s *model.Store) error
	UpdateStatus(ctx context.Context, id uuid.UUID, isActive bool) error
}

const storeColumns = `
	id, merchant_id, name, slug, description, logo_url,
	address_line, city, state, pincode,
	rating, rating_count, is_active, created_at, updated_at`

type postgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository tạo instance mới
func NewPostgresRepository(db *pgxpool.Pool) StoreRepository {
	return &postgresRepository{db: db}
}

func scanStore(row interface{ Scan(dest ...any) error }) (*model.Store, error) {
	var s model.Store
	err := row.Scan(
		&s.ID, &s.MerchantID, &s.Name, &s.Slug, &s.Description, &s.LogoURL,
		&s.AddressLine, &s.City, &s.State, &s.Pincode,
		&s.Rating, &s.RatingCount, &s.IsActive, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *postgresRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Store, error) {
	query := fmt.Sprintf(`SELECT %s FROM stores WHERE id = $1`, storeColumns)

	s, err := scanStore(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrStoreNotFound
		}
		return nil, fmt.Errorf("find store by id: %w", err)
	}
	return s, nil
}

func (r *postgresRepository) FindBySlug(ctx context.Context, slug string) (*model.Store, error) {
	query := fmt.Sprintf(`SELECT %s FROM stores WHERE slug = $1`, storeColumns)

	s, err := scanStore(r.db.QueryRow(ctx, query, slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrStoreNotFound
		}
		return nil, fmt.Errorf("find store by slug: %w", err)
	}
	return s, nil
}

// GetMerchantID resolve merchant của store - discount admin dùng khi tạo
// discount scope store
func (r *postgresRepository) GetMerchantID(ctx context.Context, storeID uuid.UUID) (uuid.UUID, error) {
	var merchantID uuid.UUID
	err := r.db.QueryRow(ctx, `SELECT merchant_id FROM stores WHERE id = $1`, storeID).Scan(&merchantID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, model.ErrStoreNotFound
		}
		return uuid.Nil, fmt.Errorf("get store merchant: %w", err)
	}
	return merchantID, nil
}

func (r *postgresRepository) List(ctx context.Context, filter *model.ListStoresFilter) ([]*model.Store, int, error) {
	whereConditions := []string{"is_active = true"}
	args := []interface{}{}
	argIndex := 1

	if filter.Search != "" {
		whereConditions = append(whereConditions, fmt.Sprintf("name ILIKE $%d", argIndex))
		args = append(args, "%"+filter.Search+"%")
		argIndex++
	}
	if filter.City != "" {
		whereConditions = append(whereConditions, fmt.Sprintf("city = $%d", argIndex))
		args = append(args, filter.City)
		argIndex++
	}

	whereClause := strings.Join(whereConditions, " AND ")

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM stores WHERE %s`, whereClause)
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count stores: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM stores
		WHERE %s
		ORDER BY rating DESC, created_at DESC
		LIMIT $%d OFFSET $%d
	`, storeColumns, whereClause, argIndex, argIndex+1)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list stores: %w", err)
	}
	defer rows.Close()

	stores := make([]*model.Store, 0, filter.Limit)
	for rows.Next() {
		s, err := scanStore(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan store row: %w", err)
		}
		stores = append(stores, s)
	}
	return stores, total, rows.Err()
}

func (r *postgresRepository) Create(ctx context.Context, s *model.Store) error {
	query := `
		INSERT INTO stores (
			id, merchant_id, name, slug, description, logo_url,
			address_line, city, state, pincode,
			rating, rating_count, is_active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := r.db.Exec(ctx, query,
		s.ID, s.MerchantID, s.Name, s.Slug, s.Description, s.LogoURL,
		s.AddressLine, s.City, s.State, s.Pincode,
		s.Rating, s.RatingCount, s.IsActive, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create store: %w", err)
	}
	return nil
}

func (r *postgresRepository) Update(ctx context.Context, s *model.Store) error {
	query := `
		UPDATE stores SET
			name = $2, slug = $3, description = $4, logo_url = $5,
			address_line = $6, city = $7, state = $8, pincode = $9,
			updated_at = $10
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query,
		s.ID, s.Name, s.Slug, s.Description, s.LogoURL,
		s.AddressLine, s.City, s.State, s.Pincode, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update store: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrStoreNotFound
	}
	return nil
}

func (r *postgresRepository) UpdateStatus(ctx context.Context, id uuid.UUID, isActive bool) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE stores SET is_active = $2, updated_at = NOW() WHERE id = $1`, id, isActive)
	if err != nil {
		return fmt.Errorf("update store status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrStoreNotFound
	}
	return nil
}
