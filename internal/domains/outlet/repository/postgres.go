package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"rez-backend/internal/domains/outlet/model"
)

// OutletRepository định nghĩa interface cho outlet data access
type OutletRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Outlet, error)
	ListByStore(ctx context.Context, storeID uuid.UUID) ([]*model.Outlet, error)
	FindNearby(ctx context.Context, lat, lng, radiusKm float64, limit int) ([]*model.NearbyOutlet, error)
	Create(ctx context.Context, o *model.Outlet) error
	Update(ctx context.Context, o *model.Outlet) error
}

const outletColumns = `
	id, store_id, name, address_line, city, pincode,
	latitude, longitude, phone, opens_at, closes_at,
	is_active, created_at, updated_at`

type postgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository tạo instance mới
func NewPostgresRepository(db *pgxpool.Pool) OutletRepository {
	return &postgresRepository{db: db}
}

func scanOutlet(row interface{ Scan(dest ...any) error }) (*model.Outlet, error) {
	var o model.Outlet
	err := row.Scan(
		&o.ID, &o.StoreID, &o.Name, &o.AddressLine, &o.City, &o.Pincode,
		&o.Latitude, &o.Longitude, &o.Phone, &o.OpensAt, &o.ClosesAt,
		&o.IsActive, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *postgresRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Outlet, error) {
	query := fmt.Sprintf(`SELECT %s FROM outlets WHERE id = $1`, outletColumns)

	o, err := scanOutlet(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrOutletNotFound
		}
		return nil, fmt.Errorf("find outlet by id: %w", err)
	}
	return o, nil
}

func (r *postgresRepository) ListByStore(ctx context.Context, storeID uuid.UUID) ([]*model.Outlet, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM outlets
		WHERE store_id = $1 AND is_active = true
		ORDER BY name
	`, outletColumns)

	rows, err := r.db.Query(ctx, query, storeID)
	if err != nil {
		return nil, fmt.Errorf("list outlets by store: %w", err)
	}
	defer rows.Close()

	var outlets []*model.Outlet
	for rows.Next() {
		o, err := scanOutlet(rows)
		if err != nil {
			return nil, fmt.Errorf("scan outlet row: %w", err)
		}
		outlets = append(outlets, o)
	}
	return outlets, rows.Err()
}

// FindNearby tính khoảng cách haversine trong SQL, lọc theo bán kính km,
// gần nhất trước. 6371 = bán kính trái đất (km).
func (r *postgresRepository) FindNearby(ctx context.Context, lat, lng, radiusKm float64, limit int) ([]*model.NearbyOutlet, error) {
	query := fmt.Sprintf(`
		SELECT %s,
			(6371 * acos(
				cos(radians($1)) * cos(radians(latitude)) *
				cos(radians(longitude) - radians($2)) +
				sin(radians($1)) * sin(radians(latitude))
			)) AS distance_km
		FROM outlets
		WHERE is_active = true
		  AND (6371 * acos(
				cos(radians($1)) * cos(radians(latitude)) *
				cos(radians(longitude) - radians($2)) +
				sin(radians($1)) * sin(radians(latitude))
			)) <= $3
		ORDER BY distance_km ASC
		LIMIT $4
	`, outletColumns)

	rows, err := r.db.Query(ctx, query, lat, lng, radiusKm, limit)
	if err != nil {
		return nil, fmt.Errorf("find nearby outlets: %w", err)
	}
	defer rows.Close()

	var outlets []*model.NearbyOutlet
	for rows.Next() {
		var o model.NearbyOutlet
		err := rows.Scan(
			&o.ID, &o.StoreID, &o.Name, &o.AddressLine, &o.City, &o.Pincode,
			&o.Latitude, &o.Longitude, &o.Phone, &o.OpensAt, &o.ClosesAt,
			&o.IsActive, &o.CreatedAt, &o.UpdatedAt,
			&o.DistanceKm,
		)
		if err != nil {
			return nil, fmt.Errorf("scan nearby outlet: %w", err)
		}
		outlets = append(outlets, &o)
	}
	return outlets, rows.Err()
}

func (r *postgresRepository) Create(ctx context.Context, o *model.Outlet) error {
	query := `
		INSERT INTO outlets (
			id, store_id, name, address_line, city, pincode,
			latitude, longitude, phone, opens_at, closes_at,
			is_active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := r.db.Exec(ctx, query,
		o.ID, o.StoreID, o.Name, o.AddressLine, o.City, o.Pincode,
		o.Latitude, o.Longitude, o.Phone, o.OpensAt, o.ClosesAt,
		o.IsActive, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create outlet: %w", err)
	}
	return nil
}

func (r *postgresRepository) Update(ctx context.Context, o *model.Outlet) error {
	query := `
		UPDATE outlets SET
			name = $2, address_line = $3, city = $4, pincode = $5,
			latitude = $6, longitude = $7, phone = $8,
			opens_at = $9, closes_at = $10, updated_at = $11
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query,
		o.ID, o.Name, o.AddressLine, o.City, o.Pincode,
		o.Latitude, o.Longitude, o.Phone, o.OpensAt, o.ClosesAt, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update outlet: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrOutletNotFound
	}
	return nil
}
