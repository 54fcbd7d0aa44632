package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"

	"rez-backend/internal/domains/product/model"
)

// ProductRepository định nghĩa interface cho product data access
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	GetCategoryIDs(ctx context.Context, productIDs []uuid.UUID) ([]uuid.UUID, error)
	List(ctx context.Context, filter *model.ListProductsFilter) ([]*model.Product, int, error)
	Create(ctx context.Context, p *model.Product) error
	Update(ctx context.Context, p *model.Product) error
	UpdateStatus(ctx context.Context, id uuid.UUID, isActive bool) error
}

const productColumns = `
	id, store_id, category_id, name, slug, description,
	price, original_price, stock, images,
	is_active, created_at, updated_at`

type postgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository tạo instance mới
func NewPostgresRepository(db *pgxpool.Pool) ProductRepository {
	return &postgresRepository{db: db}
}

func scanProduct(row interface{ Scan(dest ...any) error }) (*model.Product, error) {
	var (
		p      model.Product
		images pq.StringArray
	)
	err := row.Scan(
		&p.ID, &p.StoreID, &p.CategoryID, &p.Name, &p.Slug, &p.Description,
		&p.Price, &p.OriginalPrice, &p.Stock, &images,
		&p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Images = images
	return &p, nil
}

func (r *postgresRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE id = $1`, productColumns)

	p, err := scanProduct(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrProductNotFound
		}
		return nil, fmt.Errorf("find product by id: %w", err)
	}
	return p, nil
}

// GetCategoryIDs resolve category của một tập product - order service
// dùng để build discount order context từ line items
func (r *postgresRepository) GetCategoryIDs(ctx context.Context, productIDs []uuid.UUID) ([]uuid.UUID, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}

	strs := make([]string, 0, len(productIDs))
	for _, id := range productIDs {
		strs = append(strs, id.String())
	}

	query := `SELECT DISTINCT category_id FROM products WHERE id = ANY($1)`
	rows, err := r.db.Query(ctx, query, pq.Array(strs))
	if err != nil {
		return nil, fmt.Errorf("get product categories: %w", err)
	}
	defer rows.Close()

	var categoryIDs []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan category id: %w", err)
		}
		categoryIDs = append(categoryIDs, id)
	}
	return categoryIDs, rows.Err()
}

func (r *postgresRepository) List(ctx context.Context, filter *model.ListProductsFilter) ([]*model.Product, int, error) {
	whereConditions := []string{"is_active = true"}
	args := []interface{}{}
	argIndex := 1

	if filter.StoreID != nil {
		whereConditions = append(whereConditions, fmt.Sprintf("store_id = $%d", argIndex))
		args = append(args, *filter.StoreID)
		argIndex++
	}
	if filter.CategoryID != nil {
		whereConditions = append(whereConditions, fmt.Sprintf("category_id = $%d", argIndex))
		args = append(args, *filter.CategoryID)
		argIndex++
	}
	if filter.Search != "" {
		whereConditions = append(whereConditions, fmt.Sprintf("name ILIKE $%d", argIndex))
		args = append(args, "%"+filter.Search+"%")
		argIndex++
	}

	whereClause := strings.Join(whereConditions, " AND ")

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM products WHERE %s`, whereClause)
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM products
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, productColumns, whereClause, argIndex, argIndex+1)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := make([]*model.Product, 0, filter.Limit)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, p)
	}
	return products, total, rows.Err()
}

func (r *postgresRepository) Create(ctx context.Context, p *model.Product) error {
	query := `
		INSERT INTO products (
			id, store_id, category_id, name, slug, description,
			price, original_price, stock, images,
			is_active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.db.Exec(ctx, query,
		p.ID, p.StoreID, p.CategoryID, p.Name, p.Slug, p.Description,
		p.Price, p.OriginalPrice, p.Stock, pq.Array(p.Images),
		p.IsActive, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

func (r *postgresRepository) Update(ctx context.Context, p *model.Product) error {
	query := `
		UPDATE products SET
			category_id = $2, name = $3, slug = $4, description = $5,
			price = $6, original_price = $7, stock = $8, images = $9,
			updated_at = $10
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query,
		p.ID, p.CategoryID, p.Name, p.Slug, p.Description,
		p.Price, p.OriginalPrice, p.Stock, pq.Array(p.Images),
		p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrProductNotFound
	}
	return nil
}

func (r *postgresRepository) UpdateStatus(ctx context.Context, id uuid.UUID, isActive bool) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE products SET is_active = $2, updated_at = NOW() WHERE id = $1`, id, isActive)
	if err != nil {
		return fmt.Errorf("update product status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrProductNotFound
	}
	return nil
}
