package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"rez-backend/internal/domains/order/model"
)

// OrderRepository định nghĩa interface cho order data access
type OrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID, page, limit int) ([]*model.Order, int, error)
	Create(ctx context.Context, o *model.Order) error
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.OrderStatus) error

	// GetCompletedOrderCount đếm số đơn completed của user.
	// Discount evaluator dùng cho restriction new_users_only.
	GetCompletedOrderCount(ctx context.Context, userID uuid.UUID) (int, error)
}

const orderColumns = `
	id, order_number, user_id, store_id, items,
	subtotal, discount_id, discount_amount, total,
	status, payment_method, created_at, updated_at`

type postgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository tạo instance mới
func NewPostgresRepository(db *pgxpool.Pool) OrderRepository {
	return &postgresRepository{db: db}
}

func scanOrder(row interface{ Scan(dest ...any) error }) (*model.Order, error) {
	var (
		o         model.Order
		itemsJSON []byte
	)
	err := row.Scan(
		&o.ID, &o.OrderNumber, &o.UserID, &o.StoreID, &itemsJSON,
		&o.Subtotal, &o.DiscountID, &o.DiscountAmount, &o.Total,
		&o.Status, &o.PaymentMethod, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(itemsJSON) > 0 {
		if err := json.Unmarshal(itemsJSON, &o.Items); err != nil {
			return nil, fmt.Errorf("parse order items: %w", err)
		}
	}
	return &o, nil
}

func (r *postgresRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders WHERE id = $1`, orderColumns)

	o, err := scanOrder(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrOrderNotFound
		}
		return nil, fmt.Errorf("find order by id: %w", err)
	}
	return o, nil
}

func (r *postgresRepository) ListByUser(ctx context.Context, userID uuid.UUID, page, limit int) ([]*model.Order, int, error) {
	var total int
	if err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM orders WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count user orders: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, orderColumns)

	rows, err := r.db.Query(ctx, query, userID, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list user orders: %w", err)
	}
	defer rows.Close()

	orders := make([]*model.Order, 0, limit)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, total, rows.Err()
}

func (r *postgresRepository) Create(ctx context.Context, o *model.Order) error {
	itemsJSON, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("marshal order items: %w", err)
	}

	query := `
		INSERT INTO orders (
			id, order_number, user_id, store_id, items,
			subtotal, discount_id, discount_amount, total,
			status, payment_method, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err = r.db.Exec(ctx, query,
		o.ID, o.OrderNumber, o.UserID, o.StoreID, itemsJSON,
		o.Subtotal, o.DiscountID, o.DiscountAmount, o.Total,
		o.Status, o.PaymentMethod, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create order: %w", err)
	}
	return nil
}

// UpdateStatus chuyển trạng thái với guard from-status trong WHERE:
// transition chỉ đi qua khi status hiện tại đúng như mong đợi
func (r *postgresRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.OrderStatus) error {
	query := `UPDATE orders SET status = $3, updated_at = NOW() WHERE id = $1 AND status = $2`

	tag, err := r.db.Exec(ctx, query, id, from, to)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrInvalidTransition
	}
	return nil
}

func (r *postgresRepository) GetCompletedOrderCount(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM orders WHERE user_id = $1 AND status = 'completed'`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count completed orders: %w", err)
	}
	return count, nil
}
