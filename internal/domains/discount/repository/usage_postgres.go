package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"rez-backend/internal/domains/discount/model"
)

// PostgresUsageRepository triển khai UsageRepository với PostgreSQL
type PostgresUsageRepository struct {
	db *pgxpool.Pool
}

// NewPostgresUsageRepository tạo instance mới
func NewPostgresUsageRepository(db *pgxpool.Pool) UsageRepository {
	return &PostgresUsageRepository{db: db}
}

// Insert ghi một usage row trong transaction của flow apply.
// Ledger append-only: không có Update/Delete tương ứng.
func (r *PostgresUsageRepository) Insert(ctx context.Context, tx pgx.Tx, usage *model.DiscountUsage) error {
	query := `
		INSERT INTO discount_usage (
			id, discount_id, user_id, order_id,
			discount_amount, order_value, used_at,
			discount_code, discount_type, discount_value
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := tx.Exec(ctx, query,
		usage.ID, usage.DiscountID, usage.UserID, usage.OrderID,
		usage.DiscountAmount, usage.OrderValue, usage.UsedAt,
		usage.DiscountCode, usage.DiscountType, usage.DiscountValue,
	)
	if err != nil {
		return fmt.Errorf("insert discount usage: %w", err)
	}
	return nil
}

// CountByDiscountAndUser đếm số lần user đã dùng discount.
// Ledger là nguồn sự thật duy nhất cho per-user limit.
func (r *PostgresUsageRepository) CountByDiscountAndUser(ctx context.Context, discountID, userID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM discount_usage WHERE discount_id = $1 AND user_id = $2`

	var count int
	if err := r.db.QueryRow(ctx, query, discountID, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count discount usage: %w", err)
	}
	return count, nil
}

// ListByUser liệt kê lịch sử usage của một user, mới nhất trước
func (r *PostgresUsageRepository) ListByUser(ctx context.Context, userID uuid.UUID, page, limit int) ([]*model.DiscountUsage, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM discount_usage WHERE user_id = $1`
	if err := r.db.QueryRow(ctx, countQuery, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count user discount usage: %w", err)
	}

	query := `
		SELECT
			id, discount_id, user_id, order_id,
			discount_amount, order_value, used_at,
			discount_code, discount_type, discount_value
		FROM discount_usage
		WHERE user_id = $1
		ORDER BY used_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, userID, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list user discount usage: %w", err)
	}
	defer rows.Close()

	usages := make([]*model.DiscountUsage, 0, limit)
	for rows.Next() {
		var u model.DiscountUsage
		err := rows.Scan(
			&u.ID,             // id
			&u.DiscountID,     // discount_id
			&u.UserID,         // user_id
			&u.OrderID,        // order_id
			&u.DiscountAmount, // discount_amount
			&u.OrderValue,     // order_value
			&u.UsedAt,         // used_at
			&u.DiscountCode,   // discount_code (nullable snapshot)
			&u.DiscountType,   // discount_type (snapshot)
			&u.DiscountValue,  // discount_value (snapshot)
		)
		if err != nil {
			return nil, 0, fmt.Errorf("scan usage row: %w", err)
		}
		usages = append(usages, &u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate usage rows: %w", err)
	}

	return usages, total, nil
}

// GetAnalytics tính aggregate trên ledger cho một discount
func (r *PostgresUsageRepository) GetAnalytics(ctx context.Context, discountID uuid.UUID) (*model.UsageAnalytics, error) {
	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM(discount_amount), 0),
			COALESCE(SUM(order_value), 0),
			COUNT(DISTINCT user_id),
			MIN(used_at),
			MAX(used_at)
		FROM discount_usage
		WHERE discount_id = $1
	`

	analytics := &model.UsageAnalytics{
		DiscountID:         discountID,
		TotalAmountGranted: decimal.Zero,
		TotalOrderValue:    decimal.Zero,
	}
	err := r.db.QueryRow(ctx, query, discountID).Scan(
		&analytics.TotalUses,
		&analytics.TotalAmountGranted,
		&analytics.TotalOrderValue,
		&analytics.UniqueUsers,
		&analytics.FirstUsedAt,
		&analytics.LastUsedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("get discount analytics: %w", err)
	}
	return analytics, nil
}
