package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"rez-backend/internal/domains/coin/model"
)

// CoinRepository định nghĩa interface cho coin ledger data access
type CoinRepository interface {
	Insert(ctx context.Context, txn *model.CoinTransaction) error
	GetBalance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error)
	ListByUser(ctx context.Context, userID uuid.UUID, page, limit int) ([]*model.CoinTransaction, int, error)

	// InsertRedeem ghi dòng redeem với balance guard trong một statement:
	// insert chỉ đi qua khi SUM ledger hiện tại >= amount.
	// Trả về false khi balance không đủ (kể cả dưới concurrent redeem).
	InsertRedeem(ctx context.Context, txn *model.CoinTransaction) (bool, error)

	// ExpireCredits quét earn credits quá hạn chưa expired, đánh dấu và
	// ghi dòng expire bù trừ. Trả về số credit đã expire.
	ExpireCredits(ctx context.Context, now time.Time) (int64, error)
}

const coinColumns = `id, user_id, type, amount, reason, order_id, expires_at, expired, created_at`

type postgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository tạo instance mới
func NewPostgresRepository(db *pgxpool.Pool) CoinRepository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Insert(ctx context.Context, txn *model.CoinTransaction) error {
	query := fmt.Sprintf(`
		INSERT INTO coin_transactions (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, coinColumns)

	_, err := r.db.Exec(ctx, query,
		txn.ID, txn.UserID, txn.Type, txn.Amount, txn.Reason,
		txn.OrderID, txn.ExpiresAt, txn.Expired, txn.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert coin transaction: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetBalance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := r.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM coin_transactions WHERE user_id = $1`,
		userID).Scan(&balance)
	if err != nil {
		return decimal.Zero, fmt.Errorf("get coin balance: %w", err)
	}
	return balance, nil
}

func (r *postgresRepository) ListByUser(ctx context.Context, userID uuid.UUID, page, limit int) ([]*model.CoinTransaction, int, error) {
	var total int
	if err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM coin_transactions WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count coin transactions: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM coin_transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, coinColumns)

	rows, err := r.db.Query(ctx, query, userID, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list coin transactions: %w", err)
	}
	defer rows.Close()

	txns := make([]*model.CoinTransaction, 0, limit)
	for rows.Next() {
		var t model.CoinTransaction
		err := rows.Scan(
			&t.ID, &t.UserID, &t.Type, &t.Amount, &t.Reason,
			&t.OrderID, &t.ExpiresAt, &t.Expired, &t.CreatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("scan coin transaction: %w", err)
		}
		txns = append(txns, &t)
	}
	return txns, total, rows.Err()
}

// InsertRedeem - INSERT ... SELECT với balance guard, cùng pattern với
// conditional increment của discount: một statement duy nhất, hai redeem
// song song tranh số dư thì đúng một cái đi qua.
func (r *postgresRepository) InsertRedeem(ctx context.Context, txn *model.CoinTransaction) (bool, error) {
	query := `
		INSERT INTO coin_transactions (id, user_id, type, amount, reason, order_id, expired, created_at)
		SELECT $1, $2, $3, $4, $5, $6, false, $7
		WHERE (SELECT COALESCE(SUM(amount), 0) FROM coin_transactions WHERE user_id = $2) >= $8
	`

	tag, err := r.db.Exec(ctx, query,
		txn.ID, txn.UserID, txn.Type, txn.Amount, txn.Reason,
		txn.OrderID, txn.CreatedAt, txn.Amount.Neg(),
	)
	if err != nil {
		return false, fmt.Errorf("insert coin redeem: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// ExpireCredits đánh dấu earn credits quá hạn và ghi dòng expire bù trừ
// trong một statement (CTE), job chạy lại không expire trùng.
func (r *postgresRepository) ExpireCredits(ctx context.Context, now time.Time) (int64, error) {
	query := `
		WITH expired_credits AS (
			UPDATE coin_transactions
			SET expired = true
			WHERE type = 'earn' AND expired = false
			  AND expires_at IS NOT NULL AND expires_at < $1
			RETURNING id, user_id, amount
		)
		INSERT INTO coin_transactions (id, user_id, type, amount, reason, expired, created_at)
		SELECT gen_random_uuid(), user_id, 'expire', -amount, 'Coins expired', false, $1
		FROM expired_credits
	`

	tag, err := r.db.Exec(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("expire coin credits: %w", err)
	}
	return tag.RowsAffected(), nil
}
