package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"

	"rez-backend/internal/domains/discount/model"
	"rez-backend/pkg/logger"
)

// discountColumns - danh sách cột dùng chung cho mọi SELECT, giữ thứ tự khớp với scanDiscount
const discountColumns = `
	id, code, name, description,
	type, value, min_order_value, max_discount_amount,
	applicable_on, applicable_products, applicable_categories, card_offer,
	valid_from, valid_until,
	usage_limit, used_count, usage_limit_per_user,
	priority, restrictions,
	scope, merchant_id, store_id,
	is_active, created_at, updated_at`

// PostgresDiscountRepository triển khai DiscountRepository với PostgreSQL
type PostgresDiscountRepository struct {
	db *pgxpool.Pool
}

// NewPostgresDiscountRepository tạo instance mới
func NewPostgresDiscountRepository(db *pgxpool.Pool) DiscountRepository {
	return &PostgresDiscountRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanDiscount map một row về model.Discount.
// Arrays lưu dạng uuid[], restrictions và card_offer lưu dạng jsonb.
func scanDiscount(row rowScanner) (*model.Discount, error) {
	var (
		d                model.Discount
		products         pq.StringArray
		categories       pq.StringArray
		cardOfferJSON    []byte
		restrictionsJSON []byte
	)

	err := row.Scan(
		&d.ID,                // id
		&d.Code,              // code (nullable)
		&d.Name,              // name
		&d.Description,       // description (nullable)
		&d.Type,              // type
		&d.Value,             // value
		&d.MinOrderValue,     // min_order_value
		&d.MaxDiscountAmount, // max_discount_amount (nullable)
		&d.ApplicableOn,      // applicable_on
		&products,            // applicable_products (uuid[])
		&categories,          // applicable_categories (uuid[])
		&cardOfferJSON,       // card_offer (jsonb, nullable)
		&d.ValidFrom,         // valid_from
		&d.ValidUntil,        // valid_until
		&d.UsageLimit,        // usage_limit (nullable)
		&d.UsedCount,         // used_count
		&d.UsageLimitPerUser, // usage_limit_per_user (nullable)
		&d.Priority,          // priority
		&restrictionsJSON,    // restrictions (jsonb)
		&d.Scope,             // scope
		&d.MerchantID,        // merchant_id (nullable)
		&d.StoreID,           // store_id (nullable)
		&d.IsActive,          // is_active
		&d.CreatedAt,         // created_at
		&d.UpdatedAt,         // updated_at
	)
	if err != nil {
		return nil, err
	}

	if d.ApplicableProducts, err = parseUUIDArray(products); err != nil {
		return nil, fmt.Errorf("parse applicable_products: %w", err)
	}
	if d.ApplicableCategories, err = parseUUIDArray(categories); err != nil {
		return nil, fmt.Errorf("parse applicable_categories: %w", err)
	}
	if len(cardOfferJSON) > 0 {
		var offer model.CardOffer
		if err := json.Unmarshal(cardOfferJSON, &offer); err != nil {
			return nil, fmt.Errorf("parse card_offer: %w", err)
		}
		d.CardOffer = &offer
	}
	if len(restrictionsJSON) > 0 {
		if err := json.Unmarshal(restrictionsJSON, &d.Restrictions); err != nil {
			return nil, fmt.Errorf("parse restrictions: %w", err)
		}
	}

	return &d, nil
}

func parseUUIDArray(arr pq.StringArray) ([]uuid.UUID, error) {
	if len(arr) == 0 {
		return nil, nil
	}
	ids := make([]uuid.UUID, 0, len(arr))
	for _, s := range arr {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func uuidArrayParam(ids []uuid.UUID) interface{} {
	strs := make([]string, 0, len(ids))
	for _, id := range ids {
		strs = append(strs, id.String())
	}
	return pq.Array(strs)
}

// -------------------------------------------------------------------
// READ OPERATIONS
// -------------------------------------------------------------------

// FindByID tìm discount theo ID (không filter active/time)
func (r *PostgresDiscountRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Discount, error) {
	query := fmt.Sprintf(`SELECT %s FROM discounts WHERE id = $1`, discountColumns)

	d, err := scanDiscount(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrDiscountNotFound
		}
		return nil, fmt.Errorf("find discount by id: %w", err)
	}
	return d, nil
}

// FindByCode tìm discount theo code. Code được chuẩn hóa uppercase trước khi so sánh.
func (r *PostgresDiscountRepository) FindByCode(ctx context.Context, code string) (*model.Discount, error) {
	query := fmt.Sprintf(`SELECT %s FROM discounts WHERE UPPER(code) = $1`, discountColumns)

	d, err := scanDiscount(r.db.QueryRow(ctx, query, model.NormalizeCode(code)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrDiscountNotFound
		}
		return nil, fmt.Errorf("find discount by code: %w", err)
	}
	return d, nil
}

// ListActive liệt kê discount đang active trong window hiện tại, có filter + pagination.
// StoreID filter match cả discount scope store lẫn scope merchant của store đó
// (service resolve merchant_id trước khi gọi).
func (r *PostgresDiscountRepository) ListActive(ctx context.Context, filter *model.ListDiscountsFilter, now time.Time) ([]*model.Discount, int, error) {
	whereConditions := []string{
		"is_active = true",
		"valid_from <= $1",
		"valid_until >= $1",
	}
	args := []interface{}{now}
	argIndex := 2

	if filter.ApplicableOn != "" {
		whereConditions = append(whereConditions, fmt.Sprintf("applicable_on = $%d", argIndex))
		args = append(args, filter.ApplicableOn)
		argIndex++
	}
	if filter.Type != "" {
		whereConditions = append(whereConditions, fmt.Sprintf("type = $%d", argIndex))
		args = append(args, filter.Type)
		argIndex++
	}
	if filter.MinValue != nil {
		whereConditions = append(whereConditions, fmt.Sprintf("value >= $%d", argIndex))
		args = append(args, *filter.MinValue)
		argIndex++
	}
	if filter.MaxValue != nil {
		whereConditions = append(whereConditions, fmt.Sprintf("value <= $%d", argIndex))
		args = append(args, *filter.MaxValue)
		argIndex++
	}
	if filter.CardType != "" {
		whereConditions = append(whereConditions, fmt.Sprintf("card_offer->'card_types' ? $%d", argIndex))
		args = append(args, filter.CardType)
		argIndex++
	}
	if filter.StoreID != nil {
		// Scope store khớp store_id trực tiếp; scope merchant resolve qua
		// merchant_id của store; scope global luôn hiện.
		whereConditions = append(whereConditions, fmt.Sprintf(
			"(scope = 'global' OR (scope = 'store' AND store_id = $%d) OR (scope = 'merchant' AND merchant_id = (SELECT merchant_id FROM stores WHERE id = $%d)))",
			argIndex, argIndex))
		args = append(args, *filter.StoreID)
		argIndex++
	}

	whereClause := strings.Join(whereConditions, " AND ")

	// Count tổng trước khi phân trang
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM discounts WHERE %s`, whereClause)
	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count active discounts: %w", err)
	}

	offset := (filter.Page - 1) * filter.Limit
	query := fmt.Sprintf(`
		SELECT %s FROM discounts
		WHERE %s
		ORDER BY priority DESC, created_at DESC
		LIMIT $%d OFFSET $%d
	`, discountColumns, whereClause, argIndex, argIndex+1)
	args = append(args, filter.Limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list active discounts: %w", err)
	}
	defer rows.Close()

	discounts := make([]*model.Discount, 0, filter.Limit)
	for rows.Next() {
		d, err := scanDiscount(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan discount row: %w", err)
		}
		discounts = append(discounts, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate discount rows: %w", err)
	}

	return discounts, total, nil
}

// ListForProduct liệt kê discount áp dụng được cho một product:
// applicable_on = 'all' hoặc product nằm trong applicable_products.
func (r *PostgresDiscountRepository) ListForProduct(ctx context.Context, productID uuid.UUID, now time.Time) ([]*model.Discount, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM discounts
		WHERE is_active = true
		  AND valid_from <= $1 AND valid_until >= $1
		  AND (applicable_on = 'all' OR (applicable_on = 'specific_products' AND $2 = ANY(applicable_products)))
		ORDER BY priority DESC, created_at DESC
	`, discountColumns)

	rows, err := r.db.Query(ctx, query, now, productID)
	if err != nil {
		return nil, fmt.Errorf("list discounts for product: %w", err)
	}
	defer rows.Close()

	var discounts []*model.Discount
	for rows.Next() {
		d, err := scanDiscount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan discount row: %w", err)
		}
		discounts = append(discounts, d)
	}
	return discounts, rows.Err()
}

// ListByApplicableOn liệt kê discount active theo một scope duy nhất
// (dùng cho bill_payment và card_payment listings)
func (r *PostgresDiscountRepository) ListByApplicableOn(ctx context.Context, applicableOn model.ApplicableOn, now time.Time) ([]*model.Discount, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM discounts
		WHERE is_active = true
		  AND valid_from <= $1 AND valid_until >= $1
		  AND applicable_on = $2
		ORDER BY priority DESC, created_at DESC
	`, discountColumns)

	rows, err := r.db.Query(ctx, query, now, applicableOn)
	if err != nil {
		return nil, fmt.Errorf("list discounts by applicable_on: %w", err)
	}
	defer rows.Close()

	var discounts []*model.Discount
	for rows.Next() {
		d, err := scanDiscount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan discount row: %w", err)
		}
		discounts = append(discounts, d)
	}
	return discounts, rows.Err()
}

// -------------------------------------------------------------------
// WRITE OPERATIONS
// -------------------------------------------------------------------

// Create insert discount mới
func (r *PostgresDiscountRepository) Create(ctx context.Context, d *model.Discount) error {
	restrictionsJSON, err := json.Marshal(d.Restrictions)
	if err != nil {
		return fmt.Errorf("marshal restrictions: %w", err)
	}

	var cardOfferJSON []byte
	if d.CardOffer != nil {
		if cardOfferJSON, err = json.Marshal(d.CardOffer); err != nil {
			return fmt.Errorf("marshal card_offer: %w", err)
		}
	}

	query := `
		INSERT INTO discounts (
			id, code, name, description,
			type, value, min_order_value, max_discount_amount,
			applicable_on, applicable_products, applicable_categories, card_offer,
			valid_from, valid_until,
			usage_limit, used_count, usage_limit_per_user,
			priority, restrictions,
			scope, merchant_id, store_id,
			is_active, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
			$13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25
		)
	`

	_, err = r.db.Exec(ctx, query,
		d.ID, d.Code, d.Name, d.Description,
		d.Type, d.Value, d.MinOrderValue, d.MaxDiscountAmount,
		d.ApplicableOn, uuidArrayParam(d.ApplicableProducts), uuidArrayParam(d.ApplicableCategories), cardOfferJSON,
		d.ValidFrom, d.ValidUntil,
		d.UsageLimit, d.UsedCount, d.UsageLimitPerUser,
		d.Priority, restrictionsJSON,
		d.Scope, d.MerchantID, d.StoreID,
		d.IsActive, d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrDuplicateCode
		}
		return fmt.Errorf("create discount: %w", err)
	}

	logger.Info("Discount created", map[string]interface{}{
		"discount_id": d.ID.String(),
		"name":        d.Name,
	})
	return nil
}

// Update ghi đè config của discount. Không đụng used_count -
// counter chỉ thay đổi qua IncrementUsage.
func (r *PostgresDiscountRepository) Update(ctx context.Context, d *model.Discount) error {
	restrictionsJSON, err := json.Marshal(d.Restrictions)
	if err != nil {
		return fmt.Errorf("marshal restrictions: %w", err)
	}

	var cardOfferJSON []byte
	if d.CardOffer != nil {
		if cardOfferJSON, err = json.Marshal(d.CardOffer); err != nil {
			return fmt.Errorf("marshal card_offer: %w", err)
		}
	}

	query := `
		UPDATE discounts SET
			code = $2, name = $3, description = $4,
			type = $5, value = $6, min_order_value = $7, max_discount_amount = $8,
			applicable_on = $9, applicable_products = $10, applicable_categories = $11, card_offer = $12,
			valid_from = $13, valid_until = $14,
			usage_limit = $15, usage_limit_per_user = $16,
			priority = $17, restrictions = $18,
			scope = $19, merchant_id = $20, store_id = $21,
			is_active = $22, updated_at = $23
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query,
		d.ID, d.Code, d.Name, d.Description,
		d.Type, d.Value, d.MinOrderValue, d.MaxDiscountAmount,
		d.ApplicableOn, uuidArrayParam(d.ApplicableProducts), uuidArrayParam(d.ApplicableCategories), cardOfferJSON,
		d.ValidFrom, d.ValidUntil,
		d.UsageLimit, d.UsageLimitPerUser,
		d.Priority, restrictionsJSON,
		d.Scope, d.MerchantID, d.StoreID,
		d.IsActive, d.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrDuplicateCode
		}
		return fmt.Errorf("update discount: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrDiscountNotFound
	}
	return nil
}

// UpdateStatus bật/tắt is_active
func (r *PostgresDiscountRepository) UpdateStatus(ctx context.Context, id uuid.UUID, isActive bool) error {
	query := `UPDATE discounts SET is_active = $2, updated_at = NOW() WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id, isActive)
	if err != nil {
		return fmt.Errorf("update discount status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrDiscountNotFound
	}
	return nil
}

// CheckCodeExists kiểm tra code đã tồn tại chưa (case-insensitive)
func (r *PostgresDiscountRepository) CheckCodeExists(ctx context.Context, code string, excludeID *uuid.UUID) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM discounts WHERE UPPER(code) = $1 AND ($2::uuid IS NULL OR id != $2))`

	var exists bool
	if err := r.db.QueryRow(ctx, query, model.NormalizeCode(code), excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check code exists: %w", err)
	}
	return exists, nil
}

// IncrementUsage tăng used_count trong một conditional statement duy nhất.
// Đây là điểm serialize duy nhất của flow apply: hai request song song tranh
// slot cuối cùng thì đúng một request thấy rows_affected = 1.
func (r *PostgresDiscountRepository) IncrementUsage(ctx context.Context, tx pgx.Tx, id uuid.UUID) (bool, error) {
	query := `
		UPDATE discounts
		SET used_count = used_count + 1, updated_at = NOW()
		WHERE id = $1
		  AND (usage_limit IS NULL OR used_count < usage_limit)
	`

	tag, err := tx.Exec(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("increment discount usage: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// DeactivateExpired tắt discount đã hết hạn (background job)
func (r *PostgresDiscountRepository) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE discounts
		SET is_active = false, updated_at = NOW()
		WHERE is_active = true AND valid_until < $1
	`

	tag, err := r.db.Exec(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("deactivate expired discounts: %w", err)
	}
	return tag.RowsAffected(), nil
}

// isUniqueViolation kiểm tra lỗi 23505 (unique_violation) từ Postgres
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
