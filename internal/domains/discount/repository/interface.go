package repository

import (
	"context"
	"time"

	"rez-backend/internal/domains/discount/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// DiscountRepository định nghĩa interface cho discount data access
type DiscountRepository interface {
	// Read operations
	FindByID(ctx context.Context, id uuid.UUID) (*model.Discount, error)
	FindByCode(ctx context.Context, code string) (*model.Discount, error)
	ListActive(ctx context.Context, filter *model.ListDiscountsFilter, now time.Time) ([]*model.Discount, int, error)
	ListForProduct(ctx context.Context, productID uuid.UUID, now time.Time) ([]*model.Discount, error)
	ListByApplicableOn(ctx context.Context, applicableOn model.ApplicableOn, now time.Time) ([]*model.Discount, error)

	// Write operations
	Create(ctx context.Context, d *model.Discount) error
	Update(ctx context.Context, d *model.Discount) error
	UpdateStatus(ctx context.Context, id uuid.UUID, isActive bool) error
	CheckCodeExists(ctx context.Context, code string, excludeID *uuid.UUID) (bool, error)

	// IncrementUsage tăng used_count bằng conditional write trong một statement:
	// chỉ tăng khi usage_limit NULL hoặc used_count < usage_limit.
	// Trả về false khi không row nào bị ảnh hưởng (limit đã hết do request song song).
	IncrementUsage(ctx context.Context, tx pgx.Tx, id uuid.UUID) (bool, error)

	// DeactivateExpired tắt is_active cho các discount đã qua valid_until.
	// Dùng bởi background job; discount không bao giờ bị xóa.
	DeactivateExpired(ctx context.Context, now time.Time) (int64, error)
}

// UsageRepository định nghĩa interface cho discount usage ledger.
// Ledger là append-only: chỉ insert và đọc, không update/delete.
type UsageRepository interface {
	Insert(ctx context.Context, tx pgx.Tx, usage *model.DiscountUsage) error
	CountByDiscountAndUser(ctx context.Context, discountID, userID uuid.UUID) (int, error)
	ListByUser(ctx context.Context, userID uuid.UUID, page, limit int) ([]*model.DiscountUsage, int, error)
	GetAnalytics(ctx context.Context, discountID uuid.UUID) (*model.UsageAnalytics, error)
}
