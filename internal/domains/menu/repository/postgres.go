package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"rez-backend/internal/domains/menu/model"
)

// MenuRepository định nghĩa data access cho menu
type MenuRepository interface {
	GetMenuByStore(ctx context.Context, storeID uuid.UUID) ([]*model.MenuSection, error)
	FindSectionByID(ctx context.Context, id uuid.UUID) (*model.MenuSection, error)
	CreateSection(ctx context.Context, section *model.MenuSection) error
	UpdateSection(ctx context.Context, section *model.MenuSection) error
	DeleteSection(ctx context.Context, id uuid.UUID) error

	FindItemByID(ctx context.Context, id uuid.UUID) (*model.MenuItem, error)
	CreateItem(ctx context.Context, item *model.MenuItem) error
	UpdateItem(ctx context.Context, item *model.MenuItem) error
	SetItemAvailability(ctx context.Context, id uuid.UUID, available bool) error
	DeleteItem(ctx context.Context, id uuid.UUID) error
}

type postgresMenuRepository struct {
	db *pgxpool.Pool
}

func NewPostgresMenuRepository(db *pgxpool.Pool) MenuRepository {
	return &postgresMenuRepository{db: db}
}

// GetMenuByStore trả về toàn bộ menu của store: sections theo sort_order,
// items của từng section gom trong một query thứ hai.
func (r *postgresMenuRepository) GetMenuByStore(ctx context.Context, storeID uuid.UUID) ([]*model.MenuSection, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, store_id, name, sort_order, created_at, updated_at
		FROM menu_sections
		WHERE store_id = $1
		ORDER BY sort_order ASC, name ASC
	`, storeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query menu sections: %w", err)
	}
	defer rows.Close()

	sections := make([]*model.MenuSection, 0)
	byID := make(map[uuid.UUID]*model.MenuSection)
	for rows.Next() {
		s := &model.MenuSection{Items: []*model.MenuItem{}}
		if err := rows.Scan(&s.ID, &s.StoreID, &s.Name, &s.SortOrder, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan menu section: %w", err)
		}
		sections = append(sections, s)
		byID[s.ID] = s
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(sections) == 0 {
		return sections, nil
	}

	itemRows, err := r.db.Query(ctx, `
		SELECT i.id, i.section_id, i.name, i.description, i.price, i.is_veg,
		       i.is_available, i.image_url, i.created_at, i.updated_at
		FROM menu_items i
		JOIN menu_sections s ON s.id = i.section_id
		WHERE s.store_id = $1
		ORDER BY i.name ASC
	`, storeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query menu items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		item, err := scanItem(itemRows)
		if err != nil {
			return nil, err
		}
		if section, ok := byID[item.SectionID]; ok {
			section.Items = append(section.Items, item)
		}
	}
	return sections, itemRows.Err()
}

func (r *postgresMenuRepository) FindSectionByID(ctx context.Context, id uuid.UUID) (*model.MenuSection, error) {
	s := &model.MenuSection{}
	err := r.db.QueryRow(ctx, `
		SELECT id, store_id, name, sort_order, created_at, updated_at
		FROM menu_sections
		WHERE id = $1
	`, id).Scan(&s.ID, &s.StoreID, &s.Name, &s.SortOrder, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrSectionNotFound
		}
		return nil, fmt.Errorf("failed to find menu section: %w", err)
	}
	return s, nil
}

func (r *postgresMenuRepository) CreateSection(ctx context.Context, section *model.MenuSection) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO menu_sections (id, store_id, name, sort_order, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, section.ID, section.StoreID, section.Name, section.SortOrder, section.CreatedAt, section.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create menu section: %w", err)
	}
	return nil
}

func (r *postgresMenuRepository) UpdateSection(ctx context.Context, section *model.MenuSection) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE menu_sections
		SET name = $2, sort_order = $3, updated_at = $4
		WHERE id = $1
	`, section.ID, section.Name, section.SortOrder, section.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update menu section: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrSectionNotFound
	}
	return nil
}

func (r *postgresMenuRepository) DeleteSection(ctx context.Context, id uuid.UUID) error {
	// Items bị xóa theo qua ON DELETE CASCADE
	tag, err := r.db.Exec(ctx, `DELETE FROM menu_sections WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete menu section: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrSectionNotFound
	}
	return nil
}

func (r *postgresMenuRepository) FindItemByID(ctx context.Context, id uuid.UUID) (*model.MenuItem, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, section_id, name, description, price, is_veg,
		       is_available, image_url, created_at, updated_at
		FROM menu_items
		WHERE id = $1
	`, id)
	item, err := scanItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrItemNotFound
		}
		return nil, err
	}
	return item, nil
}

func (r *postgresMenuRepository) CreateItem(ctx context.Context, item *model.MenuItem) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO menu_items (id, section_id, name, description, price, is_veg,
			is_available, image_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, item.ID, item.SectionID, item.Name, item.Description, item.Price,
		item.IsVeg, item.IsAvailable, item.ImageURL, item.CreatedAt, item.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create menu item: %w", err)
	}
	return nil
}

func (r *postgresMenuRepository) UpdateItem(ctx context.Context, item *model.MenuItem) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE menu_items
		SET name = $2, description = $3, price = $4, is_veg = $5,
		    is_available = $6, image_url = $7, updated_at = $8
		WHERE id = $1
	`, item.ID, item.Name, item.Description, item.Price, item.IsVeg,
		item.IsAvailable, item.ImageURL, item.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update menu item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrItemNotFound
	}
	return nil
}

func (r *postgresMenuRepository) SetItemAvailability(ctx context.Context, id uuid.UUID, available bool) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE menu_items
		SET is_available = $2, updated_at = NOW()
		WHERE id = $1
	`, id, available)
	if err != nil {
		return fmt.Errorf("failed to update item availability: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrItemNotFound
	}
	return nil
}

func (r *postgresMenuRepository) DeleteItem(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM menu_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete menu item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrItemNotFound
	}
	return nil
}

func scanItem(row pgx.Row) (*model.MenuItem, error) {
	item := &model.MenuItem{}
	err := row.Scan(&item.ID, &item.SectionID, &item.Name, &item.Description,
		&item.Price, &item.IsVeg, &item.IsAvailable, &item.ImageURL,
		&item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return item, nil
}
