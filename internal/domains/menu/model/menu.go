package model

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrSectionNotFound = errors.New("menu section not found")
	ErrItemNotFound    = errors.New("menu item not found")
)

// MenuSection - nhóm món trong menu của một store (vd: "Starters", "Beverages")
type MenuSection struct {
	ID        uuid.UUID `json:"id" db:"id"`
	StoreID   uuid.UUID `json:"store_id" db:"store_id"`
	Name      string    `json:"name" db:"name"`
	SortOrder int       `json:"sort_order" db:"sort_order"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	// Items chỉ được fill khi fetch full menu
	Items []*MenuItem `json:"items,omitempty" db:"-"`
}

// MenuItem - một món trong section
type MenuItem struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	SectionID   uuid.UUID       `json:"section_id" db:"section_id"`
	Name        string          `json:"name" db:"name"`
	Description *string         `json:"description,omitempty" db:"description"`
	Price       decimal.Decimal `json:"price" db:"price"`
	IsVeg       bool            `json:"is_veg" db:"is_veg"`
	IsAvailable bool            `json:"is_available" db:"is_available"`
	ImageURL    *string         `json:"image_url,omitempty" db:"image_url"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

// CreateSectionRequest - tạo/sửa section
type CreateSectionRequest struct {
	StoreID   uuid.UUID `json:"store_id"`
	Name      string    `json:"name"`
	SortOrder int       `json:"sort_order"`
}

func (r CreateSectionRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.StoreID, validation.Required.Error("Store ID is required")),
		validation.Field(&r.Name, validation.Required.Error("Name is required"), validation.Length(1, 120)),
		validation.Field(&r.SortOrder, validation.Min(0)),
	)
}

// CreateItemRequest - tạo/sửa item
type CreateItemRequest struct {
	SectionID   uuid.UUID `json:"section_id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	Price       float64   `json:"price"`
	IsVeg       bool      `json:"is_veg"`
	IsAvailable *bool     `json:"is_available,omitempty"`
	ImageURL    *string   `json:"image_url,omitempty"`
}

func (r CreateItemRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.SectionID, validation.Required.Error("Section ID is required")),
		validation.Field(&r.Name, validation.Required.Error("Name is required"), validation.Length(1, 200)),
		validation.Field(&r.Price, validation.Required.Error("Price is required"), validation.Min(0.0)),
	)
}
