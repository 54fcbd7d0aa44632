package model

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrProductNotFound = errors.New("product not found")

// Product - sản phẩm thuộc một store và một category
type Product struct {
	ID          uuid.UUID `json:"id" db:"id"`
	StoreID     uuid.UUID `json:"store_id" db:"store_id"`
	CategoryID  uuid.UUID `json:"category_id" db:"category_id"`
	Name        string    `json:"name" db:"name"`
	Slug        string    `json:"slug" db:"slug"`
	Description *string   `json:"description,omitempty" db:"description"`

	Price         decimal.Decimal  `json:"price" db:"price"`
	OriginalPrice *decimal.Decimal `json:"original_price,omitempty" db:"original_price"`
	Stock         int              `json:"stock" db:"stock"`
	Images        []string         `json:"images,omitempty" db:"images"`

	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// CreateProductRequest - tạo/sửa product
type CreateProductRequest struct {
	StoreID       uuid.UUID `json:"store_id"`
	CategoryID    uuid.UUID `json:"category_id"`
	Name          string    `json:"name"`
	Description   *string   `json:"description,omitempty"`
	Price         float64   `json:"price"`
	OriginalPrice *float64  `json:"original_price,omitempty"`
	Stock         int       `json:"stock"`
	Images        []string  `json:"images,omitempty"`
}

func (r CreateProductRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.StoreID, validation.Required.Error("Store ID is required")),
		validation.Field(&r.CategoryID, validation.Required.Error("Category ID is required")),
		validation.Field(&r.Name, validation.Required.Error("Name is required"), validation.Length(2, 200)),
		validation.Field(&r.Price, validation.Required.Error("Price is required"), validation.Min(0.01)),
		validation.Field(&r.Stock, validation.Min(0)),
	)
}

// ListProductsFilter - filter cho listing
type ListProductsFilter struct {
	StoreID    *uuid.UUID
	CategoryID *uuid.UUID
	Search     string
	Page       int
	Limit      int
}
