package model

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrStoreNotFound = errors.New("store not found")

// Store - cửa hàng thuộc một merchant
type Store struct {
	ID          uuid.UUID `json:"id" db:"id"`
	MerchantID  uuid.UUID `json:"merchant_id" db:"merchant_id"`
	Name        string    `json:"name" db:"name"`
	Slug        string    `json:"slug" db:"slug"`
	Description *string   `json:"description,omitempty" db:"description"`
	LogoURL     *string   `json:"logo_url,omitempty" db:"logo_url"`

	AddressLine string  `json:"address_line" db:"address_line"`
	City        string  `json:"city" db:"city"`
	State       string  `json:"state" db:"state"`
	Pincode     string  `json:"pincode" db:"pincode"`

	Rating      decimal.Decimal `json:"rating" db:"rating"`
	RatingCount int             `json:"rating_count" db:"rating_count"`

	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// CreateStoreRequest - admin/merchant tạo store
type CreateStoreRequest struct {
	MerchantID  uuid.UUID `json:"merchant_id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	LogoURL     *string   `json:"logo_url,omitempty"`
	AddressLine string    `json:"address_line"`
	City        string    `json:"city"`
	State       string    `json:"state"`
	Pincode     string    `json:"pincode"`
}

func (r CreateStoreRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.MerchantID, validation.Required.Error("Merchant ID is required")),
		validation.Field(&r.Name, validation.Required.Error("Name is required"), validation.Length(2, 200)),
		validation.Field(&r.AddressLine, validation.Required.Error("Address is required")),
		validation.Field(&r.City, validation.Required.Error("City is required")),
		validation.Field(&r.Pincode, validation.Required, validation.Length(6, 6).Error("Pincode must be 6 digits")),
	)
}

// ListStoresFilter - filter cho listing
type ListStoresFilter struct {
	Search string
	City   string
	Page   int
	Limit  int
}
