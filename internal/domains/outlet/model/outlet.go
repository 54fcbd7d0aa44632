package model

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

var ErrOutletNotFound = errors.New("outlet not found")

// Outlet - điểm bán vật lý của một store
type Outlet struct {
	ID      uuid.UUID `json:"id" db:"id"`
	StoreID uuid.UUID `json:"store_id" db:"store_id"`
	Name    string    `json:"name" db:"name"`

	AddressLine string  `json:"address_line" db:"address_line"`
	City        string  `json:"city" db:"city"`
	Pincode     string  `json:"pincode" db:"pincode"`
	Latitude    float64 `json:"latitude" db:"latitude"`
	Longitude   float64 `json:"longitude" db:"longitude"`

	Phone     *string `json:"phone,omitempty" db:"phone"`
	OpensAt   string  `json:"opens_at" db:"opens_at"`   // "09:00"
	ClosesAt  string  `json:"closes_at" db:"closes_at"` // "22:00"

	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// NearbyOutlet - outlet kèm khoảng cách (km) từ vị trí query
type NearbyOutlet struct {
	Outlet
	DistanceKm float64 `json:"distance_km"`
}

// CreateOutletRequest - tạo/sửa outlet
type CreateOutletRequest struct {
	StoreID     uuid.UUID `json:"store_id"`
	Name        string    `json:"name"`
	AddressLine string    `json:"address_line"`
	City        string    `json:"city"`
	Pincode     string    `json:"pincode"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	Phone       *string   `json:"phone,omitempty"`
	OpensAt     string    `json:"opens_at"`
	ClosesAt    string    `json:"closes_at"`
}

func (r CreateOutletRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.StoreID, validation.Required.Error("Store ID is required")),
		validation.Field(&r.Name, validation.Required.Error("Name is required"), validation.Length(2, 200)),
		validation.Field(&r.AddressLine, validation.Required.Error("Address is required")),
		validation.Field(&r.Latitude, validation.Min(-90.0), validation.Max(90.0)),
		validation.Field(&r.Longitude, validation.Min(-180.0), validation.Max(180.0)),
	)
}
