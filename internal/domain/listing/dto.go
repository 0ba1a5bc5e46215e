package listing

import (
	"time"

	"github.com/google/uuid"
)

// CreateRequest for POST /listings
type CreateRequest struct {
	Title       string  `json:"title" validate:"required,max=200"`
	Description string  `json:"description" validate:"max=10000"`
	Address     string  `json:"address" validate:"required,max=500"`
	Latitude    float64 `json:"latitude" validate:"required,latitude"`
	Longitude   float64 `json:"longitude" validate:"required,longitude"`
	PriceCents  int64   `json:"price_cents" validate:"required,gt=0"`
	Bedrooms    int     `json:"bedrooms" validate:"gte=0,lte=50"`
	Bathrooms   int     `json:"bathrooms" validate:"gte=0,lte=50"`
	AreaSqft    int     `json:"area_sqft" validate:"gte=0"`
}

// UpdateRequest for PUT /listings/{id}
type UpdateRequest struct {
	Title       string  `json:"title" validate:"required,max=200"`
	Description string  `json:"description" validate:"max=10000"`
	Address     string  `json:"address" validate:"required,max=500"`
	Latitude    float64 `json:"latitude" validate:"required,latitude"`
	Longitude   float64 `json:"longitude" validate:"required,longitude"`
	PriceCents  int64   `json:"price_cents" validate:"required,gt=0"`
	Bedrooms    int     `json:"bedrooms" validate:"gte=0,lte=50"`
	Bathrooms   int     `json:"bathrooms" validate:"gte=0,lte=50"`
	AreaSqft    int     `json:"area_sqft" validate:"gte=0"`
	Status      string  `json:"status" validate:"required,listing_status"`
}

// PresignRequest for POST /listings/{id}/photos/presign
type PresignRequest struct {
	Filename    string `json:"filename" validate:"required,max=255"`
	ContentType string `json:"content_type" validate:"required"`
	Size        int64  `json:"size" validate:"required,gt=0,lte=10485760"`
}

// ConfirmPhotoRequest for POST /listings/{id}/photos/confirm
type ConfirmPhotoRequest struct {
	Key         string `json:"key" validate:"required,max=512"`
	ContentType string `json:"content_type" validate:"required"`
}

// ListingResponse represents a listing in API
type ListingResponse struct {
	ID          uuid.UUID       `json:"id"`
	AccountID   uuid.UUID       `json:"account_id"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Address     string          `json:"address"`
	Latitude    float64         `json:"latitude"`
	Longitude   float64         `json:"longitude"`
	PriceCents  int64           `json:"price_cents"`
	Bedrooms    int             `json:"bedrooms"`
	Bathrooms   int             `json:"bathrooms"`
	AreaSqft    int             `json:"area_sqft"`
	Status      Status          `json:"status"`
	Photos      []PhotoResponse `json:"photos,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// PhotoResponse represents a listing photo in API
type PhotoResponse struct {
	ID            uuid.UUID     `json:"id"`
	URL           string        `json:"url"`
	SortOrder     int           `json:"sort_order"`
	IsCover       bool          `json:"is_cover"`
	ProcessStatus ProcessStatus `json:"process_status"`
	Width         int           `json:"width,omitempty"`
	Height        int           `json:"height,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
}

// ListingResponseFromEntity converts listing to response
func ListingResponseFromEntity(l *Listing) ListingResponse {
	return ListingResponse{
		ID:          l.ID,
		AccountID:   l.AccountID,
		Title:       l.Title,
		Description: l.Description,
		Address:     l.Address,
		Latitude:    l.Latitude,
		Longitude:   l.Longitude,
		PriceCents:  l.PriceCents,
		Bedrooms:    l.Bedrooms,
		Bathrooms:   l.Bathrooms,
		AreaSqft:    l.AreaSqft,
		Status:      l.Status,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}
}

// PhotoResponseFromEntity converts photo to response
func PhotoResponseFromEntity(p *Photo) PhotoResponse {
	return PhotoResponse{
		ID:            p.ID,
		URL:           p.URL,
		SortOrder:     p.SortOrder,
		IsCover:       p.IsCover,
		ProcessStatus: p.ProcessStatus,
		Width:         p.Width,
		Height:        p.Height,
		CreatedAt:     p.CreatedAt,
	}
}
