package pin

import (
	"time"

	"github.com/google/uuid"
)

// CreateRequest for POST /pins
type CreateRequest struct {
	Latitude  float64 `json:"latitude" validate:"required,latitude"`
	Longitude float64 `json:"longitude" validate:"required,longitude"`
	Label     string  `json:"label" validate:"required,max=120"`
	Note      string  `json:"note" validate:"max=2000"`
}

// UpdateRequest for PUT /pins/{id}
type UpdateRequest struct {
	Latitude  float64 `json:"latitude" validate:"required,latitude"`
	Longitude float64 `json:"longitude" validate:"required,longitude"`
	Label     string  `json:"label" validate:"required,max=120"`
	Note      string  `json:"note" validate:"max=2000"`
}

// PinResponse represents a pin in API
type PinResponse struct {
	ID        uuid.UUID `json:"id"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Label     string    `json:"label"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PinResponseFromEntity converts pin to response
func PinResponseFromEntity(p *Pin) PinResponse {
	return PinResponse{
		ID:        p.ID,
		Latitude:  p.Latitude,
		Longitude: p.Longitude,
		Label:     p.Label,
		Note:      p.Note,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}
