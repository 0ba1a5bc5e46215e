package pin

import (
	"time"

	"github.com/google/uuid"
)

// Pin is a map marker an account drops while exploring properties.
type Pin struct {
	ID        uuid.UUID `db:"id"`
	AccountID uuid.UUID `db:"account_id"`
	Latitude  float64   `db:"latitude"`
	Longitude float64   `db:"longitude"`
	Label     string    `db:"label"`
	Note      string    `db:"note"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
