package listing

import (
	"time"

	"github.com/google/uuid"
)

// Status of a listing
type Status string

const (
	StatusDraft  Status = "draft"
	StatusActive Status = "active"
	StatusSold   Status = "sold"
)

// Listing is a property an agent puts on the market.
type Listing struct {
	ID          uuid.UUID `db:"id"`
	AccountID   uuid.UUID `db:"account_id"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	Address     string    `db:"address"`
	Latitude    float64   `db:"latitude"`
	Longitude   float64   `db:"longitude"`
	PriceCents  int64     `db:"price_cents"`
	Bedrooms    int       `db:"bedrooms"`
	Bathrooms   int       `db:"bathrooms"`
	AreaSqft    int       `db:"area_sqft"`
	Status      Status    `db:"status"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// ProcessStatus tracks the background optimization of an uploaded photo.
type ProcessStatus string

const (
	ProcessPending    ProcessStatus = "pending"
	ProcessProcessing ProcessStatus = "processing"
	ProcessDone       ProcessStatus = "done"
	ProcessFailed     ProcessStatus = "failed"
)

// Photo is an image attached to a listing. The file itself lives in R2;
// the row is created only after the client confirms the direct upload.
type Photo struct {
	ID              uuid.UUID     `db:"id"`
	ListingID       uuid.UUID     `db:"listing_id"`
	Key             string        `db:"key"`
	URL             string        `db:"url"`
	ContentType     string        `db:"content_type"`
	SortOrder       int           `db:"sort_order"`
	IsCover         bool          `db:"is_cover"`
	ProcessStatus   ProcessStatus `db:"process_status"`
	ProcessAttempts int           `db:"process_attempts"`
	ProcessError    *string       `db:"process_error"`
	Width           int           `db:"width"`
	Height          int           `db:"height"`
	CreatedAt       time.Time     `db:"created_at"`
}
