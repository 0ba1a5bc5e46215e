package search

import (
	"time"

	"github.com/google/uuid"
)

// Status of one search record
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Search is one property lookup. Its id is the reference the credit gate
// uses to deduplicate charges and refunds for this search.
type Search struct {
	ID           uuid.UUID  `db:"id"`
	AccountID    *uuid.UUID `db:"account_id"` // nil for anonymous basic searches
	Query        string     `db:"query"`
	Tier         string     `db:"tier"`
	CreditsSpent int        `db:"credits_spent"`
	Status       string     `db:"status"`
	CreatedAt    time.Time  `db:"created_at"`
}
