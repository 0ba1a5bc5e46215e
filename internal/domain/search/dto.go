package search

import (
	"time"

	"github.com/google/uuid"

	"github.com/homescope/homescope-api/internal/pkg/propertydata"
)

// RunRequest for POST /searches
type RunRequest struct {
	Query string `json:"query" validate:"required,min=3,max=300"`
	Tier  string `json:"tier" validate:"required,tier"`
}

// RunResponse for POST /searches
type RunResponse struct {
	SearchID         uuid.UUID            `json:"search_id"`
	Tier             string               `json:"tier"`
	CreditsConsumed  int                  `json:"credits_consumed"`
	RemainingCredits int                  `json:"remaining_credits"`
	Report           *propertydata.Report `json:"report"`
}

// HistoryItem represents a past search in API
type HistoryItem struct {
	ID           uuid.UUID `json:"id"`
	Query        string    `json:"query"`
	Tier         string    `json:"tier"`
	CreditsSpent int       `json:"credits_spent"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

// HistoryItemFromEntity converts a search record to API form
func HistoryItemFromEntity(s Search) HistoryItem {
	return HistoryItem{
		ID:           s.ID,
		Query:        s.Query,
		Tier:         s.Tier,
		CreditsSpent: s.CreditsSpent,
		Status:       s.Status,
		CreatedAt:    s.CreatedAt,
	}
}

// ValidateRequest for POST /search/validate
type ValidateRequest struct {
	Tier string `json:"tier" validate:"required,tier"`
}
