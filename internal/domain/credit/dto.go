package credit

import (
	"time"

	"github.com/google/uuid"
)

// BalanceResponse for GET /credits/balance
type BalanceResponse struct {
	Balance int `json:"balance"`
}

// TransactionResponse represents a ledger row in API
type TransactionResponse struct {
	ID          uuid.UUID  `json:"id"`
	AmountDelta int        `json:"amount_delta"`
	Kind        string     `json:"kind"`
	Description string     `json:"description"`
	ReferenceID *uuid.UUID `json:"reference_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// TransactionResponseFromEntity converts a ledger row to API form
func TransactionResponseFromEntity(t Transaction) TransactionResponse {
	return TransactionResponse{
		ID:          t.ID,
		AmountDelta: t.AmountDelta,
		Kind:        t.Kind,
		Description: t.Description,
		ReferenceID: t.ReferenceID,
		CreatedAt:   t.CreatedAt,
	}
}

// ValidateResponse for POST /search/validate
type ValidateResponse struct {
	CanProceed      bool   `json:"can_proceed"`
	CreditsRequired int    `json:"credits_required"`
	Balance         int    `json:"balance,omitempty"`
	Reason          string `json:"reason,omitempty"`
}

// ValidateResponseFromResult converts a gate decision to API form
func ValidateResponseFromResult(r *ValidateResult) *ValidateResponse {
	return &ValidateResponse{
		CanProceed:      r.CanProceed,
		CreditsRequired: r.CreditsRequired,
		Balance:         r.Balance,
		Reason:          string(r.Reason),
	}
}
