package payment

import (
	"time"

	"github.com/google/uuid"
)

// CheckoutRequest for POST /payments/checkout
type CheckoutRequest struct {
	PackageID string `json:"package_id" validate:"required"`
}

// PaymentResponse represents a payment in API
type PaymentResponse struct {
	ID          uuid.UUID `json:"id"`
	PackageID   string    `json:"package_id"`
	Credits     int       `json:"credits"`
	AmountCents int64     `json:"amount_cents"`
	Currency    string    `json:"currency"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// PaymentResponseFromEntity converts payment to response
func PaymentResponseFromEntity(p *Payment) PaymentResponse {
	return PaymentResponse{
		ID:          p.ID,
		PackageID:   p.PackageID,
		Credits:     p.Credits,
		AmountCents: p.AmountCents,
		Currency:    p.Currency,
		Status:      p.Status,
		CreatedAt:   p.CreatedAt,
	}
}
