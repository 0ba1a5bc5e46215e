package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/homescope/homescope-api/internal/domain/credit"
	"github.com/homescope/homescope-api/internal/pkg/paylink"
)

// Service handles payment business logic
type Service struct {
	repo        Repository
	gateway     *paylink.Client
	credits     credit.Service
	secretKey   string
	frontendURL string
	backendURL  string
}

// NewService creates payment service
func NewService(repo Repository, gateway *paylink.Client, credits credit.Service, secretKey, frontendURL, backendURL string) *Service {
	return &Service{
		repo:        repo,
		gateway:     gateway,
		credits:     credits,
		secretKey:   secretKey,
		frontendURL: frontendURL,
		backendURL:  backendURL,
	}
}

// CheckoutResult carries the redirect URL for the buyer.
type CheckoutResult struct {
	PaymentID   uuid.UUID `json:"payment_id"`
	CheckoutURL string    `json:"checkout_url"`
}

// Checkout creates a pending payment and a hosted checkout session for
// the chosen package. The payment ID doubles as the gateway order ID, so
// the webhook can find its way back.
func (s *Service) Checkout(ctx context.Context, accountID uuid.UUID, packageID string) (*CheckoutResult, error) {
	pkg, ok := PackageByID(packageID)
	if !ok {
		return nil, ErrUnknownPackage
	}

	now := time.Now()
	p := &Payment{
		ID:          uuid.New(),
		AccountID:   accountID,
		PackageID:   pkg.ID,
		Credits:     pkg.Credits,
		AmountCents: pkg.AmountCents,
		Currency:    pkg.Currency,
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}

	checkout, err := s.gateway.CreateCheckout(ctx, paylink.CreateCheckoutRequest{
		Amount:      float64(pkg.AmountCents) / 100,
		Currency:    pkg.Currency,
		OrderID:     p.ID.String(),
		Description: fmt.Sprintf("%s pack, %d credits", pkg.Name, pkg.Credits),
		ReturnURL:   s.frontendURL + "/credits",
		CallbackURL: s.backendURL + "/api/v1/payments/webhook",
	})
	if err != nil {
		if _, settleErr := s.repo.Settle(ctx, p.ID, StatusFailed); settleErr != nil {
			log.Error().Err(settleErr).Str("payment_id", p.ID.String()).Msg("Failed to mark payment failed")
		}
		return nil, fmt.Errorf("failed to create checkout: %w", err)
	}

	if err := s.repo.SetCheckoutID(ctx, p.ID, checkout.CheckoutID); err != nil {
		log.Error().Err(err).Str("payment_id", p.ID.String()).Msg("Failed to store checkout id")
	}

	return &CheckoutResult{PaymentID: p.ID, CheckoutURL: checkout.CheckoutURL}, nil
}

// WebhookEvent is the gateway's settlement callback payload.
type WebhookEvent struct {
	CheckoutID string `json:"checkout_id"`
	OrderID    string `json:"order_id"`
	Status     string `json:"status"`
}

// HandleWebhook settles a payment from a gateway callback. Replays are
// harmless: the status flip is conditional on pending, and the credit
// grant dedupes on the payment ID.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	if !paylink.VerifySignature(payload, signature, s.secretKey) {
		return ErrInvalidSignature
	}

	var event WebhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("failed to parse webhook payload: %w", err)
	}

	paymentID, err := uuid.Parse(event.OrderID)
	if err != nil {
		return fmt.Errorf("webhook order_id is not a payment id: %w", err)
	}

	p, err := s.repo.GetByID(ctx, paymentID)
	if err != nil {
		return err
	}

	switch event.Status {
	case "succeeded":
		settled, err := s.repo.Settle(ctx, p.ID, StatusSucceeded)
		if err != nil {
			return fmt.Errorf("failed to settle payment: %w", err)
		}
		if !settled {
			log.Info().Str("payment_id", p.ID.String()).Msg("Payment already settled, ignoring webhook replay")
		}

		// Grant even on replay: the ledger unique constraint makes
		// the second attempt a no-op, and it repairs a crash between
		// Settle and Grant.
		refID := p.ID
		desc := fmt.Sprintf("%s pack purchase", p.PackageID)
		if _, err := s.credits.Grant(ctx, p.AccountID, p.Credits, credit.KindPurchase, desc, &refID); err != nil {
			return fmt.Errorf("failed to grant purchased credits: %w", err)
		}

	case "failed", "cancelled", "expired":
		if _, err := s.repo.Settle(ctx, p.ID, StatusFailed); err != nil {
			return fmt.Errorf("failed to settle payment: %w", err)
		}

	default:
		log.Warn().
			Str("payment_id", p.ID.String()).
			Str("status", event.Status).
			Msg("Ignoring webhook with unknown status")
	}

	return nil
}

// History returns the account's purchase attempts.
func (s *Service) History(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]Payment, error) {
	return s.repo.ListByAccount(ctx, accountID, limit, offset)
}
