package credit

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Reason explains why a gate decision went against the caller. These are
// expected outcomes surfaced to the end user, not failures.
type Reason string

const (
	ReasonAuthenticationRequired Reason = "authentication_required"
	ReasonInsufficientCredits    Reason = "insufficient_credits"
)

// ValidateResult is the advisory pre-check outcome. It does not reserve
// credits; Consume at action time is the final authority.
type ValidateResult struct {
	CanProceed      bool
	CreditsRequired int
	Balance         int
	Reason          Reason
}

// ConsumeResult reports one atomic charge.
type ConsumeResult struct {
	Success          bool
	CreditsConsumed  int
	RemainingCredits int
	Reason           Reason
}

// Publisher pushes balance changes to connected clients. Implementations
// must be non-blocking; delivery is best effort.
type Publisher interface {
	BalanceUpdated(ctx context.Context, accountID uuid.UUID, balance int)
}

// Service gates priced operations against the credit ledger.
type Service interface {
	// Validate answers whether an account may run a search at the given
	// tier. Advisory only; it never deducts.
	Validate(ctx context.Context, accountID *uuid.UUID, tier Tier) (*ValidateResult, error)

	// Consume charges the tier cost exactly once per referenceID. Retries
	// with the same referenceID are safe.
	Consume(ctx context.Context, accountID uuid.UUID, tier Tier, referenceID uuid.UUID) (*ConsumeResult, error)

	// Refund returns the tier cost charged under referenceID. Idempotent
	// per referenceID.
	Refund(ctx context.Context, accountID uuid.UUID, tier Tier, referenceID uuid.UUID) error

	// Grant adds credits (purchases, signup grants, manual adjustments).
	Grant(ctx context.Context, accountID uuid.UUID, amount int, kind Kind, description string, referenceID *uuid.UUID) (int, error)

	GetBalance(ctx context.Context, accountID uuid.UUID) (int, error)
	ListTransactions(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]Transaction, error)
}

type service struct {
	repo   Repository
	events Publisher // nil when realtime is disabled
}

// NewService creates the credit gate on top of a balance store.
func NewService(repo Repository, events Publisher) Service {
	return &service{repo: repo, events: events}
}

func (s *service) Validate(ctx context.Context, accountID *uuid.UUID, tier Tier) (*ValidateResult, error) {
	policy, err := PolicyFor(tier)
	if err != nil {
		return nil, err
	}

	// Basic tier never touches the ledger, authenticated or not.
	if policy.Cost == 0 {
		return &ValidateResult{CanProceed: true, CreditsRequired: 0}, nil
	}

	if accountID == nil || *accountID == uuid.Nil {
		return &ValidateResult{
			CanProceed:      false,
			CreditsRequired: policy.Cost,
			Reason:          ReasonAuthenticationRequired,
		}, nil
	}

	balance, err := s.repo.GetBalance(ctx, *accountID)
	if err != nil {
		return nil, err
	}

	result := &ValidateResult{
		CanProceed:      balance >= policy.Cost,
		CreditsRequired: policy.Cost,
		Balance:         balance,
	}
	if !result.CanProceed {
		result.Reason = ReasonInsufficientCredits
	}
	return result, nil
}

func (s *service) Consume(ctx context.Context, accountID uuid.UUID, tier Tier, referenceID uuid.UUID) (*ConsumeResult, error) {
	policy, err := PolicyFor(tier)
	if err != nil {
		return nil, err
	}

	// Free tier consume is a no-op success, no ledger row.
	if policy.Cost == 0 {
		return &ConsumeResult{Success: true}, nil
	}

	remaining, duplicate, err := s.repo.Consume(ctx, accountID, policy.Cost, referenceID, "smart search")
	if err != nil {
		if errors.Is(err, ErrInsufficientCredits) {
			return &ConsumeResult{
				Success: false,
				Reason:  ReasonInsufficientCredits,
			}, nil
		}
		return nil, err
	}

	if !duplicate {
		s.publishBalance(ctx, accountID, remaining)
	}

	return &ConsumeResult{
		Success:          true,
		CreditsConsumed:  policy.Cost,
		RemainingCredits: remaining,
	}, nil
}

func (s *service) Refund(ctx context.Context, accountID uuid.UUID, tier Tier, referenceID uuid.UUID) error {
	policy, err := PolicyFor(tier)
	if err != nil {
		return err
	}
	if policy.Cost == 0 {
		return nil
	}

	balance, duplicate, err := s.repo.Grant(ctx, accountID, policy.Cost, KindRefund, &referenceID, "search refund")
	if err != nil {
		return err
	}
	if duplicate {
		log.Debug().
			Str("account_id", accountID.String()).
			Str("reference_id", referenceID.String()).
			Msg("Refund already recorded, skipping")
		return nil
	}

	s.publishBalance(ctx, accountID, balance)
	return nil
}

func (s *service) Grant(ctx context.Context, accountID uuid.UUID, amount int, kind Kind, description string, referenceID *uuid.UUID) (int, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	if !ValidKind(kind) || kind == KindConsumption {
		return 0, ErrInvalidKind
	}
	if description == "" {
		description = "credit grant"
	}

	balance, duplicate, err := s.repo.Grant(ctx, accountID, amount, kind, referenceID, description)
	if err != nil {
		return 0, err
	}
	if !duplicate {
		s.publishBalance(ctx, accountID, balance)
	}
	return balance, nil
}

func (s *service) GetBalance(ctx context.Context, accountID uuid.UUID) (int, error) {
	return s.repo.GetBalance(ctx, accountID)
}

func (s *service) ListTransactions(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]Transaction, error) {
	return s.repo.ListTransactions(ctx, accountID, Pagination{Limit: limit, Offset: offset})
}

func (s *service) publishBalance(ctx context.Context, accountID uuid.UUID, balance int) {
	if s.events == nil {
		return
	}
	s.events.BalanceUpdated(ctx, accountID, balance)
}
