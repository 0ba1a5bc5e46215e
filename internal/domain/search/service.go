package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/homescope/homescope-api/internal/domain/credit"
	"github.com/homescope/homescope-api/internal/pkg/propertydata"
)

// PropertyLookup is the outbound provider contract
type PropertyLookup interface {
	Lookup(ctx context.Context, query string, enriched bool) (*propertydata.Report, error)
}

// Result is one completed search with its property payload
type Result struct {
	Search           *Search
	Report           *propertydata.Report
	CreditsConsumed  int
	RemainingCredits int
}

// Service runs property searches through the credit gate. Charging is
// pessimistic: the smart tier is consumed before the provider call and
// refunded if the provider fails, so a partial failure never yields a free
// paid search and never strands a charge.
type Service struct {
	repo     Repository
	gate     credit.Service
	provider PropertyLookup
}

// NewService creates search service
func NewService(repo Repository, gate credit.Service, provider PropertyLookup) *Service {
	return &Service{repo: repo, gate: gate, provider: provider}
}

// Run executes one search for an optionally-authenticated caller.
func (s *Service) Run(ctx context.Context, accountID *uuid.UUID, query string, tier credit.Tier) (*Result, error) {
	decision, err := s.gate.Validate(ctx, accountID, tier)
	if err != nil {
		return nil, err
	}
	if !decision.CanProceed {
		switch decision.Reason {
		case credit.ReasonAuthenticationRequired:
			return nil, credit.ErrAuthenticationRequired
		default:
			return nil, credit.ErrInsufficientCredits
		}
	}

	rec := &Search{
		ID:        uuid.New(),
		AccountID: accountID,
		Query:     query,
		Tier:      string(tier),
		Status:    string(StatusPending),
		CreatedAt: time.Now(),
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, err
	}

	// Consume at action time, not validate time: validate is advisory and
	// a concurrent request may have spent the balance since.
	consumed := 0
	remaining := decision.Balance
	if tier == credit.TierSmart {
		outcome, err := s.gate.Consume(ctx, *accountID, tier, rec.ID)
		if err != nil {
			s.finish(ctx, rec, StatusFailed, 0)
			return nil, err
		}
		if !outcome.Success {
			s.finish(ctx, rec, StatusFailed, 0)
			return nil, credit.ErrInsufficientCredits
		}
		consumed = outcome.CreditsConsumed
		remaining = outcome.RemainingCredits
	}

	report, err := s.provider.Lookup(ctx, query, tier == credit.TierSmart)
	if err != nil {
		if consumed > 0 {
			if refundErr := s.gate.Refund(ctx, *accountID, tier, rec.ID); refundErr != nil {
				// The consumption row still references the search, so the
				// charge stays auditable until a retried refund lands.
				log.Error().Err(refundErr).
					Str("search_id", rec.ID.String()).
					Msg("Failed to refund search credits")
			} else {
				consumed = 0
			}
		}
		s.finish(ctx, rec, StatusFailed, consumed)
		if errors.Is(err, propertydata.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrProviderFailed, err)
	}

	s.finish(ctx, rec, StatusCompleted, consumed)
	rec.Status = string(StatusCompleted)
	rec.CreditsSpent = consumed

	return &Result{
		Search:           rec,
		Report:           report,
		CreditsConsumed:  consumed,
		RemainingCredits: remaining,
	}, nil
}

// History returns an account's past searches
func (s *Service) History(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]Search, error) {
	return s.repo.ListByAccount(ctx, accountID, limit, offset)
}

func (s *Service) finish(ctx context.Context, rec *Search, status Status, creditsSpent int) {
	if err := s.repo.Finish(ctx, rec.ID, status, creditsSpent); err != nil {
		log.Error().Err(err).Str("search_id", rec.ID.String()).Msg("Failed to update search status")
	}
}
