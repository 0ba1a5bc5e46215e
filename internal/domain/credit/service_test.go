package credit

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

// fakeRepo is an in-memory Repository with the same dedup semantics as
// the SQL implementation.
type fakeRepo struct {
	balances map[uuid.UUID]int
	seen     map[string]bool
	consumes int
	grants   int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		balances: make(map[uuid.UUID]int),
		seen:     make(map[string]bool),
	}
}

func (f *fakeRepo) Consume(ctx context.Context, accountID uuid.UUID, amount int, referenceID uuid.UUID, description string) (int, bool, error) {
	f.consumes++
	key := accountID.String() + "/" + referenceID.String() + "/" + string(KindConsumption)
	if f.seen[key] {
		return f.balances[accountID], true, nil
	}
	if f.balances[accountID] < amount {
		return 0, false, ErrInsufficientCredits
	}
	f.seen[key] = true
	f.balances[accountID] -= amount
	return f.balances[accountID], false, nil
}

func (f *fakeRepo) Grant(ctx context.Context, accountID uuid.UUID, amount int, kind Kind, referenceID *uuid.UUID, description string) (int, bool, error) {
	f.grants++
	if referenceID != nil {
		key := accountID.String() + "/" + referenceID.String() + "/" + string(kind)
		if f.seen[key] {
			return f.balances[accountID], true, nil
		}
		f.seen[key] = true
	}
	f.balances[accountID] += amount
	return f.balances[accountID], false, nil
}

func (f *fakeRepo) GetBalance(ctx context.Context, accountID uuid.UUID) (int, error) {
	return f.balances[accountID], nil
}

func (f *fakeRepo) ListTransactions(ctx context.Context, accountID uuid.UUID, p Pagination) ([]Transaction, error) {
	return nil, nil
}

type recordingPublisher struct {
	events []int
}

func (p *recordingPublisher) BalanceUpdated(ctx context.Context, accountID uuid.UUID, balance int) {
	p.events = append(p.events, balance)
}

func TestValidateBasicAnonymous(t *testing.T) {
	svc := NewService(newFakeRepo(), nil)

	result, err := svc.Validate(context.Background(), nil, TierBasic)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if !result.CanProceed {
		t.Fatal("expected anonymous basic search to proceed")
	}
	if result.CreditsRequired != 0 {
		t.Fatalf("expected 0 credits required, got %d", result.CreditsRequired)
	}
}

func TestValidateSmartAnonymous(t *testing.T) {
	svc := NewService(newFakeRepo(), nil)

	result, err := svc.Validate(context.Background(), nil, TierSmart)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if result.CanProceed {
		t.Fatal("expected anonymous smart search to be rejected")
	}
	if result.Reason != ReasonAuthenticationRequired {
		t.Fatalf("expected authentication_required, got %q", result.Reason)
	}
}

func TestValidateSmartInsufficient(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil)
	accountID := uuid.New()

	result, err := svc.Validate(context.Background(), &accountID, TierSmart)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if result.CanProceed {
		t.Fatal("expected zero-balance smart validate to fail")
	}
	if result.Reason != ReasonInsufficientCredits {
		t.Fatalf("expected insufficient_credits, got %q", result.Reason)
	}
	if result.CreditsRequired != 1 {
		t.Fatalf("expected 1 credit required, got %d", result.CreditsRequired)
	}
}

func TestValidateUnknownTier(t *testing.T) {
	svc := NewService(newFakeRepo(), nil)

	if _, err := svc.Validate(context.Background(), nil, Tier("deluxe")); !errors.Is(err, ErrInvalidTier) {
		t.Fatalf("expected ErrInvalidTier, got %v", err)
	}
}

func TestConsumeBasicSkipsLedger(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil)

	result, err := svc.Consume(context.Background(), uuid.New(), TierBasic, uuid.New())
	if err != nil {
		t.Fatalf("consume failed: %v", err)
	}
	if !result.Success {
		t.Fatal("expected basic consume to succeed")
	}
	if repo.consumes != 0 {
		t.Fatalf("basic consume must not touch the ledger, saw %d calls", repo.consumes)
	}
}

func TestConsumeSmart(t *testing.T) {
	repo := newFakeRepo()
	events := &recordingPublisher{}
	svc := NewService(repo, events)
	accountID := uuid.New()
	repo.balances[accountID] = 3

	result, err := svc.Consume(context.Background(), accountID, TierSmart, uuid.New())
	if err != nil {
		t.Fatalf("consume failed: %v", err)
	}
	if !result.Success {
		t.Fatal("expected consume to succeed")
	}
	if result.CreditsConsumed != 1 || result.RemainingCredits != 2 {
		t.Fatalf("expected 1 consumed / 2 remaining, got %d / %d",
			result.CreditsConsumed, result.RemainingCredits)
	}
	if len(events.events) != 1 || events.events[0] != 2 {
		t.Fatalf("expected one balance event with 2, got %v", events.events)
	}
}

func TestConsumeSmartInsufficient(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil)
	accountID := uuid.New()

	result, err := svc.Consume(context.Background(), accountID, TierSmart, uuid.New())
	if err != nil {
		t.Fatalf("expected gate outcome, not error: %v", err)
	}
	if result.Success {
		t.Fatal("expected consume to fail on zero balance")
	}
	if result.Reason != ReasonInsufficientCredits {
		t.Fatalf("expected insufficient_credits, got %q", result.Reason)
	}
}

func TestConsumeRetryIsDuplicate(t *testing.T) {
	repo := newFakeRepo()
	events := &recordingPublisher{}
	svc := NewService(repo, events)
	accountID := uuid.New()
	repo.balances[accountID] = 5
	refID := uuid.New()

	first, err := svc.Consume(context.Background(), accountID, TierSmart, refID)
	if err != nil || !first.Success {
		t.Fatalf("first consume failed: %v", err)
	}

	second, err := svc.Consume(context.Background(), accountID, TierSmart, refID)
	if err != nil {
		t.Fatalf("retried consume failed: %v", err)
	}
	if !second.Success {
		t.Fatal("expected retried consume to report the original success")
	}
	if second.RemainingCredits != 4 {
		t.Fatalf("expected balance 4 after retry, got %d", second.RemainingCredits)
	}
	if len(events.events) != 1 {
		t.Fatalf("duplicate must not publish a second balance event, got %v", events.events)
	}
}

func TestRefundIdempotent(t *testing.T) {
	repo := newFakeRepo()
	events := &recordingPublisher{}
	svc := NewService(repo, events)
	accountID := uuid.New()
	repo.balances[accountID] = 5
	refID := uuid.New()

	if _, err := svc.Consume(context.Background(), accountID, TierSmart, refID); err != nil {
		t.Fatalf("consume failed: %v", err)
	}
	if err := svc.Refund(context.Background(), accountID, TierSmart, refID); err != nil {
		t.Fatalf("refund failed: %v", err)
	}
	if err := svc.Refund(context.Background(), accountID, TierSmart, refID); err != nil {
		t.Fatalf("retried refund failed: %v", err)
	}

	balance, _ := svc.GetBalance(context.Background(), accountID)
	if balance != 5 {
		t.Fatalf("expected balance restored to 5, got %d", balance)
	}
	// One event for the consume, one for the first refund only.
	if len(events.events) != 2 {
		t.Fatalf("expected 2 balance events, got %v", events.events)
	}
}

func TestGrantValidation(t *testing.T) {
	svc := NewService(newFakeRepo(), nil)
	accountID := uuid.New()

	if _, err := svc.Grant(context.Background(), accountID, 0, KindGrant, "", nil); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount for zero grant, got %v", err)
	}
	if _, err := svc.Grant(context.Background(), accountID, -3, KindGrant, "", nil); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount for negative grant, got %v", err)
	}
	if _, err := svc.Grant(context.Background(), accountID, 1, KindConsumption, "", nil); !errors.Is(err, ErrInvalidKind) {
		t.Fatalf("expected ErrInvalidKind for consumption grant, got %v", err)
	}

	balance, err := svc.Grant(context.Background(), accountID, 3, KindGrant, "signup grant", nil)
	if err != nil {
		t.Fatalf("grant failed: %v", err)
	}
	if balance != 3 {
		t.Fatalf("expected balance 3, got %d", balance)
	}
}
