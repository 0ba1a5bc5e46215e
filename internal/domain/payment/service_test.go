package payment

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/homescope/homescope-api/internal/domain/credit"
	"github.com/homescope/homescope-api/internal/pkg/paylink"
)

type fakePaymentRepo struct {
	payments map[uuid.UUID]*Payment
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{payments: make(map[uuid.UUID]*Payment)}
}

func (f *fakePaymentRepo) Create(ctx context.Context, p *Payment) error {
	cp := *p
	f.payments[p.ID] = &cp
	return nil
}

func (f *fakePaymentRepo) GetByID(ctx context.Context, id uuid.UUID) (*Payment, error) {
	p, ok := f.payments[id]
	if !ok {
		return nil, ErrPaymentNotFound
	}
	return p, nil
}

func (f *fakePaymentRepo) ListByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]Payment, error) {
	out := make([]Payment, 0)
	for _, p := range f.payments {
		if p.AccountID == accountID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakePaymentRepo) SetCheckoutID(ctx context.Context, id uuid.UUID, checkoutID string) error {
	if p, ok := f.payments[id]; ok {
		p.CheckoutID = &checkoutID
	}
	return nil
}

func (f *fakePaymentRepo) Settle(ctx context.Context, id uuid.UUID, status Status) (bool, error) {
	p, ok := f.payments[id]
	if !ok || p.Status != StatusPending {
		return false, nil
	}
	p.Status = status
	return true, nil
}

// fakeGate records grants and dedupes by reference like the real ledger.
type fakeGate struct {
	balances map[uuid.UUID]int
	seen     map[string]bool
	grants   int
}

func newFakeGate() *fakeGate {
	return &fakeGate{balances: make(map[uuid.UUID]int), seen: make(map[string]bool)}
}

func (f *fakeGate) Validate(ctx context.Context, accountID *uuid.UUID, tier credit.Tier) (*credit.ValidateResult, error) {
	return nil, errors.New("not used")
}

func (f *fakeGate) Consume(ctx context.Context, accountID uuid.UUID, tier credit.Tier, referenceID uuid.UUID) (*credit.ConsumeResult, error) {
	return nil, errors.New("not used")
}

func (f *fakeGate) Refund(ctx context.Context, accountID uuid.UUID, tier credit.Tier, referenceID uuid.UUID) error {
	return errors.New("not used")
}

func (f *fakeGate) Grant(ctx context.Context, accountID uuid.UUID, amount int, kind credit.Kind, description string, referenceID *uuid.UUID) (int, error) {
	f.grants++
	if referenceID != nil {
		key := accountID.String() + "/" + referenceID.String() + "/" + string(kind)
		if f.seen[key] {
			return f.balances[accountID], nil
		}
		f.seen[key] = true
	}
	f.balances[accountID] += amount
	return f.balances[accountID], nil
}

func (f *fakeGate) GetBalance(ctx context.Context, accountID uuid.UUID) (int, error) {
	return f.balances[accountID], nil
}

func (f *fakeGate) ListTransactions(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]credit.Transaction, error) {
	return nil, nil
}

const testSecret = "webhook-secret"

func seedPending(repo *fakePaymentRepo, accountID uuid.UUID) *Payment {
	p := &Payment{
		ID:          uuid.New(),
		AccountID:   accountID,
		PackageID:   "starter",
		Credits:     10,
		AmountCents: 999,
		Currency:    "USD",
		Status:      StatusPending,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	repo.payments[p.ID] = p
	return p
}

func signedEvent(t *testing.T, orderID, status string) ([]byte, string) {
	t.Helper()
	payload, err := json.Marshal(WebhookEvent{
		CheckoutID: "chk_1",
		OrderID:    orderID,
		Status:     status,
	})
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}
	return payload, paylink.SignPayload(payload, testSecret)
}

func TestHandleWebhookGrantsCredits(t *testing.T) {
	repo := newFakePaymentRepo()
	gate := newFakeGate()
	svc := NewService(repo, nil, gate, testSecret, "", "")

	accountID := uuid.New()
	p := seedPending(repo, accountID)

	payload, sig := signedEvent(t, p.ID.String(), "succeeded")
	if err := svc.HandleWebhook(context.Background(), payload, sig); err != nil {
		t.Fatalf("webhook failed: %v", err)
	}

	if repo.payments[p.ID].Status != StatusSucceeded {
		t.Fatalf("expected succeeded, got %q", repo.payments[p.ID].Status)
	}
	if gate.balances[accountID] != 10 {
		t.Fatalf("expected 10 credits granted, got %d", gate.balances[accountID])
	}
}

func TestHandleWebhookReplayGrantsOnce(t *testing.T) {
	repo := newFakePaymentRepo()
	gate := newFakeGate()
	svc := NewService(repo, nil, gate, testSecret, "", "")

	accountID := uuid.New()
	p := seedPending(repo, accountID)

	payload, sig := signedEvent(t, p.ID.String(), "succeeded")
	for i := 0; i < 3; i++ {
		if err := svc.HandleWebhook(context.Background(), payload, sig); err != nil {
			t.Fatalf("webhook replay %d failed: %v", i, err)
		}
	}

	if gate.balances[accountID] != 10 {
		t.Fatalf("replays must grant once, got %d credits", gate.balances[accountID])
	}
}

func TestHandleWebhookRejectsBadSignature(t *testing.T) {
	repo := newFakePaymentRepo()
	gate := newFakeGate()
	svc := NewService(repo, nil, gate, testSecret, "", "")

	accountID := uuid.New()
	p := seedPending(repo, accountID)

	payload, _ := signedEvent(t, p.ID.String(), "succeeded")
	forged := paylink.SignPayload(payload, "other-secret")

	err := svc.HandleWebhook(context.Background(), payload, forged)
	if !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
	if gate.grants != 0 {
		t.Fatal("forged webhook must not grant credits")
	}
	if repo.payments[p.ID].Status != StatusPending {
		t.Fatal("forged webhook must not settle the payment")
	}
}

func TestHandleWebhookFailedStatus(t *testing.T) {
	repo := newFakePaymentRepo()
	gate := newFakeGate()
	svc := NewService(repo, nil, gate, testSecret, "", "")

	accountID := uuid.New()
	p := seedPending(repo, accountID)

	payload, sig := signedEvent(t, p.ID.String(), "failed")
	if err := svc.HandleWebhook(context.Background(), payload, sig); err != nil {
		t.Fatalf("webhook failed: %v", err)
	}

	if repo.payments[p.ID].Status != StatusFailed {
		t.Fatalf("expected failed, got %q", repo.payments[p.ID].Status)
	}
	if gate.grants != 0 {
		t.Fatal("failed payment must not grant credits")
	}
}

func TestHandleWebhookUnknownOrder(t *testing.T) {
	svc := NewService(newFakePaymentRepo(), nil, newFakeGate(), testSecret, "", "")

	payload, sig := signedEvent(t, uuid.NewString(), "succeeded")
	err := svc.HandleWebhook(context.Background(), payload, sig)
	if !errors.Is(err, ErrPaymentNotFound) {
		t.Fatalf("expected ErrPaymentNotFound, got %v", err)
	}
}

func TestPackageByID(t *testing.T) {
	if _, ok := PackageByID("starter"); !ok {
		t.Fatal("expected starter package to exist")
	}
	if _, ok := PackageByID("mega"); ok {
		t.Fatal("did not expect unknown package")
	}
}
