package account

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/homescope/homescope-api/internal/domain/credit"
	"github.com/homescope/homescope-api/internal/pkg/jwt"
)

type fakeAccountRepo struct {
	byID    map[uuid.UUID]*Account
	byEmail map[string]*Account
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{
		byID:    make(map[uuid.UUID]*Account),
		byEmail: make(map[string]*Account),
	}
}

func (f *fakeAccountRepo) Create(ctx context.Context, a *Account) error {
	if _, exists := f.byEmail[a.Email]; exists {
		return ErrEmailAlreadyExists
	}
	cp := *a
	f.byID[a.ID] = &cp
	f.byEmail[a.Email] = &cp
	return nil
}

func (f *fakeAccountRepo) GetByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	a, ok := f.byID[id]
	if !ok {
		return nil, ErrAccountNotFound
	}
	return a, nil
}

func (f *fakeAccountRepo) GetByEmail(ctx context.Context, email string) (*Account, error) {
	a, ok := f.byEmail[email]
	if !ok {
		return nil, ErrAccountNotFound
	}
	return a, nil
}

func (f *fakeAccountRepo) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	a, ok := f.byID[id]
	if !ok {
		return ErrAccountNotFound
	}
	a.PasswordHash = passwordHash
	return nil
}

func (f *fakeAccountRepo) Delete(ctx context.Context, id uuid.UUID) error {
	a, ok := f.byID[id]
	if !ok {
		return ErrAccountNotFound
	}
	delete(f.byEmail, a.Email)
	delete(f.byID, id)
	return nil
}

type grantRecord struct {
	accountID uuid.UUID
	amount    int
	kind      credit.Kind
	reference *uuid.UUID
}

type fakeCredits struct {
	grants []grantRecord
}

func (f *fakeCredits) Validate(ctx context.Context, accountID *uuid.UUID, tier credit.Tier) (*credit.ValidateResult, error) {
	return nil, errors.New("not used")
}

func (f *fakeCredits) Consume(ctx context.Context, accountID uuid.UUID, tier credit.Tier, referenceID uuid.UUID) (*credit.ConsumeResult, error) {
	return nil, errors.New("not used")
}

func (f *fakeCredits) Refund(ctx context.Context, accountID uuid.UUID, tier credit.Tier, referenceID uuid.UUID) error {
	return errors.New("not used")
}

func (f *fakeCredits) Grant(ctx context.Context, accountID uuid.UUID, amount int, kind credit.Kind, description string, referenceID *uuid.UUID) (int, error) {
	f.grants = append(f.grants, grantRecord{accountID: accountID, amount: amount, kind: kind, reference: referenceID})
	return amount, nil
}

func (f *fakeCredits) GetBalance(ctx context.Context, accountID uuid.UUID) (int, error) {
	return 0, nil
}

func (f *fakeCredits) ListTransactions(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]credit.Transaction, error) {
	return nil, nil
}

func newTestService(repo Repository, credits credit.Service) *Service {
	jwtService := jwt.NewService("test-secret", 15*time.Minute, time.Hour)
	return NewService(repo, jwtService, nil, credits, 3)
}

func TestRegisterSeedsSignupGrant(t *testing.T) {
	repo := newFakeAccountRepo()
	credits := &fakeCredits{}
	svc := newTestService(repo, credits)

	resp, err := svc.Register(context.Background(), &RegisterRequest{
		Email:    "Buyer@Example.COM",
		Password: "hunter2hunter2",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if resp.Account.Email != "buyer@example.com" {
		t.Fatalf("expected lowercased email, got %q", resp.Account.Email)
	}
	if resp.Tokens.AccessToken == "" || resp.Tokens.RefreshToken == "" {
		t.Fatal("expected token pair")
	}

	if len(credits.grants) != 1 {
		t.Fatalf("expected one signup grant, got %d", len(credits.grants))
	}
	g := credits.grants[0]
	if g.amount != 3 || g.kind != credit.KindGrant {
		t.Fatalf("unexpected grant: %+v", g)
	}
	if g.reference == nil || *g.reference != resp.Account.ID {
		t.Fatal("signup grant must reference the account id for idempotency")
	}
}

func TestRegisterRejectsAdminRole(t *testing.T) {
	svc := newTestService(newFakeAccountRepo(), &fakeCredits{})

	_, err := svc.Register(context.Background(), &RegisterRequest{
		Email:    "admin@example.com",
		Password: "hunter2hunter2",
		Role:     "admin",
	})
	if !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	repo := newFakeAccountRepo()
	svc := newTestService(repo, &fakeCredits{})

	req := &RegisterRequest{Email: "dupe@example.com", Password: "hunter2hunter2"}
	if _, err := svc.Register(context.Background(), req); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	if _, err := svc.Register(context.Background(), req); !errors.Is(err, ErrEmailAlreadyExists) {
		t.Fatalf("expected ErrEmailAlreadyExists, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	repo := newFakeAccountRepo()
	svc := newTestService(repo, &fakeCredits{})

	if _, err := svc.Register(context.Background(), &RegisterRequest{
		Email:    "agent@example.com",
		Password: "hunter2hunter2",
		Role:     "agent",
	}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	resp, err := svc.Login(context.Background(), &LoginRequest{
		Email:    "agent@example.com",
		Password: "hunter2hunter2",
	})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if resp.Account.Role != string(RoleAgent) {
		t.Fatalf("expected agent role, got %q", resp.Account.Role)
	}

	_, err = svc.Login(context.Background(), &LoginRequest{
		Email:    "agent@example.com",
		Password: "wrong-password",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestRefreshWithoutRedis(t *testing.T) {
	svc := newTestService(newFakeAccountRepo(), &fakeCredits{})

	if _, err := svc.Refresh(context.Background(), ""); !errors.Is(err, ErrRefreshTokenRequired) {
		t.Fatalf("expected ErrRefreshTokenRequired, got %v", err)
	}
	if _, err := svc.Refresh(context.Background(), "some-token"); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected ErrInvalidRefreshToken without redis, got %v", err)
	}
}
