package account

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/homescope/homescope-api/internal/domain/credit"
	"github.com/homescope/homescope-api/internal/pkg/jwt"
	"github.com/homescope/homescope-api/internal/pkg/password"
)

// Service handles account business logic
type Service struct {
	repo        Repository
	jwtService  *jwt.Service
	redis       *redis.Client // nil if Redis disabled
	credits     credit.Service
	signupGrant int
}

// NewService creates account service. signupGrant credits are seeded through
// the ledger on registration.
func NewService(repo Repository, jwtService *jwt.Service, redisClient *redis.Client, credits credit.Service, signupGrant int) *Service {
	return &Service{
		repo:        repo,
		jwtService:  jwtService,
		redis:       redisClient,
		credits:     credits,
		signupGrant: signupGrant,
	}
}

// Register creates a new account and seeds its credit balance
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	req.Email = normalizeEmail(req.Email)

	role := req.Role
	if role == "" {
		role = string(RoleUser)
	}
	if !IsValidRole(role) {
		return nil, ErrInvalidRole
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	a := &Account{
		ID:           uuid.New(),
		Email:        req.Email,
		PasswordHash: hash,
		Role:         Role(role),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}

	// Signup grant goes through the ledger so the balance row is born with
	// a matching transaction. Reference = account id keeps it idempotent.
	if s.signupGrant > 0 {
		refID := a.ID
		if _, err := s.credits.Grant(ctx, a.ID, s.signupGrant, credit.KindGrant, "signup grant", &refID); err != nil {
			log.Error().Err(err).Str("account_id", a.ID.String()).Msg("Failed to seed signup credits")
		}
	}

	return s.generateTokens(ctx, a)
}

// Login authenticates an account
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	req.Email = normalizeEmail(req.Email)

	a, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil || a == nil {
		return nil, ErrInvalidCredentials
	}

	if !password.Verify(req.Password, a.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return s.generateTokens(ctx, a)
}

// Refresh rotates a refresh token and issues a new pair
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	if refreshToken == "" {
		return nil, ErrRefreshTokenRequired
	}

	refreshHash := jwt.HashRefreshToken(refreshToken)
	accountID, err := s.getRefreshToken(ctx, refreshHash)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	a, err := s.repo.GetByID(ctx, accountID)
	if err != nil || a == nil {
		return nil, ErrAccountNotFound
	}

	// Token rotation
	_ = s.deleteRefreshToken(ctx, refreshHash)

	return s.generateTokens(ctx, a)
}

// Logout invalidates a refresh token
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.deleteRefreshToken(ctx, jwt.HashRefreshToken(refreshToken))
}

// GetCurrent returns the account for an id
func (s *Service) GetCurrent(ctx context.Context, accountID uuid.UUID) (*AccountResponse, error) {
	a, err := s.repo.GetByID(ctx, accountID)
	if err != nil || a == nil {
		return nil, ErrAccountNotFound
	}

	resp := AccountResponseFromEntity(a)
	return &resp, nil
}

func (s *Service) generateTokens(ctx context.Context, a *Account) (*AuthResponse, error) {
	accessToken, err := s.jwtService.GenerateAccessToken(a.ID, string(a.Role))
	if err != nil {
		return nil, err
	}

	refreshToken, err := jwt.GenerateRefreshToken()
	if err != nil {
		return nil, err
	}

	// Store hash(refresh), never the raw token
	if err := s.storeRefreshToken(ctx, jwt.HashRefreshToken(refreshToken), a.ID); err != nil {
		return nil, err
	}

	return &AuthResponse{
		Account: AccountResponseFromEntity(a),
		Tokens: TokensResponse{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			ExpiresIn:    int(s.jwtService.GetAccessTTL().Seconds()),
		},
	}, nil
}

// Redis helpers (handle nil redis gracefully)
func (s *Service) storeRefreshToken(ctx context.Context, tokenHash string, accountID uuid.UUID) error {
	if s.redis == nil {
		return nil
	}
	return s.redis.Set(ctx, "refresh:"+tokenHash, accountID.String(), s.jwtService.GetRefreshTTL()).Err()
}

func (s *Service) getRefreshToken(ctx context.Context, tokenHash string) (uuid.UUID, error) {
	if s.redis == nil {
		// Without Redis, refresh tokens don't work
		return uuid.Nil, ErrInvalidRefreshToken
	}
	val, err := s.redis.Get(ctx, "refresh:"+tokenHash).Result()
	if err != nil {
		return uuid.Nil, ErrInvalidRefreshToken
	}
	return uuid.Parse(val)
}

func (s *Service) deleteRefreshToken(ctx context.Context, tokenHash string) error {
	if s.redis == nil {
		return nil
	}
	return s.redis.Del(ctx, "refresh:"+tokenHash).Err()
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
