package search

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository defines search history data access
type Repository interface {
	Create(ctx context.Context, s *Search) error
	GetByID(ctx context.Context, id uuid.UUID) (*Search, error)
	Finish(ctx context.Context, id uuid.UUID, status Status, creditsSpent int) error
	ListByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]Search, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates search repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, s *Search) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO searches (id, account_id, query, tier, credits_spent, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, s.ID, s.AccountID, s.Query, s.Tier, s.CreditsSpent, s.Status, s.CreatedAt)
	return err
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Search, error) {
	var s Search
	err := r.db.GetContext(ctx, &s, `
		SELECT id, account_id, query, tier, credits_spent, status, created_at
		FROM searches
		WHERE id = $1
	`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSearchNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *repository) Finish(ctx context.Context, id uuid.UUID, status Status, creditsSpent int) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE searches SET status = $2, credits_spent = $3 WHERE id = $1
	`, id, status, creditsSpent)
	return err
}

func (r *repository) ListByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]Search, error) {
	if limit <= 0 {
		limit = 20
	}

	searches := make([]Search, 0)
	err := r.db.SelectContext(ctx, &searches, `
		SELECT id, account_id, query, tier, credits_spent, status, created_at
		FROM searches
		WHERE account_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, accountID, limit, offset)
	if err != nil {
		return nil, err
	}
	return searches, nil
}
