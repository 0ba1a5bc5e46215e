package payment

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository defines payment data access
type Repository interface {
	Create(ctx context.Context, p *Payment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	ListByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]Payment, error)
	SetCheckoutID(ctx context.Context, id uuid.UUID, checkoutID string) error
	// Settle moves a pending payment to its terminal status. Returns
	// false when the payment was already settled, which makes webhook
	// replays harmless.
	Settle(ctx context.Context, id uuid.UUID, status Status) (bool, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates payment repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, p *Payment) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO payments (id, account_id, package_id, credits, amount_cents, currency, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, p.ID, p.AccountID, p.PackageID, p.Credits, p.AmountCents, p.Currency, p.Status, p.CreatedAt, p.UpdatedAt)
	return err
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Payment, error) {
	var p Payment
	err := r.db.GetContext(ctx, &p, `
		SELECT id, account_id, package_id, credits, amount_cents, currency, status, checkout_id, created_at, updated_at
		FROM payments
		WHERE id = $1
	`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *repository) ListByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]Payment, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	payments := make([]Payment, 0)
	err := r.db.SelectContext(ctx, &payments, `
		SELECT id, account_id, package_id, credits, amount_cents, currency, status, checkout_id, created_at, updated_at
		FROM payments
		WHERE account_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, accountID, limit, offset)
	if err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *repository) SetCheckoutID(ctx context.Context, id uuid.UUID, checkoutID string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE payments SET checkout_id = $2, updated_at = now() WHERE id = $1
	`, id, checkoutID)
	return err
}

func (r *repository) Settle(ctx context.Context, id uuid.UUID, status Status) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE payments
		SET status = $2, updated_at = now()
		WHERE id = $1 AND status = 'pending'
	`, id, status)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}
