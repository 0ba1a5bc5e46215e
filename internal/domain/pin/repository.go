package pin

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// ErrPinNotFound is returned when a pin doesn't exist or belongs to
// another account
var ErrPinNotFound = errors.New("pin not found")

// Repository defines pin data access. All reads and writes are scoped to
// the owning account.
type Repository interface {
	Create(ctx context.Context, p *Pin) error
	GetByID(ctx context.Context, accountID, id uuid.UUID) (*Pin, error)
	ListByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]Pin, error)
	Update(ctx context.Context, p *Pin) error
	Delete(ctx context.Context, accountID, id uuid.UUID) error
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates pin repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, p *Pin) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO pins (id, account_id, latitude, longitude, label, note, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, p.ID, p.AccountID, p.Latitude, p.Longitude, p.Label, p.Note, p.CreatedAt, p.UpdatedAt)
	return err
}

func (r *repository) GetByID(ctx context.Context, accountID, id uuid.UUID) (*Pin, error) {
	var p Pin
	err := r.db.GetContext(ctx, &p, `
		SELECT id, account_id, latitude, longitude, label, note, created_at, updated_at
		FROM pins
		WHERE id = $1 AND account_id = $2
	`, id, accountID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPinNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *repository) ListByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]Pin, error) {
	if limit <= 0 {
		limit = 100
	}

	pins := make([]Pin, 0)
	err := r.db.SelectContext(ctx, &pins, `
		SELECT id, account_id, latitude, longitude, label, note, created_at, updated_at
		FROM pins
		WHERE account_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, accountID, limit, offset)
	if err != nil {
		return nil, err
	}
	return pins, nil
}

func (r *repository) Update(ctx context.Context, p *Pin) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE pins
		SET latitude = $3, longitude = $4, label = $5, note = $6, updated_at = now()
		WHERE id = $1 AND account_id = $2
	`, p.ID, p.AccountID, p.Latitude, p.Longitude, p.Label, p.Note)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrPinNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, accountID, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM pins WHERE id = $1 AND account_id = $2
	`, id, accountID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrPinNotFound
	}
	return nil
}
