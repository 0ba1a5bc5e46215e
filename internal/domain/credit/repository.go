package credit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const queryTimeout = 3 * time.Second

// Repository is the balance store contract. All mutations are relative and
// atomic; the guarded decrement at the store is the correctness mechanism,
// not application-level read-then-write.
type Repository interface {
	// Consume atomically appends a negative ledger row and decrements the
	// balance, succeeding only if the balance stays non-negative. A retry
	// with a reference id that already has a consumption row is reported as
	// duplicate without touching the balance.
	Consume(ctx context.Context, accountID uuid.UUID, amount int, referenceID uuid.UUID, description string) (remaining int, duplicate bool, err error)

	// Grant atomically appends a positive ledger row and increments the
	// balance, creating the balance row if the account has none yet. A
	// non-nil referenceID deduplicates retries per (account, reference, kind).
	Grant(ctx context.Context, accountID uuid.UUID, amount int, kind Kind, referenceID *uuid.UUID, description string) (balance int, duplicate bool, err error)

	// GetBalance is the advisory read used by validate; it takes no lock.
	GetBalance(ctx context.Context, accountID uuid.UUID) (int, error)

	ListTransactions(ctx context.Context, accountID uuid.UUID, p Pagination) ([]Transaction, error)
}

// LedgerRepository implements Repository on PostgreSQL.
type LedgerRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// Consume performs the atomic decrement-with-floor-check. The ledger insert
// goes first so the (account_id, reference_id, kind) unique constraint can
// reject a retried charge before the balance is touched; insert and guarded
// update commit together or not at all.
func (r *LedgerRepository) Consume(ctx context.Context, accountID uuid.UUID, amount int, referenceID uuid.UUID, description string) (int, bool, error) {
	if amount <= 0 {
		return 0, false, ErrInvalidAmount
	}
	if referenceID == uuid.Nil {
		return 0, false, ErrInvalidReference
	}

	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tx, err := r.db.BeginTxx(ctx2, &sql.TxOptions{})
	if err != nil {
		return 0, false, fmt.Errorf("%w: begin tx: %v", ErrStoreUnavailable, err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx2, `
		INSERT INTO credit_transactions (id, account_id, amount_delta, kind, reference_id, description)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5)
		ON CONFLICT (account_id, reference_id, kind) DO NOTHING
	`, accountID, -amount, KindConsumption, referenceID, description)
	if err != nil {
		return 0, false, fmt.Errorf("%w: insert transaction: %v", ErrStoreUnavailable, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, false, fmt.Errorf("%w: rows affected: %v", ErrStoreUnavailable, err)
	}
	if rows == 0 {
		// Retried charge: the first attempt already deducted. Report the
		// current balance without deducting again.
		balance, err := r.GetBalance(ctx, accountID)
		if err != nil {
			return 0, false, err
		}
		return balance, true, nil
	}

	var remaining int
	err = tx.QueryRowContext(ctx2, `
		UPDATE credit_balances
		SET amount = amount - $2, updated_at = now()
		WHERE account_id = $1 AND amount >= $2
		RETURNING amount
	`, accountID, amount).Scan(&remaining)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, ErrInsufficientCredits
		}
		return 0, false, fmt.Errorf("%w: update balance: %v", ErrStoreUnavailable, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, false, fmt.Errorf("%w: commit tx: %v", ErrStoreUnavailable, err)
	}

	return remaining, false, nil
}

func (r *LedgerRepository) Grant(ctx context.Context, accountID uuid.UUID, amount int, kind Kind, referenceID *uuid.UUID, description string) (int, bool, error) {
	if amount <= 0 {
		return 0, false, ErrInvalidAmount
	}
	if !ValidKind(kind) || kind == KindConsumption {
		return 0, false, ErrInvalidKind
	}

	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tx, err := r.db.BeginTxx(ctx2, &sql.TxOptions{})
	if err != nil {
		return 0, false, fmt.Errorf("%w: begin tx: %v", ErrStoreUnavailable, err)
	}
	defer tx.Rollback()

	// NULL reference ids never collide, so one-off grants always insert.
	result, err := tx.ExecContext(ctx2, `
		INSERT INTO credit_transactions (id, account_id, amount_delta, kind, reference_id, description)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5)
		ON CONFLICT (account_id, reference_id, kind) DO NOTHING
	`, accountID, amount, kind, referenceID, description)
	if err != nil {
		return 0, false, fmt.Errorf("%w: insert transaction: %v", ErrStoreUnavailable, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, false, fmt.Errorf("%w: rows affected: %v", ErrStoreUnavailable, err)
	}
	if rows == 0 {
		balance, err := r.GetBalance(ctx, accountID)
		if err != nil {
			return 0, false, err
		}
		return balance, true, nil
	}

	var balance int
	err = tx.QueryRowContext(ctx2, `
		INSERT INTO credit_balances (account_id, amount, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (account_id)
		DO UPDATE SET amount = credit_balances.amount + $2, updated_at = now()
		RETURNING amount
	`, accountID, amount).Scan(&balance)
	if err != nil {
		return 0, false, fmt.Errorf("%w: update balance: %v", ErrStoreUnavailable, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, false, fmt.Errorf("%w: commit tx: %v", ErrStoreUnavailable, err)
	}

	return balance, false, nil
}

func (r *LedgerRepository) GetBalance(ctx context.Context, accountID uuid.UUID) (int, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var balance int
	err := r.db.GetContext(ctx2, &balance, `SELECT amount FROM credit_balances WHERE account_id = $1`, accountID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: get balance: %v", ErrStoreUnavailable, err)
	}

	return balance, nil
}

func (r *LedgerRepository) ListTransactions(ctx context.Context, accountID uuid.UUID, p Pagination) ([]Transaction, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	limit := p.Limit
	if limit <= 0 {
		limit = 20
	}

	transactions := make([]Transaction, 0)
	err := r.db.SelectContext(ctx2, &transactions, `
		SELECT id, account_id, amount_delta, kind, reference_id, description, created_at
		FROM credit_transactions
		WHERE account_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, accountID, limit, p.Offset)
	if err != nil {
		return nil, fmt.Errorf("%w: list transactions: %v", ErrStoreUnavailable, err)
	}

	return transactions, nil
}
