package credit

import (
	"time"

	"github.com/google/uuid"
)

// Tier is a named price point for a property search.
type Tier string

const (
	TierBasic Tier = "basic"
	TierSmart Tier = "smart"
)

// Kind classifies a ledger entry.
type Kind string

const (
	KindPurchase    Kind = "purchase"
	KindConsumption Kind = "consumption"
	KindRefund      Kind = "refund"
	KindGrant       Kind = "grant"
)

// ValidKind reports whether k is a known ledger entry kind.
func ValidKind(k Kind) bool {
	switch k {
	case KindPurchase, KindConsumption, KindRefund, KindGrant:
		return true
	}
	return false
}

// Balance is the spendable credit counter for one account. It is mutated
// only through the ledger operations, never written directly.
type Balance struct {
	AccountID uuid.UUID `db:"account_id"`
	Amount    int       `db:"amount"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Transaction is an immutable ledger row. For every account the sum of
// AmountDelta across its rows equals the account's current balance.
type Transaction struct {
	ID          uuid.UUID  `db:"id"`
	AccountID   uuid.UUID  `db:"account_id"`
	AmountDelta int        `db:"amount_delta"`
	Kind        string     `db:"kind"`
	Description string     `db:"description"`
	ReferenceID *uuid.UUID `db:"reference_id"`
	CreatedAt   time.Time  `db:"created_at"`
}

// Pagination controls simple list pagination.
type Pagination struct {
	Limit  int
	Offset int
}
