package payment

import (
	"time"

	"github.com/google/uuid"
)

// Status of a payment
type Status string

const (
	StatusPending   Status = "pending"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Payment is one credit-package purchase attempt.
type Payment struct {
	ID          uuid.UUID `db:"id"`
	AccountID   uuid.UUID `db:"account_id"`
	PackageID   string    `db:"package_id"`
	Credits     int       `db:"credits"`
	AmountCents int64     `db:"amount_cents"`
	Currency    string    `db:"currency"`
	Status      Status    `db:"status"`
	CheckoutID  *string   `db:"checkout_id"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// Package is a purchasable credit bundle.
type Package struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Credits     int    `json:"credits"`
	AmountCents int64  `json:"amount_cents"`
	Currency    string `json:"currency"`
}

var packages = []Package{
	{ID: "starter", Name: "Starter", Credits: 10, AmountCents: 999, Currency: "USD"},
	{ID: "plus", Name: "Plus", Credits: 50, AmountCents: 3999, Currency: "USD"},
	{ID: "pro", Name: "Pro", Credits: 200, AmountCents: 12999, Currency: "USD"},
}

// Packages returns the purchasable bundles in display order.
func Packages() []Package {
	out := make([]Package, len(packages))
	copy(out, packages)
	return out
}

// PackageByID looks up a bundle, second return is false when unknown.
func PackageByID(id string) (Package, bool) {
	for _, p := range packages {
		if p.ID == id {
			return p, true
		}
	}
	return Package{}, false
}
