package account

import (
	"time"

	"github.com/google/uuid"
)

// Role represents account role in the system
type Role string

const (
	RoleUser  Role = "user"
	RoleAgent Role = "agent"
	RoleAdmin Role = "admin"
)

// IsValidRole reports whether r is a registerable role. Admin accounts are
// provisioned out of band.
func IsValidRole(r string) bool {
	return r == string(RoleUser) || r == string(RoleAgent)
}

// Account represents a registered user
type Account struct {
	ID           uuid.UUID `db:"id"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	Role         Role      `db:"role"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}
