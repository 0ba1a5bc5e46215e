package credit

import "errors"

var (
	// ErrInsufficientCredits is returned when the guarded decrement rejects
	// a consume because the balance is below the tier cost
	ErrInsufficientCredits = errors.New("insufficient credits")

	// ErrAuthenticationRequired is returned when a priced tier is requested
	// without an account context
	ErrAuthenticationRequired = errors.New("authentication required")

	// ErrInvalidTier is returned for an unrecognized tier value
	ErrInvalidTier = errors.New("invalid tier")

	// ErrInvalidAmount is returned when amount is <= 0
	ErrInvalidAmount = errors.New("invalid amount: must be greater than 0")

	// ErrInvalidReference is returned when a consume is attempted without a
	// reference identifier (the idempotency key)
	ErrInvalidReference = errors.New("invalid reference id")

	// ErrInvalidKind is returned for an unknown ledger entry kind
	ErrInvalidKind = errors.New("invalid transaction kind")

	// ErrStoreUnavailable wraps timeouts and connection failures against the
	// balance store; callers may retry with the same reference id
	ErrStoreUnavailable = errors.New("balance store unavailable")
)
