package search

import "errors"

var (
	// ErrSearchNotFound is returned for an unknown search id
	ErrSearchNotFound = errors.New("search not found")

	// ErrProviderFailed wraps property data provider failures after any
	// charged credits have been refunded
	ErrProviderFailed = errors.New("property lookup failed")
)
