// Package sentinel holds the infrastructure errors ledger stores return.
// Services translate them into domain errors at their boundary; request
// validation uses pkg/domain-errors directly.
package sentinel

import "errors"

var (
	// ErrNotFound: the event or asset is not in the store.
	ErrNotFound = errors.New("not found")
	// ErrConflict: an append lost the race for the asset tip.
	ErrConflict = errors.New("conflict")
	// ErrUnavailable: the backing store or its breaker refused the call.
	ErrUnavailable = errors.New("unavailable")
)
