package catalog

import (
	"errors"
	"fmt"
)

// ErrNotFound reports a product id that does not resolve in the current
// snapshot (catalog drift). Callers surface it as a needs-reselection
// result, never as a silent substitution.
var ErrNotFound = errors.New("product not found in catalog")

// ErrNoSnapshot reports that no snapshot is available at all: nothing
// persisted and the remote fetch failed.
var ErrNoSnapshot = errors.New("no catalog snapshot available")

var errMissingFields = errors.New("snapshot missing required fields")

// TransportError wraps a network or timeout failure talking to the catalog
// provider. It is retried at most once, then treated as unavailable.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("catalog provider %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// CorruptCacheError reports an unreadable persisted snapshot. It is treated
// as a cache miss and triggers a fresh fetch, never a hard failure.
type CorruptCacheError struct {
	Path string
	Err  error
}

func (e *CorruptCacheError) Error() string {
	return fmt.Sprintf("corrupt cache file %s: %v", e.Path, e.Err)
}

func (e *CorruptCacheError) Unwrap() error { return e.Err }
