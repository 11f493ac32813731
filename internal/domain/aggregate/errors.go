package aggregate

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	// ErrNoFetch means the caller supplied no fetch seam.
	ErrNoFetch = errors.New("no fetch function supplied")
	// ErrFetch wraps an upstream fetch failure for one spec.
	ErrFetch = errors.New("fetch failed")
)
