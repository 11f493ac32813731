package scope

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	// ErrInvertedRange marks a date range whose end precedes its start; a
	// caller contract violation, not a data-shape problem.
	ErrInvertedRange = errors.New("date range end precedes start")
	// ErrBadDate marks a date that is not an ISO yyyy-mm-dd value.
	ErrBadDate = errors.New("malformed date")
	// ErrBadScope marks a scope with out-of-domain parameters.
	ErrBadScope = errors.New("invalid scope")
	// ErrNoBounds is returned by WeekFallback when no bounds lookup was
	// injected.
	ErrNoBounds = errors.New("no week bounds lookup configured")
)
