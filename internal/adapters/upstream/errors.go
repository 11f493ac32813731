package upstream

import "errors"

// Sentinel kinds for upstream errors.
var (
	ErrTransport    = errors.New("upstream transport failed")
	ErrBadStatus    = errors.New("upstream returned non-OK status")
	ErrUnauthorized = errors.New("upstream rejected credentials")
	ErrDecode       = errors.New("upstream payload decode failed")
)
