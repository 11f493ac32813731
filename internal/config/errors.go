package config

import (
	"errors"
)

// Sentinel errors so callers can branch with errors.Is.
var (
	ErrLoadConfig    = errors.New("load config failed")
	ErrInvalidConfig = errors.New("invalid config")
)
