// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() initializer to build a Config with defaults.
// - Load(ctx) layers an optional YAML file and FANTAIL_* env vars on top.
// - External errors must be wrapped via this package's error helpers.
package config

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// APIBaseURL is the provider API root.
	APIBaseURL string `koanf:"api_base_url"`

	// APIToken is the OAuth bearer token used against the provider API.
	// Token acquisition and refresh happen outside this process.
	APIToken string `koanf:"api_token"`

	// AccountID namespaces the category cache when one process serves
	// several linked accounts.
	AccountID string `koanf:"account_id"`

	// LeagueID is the default league key used when none is given.
	LeagueID string `koanf:"league_id"`

	// FetchTimeoutSeconds bounds a single upstream request.
	FetchTimeoutSeconds int `koanf:"fetch_timeout_seconds"`

	// ChunkSize caps subjects per stats request. The provider rejects
	// larger batches, so values above the hard cap are ignored.
	ChunkSize int `koanf:"chunk_size"`

	// CategoryTTLSeconds sets how long resolved stat categories stay
	// cached per league.
	CategoryTTLSeconds int `koanf:"category_ttl_seconds"`

	// Punt lists category keys excluded from ranking.
	Punt []string `koanf:"punt"`

	// Weights overrides per-category ranking weights (default 1.0).
	Weights map[string]float64 `koanf:"weights"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		APIBaseURL:          "https://fantasysports.yahooapis.com/fantasy/v2",
		FetchTimeoutSeconds: 10,
		ChunkSize:           25,
		CategoryTTLSeconds:  6 * 60 * 60,
		Weights:             map[string]float64{},
	}
}
