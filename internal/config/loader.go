package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New())
//  2. file (YAML) if FANTAIL_CONFIG is set
//  3. env (prefix FANTAIL_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("FANTAIL_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
		}
	}

	// Environment variables: FANTAIL_LEAGUE_ID, FANTAIL_API_TOKEN, ...
	// Map env keys like FANTAIL_CHUNK_SIZE -> chunk_size (flat keys)
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("FANTAIL_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "fantail_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	// Basic validation
	if cfg.APIBaseURL == "" {
		return nil, fmt.Errorf("%w: api_base_url must not be empty", ErrInvalidConfig)
	}
	if cfg.FetchTimeoutSeconds <= 0 {
		return nil, fmt.Errorf("%w: fetch_timeout_seconds must be positive", ErrInvalidConfig)
	}
	if cfg.ChunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk_size must be positive", ErrInvalidConfig)
	}
	return &cfg, nil
}
