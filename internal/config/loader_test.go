package config_test

import (
	"context"
	"os"
	"testing"

	"github.com/fantail/fantail/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			// Clear any existing environment variables
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
				convey.So(cfg.ChunkSize, convey.ShouldEqual, 25)
				convey.So(cfg.FetchTimeoutSeconds, convey.ShouldEqual, 10)
				convey.So(cfg.CategoryTTLSeconds, convey.ShouldEqual, 21_600)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("FANTAIL_LOG_LEVEL", "debug")
			_ = os.Setenv("FANTAIL_LEAGUE_ID", "466.l.12345")
			_ = os.Setenv("FANTAIL_API_TOKEN", "tok-env")
			_ = os.Setenv("FANTAIL_CHUNK_SIZE", "10")
			_ = os.Setenv("FANTAIL_FETCH_TIMEOUT_SECONDS", "30")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
				convey.So(cfg.LeagueID, convey.ShouldEqual, "466.l.12345")
				convey.So(cfg.APIToken, convey.ShouldEqual, "tok-env")
				convey.So(cfg.ChunkSize, convey.ShouldEqual, 10)
				convey.So(cfg.FetchTimeoutSeconds, convey.ShouldEqual, 30)
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
log_level: warn
league_id: "466.l.777"
account_id: "acct-1"
chunk_size: 20
category_ttl_seconds: 3600
punt:
  - "TO"
weights:
  PTS: 2.0
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("FANTAIL_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.LogLevel, convey.ShouldEqual, "warn")
				convey.So(cfg.LeagueID, convey.ShouldEqual, "466.l.777")
				convey.So(cfg.AccountID, convey.ShouldEqual, "acct-1")
				convey.So(cfg.ChunkSize, convey.ShouldEqual, 20)
				convey.So(cfg.CategoryTTLSeconds, convey.ShouldEqual, 3600)
				convey.So(cfg.Punt, convey.ShouldResemble, []string{"TO"})
				convey.So(cfg.Weights["PTS"], convey.ShouldEqual, 2.0)
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			yamlContent := `
log_level: warn
league_id: "466.l.777"
chunk_size: 20
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("FANTAIL_CONFIG", tmpFile)
			_ = os.Setenv("FANTAIL_LOG_LEVEL", "error") // This should override the file
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.LogLevel, convey.ShouldEqual, "error")     // Overridden by env
				convey.So(cfg.LeagueID, convey.ShouldEqual, "466.l.777") // From file
				convey.So(cfg.ChunkSize, convey.ShouldEqual, 20)         // From file
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			invalidYaml := `invalid: yaml: content: [`
			tmpFile := createTempConfigFile(invalidYaml)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("FANTAIL_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("FANTAIL_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty api_base_url", func() {
			_ = os.Setenv("FANTAIL_API_BASE_URL", "")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "api_base_url must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with a non-positive chunk size", func() {
			_ = os.Setenv("FANTAIL_CHUNK_SIZE", "0")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "chunk_size must be positive")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with partial YAML file", func() {
			yamlContent := `
league_id: "466.l.777"
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("FANTAIL_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should merge with defaults for missing fields", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.LeagueID, convey.ShouldEqual, "466.l.777") // From file
				convey.So(cfg.LogLevel, convey.ShouldEqual, "info")      // From defaults
				convey.So(cfg.ChunkSize, convey.ShouldEqual, 25)         // From defaults
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("FANTAIL_CHUNK_SIZE", "not_a_number")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"FANTAIL_CONFIG",
		"FANTAIL_LOG_LEVEL",
		"FANTAIL_API_BASE_URL",
		"FANTAIL_API_TOKEN",
		"FANTAIL_ACCOUNT_ID",
		"FANTAIL_LEAGUE_ID",
		"FANTAIL_FETCH_TIMEOUT_SECONDS",
		"FANTAIL_CHUNK_SIZE",
		"FANTAIL_CATEGORY_TTL_SECONDS",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "fantail-config-*.yaml")
	if err != nil {
		panic(err)
	}

	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}

	if err := tmpFile.Close(); err != nil {
		panic(err)
	}

	return tmpFile.Name()
}
