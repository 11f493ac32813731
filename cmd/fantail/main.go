package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/fantail/fantail/internal/adapters/upstream"
	service "github.com/fantail/fantail/internal/app"
	"github.com/fantail/fantail/internal/config"
	"github.com/fantail/fantail/internal/domain/scope"
	"github.com/fantail/fantail/pkg/logger"
)

func main() {
	// Local development convenience; absence of a .env file is fine.
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	var (
		leagueFlag = flag.String("league", cfg.LeagueID, "league key, e.g. 466.l.12345")
		scopeFlag  = flag.String("scope", "season", "scope: season, week, rolling, or range")
		weekFlag   = flag.Int("week", 0, "week number for -scope week")
		daysFlag   = flag.Int("days", 7, "day count for -scope rolling")
		anchorFlag = flag.String("anchor", "", "anchor date (YYYY-MM-DD) for -scope rolling")
		fromFlag   = flag.String("from", "", "range start (YYYY-MM-DD) for -scope range")
		toFlag     = flag.String("to", "", "range end (YYYY-MM-DD) for -scope range")
		seasonFlag = flag.String("season", "", "season tag for -scope season")
		puntFlag   = flag.String("punt", "", "comma-separated category keys to exclude")
	)
	flag.Parse()

	if *leagueFlag == "" {
		os.Stderr.WriteString("a league key is required: set -league or FANTAIL_LEAGUE_ID\n")
		os.Exit(2)
	}

	sc, err := buildScope(*scopeFlag, *seasonFlag, *weekFlag, *daysFlag, *anchorFlag, *fromFlag, *toFlag)
	if err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(2)
	}

	punt := cfg.Punt
	if *puntFlag != "" {
		punt = strings.Split(*puntFlag, ",")
	}

	client := upstream.NewClient(
		upstream.WithBaseURL(cfg.APIBaseURL),
		upstream.WithToken(cfg.APIToken),
		upstream.WithHTTPClient(&http.Client{
			Timeout: time.Duration(cfg.FetchTimeoutSeconds) * time.Second,
		}),
		upstream.WithLogger(log.Named("upstream")),
	)

	svc := service.New(
		service.WithFetcher(client),
		service.WithAccountID(cfg.AccountID),
		service.WithChunkSize(cfg.ChunkSize),
		service.WithCategoryTTL(time.Duration(cfg.CategoryTTLSeconds)*time.Second),
		service.WithPunt(punt),
		service.WithWeights(cfg.Weights),
		service.WithLogger(log.Named("pipeline")),
	)

	report, err := svc.PowerRanking(ctx, *leagueFlag, sc)
	if err != nil {
		log.Error(ctx, "power ranking failed",
			logger.String("league", *leagueFlag),
			logger.String("scope", sc.String()),
			logger.Error(err))
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		log.Error(ctx, "encode report", logger.Error(err))
		os.Exit(1)
	}
}

// buildScope translates CLI flags into a scope value.
func buildScope(kind, season string, week, days int, anchor, from, to string) (scope.Scope, error) {
	switch kind {
	case "season":
		return scope.Season(season), nil
	case "week":
		if week <= 0 {
			return scope.Scope{}, errors.New("-scope week requires -week N")
		}
		return scope.Week(week), nil
	case "rolling":
		if days <= 0 {
			return scope.Scope{}, errors.New("-scope rolling requires a positive -days")
		}
		return scope.Rolling(days, anchor), nil
	case "range":
		if from == "" || to == "" {
			return scope.Scope{}, errors.New("-scope range requires -from and -to")
		}
		return scope.DateRange(from, to), nil
	default:
		return scope.Scope{}, errors.New("unknown -scope " + kind)
	}
}
