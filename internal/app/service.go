// Package service wires the decode, resolve, aggregate, and rank stages into
// the operations callers invoke. It owns the stateful pieces (category cache,
// upstream fetcher) so the domain packages stay pure.
package service

import (
	"context"
	"fmt"
	"time"

	aggregate "github.com/fantail/fantail/internal/domain/aggregate"
	category "github.com/fantail/fantail/internal/domain/category"
	league "github.com/fantail/fantail/internal/domain/league"
	ranking "github.com/fantail/fantail/internal/domain/ranking"
	scope "github.com/fantail/fantail/internal/domain/scope"
	tree "github.com/fantail/fantail/internal/domain/tree"
	"github.com/fantail/fantail/pkg/logger"
	"github.com/fantail/fantail/pkg/metrics"
)

// Fetcher is the upstream seam the service pulls payloads through. The
// HTTP adapter satisfies it; tests script it.
type Fetcher interface {
	League(ctx context.Context, leagueKey string) (tree.Node, error)
	Settings(ctx context.Context, leagueKey string) (tree.Node, error)
	Standings(ctx context.Context, leagueKey string) (tree.Node, error)
	Scoreboard(ctx context.Context, leagueKey string, week int) (tree.Node, error)
	Roster(ctx context.Context, teamKey string) (tree.Node, error)
	PlayerStats(ctx context.Context, leagueKey string, playerKeys []string, spec scope.FetchSpec) (tree.Node, error)
	TeamStats(ctx context.Context, teamKeys []string, spec scope.FetchSpec) (tree.Node, error)
}

// Service implements the stats pipeline operations.
type Service struct {
	fetcher     Fetcher
	accountID   string
	chunkSize   int
	categoryTTL time.Duration
	punt        map[string]bool
	weights     map[string]float64
	clock       func() time.Time

	categories *category.Cache

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithFetcher sets the upstream payload source.
func WithFetcher(f Fetcher) Option {
	return func(s *Service) {
		if f != nil {
			s.fetcher = f
		}
	}
}

// WithAccountID namespaces the category cache for the owning account.
func WithAccountID(id string) Option {
	return func(s *Service) {
		s.accountID = id
	}
}

// WithChunkSize caps subjects per stats request.
func WithChunkSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.chunkSize = size
		}
	}
}

// WithCategoryTTL sets how long resolved categories stay cached.
func WithCategoryTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.categoryTTL = ttl
		}
	}
}

// WithPunt excludes category keys from ranking.
func WithPunt(keys []string) Option {
	return func(s *Service) {
		for _, key := range keys {
			s.punt[key] = true
		}
	}
}

// WithWeights overrides per-category ranking weights.
func WithWeights(weights map[string]float64) Option {
	return func(s *Service) {
		if weights != nil {
			s.weights = weights
		}
	}
}

// WithClock injects the time source used for rolling-scope anchors and
// cache expiry.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.logger = log
		}
	}
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		chunkSize:   aggregate.MaxSubjectsPerFetch,
		categoryTTL: 6 * time.Hour,
		punt:        map[string]bool{},
		weights:     map[string]float64{},
		clock:       time.Now,
		logger:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.categories = category.NewCache(
		category.WithTTL(s.categoryTTL),
		category.WithClock(category.Clock(s.clock)),
	)
	return s
}

// DecodeEntities recovers every entity record from a raw payload tree.
func (s *Service) DecodeEntities(ctx context.Context, node tree.Node, entityKey string) []tree.FlatRecord {
	records := tree.FindAll(node, entityKey)
	metrics.RecordRecordsDecoded(len(records))
	if len(records) == 0 {
		metrics.RecordShapeMiss()
		s.logger.Warn(ctx, "payload yielded no entity records",
			logger.String("entity_key", entityKey))
	}
	return records
}

// ResolveCategories returns the stat-id to category mapping for a league,
// served from cache while fresh. The policy supplies alias folding and ratio
// membership, since the provider does not mark either.
func (s *Service) ResolveCategories(ctx context.Context, leagueKey string, policy ranking.Policy) (map[string]category.Category, error) {
	if cached, ok := s.categories.Get(s.accountID, leagueKey); ok {
		metrics.RecordCategoryCacheHit()
		return cached, nil
	}
	metrics.RecordCategoryCacheMiss()

	settings, err := s.fetcher.Settings(ctx, leagueKey)
	if err != nil {
		return nil, fmt.Errorf("fetch settings for %s: %w", leagueKey, err)
	}

	resolver := category.NewResolver(
		category.WithAliases(policy.Aliases),
		category.WithPercentTriplets(policy.PercentTriplets),
	)
	resolved := resolver.Resolve(settings)
	if len(resolved) == 0 {
		metrics.RecordShapeMiss()
		s.logger.Warn(ctx, "league settings yielded no stat categories",
			logger.String("league", leagueKey))
	}
	s.categories.Put(s.accountID, leagueKey, resolved)

	s.logger.Debug(ctx, "resolved stat categories",
		logger.String("league", leagueKey),
		logger.Int("count", len(resolved)))
	return resolved, nil
}

// InvalidateCategories drops the cached mapping for a league, forcing the
// next resolution to refetch settings.
func (s *Service) InvalidateCategories(leagueKey string) {
	s.categories.Invalidate(s.accountID, leagueKey)
}

// TeamRoster fetches a team's current roster and extracts its players. The
// returned keys feed AggregatePlayerStats for roster-level breakdowns.
func (s *Service) TeamRoster(ctx context.Context, teamKey string) ([]league.Player, error) {
	node, err := s.fetcher.Roster(ctx, teamKey)
	if err != nil {
		return nil, fmt.Errorf("fetch roster for %s: %w", teamKey, err)
	}
	players := league.Players(node)
	if len(players) == 0 {
		metrics.RecordShapeMiss()
		s.logger.Warn(ctx, "roster yielded no players",
			logger.String("team", teamKey))
	}
	return players, nil
}

// AggregateTeamStats sums team-level stats across the scope. A week scope
// that extracts nothing falls back to day-by-day aggregation over the week's
// span before giving up.
func (s *Service) AggregateTeamStats(
	ctx context.Context,
	leagueKey string,
	teamKeys []string,
	sc scope.Scope,
	categories map[string]category.Category,
	meta league.Meta,
) (aggregate.Totals, error) {
	fetch := s.instrumented(func(ctx context.Context, spec scope.FetchSpec, chunk []string) (tree.Node, error) {
		return s.fetcher.TeamStats(ctx, chunk, spec)
	})
	return s.aggregate(ctx, leagueKey, "team", teamKeys, sc, categories, meta, fetch)
}

// AggregatePlayerStats sums player-level stats across the scope, with the
// same week fallback as team aggregation.
func (s *Service) AggregatePlayerStats(
	ctx context.Context,
	leagueKey string,
	playerKeys []string,
	sc scope.Scope,
	categories map[string]category.Category,
	meta league.Meta,
) (aggregate.Totals, error) {
	fetch := s.instrumented(func(ctx context.Context, spec scope.FetchSpec, chunk []string) (tree.Node, error) {
		return s.fetcher.PlayerStats(ctx, leagueKey, chunk, spec)
	})
	return s.aggregate(ctx, leagueKey, "player", playerKeys, sc, categories, meta, fetch)
}

// RankTeams scores team totals with the service's punt and weight settings.
func (s *Service) RankTeams(totals aggregate.Totals, policy ranking.Policy) ranking.Result {
	start := time.Now()
	res := ranking.Rank(totals, policy, s.punt, s.weights)
	metrics.RecordRanking()
	metrics.RecordRankingDuration(float64(time.Since(start).Milliseconds()))
	return res
}

// PowerRanking runs the whole pipeline for a league and scope: metadata,
// categories, team totals, z-scores, and the ordered standings.
func (s *Service) PowerRanking(ctx context.Context, leagueKey string, sc scope.Scope) (ranking.Report, error) {
	leagueNode, err := s.fetcher.League(ctx, leagueKey)
	if err != nil {
		return ranking.Report{}, fmt.Errorf("fetch league %s: %w", leagueKey, err)
	}
	meta := league.ParseMeta(leagueNode)
	policy := ranking.PolicyFor(meta.Sport)

	categories, err := s.ResolveCategories(ctx, leagueKey, policy)
	if err != nil {
		return ranking.Report{}, err
	}

	standingsNode, err := s.fetcher.Standings(ctx, leagueKey)
	if err != nil {
		return ranking.Report{}, fmt.Errorf("fetch standings for %s: %w", leagueKey, err)
	}
	teams := league.Teams(standingsNode)
	if len(teams) == 0 {
		return ranking.Report{}, fmt.Errorf("%w: league %s", ErrNoTeams, leagueKey)
	}

	teamKeys := make([]string, len(teams))
	names := make(map[string]string, len(teams))
	for i, t := range teams {
		teamKeys[i] = t.Key
		names[t.Key] = t.Name
	}

	totals, err := s.AggregateTeamStats(ctx, leagueKey, teamKeys, sc, categories, meta)
	if err != nil {
		return ranking.Report{}, err
	}

	res := s.RankTeams(totals, policy)
	report := ranking.NewReport(res, totals, policy, names)
	report.LeagueID = meta.LeagueKey
	if report.LeagueID == "" {
		report.LeagueID = leagueKey
	}
	report.Sport = meta.Sport
	report.Scope = sc.String()

	s.logger.Info(ctx, "power ranking computed",
		logger.String("league", leagueKey),
		logger.String("scope", report.Scope),
		logger.Int("teams", len(teams)),
		logger.Int("categories", len(report.Categories)))
	return report, nil
}

// aggregate resolves the scope, runs the aggregator, and applies the
// day-by-day fallback for empty week results.
func (s *Service) aggregate(
	ctx context.Context,
	leagueKey, entityKey string,
	subjects []string,
	sc scope.Scope,
	categories map[string]category.Category,
	meta league.Meta,
	fetch aggregate.FetchFunc,
) (aggregate.Totals, error) {
	resolver := scope.NewResolver(
		scope.WithCurrentDate(meta.CurrentDate),
		scope.WithResolverClock(s.clock),
		scope.WithWeekBounds(league.BoundsFrom(func(ctx context.Context, week int) (tree.Node, error) {
			return s.fetcher.Scoreboard(ctx, leagueKey, week)
		})),
	)
	specs, err := resolver.Resolve(sc)
	if err != nil {
		return nil, fmt.Errorf("resolve scope %s: %w", sc, err)
	}

	agg := aggregate.New(
		aggregate.WithEntityKey(entityKey),
		aggregate.WithChunkSize(s.chunkSize),
	)
	metrics.RecordAggregation()
	totals, err := agg.Aggregate(ctx, subjects, specs, categories, fetch)
	if err != nil {
		metrics.RecordAggregationError()
		return nil, err
	}

	if totals.Empty() && sc.Kind() == scope.KindWeek {
		metrics.RecordWeekFallback()
		s.logger.Info(ctx, "week query extracted nothing, falling back to day-by-day",
			logger.Int("week", sc.WeekNumber()))
		daySpecs, err := resolver.WeekFallback(ctx, sc.WeekNumber())
		if err != nil {
			return nil, err
		}
		totals, err = agg.Aggregate(ctx, subjects, daySpecs, categories, fetch)
		if err != nil {
			metrics.RecordAggregationError()
			return nil, err
		}
	}

	return totals, nil
}

// instrumented wraps a fetch with per-spec counters.
func (s *Service) instrumented(fetch aggregate.FetchFunc) aggregate.FetchFunc {
	return func(ctx context.Context, spec scope.FetchSpec, chunk []string) (tree.Node, error) {
		metrics.RecordFetch(spec.Type.String())
		node, err := fetch(ctx, spec, chunk)
		if err != nil {
			metrics.RecordFetchError(spec.Type.String())
		}
		return node, err
	}
}
