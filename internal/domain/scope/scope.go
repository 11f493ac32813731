// Package scope turns a requested time scope into the concrete fetch
// sub-queries the aggregator issues upstream.
package scope

import (
	"context"
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// Kind discriminates the closed set of supported scopes.
type Kind uint8

const (
	// KindSeason covers the whole season, optionally a named one.
	KindSeason Kind = iota
	// KindWeek covers a single matchup week.
	KindWeek
	// KindRolling covers the last N days ending at an anchor date, inclusive.
	KindRolling
	// KindDateRange covers an explicit [from, to] date span.
	KindDateRange
)

// Scope is the closed tagged variant of a requested time window. Construct
// values with Season, Week, Rolling, or DateRange; the zero value is the
// current season.
type Scope struct {
	kind   Kind
	season string
	week   int
	days   int
	anchor string
	from   string
	to     string
}

// Season scopes to the whole season. seasonTag may be empty for the current
// one (e.g. "2025" for an explicit season).
func Season(seasonTag string) Scope {
	return Scope{kind: KindSeason, season: seasonTag}
}

// Week scopes to matchup week n.
func Week(n int) Scope {
	return Scope{kind: KindWeek, week: n}
}

// Rolling scopes to the last days days ending at anchor (ISO date),
// inclusive. An empty anchor defers to the league's current date.
func Rolling(days int, anchor string) Scope {
	return Scope{kind: KindRolling, days: days, anchor: anchor}
}

// DateRange scopes to the explicit [from, to] span of ISO dates.
func DateRange(from, to string) Scope {
	return Scope{kind: KindDateRange, from: from, to: to}
}

// Kind reports which variant this scope is.
func (s Scope) Kind() Kind { return s.kind }

// WeekNumber returns the week for KindWeek scopes, zero otherwise.
func (s Scope) WeekNumber() int { return s.week }

// String renders the scope as a stable label used in stat lines and reports.
func (s Scope) String() string {
	switch s.kind {
	case KindWeek:
		return fmt.Sprintf("week:%d", s.week)
	case KindRolling:
		return fmt.Sprintf("last%d", s.days)
	case KindDateRange:
		if s.from == s.to {
			return "date:" + s.from
		}
		return fmt.Sprintf("date_range:%s..%s", s.from, s.to)
	default:
		if s.season != "" {
			return "season:" + s.season
		}
		return "season"
	}
}

// FetchType names the upstream query form a FetchSpec maps to.
type FetchType uint8

const (
	// FetchSeason queries season totals.
	FetchSeason FetchType = iota
	// FetchWeek queries one week's aggregate.
	FetchWeek
	// FetchDate queries a single day.
	FetchDate
	// FetchDateRange queries an explicit span with distinct bounds.
	FetchDateRange
)

// String names the fetch type for logs and metric labels.
func (t FetchType) String() string {
	switch t {
	case FetchWeek:
		return "week"
	case FetchDate:
		return "date"
	case FetchDateRange:
		return "date_range"
	default:
		return "season"
	}
}

// FetchSpec is one concrete fetchable sub-query. Results of all specs
// resolved from a single scope are summed additively.
type FetchSpec struct {
	Type   FetchType
	Season string
	Week   int
	Date   string
	From   string
	To     string
}

// BoundsFunc resolves a week's [start, end] date span (ISO dates). The
// lookup is an upstream concern, so it is injected.
type BoundsFunc func(ctx context.Context, week int) (start, end string, err error)

// Resolver resolves scopes deterministically: identical inputs always yield
// the identical ordered spec list.
type Resolver struct {
	currentDate string
	clock       func() time.Time
	bounds      BoundsFunc
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithCurrentDate sets the league's current date (ISO), used as the default
// rolling anchor.
func WithCurrentDate(date string) ResolverOption {
	return func(r *Resolver) {
		r.currentDate = date
	}
}

// WithResolverClock injects the time source used when the league's current
// date is unknown.
func WithResolverClock(clock func() time.Time) ResolverOption {
	return func(r *Resolver) {
		if clock != nil {
			r.clock = clock
		}
	}
}

// WithWeekBounds injects the week span lookup used by the day-by-day
// fallback.
func WithWeekBounds(bounds BoundsFunc) ResolverOption {
	return func(r *Resolver) {
		r.bounds = bounds
	}
}

// NewResolver creates a Resolver with the given options.
func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve expands a scope into its ordered fetch specs.
//
// Rules:
//   - Season resolves to one spec, carrying the explicit season tag if any.
//   - Week resolves to one week-level spec. The day-by-day fallback is a
//     separate step (WeekFallback) because it only applies when the week
//     query extracts nothing.
//   - Rolling resolves to one spec per day, ascending, ending at the anchor
//     inclusive. The anchor defaults to the league's current date, then to
//     the injected clock's today.
//   - DateRange with equal bounds resolves to a single single-day spec
//     (upstream rejects a range with equal bounds); with to earlier than
//     from it is a caller contract violation.
func (r *Resolver) Resolve(s Scope) ([]FetchSpec, error) {
	switch s.kind {
	case KindSeason:
		return []FetchSpec{{Type: FetchSeason, Season: s.season}}, nil

	case KindWeek:
		if s.week < 1 {
			return nil, fmt.Errorf("%w: week %d", ErrBadScope, s.week)
		}
		return []FetchSpec{{Type: FetchWeek, Week: s.week}}, nil

	case KindRolling:
		if s.days < 1 {
			return nil, fmt.Errorf("%w: rolling window of %d days", ErrBadScope, s.days)
		}
		anchor := s.anchor
		if anchor == "" {
			anchor = r.currentDate
		}
		if anchor == "" {
			anchor = r.clock().Format(dateLayout)
		}
		end, err := time.Parse(dateLayout, anchor)
		if err != nil {
			return nil, fmt.Errorf("%w: anchor %q", ErrBadDate, anchor)
		}
		specs := make([]FetchSpec, 0, s.days)
		for i := s.days - 1; i >= 0; i-- {
			day := end.AddDate(0, 0, -i).Format(dateLayout)
			specs = append(specs, FetchSpec{Type: FetchDate, Date: day})
		}
		return specs, nil

	case KindDateRange:
		from, err := time.Parse(dateLayout, s.from)
		if err != nil {
			return nil, fmt.Errorf("%w: from %q", ErrBadDate, s.from)
		}
		to, err := time.Parse(dateLayout, s.to)
		if err != nil {
			return nil, fmt.Errorf("%w: to %q", ErrBadDate, s.to)
		}
		if to.Before(from) {
			return nil, fmt.Errorf("%w: %s..%s", ErrInvertedRange, s.from, s.to)
		}
		if s.from == s.to {
			return []FetchSpec{{Type: FetchDate, Date: s.from}}, nil
		}
		return []FetchSpec{{Type: FetchDateRange, From: s.from, To: s.to}}, nil

	default:
		return nil, fmt.Errorf("%w: unknown scope kind %d", ErrBadScope, s.kind)
	}
}

// WeekFallback expands a week into per-day specs over its [start, end] span.
// Upstream week-level aggregation is unreliable for some leagues, so this
// fallback is mandatory when the week query extracts zero stat lines.
func (r *Resolver) WeekFallback(ctx context.Context, week int) ([]FetchSpec, error) {
	if r.bounds == nil {
		return nil, ErrNoBounds
	}
	start, end, err := r.bounds(ctx, week)
	if err != nil {
		return nil, fmt.Errorf("resolve week %d bounds: %w", week, err)
	}
	from, err := time.Parse(dateLayout, start)
	if err != nil {
		return nil, fmt.Errorf("%w: week start %q", ErrBadDate, start)
	}
	to, err := time.Parse(dateLayout, end)
	if err != nil {
		return nil, fmt.Errorf("%w: week end %q", ErrBadDate, end)
	}
	if to.Before(from) {
		from, to = to, from
	}
	var specs []FetchSpec
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		specs = append(specs, FetchSpec{Type: FetchDate, Date: day.Format(dateLayout)})
	}
	return specs, nil
}
