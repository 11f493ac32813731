// Package category resolves a league's opaque stat identifiers into canonical
// display keys and caches the result per (account, league).
package category

import (
	tree "github.com/fantail/fantail/internal/domain/tree"
)

// Kind tells how a category's value is computed.
type Kind uint8

const (
	// Counting categories sum additively across days and chunks.
	Counting Kind = iota
	// Percentage categories are ratios recomputed from their legs over a scope.
	Percentage
)

// Ratio names the two counting legs a percentage category is derived from.
type Ratio struct {
	Numerator   string
	Denominator string
}

// Category maps one upstream stat identifier to its canonical key.
type Category struct {
	ID    string
	Key   string
	Kind  Kind
	Ratio *Ratio
}

// Resolver builds ID-to-category maps from league settings payloads. Ratio
// membership comes from the static per-sport tables, never from upstream,
// because the API does not mark it.
type Resolver struct {
	aliases  map[string]string
	triplets map[string]Ratio
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithAliases maps raw upstream keys to canonical ones. An empty canonical
// value drops the key entirely (upstream emits helper columns like
// "FGM / FGA" that carry no standalone stat).
func WithAliases(aliases map[string]string) Option {
	return func(r *Resolver) {
		r.aliases = aliases
	}
}

// WithPercentTriplets declares which canonical keys are ratio categories and
// the counting legs they derive from.
func WithPercentTriplets(triplets map[string]Ratio) Option {
	return func(r *Resolver) {
		r.triplets = triplets
	}
}

// NewResolver creates a Resolver with the given options.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		aliases:  map[string]string{},
		triplets: map[string]Ratio{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// canonical applies the alias table; unknown keys pass through unchanged.
// The second return is false when the key is a helper column to drop.
func (r *Resolver) canonical(raw string) (string, bool) {
	if mapped, ok := r.aliases[raw]; ok {
		return mapped, mapped != ""
	}
	return raw, raw != ""
}

// Resolve walks a league settings tree and returns stat_id -> Category.
// It prefers the abbreviation, then the display name, then the raw name, and
// keeps the first definition of each identifier. Finding nothing is not an
// error: an empty map makes unknown identifiers pass through as their raw
// IDs downstream.
func (r *Resolver) Resolve(settings tree.Node) map[string]Category {
	out := make(map[string]Category)

	for _, container := range tree.FindAll(settings, "stat_categories") {
		statsNode, ok := container["stats"]
		if !ok {
			continue
		}
		for _, item := range tree.Elements(statsNode) {
			rec := tree.Flatten(item)
			if inner, ok := rec["stat"]; ok && inner.Kind() == tree.KindMap {
				rec = tree.Flatten(inner)
			}
			id, ok := rec.Text("stat_id", "statId", "id")
			if !ok {
				continue
			}
			rawKey, ok := rec.Text("abbr", "stat_abbr", "display_name", "displayName", "name")
			if !ok {
				continue
			}
			key, keep := r.canonical(rawKey)
			if !keep {
				continue
			}
			if _, exists := out[id]; exists {
				continue
			}
			cat := Category{ID: id, Key: key, Kind: Counting}
			if ratio, isPct := r.triplets[key]; isPct {
				cat.Kind = Percentage
				rcopy := ratio
				cat.Ratio = &rcopy
			}
			out[id] = cat
		}
	}

	return out
}
