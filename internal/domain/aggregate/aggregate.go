// Package aggregate fetches entity stat batches through a caller-supplied
// fetch seam and sums them additively into per-subject category totals.
package aggregate

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	scope "github.com/fantail/fantail/internal/domain/scope"
	tree "github.com/fantail/fantail/internal/domain/tree"

	"github.com/fantail/fantail/internal/domain/category"
)

// MaxSubjectsPerFetch is the upstream hard cap on keys per request.
const MaxSubjectsPerFetch = 25

// FetchFunc retrieves the raw payload for one spec and one subject chunk.
// It is the aggregator's sole I/O seam; the aggregator itself never touches
// the network.
type FetchFunc func(ctx context.Context, spec scope.FetchSpec, subjects []string) (tree.Node, error)

// Totals maps subject id to its per-category sums.
type Totals map[string]map[string]float64

// Empty reports whether no subject accumulated any value.
func (t Totals) Empty() bool {
	for _, values := range t {
		if len(values) > 0 {
			return false
		}
	}
	return true
}

// StatLine is one subject's totals over a scope, the player-level return
// shape.
type StatLine struct {
	Subject string             `json:"subject_id"`
	Scope   string             `json:"scope"`
	Values  map[string]float64 `json:"values"`
}

// Candidate keys for locating a subject's identifier and its stats container
// inside a flattened entity record.
var (
	subjectIDKeys  = []string{"player_key", "player_id", "team_key", "team_id"}
	statsBlockKeys = []string{"player_stats", "team_stats", "player_advanced_stats"}
)

// Aggregator sums fetched stat lines. The zero configuration chunks at the
// upstream cap and attributes stats to records found under "player".
type Aggregator struct {
	entityKey string
	chunkSize int
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithEntityKey sets the key entity records are found under ("player",
// "team", ...).
func WithEntityKey(key string) Option {
	return func(a *Aggregator) {
		if key != "" {
			a.entityKey = key
		}
	}
}

// WithChunkSize lowers the per-request subject cap. Values above the
// upstream hard cap are clamped to it.
func WithChunkSize(size int) Option {
	return func(a *Aggregator) {
		if size > 0 && size <= MaxSubjectsPerFetch {
			a.chunkSize = size
		}
	}
}

// New creates an Aggregator with the given options.
func New(opts ...Option) *Aggregator {
	a := &Aggregator{
		entityKey: "player",
		chunkSize: MaxSubjectsPerFetch,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Aggregate issues every spec once per subject chunk and sums the extracted
// stat values into per-subject totals. Missing subjects keep whatever they
// already accumulated (an empty map at minimum); malformed values coerce to
// zero and never abort the batch. Only fetch failures propagate.
func (a *Aggregator) Aggregate(
	ctx context.Context,
	subjects []string,
	specs []scope.FetchSpec,
	categories map[string]category.Category,
	fetch FetchFunc,
) (Totals, error) {
	if fetch == nil {
		return nil, ErrNoFetch
	}

	totals := make(Totals, len(subjects))
	for _, id := range subjects {
		totals[id] = make(map[string]float64)
	}
	if len(subjects) == 0 || len(specs) == 0 {
		return totals, nil
	}

	for _, chunk := range chunkSubjects(subjects, a.chunkSize) {
		for _, spec := range specs {
			node, err := fetch(ctx, spec, chunk)
			if err != nil {
				return nil, fmt.Errorf("%w: spec %+v: %v", ErrFetch, spec, err)
			}
			a.merge(totals, node, categories)
		}
	}

	return totals, nil
}

// Lines converts totals into per-subject stat lines labeled with the scope.
func Lines(totals Totals, label string) []StatLine {
	out := make([]StatLine, 0, len(totals))
	for subject, values := range totals {
		out = append(out, StatLine{Subject: subject, Scope: label, Values: values})
	}
	return out
}

// merge extracts every entity occurrence from the payload and adds its stat
// values into the running totals.
func (a *Aggregator) merge(totals Totals, node tree.Node, categories map[string]category.Category) {
	for _, rec := range tree.FindAll(node, a.entityKey) {
		id, ok := rec.Text(subjectIDKeys...)
		if !ok {
			continue
		}
		values := totals[id]
		if values == nil {
			// Upstream returned a subject we did not ask about; keep its
			// data rather than dropping it.
			values = make(map[string]float64)
			totals[id] = values
		}
		for _, statsNode := range statBlocks(rec) {
			addStats(values, statsNode, categories)
		}
	}
}

// statBlocks locates the stats containers on an entity record.
func statBlocks(rec tree.FlatRecord) []tree.Node {
	var out []tree.Node
	for _, key := range statsBlockKeys {
		if block, ok := rec[key]; ok {
			flat := tree.Flatten(block)
			if stats, ok := flat["stats"]; ok {
				out = append(out, stats)
			}
		}
	}
	if len(out) == 0 {
		if stats, ok := rec["stats"]; ok {
			out = append(out, stats)
		}
	}
	return out
}

// addStats folds one stats container into the subject's totals, mapping each
// identifier through the resolved categories. Unknown identifiers keep their
// raw id as the key so no data is silently dropped here.
func addStats(values map[string]float64, statsNode tree.Node, categories map[string]category.Category) {
	for _, item := range tree.Elements(statsNode) {
		rec := tree.Flatten(item)
		if inner, ok := rec["stat"]; ok && inner.Kind() == tree.KindMap {
			rec = tree.Flatten(inner)
		}
		id, ok := rec.Text("stat_id", "statId", "id")
		if !ok {
			continue
		}
		raw, hasValue := rec["value"]
		if !hasValue {
			raw = rec["val"]
		}

		key := id
		if cat, known := categories[id]; known {
			key = cat.Key
		}
		if key == "" {
			continue
		}
		values[key] += coerceValue(raw)
	}
}

// coerceValue turns a raw stat value node into a float64. Blank, dash, and
// null values mean "no stat recorded" and coerce to zero, as does anything
// unparseable; percentages and thousands separators are tolerated.
func coerceValue(n tree.Node) float64 {
	switch v := n.Value().(type) {
	case float64:
		return v
	case bool:
		return 0
	case string:
		s := strings.TrimSpace(v)
		if s == "" || s == "-" {
			return 0
		}
		s = strings.ReplaceAll(s, ",", "")
		s = strings.TrimSuffix(s, "%")
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// chunkSubjects splits subjects into fetch-sized chunks, preserving order.
func chunkSubjects(subjects []string, size int) [][]string {
	if size < 1 {
		size = MaxSubjectsPerFetch
	}
	var chunks [][]string
	for start := 0; start < len(subjects); start += size {
		end := start + size
		if end > len(subjects) {
			end = len(subjects)
		}
		chunks = append(chunks, subjects[start:end])
	}
	return chunks
}
