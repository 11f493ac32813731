package ranking

import (
	"math"
	"sort"

	aggregate "github.com/fantail/fantail/internal/domain/aggregate"
)

// Detail is one team's standing in a single category.
type Detail struct {
	Value float64 `json:"value"`
	Z     float64 `json:"z"`
	Rank  int     `json:"rank"`
}

// Result is the output of Rank: the scored category universe, each team's
// per-category detail, and the weighted power score per team.
type Result struct {
	Categories  []string                     `json:"categories"`
	PerTeam     map[string]map[string]Detail `json:"per_team"`
	PowerScores map[string]float64           `json:"power_scores"`
}

// Rank scores teams against each other across every category present in the
// totals, minus the punt set. Ratio categories are recomputed from their
// counting legs so that multi-day sums stay exact. Z-scores use the
// population standard deviation over the team set; a zero-variance category
// yields z = 0 for everyone. Ties on a category share the same rank and the
// following rank is skipped (competition ranking), with team id as the
// deterministic sort tie-break.
func Rank(totals aggregate.Totals, policy Policy, punt map[string]bool, weights map[string]float64) Result {
	res := Result{
		Categories:  []string{},
		PerTeam:     make(map[string]map[string]Detail, len(totals)),
		PowerScores: make(map[string]float64, len(totals)),
	}
	if len(totals) == 0 {
		return res
	}

	teams := make([]string, 0, len(totals))
	for id := range totals {
		teams = append(teams, id)
		res.PerTeam[id] = make(map[string]Detail)
		res.PowerScores[id] = 0
	}
	sort.Strings(teams)

	seen := map[string]bool{}
	for _, values := range totals {
		for key := range values {
			if punt[key] || seen[key] {
				continue
			}
			seen[key] = true
			res.Categories = append(res.Categories, key)
		}
	}
	sort.Strings(res.Categories)

	for _, cat := range res.Categories {
		adjusted := make(map[string]float64, len(teams))
		values := make(map[string]float64, len(teams))
		for _, id := range teams {
			v := categoryValue(totals[id], cat, policy)
			values[id] = v
			if policy.LowerIsBetter[cat] {
				v = -v
			}
			adjusted[id] = v
		}

		mean, std := populationStats(teams, adjusted)
		ranks := competitionRanks(teams, adjusted)

		weight := 1.0
		if w, ok := weights[cat]; ok {
			weight = w
		}
		for _, id := range teams {
			z := 0.0
			if std != 0 {
				z = (adjusted[id] - mean) / std
			}
			res.PerTeam[id][cat] = Detail{Value: values[id], Z: z, Rank: ranks[id]}
			res.PowerScores[id] += weight * z
		}
	}

	return res
}

// categoryValue picks the scored value for one team and category. Ratio
// categories are rebuilt from their leg sums when both legs were aggregated;
// a zero denominator falls back to whatever ratio the wire carried, or 0.
func categoryValue(values map[string]float64, cat string, policy Policy) float64 {
	legs, isRatio := policy.PercentTriplets[cat]
	if !isRatio {
		return values[cat]
	}
	num, hasNum := values[legs.Numerator]
	den, hasDen := values[legs.Denominator]
	if !hasNum || !hasDen {
		return values[cat]
	}
	if den == 0 {
		if wire, ok := values[cat]; ok {
			return wire
		}
		return 0
	}
	return num / den
}

func populationStats(teams []string, adjusted map[string]float64) (mean, std float64) {
	for _, id := range teams {
		mean += adjusted[id]
	}
	mean /= float64(len(teams))

	var variance float64
	for _, id := range teams {
		d := adjusted[id] - mean
		variance += d * d
	}
	variance /= float64(len(teams))
	return mean, math.Sqrt(variance)
}

// competitionRanks orders teams by descending adjusted value, team id
// ascending. Equal values share a rank and the next distinct value skips
// past the tied block ("1224" ranking).
func competitionRanks(teams []string, adjusted map[string]float64) map[string]int {
	order := make([]string, len(teams))
	copy(order, teams)
	sort.SliceStable(order, func(i, j int) bool {
		if adjusted[order[i]] != adjusted[order[j]] {
			return adjusted[order[i]] > adjusted[order[j]]
		}
		return order[i] < order[j]
	})

	ranks := make(map[string]int, len(order))
	rank := 0
	for i, id := range order {
		if i == 0 || adjusted[id] != adjusted[order[i-1]] {
			rank = i + 1
		}
		ranks[id] = rank
	}
	return ranks
}
