package ranking

import (
	"sort"

	aggregate "github.com/fantail/fantail/internal/domain/aggregate"
)

// Standing is one row of the final ordered table.
type Standing struct {
	TeamID string  `json:"team_id"`
	Name   string  `json:"name,omitempty"`
	Score  float64 `json:"score"`
	Rank   int     `json:"rank"`
}

// Report is the full pipeline output handed to callers: the scored
// categories, the policy slices that shaped them, the raw totals the ranking
// ran on, and the ordered standings.
type Report struct {
	LeagueID        string                        `json:"league_id,omitempty"`
	Sport           string                        `json:"sport,omitempty"`
	Scope           string                        `json:"scope,omitempty"`
	Categories      []string                      `json:"categories"`
	LowerIsBetter   []string                      `json:"lower_is_better"`
	PercentTriplets map[string][2]string          `json:"percent_triplets"`
	TeamTotals      map[string]map[string]float64 `json:"team_totals"`
	PerTeam         map[string]map[string]Detail  `json:"per_team"`
	PowerScores     map[string]float64            `json:"power_scores"`
	Standings       []Standing                    `json:"standings"`
}

// NewReport assembles a Report from a ranking result. Team names are
// optional; pass nil when only keys are known.
func NewReport(res Result, totals aggregate.Totals, policy Policy, names map[string]string) Report {
	lower := make([]string, 0, len(policy.LowerIsBetter))
	for key := range policy.LowerIsBetter {
		lower = append(lower, key)
	}
	sort.Strings(lower)

	triplets := make(map[string][2]string, len(policy.PercentTriplets))
	for key, r := range policy.PercentTriplets {
		triplets[key] = [2]string{r.Numerator, r.Denominator}
	}

	standings := make([]Standing, 0, len(res.PowerScores))
	for id, score := range res.PowerScores {
		standings = append(standings, Standing{TeamID: id, Name: names[id], Score: score})
	}
	sort.SliceStable(standings, func(i, j int) bool {
		if standings[i].Score != standings[j].Score {
			return standings[i].Score > standings[j].Score
		}
		return standings[i].TeamID < standings[j].TeamID
	})
	rank := 0
	for i := range standings {
		if i == 0 || standings[i].Score != standings[i-1].Score {
			rank = i + 1
		}
		standings[i].Rank = rank
	}

	return Report{
		Categories:      res.Categories,
		LowerIsBetter:   lower,
		PercentTriplets: triplets,
		TeamTotals:      totals,
		PerTeam:         res.PerTeam,
		PowerScores:     res.PowerScores,
		Standings:       standings,
	}
}
