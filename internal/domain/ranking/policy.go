package ranking

import (
	"strings"

	category "github.com/fantail/fantail/internal/domain/category"
)

// Policy carries the per-sport ranking rules: which categories are better
// when smaller, which are ratios derived from counting legs, and how raw
// upstream labels map to canonical keys. Upstream never marks ratio
// categories itself, so the tables here are the source of truth.
type Policy struct {
	Sport           string
	LowerIsBetter   map[string]bool
	PercentTriplets map[string]category.Ratio
	// Aliases maps raw upstream labels to canonical keys. An empty
	// canonical drops the label (helper columns like "FGM / FGA").
	Aliases map[string]string
}

// PolicyFor returns the built-in policy for a sport code. Unknown sports get
// an empty policy: everything counts, nothing inverts.
func PolicyFor(sport string) Policy {
	switch strings.ToLower(sport) {
	case "nba":
		return Policy{
			Sport:         "nba",
			LowerIsBetter: map[string]bool{"TO": true},
			PercentTriplets: map[string]category.Ratio{
				"FG%":  {Numerator: "FGM", Denominator: "FGA"},
				"FT%":  {Numerator: "FTM", Denominator: "FTA"},
				"3PT%": {Numerator: "3PTM", Denominator: "3PTA"},
			},
			Aliases: map[string]string{
				"3P":          "3PTM",
				"3PT":         "3PTM",
				"3PM":         "3PTM",
				"3PA":         "3PTA",
				"STL":         "ST",
				"TOV":         "TO",
				"FGM / FGA":   "",
				"FTM / FTA":   "",
				"3PTM / 3PTA": "",
			},
		}
	case "nhl":
		return Policy{
			Sport:         "nhl",
			LowerIsBetter: map[string]bool{"PIM": true, "GAA": true},
			PercentTriplets: map[string]category.Ratio{
				"SV%": {Numerator: "SV", Denominator: "SA"},
			},
			Aliases: map[string]string{
				"PLUS/MINUS": "+/-",
				"PP PTS":     "PPP",
				"SV / SA":    "",
			},
		}
	default:
		return Policy{
			Sport:           strings.ToLower(sport),
			LowerIsBetter:   map[string]bool{},
			PercentTriplets: map[string]category.Ratio{},
			Aliases:         map[string]string{},
		}
	}
}

// Canonical resolves a raw label through the alias table. The second return
// is false when the label maps to nothing and should be dropped.
func (p Policy) Canonical(raw string) (string, bool) {
	if mapped, ok := p.Aliases[raw]; ok {
		return mapped, mapped != ""
	}
	return raw, raw != ""
}
