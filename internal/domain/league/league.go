// Package league extracts typed league facts (teams, players, metadata,
// week spans) from decoded payload trees. Everything here is shape-tolerant:
// extraction goes through the tree package's recovery primitives, so payload
// drift degrades to missing fields rather than failures.
package league

import (
	"context"
	"strconv"

	tree "github.com/fantail/fantail/internal/domain/tree"
)

// Team is one league member.
type Team struct {
	Key     string `json:"team_key"`
	ID      string `json:"team_id,omitempty"`
	Name    string `json:"name,omitempty"`
	Manager string `json:"manager,omitempty"`
}

// Player is one rostered or queried player.
type Player struct {
	Key       string   `json:"player_key"`
	ID        string   `json:"player_id,omitempty"`
	Name      string   `json:"name,omitempty"`
	Positions []string `json:"positions,omitempty"`
	Status    string   `json:"status,omitempty"`
}

// Meta is the league header: sport code, season year, and the temporal
// cursor used as the default rolling anchor.
type Meta struct {
	LeagueKey   string `json:"league_key"`
	Name        string `json:"name,omitempty"`
	Sport       string `json:"sport,omitempty"`
	Season      string `json:"season,omitempty"`
	CurrentWeek int    `json:"current_week,omitempty"`
	CurrentDate string `json:"current_date,omitempty"`
}

// Teams extracts every distinct team from the payload, first occurrence
// wins. Order follows the deterministic tree traversal.
func Teams(node tree.Node) []Team {
	var out []Team
	seen := map[string]bool{}
	for _, rec := range tree.FindAll(node, "team") {
		key, ok := rec.Text("team_key")
		if !ok || seen[key] {
			continue
		}
		seen[key] = true
		t := Team{Key: key}
		t.ID, _ = rec.Text("team_id")
		t.Name, _ = rec.Text("name")
		if managers, ok := rec["managers"]; ok {
			t.Manager, _ = tree.FirstText(managers, "nickname", "manager_name")
		}
		out = append(out, t)
	}
	return out
}

// Players extracts every distinct player from the payload.
func Players(node tree.Node) []Player {
	var out []Player
	seen := map[string]bool{}
	for _, rec := range tree.FindAll(node, "player") {
		key, ok := rec.Text("player_key")
		if !ok || seen[key] {
			continue
		}
		seen[key] = true
		p := Player{Key: key}
		p.ID, _ = rec.Text("player_id")
		if name, ok := rec["name"]; ok {
			p.Name, _ = tree.FirstText(name, "full", "name")
		}
		p.Status, _ = rec.Text("status")
		if positions, ok := rec["eligible_positions"]; ok {
			for _, item := range tree.Elements(positions) {
				if pos, ok := tree.FirstText(item, "position"); ok {
					p.Positions = append(p.Positions, pos)
				} else if pos, ok := item.Text(); ok {
					p.Positions = append(p.Positions, pos)
				}
			}
		}
		out = append(out, p)
	}
	return out
}

// ParseMeta reads the league header. Missing fields stay zero; the caller
// decides whether a partial header is usable.
func ParseMeta(node tree.Node) Meta {
	recs := tree.FindAll(node, "league")
	var rec tree.FlatRecord
	if len(recs) > 0 {
		rec = recs[0]
	} else {
		rec = tree.Flatten(node)
	}

	m := Meta{}
	m.LeagueKey, _ = rec.Text("league_key")
	m.Name, _ = rec.Text("name")
	m.Sport, _ = rec.Text("game_code", "sport")
	m.Season, _ = rec.Text("season")
	if wk, ok := rec.Text("current_week"); ok {
		if n, err := strconv.Atoi(wk); err == nil {
			m.CurrentWeek = n
		}
	}
	// edit_key tracks the league's "today" more reliably than current_date.
	m.CurrentDate, _ = rec.Text("edit_key", "current_date")
	return m
}

// WeekBounds finds the span of one week inside a scoreboard or schedule
// payload. Date fields occasionally carry a time suffix, so values are
// truncated to the ISO date prefix. Suitable as a scope.BoundsFunc once the
// payload lookup is bound:
//
//	resolver := scope.NewResolver(scope.WithWeekBounds(
//		func(ctx context.Context, week int) (string, string, error) {
//			node, err := client.Scoreboard(ctx, leagueID, week)
//			if err != nil {
//				return "", "", err
//			}
//			return league.WeekBounds(node, week)
//		},
//	))
func WeekBounds(node tree.Node, week int) (start, end string, err error) {
	target := strconv.Itoa(week)
	for _, rec := range weekRecords(node) {
		if wk, ok := rec.Text("week", "current_week"); ok && wk != target {
			continue
		}
		s, okS := rec.Text("week_start", "start_date", "start")
		e, okE := rec.Text("week_end", "end_date", "end")
		if okS && okE {
			return isoDate(s), isoDate(e), nil
		}
	}
	return "", "", ErrNoWeekBounds
}

// weekRecords collects the flattened records that can carry week spans: the
// matchup entries of a scoreboard plus the league header itself.
func weekRecords(node tree.Node) []tree.FlatRecord {
	recs := tree.FindAll(node, "matchup")
	recs = append(recs, tree.FindAll(node, "league")...)
	return recs
}

func isoDate(s string) string {
	if len(s) > 10 {
		return s[:10]
	}
	return s
}

// BoundsFrom adapts a scoreboard fetch into the injectable week-span lookup.
func BoundsFrom(fetch func(ctx context.Context, week int) (tree.Node, error)) func(ctx context.Context, week int) (string, string, error) {
	return func(ctx context.Context, week int) (string, string, error) {
		node, err := fetch(ctx, week)
		if err != nil {
			return "", "", err
		}
		return WeekBounds(node, week)
	}
}
