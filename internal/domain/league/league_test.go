package league_test

import (
	"context"
	"errors"
	"testing"

	league "github.com/fantail/fantail/internal/domain/league"
	tree "github.com/fantail/fantail/internal/domain/tree"
	. "github.com/smartystreets/goconvey/convey"
)

func parse(t *testing.T, doc string) tree.Node {
	t.Helper()
	n, err := tree.Parse([]byte(doc))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return n
}

func TestTeams(t *testing.T) {
	Convey("Given a standings payload in indexed-map form", t, func() {
		node := parse(t, `{"fantasy_content":{"league":[{"league_key":"466.l.1"},{"standings":[{"teams":{
			"0":{"team":[[{"team_key":"466.l.1.t.1"},{"team_id":"1"},{"name":"Alpha"},
				{"managers":[{"manager":{"nickname":"ana"}}]}]]},
			"1":{"team":[[{"team_key":"466.l.1.t.2"},{"team_id":"2"},{"name":"Bravo"}]]},
			"count":2}}]}]}}`)

		Convey("When teams are extracted", func() {
			teams := league.Teams(node)

			Convey("Then each team carries key, id, name, and manager", func() {
				So(teams, ShouldHaveLength, 2)
				So(teams[0].Key, ShouldEqual, "466.l.1.t.1")
				So(teams[0].ID, ShouldEqual, "1")
				So(teams[0].Name, ShouldEqual, "Alpha")
				So(teams[0].Manager, ShouldEqual, "ana")
				So(teams[1].Manager, ShouldBeEmpty)
			})
		})
	})

	Convey("Given a payload repeating the same team", t, func() {
		node := parse(t, `{"matchup":[
			{"team":[[{"team_key":"t.1"},{"name":"Alpha"}]]},
			{"team":[[{"team_key":"t.1"},{"name":"Alpha Again"}]]}]}`)

		Convey("Then the first occurrence wins", func() {
			teams := league.Teams(node)
			So(teams, ShouldHaveLength, 1)
			So(teams[0].Name, ShouldEqual, "Alpha")
		})
	})
}

func TestPlayers(t *testing.T) {
	Convey("Given a roster payload", t, func() {
		node := parse(t, `{"roster":{"players":{
			"0":{"player":[[{"player_key":"466.p.5583"},{"player_id":"5583"},
				{"name":{"full":"Stephen Curry","first":"Stephen"}},
				{"status":"GTD"},
				{"eligible_positions":[{"position":"PG"},{"position":"SG"}]}]]},
			"count":1}}}`)

		Convey("When players are extracted", func() {
			players := league.Players(node)

			Convey("Then nested name and position fragments resolve", func() {
				So(players, ShouldHaveLength, 1)
				So(players[0].Key, ShouldEqual, "466.p.5583")
				So(players[0].Name, ShouldEqual, "Stephen Curry")
				So(players[0].Status, ShouldEqual, "GTD")
				So(players[0].Positions, ShouldResemble, []string{"PG", "SG"})
			})
		})
	})
}

func TestParseMeta(t *testing.T) {
	Convey("Given a league header payload", t, func() {
		node := parse(t, `{"fantasy_content":{"league":[{
			"league_key":"466.l.1","name":"Chaos League","game_code":"nba",
			"season":"2025","current_week":"7","edit_key":"2025-12-03"}]}}`)

		Convey("When metadata is parsed", func() {
			meta := league.ParseMeta(node)

			Convey("Then scalar fields and the temporal cursor are typed", func() {
				So(meta.LeagueKey, ShouldEqual, "466.l.1")
				So(meta.Sport, ShouldEqual, "nba")
				So(meta.Season, ShouldEqual, "2025")
				So(meta.CurrentWeek, ShouldEqual, 7)
				So(meta.CurrentDate, ShouldEqual, "2025-12-03")
			})
		})
	})

	Convey("Given an empty payload", t, func() {
		meta := league.ParseMeta(tree.Node{})
		So(meta.LeagueKey, ShouldBeEmpty)
		So(meta.CurrentWeek, ShouldEqual, 0)
	})
}

func TestWeekBounds(t *testing.T) {
	Convey("Given a scoreboard with matchup spans", t, func() {
		node := parse(t, `{"scoreboard":{"0":{"matchup":{
			"week":"4","week_start":"2025-11-10","week_end":"2025-11-16T23:59:59"}}}}`)

		Convey("When bounds for the matching week are requested", func() {
			start, end, err := league.WeekBounds(node, 4)
			So(err, ShouldBeNil)

			Convey("Then time suffixes are truncated to the date", func() {
				So(start, ShouldEqual, "2025-11-10")
				So(end, ShouldEqual, "2025-11-16")
			})
		})

		Convey("When the requested week is absent", func() {
			_, _, err := league.WeekBounds(node, 9)
			So(errors.Is(err, league.ErrNoWeekBounds), ShouldBeTrue)
		})
	})

	Convey("Given a fetch adapter", t, func() {
		fetch := func(_ context.Context, week int) (tree.Node, error) {
			return parse(t, `{"matchup":{"week":"2","week_start":"2025-10-27","week_end":"2025-11-02"}}`), nil
		}

		Convey("Then BoundsFrom plugs payload lookup into the span contract", func() {
			start, end, err := league.BoundsFrom(fetch)(context.Background(), 2)
			So(err, ShouldBeNil)
			So(start, ShouldEqual, "2025-10-27")
			So(end, ShouldEqual, "2025-11-02")
		})
	})
}
