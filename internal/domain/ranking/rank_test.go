package ranking_test

import (
	"testing"

	aggregate "github.com/fantail/fantail/internal/domain/aggregate"
	ranking "github.com/fantail/fantail/internal/domain/ranking"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRank(t *testing.T) {
	nba := ranking.PolicyFor("nba")

	Convey("Given two teams split on points and turnovers", t, func() {
		totals := aggregate.Totals{
			"t1": {"PTS": 100, "TO": 10},
			"t2": {"PTS": 90, "TO": 20},
		}

		Convey("When ranked with turnovers inverted", func() {
			res := ranking.Rank(totals, nba, nil, nil)

			Convey("Then z-scores are symmetric unit deviations", func() {
				So(res.PerTeam["t1"]["PTS"].Z, ShouldEqual, 1)
				So(res.PerTeam["t2"]["PTS"].Z, ShouldEqual, -1)
				So(res.PerTeam["t1"]["TO"].Z, ShouldEqual, 1)
				So(res.PerTeam["t2"]["TO"].Z, ShouldEqual, -1)
			})

			Convey("Then power scores sum the category z-scores", func() {
				So(res.PowerScores["t1"], ShouldEqual, 2)
				So(res.PowerScores["t2"], ShouldEqual, -2)
			})

			Convey("Then the lower-turnover team ranks first in both categories", func() {
				So(res.PerTeam["t1"]["PTS"].Rank, ShouldEqual, 1)
				So(res.PerTeam["t1"]["TO"].Rank, ShouldEqual, 1)
				So(res.PerTeam["t2"]["TO"].Rank, ShouldEqual, 2)
			})

			Convey("Then reported values stay raw, not sign-inverted", func() {
				So(res.PerTeam["t1"]["TO"].Value, ShouldEqual, 10)
			})
		})

		Convey("When a category weight is raised", func() {
			res := ranking.Rank(totals, nba, nil, map[string]float64{"PTS": 3})

			Convey("Then the power score scales that category's contribution", func() {
				So(res.PowerScores["t1"], ShouldEqual, 4) // 3*1 + 1
			})
		})

		Convey("When turnovers are punted", func() {
			res := ranking.Rank(totals, nba, map[string]bool{"TO": true}, nil)

			Convey("Then the category vanishes from the universe and the scores", func() {
				So(res.Categories, ShouldResemble, []string{"PTS"})
				So(res.PerTeam["t1"], ShouldNotContainKey, "TO")
				So(res.PowerScores["t1"], ShouldEqual, 1)
				So(res.PowerScores["t2"], ShouldEqual, -1)
			})
		})
	})

	Convey("Given every team tied on a category", t, func() {
		totals := aggregate.Totals{
			"t1": {"REB": 40},
			"t2": {"REB": 40},
			"t3": {"REB": 40},
		}

		Convey("When ranked", func() {
			res := ranking.Rank(totals, nba, nil, nil)

			Convey("Then zero variance yields z = 0 for everyone, never NaN", func() {
				for _, id := range []string{"t1", "t2", "t3"} {
					So(res.PerTeam[id]["REB"].Z, ShouldEqual, 0)
					So(res.PowerScores[id], ShouldEqual, 0)
				}
			})

			Convey("Then all teams share rank 1", func() {
				So(res.PerTeam["t1"]["REB"].Rank, ShouldEqual, 1)
				So(res.PerTeam["t3"]["REB"].Rank, ShouldEqual, 1)
			})
		})
	})

	Convey("Given a partial tie", t, func() {
		totals := aggregate.Totals{
			"t1": {"PTS": 100},
			"t2": {"PTS": 100},
			"t3": {"PTS": 80},
		}

		Convey("Then the tied pair shares rank 1 and the next team gets rank 3", func() {
			res := ranking.Rank(totals, ranking.PolicyFor("nba"), nil, nil)
			So(res.PerTeam["t1"]["PTS"].Rank, ShouldEqual, 1)
			So(res.PerTeam["t2"]["PTS"].Rank, ShouldEqual, 1)
			So(res.PerTeam["t3"]["PTS"].Rank, ShouldEqual, 3)
		})
	})

	Convey("Given ratio categories with leg totals", t, func() {
		Convey("When both legs are present", func() {
			totals := aggregate.Totals{
				"t1": {"FGM": 40, "FGA": 100, "FG%": 0.123},
				"t2": {"FGM": 45, "FGA": 90, "FG%": 0.456},
			}
			res := ranking.Rank(totals, nba, nil, nil)

			Convey("Then the ratio is rebuilt from the sums, ignoring the wire value", func() {
				So(res.PerTeam["t1"]["FG%"].Value, ShouldEqual, 0.4)
				So(res.PerTeam["t2"]["FG%"].Value, ShouldEqual, 0.5)
				So(res.PerTeam["t2"]["FG%"].Rank, ShouldEqual, 1)
			})
		})

		Convey("When the denominator sums to zero", func() {
			totals := aggregate.Totals{
				"t1": {"FGM": 0, "FGA": 0},
				"t2": {"FGM": 0, "FGA": 0, "FG%": 0.5},
			}
			res := ranking.Rank(totals, nba, nil, nil)

			Convey("Then the value is 0 unless the wire already carried a ratio", func() {
				So(res.PerTeam["t1"]["FG%"].Value, ShouldEqual, 0)
				So(res.PerTeam["t2"]["FG%"].Value, ShouldEqual, 0.5)
			})
		})

		Convey("When a leg is missing", func() {
			totals := aggregate.Totals{
				"t1": {"FG%": 0.48, "FGM": 40},
				"t2": {"FG%": 0.52, "FGM": 45},
			}
			res := ranking.Rank(totals, nba, nil, nil)

			Convey("Then the wire ratio is used as-is", func() {
				So(res.PerTeam["t1"]["FG%"].Value, ShouldEqual, 0.48)
			})
		})
	})

	Convey("Given empty totals", t, func() {
		res := ranking.Rank(aggregate.Totals{}, nba, nil, nil)

		Convey("Then every output is empty, not nil panics or errors", func() {
			So(res.Categories, ShouldBeEmpty)
			So(res.PerTeam, ShouldBeEmpty)
			So(res.PowerScores, ShouldBeEmpty)
		})
	})
}

func TestPolicyFor(t *testing.T) {
	Convey("Given the built-in sport tables", t, func() {
		Convey("Then basketball inverts turnovers and tracks shooting splits", func() {
			p := ranking.PolicyFor("NBA")
			So(p.LowerIsBetter["TO"], ShouldBeTrue)
			So(p.PercentTriplets["FG%"].Numerator, ShouldEqual, "FGM")
			So(p.PercentTriplets["FT%"].Denominator, ShouldEqual, "FTA")
		})

		Convey("Then hockey inverts penalty minutes and goals-against average", func() {
			p := ranking.PolicyFor("nhl")
			So(p.LowerIsBetter["PIM"], ShouldBeTrue)
			So(p.LowerIsBetter["GAA"], ShouldBeTrue)
			So(p.PercentTriplets["SV%"].Denominator, ShouldEqual, "SA")
		})

		Convey("Then alias resolution folds variants and drops helper columns", func() {
			p := ranking.PolicyFor("nba")
			key, ok := p.Canonical("TOV")
			So(ok, ShouldBeTrue)
			So(key, ShouldEqual, "TO")
			_, ok = p.Canonical("FGM / FGA")
			So(ok, ShouldBeFalse)
		})

		Convey("Then an unknown sport yields a neutral policy", func() {
			p := ranking.PolicyFor("mls")
			So(p.LowerIsBetter, ShouldBeEmpty)
			So(p.PercentTriplets, ShouldBeEmpty)
		})
	})
}

func TestNewReport(t *testing.T) {
	Convey("Given a ranking result and team names", t, func() {
		totals := aggregate.Totals{
			"t1": {"PTS": 100},
			"t2": {"PTS": 90},
			"t3": {"PTS": 95},
		}
		policy := ranking.PolicyFor("nba")
		res := ranking.Rank(totals, policy, nil, nil)
		names := map[string]string{"t1": "Alpha", "t2": "Bravo", "t3": "Charlie"}

		Convey("When the report is assembled", func() {
			report := ranking.NewReport(res, totals, policy, names)

			Convey("Then standings are ordered by power score", func() {
				So(report.Standings, ShouldHaveLength, 3)
				So(report.Standings[0].TeamID, ShouldEqual, "t1")
				So(report.Standings[0].Rank, ShouldEqual, 1)
				So(report.Standings[0].Name, ShouldEqual, "Alpha")
				So(report.Standings[2].TeamID, ShouldEqual, "t2")
				So(report.Standings[2].Rank, ShouldEqual, 3)
			})

			Convey("Then policy tables are echoed in list form", func() {
				So(report.LowerIsBetter, ShouldResemble, []string{"TO"})
				So(report.PercentTriplets["FG%"], ShouldResemble, [2]string{"FGM", "FGA"})
			})
		})
	})
}
