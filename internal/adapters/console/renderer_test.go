package console

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/okian/sportlife/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRenderer(t *testing.T) {
	Convey("Given a renderer writing to a buffer", t, func() {
		ctx := context.Background()
		var buf bytes.Buffer
		r := NewRenderer(&buf, WithTableRows(2))

		Convey("Progress shares one line until a result lands", func() {
			p1 := &model.MatchSide{Name: "Ann Lee (1)", Score: 1}
			p2 := &model.MatchSide{Name: "Bo Chan", Score: 0}
			So(r.Handle(ctx, model.Event{Kind: model.EventMatchProgress, Player1: p1, Player2: p2}), ShouldBeNil)
			p1.Score = 2
			So(r.Handle(ctx, model.Event{Kind: model.EventMatchProgress, Player1: p1, Player2: p2}), ShouldBeNil)
			So(r.Handle(ctx, model.Event{Kind: model.EventMatchResult, Player1: p1, Player2: p2}), ShouldBeNil)

			out := buf.String()
			So(strings.Count(out, "\r"), ShouldEqual, 2)
			So(out, ShouldEndWith, "Bo Chan\n")
			So(strings.Count(out, "\n"), ShouldEqual, 2)
		})

		Convey("Standings mark the top of the table and respect the row limit", func() {
			rows := []model.StandingRow{
				{Ranking: 1, Name: "Ann Lee", Points: 900, Championships: 2, TitleSpan: "(1-3)", Prize: 1234567},
				{Ranking: 2, Name: "Bo Chan", Points: 800},
				{Ranking: 3, Name: "Cy Dee", Points: 700},
			}
			So(r.Handle(ctx, model.Event{Kind: model.EventStandings, Table: rows}), ShouldBeNil)

			out := buf.String()
			So(out, ShouldContainSubstring, "Ann Lee (1)")
			So(out, ShouldContainSubstring, "2 (1-3)")
			So(out, ShouldContainSubstring, "1,234,567")
			So(out, ShouldNotContainSubstring, "Cy Dee")
		})

		Convey("The champion board counts championship titles only", func() {
			champ := &model.MatchSide{ID: "a", Name: "Ann Lee"}
			runner := &model.MatchSide{ID: "b", Name: "Bo Chan"}
			for season := 1; season <= 3; season++ {
				So(r.Handle(ctx, model.Event{Kind: model.EventTournamentFinished, Season: season, Format: "championship", Champion: champ, RunnerUp: runner}), ShouldBeNil)
				So(r.Handle(ctx, model.Event{Kind: model.EventTournamentFinished, Season: season, Format: "open", Champion: runner, RunnerUp: champ}), ShouldBeNil)
			}
			buf.Reset()
			So(r.Handle(ctx, model.Event{Kind: model.EventSeasonFinished, Season: 3}), ShouldBeNil)

			out := buf.String()
			So(out, ShouldContainSubstring, "Ann Lee  3  (1-3)")
			So(out, ShouldNotContainSubstring, "Bo Chan")
		})

		Convey("Notices describe lifecycle changes", func() {
			So(r.Handle(ctx, model.Event{Kind: model.EventNotice, Notice: model.NoticeInjury, Amount: 500, Player1: &model.MatchSide{Name: "Ann Lee"}}), ShouldBeNil)
			So(r.Handle(ctx, model.Event{Kind: model.EventNotice, Notice: model.NoticeRetirement, Player1: &model.MatchSide{Name: "Old Guy"}, Player2: &model.MatchSide{Name: "New Kid"}}), ShouldBeNil)
			So(buf.String(), ShouldContainSubstring, "Ann Lee is injured (-500)")
			So(buf.String(), ShouldContainSubstring, "Old Guy retires; New Kid joins the tour")
		})
	})

	Convey("Money gets separators", t, func() {
		So(money(0), ShouldEqual, "0")
		So(money(999), ShouldEqual, "999")
		So(money(1000), ShouldEqual, "1,000")
		So(money(-1234567), ShouldEqual, "-1,234,567")
	})
}
