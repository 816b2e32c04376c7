// Package console renders simulation events as plain text.
package console

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"text/tabwriter"

	"github.com/okian/sportlife/internal/domain/model"
)

const (
	defaultTableRows = 32
	topMarker        = 16
)

// Renderer writes events to an io.Writer. It is a worker.Sink.
type Renderer struct {
	mu        sync.Mutex
	out       io.Writer
	rows      int
	progress  bool
	inline    bool
	champions map[string]*boardLine
}

type boardLine struct {
	name   string
	titles int
	first  int
	last   int
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithTableRows limits how many standings rows are printed.
func WithTableRows(n int) Option {
	return func(r *Renderer) {
		if n > 0 {
			r.rows = n
		}
	}
}

// WithProgress prints the running score of every match on one rewritten line.
func WithProgress(on bool) Option {
	return func(r *Renderer) { r.progress = on }
}

// NewRenderer creates a Renderer.
func NewRenderer(out io.Writer, opts ...Option) *Renderer {
	r := &Renderer{
		out:       out,
		rows:      defaultTableRows,
		progress:  true,
		champions: make(map[string]*boardLine),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Handle implements worker.Sink.
func (r *Renderer) Handle(_ context.Context, e model.Event) error { //nolint:gocritic // hugeParam
	r.mu.Lock()
	defer r.mu.Unlock()

	if e.Kind != model.EventMatchProgress && r.inline {
		if _, err := fmt.Fprintln(r.out); err != nil {
			return err
		}
		r.inline = false
	}

	switch e.Kind {
	case model.EventSeasonStarted:
		return r.printf("\n======== Season %d ========\n", e.Season)
	case model.EventTournamentStarted:
		return r.printf("\n%s %s  (purse %s)\n", strings.ToUpper(e.Format), e.Label, money(e.Purse))
	case model.EventRoundStarted:
		return r.printf("-- %s --\n", e.Label)
	case model.EventMatchProgress:
		if !r.progress || e.Player1 == nil || e.Player2 == nil {
			return nil
		}
		r.inline = true
		return r.printf("\r%-28s %2d - %-2d %s   ", e.Player1.Name, e.Player1.Score, e.Player2.Score, e.Player2.Name)
	case model.EventMatchResult:
		if e.Player1 == nil || e.Player2 == nil {
			return nil
		}
		return r.printf("%-28s %2d - %-2d %s\n", e.Player1.Name, e.Player1.Score, e.Player2.Score, e.Player2.Name)
	case model.EventTournamentFinished:
		return r.finished(e)
	case model.EventStandings:
		return r.table(e.Table)
	case model.EventSeasonFinished:
		return r.board(e.Season)
	case model.EventNotice:
		return r.notice(e)
	}
	return nil
}

func (r *Renderer) finished(e model.Event) error { //nolint:gocritic // hugeParam
	if e.Champion == nil {
		return nil
	}
	if e.Format == model.FormatChampionship.String() {
		line, ok := r.champions[e.Champion.ID]
		if !ok {
			line = &boardLine{first: e.Season}
			r.champions[e.Champion.ID] = line
		}
		line.name = e.Champion.Name
		line.titles++
		line.last = e.Season
	}
	runnerUp := ""
	if e.RunnerUp != nil {
		runnerUp = e.RunnerUp.Name
	}
	return r.printf("🏆 %s wins the %s %s, beating %s\n", e.Champion.Name, e.Format, e.Label, runnerUp)
}

func (r *Renderer) table(rows []model.StandingRow) error {
	tw := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "#\tName\tPoints\tAge\tSkill\tWins\tFinals\tTitles\tPrize\t")
	for i, row := range rows {
		if i >= r.rows {
			break
		}
		name := row.Name
		if row.Ranking <= topMarker {
			name = fmt.Sprintf("%s (%d)", row.Name, row.Ranking)
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%d\t%d\t%d\t%d %s\t%s\t\n",
			row.Ranking, name, row.Points, row.Age, row.Skill, row.Wins, row.RunnerUps,
			row.Championships, row.TitleSpan, money(row.Prize))
	}
	return tw.Flush()
}

func (r *Renderer) board(season int) error {
	if len(r.champions) == 0 {
		return nil
	}
	lines := make([]*boardLine, 0, len(r.champions))
	for _, l := range r.champions {
		lines = append(lines, l)
	}
	sort.SliceStable(lines, func(i, j int) bool {
		if lines[i].titles != lines[j].titles {
			return lines[i].titles > lines[j].titles
		}
		return lines[i].first < lines[j].first
	})

	if err := r.printf("\nChampions after season %d\n", season); err != nil {
		return err
	}
	tw := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', 0)
	for _, l := range lines {
		span := fmt.Sprintf("(%d-%d)", l.first, l.last)
		if l.first == l.last {
			span = fmt.Sprintf("(%d)", l.first)
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\n", l.name, l.titles, span)
	}
	return tw.Flush()
}

func (r *Renderer) notice(e model.Event) error { //nolint:gocritic // hugeParam
	name := ""
	if e.Player1 != nil {
		name = e.Player1.Name
	}
	switch e.Notice {
	case model.NoticeBoost:
		return r.printf("%s finds form (+%d)\n", name, e.Amount)
	case model.NoticeInjury:
		return r.printf("%s is injured (-%d)\n", name, e.Amount)
	case model.NoticeRetirement:
		successor := ""
		if e.Player2 != nil {
			successor = e.Player2.Name
		}
		return r.printf("%s retires; %s joins the tour\n", name, successor)
	case model.NoticeHalted:
		return r.printf("simulation halted: %s\n", e.Label)
	}
	return nil
}

func (r *Renderer) printf(format string, args ...any) error {
	_, err := fmt.Fprintf(r.out, format, args...)
	return err
}

// money formats an amount with thousands separators.
func money(v int64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	s := fmt.Sprintf("%d", v)
	var b strings.Builder
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
