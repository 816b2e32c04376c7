// Package standings folds tournament results into rolling points, prize
// money, career counters and the rankings.
package standings

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/okian/sportlife/internal/domain/bracket"
	"github.com/okian/sportlife/internal/domain/model"
)

const defaultHistoryCapacity = 24

// Award is what one competitor earned from one tournament.
type Award struct {
	ID     string
	Depth  int
	Placed bool
	Points int
	Prize  int64
}

// Publisher receives the pool after every ranking pass, best first.
type Publisher interface {
	Publish(ctx context.Context, ranked []*model.Competitor) error
}

// Option configures an Engine.
type Option func(*Engine)

// WithHistoryCapacity sets the rolling window of the shared history.
func WithHistoryCapacity(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.capacity = n
		}
	}
}

// WithFormatCapacity asks for a window of at least n entries while f is
// played. Every format shares one history, so the widest window wins.
func WithFormatCapacity(f model.Format, n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.formatCapacity[f] = n
		}
	}
}

// WithTables overrides the tables for one format.
func WithTables(f model.Format, t bracket.Tables) Option {
	return func(e *Engine) { e.tables[f] = t }
}

// WithPublisher registers a sink for ranked pools.
func WithPublisher(p Publisher) Option {
	return func(e *Engine) { e.publisher = p }
}

// Engine applies tournament results to a pool.
type Engine struct {
	capacity       int
	formatCapacity map[model.Format]int
	tables         map[model.Format]bracket.Tables
	publisher      Publisher
}

// NewEngine creates an engine using the default tables.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		capacity:       defaultHistoryCapacity,
		formatCapacity: map[model.Format]int{},
		tables:         map[model.Format]bracket.Tables{},
	}
	for _, f := range model.Formats {
		e.tables[f] = bracket.DefaultTables(f)
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Window returns how many entries the shared history keeps: the default
// capacity or the widest format override.
func (e *Engine) Window() int {
	w := e.capacity
	for _, n := range e.formatCapacity {
		w = max(w, n)
	}
	return w
}

// Apply credits every competitor with the points and prize of the depth
// their tag ended at, then re-ranks the pool. Competitors left on an active
// tag get a zero entry. The pool slice is reordered best first.
func (e *Engine) Apply(ctx context.Context, pool []*model.Competitor, res bracket.Result, purse int64, season int) ([]Award, error) {
	tables, ok := e.tables[res.Format]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingTableEntry, res.Format)
	}
	capacity := e.Window()

	awards := make([]Award, 0, len(pool))
	for _, c := range pool {
		a := Award{ID: c.ID}
		if depth, placed := c.Tag.Depth(); placed {
			pts, ok := tables.PointsAt(depth)
			if !ok {
				return nil, fmt.Errorf("%w: %s depth %d", ErrMissingTableEntry, res.Format, depth)
			}
			prize, ok := tables.PrizeAt(purse, depth)
			if !ok {
				return nil, fmt.Errorf("%w: %s depth %d", ErrMissingTableEntry, res.Format, depth)
			}
			a = Award{ID: c.ID, Depth: depth, Placed: true, Points: pts, Prize: prize}
		}
		awards = append(awards, a)
	}

	for i, c := range pool {
		a := awards[i]
		c.Record(a.Points, capacity)
		c.CareerPrize += a.Prize
		c.SeasonPrize += a.Prize
		switch c.Tag {
		case model.Champion:
			c.Wins++
			if res.Format == model.FormatChampionship {
				c.WinTitle(season)
			}
		case model.RunnerUp:
			c.RunnerUps++
		}
	}

	Rank(pool)
	if e.publisher != nil {
		if err := e.publisher.Publish(ctx, pool); err != nil {
			return awards, fmt.Errorf("%w: %w", ErrPublish, err)
		}
	}
	return awards, nil
}

// Rank orders the pool by points, highest first, keeping the previous
// order among ties, and assigns rankings 1..N.
func Rank(pool []*model.Competitor) {
	slices.SortStableFunc(pool, func(a, b *model.Competitor) int {
		return cmp.Compare(b.Points, a.Points)
	})
	for i, c := range pool {
		c.Ranking = i + 1
		if c.BestRanking == 0 || c.Ranking < c.BestRanking {
			c.BestRanking = c.Ranking
		}
		if c.Ranking == 1 {
			c.TimesRankedFirst++
		}
	}
}
