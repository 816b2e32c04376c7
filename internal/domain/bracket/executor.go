package bracket

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/okian/sportlife/internal/domain/match"
	"github.com/okian/sportlife/internal/domain/model"
)

// MatchHook is called after every match of a round.
type MatchHook func(ctx context.Context, in model.RoundInstruction, out match.Outcome)

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithRand sets the random source used for pairing.
func WithRand(rng *rand.Rand) ExecutorOption {
	return func(e *Executor) {
		if rng != nil {
			e.rng = rng
		}
	}
}

// WithMatchHook registers a callback for finished matches.
func WithMatchHook(fn MatchHook) ExecutorOption {
	return func(e *Executor) { e.onMatch = fn }
}

// Executor runs a single round instruction over a pool.
type Executor struct {
	resolver match.Resolver
	rng      *rand.Rand
	onMatch  MatchHook
}

// NewExecutor creates an executor that resolves matches with resolver.
func NewExecutor(resolver match.Resolver, opts ...ExecutorOption) *Executor {
	e := &Executor{
		resolver: resolver,
		rng:      rand.New(rand.NewSource(1)), //nolint:gosec // simulation randomness
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute plays in.Matches matches. For each one a random Home-tagged
// competitor is drawn and immediately retagged Win so it cannot be drawn
// again, then a random Away-tagged opponent likewise. The better ranked of
// the two plays as player one. The loser is retagged Lose.
//
// Rematches from earlier rounds are not avoided.
func (e *Executor) Execute(ctx context.Context, pool []*model.Competitor, in model.RoundInstruction) error {
	if len(pool) == 0 {
		return ErrEmptyPool
	}
	if in.Matches < 1 || in.RaceTo < 1 {
		return fmt.Errorf("%w: %s", ErrInvalidRound, in)
	}

	for m := 0; m < in.Matches; m++ {
		home, err := e.draw(pool, in.Home)
		if err != nil {
			return fmt.Errorf("%s match %d home: %w", in.Label, m+1, err)
		}
		home.Tag = in.Win

		away, err := e.draw(pool, in.Away)
		if err != nil {
			return fmt.Errorf("%s match %d away: %w", in.Label, m+1, err)
		}
		away.Tag = in.Win

		p1, p2 := home, away
		if p2.Ranking < p1.Ranking {
			p1, p2 = p2, p1
		}
		out, err := e.resolver.Play(ctx, p1, p2, in.RaceTo)
		if err != nil {
			return fmt.Errorf("%s match %d: %w", in.Label, m+1, err)
		}
		out.Loser.Tag = in.Lose

		if e.onMatch != nil {
			e.onMatch(ctx, in, out)
		}
	}
	return nil
}

// draw rejection-samples a competitor carrying tag. The population is
// counted first so an empty one fails instead of spinning.
func (e *Executor) draw(pool []*model.Competitor, tag model.Tag) (*model.Competitor, error) {
	if Population(pool, tag) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyPopulation, tag)
	}
	for {
		c := pool[e.rng.Intn(len(pool))]
		if c.Tag == tag {
			return c, nil
		}
	}
}

// Population counts competitors carrying tag.
func Population(pool []*model.Competitor, tag model.Tag) int {
	n := 0
	for _, c := range pool {
		if c.Tag == tag {
			n++
		}
	}
	return n
}
