// Package match resolves a single race-to-N match between two competitors.
package match

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/okian/sportlife/internal/domain/model"
	"github.com/okian/sportlife/pkg/metrics"
)

const defaultRandomSeed = 42

// Option applies a configuration option to the RandomResolver.
type Option func(*RandomResolver)

// WithRand shares an existing random source. The simulation runs on a
// single goroutine and passes one source to every component.
func WithRand(rng *rand.Rand) Option {
	return func(r *RandomResolver) {
		if rng != nil {
			r.rng = rng
		}
	}
}

// WithSeed creates a private random source from seed.
func WithSeed(seed int64) Option {
	return func(r *RandomResolver) {
		r.rng = rand.New(rand.NewSource(seed)) //nolint:gosec // simulation randomness
	}
}

// WithObserver registers a callback invoked after every point.
func WithObserver(fn PointObserver) Option {
	return func(r *RandomResolver) { r.observer = fn }
}

// Point is the running state reported after each point.
type Point struct {
	Home, Away           *model.Competitor
	HomeScore, AwayScore int
	HomeWon              bool
	RaceTo               int
}

// PointObserver receives every point as it is played. It is where the
// caller polls input and applies pacing.
type PointObserver func(ctx context.Context, p Point)

// Outcome is the result of a finished match.
type Outcome struct {
	Winner, Loser *model.Competitor
	WinnerScore   int
	LoserScore    int
}

// Points returns the number of points played.
func (o Outcome) Points() int { return o.WinnerScore + o.LoserScore }

// Resolver plays a match between two competitors.
type Resolver interface {
	// Play runs the match to completion. ctx is handed to the observer; a
	// cancelled context never abandons a match half way.
	Play(ctx context.Context, home, away *model.Competitor, raceTo int) (Outcome, error)
}

// RandomResolver awards each point by drawing uniformly from each side's skill.
type RandomResolver struct {
	rng      *rand.Rand
	observer PointObserver
}

// NewRandomResolver creates a resolver with the given options.
func NewRandomResolver(opts ...Option) *RandomResolver {
	r := &RandomResolver{
		rng: rand.New(rand.NewSource(defaultRandomSeed)), //nolint:gosec // simulation randomness
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Play draws a = rand[0,home.Skill) and b = rand[0,away.Skill) per point.
// The home side takes the point only when a > b, so ties go to the away side.
func (r *RandomResolver) Play(ctx context.Context, home, away *model.Competitor, raceTo int) (Outcome, error) {
	if raceTo < 1 {
		return Outcome{}, fmt.Errorf("%w: race to %d", ErrInvalidRace, raceTo)
	}
	if home == nil || away == nil {
		return Outcome{}, ErrMissingCompetitor
	}
	if home.Skill <= 0 || away.Skill <= 0 {
		return Outcome{}, fmt.Errorf("%w: %s=%d %s=%d", ErrInvalidSkill, home.Name, home.Skill, away.Name, away.Skill)
	}

	var hs, as int
	for hs < raceTo && as < raceTo {
		homeWon := r.rng.Intn(home.Skill) > r.rng.Intn(away.Skill)
		if homeWon {
			hs++
		} else {
			as++
		}
		if r.observer != nil {
			r.observer(ctx, Point{Home: home, Away: away, HomeScore: hs, AwayScore: as, HomeWon: homeWon, RaceTo: raceTo})
		}
	}

	out := Outcome{Winner: home, Loser: away, WinnerScore: hs, LoserScore: as}
	if as > hs {
		out = Outcome{Winner: away, Loser: home, WinnerScore: as, LoserScore: hs}
	}
	metrics.RecordMatch(out.Points())
	return out, nil
}
