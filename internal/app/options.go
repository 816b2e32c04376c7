package app

import (
	"math/rand"

	"github.com/okian/sportlife/internal/adapters/input"
	"github.com/okian/sportlife/internal/adapters/roster"
	"github.com/okian/sportlife/internal/domain/standings"
	"github.com/okian/sportlife/pkg/logger"
)

// Option applies a configuration option to the Simulation.
type Option func(*Simulation)

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Simulation) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithEmitter sets where display events go, usually the event queue.
func WithEmitter(e Emitter) Option {
	return func(s *Simulation) {
		if e != nil {
			s.events = e
		}
	}
}

// WithInput sets the key source polled during matches.
func WithInput(src input.Source) Option {
	return func(s *Simulation) {
		if src != nil {
			s.input = src
		}
	}
}

// WithPublisher receives the ranked pool after every standings pass.
func WithPublisher(p standings.Publisher) Option {
	return func(s *Simulation) { s.publisher = p }
}

// WithRoster enables Restore and saving on Shutdown.
func WithRoster(st roster.Store) Option {
	return func(s *Simulation) { s.roster = st }
}

// WithRand replaces the random source derived from the configured seed.
func WithRand(rng *rand.Rand) Option {
	return func(s *Simulation) {
		if rng != nil {
			s.rng = rng
		}
	}
}
