package identity

import "math/rand"

// Option applies a configuration option to the Generator.
type Option func(*Generator)

// WithCulture selects the name table.
func WithCulture(c Culture) Option {
	return func(g *Generator) { g.culture = c }
}

// WithRand shares a random source.
func WithRand(rng *rand.Rand) Option {
	return func(g *Generator) {
		if rng != nil {
			g.rng = rng
		}
	}
}

// WithRegistry shares a name registry, e.g. one preloaded from a saved roster.
func WithRegistry(r Registry) Option {
	return func(g *Generator) {
		if r != nil {
			g.registry = r
		}
	}
}

// WithIDFunc replaces the id generator.
func WithIDFunc(fn func() string) Option {
	return func(g *Generator) {
		if fn != nil {
			g.newID = fn
		}
	}
}
