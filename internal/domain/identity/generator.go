// Package identity hands out ids and unique display names for new competitors.
package identity

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/google/uuid"

	"github.com/okian/sportlife/internal/domain/model"
)

const (
	// luckyBonus is granted when the first and last name share a table index.
	luckyBonus = 200
	// maxDraws bounds random draws before falling back to numbered names.
	maxDraws      = 64
	maxGeneration = 50
)

// Generator creates identities. It is safe for concurrent use.
type Generator struct {
	mu       sync.Mutex
	rng      *rand.Rand
	culture  Culture
	registry Registry
	newID    func() string
}

// NewGenerator creates a generator with its own registry.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		rng:      rand.New(rand.NewSource(1)), //nolint:gosec // simulation randomness
		culture:  CultureEnglish,
		registry: NewRegistry(),
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Next returns a fresh identity with a unique name. Lucky names, whose first
// and last name sit at the same index of their table, carry a skill bonus.
func (g *Generator) Next() (model.Identity, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	culture := g.culture
	if culture == CultureMixed {
		culture = Culture(g.rng.Intn(int(CultureMixed)))
	}
	t, ok := tables[culture]
	if !ok {
		return model.Identity{}, fmt.Errorf("%w: %d", ErrUnknownCulture, culture)
	}

	var fi, li int
	for i := 0; i < maxDraws; i++ {
		fi, li = g.rng.Intn(len(t.first)), g.rng.Intn(len(t.last))
		name := t.first[fi] + " " + t.last[li]
		if g.registry.Claim(name) {
			return g.identity(name, culture, fi, li), nil
		}
	}

	// Crowded table: keep the last draw and number it.
	base := t.first[fi] + " " + t.last[li]
	for n := 2; n <= maxGeneration; n++ {
		name := fmt.Sprintf("%s %s", base, generation(n))
		if g.registry.Claim(name) {
			return g.identity(name, culture, fi, li), nil
		}
	}
	return model.Identity{}, fmt.Errorf("%w: %s", ErrExhausted, base)
}

// Claim records an existing name, e.g. from a loaded roster.
func (g *Generator) Claim(name string) bool {
	return g.registry.Claim(name)
}

// Release frees a name for reuse.
func (g *Generator) Release(name string) {
	g.registry.Release(name)
}

// InUse returns the number of names currently claimed.
func (g *Generator) InUse() int64 {
	return g.registry.Size()
}

func (g *Generator) identity(name string, culture Culture, fi, li int) model.Identity {
	id := model.Identity{ID: g.newID(), Name: name}
	if fi == li {
		id.Bonus = luckyBonus
		if fi == 0 && culture == CultureEnglish {
			id.Bonus += luckyBonus
		}
	}
	return id
}

var numerals = []string{"", "I", "II", "III", "IV", "V", "VI", "VII", "VIII", "IX"}

// generation renders n as a roman numeral for n < 100.
func generation(n int) string {
	tens := []string{"", "X", "XX", "XXX", "XL", "L", "LX", "LXX", "LXXX", "XC"}
	return tens[n/10] + numerals[n%10]
}
