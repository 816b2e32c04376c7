// Package lifecycle ages competitors, drifts their skill and replaces the
// ones who retire.
package lifecycle

import (
	"fmt"
	"math/rand"

	"github.com/okian/sportlife/internal/domain/model"
	"github.com/okian/sportlife/pkg/metrics"
)

// Rules are the tunable constants of a career.
type Rules struct {
	YoungAge     int
	YoungDelta   int
	DeclineAge   int
	DeclineDelta int
	Walk         int

	OffsetStep   int
	BoostChance  float64
	BoostSize    int
	InjuryChance float64
	InjurySize   int

	Floor   int
	Ceiling int // 0 disables the soft ceiling

	RetireAge     int
	RetireRanking int

	InitialAgeMin   int
	InitialAgeMax   int
	InitialSkillMin int
	InitialSkillMax int

	EntryAgeMin         int
	EntryAgeMax         int
	ReplacementSkillMin int
	ReplacementSkillMax int
}

// DefaultRules returns the built-in career constants.
func DefaultRules() Rules {
	return Rules{
		YoungAge:            24,
		YoungDelta:          30,
		DeclineAge:          30,
		DeclineDelta:        40,
		Walk:                25,
		OffsetStep:          100,
		BoostChance:         0.01,
		BoostSize:           600,
		InjuryChance:        0.02,
		InjurySize:          500,
		Floor:               100,
		RetireAge:           35,
		RetireRanking:       70,
		InitialAgeMin:       17,
		InitialAgeMax:       34,
		InitialSkillMin:     200,
		InitialSkillMax:     900,
		EntryAgeMin:         17,
		EntryAgeMax:         19,
		ReplacementSkillMin: 200,
		ReplacementSkillMax: 600,
	}
}

// IdentitySource hands out fresh identities and takes back names of
// competitors who leave.
type IdentitySource interface {
	Next() (model.Identity, error)
	Release(name string)
}

// Notice describes a skill event or a retirement.
type Notice struct {
	Kind       model.NoticeKind
	Competitor *model.Competitor
	Amount     int
	// Successor is set for retirements.
	Successor string
}

// Option configures a Manager.
type Option func(*Manager)

// WithRules replaces the career constants.
func WithRules(r Rules) Option {
	return func(m *Manager) { m.rules = r }
}

// WithRand shares a random source.
func WithRand(rng *rand.Rand) Option {
	return func(m *Manager) {
		if rng != nil {
			m.rng = rng
		}
	}
}

// Manager applies the per-season lifecycle to a pool.
type Manager struct {
	rules      Rules
	rng        *rand.Rand
	identities IdentitySource
}

// NewManager creates a lifecycle manager drawing replacements from ids.
func NewManager(ids IdentitySource, opts ...Option) *Manager {
	m := &Manager{
		rules:      DefaultRules(),
		rng:        rand.New(rand.NewSource(1)), //nolint:gosec // simulation randomness
		identities: ids,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Rules returns the active career constants.
func (m *Manager) Rules() Rules { return m.rules }

// Populate creates a starting pool of n competitors ranked in creation order.
func (m *Manager) Populate(n, season int) ([]*model.Competitor, error) {
	pool := make([]*model.Competitor, 0, n)
	for i := 0; i < n; i++ {
		id, err := m.identities.Next()
		if err != nil {
			return nil, fmt.Errorf("populate competitor %d: %w", i, err)
		}
		id.Skill = m.between(m.rules.InitialSkillMin, m.rules.InitialSkillMax) + id.Bonus
		id.Age = m.between(m.rules.InitialAgeMin, m.rules.InitialAgeMax)

		c := &model.Competitor{}
		c.Reset(id, season)
		c.Ranking = i + 1
		pool = append(pool, c)
	}
	metrics.UpdatePoolSize(len(pool))
	return pool, nil
}

// UpdateSkill applies one season of drift to every competitor: the age
// band delta and a random walk, one step of unwinding the pending offset,
// then a chance of a boost or an injury. Skill never ends below the floor.
func (m *Manager) UpdateSkill(pool []*model.Competitor) []Notice {
	r := m.rules
	var notices []Notice
	for _, c := range pool {
		switch {
		case c.Age < r.YoungAge:
			c.Skill += r.YoungDelta
		case c.Age > r.DeclineAge:
			c.Skill -= r.DeclineDelta
		}
		if r.Walk > 0 {
			c.Skill += m.rng.Intn(2*r.Walk+1) - r.Walk
		}

		if c.SkillOffset != 0 && r.OffsetStep > 0 {
			step := min(r.OffsetStep, abs(c.SkillOffset))
			if c.SkillOffset < 0 {
				step = -step
			}
			c.Skill += step
			c.SkillOffset -= step
		}

		// Boost and injury are rolled independently; both can land in one pass.
		if r.BoostChance > 0 && m.rng.Float64() < r.BoostChance {
			c.Skill += r.BoostSize
			c.SkillOffset -= r.BoostSize
			notices = append(notices, Notice{Kind: model.NoticeBoost, Competitor: c, Amount: r.BoostSize})
			metrics.RecordSkillEvent(string(model.NoticeBoost))
		}
		if r.InjuryChance > 0 && m.rng.Float64() < r.InjuryChance {
			// An injury never takes skill below the floor, and the offset
			// only pays back what was taken.
			drop := max(0, min(r.InjurySize, c.Skill-r.Floor))
			c.Skill -= drop
			c.SkillOffset += drop
			notices = append(notices, Notice{Kind: model.NoticeInjury, Competitor: c, Amount: drop})
			metrics.RecordSkillEvent(string(model.NoticeInjury))
		}

		if r.Ceiling > 0 && c.Skill > r.Ceiling {
			c.Skill = r.Ceiling + (c.Skill-r.Ceiling)/2
		}
		if c.Skill < r.Floor {
			c.Skill = r.Floor
		}
	}
	return notices
}

// AddAge ages every competitor by a season. Anyone ranked worse than the
// retirement ranking and older than the retirement age is snapshotted into
// the returned records and replaced in the same slot by a newcomer, so the
// pool size never changes.
func (m *Manager) AddAge(pool []*model.Competitor, season int) ([]model.Retired, []Notice, error) {
	r := m.rules
	var retired []model.Retired
	var notices []Notice
	for _, c := range pool {
		c.Age++
		if c.Ranking <= r.RetireRanking || c.Age <= r.RetireAge {
			continue
		}

		id, err := m.identities.Next()
		if err != nil {
			return retired, notices, fmt.Errorf("replace %s: %w", c.Name, err)
		}
		record := c.Retire(season)
		retired = append(retired, record)
		m.identities.Release(c.Name)

		id.Skill = m.between(r.ReplacementSkillMin, r.ReplacementSkillMax) + id.Bonus
		id.Age = m.between(r.EntryAgeMin, r.EntryAgeMax)
		c.Reset(id, season)
		c.Ranking = len(pool)

		notices = append(notices, Notice{Kind: model.NoticeRetirement, Competitor: &record.Competitor, Successor: c.Name})
		metrics.RecordRetirement()
	}
	return retired, notices, nil
}

// between returns a uniform value in [lo, hi].
func (m *Manager) between(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + m.rng.Intn(hi-lo+1)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
