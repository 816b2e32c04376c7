package bracket

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/okian/sportlife/internal/domain/model"
	"github.com/okian/sportlife/pkg/metrics"
)

// RoundHook is called before every round instruction.
type RoundHook func(ctx context.Context, f model.Format, index int, in model.RoundInstruction)

// Result summarizes a finished tournament.
type Result struct {
	Format   model.Format
	Champion *model.Competitor
	RunnerUp *model.Competitor
	// Placings counts competitors per terminal depth.
	Placings map[int]int
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithFormats limits the programs built to the given formats.
func WithFormats(formats ...model.Format) SchedulerOption {
	return func(s *Scheduler) {
		if len(formats) > 0 {
			s.formats = slices.Clone(formats)
		}
	}
}

// WithTables overrides the points and prize tables of a format.
func WithTables(f model.Format, t Tables) SchedulerOption {
	return func(s *Scheduler) { s.tables[f] = t }
}

// WithRaces overrides the race lengths of a format.
func WithRaces(f model.Format, r Races) SchedulerOption {
	return func(s *Scheduler) { s.races[f] = r }
}

// WithStop installs a stop flag checked before every round instruction.
func WithStop(stop func() bool) SchedulerOption {
	return func(s *Scheduler) { s.stop = stop }
}

// WithRoundHook registers a callback fired before each round instruction.
func WithRoundHook(fn RoundHook) SchedulerOption {
	return func(s *Scheduler) { s.onRound = fn }
}

// Scheduler runs whole tournaments: entry, then every instruction of the
// format's program in order.
type Scheduler struct {
	executor *Executor
	poolSize int
	formats  []model.Format
	tables   map[model.Format]Tables
	races    map[model.Format]Races
	programs map[model.Format]Program
	stop     func() bool
	onRound  RoundHook
}

// NewScheduler builds and validates the program of every format for a pool
// of poolSize. An invalid program is a construction error.
func NewScheduler(executor *Executor, poolSize int, opts ...SchedulerOption) (*Scheduler, error) {
	s := &Scheduler{
		executor: executor,
		poolSize: poolSize,
		formats:  slices.Clone(model.Formats),
		tables:   map[model.Format]Tables{},
		races:    map[model.Format]Races{},
		programs: map[model.Format]Program{},
	}
	for _, f := range model.Formats {
		s.tables[f] = DefaultTables(f)
		s.races[f] = DefaultRaces(f)
	}
	for _, opt := range opts {
		opt(s)
	}

	for _, f := range s.formats {
		p, err := Build(f, poolSize, s.races[f])
		if err != nil {
			return nil, err
		}
		if err := Validate(p, EntryCounts(f, poolSize), s.tables[f]); err != nil {
			return nil, fmt.Errorf("%s program: %w", f, err)
		}
		s.programs[f] = p
	}
	return s, nil
}

// Program returns the validated program of a format.
func (s *Scheduler) Program(f model.Format) (Program, bool) {
	p, ok := s.programs[f]
	return p, ok
}

// Tables returns the points and prize tables of a format.
func (s *Scheduler) Tables(f model.Format) Tables {
	return s.tables[f]
}

// Run plays one tournament of format f over pool. The stop flag and ctx are
// checked at every instruction boundary; an interrupted tournament returns
// ErrInterrupted and its results must be discarded.
func (s *Scheduler) Run(ctx context.Context, f model.Format, pool []*model.Competitor) (Result, error) {
	p, ok := s.programs[f]
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrUnknownFormat, f)
	}
	if len(pool) == 0 {
		return Result{}, ErrEmptyPool
	}
	if len(pool) != p.PoolSize {
		return Result{}, fmt.Errorf("%w: program for %d, pool has %d", ErrPoolSize, p.PoolSize, len(pool))
	}

	Seed(pool, f)
	for i, in := range p.Rounds {
		if s.interrupted(ctx) {
			return Result{}, fmt.Errorf("%w before %s", ErrInterrupted, in.Label)
		}
		if s.onRound != nil {
			s.onRound(ctx, f, i, in)
		}
		if err := s.executor.Execute(ctx, pool, in); err != nil {
			return Result{}, fmt.Errorf("%s round %d: %w", f, i, err)
		}
		metrics.RecordRound()
	}

	res := Result{Format: f, Placings: map[int]int{}}
	for _, c := range pool {
		depth, ok := c.Tag.Depth()
		if !ok {
			c.Tag = model.Active(0)
			continue
		}
		res.Placings[depth]++
		switch c.Tag {
		case model.Champion:
			res.Champion = c
		case model.RunnerUp:
			res.RunnerUp = c
		}
	}
	return res, nil
}

func (s *Scheduler) interrupted(ctx context.Context) bool {
	if ctx.Err() != nil {
		return true
	}
	return s.stop != nil && s.stop()
}

// Seed resets every tag and applies the entry rules of f: competitors are
// ordered by points (stable, highest first); seeded formats give the top 16
// slots 1..16 and the championship gives the next 16 the tier-2 slot.
// Everyone else enters unseeded.
func Seed(pool []*model.Competitor, f model.Format) {
	order := slices.Clone(pool)
	slices.SortStableFunc(order, func(a, b *model.Competitor) int {
		return cmp.Compare(b.Points, a.Points)
	})

	for i, c := range order {
		switch {
		case f == model.FormatOpen:
			c.Tag = model.Active(SlotUnseeded)
		case i < SeedCount:
			c.Tag = model.Active(i + 1)
		case f == model.FormatChampionship && i < SeedCount+tier2Size:
			c.Tag = model.Active(SlotTier2)
		default:
			c.Tag = model.Active(SlotUnseeded)
		}
	}
}
