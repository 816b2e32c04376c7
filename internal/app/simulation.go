// Package app runs seasons: it wires the bracket, standings and lifecycle
// engines to a single random source and reports progress as display events.
package app

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/sportlife/internal/adapters/input"
	"github.com/okian/sportlife/internal/adapters/roster"
	"github.com/okian/sportlife/internal/config"
	"github.com/okian/sportlife/internal/domain/bracket"
	"github.com/okian/sportlife/internal/domain/identity"
	"github.com/okian/sportlife/internal/domain/lifecycle"
	"github.com/okian/sportlife/internal/domain/match"
	"github.com/okian/sportlife/internal/domain/model"
	"github.com/okian/sportlife/internal/domain/standings"
	"github.com/okian/sportlife/pkg/logger"
	"github.com/okian/sportlife/pkg/metrics"
)

// Emitter accepts display events. Progress events go through Enqueue and
// may be dropped; everything else goes through Publish.
type Emitter interface {
	Enqueue(ctx context.Context, e model.Event) bool
	Publish(ctx context.Context, e model.Event) error
}

type discard struct{}

func (discard) Enqueue(context.Context, model.Event) bool  { return true }
func (discard) Publish(context.Context, model.Event) error { return nil }

// TournamentSummary describes one finished tournament.
type TournamentSummary struct {
	Format        model.Format
	Label         string
	Purse         int64
	Paid          int64
	ChampionID    string
	ChampionName  string
	ChampionSkill int
	RunnerUpName  string
}

// SeasonSummary describes one finished season. A resumed season lists only
// the tournaments played after Resumed earlier ones.
type SeasonSummary struct {
	Season      int
	Resumed     int
	Tournaments []TournamentSummary
	Retired     []model.Retired
	Notices     int
}

// Simulation owns the pool and plays it season by season. AdvanceSeason,
// Run, Restore and Shutdown must be called from one goroutine; Stop, Halt
// and the read accessors are safe from any goroutine.
type Simulation struct {
	cfg      *config.Config
	schedule []model.Format
	rng      *rand.Rand
	logger   logger.Logger

	ids       *identity.Generator
	life      *lifecycle.Manager
	scheduler *bracket.Scheduler
	engine    *standings.Engine

	events    Emitter
	input     input.Source
	publisher standings.Publisher
	roster    roster.Store
	pacer     *pacer

	// pool is only touched by the simulation goroutine.
	pool    []*model.Competitor
	season  int
	current model.Format

	mu     sync.RWMutex
	played int
	// progress counts the finished tournaments of the season in play.
	progress int
	retired  []model.Retired
	records  []model.SeasonRecord
	leader   string

	stop    atomic.Bool
	haltMu  sync.Mutex
	haltErr error
}

// NewSimulation validates cfg, builds and validates the program of every
// scheduled format and populates a fresh pool.
func NewSimulation(cfg *config.Config, opts ...Option) (*Simulation, error) {
	if cfg == nil {
		cfg = config.New()
	}
	if err := cfg.Validate(context.Background()); err != nil {
		return nil, err
	}
	schedule, err := cfg.ScheduleFormats()
	if err != nil {
		return nil, err
	}
	culture, err := identity.ParseCulture(cfg.NameCulture)
	if err != nil {
		return nil, fmt.Errorf("%w: name_culture: %w", config.ErrInvalidConfig, err)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	s := &Simulation{
		cfg:      cfg,
		schedule: schedule,
		rng:      rand.New(rand.NewSource(seed)), //nolint:gosec // simulation randomness
		logger:   logger.Nop(),
		events:   discard{},
		input:    input.None{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.Named("simulation")
	s.pacer = &pacer{source: s.input, quit: s.Stop, stopped: s.stop.Load, halt: s.Halt}

	s.ids = identity.NewGenerator(identity.WithCulture(culture), identity.WithRand(s.rng))
	s.life = lifecycle.NewManager(s.ids, lifecycle.WithRules(careerRules(cfg)), lifecycle.WithRand(s.rng))

	resolver := match.NewRandomResolver(match.WithRand(s.rng), match.WithObserver(s.onPoint))
	executor := bracket.NewExecutor(resolver, bracket.WithRand(s.rng), bracket.WithMatchHook(s.onMatch))
	s.scheduler, err = bracket.NewScheduler(executor, cfg.PoolSize,
		bracket.WithFormats(distinct(schedule)...),
		bracket.WithStop(s.stop.Load),
		bracket.WithRoundHook(s.onRound),
	)
	if err != nil {
		return nil, fmt.Errorf("build programs: %w", err)
	}

	engineOpts := []standings.Option{standings.WithHistoryCapacity(cfg.HistoryCapacity)}
	for _, f := range model.Formats {
		engineOpts = append(engineOpts, standings.WithFormatCapacity(f, cfg.Format(f).HistoryCapacity))
	}
	if s.publisher != nil {
		engineOpts = append(engineOpts, standings.WithPublisher(s.publisher))
	}
	s.engine = standings.NewEngine(engineOpts...)

	s.pool, err = s.life.Populate(cfg.PoolSize, 1)
	if err != nil {
		return nil, fmt.Errorf("populate: %w", err)
	}
	s.leader = s.pool[0].Name
	return s, nil
}

func careerRules(cfg *config.Config) lifecycle.Rules {
	r := lifecycle.DefaultRules()
	r.YoungAge = cfg.YoungAge
	r.YoungDelta = cfg.YoungDelta
	r.DeclineAge = cfg.DeclineAge
	r.DeclineDelta = cfg.DeclineDelta
	r.Walk = cfg.SkillWalk
	r.OffsetStep = cfg.OffsetStep
	r.BoostChance = cfg.BoostChance
	r.BoostSize = cfg.BoostSize
	r.InjuryChance = cfg.InjuryChance
	r.InjurySize = cfg.InjurySize
	r.Floor = cfg.SkillFloor
	r.Ceiling = cfg.SkillCeiling
	r.RetireAge = cfg.RetireAge
	r.RetireRanking = cfg.RetireRanking
	r.InitialAgeMin = cfg.EntryAgeMin
	r.InitialAgeMax = cfg.InitialAgeMax
	r.InitialSkillMin = cfg.InitialSkillMin
	r.InitialSkillMax = cfg.InitialSkillMax
	r.EntryAgeMin = cfg.EntryAgeMin
	r.EntryAgeMax = cfg.EntryAgeMax
	r.ReplacementSkillMin = cfg.ReplacementSkillMin
	r.ReplacementSkillMax = cfg.ReplacementSkillMax
	return r
}

func distinct(formats []model.Format) []model.Format {
	var out []model.Format
	for _, f := range formats {
		if !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	return out
}

// Restore replaces the fresh pool with the saved roster, if there is one.
func (s *Simulation) Restore(ctx context.Context) (bool, error) {
	if s.roster == nil {
		return false, nil
	}
	saved, err := s.roster.Load(ctx)
	if errors.Is(err, roster.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("restore roster: %w", err)
	}
	if len(saved.Active) != len(s.pool) {
		return false, fmt.Errorf("%w: saved %d, configured %d", ErrRosterMismatch, len(saved.Active), len(s.pool))
	}
	if saved.Progress < 0 || saved.Progress > len(s.schedule) {
		return false, fmt.Errorf("%w: saved progress %d, schedule of %d", ErrRosterMismatch, saved.Progress, len(s.schedule))
	}

	for _, c := range s.pool {
		s.ids.Release(c.Name)
	}
	for _, c := range saved.Active {
		if !s.ids.Claim(c.Name) {
			s.logger.Warn(ctx, "duplicate name in saved roster", logger.String("name", c.Name))
		}
	}
	s.pool = saved.Active
	standings.Rank(s.pool)

	s.mu.Lock()
	s.season = saved.Season
	s.progress = saved.Progress
	s.retired = saved.Retired
	s.records = saved.Records
	s.leader = s.pool[0].Name
	s.mu.Unlock()

	s.publishRanking(ctx)
	s.logger.Info(ctx, "roster restored",
		logger.Int("season", saved.Season),
		logger.Int("progress", saved.Progress),
		logger.Int("retired", len(saved.Retired)),
		logger.Int("records", len(saved.Records)),
	)
	return true, nil
}

// Run plays seasons until the configured count is reached, a quit is
// requested or ctx ends. Those exits return nil; a halt returns its cause.
func (s *Simulation) Run(ctx context.Context) error {
	start := s.Season()
	s.logger.Info(ctx, "simulation started",
		logger.Int("season", start),
		logger.Int("seasons", s.cfg.Seasons),
		logger.Int("pool", len(s.pool)),
	)
	for s.cfg.Seasons == 0 || s.Season()-start < s.cfg.Seasons {
		summary, err := s.AdvanceSeason(ctx)
		switch {
		case err == nil:
			s.logger.Debug(ctx, "season finished",
				logger.Int("season", summary.Season),
				logger.Int("retired", len(summary.Retired)),
			)
		case errors.Is(err, ErrStopped), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			s.logger.Info(ctx, "simulation stopped", logger.Int("season", s.Season()))
			return nil
		case errors.Is(err, ErrHalted):
			s.events.Enqueue(ctx, model.Event{Kind: model.EventNotice, Season: s.Season(), Notice: model.NoticeHalted, Label: err.Error(), At: time.Now()})
			s.logger.Error(ctx, "simulation halted", logger.Error(err))
			return err
		default:
			return err
		}
	}
	s.logger.Info(ctx, "simulation finished", logger.Int("season", s.Season()))
	return nil
}

// AdvanceSeason plays every scheduled tournament, then drifts skills, ages
// the pool and retires whoever qualifies. An interrupted season returns
// ErrStopped; tournaments finished before the interruption keep their results
// and the next call resumes after the last of them.
func (s *Simulation) AdvanceSeason(ctx context.Context) (SeasonSummary, error) {
	if err := s.ready(ctx); err != nil {
		return SeasonSummary{}, err
	}
	season := s.Season() + 1
	s.mu.RLock()
	done := s.progress
	s.mu.RUnlock()
	summary := SeasonSummary{Season: season, Resumed: done}

	if done == 0 {
		for _, c := range s.pool {
			c.SeasonPrize = 0
		}
	}
	metrics.UpdateSeason(season, s.basePurse(season))
	s.publish(ctx, model.Event{Kind: model.EventSeasonStarted, Season: season})

	counts := map[model.Format]int{}
	for i, f := range s.schedule {
		counts[f]++
		if i < done {
			continue
		}
		if err := s.ready(ctx); err != nil {
			return summary, err
		}
		label := fmt.Sprintf("#%d", counts[f])
		t, err := s.playTournament(ctx, season, f, label)
		if errors.Is(err, bracket.ErrInterrupted) {
			return summary, fmt.Errorf("%w: %w", ErrStopped, err)
		}
		if err != nil {
			return summary, fmt.Errorf("season %d %s %s: %w", season, f, label, err)
		}
		summary.Tournaments = append(summary.Tournaments, t)
	}

	notices := s.life.UpdateSkill(s.pool)
	retired, aging, err := s.life.AddAge(s.pool, season)
	if err != nil {
		return summary, fmt.Errorf("season %d lifecycle: %w", season, err)
	}
	notices = append(notices, aging...)
	standings.Rank(s.pool)
	s.publishRanking(ctx)

	s.mu.Lock()
	s.season = season
	s.progress = 0
	s.retired = append(s.retired, retired...)
	s.leader = s.pool[0].Name
	s.mu.Unlock()

	for _, n := range notices {
		e := model.Event{Kind: model.EventNotice, Season: season, Notice: n.Kind, Amount: n.Amount, Player1: model.Side(n.Competitor, 0)}
		if n.Successor != "" {
			e.Player2 = &model.MatchSide{Name: n.Successor}
		}
		s.publish(ctx, e)
	}
	s.publish(ctx, model.Event{Kind: model.EventStandings, Season: season, Table: s.table()})
	s.publish(ctx, model.Event{Kind: model.EventSeasonFinished, Season: season})
	metrics.RecordSeason()

	summary.Retired = retired
	summary.Notices = len(notices)
	return summary, nil
}

func (s *Simulation) playTournament(ctx context.Context, season int, f model.Format, label string) (TournamentSummary, error) {
	purse := s.purse(season, f)
	s.current = f
	s.pacer.fast = false
	s.publish(ctx, model.Event{Kind: model.EventTournamentStarted, Season: season, Format: f.String(), Label: label, Purse: purse})

	start := time.Now()
	res, err := s.scheduler.Run(ctx, f, s.pool)
	if err != nil {
		return TournamentSummary{}, err
	}
	awards, err := s.engine.Apply(ctx, s.pool, res, purse, season)
	if errors.Is(err, standings.ErrPublish) {
		s.Halt(err)
	} else if err != nil {
		return TournamentSummary{}, err
	}
	if res.Champion == nil || res.RunnerUp == nil {
		return TournamentSummary{}, bracket.ErrNoChampion
	}
	metrics.RecordTournament(f.String(), float64(time.Since(start).Milliseconds()), res.Champion.Skill)

	t := TournamentSummary{
		Format:        f,
		Label:         label,
		Purse:         purse,
		ChampionID:    res.Champion.ID,
		ChampionName:  res.Champion.Name,
		ChampionSkill: res.Champion.Skill,
		RunnerUpName:  res.RunnerUp.Name,
	}
	for _, a := range awards {
		t.Paid += a.Prize
	}

	s.mu.Lock()
	s.played++
	s.progress++
	s.records = append(s.records, model.SeasonRecord{
		Season:       season,
		Format:       f.String(),
		ChampionID:   t.ChampionID,
		ChampionName: t.ChampionName,
		RunnerUpName: t.RunnerUpName,
		Purse:        purse,
	})
	s.leader = s.pool[0].Name
	s.mu.Unlock()

	s.publish(ctx, model.Event{
		Kind:     model.EventTournamentFinished,
		Season:   season,
		Format:   f.String(),
		Label:    label,
		Purse:    purse,
		Champion: model.Side(res.Champion, 0),
		RunnerUp: model.Side(res.RunnerUp, 0),
	})
	s.publish(ctx, model.Event{Kind: model.EventStandings, Season: season, Format: f.String(), Table: s.table()})
	s.logger.Debug(ctx, "tournament finished",
		logger.Int("season", season),
		logger.String("format", f.String()),
		logger.String("champion", t.ChampionName),
		logger.Int64("paid", t.Paid),
	)
	s.pacer.wait(ctx, s.cfg.TournamentDelay())
	return t, nil
}

func (s *Simulation) onRound(ctx context.Context, f model.Format, _ int, in model.RoundInstruction) {
	s.publish(ctx, model.Event{Kind: model.EventRoundStarted, Season: s.season + 1, Format: f.String(), Label: in.Label})
}

func (s *Simulation) onPoint(ctx context.Context, p match.Point) {
	if !s.pacer.fast {
		s.events.Enqueue(ctx, model.Event{
			Kind:    model.EventMatchProgress,
			Season:  s.season + 1,
			Format:  s.current.String(),
			Player1: model.Side(p.Home, p.HomeScore),
			Player2: model.Side(p.Away, p.AwayScore),
			At:      time.Now(),
		})
	}
	s.pacer.poll(ctx)
	s.pacer.wait(ctx, s.cfg.PointDelay())
}

func (s *Simulation) onMatch(ctx context.Context, in model.RoundInstruction, out match.Outcome) {
	s.publish(ctx, model.Event{
		Kind:    model.EventMatchResult,
		Season:  s.season + 1,
		Format:  s.current.String(),
		Label:   in.Label,
		Player1: model.Side(out.Winner, out.WinnerScore),
		Player2: model.Side(out.Loser, out.LoserScore),
	})
	s.pacer.wait(ctx, s.cfg.MatchDelay())
}

// publish sends a boundary event. A display that cannot take it halts the
// simulation after the current tournament.
func (s *Simulation) publish(ctx context.Context, e model.Event) { //nolint:gocritic // hugeParam
	if e.At.IsZero() {
		e.At = time.Now()
	}
	if err := s.events.Publish(ctx, e); err != nil && ctx.Err() == nil {
		s.Halt(fmt.Errorf("publish %s: %w", e.Kind, err))
	}
}

func (s *Simulation) publishRanking(ctx context.Context) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, s.pool); err != nil {
		s.Halt(fmt.Errorf("%w: %w", standings.ErrPublish, err))
	}
}

func (s *Simulation) table() []model.StandingRow {
	rows := make([]model.StandingRow, len(s.pool))
	for i, c := range s.pool {
		rows[i] = model.Row(c)
	}
	return rows
}

// basePurse is the purse before the format weight.
func (s *Simulation) basePurse(season int) int64 {
	return int64(math.Round(float64(s.cfg.PurseStart) * math.Pow(s.cfg.PurseGrowth, float64(season-1))))
}

func (s *Simulation) purse(season int, f model.Format) int64 {
	return int64(math.Round(float64(s.basePurse(season)) * s.cfg.Format(f).PurseWeight))
}

func (s *Simulation) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.stop.Load() {
		return ErrStopped
	}
	if err := s.HaltErr(); err != nil {
		return fmt.Errorf("%w: %w", ErrHalted, err)
	}
	return nil
}

// Stop asks the simulation to quit at the next instruction boundary.
func (s *Simulation) Stop() {
	s.stop.Store(true)
}

// Stopped reports whether Stop was called.
func (s *Simulation) Stopped() bool { return s.stop.Load() }

// Halt records a collaborator failure. The running tournament finishes and
// the simulation stops before the next one. Only the first error is kept.
func (s *Simulation) Halt(err error) {
	if err == nil {
		return
	}
	s.haltMu.Lock()
	defer s.haltMu.Unlock()
	if s.haltErr == nil {
		s.haltErr = err
		metrics.RecordError("simulation")
	}
}

// HaltErr returns the error passed to Halt, if any.
func (s *Simulation) HaltErr() error {
	s.haltMu.Lock()
	defer s.haltMu.Unlock()
	return s.haltErr
}

// Shutdown stops the simulation and saves the roster when one is configured.
func (s *Simulation) Shutdown(ctx context.Context) error {
	s.Stop()
	if s.roster == nil {
		return nil
	}

	active := make([]*model.Competitor, len(s.pool))
	for i, c := range s.pool {
		active[i] = c.Clone()
	}
	s.mu.RLock()
	r := roster.Roster{
		Season:   s.season,
		Progress: s.progress,
		Active:   active,
		Retired:  slices.Clone(s.retired),
		Records:  slices.Clone(s.records),
	}
	s.mu.RUnlock()

	if err := s.roster.Save(ctx, r); err != nil {
		return fmt.Errorf("save roster: %w", err)
	}
	s.logger.Info(ctx, "roster saved", logger.Int("season", r.Season), logger.Int("progress", r.Progress))
	return nil
}

// Season returns the last completed season.
func (s *Simulation) Season() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.season
}

// Pool returns copies of the active competitors, best first. It must not
// race with AdvanceSeason.
func (s *Simulation) Pool() []*model.Competitor {
	out := make([]*model.Competitor, len(s.pool))
	for i, c := range s.pool {
		out[i] = c.Clone()
	}
	return out
}

// Retired returns every retired career so far, oldest first.
func (s *Simulation) Retired() []model.Retired {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.retired)
}

// Champions returns the result of every finished tournament, oldest first.
func (s *Simulation) Champions() []model.SeasonRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.records)
}

// GetStats returns simulation statistics for monitoring.
func (s *Simulation) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	schedule := make([]string, len(s.schedule))
	for i, f := range s.schedule {
		schedule[i] = f.String()
	}
	stats := map[string]any{
		"season":      s.season,
		"poolSize":    s.cfg.PoolSize,
		"schedule":    schedule,
		"tournaments": s.played,
		"progress":    s.progress,
		"retired":     len(s.retired),
		"leader":      s.leader,
		"stopped":     s.stop.Load(),
		"halted":      s.HaltErr() != nil,
	}
	return stats
}
