package app_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/okian/sportlife/internal/adapters/input"
	"github.com/okian/sportlife/internal/app"
	"github.com/okian/sportlife/internal/config"
	"github.com/okian/sportlife/internal/domain/bracket"
	"github.com/okian/sportlife/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func testConfig() *config.Config {
	cfg := config.New()
	cfg.Seed = 7
	cfg.PoolSize = 64
	cfg.Seasons = 2
	cfg.Interactive = false
	cfg.PointDelayMS = 0
	cfg.MatchDelayMS = 0
	cfg.TournamentDelayMS = 0
	return cfg
}

type recorder struct {
	mu     sync.Mutex
	events []model.Event
	// failOn makes Publish reject events of this kind.
	failOn model.EventKind
}

func (r *recorder) Enqueue(_ context.Context, e model.Event) bool { //nolint:gocritic // hugeParam
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return true
}

func (r *recorder) Publish(_ context.Context, e model.Event) error { //nolint:gocritic // hugeParam
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failOn != "" && e.Kind == r.failOn {
		return errors.New("display gone")
	}
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) kinds(kind model.EventKind) []model.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Event
	for _, e := range r.events {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

type countingPublisher struct {
	calls int
	size  int
	err   error
}

func (p *countingPublisher) Publish(_ context.Context, ranked []*model.Competitor) error {
	p.calls++
	p.size = len(ranked)
	return p.err
}

func TestNewSimulation(t *testing.T) {
	Convey("Given a valid configuration", t, func() {
		sim, err := app.NewSimulation(testConfig())
		So(err, ShouldBeNil)

		Convey("The pool is populated and ranked in creation order", func() {
			pool := sim.Pool()
			So(pool, ShouldHaveLength, 64)
			names := map[string]bool{}
			for i, c := range pool {
				So(c.Ranking, ShouldEqual, i+1)
				So(c.Skill, ShouldBeGreaterThanOrEqualTo, 100)
				names[c.Name] = true
			}
			So(names, ShouldHaveLength, 64)
			So(sim.Season(), ShouldEqual, 0)
		})
	})

	Convey("Given configurations that cannot run", t, func() {
		cfg := testConfig()
		cfg.PoolSize = 10
		_, err := app.NewSimulation(cfg)
		So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)

		cfg = testConfig()
		cfg.PoolSize = 40
		_, err = app.NewSimulation(cfg)
		So(errors.Is(err, bracket.ErrPoolTooSmall), ShouldBeTrue)

		cfg = testConfig()
		cfg.NameCulture = "klingon"
		_, err = app.NewSimulation(cfg)
		So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
	})
}

func TestSimulation_AdvanceSeason(t *testing.T) {
	Convey("Given a simulation with a recording display", t, func() {
		rec := &recorder{}
		pub := &countingPublisher{}
		sim, err := app.NewSimulation(testConfig(), app.WithEmitter(rec), app.WithPublisher(pub))
		So(err, ShouldBeNil)
		ctx := context.Background()

		summary, err := sim.AdvanceSeason(ctx)
		So(err, ShouldBeNil)

		Convey("Every scheduled tournament is played once", func() {
			So(summary.Season, ShouldEqual, 1)
			So(sim.Season(), ShouldEqual, 1)
			So(summary.Tournaments, ShouldHaveLength, 4)
			So(summary.Tournaments[0].Format, ShouldEqual, model.FormatOpen)
			So(summary.Tournaments[0].Label, ShouldEqual, "#1")
			So(summary.Tournaments[2].Label, ShouldEqual, "#2")
			So(summary.Tournaments[3].Format, ShouldEqual, model.FormatChampionship)
			for _, tr := range summary.Tournaments {
				So(tr.ChampionName, ShouldNotBeEmpty)
				So(tr.ChampionName, ShouldNotEqual, tr.RunnerUpName)
				So(tr.Paid, ShouldBeGreaterThan, 0)
				So(tr.Paid, ShouldBeLessThanOrEqualTo, tr.Purse)
			}
			So(sim.Champions(), ShouldHaveLength, 4)
		})

		Convey("Purses follow the format weights", func() {
			So(summary.Tournaments[0].Purse, ShouldEqual, 50_000)
			So(summary.Tournaments[1].Purse, ShouldEqual, 100_000)
			So(summary.Tournaments[3].Purse, ShouldEqual, 200_000)
		})

		Convey("The pool keeps its size and its scoring invariants", func() {
			pool := sim.Pool()
			So(pool, ShouldHaveLength, 64)
			for i, c := range pool {
				So(c.Ranking, ShouldEqual, i+1)
				So(len(c.History), ShouldBeLessThanOrEqualTo, 8)
				total := 0
				for _, p := range c.History {
					total += p
				}
				So(c.Points, ShouldEqual, total)
				if i > 0 {
					So(pool[i-1].Points, ShouldBeGreaterThanOrEqualTo, c.Points)
				}
			}
		})

		Convey("Events bracket the season and every tournament", func() {
			So(rec.kinds(model.EventSeasonStarted), ShouldHaveLength, 1)
			So(rec.kinds(model.EventSeasonFinished), ShouldHaveLength, 1)
			So(rec.kinds(model.EventTournamentStarted), ShouldHaveLength, 4)
			finished := rec.kinds(model.EventTournamentFinished)
			So(finished, ShouldHaveLength, 4)
			for _, e := range finished {
				So(e.Champion, ShouldNotBeNil)
				So(e.RunnerUp, ShouldNotBeNil)
			}
			So(len(rec.kinds(model.EventMatchResult)), ShouldBeGreaterThan, 4*32)
			So(len(rec.kinds(model.EventMatchProgress)), ShouldBeGreaterThan, 0)
			So(rec.kinds(model.EventStandings), ShouldHaveLength, 5)
		})

		Convey("The publisher sees every ranking pass", func() {
			So(pub.calls, ShouldEqual, 5)
			So(pub.size, ShouldEqual, 64)
		})
	})
}

func TestSimulation_Run(t *testing.T) {
	Convey("Given a simulation configured for three seasons", t, func() {
		cfg := testConfig()
		cfg.Seasons = 3
		cfg.RetireAge = 25
		cfg.RetireRanking = 32
		sim, err := app.NewSimulation(cfg)
		So(err, ShouldBeNil)

		So(sim.Run(context.Background()), ShouldBeNil)

		Convey("All seasons are played and retirees are replaced in place", func() {
			So(sim.Season(), ShouldEqual, 3)
			So(sim.Champions(), ShouldHaveLength, 12)
			So(len(sim.Retired()), ShouldBeGreaterThan, 0)

			pool := sim.Pool()
			So(pool, ShouldHaveLength, 64)
			names := map[string]bool{}
			for _, c := range pool {
				names[c.Name] = true
			}
			So(names, ShouldHaveLength, 64)
			for _, r := range sim.Retired() {
				So(r.Age, ShouldBeGreaterThan, 25)
				So(r.RetiredSeason, ShouldBeBetweenOrEqual, 1, 3)
			}
		})

		Convey("Stats describe the run", func() {
			stats := sim.GetStats()
			So(stats["season"], ShouldEqual, 3)
			So(stats["tournaments"], ShouldEqual, 12)
			So(stats["halted"], ShouldBeFalse)
			So(stats["leader"], ShouldEqual, sim.Pool()[0].Name)
		})
	})

	Convey("Given two simulations with the same seed", t, func() {
		a, err := app.NewSimulation(testConfig())
		So(err, ShouldBeNil)
		b, err := app.NewSimulation(testConfig())
		So(err, ShouldBeNil)
		So(a.Run(context.Background()), ShouldBeNil)
		So(b.Run(context.Background()), ShouldBeNil)

		Convey("They crown the same champions", func() {
			ca, cb := a.Champions(), b.Champions()
			So(ca, ShouldHaveLength, len(cb))
			for i := range ca {
				So(ca[i].ChampionName, ShouldEqual, cb[i].ChampionName)
			}
		})
	})
}

func TestSimulation_Controls(t *testing.T) {
	Convey("Given a quit key on the first point", t, func() {
		keys := input.NewScript('q')
		sim, err := app.NewSimulation(testConfig(), app.WithInput(keys))
		So(err, ShouldBeNil)

		_, err = sim.AdvanceSeason(context.Background())
		So(errors.Is(err, app.ErrStopped), ShouldBeTrue)
		So(errors.Is(err, bracket.ErrInterrupted), ShouldBeTrue)
		So(sim.Stopped(), ShouldBeTrue)
		So(sim.Season(), ShouldEqual, 0)
		So(sim.Champions(), ShouldBeEmpty)

		Convey("Run treats the quit as a clean exit", func() {
			So(sim.Run(context.Background()), ShouldBeNil)
			So(sim.Season(), ShouldEqual, 0)
		})
	})

	Convey("Given a cancelled context", t, func() {
		sim, err := app.NewSimulation(testConfig())
		So(err, ShouldBeNil)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err = sim.AdvanceSeason(ctx)
		So(errors.Is(err, context.Canceled), ShouldBeTrue)
		So(sim.Run(ctx), ShouldBeNil)
	})

	Convey("Given slow pacing and a fast-forward key", t, func() {
		cfg := testConfig()
		cfg.Seasons = 1
		cfg.Schedule = []string{"open"}
		cfg.PointDelayMS = 1000
		cfg.MatchDelayMS = 1000
		cfg.TournamentDelayMS = 1000
		sim, err := app.NewSimulation(cfg, app.WithInput(input.NewScript('f')))
		So(err, ShouldBeNil)

		start := time.Now()
		So(sim.Run(context.Background()), ShouldBeNil)
		So(time.Since(start), ShouldBeLessThan, 5*time.Second)
		So(sim.Season(), ShouldEqual, 1)
	})

	Convey("Given a pause that is released", t, func() {
		cfg := testConfig()
		cfg.Seasons = 1
		cfg.Schedule = []string{"open"}
		keys := input.NewScript('p', 0, 'p')
		sim, err := app.NewSimulation(cfg, app.WithInput(keys))
		So(err, ShouldBeNil)

		So(sim.Run(context.Background()), ShouldBeNil)
		So(sim.Season(), ShouldEqual, 1)
		So(keys.Polls(), ShouldEqual, 3)
	})

	Convey("Given a quit key while paused", t, func() {
		keys := input.NewScript('p', 'q')
		sim, err := app.NewSimulation(testConfig(), app.WithInput(keys))
		So(err, ShouldBeNil)
		So(sim.Run(context.Background()), ShouldBeNil)
		So(sim.Stopped(), ShouldBeTrue)
		So(sim.Season(), ShouldEqual, 0)
	})
}

func TestSimulation_Halt(t *testing.T) {
	Convey("Given a display that rejects boundary events", t, func() {
		rec := &recorder{failOn: model.EventTournamentFinished}
		sim, err := app.NewSimulation(testConfig(), app.WithEmitter(rec))
		So(err, ShouldBeNil)

		err = sim.Run(context.Background())

		Convey("The current tournament finishes and the run halts", func() {
			So(errors.Is(err, app.ErrHalted), ShouldBeTrue)
			So(sim.HaltErr(), ShouldNotBeNil)
			So(sim.Champions(), ShouldHaveLength, 1)
			So(sim.Season(), ShouldEqual, 0)
			So(sim.GetStats()["halted"], ShouldBeTrue)
		})

		Convey("A halted notice is queued", func() {
			notices := rec.kinds(model.EventNotice)
			So(notices, ShouldNotBeEmpty)
			So(notices[len(notices)-1].Notice, ShouldEqual, model.NoticeHalted)
		})
	})

	Convey("Given a keyboard that breaks during the first tournament", t, func() {
		ttyErr := errors.New("tty gone")
		sim, err := app.NewSimulation(testConfig(), app.WithInput(input.NewScript().Fail(ttyErr)))
		So(err, ShouldBeNil)

		err = sim.Run(context.Background())

		Convey("The tournament finishes and the run halts with the read error", func() {
			So(errors.Is(err, app.ErrHalted), ShouldBeTrue)
			So(errors.Is(err, ttyErr), ShouldBeTrue)
			So(errors.Is(sim.HaltErr(), ttyErr), ShouldBeTrue)
			So(sim.Champions(), ShouldHaveLength, 1)
			So(sim.Season(), ShouldEqual, 0)
		})
	})

	Convey("Given a keyboard that breaks while paused", t, func() {
		ttyErr := errors.New("tty gone")
		keys := input.NewScript('p').Fail(ttyErr)
		sim, err := app.NewSimulation(testConfig(), app.WithInput(keys))
		So(err, ShouldBeNil)

		err = sim.Run(context.Background())
		So(errors.Is(err, ttyErr), ShouldBeTrue)
		So(sim.Champions(), ShouldHaveLength, 1)
	})

	Convey("Given a standings index that fails", t, func() {
		pub := &countingPublisher{err: errors.New("index down")}
		sim, err := app.NewSimulation(testConfig(), app.WithPublisher(pub))
		So(err, ShouldBeNil)

		err = sim.Run(context.Background())
		So(errors.Is(err, app.ErrHalted), ShouldBeTrue)
		So(sim.Champions(), ShouldHaveLength, 1)
	})

	Convey("Only the first halt is kept", t, func() {
		sim, err := app.NewSimulation(testConfig())
		So(err, ShouldBeNil)
		first := errors.New("first")
		sim.Halt(nil)
		So(sim.HaltErr(), ShouldBeNil)
		sim.Halt(first)
		sim.Halt(errors.New("second"))
		So(sim.HaltErr(), ShouldEqual, first)
	})
}
