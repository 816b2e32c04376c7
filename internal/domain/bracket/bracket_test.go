package bracket_test

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/okian/sportlife/internal/domain/bracket"
	"github.com/okian/sportlife/internal/domain/match"
	"github.com/okian/sportlife/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func newPool(n int, rng *rand.Rand) []*model.Competitor {
	pool := make([]*model.Competitor, n)
	for i := range pool {
		pool[i] = &model.Competitor{
			ID:      fmt.Sprintf("c%03d", i),
			Name:    fmt.Sprintf("Player %d", i),
			Skill:   100 + rng.Intn(900),
			Ranking: i + 1,
			Points:  n - i,
		}
	}
	return pool
}

func newExecutor(seed int64, opts ...bracket.ExecutorOption) *bracket.Executor {
	rng := rand.New(rand.NewSource(seed))
	resolver := match.NewRandomResolver(match.WithRand(rng))
	return bracket.NewExecutor(resolver, append([]bracket.ExecutorOption{bracket.WithRand(rng)}, opts...)...)
}

func TestExecutor_Execute(t *testing.T) {
	Convey("Given 16 competitors on slot 1", t, func() {
		ctx := context.Background()
		rng := rand.New(rand.NewSource(3))
		pool := newPool(16, rng)
		for _, c := range pool {
			c.Tag = model.Active(1)
		}

		var outcomes []match.Outcome
		exec := newExecutor(5, bracket.WithMatchHook(func(_ context.Context, _ model.RoundInstruction, out match.Outcome) {
			outcomes = append(outcomes, out)
		}))
		in := model.RoundInstruction{
			Label: "Round", Home: model.Active(1), Away: model.Active(1),
			Win: model.Active(2), Lose: model.Eliminated(3), Matches: 8, RaceTo: 3,
		}

		Convey("When eight matches are played", func() {
			err := exec.Execute(ctx, pool, in)

			Convey("Then half win and half lose", func() {
				So(err, ShouldBeNil)
				So(bracket.Population(pool, model.Active(2)), ShouldEqual, 8)
				So(bracket.Population(pool, model.Eliminated(3)), ShouldEqual, 8)
				So(bracket.Population(pool, model.Active(1)), ShouldEqual, 0)
			})

			Convey("Then nobody plays themselves or plays twice", func() {
				So(len(outcomes), ShouldEqual, 8)
				seen := map[string]bool{}
				for _, out := range outcomes {
					So(out.Winner, ShouldNotEqual, out.Loser)
					So(seen[out.Winner.ID], ShouldBeFalse)
					So(seen[out.Loser.ID], ShouldBeFalse)
					seen[out.Winner.ID] = true
					seen[out.Loser.ID] = true
				}
			})
		})

		Convey("When more matches are asked than the population allows", func() {
			in.Matches = 9
			err := exec.Execute(ctx, pool, in)

			Convey("Then it fails instead of spinning", func() {
				So(errors.Is(err, bracket.ErrEmptyPopulation), ShouldBeTrue)
			})
		})

		Convey("When the pool is empty", func() {
			err := exec.Execute(ctx, nil, in)
			So(errors.Is(err, bracket.ErrEmptyPool), ShouldBeTrue)
		})

		Convey("When the instruction is malformed", func() {
			in.RaceTo = 0
			err := exec.Execute(ctx, pool, in)
			So(errors.Is(err, bracket.ErrInvalidRound), ShouldBeTrue)
		})
	})
}

func TestPrograms_Validate(t *testing.T) {
	Convey("Given the built-in formats", t, func() {
		for _, f := range model.Formats {
			for _, size := range []int{48, 64, 100, 128, 200, 256} {
				p, err := bracket.Build(f, size, bracket.DefaultRaces(f))
				So(err, ShouldBeNil)
				So(bracket.Validate(p, bracket.EntryCounts(f, size), bracket.DefaultTables(f)), ShouldBeNil)
			}
		}

		Convey("Small pools are rejected per format", func() {
			_, err := bracket.OpenProgram(31, bracket.DefaultRaces(model.FormatOpen))
			So(errors.Is(err, bracket.ErrPoolTooSmall), ShouldBeTrue)
			_, err = bracket.ChampionshipProgram(47, bracket.DefaultRaces(model.FormatChampionship))
			So(errors.Is(err, bracket.ErrPoolTooSmall), ShouldBeTrue)
			_, err = bracket.SeededProgram(32, bracket.DefaultRaces(model.FormatSeeded))
			So(err, ShouldBeNil)
		})

		Convey("A program without its final has no champion", func() {
			p, _ := bracket.SeededProgram(64, bracket.DefaultRaces(model.FormatSeeded))
			p.Rounds = p.Rounds[:len(p.Rounds)-1]
			err := bracket.Validate(p, bracket.EntryCounts(model.FormatSeeded, 64), bracket.DefaultTables(model.FormatSeeded))
			So(errors.Is(err, bracket.ErrNoChampion), ShouldBeTrue)
		})

		Convey("A program that draws from an empty slot is unreachable", func() {
			p, _ := bracket.SeededProgram(64, bracket.DefaultRaces(model.FormatSeeded))
			p.Rounds = p.Rounds[1:]
			err := bracket.Validate(p, bracket.EntryCounts(model.FormatSeeded, 64), bracket.DefaultTables(model.FormatSeeded))
			So(errors.Is(err, bracket.ErrUnreachable), ShouldBeTrue)
		})

		Convey("Short tables are caught", func() {
			p, _ := bracket.OpenProgram(128, bracket.DefaultRaces(model.FormatOpen))
			tables := bracket.Tables{Points: []int{10, 5, 2}, Prize: []int{100, 50, 20}}
			err := bracket.Validate(p, bracket.EntryCounts(model.FormatOpen, 128), tables)
			So(errors.Is(err, bracket.ErrMissingTableEntry), ShouldBeTrue)
		})

		Convey("The scheduler refuses to start with an invalid program", func() {
			_, err := bracket.NewScheduler(newExecutor(1), 128,
				bracket.WithTables(model.FormatOpen, bracket.Tables{Points: []int{1}, Prize: []int{1}}))
			So(errors.Is(err, bracket.ErrMissingTableEntry), ShouldBeTrue)
		})
	})
}

func TestScheduler_Run(t *testing.T) {
	Convey("Given a scheduler for a pool of 128", t, func() {
		ctx := context.Background()
		rng := rand.New(rand.NewSource(21))
		pool := newPool(128, rng)

		var rounds int
		s, err := bracket.NewScheduler(newExecutor(9), 128,
			bracket.WithRoundHook(func(context.Context, model.Format, int, model.RoundInstruction) { rounds++ }))
		So(err, ShouldBeNil)

		for _, f := range model.Formats {
			f := f
			Convey(fmt.Sprintf("When a full %s tournament is played", f), func() {
				res, err := s.Run(ctx, f, pool)
				p, _ := s.Program(f)

				Convey("Then there is exactly one champion and one runner-up", func() {
					So(err, ShouldBeNil)
					So(res.Champion, ShouldNotBeNil)
					So(res.RunnerUp, ShouldNotBeNil)
					So(res.Champion, ShouldNotEqual, res.RunnerUp)
					So(bracket.Population(pool, model.Champion), ShouldEqual, 1)
					So(bracket.Population(pool, model.RunnerUp), ShouldEqual, 1)
					So(rounds, ShouldEqual, len(p.Rounds))
				})

				Convey("Then every competitor finished on a terminal tag", func() {
					total := 0
					for _, n := range res.Placings {
						total += n
					}
					So(total, ShouldEqual, 128)
					So(res.Placings[2], ShouldEqual, 2)
					So(res.Placings[3], ShouldEqual, 4)
					So(res.Placings[4], ShouldEqual, 8)
					So(res.Placings[5], ShouldEqual, 16)
				})
			})
		}

		Convey("When the pool size does not match", func() {
			_, err := s.Run(ctx, model.FormatOpen, pool[:64])
			So(errors.Is(err, bracket.ErrPoolSize), ShouldBeTrue)
		})
	})
}

func TestScheduler_SeedsMeetLate(t *testing.T) {
	Convey("Given two dominant top seeds in a seeded event", t, func() {
		rng := rand.New(rand.NewSource(4))
		pool := newPool(64, rng)
		for _, c := range pool {
			c.Skill = 100
		}
		pool[10].Points, pool[10].Skill = 1000, 50_000
		pool[20].Points, pool[20].Skill = 999, 50_000

		s, err := bracket.NewScheduler(newExecutor(2), 64, bracket.WithFormats(model.FormatSeeded))
		So(err, ShouldBeNil)

		res, err := s.Run(context.Background(), model.FormatSeeded, pool)

		Convey("Then they only meet in the final", func() {
			So(err, ShouldBeNil)
			So(res.Champion.Points+res.RunnerUp.Points, ShouldEqual, 1999)
		})

		Convey("Then formats that were not built are unknown", func() {
			_, err := s.Run(context.Background(), model.FormatOpen, pool)
			So(errors.Is(err, bracket.ErrUnknownFormat), ShouldBeTrue)
		})
	})
}

func TestScheduler_Interrupt(t *testing.T) {
	Convey("Given a scheduler whose stop flag trips after two rounds", t, func() {
		pool := newPool(64, rand.New(rand.NewSource(8)))
		calls := 0
		s, err := bracket.NewScheduler(newExecutor(3), 64,
			bracket.WithStop(func() bool { calls++; return calls > 2 }))
		So(err, ShouldBeNil)

		_, err = s.Run(context.Background(), model.FormatOpen, pool)

		Convey("Then the tournament stops at a round boundary", func() {
			So(errors.Is(err, bracket.ErrInterrupted), ShouldBeTrue)
		})
	})

	Convey("Given a cancelled context", t, func() {
		pool := newPool(64, rand.New(rand.NewSource(8)))
		s, _ := bracket.NewScheduler(newExecutor(3), 64)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := s.Run(ctx, model.FormatSeeded, pool)
		So(errors.Is(err, bracket.ErrInterrupted), ShouldBeTrue)
	})
}

func TestSeed(t *testing.T) {
	Convey("Given a pool with tied points", t, func() {
		pool := newPool(64, rand.New(rand.NewSource(1)))
		for _, c := range pool {
			c.Points = 0
		}
		pool[5].Points = 50

		Convey("Seeded entry keeps pool order among ties", func() {
			bracket.Seed(pool, model.FormatSeeded)
			So(pool[5].Tag, ShouldEqual, model.Active(1))
			So(pool[0].Tag, ShouldEqual, model.Active(2))
			So(pool[15].Tag, ShouldEqual, model.Active(16))
			So(pool[16].Tag, ShouldEqual, model.Active(bracket.SlotUnseeded))
		})

		Convey("Championship entry adds the second tier", func() {
			bracket.Seed(pool, model.FormatChampionship)
			So(bracket.Population(pool, model.Active(bracket.SlotTier2)), ShouldEqual, 16)
			So(bracket.Population(pool, model.Active(bracket.SlotUnseeded)), ShouldEqual, 32)
		})

		Convey("Open entry is unseeded", func() {
			bracket.Seed(pool, model.FormatOpen)
			So(bracket.Population(pool, model.Active(bracket.SlotUnseeded)), ShouldEqual, 64)
		})
	})
}
