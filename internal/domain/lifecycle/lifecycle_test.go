package lifecycle_test

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/okian/sportlife/internal/domain/lifecycle"
	"github.com/okian/sportlife/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

type fakeIdentities struct {
	n        int
	bonus    int
	released []string
	err      error
}

func (f *fakeIdentities) Next() (model.Identity, error) {
	if f.err != nil {
		return model.Identity{}, f.err
	}
	f.n++
	return model.Identity{ID: fmt.Sprintf("new-%d", f.n), Name: fmt.Sprintf("Rookie %d", f.n), Bonus: f.bonus}, nil
}

func (f *fakeIdentities) Release(name string) { f.released = append(f.released, name) }

func quietRules() lifecycle.Rules {
	r := lifecycle.DefaultRules()
	r.Walk = 0
	r.BoostChance = 0
	r.InjuryChance = 0
	return r
}

func TestManager_UpdateSkill(t *testing.T) {
	Convey("Given a manager with no randomness in play", t, func() {
		m := lifecycle.NewManager(&fakeIdentities{}, lifecycle.WithRules(quietRules()))

		Convey("A pending +600 offset unwinds in exactly six passes", func() {
			c := &model.Competitor{Age: 27, Skill: 500, SkillOffset: 600}
			pool := []*model.Competitor{c}
			for i := 1; i <= 6; i++ {
				m.UpdateSkill(pool)
				So(c.SkillOffset, ShouldEqual, 600-100*i)
			}
			So(c.Skill, ShouldEqual, 1100)

			m.UpdateSkill(pool)
			So(c.Skill, ShouldEqual, 1100)
			So(c.SkillOffset, ShouldEqual, 0)
		})

		Convey("A boost offset unwinds downwards", func() {
			c := &model.Competitor{Age: 27, Skill: 1500, SkillOffset: -250}
			pool := []*model.Competitor{c}
			m.UpdateSkill(pool)
			m.UpdateSkill(pool)
			m.UpdateSkill(pool)
			So(c.SkillOffset, ShouldEqual, 0)
			So(c.Skill, ShouldEqual, 1250)
		})

		Convey("Young competitors improve and old ones decline", func() {
			young := &model.Competitor{Age: 18, Skill: 500}
			old := &model.Competitor{Age: 33, Skill: 500}
			m.UpdateSkill([]*model.Competitor{young, old})
			So(young.Skill, ShouldEqual, 530)
			So(old.Skill, ShouldEqual, 460)
		})
	})

	Convey("Given certain boosts", t, func() {
		r := quietRules()
		r.BoostChance = 1
		m := lifecycle.NewManager(&fakeIdentities{}, lifecycle.WithRules(r))
		c := &model.Competitor{Age: 27, Skill: 400}

		notices := m.UpdateSkill([]*model.Competitor{c})

		So(c.Skill, ShouldEqual, 1000)
		So(c.SkillOffset, ShouldEqual, -600)
		So(notices, ShouldHaveLength, 1)
		So(notices[0].Kind, ShouldEqual, model.NoticeBoost)
	})

	Convey("Given a certain boost and a certain injury", t, func() {
		r := quietRules()
		r.BoostChance = 1
		r.InjuryChance = 1
		m := lifecycle.NewManager(&fakeIdentities{}, lifecycle.WithRules(r))
		c := &model.Competitor{Age: 27, Skill: 400}

		notices := m.UpdateSkill([]*model.Competitor{c})

		Convey("Both land in the same pass", func() {
			So(notices, ShouldHaveLength, 2)
			So(notices[0].Kind, ShouldEqual, model.NoticeBoost)
			So(notices[1].Kind, ShouldEqual, model.NoticeInjury)
			So(notices[1].Amount, ShouldEqual, 500)
			So(c.Skill, ShouldEqual, 500)
			So(c.SkillOffset, ShouldEqual, -100)
		})
	})

	Convey("Given certain injuries near the floor", t, func() {
		r := quietRules()
		r.InjuryChance = 1
		m := lifecycle.NewManager(&fakeIdentities{}, lifecycle.WithRules(r))
		c := &model.Competitor{Age: 27, Skill: 300}

		notices := m.UpdateSkill([]*model.Competitor{c})

		Convey("The injury only takes what is above the floor", func() {
			So(c.Skill, ShouldEqual, 100)
			So(c.SkillOffset, ShouldEqual, 200)
			So(notices[0].Kind, ShouldEqual, model.NoticeInjury)
			So(notices[0].Amount, ShouldEqual, 200)
		})
	})

	Convey("Given a soft ceiling", t, func() {
		r := quietRules()
		r.Ceiling = 1000
		m := lifecycle.NewManager(&fakeIdentities{}, lifecycle.WithRules(r))
		c := &model.Competitor{Age: 20, Skill: 1170}

		m.UpdateSkill([]*model.Competitor{c})
		So(c.Skill, ShouldEqual, 1100)
	})

	Convey("Given harsh rules over many seeds", t, func() {
		r := lifecycle.DefaultRules()
		r.DeclineDelta = 300
		r.InjuryChance = 0.5
		r.Walk = 200

		for seed := int64(0); seed < 20; seed++ {
			m := lifecycle.NewManager(&fakeIdentities{}, lifecycle.WithRules(r), lifecycle.WithRand(rand.New(rand.NewSource(seed))))
			pool := []*model.Competitor{
				{Age: 40, Skill: 150}, {Age: 20, Skill: 101}, {Age: 33, Skill: 900, SkillOffset: -600},
			}
			for i := 0; i < 30; i++ {
				m.UpdateSkill(pool)
				for _, c := range pool {
					So(c.Skill, ShouldBeGreaterThanOrEqualTo, 100)
				}
			}
		}
	})
}

func TestManager_AddAge(t *testing.T) {
	Convey("Given a pool of 128 with one veteran ranked 80 aged 36", t, func() {
		ids := &fakeIdentities{bonus: 200}
		m := lifecycle.NewManager(ids, lifecycle.WithRules(quietRules()), lifecycle.WithRand(rand.New(rand.NewSource(5))))
		pool := make([]*model.Competitor, 128)
		for i := range pool {
			pool[i] = &model.Competitor{ID: fmt.Sprintf("c%d", i), Name: fmt.Sprintf("Player %d", i), Age: 25, Skill: 500, Ranking: i + 1}
		}
		vet := pool[79]
		vet.Age = 36
		vet.Wins = 3
		pool[69].Age = 40  // ranked 70: stays
		pool[100].Age = 34 // turns 35: stays

		retired, notices, err := m.AddAge(pool, 12)

		Convey("Then only the veteran retires and the pool size is unchanged", func() {
			So(err, ShouldBeNil)
			So(retired, ShouldHaveLength, 1)
			So(retired[0].ID, ShouldEqual, "c79")
			So(retired[0].Wins, ShouldEqual, 3)
			So(retired[0].Age, ShouldEqual, 37)
			So(retired[0].RetiredSeason, ShouldEqual, 12)
			So(len(pool), ShouldEqual, 128)
			So(ids.released, ShouldResemble, []string{"Player 79"})
		})

		Convey("Then the slot holds a fresh newcomer", func() {
			So(pool[79], ShouldEqual, vet)
			So(vet.ID, ShouldEqual, "new-1")
			So(vet.Wins, ShouldEqual, 0)
			So(vet.Ranking, ShouldEqual, 128)
			So(vet.Age, ShouldBeBetweenOrEqual, 17, 19)
			So(vet.Skill, ShouldBeBetweenOrEqual, 400, 800)
			So(vet.Joined, ShouldEqual, 12)
			So(notices, ShouldHaveLength, 1)
			So(notices[0].Kind, ShouldEqual, model.NoticeRetirement)
			So(notices[0].Successor, ShouldEqual, "Rookie 1")
		})

		Convey("Then everybody aged a season", func() {
			So(pool[0].Age, ShouldEqual, 26)
			So(pool[69].Age, ShouldEqual, 41)
			So(pool[100].Age, ShouldEqual, 35)
		})
	})

	Convey("Given an identity source that fails", t, func() {
		m := lifecycle.NewManager(&fakeIdentities{err: errors.New("no names left")}, lifecycle.WithRules(quietRules()))
		pool := []*model.Competitor{{Name: "Old", Age: 50, Ranking: 99}}

		_, _, err := m.AddAge(pool, 1)
		So(err, ShouldNotBeNil)
		So(pool[0].Name, ShouldEqual, "Old")
	})
}

func TestManager_Populate(t *testing.T) {
	Convey("Given a fresh manager", t, func() {
		m := lifecycle.NewManager(&fakeIdentities{}, lifecycle.WithRand(rand.New(rand.NewSource(9))))
		pool, err := m.Populate(64, 1)

		So(err, ShouldBeNil)
		So(pool, ShouldHaveLength, 64)
		r := m.Rules()
		for i, c := range pool {
			So(c.Ranking, ShouldEqual, i+1)
			So(c.Skill, ShouldBeBetweenOrEqual, r.InitialSkillMin, r.InitialSkillMax)
			So(c.Age, ShouldBeBetweenOrEqual, r.InitialAgeMin, r.InitialAgeMax)
			So(c.Joined, ShouldEqual, 1)
		}
	})
}
