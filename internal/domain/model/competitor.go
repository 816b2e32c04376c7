// Package model contains the domain types shared by the simulation layers.
package model

import (
	"fmt"
)

// displayRankingCutoff is the last ranking shown next to a name.
const displayRankingCutoff = 16

// Competitor is one member of the active pool.
type Competitor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Age  int    `json:"age"`

	// Skill is the current ability. SkillOffset is the pending correction
	// left by a boost (negative) or an injury (positive); it is unwound a
	// little every season.
	Skill       int `json:"skill"`
	SkillOffset int `json:"skill_offset"`

	// Tag only means something while a tournament is running.
	Tag Tag `json:"-"`

	// History holds the points earned per tournament, oldest first.
	History []int `json:"history"`
	Points  int   `json:"points"`

	Ranking          int `json:"ranking"`
	BestRanking      int `json:"best_ranking"`
	TimesRankedFirst int `json:"times_ranked_first"`

	Wins          int  `json:"wins"`
	RunnerUps     int  `json:"runner_ups"`
	Championships int  `json:"championships"`
	FirstTitle    *int `json:"first_title,omitempty"`
	LastTitle     *int `json:"last_title,omitempty"`

	CareerPrize int64 `json:"career_prize"`
	SeasonPrize int64 `json:"season_prize"`

	// Joined is the season this identity entered the tour.
	Joined int `json:"joined"`
}

// Record appends points to the rolling history, drops the oldest entries
// beyond capacity and recomputes Points.
func (c *Competitor) Record(points, capacity int) {
	c.History = append(c.History, points)
	if capacity > 0 && len(c.History) > capacity {
		c.History = append(c.History[:0], c.History[len(c.History)-capacity:]...)
	}
	c.Points = sum(c.History)
}

// TrimHistory enforces capacity without adding an entry.
func (c *Competitor) TrimHistory(capacity int) {
	if capacity > 0 && len(c.History) > capacity {
		c.History = append(c.History[:0], c.History[len(c.History)-capacity:]...)
	}
	c.Points = sum(c.History)
}

// WinTitle records a championship-format win in the given season.
func (c *Competitor) WinTitle(season int) {
	c.Championships++
	if c.FirstTitle == nil {
		first := season
		c.FirstTitle = &first
	}
	last := season
	c.LastTitle = &last
}

// DisplayName returns the name with the ranking appended for the top of the table.
func (c *Competitor) DisplayName() string {
	if c.Ranking > 0 && c.Ranking <= displayRankingCutoff {
		return fmt.Sprintf("%s (%d)", c.Name, c.Ranking)
	}
	return c.Name
}

// TitleSpan renders the seasons of the first and last title, e.g. "(3-11)".
func (c *Competitor) TitleSpan() string {
	if c.FirstTitle == nil || c.LastTitle == nil {
		return ""
	}
	if *c.FirstTitle == *c.LastTitle {
		return fmt.Sprintf("(%d)", *c.FirstTitle)
	}
	return fmt.Sprintf("(%d-%d)", *c.FirstTitle, *c.LastTitle)
}

// Clone returns a deep copy.
func (c *Competitor) Clone() *Competitor {
	out := *c
	out.History = append([]int(nil), c.History...)
	if c.FirstTitle != nil {
		v := *c.FirstTitle
		out.FirstTitle = &v
	}
	if c.LastTitle != nil {
		v := *c.LastTitle
		out.LastTitle = &v
	}
	return &out
}

// Identity is what a new competitor is born with. Bonus is extra skill
// granted by the name generator and is already included in Skill once the
// identity is installed.
type Identity struct {
	ID    string
	Name  string
	Skill int
	Age   int
	Bonus int
}

// Reset wipes the career and installs a fresh identity in the same slot.
// Ranking is kept so the slot stays ordered until the next standings pass.
func (c *Competitor) Reset(id Identity, season int) {
	ranking := c.Ranking
	*c = Competitor{
		ID:      id.ID,
		Name:    id.Name,
		Age:     id.Age,
		Skill:   id.Skill,
		Ranking: ranking,
		Joined:  season,
	}
}

// Retired is the immutable career snapshot of a competitor who left the tour.
type Retired struct {
	Competitor
	RetiredSeason int `json:"retired_season"`
}

// Retire snapshots the competitor. The returned record shares no memory with c.
func (c *Competitor) Retire(season int) Retired {
	snap := c.Clone()
	snap.Tag = Tag{}
	snap.SeasonPrize = 0
	return Retired{Competitor: *snap, RetiredSeason: season}
}

func sum(xs []int) int {
	total := 0
	for _, x := range xs {
		total += x
	}
	return total
}
