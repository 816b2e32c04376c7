// Package repository keeps a read-optimised copy of the standings for the API.
package repository

import (
	"context"

	"github.com/okian/sportlife/internal/domain/model"
)

// Entry represents a standings row.
type Entry struct {
	Rank          int    `json:"rank"`
	ID            string `json:"id"`
	Name          string `json:"name"`
	Points        int    `json:"points"`
	Age           int    `json:"age"`
	Skill         int    `json:"skill"`
	Wins          int    `json:"wins"`
	RunnerUps     int    `json:"runner_ups"`
	Championships int    `json:"championships"`
	BestRanking   int    `json:"best_ranking"`
	Prize         int64  `json:"prize"`
}

// Store provides read/write access to the standings.
type Store interface {
	// Publish replaces the indexed standings with ranked. Competitors that
	// are no longer present are dropped.
	Publish(ctx context.Context, ranked []*model.Competitor) error

	// Rank returns the entry for a competitor.
	// Returns ErrNotFound if the competitor is unknown.
	Rank(ctx context.Context, id string) (Entry, error)

	// TopN returns the top-N entries in ranking order.
	TopN(ctx context.Context, n int) ([]Entry, error)

	// Count returns the number of indexed competitors.
	Count(ctx context.Context) int
}

func entryOf(c *model.Competitor) Entry {
	return Entry{
		Rank:          c.Ranking,
		ID:            c.ID,
		Name:          c.Name,
		Points:        c.Points,
		Age:           c.Age,
		Skill:         c.Skill,
		Wins:          c.Wins,
		RunnerUps:     c.RunnerUps,
		Championships: c.Championships,
		BestRanking:   c.BestRanking,
		Prize:         c.CareerPrize,
	}
}
