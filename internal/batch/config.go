// Package batch plays many independent careers side by side and summarises
// how titles were shared out.
package batch

import (
	"errors"
	"time"

	"github.com/okian/sportlife/internal/config"
)

// ErrInvalidConfig is returned for batch settings that cannot run.
var ErrInvalidConfig = errors.New("invalid batch config")

// Config holds configuration for a batch run.
type Config struct {
	Base     *config.Config // Simulation settings shared by every career
	Careers  int            // Number of independent careers
	Seasons  int            // Seasons per career
	Workers  int            // Careers played at the same time
	Output   string         // Optional JSON report file
	Verbose  bool           // Log every career as it finishes
	BaseSeed int64          // Career i uses BaseSeed+i
}

// CareerResult summarises one career.
type CareerResult struct {
	Index   int   `json:"index"`
	Seed    int64 `json:"seed"`
	Seasons int   `json:"seasons"`

	// Titles counts championship-format wins.
	Titles            int    `json:"titles"`
	DistinctChampions int    `json:"distinct_champions"`
	TopTitles         int    `json:"top_titles"`
	TopChampion       string `json:"top_champion"`
	// Concentration is the Herfindahl index of title shares: 1 when one
	// competitor won everything, 1/n when n champions split them evenly.
	Concentration float64 `json:"concentration"`

	// MeanChampionSkill is averaged over every tournament, all formats.
	MeanChampionSkill float64 `json:"mean_champion_skill"`
	Tournaments       int     `json:"tournaments"`
	Retired           int     `json:"retired"`
}

// Report aggregates a batch.
type Report struct {
	Careers []CareerResult `json:"careers"`

	MeanConcentration float64 `json:"mean_concentration"`
	MeanDistinct      float64 `json:"mean_distinct_champions"`
	MeanChampionSkill float64 `json:"mean_champion_skill"`
	MaxTopTitles      int     `json:"max_top_titles"`

	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
}
