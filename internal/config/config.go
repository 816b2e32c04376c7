// Package config defines the simulator configuration and how it is loaded.
//
// Conventions:
// - New returns a Config filled with defaults.
// - Load layers defaults, an optional .env file, an optional YAML file and
//   SPORTLIFE_ environment variables, then validates the result.
package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/okian/sportlife/internal/domain/model"
)

// FormatConfig holds per-format overrides.
type FormatConfig struct {
	// HistoryCapacity widens the shared rolling window when larger than the
	// default. 0 keeps the default.
	HistoryCapacity int `koanf:"history_capacity"`
	// PurseWeight scales the season purse for this format.
	PurseWeight float64 `koanf:"purse_weight"`
}

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat is text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr        string `koanf:"addr"`
	HTTPEnabled bool   `koanf:"http_enabled"`
	// MaxStandingsLimit caps GET /standings?limit.
	MaxStandingsLimit int `koanf:"max_standings_limit"`

	// Seed drives every random draw; 0 picks one from the clock.
	Seed int64 `koanf:"seed"`
	// Seasons to play; 0 runs until asked to stop.
	Seasons  int `koanf:"seasons"`
	PoolSize int `koanf:"pool_size"`
	// Schedule lists the formats played each season, in order.
	Schedule []string `koanf:"schedule"`
	// Interactive reads keys from the terminal.
	Interactive bool `koanf:"interactive"`

	HistoryCapacity int                     `koanf:"history_capacity"`
	Formats         map[string]FormatConfig `koanf:"formats"`
	PurseStart      int64                   `koanf:"purse_start"`
	PurseGrowth     float64                 `koanf:"purse_growth"`

	RetireAge           int `koanf:"retire_age"`
	RetireRanking       int `koanf:"retire_ranking"`
	EntryAgeMin         int `koanf:"entry_age_min"`
	EntryAgeMax         int `koanf:"entry_age_max"`
	InitialAgeMax       int `koanf:"initial_age_max"`
	InitialSkillMin     int `koanf:"initial_skill_min"`
	InitialSkillMax     int `koanf:"initial_skill_max"`
	ReplacementSkillMin int `koanf:"replacement_skill_min"`
	ReplacementSkillMax int `koanf:"replacement_skill_max"`

	SkillFloor   int     `koanf:"skill_floor"`
	SkillCeiling int     `koanf:"skill_ceiling"`
	YoungAge     int     `koanf:"young_age"`
	YoungDelta   int     `koanf:"young_delta"`
	DeclineAge   int     `koanf:"decline_age"`
	DeclineDelta int     `koanf:"decline_delta"`
	SkillWalk    int     `koanf:"skill_walk"`
	OffsetStep   int     `koanf:"offset_step"`
	BoostChance  float64 `koanf:"boost_chance"`
	BoostSize    int     `koanf:"boost_size"`
	InjuryChance float64 `koanf:"injury_chance"`
	InjurySize   int     `koanf:"injury_size"`

	// Pacing, in milliseconds. Fast-forward skips them.
	PointDelayMS      int `koanf:"point_delay_ms"`
	MatchDelayMS      int `koanf:"match_delay_ms"`
	TournamentDelayMS int `koanf:"tournament_delay_ms"`

	// EventQueueSize bounds the display event queue.
	EventQueueSize int `koanf:"event_queue_size"`

	// NameCulture is english, chinese or mixed.
	NameCulture string `koanf:"name_culture"`

	// RosterDriver is sqlite3 or postgres; an empty RosterDSN disables persistence.
	RosterDriver string `koanf:"roster_driver"`
	RosterDSN    string `koanf:"roster_dsn"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		Addr:              ":9080",
		HTTPEnabled:       false,
		MaxStandingsLimit: 128,

		Seasons:     0,
		PoolSize:    128,
		Schedule:    []string{"open", "seeded", "open", "championship"},
		Interactive: true,

		HistoryCapacity: 8,
		Formats: map[string]FormatConfig{
			"open":         {PurseWeight: 0.5},
			"seeded":       {PurseWeight: 1},
			"championship": {PurseWeight: 2},
		},
		PurseStart:  100_000,
		PurseGrowth: 1.03,

		RetireAge:           35,
		RetireRanking:       70,
		EntryAgeMin:         17,
		EntryAgeMax:         19,
		InitialAgeMax:       34,
		InitialSkillMin:     200,
		InitialSkillMax:     900,
		ReplacementSkillMin: 200,
		ReplacementSkillMax: 600,

		SkillFloor:   100,
		SkillCeiling: 0,
		YoungAge:     24,
		YoungDelta:   30,
		DeclineAge:   30,
		DeclineDelta: 40,
		SkillWalk:    25,
		OffsetStep:   100,
		BoostChance:  0.01,
		BoostSize:    600,
		InjuryChance: 0.02,
		InjurySize:   500,

		PointDelayMS:      20,
		MatchDelayMS:      400,
		TournamentDelayMS: 2000,

		EventQueueSize: 4096,
		NameCulture:    "english",
		RosterDriver:   "sqlite3",
	}
}

// ScheduleFormats parses the schedule. Entries may themselves be
// comma-separated, which is how a single environment variable arrives.
func (c *Config) ScheduleFormats() ([]model.Format, error) {
	var out []model.Format
	for _, entry := range c.Schedule {
		for _, name := range strings.Split(entry, ",") {
			if strings.TrimSpace(name) == "" {
				continue
			}
			f, err := model.ParseFormat(name)
			if err != nil {
				return nil, fmt.Errorf("%w: schedule: %w", ErrInvalidConfig, err)
			}
			out = append(out, f)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: schedule is empty", ErrInvalidConfig)
	}
	return out, nil
}

// Format returns the overrides of f.
func (c *Config) Format(f model.Format) FormatConfig {
	fc, ok := c.Formats[f.String()]
	if !ok {
		return FormatConfig{PurseWeight: 1}
	}
	return fc
}

// PointDelay returns the pause after each point.
func (c *Config) PointDelay() time.Duration { return ms(c.PointDelayMS) }

// MatchDelay returns the pause after each match.
func (c *Config) MatchDelay() time.Duration { return ms(c.MatchDelayMS) }

// TournamentDelay returns the pause after each tournament.
func (c *Config) TournamentDelay() time.Duration { return ms(c.TournamentDelayMS) }

func ms(n int) time.Duration {
	if n <= 0 {
		return 0
	}
	return time.Duration(n) * time.Millisecond
}

// Validate checks ranges and returns the first problem found.
func (c *Config) Validate(_ context.Context) error {
	checks := []struct {
		ok  bool
		msg string
	}{
		{c.PoolSize >= 32, "pool_size must be at least 32"},
		{c.Seasons >= 0, "seasons must not be negative"},
		{c.HistoryCapacity > 0, "history_capacity must be positive"},
		{c.PurseStart >= 0, "purse_start must not be negative"},
		{c.PurseGrowth > 0, "purse_growth must be positive"},
		{c.RetireRanking > 0, "retire_ranking must be positive"},
		{c.EntryAgeMin > 0 && c.EntryAgeMax >= c.EntryAgeMin, "entry ages must be positive and ordered"},
		{c.InitialAgeMax >= c.EntryAgeMin, "initial_age_max must not be below entry_age_min"},
		{c.SkillFloor > 0, "skill_floor must be positive"},
		{c.SkillCeiling == 0 || c.SkillCeiling > c.SkillFloor, "skill_ceiling must be 0 or above skill_floor"},
		{c.InitialSkillMin >= c.SkillFloor && c.InitialSkillMax >= c.InitialSkillMin, "initial skill range must be ordered and above the floor"},
		{c.ReplacementSkillMin >= c.SkillFloor && c.ReplacementSkillMax >= c.ReplacementSkillMin, "replacement skill range must be ordered and above the floor"},
		{c.SkillWalk >= 0 && c.OffsetStep >= 0, "skill_walk and offset_step must not be negative"},
		{c.BoostChance >= 0 && c.BoostChance <= 1, "boost_chance must be within [0,1]"},
		{c.InjuryChance >= 0 && c.InjuryChance <= 1, "injury_chance must be within [0,1]"},
		{c.EventQueueSize > 0, "event_queue_size must be positive"},
		{!c.HTTPEnabled || c.Addr != "", "addr must not be empty when http is enabled"},
	}
	for _, chk := range checks {
		if !chk.ok {
			return fmt.Errorf("%w: %s", ErrInvalidConfig, chk.msg)
		}
	}
	for name, fc := range c.Formats {
		if _, err := model.ParseFormat(name); err != nil {
			return fmt.Errorf("%w: formats: %w", ErrInvalidConfig, err)
		}
		if fc.HistoryCapacity < 0 || fc.PurseWeight < 0 {
			return fmt.Errorf("%w: formats.%s must not be negative", ErrInvalidConfig, name)
		}
	}
	if _, err := c.ScheduleFormats(); err != nil {
		return err
	}
	return nil
}
