package batch

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/sportlife/internal/app"
	"github.com/okian/sportlife/internal/config"
	"github.com/okian/sportlife/internal/domain/model"
	"github.com/okian/sportlife/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
	filePermission      = 0600
)

// Run plays every career and returns the report. Careers are independent:
// each owns its pool and random source, so they run concurrently.
func Run(ctx context.Context, cfg *Config, log logger.Logger) (*Report, error) {
	if err := validate(cfg); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Nop()
	}

	report := &Report{
		Careers:   make([]CareerResult, cfg.Careers),
		StartTime: time.Now(),
	}
	log.Info(ctx, "starting batch",
		logger.Int("careers", cfg.Careers),
		logger.Int("seasons", cfg.Seasons),
		logger.Int("workers", cfg.Workers),
		logger.Int("pool", cfg.Base.PoolSize),
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for i := range cfg.Careers {
		g.Go(func() error {
			res, err := playCareer(gCtx, cfg, i)
			if err != nil {
				return fmt.Errorf("career %d: %w", i, err)
			}
			report.Careers[i] = res
			if cfg.Verbose {
				log.Info(gCtx, "career finished",
					logger.Int("career", i),
					logger.Int("distinct", res.DistinctChampions),
					logger.String("top", res.TopChampion),
					logger.Int("topTitles", res.TopTitles),
				)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summarise(report)
	report.EndTime = time.Now()
	report.Duration = report.EndTime.Sub(report.StartTime)

	if cfg.Output != "" {
		if err := saveReport(cfg.Output, report); err != nil {
			log.Warn(ctx, "failed to save report", logger.Error(err))
		}
	}
	displayFinalStats(ctx, log, report)
	return report, nil
}

func validate(cfg *Config) error {
	switch {
	case cfg == nil || cfg.Base == nil:
		return fmt.Errorf("%w: missing simulation config", ErrInvalidConfig)
	case cfg.Careers < 1:
		return fmt.Errorf("%w: careers must be positive", ErrInvalidConfig)
	case cfg.Seasons < 1:
		return fmt.Errorf("%w: seasons must be positive", ErrInvalidConfig)
	case cfg.Workers < 1:
		return fmt.Errorf("%w: workers must be positive", ErrInvalidConfig)
	}
	return nil
}

// careerConfig copies the shared settings for career i, headless and unpaced.
func careerConfig(cfg *Config, i int) *config.Config {
	c := *cfg.Base
	c.Seed = cfg.BaseSeed + int64(i)
	if c.Seed == 0 {
		c.Seed = int64(i) + 1
	}
	c.Seasons = cfg.Seasons
	c.Interactive = false
	c.HTTPEnabled = false
	c.PointDelayMS = 0
	c.MatchDelayMS = 0
	c.TournamentDelayMS = 0
	c.RosterDSN = ""
	return &c
}

func playCareer(ctx context.Context, cfg *Config, i int) (CareerResult, error) {
	c := careerConfig(cfg, i)
	sim, err := app.NewSimulation(c)
	if err != nil {
		return CareerResult{}, err
	}

	var tournaments []app.TournamentSummary
	retired := 0
	for range cfg.Seasons {
		summary, err := sim.AdvanceSeason(ctx)
		if err != nil {
			return CareerResult{}, err
		}
		tournaments = append(tournaments, summary.Tournaments...)
		retired += len(summary.Retired)
	}

	res := score(tournaments)
	res.Index = i
	res.Seed = c.Seed
	res.Seasons = cfg.Seasons
	res.Retired = retired
	return res, nil
}

// score measures how championship titles were spread across competitors.
func score(tournaments []app.TournamentSummary) CareerResult {
	var res CareerResult
	titles := map[string]int{}
	names := map[string]string{}
	skill := 0
	for _, t := range tournaments {
		skill += t.ChampionSkill
		if t.Format != model.FormatChampionship {
			continue
		}
		titles[t.ChampionID]++
		names[t.ChampionID] = t.ChampionName
		res.Titles++
	}
	res.Tournaments = len(tournaments)
	if len(tournaments) > 0 {
		res.MeanChampionSkill = float64(skill) / float64(len(tournaments))
	}

	res.DistinctChampions = len(titles)
	for id, n := range titles {
		share := float64(n) / float64(res.Titles)
		res.Concentration += share * share
		if n > res.TopTitles || (n == res.TopTitles && names[id] < res.TopChampion) {
			res.TopTitles = n
			res.TopChampion = names[id]
		}
	}
	return res
}

func summarise(r *Report) {
	if len(r.Careers) == 0 {
		return
	}
	var conc, distinct, skill float64
	for _, c := range r.Careers {
		conc += c.Concentration
		distinct += float64(c.DistinctChampions)
		skill += c.MeanChampionSkill
		r.MaxTopTitles = max(r.MaxTopTitles, c.TopTitles)
	}
	n := float64(len(r.Careers))
	r.MeanConcentration = conc / n
	r.MeanDistinct = distinct / n
	r.MeanChampionSkill = skill / n
}

// saveReport writes the report as indented JSON.
func saveReport(filename string, r *Report) error {
	dir := filepath.Dir(filename)
	if dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := os.WriteFile(filename, data, filePermission); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// displayFinalStats logs the aggregate figures.
func displayFinalStats(ctx context.Context, log logger.Logger, r *Report) {
	log.Info(ctx, "final statistics",
		logger.Int("careers", len(r.Careers)),
		logger.Float64("meanConcentration", r.MeanConcentration),
		logger.Float64("meanDistinctChampions", r.MeanDistinct),
		logger.Float64("meanChampionSkill", r.MeanChampionSkill),
		logger.Int("maxTopTitles", r.MaxTopTitles),
		logger.Duration("duration", r.Duration),
	)
}
