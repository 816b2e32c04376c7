package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/okian/sportlife/internal/adapters/console"
	"github.com/okian/sportlife/internal/adapters/http/api"
	"github.com/okian/sportlife/internal/adapters/http/live"
	"github.com/okian/sportlife/internal/adapters/input"
	"github.com/okian/sportlife/internal/adapters/mq/queue"
	"github.com/okian/sportlife/internal/adapters/mq/worker"
	"github.com/okian/sportlife/internal/adapters/repository"
	"github.com/okian/sportlife/internal/adapters/roster"
	"github.com/okian/sportlife/internal/app"
	"github.com/okian/sportlife/internal/config"
	"github.com/okian/sportlife/pkg/logger"
	"github.com/okian/sportlife/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 10 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	serviceMetricsInterval    = 5 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	if err := run(); err != nil {
		os.Stderr.WriteString("sportlife: " + err.Error() + "\n")
		os.Exit(1)
	}
}

func run() error {
	// Disable default Go metrics collection to avoid duplicate metrics
	// We collect our own custom system metrics instead
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	stdout, stderr := &termWriter{w: os.Stdout}, &termWriter{w: os.Stderr}
	if err := logger.Init(logger.WithWriter(stderr)); err != nil {
		return fmt.Errorf("initialize logging: %w", err)
	}

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> .env -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	if err := logger.Init(logger.WithWriter(stderr), logger.WithFormat(cfg.LogFormat)); err != nil {
		return fmt.Errorf("initialize logging: %w", err)
	}
	log := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	src := openInput(ctx, cfg, log)
	if _, raw := src.(*input.Keyboard); raw {
		stdout.raw.Store(true)
		stderr.raw.Store(true)
		log.Info(ctx, "controls: p pause, f fast-forward, q quit")
	}
	defer func() {
		if err := src.Close(); err != nil {
			log.Error(context.Background(), "failed to restore terminal", logger.Error(err))
		}
		stdout.raw.Store(false)
		stderr.raw.Store(false)
	}()

	return serve(ctx, cfg, src, stdout, log)
}

// openInput returns the keyboard when the run is interactive and stdin is a
// terminal, and a silent source otherwise.
func openInput(ctx context.Context, cfg *config.Config, log logger.Logger) input.Source {
	if !cfg.Interactive {
		return input.None{}
	}
	kb, err := input.NewKeyboard(os.Stdin)
	if err != nil {
		log.Info(ctx, "keyboard controls unavailable", logger.Error(err))
		return input.None{}
	}
	return kb
}

// serve wires the simulation to its display, index and HTTP surface and
// runs it until it finishes, is quit or ctx ends. With HTTP enabled, a run
// that finishes on its own keeps serving until ctx ends.
func serve(ctx context.Context, cfg *config.Config, src input.Source, out io.Writer, log logger.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	q := queue.NewInMemoryQueue(queue.WithCapacity(cfg.EventQueueSize))
	hub := live.NewHub(log.Named("live"))
	defer func() { _ = hub.Close() }()
	index := repository.NewTreapStore()

	opts := []app.Option{
		app.WithLogger(log),
		app.WithEmitter(q),
		app.WithInput(src),
		app.WithPublisher(index),
	}
	if cfg.RosterDSN != "" {
		store, err := roster.Open(ctx, cfg.RosterDriver, cfg.RosterDSN)
		if err != nil {
			return fmt.Errorf("open roster: %w", err)
		}
		defer func() {
			if err := store.Close(); err != nil {
				log.Error(context.Background(), "failed to close roster", logger.Error(err))
			}
		}()
		opts = append(opts, app.WithRoster(store))
	}

	sim, err := app.NewSimulation(cfg, opts...)
	if err != nil {
		return err
	}
	if _, err := sim.Restore(ctx); err != nil {
		return err
	}

	renderer := console.NewRenderer(out, console.WithProgress(cfg.Interactive))
	w := worker.NewInMemoryWorker(q, []worker.Sink{renderer, hub},
		worker.WithName("display"),
		worker.WithLogger(log),
		worker.WithErrorHandler(sim.Halt),
	)
	go w.Run(context.Background())

	go startSystemMetricsUpdater(ctx)
	go startServiceMetricsUpdater(ctx, q)

	g, gctx := errgroup.WithContext(ctx)
	if cfg.HTTPEnabled {
		srv := newHTTPServer(cfg, index, sim, hub)
		g.Go(func() error {
			log.Info(gctx, "starting HTTP server", logger.String("addr", cfg.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer shutdownCancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("server shutdown: %w", err)
			}
			log.Info(shutdownCtx, "server stopped")
			return nil
		})
	}
	g.Go(func() error {
		err := sim.Run(gctx)
		if err != nil || sim.Stopped() || !cfg.HTTPEnabled {
			cancel()
		} else {
			log.Info(gctx, "simulation finished; serving results until interrupted")
		}
		return err
	})
	runErr := g.Wait()

	drainCtx, drainCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer drainCancel()
	if err := w.Shutdown(drainCtx); err != nil {
		log.Warn(drainCtx, "display did not drain", logger.Error(err))
	}
	if err := sim.Shutdown(drainCtx); err != nil {
		runErr = errors.Join(runErr, err)
	}
	return runErr
}

// newHTTPServer builds the read-only API server.
func newHTTPServer(cfg *config.Config, index *repository.TreapStore, sim *app.Simulation, hub http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.NewServer(index, sim, sim, hub, cfg.MaxStandingsLimit).Router(),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}

// termWriter adds the carriage return a raw-mode terminal no longer adds.
type termWriter struct {
	w   io.Writer
	raw atomic.Bool
}

func (t *termWriter) Write(p []byte) (int, error) {
	if !t.raw.Load() {
		return t.w.Write(p)
	}
	if _, err := t.w.Write(bytes.ReplaceAll(p, []byte("\n"), []byte("\r\n"))); err != nil {
		return 0, err
	}
	return len(p), nil
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// startServiceMetricsUpdater keeps the queue gauge fresh between events.
func startServiceMetricsUpdater(ctx context.Context, q queue.Queue) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			metrics.UpdateQueueSize(q.Len(ctx))
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}
