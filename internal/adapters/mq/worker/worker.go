// Package worker drains the display queue and hands each event to its sinks.
//
// A single worker preserves event order, which renderers depend on.
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/sportlife/internal/domain/model"
	"github.com/okian/sportlife/pkg/logger"
	"github.com/okian/sportlife/pkg/metrics"
)

// Event abstracts what workers read off the queue.
type Event = model.Event

// Sink consumes display events.
type Sink interface {
	Handle(ctx context.Context, e Event) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, e Event) error

// Handle calls f.
func (f SinkFunc) Handle(ctx context.Context, e Event) error { return f(ctx, e) } //nolint:gocritic // hugeParam

// Queue defines how workers receive events.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Event
}

// ErrorHandler is told about sink failures.
type ErrorHandler func(err error)

// Worker dispatches events until the queue closes.
type Worker interface {
	// Run starts the worker loop until the queue is drained or ctx is canceled.
	Run(ctx context.Context)

	// Shutdown closes the queue when it can and waits for the drain to finish.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker for display events.
type InMemoryWorker struct {
	queue   Queue
	sinks   []Sink
	name    string
	onError ErrorHandler

	done chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(queue Queue, sinks []Sink, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:  queue,
		sinks:  sinks,
		name:   "worker",
		done:   make(chan struct{}),
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.Named(w.name)
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	events := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			metrics.RecordQueueDequeue()
			w.dispatch(ctx, event)
		}
	}
}

// Done is closed when Run returns.
func (w *InMemoryWorker) Done() <-chan struct{} { return w.done }

// Shutdown closes the queue and waits for the worker to drain it.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	if closer, ok := w.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			w.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func (w *InMemoryWorker) dispatch(ctx context.Context, event Event) { //nolint:gocritic // hugeParam: Event must be passed by value for channel semantics
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	for _, sink := range w.sinks {
		if err := sink.Handle(ctx, event); err != nil {
			metrics.RecordWorkerError()
			metrics.RecordError("worker")
			w.logger.Error(ctx, "sink failed",
				logger.String("event", string(event.Kind)),
				logger.Error(err),
			)
			if w.onError != nil {
				w.onError(fmt.Errorf("dispatch %s: %w", event.Kind, err))
			}
		}
	}
}
