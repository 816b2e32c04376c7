package app

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/sportlife/internal/adapters/input"
)

const pausePoll = 50 * time.Millisecond

// pacer turns keys into commands and sleeps between points, matches and
// tournaments. It only runs on the simulation goroutine.
type pacer struct {
	source  input.Source
	fast    bool
	quit    func()
	stopped func() bool
	// halt receives a source failure once.
	halt   func(error)
	broken bool
}

// poll reads at most one key. A pause blocks here until the next pause
// key, a fast-forward, a quit or the end of ctx.
func (p *pacer) poll(ctx context.Context) {
	key, ok := p.source.PollKey()
	if !ok {
		p.check()
		return
	}
	switch input.Decode(key) {
	case input.CommandFastForward:
		p.fast = true
	case input.CommandQuit:
		p.quit()
	case input.CommandPause:
		p.pause(ctx)
	}
}

func (p *pacer) pause(ctx context.Context) {
	ticker := time.NewTicker(pausePoll)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		key, ok := p.source.PollKey()
		if !ok {
			if p.check() {
				return
			}
			continue
		}
		switch input.Decode(key) {
		case input.CommandPause:
			return
		case input.CommandFastForward:
			p.fast = true
			return
		case input.CommandQuit:
			p.quit()
			return
		}
	}
}

// check hands a failed source to halt and reports whether it has failed.
// A failed source also ends a pause.
func (p *pacer) check() bool {
	if p.broken {
		return true
	}
	f, ok := p.source.(input.Failer)
	if !ok {
		return false
	}
	err := f.Err()
	if err == nil {
		return false
	}
	p.broken = true
	if p.halt != nil {
		p.halt(fmt.Errorf("input: %w", err))
	}
	return true
}

// wait sleeps for d unless fast-forwarding or stopping.
func (p *pacer) wait(ctx context.Context, d time.Duration) {
	if d <= 0 || p.fast || p.stopped() {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
