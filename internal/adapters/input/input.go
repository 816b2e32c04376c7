// Package input supplies keystrokes to the simulation without ever blocking it.
//
// A Source holds at most one pending key. A newer key overwrites an unread
// one, and PollKey empties the slot.
package input

import (
	"sync"
)

// Source is polled by the simulation at human-visible intervals.
type Source interface {
	// PollKey returns the pending key, if any, and clears it.
	PollKey() (rune, bool)
	// Close releases the source.
	Close() error
}

// Failer is implemented by sources that can break while the simulation
// runs. Err stays nil while the source is healthy.
type Failer interface {
	Err() error
}

// Command is what a key asks the simulation to do.
type Command int

const (
	CommandNone Command = iota
	CommandPause
	CommandFastForward
	CommandQuit
)

const (
	keyEscape = 27
	keyEnter  = '\r'
	keyCtrlC  = 3
)

// Decode maps a key to a Command.
func Decode(r rune) Command {
	switch r {
	case 'p', 'P', ' ':
		return CommandPause
	case 'f', 'F', keyEnter, '\n':
		return CommandFastForward
	case 'q', 'Q', keyEscape, keyCtrlC:
		return CommandQuit
	default:
		return CommandNone
	}
}

func (c Command) String() string {
	switch c {
	case CommandPause:
		return "pause"
	case CommandFastForward:
		return "fast-forward"
	case CommandQuit:
		return "quit"
	default:
		return "none"
	}
}

// None never has a key.
type None struct{}

func (None) PollKey() (rune, bool) { return 0, false }
func (None) Close() error          { return nil }

// Script replays a fixed sequence, one entry per poll. A zero rune means no
// key on that poll. After the sequence the source stays silent.
type Script struct {
	mu   sync.Mutex
	keys []rune
	next int
	err  error
}

// NewScript creates a Script.
func NewScript(keys ...rune) *Script {
	return &Script{keys: keys}
}

func (s *Script) PollKey() (rune, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.next >= len(s.keys) {
		return 0, false
	}
	r := s.keys[s.next]
	s.next++
	return r, r != 0
}

func (s *Script) Close() error { return nil }

// Fail makes Err report err once the sequence has been played.
func (s *Script) Fail(err error) *Script {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
	return s
}

// Err implements Failer.
func (s *Script) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.next < len(s.keys) {
		return nil
	}
	return s.err
}

// Polls returns how many times PollKey has been called within the sequence.
func (s *Script) Polls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next
}
