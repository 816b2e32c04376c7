package input

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"unicode/utf8"

	"golang.org/x/term"
)

var _ Failer = (*Keyboard)(nil)

// Keyboard reads single keys from a raw-mode terminal on a background goroutine.
type Keyboard struct {
	fd    int
	state *term.State

	// slot holds the pending key plus one; zero is empty.
	slot atomic.Int64
	err  atomic.Pointer[error]

	closeOnce sync.Once
	closeErr  error
}

// NewKeyboard switches f into raw mode and starts reading from it. Close must
// be called on every exit path to restore the terminal.
func NewKeyboard(f *os.File) (*Keyboard, error) {
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return nil, ErrNotTerminal
	}
	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRawMode, err)
	}
	k := &Keyboard{fd: fd, state: state}
	go k.read(f)
	return k, nil
}

func (k *Keyboard) read(r io.Reader) {
	buf := make([]byte, utf8.UTFMax)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			key, _ := utf8.DecodeRune(buf[:n])
			k.slot.Store(int64(key) + 1)
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, os.ErrClosed) {
				k.err.Store(&err)
			}
			return
		}
	}
}

// PollKey returns the last key pressed since the previous poll.
func (k *Keyboard) PollKey() (rune, bool) {
	v := k.slot.Swap(0)
	if v == 0 {
		return 0, false
	}
	return rune(v - 1), true
}

// Err reports a read failure, if the reader goroutine hit one.
func (k *Keyboard) Err() error {
	if p := k.err.Load(); p != nil {
		return *p
	}
	return nil
}

// Close restores the terminal. The reader goroutine ends with the process.
func (k *Keyboard) Close() error {
	k.closeOnce.Do(func() {
		if err := term.Restore(k.fd, k.state); err != nil {
			k.closeErr = fmt.Errorf("restore terminal: %w", err)
		}
	})
	return k.closeErr
}
