package bracket

import (
	"errors"
)

// Sentinel error kinds for bracket programs and their execution.
var (
	ErrEmptyPool         = errors.New("pool is empty")
	ErrEmptyPopulation   = errors.New("no competitor carries the requested tag")
	ErrUnreachable       = errors.New("program draws from an empty population")
	ErrMissingTableEntry = errors.New("points or prize table has no entry for a reachable depth")
	ErrNoChampion        = errors.New("program does not produce exactly one champion and one runner-up")
	ErrInvalidRound      = errors.New("invalid round instruction")
	ErrPoolTooSmall      = errors.New("pool too small for format")
	ErrPoolSize          = errors.New("pool size does not match program")
	ErrInterrupted       = errors.New("tournament interrupted")
	ErrUnknownFormat     = errors.New("no program for format")
)
