package app

import "errors"

// Sentinel errors returned by the simulation.
var (
	// ErrStopped is returned once a quit was requested or the context ended.
	ErrStopped = errors.New("simulation stopped")
	// ErrHalted wraps the collaborator failure that halted the simulation.
	ErrHalted = errors.New("simulation halted")
	// ErrRosterMismatch is returned when a saved roster does not fit the configured pool.
	ErrRosterMismatch = errors.New("saved roster does not match pool size")
)
