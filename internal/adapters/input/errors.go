package input

import "errors"

var (
	ErrNotTerminal = errors.New("input is not a terminal")
	ErrRawMode     = errors.New("cannot enter raw mode")
)
