package roster

import "errors"

var (
	ErrNotFound      = errors.New("no saved roster")
	ErrUnknownDriver = errors.New("unknown roster driver")
	ErrCorrupt       = errors.New("corrupt roster")
)
