package standings

import "errors"

var (
	ErrMissingTableEntry = errors.New("no table entry")
	ErrPublish           = errors.New("publish standings")
)
