package identity

import "errors"

var (
	ErrUnknownCulture = errors.New("unknown name culture")
	ErrExhausted      = errors.New("no free name")
)
