package match

import "errors"

var (
	ErrInvalidSkill      = errors.New("skill must be positive")
	ErrInvalidRace       = errors.New("race length must be at least 1")
	ErrMissingCompetitor = errors.New("match needs two competitors")
)
