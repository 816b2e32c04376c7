package bracket

import (
	"fmt"

	"github.com/okian/sportlife/internal/domain/model"
)

// Validate replays program against the entry counts without playing any
// match. It fails if an instruction could draw from an empty population, if
// a reachable depth has no table entry, or if the program does not end with
// exactly one champion and one runner-up.
func Validate(p Program, entry map[model.Tag]int, tables Tables) error {
	counts := make(map[model.Tag]int, len(entry))
	for tag, n := range entry {
		counts[tag] = n
	}

	for i, in := range p.Rounds {
		if in.Matches < 1 || in.RaceTo < 1 {
			return fmt.Errorf("%w: round %d (%s)", ErrInvalidRound, i, in)
		}
		if in.Win == in.Lose {
			return fmt.Errorf("%w: round %d retags winners and losers alike", ErrInvalidRound, i)
		}
		if in.Home == in.Win || in.Away == in.Win {
			return fmt.Errorf("%w: round %d retags winners to a drawing tag", ErrInvalidRound, i)
		}
		for m := 0; m < in.Matches; m++ {
			if counts[in.Home] < 1 {
				return fmt.Errorf("%w: round %d (%s) match %d has no home %s", ErrUnreachable, i, in.Label, m+1, in.Home)
			}
			counts[in.Home]--
			counts[in.Win]++
			if counts[in.Away] < 1 {
				return fmt.Errorf("%w: round %d (%s) match %d has no away %s", ErrUnreachable, i, in.Label, m+1, in.Away)
			}
			counts[in.Away]--
			counts[in.Lose]++
		}
		if depth, ok := in.Lose.Depth(); ok && !tables.Covers(depth) {
			return fmt.Errorf("%w: depth %d in round %d", ErrMissingTableEntry, depth, i)
		}
		if depth, ok := in.Win.Depth(); ok && !tables.Covers(depth) {
			return fmt.Errorf("%w: depth %d in round %d", ErrMissingTableEntry, depth, i)
		}
	}

	if counts[model.Champion] != 1 || counts[model.RunnerUp] != 1 {
		return fmt.Errorf("%w: %d champions, %d runners-up", ErrNoChampion, counts[model.Champion], counts[model.RunnerUp])
	}
	return nil
}
