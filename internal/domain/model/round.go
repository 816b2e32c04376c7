package model

import "fmt"

// RoundInstruction is one step of a bracket program: play Matches matches,
// each between a competitor tagged Home and one tagged Away, first to RaceTo
// points. Winners are tagged Win and losers Lose.
type RoundInstruction struct {
	Label   string
	Home    Tag
	Away    Tag
	Win     Tag
	Lose    Tag
	Matches int
	RaceTo  int
}

func (r RoundInstruction) String() string {
	return fmt.Sprintf("%s: %d x [%s v %s] -> %s / %s, race to %d",
		r.Label, r.Matches, r.Home, r.Away, r.Win, r.Lose, r.RaceTo)
}
