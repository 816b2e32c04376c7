// Package bracket builds, validates and runs elimination tournaments.
//
// A tournament is a Program: an ordered list of round instructions over
// round tags. Entry assigns every competitor a starting tag; each
// instruction pairs competitors by tag and retags winners and losers.
// Programs are data, so the same executor runs every format.
package bracket

import (
	"fmt"

	"github.com/okian/sportlife/internal/domain/model"
)

// Slots used by entry and by the generated programs.
const (
	SeedCount    = 16
	SlotTier2    = 50
	SlotUnseeded = 100

	tier2Size     = 16
	mainDrawSize  = 32
	slotLadder    = 101
	slotQualified = 199
	slotSection   = 200
	slotLast16    = 300
	slotQuarter   = 400
	slotSemi      = 500
	slotOpenDraw  = 600

	minOpenPool         = mainDrawSize
	minSeededPool       = SeedCount * 2
	minChampionshipPool = SeedCount + tier2Size + SeedCount
)

// Depths of the main draw.
const (
	depthLast32  = 5
	depthLast16  = 4
	depthQuarter = 3
)

// bracketOrder pairs seeds at the last 16 so that the top two seeds can
// only meet in the final and the top four only in the semi-finals.
var bracketOrder = [8][2]int{
	{1, 16}, {8, 9}, {4, 13}, {5, 12},
	{2, 15}, {7, 10}, {3, 14}, {6, 11},
}

// Races holds the race length for each stage of a format.
type Races struct {
	Qualifying int
	MainDraw   int
	Semi       int
	Final      int
}

// DefaultRaces returns the built-in race lengths for a format.
func DefaultRaces(f model.Format) Races {
	switch f {
	case model.FormatChampionship:
		return Races{Qualifying: 4, MainDraw: 6, Semi: 8, Final: 10}
	case model.FormatSeeded:
		return Races{Qualifying: 3, MainDraw: 4, Semi: 5, Final: 6}
	default:
		return Races{Qualifying: 2, MainDraw: 3, Semi: 3, Final: 4}
	}
}

// Program is the full instruction list of one format for one pool size.
type Program struct {
	Format   model.Format
	PoolSize int
	Rounds   []model.RoundInstruction
}

// EntryCounts returns how many competitors start on each tag.
func EntryCounts(f model.Format, poolSize int) map[model.Tag]int {
	counts := map[model.Tag]int{}
	switch f {
	case model.FormatOpen:
		counts[model.Active(SlotUnseeded)] = poolSize
	case model.FormatSeeded:
		for k := 1; k <= SeedCount && k <= poolSize; k++ {
			counts[model.Active(k)] = 1
		}
		if rest := poolSize - SeedCount; rest > 0 {
			counts[model.Active(SlotUnseeded)] = rest
		}
	case model.FormatChampionship:
		for k := 1; k <= SeedCount && k <= poolSize; k++ {
			counts[model.Active(k)] = 1
		}
		if t2 := min(tier2Size, poolSize-SeedCount); t2 > 0 {
			counts[model.Active(SlotTier2)] = t2
		}
		if rest := poolSize - SeedCount - tier2Size; rest > 0 {
			counts[model.Active(SlotUnseeded)] = rest
		}
	}
	return counts
}

// Build returns the program for format f and a pool of poolSize.
func Build(f model.Format, poolSize int, races Races) (Program, error) {
	switch f {
	case model.FormatOpen:
		return OpenProgram(poolSize, races)
	case model.FormatSeeded:
		return SeededProgram(poolSize, races)
	case model.FormatChampionship:
		return ChampionshipProgram(poolSize, races)
	default:
		return Program{}, fmt.Errorf("%w: %s", ErrUnknownFormat, f)
	}
}

// OpenProgram: the whole pool enters unseeded, a qualifying ladder cuts it
// to 32 and a random draw plays down to the final.
func OpenProgram(poolSize int, races Races) (Program, error) {
	if poolSize < minOpenPool {
		return Program{}, fmt.Errorf("%w: open needs %d, have %d", ErrPoolTooSmall, minOpenPool, poolSize)
	}
	b := &builder{races: races}
	field := b.ladder([]group{{tag: model.Active(SlotUnseeded), n: poolSize}}, mainDrawSize, depthLast32)

	b.pairUp("Round of 32", field, mainDrawSize/2, model.Active(slotOpenDraw), model.Eliminated(depthLast32), races.MainDraw)
	tag := model.Active(slotOpenDraw)
	for n, depth := mainDrawSize/2, depthLast16; n > 2; n, depth = n/2, depth-1 {
		next := model.Active(slotOpenDraw + depthLast32 - depth + 1)
		race := races.MainDraw
		if depth == model.SemiDepth {
			race = races.Semi
		}
		b.add(stageLabel(depth), tag, tag, next, model.Eliminated(depth), n/2, race)
		tag = next
	}
	b.add("Final", tag, tag, model.Champion, model.RunnerUp, 1, races.Final)
	return Program{Format: model.FormatOpen, PoolSize: poolSize, Rounds: b.rounds}, nil
}

// SeededProgram: the top 16 by points are seeded into fixed bracket
// sections; everyone else qualifies through a ladder for the 16 places
// against them.
func SeededProgram(poolSize int, races Races) (Program, error) {
	if poolSize < minSeededPool {
		return Program{}, fmt.Errorf("%w: seeded needs %d, have %d", ErrPoolTooSmall, minSeededPool, poolSize)
	}
	b := &builder{races: races}
	field := b.ladder([]group{{tag: model.Active(SlotUnseeded), n: poolSize - SeedCount}}, SeedCount, depthLast32)
	b.mainDraw(field)
	return Program{Format: model.FormatSeeded, PoolSize: poolSize, Rounds: b.rounds}, nil
}

// ChampionshipProgram is the seeded layout with a second tier: ranks 17-32
// skip the ladder and meet its survivors in the final qualifying round.
func ChampionshipProgram(poolSize int, races Races) (Program, error) {
	if poolSize < minChampionshipPool {
		return Program{}, fmt.Errorf("%w: championship needs %d, have %d", ErrPoolTooSmall, minChampionshipPool, poolSize)
	}
	b := &builder{races: races}
	const depthFinalQualifying = depthLast32 + 1
	field := b.ladder(
		[]group{{tag: model.Active(SlotUnseeded), n: poolSize - SeedCount - tier2Size}},
		tier2Size, depthFinalQualifying,
	)
	qualified := model.Active(slotQualified)
	for _, g := range field {
		b.add("Final qualifying", model.Active(SlotTier2), g.tag, qualified, model.Eliminated(depthFinalQualifying), g.n, races.Qualifying)
	}
	b.mainDraw([]group{{tag: qualified, n: SeedCount}})
	return Program{Format: model.FormatChampionship, PoolSize: poolSize, Rounds: b.rounds}, nil
}

// group is a number of competitors sharing a tag.
type group struct {
	tag model.Tag
	n   int
}

type builder struct {
	races  Races
	rounds []model.RoundInstruction
}

func (b *builder) add(label string, home, away, win, lose model.Tag, matches, race int) {
	if matches <= 0 {
		return
	}
	b.rounds = append(b.rounds, model.RoundInstruction{
		Label: label, Home: home, Away: away, Win: win, Lose: lose, Matches: matches, RaceTo: race,
	})
}

// ladder cuts the field down to target survivors. Each round plays
// min(total-target, total/2) matches; the last round's losers go out at
// base+1 and every earlier round one deeper. It returns the surviving groups.
func (b *builder) ladder(field []group, target, base int) []group {
	total := 0
	for _, g := range field {
		total += g.n
	}

	var plan []int
	for p := total; p > target; {
		m := min(p-target, p/2)
		plan = append(plan, m)
		p -= m
	}

	for i, m := range plan {
		depth := base + len(plan) - i
		label := fmt.Sprintf("Qualifying %d", i+1)
		field = b.pairUp(label, field, m, model.Active(slotLadder+i), model.Eliminated(depth), b.races.Qualifying)
	}
	return field
}

// pairUp plays matches pairs out of field, pairing inside each group first
// and crossing groups for the odd ones out. Unplayed competitors keep their
// tags; winners join a new group tagged win.
func (b *builder) pairUp(label string, field []group, matches int, win, lose model.Tag, race int) []group {
	left := make([]group, len(field))
	copy(left, field)

	played := 0
	for i := range left {
		pairs := min(left[i].n/2, matches-played)
		b.add(label, left[i].tag, left[i].tag, win, lose, pairs, race)
		left[i].n -= 2 * pairs
		played += pairs
	}
	for i := 0; i < len(left) && played < matches; i++ {
		for j := i + 1; j < len(left) && played < matches && left[i].n > 0; j++ {
			pairs := min(left[i].n, left[j].n, matches-played)
			b.add(label, left[i].tag, left[j].tag, win, lose, pairs, race)
			left[i].n -= pairs
			left[j].n -= pairs
			played += pairs
		}
	}

	var out []group
	for _, g := range left {
		if g.n > 0 {
			out = append(out, g)
		}
	}
	return append(out, group{tag: win, n: played})
}

// mainDraw seeds 1..16 against the qualifiers, then plays the fixed bracket
// down to the final.
func (b *builder) mainDraw(qualifiers []group) {
	r := b.races
	q := 0
	for seed := 1; seed <= SeedCount; seed++ {
		for qualifiers[q].n == 0 {
			q++
		}
		b.add(stageLabel(depthLast32), model.Active(seed), qualifiers[q].tag,
			model.Active(slotSection+seed), model.Eliminated(depthLast32), 1, r.MainDraw)
		qualifiers[q].n--
	}
	for i, pair := range bracketOrder {
		b.add(stageLabel(depthLast16), model.Active(slotSection+pair[0]), model.Active(slotSection+pair[1]),
			model.Active(slotLast16+i), model.Eliminated(depthLast16), 1, r.MainDraw)
	}
	for i := 0; i < 4; i++ {
		b.add(stageLabel(depthQuarter), model.Active(slotLast16+2*i), model.Active(slotLast16+2*i+1),
			model.Active(slotQuarter+i), model.Eliminated(depthQuarter), 1, r.MainDraw)
	}
	for i := 0; i < 2; i++ {
		b.add(stageLabel(model.SemiDepth), model.Active(slotQuarter+2*i), model.Active(slotQuarter+2*i+1),
			model.Active(slotSemi+i), model.Eliminated(model.SemiDepth), 1, r.Semi)
	}
	b.add("Final", model.Active(slotSemi), model.Active(slotSemi+1), model.Champion, model.RunnerUp, 1, r.Final)
}

func stageLabel(depth int) string {
	switch depth {
	case model.SemiDepth:
		return "Semi-finals"
	case depthQuarter:
		return "Quarter-finals"
	case depthLast16:
		return "Round of 16"
	case depthLast32:
		return "Round of 32"
	default:
		return fmt.Sprintf("Depth %d", depth)
	}
}
