package model

import (
	"fmt"
)

// TagKind discriminates the round tag variants.
type TagKind uint8

const (
	TagActive TagKind = iota
	TagEliminated
	TagRunnerUp
	TagChampion
)

// Depth of the two finalists. Everyone else is eliminated at depth 2 or more;
// the semi-finals are depth 2, quarter-finals 3, and every earlier round one
// deeper than the round after it.
const (
	ChampionDepth = 0
	RunnerUpDepth = 1
	SemiDepth     = 2
)

// Legacy integer encoding of the finalists.
const (
	legacyChampion = -6
	legacyRunnerUp = -5
)

// Tag is a competitor's position inside a running tournament. It is one of
// Active(slot), Eliminated(depth), RunnerUp or Champion. The zero value is
// Active(0), the idle slot.
type Tag struct {
	kind TagKind
	n    int
}

// Active returns the tag of a competitor still waiting in the given slot.
func Active(slot int) Tag { return Tag{kind: TagActive, n: slot} }

// Eliminated returns the terminal tag for the given depth. Depths 0 and 1
// collapse to Champion and RunnerUp.
func Eliminated(depth int) Tag {
	switch {
	case depth <= ChampionDepth:
		return Champion
	case depth == RunnerUpDepth:
		return RunnerUp
	default:
		return Tag{kind: TagEliminated, n: depth}
	}
}

// Finalist tags.
var (
	Champion = Tag{kind: TagChampion}
	RunnerUp = Tag{kind: TagRunnerUp, n: RunnerUpDepth}
)

// Kind returns the variant.
func (t Tag) Kind() TagKind { return t.kind }

// IsActive reports whether the competitor is still in the draw.
func (t Tag) IsActive() bool { return t.kind == TagActive }

// Slot returns the active slot, or -1 for terminal tags.
func (t Tag) Slot() int {
	if t.kind != TagActive {
		return -1
	}
	return t.n
}

// Depth returns the placing depth of a terminal tag. ok is false for active tags.
func (t Tag) Depth() (depth int, ok bool) {
	switch t.kind {
	case TagChampion:
		return ChampionDepth, true
	case TagRunnerUp:
		return RunnerUpDepth, true
	case TagEliminated:
		return t.n, true
	default:
		return 0, false
	}
}

// Legacy returns the historical integer encoding: non-negative slots for
// active tags, -6 champion, -5 runner-up, -4..-1 for depths 2..5 and
// -(depth+1) for deeper exits.
func (t Tag) Legacy() int {
	switch t.kind {
	case TagChampion:
		return legacyChampion
	case TagRunnerUp:
		return legacyRunnerUp
	case TagEliminated:
		if t.n <= 5 {
			return t.n - 6
		}
		return -(t.n + 1)
	default:
		return t.n
	}
}

// TagFromLegacy is the inverse of Tag.Legacy.
func TagFromLegacy(v int) Tag {
	switch {
	case v >= 0:
		return Active(v)
	case v == legacyChampion:
		return Champion
	case v == legacyRunnerUp:
		return RunnerUp
	case v > legacyRunnerUp:
		return Eliminated(v + 6)
	default:
		return Eliminated(-v - 1)
	}
}

func (t Tag) String() string {
	switch t.kind {
	case TagChampion:
		return "champion"
	case TagRunnerUp:
		return "runner-up"
	case TagEliminated:
		return fmt.Sprintf("out@%d", t.n)
	default:
		return fmt.Sprintf("active:%d", t.n)
	}
}

// MarshalText encodes the tag as its legacy integer so stored rosters stay
// readable by older tooling.
func (t Tag) MarshalText() ([]byte, error) {
	return []byte(fmt.Sprintf("%d", t.Legacy())), nil
}

// UnmarshalText decodes a legacy integer tag.
func (t *Tag) UnmarshalText(b []byte) error {
	var v int
	if _, err := fmt.Sscanf(string(b), "%d", &v); err != nil {
		return fmt.Errorf("decode tag %q: %w", b, err)
	}
	*t = TagFromLegacy(v)
	return nil
}
