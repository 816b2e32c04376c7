package bracket

import (
	"github.com/okian/sportlife/internal/domain/model"
)

// BasisPoints is the denominator of prize table entries.
const BasisPoints = 10_000

// Tables holds ranking points and prize shares indexed by depth, where depth
// 0 is the champion and 1 the runner-up. Prize entries are basis points of
// the tournament purse.
type Tables struct {
	Points []int
	Prize  []int
}

// PointsAt returns the points for depth.
func (t Tables) PointsAt(depth int) (int, bool) {
	if depth < 0 || depth >= len(t.Points) {
		return 0, false
	}
	return t.Points[depth], true
}

// PrizeAt returns the purse share for depth.
func (t Tables) PrizeAt(purse int64, depth int) (int64, bool) {
	if depth < 0 || depth >= len(t.Prize) {
		return 0, false
	}
	return purse * int64(t.Prize[depth]) / BasisPoints, true
}

// Covers reports whether both tables have an entry for depth.
func (t Tables) Covers(depth int) bool {
	return depth >= 0 && depth < len(t.Points) && depth < len(t.Prize)
}

// DefaultTables returns the built-in tables for a format.
func DefaultTables(f model.Format) Tables {
	switch f {
	case model.FormatChampionship:
		return Tables{
			Points: []int{1000, 600, 360, 180, 90, 45, 20, 10, 5, 2, 1, 0},
			Prize:  []int{2000, 1000, 500, 250, 120, 60, 30, 15, 8, 4, 2, 0},
		}
	case model.FormatSeeded:
		return Tables{
			Points: []int{500, 300, 180, 90, 45, 20, 10, 5, 2, 1, 0, 0},
			Prize:  []int{2200, 1100, 550, 280, 140, 70, 30, 15, 8, 4, 0, 0},
		}
	default:
		return Tables{
			Points: []int{250, 150, 90, 45, 20, 10, 5, 2, 1, 0, 0, 0},
			Prize:  []int{2500, 1250, 600, 300, 150, 75, 35, 15, 5, 0, 0, 0},
		}
	}
}
