package pool

import "fmt"

// Position is a DraftKings classic NFL roster position.
type Position string

const (
	QB  Position = "QB"
	RB  Position = "RB"
	WR  Position = "WR"
	TE  Position = "TE"
	DST Position = "DST"
)

// FlexEligible reports whether the position can fill the FLEX slot.
func (p Position) FlexEligible() bool {
	return p == RB || p == WR || p == TE
}

// Valid reports whether the position is one the optimizer handles.
func (p Position) Valid() bool {
	switch p {
	case QB, RB, WR, TE, DST:
		return true
	}
	return false
}

// Player is one candidate in the pool. The ID is assigned at pool
// construction and is stable for the duration of a run.
type Player struct {
	ID              int      `json:"id"`
	Name            string   `json:"name"`
	Position        Position `json:"position"`
	Team            string   `json:"team"`
	Opponent        string   `json:"opponent"`
	Salary          int      `json:"salary"`
	ProjectedPoints float64  `json:"projected_points"`
}

// Value returns projected points per $1000 of salary.
func (p Player) Value() float64 {
	return p.ProjectedPoints / (float64(p.Salary) / 1000.0)
}

func (p Player) String() string {
	return fmt.Sprintf("%s %s (%s) $%d %.1fpts", p.Position, p.Name, p.Team, p.Salary, p.ProjectedPoints)
}
