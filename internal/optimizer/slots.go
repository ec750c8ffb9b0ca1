package optimizer

import (
	"fmt"
	"sort"

	"github.com/jstittsworth/nfl-lineup-optimizer/internal/pool"
)

// SlotOrder is the display order of a DraftKings classic NFL roster.
var SlotOrder = []string{"QB", "RB1", "RB2", "WR1", "WR2", "WR3", "TE", "FLEX", "DST"}

// SlotAssignment maps one roster slot to one selected player.
type SlotAssignment struct {
	Slot   string      `json:"slot"`
	Player pool.Player `json:"player"`
}

// AssignSlots maps a solver selection onto the nine display slots.
// Within a position, higher projections fill the numbered slots first;
// the leftover RB, WR or TE takes FLEX. The selection is assumed to
// satisfy the roster constraints, so any mismatch here is a bug in the
// model or solver rather than bad input.
func AssignSlots(p *pool.PlayerPool, playerIDs []int) ([]SlotAssignment, error) {
	if len(playerIDs) != RosterSize {
		return nil, fmt.Errorf("slot assignment got %d players, want %d", len(playerIDs), RosterSize)
	}

	byPos := make(map[pool.Position][]pool.Player)
	for _, id := range playerIDs {
		pl, ok := p.Player(id)
		if !ok {
			return nil, fmt.Errorf("slot assignment references unknown player id %d", id)
		}
		byPos[pl.Position] = append(byPos[pl.Position], pl)
	}
	for pos := range byPos {
		players := byPos[pos]
		sort.Slice(players, func(i, j int) bool {
			if players[i].ProjectedPoints != players[j].ProjectedPoints {
				return players[i].ProjectedPoints > players[j].ProjectedPoints
			}
			return players[i].ID < players[j].ID
		})
	}

	if len(byPos[pool.QB]) != 1 || len(byPos[pool.DST]) != 1 {
		return nil, fmt.Errorf("slot assignment needs exactly 1 QB and 1 DST, got %d/%d",
			len(byPos[pool.QB]), len(byPos[pool.DST]))
	}
	if len(byPos[pool.RB]) < MinRB || len(byPos[pool.WR]) < MinWR || len(byPos[pool.TE]) < MinTE {
		return nil, fmt.Errorf("slot assignment short on skill positions: %d RB, %d WR, %d TE",
			len(byPos[pool.RB]), len(byPos[pool.WR]), len(byPos[pool.TE]))
	}

	take := func(pos pool.Position) pool.Player {
		pl := byPos[pos][0]
		byPos[pos] = byPos[pos][1:]
		return pl
	}

	assignments := []SlotAssignment{
		{Slot: "QB", Player: take(pool.QB)},
		{Slot: "RB1", Player: take(pool.RB)},
		{Slot: "RB2", Player: take(pool.RB)},
		{Slot: "WR1", Player: take(pool.WR)},
		{Slot: "WR2", Player: take(pool.WR)},
		{Slot: "WR3", Player: take(pool.WR)},
		{Slot: "TE", Player: take(pool.TE)},
	}

	flex := append(byPos[pool.RB], byPos[pool.WR]...)
	flex = append(flex, byPos[pool.TE]...)
	if len(flex) != 1 {
		return nil, fmt.Errorf("slot assignment has %d FLEX candidates, want 1", len(flex))
	}
	assignments = append(assignments,
		SlotAssignment{Slot: "FLEX", Player: flex[0]},
		SlotAssignment{Slot: "DST", Player: take(pool.DST)},
	)
	return assignments, nil
}
