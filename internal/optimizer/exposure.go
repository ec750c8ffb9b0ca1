package optimizer

import "sort"

// ExposureTracker counts how often each player has appeared across the
// accepted lineups of a run and derives the per-player ban list from
// the configured exposure cap.
type ExposureTracker struct {
	counts   map[int]int
	capCount int
}

// NewExposureTracker derives the appearance cap as floor of the
// exposure fraction times the run size.
func NewExposureTracker(cfg LineupConfig) *ExposureTracker {
	return &ExposureTracker{
		counts:   make(map[int]int),
		capCount: cfg.ExposureCapCount(),
	}
}

// Record counts one accepted lineup.
func (t *ExposureTracker) Record(playerIDs []int) {
	for _, id := range playerIDs {
		t.counts[id]++
	}
}

// Count returns the appearances recorded for one player.
func (t *ExposureTracker) Count(playerID int) int {
	return t.counts[playerID]
}

// CapCount returns the derived appearance cap.
func (t *ExposureTracker) CapCount() int {
	return t.capCount
}

// AtCap reports whether a player has hit the cap and must be pinned to
// zero in subsequent solves.
func (t *ExposureTracker) AtCap(playerID int) bool {
	return t.counts[playerID] >= t.capCount
}

// Banned returns the IDs currently at or over the cap.
func (t *ExposureTracker) Banned() []int {
	banned := make([]int, 0)
	for id, n := range t.counts {
		if n >= t.capCount {
			banned = append(banned, id)
		}
	}
	sort.Ints(banned)
	return banned
}

// Counts returns a copy of the per-player appearance counts.
func (t *ExposureTracker) Counts() map[int]int {
	out := make(map[int]int, len(t.counts))
	for id, n := range t.counts {
		out[id] = n
	}
	return out
}
