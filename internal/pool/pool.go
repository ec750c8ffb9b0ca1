package pool

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/jstittsworth/nfl-lineup-optimizer/pkg/logger"
)

// Candidate is one raw input row, before validation and ID assignment.
// It mirrors the canonical projections table the entity-resolution side
// produces: name, position, team, opponent, salary, proj_points.
type Candidate struct {
	Name            string  `json:"name"`
	Position        string  `json:"position"`
	Team            string  `json:"team"`
	Opponent        string  `json:"opponent"`
	Salary          int     `json:"salary"`
	ProjectedPoints float64 `json:"proj_points"`

	// parseIssue marks a row whose numeric fields did not parse. The
	// CSV reader sets it so validation rejects the row instead of
	// letting a zero value stand in for the real number.
	parseIssue string
}

// RowIssue identifies one rejected input row.
type RowIssue struct {
	Row    int    `json:"row"`
	Name   string `json:"name,omitempty"`
	Reason string `json:"reason"`
}

// ValidationError is the fatal pool error: the surviving rows cannot form
// a usable pool. It carries every offending row.
type ValidationError struct {
	Issues []RowIssue
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 1 {
		return fmt.Sprintf("invalid player pool: row %d: %s", e.Issues[0].Row, e.Issues[0].Reason)
	}
	return fmt.Sprintf("invalid player pool: %d rows rejected (first: row %d: %s)",
		len(e.Issues), e.Issues[0].Row, e.Issues[0].Reason)
}

// LoadReport summarizes pool construction for the caller.
type LoadReport struct {
	Accepted int        `json:"accepted"`
	Filtered int        `json:"filtered"`
	Excluded int        `json:"excluded"`
	Issues   []RowIssue `json:"issues,omitempty"`
}

// PlayerPool is the validated, read-only candidate collection for one
// slate. Players are deduplicated and hold IDs 0..Len()-1.
type PlayerPool struct {
	players []Player
}

// NewPool validates candidates, drops rows that violate the input
// contract, deduplicates, assigns IDs, and returns the immutable pool.
// Names in exclude are dropped before validation, matching the
// optimizer's exclusion-list behavior. A pool with zero surviving rows
// is a *ValidationError.
func NewPool(candidates []Candidate, exclude []string) (*PlayerPool, *LoadReport, error) {
	log := logger.WithService("pool")

	excluded := make(map[string]bool, len(exclude))
	for _, name := range exclude {
		excluded[strings.TrimSpace(name)] = true
	}

	report := &LoadReport{}
	seen := make(map[string]bool)
	players := make([]Player, 0, len(candidates))

	for i, c := range candidates {
		if excluded[strings.TrimSpace(c.Name)] {
			report.Excluded++
			continue
		}

		if reason := validate(c); reason != "" {
			report.Filtered++
			report.Issues = append(report.Issues, RowIssue{Row: i, Name: c.Name, Reason: reason})
			continue
		}

		pos := NormalizePosition(c.Position)
		key := strings.ToUpper(strings.TrimSpace(c.Name)) + "|" + string(pos) + "|" + canonTeam(c.Team)
		if seen[key] {
			report.Filtered++
			report.Issues = append(report.Issues, RowIssue{Row: i, Name: c.Name, Reason: "duplicate player"})
			continue
		}
		seen[key] = true

		players = append(players, Player{
			ID:              len(players),
			Name:            strings.TrimSpace(c.Name),
			Position:        pos,
			Team:            canonTeam(c.Team),
			Opponent:        canonTeam(c.Opponent),
			Salary:          c.Salary,
			ProjectedPoints: c.ProjectedPoints,
		})
	}
	report.Accepted = len(players)

	if len(players) == 0 {
		issues := report.Issues
		if len(issues) == 0 {
			issues = []RowIssue{{Row: 0, Reason: "no input rows"}}
		}
		return nil, report, &ValidationError{Issues: issues}
	}

	log.WithFields(logrus.Fields{
		"accepted": report.Accepted,
		"filtered": report.Filtered,
		"excluded": report.Excluded,
	}).Info("Player pool constructed")

	return &PlayerPool{players: players}, report, nil
}

func validate(c Candidate) string {
	if c.parseIssue != "" {
		return c.parseIssue
	}
	if strings.TrimSpace(c.Name) == "" {
		return "missing name"
	}
	if strings.TrimSpace(c.Team) == "" {
		return "missing team"
	}
	if !NormalizePosition(c.Position).Valid() {
		return fmt.Sprintf("unknown position %q", c.Position)
	}
	if c.Salary <= 0 {
		return fmt.Sprintf("non-positive salary %d", c.Salary)
	}
	if c.ProjectedPoints < 0 {
		return fmt.Sprintf("negative projection %.2f", c.ProjectedPoints)
	}
	return ""
}

// Len returns the number of players in the pool.
func (pp *PlayerPool) Len() int {
	return len(pp.players)
}

// Players returns a copy of the pool's players.
func (pp *PlayerPool) Players() []Player {
	out := make([]Player, len(pp.players))
	copy(out, pp.players)
	return out
}

// Player returns the player with the given ID.
func (pp *PlayerPool) Player(id int) (Player, bool) {
	if id < 0 || id >= len(pp.players) {
		return Player{}, false
	}
	return pp.players[id], true
}

// CountByPosition returns how many pool players hold each position.
func (pp *PlayerPool) CountByPosition() map[Position]int {
	counts := make(map[Position]int)
	for _, p := range pp.players {
		counts[p.Position]++
	}
	return counts
}

// IDsByPosition returns the IDs of pool players at one position, in
// ID order.
func (pp *PlayerPool) IDsByPosition(pos Position) []int {
	ids := make([]int, 0)
	for _, p := range pp.players {
		if p.Position == pos {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

// Fingerprint hashes the pool contents for cache keying. Two pools
// built from the same surviving rows share a fingerprint.
func (pp *PlayerPool) Fingerprint() string {
	h := sha256.New()
	for _, p := range pp.players {
		fmt.Fprintf(h, "%d|%s|%s|%s|%s|%d|%.4f\n",
			p.ID, p.Name, p.Position, p.Team, p.Opponent, p.Salary, p.ProjectedPoints)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Teams returns the distinct team abbreviations present in the pool.
func (pp *PlayerPool) Teams() []string {
	seen := make(map[string]bool)
	teams := make([]string, 0)
	for _, p := range pp.players {
		if p.Team == "" || p.Team == unknownTeam || seen[p.Team] {
			continue
		}
		seen[p.Team] = true
		teams = append(teams, p.Team)
	}
	return teams
}
