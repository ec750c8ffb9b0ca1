// Package report summarizes a finished portfolio: player and team
// exposure, QB stack shapes, pairwise uniqueness and any violations of
// the run's own settings.
package report

import (
	"fmt"
	"sort"

	"github.com/jstittsworth/nfl-lineup-optimizer/internal/optimizer"
	"github.com/jstittsworth/nfl-lineup-optimizer/internal/pool"
)

// PlayerExposure is one player's share of the accepted lineups.
type PlayerExposure struct {
	PlayerID    int     `json:"player_id"`
	PlayerName  string  `json:"player_name"`
	Position    string  `json:"position"`
	Team        string  `json:"team"`
	Count       int     `json:"count"`
	Percentage  float64 `json:"percentage"`
	MaxAllowed  float64 `json:"max_allowed"`
	IsViolation bool    `json:"is_violation"`
}

// TeamExposure is one team's total player-slot share across lineups.
type TeamExposure struct {
	Team       string  `json:"team"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// StackSummary describes one lineup's QB stack shape.
type StackSummary struct {
	LineupIndex  int    `json:"lineup_index"`
	QBName       string `json:"qb_name"`
	QBTeam       string `json:"qb_team"`
	StackSize    int    `json:"stack_size"`
	HasBringBack bool   `json:"has_bring_back"`
}

// Report is the full post-run analysis.
type Report struct {
	RunID            string           `json:"run_id"`
	TotalLineups     int              `json:"total_lineups"`
	PlayerExposures  []PlayerExposure `json:"player_exposures"`
	TeamExposures    []TeamExposure   `json:"team_exposures"`
	Stacks           []StackSummary   `json:"stacks"`
	MinUniquePlayers int              `json:"min_unique_players"`
	Violations       []string         `json:"violations"`
}

// Build analyzes an accepted portfolio against the settings that
// produced it. Violations here mean a bug upstream, not bad input.
func Build(p *pool.PlayerPool, portfolio *optimizer.Portfolio, cfg optimizer.LineupConfig) *Report {
	r := &Report{
		RunID:        portfolio.RunID,
		TotalLineups: len(portfolio.Lineups),
		Violations:   make([]string, 0),
	}
	if r.TotalLineups == 0 {
		return r
	}

	playerCount := make(map[int]int)
	teamCount := make(map[string]int)
	for _, lineup := range portfolio.Lineups {
		for _, id := range lineup.PlayerIDs {
			playerCount[id]++
			if pl, ok := p.Player(id); ok && pl.Team != "" {
				teamCount[pl.Team]++
			}
		}
	}

	capCount := cfg.ExposureCapCount()
	maxAllowed := cfg.MaxExposureFraction * 100
	for id, count := range playerCount {
		pl, ok := p.Player(id)
		if !ok {
			continue
		}
		pct := float64(count) / float64(r.TotalLineups) * 100
		// The generator bans a player as soon as the count reaches the
		// cap, so the cap itself is the highest legal count.
		violation := r.TotalLineups > 1 && count > capCount
		if violation {
			r.Violations = append(r.Violations,
				fmt.Sprintf("player %s appears %d times, cap is %d", pl.Name, count, capCount))
		}
		r.PlayerExposures = append(r.PlayerExposures, PlayerExposure{
			PlayerID:    id,
			PlayerName:  pl.Name,
			Position:    string(pl.Position),
			Team:        pl.Team,
			Count:       count,
			Percentage:  pct,
			MaxAllowed:  maxAllowed,
			IsViolation: violation,
		})
	}
	sort.Slice(r.PlayerExposures, func(i, j int) bool {
		if r.PlayerExposures[i].Count != r.PlayerExposures[j].Count {
			return r.PlayerExposures[i].Count > r.PlayerExposures[j].Count
		}
		return r.PlayerExposures[i].PlayerName < r.PlayerExposures[j].PlayerName
	})

	for team, count := range teamCount {
		r.TeamExposures = append(r.TeamExposures, TeamExposure{
			Team:       team,
			Count:      count,
			Percentage: float64(count) / float64(r.TotalLineups*optimizer.RosterSize) * 100,
		})
	}
	sort.Slice(r.TeamExposures, func(i, j int) bool {
		if r.TeamExposures[i].Count != r.TeamExposures[j].Count {
			return r.TeamExposures[i].Count > r.TeamExposures[j].Count
		}
		return r.TeamExposures[i].Team < r.TeamExposures[j].Team
	})

	r.Stacks = buildStacks(p, portfolio, cfg, r)
	r.MinUniquePlayers = minUnique(portfolio)
	if r.TotalLineups > 1 && cfg.UniquenessThreshold > 0 && r.MinUniquePlayers < cfg.UniquenessThreshold {
		r.Violations = append(r.Violations,
			fmt.Sprintf("lineup pair differs by only %d players, threshold is %d",
				r.MinUniquePlayers, cfg.UniquenessThreshold))
	}
	return r
}

func buildStacks(p *pool.PlayerPool, portfolio *optimizer.Portfolio, cfg optimizer.LineupConfig, r *Report) []StackSummary {
	stacks := make([]StackSummary, 0, len(portfolio.Lineups))
	for _, lineup := range portfolio.Lineups {
		var qb pool.Player
		for _, id := range lineup.PlayerIDs {
			if pl, ok := p.Player(id); ok && pl.Position == pool.QB {
				qb = pl
				break
			}
		}
		s := StackSummary{LineupIndex: lineup.Index, QBName: qb.Name, QBTeam: qb.Team}
		for _, id := range lineup.PlayerIDs {
			pl, ok := p.Player(id)
			if !ok || (pl.Position != pool.WR && pl.Position != pool.TE) {
				continue
			}
			if pl.Team == qb.Team {
				s.StackSize++
			}
			if pl.Team == qb.Opponent {
				s.HasBringBack = true
			}
		}
		if cfg.QBStackMin > 0 && s.StackSize < cfg.QBStackMin {
			r.Violations = append(r.Violations,
				fmt.Sprintf("lineup %d stacks %d with %s, minimum is %d",
					lineup.Index, s.StackSize, qb.Name, cfg.QBStackMin))
		}
		if cfg.BringBack && !s.HasBringBack {
			r.Violations = append(r.Violations,
				fmt.Sprintf("lineup %d has no bring-back against %s", lineup.Index, qb.Opponent))
		}
		stacks = append(stacks, s)
	}
	return stacks
}

// minUnique returns the smallest pairwise count of players in one
// lineup but not the other.
func minUnique(portfolio *optimizer.Portfolio) int {
	if len(portfolio.Lineups) < 2 {
		return optimizer.RosterSize
	}
	min := optimizer.RosterSize
	for i := 0; i < len(portfolio.Lineups); i++ {
		set := make(map[int]bool, optimizer.RosterSize)
		for _, id := range portfolio.Lineups[i].PlayerIDs {
			set[id] = true
		}
		for j := i + 1; j < len(portfolio.Lineups); j++ {
			unique := 0
			for _, id := range portfolio.Lineups[j].PlayerIDs {
				if !set[id] {
					unique++
				}
			}
			if unique < min {
				min = unique
			}
		}
	}
	return min
}
