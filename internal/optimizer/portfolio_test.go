package optimizer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jstittsworth/nfl-lineup-optimizer/internal/pool"
)

func TestGenerateSingleLineup(t *testing.T) {
	p := slatePool(t)
	cfg := relaxedConfig()
	cfg.NumLineups = 1

	gen, err := NewGenerator(p, cfg)
	require.NoError(t, err)

	portfolio, err := gen.Generate(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, portfolio.RunID)
	require.Len(t, portfolio.Lineups, 1)
	assert.Equal(t, 1, portfolio.Summary.Requested)
	assert.Equal(t, 1, portfolio.Summary.Accepted)
	assert.Zero(t, portfolio.Summary.Skipped)

	lineup := portfolio.Lineups[0]
	assert.Len(t, lineup.Assignments, RosterSize)
	assert.LessOrEqual(t, lineup.TotalSalary, cfg.SalaryCap)
	assert.InDelta(t, lineup.Objective, lineup.TotalProjected, 1e-9,
		"single mode solves on base projections")
}

func TestGenerateSingleLineupFailureIsTerminal(t *testing.T) {
	p := slatePool(t)
	cfg := relaxedConfig()
	cfg.NumLineups = 1
	cfg.SalaryCap = 10000

	gen, err := NewGenerator(p, cfg)
	require.NoError(t, err)

	_, err = gen.Generate(context.Background())
	require.Error(t, err)
	assert.True(t, IsInfeasible(err))
}

func TestGeneratePortfolioHonorsUniqueness(t *testing.T) {
	p := slatePool(t)
	cfg := relaxedConfig()
	cfg.NumLineups = 4
	cfg.UniquenessThreshold = 2
	cfg.Seed = 7

	gen, err := NewGenerator(p, cfg)
	require.NoError(t, err)

	portfolio, err := gen.Generate(context.Background())
	require.NoError(t, err)
	require.GreaterOrEqual(t, portfolio.Summary.Accepted, 2)

	for i := 0; i < len(portfolio.Lineups); i++ {
		set := make(map[int]bool)
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
			assert.GreaterOrEqual(t, unique, 2,
				"lineups %d and %d overlap too much", i+1, j+1)
		}
	}
}

func TestGeneratePortfolioHonorsExposureCap(t *testing.T) {
	p := slatePool(t)
	cfg := relaxedConfig()
	cfg.NumLineups = 5
	cfg.MaxExposureFraction = 0.4 // cap = floor(0.4*5) = 2
	cfg.UniquenessThreshold = 1
	cfg.Seed = 11

	gen, err := NewGenerator(p, cfg)
	require.NoError(t, err)

	portfolio, err := gen.Generate(context.Background())
	require.NoError(t, err)

	counts := make(map[int]int)
	for _, lineup := range portfolio.Lineups {
		for _, id := range lineup.PlayerIDs {
			counts[id]++
		}
	}
	for id, count := range counts {
		// The ban kicks in the moment a player's count reaches the cap,
		// so no player may ever exceed it.
		assert.LessOrEqual(t, count, cfg.ExposureCapCount(), "player %d over-exposed", id)
	}
}

func TestGeneratePortfolioIsReproducibleWithSeed(t *testing.T) {
	p := slatePool(t)
	cfg := relaxedConfig()
	cfg.NumLineups = 3
	cfg.RandomnessAmplitude = 0.1
	cfg.Seed = 42

	run := func() [][]int {
		gen, err := NewGenerator(p, cfg)
		require.NoError(t, err)
		portfolio, err := gen.Generate(context.Background())
		require.NoError(t, err)
		ids := make([][]int, len(portfolio.Lineups))
		for i, l := range portfolio.Lineups {
			ids[i] = l.PlayerIDs
		}
		return ids
	}

	assert.Equal(t, run(), run())
}

// minimalPool holds exactly one valid roster: nine players whose
// salaries sum to 47000, with a single QB and DST.
func minimalPool(t *testing.T) *pool.PlayerPool {
	t.Helper()
	candidates := []pool.Candidate{
		{Name: "Patrick Mahomes", Position: "QB", Team: "KC", Opponent: "BUF", Salary: 7000, ProjectedPoints: 24.1},
		{Name: "Isiah Pacheco", Position: "RB", Team: "KC", Opponent: "BUF", Salary: 5200, ProjectedPoints: 15.2},
		{Name: "James Cook", Position: "RB", Team: "BUF", Opponent: "KC", Salary: 5600, ProjectedPoints: 16.4},
		{Name: "Rashee Rice", Position: "WR", Team: "KC", Opponent: "BUF", Salary: 5400, ProjectedPoints: 16.1},
		{Name: "Stefon Diggs", Position: "WR", Team: "BUF", Opponent: "KC", Salary: 6600, ProjectedPoints: 18.3},
		{Name: "Gabe Davis", Position: "WR", Team: "BUF", Opponent: "KC", Salary: 4300, ProjectedPoints: 9.8},
		{Name: "Khalil Shakir", Position: "WR", Team: "BUF", Opponent: "KC", Salary: 3800, ProjectedPoints: 8.1},
		{Name: "Travis Kelce", Position: "TE", Team: "KC", Opponent: "BUF", Salary: 6200, ProjectedPoints: 17.6},
		{Name: "Bills", Position: "DST", Team: "BUF", Opponent: "KC", Salary: 2900, ProjectedPoints: 6.8},
	}
	p, _, err := pool.NewPool(candidates, nil)
	require.NoError(t, err)
	return p
}

func TestGenerateMinimalPoolUsesEveryPlayer(t *testing.T) {
	p := minimalPool(t)
	cfg := relaxedConfig()
	cfg.NumLineups = 1
	cfg.MaxPerTeam = 6

	gen, err := NewGenerator(p, cfg)
	require.NoError(t, err)

	portfolio, err := gen.Generate(context.Background())
	require.NoError(t, err)
	require.Len(t, portfolio.Lineups, 1)
	assert.ElementsMatch(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8}, portfolio.Lineups[0].PlayerIDs)
}

func TestGenerateInfeasibleWhenFloorUnreachable(t *testing.T) {
	p := minimalPool(t)
	cfg := relaxedConfig()
	cfg.NumLineups = 1
	cfg.MaxPerTeam = 6
	cfg.MinSalary = 48000 // the only roster sums to 47000

	gen, err := NewGenerator(p, cfg)
	require.NoError(t, err)

	_, err = gen.Generate(context.Background())
	require.Error(t, err)
	assert.True(t, IsInfeasible(err))
}

func TestGeneratePortfolioContinuesPastFailures(t *testing.T) {
	// The first lineup uses everyone available, so a high uniqueness
	// threshold makes every later iteration infeasible.
	p := minimalPool(t)

	cfg := relaxedConfig()
	cfg.NumLineups = 3
	cfg.UniquenessThreshold = 2
	cfg.MaxPerTeam = 6
	cfg.MaxExposureFraction = 1.0
	cfg.RandomnessAmplitude = 0

	gen, err := NewGenerator(p, cfg)
	require.NoError(t, err)

	portfolio, err := gen.Generate(context.Background())
	require.NoError(t, err, "a failed iteration must not sink the run")
	assert.Equal(t, 1, portfolio.Summary.Accepted)
	assert.Equal(t, 2, portfolio.Summary.Skipped)
	require.Len(t, portfolio.Summary.Failures, 2)
	for _, f := range portfolio.Summary.Failures {
		assert.Contains(t, f.Reason, "infeasible")
	}
}

func TestGenerateRejectsInvalidConfig(t *testing.T) {
	p := slatePool(t)
	cfg := relaxedConfig()
	cfg.NumLineups = 2
	cfg.MaxExposureFraction = 0.1 // floor(0.1*2) = 0

	_, err := NewGenerator(p, cfg)
	require.Error(t, err)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "max_exposure_fraction", cfgErr.Field)
}

func TestExposureTracker(t *testing.T) {
	cfg := relaxedConfig()
	cfg.NumLineups = 10
	cfg.MaxExposureFraction = 0.25 // cap = 2

	tracker := NewExposureTracker(cfg)
	assert.Equal(t, 2, tracker.CapCount())
	assert.Empty(t, tracker.Banned())

	tracker.Record([]int{1, 2, 3})
	tracker.Record([]int{1, 2, 4})
	assert.Equal(t, 2, tracker.Count(1))
	assert.True(t, tracker.AtCap(1))
	assert.False(t, tracker.AtCap(3))
	assert.Equal(t, []int{1, 2}, tracker.Banned())

	counts := tracker.Counts()
	counts[1] = 99
	assert.Equal(t, 2, tracker.Count(1), "Counts must return a copy")
}

func TestNoiseRedrawsFromBaseEachIteration(t *testing.T) {
	p := slatePool(t)
	players := p.Players()
	ns := NewNoiseSource(0.2, 99)

	first := ns.Perturb(players)
	second := ns.Perturb(players)
	require.Len(t, first, len(players))

	for i, pl := range players {
		assert.GreaterOrEqual(t, first[i], 0.0)
		assert.InDelta(t, pl.ProjectedPoints, first[i], pl.ProjectedPoints*2+5,
			"noise should stay anchored to the base projection")
	}
	assert.NotEqual(t, first, second, "independent draws should differ")

	// The base projections never move.
	for i, pl := range p.Players() {
		assert.Equal(t, players[i].ProjectedPoints, pl.ProjectedPoints)
	}
}

func TestZeroAmplitudeLeavesProjectionsAlone(t *testing.T) {
	p := slatePool(t)
	players := p.Players()
	ns := NewNoiseSource(0, 1)

	out := ns.Perturb(players)
	for i, pl := range players {
		assert.Equal(t, pl.ProjectedPoints, out[i])
	}
}
