package report

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jstittsworth/nfl-lineup-optimizer/internal/optimizer"
	"github.com/jstittsworth/nfl-lineup-optimizer/internal/pool"
)

func reportFixture(t *testing.T, numLineups int) (*pool.PlayerPool, *optimizer.Portfolio, optimizer.LineupConfig) {
	t.Helper()
	candidates := []pool.Candidate{
		{Name: "Patrick Mahomes", Position: "QB", Team: "KC", Opponent: "BUF", Salary: 8200, ProjectedPoints: 24.1},
		{Name: "Josh Allen", Position: "QB", Team: "BUF", Opponent: "KC", Salary: 8400, ProjectedPoints: 25.3},
		{Name: "Christian McCaffrey", Position: "RB", Team: "SF", Opponent: "SEA", Salary: 9200, ProjectedPoints: 24.8},
		{Name: "Isiah Pacheco", Position: "RB", Team: "KC", Opponent: "BUF", Salary: 5800, ProjectedPoints: 15.2},
		{Name: "James Cook", Position: "RB", Team: "BUF", Opponent: "KC", Salary: 5900, ProjectedPoints: 16.4},
		{Name: "Tony Pollard", Position: "RB", Team: "DAL", Opponent: "PHI", Salary: 4800, ProjectedPoints: 12.9},
		{Name: "Rashee Rice", Position: "WR", Team: "KC", Opponent: "BUF", Salary: 5700, ProjectedPoints: 16.1},
		{Name: "Stefon Diggs", Position: "WR", Team: "BUF", Opponent: "KC", Salary: 7600, ProjectedPoints: 18.3},
		{Name: "CeeDee Lamb", Position: "WR", Team: "DAL", Opponent: "PHI", Salary: 8300, ProjectedPoints: 19.8},
		{Name: "DK Metcalf", Position: "WR", Team: "SEA", Opponent: "SF", Salary: 5600, ProjectedPoints: 14.2},
		{Name: "Gabe Davis", Position: "WR", Team: "BUF", Opponent: "KC", Salary: 4000, ProjectedPoints: 9.8},
		{Name: "Travis Kelce", Position: "TE", Team: "KC", Opponent: "BUF", Salary: 7200, ProjectedPoints: 17.6},
		{Name: "Dalton Kincaid", Position: "TE", Team: "BUF", Opponent: "KC", Salary: 3900, ProjectedPoints: 8.9},
		{Name: "49ers", Position: "DST", Team: "SF", Opponent: "SEA", Salary: 3000, ProjectedPoints: 9.0},
		{Name: "Cowboys", Position: "DST", Team: "DAL", Opponent: "PHI", Salary: 2800, ProjectedPoints: 7.5},
	}
	p, _, err := pool.NewPool(candidates, nil)
	require.NoError(t, err)

	cfg := optimizer.DefaultConfig()
	cfg.MinSalary = 0
	cfg.QBStackMin = 1
	cfg.RandomnessAmplitude = 0
	cfg.NumLineups = numLineups
	cfg.UniquenessThreshold = 1
	cfg.MaxExposureFraction = 1.0

	gen, err := optimizer.NewGenerator(p, cfg)
	require.NoError(t, err)
	portfolio, err := gen.Generate(context.Background())
	require.NoError(t, err)
	return p, portfolio, cfg
}

func TestBuildReportCountsExposure(t *testing.T) {
	p, portfolio, cfg := reportFixture(t, 3)
	r := Build(p, portfolio, cfg)

	assert.Equal(t, portfolio.RunID, r.RunID)
	assert.Equal(t, len(portfolio.Lineups), r.TotalLineups)
	require.NotEmpty(t, r.PlayerExposures)

	total := 0
	for _, pe := range r.PlayerExposures {
		total += pe.Count
		assert.Greater(t, pe.Percentage, 0.0)
	}
	assert.Equal(t, r.TotalLineups*optimizer.RosterSize, total)

	// Descending by count.
	for i := 1; i < len(r.PlayerExposures); i++ {
		assert.GreaterOrEqual(t, r.PlayerExposures[i-1].Count, r.PlayerExposures[i].Count)
	}
}

func TestBuildReportStacks(t *testing.T) {
	p, portfolio, cfg := reportFixture(t, 2)
	r := Build(p, portfolio, cfg)

	require.Len(t, r.Stacks, len(portfolio.Lineups))
	for _, s := range r.Stacks {
		assert.NotEmpty(t, s.QBName)
		assert.GreaterOrEqual(t, s.StackSize, cfg.QBStackMin,
			"lineup %d under-stacked", s.LineupIndex)
	}
	assert.Empty(t, r.Violations, "a clean run must produce no violations")
}

func TestBuildReportUniqueness(t *testing.T) {
	p, portfolio, cfg := reportFixture(t, 3)
	r := Build(p, portfolio, cfg)
	if len(portfolio.Lineups) > 1 {
		assert.GreaterOrEqual(t, r.MinUniquePlayers, cfg.UniquenessThreshold)
	}
}

func TestBuildReportEmptyPortfolio(t *testing.T) {
	p, _, _ := reportFixture(t, 2)
	r := Build(p, &optimizer.Portfolio{RunID: "empty"}, optimizer.DefaultConfig())
	assert.Zero(t, r.TotalLineups)
	assert.Empty(t, r.PlayerExposures)
	assert.Empty(t, r.Violations)
}

func TestBuildReportFlagsExposureOverCap(t *testing.T) {
	p, portfolio, cfg := reportFixture(t, 1)
	require.Len(t, portfolio.Lineups, 1)

	// Replay one lineup three times under cap floor(0.4*5)=2: every
	// player sits one appearance over the cap.
	cfg.NumLineups = 5
	cfg.MaxExposureFraction = 0.4
	lineups := make([]*optimizer.Lineup, 0, 3)
	for i := 0; i < 3; i++ {
		dupe := *portfolio.Lineups[0]
		dupe.Index = i + 1
		lineups = append(lineups, &dupe)
	}
	over := &optimizer.Portfolio{RunID: portfolio.RunID, Lineups: lineups}

	r := Build(p, over, cfg)
	require.NotEmpty(t, r.PlayerExposures)
	for _, pe := range r.PlayerExposures {
		assert.True(t, pe.IsViolation, "%s appears %d times over cap 2", pe.PlayerName, pe.Count)
	}
	assert.NotEmpty(t, r.Violations)
}

func TestBuildReportFlagsViolations(t *testing.T) {
	p, portfolio, cfg := reportFixture(t, 2)

	// Clone the first lineup so every pair shares all nine players.
	dupe := *portfolio.Lineups[0]
	dupe.Index = len(portfolio.Lineups) + 1
	broken := &optimizer.Portfolio{
		RunID:   portfolio.RunID,
		Lineups: append(portfolio.Lineups, &dupe),
	}

	r := Build(p, broken, cfg)
	assert.Zero(t, r.MinUniquePlayers)
	assert.NotEmpty(t, r.Violations)
}
