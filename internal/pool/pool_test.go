package pool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCandidates() []Candidate {
	return []Candidate{
		{Name: "Patrick Mahomes", Position: "QB", Team: "KC", Opponent: "BUF", Salary: 8200, ProjectedPoints: 24.1},
		{Name: "Christian McCaffrey", Position: "RB", Team: "SF", Opponent: "SEA", Salary: 9200, ProjectedPoints: 24.8},
		{Name: "CeeDee Lamb", Position: "WR", Team: "DAL", Opponent: "PHI", Salary: 8300, ProjectedPoints: 19.8},
		{Name: "Travis Kelce", Position: "TE", Team: "KC", Opponent: "BUF", Salary: 7200, ProjectedPoints: 17.6},
		{Name: "49ers", Position: "DST", Team: "SF", Opponent: "SEA", Salary: 3600, ProjectedPoints: 9.0},
	}
}

func TestNewPoolAssignsSequentialIDs(t *testing.T) {
	p, report, err := NewPool(validCandidates(), nil)
	require.NoError(t, err)
	assert.Equal(t, 5, p.Len())
	assert.Equal(t, 5, report.Accepted)
	assert.Zero(t, report.Filtered)

	for i, pl := range p.Players() {
		assert.Equal(t, i, pl.ID)
	}
}

func TestNewPoolFiltersInvalidRows(t *testing.T) {
	candidates := append(validCandidates(),
		Candidate{Name: "", Position: "WR", Team: "MIA", Salary: 5000, ProjectedPoints: 10},
		Candidate{Name: "Tyreek Hill", Position: "K", Team: "MIA", Salary: 9000, ProjectedPoints: 21},
		Candidate{Name: "Jaylen Waddle", Position: "WR", Team: "MIA", Salary: 0, ProjectedPoints: 14},
		Candidate{Name: "De'Von Achane", Position: "RB", Team: "MIA", Salary: 6900, ProjectedPoints: -1},
		Candidate{Name: "River Cracraft", Position: "WR", Team: "", Salary: 3000, ProjectedPoints: 3},
	)

	p, report, err := NewPool(candidates, nil)
	require.NoError(t, err)
	assert.Equal(t, 5, p.Len())
	assert.Equal(t, 5, report.Filtered)
	require.Len(t, report.Issues, 5)
	assert.Equal(t, 5, report.Issues[0].Row)
	assert.Contains(t, report.Issues[0].Reason, "missing name")
	assert.Contains(t, report.Issues[1].Reason, "unknown position")
	assert.Contains(t, report.Issues[2].Reason, "non-positive salary")
	assert.Contains(t, report.Issues[3].Reason, "negative projection")
	assert.Contains(t, report.Issues[4].Reason, "missing team")
}

func TestNewPoolDeduplicates(t *testing.T) {
	candidates := append(validCandidates(), Candidate{
		Name: "patrick mahomes", Position: "QB", Team: "kc", Opponent: "BUF",
		Salary: 8200, ProjectedPoints: 24.1,
	})
	p, report, err := NewPool(candidates, nil)
	require.NoError(t, err)
	assert.Equal(t, 5, p.Len())
	assert.Equal(t, 1, report.Filtered)
	assert.Contains(t, report.Issues[0].Reason, "duplicate")
}

func TestNewPoolAppliesExclusions(t *testing.T) {
	p, report, err := NewPool(validCandidates(), []string{"Travis Kelce"})
	require.NoError(t, err)
	assert.Equal(t, 4, p.Len())
	assert.Equal(t, 1, report.Excluded)
	for _, pl := range p.Players() {
		assert.NotEqual(t, "Travis Kelce", pl.Name)
	}
}

func TestNewPoolEmptyIsValidationError(t *testing.T) {
	_, _, err := NewPool(nil, nil)
	require.Error(t, err)
	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)

	_, _, err = NewPool([]Candidate{{Name: "", Position: "QB", Team: "KC", Salary: 1, ProjectedPoints: 1}}, nil)
	require.Error(t, err)
	assert.ErrorAs(t, err, &vErr)
	assert.NotEmpty(t, vErr.Issues)
}

func TestPoolLookups(t *testing.T) {
	p, _, err := NewPool(validCandidates(), nil)
	require.NoError(t, err)

	pl, ok := p.Player(0)
	assert.True(t, ok)
	assert.Equal(t, "Patrick Mahomes", pl.Name)

	_, ok = p.Player(99)
	assert.False(t, ok)

	counts := p.CountByPosition()
	assert.Equal(t, 1, counts[QB])
	assert.Equal(t, 1, counts[DST])

	assert.Equal(t, []int{2}, p.IDsByPosition(WR))
	assert.ElementsMatch(t, []string{"KC", "SF", "DAL"}, p.Teams())
}

func TestPlayersReturnsCopy(t *testing.T) {
	p, _, err := NewPool(validCandidates(), nil)
	require.NoError(t, err)

	players := p.Players()
	players[0].ProjectedPoints = 99.9

	pl, _ := p.Player(0)
	assert.Equal(t, 24.1, pl.ProjectedPoints, "pool must stay immutable")
}

func TestFingerprintTracksContents(t *testing.T) {
	p1, _, err := NewPool(validCandidates(), nil)
	require.NoError(t, err)
	p2, _, err := NewPool(validCandidates(), nil)
	require.NoError(t, err)
	assert.Equal(t, p1.Fingerprint(), p2.Fingerprint())

	p3, _, err := NewPool(validCandidates(), []string{"Travis Kelce"})
	require.NoError(t, err)
	assert.NotEqual(t, p1.Fingerprint(), p3.Fingerprint())
}

func TestPlayerValue(t *testing.T) {
	pl := Player{Salary: 8000, ProjectedPoints: 20}
	assert.InDelta(t, 2.5, pl.Value(), 1e-9)
}
