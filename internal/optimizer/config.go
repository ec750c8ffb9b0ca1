package optimizer

import (
	"fmt"
	"math"
	"time"
)

// RosterSize is the DraftKings classic NFL roster size.
const RosterSize = 9

// SkillSlots is the number of RB/WR/TE slots including FLEX.
const SkillSlots = 7

// Positional minimums for a valid roster.
const (
	MinRB = 2
	MinWR = 3
	MinTE = 1
)

// LineupConfig carries every knob for one optimization run. Zero values
// are not usable; construct with DefaultConfig and override.
type LineupConfig struct {
	SalaryCap           int     `json:"salary_cap"`
	MinSalary           int     `json:"min_salary"`
	MaxPerTeam          int     `json:"max_per_team"`
	QBStackMin          int     `json:"qb_stack_min"`
	BringBack           bool    `json:"bring_back"`
	NoRBVsOppDST        bool    `json:"no_rb_vs_opp_dst"`
	NumLineups          int     `json:"num_lineups"`
	UniquenessThreshold int     `json:"uniqueness_threshold"`
	MaxExposureFraction float64 `json:"max_exposure_fraction"`
	RandomnessAmplitude float64 `json:"randomness_amplitude"`

	// SolveTimeout bounds each individual solve. RunTimeout, when
	// positive, bounds the whole portfolio run.
	SolveTimeout time.Duration `json:"solve_timeout"`
	RunTimeout   time.Duration `json:"run_timeout"`

	// Seed pins the noise stream for reproducible portfolios. Zero
	// means derive from the clock.
	Seed uint64 `json:"seed,omitempty"`
}

// DefaultConfig returns the DraftKings classic NFL defaults.
func DefaultConfig() LineupConfig {
	return LineupConfig{
		SalaryCap:           50000,
		MinSalary:           49500,
		MaxPerTeam:          4,
		QBStackMin:          1,
		NumLineups:          1,
		UniquenessThreshold: 2,
		MaxExposureFraction: 0.35,
		RandomnessAmplitude: 0.04,
		SolveTimeout:        10 * time.Second,
	}
}

// ExposureCapCount derives the per-player appearance cap for the run.
func (c LineupConfig) ExposureCapCount() int {
	return int(math.Floor(c.MaxExposureFraction*float64(c.NumLineups) + 1e-9))
}

// Validate rejects contradictory configurations before any solve.
func (c LineupConfig) Validate() error {
	if c.SalaryCap <= 0 {
		return &ConfigError{Field: "salary_cap", Reason: "must be positive"}
	}
	if c.MinSalary < 0 {
		return &ConfigError{Field: "min_salary", Reason: "must be non-negative"}
	}
	if c.MinSalary > c.SalaryCap {
		return &ConfigError{Field: "min_salary", Reason: fmt.Sprintf("%d exceeds salary cap %d", c.MinSalary, c.SalaryCap)}
	}
	if c.MaxPerTeam < 1 {
		return &ConfigError{Field: "max_per_team", Reason: "must be at least 1"}
	}
	if c.QBStackMin < 0 || c.QBStackMin > 2 {
		return &ConfigError{Field: "qb_stack_min", Reason: "must be 0, 1 or 2"}
	}
	if c.NumLineups < 1 {
		return &ConfigError{Field: "num_lineups", Reason: "must be at least 1"}
	}
	if c.UniquenessThreshold < 0 || c.UniquenessThreshold > RosterSize {
		return &ConfigError{Field: "uniqueness_threshold", Reason: fmt.Sprintf("must be in [0,%d]", RosterSize)}
	}
	if c.MaxExposureFraction <= 0 || c.MaxExposureFraction > 1 {
		return &ConfigError{Field: "max_exposure_fraction", Reason: "must be in (0,1]"}
	}
	if c.RandomnessAmplitude < 0 {
		return &ConfigError{Field: "randomness_amplitude", Reason: "must be non-negative"}
	}
	// Exposure bans only apply in portfolio mode; a derived cap of zero
	// there would ban every player as soon as one lineup is accepted.
	if c.NumLineups > 1 && c.ExposureCapCount() == 0 {
		return &ConfigError{
			Field:  "max_exposure_fraction",
			Reason: fmt.Sprintf("derived cap floor(%.3f*%d) is 0", c.MaxExposureFraction, c.NumLineups),
		}
	}
	if c.SolveTimeout <= 0 {
		return &ConfigError{Field: "solve_timeout", Reason: "must be positive"}
	}
	return nil
}
