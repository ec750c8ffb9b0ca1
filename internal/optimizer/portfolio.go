package optimizer

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jstittsworth/nfl-lineup-optimizer/internal/pool"
	"github.com/jstittsworth/nfl-lineup-optimizer/pkg/logger"
)

// Lineup is one accepted roster with its slot assignments and totals.
// TotalProjected always sums the base projections, not the perturbed
// objective the solver maximized.
type Lineup struct {
	Index          int              `json:"index"`
	PlayerIDs      []int            `json:"player_ids"`
	Assignments    []SlotAssignment `json:"assignments"`
	TotalSalary    int              `json:"total_salary"`
	TotalProjected float64          `json:"total_projected"`
	Objective      float64          `json:"objective"`
}

// IterationFailure records one skipped portfolio iteration.
type IterationFailure struct {
	Iteration int    `json:"iteration"`
	Reason    string `json:"reason"`
}

// RunSummary reports how a portfolio run went: lineups requested,
// accepted, and the iterations that were skipped and why.
type RunSummary struct {
	Requested int                `json:"requested"`
	Accepted  int                `json:"accepted"`
	Skipped   int                `json:"skipped"`
	Failures  []IterationFailure `json:"failures,omitempty"`
}

// Portfolio is the full result of one run.
type Portfolio struct {
	RunID   string     `json:"run_id"`
	Lineups []*Lineup  `json:"lineups"`
	Summary RunSummary `json:"summary"`
}

// Generator turns a player pool and a config into lineups.
type Generator struct {
	pool *pool.PlayerPool
	cfg  LineupConfig
}

// NewGenerator validates the config up front so runs never start with a
// contradictory setup.
func NewGenerator(p *pool.PlayerPool, cfg LineupConfig) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Generator{pool: p, cfg: cfg}, nil
}

func (g *Generator) buildLineup(index int, sol *Solution) (*Lineup, error) {
	assignments, err := AssignSlots(g.pool, sol.PlayerIDs)
	if err != nil {
		return nil, err
	}
	lineup := &Lineup{
		Index:       index,
		PlayerIDs:   sol.PlayerIDs,
		Assignments: assignments,
		Objective:   sol.Objective,
	}
	for _, id := range sol.PlayerIDs {
		pl, _ := g.pool.Player(id)
		lineup.TotalSalary += pl.Salary
		lineup.TotalProjected += pl.ProjectedPoints
	}
	return lineup, nil
}

func (g *Generator) solveOnce(ctx context.Context, objective []float64, banned []int, priors [][]int) (*Solution, error) {
	model, err := BuildModel(g.pool, g.cfg, objective, banned, priors)
	if err != nil {
		return nil, err
	}
	solveCtx, cancel := context.WithTimeout(ctx, g.cfg.SolveTimeout)
	defer cancel()
	return NewSolver(model).Solve(solveCtx)
}

// GenerateOne produces the single optimal lineup from the base
// projections. Noise, exposure caps and uniqueness never apply here,
// and any failure is terminal.
func (g *Generator) GenerateOne(ctx context.Context) (*Lineup, error) {
	objective := make([]float64, g.pool.Len())
	for _, pl := range g.pool.Players() {
		objective[pl.ID] = pl.ProjectedPoints
	}
	sol, err := g.solveOnce(ctx, objective, nil, nil)
	if err != nil {
		return nil, err
	}
	return g.buildLineup(1, sol)
}

// Generate runs the full portfolio. Failed iterations are logged,
// counted in the summary and skipped; the run carries on so one
// over-constrained iteration never sinks the rest. With NumLineups of
// one it degenerates to GenerateOne, where failure is terminal.
func (g *Generator) Generate(ctx context.Context) (*Portfolio, error) {
	runID := uuid.New().String()
	log := logger.WithRunContext(runID, g.cfg.NumLineups)

	portfolio := &Portfolio{
		RunID:   runID,
		Summary: RunSummary{Requested: g.cfg.NumLineups},
	}

	if g.cfg.NumLineups == 1 {
		lineup, err := g.GenerateOne(ctx)
		if err != nil {
			return nil, err
		}
		portfolio.Lineups = []*Lineup{lineup}
		portfolio.Summary.Accepted = 1
		log.WithField("total_projected", lineup.TotalProjected).Info("Single lineup solved")
		return portfolio, nil
	}

	if g.cfg.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.cfg.RunTimeout)
		defer cancel()
	}

	noise := NewNoiseSource(g.cfg.RandomnessAmplitude, g.cfg.Seed)
	tracker := NewExposureTracker(g.cfg)
	players := g.pool.Players()
	var priors [][]int

	for i := 1; i <= g.cfg.NumLineups; i++ {
		if err := ctx.Err(); err != nil {
			remaining := g.cfg.NumLineups - i + 1
			log.WithField("remaining", remaining).Warn("Run budget exhausted, stopping early")
			portfolio.Summary.Skipped += remaining
			portfolio.Summary.Failures = append(portfolio.Summary.Failures, IterationFailure{
				Iteration: i,
				Reason:    fmt.Sprintf("run budget exhausted: %v", err),
			})
			break
		}

		iterLog := logger.WithIteration(runID, i)
		objective := noise.Perturb(players)
		sol, err := g.solveOnce(ctx, objective, tracker.Banned(), priors)
		if err != nil {
			reason := classifyFailure(err)
			iterLog.WithField("reason", reason).Warn("Iteration skipped")
			portfolio.Summary.Skipped++
			portfolio.Summary.Failures = append(portfolio.Summary.Failures, IterationFailure{
				Iteration: i,
				Reason:    reason,
			})
			continue
		}

		lineup, err := g.buildLineup(len(portfolio.Lineups)+1, sol)
		if err != nil {
			iterLog.WithError(err).Error("Slot assignment failed on a solved roster")
			portfolio.Summary.Skipped++
			portfolio.Summary.Failures = append(portfolio.Summary.Failures, IterationFailure{
				Iteration: i,
				Reason:    err.Error(),
			})
			continue
		}

		tracker.Record(sol.PlayerIDs)
		priors = append(priors, sol.PlayerIDs)
		portfolio.Lineups = append(portfolio.Lineups, lineup)
		portfolio.Summary.Accepted++
		iterLog.WithFields(logrus.Fields{
			"total_salary":    lineup.TotalSalary,
			"total_projected": lineup.TotalProjected,
		}).Info("Lineup accepted")
	}

	log.WithFields(logrus.Fields{
		"accepted": portfolio.Summary.Accepted,
		"skipped":  portfolio.Summary.Skipped,
	}).Info("Portfolio run finished")
	return portfolio, nil
}

func classifyFailure(err error) string {
	var solverErr *SolverError
	switch {
	case errors.Is(err, ErrInfeasible):
		return fmt.Sprintf("infeasible: %v", err)
	case errors.As(err, &solverErr):
		return fmt.Sprintf("solver: %s", solverErr.Reason)
	default:
		return err.Error()
	}
}
