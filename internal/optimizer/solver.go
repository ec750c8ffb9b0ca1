package optimizer

import (
	"context"
	"fmt"
	"sort"
)

const feasEps = 1e-6

// Solution is one optimal roster: selected player IDs (ascending) and
// the objective value they achieve.
type Solution struct {
	PlayerIDs []int
	Objective float64
}

// Solver runs an exact branch-and-bound search over a ConstraintModel.
// Variables are branched in descending objective order with ascending
// ID as the tie break, so identical inputs always yield the same
// optimal roster even when several share the optimum.
type Solver struct {
	model *ConstraintModel

	order   []int
	varCons [][]Term // per variable: (constraint index, coef) pairs

	activity  []float64
	posRemain []float64
	negRemain []float64

	prefixPos []float64 // objective upper-bound helper over order

	best      []bool
	bestObj   float64
	hasBest   bool
	nodeCount uint64
}

// NewSolver prepares the search structures for one model.
func NewSolver(m *ConstraintModel) *Solver {
	s := &Solver{model: m}

	s.order = make([]int, 0, m.NumVars)
	for v := 0; v < m.NumVars; v++ {
		if !m.FixedZero[v] {
			s.order = append(s.order, v)
		}
	}
	sort.Slice(s.order, func(i, j int) bool {
		a, b := s.order[i], s.order[j]
		if m.Objective[a] != m.Objective[b] {
			return m.Objective[a] > m.Objective[b]
		}
		return a < b
	})

	s.varCons = make([][]Term, m.NumVars)
	s.activity = make([]float64, len(m.Constraints))
	s.posRemain = make([]float64, len(m.Constraints))
	s.negRemain = make([]float64, len(m.Constraints))
	for ci, c := range m.Constraints {
		for _, t := range c.Terms {
			if m.FixedZero[t.Var] {
				continue
			}
			s.varCons[t.Var] = append(s.varCons[t.Var], Term{Var: ci, Coef: t.Coef})
			if t.Coef > 0 {
				s.posRemain[ci] += t.Coef
			} else {
				s.negRemain[ci] += t.Coef
			}
		}
	}

	s.best = make([]bool, m.NumVars)
	s.prefixPos = make([]float64, len(s.order)+1)
	for i, v := range s.order {
		s.prefixPos[i+1] = s.prefixPos[i]
		if m.Objective[v] > 0 {
			s.prefixPos[i+1] += m.Objective[v]
		}
	}

	return s
}

func (s *Solver) feasible(ci int) bool {
	c := &s.model.Constraints[ci]
	switch c.Sense {
	case SenseLE:
		return s.activity[ci]+s.negRemain[ci] <= c.RHS+feasEps
	case SenseGE:
		return s.activity[ci]+s.posRemain[ci] >= c.RHS-feasEps
	default:
		return s.activity[ci]+s.negRemain[ci] <= c.RHS+feasEps &&
			s.activity[ci]+s.posRemain[ci] >= c.RHS-feasEps
	}
}

// settled reports whether a constraint holds with every undecided
// variable forced to zero.
func (s *Solver) settled(ci int) bool {
	c := &s.model.Constraints[ci]
	switch c.Sense {
	case SenseLE:
		return s.activity[ci] <= c.RHS+feasEps
	case SenseGE:
		return s.activity[ci] >= c.RHS-feasEps
	default:
		return s.activity[ci] >= c.RHS-feasEps && s.activity[ci] <= c.RHS+feasEps
	}
}

// Solve searches for the optimal roster. It returns ErrInfeasible when
// the search space is empty and a SolverError when the context deadline
// fires before the search completes.
func (s *Solver) Solve(ctx context.Context) (*Solution, error) {
	if err := ctx.Err(); err != nil {
		return nil, &SolverError{Reason: "search deadline exceeded", Err: err}
	}
	for ci := range s.model.Constraints {
		if !s.feasible(ci) {
			return nil, fmt.Errorf("constraint %s unsatisfiable: %w", s.model.Constraints[ci].Name, ErrInfeasible)
		}
	}

	assigned := make([]bool, s.model.NumVars)
	if err := s.search(ctx, 0, 0, 0, assigned); err != nil {
		return nil, err
	}
	if !s.hasBest {
		return nil, fmt.Errorf("no roster satisfies the model: %w", ErrInfeasible)
	}

	sol := &Solution{Objective: s.bestObj}
	for v, on := range s.best {
		if on {
			sol.PlayerIDs = append(sol.PlayerIDs, v)
		}
	}
	sort.Ints(sol.PlayerIDs)
	return sol, nil
}

func (s *Solver) search(ctx context.Context, depth, selected int, obj float64, assigned []bool) error {
	s.nodeCount++
	if s.nodeCount&1023 == 0 {
		if err := ctx.Err(); err != nil {
			return &SolverError{Reason: "search deadline exceeded", Err: err}
		}
	}

	if selected == RosterSize {
		for ci := range s.model.Constraints {
			if !s.settled(ci) {
				return nil
			}
		}
		if !s.hasBest || obj > s.bestObj {
			s.hasBest = true
			s.bestObj = obj
			copy(s.best, assigned)
		}
		return nil
	}
	if depth == len(s.order) {
		return nil
	}

	// Upper bound: current value plus the best remaining positive
	// coefficients, at most one per open roster slot.
	open := RosterSize - selected
	hi := depth + open
	if hi > len(s.order) {
		hi = len(s.order)
	}
	if s.hasBest && obj+(s.prefixPos[hi]-s.prefixPos[depth]) <= s.bestObj+feasEps {
		return nil
	}

	v := s.order[depth]

	// Leaving depth: v is no longer undecided in its constraints.
	for _, t := range s.varCons[v] {
		if t.Coef > 0 {
			s.posRemain[t.Var] -= t.Coef
		} else {
			s.negRemain[t.Var] -= t.Coef
		}
	}

	// Branch 1: select v.
	ok := true
	for _, t := range s.varCons[v] {
		s.activity[t.Var] += t.Coef
	}
	for _, t := range s.varCons[v] {
		if !s.feasible(t.Var) {
			ok = false
			break
		}
	}
	if ok {
		assigned[v] = true
		if err := s.search(ctx, depth+1, selected+1, obj+s.model.Objective[v], assigned); err != nil {
			return err
		}
		assigned[v] = false
	}
	for _, t := range s.varCons[v] {
		s.activity[t.Var] -= t.Coef
	}

	// Branch 0: skip v.
	ok = true
	for _, t := range s.varCons[v] {
		if !s.feasible(t.Var) {
			ok = false
			break
		}
	}
	if ok {
		if err := s.search(ctx, depth+1, selected, obj, assigned); err != nil {
			return err
		}
	}

	// Restore v as undecided.
	for _, t := range s.varCons[v] {
		if t.Coef > 0 {
			s.posRemain[t.Var] += t.Coef
		} else {
			s.negRemain[t.Var] += t.Coef
		}
	}
	return nil
}
