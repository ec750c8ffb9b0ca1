package optimizer

import (
	"fmt"
	"sort"

	"github.com/jstittsworth/nfl-lineup-optimizer/internal/pool"
)

// Sense is the comparison direction of a linear constraint.
type Sense int

const (
	SenseLE Sense = iota
	SenseGE
	SenseEQ
)

func (s Sense) String() string {
	switch s {
	case SenseLE:
		return "<="
	case SenseGE:
		return ">="
	default:
		return "=="
	}
}

// Term is one coefficient on one player variable.
type Term struct {
	Var  int
	Coef float64
}

// Constraint is a named linear constraint over binary player variables.
type Constraint struct {
	Name  string
	Terms []Term
	Sense Sense
	RHS   float64
}

// ConstraintModel is the full 0-1 program for one solve: one binary
// variable per pool player, a maximization objective, and the roster,
// salary, stacking and diversity constraints.
type ConstraintModel struct {
	NumVars     int
	Objective   []float64
	Constraints []Constraint

	// FixedZero marks variables pinned to 0 (exposure bans). The
	// solver never selects them.
	FixedZero []bool
}

// AddConstraint appends a constraint, dropping zero-coefficient terms.
func (m *ConstraintModel) AddConstraint(name string, terms []Term, sense Sense, rhs float64) {
	kept := terms[:0]
	for _, t := range terms {
		if t.Coef != 0 {
			kept = append(kept, t)
		}
	}
	m.Constraints = append(m.Constraints, Constraint{Name: name, Terms: kept, Sense: sense, RHS: rhs})
}

func unitTerms(ids []int) []Term {
	terms := make([]Term, len(ids))
	for i, id := range ids {
		terms[i] = Term{Var: id, Coef: 1}
	}
	return terms
}

// checkPoolDepth fails fast when the pool cannot fill the roster shape
// regardless of salary or stacking, so callers get a clean infeasible
// instead of an exhausted search.
func checkPoolDepth(p *pool.PlayerPool) error {
	counts := p.CountByPosition()
	if counts[pool.QB] < 1 {
		return fmt.Errorf("pool has no QB: %w", ErrInfeasible)
	}
	if counts[pool.DST] < 1 {
		return fmt.Errorf("pool has no DST: %w", ErrInfeasible)
	}
	if counts[pool.RB] < MinRB {
		return fmt.Errorf("pool has %d RB, need %d: %w", counts[pool.RB], MinRB, ErrInfeasible)
	}
	if counts[pool.WR] < MinWR {
		return fmt.Errorf("pool has %d WR, need %d: %w", counts[pool.WR], MinWR, ErrInfeasible)
	}
	if counts[pool.TE] < MinTE {
		return fmt.Errorf("pool has %d TE, need %d: %w", counts[pool.TE], MinTE, ErrInfeasible)
	}
	if skill := counts[pool.RB] + counts[pool.WR] + counts[pool.TE]; skill < SkillSlots {
		return fmt.Errorf("pool has %d skill players, need %d: %w", skill, SkillSlots, ErrInfeasible)
	}
	return nil
}

// BuildModel assembles the 0-1 program for one lineup. The objective is
// the per-player effective points for this iteration (base projections,
// possibly with noise applied by the caller). banned pins exposure-capped
// players to zero; priors carries the player-ID sets of already accepted
// lineups for the uniqueness constraints.
func BuildModel(p *pool.PlayerPool, cfg LineupConfig, objective []float64, banned []int, priors [][]int) (*ConstraintModel, error) {
	if err := checkPoolDepth(p); err != nil {
		return nil, err
	}
	n := p.Len()
	if len(objective) != n {
		return nil, fmt.Errorf("objective has %d entries for %d players", len(objective), n)
	}

	m := &ConstraintModel{
		NumVars:   n,
		Objective: objective,
		FixedZero: make([]bool, n),
	}
	for _, id := range banned {
		m.FixedZero[id] = true
	}

	all := make([]int, n)
	for i := range all {
		all[i] = i
	}
	qbs := p.IDsByPosition(pool.QB)
	rbs := p.IDsByPosition(pool.RB)
	wrs := p.IDsByPosition(pool.WR)
	tes := p.IDsByPosition(pool.TE)
	dsts := p.IDsByPosition(pool.DST)

	m.AddConstraint("total_slots", unitTerms(all), SenseEQ, RosterSize)
	m.AddConstraint("slot_QB_exact", unitTerms(qbs), SenseEQ, 1)
	m.AddConstraint("slot_DST_exact", unitTerms(dsts), SenseEQ, 1)
	m.AddConstraint("min_RB", unitTerms(rbs), SenseGE, MinRB)
	m.AddConstraint("min_WR", unitTerms(wrs), SenseGE, MinWR)
	m.AddConstraint("min_TE", unitTerms(tes), SenseGE, MinTE)

	skill := make([]int, 0, len(rbs)+len(wrs)+len(tes))
	skill = append(skill, rbs...)
	skill = append(skill, wrs...)
	skill = append(skill, tes...)
	sort.Ints(skill)
	m.AddConstraint("total_skill_slots", unitTerms(skill), SenseEQ, SkillSlots)

	players := p.Players()
	salaryTerms := make([]Term, n)
	for i, pl := range players {
		salaryTerms[i] = Term{Var: pl.ID, Coef: float64(pl.Salary)}
	}
	m.AddConstraint("salary_cap", salaryTerms, SenseLE, float64(cfg.SalaryCap))
	if cfg.MinSalary > 0 {
		m.AddConstraint("salary_floor", salaryTerms, SenseGE, float64(cfg.MinSalary))
	}

	byTeam := make(map[string][]int)
	receiversByTeam := make(map[string][]int)
	for _, pl := range players {
		if pl.Team == "" || pl.Team == "UNK" {
			continue
		}
		byTeam[pl.Team] = append(byTeam[pl.Team], pl.ID)
		if pl.Position == pool.WR || pl.Position == pool.TE {
			receiversByTeam[pl.Team] = append(receiversByTeam[pl.Team], pl.ID)
		}
	}
	for _, team := range sortedKeys(byTeam) {
		m.AddConstraint(fmt.Sprintf("max_team_%s", team), unitTerms(byTeam[team]), SenseLE, float64(cfg.MaxPerTeam))
	}

	// Stack constraints are per-QB indicators: selecting a QB forces at
	// least k same-team pass catchers. QBs whose team has no WR/TE in
	// the pool get no stack constraint at all.
	if cfg.QBStackMin > 0 {
		for _, qb := range qbs {
			pl, _ := p.Player(qb)
			receivers := receiversByTeam[pl.Team]
			if len(receivers) == 0 {
				continue
			}
			terms := unitTerms(receivers)
			terms = append(terms, Term{Var: qb, Coef: -float64(cfg.QBStackMin)})
			m.AddConstraint(fmt.Sprintf("stack_%d", qb), terms, SenseGE, 0)
		}
	}
	if cfg.BringBack {
		for _, qb := range qbs {
			pl, _ := p.Player(qb)
			if pl.Opponent == "" || pl.Opponent == "UNK" {
				continue
			}
			opp := receiversByTeam[pl.Opponent]
			if len(opp) == 0 {
				continue
			}
			terms := unitTerms(opp)
			terms = append(terms, Term{Var: qb, Coef: -1})
			m.AddConstraint(fmt.Sprintf("bring_back_%d", qb), terms, SenseGE, 0)
		}
	}

	if cfg.NoRBVsOppDST {
		for _, rb := range rbs {
			rpl, _ := p.Player(rb)
			for _, dst := range dsts {
				dpl, _ := p.Player(dst)
				if rpl.Opponent != "" && rpl.Opponent == dpl.Team {
					m.AddConstraint(
						fmt.Sprintf("no_rb_vs_dst_%d_%d", rb, dst),
						[]Term{{Var: rb, Coef: 1}, {Var: dst, Coef: 1}},
						SenseLE, 1,
					)
				}
			}
		}
	}

	// Each prior lineup caps the overlap with the new one at
	// roster size minus the uniqueness threshold.
	if cfg.UniquenessThreshold > 0 {
		for j, prior := range priors {
			m.AddConstraint(
				fmt.Sprintf("uniq_%d", j),
				unitTerms(prior),
				SenseLE,
				float64(RosterSize-cfg.UniquenessThreshold),
			)
		}
	}

	return m, nil
}

func sortedKeys(m map[string][]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
