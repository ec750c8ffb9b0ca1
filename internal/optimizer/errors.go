package optimizer

import (
	"errors"
	"fmt"
)

// ErrInfeasible reports that the integer program for one lineup has no
// feasible solution under the active constraints.
var ErrInfeasible = errors.New("no feasible lineup")

// SolverError reports a solve that failed for reasons other than
// infeasibility: the per-solve time budget expired or the search hit an
// internal failure.
type SolverError struct {
	Reason string
	Err    error
}

func (e *SolverError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("solver error: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("solver error: %s", e.Reason)
}

func (e *SolverError) Unwrap() error {
	return e.Err
}

// ConfigError reports a contradictory lineup configuration. It is
// checked and returned before any solve is attempted.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid config: %s: %s", e.Field, e.Reason)
}

// IsInfeasible reports whether err classifies as lineup infeasibility.
func IsInfeasible(err error) bool {
	return errors.Is(err, ErrInfeasible)
}

// IsSolverError reports whether err classifies as a solver failure.
func IsSolverError(err error) bool {
	var se *SolverError
	return errors.As(err, &se)
}
