package optimizer

import (
	"time"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/jstittsworth/nfl-lineup-optimizer/internal/pool"
)

// Salary tiers for noise scaling. Cheap punt plays get the widest
// spread, mid-salary players the baseline, premium players the
// narrowest, mirroring how projection error scales in practice.
const (
	puntSalary      = 4500
	midSalaryCeil   = 6500
	puntNoiseFactor = 2.0
	midNoiseFactor  = 1.0
	highNoiseFactor = 0.5
)

// NoiseSource draws per-iteration projection perturbations. Every draw
// starts from the immutable base projections, so noise never compounds
// across iterations.
type NoiseSource struct {
	amplitude float64
	rng       *rand.Rand
}

// NewNoiseSource seeds the stream. A zero seed derives one from the
// clock; a fixed seed reproduces the whole portfolio.
func NewNoiseSource(amplitude float64, seed uint64) *NoiseSource {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &NoiseSource{
		amplitude: amplitude,
		rng:       rand.New(rand.NewSource(seed)),
	}
}

func tierFactor(salary int) float64 {
	switch {
	case salary < puntSalary:
		return puntNoiseFactor
	case salary <= midSalaryCeil:
		return midNoiseFactor
	default:
		return highNoiseFactor
	}
}

// Perturb returns a fresh effective-points vector for one iteration:
// base projection plus a normal draw whose sigma is the amplitude
// scaled by the projection and the player's salary tier. Perturbed
// values are floored at zero. A zero amplitude returns the base
// projections untouched.
func (ns *NoiseSource) Perturb(players []pool.Player) []float64 {
	out := make([]float64, len(players))
	for i, pl := range players {
		out[i] = pl.ProjectedPoints
	}
	if ns == nil || ns.amplitude == 0 {
		return out
	}
	for i, pl := range players {
		sigma := ns.amplitude * pl.ProjectedPoints * tierFactor(pl.Salary)
		if sigma <= 0 {
			continue
		}
		dist := distuv.Normal{Mu: 0, Sigma: sigma, Src: ns.rng}
		out[i] += dist.Rand()
		if out[i] < 0 {
			out[i] = 0
		}
	}
	return out
}
