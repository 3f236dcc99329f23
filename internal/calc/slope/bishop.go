package slope

import "math"

const (
	DefaultSeed          = 1.5
	DefaultTolerance     = 0.001
	DefaultMaxIterations = 100
)

type State int

const (
	Iterating State = iota
	Converged
	Exhausted
)

func (s State) String() string {
	switch s {
	case Iterating:
		return "iterating"
	case Converged:
		return "converged"
	case Exhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// Settings bound the fixed-point iteration. Zero fields take the defaults.
type Settings struct {
	Seed          float64
	Tolerance     float64
	MaxIterations int
}

func (s Settings) withDefaults() Settings {
	if s.Seed <= 0 {
		s.Seed = DefaultSeed
	}
	if s.Tolerance <= 0 {
		s.Tolerance = DefaultTolerance
	}
	if s.MaxIterations <= 0 {
		s.MaxIterations = DefaultMaxIterations
	}
	return s
}

// SliceForces is the contribution of one included slice in a pass.
type SliceForces struct {
	Slice
	MAlpha     float64
	Driving    float64
	Cohesive   float64
	Frictional float64
	Numerator  float64
}

// Solution is the terminal iteration state.
type Solution struct {
	SafetyFactor float64
	AssumedFS    float64
	Iterations   int
	State        State
	Forces       []SliceForces
}

func (s Solution) Converged() bool { return s.State == Converged }

// Iterate solves the Simplified Bishop equation
//
//	FS = Σ [(c·l + (W − u·l)·tan φ) / m_α] / Σ W·sin α,  m_α = cos α + sin α·tan φ / FS
//
// by fixed-point iteration from the seed. A zero driving sum yields +Inf as
// a converged result. Excluded slices are skipped.
func Iterate(slices []Slice, cohesion, frictionAngleDeg float64, settings Settings) Solution {
	settings = settings.withDefaults()
	tanPhi := math.Tan(frictionAngleDeg * math.Pi / 180)

	sol := Solution{AssumedFS: settings.Seed, State: Iterating}
	forces := make([]SliceForces, 0, len(slices))
	for sol.State == Iterating {
		forces = forces[:0]
		numerator, driving := 0.0, 0.0
		for _, s := range slices {
			if s.Status != Included {
				continue
			}
			f := SliceForces{Slice: s}
			sin, cos := math.Sincos(s.BaseAngle)
			f.MAlpha = cos + sin*tanPhi/sol.AssumedFS
			f.Driving = s.Weight * sin
			f.Cohesive = cohesion * s.BaseLength
			f.Frictional = (s.Weight - s.PorePressure*s.BaseLength) * tanPhi
			f.Numerator = (f.Cohesive + f.Frictional) / f.MAlpha
			numerator += f.Numerator
			driving += f.Driving
			forces = append(forces, f)
		}
		sol.Iterations++

		if driving == 0 {
			sol.SafetyFactor = math.Inf(1)
			sol.State = Converged
			break
		}
		sol.SafetyFactor = numerator / driving

		switch {
		case math.Abs(sol.SafetyFactor-sol.AssumedFS) < settings.Tolerance:
			sol.State = Converged
		case sol.Iterations >= settings.MaxIterations:
			sol.State = Exhausted
		default:
			sol.AssumedFS = sol.SafetyFactor
		}
	}
	sol.Forces = forces
	return sol
}
