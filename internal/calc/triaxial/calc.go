// Package triaxial fits a Mohr-Coulomb failure envelope to triaxial test
// results.
package triaxial

import (
	"fmt"
	"math"

	"GeoSuite/internal/calc"

	"gonum.org/v1/gonum/stat"
)

type Specimen struct {
	Sigma3KPa float64 `json:"sigma3_kpa"`
	Sigma1KPa float64 `json:"sigma1_kpa"`
}

// DefaultSpecimens is the three-specimen series used when none is given.
var DefaultSpecimens = []Specimen{
	{Sigma3KPa: 150, Sigma1KPa: 400},
	{Sigma3KPa: 200, Sigma1KPa: 500},
	{Sigma3KPa: 250, Sigma1KPa: 600},
}

type Input struct {
	Specimens []Specimen `json:"specimens"`
}

type Circle struct {
	CenterKPa float64 `json:"center_kpa"`
	RadiusKPa float64 `json:"radius_kpa"`
}

type Result struct {
	FrictionAngleDeg float64  `json:"friction_angle_deg"`
	CohesionKPa      float64  `json:"cohesion_kpa"`
	Slope            float64  `json:"slope"`
	InterceptKPa     float64  `json:"intercept_kpa"`
	RSquared         float64  `json:"r_squared"`
	Circles          []Circle `json:"circles"`
}

// Calculate regresses t = (σ1−σ3)/2 on s = (σ1+σ3)/2. The slope is sin φ and
// the intercept c·cos φ.
func Calculate(in Input) (Result, error) {
	specimens := in.Specimens
	if len(specimens) == 0 {
		specimens = DefaultSpecimens
	}
	if len(specimens) < 2 {
		return Result{}, invalid("specimens: at least two required")
	}

	s := make([]float64, len(specimens))
	t := make([]float64, len(specimens))
	circles := make([]Circle, len(specimens))
	distinct := false
	for i, sp := range specimens {
		if sp.Sigma3KPa < 0 || sp.Sigma1KPa <= sp.Sigma3KPa {
			return Result{}, invalid(fmt.Sprintf("specimens[%d]: need sigma1 > sigma3 >= 0", i))
		}
		s[i] = (sp.Sigma1KPa + sp.Sigma3KPa) / 2
		t[i] = (sp.Sigma1KPa - sp.Sigma3KPa) / 2
		circles[i] = Circle{CenterKPa: s[i], RadiusKPa: t[i]}
		if s[i] != s[0] {
			distinct = true
		}
	}
	if !distinct {
		return Result{}, invalid("specimens: mean stresses must differ")
	}

	a, m := stat.LinearRegression(s, t, nil, false)
	if m < 0 || m >= 1 {
		return Result{}, fmt.Errorf("%w: envelope slope %.4f outside [0, 1)", calc.ErrInvalidInput, m)
	}
	phi := math.Asin(m)
	return Result{
		FrictionAngleDeg: phi * 180 / math.Pi,
		CohesionKPa:      a / math.Cos(phi),
		Slope:            m,
		InterceptKPa:     a,
		RSquared:         stat.RSquared(s, t, nil, a, m),
		Circles:          circles,
	}, nil
}

// Envelope returns the shear strength c + σ tan φ on the failure envelope.
func (r Result) Envelope(sigma float64) float64 {
	return r.CohesionKPa + sigma*math.Tan(r.FrictionAngleDeg*math.Pi/180)
}

func invalid(field string) error {
	return fmt.Errorf("%w: %s", calc.ErrInvalidInput, field)
}
