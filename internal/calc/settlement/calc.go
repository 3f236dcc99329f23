// Package settlement estimates the immediate settlement under the centre of
// a flexible rectangular footing from the Boussinesq stress increment.
package settlement

import (
	"fmt"
	"math"

	"GeoSuite/internal/calc"

	"gonum.org/v1/gonum/floats"
)

const (
	DefaultStep        = 0.1
	DefaultDepthFactor = 8
)

type Input struct {
	WidthM      float64 `json:"width_m"`
	LengthM     float64 `json:"length_m"`
	PressureKPa float64 `json:"pressure_kpa"`
	ModulusKPa  float64 `json:"modulus_kpa"`
	StepM       float64 `json:"step_m"`
	DepthFactor float64 `json:"depth_factor"`
}

type Result struct {
	DepthM          []float64 `json:"depth_m"`
	StressKPa       []float64 `json:"stress_increment_kpa"`
	LayerSettlement []float64 `json:"layer_settlement_m"`
	MaxDepthM       float64   `json:"max_depth_m"`
	Layers          int       `json:"layers"`
	SettlementM     float64   `json:"settlement_m"`
	SettlementCM    float64   `json:"settlement_cm"`
}

// Influence is the Boussinesq influence factor under the centre of a
// rectangle, with m1 = L/B and n1 = z/(B/2).
func Influence(m1, n1 float64) float64 {
	m2, n2 := m1*m1, n1*n1
	first := m1 * n1 / math.Sqrt(1+m2+n2) * (1 + m2 + 2*n2) / ((1 + n2) * (m2 + n2))
	second := math.Asin(m1 / (math.Sqrt(m2+n2) * math.Sqrt(1+n2)))
	return 2 / math.Pi * (first + second)
}

// StressIncrement is Δσz at depth z below the footing centre, never negative.
func StressIncrement(q, length, width, z float64) float64 {
	return math.Max(0, q*Influence(length/width, z/(width/2)))
}

func Calculate(in Input) (Result, error) {
	if in.StepM == 0 {
		in.StepM = DefaultStep
	}
	if in.DepthFactor == 0 {
		in.DepthFactor = DefaultDepthFactor
	}
	switch {
	case in.WidthM <= 0:
		return Result{}, invalid("width_m")
	case in.LengthM <= 0:
		return Result{}, invalid("length_m")
	case in.PressureKPa < 0:
		return Result{}, invalid("pressure_kpa")
	case in.ModulusKPa <= 0:
		return Result{}, invalid("modulus_kpa")
	case in.StepM < 0:
		return Result{}, invalid("step_m")
	case in.DepthFactor < 0:
		return Result{}, invalid("depth_factor")
	}

	maxDepth := in.DepthFactor * in.WidthM
	res := Result{MaxDepthM: maxDepth}
	for i := 1; float64(i)*in.StepM < maxDepth-1e-9; i++ {
		z := float64(i) * in.StepM
		res.DepthM = append(res.DepthM, z)
		res.StressKPa = append(res.StressKPa, StressIncrement(in.PressureKPa, in.LengthM, in.WidthM, z))
	}
	res.Layers = len(res.DepthM)
	res.LayerSettlement = floats.ScaleTo(make([]float64, res.Layers), in.StepM/in.ModulusKPa, res.StressKPa)
	res.SettlementM = floats.Sum(res.LayerSettlement)
	res.SettlementCM = res.SettlementM * 100
	return res, nil
}

func invalid(field string) error {
	return fmt.Errorf("%w: %s", calc.ErrInvalidInput, field)
}
