// Package bearing computes the ultimate and allowable bearing capacity of a
// shallow footing with Terzaghi's equation.
package bearing

import (
	"fmt"
	"math"

	"GeoSuite/internal/calc"
)

type Shape string

const (
	Square   Shape = "square"
	Strip    Shape = "strip"
	Circular Shape = "circular"
)

// shape factors (sc, sγ)
var shapeFactors = map[Shape][2]float64{
	Square:   {1.3, 0.4},
	Strip:    {1.0, 0.5},
	Circular: {1.3, 0.3},
}

// nGamma is Kumbhojkar's (1993) N_γ at whole degrees 0..50.
var nGamma = [...]float64{
	0.00, 0.01, 0.04, 0.06, 0.10, 0.14, 0.20, 0.27, 0.35, 0.44,
	0.56, 0.69, 0.85, 1.04, 1.26, 1.52, 1.82, 2.18, 2.59, 3.07,
	3.64, 4.31, 5.09, 6.00, 7.08, 8.43, 9.84, 11.60, 13.70, 16.18,
	19.13, 22.65, 26.87, 31.94, 38.04, 45.41, 54.36, 65.27, 78.61, 95.03,
	115.31, 140.51, 171.99, 211.56, 261.60, 325.34, 407.11, 512.84, 650.67, 831.99,
	1072.80,
}

type Input struct {
	WidthM           float64 `json:"width_m"`
	LengthM          float64 `json:"length_m"`
	DepthM           float64 `json:"depth_m"`
	UnitWeightKNM3   float64 `json:"unit_weight_kn_m3"`
	CohesionKPa      float64 `json:"cohesion_kpa"`
	FrictionAngleDeg float64 `json:"friction_angle_deg"`
	Shape            Shape   `json:"shape"`
	SafetyFactor     float64 `json:"safety_factor"`
}

type Result struct {
	Nc              float64 `json:"nc"`
	Nq              float64 `json:"nq"`
	NGamma          float64 `json:"n_gamma"`
	Shape           Shape   `json:"shape"`
	OverburdenKPa   float64 `json:"overburden_kpa"`
	CohesionTerm    float64 `json:"cohesion_term_kpa"`
	SurchargeTerm   float64 `json:"surcharge_term_kpa"`
	WeightTerm      float64 `json:"weight_term_kpa"`
	UltimateKPa     float64 `json:"qu_kpa"`
	AllowableKPa    float64 `json:"qadm_kpa"`
	SafetyFactor    float64 `json:"safety_factor"`
	AllowableLoadKN float64 `json:"allowable_load_kn,omitempty"`
}

// Factors returns Terzaghi's Nc, Nq and the tabulated Nγ for φ in degrees.
func Factors(phiDeg float64) (nc, nq, ng float64) {
	phi := phiDeg * math.Pi / 180
	nq = math.Exp(2*(3*math.Pi/4-phi/2)*math.Tan(phi)) / (2 * math.Pow(math.Cos(math.Pi/4+phi/2), 2))
	if phiDeg == 0 {
		nc = 5.7
	} else {
		nc = (nq - 1) / math.Tan(phi)
	}
	return nc, nq, NGamma(phiDeg)
}

// NGamma interpolates the N_γ table linearly, clamped to its ends.
func NGamma(phiDeg float64) float64 {
	last := len(nGamma) - 1
	switch {
	case phiDeg <= 0:
		return nGamma[0]
	case phiDeg >= float64(last):
		return nGamma[last]
	}
	i := int(phiDeg)
	frac := phiDeg - float64(i)
	return nGamma[i] + (nGamma[i+1]-nGamma[i])*frac
}

func Calculate(in Input) (Result, error) {
	if in.Shape == "" {
		in.Shape = Square
	}
	if in.SafetyFactor == 0 {
		in.SafetyFactor = 3
	}
	sf, ok := shapeFactors[in.Shape]
	switch {
	case in.WidthM <= 0:
		return Result{}, invalid("width_m")
	case in.LengthM < 0:
		return Result{}, invalid("length_m")
	case in.DepthM < 0:
		return Result{}, invalid("depth_m")
	case in.UnitWeightKNM3 <= 0:
		return Result{}, invalid("unit_weight_kn_m3")
	case in.CohesionKPa < 0:
		return Result{}, invalid("cohesion_kpa")
	case in.FrictionAngleDeg < 0 || in.FrictionAngleDeg > 50:
		return Result{}, invalid("friction_angle_deg")
	case !ok:
		return Result{}, invalid("shape")
	case in.SafetyFactor <= 0:
		return Result{}, invalid("safety_factor")
	}

	nc, nq, ng := Factors(in.FrictionAngleDeg)
	q := in.UnitWeightKNM3 * in.DepthM
	res := Result{
		Nc:            nc,
		Nq:            nq,
		NGamma:        ng,
		Shape:         in.Shape,
		OverburdenKPa: q,
		CohesionTerm:  sf[0] * in.CohesionKPa * nc,
		SurchargeTerm: q * nq,
		WeightTerm:    sf[1] * in.UnitWeightKNM3 * in.WidthM * ng,
		SafetyFactor:  in.SafetyFactor,
	}
	res.UltimateKPa = res.CohesionTerm + res.SurchargeTerm + res.WeightTerm
	res.AllowableKPa = res.UltimateKPa / in.SafetyFactor
	res.AllowableLoadKN = res.AllowableKPa * footprint(in)
	return res, nil
}

// footprint is the bearing area in m²; strips report per metre run.
func footprint(in Input) float64 {
	switch in.Shape {
	case Circular:
		return math.Pi * in.WidthM * in.WidthM / 4
	case Strip:
		return in.WidthM
	default:
		if in.LengthM > 0 {
			return in.WidthM * in.LengthM
		}
		return in.WidthM * in.WidthM
	}
}

func invalid(field string) error {
	return fmt.Errorf("%w: %s", calc.ErrInvalidInput, field)
}
