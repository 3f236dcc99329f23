// Package earth computes Rankine lateral earth pressures on a vertical wall
// retaining cohesionless soil with a horizontal backfill.
package earth

import (
	"fmt"
	"math"

	"GeoSuite/internal/calc"

	"gonum.org/v1/gonum/floats"
)

const DefaultPoints = 100

type Input struct {
	UnitWeightKNM3   float64 `json:"unit_weight_kn_m3"`
	FrictionAngleDeg float64 `json:"friction_angle_deg"`
	WallHeightM      float64 `json:"wall_height_m"`
	Points           int     `json:"points"`
}

// State is one pressure condition of the wall.
type State struct {
	Coefficient  float64 `json:"coefficient"`
	BaseKPa      float64 `json:"base_pressure_kpa"`
	ForceKNPerM  float64 `json:"force_kn_m"`
	ArmFromBaseM float64 `json:"arm_from_base_m"`
	MomentKNM    float64 `json:"moment_kn_m_m"`
}

// Profile holds the pressure distributions sampled over the wall height.
type Profile struct {
	DepthM     []float64 `json:"depth_m"`
	ActiveKPa  []float64 `json:"active_kpa"`
	AtRestKPa  []float64 `json:"at_rest_kpa"`
	PassiveKPa []float64 `json:"passive_kpa"`
}

type Result struct {
	Active  State   `json:"active"`
	AtRest  State   `json:"at_rest"`
	Passive State   `json:"passive"`
	Profile Profile `json:"profile"`
}

// Coefficients returns Rankine's Ka, K0 (Jaky) and Kp for φ in degrees.
func Coefficients(phiDeg float64) (ka, k0, kp float64) {
	phi := phiDeg * math.Pi / 180
	ka = math.Pow(math.Tan(math.Pi/4-phi/2), 2)
	k0 = 1 - math.Sin(phi)
	kp = math.Pow(math.Tan(math.Pi/4+phi/2), 2)
	return ka, k0, kp
}

func Calculate(in Input) (Result, error) {
	if in.Points == 0 {
		in.Points = DefaultPoints
	}
	switch {
	case in.UnitWeightKNM3 <= 0:
		return Result{}, invalid("unit_weight_kn_m3")
	case in.FrictionAngleDeg < 0 || in.FrictionAngleDeg > 45:
		return Result{}, invalid("friction_angle_deg")
	case in.WallHeightM <= 0:
		return Result{}, invalid("wall_height_m")
	case in.Points < 2:
		return Result{}, invalid("points")
	}

	ka, k0, kp := Coefficients(in.FrictionAngleDeg)
	h := in.WallHeightM
	z := floats.Span(make([]float64, in.Points), 0, h)

	res := Result{
		Active:  state(ka, in.UnitWeightKNM3, h),
		AtRest:  state(k0, in.UnitWeightKNM3, h),
		Passive: state(kp, in.UnitWeightKNM3, h),
		Profile: Profile{
			DepthM:     z,
			ActiveKPa:  pressures(ka*in.UnitWeightKNM3, z),
			AtRestKPa:  pressures(k0*in.UnitWeightKNM3, z),
			PassiveKPa: pressures(kp*in.UnitWeightKNM3, z),
		},
	}
	return res, nil
}

// triangular distribution: resultant ½Kγh² at h/3 above the base
func state(k, gamma, h float64) State {
	s := State{
		Coefficient:  k,
		BaseKPa:      k * gamma * h,
		ForceKNPerM:  0.5 * k * gamma * h * h,
		ArmFromBaseM: h / 3,
	}
	s.MomentKNM = s.ForceKNPerM * s.ArmFromBaseM
	return s
}

func pressures(scale float64, z []float64) []float64 {
	return floats.ScaleTo(make([]float64, len(z)), scale, z)
}

func invalid(field string) error {
	return fmt.Errorf("%w: %s", calc.ErrInvalidInput, field)
}
