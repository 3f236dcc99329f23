// Package footing sizes a square isolated footing and checks it against ACI
// 318-19 in kgf and cm units.
package footing

import (
	"fmt"
	"math"

	"GeoSuite/internal/calc"
)

const (
	PhiFlexure   = 0.90
	PhiShear     = 0.75
	LoadFactor   = 1.4
	alphaS       = 40 // interior column
	minSteelRate = 0.0018
)

// ErrInsufficientDepth means no steel ratio can carry the flexural demand.
var ErrInsufficientDepth = fmt.Errorf("%w: effective depth too small for flexure", calc.ErrInvalidInput)

type Input struct {
	AxialLoadKg      float64 `json:"pu_kg"`
	MomentKgM        float64 `json:"mu_kg_m"`
	ConcreteKgCM2    float64 `json:"fc_kg_cm2"`
	SteelKgCM2       float64 `json:"fy_kg_cm2"`
	AllowableKgCM2   float64 `json:"qadm_kg_cm2"`
	ColumnWidthCM    float64 `json:"column_b_cm"`
	ColumnDepthCM    float64 `json:"column_h_cm"`
	EffectiveDepthCM float64 `json:"d_cm"`
	CoverCM          float64 `json:"cover_cm"`
	BarDiameterCM    float64 `json:"bar_diameter_cm"`
	BarAreaCM2       float64 `json:"bar_area_cm2"`
}

// Check is one demand/capacity comparison.
type Check struct {
	Demand   float64 `json:"demand"`
	Capacity float64 `json:"capacity"`
	Pass     bool    `json:"pass"`
}

type Flexure struct {
	MomentKgM   float64 `json:"mu_kg_m"`
	Rho         float64 `json:"rho"`
	AsReqCM2    float64 `json:"as_required_cm2"`
	AsMinCM2    float64 `json:"as_min_cm2"`
	AsCM2       float64 `json:"as_design_cm2"`
	Bars        int     `json:"bars"`
	SpacingCM   float64 `json:"spacing_cm"`
	BarAreaCM2  float64 `json:"bar_area_cm2"`
	BarDiameter float64 `json:"bar_diameter_cm"`
}

type Result struct {
	ServiceLoadKg    float64 `json:"service_load_kg"`
	RequiredAreaCM2  float64 `json:"required_area_cm2"`
	SideCM           float64 `json:"side_cm"`
	TotalDepthCM     float64 `json:"total_depth_cm"`
	EccentricityCM   float64 `json:"eccentricity_cm"`
	FactoredPressure float64 `json:"qu_kg_cm2"`
	Bearing          Check   `json:"bearing"`
	OneWayShear      Check   `json:"one_way_shear"`
	PunchingShear    Check   `json:"punching_shear"`
	Flexure          Flexure `json:"flexure"`
	Development      Check   `json:"development_length"`
	OK               bool    `json:"ok"`
}

func (in Input) withDefaults() Input {
	def := func(v *float64, d float64) {
		if *v == 0 {
			*v = d
		}
	}
	def(&in.AxialLoadKg, 15000)
	def(&in.ConcreteKgCM2, 210)
	def(&in.SteelKgCM2, 4200)
	def(&in.AllowableKgCM2, 2)
	def(&in.ColumnWidthCM, 40)
	def(&in.ColumnDepthCM, 40)
	def(&in.EffectiveDepthCM, 50)
	def(&in.CoverCM, 7.5)
	def(&in.BarDiameterCM, 1.27)
	def(&in.BarAreaCM2, 1.27)
	return in
}

func Calculate(in Input) (Result, error) {
	in = in.withDefaults()
	switch {
	case in.AxialLoadKg <= 0:
		return Result{}, invalid("pu_kg")
	case in.MomentKgM < 0:
		return Result{}, invalid("mu_kg_m")
	case in.ConcreteKgCM2 <= 0:
		return Result{}, invalid("fc_kg_cm2")
	case in.SteelKgCM2 <= 0:
		return Result{}, invalid("fy_kg_cm2")
	case in.AllowableKgCM2 <= 0:
		return Result{}, invalid("qadm_kg_cm2")
	case in.ColumnWidthCM <= 0:
		return Result{}, invalid("column_b_cm")
	case in.ColumnDepthCM <= 0:
		return Result{}, invalid("column_h_cm")
	case in.EffectiveDepthCM <= 0:
		return Result{}, invalid("d_cm")
	case in.CoverCM < 0:
		return Result{}, invalid("cover_cm")
	case in.BarDiameterCM <= 0:
		return Result{}, invalid("bar_diameter_cm")
	case in.BarAreaCM2 <= 0:
		return Result{}, invalid("bar_area_cm2")
	}

	var res Result
	b, h, d := in.ColumnWidthCM, in.ColumnDepthCM, in.EffectiveDepthCM
	sqrtFc := math.Sqrt(in.ConcreteKgCM2)

	// plan
	res.ServiceLoadKg = in.AxialLoadKg / LoadFactor
	res.RequiredAreaCM2 = res.ServiceLoadKg / in.AllowableKgCM2
	side := math.Ceil(math.Sqrt(res.RequiredAreaCM2)/10-1e-9) * 10
	side = math.Max(side, math.Max(b, h)+2*in.CoverCM)
	res.SideCM = side
	res.TotalDepthCM = d + in.CoverCM + in.BarDiameterCM
	area := side * side

	res.EccentricityCM = in.MomentKgM * 100 / in.AxialLoadKg
	qmax := res.ServiceLoadKg / area * (1 + 6*res.EccentricityCM/side)
	res.Bearing = check(qmax, in.AllowableKgCM2)

	qu := in.AxialLoadKg / area
	res.FactoredPressure = qu

	// one-way shear at d from the column face
	cantilever := (side - h) / 2
	res.OneWayShear = check(
		math.Max(0, qu*(cantilever-d)*side),
		PhiShear*0.53*sqrtFc*side*d,
	)

	// punching on the critical perimeter at d/2
	bo := 2*(b+d) + 2*(h+d)
	beta := math.Max(b, h) / math.Min(b, h)
	vc := math.Min(1.06, math.Min(0.53*(1+2/beta), 0.27*(alphaS*d/bo+2))) * sqrtFc
	res.PunchingShear = check(
		math.Max(0, qu*(area-(b+d)*(h+d))),
		PhiShear*vc*bo*d,
	)

	// flexure at the column face
	x := (side - b) / 2
	mu := qu * side * x * x / 2
	disc := 1 - 2*mu/(0.85*in.ConcreteKgCM2*side*d*d*PhiFlexure)
	if disc < 0 {
		return Result{}, ErrInsufficientDepth
	}
	fl := Flexure{
		MomentKgM:   mu / 100,
		Rho:         0.85 * in.ConcreteKgCM2 / in.SteelKgCM2 * (1 - math.Sqrt(disc)),
		BarAreaCM2:  in.BarAreaCM2,
		BarDiameter: in.BarDiameterCM,
	}
	fl.AsReqCM2 = fl.Rho * side * d
	fl.AsMinCM2 = minSteelRate * side * res.TotalDepthCM
	fl.AsCM2 = math.Max(fl.AsReqCM2, fl.AsMinCM2)
	fl.Bars = max(2, int(math.Ceil(fl.AsCM2/in.BarAreaCM2)))
	fl.SpacingCM = (side - 2*in.CoverCM - in.BarDiameterCM) / float64(fl.Bars-1)
	res.Flexure = fl

	// straight-bar development length, ψt = ψe = ψs = λ = 1
	db := in.BarDiameterCM
	confinement := math.Min(2.5, (in.CoverCM+db/2)/db)
	ld := math.Max(30, in.SteelKgCM2/(3.5*sqrtFc)*(0.8/confinement)*db)
	available := (side-h)/2 - in.CoverCM
	res.Development = Check{Demand: ld, Capacity: available, Pass: available >= ld}

	res.OK = res.Bearing.Pass && res.OneWayShear.Pass && res.PunchingShear.Pass && res.Development.Pass
	return res, nil
}

func check(demand, capacity float64) Check {
	return Check{Demand: demand, Capacity: capacity, Pass: demand <= capacity}
}

func invalid(field string) error {
	return fmt.Errorf("%w: %s", calc.ErrInvalidInput, field)
}
