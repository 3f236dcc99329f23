package slope

import (
	"encoding/json"
	"math"
)

const (
	DefaultSlices = 30
	MaxSlices     = 1000
)

type Input struct {
	CohesionKPa       float64 `json:"cohesion_kpa"`
	FrictionAngleDeg  float64 `json:"friction_angle_deg"`
	UnitWeightKNM3    float64 `json:"unit_weight_kn_m3"`
	SlopeHeightM      float64 `json:"slope_height_m"`
	SlopeAngleDeg     float64 `json:"slope_angle_deg"`
	CenterXM          float64 `json:"center_x_m"`
	CenterYM          float64 `json:"center_y_m"`
	RadiusM           float64 `json:"radius_m"`
	NumSlices         int     `json:"num_slices"`
	PorePressureRatio float64 `json:"pore_pressure_ratio"`
	// GroundProfile is "crest_to_toe" (default) or "toe_plane".
	GroundProfile string `json:"ground_profile,omitempty"`
}

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Section is everything a caller needs to draw the cross-section.
type Section struct {
	Profile            string    `json:"ground_profile"`
	SlopeHeightM       float64   `json:"slope_height_m"`
	SlopeAngleDeg      float64   `json:"slope_angle_deg"`
	ToeXM              float64   `json:"toe_x_m"`
	CenterXM           float64   `json:"center_x_m"`
	CenterYM           float64   `json:"center_y_m"`
	RadiusM            float64   `json:"radius_m"`
	CrestIntersectionX float64   `json:"crest_intersection_x_m"`
	ToeIntersectionX   float64   `json:"toe_intersection_x_m"`
	NumSlices          int       `json:"num_slices"`
	SliceWidthM        float64   `json:"slice_width_m"`
	SliceBoundaries    []float64 `json:"slice_boundaries_m"`
	Ground             []Point   `json:"ground"`
	Face               []Point   `json:"face"`
}

type SliceDetail struct {
	Index           int     `json:"index"`
	Status          string  `json:"status"`
	XMidM           float64 `json:"x_mid_m"`
	HeightM         float64 `json:"height_m"`
	BaseAngleDeg    float64 `json:"base_angle_deg"`
	WeightKN        float64 `json:"weight_kn"`
	PorePressureKPa float64 `json:"pore_pressure_kpa"`
	BaseLengthM     float64 `json:"base_length_m"`
	MAlpha          float64 `json:"m_alpha"`
	DrivingKN       float64 `json:"driving_kn"`
	CohesiveKN      float64 `json:"cohesive_kn"`
	FrictionalKN    float64 `json:"frictional_kn"`
	NumeratorKN     float64 `json:"numerator_kn"`
}

type Result struct {
	SafetyFactor   float64       `json:"safety_factor"`
	Converged      bool          `json:"converged"`
	Iterations     int           `json:"iterations"`
	Status         string        `json:"status"`
	IncludedSlices int           `json:"included_slices"`
	Slices         []SliceDetail `json:"slices"`
	Geometry       Section       `json:"geometry"`
	Warning        string        `json:"warning,omitempty"`
}

// Unbounded reports a zero driving sum.
func (r Result) Unbounded() bool { return math.IsInf(r.SafetyFactor, 1) }

// MarshalJSON encodes an unbounded safety factor as null since JSON has no
// infinity.
func (r Result) MarshalJSON() ([]byte, error) {
	type plain Result
	out := struct {
		plain
		SafetyFactor *float64 `json:"safety_factor"`
		Unbounded    bool     `json:"unbounded"`
	}{plain: plain(r), Unbounded: r.Unbounded()}
	if !out.Unbounded {
		fs := r.SafetyFactor
		out.SafetyFactor = &fs
	}
	return json.Marshal(out)
}

// Classify maps a safety factor to the stability band shown to the user.
func Classify(fs float64) string {
	switch {
	case math.IsInf(fs, 1) || fs >= 1.5:
		return "stable"
	case fs >= 1.0:
		return "marginal"
	default:
		return "unstable"
	}
}

// Validate checks the parameters Analyze would reject before any geometry
// is resolved.
func (in Input) Validate() error {
	_, err := in.validate()
	return err
}

func (in Input) validate() (Input, error) {
	if in.NumSlices == 0 {
		in.NumSlices = DefaultSlices
	}
	switch {
	case in.CohesionKPa < 0:
		return in, invalid("cohesion_kpa")
	case in.FrictionAngleDeg < 0 || in.FrictionAngleDeg >= 90:
		return in, invalid("friction_angle_deg")
	case in.UnitWeightKNM3 <= 0:
		return in, invalid("unit_weight_kn_m3")
	case in.SlopeHeightM <= 0:
		return in, invalid("slope_height_m")
	case in.SlopeAngleDeg <= 0 || in.SlopeAngleDeg >= 90:
		return in, invalid("slope_angle_deg")
	case in.RadiusM <= 0:
		return in, invalid("radius_m")
	case in.NumSlices < 1 || in.NumSlices > MaxSlices:
		return in, invalid("num_slices")
	case in.PorePressureRatio < 0 || in.PorePressureRatio >= 1:
		return in, invalid("pore_pressure_ratio")
	}
	if _, err := ParseProfile(in.GroundProfile); err != nil {
		return in, err
	}
	return in, nil
}

// Analyze runs a Simplified Bishop analysis of one trial circle. On
// non-convergence the populated result is returned with a
// *ConvergenceWarning.
func Analyze(in Input) (Result, error) {
	return AnalyzeWith(in, Settings{})
}

// AnalyzeWith is Analyze with explicit iteration settings.
func AnalyzeWith(in Input, settings Settings) (Result, error) {
	in, err := in.validate()
	if err != nil {
		return Result{}, err
	}
	if in.RadiusM <= math.Abs(in.SlopeHeightM-in.CenterYM) {
		return Result{}, &GeometryError{Reason: ReasonRadiusTooSmall}
	}
	g, err := Resolve(in.SlopeHeightM, in.SlopeAngleDeg, in.CenterXM, in.CenterYM, in.RadiusM)
	if err != nil {
		return Result{}, err
	}
	g.Profile, _ = ParseProfile(in.GroundProfile)
	slices := Discretize(g, in.NumSlices, in.UnitWeightKNM3, in.PorePressureRatio)
	sol := Iterate(slices, in.CohesionKPa, in.FrictionAngleDeg, settings)

	res := Result{
		SafetyFactor:   sol.SafetyFactor,
		Converged:      sol.Converged(),
		Iterations:     sol.Iterations,
		Status:         Classify(sol.SafetyFactor),
		IncludedSlices: len(sol.Forces),
		Slices:         details(slices, sol.Forces),
		Geometry:       section(g, in, slices),
	}
	if !res.Converged {
		w := &ConvergenceWarning{Iterations: sol.Iterations, SafetyFactor: sol.SafetyFactor}
		res.Warning = w.Error()
		return res, w
	}
	return res, nil
}

func details(slices []Slice, forces []SliceForces) []SliceDetail {
	byIndex := make(map[int]SliceForces, len(forces))
	for _, f := range forces {
		byIndex[f.Index] = f
	}
	out := make([]SliceDetail, 0, len(slices))
	for _, s := range slices {
		d := SliceDetail{Index: s.Index, Status: s.Status.String(), XMidM: s.XMid}
		if f, ok := byIndex[s.Index]; ok {
			d.HeightM = s.Height
			d.BaseAngleDeg = s.BaseAngle * 180 / math.Pi
			d.WeightKN = s.Weight
			d.PorePressureKPa = s.PorePressure
			d.BaseLengthM = s.BaseLength
			d.MAlpha = f.MAlpha
			d.DrivingKN = f.Driving
			d.CohesiveKN = f.Cohesive
			d.FrictionalKN = f.Frictional
			d.NumeratorKN = f.Numerator
		}
		out = append(out, d)
	}
	return out
}

func section(g Geometry, in Input, slices []Slice) Section {
	h := g.SlopeHeight
	left := math.Min(-h/2, g.CrestIntersectionX-h/10)
	right := math.Max(g.ToeX+h/2, g.ToeIntersectionX+h/10)
	sec := Section{
		Profile:            g.Profile.String(),
		SlopeHeightM:       h,
		SlopeAngleDeg:      in.SlopeAngleDeg,
		ToeXM:              g.ToeX,
		CenterXM:           g.CenterX,
		CenterYM:           g.CenterY,
		RadiusM:            g.Radius,
		CrestIntersectionX: g.CrestIntersectionX,
		ToeIntersectionX:   g.ToeIntersectionX,
		NumSlices:          in.NumSlices,
		SliceBoundaries:    make([]float64, 0, len(slices)+1),
		Ground:             g.Outline(left, right),
		Face:               []Point{{X: 0, Y: h}, {X: g.ToeX, Y: 0}},
	}
	if len(slices) > 0 {
		sec.SliceWidthM = slices[0].Width
	}
	for _, s := range slices {
		sec.SliceBoundaries = append(sec.SliceBoundaries, s.XLeft)
	}
	sec.SliceBoundaries = append(sec.SliceBoundaries, g.ToeIntersectionX)
	return sec
}
