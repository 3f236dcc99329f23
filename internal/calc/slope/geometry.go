package slope

import (
	"fmt"
	"math"
)

// Profile selects the ground surface that sets slice tops.
type Profile int

const (
	// CrestToToe takes the crest elevation H for every point left of the toe
	// and the face line y = H - x tan β from the toe on.
	CrestToToe Profile = iota
	// ToePlane follows the physical outline: the crest for x <= 0, the face
	// down to the toe and the toe plane y = 0 beyond it.
	ToePlane
)

func (p Profile) String() string {
	switch p {
	case CrestToToe:
		return "crest_to_toe"
	case ToePlane:
		return "toe_plane"
	default:
		return "unknown"
	}
}

// ParseProfile accepts the String form of a Profile. The empty string is
// CrestToToe.
func ParseProfile(s string) (Profile, error) {
	switch s {
	case "", CrestToToe.String():
		return CrestToToe, nil
	case ToePlane.String():
		return ToePlane, nil
	default:
		return 0, fmt.Errorf("%w: ground_profile %q", ErrInvalidInput, s)
	}
}

// Geometry is the slope profile and trial circle with its resolved
// intersections. The face runs from (0, H) to (ToeX, 0).
type Geometry struct {
	Profile            Profile
	SlopeHeight        float64
	SlopeAngle         float64 // radians
	ToeX               float64
	CenterX            float64
	CenterY            float64
	Radius             float64
	CrestIntersectionX float64
	ToeIntersectionX   float64
}

// Resolve intersects the trial circle with the crest plane and the slope
// face. Angles are in degrees.
func Resolve(slopeHeight, slopeAngleDeg, centerX, centerY, radius float64) (Geometry, error) {
	beta := slopeAngleDeg * math.Pi / 180
	tanBeta := math.Tan(beta)
	g := Geometry{
		SlopeHeight: slopeHeight,
		SlopeAngle:  beta,
		ToeX:        slopeHeight / tanBeta,
		CenterX:     centerX,
		CenterY:     centerY,
		Radius:      radius,
	}

	crest := radius*radius - (slopeHeight-centerY)*(slopeHeight-centerY)
	if crest < 0 {
		return Geometry{}, &GeometryError{Reason: ReasonNoCrest}
	}
	g.CrestIntersectionX = centerX - math.Sqrt(crest)

	// face: y = m*x + k
	m := -tanBeta
	k := slopeHeight
	a := 1 + m*m
	b := 2 * (m*k - m*centerY - centerX)
	c := centerX*centerX + k*k - 2*k*centerY + centerY*centerY - radius*radius
	disc := b*b - 4*a*c
	if disc < 0 {
		return Geometry{}, &GeometryError{Reason: ReasonNoFace}
	}
	roots := [2]float64{
		(-b + math.Sqrt(disc)) / (2 * a),
		(-b - math.Sqrt(disc)) / (2 * a),
	}
	found := false
	for _, x := range roots {
		if y := m*x + k; y > 0 && y < slopeHeight {
			g.ToeIntersectionX = x
			found = true
			break
		}
	}
	if !found {
		return Geometry{}, &GeometryError{Reason: ReasonOffFace}
	}
	if g.ToeIntersectionX <= g.CrestIntersectionX {
		return Geometry{}, &GeometryError{Reason: ReasonOrder}
	}
	return g, nil
}

// GroundElevation returns the top of a slice whose midpoint is at x.
func (g Geometry) GroundElevation(x float64) float64 {
	face := g.SlopeHeight - math.Tan(g.SlopeAngle)*x
	if g.Profile == ToePlane {
		switch {
		case x <= 0:
			return g.SlopeHeight
		case x < g.ToeX:
			return face
		default:
			return 0
		}
	}
	if x < g.ToeX {
		return g.SlopeHeight
	}
	return face
}

// Outline returns the ground surface as a polyline from left to right.
func (g Geometry) Outline(left, right float64) []Point {
	h := g.SlopeHeight
	if g.Profile == ToePlane {
		return []Point{{X: left, Y: h}, {X: 0, Y: h}, {X: g.ToeX, Y: 0}, {X: right, Y: 0}}
	}
	return []Point{
		{X: left, Y: h},
		{X: g.ToeX, Y: h},
		{X: g.ToeX, Y: 0},
		{X: right, Y: g.GroundElevation(right)},
	}
}

// ArcElevation returns the elevation of the lower half of the trial circle
// at x. ok is false when the circle does not reach x.
func (g Geometry) ArcElevation(x float64) (y float64, ok bool) {
	dx := x - g.CenterX
	r := g.Radius*g.Radius - dx*dx
	if r < 0 {
		return 0, false
	}
	return g.CenterY - math.Sqrt(r), true
}
