package slope

import "math"

type SliceStatus int

const (
	Included SliceStatus = iota
	// OutOfBounds: the trial circle does not reach the slice midpoint.
	OutOfBounds
	// AboveGround: the arc lies above the ground surface at the midpoint.
	AboveGround
)

func (s SliceStatus) String() string {
	switch s {
	case Included:
		return "included"
	case OutOfBounds:
		return "out_of_bounds"
	case AboveGround:
		return "above_ground"
	default:
		return "unknown"
	}
}

// Slice is one vertical strip of the sliding mass. Only Included slices
// carry meaningful base, weight and pressure values.
type Slice struct {
	Index        int
	Status       SliceStatus
	XLeft        float64
	XRight       float64
	XMid         float64
	Width        float64
	Top          float64
	Base         float64
	Height       float64
	BaseAngle    float64 // radians, positive down-slope
	Weight       float64
	PorePressure float64
	BaseLength   float64
}

// Discretize splits the span between the crest and toe intersections into n
// equal-width slices. Every slice is returned, excluded ones tagged with
// their status.
func Discretize(g Geometry, n int, unitWeight, ru float64) []Slice {
	if n < 1 {
		return nil
	}
	width := (g.ToeIntersectionX - g.CrestIntersectionX) / float64(n)
	slices := make([]Slice, 0, n)
	for j := 0; j < n; j++ {
		s := Slice{Index: j + 1, Width: width}
		s.XLeft = g.CrestIntersectionX + float64(j)*width
		s.XRight = s.XLeft + width
		s.XMid = (s.XLeft + s.XRight) / 2
		s.Top = g.GroundElevation(s.XMid)

		base, ok := g.ArcElevation(s.XMid)
		if !ok {
			s.Status = OutOfBounds
			slices = append(slices, s)
			continue
		}
		s.Base = base
		s.Height = s.Top - s.Base
		if s.Height < 0 {
			s.Status = AboveGround
			slices = append(slices, s)
			continue
		}

		s.BaseAngle = math.Atan2(g.CenterY-s.Base, s.XMid-g.CenterX) - math.Pi/2
		s.Weight = s.Height * width * unitWeight
		s.PorePressure = ru * unitWeight * s.Height
		s.BaseLength = width / math.Cos(s.BaseAngle)
		slices = append(slices, s)
	}
	return slices
}

// IncludedCount reports how many slices enter the force sums.
func IncludedCount(slices []Slice) int {
	n := 0
	for _, s := range slices {
		if s.Status == Included {
			n++
		}
	}
	return n
}
