package slope

import (
	"fmt"

	"GeoSuite/internal/calc"
)

var ErrInvalidInput = calc.ErrInvalidInput

// Reasons carried by GeometryError.
const (
	ReasonRadiusTooSmall = "radius too small to reach the crest"
	ReasonNoCrest        = "circle does not intersect crest"
	ReasonNoFace         = "circle does not intersect slope face"
	ReasonOffFace        = "no slope-face intersection lies on the face segment"
	ReasonOrder          = "toe intersection is not right of crest intersection"
)

// GeometryError rejects a trial circle that is not a valid failure surface
// for the slope. The caller has to resubmit a different circle.
type GeometryError struct {
	Reason string
}

func (e *GeometryError) Error() string {
	return "geometry: " + e.Reason
}

// ConvergenceWarning is returned alongside a populated Result when the
// iteration budget ran out. SafetyFactor is the last computed value.
type ConvergenceWarning struct {
	Iterations   int
	SafetyFactor float64
}

func (w *ConvergenceWarning) Error() string {
	return fmt.Sprintf("safety factor did not converge after %d iterations (last value %.4f)", w.Iterations, w.SafetyFactor)
}

func invalid(field string) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, field)
}
