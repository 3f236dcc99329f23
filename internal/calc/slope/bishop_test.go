package slope

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIteratePinned(t *testing.T) {
	slices := Discretize(pinnedGeometry(t), 30, 16, 0)
	sol := Iterate(slices, 10, 30, Settings{})

	assert.Equal(t, Converged, sol.State)
	assert.Equal(t, 4, sol.Iterations)
	assert.InDelta(t, 2.819162914552202, sol.SafetyFactor, 1e-6)
	assert.Len(t, sol.Forces, 30)
	assert.Less(t, math.Abs(sol.SafetyFactor-sol.AssumedFS), DefaultTolerance)
}

func TestIterateExhausted(t *testing.T) {
	slices := Discretize(pinnedGeometry(t), 30, 16, 0)
	for _, max := range []int{1, 2, 3} {
		sol := Iterate(slices, 10, 30, Settings{MaxIterations: max})
		assert.Equal(t, Exhausted, sol.State, "max %d", max)
		assert.Equal(t, max, sol.Iterations)
		assert.False(t, sol.Converged())
	}
}

func TestIterateTightTolerance(t *testing.T) {
	slices := Discretize(pinnedGeometry(t), 30, 16, 0)
	sol := Iterate(slices, 10, 30, Settings{Tolerance: 1e-10})
	assert.Equal(t, Converged, sol.State)
	assert.Equal(t, 10, sol.Iterations)
	assert.InDelta(t, 2.819162914552202, sol.SafetyFactor, 1e-3)
}

func TestIterateNoDrivingForce(t *testing.T) {
	slices := []Slice{{Index: 1, Status: OutOfBounds}, {Index: 2, Status: AboveGround}}
	sol := Iterate(slices, 10, 30, Settings{})
	assert.True(t, math.IsInf(sol.SafetyFactor, 1))
	assert.Equal(t, Converged, sol.State)
	assert.Equal(t, 1, sol.Iterations)
	assert.Empty(t, sol.Forces)
}

func TestIterateFrictionlessIsDirect(t *testing.T) {
	slices := Discretize(pinnedGeometry(t), 30, 16, 0)
	sol := Iterate(slices, 10, 0, Settings{})
	assert.Equal(t, Converged, sol.State)
	assert.Equal(t, 2, sol.Iterations)
	for _, f := range sol.Forces {
		assert.InDelta(t, math.Cos(f.BaseAngle), f.MAlpha, 1e-12)
	}
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "converged", Converged.String())
	assert.Equal(t, "exhausted", Exhausted.String())
	assert.Equal(t, "iterating", Iterating.String())
}
