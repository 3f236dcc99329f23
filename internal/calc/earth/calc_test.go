package earth

import (
	"testing"

	"GeoSuite/internal/calc"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoefficients(t *testing.T) {
	ka, k0, kp := Coefficients(30)
	assert.InDelta(t, 1.0/3, ka, 1e-12)
	assert.InDelta(t, 0.5, k0, 1e-12)
	assert.InDelta(t, 3, kp, 1e-12)

	ka, k0, kp = Coefficients(0)
	assert.InDelta(t, 1, ka, 1e-12)
	assert.InDelta(t, 1, k0, 1e-12)
	assert.InDelta(t, 1, kp, 1e-12)
}

func TestCalculate(t *testing.T) {
	res, err := Calculate(Input{UnitWeightKNM3: 18, FrictionAngleDeg: 30, WallHeightM: 3})
	require.NoError(t, err)

	assert.InDelta(t, 18, res.Active.BaseKPa, 1e-9)
	assert.InDelta(t, 27, res.Active.ForceKNPerM, 1e-9)
	assert.InDelta(t, 1, res.Active.ArmFromBaseM, 1e-12)
	assert.InDelta(t, 27, res.Active.MomentKNM, 1e-9)
	assert.InDelta(t, 27, res.AtRest.BaseKPa, 1e-9)
	assert.InDelta(t, 162, res.Passive.BaseKPa, 1e-9)
	assert.InDelta(t, 243, res.Passive.ForceKNPerM, 1e-9)

	p := res.Profile
	require.Len(t, p.DepthM, DefaultPoints)
	assert.Equal(t, 0.0, p.DepthM[0])
	assert.InDelta(t, 3, p.DepthM[DefaultPoints-1], 1e-12)
	assert.InDelta(t, res.Active.BaseKPa, p.ActiveKPa[DefaultPoints-1], 1e-9)
	assert.InDelta(t, res.Passive.BaseKPa, p.PassiveKPa[DefaultPoints-1], 1e-9)
	for i := range p.DepthM {
		assert.LessOrEqual(t, p.ActiveKPa[i], p.AtRestKPa[i])
		assert.LessOrEqual(t, p.AtRestKPa[i], p.PassiveKPa[i])
	}
}

func TestCalculateInvalid(t *testing.T) {
	for name, in := range map[string]Input{
		"gamma":  {FrictionAngleDeg: 30, WallHeightM: 3},
		"phi":    {UnitWeightKNM3: 18, FrictionAngleDeg: 50, WallHeightM: 3},
		"height": {UnitWeightKNM3: 18, FrictionAngleDeg: 30},
		"points": {UnitWeightKNM3: 18, FrictionAngleDeg: 30, WallHeightM: 3, Points: 1},
	} {
		_, err := Calculate(in)
		assert.ErrorIs(t, err, calc.ErrInvalidInput, name)
	}
}
