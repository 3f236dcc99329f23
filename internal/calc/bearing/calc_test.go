package bearing

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"GeoSuite/internal/calc"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFactors(t *testing.T) {
	tests := []struct {
		phi        float64
		nc, nq, ng float64
	}{
		{0, 5.7, 1, 0},
		{30, 37.16243, 22.45574, 19.13},
		{32.5, 46.00530, 30.30861, 29.405},
		{50, 0, 0, 1072.80},
	}
	for _, tt := range tests {
		nc, nq, ng := Factors(tt.phi)
		if tt.nc != 0 {
			assert.InDelta(t, tt.nc, nc, 1e-4, "Nc at %v", tt.phi)
			assert.InDelta(t, tt.nq, nq, 1e-4, "Nq at %v", tt.phi)
		}
		assert.InDelta(t, tt.ng, ng, 1e-9, "Nγ at %v", tt.phi)
	}
}

func TestNGammaClamps(t *testing.T) {
	assert.Equal(t, 0.0, NGamma(-5))
	assert.Equal(t, 1072.80, NGamma(60))
	assert.InDelta(t, 19.13, NGamma(30), 1e-12)
}

func TestCalculate(t *testing.T) {
	base := Input{WidthM: 1, DepthM: 1, UnitWeightKNM3: 18, FrictionAngleDeg: 30}

	tests := []struct {
		name   string
		modify func(*Input)
		qu     float64
		qadm   float64
	}{
		{"square cohesionless", func(*Input) {}, 541.9393, 180.6464},
		{"square with cohesion", func(in *Input) { in.CohesionKPa = 10 }, 1025.051, 1025.051 / 3},
		{"strip", func(in *Input) { in.Shape = Strip }, 576.3733, 576.3733 / 3},
		{"circular", func(in *Input) { in.Shape = Circular }, 507.5053, 507.5053 / 3},
		{"custom factor of safety", func(in *Input) { in.SafetyFactor = 2.5 }, 541.9393, 541.9393 / 2.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := base
			tt.modify(&in)
			res, err := Calculate(in)
			require.NoError(t, err)
			assert.InDelta(t, tt.qu, res.UltimateKPa, 1e-3)
			assert.InDelta(t, tt.qadm, res.AllowableKPa, 1e-3)
		})
	}
}

func TestCalculateDefaults(t *testing.T) {
	res, err := Calculate(Input{WidthM: 1, DepthM: 1, UnitWeightKNM3: 18, FrictionAngleDeg: 30})
	require.NoError(t, err)
	assert.Equal(t, Square, res.Shape)
	assert.Equal(t, 3.0, res.SafetyFactor)
	assert.InDelta(t, 18, res.OverburdenKPa, 1e-12)
	assert.InDelta(t, res.AllowableKPa, res.AllowableLoadKN, 1e-9)
}

func TestCalculateInvalid(t *testing.T) {
	for name, in := range map[string]Input{
		"width":    {UnitWeightKNM3: 18},
		"gamma":    {WidthM: 1},
		"phi":      {WidthM: 1, UnitWeightKNM3: 18, FrictionAngleDeg: 55},
		"shape":    {WidthM: 1, UnitWeightKNM3: 18, Shape: "hexagon"},
		"cohesion": {WidthM: 1, UnitWeightKNM3: 18, CohesionKPa: -2},
	} {
		_, err := Calculate(in)
		assert.ErrorIs(t, err, calc.ErrInvalidInput, name)
	}
}

func TestHandler(t *testing.T) {
	body, _ := json.Marshal(Input{WidthM: 1, DepthM: 1, UnitWeightKNM3: 18, FrictionAngleDeg: 30})
	w := httptest.NewRecorder()
	(&Handler{}).Calc(w, httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body)))
	require.Equal(t, http.StatusOK, w.Code)
	var res Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.InDelta(t, 541.9393, res.UltimateKPa, 1e-3)

	w = httptest.NewRecorder()
	(&Handler{}).Calc(w, httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte(`{"width_m":0}`))))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
