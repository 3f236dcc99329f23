package slope

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postCalc(t *testing.T, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	h := &Handler{}
	w := httptest.NewRecorder()
	h.Calc(w, httptest.NewRequest(http.MethodPost, "/tools/slope/calc", bytes.NewReader(body)))
	return w
}

func TestHandlerCalc(t *testing.T) {
	body, err := json.Marshal(pinnedInput())
	require.NoError(t, err)

	w := postCalc(t, body)
	require.Equal(t, http.StatusOK, w.Code)
	var got map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.InDelta(t, 2.8191629, got["safety_factor"], 1e-6)
	assert.Equal(t, true, got["converged"])
	assert.EqualValues(t, 30, got["included_slices"])
}

func TestHandlerErrors(t *testing.T) {
	in := pinnedInput()
	in.RadiusM = 8
	geo, _ := json.Marshal(in)

	in = pinnedInput()
	in.UnitWeightKNM3 = -1
	bad, _ := json.Marshal(in)

	assert.Equal(t, http.StatusUnprocessableEntity, postCalc(t, geo).Code)
	assert.Equal(t, http.StatusBadRequest, postCalc(t, bad).Code)
	assert.Equal(t, http.StatusBadRequest, postCalc(t, []byte("{")).Code)
}

func TestErrorStatus(t *testing.T) {
	status, ok := ErrorStatus(&ConvergenceWarning{Iterations: 100})
	assert.True(t, ok)
	assert.Equal(t, http.StatusOK, status)

	status, ok = ErrorStatus(&GeometryError{Reason: ReasonNoFace})
	assert.False(t, ok)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
}
