package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"GeoSuite/internal/auth"
	"GeoSuite/internal/config"
	"GeoSuite/internal/repo"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pinnedSlope = `{"cohesion_kpa":10,"friction_angle_deg":30,"unit_weight_kn_m3":16,
	"slope_height_m":10,"slope_angle_deg":45,"center_x_m":5,"center_y_m":18,"radius_m":15,"num_slices":30}`

func newServer(t *testing.T) http.Handler {
	t.Helper()
	store, err := repo.Open(context.Background(), "sqlite", filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	cfg := config.Config{
		TokenKey:       []byte("test-key"),
		StaticDir:      t.TempDir(),
		RateLimitRPS:   1000,
		RateLimitBurst: 1000,
	}
	r := mux.NewRouter()
	HandleList(r, cfg, store)
	return CORS(r)
}

func do(h http.Handler, method, path, body string, cookie *http.Cookie) *httptest.ResponseRecorder {
	r := httptest.NewRequest(method, path, strings.NewReader(body))
	if cookie != nil {
		r.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func login(t *testing.T, h http.Handler) *http.Cookie {
	t.Helper()
	w := do(h, http.MethodPost, "/api/register", `{"login":"ana","email":"ana@example.com","password":"secret1"}`, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	for _, c := range w.Result().Cookies() {
		if c.Name == auth.CookieName {
			return c
		}
	}
	t.Fatal("no session cookie")
	return nil
}

func TestToolsRequireSession(t *testing.T) {
	h := newServer(t)
	w := do(h, http.MethodPost, "/api/user/tools/slope/calc", pinnedSlope, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSlopeCalcIsRecorded(t *testing.T) {
	h := newServer(t)
	cookie := login(t, h)

	w := do(h, http.MethodPost, "/api/user/tools/slope/calc", pinnedSlope, cookie)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res struct {
		SafetyFactor float64 `json:"safety_factor"`
		Iterations   int     `json:"iterations"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.InDelta(t, 2.8191629, res.SafetyFactor, 1e-6)
	assert.Equal(t, 4, res.Iterations)

	w = do(h, http.MethodGet, "/api/user/history", "", cookie)
	require.Equal(t, http.StatusOK, w.Code)
	var entries []struct {
		ID   string `json:"id"`
		Kind string `json:"kind"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "slope", entries[0].Kind)

	w = do(h, http.MethodGet, "/api/user/history/"+entries[0].ID, "", cookie)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSlopeGeometryErrorStatus(t *testing.T) {
	h := newServer(t)
	cookie := login(t, h)
	body := strings.Replace(pinnedSlope, `"radius_m":15`, `"radius_m":5`, 1)
	w := do(h, http.MethodPost, "/api/user/tools/slope/calc", body, cookie)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestSlopePlotRoute(t *testing.T) {
	h := newServer(t)
	cookie := login(t, h)
	w := do(h, http.MethodPost, "/api/user/tools/slope/plot?format=svg", pinnedSlope, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "svg")
}

func TestCORSPreflight(t *testing.T) {
	h := newServer(t)
	w := do(h, http.MethodOptions, "/api/login", "", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
