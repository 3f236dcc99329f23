package history

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"GeoSuite/internal/auth"
	"GeoSuite/internal/repo"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*repo.Store, int) {
	t.Helper()
	s, err := repo.Open(context.Background(), "sqlite", filepath.Join(t.TempDir(), "h.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	id, err := s.CreateUser(context.Background(), "ana", "ana@example.com", "x")
	require.NoError(t, err)
	return s, id
}

func TestRecordSkipsAnonymous(t *testing.T) {
	s, _ := setup(t)
	rec := &Recorder{Store: s}
	assert.Empty(t, rec.Record(context.Background(), "slope", map[string]int{"a": 1}, nil))

	var nilRec *Recorder
	assert.Empty(t, nilRec.Record(context.Background(), "slope", nil, nil))
}

func TestRecordListGet(t *testing.T) {
	s, userID := setup(t)
	ctx := auth.WithUser(context.Background(), userID, "ana")
	rec := &Recorder{Store: s}

	id := rec.Record(ctx, "bearing", map[string]float64{"width_m": 1}, map[string]float64{"qu_kpa": 541.9})
	require.NotEmpty(t, id)

	h := &Handler{Store: s}
	router := mux.NewRouter()
	router.HandleFunc("/history", h.List)
	router.HandleFunc("/history/{id}", h.Get)

	do := func(path string) *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodGet, path, nil).WithContext(ctx)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, r)
		return w
	}

	w := do("/history")
	require.Equal(t, http.StatusOK, w.Code)
	var list []Entry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, id, list[0].ID)
	assert.Equal(t, "bearing", list[0].Kind)
	assert.Empty(t, list[0].Result)

	w = do("/history/" + id)
	require.Equal(t, http.StatusOK, w.Code)
	var got Entry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.JSONEq(t, `{"qu_kpa":541.9}`, string(got.Result))

	assert.Equal(t, http.StatusNotFound, do("/history/missing").Code)
	assert.Equal(t, http.StatusBadRequest, do("/history?limit=x").Code)
}

func TestHandlerRequiresUser(t *testing.T) {
	s, _ := setup(t)
	h := &Handler{Store: s}
	w := httptest.NewRecorder()
	h.List(w, httptest.NewRequest(http.MethodGet, "/history", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
