// Package history stores finished calculations per user and serves them back.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"GeoSuite/internal/auth"
	"GeoSuite/internal/log"
	"GeoSuite/internal/repo"
	"GeoSuite/internal/respond"

	"github.com/gorilla/mux"
)

type Store interface {
	SaveAnalysis(ctx context.Context, a *repo.Analysis) error
	ListAnalyses(ctx context.Context, userID, limit int) ([]repo.Analysis, error)
	GetAnalysis(ctx context.Context, userID int, id string) (repo.Analysis, error)
}

// Recorder saves one calculation. A nil Recorder is valid and saves nothing.
type Recorder struct {
	Store Store
}

// Record saves the input and result of a calculation for the caller in ctx
// and returns the new analysis id. Anonymous callers are skipped.
func (rec *Recorder) Record(ctx context.Context, kind string, input, result any) string {
	if rec == nil || rec.Store == nil {
		return ""
	}
	userID, ok := auth.UserID(ctx)
	if !ok {
		return ""
	}
	in, err := json.Marshal(input)
	if err != nil {
		log.Warnf("history: encoding %s input: %v", kind, err)
		return ""
	}
	out, err := json.Marshal(result)
	if err != nil {
		log.Warnf("history: encoding %s result: %v", kind, err)
		return ""
	}
	a := &repo.Analysis{UserID: userID, Kind: kind, Input: string(in), Result: string(out)}
	if err := rec.Store.SaveAnalysis(ctx, a); err != nil {
		log.Errorw("history: saving analysis", "kind", kind, "user", userID, "error", err)
		return ""
	}
	return a.ID
}

type Entry struct {
	ID        string          `json:"id"`
	Kind      string          `json:"kind"`
	CreatedAt string          `json:"created_at"`
	Input     json.RawMessage `json:"input,omitempty"`
	Result    json.RawMessage `json:"result,omitempty"`
}

func entry(a repo.Analysis, full bool) Entry {
	e := Entry{ID: a.ID, Kind: a.Kind, CreatedAt: a.CreatedAt.UTC().Format(time.RFC3339)}
	if full {
		e.Input = json.RawMessage(a.Input)
		e.Result = json.RawMessage(a.Result)
	}
	return e
}

type Handler struct {
	Store Store
}

// List returns the caller's analyses, newest first, without payloads.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		respond.Error(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			respond.Error(w, r, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}
	list, err := h.Store.ListAnalyses(r.Context(), userID, limit)
	if err != nil {
		log.Errorf("ListAnalyses: %v", err)
		respond.Error(w, r, http.StatusInternalServerError, "Database error")
		return
	}
	out := make([]Entry, 0, len(list))
	for _, a := range list {
		out = append(out, entry(a, false))
	}
	respond.OK(w, r, out)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		respond.Error(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}
	id := mux.Vars(r)["id"]
	if id == "" {
		respond.Error(w, r, http.StatusBadRequest, "Missing id")
		return
	}
	a, err := h.Store.GetAnalysis(r.Context(), userID, id)
	if errors.Is(err, repo.ErrNotFound) {
		respond.Error(w, r, http.StatusNotFound, "Analysis not found")
		return
	}
	if err != nil {
		log.Errorf("GetAnalysis: %v", err)
		respond.Error(w, r, http.StatusInternalServerError, "Database error")
		return
	}
	respond.OK(w, r, entry(a, true))
}
