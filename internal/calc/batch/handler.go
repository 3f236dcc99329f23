package batch

import (
	"net/http"

	"GeoSuite/internal/calc"
	"GeoSuite/internal/history"
)

type Handler struct {
	History *history.Recorder
}

func (h *Handler) Slope(w http.ResponseWriter, r *http.Request) {
	calc.Handle(w, r, h.History, "slope_batch", CalculateSlopes)
}

// Search stops evaluating trials when the client goes away.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	calc.Handle(w, r, h.History, "slope_search", func(in SearchInput) (SearchResult, error) {
		return Search(r.Context(), in)
	})
}
