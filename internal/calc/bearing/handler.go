package bearing

import (
	"net/http"

	"GeoSuite/internal/calc"
	"GeoSuite/internal/history"
)

type Handler struct {
	History *history.Recorder
}

func (h *Handler) Calc(w http.ResponseWriter, r *http.Request) {
	calc.Handle(w, r, h.History, "bearing", Calculate)
}
