package report

import (
	"encoding/json"
	"net/http"
	"time"

	"GeoSuite/internal/calc/slope"
	"GeoSuite/internal/respond"
)

type Handler struct{}

func (h *Handler) Slope(w http.ResponseWriter, r *http.Request) {
	var input Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "Invalid request payload")
		return
	}
	body, err := Slope(input, time.Now())
	if status, ok := slope.ErrorStatus(err); !ok {
		msg := "Report generation error"
		if status != http.StatusInternalServerError {
			msg = err.Error()
		}
		respond.Error(w, r, status, msg)
		return
	}
	respond.File(w, "application/pdf", "slope-report.pdf", body)
}
