package slope

import (
	"encoding/json"
	"errors"
	"net/http"

	"GeoSuite/internal/history"
	"GeoSuite/internal/log"
	"GeoSuite/internal/respond"
)

type Handler struct {
	History *history.Recorder
}

// Calc answers 422 for an unusable circle and 200 with a warning when the
// iteration budget ran out.
func (h *Handler) Calc(w http.ResponseWriter, r *http.Request) {
	var input Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "Invalid request payload")
		return
	}
	res, err := Analyze(input)
	if status, ok := ErrorStatus(err); !ok {
		respond.Error(w, r, status, err.Error())
		return
	}
	h.History.Record(r.Context(), "slope", input, res)
	respond.OK(w, r, res)
}

// ErrorStatus maps an Analyze error to an HTTP status. ok is true when the
// result is still usable.
func ErrorStatus(err error) (int, bool) {
	var geo *GeometryError
	var warn *ConvergenceWarning
	switch {
	case err == nil, errors.As(err, &warn):
		return http.StatusOK, true
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest, false
	case errors.As(err, &geo):
		return http.StatusUnprocessableEntity, false
	default:
		log.Errorf("slope analysis: %v", err)
		return http.StatusInternalServerError, false
	}
}
