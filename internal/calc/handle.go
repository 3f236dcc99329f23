// Package calc holds the geotechnical calculators and the request plumbing
// they share.
package calc

import (
	"encoding/json"
	"errors"
	"net/http"

	"GeoSuite/internal/history"
	"GeoSuite/internal/log"
	"GeoSuite/internal/respond"
)

// ErrInvalidInput is wrapped by every calculator when a parameter is out of
// range.
var ErrInvalidInput = errors.New("invalid input")

// Handle decodes the request body into In, runs fn, records the analysis
// under kind and writes the result. Invalid input answers 400.
func Handle[In, Out any](w http.ResponseWriter, r *http.Request, rec *history.Recorder, kind string, fn func(In) (Out, error)) {
	var input In
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "Invalid request payload")
		return
	}
	res, err := fn(input)
	if errors.Is(err, ErrInvalidInput) {
		respond.Error(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		log.Errorw("calculation failed", "kind", kind, "error", err)
		respond.Error(w, r, http.StatusInternalServerError, "Calculation error")
		return
	}
	rec.Record(r.Context(), kind, input, res)
	respond.OK(w, r, res)
}
