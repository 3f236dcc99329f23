package render

import (
	"encoding/json"
	"errors"
	"net/http"

	"GeoSuite/internal/calc"
	"GeoSuite/internal/calc/earth"
	"GeoSuite/internal/calc/settlement"
	"GeoSuite/internal/calc/slope"
	"GeoSuite/internal/calc/triaxial"
	"GeoSuite/internal/log"
	"GeoSuite/internal/respond"

	"gonum.org/v1/plot"
)

type Handler struct{}

func (h *Handler) Slope(w http.ResponseWriter, r *http.Request) {
	serve(w, r, "slope", slope.Analyze, SlopeSection)
}

func (h *Handler) Earth(w http.ResponseWriter, r *http.Request) {
	serve(w, r, "earth", earth.Calculate, EarthPressure)
}

func (h *Handler) Triaxial(w http.ResponseWriter, r *http.Request) {
	serve(w, r, "triaxial", triaxial.Calculate, MohrCircles)
}

func (h *Handler) Settlement(w http.ResponseWriter, r *http.Request) {
	serve(w, r, "settlement", settlement.Calculate, Settlement)
}

func serve[In, Out any](w http.ResponseWriter, r *http.Request, name string, compute func(In) (Out, error), draw func(Out) (*plot.Plot, error)) {
	format, err := ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, err.Error())
		return
	}
	var input In
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "Invalid request payload")
		return
	}
	res, err := compute(input)
	var warn *slope.ConvergenceWarning
	var geo *slope.GeometryError
	switch {
	case err == nil, errors.As(err, &warn):
	case errors.As(err, &geo):
		respond.Error(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	case errors.Is(err, calc.ErrInvalidInput):
		respond.Error(w, r, http.StatusBadRequest, err.Error())
		return
	default:
		log.Errorw("plot calculation failed", "chart", name, "error", err)
		respond.Error(w, r, http.StatusInternalServerError, "Calculation error")
		return
	}
	p, err := draw(res)
	if err == nil {
		var body []byte
		body, err = Encode(p, format, DefaultWidth, DefaultHeight)
		if err == nil {
			respond.File(w, format.ContentType(), "", body)
			return
		}
	}
	log.Errorw("rendering chart", "chart", name, "error", err)
	respond.Error(w, r, http.StatusInternalServerError, "Render error")
}
