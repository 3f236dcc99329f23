package importer

import (
	"encoding/json"
	"errors"
	"net/http"

	"GeoSuite/internal/calc/batch"
	"GeoSuite/internal/calc/slope"
	"GeoSuite/internal/history"
	"GeoSuite/internal/log"
	"GeoSuite/internal/respond"
)

const (
	MaxUploadSize = 10 << 20
	xlsxType      = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type Handler struct {
	History *history.Recorder
}

type SlopeImportResult struct {
	Count   int                    `json:"count"`
	Skipped []int                  `json:"skipped_lines,omitempty"`
	Lines   []int                  `json:"lines"`
	Batch   batch.SlopeBatchResult `json:"batch"`
}

// Slope runs every row of an uploaded workbook through the slope analysis.
func (h *Handler) Slope(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize)
	file, _, err := r.FormFile("file")
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, "File required")
		return
	}
	defer file.Close()

	rows, skipped, err := ParseSlopeRows(file)
	if errors.Is(err, ErrEmptySheet) {
		respond.Error(w, r, http.StatusBadRequest, "Empty sheet")
		return
	}
	if err != nil {
		log.Debugf("import: %v", err)
		respond.Error(w, r, http.StatusBadRequest, "Invalid file")
		return
	}
	if len(rows) == 0 {
		respond.Error(w, r, http.StatusBadRequest, "No valid rows")
		return
	}
	if len(rows) > batch.MaxItems {
		respond.Error(w, r, http.StatusBadRequest, "Too many rows")
		return
	}

	in := batch.SlopeBatchInput{Items: make([]slope.Input, len(rows))}
	out := SlopeImportResult{Count: len(rows), Skipped: skipped, Lines: make([]int, len(rows))}
	for i, row := range rows {
		in.Items[i] = row.Input
		out.Lines[i] = row.Line
	}
	res, err := batch.CalculateSlopes(in)
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, err.Error())
		return
	}
	out.Batch = res
	h.History.Record(r.Context(), "slope_import", in, res)
	respond.OK(w, r, out)
}

// Export answers with the slice table of one analysis as a workbook.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	var input slope.Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "Invalid request payload")
		return
	}
	res, err := slope.Analyze(input)
	if status, ok := slope.ErrorStatus(err); !ok {
		respond.Error(w, r, status, err.Error())
		return
	}
	body, err := ExportSlices(input, res)
	if err != nil {
		log.Errorf("export slices: %v", err)
		respond.Error(w, r, http.StatusInternalServerError, "Export error")
		return
	}
	respond.File(w, xlsxType, "slices.xlsx", body)
}
