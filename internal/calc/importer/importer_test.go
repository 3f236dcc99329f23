package importer

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"GeoSuite/internal/calc/slope"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func workbook(t *testing.T, rows map[int][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for line, row := range rows {
		require.NoError(t, f.SetSheetRow(sheet, cell(1, line), &row))
	}
	var buf bytes.Buffer
	_, err := f.WriteTo(&buf)
	require.NoError(t, err)
	return buf.Bytes()
}

func sampleRows() map[int][]any {
	header := make([]any, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	return map[int][]any{
		1: header,
		2: {10, 30, 16, 10, 45, 5, 18, 15},
		3: {"x", 30, 16, 10, 45, 5, 18, 15},
		4: {10, 30, 16, 10, 45},
		5: {10, 30, 16, 10, 45, 5, 18, 15, 20, "0,3"},
		7: {10, 30, 16, 10, 45, 5, 18, 8},
	}
}

func TestParseSlopeRows(t *testing.T) {
	rows, skipped, err := ParseSlopeRows(bytes.NewReader(workbook(t, sampleRows())))
	require.NoError(t, err)
	assert.Equal(t, []int{3, 4}, skipped)
	require.Len(t, rows, 3)

	assert.Equal(t, 2, rows[0].Line)
	assert.Equal(t, slope.Input{
		CohesionKPa: 10, FrictionAngleDeg: 30, UnitWeightKNM3: 16,
		SlopeHeightM: 10, SlopeAngleDeg: 45, CenterXM: 5, CenterYM: 18, RadiusM: 15,
	}, rows[0].Input)

	assert.Equal(t, 5, rows[1].Line)
	assert.Equal(t, 20, rows[1].Input.NumSlices)
	assert.InDelta(t, 0.3, rows[1].Input.PorePressureRatio, 1e-12)
	assert.Equal(t, 7, rows[2].Line)
}

func TestParseSlopeRowsEmpty(t *testing.T) {
	_, _, err := ParseSlopeRows(bytes.NewReader(workbook(t, map[int][]any{1: {"cohesion"}})))
	assert.ErrorIs(t, err, ErrEmptySheet)

	_, _, err = ParseSlopeRows(bytes.NewReader([]byte("not a workbook")))
	assert.Error(t, err)
}

func TestExportSlices(t *testing.T) {
	in := slope.Input{
		CohesionKPa: 10, FrictionAngleDeg: 30, UnitWeightKNM3: 16,
		SlopeHeightM: 10, SlopeAngleDeg: 45, CenterXM: 5, CenterYM: 18, RadiusM: 15, NumSlices: 30,
	}
	res, err := slope.Analyze(in)
	require.NoError(t, err)

	body, err := ExportSlices(in, res)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(body))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Summary", "Slices"}, f.GetSheetList())
	rows, err := f.GetRows("Slices")
	require.NoError(t, err)
	require.Len(t, rows, 31)
	assert.Equal(t, "index", rows[0][0])
	assert.Equal(t, "included", rows[1][1])

	v, err := f.GetCellValue("Summary", "B10")
	require.NoError(t, err)
	fs, err := strconv.ParseFloat(v, 64)
	require.NoError(t, err)
	assert.InDelta(t, 2.8191629, fs, 1e-6)
}

func TestImportHandler(t *testing.T) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "slopes.xlsx")
	require.NoError(t, err)
	_, err = part.Write(workbook(t, sampleRows()))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	r := httptest.NewRequest(http.MethodPost, "/tools/slope/import", &body)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	(&Handler{}).Slope(w, r)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var out SlopeImportResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, 3, out.Count)
	assert.Equal(t, []int{2, 5, 7}, out.Lines)
	assert.Equal(t, []int{3, 4}, out.Skipped)
	assert.Equal(t, 1, out.Batch.Failed)
	assert.Contains(t, out.Batch.Results[2].Error, "geometry")
}

func TestImportHandlerRequiresFile(t *testing.T) {
	w := httptest.NewRecorder()
	(&Handler{}).Slope(w, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportHandler(t *testing.T) {
	payload := []byte(`{"cohesion_kpa":10,"friction_angle_deg":30,"unit_weight_kn_m3":16,"slope_height_m":10,
		"slope_angle_deg":45,"center_x_m":5,"center_y_m":18,"radius_m":15}`)
	w := httptest.NewRecorder()
	(&Handler{}).Export(w, httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(payload)))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxType, w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("PK")))
}
