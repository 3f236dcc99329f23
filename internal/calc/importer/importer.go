// Package importer reads slope inputs from spreadsheets and writes slice
// tables back out as XLSX.
package importer

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"GeoSuite/internal/calc/slope"

	"github.com/xuri/excelize/v2"
)

// Columns is the expected header, in order. The last two are optional.
var Columns = []string{
	"cohesion", "friction_angle", "unit_weight", "slope_height", "slope_angle",
	"center_x", "center_y", "radius", "num_slices", "ru",
}

const requiredColumns = 8

var ErrEmptySheet = errors.New("sheet has no data rows")

// Row is one parsed spreadsheet line. Line is 1-based as shown in the sheet.
type Row struct {
	Line  int         `json:"line"`
	Input slope.Input `json:"input"`
}

// ParseSlopeRows reads the first sheet, skipping the header row. Rows that
// do not parse are skipped and reported by line number.
func ParseSlopeRows(r io.Reader) (rows []Row, skipped []int, err error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	all, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(all) < 2 {
		return nil, nil, ErrEmptySheet
	}
	for i := 1; i < len(all); i++ {
		if blank(all[i]) {
			continue
		}
		in, err := parseSlopeRow(all[i])
		if err != nil {
			skipped = append(skipped, i+1)
			continue
		}
		rows = append(rows, Row{Line: i + 1, Input: in})
	}
	return rows, skipped, nil
}

func parseSlopeRow(row []string) (slope.Input, error) {
	if len(row) < requiredColumns {
		return slope.Input{}, fmt.Errorf("bad row")
	}
	v := make([]float64, len(Columns))
	for i := range Columns {
		if i >= len(row) || strings.TrimSpace(row[i]) == "" {
			if i < requiredColumns {
				return slope.Input{}, fmt.Errorf("missing %s", Columns[i])
			}
			continue
		}
		f, err := toFloat(row[i])
		if err != nil {
			return slope.Input{}, fmt.Errorf("%s: %w", Columns[i], err)
		}
		v[i] = f
	}
	return slope.Input{
		CohesionKPa:       v[0],
		FrictionAngleDeg:  v[1],
		UnitWeightKNM3:    v[2],
		SlopeHeightM:      v[3],
		SlopeAngleDeg:     v[4],
		CenterXM:          v[5],
		CenterYM:          v[6],
		RadiusM:           v[7],
		NumSlices:         int(v[8]),
		PorePressureRatio: v[9],
	}, nil
}

func toFloat(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	return strconv.ParseFloat(s, 64)
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

var sliceHeader = []any{
	"index", "status", "x_mid_m", "height_m", "base_angle_deg", "weight_kn",
	"pore_pressure_kpa", "base_length_m", "m_alpha", "driving_kn", "cohesive_kn",
	"frictional_kn", "numerator_kn",
}

// ExportSlices writes a workbook with a summary sheet and the slice table of
// res.
func ExportSlices(in slope.Input, res slope.Result) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const summary, slices = "Summary", "Slices"
	if err := f.SetSheetName(f.GetSheetName(0), summary); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(slices); err != nil {
		return nil, err
	}

	fs := any(res.SafetyFactor)
	if res.Unbounded() {
		fs = "unbounded"
	}
	summaryRows := [][]any{
		{"cohesion_kpa", in.CohesionKPa},
		{"friction_angle_deg", in.FrictionAngleDeg},
		{"unit_weight_kn_m3", in.UnitWeightKNM3},
		{"slope_height_m", in.SlopeHeightM},
		{"slope_angle_deg", in.SlopeAngleDeg},
		{"center_x_m", in.CenterXM},
		{"center_y_m", in.CenterYM},
		{"radius_m", in.RadiusM},
		{"pore_pressure_ratio", in.PorePressureRatio},
		{"safety_factor", fs},
		{"status", res.Status},
		{"converged", res.Converged},
		{"iterations", res.Iterations},
		{"included_slices", res.IncludedSlices},
	}
	for i, row := range summaryRows {
		if err := f.SetSheetRow(summary, cell(1, i+1), &row); err != nil {
			return nil, err
		}
	}

	if err := f.SetSheetRow(slices, "A1", &sliceHeader); err != nil {
		return nil, err
	}
	for i, s := range res.Slices {
		row := []any{
			s.Index, s.Status, s.XMidM, s.HeightM, s.BaseAngleDeg, s.WeightKN,
			s.PorePressureKPa, s.BaseLengthM, s.MAlpha, s.DrivingKN, s.CohesiveKN,
			s.FrictionalKN, s.NumeratorKN,
		}
		if err := f.SetSheetRow(slices, cell(1, i+2), &row); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
