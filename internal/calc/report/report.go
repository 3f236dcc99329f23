// Package report renders a slope stability analysis as a PDF document.
package report

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"time"

	"GeoSuite/internal/calc/slope"
	"GeoSuite/internal/render"

	"github.com/phpdave11/gofpdf"
	"gonum.org/v1/plot/vg"
)

type Input struct {
	Project string      `json:"project"`
	Author  string      `json:"author"`
	Title   string      `json:"title"`
	Notes   string      `json:"notes"`
	Slope   slope.Input `json:"slope"`
}

// Slope analyzes in.Slope and lays out the report. A non-convergent analysis
// is still reported and flagged as provisional; any other analysis error is
// returned.
func Slope(in Input, now time.Time) ([]byte, error) {
	res, err := slope.Analyze(in.Slope)
	var warn *slope.ConvergenceWarning
	if err != nil && !errors.As(err, &warn) {
		return nil, err
	}
	chart, err := render.SlopeSection(res)
	if err != nil {
		return nil, err
	}
	png, err := render.Encode(chart, render.PNG, 7*vg.Inch, 5.25*vg.Inch)
	if err != nil {
		return nil, err
	}
	if in.Title == "" {
		in.Title = "Slope Stability Report"
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(in.Title, true)
	pdf.SetAuthor(in.Author, true)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, in.Title)
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, fmt.Sprintf("Project: %s", in.Project))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Author: %s", in.Author))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Date: %s", now.Format("2006-01-02")))
	pdf.Ln(10)

	section(pdf, "Input")
	s := in.Slope
	rows := [][2]string{
		{"Cohesion c", fmt.Sprintf("%.2f kPa", s.CohesionKPa)},
		{"Friction angle phi", fmt.Sprintf("%.2f deg", s.FrictionAngleDeg)},
		{"Unit weight gamma", fmt.Sprintf("%.2f kN/m3", s.UnitWeightKNM3)},
		{"Slope height H", fmt.Sprintf("%.2f m", s.SlopeHeightM)},
		{"Slope angle beta", fmt.Sprintf("%.2f deg", s.SlopeAngleDeg)},
		{"Circle centre (xc, yc)", fmt.Sprintf("(%.2f, %.2f) m", s.CenterXM, s.CenterYM)},
		{"Radius R", fmt.Sprintf("%.2f m", s.RadiusM)},
		{"Slices", fmt.Sprintf("%d", res.Geometry.NumSlices)},
		{"Pore pressure ratio ru", fmt.Sprintf("%.2f", s.PorePressureRatio)},
	}
	for _, row := range rows {
		pdf.CellFormat(70, 6, row[0], "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, row[1], "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	section(pdf, "Result")
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, fmt.Sprintf("Factor of safety FS = %s (%s)", fs(res.SafetyFactor), res.Status))
	pdf.Ln(7)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, fmt.Sprintf("Iterations: %d, included slices: %d of %d", res.Iterations, res.IncludedSlices, len(res.Slices)))
	pdf.Ln(6)
	if res.Warning != "" {
		pdf.SetTextColor(180, 0, 0)
		pdf.MultiCell(0, 6, "Provisional: "+res.Warning, "", "L", false)
		pdf.SetTextColor(0, 0, 0)
	}
	if in.Notes != "" {
		pdf.Ln(2)
		pdf.MultiCell(0, 6, in.Notes, "", "L", false)
	}
	pdf.Ln(4)

	pdf.RegisterImageOptionsReader("section", gofpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(png))
	pdf.ImageOptions("section", 15, pdf.GetY(), 180, 0, true, gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	pdf.AddPage()
	section(pdf, "Slices")
	sliceTable(pdf, res.Slices)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("writing pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func section(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, title)
	pdf.Ln(9)
	pdf.SetFont("Helvetica", "", 11)
}

var tableColumns = []struct {
	title string
	width float64
}{
	{"#", 10}, {"status", 26}, {"x mid", 17}, {"h", 15}, {"alpha", 16},
	{"W", 19}, {"u", 15}, {"l", 15}, {"m_alpha", 18}, {"resisting", 22},
}

func sliceTable(pdf *gofpdf.Fpdf, slices []slope.SliceDetail) {
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for _, c := range tableColumns {
		pdf.CellFormat(c.width, 6, c.title, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 9)
	for _, s := range slices {
		cells := []string{
			fmt.Sprintf("%d", s.Index), s.Status, num(s.XMidM),
			num(s.HeightM), num(s.BaseAngleDeg), num(s.WeightKN),
			num(s.PorePressureKPa), num(s.BaseLengthM), num(s.MAlpha), num(s.NumeratorKN),
		}
		if s.Status != slope.Included.String() {
			for i := 3; i < len(cells); i++ {
				cells[i] = "-"
			}
		}
		for i, c := range tableColumns {
			pdf.CellFormat(c.width, 5, cells[i], "1", 0, "R", false, 0, "")
		}
		pdf.Ln(-1)
	}
}

func num(v float64) string { return fmt.Sprintf("%.3f", v) }

func fs(v float64) string {
	if math.IsInf(v, 1) {
		return "unbounded"
	}
	return fmt.Sprintf("%.3f", v)
}
