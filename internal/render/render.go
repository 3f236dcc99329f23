// Package render draws calculation results as PNG or SVG charts with
// gonum/plot.
package render

import (
	"bytes"
	"fmt"
	"image/color"
	"math"
	"strconv"

	"GeoSuite/internal/calc/earth"
	"GeoSuite/internal/calc/settlement"
	"GeoSuite/internal/calc/slope"
	"GeoSuite/internal/calc/triaxial"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

type Format string

const (
	PNG Format = "png"
	SVG Format = "svg"
)

const (
	DefaultWidth  = 8 * vg.Inch
	DefaultHeight = 6 * vg.Inch
)

var (
	colorGround   = color.RGBA{R: 90, G: 60, B: 30, A: 255}
	colorFailure  = color.RGBA{R: 200, G: 30, B: 30, A: 255}
	colorCircle   = color.RGBA{R: 150, G: 150, B: 150, A: 255}
	colorSlices   = color.RGBA{R: 60, G: 110, B: 200, A: 255}
	colorActive   = color.RGBA{R: 200, G: 30, B: 30, A: 255}
	colorAtRest   = color.RGBA{R: 30, G: 150, B: 60, A: 255}
	colorPassive  = color.RGBA{R: 30, G: 60, B: 200, A: 255}
	colorEnvelope = color.RGBA{R: 200, G: 30, B: 30, A: 255}
)

// ParseFormat accepts "png", "svg" or the empty string for PNG.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", PNG:
		return PNG, nil
	case SVG:
		return SVG, nil
	default:
		return "", fmt.Errorf("unsupported image format %q", s)
	}
}

func (f Format) ContentType() string {
	if f == SVG {
		return "image/svg+xml"
	}
	return "image/png"
}

// Encode renders p in the given format and size.
func Encode(p *plot.Plot, format Format, width, height vg.Length) ([]byte, error) {
	wt, err := p.WriterTo(width, height, string(format))
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}
	return buf.Bytes(), nil
}

// SlopeSection draws the ground profile, the trial circle, its centre and the
// slice boundaries of an analysis.
func SlopeSection(res slope.Result) (*plot.Plot, error) {
	sec := res.Geometry
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Simplified Bishop: FS = %s (%s)", formatFS(res.SafetyFactor), res.Status)
	p.X.Label.Text = "x (m)"
	p.Y.Label.Text = "y (m)"
	p.Add(plotter.NewGrid())

	ground := make(plotter.XYs, len(sec.Ground))
	for i, pt := range sec.Ground {
		ground[i] = plotter.XY{X: pt.X, Y: pt.Y}
	}
	groundLine, err := plotter.NewLine(ground)
	if err != nil {
		return nil, err
	}
	groundLine.LineStyle.Color = colorGround
	groundLine.LineStyle.Width = vg.Points(2)

	face := make(plotter.XYs, len(sec.Face))
	for i, pt := range sec.Face {
		face[i] = plotter.XY{X: pt.X, Y: pt.Y}
	}
	faceLine, err := plotter.NewLine(face)
	if err != nil {
		return nil, err
	}
	faceLine.LineStyle.Color = colorGround
	faceLine.LineStyle.Dashes = []vg.Length{vg.Points(2), vg.Points(2)}

	circle, err := plotter.NewLine(arc(sec.CenterXM, sec.CenterYM, sec.RadiusM, 0, 2*math.Pi, 180))
	if err != nil {
		return nil, err
	}
	circle.LineStyle.Color = colorCircle
	circle.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}

	failure := make(plotter.XYs, 0, 101)
	for i := 0; i <= 100; i++ {
		x := sec.CrestIntersectionX + (sec.ToeIntersectionX-sec.CrestIntersectionX)*float64(i)/100
		failure = append(failure, plotter.XY{X: x, Y: arcY(sec, x)})
	}
	failureLine, err := plotter.NewLine(failure)
	if err != nil {
		return nil, err
	}
	failureLine.LineStyle.Color = colorFailure
	failureLine.LineStyle.Width = vg.Points(2)

	centre, err := plotter.NewScatter(plotter.XYs{{X: sec.CenterXM, Y: sec.CenterYM}})
	if err != nil {
		return nil, err
	}
	centre.GlyphStyle.Color = colorFailure
	centre.GlyphStyle.Shape = draw.CrossGlyph{}
	centre.GlyphStyle.Radius = vg.Points(4)

	p.Add(circle, faceLine, groundLine, failureLine, centre)
	for _, x := range sec.SliceBoundaries {
		top := groundY(sec.Ground, x)
		base := arcY(sec, x)
		if top <= base {
			continue
		}
		l, err := plotter.NewLine(plotter.XYs{{X: x, Y: base}, {X: x, Y: top}})
		if err != nil {
			return nil, err
		}
		l.LineStyle.Color = colorSlices
		l.LineStyle.Width = vg.Points(0.5)
		p.Add(l)
	}
	p.Legend.Add("ground ("+sec.Profile+")", groundLine)
	p.Legend.Add("slope face", faceLine)
	p.Legend.Add("failure surface", failureLine)
	p.Legend.Add("trial circle", circle)
	p.Legend.Top = true

	minX := math.Min(sec.Ground[0].X, sec.CenterXM-sec.RadiusM)
	maxX := math.Max(sec.Ground[len(sec.Ground)-1].X, sec.CenterXM+sec.RadiusM)
	minY := math.Min(0, sec.CenterYM-sec.RadiusM)
	for _, pt := range sec.Ground {
		minY = math.Min(minY, pt.Y)
	}
	maxY := math.Max(sec.SlopeHeightM, sec.CenterYM) + 1
	equalAspect(p, minX, maxX, minY, maxY, DefaultWidth/DefaultHeight)
	return p, nil
}

// MohrCircles draws the upper half of each specimen's circle and the fitted
// envelope.
func MohrCircles(res triaxial.Result) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Mohr-Coulomb: c = %.2f kPa, φ = %.2f°", res.CohesionKPa, res.FrictionAngleDeg)
	p.X.Label.Text = "normal stress σ (kPa)"
	p.Y.Label.Text = "shear stress τ (kPa)"
	p.Add(plotter.NewGrid())

	maxSigma := 0.0
	for i, c := range res.Circles {
		l, err := plotter.NewLine(arc(c.CenterKPa, 0, c.RadiusKPa, 0, math.Pi, 90))
		if err != nil {
			return nil, err
		}
		l.LineStyle.Color = palette(i)
		p.Add(l)
		p.Legend.Add(fmt.Sprintf("specimen %d", i+1), l)
		maxSigma = math.Max(maxSigma, c.CenterKPa+c.RadiusKPa)
	}

	envelope := plotter.NewFunction(res.Envelope)
	envelope.LineStyle.Color = colorEnvelope
	envelope.LineStyle.Dashes = []vg.Length{vg.Points(6), vg.Points(3)}
	envelope.XMin, envelope.XMax = 0, maxSigma*1.1
	p.Add(envelope)
	p.Legend.Add("envelope", envelope)
	p.Legend.Top = true
	p.Legend.Left = true

	p.X.Min, p.X.Max = 0, maxSigma*1.1
	p.Y.Min, p.Y.Max = 0, maxSigma/1.4
	return p, nil
}

// EarthPressure draws the active, at-rest and passive pressure against
// depth, deepest at the bottom.
func EarthPressure(res earth.Result) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Rankine lateral earth pressure"
	p.X.Label.Text = "pressure (kPa)"
	p.Y.Label.Text = "depth (m)"
	p.Y.Tick.Marker = depthTicks{}
	p.Add(plotter.NewGrid())

	series := []struct {
		name   string
		values []float64
		color  color.Color
	}{
		{"active", res.Profile.ActiveKPa, colorActive},
		{"at rest", res.Profile.AtRestKPa, colorAtRest},
		{"passive", res.Profile.PassiveKPa, colorPassive},
	}
	for _, s := range series {
		l, err := plotter.NewLine(depthXYs(s.values, res.Profile.DepthM))
		if err != nil {
			return nil, err
		}
		l.LineStyle.Color = s.color
		p.Add(l)
		p.Legend.Add(s.name, l)
	}
	return p, nil
}

// Settlement draws the vertical stress increment below the footing centre.
func Settlement(res settlement.Result) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Stress increment, settlement = %.2f cm", res.SettlementCM)
	p.X.Label.Text = "Δσz (kPa)"
	p.Y.Label.Text = "depth (m)"
	p.Y.Tick.Marker = depthTicks{}
	p.Add(plotter.NewGrid())

	l, err := plotter.NewLine(depthXYs(res.StressKPa, res.DepthM))
	if err != nil {
		return nil, err
	}
	l.LineStyle.Color = colorSlices
	p.Add(l)
	return p, nil
}

// depthTicks labels a negated depth axis with positive values.
type depthTicks struct{}

func (depthTicks) Ticks(min, max float64) []plot.Tick {
	ticks := plot.DefaultTicks{}.Ticks(min, max)
	for i := range ticks {
		if ticks[i].Label != "" {
			ticks[i].Label = strconv.FormatFloat(math.Abs(ticks[i].Value), 'g', 4, 64)
		}
	}
	return ticks
}

func depthXYs(values, depth []float64) plotter.XYs {
	xys := make(plotter.XYs, len(values))
	for i := range values {
		xys[i] = plotter.XY{X: values[i], Y: -depth[i]}
	}
	return xys
}

func arc(cx, cy, r, from, to float64, n int) plotter.XYs {
	xys := make(plotter.XYs, n+1)
	for i := range xys {
		t := from + (to-from)*float64(i)/float64(n)
		xys[i] = plotter.XY{X: cx + r*math.Cos(t), Y: cy + r*math.Sin(t)}
	}
	return xys
}

func arcY(sec slope.Section, x float64) float64 {
	dx := x - sec.CenterXM
	return sec.CenterYM - math.Sqrt(math.Max(0, sec.RadiusM*sec.RadiusM-dx*dx))
}

// groundY interpolates the ground polyline, holding its end values.
func groundY(ground []slope.Point, x float64) float64 {
	if len(ground) == 0 {
		return 0
	}
	if x <= ground[0].X {
		return ground[0].Y
	}
	for i := 1; i < len(ground); i++ {
		a, b := ground[i-1], ground[i]
		if x <= b.X {
			if b.X == a.X {
				return b.Y
			}
			return a.Y + (b.Y-a.Y)*(x-a.X)/(b.X-a.X)
		}
	}
	return ground[len(ground)-1].Y
}

// equalAspect widens the shorter axis so one metre has the same length on
// both axes for a canvas of the given width/height ratio.
func equalAspect(p *plot.Plot, minX, maxX, minY, maxY float64, ratio vg.Length) {
	w, h := maxX-minX, maxY-minY
	r := float64(ratio)
	if w/h > r {
		grow := (w/r - h) / 2
		minY, maxY = minY-grow, maxY+grow
	} else {
		grow := (h*r - w) / 2
		minX, maxX = minX-grow, maxX+grow
	}
	p.X.Min, p.X.Max = minX, maxX
	p.Y.Min, p.Y.Max = minY, maxY
}

func formatFS(fs float64) string {
	if math.IsInf(fs, 1) {
		return "∞"
	}
	return strconv.FormatFloat(fs, 'f', 3, 64)
}

func palette(i int) color.Color {
	colors := []color.Color{
		color.RGBA{R: 30, G: 60, B: 200, A: 255},
		color.RGBA{R: 30, G: 150, B: 60, A: 255},
		color.RGBA{R: 230, G: 140, B: 20, A: 255},
		color.RGBA{R: 120, G: 40, B: 160, A: 255},
		color.RGBA{R: 20, G: 160, B: 170, A: 255},
	}
	return colors[i%len(colors)]
}
