package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"GeoSuite/internal/calc/importer"
	"GeoSuite/internal/calc/report"
	"GeoSuite/internal/calc/slope"
	"GeoSuite/internal/log"
	"GeoSuite/internal/render"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func slopeFlags(fs *pflag.FlagSet, in *slope.Input) {
	fs.Float64Var(&in.SlopeHeightM, "height", 10, "Slope height H (m)")
	fs.Float64Var(&in.SlopeAngleDeg, "angle", 45, "Slope face angle β (degrees)")
	fs.Float64Var(&in.CohesionKPa, "cohesion", 10, "Cohesion c (kPa)")
	fs.Float64Var(&in.FrictionAngleDeg, "phi", 30, "Friction angle φ (degrees)")
	fs.Float64Var(&in.UnitWeightKNM3, "gamma", 16, "Unit weight γ (kN/m³)")
	fs.IntVar(&in.NumSlices, "slices", slope.DefaultSlices, "Number of slices")
	fs.Float64Var(&in.PorePressureRatio, "ru", 0, "Pore pressure ratio ru")
	fs.StringVar(&in.GroundProfile, "ground-profile", slope.CrestToToe.String(), "Slice top rule: crest_to_toe or toe_plane")
}

func newSlopeCmd() *cobra.Command {
	var in slope.Input
	var table bool
	var plotPath, reportPath, xlsxPath, project string

	cmd := &cobra.Command{
		Use:   "slope",
		Short: "Simplified Bishop factor of safety for one trial circle",
		Long: `Analyze one circular trial surface through a simple slope with the
Simplified Bishop method.

Example: geosuite slope --height 10 --angle 45 --cohesion 10 --phi 30 --gamma 16 --xc 5 --yc 18 --radius 15 --table`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := slope.Analyze(in)
			var warn *slope.ConvergenceWarning
			switch {
			case errors.As(err, &warn):
				log.Warnf("%v", warn)
			case err != nil:
				return err
			}

			out := cmd.OutOrStdout()
			if table {
				if err := writeSliceTable(out, res); err != nil {
					return err
				}
			} else if err := printJSON(out, res); err != nil {
				return err
			}

			if plotPath != "" {
				if err := writePlot(plotPath, res); err != nil {
					return err
				}
			}
			if reportPath != "" {
				body, err := report.Slope(report.Input{Project: project, Slope: in}, time.Now())
				if err != nil {
					return err
				}
				if err := os.WriteFile(reportPath, body, 0o644); err != nil {
					return fmt.Errorf("write report: %w", err)
				}
			}
			if xlsxPath != "" {
				body, err := importer.ExportSlices(in, res)
				if err != nil {
					return err
				}
				if err := os.WriteFile(xlsxPath, body, 0o644); err != nil {
					return fmt.Errorf("write workbook: %w", err)
				}
			}
			return nil
		},
	}

	slopeFlags(cmd.Flags(), &in)
	cmd.Flags().Float64Var(&in.CenterXM, "xc", 5, "Circle centre x (m)")
	cmd.Flags().Float64Var(&in.CenterYM, "yc", 18, "Circle centre y (m)")
	cmd.Flags().Float64Var(&in.RadiusM, "radius", 15, "Circle radius R (m)")
	cmd.Flags().BoolVar(&table, "table", false, "Print the slice table instead of JSON")
	cmd.Flags().StringVar(&plotPath, "plot", "", "Write the cross-section to a .png or .svg file")
	cmd.Flags().StringVar(&reportPath, "report", "", "Write a PDF report")
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "Write the slice table as a workbook")
	cmd.Flags().StringVar(&project, "project", "", "Project name for the report")
	return cmd
}

func writeSliceTable(w io.Writer, res slope.Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "#\tstatus\tx mid\th\talpha\tW\tu\tl\tm_alpha\tresisting\t")
	for _, s := range res.Slices {
		if s.Status != slope.Included.String() {
			fmt.Fprintf(tw, "%d\t%s\t%.3f\t-\t-\t-\t-\t-\t-\t-\t\n", s.Index, s.Status, s.XMidM)
			continue
		}
		fmt.Fprintf(tw, "%d\t%s\t%.3f\t%.3f\t%.2f\t%.2f\t%.2f\t%.3f\t%.4f\t%.2f\t\n",
			s.Index, s.Status, s.XMidM, s.HeightM, s.BaseAngleDeg, s.WeightKN,
			s.PorePressureKPa, s.BaseLengthM, s.MAlpha, s.NumeratorKN)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fs := "unbounded"
	if !res.Unbounded() {
		fs = fmt.Sprintf("%.4f", res.SafetyFactor)
	}
	_, err := fmt.Fprintf(w, "\nFS = %s (%s), %d iterations, %d/%d slices included\n",
		fs, res.Status, res.Iterations, res.IncludedSlices, len(res.Slices))
	return err
}

func writePlot(path string, res slope.Result) error {
	format, err := render.ParseFormat(strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")))
	if err != nil {
		return err
	}
	p, err := render.SlopeSection(res)
	if err != nil {
		return err
	}
	body, err := render.Encode(p, format, render.DefaultWidth, render.DefaultHeight)
	if err != nil {
		return err
	}
	return os.WriteFile(path, body, 0o644)
}
