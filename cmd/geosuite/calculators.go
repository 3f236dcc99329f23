package main

import (
	"fmt"

	"GeoSuite/internal/calc/batch"
	"GeoSuite/internal/calc/bearing"
	"GeoSuite/internal/calc/earth"
	"GeoSuite/internal/calc/footing"
	"GeoSuite/internal/calc/settlement"
	"GeoSuite/internal/calc/triaxial"
	"GeoSuite/internal/log"

	"github.com/spf13/cobra"
)

func newSearchCmd() *cobra.Command {
	var in batch.SearchInput
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Grid search for the critical slip circle",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := batch.Search(cmd.Context(), in)
			if err != nil {
				return err
			}
			log.Infof("search: %d trials, %d rejected, %d non-convergent", res.Trials, res.Rejected, res.NonConvergent)
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	f := cmd.Flags()
	slopeFlags(f, &in.Slope)
	f.Float64Var(&in.CenterX.Min, "xc-min", 0, "Lowest centre x (m)")
	f.Float64Var(&in.CenterX.Max, "xc-max", 10, "Highest centre x (m)")
	f.IntVar(&in.CenterX.Steps, "xc-steps", 5, "Centre x grid points")
	f.Float64Var(&in.CenterY.Min, "yc-min", 12, "Lowest centre y (m)")
	f.Float64Var(&in.CenterY.Max, "yc-max", 24, "Highest centre y (m)")
	f.IntVar(&in.CenterY.Steps, "yc-steps", 5, "Centre y grid points")
	f.Float64Var(&in.Radius.Min, "r-min", 10, "Smallest radius (m)")
	f.Float64Var(&in.Radius.Max, "r-max", 20, "Largest radius (m)")
	f.IntVar(&in.Radius.Steps, "r-steps", 5, "Radius grid points")
	f.IntVar(&in.Workers, "workers", 0, "Concurrent trials (0 uses every CPU)")
	return cmd
}

func newBearingCmd() *cobra.Command {
	var in bearing.Input
	var shape string
	cmd := &cobra.Command{
		Use:   "bearing",
		Short: "Terzaghi bearing capacity of a shallow footing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Shape = bearing.Shape(shape)
			res, err := bearing.Calculate(in)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	f := cmd.Flags()
	f.Float64Var(&in.WidthM, "width", 1.5, "Footing width B (m)")
	f.Float64Var(&in.LengthM, "length", 0, "Footing length L (m), square when zero")
	f.Float64Var(&in.DepthM, "depth", 1, "Embedment depth Df (m)")
	f.Float64Var(&in.UnitWeightKNM3, "gamma", 18, "Unit weight γ (kN/m³)")
	f.Float64Var(&in.CohesionKPa, "cohesion", 0, "Cohesion c (kPa)")
	f.Float64Var(&in.FrictionAngleDeg, "phi", 30, "Friction angle φ (degrees)")
	f.StringVar(&shape, "shape", string(bearing.Square), "square, strip or circular")
	f.Float64Var(&in.SafetyFactor, "fs", 3, "Safety factor")
	return cmd
}

func newEarthCmd() *cobra.Command {
	var in earth.Input
	cmd := &cobra.Command{
		Use:   "earth",
		Short: "Rankine active, at-rest and passive earth pressure",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := earth.Calculate(in)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	f := cmd.Flags()
	f.Float64Var(&in.UnitWeightKNM3, "gamma", 18, "Unit weight γ (kN/m³)")
	f.Float64Var(&in.FrictionAngleDeg, "phi", 30, "Friction angle φ (degrees)")
	f.Float64Var(&in.WallHeightM, "height", 3, "Wall height H (m)")
	f.IntVar(&in.Points, "points", earth.DefaultPoints, "Profile points")
	return cmd
}

func newTriaxialCmd() *cobra.Command {
	var sigma3, sigma1 []float64
	cmd := &cobra.Command{
		Use:   "triaxial",
		Short: "Mohr-Coulomb envelope from triaxial tests",
		Long: `Fit c and φ to triaxial results. Pass matching lists, e.g.
geosuite triaxial --sigma3 150,200,250 --sigma1 400,500,600`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(sigma3) != len(sigma1) {
				return fmt.Errorf("--sigma3 has %d values, --sigma1 has %d", len(sigma3), len(sigma1))
			}
			var in triaxial.Input
			for i := range sigma3 {
				in.Specimens = append(in.Specimens, triaxial.Specimen{Sigma3KPa: sigma3[i], Sigma1KPa: sigma1[i]})
			}
			res, err := triaxial.Calculate(in)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().Float64SliceVar(&sigma3, "sigma3", nil, "Confining stresses σ3 (kPa)")
	cmd.Flags().Float64SliceVar(&sigma1, "sigma1", nil, "Major principal stresses at failure σ1 (kPa)")
	return cmd
}

func newSettlementCmd() *cobra.Command {
	var in settlement.Input
	cmd := &cobra.Command{
		Use:   "settlement",
		Short: "Elastic settlement under a uniformly loaded rectangle",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := settlement.Calculate(in)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	f := cmd.Flags()
	f.Float64Var(&in.WidthM, "width", 2, "Loaded width B (m)")
	f.Float64Var(&in.LengthM, "length", 2, "Loaded length L (m)")
	f.Float64Var(&in.PressureKPa, "pressure", 100, "Contact pressure q (kPa)")
	f.Float64Var(&in.ModulusKPa, "modulus", 10000, "Soil modulus Es (kPa)")
	f.Float64Var(&in.StepM, "step", 0.1, "Layer thickness (m)")
	f.Float64Var(&in.DepthFactor, "depth-factor", 8, "Influence depth as a multiple of B")
	return cmd
}

func newFootingCmd() *cobra.Command {
	var in footing.Input
	cmd := &cobra.Command{
		Use:   "footing",
		Short: "Reinforced concrete isolated footing design checks",
		Long:  "Units follow the kgf-cm convention: loads in kg, stresses in kg/cm², lengths in cm.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := footing.Calculate(in)
			if err != nil {
				return err
			}
			if !res.OK {
				log.Warnf("footing: one or more checks fail")
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	f := cmd.Flags()
	f.Float64Var(&in.AxialLoadKg, "pu", 0, "Service axial load (kg), default 15000")
	f.Float64Var(&in.MomentKgM, "mu", 0, "Service moment (kg·m)")
	f.Float64Var(&in.ConcreteKgCM2, "fc", 0, "Concrete strength f'c (kg/cm²), default 210")
	f.Float64Var(&in.SteelKgCM2, "fy", 0, "Steel yield fy (kg/cm²), default 4200")
	f.Float64Var(&in.AllowableKgCM2, "qadm", 0, "Allowable soil pressure (kg/cm²), default 2")
	f.Float64Var(&in.ColumnWidthCM, "column-b", 0, "Column width (cm), default 40")
	f.Float64Var(&in.ColumnDepthCM, "column-h", 0, "Column depth (cm), default 40")
	f.Float64Var(&in.EffectiveDepthCM, "d", 0, "Effective depth (cm), default 50")
	f.Float64Var(&in.CoverCM, "cover", 0, "Cover (cm), default 7.5")
	f.Float64Var(&in.BarDiameterCM, "bar-diameter", 0, "Bar diameter (cm), default 1.27")
	f.Float64Var(&in.BarAreaCM2, "bar-area", 0, "Bar area (cm²), default 1.27")
	return cmd
}
