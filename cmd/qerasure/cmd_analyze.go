package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/theapemachine/qerasure"
	"gopkg.in/yaml.v3"
)

type analyzeOptions struct {
	*rootOptions
	angle       float64
	mainFigure  string
	angleFigure string
	report      string
}

func newAnalyzeCmd(root *rootOptions) *cobra.Command {
	opts := &analyzeOptions{rootOptions: root}

	cmd := &cobra.Command{
		Use:   "analyze <results.json>",
		Short: "Print the statistical report for a results record and draw its figures",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return analyze(cmd, opts, args[0])
		},
	}

	cmd.Flags().Float64Var(&opts.angle, "angle", 90, "coupling angle in degrees to test at")
	cmd.Flags().StringVar(&opts.mainFigure, "main-figure", "", "output path of the single-angle figure")
	cmd.Flags().StringVar(&opts.angleFigure, "angle-figure", "", "output path of the angle-dependence figure")
	cmd.Flags().StringVar(&opts.report, "report", "", "also write the analysis as YAML to this file")

	return cmd
}

func analyze(cmd *cobra.Command, opts *analyzeOptions, path string) error {
	cfg, err := qerasure.LoadConfig(opts.configPath)
	if err != nil {
		return err
	}

	angle := cfg.Analysis.Angle
	if cmd.Flags().Changed("angle") {
		angle = opts.angle
	}

	mainFigure := firstNonEmpty(opts.mainFigure, cfg.Output.MainFigure)
	angleFigure := firstNonEmpty(opts.angleFigure, cfg.Output.AngleFigure)

	palette, err := cfg.Palette.Palette()
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Loading data from: %s\n", path)

	record, err := qerasure.LoadRecord(path)
	if err != nil {
		return err
	}

	result, err := qerasure.Analyze(record, angle)
	if err != nil {
		return err
	}

	printAnalysis(w, result)

	fmt.Fprintln(w, "\nGenerating figures...")

	if err := qerasure.PlotMainResult(record, angle, palette, mainFigure); err != nil {
		return fmt.Errorf("main figure: %w", err)
	}

	fmt.Fprintf(w, "Saved: %s\n", mainFigure)

	if err := qerasure.PlotAngleDependence(record, palette, angleFigure); err != nil {
		return fmt.Errorf("angle figure: %w", err)
	}

	fmt.Fprintf(w, "Saved: %s\n", angleFigure)

	if opts.report != "" {
		buf, err := yaml.Marshal(result)
		if err != nil {
			return err
		}

		if err := os.WriteFile(opts.report, buf, 0o644); err != nil {
			return err
		}

		fmt.Fprintf(w, "Report: %s\n", opts.report)
	}

	fmt.Fprintln(w, "\nAnalysis complete!")

	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}

	return ""
}
