package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/charmbracelet/huh"
	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"
	"github.com/theapemachine/qerasure"
)

type runOptions struct {
	*rootOptions
	simulator   bool
	hardware    bool
	yes         bool
	out         string
	metricsFile string
}

func newRunCmd(root *rootOptions) *cobra.Command {
	opts := &runOptions{rootOptions: root}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Submit every circuit at every angle and save the results record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExperiment(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.simulator, "simulator", true, "use the local ideal simulator")
	cmd.Flags().BoolVar(&opts.hardware, "hardware", false, "use the configured hardware profile")
	cmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "skip the cost confirmation")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "directory for the results file")
	cmd.Flags().StringVar(&opts.metricsFile, "metrics-file", "", "write prometheus metrics to this file")
	cmd.MarkFlagsMutuallyExclusive("simulator", "hardware")

	return cmd
}

func runExperiment(cmd *cobra.Command, opts *runOptions) error {
	cfg, err := qerasure.LoadConfig(opts.configPath)
	if err != nil {
		return err
	}

	if opts.hardware {
		cfg.Device = cfg.Hardware
	}

	if opts.out != "" {
		cfg.Output.Dir = opts.out
	}

	device, err := qerasure.NewDevice(cfg.Device)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	printBanner(w)

	if cfg.Device.CostPerShot > 0 {
		fmt.Fprintln(w, warnStyle.Render("WARNING: this device bills per shot."))
	} else {
		fmt.Fprintf(w, "Using %s (no cost)\n", device.ID())
	}

	confirm := confirmCost
	if opts.yes {
		confirm = func(float64, *qerasure.Config) (bool, error) { return true, nil }
	}

	driver := qerasure.NewDriver(cfg, device,
		qerasure.WithConfirm(confirm),
		qerasure.WithLogger(logger),
		qerasure.WithObserver(func(res qerasure.AngleResult) {
			printAngle(w, res)
		}),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	record, err := driver.Run(ctx)
	if errors.Is(err, qerasure.ErrAborted) {
		fmt.Fprintln(w, "Aborted.")
		return nil
	}

	if err != nil {
		return err
	}

	logger.Debug("raw counts\n" + spew.Sdump(record.RawCounts))

	path := filepath.Join(
		cfg.Output.Dir,
		qerasure.ResultsFilename(cfg.Output.ResultsPrefix, record.Metadata.Timestamp.Time),
	)

	if err := record.Save(path); err != nil {
		return err
	}

	fmt.Fprintf(w, "\nResults saved: %s\n", path)

	if opts.metricsFile != "" {
		if err := driver.Metrics().WriteTextfile(opts.metricsFile); err != nil {
			return err
		}

		logger.Info("metrics written", "file", opts.metricsFile)
	}

	logger.Debug("run metrics", "summary", driver.Metrics().ExportMetrics())
	printSummary(w)

	return nil
}

func confirmCost(estimate float64, cfg *qerasure.Config) (bool, error) {
	var ok bool

	err := huh.NewConfirm().
		Title(fmt.Sprintf("Submit to %s? Estimated cost ~$%.2f", cfg.Device.ID, estimate)).
		Affirmative("Continue").
		Negative("Abort").
		Value(&ok).
		Run()

	return ok, err
}
