package cli

import (
	"net/http"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/quarterbit/fpstudy/internal/config"
	"github.com/quarterbit/fpstudy/internal/logger"
	"github.com/quarterbit/fpstudy/internal/results"
	"github.com/quarterbit/fpstudy/internal/runner"
)

// RunFlags holds flags for the run command.
type RunFlags struct {
	*RootOptions
	ConfigPath  string
	OutPath     string
	MetricsAddr string
	Jobs        int
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunFlags{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute an experiment plan and write a results CSV",
		Long: `Execute the experiment plan from a JSON config and write one CSV row
per kernel invocation. Without --config a built-in plan covering every
algorithm and precision is used.

Example:
  fpstudy run --config configs/sweep.json
  fpstudy run --config configs/sweep.json --out /tmp/results.csv --jobs 8`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to the JSON experiment plan")
	cmd.Flags().StringVarP(&opts.OutPath, "out", "o", "", "results CSV path (overrides the plan's out_csv)")
	cmd.Flags().StringVar(&opts.MetricsAddr, "metrics", "", "Prometheus listen address, e.g. :9090 (disabled when empty)")
	cmd.Flags().IntVarP(&opts.Jobs, "jobs", "j", runtime.NumCPU(), "number of trials to run concurrently")

	return cmd
}

func runPlan(cmd *cobra.Command, opts *RunFlags) error {
	var cfg *config.Config
	if opts.ConfigPath != "" {
		loaded, err := config.Load(opts.ConfigPath)
		if err != nil {
			return err
		}
		cfg = loaded
	} else {
		def := config.Default()
		cfg = &def
		logger.Log.Info("no config given, using the built-in plan")
	}

	outPath := cfg.OutCSV
	if opts.OutPath != "" {
		outPath = opts.OutPath
	}

	if opts.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		go func() {
			logger.Log.Info("metrics listening", "addr", opts.MetricsAddr)
			if err := http.ListenAndServe(opts.MetricsAddr, mux); err != nil {
				logger.Log.Error("metrics server stopped", "error", err.Error())
			}
		}()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rows, err := runner.New(cfg, opts.Jobs).Run(ctx)
	if err != nil {
		return err
	}

	if err := results.WriteFile(outPath, rows); err != nil {
		return err
	}
	logger.Log.Info("results written", "path", outPath, "rows", len(rows))
	return nil
}
