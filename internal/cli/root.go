// Package cli wires the fpstudy commands: run an experiment plan, list the
// supported precisions, and inspect the 8-bit minifloat codec.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/quarterbit/fpstudy/internal/logger"
)

// RootOptions holds the global flags shared by every command.
type RootOptions struct {
	LogLevel  string
	LogFormat string
}

// NewRootCommand creates the fpstudy root command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "fpstudy",
		Short: "Reduced-precision arithmetic study harness",
		Long: `fpstudy runs numerical kernels (matrix multiply, FIR filtering,
gradient descent, Newton's method) at a range of floating-point precisions,
from float64 down to an 8-bit minifloat, and reports how accuracy degrades
against the float64 reference.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.Setup(opts.LogLevel, opts.LogFormat)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "info", "log level (debug|info|warn|error)")
	cmd.PersistentFlags().StringVar(&opts.LogFormat, "log-format", "console", "log format (console|json)")

	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewPrecisionsCommand(opts))
	cmd.AddCommand(NewMinifloatCommand(opts))

	return cmd
}
