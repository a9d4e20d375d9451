package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/quarterbit/fpstudy/internal/minifloat"
)

// NewMinifloatCommand creates the minifloat inspection command.
func NewMinifloatCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "minifloat",
		Short: "Inspect the 8-bit minifloat codec",
	}
	cmd.AddCommand(newMinifloatEncodeCommand())
	cmd.AddCommand(newMinifloatDecodeCommand())
	return cmd
}

func newMinifloatEncodeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "encode <value>",
		Short: "Encode a decimal value to its 8-bit code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("invalid value %q: %w", args[0], err)
			}
			code := minifloat.Encode(v, minifloat.DefaultLayout)
			back := minifloat.Decode[float64](code, minifloat.DefaultLayout)
			fmt.Fprintf(cmd.OutOrStdout(), "value %g -> code 0x%02X -> %g\n", v, code, back)
			return nil
		},
	}
}

func newMinifloatDecodeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "decode <code>",
		Short: "Decode an 8-bit code (decimal or 0x-prefixed hex)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := strconv.ParseUint(args[0], 0, 8)
			if err != nil {
				return fmt.Errorf("invalid code %q: %w", args[0], err)
			}
			v := minifloat.Decode[float64](uint8(code), minifloat.DefaultLayout)
			fmt.Fprintf(cmd.OutOrStdout(), "code 0x%02X -> %g\n", uint8(code), v)
			return nil
		},
	}
}
