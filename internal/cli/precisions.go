package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/quarterbit/fpstudy/internal/minifloat"
	"github.com/quarterbit/fpstudy/internal/num"
)

// NewPrecisionsCommand creates the precisions command.
func NewPrecisionsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "precisions",
		Short: "List the supported precisions",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tMANTISSA BITS\tNOTES")
			for _, p := range num.AllPrecisions() {
				fmt.Fprintf(w, "%s\t%d\t%s\n", p, p.MantissaBits(), precisionNotes(p))
			}
			return w.Flush()
		},
	}
}

func precisionNotes(p num.Precision) string {
	switch p {
	case num.PrecisionFP64:
		return "reference precision"
	case num.PrecisionFP32:
		return "native float32"
	case num.PrecisionTF32:
		return "float32 range, 10-bit mantissa"
	case num.PrecisionBF16:
		return "float32 range, 7-bit mantissa"
	case num.PrecisionP3109:
		l := minifloat.DefaultLayout
		return fmt.Sprintf("8-bit, max %g, min normal %g", l.MaxFinite(), l.MinNormal())
	}
	return ""
}
