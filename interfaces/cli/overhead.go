package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/v2x-go/domain/protocol"
)

// overheadOptions holds options for the overhead command.
type overheadOptions struct {
	minPayload int
	maxPayload int
}

// newOverheadCmd creates the overhead command.
func (a *App) newOverheadCmd() *cobra.Command {
	opts := &overheadOptions{}

	cmd := &cobra.Command{
		Use:   "overhead",
		Short: "Print the protocol overhead table",
		Long: `Print the frame-size table for DSRC, C-V2X and 5G NR-V2X at the given
payload bounds, crossing minimum and maximum protocol overhead with
minimum and maximum payload.

Examples:
  # Table for a fixed 120-byte payload
  v2x overhead --min-payload 120 --max-payload 120

  # Table for an observed payload range
  v2x overhead --min-payload 138 --max-payload 164`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.minPayload < 0 || opts.maxPayload < opts.minPayload {
				return fmt.Errorf("payload bounds [%d, %d] are not a valid range",
					opts.minPayload, opts.maxPayload)
			}
			report := protocol.BuildReport(opts.minPayload, opts.maxPayload)
			fmt.Fprint(a.stdout, report.Render())
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.minPayload, "min-payload", 120, "Smallest payload size in bytes")
	cmd.Flags().IntVar(&opts.maxPayload, "max-payload", 120, "Largest payload size in bytes")

	return cmd
}
