package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/iamarketings/Operator/internal/simulator"
)

func (a *app) callsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calls",
		Short: "Live calls",
	}

	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Run the call simulator and print the live call list",
		RunE: func(cmd *cobra.Command, args []string) error {
			ticks, _ := cmd.Flags().GetInt("ticks")

			params := simulator.DefaultParams
			params.Interval = a.v.GetDuration("console.simulator.interval")
			params.MaxCalls = a.v.GetInt("console.simulator.max_calls")
			if cmd.Flags().Changed("interval") {
				params.Interval, _ = cmd.Flags().GetDuration("interval")
			}

			sim := simulator.New(params, a.seed(), a.logger)
			out := cmd.OutOrStdout()
			for i := 1; i <= ticks; i++ {
				if i > 1 && params.Interval > 0 {
					select {
					case <-cmd.Context().Done():
						return nil
					case <-time.After(params.Interval):
					}
				}
				calls := sim.Tick()
				fmt.Fprintf(out, "Tick %d: %d active calls\n", i, len(calls))
				renderCalls(out, calls)
			}
			return nil
		},
	}
	watchCmd.Flags().IntP("ticks", "n", 10, "Number of simulator ticks")
	watchCmd.Flags().Duration("interval", simulator.DefaultParams.Interval, "Delay between ticks")

	cmd.AddCommand(watchCmd)
	return cmd
}
