package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/balkashynov/taskflow/internal/stats"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show pomodoro, task and plan statistics",
	Long: `Show statistics for a period as bar charts.

Ranges: today, week (starts Monday), month, total

Examples:
  taskflow stats
  taskflow stats --range week
  taskflow stats -r total --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rangeArg, _ := cmd.Flags().GetString("range")
		rng, err := stats.ParseRange(rangeArg)
		if err != nil {
			return err
		}
		report, err := stats.Compute(store, rng, now())
		if err != nil {
			return err
		}

		if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
			data, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return fmt.Errorf("error marshaling JSON: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		}

		width, _ := cmd.Flags().GetInt("width")
		fmt.Fprint(cmd.OutOrStdout(), stats.Render(report, width))
		return nil
	},
}

func init() {
	statsCmd.Flags().StringP("range", "r", "today", "Period: today|week|month|total")
	statsCmd.Flags().IntP("width", "w", 60, "Chart width in columns")
	statsCmd.Flags().Bool("json", false, "JSON output")
}
