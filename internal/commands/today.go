package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/balkashynov/taskflow/internal/planner"
	"github.com/balkashynov/taskflow/internal/tui"
)

var todayCmd = &cobra.Command{
	Use:   "today",
	Short: "Show today's tasks grouped by priority and urgency",
	Long: `Show today's tasks in four quadrants (High & Urgent, High, Urgent, Others)
followed by the finished ones. Tasks whose plan was abandoned are locked.

Examples:
  taskflow today        # Print the board
  taskflow today --ui   # Browse, tick off tasks and start a pomodoro`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		current := now()
		board, err := plans.TodayBoard(current)
		if err != nil {
			return err
		}

		ui, _ := cmd.Flags().GetBool("ui")
		if ui {
			taskID, err := tui.RunBoardTUI(board, plans)
			if err != nil {
				return err
			}
			if taskID == nil {
				return nil
			}
			return runPomodoro(cmd, taskID, 0, false)
		}

		out := cmd.OutOrStdout()
		renderBoard(out, board)

		due, err := preferences.ReviewDue(current)
		if err != nil {
			return err
		}
		if due {
			fmt.Fprintln(out, "\n📝 Time to review your day: taskflow task note <id> --review \"...\"")
		}
		return nil
	},
}

// renderBoard prints the quadrants of a day board, skipping empty ones
func renderBoard(w io.Writer, board planner.Board) {
	fmt.Fprintf(w, "📅 %s\n", board.Day.Format("Monday, 02 January 2006"))
	if board.Len() == 0 {
		fmt.Fprintln(w, "\nNo tasks for today. Add one with: taskflow task add \"...\"")
		return
	}

	for _, q := range planner.Quadrants {
		tasks := board.Open[q]
		if len(tasks) == 0 {
			continue
		}
		fmt.Fprintf(w, "\n%s (%d)\n", q, len(tasks))
		for _, t := range tasks {
			fmt.Fprintln(w, boardLine(t))
		}
	}
	if len(board.Finished) > 0 {
		fmt.Fprintf(w, "\nFinished Tasks (%d)\n", len(board.Finished))
		for _, t := range board.Finished {
			fmt.Fprintln(w, boardLine(t))
		}
	}
}

func boardLine(t planner.BoardTask) string {
	line := fmt.Sprintf("  %s #%-4d %s", tui.TaskIcon(t.Task), t.ID, t.Name)
	if t.PlanName != "" {
		line += fmt.Sprintf("  (plan: %s)", t.PlanName)
	}
	if t.Locked {
		line += "  🔒"
	}
	return line
}

func init() {
	todayCmd.Flags().Bool("ui", false, "Open the interactive board")
}
