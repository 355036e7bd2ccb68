package commands

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/balkashynov/taskflow/internal/db"
	"github.com/balkashynov/taskflow/internal/models"
	"github.com/balkashynov/taskflow/internal/planner"
	"github.com/balkashynov/taskflow/internal/pomodoro"
	"github.com/balkashynov/taskflow/internal/tui"
)

var pomoCmd = &cobra.Command{
	Use:     "pomo",
	Aliases: []string{"pomodoro"},
	Short:   "Run focus sessions",
}

var pomoStartCmd = &cobra.Command{
	Use:   "start [task-id]",
	Short: "Start a pomodoro, optionally for a task",
	Long: `Start a pomodoro. Opens the interactive timer by default, use --no-ui to start it
and return; the session keeps counting until you resume, finish or abandon it.

Examples:
  taskflow pomo start            # Session without a task
  taskflow pomo start 42         # Session for task #42
  taskflow pomo start 42 -m 30   # 30 minute session
  taskflow pomo start --no-ui`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var taskID *uint
		if len(args) == 1 {
			id, err := parseIDArg(args[0], "task")
			if err != nil {
				return err
			}
			taskID = &id
		}
		minutes, _ := cmd.Flags().GetInt("minutes")
		if cmd.Flags().Changed("minutes") && (minutes < models.MinWorkMinutes || minutes > models.MaxWorkMinutes) {
			return fmt.Errorf("--minutes must be between %d and %d, got %d",
				models.MinWorkMinutes, models.MaxWorkMinutes, minutes)
		}
		noUI, _ := cmd.Flags().GetBool("no-ui")
		return runPomodoro(cmd, taskID, minutes, noUI)
	},
}

func newController(opts ...pomodoro.Option) *pomodoro.Controller {
	return pomodoro.NewController(store, append([]pomodoro.Option{
		pomodoro.WithSettings(preferences),
		pomodoro.WithClock(now),
	}, opts...)...)
}

// runPomodoro starts a session and, unless noUI, hands it to the timer screen
func runPomodoro(cmd *cobra.Command, taskID *uint, minutes int, noUI bool) error {
	out := cmd.OutOrStdout()

	var task *models.Task
	if taskID != nil {
		var err error
		if task, err = plans.CheckStartable(*taskID); err != nil {
			if errors.Is(err, planner.ErrTaskLocked) {
				return fmt.Errorf("task #%d can't take a pomodoro: it is finished or its plan was abandoned", *taskID)
			}
			return err
		}
	}

	ctrl := newController()
	var (
		record *models.Pomodoro
		err    error
	)
	if minutes > 0 {
		record, err = ctrl.Start(taskID, minutes)
	} else {
		record, err = ctrl.StartWithSettings(taskID)
	}
	if err != nil {
		if errors.Is(err, pomodoro.ErrInvalidState) {
			return fmt.Errorf("%w\nResume it with: taskflow pomo resume, or drop it with: taskflow pomo abandon", err)
		}
		return err
	}

	if noUI {
		fmt.Fprintf(out, "🍅 Started pomodoro #%d (%d min)", record.ID, record.EstimatedMinutes)
		if task != nil {
			fmt.Fprintf(out, " for task #%d: %s", task.ID, task.Name)
		}
		fmt.Fprintln(out)
		fmt.Fprintf(out, "Started at: %s\n", record.StartedAt.Local().Format("15:04:05"))
		return nil
	}
	return runTimer(cmd, ctrl)
}

// runTimer shows the timer screen and reports how it ended
func runTimer(cmd *cobra.Command, ctrl *pomodoro.Controller) error {
	choices, err := taskChoices()
	if err != nil {
		return err
	}
	outcome, err := tui.RunTimerTUI(ctrl, choices)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if outcome.Completed > 0 {
		fmt.Fprintf(out, "🍅 Finished %d pomodoro(s)\n", outcome.Completed)
	}
	if outcome.LeftOpen {
		fmt.Fprintf(out, "⏱️  Pomodoro #%d keeps running (%s left)\n",
			outcome.State.ActivePomodoroID, pomodoro.FormatClock(outcome.State.Remaining()))
		fmt.Fprintln(out, "Resume with: taskflow pomo resume")
	}
	return outcome.Err
}

// taskChoices lists today's tasks a running session can switch to
func taskChoices() ([]tui.TaskChoice, error) {
	board, err := plans.TodayBoard(now())
	if err != nil {
		return nil, err
	}
	var choices []tui.TaskChoice
	for _, q := range planner.Quadrants {
		for _, t := range board.Open[q] {
			if t.Locked {
				continue
			}
			choices = append(choices, tui.TaskChoice{ID: t.ID, Name: t.Name})
		}
	}
	return choices, nil
}

// resumeOpen rebuilds a controller around the open pomodoro, or returns nil when there is none
func resumeOpen() (*pomodoro.Controller, error) {
	open, err := store.OpenPomodoro()
	if err != nil || open == nil {
		return nil, err
	}
	return newController(pomodoro.WithHandoff(pomodoro.Handoff{Pomodoro: open})), nil
}

var pomoResumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Reopen the timer for the running pomodoro",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctrl, err := resumeOpen()
		if err != nil {
			return err
		}
		if ctrl == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "No running pomodoro")
			return nil
		}
		return runTimer(cmd, ctrl)
	},
}

var pomoFinishCmd = &cobra.Command{
	Use:   "finish",
	Short: "Complete the running pomodoro now",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctrl, err := resumeOpen()
		if err != nil {
			return err
		}
		if ctrl == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "No running pomodoro")
			return nil
		}
		id := ctrl.State().ActivePomodoroID
		if _, err := ctrl.FinishNow(); err != nil {
			return err
		}
		s := ctrl.State()
		fmt.Fprintf(cmd.OutOrStdout(), "🍅 Finished pomodoro #%d (%d min)\n", id, s.EstimatedMinutes)
		return nil
	},
}

var pomoAbandonCmd = &cobra.Command{
	Use:   "abandon",
	Short: "Abandon the running pomodoro",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctrl, err := resumeOpen()
		if err != nil {
			return err
		}
		if ctrl == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "No running pomodoro")
			return nil
		}
		s := ctrl.State()
		if _, err := ctrl.Abandon(); err != nil {
			return err
		}
		worked := time.Duration(s.ElapsedWorkSeconds) * time.Second
		fmt.Fprintf(cmd.OutOrStdout(), "⏹️  Abandoned pomodoro #%d after %s\n", s.ActivePomodoroID, formatDuration(worked))
		return nil
	},
}

var pomoStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the running pomodoro",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		ctrl, err := resumeOpen()
		if err != nil {
			return err
		}
		if ctrl == nil {
			fmt.Fprintln(out, "No running pomodoro")
			return nil
		}

		s := ctrl.State()
		// A session left running past its length is closed as finished
		ev, err := ctrl.Tick(0)
		if err != nil {
			return err
		}
		if ev == pomodoro.EventWorkCompleted {
			fmt.Fprintf(out, "🍅 Pomodoro #%d finished (%d min)\n", s.ActivePomodoroID, s.EstimatedMinutes)
			return nil
		}

		fmt.Fprintf(out, "⏱️  Pomodoro #%d", s.ActivePomodoroID)
		if s.TaskID != nil {
			if task, err := plans.GetTask(*s.TaskID); err == nil {
				fmt.Fprintf(out, " for task #%d: %s", task.ID, task.Name)
			}
		}
		fmt.Fprintln(out)
		fmt.Fprintf(out, "Started at: %s\n", s.StartedAt.Local().Format("15:04:05"))
		fmt.Fprintf(out, "Elapsed: %s, remaining: %s\n",
			pomodoro.FormatClock(int(s.ElapsedWorkSeconds)), pomodoro.FormatClock(s.Remaining()))
		return nil
	},
}

var pomoHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent pomodoros",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		list, err := store.ListPomodoros(db.PomodoroFilter{Limit: limit})
		if err != nil {
			return err
		}
		renderHistory(cmd.OutOrStdout(), list, taskNames(list))
		return nil
	},
}

// taskNames resolves the tasks of a pomodoro list. Deleted tasks are left out.
func taskNames(list []models.Pomodoro) map[uint]string {
	names := map[uint]string{}
	for _, p := range list {
		if p.TaskID == nil {
			continue
		}
		if _, seen := names[*p.TaskID]; seen {
			continue
		}
		if task, err := plans.GetTask(*p.TaskID); err == nil {
			names[*p.TaskID] = task.Name
		}
	}
	return names
}

func renderHistory(w io.Writer, list []models.Pomodoro, names map[uint]string) {
	if len(list) == 0 {
		fmt.Fprintln(w, "No pomodoros yet. Start one with: taskflow pomo start")
		return
	}
	fmt.Fprintf(w, "%-5s %-16s %-10s %-9s %s\n", "ID", "STARTED", "STATUS", "MINUTES", "TASK")
	focused := 0
	for _, p := range list {
		minutes := "-"
		if p.FinishedMinutes != nil {
			minutes = fmt.Sprintf("%d/%d", *p.FinishedMinutes, p.EstimatedMinutes)
			focused += *p.FinishedMinutes
		}
		task := "-"
		if p.TaskID != nil {
			task = fmt.Sprintf("#%d", *p.TaskID)
			if name, ok := names[*p.TaskID]; ok {
				task += " " + truncate(name, 30)
			}
		}
		fmt.Fprintf(w, "%-5d %-16s %-10s %-9s %s\n",
			p.ID, p.StartedAt.Local().Format("02/01/2006 15:04"), p.Status.DisplayName(), minutes, task)
	}
	fmt.Fprintf(w, "\nFocused %s across %d session(s)\n", formatMinutes(focused), len(list))
}

func init() {
	pomoStartCmd.Flags().IntP("minutes", "m", 0, "Session length (default from settings)")
	pomoStartCmd.Flags().Bool("no-ui", false, "Start without the interactive timer")
	pomoHistoryCmd.Flags().IntP("limit", "n", 10, "Number of sessions to show (0 for all)")

	pomoCmd.AddCommand(pomoStartCmd)
	pomoCmd.AddCommand(pomoResumeCmd)
	pomoCmd.AddCommand(pomoFinishCmd)
	pomoCmd.AddCommand(pomoAbandonCmd)
	pomoCmd.AddCommand(pomoStatusCmd)
	pomoCmd.AddCommand(pomoHistoryCmd)
}
