package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/balkashynov/taskflow/internal/models"
	"github.com/balkashynov/taskflow/internal/parser"
	"github.com/balkashynov/taskflow/internal/planner"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage daily tasks",
}

var taskAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Create a task for one day",
	Long: `Create a task. Without arguments an interactive form opens.

Smart syntax:
  +high / +normal        Priority
  !urgent, !u or !       Mark urgent
  on:<date>              Day of the task (default today)
  plan:<id>              Link the task to a plan

Examples:
  taskflow task add "Call the bank +high !u"
  taskflow task add "Write chapter 3 on:tomorrow plan:2"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		current := now()

		var req planner.CreateTaskRequest
		if len(args) == 0 {
			groups, err := plans.ListPlans()
			if err != nil {
				return err
			}
			if req, err = taskForm(current, groups.Active); err != nil {
				if errors.Is(err, errCancelled) {
					fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
					return nil
				}
				return err
			}
		} else {
			parsed := parser.ParseTitle(strings.Join(args, " "), current)
			for _, e := range parsed.Errors {
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s\n", e)
			}
			req = planner.CreateTaskRequest{
				Name:     parsed.Name,
				Priority: parsed.Priority,
				Urgent:   parsed.Urgent,
				PlanID:   parsed.PlanID,
			}
			if parsed.Start != nil {
				req.Date = *parsed.Start
			}

			flags := cmd.Flags()
			if flags.Changed("priority") {
				p, _ := flags.GetString("priority")
				req.Priority = planner.ParsePriority(p)
			}
			if flags.Changed("urgent") {
				req.Urgent, _ = flags.GetBool("urgent")
			}
			if flags.Changed("on") {
				s, _ := flags.GetString("on")
				day, err := parser.ParseDate(s, current)
				if err != nil {
					return fmt.Errorf("--on: %w", err)
				}
				if day != nil {
					req.Date = *day
				}
			}
			if flags.Changed("plan") {
				s, _ := flags.GetString("plan")
				id, err := parseIDArg(s, "plan")
				if err != nil {
					return err
				}
				req.PlanID = &id
			}
			req.Note, _ = flags.GetString("note")
		}

		task, err := plans.CreateTask(req)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✅ Created task #%d: %s\n", task.ID, task.Name)
		fmt.Fprintf(cmd.OutOrStdout(), "Day: %s\n", parser.FormatDay(task.Date, current))
		return nil
	},
}

var taskListCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List the tasks of one day",
	Long: `List the tasks of one day, today by default.

Examples:
  taskflow task ls
  taskflow task ls --day yesterday
  taskflow task ls --plan 3`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		current := now()
		out := cmd.OutOrStdout()

		if planArg, _ := cmd.Flags().GetString("plan"); planArg != "" {
			id, err := parseIDArg(planArg, "plan")
			if err != nil {
				return err
			}
			tasks, err := plans.PlanTasks(id)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Tasks of plan #%d (%d)\n", id, len(tasks))
			for _, t := range tasks {
				fmt.Fprintln(out, formatTaskLine(t, current))
			}
			return nil
		}

		dayArg, _ := cmd.Flags().GetString("day")
		day, err := parser.ParseDate(dayArg, current)
		if err != nil {
			return fmt.Errorf("--day: %w", err)
		}
		if day == nil {
			d := models.StartOfDay(current)
			day = &d
		}
		tasks, err := plans.ListTasksOn(*day)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Tasks for %s (%d)\n", parser.FormatDay(*day, current), len(tasks))
		if len(tasks) == 0 {
			fmt.Fprintln(out, "No tasks.")
		}
		for _, t := range tasks {
			fmt.Fprintln(out, formatTaskLine(t, current))
		}
		return nil
	},
}

var taskShowCmd = &cobra.Command{
	Use:   "show [task-id]",
	Short: "Show a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseIDArg(args[0], "task")
		if err != nil {
			return err
		}
		task, err := plans.GetTask(id)
		if err != nil {
			return err
		}
		plan, err := plans.TaskPlan(task)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, formatTaskLine(*task, now()))
		switch {
		case plan != nil:
			fmt.Fprintf(out, "Plan:   #%d %s (%s)\n", plan.ID, plan.Name, plan.Status.DisplayName())
		case task.PlanID != nil:
			fmt.Fprintf(out, "Plan:   #%d (deleted)\n", *task.PlanID)
		}
		if task.NotifyAt != nil {
			fmt.Fprintf(out, "Notify: %s\n", optionalTime(task.NotifyAt, "02/01/2006 15:04"))
		}
		if task.Note != "" {
			fmt.Fprintf(out, "Note:   %s\n", task.Note)
		}
		if task.Review != "" {
			fmt.Fprintf(out, "Review: %s\n", task.Review)
		}
		return nil
	},
}

// taskFinishAction builds done/undone
func taskFinishAction(use, short string, finished bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [task-id]",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg(args[0], "task")
			if err != nil {
				return err
			}
			task, err := plans.SetTaskFinished(id, finished)
			if err != nil {
				return err
			}
			if finished {
				fmt.Fprintf(cmd.OutOrStdout(), "✅ Marked task #%d as done: %s\n", task.ID, task.Name)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "↩️  Marked task #%d back to todo: %s\n", task.ID, task.Name)
			}
			return nil
		},
	}
}

var taskNoteCmd = &cobra.Command{
	Use:   "note [task-id] [text]",
	Short: "Set the note or review of a task",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseIDArg(args[0], "task")
		if err != nil {
			return err
		}
		text := strings.Join(args[1:], " ")
		review, _ := cmd.Flags().GetBool("review")

		var patch planner.NotesPatch
		if review {
			patch.Review = &text
		} else {
			patch.Note = &text
		}
		task, err := plans.UpdateTaskNotes(id, patch)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "📝 Updated task #%d: %s\n", task.ID, task.Name)
		return nil
	},
}

var taskRemoveCmd = &cobra.Command{
	Use:     "rm [task-id]",
	Aliases: []string{"delete"},
	Short:   "Delete a task",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseIDArg(args[0], "task")
		if err != nil {
			return err
		}
		task, err := plans.GetTask(id)
		if err != nil {
			return err
		}
		if err := plans.DeleteTask(id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "🗑️  Deleted task #%d: %s\n", task.ID, task.Name)
		return nil
	},
}

func init() {
	taskAddCmd.Flags().String("priority", "", "Priority: normal|high")
	taskAddCmd.Flags().Bool("urgent", false, "Mark the task urgent")
	taskAddCmd.Flags().String("on", "", "Day of the task (today, tomorrow, dd/mm/yyyy, 3 days)")
	taskAddCmd.Flags().String("plan", "", "Link to a plan ID")
	taskAddCmd.Flags().String("note", "", "Additional notes")

	taskListCmd.Flags().String("day", "", "Day to list (default today)")
	taskListCmd.Flags().String("plan", "", "List every task of a plan instead")
	taskNoteCmd.Flags().Bool("review", false, "Set the review instead of the note")

	taskCmd.AddCommand(taskAddCmd)
	taskCmd.AddCommand(taskListCmd)
	taskCmd.AddCommand(taskShowCmd)
	taskCmd.AddCommand(taskFinishAction("done", "Mark a task as finished", true))
	taskCmd.AddCommand(taskFinishAction("undone", "Mark a finished task back to todo", false))
	taskCmd.AddCommand(taskNoteCmd)
	taskCmd.AddCommand(taskRemoveCmd)
}
