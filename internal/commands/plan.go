package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/balkashynov/taskflow/internal/models"
	"github.com/balkashynov/taskflow/internal/parser"
	"github.com/balkashynov/taskflow/internal/planner"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Manage long-running plans",
	Long: `Plans span one or more days. While a plan is active, taskflow creates a task
for it every day of its window.`,
}

var planAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Create a new plan with smart parsing",
	Long: `Create a new plan. Without arguments an interactive form opens.

Smart syntax:
  +high / +normal        Priority
  !urgent, !u or !       Mark urgent
  start:<date>           First day (also on:, from:)
  end:<date>             Estimated last day (also until:, due:)

Dates: today, tomorrow, dd/mm/yyyy, 3 days, 2 weeks

Examples:
  taskflow plan add "Ship v2 +high !urgent start:tomorrow end:2weeks"
  taskflow plan add Learn Go --end 31/12/2026 --note "one chapter a day"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		current := now()

		var req planner.CreatePlanRequest
		if len(args) == 0 {
			var err error
			if req, err = planForm(current); err != nil {
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
			req = planner.CreatePlanRequest{
				Name:           parsed.Name,
				Priority:       parsed.Priority,
				Urgent:         parsed.Urgent,
				EstimatedEndAt: parsed.End,
			}
			if parsed.Start != nil {
				req.StartAt = *parsed.Start
			}
			if err := applyPlanFlags(cmd, &req, current); err != nil {
				return err
			}
		}

		plan, err := plans.CreatePlan(req)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "✅ Created plan #%d: %s\n", plan.ID, plan.Name)
		fmt.Fprintf(out, "Window: %s\n", planWindow(*plan))

		task, err := plans.CatchUpToday(plan.ID)
		if err != nil {
			return err
		}
		if task != nil {
			fmt.Fprintf(out, "📌 Added today's task #%d\n", task.ID)
		}
		return nil
	},
}

// applyPlanFlags lets explicit flags override the smart syntax
func applyPlanFlags(cmd *cobra.Command, req *planner.CreatePlanRequest, current time.Time) error {
	flags := cmd.Flags()
	if flags.Changed("priority") {
		p, _ := flags.GetString("priority")
		req.Priority = planner.ParsePriority(p)
	}
	if flags.Changed("urgent") {
		req.Urgent, _ = flags.GetBool("urgent")
	}
	if flags.Changed("start") {
		s, _ := flags.GetString("start")
		start, err := parser.ParseDate(s, current)
		if err != nil {
			return fmt.Errorf("--start: %w", err)
		}
		if start != nil {
			req.StartAt = *start
		}
	}
	if flags.Changed("end") {
		e, _ := flags.GetString("end")
		end, err := parser.ParseDate(e, current)
		if err != nil {
			return fmt.Errorf("--end: %w", err)
		}
		req.EstimatedEndAt = end
	}
	if flags.Changed("note") {
		req.Note, _ = flags.GetString("note")
	}
	return nil
}

var planListCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List plans",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		groups, err := plans.ListPlans()
		if err != nil {
			return err
		}
		all, _ := cmd.Flags().GetBool("all")
		renderPlanGroups(cmd.OutOrStdout(), groups, all)
		return nil
	},
}

// renderPlanGroups prints active plans, and closed ones when all is set
func renderPlanGroups(w io.Writer, groups planner.PlanGroups, all bool) {
	if len(groups.Active) == 0 && (!all || len(groups.Closed) == 0) {
		fmt.Fprintln(w, "No plans found. Create one with: taskflow plan add \"...\"")
		return
	}

	fmt.Fprintf(w, "Active Plans (%d)\n", len(groups.Active))
	for _, p := range groups.Active {
		fmt.Fprintln(w, formatPlanLine(p))
	}
	if all {
		fmt.Fprintf(w, "\nFinished / Abandoned (%d)\n", len(groups.Closed))
		for _, p := range groups.Closed {
			fmt.Fprintln(w, formatPlanLine(p))
		}
	} else if len(groups.Closed) > 0 {
		fmt.Fprintf(w, "\n%d closed plan(s) hidden, use --all to show them\n", len(groups.Closed))
	}
}

var planShowCmd = &cobra.Command{
	Use:   "show [plan-id]",
	Short: "Show a plan with its daily tasks",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseIDArg(args[0], "plan")
		if err != nil {
			return err
		}
		plan, err := plans.GetPlan(id)
		if err != nil {
			return err
		}
		tasks, err := plans.PlanTasks(id)
		if err != nil {
			return err
		}
		renderPlan(cmd.OutOrStdout(), plan, tasks, now())
		return nil
	},
}

func renderPlan(w io.Writer, p *models.Plan, tasks []models.Task, current time.Time) {
	fmt.Fprintf(w, "%s Plan #%d: %s\n", planStatusIcon(p.Status), p.ID, p.Name)
	fmt.Fprintf(w, "Status:   %s\n", p.Status.DisplayName())
	fmt.Fprintf(w, "Priority: %s", p.Priority.OrNormal())
	if p.Urgent {
		fmt.Fprint(w, " (urgent)")
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Window:   %s\n", planWindow(*p))
	if p.EndedAt != nil {
		fmt.Fprintf(w, "Ended:    %s\n", optionalTime(p.EndedAt, "02/01/2006 15:04"))
	}
	if p.Note != "" {
		fmt.Fprintf(w, "Note:     %s\n", p.Note)
	}
	if p.Review != "" {
		fmt.Fprintf(w, "Review:   %s\n", p.Review)
	}

	done := 0
	for _, t := range tasks {
		if t.Finished {
			done++
		}
	}
	fmt.Fprintf(w, "\nTasks (%d/%d done)\n", done, len(tasks))
	for _, t := range tasks {
		fmt.Fprintln(w, "  "+formatTaskLine(t, current))
	}
}

// planAction builds a one-argument command that changes a plan's status
func planAction(use, short, verb string, action func(id uint) (*models.Plan, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [plan-id]",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg(args[0], "plan")
			if err != nil {
				return err
			}
			plan, err := action(id)
			if err != nil {
				if errors.Is(err, planner.ErrPlanClosed) {
					return fmt.Errorf("plan #%d is already closed, reopen it first", id)
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s plan #%d: %s\n", planStatusIcon(plan.Status), verb, plan.ID, plan.Name)
			return nil
		},
	}
}

var planDelayCmd = &cobra.Command{
	Use:   "delay [plan-id]",
	Short: "Mark a plan as delayed, optionally moving its end",
	Long: `Mark a plan as delayed. A delayed plan stays active and keeps producing daily tasks.

Examples:
  taskflow plan delay 3
  taskflow plan delay 3 --until "2 weeks"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseIDArg(args[0], "plan")
		if err != nil {
			return err
		}
		until, _ := cmd.Flags().GetString("until")
		newEnd, err := parser.ParseDate(until, now())
		if err != nil {
			return fmt.Errorf("--until: %w", err)
		}
		plan, err := plans.DelayPlan(id, newEnd)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "⏳ Delayed plan #%d: %s\n", plan.ID, plan.Name)
		fmt.Fprintf(cmd.OutOrStdout(), "Window: %s\n", planWindow(*plan))
		return nil
	},
}

var planNoteCmd = &cobra.Command{
	Use:   "note [plan-id] [text]",
	Short: "Set the note or review of a plan",
	Long: `Set the note of a plan, or its review with --review.
Closed plans only accept a review.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseIDArg(args[0], "plan")
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
		plan, err := plans.UpdatePlanNotes(id, patch)
		if err != nil {
			if errors.Is(err, planner.ErrPlanClosed) {
				return fmt.Errorf("plan #%d is closed, only its review can change (use --review)", id)
			}
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "📝 Updated plan #%d: %s\n", plan.ID, plan.Name)
		return nil
	},
}

var planRemoveCmd = &cobra.Command{
	Use:     "rm [plan-id]",
	Aliases: []string{"delete"},
	Short:   "Delete a plan (its tasks are kept)",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseIDArg(args[0], "plan")
		if err != nil {
			return err
		}
		plan, err := plans.GetPlan(id)
		if err != nil {
			return err
		}
		if err := plans.DeletePlan(id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "🗑️  Deleted plan #%d: %s\n", plan.ID, plan.Name)
		return nil
	},
}

func init() {
	planAddCmd.Flags().String("priority", "", "Priority: normal|high")
	planAddCmd.Flags().Bool("urgent", false, "Mark the plan urgent")
	planAddCmd.Flags().String("start", "", "First day (today, tomorrow, dd/mm/yyyy, 3 days)")
	planAddCmd.Flags().String("end", "", "Estimated last day")
	planAddCmd.Flags().String("note", "", "Additional notes")

	planListCmd.Flags().BoolP("all", "a", false, "Include finished and abandoned plans")
	planDelayCmd.Flags().String("until", "", "New estimated end")
	planNoteCmd.Flags().Bool("review", false, "Set the review instead of the note")

	planCmd.AddCommand(planAddCmd)
	planCmd.AddCommand(planListCmd)
	planCmd.AddCommand(planShowCmd)
	planCmd.AddCommand(planAction("finish", "Mark a plan as finished", "Finished", func(id uint) (*models.Plan, error) {
		return plans.FinishPlan(id)
	}))
	planCmd.AddCommand(planAction("abandon", "Abandon a plan, locking its tasks", "Abandoned", func(id uint) (*models.Plan, error) {
		return plans.AbandonPlan(id)
	}))
	planCmd.AddCommand(planAction("reopen", "Put a closed plan back in progress", "Reopened", func(id uint) (*models.Plan, error) {
		return plans.ReopenPlan(id)
	}))
	planCmd.AddCommand(planAction("toggle", "Flip a plan between finished and in progress", "Toggled", func(id uint) (*models.Plan, error) {
		return plans.TogglePlanFinished(id)
	}))
	planCmd.AddCommand(planDelayCmd)
	planCmd.AddCommand(planNoteCmd)
	planCmd.AddCommand(planRemoveCmd)
}
