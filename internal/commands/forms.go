package commands

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/balkashynov/taskflow/internal/models"
	"github.com/balkashynov/taskflow/internal/parser"
	"github.com/balkashynov/taskflow/internal/planner"
	"github.com/balkashynov/taskflow/internal/settings"
)

// errCancelled is returned when the user leaves a form without submitting
var errCancelled = errors.New("cancelled")

func runForm(form *huh.Form) error {
	err := form.WithShowHelp(true).WithShowErrors(true).Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return errCancelled
	}
	return err
}

func requiredName(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("name is required")
	}
	return nil
}

func validDate(current time.Time) func(string) error {
	return func(s string) error {
		_, err := parser.ParseDate(s, current)
		return err
	}
}

func priorityOptions() []huh.Option[string] {
	return []huh.Option[string]{
		huh.NewOption("Normal", string(models.PriorityNormal)),
		huh.NewOption("High", string(models.PriorityHigh)),
	}
}

// planForm asks for a new plan interactively
func planForm(current time.Time) (planner.CreatePlanRequest, error) {
	var (
		name     string
		priority = string(models.PriorityNormal)
		urgent   bool
		start    = "today"
		end      string
		note     string
	)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Plan name").Value(&name).Validate(requiredName),
			huh.NewSelect[string]().Title("Priority").Options(priorityOptions()...).Value(&priority),
			huh.NewConfirm().Title("Urgent?").Value(&urgent),
		).Title("New plan"),
		huh.NewGroup(
			huh.NewInput().Title("Start").
				Description("today, tomorrow, dd/mm/yyyy or 3 days").
				Value(&start).Validate(validDate(current)),
			huh.NewInput().Title("Estimated end").
				Description("Leave empty for a single-day plan").
				Value(&end).Validate(validDate(current)),
			huh.NewText().Title("Note").Value(&note),
		).Title("Schedule"),
	)
	if err := runForm(form); err != nil {
		return planner.CreatePlanRequest{}, err
	}

	req := planner.CreatePlanRequest{
		Name:     name,
		Priority: models.Priority(priority),
		Urgent:   urgent,
		Note:     strings.TrimSpace(note),
	}
	startAt, _ := parser.ParseDate(start, current)
	if startAt != nil {
		req.StartAt = *startAt
	}
	req.EstimatedEndAt, _ = parser.ParseDate(end, current)
	return req, nil
}

// taskForm asks for a new task, offering active plans to link it to
func taskForm(current time.Time, active []models.Plan) (planner.CreateTaskRequest, error) {
	var (
		name     string
		day      = "today"
		priority = string(models.PriorityNormal)
		urgent   bool
		planID   uint
		note     string
	)

	planOptions := []huh.Option[uint]{huh.NewOption("No plan", uint(0))}
	for _, p := range active {
		planOptions = append(planOptions, huh.NewOption(fmt.Sprintf("#%d %s", p.ID, p.Name), p.ID))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Task name").Value(&name).Validate(requiredName),
			huh.NewInput().Title("Day").
				Description("today, tomorrow, dd/mm/yyyy or 3 days").
				Value(&day).Validate(validDate(current)),
			huh.NewSelect[string]().Title("Priority").Options(priorityOptions()...).Value(&priority),
			huh.NewConfirm().Title("Urgent?").Value(&urgent),
		).Title("New task"),
		huh.NewGroup(
			huh.NewSelect[uint]().Title("Plan").Options(planOptions...).Value(&planID),
			huh.NewText().Title("Note").Value(&note),
		).Title("Details"),
	)
	if err := runForm(form); err != nil {
		return planner.CreateTaskRequest{}, err
	}

	req := planner.CreateTaskRequest{
		Name:     name,
		Priority: models.Priority(priority),
		Urgent:   urgent,
		Note:     strings.TrimSpace(note),
	}
	if d, _ := parser.ParseDate(day, current); d != nil {
		req.Date = *d
	}
	if planID != 0 {
		req.PlanID = &planID
	}
	return req, nil
}

// settingsForm edits the preferences, prefilled with the current values
func settingsForm(current *models.Settings) (settings.Patch, error) {
	var (
		work       = strconv.Itoa(current.WorkMinutes)
		relax      = strconv.Itoa(current.RelaxMinutes)
		review     = current.ReviewNotification
		reviewTime = current.ReviewTime
	)

	minutes := func(lo, hi int) func(string) error {
		return func(s string) error {
			n, err := strconv.Atoi(strings.TrimSpace(s))
			if err != nil || n < lo || n > hi {
				return fmt.Errorf("enter a number between %d and %d", lo, hi)
			}
			return nil
		}
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Pomodoro work (min)").Value(&work).
				Validate(minutes(models.MinWorkMinutes, models.MaxWorkMinutes)),
			huh.NewInput().Title("Relax (min)").Value(&relax).
				Validate(minutes(models.MinRelaxMinutes, models.MaxRelaxMinutes)),
		).Title("Pomodoro"),
		huh.NewGroup(
			huh.NewConfirm().Title("Daily review reminder").Value(&review),
			huh.NewInput().Title("Review time (HH:MM)").Value(&reviewTime).
				Validate(func(s string) error {
					_, _, err := settings.ParseClock(s)
					return err
				}),
		).Title("Review"),
	)
	if err := runForm(form); err != nil {
		return settings.Patch{}, err
	}

	w, _ := strconv.Atoi(strings.TrimSpace(work))
	r, _ := strconv.Atoi(strings.TrimSpace(relax))
	return settings.Patch{
		WorkMinutes:        &w,
		RelaxMinutes:       &r,
		ReviewNotification: &review,
		ReviewTime:         &reviewTime,
	}, nil
}
