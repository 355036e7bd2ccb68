// Package materialize turns active plans into the current day's tasks, once per calendar day.
package materialize

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/balkashynov/taskflow/internal/db"
	"github.com/balkashynov/taskflow/internal/models"
)

// Result describes what a MaterializeToday call changed
type Result struct {
	Day                 time.Time
	CreatedTasks        []models.Task
	PromotedPlans       []models.Plan
	Marker              *models.DayMarker
	AlreadyMaterialized bool
}

// Engine derives daily tasks from plans
type Engine struct {
	store *db.Store
	mu    sync.Mutex

	afterCheck func() // between the marker lookup and the write
}

// Option configures an Engine
type Option func(*Engine)

// NewEngine creates an engine writing through store
func NewEngine(store *db.Store, opts ...Option) *Engine {
	e := &Engine{store: store}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// MaterializeToday promotes plans that have started and, unless it already happened
// for the calendar day of now, creates one task per active plan covering that day.
func (e *Engine) MaterializeToday(ctx context.Context, now time.Time) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	today := models.StartOfDay(now)
	res := Result{Day: today}

	promoted, err := e.promotePlans(today)
	if err != nil {
		return res, err
	}
	res.PromotedPlans = promoted

	marker, err := e.store.FindDayMarker(models.DayKey(today))
	if err != nil {
		return res, err
	}
	if marker != nil {
		res.Marker = marker
		res.AlreadyMaterialized = true
		return res, nil
	}

	if e.afterCheck != nil {
		e.afterCheck()
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}

	created, marker, err := e.createForDay(today)
	if errors.Is(err, db.ErrConstraintViolation) {
		// Another writer materialized the day first; its tasks stand, ours were rolled back
		res.AlreadyMaterialized = true
		res.Marker, _ = e.store.FindDayMarker(models.DayKey(today))
		return res, nil
	}
	if err != nil {
		return res, err
	}

	res.CreatedTasks = created
	res.Marker = marker
	return res, nil
}

// promotePlans moves not-started plans whose window covers today to in progress.
// Repeating it is harmless, so it is not gated by the day marker.
func (e *Engine) promotePlans(today time.Time) ([]models.Plan, error) {
	var promoted []models.Plan
	err := e.store.Transaction(func(tx *db.Store) error {
		plans, err := tx.ListPlans(db.PlanFilter{Statuses: []models.PlanStatus{models.PlanNotStarted}})
		if err != nil {
			return err
		}
		for i := range plans {
			plan := plans[i]
			if !plan.CoversDay(today) {
				continue
			}
			plan.SetInProgress()
			if err := tx.SavePlan(&plan); err != nil {
				return err
			}
			promoted = append(promoted, plan)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("promote plans: %w", err)
	}
	return promoted, nil
}

// createForDay writes the day's tasks and its marker in one transaction
func (e *Engine) createForDay(today time.Time) ([]models.Task, *models.DayMarker, error) {
	var tasks []models.Task
	var marker *models.DayMarker

	err := e.store.Transaction(func(tx *db.Store) error {
		plans, err := tx.ListPlans(db.PlanFilter{})
		if err != nil {
			return err
		}
		tasks = TasksForDay(plans, today)
		if err := tx.CreateTasks(tasks); err != nil {
			return err
		}

		marker = &models.DayMarker{
			Day:          models.DayKey(today),
			Date:         today,
			CreatedTasks: true,
		}
		return tx.CreateDayMarker(marker)
	})
	if err != nil {
		return nil, nil, fmt.Errorf("materialize %s: %w", models.DayKey(today), err)
	}
	return tasks, marker, nil
}

// TasksForDay builds (without saving) the tasks that active plans produce for day
func TasksForDay(plans []models.Plan, day time.Time) []models.Task {
	day = models.StartOfDay(day)
	var tasks []models.Task
	for _, plan := range plans {
		if !plan.IsActive() || !plan.CoversDay(day) {
			continue
		}
		planID := plan.ID
		tasks = append(tasks, models.Task{
			Name:     plan.Name,
			Date:     day,
			Priority: plan.Priority.OrNormal(),
			Urgent:   plan.Urgent,
			PlanID:   &planID,
		})
	}
	return tasks
}
