package planner

import (
	"fmt"
	"strings"
	"time"

	"github.com/balkashynov/taskflow/internal/db"
	"github.com/balkashynov/taskflow/internal/models"
)

// CreatePlanRequest holds the data needed to create a new plan
type CreatePlanRequest struct {
	Name           string
	Priority       models.Priority
	Urgent         bool
	StartAt        time.Time  // zero means today
	EstimatedEndAt *time.Time // nil means a single-day plan
	Note           string
}

// CreatePlan validates req and stores a not started plan
func (s *Service) CreatePlan(req CreatePlanRequest) (*models.Plan, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: plan name is required", ErrInvalidInput)
	}

	start := req.StartAt
	if start.IsZero() {
		start = s.now()
	}
	start = models.StartOfDay(start)

	var end *time.Time
	if req.EstimatedEndAt != nil {
		e := models.StartOfDay(*req.EstimatedEndAt)
		if e.Before(start) {
			return nil, fmt.Errorf("%w: estimated end %s is before start %s",
				ErrInvalidInput, models.DayKey(e), models.DayKey(start))
		}
		end = &e
	}

	plan := models.Plan{
		Name:           name,
		Status:         models.PlanNotStarted,
		Priority:       req.Priority.OrNormal(),
		Urgent:         req.Urgent,
		StartAt:        start,
		EstimatedEndAt: end,
		Note:           req.Note,
	}
	if err := s.store.CreatePlan(&plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

// GetPlan returns one plan
func (s *Service) GetPlan(id uint) (*models.Plan, error) {
	return s.store.GetPlan(id)
}

// PlanGroups splits plans the way the plan list shows them
type PlanGroups struct {
	Active []models.Plan
	Closed []models.Plan
}

// ListPlans returns every plan, active ones first, each group ordered by start date
func (s *Service) ListPlans() (PlanGroups, error) {
	plans, err := s.store.ListPlans(db.PlanFilter{})
	if err != nil {
		return PlanGroups{}, err
	}
	var groups PlanGroups
	for _, p := range plans {
		if p.IsActive() {
			groups.Active = append(groups.Active, p)
		} else {
			groups.Closed = append(groups.Closed, p)
		}
	}
	return groups, nil
}

// PlanTasks returns the tasks derived from a plan, oldest first
func (s *Service) PlanTasks(id uint) ([]models.Task, error) {
	return s.store.ListTasks(db.TaskFilter{PlanID: &id})
}

// FinishPlan closes the plan as finished
func (s *Service) FinishPlan(id uint) (*models.Plan, error) {
	return s.updatePlan(id, func(p *models.Plan) error {
		if p.Status.Closed() {
			return fmt.Errorf("%w: plan #%d is already %s", ErrPlanClosed, p.ID, p.Status.DisplayName())
		}
		p.Finish(s.now())
		return nil
	})
}

// AbandonPlan closes the plan as abandoned. Its tasks become locked.
func (s *Service) AbandonPlan(id uint) (*models.Plan, error) {
	return s.updatePlan(id, func(p *models.Plan) error {
		if p.Status.Closed() {
			return fmt.Errorf("%w: plan #%d is already %s", ErrPlanClosed, p.ID, p.Status.DisplayName())
		}
		p.Abandon(s.now())
		return nil
	})
}

// ReopenPlan puts a plan back in progress and clears its end time
func (s *Service) ReopenPlan(id uint) (*models.Plan, error) {
	return s.updatePlan(id, func(p *models.Plan) error {
		p.SetInProgress()
		return nil
	})
}

// TogglePlanFinished flips a plan between finished and in progress
func (s *Service) TogglePlanFinished(id uint) (*models.Plan, error) {
	return s.updatePlan(id, func(p *models.Plan) error {
		if p.Status == models.PlanAbandoned {
			return fmt.Errorf("%w: plan #%d is abandoned, reopen it first", ErrPlanClosed, p.ID)
		}
		p.ToggleFinished(s.now())
		return nil
	})
}

// DelayPlan marks an open plan as delayed and optionally moves its estimated end.
// A delayed plan keeps producing daily tasks inside its window.
func (s *Service) DelayPlan(id uint, newEnd *time.Time) (*models.Plan, error) {
	return s.updatePlan(id, func(p *models.Plan) error {
		if p.Status.Closed() {
			return fmt.Errorf("%w: plan #%d is %s", ErrPlanClosed, p.ID, p.Status.DisplayName())
		}
		if newEnd != nil {
			e := models.StartOfDay(*newEnd)
			if e.Before(models.StartOfDay(p.StartAt.In(e.Location()))) {
				return fmt.Errorf("%w: estimated end %s is before start", ErrInvalidInput, models.DayKey(e))
			}
			p.EstimatedEndAt = &e
		}
		p.Status = models.PlanDelayed
		p.EndedAt = nil
		return nil
	})
}

// NotesPatch changes a note and/or a review; nil fields are left alone
type NotesPatch struct {
	Note   *string
	Review *string
}

// UpdatePlanNotes edits the plan note and review. A closed plan only takes a review.
func (s *Service) UpdatePlanNotes(id uint, patch NotesPatch) (*models.Plan, error) {
	return s.updatePlan(id, func(p *models.Plan) error {
		if patch.Note != nil {
			if p.Status.Closed() {
				return fmt.Errorf("%w: plan #%d is %s, only the review can change", ErrPlanClosed, p.ID, p.Status.DisplayName())
			}
			p.Note = strings.TrimSpace(*patch.Note)
		}
		if patch.Review != nil {
			p.Review = strings.TrimSpace(*patch.Review)
		}
		return nil
	})
}

// DeletePlan soft-deletes a plan. Tasks created from it stay and keep their plan ID.
func (s *Service) DeletePlan(id uint) error {
	return s.store.DeletePlan(id)
}

func (s *Service) updatePlan(id uint, change func(p *models.Plan) error) (*models.Plan, error) {
	var updated *models.Plan
	err := s.store.Transaction(func(tx *db.Store) error {
		plan, err := tx.GetPlan(id)
		if err != nil {
			return err
		}
		if err := change(plan); err != nil {
			return err
		}
		if err := tx.SavePlan(plan); err != nil {
			return err
		}
		updated = plan
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// CatchUpToday gives a plan created after today's tasks were generated its task for today.
// Plans that do not cover today, or days not yet materialized, are left to the daily run.
func (s *Service) CatchUpToday(planID uint) (*models.Task, error) {
	now := s.now()
	day := models.StartOfDay(now)

	var created *models.Task
	err := s.store.Transaction(func(tx *db.Store) error {
		plan, err := tx.GetPlan(planID)
		if err != nil {
			return err
		}
		if !plan.IsActive() || !plan.CoversDay(day) {
			return nil
		}
		marker, err := tx.FindDayMarker(models.DayKey(day))
		if err != nil || marker == nil {
			return err
		}

		tomorrow := day.AddDate(0, 0, 1)
		existing, err := tx.ListTasks(db.TaskFilter{From: &day, To: &tomorrow, PlanID: &plan.ID})
		if err != nil || len(existing) > 0 {
			return err
		}

		if plan.Status == models.PlanNotStarted {
			plan.SetInProgress()
			if err := tx.SavePlan(plan); err != nil {
				return err
			}
		}
		task := models.Task{
			Name:     plan.Name,
			Date:     day,
			Priority: plan.Priority.OrNormal(),
			Urgent:   plan.Urgent,
			PlanID:   &plan.ID,
		}
		if err := tx.CreateTask(&task); err != nil {
			return err
		}
		created = &task
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}
