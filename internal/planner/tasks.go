package planner

import (
	"fmt"
	"strings"
	"time"

	"github.com/balkashynov/taskflow/internal/db"
	"github.com/balkashynov/taskflow/internal/models"
)

// CreateTaskRequest holds the data needed to create a new task
type CreateTaskRequest struct {
	Name     string
	Date     time.Time // zero means today
	Priority models.Priority
	Urgent   bool
	NotifyAt *time.Time
	PlanID   *uint
	Note     string
}

// CreateTask stores a task for one day, optionally linked to an existing plan
func (s *Service) CreateTask(req CreateTaskRequest) (*models.Task, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: task name is required", ErrInvalidInput)
	}
	date := req.Date
	if date.IsZero() {
		date = s.now()
	}

	if req.PlanID != nil {
		if _, err := s.store.GetPlan(*req.PlanID); err != nil {
			return nil, fmt.Errorf("link plan #%d: %w", *req.PlanID, err)
		}
	}

	task := models.Task{
		Name:     name,
		Date:     models.StartOfDay(date),
		Priority: req.Priority.OrNormal(),
		Urgent:   req.Urgent,
		NotifyAt: req.NotifyAt,
		PlanID:   req.PlanID,
		Note:     req.Note,
	}
	if err := s.store.CreateTask(&task); err != nil {
		return nil, err
	}
	return &task, nil
}

// GetTask returns one task
func (s *Service) GetTask(id uint) (*models.Task, error) {
	return s.store.GetTask(id)
}

// TaskPlan resolves the task's plan. A deleted or missing plan gives nil without error.
func (s *Service) TaskPlan(task *models.Task) (*models.Plan, error) {
	if task.PlanID == nil {
		return nil, nil
	}
	plan, err := s.store.GetPlan(*task.PlanID)
	if db.IsNotFound(err) {
		return nil, nil
	}
	return plan, err
}

// SetTaskFinished marks a task finished or back to open
func (s *Service) SetTaskFinished(id uint, finished bool) (*models.Task, error) {
	return s.updateTask(id, func(t *models.Task) error {
		t.Finished = finished
		return nil
	})
}

// ToggleTaskFinished flips a task's finished flag
func (s *Service) ToggleTaskFinished(id uint) (*models.Task, error) {
	return s.updateTask(id, func(t *models.Task) error {
		t.Finished = !t.Finished
		return nil
	})
}

// UpdateTaskNotes edits a task's note and review
func (s *Service) UpdateTaskNotes(id uint, patch NotesPatch) (*models.Task, error) {
	return s.updateTask(id, func(t *models.Task) error {
		if patch.Note != nil {
			t.Note = strings.TrimSpace(*patch.Note)
		}
		if patch.Review != nil {
			t.Review = strings.TrimSpace(*patch.Review)
		}
		return nil
	})
}

// DeleteTask soft-deletes a task
func (s *Service) DeleteTask(id uint) error {
	return s.store.DeleteTask(id)
}

// CheckStartable returns ErrTaskLocked for tasks a pomodoro cannot count toward:
// finished tasks and tasks of an abandoned plan
func (s *Service) CheckStartable(id uint) (*models.Task, error) {
	task, err := s.store.GetTask(id)
	if err != nil {
		return nil, err
	}
	if task.Finished {
		return nil, fmt.Errorf("%w: task #%d is already finished", ErrTaskLocked, task.ID)
	}
	plan, err := s.TaskPlan(task)
	if err != nil {
		return nil, err
	}
	if plan != nil && plan.Status == models.PlanAbandoned {
		return nil, fmt.Errorf("%w: plan #%d was abandoned", ErrTaskLocked, plan.ID)
	}
	return task, nil
}

// ListTasksOn returns the tasks dated on day's calendar day
func (s *Service) ListTasksOn(day time.Time) ([]models.Task, error) {
	from := models.StartOfDay(day)
	to := from.AddDate(0, 0, 1)
	return s.store.ListTasks(db.TaskFilter{From: &from, To: &to})
}

func (s *Service) updateTask(id uint, change func(t *models.Task) error) (*models.Task, error) {
	var updated *models.Task
	err := s.store.Transaction(func(tx *db.Store) error {
		task, err := tx.GetTask(id)
		if err != nil {
			return err
		}
		if err := change(task); err != nil {
			return err
		}
		if err := tx.SaveTask(task); err != nil {
			return err
		}
		updated = task
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
