package db

import (
	"time"

	"github.com/balkashynov/taskflow/internal/models"
)

// TaskFilter narrows ListTasks
type TaskFilter struct {
	From     *time.Time // Date >= From
	To       *time.Time // Date < To
	Finished *bool
	PlanID   *uint
}

// CreateTask inserts a new task
func (s *Store) CreateTask(task *models.Task) error {
	return wrapErr("create task", s.db.Create(task).Error)
}

// CreateTasks inserts several tasks in one statement
func (s *Store) CreateTasks(tasks []models.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	return wrapErr("create tasks", s.db.Create(&tasks).Error)
}

// GetTask retrieves a task by ID
func (s *Store) GetTask(id uint) (*models.Task, error) {
	var task models.Task
	if err := s.db.First(&task, id).Error; err != nil {
		return nil, wrapErr("get task", err)
	}
	return &task, nil
}

// ListTasks returns tasks ordered by date
func (s *Store) ListTasks(f TaskFilter) ([]models.Task, error) {
	q := s.db.Model(&models.Task{})
	if f.From != nil {
		q = q.Where("date >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("date < ?", *f.To)
	}
	if f.Finished != nil {
		q = q.Where("finished = ?", *f.Finished)
	}
	if f.PlanID != nil {
		q = q.Where("plan_id = ?", *f.PlanID)
	}

	var tasks []models.Task
	if err := q.Order("date ASC, id ASC").Find(&tasks).Error; err != nil {
		return nil, wrapErr("list tasks", err)
	}
	return tasks, nil
}

// SaveTask writes every field of an existing task
func (s *Store) SaveTask(task *models.Task) error {
	return wrapErr("update task", s.db.Save(task).Error)
}

// DeleteTask soft-deletes a task
func (s *Store) DeleteTask(id uint) error {
	res := s.db.Delete(&models.Task{}, id)
	if res.Error != nil {
		return wrapErr("delete task", res.Error)
	}
	if res.RowsAffected == 0 {
		return wrapErr("delete task", ErrNotFound)
	}
	return nil
}
