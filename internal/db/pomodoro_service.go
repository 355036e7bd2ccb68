package db

import (
	"time"

	"github.com/balkashynov/taskflow/internal/models"
)

// PomodoroFilter narrows ListPomodoros
type PomodoroFilter struct {
	From   *time.Time // StartedAt >= From
	To     *time.Time // StartedAt < To
	TaskID *uint
	Closed bool // only finished or abandoned records
	Limit  int
}

// CreatePomodoro inserts a new open pomodoro. It refuses while another record is still open.
func (s *Store) CreatePomodoro(p *models.Pomodoro) error {
	return s.Transaction(func(tx *Store) error {
		open, err := tx.OpenPomodoro()
		if err != nil {
			return err
		}
		if open != nil {
			return wrapErr("create pomodoro", ErrOpenPomodoro)
		}
		return wrapErr("create pomodoro", tx.db.Create(p).Error)
	})
}

// GetPomodoro retrieves a pomodoro by ID
func (s *Store) GetPomodoro(id uint) (*models.Pomodoro, error) {
	var p models.Pomodoro
	if err := s.db.First(&p, id).Error; err != nil {
		return nil, wrapErr("get pomodoro", err)
	}
	return &p, nil
}

// OpenPomodoro returns the pomodoro that has not been finalized, if any
func (s *Store) OpenPomodoro() (*models.Pomodoro, error) {
	var list []models.Pomodoro
	err := s.db.Where("ended_at IS NULL").Order("id DESC").Limit(1).Find(&list).Error
	if err != nil {
		return nil, wrapErr("get open pomodoro", err)
	}
	if len(list) == 0 {
		return nil, nil // No open pomodoro is not an error
	}
	return &list[0], nil
}

// SavePomodoro writes every field of an existing pomodoro
func (s *Store) SavePomodoro(p *models.Pomodoro) error {
	return wrapErr("update pomodoro", s.db.Save(p).Error)
}

// UpdatePomodoroTask relinks a pomodoro to another task (or none)
func (s *Store) UpdatePomodoroTask(id uint, taskID *uint) error {
	err := s.db.Model(&models.Pomodoro{}).Where("id = ?", id).Update("task_id", taskID).Error
	return wrapErr("update pomodoro task", err)
}

// ListPomodoros returns pomodoros, newest first
func (s *Store) ListPomodoros(f PomodoroFilter) ([]models.Pomodoro, error) {
	q := s.db.Model(&models.Pomodoro{})
	if f.From != nil {
		q = q.Where("started_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("started_at < ?", *f.To)
	}
	if f.TaskID != nil {
		q = q.Where("task_id = ?", *f.TaskID)
	}
	if f.Closed {
		q = q.Where("ended_at IS NOT NULL")
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var list []models.Pomodoro
	if err := q.Order("started_at DESC, id DESC").Find(&list).Error; err != nil {
		return nil, wrapErr("list pomodoros", err)
	}
	return list, nil
}
