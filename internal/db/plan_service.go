package db

import (
	"time"

	"github.com/balkashynov/taskflow/internal/models"
)

// PlanFilter narrows ListPlans
type PlanFilter struct {
	Statuses []models.PlanStatus
	From     *time.Time // StartAt >= From
	To       *time.Time // StartAt < To
}

// CreatePlan inserts a new plan
func (s *Store) CreatePlan(plan *models.Plan) error {
	return wrapErr("create plan", s.db.Create(plan).Error)
}

// GetPlan retrieves a plan by ID
func (s *Store) GetPlan(id uint) (*models.Plan, error) {
	var plan models.Plan
	if err := s.db.First(&plan, id).Error; err != nil {
		return nil, wrapErr("get plan", err)
	}
	return &plan, nil
}

// ListPlans returns plans ordered by start date
func (s *Store) ListPlans(f PlanFilter) ([]models.Plan, error) {
	q := s.db.Model(&models.Plan{})
	if len(f.Statuses) > 0 {
		q = q.Where("status IN ?", f.Statuses)
	}
	if f.From != nil {
		q = q.Where("start_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("start_at < ?", *f.To)
	}

	var plans []models.Plan
	if err := q.Order("start_at ASC, id ASC").Find(&plans).Error; err != nil {
		return nil, wrapErr("list plans", err)
	}
	return plans, nil
}

// SavePlan writes every field of an existing plan
func (s *Store) SavePlan(plan *models.Plan) error {
	return wrapErr("update plan", s.db.Save(plan).Error)
}

// DeletePlan soft-deletes a plan. Tasks keep their PlanID and simply stop resolving it.
func (s *Store) DeletePlan(id uint) error {
	res := s.db.Delete(&models.Plan{}, id)
	if res.Error != nil {
		return wrapErr("delete plan", res.Error)
	}
	if res.RowsAffected == 0 {
		return wrapErr("delete plan", ErrNotFound)
	}
	return nil
}
