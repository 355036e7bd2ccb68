package db

import (
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/balkashynov/taskflow/internal/models"
)

// rankedMatch orders rows by how well name matches: exact, prefix, suffix, then anywhere in name,
// note or review. Matching is case insensitive.
func rankedMatch(q *gorm.DB, query string) *gorm.DB {
	lower := strings.ToLower(strings.TrimSpace(query))
	contains := "%" + lower + "%"
	return q.
		Where("LOWER(name) LIKE ? OR LOWER(note) LIKE ? OR LOWER(review) LIKE ?", contains, contains, contains).
		Clauses(clause.OrderBy{Expression: clause.Expr{
			SQL: `CASE
				WHEN LOWER(name) = ? THEN 0
				WHEN LOWER(name) LIKE ? THEN 1
				WHEN LOWER(name) LIKE ? THEN 2
				WHEN LOWER(name) LIKE ? THEN 3
				ELSE 4 END, id DESC`,
			Vars:               []interface{}{lower, lower + "%", "%" + lower, contains},
			WithoutParentheses: true,
		}})
}

// SearchPlans finds plans whose name, note or review contains query, best matches first
func (s *Store) SearchPlans(query string, limit int) ([]models.Plan, error) {
	q := rankedMatch(s.db.Model(&models.Plan{}), query)
	if limit > 0 {
		q = q.Limit(limit)
	}
	var plans []models.Plan
	if err := q.Find(&plans).Error; err != nil {
		return nil, wrapErr("search plans", err)
	}
	return plans, nil
}

// SearchTasks finds tasks whose name, note or review contains query, best matches first
func (s *Store) SearchTasks(query string, limit int) ([]models.Task, error) {
	q := rankedMatch(s.db.Model(&models.Task{}), query)
	if limit > 0 {
		q = q.Limit(limit)
	}
	var tasks []models.Task
	if err := q.Find(&tasks).Error; err != nil {
		return nil, wrapErr("search tasks", err)
	}
	return tasks, nil
}
