// Package planner holds the plan and task operations behind the CLI.
package planner

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/balkashynov/taskflow/internal/db"
	"github.com/balkashynov/taskflow/internal/models"
)

var (
	// ErrInvalidInput is returned for requests that fail validation
	ErrInvalidInput = errors.New("invalid input")

	// ErrPlanClosed is returned when editing a finished or abandoned plan
	ErrPlanClosed = errors.New("plan is closed")

	// ErrTaskLocked is returned when a task belongs to an abandoned plan
	ErrTaskLocked = errors.New("task is locked")
)

// Service runs plan and task operations against a store
type Service struct {
	store *db.Store
	now   func() time.Time
}

// NewService creates a planner over store
func NewService(store *db.Store) *Service {
	return &Service{store: store, now: time.Now}
}

// WithClock returns a copy of the service that reads the time from now
func (s *Service) WithClock(now func() time.Time) *Service {
	c := *s
	c.now = now
	return &c
}

// ParsePriority converts user input into a priority; anything but "high" is normal
func ParsePriority(priority string) models.Priority {
	switch strings.ToLower(strings.TrimSpace(priority)) {
	case "high", "h", "2":
		return models.PriorityHigh
	default:
		return models.PriorityNormal
	}
}

// ParseID parses a record ID from a command argument
func ParseID(arg string) (uint, error) {
	id, err := strconv.ParseUint(strings.TrimPrefix(strings.TrimSpace(arg), "#"), 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: invalid ID '%s'", ErrInvalidInput, arg)
	}
	return uint(id), nil
}
