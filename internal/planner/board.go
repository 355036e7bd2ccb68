package planner

import (
	"time"

	"github.com/balkashynov/taskflow/internal/models"
)

// Quadrant is one of the priority / urgency groups on the board
type Quadrant int

const (
	QuadrantHighUrgent Quadrant = iota
	QuadrantHigh
	QuadrantUrgent
	QuadrantOthers
)

// Quadrants lists the quadrants in display order
var Quadrants = []Quadrant{QuadrantHighUrgent, QuadrantHigh, QuadrantUrgent, QuadrantOthers}

func (q Quadrant) String() string {
	switch q {
	case QuadrantHighUrgent:
		return "High Priority & Urgent"
	case QuadrantHigh:
		return "High Priority"
	case QuadrantUrgent:
		return "Urgent"
	default:
		return "Others"
	}
}

// QuadrantOf places a task by its priority and urgency
func QuadrantOf(t models.Task) Quadrant {
	high := t.Priority.OrNormal() == models.PriorityHigh
	switch {
	case high && t.Urgent:
		return QuadrantHighUrgent
	case high:
		return QuadrantHigh
	case t.Urgent:
		return QuadrantUrgent
	default:
		return QuadrantOthers
	}
}

// BoardTask is a task with its resolved plan
type BoardTask struct {
	models.Task
	PlanName string
	Locked   bool // the plan was abandoned, no pomodoro may count toward it
}

// Board is one day's tasks grouped for display
type Board struct {
	Day      time.Time
	Open     map[Quadrant][]BoardTask
	Finished []BoardTask
}

// Len returns the number of tasks on the board
func (b Board) Len() int {
	n := len(b.Finished)
	for _, tasks := range b.Open {
		n += len(tasks)
	}
	return n
}

// TodayBoard groups the tasks of now's day into quadrants plus a finished list
func (s *Service) TodayBoard(now time.Time) (Board, error) {
	tasks, err := s.ListTasksOn(now)
	if err != nil {
		return Board{}, err
	}

	board := Board{Day: models.StartOfDay(now), Open: map[Quadrant][]BoardTask{}}
	plans := map[uint]*models.Plan{}
	for _, t := range tasks {
		bt := BoardTask{Task: t}
		if t.PlanID != nil {
			plan, seen := plans[*t.PlanID]
			if !seen {
				plan, err = s.TaskPlan(&t)
				if err != nil {
					return Board{}, err
				}
				plans[*t.PlanID] = plan
			}
			if plan != nil {
				bt.PlanName = plan.Name
				bt.Locked = plan.Status == models.PlanAbandoned
			}
		}

		if t.Finished {
			board.Finished = append(board.Finished, bt)
			continue
		}
		q := QuadrantOf(t)
		board.Open[q] = append(board.Open[q], bt)
	}
	return board, nil
}
