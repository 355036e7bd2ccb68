// Package stats counts pomodoros, tasks and plans over a time range.
package stats

import (
	"fmt"
	"strings"
	"time"

	"github.com/balkashynov/taskflow/internal/db"
	"github.com/balkashynov/taskflow/internal/models"
)

// Range is the period a report covers
type Range string

const (
	RangeToday Range = "today"
	RangeWeek  Range = "week"
	RangeMonth Range = "month"
	RangeTotal Range = "total"
)

// Ranges lists every range in display order
var Ranges = []Range{RangeToday, RangeWeek, RangeMonth, RangeTotal}

// ParseRange accepts a range name; empty means today
func ParseRange(s string) (Range, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "today", "day":
		return RangeToday, nil
	case "week", "this-week":
		return RangeWeek, nil
	case "month", "this-month":
		return RangeMonth, nil
	case "total", "all":
		return RangeTotal, nil
	}
	return "", fmt.Errorf("unknown range '%s' (use today, week, month or total)", s)
}

// Title returns the heading for the range
func (r Range) Title() string {
	switch r {
	case RangeWeek:
		return "This Week"
	case RangeMonth:
		return "This Month"
	case RangeTotal:
		return "Total"
	default:
		return "Today"
	}
}

// Bounds returns the half-open interval [from, to) around now.
// Both are nil for RangeTotal. Weeks start on Monday.
func (r Range) Bounds(now time.Time) (from, to *time.Time) {
	today := models.StartOfDay(now)
	var start, end time.Time
	switch r {
	case RangeTotal:
		return nil, nil
	case RangeWeek:
		weekday := int(today.Weekday())
		if weekday == 0 {
			weekday = 7
		}
		start = today.AddDate(0, 0, 1-weekday)
		end = start.AddDate(0, 0, 7)
	case RangeMonth:
		start = time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
		end = start.AddDate(0, 1, 0)
	default:
		start = today
		end = today.AddDate(0, 0, 1)
	}
	return &start, &end
}

// Kind tells a bucket's color family
type Kind string

const (
	KindGood    Kind = "good"
	KindBad     Kind = "bad"
	KindActive  Kind = "active"
	KindIdle    Kind = "idle"
	KindWarning Kind = "warning"
)

// Bucket is one labeled count in a report
type Bucket struct {
	Label string `json:"label"`
	Count int    `json:"count"`
	Kind  Kind   `json:"kind"`
}

// Report holds the counts for one range
type Report struct {
	Range        Range      `json:"range"`
	From         *time.Time `json:"from,omitempty"`
	To           *time.Time `json:"to,omitempty"`
	Pomodoros    []Bucket   `json:"pomodoros"` // closed pomodoros by outcome, by start time
	Tasks        []Bucket   `json:"tasks"`     // finished and unfinished, by task date
	Plans        []Bucket   `json:"plans"`     // by status, by plan start
	FocusMinutes int        `json:"focus_minutes"`
}

// Empty reports whether nothing was counted
func (r Report) Empty() bool {
	return len(r.Pomodoros) == 0 && len(r.Tasks) == 0 && len(r.Plans) == 0
}

// Compute builds the report for rng as seen at now
func Compute(store *db.Store, rng Range, now time.Time) (Report, error) {
	from, to := rng.Bounds(now)
	report := Report{Range: rng, From: from, To: to}

	pomodoros, err := store.ListPomodoros(db.PomodoroFilter{From: from, To: to, Closed: true})
	if err != nil {
		return Report{}, err
	}
	tasks, err := store.ListTasks(db.TaskFilter{From: from, To: to})
	if err != nil {
		return Report{}, err
	}
	plans, err := store.ListPlans(db.PlanFilter{From: from, To: to})
	if err != nil {
		return Report{}, err
	}

	report.Pomodoros, report.FocusMinutes = pomodoroBuckets(pomodoros)
	report.Tasks = taskBuckets(tasks)
	report.Plans = planBuckets(plans)
	return report, nil
}

func pomodoroBuckets(pomodoros []models.Pomodoro) ([]Bucket, int) {
	counts := map[models.PomodoroStatus]int{}
	minutes := 0
	for _, p := range pomodoros {
		counts[p.Status]++
		if p.FinishedMinutes != nil {
			minutes += *p.FinishedMinutes
		}
	}
	var buckets []Bucket
	for _, status := range models.PomodoroStatuses {
		kind := KindGood
		if status == models.PomodoroAbandoned {
			kind = KindBad
		}
		buckets = appendNonZero(buckets, status.DisplayName(), counts[status], kind)
	}
	return buckets, minutes
}

func taskBuckets(tasks []models.Task) []Bucket {
	finished := 0
	for _, t := range tasks {
		if t.Finished {
			finished++
		}
	}
	var buckets []Bucket
	buckets = appendNonZero(buckets, "Finished", finished, KindGood)
	buckets = appendNonZero(buckets, "Unfinished", len(tasks)-finished, KindActive)
	return buckets
}

func planBuckets(plans []models.Plan) []Bucket {
	counts := map[models.PlanStatus]int{}
	for _, p := range plans {
		counts[p.Status]++
	}
	var buckets []Bucket
	for _, status := range models.PlanStatuses {
		buckets = appendNonZero(buckets, status.DisplayName(), counts[status], planKind(status))
	}
	return buckets
}

func planKind(s models.PlanStatus) Kind {
	switch s {
	case models.PlanInProgress:
		return KindActive
	case models.PlanFinished:
		return KindGood
	case models.PlanAbandoned:
		return KindBad
	case models.PlanDelayed:
		return KindWarning
	default:
		return KindIdle
	}
}

func appendNonZero(buckets []Bucket, label string, count int, kind Kind) []Bucket {
	if count == 0 {
		return buckets
	}
	return append(buckets, Bucket{Label: label, Count: count, Kind: kind})
}
