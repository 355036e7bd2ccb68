package models

import "time"

// PomodoroStatus is the outcome of a closed pomodoro
type PomodoroStatus string

const (
	PomodoroFinished  PomodoroStatus = "finished"
	PomodoroAbandoned PomodoroStatus = "abandoned"
)

// PomodoroStatuses lists every outcome in display order
var PomodoroStatuses = []PomodoroStatus{PomodoroFinished, PomodoroAbandoned}

// DisplayName returns the human readable outcome
func (s PomodoroStatus) DisplayName() string {
	switch s {
	case PomodoroFinished:
		return "Finished"
	case PomodoroAbandoned:
		return "Abandoned"
	}
	return "Open"
}

// Pomodoro represents one timed focus session
type Pomodoro struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	TaskID           *uint          `gorm:"index" json:"task_id"` // weak reference
	StartedAt        time.Time      `gorm:"not null;index" json:"started_at"`
	EndedAt          *time.Time     `gorm:"index" json:"ended_at"`
	Status           PomodoroStatus `json:"status"` // empty while open
	EstimatedMinutes int            `gorm:"not null" json:"estimated_minutes"`
	FinishedMinutes  *int           `json:"finished_minutes"`
}

// Open reports whether the pomodoro has not been finalized yet
func (p Pomodoro) Open() bool {
	return p.EndedAt == nil
}
