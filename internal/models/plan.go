package models

import (
	"time"

	"gorm.io/gorm"
)

// PlanStatus is the lifecycle state of a plan
type PlanStatus string

const (
	PlanNotStarted PlanStatus = "not_started"
	PlanInProgress PlanStatus = "in_progress"
	PlanFinished   PlanStatus = "finished"
	PlanAbandoned  PlanStatus = "abandoned"
	PlanDelayed    PlanStatus = "delayed"
)

// PlanStatuses lists every status in display order
var PlanStatuses = []PlanStatus{PlanNotStarted, PlanInProgress, PlanFinished, PlanAbandoned, PlanDelayed}

// DisplayName returns the human readable status
func (s PlanStatus) DisplayName() string {
	switch s {
	case PlanNotStarted:
		return "Not Started"
	case PlanInProgress:
		return "In Progress"
	case PlanFinished:
		return "Finished"
	case PlanAbandoned:
		return "Abandoned"
	case PlanDelayed:
		return "Delayed"
	}
	return string(s)
}

// Closed reports whether the status ends the plan
func (s PlanStatus) Closed() bool {
	return s == PlanFinished || s == PlanAbandoned
}

// Priority is shared by plans and the tasks derived from them
type Priority string

const (
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

// OrNormal maps the empty priority to normal
func (p Priority) OrNormal() Priority {
	if p == "" {
		return PriorityNormal
	}
	return p
}

// Plan represents a long-lived goal with a date range
type Plan struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name           string     `gorm:"not null" json:"name"`
	Status         PlanStatus `gorm:"default:not_started;index" json:"status"`
	Priority       Priority   `gorm:"default:normal" json:"priority"`
	Urgent         bool       `gorm:"default:false" json:"urgent"`
	StartAt        time.Time  `gorm:"not null" json:"start_at"`
	EstimatedEndAt *time.Time `json:"estimated_end_at"`
	EndedAt        *time.Time `json:"ended_at"` // set only while finished or abandoned

	Note   string `json:"note"`
	Review string `json:"review"`
}

// IsActive reports whether the plan can still produce daily tasks
func (p Plan) IsActive() bool {
	return !p.Status.Closed()
}

// Window returns the first and last calendar day the plan covers, as seen from loc.
// A plan without an estimated end covers only its start day.
func (p Plan) Window(loc *time.Location) (time.Time, time.Time) {
	start := StartOfDay(p.StartAt.In(loc))
	end := start
	if p.EstimatedEndAt != nil {
		end = StartOfDay(p.EstimatedEndAt.In(loc))
	}
	return start, end
}

// CoversDay reports whether day falls inside the plan window, both ends inclusive
func (p Plan) CoversDay(day time.Time) bool {
	start, end := p.Window(day.Location())
	day = StartOfDay(day)
	return !day.Before(start) && !day.After(end)
}

// Finish closes the plan as finished
func (p *Plan) Finish(now time.Time) {
	p.Status = PlanFinished
	p.EndedAt = &now
}

// Abandon closes the plan as abandoned
func (p *Plan) Abandon(now time.Time) {
	p.Status = PlanAbandoned
	p.EndedAt = &now
}

// SetInProgress (re)opens the plan
func (p *Plan) SetInProgress() {
	p.Status = PlanInProgress
	p.EndedAt = nil
}

// ToggleFinished flips between finished and in progress
func (p *Plan) ToggleFinished(now time.Time) {
	if p.Status == PlanFinished {
		p.SetInProgress()
		return
	}
	p.Finish(now)
}
