package models

import "time"

// DayKeyLayout is the calendar key format used for day markers
const DayKeyLayout = "2006-01-02"

// StartOfDay truncates t to midnight in its own location
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DayKey returns the calendar key of t in its own location
func DayKey(t time.Time) string {
	return t.Format(DayKeyLayout)
}

// DayMarker records that daily tasks were generated for a calendar day
type DayMarker struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	Day          string    `gorm:"uniqueIndex;not null" json:"day"`
	Date         time.Time `gorm:"not null" json:"date"`
	CreatedTasks bool      `json:"created_tasks"`
}
