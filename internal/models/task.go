package models

import (
	"time"

	"gorm.io/gorm"
)

// Task represents a single day's actionable item
type Task struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name     string     `gorm:"not null" json:"name"`
	Date     time.Time  `gorm:"not null;index" json:"date"`
	Finished bool       `gorm:"default:false" json:"finished"`
	Priority Priority   `gorm:"default:normal" json:"priority"`
	Urgent   bool       `gorm:"default:false" json:"urgent"`
	NotifyAt *time.Time `json:"notify_at"`

	// Weak reference: the plan may be deleted while the task lives on
	PlanID *uint `gorm:"index" json:"plan_id"`

	Note   string `json:"note"`
	Review string `json:"review"`
}
