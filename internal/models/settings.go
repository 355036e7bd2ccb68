package models

import "time"

// SettingsID is the fixed primary key of the only settings row
const SettingsID = 1

const (
	DefaultWorkMinutes  = 20
	DefaultRelaxMinutes = 3
	DefaultReviewTime   = "18:15"

	MinWorkMinutes  = 3
	MaxWorkMinutes  = 45
	MinRelaxMinutes = 1
	MaxRelaxMinutes = 5
)

// Settings holds user preferences, one row per store
type Settings struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	UpdatedAt time.Time `json:"updated_at"`

	WorkMinutes        int    `gorm:"not null;default:20" json:"work_minutes"`
	RelaxMinutes       int    `gorm:"not null;default:3" json:"relax_minutes"`
	ReviewNotification bool   `gorm:"default:false" json:"review_notification"`
	ReviewTime         string `json:"review_time"` // HH:MM
}

// DefaultSettings returns the settings used before the user changes anything
func DefaultSettings() Settings {
	return Settings{
		ID:           SettingsID,
		WorkMinutes:  DefaultWorkMinutes,
		RelaxMinutes: DefaultRelaxMinutes,
		ReviewTime:   DefaultReviewTime,
	}
}
