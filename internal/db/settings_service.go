package db

import (
	"gorm.io/gorm/clause"

	"github.com/balkashynov/taskflow/internal/models"
)

// LoadSettings returns the settings row, creating it with defaults on first use.
// The fixed primary key keeps the table at one row; concurrent first writers collapse into one.
func (s *Store) LoadSettings() (*models.Settings, error) {
	defaults := models.DefaultSettings()
	err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&defaults).Error
	if err != nil {
		return nil, wrapErr("create settings", err)
	}

	var settings models.Settings
	if err := s.db.First(&settings, models.SettingsID).Error; err != nil {
		return nil, wrapErr("get settings", err)
	}
	return &settings, nil
}

// SaveSettings writes the settings row
func (s *Store) SaveSettings(settings *models.Settings) error {
	settings.ID = models.SettingsID
	return wrapErr("update settings", s.db.Save(settings).Error)
}
