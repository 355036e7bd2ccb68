package db

import "github.com/balkashynov/taskflow/internal/models"

// FindDayMarker returns the marker for a calendar day key, or nil
func (s *Store) FindDayMarker(day string) (*models.DayMarker, error) {
	var list []models.DayMarker
	if err := s.db.Where("day = ?", day).Limit(1).Find(&list).Error; err != nil {
		return nil, wrapErr("find day marker", err)
	}
	if len(list) == 0 {
		return nil, nil
	}
	return &list[0], nil
}

// CreateDayMarker inserts a marker. A second marker for the same day fails with ErrConstraintViolation.
func (s *Store) CreateDayMarker(m *models.DayMarker) error {
	return wrapErr("create day marker", s.db.Create(m).Error)
}

// ListDayMarkers returns every marker, oldest first
func (s *Store) ListDayMarkers() ([]models.DayMarker, error) {
	var list []models.DayMarker
	if err := s.db.Order("day ASC").Find(&list).Error; err != nil {
		return nil, wrapErr("list day markers", err)
	}
	return list, nil
}
