// Package settings reads and validates the user's timer and reminder preferences.
package settings

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/balkashynov/taskflow/internal/models"
	"github.com/balkashynov/taskflow/internal/pomodoro"
)

// ErrInvalid is returned for values outside the allowed ranges
var ErrInvalid = errors.New("invalid setting")

// Store is the persistence the service needs
type Store interface {
	LoadSettings() (*models.Settings, error)
	SaveSettings(settings *models.Settings) error
}

// Patch holds the fields to change; nil fields are left alone
type Patch struct {
	WorkMinutes        *int
	RelaxMinutes       *int
	ReviewNotification *bool
	ReviewTime         *string
}

// Service reads and updates the settings record
type Service struct {
	store Store
}

// NewService creates a settings service over store
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Current returns the stored settings, creating the defaults on first use
func (s *Service) Current() (*models.Settings, error) {
	return s.store.LoadSettings()
}

// Update validates every field of patch and saves them together.
// Nothing is written when any field is rejected.
func (s *Service) Update(patch Patch) (*models.Settings, error) {
	current, err := s.store.LoadSettings()
	if err != nil {
		return nil, err
	}
	next := *current

	if patch.WorkMinutes != nil {
		if err := checkRange("work minutes", *patch.WorkMinutes, models.MinWorkMinutes, models.MaxWorkMinutes); err != nil {
			return nil, err
		}
		next.WorkMinutes = *patch.WorkMinutes
	}
	if patch.RelaxMinutes != nil {
		if err := checkRange("relax minutes", *patch.RelaxMinutes, models.MinRelaxMinutes, models.MaxRelaxMinutes); err != nil {
			return nil, err
		}
		next.RelaxMinutes = *patch.RelaxMinutes
	}
	if patch.ReviewNotification != nil {
		next.ReviewNotification = *patch.ReviewNotification
	}
	if patch.ReviewTime != nil {
		h, m, err := ParseClock(*patch.ReviewTime)
		if err != nil {
			return nil, err
		}
		next.ReviewTime = fmt.Sprintf("%02d:%02d", h, m)
	}

	if err := s.store.SaveSettings(&next); err != nil {
		return nil, err
	}
	return &next, nil
}

// Keys lists the names accepted by Set
var Keys = []string{"work", "relax", "review", "review-time"}

// Set changes one setting from its command line form, e.g. Set("work", "25")
func (s *Service) Set(key, value string) (*models.Settings, error) {
	value = strings.TrimSpace(value)
	var patch Patch
	switch strings.ToLower(key) {
	case "work", "work-minutes":
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("%w: work minutes must be a number, got %q", ErrInvalid, value)
		}
		patch.WorkMinutes = &n
	case "relax", "relax-minutes":
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("%w: relax minutes must be a number, got %q", ErrInvalid, value)
		}
		patch.RelaxMinutes = &n
	case "review", "review-notification":
		on, err := parseSwitch(value)
		if err != nil {
			return nil, err
		}
		patch.ReviewNotification = &on
	case "review-time":
		patch.ReviewTime = &value
	default:
		keys := append([]string(nil), Keys...)
		sort.Strings(keys)
		return nil, fmt.Errorf("%w: unknown key %q (valid: %s)", ErrInvalid, key, strings.Join(keys, ", "))
	}
	return s.Update(patch)
}

// Durations implements pomodoro.SettingsSource
func (s *Service) Durations() (pomodoro.Durations, error) {
	current, err := s.store.LoadSettings()
	if err != nil {
		return pomodoro.Durations{}, err
	}
	return pomodoro.Durations{
		WorkMinutes:  current.WorkMinutes,
		RelaxMinutes: current.RelaxMinutes,
	}, nil
}

// ReviewDue reports whether the daily review reminder is switched on and its time has passed today
func (s *Service) ReviewDue(now time.Time) (bool, error) {
	current, err := s.store.LoadSettings()
	if err != nil {
		return false, err
	}
	return ReviewDue(current, now), nil
}

// ReviewDue reports whether settings ask for a review at or before now's time of day
func ReviewDue(settings *models.Settings, now time.Time) bool {
	if settings == nil || !settings.ReviewNotification {
		return false
	}
	h, m, err := ParseClock(settings.ReviewTime)
	if err != nil {
		return false
	}
	due := time.Date(now.Year(), now.Month(), now.Day(), h, m, 0, 0, now.Location())
	return !now.Before(due)
}

// ParseClock parses a 24 hour "HH:MM" time of day
func ParseClock(value string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", strings.TrimSpace(value))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: review time must be HH:MM, got %q", ErrInvalid, value)
	}
	return t.Hour(), t.Minute(), nil
}

func checkRange(name string, v, lo, hi int) error {
	if v < lo || v > hi {
		return fmt.Errorf("%w: %s must be between %d and %d, got %d", ErrInvalid, name, lo, hi, v)
	}
	return nil
}

func parseSwitch(value string) (bool, error) {
	switch strings.ToLower(value) {
	case "on", "true", "yes", "1":
		return true, nil
	case "off", "false", "no", "0":
		return false, nil
	}
	return false, fmt.Errorf("%w: expected on or off, got %q", ErrInvalid, value)
}
