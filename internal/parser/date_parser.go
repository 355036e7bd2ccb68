package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/balkashynov/taskflow/internal/models"
)

var (
	dateRegex     = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
	relativeRegex = regexp.MustCompile(`^(\d+)\s*(day|days|d|week|weeks|w)$`)
)

// ParseDate parses a calendar day relative to now and returns its start in now's location.
// Supported formats:
// - dd/mm/yyyy (e.g., "15/12/2025")
// - today, tomorrow
// - X days (e.g., "3 days", "3days", "1d")
// - X weeks (e.g., "2 weeks", "2w")
func ParseDate(input string, now time.Time) (*time.Time, error) {
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" {
		return nil, nil
	}

	today := models.StartOfDay(now)
	switch input {
	case "today", "now":
		return &today, nil
	case "tomorrow", "tmr":
		d := today.AddDate(0, 0, 1)
		return &d, nil
	}

	if d, err := parseDateFormat(input, now.Location()); err == nil {
		return d, nil
	} else if dateRegex.MatchString(input) {
		return nil, err
	}

	if d, err := parseRelativeDay(input, today); err == nil {
		return d, nil
	} else if relativeRegex.MatchString(input) {
		return nil, err
	}

	return nil, fmt.Errorf("invalid date format. Use: dd/mm/yyyy, today, tomorrow, X days, or X weeks")
}

// parseDateFormat parses dd/mm/yyyy
func parseDateFormat(input string, loc *time.Location) (*time.Time, error) {
	matches := dateRegex.FindStringSubmatch(input)
	if len(matches) != 4 {
		return nil, fmt.Errorf("invalid date format")
	}

	day, _ := strconv.Atoi(matches[1])
	month, _ := strconv.Atoi(matches[2])
	year, _ := strconv.Atoi(matches[3])

	if day < 1 || day > 31 {
		return nil, fmt.Errorf("day must be between 1 and 31")
	}
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("month must be between 1 and 12")
	}
	if year < 2000 || year > 2100 {
		return nil, fmt.Errorf("year must be between 2000 and 2100")
	}

	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)

	// Catches 31/02 and friends
	if date.Day() != day || date.Month() != time.Month(month) {
		return nil, fmt.Errorf("invalid date %s", input)
	}
	return &date, nil
}

// parseRelativeDay parses "3 days", "2 weeks" and short forms counted from today
func parseRelativeDay(input string, today time.Time) (*time.Time, error) {
	matches := relativeRegex.FindStringSubmatch(input)
	if len(matches) != 3 {
		return nil, fmt.Errorf("invalid relative date format")
	}
	amount, err := strconv.Atoi(matches[1])
	if err != nil {
		return nil, fmt.Errorf("invalid number")
	}

	switch matches[2] {
	case "day", "days", "d":
		if amount > 365 {
			return nil, fmt.Errorf("days must be between 0 and 365")
		}
		d := today.AddDate(0, 0, amount)
		return &d, nil
	default:
		if amount > 52 {
			return nil, fmt.Errorf("weeks must be between 0 and 52")
		}
		d := today.AddDate(0, 0, amount*7)
		return &d, nil
	}
}

// FormatDay formats a day for display, relative to now where that reads better
func FormatDay(day time.Time, now time.Time) string {
	d := day.In(now.Location())
	// Calendar difference, immune to DST shifts
	a := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	b := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	daysDiff := int(b.Sub(a).Hours() / 24)

	dateStr := d.Format("02/01/2006")
	switch {
	case daysDiff == 0:
		return fmt.Sprintf("today (%s)", dateStr)
	case daysDiff == 1:
		return fmt.Sprintf("tomorrow (%s)", dateStr)
	case daysDiff == -1:
		return fmt.Sprintf("yesterday (%s)", dateStr)
	case daysDiff > 1 && daysDiff <= 7:
		return fmt.Sprintf("%s (in %d days)", dateStr, daysDiff)
	default:
		return dateStr
	}
}
