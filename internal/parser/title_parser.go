package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/balkashynov/taskflow/internal/models"
)

var (
	priorityRegex = regexp.MustCompile(`(^|\s)\+([a-zA-Z0-9]+)`)
	urgentRegex   = regexp.MustCompile(`(^|\s)!(urgent|u)?(\s|$)`)
	planRegex     = regexp.MustCompile(`(^|\s)plan:#?(\d+)`)
)

// ParsedTitle represents a plan or task parsed from natural language
type ParsedTitle struct {
	Name     string
	Priority models.Priority
	Urgent   bool
	Start    *time.Time // start:/on: for plans, on: for a task's day
	End      *time.Time // end:/until: for plans, ignored for tasks
	PlanID   *uint      // plan:ID links a task to a plan
	Errors   []string
}

// ParseTitle extracts metadata from a title using natural syntax, relative to now.
// Syntax: "Ship v2 +high !urgent start:15/01/2026 end:3days plan:4"
func ParseTitle(input string, now time.Time) ParsedTitle {
	result := ParsedTitle{Errors: []string{}}

	// Extract priority (+high, +normal)
	if m := priorityRegex.FindStringSubmatch(input); len(m) > 2 {
		switch strings.ToLower(m[2]) {
		case "high", "h":
			result.Priority = models.PriorityHigh
		case "normal", "n":
			result.Priority = models.PriorityNormal
		default:
			result.Errors = append(result.Errors, "Invalid priority '"+m[2]+"'. Use: high or normal")
		}
		input = priorityRegex.ReplaceAllString(input, " ")
	}

	// Extract urgency (!urgent, !u or a lone !)
	if urgentRegex.MatchString(input) {
		result.Urgent = true
		input = urgentRegex.ReplaceAllString(input, " ")
	}

	// Extract plan link (plan:4)
	if m := planRegex.FindStringSubmatch(input); len(m) > 2 {
		if id, err := strconv.ParseUint(m[2], 10, 32); err == nil && id > 0 {
			v := uint(id)
			result.PlanID = &v
		} else {
			result.Errors = append(result.Errors, "Invalid plan ID '"+m[2]+"'")
		}
		input = planRegex.ReplaceAllString(input, " ")
	}

	// Extract dates (start:tomorrow, end:2weeks, ...)
	input = extractDate(input, now, []string{"start", "on", "from"}, &result.Start, &result.Errors)
	input = extractDate(input, now, []string{"end", "until", "due"}, &result.End, &result.Errors)

	result.Name = strings.TrimSpace(strings.Join(strings.Fields(input), " "))
	return result
}

func extractDate(input string, now time.Time, keys []string, dst **time.Time, errs *[]string) string {
	re := regexp.MustCompile(`(^|\s)(` + strings.Join(keys, "|") + `):(\d+\s*(?:days?|weeks?|d|w)\b|[^\s]+)`)
	m := re.FindStringSubmatch(input)
	if len(m) < 4 {
		return input
	}
	d, err := ParseDate(m[3], now)
	if err != nil {
		*errs = append(*errs, "Invalid date '"+m[3]+"': "+err.Error())
	} else {
		*dst = d
	}
	return re.ReplaceAllString(input, " ")
}
