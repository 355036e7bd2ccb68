package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/balkashynov/taskflow/internal/models"
	"github.com/balkashynov/taskflow/internal/parser"
	"github.com/balkashynov/taskflow/internal/planner"
	"github.com/balkashynov/taskflow/internal/tui"
)

// parseIDArg parses "12" or "#12"
func parseIDArg(arg, what string) (uint, error) {
	id, err := planner.ParseID(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid %s ID '%s'", what, arg)
	}
	return id, nil
}

// formatDuration formats a duration in a human-readable way
func formatDuration(d time.Duration) string {
	if d.Hours() >= 1 {
		return fmt.Sprintf("%.1fh", d.Hours())
	} else if d.Minutes() >= 1 {
		return fmt.Sprintf("%.0fm", d.Minutes())
	} else {
		return fmt.Sprintf("%.0fs", d.Seconds())
	}
}

// formatMinutes renders focus time as "1h 05m" or "25m"
func formatMinutes(minutes int) string {
	if minutes >= 60 {
		return fmt.Sprintf("%dh %02dm", minutes/60, minutes%60)
	}
	return fmt.Sprintf("%dm", minutes)
}

// truncate shortens s to max runes, ending with "..."
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}

// priorityFlags renders the priority and urgency markers shown next to names
func priorityFlags(p models.Priority, urgent bool) string {
	var parts []string
	if p.OrNormal() == models.PriorityHigh {
		parts = append(parts, "+high")
	}
	if urgent {
		parts = append(parts, "!urgent")
	}
	return strings.Join(parts, " ")
}

// planWindow renders "12/03/2025 → 15/03/2025", or a single day
func planWindow(p models.Plan) string {
	start, end := p.Window(time.Local)
	if start.Equal(end) {
		return start.Format("02/01/2006")
	}
	return start.Format("02/01/2006") + " → " + end.Format("02/01/2006")
}

// planStatusIcon mirrors the status colors of the stats chart
func planStatusIcon(s models.PlanStatus) string {
	switch s {
	case models.PlanNotStarted:
		return "○"
	case models.PlanInProgress:
		return "▶"
	case models.PlanFinished:
		return "✅"
	case models.PlanAbandoned:
		return "✖"
	case models.PlanDelayed:
		return "⏳"
	}
	return "?"
}

// formatPlanLine renders one plan row of "plan ls"
func formatPlanLine(p models.Plan) string {
	line := fmt.Sprintf("%s #%-4d %-32s %-11s %s",
		planStatusIcon(p.Status), p.ID, truncate(p.Name, 32), p.Status.DisplayName(), planWindow(p))
	if flags := priorityFlags(p.Priority, p.Urgent); flags != "" {
		line += "  " + flags
	}
	return line
}

// formatTaskLine renders one task row with its day relative to now
func formatTaskLine(t models.Task, current time.Time) string {
	line := fmt.Sprintf("%s #%-4d %-32s %s",
		tui.TaskIcon(t), t.ID, truncate(t.Name, 32), parser.FormatDay(t.Date, current))
	if flags := priorityFlags(t.Priority, t.Urgent); flags != "" {
		line += "  " + flags
	}
	return line
}

// optionalTime renders a nullable timestamp
func optionalTime(t *time.Time, layout string) string {
	if t == nil {
		return "-"
	}
	return t.Local().Format(layout)
}
