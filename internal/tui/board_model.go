package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/balkashynov/taskflow/internal/models"
	"github.com/balkashynov/taskflow/internal/planner"
)

// BoardActions performs the writes the board screen offers
type BoardActions interface {
	ToggleTaskFinished(id uint) (*models.Task, error)
}

type boardRow struct {
	section string
	task    planner.BoardTask
}

// BoardModel is the interactive view of today's tasks
type BoardModel struct {
	width  int
	height int

	rows     []boardRow
	selected int
	actions  BoardActions

	// StartTaskID is set when the user picked a task to start a pomodoro on
	StartTaskID *uint

	message string
	help    help.Model
}

// NewBoardModel flattens board into rows in display order
func NewBoardModel(board planner.Board, actions BoardActions) BoardModel {
	var rows []boardRow
	for _, q := range planner.Quadrants {
		for _, t := range board.Open[q] {
			rows = append(rows, boardRow{section: q.String(), task: t})
		}
	}
	for _, t := range board.Finished {
		rows = append(rows, boardRow{section: "Finished Tasks", task: t})
	}
	return BoardModel{rows: rows, actions: actions, help: help.New()}
}

// Init initializes the model
func (m BoardModel) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m BoardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, boardKeys.Quit):
			return m, tea.Quit

		case key.Matches(msg, boardKeys.Up):
			if m.selected > 0 {
				m.selected--
			}

		case key.Matches(msg, boardKeys.Down):
			if m.selected < len(m.rows)-1 {
				m.selected++
			}

		case key.Matches(msg, boardKeys.Toggle):
			if len(m.rows) == 0 {
				return m, nil
			}
			row := &m.rows[m.selected]
			task, err := m.actions.ToggleTaskFinished(row.task.ID)
			if err != nil {
				m.message = fmt.Sprintf("Error: %v", err)
				return m, nil
			}
			row.task.Task = *task
			m.message = fmt.Sprintf("Task #%d %s", task.ID, map[bool]string{true: "done", false: "reopened"}[task.Finished])

		case key.Matches(msg, boardKeys.Pomodoro):
			if len(m.rows) == 0 {
				return m, nil
			}
			t := m.rows[m.selected].task
			if t.Finished || t.Locked {
				m.message = "That task cannot take a pomodoro."
				return m, nil
			}
			id := t.ID
			m.StartTaskID = &id
			return m, tea.Quit
		}
	}
	return m, nil
}

// View renders the board
func (m BoardModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var b strings.Builder
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorAccentBright))
	b.WriteString(headerStyle.Render("📋 Today"))
	b.WriteString("\n")

	if len(m.rows) == 0 {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorSecondaryText)).
			Italic(true).
			Render("No tasks today"))
	}

	section := ""
	for i, row := range m.rows {
		if row.section != section {
			section = row.section
			b.WriteString("\n")
			b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorSecondaryText)).Render(section))
			b.WriteString("\n")
		}
		line := renderTaskLine(row.task, m.width-8)
		if i == m.selected {
			b.WriteString(lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color(ColorAccentMain)).
				Padding(0, 1).
				Render(line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}

	if m.message != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAccentBright)).Render(m.message))
		b.WriteString("\n")
	}

	panel := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorBorder)).
		Width(m.width - 2).
		Render(b.String())

	return lipgloss.JoinVertical(lipgloss.Left, panel, m.help.View(boardKeys))
}

// renderTaskLine renders one task as icon, id, name and plan
func renderTaskLine(t planner.BoardTask, width int) string {
	name := t.Name
	if width > 10 && len(name) > width-10 {
		name = name[:width-13] + "..."
	}

	color := ColorPrimaryText
	switch {
	case t.Finished, t.Locked:
		color = ColorDisabledText
	case t.Urgent:
		color = ColorWarning
	}

	line := fmt.Sprintf("%s #%-4d %s", TaskIcon(t.Task), t.ID, lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(name))
	if t.PlanName != "" {
		line += lipgloss.NewStyle().Foreground(lipgloss.Color(ColorSecondaryText)).Render("  · " + t.PlanName)
	}
	if t.Locked {
		line += lipgloss.NewStyle().Foreground(lipgloss.Color(ColorDisabledText)).Render("  (plan abandoned)")
	}
	return line
}

// TaskIcon picks the leading icon for a task
func TaskIcon(t models.Task) string {
	high := t.Priority.OrNormal() == models.PriorityHigh
	switch {
	case t.Finished:
		return "✅"
	case high && t.Urgent:
		return "🔥"
	case high:
		return "⭐"
	case t.Urgent:
		return "⏰"
	default:
		return "○"
	}
}

// RunBoardTUI shows the board and returns the task picked for a pomodoro, if any
func RunBoardTUI(board planner.Board, actions BoardActions) (*uint, error) {
	p := tea.NewProgram(NewBoardModel(board, actions), tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return nil, err
	}
	return finalModel.(BoardModel).StartTaskID, nil
}
