package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/balkashynov/taskflow/internal/pomodoro"
)

const tickInterval = 100 * time.Millisecond

// TaskChoice is a task the running session can be switched to
type TaskChoice struct {
	ID   uint
	Name string
}

// TimerOutcome tells the caller how the timer screen ended
type TimerOutcome struct {
	State     pomodoro.State
	Completed int // work sessions finished while the screen was open
	LeftOpen  bool
	Err       error
}

// TimerModel drives a pomodoro controller from the terminal
type TimerModel struct {
	width  int
	height int

	ctrl    *pomodoro.Controller
	choices []TaskChoice
	choice  int // index into choices, -1 for no task

	lastTick  time.Time
	completed int
	message   string
	err       error

	progress progress.Model
	help     help.Model

	quitting bool
}

// timerTickMsg is sent every tickInterval with the wall clock time
type timerTickMsg time.Time

// NewTimerModel creates the timer screen for an already started (or resumed) controller
func NewTimerModel(ctrl *pomodoro.Controller, choices []TaskChoice) TimerModel {
	m := TimerModel{
		ctrl:     ctrl,
		choices:  choices,
		choice:   -1,
		lastTick: time.Now(),
		progress: progress.New(progress.WithGradient(ColorAccentMain, ColorAccentBright)),
		help:     help.New(),
	}
	if id := ctrl.State().TaskID; id != nil {
		for i, c := range choices {
			if c.ID == *id {
				m.choice = i
			}
		}
	}
	return m
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return timerTickMsg(t)
	})
}

// Init starts the ticker
func (m TimerModel) Init() tea.Cmd {
	return tick()
}

// Update handles messages
func (m TimerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case timerTickMsg:
		now := time.Time(msg)
		delta := now.Sub(m.lastTick).Seconds()
		m.lastTick = now

		ev, err := m.ctrl.Tick(delta)
		m = m.handleEvent(ev, err)
		if m.quitting {
			return m, nil
		}
		return m, tick()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.progress.Width = min(msg.Width-8, 60)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m TimerModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	phase := m.ctrl.State().Phase

	switch {
	case key.Matches(msg, timerKeys.Quit):
		switch phase {
		case pomodoro.PhaseFinalizing:
			// The unsaved result only lives here, the store still holds the open record
			ev, err := m.ctrl.RetryFinalize()
			m = m.handleEvent(ev, err)
			if m.ctrl.State().Phase == pomodoro.PhaseFinalizing {
				m.message = "Still saving the last pomodoro. Press q to retry."
				return m, nil
			}
		case pomodoro.PhasePaused:
			// Only a running session can be picked up again from its record
			m.message = "Resume (space) or abandon (x) before quitting a paused pomodoro."
			return m, nil
		}
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, timerKeys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, timerKeys.Pause):
		var err error
		if phase == pomodoro.PhasePaused {
			err = m.ctrl.Resume()
			m.lastTick = time.Now()
		} else {
			err = m.ctrl.Pause()
		}
		m = m.handleEvent(pomodoro.EventNone, err)

	case key.Matches(msg, timerKeys.Finish):
		ev, err := m.ctrl.FinishNow()
		m = m.handleEvent(ev, err)

	case key.Matches(msg, timerKeys.Abandon):
		ev, err := m.ctrl.Abandon()
		m = m.handleEvent(ev, err)

	case key.Matches(msg, timerKeys.Relax):
		err := m.ctrl.Relax()
		m.lastTick = time.Now()
		m = m.handleEvent(pomodoro.EventNone, err)

	case key.Matches(msg, timerKeys.Skip):
		m = m.handleEvent(pomodoro.EventNone, m.ctrl.Skip())
		if m.err == nil {
			m.message = "Relax skipped. Press enter for the next pomodoro."
		}

	case key.Matches(msg, timerKeys.Again):
		if phase != pomodoro.PhaseIdle {
			return m, nil
		}
		_, err := m.ctrl.StartWithSettings(m.selectedTask())
		m.lastTick = time.Now()
		m = m.handleEvent(pomodoro.EventNone, err)
		if err == nil {
			m.message = ""
		}

	case key.Matches(msg, timerKeys.Task):
		if len(m.choices) == 0 {
			return m, nil
		}
		next := m.choice + 1
		if next >= len(m.choices) {
			next = -1
		}
		var id *uint
		if next >= 0 {
			id = &m.choices[next].ID
		}
		if phase == pomodoro.PhaseIdle {
			m.choice = next
			return m, nil
		}
		if err := m.ctrl.ReassignTask(id); err != nil {
			m = m.handleEvent(pomodoro.EventNone, err)
			return m, nil
		}
		m.choice = next
	}
	return m, nil
}

func (m TimerModel) handleEvent(ev pomodoro.Event, err error) TimerModel {
	if err != nil {
		if errors.Is(err, pomodoro.ErrInvalidState) {
			m.message = "Not available right now."
			return m
		}
		m.err = err
		return m
	}
	m.err = nil
	switch ev {
	case pomodoro.EventWorkCompleted:
		m.completed++
		m.message = "Work session done! r to relax, s to skip."
	case pomodoro.EventRelaxCompleted:
		m.message = "Relax is over. Press enter for the next pomodoro."
	case pomodoro.EventAbandoned:
		m.message = "Pomodoro abandoned."
	}
	return m
}

func (m TimerModel) selectedTask() *uint {
	if m.choice < 0 || m.choice >= len(m.choices) {
		return nil
	}
	id := m.choices[m.choice].ID
	return &id
}

// Outcome summarizes the screen after the program exits
func (m TimerModel) Outcome() TimerOutcome {
	s := m.ctrl.State()
	return TimerOutcome{
		State:     s,
		Completed: m.completed,
		LeftOpen:  s.Phase == pomodoro.PhaseWorking,
		Err:       m.err,
	}
}

// View renders the timer TUI
func (m TimerModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}
	if m.quitting {
		return ""
	}

	s := m.ctrl.State()
	helpBar := m.help.View(timerKeys)
	contentHeight := m.height - lipgloss.Height(helpBar) - 1

	var components []string

	header, color := phaseHeader(s.Phase)
	components = append(components, lipgloss.NewStyle().
		Foreground(lipgloss.Color(color)).
		Bold(true).
		Render(header))

	taskName := "No task"
	if name := m.taskName(s); name != "" {
		taskName = name
	}
	if len(taskName) > m.width-4 && m.width > 7 {
		taskName = taskName[:m.width-7] + "..."
	}
	components = append(components, lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorPrimaryText)).
		Bold(true).
		Render(taskName))

	components = append(components, renderBigClock(pomodoro.FormatClock(s.Remaining()), color))
	components = append(components, m.progress.ViewAs(s.Progress()))

	var info []string
	if !s.StartedAt.IsZero() && s.Phase != pomodoro.PhaseIdle {
		info = append(info, fmt.Sprintf("Started at %s", s.StartedAt.Format("15:04:05")))
	}
	if m.completed > 0 {
		info = append(info, fmt.Sprintf("%d done this sitting", m.completed))
	}
	if len(info) > 0 {
		components = append(components, lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorSecondaryText)).
			Italic(true).
			Render(strings.Join(info, " · ")))
	}

	if m.err != nil {
		components = append(components, lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorError)).
			Render(fmt.Sprintf("Could not save: %v (retrying)", m.err)))
	}
	if m.message != "" {
		components = append(components, lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorAccentBright)).
			Render(m.message))
	}

	panel := lipgloss.NewStyle().
		Width(m.width).
		Height(contentHeight).
		Align(lipgloss.Center, lipgloss.Center).
		Render(strings.Join(components, "\n\n"))

	return lipgloss.JoinVertical(lipgloss.Left, panel, helpBar)
}

func (m TimerModel) taskName(s pomodoro.State) string {
	if s.TaskID == nil {
		return ""
	}
	for _, c := range m.choices {
		if c.ID == *s.TaskID {
			return c.Name
		}
	}
	return fmt.Sprintf("Task #%d", *s.TaskID)
}

func phaseHeader(p pomodoro.Phase) (string, string) {
	switch p {
	case pomodoro.PhaseWorking:
		return "🍅  FOCUS  🍅", ColorAccentMain
	case pomodoro.PhasePaused:
		return "⏸  PAUSED  ⏸", ColorPaused
	case pomodoro.PhaseCompleted:
		return "✅  WORK DONE  ✅", ColorSuccess
	case pomodoro.PhaseRelaxing:
		return "☕  RELAX  ☕", ColorRelax
	case pomodoro.PhaseFinalizing:
		return "💾  SAVING  💾", ColorError
	default:
		return "READY", ColorSecondaryText
	}
}

// RunTimerTUI runs the timer screen until the user quits
func RunTimerTUI(ctrl *pomodoro.Controller, choices []TaskChoice) (TimerOutcome, error) {
	p := tea.NewProgram(NewTimerModel(ctrl, choices), tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return TimerOutcome{}, err
	}
	return finalModel.(TimerModel).Outcome(), nil
}
