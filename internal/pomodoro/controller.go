// Package pomodoro runs the work / pause / relax state machine of a single timed session.
package pomodoro

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/balkashynov/taskflow/internal/models"
)

var (
	// ErrInvalidState is returned when an operation is not allowed in the current phase
	ErrInvalidState = errors.New("invalid state")

	// ErrInvalidDuration is returned for non-positive session lengths
	ErrInvalidDuration = errors.New("duration must be a positive number of minutes")
)

// Recorder persists pomodoro records
type Recorder interface {
	CreatePomodoro(p *models.Pomodoro) error
	SavePomodoro(p *models.Pomodoro) error
	UpdatePomodoroTask(id uint, taskID *uint) error
	OpenPomodoro() (*models.Pomodoro, error)
}

// Durations are the configured work and relax lengths in minutes
type Durations struct {
	WorkMinutes  int
	RelaxMinutes int
}

// SettingsSource supplies durations on demand
type SettingsSource interface {
	Durations() (Durations, error)
}

// Handoff carries an open session from one controller (or process) to the next
type Handoff struct {
	Pomodoro *models.Pomodoro
	Paused   bool

	// ElapsedWorkSeconds overrides the elapsed time derived from the record's start
	ElapsedWorkSeconds float64
}

// State is a read-only snapshot of the controller
type State struct {
	Phase               Phase
	ElapsedWorkSeconds  float64
	ElapsedRelaxSeconds float64
	ActivePomodoroID    uint
	TaskID              *uint
	EstimatedMinutes    int
	RelaxMinutes        int
	StartedAt           time.Time
}

// Remaining returns the whole seconds left in the running phase, rounded up
func (s State) Remaining() int {
	var left float64
	switch s.Phase {
	case PhaseRelaxing:
		left = float64(s.RelaxMinutes*60) - s.ElapsedRelaxSeconds
	case PhaseWorking, PhasePaused:
		left = float64(s.EstimatedMinutes*60) - s.ElapsedWorkSeconds
	default:
		return 0
	}
	return int(math.Max(0, math.Ceil(left)))
}

// Progress returns how much of the running phase is done, between 0 and 1
func (s State) Progress() float64 {
	var done, total float64
	switch s.Phase {
	case PhaseRelaxing:
		done, total = s.ElapsedRelaxSeconds, float64(s.RelaxMinutes*60)
	case PhaseWorking, PhasePaused:
		done, total = s.ElapsedWorkSeconds, float64(s.EstimatedMinutes*60)
	case PhaseCompleted:
		return 1
	default:
		return 0
	}
	if total <= 0 {
		return 0
	}
	return math.Min(1, done/total)
}

// Controller manages one session at a time. All methods are safe for concurrent use;
// each transition is atomic with respect to Tick.
type Controller struct {
	mu       sync.Mutex
	rec      Recorder
	settings SettingsSource
	now      func() time.Time

	phase        Phase
	active       *models.Pomodoro // open record while Working or Paused
	taskID       *uint
	estimated    int
	relaxMinutes int
	elapsedWork  float64
	elapsedRelax float64

	// pending holds a closed record whose write has not been acknowledged yet
	pending     *models.Pomodoro
	pendingNext Phase

	handoff *Handoff
}

// Option configures a Controller
type Option func(*Controller)

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithSettings sets where default durations come from
func WithSettings(s SettingsSource) Option {
	return func(c *Controller) { c.settings = s }
}

// WithHandoff resumes the open session described by h. Closed or missing records are ignored.
func WithHandoff(h Handoff) Option {
	return func(c *Controller) { c.handoff = &h }
}

// NewController creates an idle controller writing through rec
func NewController(rec Recorder, opts ...Option) *Controller {
	c := &Controller{
		rec:   rec,
		now:   time.Now,
		phase: PhaseIdle,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.handoff != nil {
		c.adopt(*c.handoff)
		c.handoff = nil
	}
	return c
}

func (c *Controller) adopt(h Handoff) {
	p := h.Pomodoro
	if p == nil || !p.Open() {
		return
	}
	record := *p
	c.active = &record
	c.taskID = copyID(record.TaskID)
	c.estimated = record.EstimatedMinutes

	elapsed := h.ElapsedWorkSeconds
	if elapsed <= 0 {
		elapsed = c.now().Sub(record.StartedAt).Seconds()
	}
	threshold := float64(record.EstimatedMinutes * 60)
	c.elapsedWork = math.Max(0, math.Min(elapsed, threshold))

	c.phase = PhaseWorking
	if h.Paused {
		c.phase = PhasePaused
	}
}

// State returns a snapshot of the controller
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := State{
		Phase:               c.phase,
		ElapsedWorkSeconds:  c.elapsedWork,
		ElapsedRelaxSeconds: c.elapsedRelax,
		TaskID:              copyID(c.taskID),
		EstimatedMinutes:    c.estimated,
		RelaxMinutes:        c.relaxMinutes,
	}
	record := c.active
	if record == nil {
		record = c.pending
	}
	if record != nil {
		s.ActivePomodoroID = record.ID
		s.StartedAt = record.StartedAt
	}
	return s
}

// Handoff captures the open session so another controller can pick it up
func (c *Controller) Handoff() (Handoff, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active == nil || (c.phase != PhaseWorking && c.phase != PhasePaused) {
		return Handoff{}, false
	}
	record := *c.active
	return Handoff{
		Pomodoro:           &record,
		Paused:             c.phase == PhasePaused,
		ElapsedWorkSeconds: c.elapsedWork,
	}, true
}

// Start opens a new session of estimatedMinutes linked to taskID (may be nil)
func (c *Controller) Start(taskID *uint, estimatedMinutes int) (*models.Pomodoro, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if estimatedMinutes <= 0 {
		return nil, fmt.Errorf("start %d minutes: %w", estimatedMinutes, ErrInvalidDuration)
	}
	if c.phase == PhaseFinalizing {
		if _, err := c.retryLocked(); err != nil {
			return nil, err
		}
	}
	if c.phase != PhaseIdle {
		return nil, c.invalid("start")
	}

	open, err := c.rec.OpenPomodoro()
	if err != nil {
		return nil, err
	}
	if open != nil {
		return nil, fmt.Errorf("start: %w: pomodoro #%d is still open", ErrInvalidState, open.ID)
	}

	record := &models.Pomodoro{
		TaskID:           copyID(taskID),
		StartedAt:        c.now(),
		EstimatedMinutes: estimatedMinutes,
	}
	if err := c.rec.CreatePomodoro(record); err != nil {
		return nil, err
	}

	c.active = record
	c.taskID = copyID(taskID)
	c.estimated = estimatedMinutes
	c.elapsedWork = 0
	c.elapsedRelax = 0
	c.phase = PhaseWorking

	created := *record
	return &created, nil
}

// StartWithSettings starts a session using the configured work length.
// The length is read once here, later settings changes do not affect the running session.
func (c *Controller) StartWithSettings(taskID *uint) (*models.Pomodoro, error) {
	d, err := c.durations()
	if err != nil {
		return nil, err
	}
	return c.Start(taskID, d.WorkMinutes)
}

// Pause freezes the work counter
func (c *Controller) Pause() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase != PhaseWorking {
		return c.invalid("pause")
	}
	c.phase = PhasePaused
	return nil
}

// Resume continues a paused session
func (c *Controller) Resume() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase != PhasePaused {
		return c.invalid("resume")
	}
	c.phase = PhaseWorking
	return nil
}

// Tick advances the running counter by deltaSeconds. Work completion is saved before
// EventWorkCompleted is reported; a failed save moves the controller to PhaseFinalizing
// and later ticks retry it. Ticks in phases without a running counter do nothing.
func (c *Controller) Tick(deltaSeconds float64) (Event, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if deltaSeconds < 0 || math.IsNaN(deltaSeconds) {
		deltaSeconds = 0
	}

	switch c.phase {
	case PhaseWorking:
		c.elapsedWork += deltaSeconds
		if c.elapsedWork >= float64(c.estimated*60) {
			return c.completeLocked()
		}
	case PhaseRelaxing:
		c.elapsedRelax += deltaSeconds
		if c.elapsedRelax >= float64(c.relaxMinutes*60) {
			c.resetLocked()
			return EventRelaxCompleted, nil
		}
	case PhaseFinalizing:
		return c.retryLocked()
	}
	return EventNone, nil
}

// FinishNow completes the running work phase immediately
func (c *Controller) FinishNow() (Event, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase != PhaseWorking && c.phase != PhasePaused {
		return EventNone, c.invalid("finish")
	}
	return c.completeLocked()
}

// Relax starts the relax countdown after completed work
func (c *Controller) Relax() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase != PhaseCompleted {
		return c.invalid("relax")
	}
	d, err := c.durations()
	if err != nil {
		return err
	}
	c.relaxMinutes = d.RelaxMinutes
	c.elapsedRelax = 0
	c.phase = PhaseRelaxing
	return nil
}

// Skip returns to idle after completed work without relaxing
func (c *Controller) Skip() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase != PhaseCompleted {
		return c.invalid("skip")
	}
	c.resetLocked()
	return nil
}

// Abandon ends the session. An open record is closed as abandoned with the whole
// minutes worked so far; during relax the already finished record is left alone.
func (c *Controller) Abandon() (Event, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.phase {
	case PhaseWorking, PhasePaused:
		minutes := int(math.Floor(c.elapsedWork / 60))
		if err := c.closeLocked(models.PomodoroAbandoned, minutes, PhaseIdle); err != nil {
			return EventNone, err
		}
		return EventAbandoned, nil
	case PhaseRelaxing:
		c.resetLocked()
		return EventAbandoned, nil
	}
	return EventNone, c.invalid("abandon")
}

// ReassignTask changes the task the session counts toward without touching timing
func (c *Controller) ReassignTask(taskID *uint) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.phase {
	case PhaseWorking, PhasePaused:
		if err := c.rec.UpdatePomodoroTask(c.active.ID, taskID); err != nil {
			return err
		}
		c.active.TaskID = copyID(taskID)
	case PhaseFinalizing:
		c.pending.TaskID = copyID(taskID)
	case PhaseCompleted, PhaseRelaxing:
	default:
		return c.invalid("reassign task")
	}
	c.taskID = copyID(taskID)
	return nil
}

// RetryFinalize repeats a closing write that failed earlier
func (c *Controller) RetryFinalize() (Event, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase != PhaseFinalizing {
		return EventNone, c.invalid("retry finalize")
	}
	return c.retryLocked()
}

func (c *Controller) completeLocked() (Event, error) {
	if err := c.closeLocked(models.PomodoroFinished, c.estimated, PhaseCompleted); err != nil {
		return EventNone, err
	}
	return EventWorkCompleted, nil
}

// closeLocked finalizes the open record and moves to next once the write is acknowledged
func (c *Controller) closeLocked(status models.PomodoroStatus, minutes int, next Phase) error {
	record := *c.active
	end := c.now()
	record.EndedAt = &end
	record.Status = status
	record.FinishedMinutes = &minutes
	record.TaskID = copyID(c.taskID)

	c.active = nil
	c.pending = &record
	c.pendingNext = next
	c.phase = PhaseFinalizing

	if _, err := c.retryLocked(); err != nil {
		return err
	}
	return nil
}

func (c *Controller) retryLocked() (Event, error) {
	if err := c.rec.SavePomodoro(c.pending); err != nil {
		return EventNone, fmt.Errorf("finalize pomodoro #%d: %w", c.pending.ID, err)
	}

	status := c.pending.Status
	c.pending = nil
	if c.pendingNext == PhaseCompleted {
		c.phase = PhaseCompleted
		c.elapsedWork = float64(c.estimated * 60)
	} else {
		c.resetLocked()
	}

	if status == models.PomodoroFinished {
		return EventWorkCompleted, nil
	}
	return EventAbandoned, nil
}

func (c *Controller) resetLocked() {
	c.phase = PhaseIdle
	c.active = nil
	c.taskID = nil
	c.estimated = 0
	c.relaxMinutes = 0
	c.elapsedWork = 0
	c.elapsedRelax = 0
}

func (c *Controller) durations() (Durations, error) {
	d := Durations{WorkMinutes: models.DefaultWorkMinutes, RelaxMinutes: models.DefaultRelaxMinutes}
	if c.settings == nil {
		return d, nil
	}
	got, err := c.settings.Durations()
	if err != nil {
		return d, fmt.Errorf("read durations: %w", err)
	}
	if got.WorkMinutes > 0 {
		d.WorkMinutes = got.WorkMinutes
	}
	if got.RelaxMinutes > 0 {
		d.RelaxMinutes = got.RelaxMinutes
	}
	return d, nil
}

func (c *Controller) invalid(op string) error {
	return fmt.Errorf("%s while %s: %w", op, c.phase, ErrInvalidState)
}

func copyID(id *uint) *uint {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
