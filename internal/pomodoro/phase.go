package pomodoro

import "fmt"

// Phase is where a session currently is
type Phase int

const (
	PhaseIdle       Phase = iota
	PhaseWorking          // work time is accumulating
	PhasePaused           // work time frozen, record still open
	PhaseCompleted        // work finished and saved, waiting for relax or skip
	PhaseRelaxing         // relax countdown running, nothing persisted
	PhaseFinalizing       // closing write failed, waiting for a retry
)

var phaseNames = map[Phase]string{
	PhaseIdle:       "Idle",
	PhaseWorking:    "Working",
	PhasePaused:     "Paused",
	PhaseCompleted:  "Completed",
	PhaseRelaxing:   "Relaxing",
	PhaseFinalizing: "Finalizing",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// Active reports whether a session is in flight
func (p Phase) Active() bool {
	return p != PhaseIdle
}

// Event is what a Tick (or retry) produced
type Event int

const (
	EventNone Event = iota
	EventWorkCompleted
	EventRelaxCompleted
	EventAbandoned
)

// FormatClock renders whole seconds as MM:SS
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
