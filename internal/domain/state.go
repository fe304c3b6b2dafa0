package domain

type State string

const (
	StateIdle     State = "idle"
	StateRejected State = "rejected"
	StateReady    State = "ready"
	StateRunning  State = "running"
	StateFailed   State = "failed"
	StateDone     State = "done"
)

// HasFile reports whether a session in this state still holds a usable upload.
func (s State) HasFile() bool {
	switch s {
	case StateReady, StateRunning, StateFailed, StateDone:
		return true
	default:
		return false
	}
}

func ParseState(raw string) State {
	switch s := State(raw); s {
	case StateRejected, StateReady, StateRunning, StateFailed, StateDone:
		return s
	default:
		return StateIdle
	}
}
