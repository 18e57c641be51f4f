// Package session implements the session state machine, authorization,
// and the session manager that owns the SessionId -> Session mapping.
package session

import "github.com/breeze-rmm/rdportal/internal/rdesktop/rderr"

// State is the session lifecycle: Created -> DevicesSelected -> Active ->
// Closed. Closed is terminal.
type State int

const (
	Created State = iota
	DevicesSelected
	Active
	Closed
)

func (s State) String() string {
	switch s {
	case Created:
		return "created"
	case DevicesSelected:
		return "devices_selected"
	case Active:
		return "active"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// requireState returns an *rderr.InvalidState error unless current
// already equals want.
func requireState(current, want State) error {
	if current == want {
		return nil
	}
	return &rderr.InvalidState{Expected: want.String(), Actual: current.String()}
}
