package input

import (
	"sync"

	"github.com/breeze-rmm/rdportal/internal/rdesktop/event"
)

// RecordedCall captures one dispatched Sink method for the RecordingSink.
type RecordedCall struct {
	SessionID event.SessionID
	Method    string
	Args      []any
}

// RecordingSink is the default, dependency-free Sink: it has nowhere real
// to deliver events (no compositor session is wired), so it records every
// call for inspection. It's the sink a build without the dbus tag falls
// back to, and what the test suite dispatches against.
type RecordingSink struct {
	mu    sync.Mutex
	calls []RecordedCall
}

// NewRecordingSink builds an empty RecordingSink.
func NewRecordingSink() *RecordingSink {
	return &RecordingSink{}
}

// Calls returns a snapshot of every call recorded so far.
func (r *RecordingSink) Calls() []RecordedCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]RecordedCall, len(r.calls))
	copy(out, r.calls)
	return out
}

func (r *RecordingSink) record(sessionID event.SessionID, method string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, RecordedCall{SessionID: sessionID, Method: method, Args: args})
}

func (r *RecordingSink) NotifyPointerMotion(sessionID event.SessionID, dx, dy float64) {
	r.record(sessionID, "NotifyPointerMotion", dx, dy)
}

func (r *RecordingSink) NotifyPointerMotionAbsolute(sessionID event.SessionID, stream uint32, x, y float64) {
	r.record(sessionID, "NotifyPointerMotionAbsolute", stream, x, y)
}

func (r *RecordingSink) NotifyPointerButton(sessionID event.SessionID, button int32, state event.ButtonState) {
	r.record(sessionID, "NotifyPointerButton", button, state)
}

func (r *RecordingSink) NotifyPointerAxis(sessionID event.SessionID, dx, dy float64) {
	r.record(sessionID, "NotifyPointerAxis", dx, dy)
}

func (r *RecordingSink) NotifyPointerAxisDiscrete(sessionID event.SessionID, axis event.Axis, steps int32) {
	r.record(sessionID, "NotifyPointerAxisDiscrete", axis, steps)
}

func (r *RecordingSink) NotifyKeyboardKeycode(sessionID event.SessionID, keycode int32, state event.KeyState) {
	r.record(sessionID, "NotifyKeyboardKeycode", keycode, state)
}

func (r *RecordingSink) NotifyKeyboardKeysym(sessionID event.SessionID, keysym int32, state event.KeyState) {
	r.record(sessionID, "NotifyKeyboardKeysym", keysym, state)
}

func (r *RecordingSink) NotifyTouchDown(sessionID event.SessionID, stream, slot uint32, x, y float64) {
	r.record(sessionID, "NotifyTouchDown", stream, slot, x, y)
}

func (r *RecordingSink) NotifyTouchMotion(sessionID event.SessionID, stream, slot uint32, x, y float64) {
	r.record(sessionID, "NotifyTouchMotion", stream, slot, x, y)
}

func (r *RecordingSink) NotifyTouchUp(sessionID event.SessionID, slot uint32) {
	r.record(sessionID, "NotifyTouchUp", slot)
}
