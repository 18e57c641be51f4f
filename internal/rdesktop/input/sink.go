package input

import (
	"context"

	"github.com/breeze-rmm/rdportal/internal/rdesktop/event"
)

// Sink is the virtual-input contract (§4.8): one method per InputEvent
// variant, named after the org.gnome.Mutter.RemoteDesktop method it
// ultimately drives on a real compositor. A Sink must not block for long
// inside any method; the dispatch loop serializes delivery.
type Sink interface {
	NotifyPointerMotion(sessionID event.SessionID, dx, dy float64)
	NotifyPointerMotionAbsolute(sessionID event.SessionID, stream uint32, x, y float64)
	NotifyPointerButton(sessionID event.SessionID, button int32, state event.ButtonState)
	NotifyPointerAxis(sessionID event.SessionID, dx, dy float64)
	NotifyPointerAxisDiscrete(sessionID event.SessionID, axis event.Axis, steps int32)
	NotifyKeyboardKeycode(sessionID event.SessionID, keycode int32, state event.KeyState)
	NotifyKeyboardKeysym(sessionID event.SessionID, keysym int32, state event.KeyState)
	NotifyTouchDown(sessionID event.SessionID, stream, slot uint32, x, y float64)
	NotifyTouchMotion(sessionID event.SessionID, stream, slot uint32, x, y float64)
	NotifyTouchUp(sessionID event.SessionID, slot uint32)
}

// Dispatcher drains a Service's event channel and fans each event out to
// the right Sink method by concrete type. It runs until ctx is canceled
// or the channel closes.
type Dispatcher struct {
	events <-chan Wrapped
	sink   Sink
}

// NewDispatcher builds a Dispatcher over events, delivering to sink.
func NewDispatcher(events <-chan Wrapped, sink Sink) *Dispatcher {
	return &Dispatcher{events: events, sink: sink}
}

// Run drains events until ctx is canceled or the channel closes. Unknown
// variants are logged and skipped rather than treated as fatal, so a
// forward-compatible client sending a variant this build doesn't know
// about can't take the dispatcher down.
func (d *Dispatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case w, ok := <-d.events:
			if !ok {
				return
			}
			d.deliver(w)
		}
	}
}

func (d *Dispatcher) deliver(w Wrapped) {
	switch e := w.Event.(type) {
	case event.PointerMotion:
		d.sink.NotifyPointerMotion(w.SessionID, e.DX, e.DY)
	case event.PointerMotionAbsolute:
		d.sink.NotifyPointerMotionAbsolute(w.SessionID, e.Stream, e.X, e.Y)
	case event.PointerButton:
		d.sink.NotifyPointerButton(w.SessionID, e.Button, e.State)
	case event.PointerAxis:
		d.sink.NotifyPointerAxis(w.SessionID, e.DX, e.DY)
	case event.PointerAxisDiscrete:
		d.sink.NotifyPointerAxisDiscrete(w.SessionID, e.Axis, e.Steps)
	case event.KeyboardKeycode:
		d.sink.NotifyKeyboardKeycode(w.SessionID, e.Keycode, e.State)
	case event.KeyboardKeysym:
		d.sink.NotifyKeyboardKeysym(w.SessionID, e.Keysym, e.State)
	case event.TouchDown:
		d.sink.NotifyTouchDown(w.SessionID, e.Stream, e.Slot, e.X, e.Y)
	case event.TouchMotion:
		d.sink.NotifyTouchMotion(w.SessionID, e.Stream, e.Slot, e.X, e.Y)
	case event.TouchUp:
		d.sink.NotifyTouchUp(w.SessionID, e.Slot)
	default:
		log.Warn("dropping input event of unknown variant", "session", w.SessionID)
	}
}
