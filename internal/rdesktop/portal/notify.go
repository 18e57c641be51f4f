package portal

import "github.com/breeze-rmm/rdportal/internal/rdesktop/event"

// Each notify_* operation looks the session up (surfacing NotFound), then
// hands the constructed event straight to Session.SendEvent, which owns
// authorization and FIFO delivery. Rate limiting is not applied here: the
// compositor-side input.Service applies it downstream in Inject.

func (p *Portal) NotifyPointerMotion(sessionID event.SessionID, dx, dy float64) error {
	s, err := p.lookup(sessionID)
	if err != nil {
		return err
	}
	return s.SendEvent(event.PointerMotion{DX: dx, DY: dy})
}

func (p *Portal) NotifyPointerMotionAbsolute(sessionID event.SessionID, stream uint32, x, y float64) error {
	s, err := p.lookup(sessionID)
	if err != nil {
		return err
	}
	return s.SendEvent(event.PointerMotionAbsolute{Stream: stream, X: x, Y: y})
}

func (p *Portal) NotifyPointerButton(sessionID event.SessionID, button int32, state uint32) error {
	s, err := p.lookup(sessionID)
	if err != nil {
		return err
	}
	return s.SendEvent(event.PointerButton{Button: button, State: event.ButtonStateFromUint(state)})
}

func (p *Portal) NotifyPointerAxis(sessionID event.SessionID, dx, dy float64) error {
	s, err := p.lookup(sessionID)
	if err != nil {
		return err
	}
	return s.SendEvent(event.PointerAxis{DX: dx, DY: dy})
}

func (p *Portal) NotifyPointerAxisDiscrete(sessionID event.SessionID, axis uint32, steps int32) error {
	s, err := p.lookup(sessionID)
	if err != nil {
		return err
	}
	return s.SendEvent(event.PointerAxisDiscrete{Axis: event.AxisFromUint(axis), Steps: steps})
}

func (p *Portal) NotifyKeyboardKeycode(sessionID event.SessionID, keycode int32, state uint32) error {
	s, err := p.lookup(sessionID)
	if err != nil {
		return err
	}
	return s.SendEvent(event.KeyboardKeycode{Keycode: keycode, State: event.KeyStateFromUint(state)})
}

func (p *Portal) NotifyKeyboardKeysym(sessionID event.SessionID, keysym int32, state uint32) error {
	s, err := p.lookup(sessionID)
	if err != nil {
		return err
	}
	return s.SendEvent(event.KeyboardKeysym{Keysym: keysym, State: event.KeyStateFromUint(state)})
}

func (p *Portal) NotifyTouchDown(sessionID event.SessionID, stream, slot uint32, x, y float64) error {
	s, err := p.lookup(sessionID)
	if err != nil {
		return err
	}
	return s.SendEvent(event.TouchDown{Stream: stream, Slot: slot, X: x, Y: y})
}

func (p *Portal) NotifyTouchMotion(sessionID event.SessionID, stream, slot uint32, x, y float64) error {
	s, err := p.lookup(sessionID)
	if err != nil {
		return err
	}
	return s.SendEvent(event.TouchMotion{Stream: stream, Slot: slot, X: x, Y: y})
}

func (p *Portal) NotifyTouchUp(sessionID event.SessionID, slot uint32) error {
	s, err := p.lookup(sessionID)
	if err != nil {
		return err
	}
	return s.SendEvent(event.TouchUp{Slot: slot})
}
