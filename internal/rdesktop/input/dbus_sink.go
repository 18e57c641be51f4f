//go:build dbus

package input

import (
	"github.com/godbus/dbus/v5"

	"github.com/breeze-rmm/rdportal/internal/rdesktop/event"
)

const (
	remoteDesktopBus          = "org.gnome.Mutter.RemoteDesktop"
	remoteDesktopSessionIface = "org.gnome.Mutter.RemoteDesktop.Session"
)

// DBusSink drives a real GNOME Mutter RemoteDesktop session over the
// session bus. One DBusSink serves every session multiplexed through the
// Dispatcher; session_path here names the RemoteDesktop session object,
// not our own event.SessionID, and is supplied per call by the caller
// that owns the session <-> RemoteDesktop-session-path binding.
type DBusSink struct {
	conn       *dbus.Conn
	sessionFor func(event.SessionID) dbus.ObjectPath
}

// NewDBusSink builds a DBusSink over an already-connected session bus.
// sessionFor resolves our SessionID to the RemoteDesktop session object
// path negotiated when the session was created.
func NewDBusSink(conn *dbus.Conn, sessionFor func(event.SessionID) dbus.ObjectPath) *DBusSink {
	return &DBusSink{conn: conn, sessionFor: sessionFor}
}

func (d *DBusSink) object(sessionID event.SessionID) dbus.BusObject {
	return d.conn.Object(remoteDesktopBus, d.sessionFor(sessionID))
}

func (d *DBusSink) call(sessionID event.SessionID, method string, args ...any) {
	if err := d.object(sessionID).Call(remoteDesktopSessionIface+"."+method, 0, args...).Err; err != nil {
		log.Warn("RemoteDesktop call failed", "session", sessionID, "method", method, "err", err)
	}
}

func (d *DBusSink) NotifyPointerMotion(sessionID event.SessionID, dx, dy float64) {
	d.call(sessionID, "NotifyPointerMotion", dx, dy)
}

func (d *DBusSink) NotifyPointerMotionAbsolute(sessionID event.SessionID, stream uint32, x, y float64) {
	d.call(sessionID, "NotifyPointerMotionAbsolute", stream, x, y)
}

func (d *DBusSink) NotifyPointerButton(sessionID event.SessionID, button int32, state event.ButtonState) {
	d.call(sessionID, "NotifyPointerButton", button, state.Uint32())
}

func (d *DBusSink) NotifyPointerAxis(sessionID event.SessionID, dx, dy float64) {
	d.call(sessionID, "NotifyPointerAxis", dx, dy, uint32(4))
}

func (d *DBusSink) NotifyPointerAxisDiscrete(sessionID event.SessionID, axis event.Axis, steps int32) {
	d.call(sessionID, "NotifyPointerAxisDiscrete", uint32(axis), steps)
}

func (d *DBusSink) NotifyKeyboardKeycode(sessionID event.SessionID, keycode int32, state event.KeyState) {
	d.call(sessionID, "NotifyKeyboardKeycode", keycode, state.Uint32())
}

func (d *DBusSink) NotifyKeyboardKeysym(sessionID event.SessionID, keysym int32, state event.KeyState) {
	d.call(sessionID, "NotifyKeyboardKeysym", keysym, state.Uint32())
}

func (d *DBusSink) NotifyTouchDown(sessionID event.SessionID, stream, slot uint32, x, y float64) {
	d.call(sessionID, "NotifyTouchDown", stream, slot, x, y)
}

func (d *DBusSink) NotifyTouchMotion(sessionID event.SessionID, stream, slot uint32, x, y float64) {
	d.call(sessionID, "NotifyTouchMotion", stream, slot, x, y)
}

func (d *DBusSink) NotifyTouchUp(sessionID event.SessionID, slot uint32) {
	d.call(sessionID, "NotifyTouchUp", slot)
}
