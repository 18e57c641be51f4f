// Package event defines the identity and input primitives shared by every
// remote-desktop control-plane component: the session identifier, the
// device-class bitset used for authorization, and the closed set of
// injectable input events.
package event

import "strings"

// SessionID is an interned, cheap-to-clone, hashable session identifier.
// It originates as a path-like string handed in by the transport; equality
// is plain string equality.
type SessionID string

// DeviceClass is a small bitset over the device classes a session can be
// authorized to inject events for.
type DeviceClass uint32

const (
	Keyboard    DeviceClass = 1 << 0
	Pointer     DeviceClass = 1 << 1
	Touchscreen DeviceClass = 1 << 2
)

// allDeviceClassBits masks out everything but the three known bits, so a
// raw integer off the wire can carry garbage in the high bits without
// corrupting the authorized set.
const allDeviceClassBits DeviceClass = Keyboard | Pointer | Touchscreen

// DeviceClassFrom truncates unknown bits from a raw wire value.
func DeviceClassFrom(raw uint32) DeviceClass {
	return DeviceClass(raw) & allDeviceClassBits
}

// Bits returns the wire representation: the three meaningful bits, nothing
// else.
func (c DeviceClass) Bits() uint32 {
	return uint32(c & allDeviceClassBits)
}

// Union returns the classes present in either set.
func (c DeviceClass) Union(other DeviceClass) DeviceClass {
	return c | other
}

// Intersect returns the classes present in both sets.
func (c DeviceClass) Intersect(other DeviceClass) DeviceClass {
	return c & other
}

// Has reports whether every class in other is also present in c.
func (c DeviceClass) Has(other DeviceClass) bool {
	return c&other == other
}

// HasKeyboard, HasPointer and HasTouchscreen are convenience wrappers around
// Has for the three individual classes.
func (c DeviceClass) HasKeyboard() bool    { return c&Keyboard != 0 }
func (c DeviceClass) HasPointer() bool     { return c&Pointer != 0 }
func (c DeviceClass) HasTouchscreen() bool { return c&Touchscreen != 0 }

// String renders the set as a "|"-joined list, e.g. "keyboard|pointer".
func (c DeviceClass) String() string {
	if c&allDeviceClassBits == 0 {
		return "none"
	}
	var parts []string
	if c.HasKeyboard() {
		parts = append(parts, "keyboard")
	}
	if c.HasPointer() {
		parts = append(parts, "pointer")
	}
	if c.HasTouchscreen() {
		parts = append(parts, "touchscreen")
	}
	return strings.Join(parts, "|")
}

// KeyState is a two-valued enum: a key is either Pressed or Released.
type KeyState bool

const (
	Released KeyState = false
	Pressed  KeyState = true
)

// KeyStateFromUint converts the wire representation (0 = Released, nonzero
// = Pressed) into a KeyState.
func KeyStateFromUint(v uint32) KeyState {
	return v != 0
}

// Uint32 converts back to the wire representation.
func (s KeyState) Uint32() uint32 {
	if s {
		return 1
	}
	return 0
}

func (s KeyState) String() string {
	if s {
		return "pressed"
	}
	return "released"
}

// ButtonState mirrors KeyState for pointer buttons.
type ButtonState bool

const (
	ButtonReleased ButtonState = false
	ButtonPressed  ButtonState = true
)

// ButtonStateFromUint converts the wire representation (0 = Released,
// nonzero = Pressed) into a ButtonState.
func ButtonStateFromUint(v uint32) ButtonState {
	return v != 0
}

// Uint32 converts back to the wire representation.
func (s ButtonState) Uint32() uint32 {
	if s {
		return 1
	}
	return 0
}

func (s ButtonState) String() string {
	if s {
		return "pressed"
	}
	return "released"
}

// Axis identifies a scroll axis.
type Axis uint32

const (
	Vertical   Axis = 0
	Horizontal Axis = 1
)

// AxisFromUint converts the wire representation (0 = Vertical, nonzero =
// Horizontal) into an Axis.
func AxisFromUint(v uint32) Axis {
	if v == 0 {
		return Vertical
	}
	return Horizontal
}

func (a Axis) String() string {
	if a == Horizontal {
		return "horizontal"
	}
	return "vertical"
}
