// Package mode derives the operating mode a started session presents to
// its client from the probed capture tier and input availability.
package mode

// Mode is the session-wide combination of capture and input availability.
type Mode uint32

const (
	None      Mode = 0
	ViewOnly  Mode = 1
	InputOnly Mode = 2
	Full      Mode = 3
)

// From decodes a wire value, mapping anything outside {0,1,2,3} to None.
func From(raw uint32) Mode {
	switch Mode(raw) {
	case None, ViewOnly, InputOnly, Full:
		return Mode(raw)
	default:
		return None
	}
}

// Uint32 encodes the mode for the wire.
func (m Mode) Uint32() uint32 {
	return uint32(m)
}

func (m Mode) HasCapture() bool {
	return m == ViewOnly || m == Full
}

func (m Mode) HasInput() bool {
	return m == InputOnly || m == Full
}

func (m Mode) IsActive() bool {
	return m != None
}

func (m Mode) String() string {
	switch m {
	case ViewOnly:
		return "view_only"
	case InputOnly:
		return "input_only"
	case Full:
		return "full"
	default:
		return "none"
	}
}

// FromCapabilities combines a capture-available flag and an
// input-available flag into the resulting mode.
func FromCapabilities(capture, input bool) Mode {
	switch {
	case capture && input:
		return Full
	case capture:
		return ViewOnly
	case input:
		return InputOnly
	default:
		return None
	}
}
