package event

// InputEvent is the closed set of events a session may inject. It is
// closed for reasoning: every concrete type below carries its
// device-class provenance via IsKeyboard/IsPointer/IsTouch, so a consumer
// never needs a type switch to decide which authorization bucket an event
// falls into. The set is open for extension inside this package: a new
// variant is a new struct embedding keyboardEvent, pointerEvent or
// touchEvent, which supply the predicates and the unexported marker().
type InputEvent interface {
	IsKeyboard() bool
	IsPointer() bool
	IsTouch() bool

	marker()
}

type keyboardEvent struct{}

func (keyboardEvent) IsKeyboard() bool { return true }
func (keyboardEvent) IsPointer() bool  { return false }
func (keyboardEvent) IsTouch() bool    { return false }
func (keyboardEvent) marker()          {}

type pointerEvent struct{}

func (pointerEvent) IsKeyboard() bool { return false }
func (pointerEvent) IsPointer() bool  { return true }
func (pointerEvent) IsTouch() bool    { return false }
func (pointerEvent) marker()          {}

type touchEvent struct{}

func (touchEvent) IsKeyboard() bool { return false }
func (touchEvent) IsPointer() bool  { return false }
func (touchEvent) IsTouch() bool    { return true }
func (touchEvent) marker()          {}

// PointerMotion is a relative pointer move.
type PointerMotion struct {
	pointerEvent
	DX, DY float64
}

// PointerMotionAbsolute is an absolute pointer move against a capture
// stream's coordinate space.
type PointerMotionAbsolute struct {
	pointerEvent
	Stream uint32
	X, Y   float64
}

// PointerButton is a button press or release.
type PointerButton struct {
	pointerEvent
	Button int32
	State  ButtonState
}

// PointerAxis is a smooth (continuous) scroll delta.
type PointerAxis struct {
	pointerEvent
	DX, DY float64
}

// PointerAxisDiscrete is a stepped scroll, e.g. one mouse-wheel click.
type PointerAxisDiscrete struct {
	pointerEvent
	Axis  Axis
	Steps int32
}

// KeyboardKeycode is a raw hardware keycode press or release.
type KeyboardKeycode struct {
	keyboardEvent
	Keycode int32
	State   KeyState
}

// KeyboardKeysym is a layout-resolved keysym press or release.
type KeyboardKeysym struct {
	keyboardEvent
	Keysym int32
	State  KeyState
}

// TouchDown begins a touch contact in a given slot.
type TouchDown struct {
	touchEvent
	Stream uint32
	Slot   uint32
	X, Y   float64
}

// TouchMotion moves an existing touch contact.
type TouchMotion struct {
	touchEvent
	Stream uint32
	Slot   uint32
	X, Y   float64
}

// TouchUp ends a touch contact.
type TouchUp struct {
	touchEvent
	Slot uint32
}

// RequiredClass maps an event to the single device class that must be
// present in a session's authorized set for the event to be admitted.
func RequiredClass(e InputEvent) DeviceClass {
	switch {
	case e.IsKeyboard():
		return Keyboard
	case e.IsTouch():
		return Touchscreen
	default:
		return Pointer
	}
}
