package event

import "testing"

func TestDeviceClassFromTruncatesUnknownBits(t *testing.T) {
	c := DeviceClassFrom(0xFFFFFFFF)
	if c.Bits() != uint32(Keyboard|Pointer|Touchscreen) {
		t.Fatalf("DeviceClassFrom(all bits) = %#x, want only the three known bits", c.Bits())
	}
}

func TestDeviceClassUnionIntersectHas(t *testing.T) {
	kp := Keyboard.Union(Pointer)
	if !kp.Has(Keyboard) || !kp.Has(Pointer) {
		t.Fatal("union should contain both classes")
	}
	if kp.HasTouchscreen() {
		t.Fatal("union of keyboard+pointer should not contain touchscreen")
	}
	if kp.Intersect(Touchscreen) != 0 {
		t.Fatal("intersect with a disjoint class should be empty")
	}
	if !kp.Has(Keyboard.Union(Pointer)) {
		t.Fatal("a set should contain itself")
	}
}

func TestDeviceClassString(t *testing.T) {
	if got := DeviceClass(0).String(); got != "none" {
		t.Fatalf("empty set String() = %q, want none", got)
	}
	if got := Keyboard.Union(Touchscreen).String(); got != "keyboard|touchscreen" {
		t.Fatalf("String() = %q, want keyboard|touchscreen", got)
	}
}

func TestKeyStateRoundTrip(t *testing.T) {
	if KeyStateFromUint(0) != Released {
		t.Fatal("0 should decode to Released")
	}
	if KeyStateFromUint(7) != Pressed {
		t.Fatal("nonzero should decode to Pressed")
	}
	if Pressed.Uint32() != 1 || Released.Uint32() != 0 {
		t.Fatal("Uint32 round trip mismatch")
	}
}

func TestAxisFromUint(t *testing.T) {
	if AxisFromUint(0) != Vertical {
		t.Fatal("0 should decode to Vertical")
	}
	if AxisFromUint(1) != Horizontal {
		t.Fatal("nonzero should decode to Horizontal")
	}
}

func TestInputEventClassPredicates(t *testing.T) {
	cases := []struct {
		name string
		ev   InputEvent
		want DeviceClass
	}{
		{"motion", PointerMotion{DX: 1, DY: 2}, Pointer},
		{"motion-abs", PointerMotionAbsolute{Stream: 1, X: 3, Y: 4}, Pointer},
		{"button", PointerButton{Button: 1, State: ButtonPressed}, Pointer},
		{"axis", PointerAxis{DX: 1}, Pointer},
		{"axis-discrete", PointerAxisDiscrete{Axis: Vertical, Steps: 1}, Pointer},
		{"keycode", KeyboardKeycode{Keycode: 30, State: Pressed}, Keyboard},
		{"keysym", KeyboardKeysym{Keysym: 97, State: Pressed}, Keyboard},
		{"touch-down", TouchDown{Slot: 0, X: 1, Y: 1}, Touchscreen},
		{"touch-motion", TouchMotion{Slot: 0, X: 2, Y: 2}, Touchscreen},
		{"touch-up", TouchUp{Slot: 0}, Touchscreen},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if RequiredClass(tc.ev) != tc.want {
				t.Fatalf("RequiredClass(%T) = %v, want %v", tc.ev, RequiredClass(tc.ev), tc.want)
			}
			gotKeyboard := tc.ev.IsKeyboard()
			gotPointer := tc.ev.IsPointer()
			gotTouch := tc.ev.IsTouch()
			if (gotKeyboard && tc.want != Keyboard) || (gotPointer && tc.want != Pointer) || (gotTouch && tc.want != Touchscreen) {
				t.Fatalf("%T predicate mismatch: keyboard=%v pointer=%v touch=%v", tc.ev, gotKeyboard, gotPointer, gotTouch)
			}
		})
	}
}
