package session

import (
	"testing"
	"time"

	"github.com/breeze-rmm/rdportal/internal/rdesktop/event"
	"github.com/breeze-rmm/rdportal/internal/rdesktop/rderr"
)

func newTestManager() *Manager {
	return NewManager(32, 8, 64)
}

func TestHappyPath(t *testing.T) {
	m := newTestManager()
	s, err := m.Create(event.SessionID("/s/1"), "x")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := s.SelectDevices(event.Keyboard.Union(event.Pointer)); err != nil {
		t.Fatalf("SelectDevices: %v", err)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	if err := s.SendEvent(event.PointerMotion{DX: 10, DY: 5}); err != nil {
		t.Fatalf("SendEvent(motion): %v", err)
	}
	if err := s.SendEvent(event.KeyboardKeycode{Keycode: 30, State: event.Pressed}); err != nil {
		t.Fatalf("SendEvent(keycode): %v", err)
	}

	first := <-m.CompositorBound()
	second := <-m.CompositorBound()

	if first.SessionID != "/s/1" || second.SessionID != "/s/1" {
		t.Fatal("both deliveries should be tagged with the sending session")
	}
	if _, ok := first.Event.(event.PointerMotion); !ok {
		t.Fatal("first delivery should be the pointer motion (FIFO)")
	}
	if _, ok := second.Event.(event.KeyboardKeycode); !ok {
		t.Fatal("second delivery should be the keycode (FIFO)")
	}
	if s.EventCount() != 2 {
		t.Fatalf("EventCount() = %d, want 2", s.EventCount())
	}

	if err := m.Close(s.ID()); err != nil {
		t.Fatalf("Close: %v", err)
	}

	err = s.SendEvent(event.PointerMotion{DX: 1, DY: 1})
	var invalid *rderr.InvalidState
	if inv, ok := err.(*rderr.InvalidState); !ok {
		t.Fatalf("expected InvalidState after close, got %v (%T)", err, err)
	} else {
		invalid = inv
	}
	if invalid.Expected != "active" || invalid.Actual != "closed" {
		t.Fatalf("InvalidState = %+v, want expected=active actual=closed", invalid)
	}
}

func TestAuthorizationEnforcement(t *testing.T) {
	m := newTestManager()
	s, _ := m.Create(event.SessionID("/s/2"), "x")
	if err := s.SelectDevices(event.Pointer); err != nil {
		t.Fatalf("SelectDevices: %v", err)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	if err := s.SendEvent(event.KeyboardKeycode{Keycode: 30, State: event.Pressed}); err == nil {
		t.Fatal("expected DeviceNotAuthorized for keyboard")
	} else if dna, ok := err.(*rderr.DeviceNotAuthorized); !ok || dna.Kind != "keyboard" {
		t.Fatalf("err = %v, want DeviceNotAuthorized(keyboard)", err)
	}

	if err := s.SendEvent(event.TouchDown{Slot: 0, X: 1, Y: 1}); err == nil {
		t.Fatal("expected DeviceNotAuthorized for touchscreen")
	} else if dna, ok := err.(*rderr.DeviceNotAuthorized); !ok || dna.Kind != "touchscreen" {
		t.Fatalf("err = %v, want DeviceNotAuthorized(touchscreen)", err)
	}

	if err := s.SendEvent(event.PointerMotion{DX: 1, DY: 1}); err != nil {
		t.Fatalf("pointer motion should succeed: %v", err)
	}
	select {
	case d := <-m.CompositorBound():
		if _, ok := d.Event.(event.PointerMotion); !ok {
			t.Fatal("expected the pointer motion to be delivered")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for delivery")
	}
}

func TestIsolationBetweenSessions(t *testing.T) {
	m := newTestManager()
	a, _ := m.Create(event.SessionID("/a"), "x")
	b, _ := m.Create(event.SessionID("/b"), "x")
	a.SelectDevices(event.Pointer)
	a.Start()
	b.SelectDevices(event.Pointer)
	b.Start()

	if err := a.SendEvent(event.PointerMotion{DX: 1, DY: 1}); err != nil {
		t.Fatalf("SendEvent on /a: %v", err)
	}

	d := <-m.CompositorBound()
	if d.SessionID != "/a" {
		t.Fatalf("delivery tagged %q, want /a", d.SessionID)
	}
}

func TestCreateFailsAtSessionCap(t *testing.T) {
	m := NewManager(1, 4, 4)
	if _, err := m.Create(event.SessionID("/s/1"), "x"); err != nil {
		t.Fatalf("first Create: %v", err)
	}
	if _, err := m.Create(event.SessionID("/s/2"), "x"); err != rderr.ErrMaxSessionsReached {
		t.Fatalf("second Create err = %v, want ErrMaxSessionsReached", err)
	}
}

func TestCreateFailsOnDuplicateID(t *testing.T) {
	m := newTestManager()
	m.Create(event.SessionID("/s/1"), "x")
	if _, err := m.Create(event.SessionID("/s/1"), "y"); err != rderr.ErrSessionAlreadyExists {
		t.Fatalf("duplicate Create err = %v, want ErrSessionAlreadyExists", err)
	}
}

func TestDeviceClassFromTruncatesUnknownBits(t *testing.T) {
	devices := event.DeviceClassFrom(0xFFFFFFFF)
	if devices.Bits() != uint32(event.Keyboard|event.Pointer|event.Touchscreen) {
		t.Fatalf("truncated devices = %#x, want only the three known bits", devices.Bits())
	}
}

func TestStateTransitionsAreIllegalOutOfOrder(t *testing.T) {
	m := newTestManager()
	s, _ := m.Create(event.SessionID("/s/3"), "x")

	if err := s.Start(); err == nil {
		t.Fatal("Start from Created should fail")
	}
	s.SelectDevices(event.Pointer)
	if err := s.SelectDevices(event.Pointer); err == nil {
		t.Fatal("SelectDevices a second time should fail")
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	m := newTestManager()
	s, _ := m.Create(event.SessionID("/s/4"), "x")
	s.Close()
	s.Close() // must not panic
	if !s.IsClosed() {
		t.Fatal("session should report closed")
	}
}
