package input

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/breeze-rmm/rdportal/internal/rdesktop/event"
	"github.com/breeze-rmm/rdportal/internal/rdesktop/ratelimit"
	"github.com/breeze-rmm/rdportal/internal/rdesktop/rderr"
)

func newTestService(sinkDepth int) *Service {
	return NewService(ratelimit.New(ratelimit.DefaultConfig()), sinkDepth)
}

func TestInjectRejectsUnknownSession(t *testing.T) {
	s := newTestService(4)

	err := s.Inject("/nope", event.PointerMotion{DX: 1})
	if !errors.Is(err, rderr.ErrSessionNotFound) {
		t.Fatalf("err = %v, want ErrSessionNotFound", err)
	}
}

func TestInjectRejectsUnregisteredSession(t *testing.T) {
	s := newTestService(4)
	s.RegisterSession("/s/1", event.Keyboard|event.Pointer)
	s.UnregisterSession("/s/1")

	err := s.Inject("/s/1", event.PointerMotion{DX: 1})
	if !errors.Is(err, rderr.ErrSessionNotFound) {
		t.Fatalf("err = %v, want ErrSessionNotFound after unregister", err)
	}
}

func TestInjectEnforcesDeviceAuthorization(t *testing.T) {
	s := newTestService(4)
	s.RegisterSession("/s/1", event.Pointer)

	if err := s.Inject("/s/1", event.KeyboardKeycode{Keycode: 30, State: event.Pressed}); err == nil {
		t.Fatal("expected DeviceNotAuthorized for keyboard event on pointer-only session")
	} else {
		var notAuth *rderr.DeviceNotAuthorized
		if !errors.As(err, &notAuth) || notAuth.Kind != "keyboard" {
			t.Fatalf("err = %v, want DeviceNotAuthorized{keyboard}", err)
		}
	}

	if err := s.Inject("/s/1", event.PointerMotion{DX: 1, DY: 1}); err != nil {
		t.Fatalf("authorized pointer event should be admitted: %v", err)
	}
}

func TestInjectEnqueuesWrappedEvent(t *testing.T) {
	s := newTestService(4)
	s.RegisterSession("/s/1", event.Keyboard|event.Pointer)

	if err := s.Inject("/s/1", event.PointerMotion{DX: 3, DY: 4}); err != nil {
		t.Fatalf("Inject: %v", err)
	}

	select {
	case w := <-s.Events():
		if w.SessionID != "/s/1" {
			t.Fatalf("SessionID = %q, want /s/1", w.SessionID)
		}
		pm, ok := w.Event.(event.PointerMotion)
		if !ok || pm.DX != 3 || pm.DY != 4 {
			t.Fatalf("Event = %+v, want PointerMotion{3,4}", w.Event)
		}
		if w.Arrival.IsZero() {
			t.Fatal("Arrival should be stamped")
		}
	default:
		t.Fatal("expected a wrapped event on the sink channel")
	}
}

func TestInjectSurfacesBackpressureWhenSinkFull(t *testing.T) {
	s := newTestService(1)
	s.RegisterSession("/s/1", event.Pointer)

	if err := s.Inject("/s/1", event.PointerMotion{DX: 1}); err != nil {
		t.Fatalf("first Inject: %v", err)
	}
	// The default limiter config's burst of 50 is generous enough that the
	// second Inject fails on backpressure, not on rate limiting.
	if err := s.Inject("/s/1", event.PointerMotion{DX: 2}); !errors.Is(err, rderr.ErrBackpressure) {
		t.Fatalf("err = %v, want ErrBackpressure with a full sink channel", err)
	}
}

func TestInjectEnforcesRateLimit(t *testing.T) {
	limiter := ratelimit.New(ratelimit.Config{BurstLimit: 1, Window: time.Minute, MaxEventsPerSec: 1000})
	s := NewService(limiter, 8)
	s.RegisterSession("/s/1", event.Pointer)

	if err := s.Inject("/s/1", event.PointerMotion{DX: 1}); err != nil {
		t.Fatalf("first event: %v", err)
	}

	var rateErr *rderr.RateLimitExceeded
	if err := s.Inject("/s/1", event.PointerMotion{DX: 1}); !errors.As(err, &rateErr) {
		t.Fatalf("err = %v, want RateLimitExceeded", err)
	}
	if rateErr.EventsPerSec != 1 || rateErr.Max != 1 {
		t.Fatalf("rejection should carry the real burst count and limit, got %+v", rateErr)
	}
}

func TestUnregisterResetsRateLimitState(t *testing.T) {
	limiter := ratelimit.New(ratelimit.Config{BurstLimit: 1, Window: time.Minute, MaxEventsPerSec: 1000})
	s := NewService(limiter, 8)
	s.RegisterSession("/s/1", event.Pointer)
	s.Inject("/s/1", event.PointerMotion{DX: 1})

	s.UnregisterSession("/s/1")
	s.RegisterSession("/s/1", event.Pointer)

	if err := s.Inject("/s/1", event.PointerMotion{DX: 1}); err != nil {
		t.Fatalf("event after re-register should be admitted fresh: %v", err)
	}
}

func TestDispatcherDeliversEachVariantToItsSinkMethod(t *testing.T) {
	s := newTestService(16)
	s.RegisterSession("/s/1", event.Keyboard|event.Pointer|event.Touchscreen)

	events := []event.InputEvent{
		event.PointerMotion{DX: 1, DY: 2},
		event.PointerMotionAbsolute{Stream: 7, X: 10, Y: 20},
		event.PointerButton{Button: 1, State: event.ButtonPressed},
		event.PointerAxis{DX: 0.5, DY: -0.5},
		event.PointerAxisDiscrete{Axis: event.Horizontal, Steps: 3},
		event.KeyboardKeycode{Keycode: 30, State: event.Pressed},
		event.KeyboardKeysym{Keysym: 97, State: event.Released},
		event.TouchDown{Stream: 2, Slot: 0, X: 1, Y: 1},
		event.TouchMotion{Stream: 2, Slot: 0, X: 2, Y: 2},
		event.TouchUp{Slot: 0},
	}
	for _, e := range events {
		if err := s.Inject("/s/1", e); err != nil {
			t.Fatalf("Inject(%T): %v", e, err)
		}
	}

	sink := NewRecordingSink()
	ctx, cancel := context.WithCancel(context.Background())
	d := NewDispatcher(s.Events(), sink)
	done := make(chan struct{})
	go func() {
		d.Run(ctx)
		close(done)
	}()

	deadline := time.After(time.Second)
	for {
		if len(sink.Calls()) == len(events) {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("dispatcher only delivered %d/%d events", len(sink.Calls()), len(events))
		case <-time.After(time.Millisecond):
		}
	}
	cancel()
	<-done

	calls := sink.Calls()
	wantMethods := []string{
		"NotifyPointerMotion",
		"NotifyPointerMotionAbsolute",
		"NotifyPointerButton",
		"NotifyPointerAxis",
		"NotifyPointerAxisDiscrete",
		"NotifyKeyboardKeycode",
		"NotifyKeyboardKeysym",
		"NotifyTouchDown",
		"NotifyTouchMotion",
		"NotifyTouchUp",
	}
	for i, want := range wantMethods {
		if calls[i].Method != want {
			t.Errorf("call %d method = %s, want %s", i, calls[i].Method, want)
		}
		if calls[i].SessionID != "/s/1" {
			t.Errorf("call %d session = %s, want /s/1", i, calls[i].SessionID)
		}
	}
}

func TestDispatcherStopsOnContextCancel(t *testing.T) {
	events := make(chan Wrapped)
	d := NewDispatcher(events, NewRecordingSink())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		d.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run should return promptly after ctx cancel")
	}
}
