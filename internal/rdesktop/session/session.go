package session

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/breeze-rmm/rdportal/internal/rdesktop/event"
	"github.com/breeze-rmm/rdportal/internal/rdesktop/rderr"
	"github.com/breeze-rmm/rdportal/internal/rdplog"
)

var log = rdplog.L("session")

// Delivery is one validated event leaving a session's outgoing queue,
// tagged with the session it came from so the compositor-bound consumer
// can attribute it.
type Delivery struct {
	SessionID event.SessionID
	Event     event.InputEvent
}

// Session is a share-by-reference handle: interior fields are guarded by
// a single lock, and the handle itself is passed around by pointer so
// every holder observes the same state. The lock is never held across a
// channel send — it's released before the outgoing enqueue in SendEvent,
// the one documented critical section that touches both state and I/O.
type Session struct {
	id    event.SessionID
	appID string

	mu                sync.RWMutex
	state             State
	authorizedDevices event.DeviceClass

	createdAt  time.Time
	eventCount atomic.Uint64

	outgoing  chan Delivery
	closeOnce sync.Once
}

// newSession constructs a Session in state Created with an empty authorization
// set, with its own bounded outgoing queue. The manager is responsible
// for spawning the forwarder that drains it.
func newSession(id event.SessionID, appID string, queueDepth int) *Session {
	return &Session{
		id:        id,
		appID:     appID,
		state:     Created,
		createdAt: time.Now(),
		outgoing:  make(chan Delivery, queueDepth),
	}
}

func (s *Session) ID() event.SessionID { return s.id }
func (s *Session) AppID() string       { return s.appID }

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Session) AuthorizedDevices() event.DeviceClass {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authorizedDevices
}

func (s *Session) EventCount() uint64 {
	return s.eventCount.Load()
}

func (s *Session) Uptime() time.Duration {
	return time.Since(s.createdAt)
}

func (s *Session) IsClosed() bool {
	return s.State() == Closed
}

// Outgoing exposes the receive end of the session's outgoing queue for
// the forwarder goroutine. Nothing outside the owning manager should read
// it.
func (s *Session) Outgoing() <-chan Delivery {
	return s.outgoing
}

// SelectDevices transitions Created -> DevicesSelected, fixing the
// authorized set for the session's lifetime.
func (s *Session) SelectDevices(devices event.DeviceClass) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := requireState(s.state, Created); err != nil {
		return err
	}
	s.authorizedDevices = devices
	s.state = DevicesSelected
	return nil
}

// Start transitions DevicesSelected -> Active.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := requireState(s.state, DevicesSelected); err != nil {
		return err
	}
	s.state = Active
	return nil
}

// Close transitions to Closed from any state and is idempotent. It closes
// the outgoing queue exactly once, which in turn lets the forwarder
// goroutine exit.
func (s *Session) Close() {
	s.mu.Lock()
	s.state = Closed
	s.mu.Unlock()

	s.closeOnce.Do(func() {
		close(s.outgoing)
	})
}

// SendEvent implements the §4.5 admission algorithm: state check,
// per-class authorization check, enqueue, count. The lock guards only the
// state/authorization read; it is released before the channel send (the
// one documented critical section straddling state and I/O) so a slow
// consumer never blocks a holder of the session lock. A full queue
// applies ordinary channel back-pressure to the caller rather than
// dropping the event; a queue closed by a concurrent Close() surfaces as
// ErrChannelClosed instead of a panic.
func (s *Session) SendEvent(e event.InputEvent) (err error) {
	s.mu.RLock()
	state := s.state
	authorized := s.authorizedDevices
	s.mu.RUnlock()

	if state != Active {
		return &rderr.InvalidState{Expected: Active.String(), Actual: state.String()}
	}

	if e.IsKeyboard() && !authorized.HasKeyboard() {
		return &rderr.DeviceNotAuthorized{Kind: "keyboard"}
	}
	if e.IsPointer() && !authorized.HasPointer() {
		return &rderr.DeviceNotAuthorized{Kind: "pointer"}
	}
	if e.IsTouch() && !authorized.HasTouchscreen() {
		return &rderr.DeviceNotAuthorized{Kind: "touchscreen"}
	}

	defer func() {
		if r := recover(); r != nil {
			err = rderr.ErrChannelClosed
		}
	}()
	s.outgoing <- Delivery{SessionID: s.id, Event: e}
	s.eventCount.Add(1)
	return nil
}
