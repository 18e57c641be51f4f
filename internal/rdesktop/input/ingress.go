// Package input implements the compositor-side trust-boundary ingress
// (§4.7) and the virtual-input sink contract (§4.8) the dispatch loop
// calls into. The Portal runs in one trust domain, the compositor in
// another; this package is the compositor-side mirror that never trusts
// anything the wire claims about a session's authorization.
package input

import (
	"sync"
	"time"

	"github.com/breeze-rmm/rdportal/internal/rdesktop/event"
	"github.com/breeze-rmm/rdportal/internal/rdesktop/ratelimit"
	"github.com/breeze-rmm/rdportal/internal/rdesktop/rderr"
	"github.com/breeze-rmm/rdportal/internal/rdplog"
)

var log = rdplog.L("input")

// Wrapped is an event crossing the trust boundary, tagged with its
// session and arrival time.
type Wrapped struct {
	SessionID event.SessionID
	Event     event.InputEvent
	Arrival   time.Time
}

type authEntry struct {
	authorized event.DeviceClass
	active     bool
}

// Service is the compositor-side mirror of the Portal: it owns its own
// session_path -> {authorized_devices, active} map, registered and
// unregistered explicitly by the Portal as sessions start and stop, and
// re-validates every inject call against it rather than trusting the
// wire.
type Service struct {
	mu       sync.RWMutex
	sessions map[event.SessionID]*authEntry

	limiter *ratelimit.Limiter
	sink    chan Wrapped
}

// NewService builds a Service. sinkDepth bounds the channel the
// dispatch loop consumes; a full channel applies back-pressure to
// Inject rather than dropping events.
func NewService(limiter *ratelimit.Limiter, sinkDepth int) *Service {
	return &Service{
		sessions: make(map[event.SessionID]*authEntry),
		limiter:  limiter,
		sink:     make(chan Wrapped, sinkDepth),
	}
}

// Events exposes the channel the dispatch loop consumes.
func (s *Service) Events() <-chan Wrapped {
	return s.sink
}

// RegisterSession installs authorization state for a session the Portal
// has just started.
func (s *Service) RegisterSession(path event.SessionID, authorizedDevices event.DeviceClass) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[path] = &authEntry{authorized: authorizedDevices, active: true}
}

// UnregisterSession drops a session's authorization state and evicts its
// rate-limit bookkeeping.
func (s *Service) UnregisterSession(path event.SessionID) {
	s.mu.Lock()
	delete(s.sessions, path)
	s.mu.Unlock()
	s.limiter.RemoveSession(path)
}

// Inject runs the §4.7 validation pipeline and, on success, enqueues the
// wrapped event for the dispatch loop: lookup, active check, device
// authorization, rate limiting, then enqueue.
func (s *Service) Inject(sessionID event.SessionID, e event.InputEvent) error {
	s.mu.RLock()
	entry, ok := s.sessions[sessionID]
	s.mu.RUnlock()

	if !ok {
		return rderr.ErrSessionNotFound
	}
	if !entry.active {
		return rderr.ErrSessionClosed
	}

	required := event.RequiredClass(e)
	if !entry.authorized.Has(required) {
		return &rderr.DeviceNotAuthorized{Kind: requiredClassName(e)}
	}

	if err := s.limiter.Check(sessionID); err != nil {
		return err
	}

	wrapped := Wrapped{SessionID: sessionID, Event: e, Arrival: time.Now()}

	select {
	case s.sink <- wrapped:
		return nil
	default:
		log.Warn("compositor ingress backpressure, sink channel full", "session", sessionID)
		return rderr.ErrBackpressure
	}
}

func requiredClassName(e event.InputEvent) string {
	switch {
	case e.IsKeyboard():
		return "keyboard"
	case e.IsTouch():
		return "touchscreen"
	default:
		return "pointer"
	}
}
