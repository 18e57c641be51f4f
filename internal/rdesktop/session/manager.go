package session

import (
	"sync"

	"github.com/breeze-rmm/rdportal/internal/rdesktop/event"
	"github.com/breeze-rmm/rdportal/internal/rdesktop/rderr"
)

// Manager owns the SessionId -> Session mapping. The map is guarded by a
// writer-preferred lock: reads (Get, snapshots) take the read lock,
// mutation (Create, Close, CloseAll) takes the write lock.
type Manager struct {
	maxSessions int
	queueDepth  int

	mu       sync.RWMutex
	sessions map[event.SessionID]*Session

	// compositorBound is the many-producer (one per session's forwarder),
	// single-consumer channel that carries every session's validated
	// events toward the compositor-side service.
	compositorBound chan Delivery
}

// NewManager builds a Manager. maxSessions bounds concurrent sessions;
// queueDepth bounds each session's outgoing queue; compositorBoundDepth
// bounds the shared fan-in channel forwarders write to.
func NewManager(maxSessions, queueDepth, compositorBoundDepth int) *Manager {
	return &Manager{
		maxSessions:     maxSessions,
		queueDepth:      queueDepth,
		sessions:        make(map[event.SessionID]*Session),
		compositorBound: make(chan Delivery, compositorBoundDepth),
	}
}

// CompositorBound exposes the receive end of the shared fan-in channel.
func (m *Manager) CompositorBound() <-chan Delivery {
	return m.compositorBound
}

// Create installs a new session and spawns its forwarder, which drains
// the session's outgoing queue into the shared compositor-bound channel
// tagged with the session id (the tag travels with each Delivery already,
// since Session.SendEvent stamps it). The forwarder exits when the
// session's queue is closed.
func (m *Manager) Create(id event.SessionID, appID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.sessions) >= m.maxSessions {
		return nil, rderr.ErrMaxSessionsReached
	}
	if _, exists := m.sessions[id]; exists {
		return nil, rderr.ErrSessionAlreadyExists
	}

	s := newSession(id, appID, m.queueDepth)
	m.sessions[id] = s

	go m.forward(s)

	log.Info("session created", "session", id, "app_id", appID)
	return s, nil
}

func (m *Manager) forward(s *Session) {
	for delivery := range s.Outgoing() {
		m.compositorBound <- delivery
	}
}

// Get returns a snapshot lookup: the handle itself is shareable, so
// callers observe live state through it without re-locking the manager.
func (m *Manager) Get(id event.SessionID) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Close transitions the session to Closed and drops it from the map,
// which closes its queue and so its forwarder.
func (m *Manager) Close(id event.SessionID) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	if !ok {
		return rderr.ErrSessionNotFound
	}
	s.Close()
	log.Info("session closed", "session", id)
	return nil
}

// CloseAll tears every session down, used on process shutdown.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for id, s := range m.sessions {
		sessions = append(sessions, s)
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}

func (m *Manager) SessionCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *Manager) SessionIDs() []event.SessionID {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]event.SessionID, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	return ids
}
