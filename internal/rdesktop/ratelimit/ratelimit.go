// Package ratelimit admits or rejects input events per session, bounding
// both instantaneous bursts and sustained throughput so one session can't
// starve the compositor's event loop. The two-axis algorithm (a
// timestamp ring for the sustained rate, a burst counter reset on its own
// clock) is grounded directly on the original rate limiter this module
// was distilled from.
package ratelimit

import (
	"sync"
	"time"

	"github.com/breeze-rmm/rdportal/internal/rdesktop/event"
	"github.com/breeze-rmm/rdportal/internal/rdesktop/rderr"
	"github.com/breeze-rmm/rdportal/internal/rdplog"
)

var log = rdplog.L("ratelimit")

// Config controls both tiers of admission control.
type Config struct {
	// MaxEventsPerSec is the sustained rate a session settles into once
	// its burst allowance is spent.
	MaxEventsPerSec int
	// BurstLimit is the maximum number of events a session may submit
	// before its burst counter resets.
	BurstLimit int
	// Window is both the sustained-rate averaging window and the basis
	// for the burst-reset interval (Window/10).
	Window time.Duration
}

// DefaultConfig matches the defaults shipped in rdpconfig.
func DefaultConfig() Config {
	return Config{
		MaxEventsPerSec: 500,
		BurstLimit:      50,
		Window:          time.Second,
	}
}

// sessionState is one session's admission bookkeeping: a ring of recent
// event timestamps for the sustained-rate computation, plus a burst
// counter that resets on its own independent clock.
type sessionState struct {
	eventTimes     []time.Time
	currentBurst   int
	burstResetTime time.Time
}

// cleanup drops timestamps older than now-window.
func (s *sessionState) cleanup(window time.Duration) {
	cutoff := time.Now().Add(-window)
	fresh := s.eventTimes[:0]
	for _, t := range s.eventTimes {
		if t.After(cutoff) {
			fresh = append(fresh, t)
		}
	}
	s.eventTimes = fresh
}

// maybeResetBurst zeroes the burst counter once more than window/10 has
// elapsed since the last reset, independent of the sustained-rate window.
func (s *sessionState) maybeResetBurst(window time.Duration) {
	if time.Since(s.burstResetTime) > window/10 {
		s.currentBurst = 0
		s.burstResetTime = time.Now()
	}
}

// eventsPerSec approximates the sustained rate from the surviving
// timestamp count over the window.
func (s *sessionState) eventsPerSec(window time.Duration) int {
	secs := window.Seconds()
	if secs == 0 {
		return 0
	}
	return int(float64(len(s.eventTimes)) / secs)
}

func (s *sessionState) recordEvent() {
	s.eventTimes = append(s.eventTimes, time.Now())
	s.currentBurst++
}

// Limiter tracks per-session admission state. Safe for concurrent use by
// multiple sessions; the whole map is guarded by a single lock, mirroring
// the writer-preferred map guard used throughout this module.
type Limiter struct {
	cfg Config

	mu       sync.Mutex
	sessions map[event.SessionID]*sessionState
}

// New builds a Limiter from cfg.
func New(cfg Config) *Limiter {
	return &Limiter{
		cfg:      cfg,
		sessions: make(map[event.SessionID]*sessionState),
	}
}

// Check implements the §4.3 admission algorithm: cleanup stale
// timestamps, maybe reset the burst counter, reject on burst overflow,
// reject on sustained-rate overflow, otherwise record the event. A
// rejection carries the counters that tripped it (burst count or
// sustained rate, and the corresponding limit) so callers can surface
// them verbatim.
func (l *Limiter) Check(id event.SessionID) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	st, ok := l.sessions[id]
	if !ok {
		st = &sessionState{burstResetTime: time.Now()}
		l.sessions[id] = st
	}

	st.cleanup(l.cfg.Window)
	st.maybeResetBurst(l.cfg.Window)

	if st.currentBurst >= l.cfg.BurstLimit {
		log.Warn("burst limit exceeded", "session", id, "burst", st.currentBurst, "limit", l.cfg.BurstLimit)
		return &rderr.RateLimitExceeded{EventsPerSec: st.currentBurst, Max: l.cfg.BurstLimit}
	}

	rate := st.eventsPerSec(l.cfg.Window)
	if rate >= l.cfg.MaxEventsPerSec {
		log.Warn("sustained rate limit exceeded", "session", id, "rate", rate, "limit", l.cfg.MaxEventsPerSec)
		return &rderr.RateLimitExceeded{EventsPerSec: rate, Max: l.cfg.MaxEventsPerSec}
	}

	st.recordEvent()
	return nil
}

// CurrentRate returns id's current events-per-second rate, or 0 if id has
// no tracked state.
func (l *Limiter) CurrentRate(id event.SessionID) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	st, ok := l.sessions[id]
	if !ok {
		return 0
	}
	return st.eventsPerSec(l.cfg.Window)
}

// RemoveSession discards all admission state for id, e.g. on session
// close.
func (l *Limiter) RemoveSession(id event.SessionID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.sessions, id)
}

// SessionCount returns the number of sessions with tracked state.
func (l *Limiter) SessionCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.sessions)
}
