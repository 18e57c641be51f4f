// Package capture implements the tiered screen-capture engine: runtime
// selection between a zero-copy GPU path, a shared-memory path and a
// CPU-copy path, each exposing the same capture contract and broadcast
// streaming model.
package capture

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/breeze-rmm/rdportal/internal/rdplog"
)

var log = rdplog.L("capture")

// Backend is the uniform contract every capture tier implements.
// Capabilities never touches a lock: each tier caches its descriptor at
// construction time, resolving the "blocking read in a synchronous
// context" hazard noted against the reference implementation.
type Backend interface {
	Capabilities() Capabilities
	CaptureFrame(ctx context.Context) (*Frame, error)
	StartStream(ctx context.Context, targetFPS int) (*Subscription, error)
	StopStream()
	IsCapturing() bool
}

// streamState is embedded by every tier that supports StartStream/
// StopStream, holding the bits common to all of them: the broadcast
// fan-out, the "keep ticking" flag checked every tick, and the loop's
// lifetime goroutine handle.
type streamState struct {
	broadcaster *broadcaster
	streaming   atomic.Bool
	stopOnce    sync.Once
	stopCh      chan struct{}
	wg          sync.WaitGroup

	seq atomic.Uint64

	// consecutiveFailures tracks back-to-back CaptureFrame errors during
	// streaming. The loop logs and continues rather than tearing the
	// stream down, mirroring the retry policy for transient per-frame
	// failures.
	consecutiveFailures atomic.Int32

	// failureLogLimiter throttles the per-tick failure warning to at most
	// once a second: a tier wedged at 60fps for minutes shouldn't write
	// 60 warnings a second to the log.
	failureLogLimiter rate.Sometimes
}

func newStreamState() *streamState {
	return &streamState{
		broadcaster:       newBroadcaster(),
		failureLogLimiter: rate.Sometimes{Interval: time.Second},
	}
}

func (s *streamState) IsCapturing() bool {
	return s.streaming.Load()
}

// start installs the broadcast subscription synchronously — before this
// call returns, not inside the spawned goroutine — so a caller that
// subscribes immediately after StartStream can never race the first
// published frame.
func (s *streamState) start(ctx context.Context, period time.Duration, capture func(context.Context) (*Frame, error), tierName string) *Subscription {
	sub := s.broadcaster.subscribe()

	if !s.streaming.CompareAndSwap(false, true) {
		return sub
	}

	s.stopCh = make(chan struct{})
	s.stopOnce = sync.Once{}

	s.wg.Add(1)
	go s.loop(ctx, period, capture, tierName)

	return sub
}

func (s *streamState) loop(ctx context.Context, period time.Duration, capture func(context.Context) (*Frame, error), tierName string) {
	defer s.wg.Done()
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.streaming.Store(false)
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			if !s.streaming.Load() {
				return
			}
			frame, err := capture(ctx)
			if err != nil {
				n := s.consecutiveFailures.Add(1)
				s.failureLogLimiter.Do(func() {
					log.Warn("capture tick failed, continuing", "tier", tierName, "consecutive_failures", n, "error", err)
				})
				continue
			}
			s.consecutiveFailures.Store(0)
			if !frame.Changed {
				continue
			}
			if s.broadcaster.subscriberCount() == 0 {
				continue
			}
			s.broadcaster.publish(frame)
		}
	}
}

func (s *streamState) stop() {
	s.stopOnce.Do(func() {
		if s.stopCh != nil {
			close(s.stopCh)
		}
	})
	s.streaming.Store(false)
	s.wg.Wait()
	s.broadcaster.closeAll()
}

func (s *streamState) nextSequence() uint64 {
	return s.seq.Add(1) - 1
}
