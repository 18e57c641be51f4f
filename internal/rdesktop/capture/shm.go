package capture

import (
	"context"
	"sync"
	"time"

	"github.com/breeze-rmm/rdportal/internal/rdesktop/rderr"
)

// ShmChannel is the abstracted shared-memory capture channel the
// compositor exposes. RequestCopy asks the compositor to fill buf with
// the current frame and signals completion (nil) or failure on the
// returned channel; the Shm tier owns the timeout, not the channel.
type ShmChannel interface {
	Dimensions() (width, height int)
	RequestCopy(buf []byte) <-chan error
}

// ShmConfig configures buffer pooling and the ready-signal timeout.
type ShmConfig struct {
	BufferPoolSize int
	Timeout        time.Duration
}

// DefaultShmConfig matches the spec's defaults: a pool of 2, 100ms
// timeout.
func DefaultShmConfig() ShmConfig {
	return ShmConfig{BufferPoolSize: 2, Timeout: 100 * time.Millisecond}
}

// ShmBackend captures via a shared-memory channel exposed by the
// compositor, bounded by a small reusable buffer pool.
type ShmBackend struct {
	caps Capabilities
	ch   ShmChannel
	cfg  ShmConfig

	*streamState

	captureMu sync.Mutex
	bufPool   chan []byte
}

// NewShmBackend constructs the Shm tier. cfg.BufferPoolSize is clamped to
// at least 2 as required by §4.2.
func NewShmBackend(ch ShmChannel, cfg ShmConfig) *ShmBackend {
	if cfg.BufferPoolSize < 2 {
		cfg.BufferPoolSize = 2
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultShmConfig().Timeout
	}

	b := &ShmBackend{
		caps:        shmCapabilities(),
		ch:          ch,
		cfg:         cfg,
		streamState: newStreamState(),
		bufPool:     make(chan []byte, cfg.BufferPoolSize),
	}

	w, h := ch.Dimensions()
	stride := w * Bgra8888.BytesPerPixel()
	for i := 0; i < cfg.BufferPoolSize; i++ {
		b.bufPool <- make([]byte, stride*h)
	}
	return b
}

func (b *ShmBackend) Capabilities() Capabilities {
	return b.caps
}

func (b *ShmBackend) getBuffer() []byte {
	select {
	case buf := <-b.bufPool:
		return buf
	default:
		w, h := b.ch.Dimensions()
		return make([]byte, w*h*Bgra8888.BytesPerPixel())
	}
}

func (b *ShmBackend) putBuffer(buf []byte) {
	select {
	case b.bufPool <- buf:
	default:
	}
}

func (b *ShmBackend) CaptureFrame(ctx context.Context) (*Frame, error) {
	b.captureMu.Lock()
	defer b.captureMu.Unlock()

	start := time.Now()
	w, h := b.ch.Dimensions()
	buf := b.getBuffer()

	select {
	case err := <-b.ch.RequestCopy(buf):
		if err != nil {
			b.putBuffer(buf)
			return nil, &rderr.CaptureError{Kind: rderr.CaptureInternal, Reason: err.Error()}
		}
	case <-time.After(b.cfg.Timeout):
		b.putBuffer(buf)
		return nil, rderr.NewCaptureTimeout(b.cfg.Timeout)
	case <-ctx.Done():
		b.putBuffer(buf)
		return nil, &rderr.CaptureError{Kind: rderr.CaptureSessionClosed, Reason: ctx.Err().Error()}
	}

	// Own copy so the pooled buffer can be reused for the next capture
	// while this frame is still in flight to subscribers.
	owned := make([]byte, len(buf))
	copy(owned, buf)
	b.putBuffer(buf)

	seq := b.nextSequence()
	meta := Metadata{
		Sequence:     seq,
		Width:        w,
		Height:       h,
		Stride:       w * Bgra8888.BytesPerPixel(),
		Format:       Bgra8888,
		CaptureStart: start,
		CaptureEnd:   time.Now(),
		Changed:      true,
	}
	return newFrame(meta, owned), nil
}

func (b *ShmBackend) StartStream(ctx context.Context, targetFPS int) (*Subscription, error) {
	fps := clampFPS(targetFPS, b.caps.MaxFPS)
	period := time.Second / time.Duration(fps)
	return b.start(ctx, period, b.CaptureFrame, "shm"), nil
}

func (b *ShmBackend) StopStream() {
	b.stop()
}
