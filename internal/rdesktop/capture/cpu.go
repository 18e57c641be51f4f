package capture

import (
	"context"
	"sync"
	"time"

	"github.com/breeze-rmm/rdportal/internal/rdesktop/rderr"
)

// CpuBackend is always available: it never depends on a display-server
// capability, only on being able to read from an (abstracted)
// framebuffer. Outside of tests, NewCpuBackend's fb argument plugs in the
// real source; the default framebuffer renders a deterministic animated
// pattern, which is enough to exercise the rest of the pipeline.
type CpuBackend struct {
	caps Capabilities
	fb   Framebuffer

	*streamState

	captureMu sync.Mutex
	differ    *frameDiffer
}

// Framebuffer is the abstracted pixel source the Cpu tier reads from.
// Real integrations back this with whatever local pixel source they have
// (an X11 XGetImage, a memfd the compositor writes into, ...); tests use
// the deterministic animatedFramebuffer below.
type Framebuffer interface {
	Dimensions() (width, height int)
	ReadFrame(dst []byte) error
}

// NewCpuBackend constructs the Cpu tier over fb. A nil fb defaults to the
// deterministic animated pattern.
func NewCpuBackend(fb Framebuffer) *CpuBackend {
	if fb == nil {
		fb = &animatedFramebuffer{width: 640, height: 480}
	}
	return &CpuBackend{
		caps:        cpuCapabilities(),
		fb:          fb,
		streamState: newStreamState(),
		differ:      newFrameDiffer(),
	}
}

func (c *CpuBackend) Capabilities() Capabilities {
	return c.caps
}

func (c *CpuBackend) CaptureFrame(ctx context.Context) (*Frame, error) {
	c.captureMu.Lock()
	defer c.captureMu.Unlock()

	start := time.Now()
	w, h := c.fb.Dimensions()
	format := Rgba8888
	stride := w * format.BytesPerPixel()
	pix := make([]byte, stride*h)

	if err := c.fb.ReadFrame(pix); err != nil {
		return nil, &rderr.CaptureError{Kind: rderr.CaptureInternal, Reason: err.Error()}
	}

	seq := c.nextSequence()
	meta := Metadata{
		Sequence:     seq,
		Width:        w,
		Height:       h,
		Stride:       stride,
		Format:       format,
		CaptureStart: start,
		CaptureEnd:   time.Now(),
		Changed:      true,
	}
	return newFrame(meta, pix), nil
}

func (c *CpuBackend) StartStream(ctx context.Context, targetFPS int) (*Subscription, error) {
	fps := clampFPS(targetFPS, c.caps.MaxFPS)
	period := time.Second / time.Duration(fps)
	return c.start(ctx, period, c.captureWithDiffHint, "cpu"), nil
}

// captureWithDiffHint wraps CaptureFrame with the optional
// frame-differencing hint: a frame whose sampled hash matches the
// previous one still gets produced and sequenced, but its Changed field
// comes back false, and the streaming loop skips delivering it rather
// than bursting the same pixels out to every subscriber.
func (c *CpuBackend) captureWithDiffHint(ctx context.Context) (*Frame, error) {
	frame, err := c.CaptureFrame(ctx)
	if err != nil {
		return nil, err
	}
	frame.Changed = c.differ.HasChanged(frame.Pixels)
	return frame, nil
}

func (c *CpuBackend) StopStream() {
	c.stop()
}

func clampFPS(target, max int) int {
	if target <= 0 {
		return max
	}
	if target > max {
		return max
	}
	return target
}

// animatedFramebuffer renders a deterministic diagonal-stripe pattern
// that shifts one pixel per frame, good enough to exercise the capture
// and frame-diff pipeline without a real display source.
type animatedFramebuffer struct {
	width, height int
	tick          int
}

func (a *animatedFramebuffer) Dimensions() (int, int) {
	return a.width, a.height
}

func (a *animatedFramebuffer) ReadFrame(dst []byte) error {
	offset := a.tick % 256
	a.tick++
	for y := 0; y < a.height; y++ {
		for x := 0; x < a.width; x++ {
			i := (y*a.width + x) * 4
			v := byte((x + y + offset) % 256)
			dst[i], dst[i+1], dst[i+2], dst[i+3] = v, v, v, 0xFF
		}
	}
	return nil
}
