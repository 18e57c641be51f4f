package capture

import "time"

// Metadata describes one captured frame. Invariants enforced by every
// tier that constructs one: Stride >= Width*Format.BytesPerPixel(), and
// CaptureEnd is never before CaptureStart.
type Metadata struct {
	Sequence     uint64
	Width        int
	Height       int
	Stride       int
	Format       FrameFormat
	CaptureStart time.Time
	CaptureEnd   time.Time
	SourceNode   *uint32 // Dmabuf node id, nil for Cpu/Shm
	OutputIndex  uint32

	// Changed is the §4.2 frame-differencing hint: false means the
	// producing tier's differ judged this frame identical to the last
	// one it sampled, and the streaming loop may skip delivering it.
	// Tiers that don't run a differ always report true.
	Changed bool
}

// Frame is a captured image: metadata plus a shared-ownership handle to
// the pixel bytes. Go's garbage collector is the reference count — any
// number of subscribers can hold the same *Frame and its Pixels slice
// without copying; the bytes are freed once the last holder drops it.
type Frame struct {
	Metadata
	Pixels []byte
}

// newFrame validates the stride/timing invariants and returns a Frame, or
// panics if a tier implementation violates its own contract. Callers
// outside this package never construct frames directly.
func newFrame(meta Metadata, pixels []byte) *Frame {
	if meta.Stride < meta.Width*meta.Format.BytesPerPixel() {
		panic("capture: stride shorter than width*bytes_per_pixel")
	}
	if meta.CaptureEnd.Before(meta.CaptureStart) {
		panic("capture: capture_end before capture_start")
	}
	return &Frame{Metadata: meta, Pixels: pixels}
}

func (f *Frame) Width() int          { return f.Metadata.Width }
func (f *Frame) Height() int         { return f.Metadata.Height }
func (f *Frame) Format() FrameFormat { return f.Metadata.Format }
func (f *Frame) Sequence() uint64    { return f.Metadata.Sequence }

// Age returns how long ago this frame finished capturing.
func (f *Frame) Age() time.Duration {
	return time.Since(f.Metadata.CaptureEnd)
}
