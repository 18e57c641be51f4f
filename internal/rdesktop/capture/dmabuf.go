package capture

import (
	"context"
	"time"

	"github.com/breeze-rmm/rdportal/internal/rdesktop/rderr"
)

// DmabufChannel is the abstracted GPU buffer source: a real integration
// negotiates and hands back a DRM dmabuf handle out-of-band (a
// file-descriptor-like object), which is out of this package's scope per
// §6. What this tier owns is the format/modifier negotiation and the
// single-frame capture path.
type DmabufChannel interface {
	Dimensions() (width, height int)
	// AdvertisedFormats returns the compositor's offered (fourcc, modifier)
	// pairs in preference order.
	AdvertisedFormats() []FourccModifier
	CaptureFrame(negotiated FourccModifier) ([]byte, error)
}

// FourccModifier pairs a DRM fourcc with a buffer modifier.
type FourccModifier struct {
	Fourcc   uint32
	Modifier uint64
}

// DmabufBackend is the zero-copy GPU capture tier.
type DmabufBackend struct {
	caps          Capabilities
	ch            DmabufChannel
	negotiated    FourccModifier
	hasNegotiated bool

	*streamState
}

// NewDmabufBackend constructs the Dmabuf tier. The format is negotiated
// lazily against the compositor's own advertised list until Negotiate is
// called with a client preference.
func NewDmabufBackend(ch DmabufChannel) *DmabufBackend {
	return &DmabufBackend{
		caps:        dmabufCapabilities(),
		ch:          ch,
		streamState: newStreamState(),
	}
}

func (d *DmabufBackend) Capabilities() Capabilities {
	return d.caps
}

// Negotiate picks and records the format used by subsequent CaptureFrame
// calls, preferring the first overlap between clientPreferred and the
// compositor's advertised set.
func (d *DmabufBackend) Negotiate(clientPreferred []FourccModifier) FourccModifier {
	d.negotiated = NegotiateFormat(clientPreferred, d.ch.AdvertisedFormats())
	d.hasNegotiated = true
	return d.negotiated
}

// NegotiateFormat picks the first of the compositor's advertised formats
// that also appears in the client's preferred list; if the two sets don't
// overlap, it falls back to the first entry of either side (per §4.2,
// preferring the compositor's first advertised format).
func NegotiateFormat(clientPreferred, compositorAdvertised []FourccModifier) FourccModifier {
	for _, c := range compositorAdvertised {
		for _, p := range clientPreferred {
			if c.Fourcc == p.Fourcc && c.Modifier == p.Modifier {
				return c
			}
		}
	}
	if len(compositorAdvertised) > 0 {
		return compositorAdvertised[0]
	}
	if len(clientPreferred) > 0 {
		return clientPreferred[0]
	}
	return FourccModifier{}
}

func (d *DmabufBackend) CaptureFrame(ctx context.Context) (*Frame, error) {
	start := time.Now()
	w, h := d.ch.Dimensions()

	if !d.hasNegotiated {
		d.Negotiate(d.ch.AdvertisedFormats())
	}
	negotiated := d.negotiated

	pix, err := d.ch.CaptureFrame(negotiated)
	if err != nil {
		return nil, &rderr.CaptureError{Kind: rderr.CaptureInternal, Reason: err.Error()}
	}

	format, ok := FormatFromFourcc(negotiated.Fourcc)
	if !ok {
		return nil, &rderr.CaptureError{Kind: rderr.CaptureProtocolNotSupported, Reason: "compositor advertised an unrecognized fourcc"}
	}

	seq := d.nextSequence()
	meta := Metadata{
		Sequence:     seq,
		Width:        w,
		Height:       h,
		Stride:       w * format.BytesPerPixel(),
		Format:       format,
		CaptureStart: start,
		CaptureEnd:   time.Now(),
		Changed:      true,
	}
	return newFrame(meta, pix), nil
}

// StartStream always returns NotAvailable: streaming over Dmabuf belongs
// to the external shared-buffer transport that hands the GPU handle
// out-of-band, not to an in-process polling loop. Preserving this
// boundary rather than inventing a direct loop is deliberate.
func (d *DmabufBackend) StartStream(ctx context.Context, targetFPS int) (*Subscription, error) {
	return nil, rderr.NewCaptureNotAvailable("streaming requires external transport")
}

func (d *DmabufBackend) StopStream() {}

func (d *DmabufBackend) IsCapturing() bool {
	return false
}
