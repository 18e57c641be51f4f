// Package rderr holds the small, closed error taxonomy shared across the
// session, portal, input and capture packages, so callers can
// errors.As/Is against a single vocabulary instead of each package
// growing its own incompatible sentinel set.
package rderr

import (
	"errors"
	"fmt"
	"time"
)

// Top-level sentinels.
var (
	ErrChannelClosed = errors.New("rdesktop: channel closed")
	ErrInternal      = errors.New("rdesktop: internal error")
)

// Session errors.
var (
	ErrSessionNotFound      = errors.New("rdesktop: session not found")
	ErrSessionAlreadyExists = errors.New("rdesktop: session already exists")
	ErrSessionUnauthorized  = errors.New("rdesktop: session unauthorized")
	ErrSessionClosed        = errors.New("rdesktop: session closed")
	ErrMaxSessionsReached   = errors.New("rdesktop: maximum sessions reached")
)

// InvalidState reports an illegal session state transition or operation.
type InvalidState struct {
	Expected string
	Actual   string
}

func (e *InvalidState) Error() string {
	return fmt.Sprintf("invalid state: expected %s, got %s", e.Expected, e.Actual)
}

// Input errors.

// DeviceNotAuthorized reports that a session tried to inject an event for
// a device class it was never granted.
type DeviceNotAuthorized struct {
	Kind string // "keyboard", "pointer", "touchscreen"
}

func (e *DeviceNotAuthorized) Error() string {
	return fmt.Sprintf("device not authorized: %s", e.Kind)
}

// DeviceNotAvailable reports that no backend can service the given device
// class at all, independent of authorization.
type DeviceNotAvailable struct {
	Kind string
}

func (e *DeviceNotAvailable) Error() string {
	return fmt.Sprintf("device not available: %s", e.Kind)
}

// RateLimitExceeded reports that a session exceeded its admission budget.
type RateLimitExceeded struct {
	EventsPerSec int
	Max          int
}

func (e *RateLimitExceeded) Error() string {
	return fmt.Sprintf("rate limit exceeded: %d/%d events per sec", e.EventsPerSec, e.Max)
}

// InvalidCoordinates reports an out-of-range absolute pointer/touch
// coordinate.
type InvalidCoordinates struct {
	X, Y float64
}

func (e *InvalidCoordinates) Error() string {
	return fmt.Sprintf("invalid coordinates: (%.2f, %.2f)", e.X, e.Y)
}

// StreamNotFound reports an absolute-motion or touch event referencing a
// capture stream id the compositor doesn't recognize.
type StreamNotFound struct {
	StreamID uint32
}

func (e *StreamNotFound) Error() string {
	return fmt.Sprintf("stream not found: %d", e.StreamID)
}

// Transport errors (opaque at the core; a wire transport maps its own
// failures onto these).
var (
	ErrConnectionFailed  = errors.New("rdesktop: transport connection failed")
	ErrMethodCallFailed  = errors.New("rdesktop: transport method call failed")
	ErrBadResponse       = errors.New("rdesktop: transport returned a bad response")
	ErrTransportCanceled = errors.New("rdesktop: transport call canceled")
	ErrPermissionDenied  = errors.New("rdesktop: permission denied")
	ErrConsentTimeout    = errors.New("rdesktop: consent request timed out")
)

// ErrBackpressure reports that the compositor-side ingress queue was full
// when an inject call tried to enqueue an event. It is transient: the
// caller may retry.
var ErrBackpressure = errors.New("rdesktop: compositor ingress backpressure")

// Capture errors.

// CaptureErrorKind classifies a CaptureError.
type CaptureErrorKind int

const (
	CaptureNotAvailable CaptureErrorKind = iota
	CaptureProtocolNotSupported
	CaptureBufferAllocation
	CaptureTimeout
	CaptureSessionClosed
	CaptureInternal
)

func (k CaptureErrorKind) String() string {
	switch k {
	case CaptureNotAvailable:
		return "not_available"
	case CaptureProtocolNotSupported:
		return "protocol_not_supported"
	case CaptureBufferAllocation:
		return "buffer_allocation"
	case CaptureTimeout:
		return "timeout"
	case CaptureSessionClosed:
		return "session_closed"
	default:
		return "internal"
	}
}

// CaptureError is the single error type every capture tier returns.
type CaptureError struct {
	Kind     CaptureErrorKind
	Reason   string
	Duration time.Duration // only meaningful for CaptureTimeout
}

func (e *CaptureError) Error() string {
	if e.Kind == CaptureTimeout {
		return fmt.Sprintf("capture %s after %s: %s", e.Kind, e.Duration, e.Reason)
	}
	return fmt.Sprintf("capture %s: %s", e.Kind, e.Reason)
}

// NewCaptureTimeout builds a CaptureTimeout error.
func NewCaptureTimeout(d time.Duration) *CaptureError {
	return &CaptureError{Kind: CaptureTimeout, Reason: "capture did not complete in time", Duration: d}
}

// NewCaptureNotAvailable builds a CaptureNotAvailable error with reason.
func NewCaptureNotAvailable(reason string) *CaptureError {
	return &CaptureError{Kind: CaptureNotAvailable, Reason: reason}
}
