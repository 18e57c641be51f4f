// Package consent implements the pluggable user-approval protocol a
// session must pass through before it may leave the Created state.
package consent

import (
	"context"
	"time"

	"github.com/breeze-rmm/rdportal/internal/rdesktop/event"
)

// Outcome is the result of a consent request.
type Outcome int

const (
	Granted Outcome = iota
	Denied
	Cancelled
	Timeout
)

func (o Outcome) String() string {
	switch o {
	case Granted:
		return "granted"
	case Denied:
		return "denied"
	case Cancelled:
		return "cancelled"
	default:
		return "timeout"
	}
}

// DefaultTimeout is the 30s default consent timeout.
const DefaultTimeout = 30 * time.Second

// Request describes what a client is asking the user to approve.
type Request struct {
	SessionID            event.SessionID
	AppID                string
	DeviceTypes          event.DeviceClass
	IncludeScreenCapture bool
	ParentWindow         *uint64
}

// Gateway is the abstract capability: given a Request and a timeout,
// yields exactly one Outcome. Only Granted may cause a session to
// transition past Created.
type Gateway interface {
	RequestConsent(ctx context.Context, req Request, timeout time.Duration) Outcome
}
