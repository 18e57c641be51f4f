// Package portal implements the transport-neutral façade other code
// calls into: it binds the session manager, the consent gateway and the
// configured operating mode together. Every operation returns a typed
// result and never panics.
package portal

import (
	"context"
	"time"

	"github.com/breeze-rmm/rdportal/internal/rdesktop/consent"
	"github.com/breeze-rmm/rdportal/internal/rdesktop/event"
	"github.com/breeze-rmm/rdportal/internal/rdesktop/input"
	"github.com/breeze-rmm/rdportal/internal/rdesktop/mode"
	"github.com/breeze-rmm/rdportal/internal/rdesktop/rderr"
	"github.com/breeze-rmm/rdportal/internal/rdesktop/session"
	"github.com/breeze-rmm/rdportal/internal/rdplog"
)

var log = rdplog.L("portal")

// Version is the advisory portal interface version.
const Version = 2

// AvailableDeviceTypes is the advisory default authorization set used
// when a client omits device_types on select_devices.
const AvailableDeviceTypes = event.Keyboard | event.Pointer

// Portal holds no session state itself: apart from the operating mode
// that SetMode replaces, all mutable state lives in the Manager and in
// each Session.
type Portal struct {
	sessions       *session.Manager
	gateway        consent.Gateway
	consentTimeout time.Duration
	currentMode    mode.Mode
	ingress        *input.Service
}

// New builds a Portal over an already-constructed session manager,
// consent gateway and compositor-side ingress, with the operating mode
// resolved once by the caller (typically via mode.FromCapabilities fed
// by a registry probe at startup). ingress mirrors each session's
// authorization into the compositor's own trust boundary as sessions
// are granted devices and closed; it must not be nil.
func New(sessions *session.Manager, gateway consent.Gateway, consentTimeout time.Duration, m mode.Mode, ingress *input.Service) *Portal {
	if consentTimeout <= 0 {
		consentTimeout = consent.DefaultTimeout
	}
	return &Portal{sessions: sessions, gateway: gateway, consentTimeout: consentTimeout, currentMode: m, ingress: ingress}
}

// SetMode updates the operating mode a subsequent StartSession reports,
// used when a full re-probe is requested.
func (p *Portal) SetMode(m mode.Mode) {
	p.currentMode = m
}

// CreateSessionResult is the response shape for create_session.
type CreateSessionResult struct {
	SessionID event.SessionID
}

func (p *Portal) CreateSession(sessionID event.SessionID, appID string) (CreateSessionResult, error) {
	if _, err := p.sessions.Create(sessionID, appID); err != nil {
		return CreateSessionResult{}, err
	}
	return CreateSessionResult{SessionID: sessionID}, nil
}

// SelectDevices presents the requested device classes to the consent
// gateway and, on approval, fixes the session's authorized set. A nil
// deviceTypes defaults to AvailableDeviceTypes; unknown bits are
// truncated before the request is ever shown to the user.
func (p *Portal) SelectDevices(ctx context.Context, sessionID event.SessionID, deviceTypes *uint32) error {
	s, ok := p.sessions.Get(sessionID)
	if !ok {
		return rderr.ErrSessionNotFound
	}

	wanted := AvailableDeviceTypes
	if deviceTypes != nil {
		wanted = event.DeviceClassFrom(*deviceTypes)
	}

	req := consent.Request{
		SessionID:   sessionID,
		AppID:       s.AppID(),
		DeviceTypes: wanted,
	}

	switch outcome := p.gateway.RequestConsent(ctx, req, p.consentTimeout); outcome {
	case consent.Granted:
		if err := s.SelectDevices(wanted); err != nil {
			return err
		}
		p.ingress.RegisterSession(sessionID, wanted)
		return nil
	case consent.Denied:
		return rderr.ErrPermissionDenied
	case consent.Cancelled:
		return rderr.ErrTransportCanceled
	default:
		return rderr.ErrConsentTimeout
	}
}

// StartSessionResult is the response shape for start_session.
type StartSessionResult struct {
	Devices          uint32
	Mode             uint32
	CaptureAvailable bool
	InputAvailable   bool
}

func (p *Portal) StartSession(sessionID event.SessionID, parentWindow *uint64) (StartSessionResult, error) {
	s, ok := p.sessions.Get(sessionID)
	if !ok {
		return StartSessionResult{}, rderr.ErrSessionNotFound
	}
	if err := s.Start(); err != nil {
		return StartSessionResult{}, err
	}

	log.Info("session started", "session", sessionID, "mode", p.currentMode)

	return StartSessionResult{
		Devices:          s.AuthorizedDevices().Bits(),
		Mode:             p.currentMode.Uint32(),
		CaptureAvailable: p.currentMode.HasCapture(),
		InputAvailable:   p.currentMode.HasInput(),
	}, nil
}

func (p *Portal) CloseSession(sessionID event.SessionID) error {
	if err := p.sessions.Close(sessionID); err != nil {
		return err
	}
	p.ingress.UnregisterSession(sessionID)
	return nil
}

func (p *Portal) lookup(sessionID event.SessionID) (*session.Session, error) {
	s, ok := p.sessions.Get(sessionID)
	if !ok {
		return nil, rderr.ErrSessionNotFound
	}
	return s, nil
}
