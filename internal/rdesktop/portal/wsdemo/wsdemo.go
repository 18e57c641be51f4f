// Package wsdemo is an optional, non-core transport that drives the
// portal façade over a JSON-per-frame websocket connection, grounded on
// the teacher's internal/websocket client (ping/pong keepalive, JSON
// command envelopes) but running the server side of that pattern
// instead. Nothing under internal/rdesktop/portal imports this package;
// it exists only to show how an external transport would drive the
// façade without smuggling a transport dependency into the core.
package wsdemo

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/breeze-rmm/rdportal/internal/rdesktop/event"
	"github.com/breeze-rmm/rdportal/internal/rdesktop/portal"
	"github.com/breeze-rmm/rdportal/internal/rdplog"
)

var log = rdplog.L("wsdemo")

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Request is one portal call per frame, JSON-encoded.
type Request struct {
	Op          string  `json:"op"`
	SessionID   string  `json:"session_id"`
	AppID       string  `json:"app_id,omitempty"`
	DeviceTypes *uint32 `json:"device_types,omitempty"`
	DX          float64 `json:"dx,omitempty"`
	DY          float64 `json:"dy,omitempty"`
	Button      int32   `json:"button,omitempty"`
	Keycode     int32   `json:"keycode,omitempty"`
	State       uint32  `json:"state,omitempty"`
}

// Response mirrors a Request's op back with a result or error string.
type Response struct {
	Op    string `json:"op"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// Server upgrades each incoming HTTP request to a websocket connection
// and relays JSON requests to a single shared Portal. It holds no
// per-session state of its own; the Portal and its Manager already own
// all of that.
type Server struct {
	portal *portal.Portal
}

func New(p *portal.Portal) *Server {
	return &Server{portal: p}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	go s.pingLoop(ctx, conn)

	for {
		var req Request
		if err := conn.ReadJSON(&req); err != nil {
			return
		}

		resp := s.dispatch(r.Context(), req)

		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(resp); err != nil {
			return
		}
	}
}

func (s *Server) pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *Server) dispatch(ctx context.Context, req Request) Response {
	sid := event.SessionID(req.SessionID)

	var err error
	switch req.Op {
	case "create_session":
		_, err = s.portal.CreateSession(sid, req.AppID)
	case "select_devices":
		err = s.portal.SelectDevices(ctx, sid, req.DeviceTypes)
	case "start_session":
		_, err = s.portal.StartSession(sid, nil)
	case "close_session":
		err = s.portal.CloseSession(sid)
	case "notify_pointer_motion":
		err = s.portal.NotifyPointerMotion(sid, req.DX, req.DY)
	case "notify_pointer_button":
		err = s.portal.NotifyPointerButton(sid, req.Button, req.State)
	case "notify_keyboard_keycode":
		err = s.portal.NotifyKeyboardKeycode(sid, req.Keycode, req.State)
	default:
		return Response{Op: req.Op, OK: false, Error: "unknown op " + req.Op}
	}

	if err != nil {
		return Response{Op: req.Op, OK: false, Error: err.Error()}
	}
	return Response{Op: req.Op, OK: true}
}
