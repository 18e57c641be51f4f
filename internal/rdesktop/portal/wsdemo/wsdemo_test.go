package wsdemo

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/breeze-rmm/rdportal/internal/rdesktop/consent"
	"github.com/breeze-rmm/rdportal/internal/rdesktop/input"
	"github.com/breeze-rmm/rdportal/internal/rdesktop/mode"
	"github.com/breeze-rmm/rdportal/internal/rdesktop/portal"
	"github.com/breeze-rmm/rdportal/internal/rdesktop/ratelimit"
	"github.com/breeze-rmm/rdportal/internal/rdesktop/session"
)

func newTestServer(t *testing.T) (*httptest.Server, func()) {
	t.Helper()
	mgr := session.NewManager(8, 8, 32)
	ingress := input.NewService(ratelimit.New(ratelimit.DefaultConfig()), 32)
	p := portal.New(mgr, consent.AutoApprove{}, time.Second, mode.Full, ingress)

	srv := httptest.NewServer(New(p))
	return srv, srv.Close
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func roundTrip(t *testing.T, conn *websocket.Conn, req Request) Response {
	t.Helper()
	if err := conn.WriteJSON(req); err != nil {
		t.Fatalf("write: %v", err)
	}
	var resp Response
	if err := conn.ReadJSON(&resp); err != nil {
		t.Fatalf("read: %v", err)
	}
	return resp
}

func TestFullSessionLifecycleOverWebsocket(t *testing.T) {
	srv, closeSrv := newTestServer(t)
	defer closeSrv()
	conn := dial(t, srv)
	defer conn.Close()

	if resp := roundTrip(t, conn, Request{Op: "create_session", SessionID: "/ws/1", AppID: "demo"}); !resp.OK {
		t.Fatalf("create_session failed: %s", resp.Error)
	}
	if resp := roundTrip(t, conn, Request{Op: "select_devices", SessionID: "/ws/1"}); !resp.OK {
		t.Fatalf("select_devices failed: %s", resp.Error)
	}
	if resp := roundTrip(t, conn, Request{Op: "start_session", SessionID: "/ws/1"}); !resp.OK {
		t.Fatalf("start_session failed: %s", resp.Error)
	}
	if resp := roundTrip(t, conn, Request{Op: "notify_pointer_motion", SessionID: "/ws/1", DX: 1, DY: 2}); !resp.OK {
		t.Fatalf("notify_pointer_motion failed: %s", resp.Error)
	}
	if resp := roundTrip(t, conn, Request{Op: "close_session", SessionID: "/ws/1"}); !resp.OK {
		t.Fatalf("close_session failed: %s", resp.Error)
	}
}

func TestUnknownOpReturnsError(t *testing.T) {
	srv, closeSrv := newTestServer(t)
	defer closeSrv()
	conn := dial(t, srv)
	defer conn.Close()

	resp := roundTrip(t, conn, Request{Op: "frobnicate", SessionID: "/ws/1"})
	if resp.OK {
		t.Fatal("expected unknown op to fail")
	}
}

func TestNotifyBeforeCreateReturnsSessionNotFound(t *testing.T) {
	srv, closeSrv := newTestServer(t)
	defer closeSrv()
	conn := dial(t, srv)
	defer conn.Close()

	resp := roundTrip(t, conn, Request{Op: "notify_pointer_motion", SessionID: "/ws/missing"})
	if resp.OK {
		t.Fatal("expected notify on unknown session to fail")
	}
}
