package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dial(t *testing.T, s *Server) (*websocket.Conn, *httptest.Server) {
	t.Helper()
	ts := httptest.NewServer(s)
	t.Cleanup(ts.Close)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	resp.Body.Close()
	t.Cleanup(func() { conn.Close() })
	return conn, ts
}

// roundTrip sends one request and waits for its reply.
func roundTrip(t *testing.T, conn *websocket.Conn, msg ClientMessage) ServerMessage {
	t.Helper()
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("write %+v: %v", msg, err)
	}
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var reply ServerMessage
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatalf("read reply to %+v: %v", msg, err)
	}
	return reply
}

func waitSessions(t *testing.T, s *Server, n int) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for s.SessionCount() != n {
		if time.Now().After(deadline) {
			t.Fatalf("SessionCount = %d, want %d", s.SessionCount(), n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestSessionNavigation(t *testing.T) {
	s := newTestServer(t, nil)
	conn, ts := dial(t, s)

	reply := roundTrip(t, conn, ClientMessage{Type: MsgReplace, To: "/"})
	if reply.Type != MsgMounted || reply.Route != "home" || reply.Location != "/home" {
		t.Fatalf("initial reply = %+v", reply)
	}
	if reply.Href != "/#/home" || reply.Direction != "none" {
		t.Errorf("initial href/direction = %q/%q", reply.Href, reply.Direction)
	}
	if !strings.Contains(reply.HTML, "page-home") {
		t.Errorf("home html = %q", reply.HTML)
	}

	reply = roundTrip(t, conn, ClientMessage{Type: MsgNavigate, To: "/product/42"})
	if reply.Type != MsgMounted || reply.Route != "product" || reply.Index != 3 {
		t.Fatalf("product reply = %+v", reply)
	}
	if reply.Direction != "forward" {
		t.Errorf("direction = %q, want forward", reply.Direction)
	}
	if !strings.Contains(reply.HTML, `data-id="42"`) {
		t.Errorf("product html = %q", reply.HTML)
	}

	reply = roundTrip(t, conn, ClientMessage{Type: MsgBack})
	if reply.Type != MsgMounted || reply.Route != "home" || reply.Direction != "back" {
		t.Fatalf("back reply = %+v", reply)
	}

	reply = roundTrip(t, conn, ClientMessage{Type: MsgForward})
	if reply.Route != "product" || reply.Direction != "forward" {
		t.Fatalf("forward reply = %+v", reply)
	}

	reply = roundTrip(t, conn, ClientMessage{Type: MsgSync, To: ts.URL + "/#/cart"})
	if reply.Type != MsgMounted || reply.Route != "cart" || reply.Direction != "back" {
		t.Fatalf("sync reply = %+v", reply)
	}

	reply = roundTrip(t, conn, ClientMessage{Type: MsgNavigate, To: "/nowhere"})
	if reply.Type != MsgUnresolved || reply.Location != "/nowhere" || reply.HTML != "" {
		t.Fatalf("unresolved reply = %+v", reply)
	}
}

func TestSessionErrors(t *testing.T) {
	s := newTestServer(t, nil)
	conn, _ := dial(t, s)

	reply := roundTrip(t, conn, ClientMessage{Type: MsgForward})
	if reply.Type != MsgError || reply.Error == nil || reply.Error.Code != "E206" {
		t.Fatalf("forward with no entry = %+v", reply)
	}

	reply = roundTrip(t, conn, ClientMessage{Type: MsgNavigate, To: "/../x"})
	if reply.Type != MsgError || reply.Error.Code != "E202" {
		t.Fatalf("invalid location = %+v", reply)
	}

	reply = roundTrip(t, conn, ClientMessage{Type: "teleport"})
	if reply.Type != MsgError || reply.Error.Code != "E400" {
		t.Fatalf("unknown type = %+v", reply)
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte("{not json")); err != nil {
		t.Fatal(err)
	}
	var bad ServerMessage
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&bad); err != nil {
		t.Fatal(err)
	}
	if bad.Type != MsgError || bad.Error.Code != "E400" {
		t.Fatalf("malformed message = %+v", bad)
	}
}

func TestSessionsAreIndependent(t *testing.T) {
	s := newTestServer(t, nil)
	a, _ := dial(t, s)
	b, _ := dial(t, s)

	roundTrip(t, a, ClientMessage{Type: MsgReplace, To: "/home"})
	roundTrip(t, a, ClientMessage{Type: MsgNavigate, To: "/about"})
	roundTrip(t, b, ClientMessage{Type: MsgReplace, To: "/home"})

	reply := roundTrip(t, b, ClientMessage{Type: MsgBack})
	if reply.Type != MsgError || reply.Error.Code != "E206" {
		t.Fatalf("second session saw first session's history: %+v", reply)
	}
	waitSessions(t, s, 2)
}

func TestShutdownClosesSessions(t *testing.T) {
	s := newTestServer(t, nil)
	conn, _ := dial(t, s)
	waitSessions(t, s, 1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, _, err := conn.ReadMessage()
	var closeErr *websocket.CloseError
	if !errors.As(err, &closeErr) || closeErr.Code != websocket.CloseGoingAway {
		t.Fatalf("read after shutdown = %v, want going-away close", err)
	}
	waitSessions(t, s, 0)

	// New sessions are refused once shutdown has begun.
	ts := httptest.NewServer(s)
	defer ts.Close()
	late, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer late.Close()
	if resp.StatusCode != http.StatusSwitchingProtocols {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	late.SetReadDeadline(time.Now().Add(5 * time.Second))
	if _, _, err := late.ReadMessage(); !websocket.IsCloseError(err, websocket.CloseGoingAway) {
		t.Fatalf("late session read = %v, want going-away close", err)
	}
}

func TestSpawnRefusedOnceClosed(t *testing.T) {
	sess := &Session{}

	done := make(chan struct{})
	if !sess.spawn(func() { close(done) }) {
		t.Fatal("spawn refused on an open session")
	}
	<-done
	sess.wg.Wait()

	sess.mu.Lock()
	sess.closed = true
	sess.mu.Unlock()

	if sess.spawn(func() { t.Error("spawned after close") }) {
		t.Fatal("spawn accepted on a closed session")
	}
	sess.wg.Wait()
}

func TestShutdownDuringMessageBurst(t *testing.T) {
	s := newTestServer(t, nil)
	conn, _ := dial(t, s)
	waitSessions(t, s, 1)

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for i := 0; i < 200; i++ {
			to := "/cart"
			if i%2 == 0 {
				to = "/product/" + strconv.Itoa(i)
			}
			if err := conn.WriteJSON(ClientMessage{Type: MsgNavigate, To: to}); err != nil {
				return
			}
		}
	}()
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	<-writerDone
	waitSessions(t, s, 0)
}
