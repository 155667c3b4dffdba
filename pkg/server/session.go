package server

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	apperrors "github.com/vango-dev/mall/internal/errors"
	mallmw "github.com/vango-dev/mall/pkg/middleware"
	"github.com/vango-dev/mall/pkg/router"
)

// Client message types.
const (
	MsgNavigate = "navigate"
	MsgReplace  = "replace"
	MsgBack     = "back"
	MsgForward  = "forward"
	MsgSync     = "sync"
)

// Server message types.
const (
	MsgMounted    = "mounted"
	MsgUnresolved = "unresolved"
	MsgError      = "error"
)

// ClientMessage is a navigation request sent by the shell.
type ClientMessage struct {
	Type string `json:"type"`

	// To is the target location, or the full page URL for sync.
	To string `json:"to,omitempty"`
}

// ServerMessage reports the outcome of one navigation.
type ServerMessage struct {
	Type      string               `json:"type"`
	ID        uint64               `json:"id,omitempty"`
	Route     string               `json:"route,omitempty"`
	Location  string               `json:"location,omitempty"`
	Href      string               `json:"href,omitempty"`
	Direction string               `json:"direction,omitempty"`
	Index     int                  `json:"index,omitempty"`
	HTML      string               `json:"html,omitempty"`
	Error     *apperrors.MallError `json:"error,omitempty"`
}

var sessionSeq atomic.Uint64

// Session is one WebSocket connection with its own router and history
// over the server's shared route table.
type Session struct {
	ID string

	server *Server
	conn   *websocket.Conn
	router *router.Router
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	writeMu sync.Mutex

	// mu guards closed; wg.Add only happens while closed is false.
	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup

	opened    bool
	closeOnce sync.Once
}

// HandleWebSocket upgrades the request and runs a navigation session
// until the client disconnects.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		s.logger.Warn("websocket upgrade failed", "error", err)
		mallmw.RecordWebSocketError("upgrade")
		return
	}

	id := middleware.GetReqID(r.Context())
	if id == "" {
		id = "ws-" + time.Now().Format("150405") + "-" + strconv.FormatUint(sessionSeq.Add(1), 10)
	}
	logger := s.logger.With("session", id)

	rt, err := s.newRouter(logger)
	if err != nil {
		logger.Error("router setup failed", "error", err)
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "router unavailable"))
		conn.Close()
		return
	}

	ctx, cancel := context.WithCancel(context.WithoutCancel(r.Context()))
	sess := &Session{
		ID:     id,
		server: s,
		conn:   conn,
		router: rt,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}

	if !s.addSession(sess) {
		sess.Close(websocket.CloseGoingAway, "server shutting down")
		return
	}
	sess.opened = true
	mallmw.RecordSessionOpen()
	logger.Debug("session opened")

	go sess.heartbeat()
	sess.readLoop()
}

// Router returns the session's router.
func (sess *Session) Router() *router.Router {
	return sess.router
}

// readLoop reads navigation requests until the connection closes. Each
// request runs on its own goroutine so a slow view load never blocks a
// newer navigation; the router supersedes the older one.
func (sess *Session) readLoop() {
	defer sess.Close(websocket.CloseNormalClosure, "")

	cfg := sess.server.config
	sess.conn.SetReadLimit(cfg.MaxMessageSize)
	sess.conn.SetReadDeadline(time.Now().Add(cfg.SessionReadTimeout))
	sess.conn.SetPongHandler(func(string) error {
		return sess.conn.SetReadDeadline(time.Now().Add(cfg.SessionReadTimeout))
	})

	for {
		_, data, err := sess.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				sess.logger.Warn("read error", "error", err)
				mallmw.RecordWebSocketError("read")
			}
			return
		}
		sess.conn.SetReadDeadline(time.Now().Add(cfg.SessionReadTimeout))

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			mallmw.RecordWebSocketError("decode")
			sess.send(ServerMessage{
				Type:  MsgError,
				Error: apperrors.New("E400").WithDetail("message is not valid JSON").Wrap(err),
			})
			continue
		}
		mallmw.RecordMessage(msg.Type)

		if !sess.spawn(func() { sess.handle(msg) }) {
			return
		}
	}
}

// spawn runs fn on its own goroutine tracked by wg. It reports false once
// the session is closing.
func (sess *Session) spawn(fn func()) bool {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.closed {
		return false
	}
	sess.wg.Add(1)
	go func() {
		defer sess.wg.Done()
		fn()
	}()
	return true
}

func (sess *Session) handle(msg ClientMessage) {
	ctx := sess.ctx

	var (
		nav *router.Navigation
		err error
	)
	switch msg.Type {
	case MsgNavigate:
		nav, err = sess.router.Push(ctx, msg.To)
	case MsgReplace:
		nav, err = sess.router.Replace(ctx, msg.To)
	case MsgBack:
		nav, err = sess.router.Back(ctx)
	case MsgForward:
		nav, err = sess.router.Forward(ctx)
	case MsgSync:
		nav, err = sess.router.Sync(ctx, msg.To)
	default:
		sess.send(ServerMessage{
			Type:  MsgError,
			Error: apperrors.New("E400").WithDetail("unknown message type " + msg.Type),
		})
		return
	}

	if ctx.Err() != nil {
		return
	}
	sess.reply(nav, err)
}

func (sess *Session) reply(nav *router.Navigation, err error) {
	if nav == nil {
		sess.send(ServerMessage{Type: MsgError, Error: apperrors.Classify(err)})
		return
	}

	hist := sess.router.History()
	msg := ServerMessage{
		ID:        nav.ID,
		Location:  nav.To.FullPath,
		Href:      hist.Href(nav.To.FullPath),
		Direction: string(nav.Direction),
	}

	switch nav.State {
	case router.StateSuperseded:
		sess.logger.Debug("navigation superseded", "id", nav.ID, "to", nav.Target())
		return

	case router.StateUnresolved:
		msg.Type = MsgUnresolved

	case router.StateMounted:
		var buf bytes.Buffer
		if err := nav.View.Render(sess.ctx, &buf, nav.To.ViewData(nav.Direction)); err != nil {
			msg.Type = MsgError
			msg.Error = apperrors.New("E302").Wrap(err)
			break
		}
		msg.Type = MsgMounted
		msg.Route = nav.To.Name
		msg.Index = nav.To.Meta.Index
		msg.HTML = buf.String()

	default:
		msg.Type = MsgError
		msg.Error = apperrors.Classify(err)
	}

	sess.send(msg)
}

// send writes one message. Writes are serialized since navigations
// finish on their own goroutines.
func (sess *Session) send(msg ServerMessage) {
	sess.writeMu.Lock()
	defer sess.writeMu.Unlock()

	sess.conn.SetWriteDeadline(time.Now().Add(sess.server.config.WriteWait))
	if err := sess.conn.WriteJSON(msg); err != nil {
		if sess.ctx.Err() == nil {
			sess.logger.Warn("write error", "error", err)
			mallmw.RecordWebSocketError("write")
		}
	}
}

func (sess *Session) heartbeat() {
	ticker := time.NewTicker(sess.server.config.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-sess.ctx.Done():
			return
		case <-ticker.C:
			sess.writeMu.Lock()
			err := sess.conn.WriteControl(websocket.PingMessage, nil,
				time.Now().Add(sess.server.config.WriteWait))
			sess.writeMu.Unlock()
			if err != nil {
				sess.logger.Debug("ping failed", "error", err)
				sess.Close(websocket.CloseGoingAway, "")
				return
			}
		}
	}
}

// Close cancels in-flight navigations, sends a close frame and releases
// the connection. It is safe to call more than once.
func (sess *Session) Close(code int, reason string) {
	sess.closeOnce.Do(func() {
		sess.cancel()

		sess.writeMu.Lock()
		sess.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(code, reason),
			time.Now().Add(time.Second))
		sess.writeMu.Unlock()
		sess.conn.Close()

		sess.mu.Lock()
		sess.closed = true
		sess.mu.Unlock()
		sess.wg.Wait()
		if sess.opened {
			sess.server.removeSession(sess)
			mallmw.RecordSessionClose()
			sess.logger.Debug("session closed")
		}
	})
}
