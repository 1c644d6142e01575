package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	appsession "roulette-oracle/internal/app/session"
	"roulette-oracle/internal/stream"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	sendQueue  = 16
	maxMessage = 4096
)

type Client struct {
	conn    *websocket.Conn
	session *appsession.Session

	mu     sync.Mutex
	send   chan []byte
	closed bool
}

// enqueue drops the frame when the client is gone or too slow.
func (c *Client) enqueue(v any) bool {
	b, err := json.Marshal(v)
	if err != nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- b:
		return true
	default:
		return false
	}
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

type Server struct {
	mgr      *appsession.Manager
	upgrader websocket.Upgrader
}

func NewServer(mgr *appsession.Manager) *Server {
	return &Server{
		mgr:      mgr,
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
	}
}

// HandleWS attaches a websocket to /ws/sessions/{session_id}. The client
// can record spins over the socket and receives an update for every change.
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	sess, err := s.mgr.Get(r.Context(), chi.URLParam(r, "session_id"))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, appsession.ErrNotFound) {
			status = http.StatusNotFound
		}
		http.Error(w, "session_not_found", status)
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	c := &Client{conn: conn, session: sess, send: make(chan []byte, sendQueue)}
	events, cancel := sess.Events().Subscribe()

	go s.writeLoop(c)
	go s.pump(c, events)
	c.enqueue(Hello{Type: "hello", ProtocolVersion: ProtocolVersion, Overview: sess.Overview()})
	log.Info().Str("session_id", sess.ID).Str("remote", r.RemoteAddr).Msg("ws client attached")

	s.readLoop(c)
	cancel()
	log.Info().Str("session_id", sess.ID).Msg("ws client detached")
}

func (s *Server) readLoop(c *Client) {
	defer func() {
		c.close()
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessage)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		s.handleCommand(context.Background(), c, msg)
	}
}

// pump forwards session events until the subscription ends. A closed
// subscription means the session was deleted.
func (s *Server) pump(c *Client, events <-chan stream.Event) {
	for ev := range events {
		c.enqueue(Update{Type: "update", ProtocolVersion: ProtocolVersion, Event: ev, Overview: c.session.Overview()})
	}
	if c.enqueue(Closed{Type: "closed", ProtocolVersion: ProtocolVersion, Reason: "session_closed"}) {
		c.close()
	}
}

func (s *Server) writeLoop(c *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *Server) handleCommand(ctx context.Context, c *Client, msg []byte) {
	var cmd Command
	if err := json.Unmarshal(msg, &cmd); err != nil {
		c.enqueue(result(cmd.RequestID, "invalid_json"))
		return
	}
	if len(cmd.RequestID) > maxRequestIDLen {
		c.enqueue(result(cmd.RequestID, "invalid_request_id"))
		return
	}

	var (
		ch  appsession.Change
		err error
	)
	switch cmd.Type {
	case MsgPing:
		c.enqueue(Result{Type: "pong", ProtocolVersion: ProtocolVersion, RequestID: cmd.RequestID, Ok: true})
		return
	case MsgSpin:
		if cmd.Number == nil {
			c.enqueue(result(cmd.RequestID, "invalid_outcome"))
			return
		}
		ch, err = c.session.Append(ctx, *cmd.Number)
	case MsgUndo:
		ch, err = c.session.Undo(ctx)
	case MsgRemove:
		if cmd.Index == nil {
			c.enqueue(result(cmd.RequestID, "index_out_of_range"))
			return
		}
		ch, err = c.session.RemoveAt(ctx, *cmd.Index)
	case MsgReset:
		ch, err = c.session.Reset(ctx)
	default:
		c.enqueue(result(cmd.RequestID, "unknown_type"))
		return
	}

	if err != nil && !errors.Is(err, appsession.ErrPersist) {
		c.enqueue(result(cmd.RequestID, errorCode(err)))
		return
	}
	c.enqueue(Result{
		Type:            "result",
		ProtocolVersion: ProtocolVersion,
		RequestID:       cmd.RequestID,
		Ok:              true,
		Persisted:       err == nil,
		Change:          &ch,
	})
}

func result(requestID, code string) Result {
	return Result{Type: "result", ProtocolVersion: ProtocolVersion, RequestID: requestID, Ok: false, Error: code}
}

func errorCode(err error) string {
	for _, known := range []error{
		appsession.ErrInvalidOutcome,
		appsession.ErrEmptyHistory,
		appsession.ErrIndexOutOfRange,
		appsession.ErrNotFound,
	} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return "internal_error"
}
