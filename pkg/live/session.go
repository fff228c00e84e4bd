package live

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/matzehuels/forcegraph/pkg/engine"
	"github.com/matzehuels/forcegraph/pkg/errors"
	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/interact"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 64 << 10
	sendBuffer     = 64
)

// Session is one browser connection and the engine it owns.
type Session struct {
	ID      string
	Created time.Time

	server  *Server
	conn    *websocket.Conn
	surface *surface
	log     *log.Logger

	msgs      chan []byte
	done      chan struct{}
	closeOnce sync.Once

	mu  sync.Mutex
	eng *engine.Engine
}

// SessionInfo describes a session for the status API.
type SessionInfo struct {
	ID      string        `json:"id"`
	Created time.Time     `json:"created"`
	Mounted bool          `json:"mounted"`
	Stats   *engine.Stats `json:"stats,omitempty"`
	Dropped int64         `json:"dropped_frames"`
}

func newSession(s *Server, conn *websocket.Conn) *Session {
	id := uuid.NewString()
	return &Session{
		ID:      id,
		Created: time.Now(),
		server:  s,
		conn:    conn,
		surface: newSurface(),
		log:     s.log.With("session", id[:8]),
		msgs:    make(chan []byte, sendBuffer),
		done:    make(chan struct{}),
	}
}

// Info returns a snapshot of the session state.
func (s *Session) Info() SessionInfo {
	info := SessionInfo{ID: s.ID, Created: s.Created, Dropped: s.surface.dropped.Load()}
	if eng := s.engine(); eng != nil {
		st := eng.Stats()
		info.Stats = &st
		info.Mounted = eng.Mounted()
	}
	return info
}

func (s *Session) engine() *engine.Engine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eng
}

// run serves the connection until the client goes away or Close is
// called. The engine is unmounted before run returns.
func (s *Session) run() {
	defer s.cleanup()

	go s.writer()
	s.send(ServerMessage{Type: MsgWelcome, Session: s.ID})
	s.log.Info("client connected")

	s.conn.SetReadLimit(maxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg ClientMessage
		if err := s.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Warn("connection lost", "err", err)
			}
			return
		}
		s.handle(msg)
	}
}

func (s *Session) handle(msg ClientMessage) {
	switch msg.Type {
	case MsgHello:
		if s.engine() != nil {
			s.resize(msg.Width, msg.Height)
			return
		}
		if err := s.start(msg.Width, msg.Height); err != nil {
			s.log.Error("start engine", "err", err)
			s.sendError(err)
		}
	case MsgResize:
		s.resize(msg.Width, msg.Height)
	case MsgPointer:
		eng := s.engine()
		if eng == nil {
			return
		}
		ev, err := msg.PointerEvent(time.Now())
		if err != nil {
			s.sendError(err)
			return
		}
		eng.Post(func() { eng.Dispatch(ev) })
	case MsgReheat:
		if eng := s.engine(); eng != nil {
			alpha := msg.Alpha
			if alpha <= 0 {
				alpha = interact.DefaultReheatAlpha
			}
			eng.Reheat(alpha)
		}
	case MsgReset:
		if eng := s.engine(); eng != nil {
			eng.ResetView()
		}
	default:
		s.sendError(errors.New(errors.ErrCodeInvalidInput, "unknown message type %q", msg.Type))
	}
}

// start builds and mounts the engine at the client's canvas size. A size
// the client cannot report falls back to the configured dimensions.
func (s *Session) start(width, height float64) error {
	opts := s.server.options()
	if errors.ValidateDimensions(width, height) == nil {
		opts.Width, opts.Height = width, height
	}
	eo, err := opts.EngineOptions()
	if err != nil {
		return err
	}
	eo.Scheduler = engine.NewTickerScheduler(s.server.interval)
	eo.Callbacks = s.callbacks()
	eo.Logger = s.log

	eng, err := engine.New(s.server.Graph(), eo)
	if err != nil {
		return err
	}
	s.surface.setSize(opts.Width, opts.Height)
	s.surface.setConnected(true)

	s.mu.Lock()
	s.eng = eng
	s.mu.Unlock()

	s.log.Info("simulation started", "nodes", eng.Stats().Nodes, "width", opts.Width, "height", opts.Height)
	return eng.Mount(s.surface)
}

func (s *Session) resize(width, height float64) {
	s.surface.setSize(width, height)
	if eng := s.engine(); eng != nil {
		eng.Post(eng.Redraw)
	}
}

// replace swaps the graph on the frame goroutine.
func (s *Session) replace(g graph.Graph) {
	eng := s.engine()
	if eng == nil {
		return
	}
	eng.Post(func() {
		if err := eng.Replace(g); err != nil {
			s.log.Error("replace graph", "err", err)
			s.sendError(err)
		}
	})
}

// callbacks forward host notifications to the client and the log. They
// run under the engine lock and must not block.
func (s *Session) callbacks() interact.Callbacks {
	return interact.CallbackFuncs{
		NodeClick: func(n *graph.Node, _ interact.Event) {
			s.log.Info("node clicked", "node", n.ID)
			s.send(ServerMessage{Type: MsgEvent, Event: EventClick, Node: n.ID})
		},
		NodeHover: func(n *graph.Node, _ interact.Event) {
			id := ""
			if n != nil {
				id = n.ID
			}
			s.log.Debug("hover", "node", id)
			s.send(ServerMessage{Type: MsgEvent, Event: EventHover, Node: id})
		},
		LinkClick: func(l *graph.Link, _ interact.Event) {
			s.log.Info("link clicked", "source", l.Source, "target", l.Target)
			s.send(ServerMessage{Type: MsgEvent, Event: EventLinkClick, Source: l.Source, Target: l.Target})
		},
	}
}

func (s *Session) sendError(err error) {
	s.send(ServerMessage{Type: MsgError, Message: errors.UserMessage(err)})
}

// send queues a message without blocking. Messages are dropped when the
// queue is full or the session is closed.
func (s *Session) send(msg ServerMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		s.log.Error("encode message", "type", msg.Type, "err", err)
		return
	}
	select {
	case s.msgs <- data:
	case <-s.done:
	default:
		s.log.Warn("send queue full, dropping message", "type", msg.Type)
	}
}

// writer is the only goroutine writing to the connection.
func (s *Session) writer() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	write := func(kind int, data []byte) bool {
		_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := s.conn.WriteMessage(kind, data); err != nil {
			s.log.Debug("write failed", "err", err)
			s.conn.Close()
			return false
		}
		return true
	}

	for {
		select {
		case data := <-s.msgs:
			if !write(websocket.TextMessage, data) {
				return
			}
		case data := <-s.surface.frames:
			if !write(websocket.TextMessage, data) {
				return
			}
		case <-ticker.C:
			if !write(websocket.PingMessage, nil) {
				return
			}
		case <-s.done:
			return
		}
	}
}

// Close ends the session. The read loop notices and cleans up.
func (s *Session) Close() {
	_ = s.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
		time.Now().Add(writeWait))
	s.conn.Close()
}

func (s *Session) cleanup() {
	s.closeOnce.Do(func() {
		s.surface.setConnected(false)
		if eng := s.engine(); eng != nil {
			eng.Unmount()
		}
		close(s.done)
		s.conn.Close()
		s.server.remove(s.ID)
		s.log.Info("client disconnected")
	})
}
