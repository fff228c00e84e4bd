package live

import (
	"embed"
	"encoding/json"
	"io/fs"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/matzehuels/forcegraph/pkg/buildinfo"
	"github.com/matzehuels/forcegraph/pkg/engine"
	"github.com/matzehuels/forcegraph/pkg/errors"
	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/pipeline"
	"github.com/matzehuels/forcegraph/pkg/render"
)

//go:embed static
var static embed.FS

// Server shares one graph with every connected browser. Each connection
// gets its own session and engine.
type Server struct {
	log      *log.Logger
	interval time.Duration
	upgrader websocket.Upgrader
	router   chi.Router
	runner   *pipeline.Runner

	mu       sync.RWMutex
	graph    graph.Graph
	opts     pipeline.Options
	sessions map[string]*Session
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// WithInterval sets the per-session frame interval.
func WithInterval(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithCheckOrigin replaces the websocket origin check. The default only
// accepts same-origin requests.
func WithCheckOrigin(fn func(r *http.Request) bool) Option {
	return func(s *Server) { s.upgrader.CheckOrigin = fn }
}

// NewServer validates g and opts and builds the HTTP routes.
func NewServer(g graph.Graph, opts pipeline.Options, options ...Option) (*Server, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	s := &Server{
		log:      log.Default(),
		interval: engine.DefaultInterval,
		upgrader: websocket.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 4096},
		graph:    g.Clone(),
		opts:     opts,
		sessions: make(map[string]*Session),
	}
	for _, o := range options {
		o(s)
	}
	s.runner = pipeline.NewRunner(nil, nil, s.log)
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/ws", s.handleWS)

	r.Group(func(r chi.Router) {
		r.Use(s.logRequests)
		r.Get("/", s.handleIndex)
		r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "build": buildinfo.Get()})
		})
		r.Route("/api", func(r chi.Router) {
			r.Get("/graph", s.handleGetGraph)
			r.Put("/graph", s.handlePutGraph)
			r.Get("/sessions", s.handleSessions)
			r.Get("/sessions/{id}", s.handleSession)
			r.Get("/render/{format}", s.handleRender)
		})
	})
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"id", middleware.GetReqID(r.Context()))
	})
}

// Graph returns a copy of the shared graph.
func (s *Server) Graph() graph.Graph {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.graph.Clone()
}

func (s *Server) options() pipeline.Options {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.opts
}

// SetGraph validates g, stores it and replaces the graph in every live
// session. Nodes that keep their id keep their position.
func (s *Server) SetGraph(g graph.Graph) error {
	if err := g.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	s.graph = g.Clone()
	sessions := s.sessionList()
	s.mu.Unlock()

	for _, sess := range sessions {
		sess.replace(g)
	}
	s.log.Info("graph updated", "nodes", len(g.Nodes), "links", len(g.Links), "sessions", len(sessions))
	return nil
}

// Sessions describes the connected sessions, oldest first.
func (s *Server) Sessions() []SessionInfo {
	s.mu.RLock()
	sessions := s.sessionList()
	s.mu.RUnlock()

	out := make([]SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		out = append(out, sess.Info())
	}
	return out
}

// sessionList must be called with mu held.
func (s *Server) sessionList() []*Session {
	out := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, sess)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Created.Before(out[j].Created) })
	return out
}

func (s *Server) session(id string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

func (s *Server) remove(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// Close disconnects every session. Sessions unmount their engines as
// their read loops exit.
func (s *Server) Close() {
	s.mu.RLock()
	sessions := s.sessionList()
	s.mu.RUnlock()
	for _, sess := range sessions {
		sess.Close()
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "err", err)
		return
	}
	sess := newSession(s, conn)
	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	go sess.run()
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	data, err := fs.ReadFile(static, "static/index.html")
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "read index"))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(data)
}

func (s *Server) handleGetGraph(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.Graph())
}

func (s *Server) handlePutGraph(w http.ResponseWriter, r *http.Request) {
	g, err := graph.ReadGraph(http.MaxBytesReader(w, r.Body, 8<<20))
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.SetGraph(g); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"nodes": len(g.Nodes), "links": len(g.Links)})
}

func (s *Server) handleSessions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.Sessions())
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sess, ok := s.session(id)
	if !ok {
		writeError(w, errors.New(errors.ErrCodeSessionNotFound, "session %q not found", id))
		return
	}
	writeJSON(w, http.StatusOK, sess.Info())
}

// handleRender runs the headless pipeline on the shared graph.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	if err := pipeline.ValidateFormat(format); err != nil {
		writeError(w, err)
		return
	}
	opts := s.options()
	opts.Formats = []string{format}
	if theme := r.URL.Query().Get("theme"); theme != "" {
		if _, err := render.ThemeByName(theme); err != nil {
			writeError(w, err)
			return
		}
		opts.Theme = theme
	}

	res, err := s.runner.Execute(r.Context(), s.Graph(), opts)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", contentType(format))
	w.Header().Set("X-Layout-Ticks", strconv.Itoa(res.Stats.Ticks))
	_, _ = w.Write(res.Artifacts[format])
}

func contentType(format string) string {
	switch format {
	case pipeline.FormatSVG, pipeline.FormatDOTSVG:
		return "image/svg+xml"
	case pipeline.FormatPNG, pipeline.FormatDOTPNG:
		return "image/png"
	case pipeline.FormatJSON:
		return "application/json"
	default:
		return "text/vnd.graphviz; charset=utf-8"
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), map[string]string{
		"error": errors.UserMessage(err),
		"code":  string(errors.GetCode(err)),
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errors.ErrCodeNotFound), errors.Is(err, errors.ErrCodeSessionNotFound), errors.Is(err, errors.ErrCodeFileNotFound):
		return http.StatusNotFound
	case errors.Is(err, errors.ErrCodeInternal):
		return http.StatusInternalServerError
	case errors.GetCode(err) != "":
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
