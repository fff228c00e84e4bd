package live

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/pipeline"
)

func pair() graph.Graph {
	return graph.Graph{
		Nodes: []graph.Node{{ID: "a", Label: "Alpha"}, {ID: "b"}},
		Links: []graph.Link{{Source: "a", Target: "b"}},
	}
}

func newTestServer(t *testing.T, g graph.Graph) (*Server, *httptest.Server) {
	t.Helper()
	opts := pipeline.Options{
		Width:      400,
		Height:     300,
		AlphaDecay: 0.1,
		Animate:    pipeline.Bool(false),
	}
	srv, err := NewServer(g, opts,
		WithLogger(log.New(io.Discard)),
		WithInterval(time.Millisecond))
	require.NoError(t, err)
	ts := httptest.NewServer(srv)
	t.Cleanup(func() {
		srv.Close()
		ts.Close()
	})
	return srv, ts
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	resp.Body.Close()
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readUntil reads server messages until match accepts one.
func readUntil(t *testing.T, conn *websocket.Conn, match func(ServerMessage) bool) ServerMessage {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	require.NoError(t, conn.SetReadDeadline(deadline))
	for {
		var msg ServerMessage
		require.NoError(t, conn.ReadJSON(&msg), "no matching message before deadline")
		if match(msg) {
			return msg
		}
	}
}

func hello(t *testing.T, conn *websocket.Conn) ServerMessage {
	t.Helper()
	welcome := readUntil(t, conn, func(m ServerMessage) bool { return m.Type == MsgWelcome })
	require.NotEmpty(t, welcome.Session)
	require.NoError(t, conn.WriteJSON(ClientMessage{Type: MsgHello, Width: 400, Height: 300}))
	return welcome
}

func converged(m ServerMessage) bool {
	return m.Type == MsgFrame && m.Frame != nil && m.Frame.Converged
}

func TestSessionStreamsFrames(t *testing.T) {
	srv, ts := newTestServer(t, pair())
	conn := dial(t, ts)
	welcome := hello(t, conn)

	msg := readUntil(t, conn, converged)
	require.Len(t, msg.Frame.Circles, 2)
	require.Len(t, msg.Frame.Lines, 1)
	assert.Equal(t, 400.0, msg.Frame.Width)
	assert.Equal(t, "light", msg.Frame.Theme.Name)

	require.Eventually(t, func() bool {
		infos := srv.Sessions()
		return len(infos) == 1 && infos[0].Mounted
	}, 2*time.Second, 5*time.Millisecond)
	info := srv.Sessions()[0]
	assert.Equal(t, welcome.Session, info.ID)
	require.NotNil(t, info.Stats)
	assert.Equal(t, 2, info.Stats.Nodes)
}

func TestSessionNodeClick(t *testing.T) {
	_, ts := newTestServer(t, pair())
	conn := dial(t, ts)
	hello(t, conn)

	frame := readUntil(t, conn, converged).Frame
	var x, y float64
	for _, c := range frame.Circles {
		if c.ID == "a" {
			x, y = frame.View.Apply(c.X, c.Y)
		}
	}
	require.NoError(t, conn.WriteJSON(ClientMessage{Type: MsgPointer, Kind: "pointerdown", X: x, Y: y}))
	require.NoError(t, conn.WriteJSON(ClientMessage{Type: MsgPointer, Kind: "pointerup", X: x, Y: y}))

	ev := readUntil(t, conn, func(m ServerMessage) bool {
		return m.Type == MsgEvent && m.Event == EventClick
	})
	assert.Equal(t, "a", ev.Node)
}

func TestSessionPointerCancelEndsDrag(t *testing.T) {
	_, ts := newTestServer(t, pair())
	conn := dial(t, ts)
	hello(t, conn)

	frame := readUntil(t, conn, converged).Frame
	var x, y float64
	for _, c := range frame.Circles {
		if c.ID == "a" {
			x, y = frame.View.Apply(c.X, c.Y)
		}
	}
	require.NoError(t, conn.WriteJSON(ClientMessage{Type: MsgPointer, Kind: "pointerdown", X: x, Y: y}))
	readUntil(t, conn, func(m ServerMessage) bool {
		return m.Type == MsgFrame && m.Frame != nil && !m.Frame.Converged
	})
	require.NoError(t, conn.WriteJSON(ClientMessage{Type: MsgPointer, Kind: "pointercancel", X: x, Y: y}))

	// A drag that is still held keeps the layout warm, so a converged frame
	// proves the cancel released it.
	readUntil(t, conn, converged)
}

func TestSessionRejectsBadMessages(t *testing.T) {
	_, ts := newTestServer(t, pair())
	conn := dial(t, ts)
	hello(t, conn)

	require.NoError(t, conn.WriteJSON(ClientMessage{Type: "bogus"}))
	msg := readUntil(t, conn, func(m ServerMessage) bool { return m.Type == MsgError })
	assert.Contains(t, msg.Message, "bogus")

	require.NoError(t, conn.WriteJSON(ClientMessage{Type: MsgPointer, Kind: "pinch"}))
	msg = readUntil(t, conn, func(m ServerMessage) bool { return m.Type == MsgError })
	assert.Contains(t, msg.Message, "pinch")
}

func TestSetGraphUpdatesSessions(t *testing.T) {
	srv, ts := newTestServer(t, pair())
	conn := dial(t, ts)
	hello(t, conn)
	readUntil(t, conn, converged)

	next := pair()
	next.Nodes = append(next.Nodes, graph.Node{ID: "c"})
	next.Links = append(next.Links, graph.Link{Source: "b", Target: "c"})
	require.NoError(t, srv.SetGraph(next))

	msg := readUntil(t, conn, func(m ServerMessage) bool {
		return m.Type == MsgFrame && len(m.Frame.Circles) == 3
	})
	assert.Len(t, msg.Frame.Lines, 2)
	assert.Len(t, srv.Graph().Nodes, 3)

	bad := graph.Graph{Nodes: []graph.Node{{ID: "a"}}, Links: []graph.Link{{Source: "a", Target: "x"}}}
	assert.Error(t, srv.SetGraph(bad))
	assert.Len(t, srv.Graph().Nodes, 3)
}

func TestDisconnectRemovesSession(t *testing.T) {
	srv, ts := newTestServer(t, pair())
	conn := dial(t, ts)
	hello(t, conn)
	readUntil(t, conn, converged)
	require.Len(t, srv.Sessions(), 1)

	conn.Close()
	require.Eventually(t, func() bool { return len(srv.Sessions()) == 0 }, 2*time.Second, 5*time.Millisecond)
}

func TestHTTPEndpoints(t *testing.T) {
	_, ts := newTestServer(t, pair())

	get := func(path string) (*http.Response, string) {
		t.Helper()
		resp, err := http.Get(ts.URL + path)
		require.NoError(t, err)
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return resp, string(body)
	}

	resp, body := get("/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "<canvas")

	resp, body = get("/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "ok")

	resp, body = get("/api/graph")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var g graph.Graph
	require.NoError(t, json.Unmarshal([]byte(body), &g))
	assert.Len(t, g.Nodes, 2)

	resp, body = get("/api/sessions")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, "[]", body)

	resp, _ = get("/api/sessions/nope")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = get("/api/render/svg")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/svg+xml", resp.Header.Get("Content-Type"))
	assert.Contains(t, body, "<svg")

	resp, _ = get("/api/render/gif")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = get("/api/render/svg?theme=neon")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPutGraph(t *testing.T) {
	srv, ts := newTestServer(t, pair())

	put := func(body string) *http.Response {
		t.Helper()
		req, err := http.NewRequest(http.MethodPut, ts.URL+"/api/graph", strings.NewReader(body))
		require.NoError(t, err)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		return resp
	}

	resp := put(`{"nodes":[{"id":"x"},{"id":"y"}],"links":[{"source":"x","target":"y"}]}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "x", srv.Graph().Nodes[0].ID)

	resp = put(`{"nodes":[{"id":"x"}],"links":[{"source":"x","target":"q"}]}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = put(`not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestNewServerValidates(t *testing.T) {
	_, err := NewServer(pair(), pipeline.Options{Theme: "neon"})
	assert.Error(t, err)

	bad := graph.Graph{Nodes: []graph.Node{{ID: "a"}, {ID: "a"}}}
	_, err = NewServer(bad, pipeline.Options{})
	assert.Error(t, err)
}
