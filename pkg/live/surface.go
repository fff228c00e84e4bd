package live

import (
	"encoding/json"
	"sync"
	"sync/atomic"

	"github.com/matzehuels/forcegraph/pkg/render"
)

// surface is the server side of a browser canvas. It is attached while
// the client is connected and reports a non-empty canvas. Draw encodes
// the frame into a one-slot mailbox, replacing any frame the writer has
// not sent yet.
type surface struct {
	mu            sync.Mutex
	connected     bool
	width, height float64

	frames  chan []byte
	dropped atomic.Int64
}

func newSurface() *surface {
	return &surface{frames: make(chan []byte, 1)}
}

func (s *surface) Attached() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected && s.width > 0 && s.height > 0
}

func (s *surface) Draw(f *render.Frame) error {
	data, err := json.Marshal(ServerMessage{Type: MsgFrame, Frame: f})
	if err != nil {
		return err
	}
	for {
		select {
		case s.frames <- data:
			return nil
		default:
		}
		select {
		case <-s.frames:
			s.dropped.Add(1)
		default:
		}
	}
}

func (s *surface) setSize(w, h float64) {
	s.mu.Lock()
	s.width, s.height = w, h
	s.mu.Unlock()
}

func (s *surface) setConnected(v bool) {
	s.mu.Lock()
	s.connected = v
	s.mu.Unlock()
}
