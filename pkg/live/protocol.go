package live

import (
	"time"

	"github.com/matzehuels/forcegraph/pkg/errors"
	"github.com/matzehuels/forcegraph/pkg/interact"
	"github.com/matzehuels/forcegraph/pkg/render"
)

// Client message types.
const (
	MsgHello   = "hello"
	MsgResize  = "resize"
	MsgPointer = "pointer"
	MsgReheat  = "reheat"
	MsgReset   = "reset"
)

// Server message types.
const (
	MsgWelcome = "welcome"
	MsgFrame   = "frame"
	MsgEvent   = "event"
	MsgError   = "error"
)

// Host event names forwarded to the client.
const (
	EventClick     = "click"
	EventHover     = "hover"
	EventLinkClick = "linkclick"
)

// ClientMessage is a message sent by the browser.
type ClientMessage struct {
	Type string `json:"type"`

	// hello, resize
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`

	// pointer
	Kind    string  `json:"kind,omitempty"`
	X       float64 `json:"x,omitempty"`
	Y       float64 `json:"y,omitempty"`
	DeltaY  float64 `json:"deltaY,omitempty"`
	Button  int     `json:"button,omitempty"`
	Pointer int     `json:"pointer,omitempty"`

	// reheat
	Alpha float64 `json:"alpha,omitempty"`
}

// ServerMessage is a message sent to the browser.
type ServerMessage struct {
	Type    string        `json:"type"`
	Session string        `json:"session,omitempty"`
	Frame   *render.Frame `json:"frame,omitempty"`
	Event   string        `json:"event,omitempty"`
	Node    string        `json:"node,omitempty"`
	Source  string        `json:"source,omitempty"`
	Target  string        `json:"target,omitempty"`
	Message string        `json:"message,omitempty"`
}

// PointerEvent converts a pointer message to a controller event.
func (m ClientMessage) PointerEvent(now time.Time) (interact.Event, error) {
	kind, ok := interact.ParseKind(m.Kind)
	if !ok {
		return interact.Event{}, errors.New(errors.ErrCodeInvalidInput, "unknown pointer kind %q", m.Kind)
	}
	if m.Button < int(interact.ButtonLeft) || m.Button > int(interact.ButtonRight) {
		return interact.Event{}, errors.New(errors.ErrCodeInvalidInput, "unknown button %d", m.Button)
	}
	return interact.Event{
		Kind:    kind,
		X:       m.X,
		Y:       m.Y,
		DeltaY:  m.DeltaY,
		Button:  interact.Button(m.Button),
		Pointer: m.Pointer,
		Time:    now,
	}, nil
}
