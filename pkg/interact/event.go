package interact

import (
	"fmt"
	"time"
)

// Kind identifies a pointer event.
type Kind int

const (
	PointerDown Kind = iota + 1
	PointerMove
	PointerUp
	Wheel
	PointerLeave
)

func (k Kind) String() string {
	switch k {
	case PointerDown:
		return "pointerdown"
	case PointerMove:
		return "pointermove"
	case PointerUp:
		return "pointerup"
	case Wheel:
		return "wheel"
	case PointerLeave:
		return "pointerleave"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind maps the wire names used by remote surfaces to a Kind. A
// cancelled pointer is treated as one that left the surface.
func ParseKind(s string) (Kind, bool) {
	if s == "pointercancel" {
		return PointerLeave, true
	}
	for k := PointerDown; k <= PointerLeave; k++ {
		if k.String() == s {
			return k, true
		}
	}
	return 0, false
}

// Button identifies which pointer button changed state.
type Button int

const (
	ButtonLeft Button = iota
	ButtonMiddle
	ButtonRight
)

// Event is a pointer event in surface (screen) coordinates. The controller
// converts to simulation coordinates through the current Transform.
type Event struct {
	Kind   Kind
	X, Y   float64
	DeltaY float64 // wheel only; positive scrolls down and zooms out
	Button Button
	// Pointer distinguishes concurrent pointers (touches). Mouse input uses 0.
	Pointer int
	Time    time.Time
}

// State is the per-node drag state.
type State int

const (
	Free State = iota
	Dragging
)

func (s State) String() string {
	if s == Dragging {
		return "dragging"
	}
	return "free"
}
