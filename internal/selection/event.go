package selection

import "fmt"

// EventKind identifies a pointer event.
type EventKind int

const (
	PointerDown EventKind = iota + 1
	PointerMove
	PointerUp
)

func (k EventKind) String() string {
	switch k {
	case PointerDown:
		return "pointer_down"
	case PointerMove:
		return "pointer_move"
	case PointerUp:
		return "pointer_up"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// ParseEventKind maps the wire names pointer_down, pointer_move and
// pointer_up to an EventKind.
func ParseEventKind(s string) (EventKind, error) {
	switch s {
	case "pointer_down":
		return PointerDown, nil
	case "pointer_move":
		return PointerMove, nil
	case "pointer_up":
		return PointerUp, nil
	default:
		return 0, fmt.Errorf("unknown pointer event %q", s)
	}
}

// Event is one pointer event from the event source.
type Event struct {
	Kind EventKind
	At   Point
}

// Handle dispatches ev to the matching transition. It returns the finalized
// rectangle when ev completes a drag. Events that do not apply to the
// current state, and unknown kinds, are ignored.
func (m *Machine) Handle(ev Event) (Rectangle, bool) {
	switch ev.Kind {
	case PointerDown:
		m.PointerDown(ev.At)
	case PointerMove:
		m.PointerMove(ev.At)
	case PointerUp:
		return m.PointerUp(ev.At)
	}
	return Rectangle{}, false
}
