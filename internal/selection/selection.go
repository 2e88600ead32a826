// Package selection tracks a pointer drag over a displayed image and turns
// it into a rectangle.
//
// Coordinates are in the pixel space of the displayed (possibly resized)
// image buffer. Out-of-bounds coordinates are passed through unmodified;
// clamping is the event source's job.
//
// A Machine is not safe for concurrent use. Events are expected to arrive
// serialized from a single event source.
package selection

import (
	"errors"
	"fmt"
	"image"
)

// ErrInvalidSelection is returned when a finalized rectangle has zero width
// or zero height.
var ErrInvalidSelection = errors.New("invalid selection")

// Point is a pixel coordinate in displayed-image space.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y int) Point {
	return Point{X: x, Y: y}
}

// String renders the point the way it is labelled on annotated images.
func (p Point) String() string {
	return fmt.Sprintf("(%d, %d)", p.X, p.Y)
}

// ImagePoint converts p to an image.Point.
func (p Point) ImagePoint() image.Point {
	return image.Pt(p.X, p.Y)
}

// Rectangle is a drag from Start to End in the order the user dragged.
// It is not normalized: Start may be to the right of or below End.
type Rectangle struct {
	Start Point `json:"start"`
	End   Point `json:"end"`
}

// Validate reports ErrInvalidSelection when the rectangle has zero width or
// zero height.
func (r Rectangle) Validate() error {
	if r.Start.X == r.End.X || r.Start.Y == r.End.Y {
		return fmt.Errorf("%w: %v to %v has zero width or height", ErrInvalidSelection, r.Start, r.End)
	}
	return nil
}

// Bounds returns the normalized half-open pixel range
// [min(x1,x2), max(x1,x2)) x [min(y1,y2), max(y1,y2)).
func (r Rectangle) Bounds() image.Rectangle {
	// image.Rect swaps coordinates as needed.
	return image.Rect(r.Start.X, r.Start.Y, r.End.X, r.End.Y)
}

// State is the drag state of a Machine.
type State int

const (
	Idle State = iota
	Dragging
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Dragging:
		return "dragging"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// PreviewFunc receives the live rectangle while a drag is in progress.
// It is advisory only.
type PreviewFunc func(Rectangle)

// Option configures a Machine.
type Option func(*Machine)

// WithPreview registers fn to be called on every pointer move during a drag.
func WithPreview(fn PreviewFunc) Option {
	return func(m *Machine) { m.preview = fn }
}

// Machine is the pointer drag state machine.
type Machine struct {
	dragging   bool
	start      Point
	currentEnd Point
	preview    PreviewFunc
}

// New returns a Machine in the Idle state.
func New(opts ...Option) *Machine {
	m := &Machine{}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// State returns the current drag state.
func (m *Machine) State() State {
	if m.dragging {
		return Dragging
	}
	return Idle
}

// Current returns the in-progress rectangle. ok is false when Idle.
func (m *Machine) Current() (r Rectangle, ok bool) {
	if !m.dragging {
		return Rectangle{}, false
	}
	return Rectangle{Start: m.start, End: m.currentEnd}, true
}

// PointerDown starts a drag at p. A PointerDown received mid-drag restarts
// the drag at p, so a lost release cannot wedge the machine.
func (m *Machine) PointerDown(p Point) {
	m.dragging = true
	m.start = p
	m.currentEnd = p
}

// PointerMove updates the live end point and notifies the preview callback.
// It reports false and does nothing when no drag is in progress.
func (m *Machine) PointerMove(p Point) bool {
	if !m.dragging {
		return false
	}
	m.currentEnd = p
	if m.preview != nil {
		m.preview(Rectangle{Start: m.start, End: m.currentEnd})
	}
	return true
}

// PointerUp finalizes the drag at p, resets the machine and returns the
// rectangle. ok is false when no drag was in progress. The rectangle is not
// validated here.
func (m *Machine) PointerUp(p Point) (r Rectangle, ok bool) {
	if !m.dragging {
		return Rectangle{}, false
	}
	m.currentEnd = p
	r = Rectangle{Start: m.start, End: m.currentEnd}
	m.reset()
	return r, true
}

// Cancel abandons any drag in progress.
func (m *Machine) Cancel() {
	m.reset()
}

func (m *Machine) reset() {
	m.dragging = false
	m.start = Point{}
	m.currentEnd = Point{}
}
