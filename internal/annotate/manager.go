// Package annotate turns finalized selections into crop and annotated image
// pairs and remembers the most recent pair so it can be undone.
//
// The manager performs no I/O. It hands back buffers and filenames; writing
// and deleting files is the caller's job.
package annotate

import (
	"fmt"
	"image"

	"github.com/ironsheep/cropmark-mcp/internal/imaging"
	"github.com/ironsheep/cropmark-mcp/internal/selection"
)

// ErrInvalidSelection is returned by Submit for zero-width or zero-height
// rectangles and for rectangles that miss the source image entirely.
var ErrInvalidSelection = selection.ErrInvalidSelection

// ArtifactPair names the two files produced by one successful submit.
type ArtifactPair struct {
	Sequence          int    `json:"sequence"`
	CropFilename      string `json:"crop_filename"`
	AnnotatedFilename string `json:"annotated_filename"`
}

// Filenames returns the crop and annotated filenames in write order.
func (p ArtifactPair) Filenames() []string {
	return []string{p.CropFilename, p.AnnotatedFilename}
}

// Result is the output of a successful Submit.
type Result struct {
	Pair ArtifactPair

	// Rect is the selection as dragged. Bounds is the normalized region that
	// was actually cropped, clipped to the source.
	Rect   selection.Rectangle
	Bounds image.Rectangle

	Crop      image.Image
	Annotated image.Image

	prev    ArtifactPair
	hadPrev bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithNaming sets the filename policy.
func WithNaming(n Naming) Option {
	return func(m *Manager) { m.naming = n }
}

// WithStyle sets the marker and label style for annotated copies.
func WithStyle(s imaging.AnnotationStyle) Option {
	return func(m *Manager) { m.style = s }
}

// WithFirstSequence sets the first sequence number. Values below 1 are ignored.
func WithFirstSequence(n int) Option {
	return func(m *Manager) {
		if n >= 1 {
			m.sequence = n
		}
	}
}

// Manager owns the crop counter and the single live artifact pair.
// It is not safe for concurrent use.
type Manager struct {
	naming Naming
	style  imaging.AnnotationStyle

	sequence int

	last    ArtifactPair
	hasLast bool
}

// NewManager returns a Manager whose first pair will use sequence 1.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		naming:   DefaultNaming(),
		style:    imaging.DefaultAnnotationStyle(),
		sequence: 1,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// NextSequence returns the number the next successful Submit will use.
func (m *Manager) NextSequence() int {
	return m.sequence
}

// Last returns the live artifact pair, if any.
func (m *Manager) Last() (ArtifactPair, bool) {
	return m.last, m.hasLast
}

// Submit crops rect out of src and builds the annotated copy.
//
// The crop uses the normalized bounds of rect clipped to src, so drags in
// any direction select the same pixels. The annotated copy marks the raw
// start and end points. On success the new pair replaces the live pair and
// the sequence advances. On error nothing changes.
func (m *Manager) Submit(rect selection.Rectangle, src image.Image) (*Result, error) {
	if err := rect.Validate(); err != nil {
		return nil, err
	}

	bounds := rect.Bounds().Intersect(src.Bounds())
	if bounds.Empty() {
		return nil, fmt.Errorf("%w: %v to %v lies outside the image", ErrInvalidSelection, rect.Start, rect.End)
	}

	crop, err := imaging.CropRegion(src, bounds)
	if err != nil {
		return nil, fmt.Errorf("crop selection: %w", err)
	}
	annotated := imaging.Annotate(src, rect.Start.ImagePoint(), rect.End.ImagePoint(), m.style)

	pair := m.naming.Pair(m.sequence)
	res := &Result{
		Pair:      pair,
		Rect:      rect,
		Bounds:    bounds,
		Crop:      crop,
		Annotated: annotated,
		prev:      m.last,
		hadPrev:   m.hasLast,
	}
	m.last = pair
	m.hasLast = true
	m.sequence++

	return res, nil
}

// Rollback reverts a Submit whose files could not be persisted: the pair
// that was live before res becomes live again. The sequence number res used
// stays consumed. Rollback reports false and does nothing if res is no
// longer the live pair.
func (m *Manager) Rollback(res *Result) bool {
	if res == nil || !m.hasLast || m.last != res.Pair {
		return false
	}
	m.last = res.prev
	m.hasLast = res.hadPrev
	return true
}

// Undo clears and returns the live pair so the caller can delete its files.
// It reports false when there is nothing to undo. The sequence number is
// never rolled back, and an undone pair cannot be restored.
func (m *Manager) Undo() (ArtifactPair, bool) {
	if !m.hasLast {
		return ArtifactPair{}, false
	}
	pair := m.last
	m.last = ArtifactPair{}
	m.hasLast = false
	return pair, true
}
