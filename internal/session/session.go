// Package session wires one interactive selection workflow together: pointer
// events drive the selection state machine, finished drags go through the
// crop/annotation manager, and the resulting artifacts are written to (and
// on undo removed from) a storage.Store.
//
// A Session is not safe for concurrent use; callers serialize events.
package session

import (
	"errors"
	"fmt"
	"image"
	"log/slog"

	"github.com/ironsheep/cropmark-mcp/internal/annotate"
	"github.com/ironsheep/cropmark-mcp/internal/imaging"
	"github.com/ironsheep/cropmark-mcp/internal/selection"
	"github.com/ironsheep/cropmark-mcp/internal/storage"
)

// ErrInvalidSelection is returned by PointerUp when the finished drag has
// zero width or height or misses the image.
var ErrInvalidSelection = annotate.ErrInvalidSelection

// PreviewRenderer receives a fresh overlay for every pointer move during a
// drag. It is advisory; nothing waits on it.
type PreviewRenderer interface {
	RenderPreview(rect selection.Rectangle, overlay image.Image)
}

// PreviewRendererFunc adapts a function to PreviewRenderer.
type PreviewRendererFunc func(rect selection.Rectangle, overlay image.Image)

func (f PreviewRendererFunc) RenderPreview(rect selection.Rectangle, overlay image.Image) {
	f(rect, overlay)
}

// Outcome describes a persisted selection.
type Outcome struct {
	Pair   annotate.ArtifactPair
	Rect   selection.Rectangle
	Bounds image.Rectangle

	Crop      image.Image
	Annotated image.Image
}

// Option configures a Session.
type Option func(*Session)

// WithManagerOptions passes options through to the annotate.Manager.
func WithManagerOptions(opts ...annotate.Option) Option {
	return func(s *Session) { s.managerOpts = append(s.managerOpts, opts...) }
}

// WithPreview registers r for live drag previews drawn in style.
func WithPreview(r PreviewRenderer, style imaging.AnnotationStyle) Option {
	return func(s *Session) {
		s.renderer = r
		s.previewStyle = style
	}
}

// WithLogger sets the logger. The default discards output.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// Session is one image being selected on.
type Session struct {
	src   image.Image
	store storage.Store

	machine *selection.Machine
	manager *annotate.Manager

	managerOpts  []annotate.Option
	renderer     PreviewRenderer
	previewStyle imaging.AnnotationStyle
	logger       *slog.Logger

	// lastCrop is the crop buffer of the live pair, nil when none.
	lastCrop   image.Image
	lastBounds image.Rectangle
}

// New starts a session on src, the image as displayed to the user.
func New(src image.Image, store storage.Store, opts ...Option) *Session {
	s := &Session{
		src:          src,
		store:        store,
		previewStyle: imaging.DefaultAnnotationStyle(),
		logger:       slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.manager = annotate.NewManager(s.managerOpts...)
	s.machine = selection.New(selection.WithPreview(s.renderPreview))
	return s
}

// Source returns the displayed image the session selects on.
func (s *Session) Source() image.Image { return s.src }

// State returns the drag state.
func (s *Session) State() selection.State { return s.machine.State() }

// Current returns the in-progress drag rectangle, if any.
func (s *Session) Current() (selection.Rectangle, bool) { return s.machine.Current() }

// NextSequence returns the sequence number the next artifact pair will use.
func (s *Session) NextSequence() int { return s.manager.NextSequence() }

// Last returns the live artifact pair, if any.
func (s *Session) Last() (annotate.ArtifactPair, bool) { return s.manager.Last() }

// LastCrop returns the crop buffer of the live pair and the region of the
// source it was cut from.
func (s *Session) LastCrop() (image.Image, image.Rectangle, bool) {
	return s.lastCrop, s.lastBounds, s.lastCrop != nil
}

// PointerDown starts a drag at (x, y).
func (s *Session) PointerDown(x, y int) {
	s.machine.PointerDown(selection.Pt(x, y))
	s.logger.Debug("drag started", "x", x, "y", y)
}

// PointerMove updates the drag. Moves with no drag in progress are ignored.
func (s *Session) PointerMove(x, y int) {
	if !s.machine.PointerMove(selection.Pt(x, y)) {
		s.logger.Debug("ignoring pointer_move while idle", "x", x, "y", y)
	}
}

// Cancel abandons a drag in progress.
func (s *Session) Cancel() {
	s.machine.Cancel()
}

// PointerUp finishes the drag at (x, y), then crops, annotates and persists
// the result.
//
// It returns (nil, nil) when no drag was in progress. A degenerate rectangle
// yields ErrInvalidSelection without touching storage. If either file cannot
// be written, anything already written is removed, the previous live pair
// is restored and a *storage.PersistenceError is returned.
func (s *Session) PointerUp(x, y int) (*Outcome, error) {
	rect, ok := s.machine.PointerUp(selection.Pt(x, y))
	if !ok {
		s.logger.Debug("ignoring pointer_up while idle", "x", x, "y", y)
		return nil, nil
	}

	res, err := s.manager.Submit(rect, s.src)
	if err != nil {
		if errors.Is(err, ErrInvalidSelection) {
			s.logger.Info("selection rejected", "start", rect.Start, "end", rect.End)
		}
		return nil, err
	}

	if err := s.persist(res); err != nil {
		s.manager.Rollback(res)
		s.logger.Error("failed to persist selection", "sequence", res.Pair.Sequence, "error", err)
		return nil, err
	}

	s.lastCrop, s.lastBounds = res.Crop, res.Bounds
	s.logger.Info("selection saved",
		"crop", res.Pair.CropFilename,
		"annotated", res.Pair.AnnotatedFilename,
		"bounds", res.Bounds.String())

	return &Outcome{
		Pair:      res.Pair,
		Rect:      res.Rect,
		Bounds:    res.Bounds,
		Crop:      res.Crop,
		Annotated: res.Annotated,
	}, nil
}

func (s *Session) persist(res *annotate.Result) error {
	if err := s.store.Persist(res.Pair.CropFilename, res.Crop); err != nil {
		return err
	}
	if err := s.store.Persist(res.Pair.AnnotatedFilename, res.Annotated); err != nil {
		if cleanupErr := s.store.Delete(res.Pair.CropFilename); cleanupErr != nil {
			s.logger.Warn("failed to remove partial crop", "file", res.Pair.CropFilename, "error", cleanupErr)
		}
		return err
	}
	return nil
}

// Undo removes the live pair's files. ok is false when there was nothing to
// undo. The pair is forgotten even if deletion fails; the returned error then
// lists the files that could not be removed.
func (s *Session) Undo() (pair annotate.ArtifactPair, ok bool, err error) {
	pair, ok = s.manager.Undo()
	if !ok {
		return pair, false, nil
	}
	s.lastCrop, s.lastBounds = nil, image.Rectangle{}

	if err := storage.DeleteAll(s.store, pair.Filenames()...); err != nil {
		s.logger.Error("failed to delete undone files", "sequence", pair.Sequence, "error", err)
		return pair, true, fmt.Errorf("undo %d: %w", pair.Sequence, err)
	}
	s.logger.Info("selection undone", "crop", pair.CropFilename, "annotated", pair.AnnotatedFilename)
	return pair, true, nil
}

func (s *Session) renderPreview(rect selection.Rectangle) {
	if s.renderer == nil {
		return
	}
	s.renderer.RenderPreview(rect, imaging.PreviewOverlay(s.src, rect.Bounds(), s.previewStyle))
}
