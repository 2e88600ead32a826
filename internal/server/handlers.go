package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/ironsheep/cropmark-mcp/internal/annotate"
	"github.com/ironsheep/cropmark-mcp/internal/imaging"
	"github.com/ironsheep/cropmark-mcp/internal/ocr"
	"github.com/ironsheep/cropmark-mcp/internal/selection"
	"github.com/ironsheep/cropmark-mcp/internal/session"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "session_open", "pointer_up").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// sessionEntry is one open session. mu serializes tool calls on it.
type sessionEntry struct {
	mu sync.Mutex

	id     string
	dir    string
	source *imaging.Source
	sess   *session.Session

	// preview is the latest overlay handed over during a drag, nil when
	// no drag has moved yet.
	preview     image.Image
	previewRect image.Rectangle
}

func (e *sessionEntry) setPreview(rect selection.Rectangle, overlay image.Image) {
	e.preview = overlay
	e.previewRect = rect.Bounds()
}

func (e *sessionEntry) clearPreview() {
	e.preview = nil
	e.previewRect = image.Rectangle{}
}

// dirState tracks an output directory across sessions.
type dirState struct {
	nextSeq int
	inUse   bool
}

// Region is a rectangle in display coordinates; X2 and Y2 are exclusive.
type Region struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

func regionOf(r image.Rectangle) Region {
	return Region{X1: r.Min.X, Y1: r.Min.Y, X2: r.Max.X, Y2: r.Max.Y}
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		s.logger.Warn("tool failed", "tool", params.Name, "error", err)
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Session lifecycle
	case "session_open":
		return s.handleSessionOpen(args)
	case "session_close":
		return s.handleSessionClose(args)
	case "session_state":
		return s.withSession(args, s.handleSessionState)

	// Pointer events
	case "pointer_down":
		return s.withSession(args, s.handlePointerDown)
	case "pointer_move":
		return s.withSession(args, s.handlePointerMove)
	case "pointer_up":
		return s.withSession(args, s.handlePointerUp)

	// Selection operations
	case "selection_cancel":
		return s.withSession(args, s.handleSelectionCancel)
	case "selection_undo":
		return s.withSession(args, s.handleSelectionUndo)
	case "selection_preview":
		return s.withSession(args, s.handleSelectionPreview)
	case "selection_ocr":
		return s.withSession(args, s.handleSelectionOCR)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

type sessionArgs struct {
	SessionID string `json:"session_id"`
}

// withSession looks up the session named in args and runs fn with the
// session locked.
func (s *Server) withSession(args json.RawMessage, fn func(*sessionEntry, json.RawMessage) (interface{}, error)) (interface{}, error) {
	var a sessionArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	e, err := s.lookup(a.SessionID)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e, args)
}

func (s *Server) lookup(id string) (*sessionEntry, error) {
	if id == "" {
		return nil, errors.New("session_id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("unknown session: %s", id)
	}
	return e, nil
}

// === Session Lifecycle Handlers ===

type sessionOpenArgs struct {
	Path          string `json:"path"`
	DisplayWidth  *int   `json:"display_width"`
	DisplayHeight *int   `json:"display_height"`
	OutputDir     string `json:"output_dir"`
}

type sessionOpenResult struct {
	SessionID    string          `json:"session_id"`
	Source       *imaging.Source `json:"source"`
	OutputDir    string          `json:"output_dir"`
	NextSequence int             `json:"next_sequence"`
}

func (s *Server) handleSessionOpen(args json.RawMessage) (interface{}, error) {
	var a sessionOpenArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errors.New("path is required")
	}

	width, height := s.cfg.Display.Width, s.cfg.Display.Height
	if a.DisplayWidth != nil {
		width = *a.DisplayWidth
	}
	if a.DisplayHeight != nil {
		height = *a.DisplayHeight
	}
	if width < 0 || height < 0 {
		return nil, fmt.Errorf("invalid display size %dx%d", width, height)
	}

	src, err := imaging.LoadSource(s.cache, a.Path, width, height)
	if err != nil {
		return nil, err
	}

	dir := a.OutputDir
	if dir == "" {
		dir = s.cfg.OutputDir
	}
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}

	managerOpts, err := s.cfg.ManagerOptions()
	if err != nil {
		return nil, err
	}
	style, err := s.cfg.AnnotationStyle()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ds := s.dirs[dir]
	if ds != nil && ds.inUse {
		return nil, fmt.Errorf("output directory %s is in use by another session", dir)
	}

	store, err := s.openStore(dir)
	if err != nil {
		return nil, err
	}

	if ds == nil {
		ds = &dirState{}
		s.dirs[dir] = ds
	} else {
		managerOpts = append(managerOpts, annotate.WithFirstSequence(ds.nextSeq))
	}

	e := &sessionEntry{
		id:     uuid.NewString(),
		dir:    dir,
		source: src,
	}
	e.sess = session.New(src.Display, store,
		session.WithManagerOptions(managerOpts...),
		session.WithPreview(session.PreviewRendererFunc(e.setPreview), style),
		session.WithLogger(s.logger.With("session", e.id)),
	)

	ds.inUse = true
	s.sessions[e.id] = e

	s.logger.Info("session opened",
		"session", e.id,
		"path", src.Path,
		"display", fmt.Sprintf("%dx%d", src.DisplayWidth, src.DisplayHeight),
		"output_dir", dir)

	return &sessionOpenResult{
		SessionID:    e.id,
		Source:       src,
		OutputDir:    dir,
		NextSequence: e.sess.NextSequence(),
	}, nil
}

func (s *Server) handleSessionClose(args json.RawMessage) (interface{}, error) {
	var a sessionArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	e, err := s.lookup(a.SessionID)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	next := e.sess.NextSequence()
	e.mu.Unlock()

	s.mu.Lock()
	delete(s.sessions, e.id)
	if ds := s.dirs[e.dir]; ds != nil {
		ds.inUse = false
		ds.nextSeq = next
	}
	s.mu.Unlock()

	s.logger.Info("session closed", "session", e.id, "next_sequence", next)
	return map[string]interface{}{
		"session_id": e.id,
		"closed":     true,
	}, nil
}

type dragInfo struct {
	Start selection.Point `json:"start"`
	End   selection.Point `json:"end"`
	Rect  Region          `json:"rect"`
}

type stateResult struct {
	SessionID    string                 `json:"session_id"`
	State        string                 `json:"state"`
	Drag         *dragInfo              `json:"drag,omitempty"`
	NextSequence int                    `json:"next_sequence"`
	Last         *annotate.ArtifactPair `json:"last,omitempty"`
}

func (s *Server) stateOf(e *sessionEntry) *stateResult {
	res := &stateResult{
		SessionID:    e.id,
		State:        e.sess.State().String(),
		NextSequence: e.sess.NextSequence(),
	}
	if cur, ok := e.sess.Current(); ok {
		res.Drag = &dragInfo{Start: cur.Start, End: cur.End, Rect: regionOf(cur.Bounds())}
	}
	if last, ok := e.sess.Last(); ok {
		res.Last = &last
	}
	return res
}

func (s *Server) handleSessionState(e *sessionEntry, _ json.RawMessage) (interface{}, error) {
	return s.stateOf(e), nil
}

// === Pointer Event Handlers ===

type pointerArgs struct {
	X *int `json:"x"`
	Y *int `json:"y"`
}

func parsePointer(args json.RawMessage) (int, int, error) {
	var a pointerArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return 0, 0, err
	}
	if a.X == nil || a.Y == nil {
		return 0, 0, errors.New("x and y are required")
	}
	return *a.X, *a.Y, nil
}

func (s *Server) handlePointerDown(e *sessionEntry, args json.RawMessage) (interface{}, error) {
	x, y, err := parsePointer(args)
	if err != nil {
		return nil, err
	}
	e.clearPreview()
	e.sess.PointerDown(x, y)
	return s.stateOf(e), nil
}

func (s *Server) handlePointerMove(e *sessionEntry, args json.RawMessage) (interface{}, error) {
	x, y, err := parsePointer(args)
	if err != nil {
		return nil, err
	}
	e.sess.PointerMove(x, y)
	return s.stateOf(e), nil
}

type pointerUpResult struct {
	Status string `json:"status"`

	Message       string                 `json:"message,omitempty"`
	Pair          *annotate.ArtifactPair `json:"pair,omitempty"`
	Bounds        *Region                `json:"bounds,omitempty"`
	CropPath      string                 `json:"crop_path,omitempty"`
	AnnotatedPath string                 `json:"annotated_path,omitempty"`
	NextSequence  int                    `json:"next_sequence"`
}

func (s *Server) handlePointerUp(e *sessionEntry, args json.RawMessage) (interface{}, error) {
	x, y, err := parsePointer(args)
	if err != nil {
		return nil, err
	}
	e.clearPreview()

	out, err := e.sess.PointerUp(x, y)
	switch {
	case errors.Is(err, session.ErrInvalidSelection):
		return &pointerUpResult{
			Status:       "invalid_selection",
			Message:      err.Error(),
			NextSequence: e.sess.NextSequence(),
		}, nil
	case err != nil:
		return nil, err
	case out == nil:
		return &pointerUpResult{
			Status:       "ignored",
			Message:      "no drag in progress",
			NextSequence: e.sess.NextSequence(),
		}, nil
	}

	bounds := regionOf(out.Bounds)
	return &pointerUpResult{
		Status:        "saved",
		Pair:          &out.Pair,
		Bounds:        &bounds,
		CropPath:      filepath.Join(e.dir, out.Pair.CropFilename),
		AnnotatedPath: filepath.Join(e.dir, out.Pair.AnnotatedFilename),
		NextSequence:  e.sess.NextSequence(),
	}, nil
}

// === Selection Handlers ===

func (s *Server) handleSelectionCancel(e *sessionEntry, _ json.RawMessage) (interface{}, error) {
	e.sess.Cancel()
	e.clearPreview()
	return s.stateOf(e), nil
}

func (s *Server) handleSelectionUndo(e *sessionEntry, _ json.RawMessage) (interface{}, error) {
	pair, ok, err := e.sess.Undo()
	if err != nil {
		return nil, err
	}
	if !ok {
		return map[string]interface{}{"undone": false}, nil
	}
	return map[string]interface{}{
		"undone":  true,
		"removed": pair.Filenames(),
		"pair":    pair,
	}, nil
}

type previewResult struct {
	Rect Region `json:"rect"`
	*imaging.EncodedImage
}

func (s *Server) handleSelectionPreview(e *sessionEntry, _ json.RawMessage) (interface{}, error) {
	if e.preview == nil {
		return nil, errors.New("no preview available: press and move the pointer first")
	}
	enc, err := imaging.EncodePNG(e.preview)
	if err != nil {
		return nil, err
	}
	return &previewResult{Rect: regionOf(e.previewRect), EncodedImage: enc}, nil
}

type selectionOCRArgs struct {
	Language string `json:"language"`
}

type selectionOCRResult struct {
	Sequence int    `json:"sequence"`
	Bounds   Region `json:"bounds"`
	*ocr.Result
}

func (s *Server) handleSelectionOCR(e *sessionEntry, args json.RawMessage) (interface{}, error) {
	var a selectionOCRArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Language == "" {
		a.Language = s.cfg.OCRLanguage
	}

	crop, bounds, ok := e.sess.LastCrop()
	if !ok {
		return nil, errors.New("no saved selection to read")
	}
	pair, _ := e.sess.Last()

	res, err := ocr.Recognize(crop, bounds.Min, a.Language)
	if err != nil {
		return nil, err
	}
	return &selectionOCRResult{Sequence: pair.Sequence, Bounds: regionOf(bounds), Result: res}, nil
}
