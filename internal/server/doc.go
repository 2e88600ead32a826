// Package server implements the MCP (Model Context Protocol) server for
// interactive region selection.
//
// A client opens a session on an image, then replays pointer events against
// it. Each completed drag crops the selected region, draws the two corner
// points onto a copy of the image and saves both files to the session's
// output directory under increasing sequence numbers.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Session lifecycle:
//   - session_open: Load an image, optionally resized for display
//   - session_close: Forget a session
//   - session_state: Drag state, next sequence and live pair
//
// Pointer events (display coordinates):
//   - pointer_down, pointer_move, pointer_up
//
// Selection operations:
//   - selection_cancel: Abandon the current drag
//   - selection_undo: Delete the latest saved pair
//   - selection_preview: The display image with the live rectangle drawn
//   - selection_ocr: Text in the latest saved crop
//
// Only one open session may write to a given output directory. Sequence
// numbers continue across sessions on the same directory for the lifetime
// of the process.
//
// # Error Handling
//
// A zero-area selection is not an error: pointer_up reports it with
// status "invalid_selection". Other failures, including files that could
// not be written or deleted, are JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string
//
// # Usage
//
//	srv := server.New(cfg, server.WithLogger(logger))
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
