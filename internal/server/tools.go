package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func sessionIDProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID returned by session_open",
	}
}

// pointerSchema is shared by pointer_down, pointer_move and pointer_up.
func pointerSchema(what string) map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"session_id": sessionIDProperty(),
			"x": map[string]interface{}{
				"type":        "integer",
				"description": "X coordinate of the " + what + " in display pixels",
			},
			"y": map[string]interface{}{
				"type":        "integer",
				"description": "Y coordinate of the " + what + " in display pixels",
			},
		},
		"required": []string{"session_id", "x", "y"},
	}
}

func sessionOnlySchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"session_id": sessionIDProperty(),
		},
		"required": []string{"session_id"},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Session lifecycle
		{
			Name:        "session_open",
			Description: "Open an image for interactive region selection. The image is optionally resized for display; all pointer coordinates are in display pixels. Returns a session_id for the other tools.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
					"display_width": map[string]interface{}{
						"type":        "integer",
						"description": "Width to display the image at (default: configured display width, 0 keeps the source size)",
					},
					"display_height": map[string]interface{}{
						"type":        "integer",
						"description": "Height to display the image at (default: configured display height, 0 keeps the source size)",
					},
					"output_dir": map[string]interface{}{
						"type":        "string",
						"description": "Directory crops and annotated copies are written to (default: configured output_dir)",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "session_close",
			Description: "Close a session. Files already written are kept.",
			InputSchema: sessionOnlySchema(),
		},
		{
			Name:        "session_state",
			Description: "Report the drag state, the in-progress rectangle, the next sequence number and the most recent saved pair.",
			InputSchema: sessionOnlySchema(),
		},

		// Pointer events
		{
			Name:        "pointer_down",
			Description: "Press the pointer at (x, y), starting a rectangle selection. Pressing again during a drag restarts it.",
			InputSchema: pointerSchema("press"),
		},
		{
			Name:        "pointer_move",
			Description: "Move the pointer to (x, y). During a drag this updates the preview rectangle; otherwise it is ignored.",
			InputSchema: pointerSchema("pointer"),
		},
		{
			Name:        "pointer_up",
			Description: "Release the pointer at (x, y), finishing the drag. The selected region is cropped, an annotated copy with marked corner points is made, and both are saved with increasing sequence numbers. A zero-width or zero-height selection is reported as invalid_selection and nothing is saved.",
			InputSchema: pointerSchema("release"),
		},

		// Selection operations
		{
			Name:        "selection_cancel",
			Description: "Abandon the drag in progress without saving anything.",
			InputSchema: sessionOnlySchema(),
		},
		{
			Name:        "selection_undo",
			Description: "Delete the most recently saved crop and annotated files. Only the latest pair can be undone; sequence numbers are not reused.",
			InputSchema: sessionOnlySchema(),
		},
		{
			Name:        "selection_preview",
			Description: "Return the display image with the in-progress selection rectangle drawn on it as base64-encoded PNG.",
			InputSchema: sessionOnlySchema(),
		},
		{
			Name:        "selection_ocr",
			Description: "Run OCR on the most recently saved crop. Word bounding boxes are reported in display coordinates.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session_id": sessionIDProperty(),
					"language": map[string]interface{}{
						"type":        "string",
						"description": "Tesseract language code (default: configured ocr_language)",
					},
				},
				"required": []string{"session_id"},
			},
		},
	}
}
