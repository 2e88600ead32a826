package server

import "testing"

func TestToolDefinitions(t *testing.T) {
	expectedTools := []string{
		"session_open",
		"session_close",
		"session_state",
		"pointer_down",
		"pointer_move",
		"pointer_up",
		"selection_cancel",
		"selection_undo",
		"selection_preview",
		"selection_ocr",
	}

	tools := GetToolDefinitions()
	if len(tools) != len(expectedTools) {
		t.Errorf("Expected %d tools, got %d", len(expectedTools), len(tools))
	}

	toolMap := make(map[string]Tool)
	for _, tool := range tools {
		if _, dup := toolMap[tool.Name]; dup {
			t.Errorf("Duplicate tool %s", tool.Name)
		}
		toolMap[tool.Name] = tool
	}

	for _, name := range expectedTools {
		if _, ok := toolMap[name]; !ok {
			t.Errorf("Expected tool %s not found", name)
		}
	}
}

func TestToolDefinitions_Structure(t *testing.T) {
	for _, tool := range GetToolDefinitions() {
		t.Run(tool.Name, func(t *testing.T) {
			if tool.Description == "" {
				t.Error("Tool description is empty")
			}
			if tool.InputSchema["type"] != "object" {
				t.Errorf("InputSchema type: got %v, want 'object'", tool.InputSchema["type"])
			}
			if _, ok := tool.InputSchema["properties"].(map[string]interface{}); !ok {
				t.Error("InputSchema properties missing")
			}
		})
	}
}

func TestToolDefinitions_Required(t *testing.T) {
	tests := []struct {
		tool     string
		required []string
	}{
		{"session_open", []string{"path"}},
		{"session_close", []string{"session_id"}},
		{"pointer_down", []string{"session_id", "x", "y"}},
		{"pointer_move", []string{"session_id", "x", "y"}},
		{"pointer_up", []string{"session_id", "x", "y"}},
		{"selection_undo", []string{"session_id"}},
		{"selection_ocr", []string{"session_id"}},
	}

	toolMap := make(map[string]Tool)
	for _, tool := range GetToolDefinitions() {
		toolMap[tool.Name] = tool
	}

	for _, tt := range tests {
		t.Run(tt.tool, func(t *testing.T) {
			required, ok := toolMap[tt.tool].InputSchema["required"].([]string)
			if !ok {
				t.Fatal("required should be a []string")
			}
			props := toolMap[tt.tool].InputSchema["properties"].(map[string]interface{})
			if len(required) != len(tt.required) {
				t.Fatalf("required: got %v, want %v", required, tt.required)
			}
			for i, name := range tt.required {
				if required[i] != name {
					t.Errorf("required[%d]: got %s, want %s", i, required[i], name)
				}
				if _, ok := props[name]; !ok {
					t.Errorf("required field %s has no property schema", name)
				}
			}
		})
	}
}
