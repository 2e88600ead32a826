package imaging

import (
	"fmt"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

// AnnotationStyle controls how selections are drawn on annotated copies and
// on live previews.
type AnnotationStyle struct {
	MarkerColor  color.RGBA
	MarkerRadius int

	LabelColor color.RGBA
	// LabelOffset is added to a marker's position to get the text baseline origin.
	LabelOffsetX int
	LabelOffsetY int

	PreviewColor     color.RGBA
	PreviewThickness int
}

// DefaultAnnotationStyle is red dots of radius 5,
// white labels 10px right of and 10px above each point, and a 2px yellow
// preview rectangle.
func DefaultAnnotationStyle() AnnotationStyle {
	return AnnotationStyle{
		MarkerColor:      color.RGBA{255, 0, 0, 255},
		MarkerRadius:     5,
		LabelColor:       color.RGBA{255, 255, 255, 255},
		LabelOffsetX:     10,
		LabelOffsetY:     -10,
		PreviewColor:     color.RGBA{255, 255, 0, 255},
		PreviewThickness: 2,
	}
}

// ParseHexColor parses "#RRGGBB" or "#RGB" into an opaque color.
func ParseHexColor(hex string) (color.RGBA, error) {
	if hex == "" {
		return color.RGBA{}, fmt.Errorf("empty color string")
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}
