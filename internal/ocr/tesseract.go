package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// Bounds is a bounding box in pixel coordinates; X2 and Y2 are exclusive.
type Bounds struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// Word is one recognized word.
type Word struct {
	Text string `json:"text"`

	// Confidence is Tesseract's confidence score scaled to 0.0-1.0.
	Confidence float64 `json:"confidence"`

	Bounds Bounds `json:"bounds"`
}

// Result is the text recognized in one image.
type Result struct {
	// Text is all recognized text with Tesseract's line breaks, trimmed.
	Text string `json:"text"`

	// Words may be empty even when Text is not, if box extraction fails.
	Words []Word `json:"words"`
}

// Recognize runs OCR on img. origin is added to every word box, which lets
// callers map boxes found in a crop back onto the image it was cut from.
func Recognize(img image.Image, origin image.Point, language string) (*Result, error) {
	if language == "" {
		language = "eng"
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image for OCR: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(language); err != nil {
		return nil, fmt.Errorf("failed to set language: %w", err)
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return nil, fmt.Errorf("tesseract OCR failed: %w", err)
	}

	words := []Word{}
	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err == nil {
		for _, box := range boxes {
			w := strings.TrimSpace(box.Word)
			if w == "" {
				continue
			}
			words = append(words, Word{
				Text:       w,
				Confidence: box.Confidence / 100.0,
				Bounds: Bounds{
					X1: box.Box.Min.X + origin.X,
					Y1: box.Box.Min.Y + origin.Y,
					X2: box.Box.Max.X + origin.X,
					Y2: box.Box.Max.Y + origin.Y,
				},
			})
		}
	}

	return &Result{
		Text:  strings.TrimSpace(text),
		Words: words,
	}, nil
}
