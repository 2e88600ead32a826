// Package ocr reads text out of selected regions using Tesseract.
//
// It wraps gosseract/v2, which links against the native Tesseract library.
// Tesseract and the language data for each requested language must be
// installed on the host:
//   - Ubuntu/Debian: apt-get install tesseract-ocr tesseract-ocr-eng
//   - macOS: brew install tesseract
//
// Images are passed to Tesseract in memory as PNG; nothing is written to
// disk. Word boxes are reported in the coordinate space of the image that
// was recognized, offset by the origin the caller supplies, so text found
// in a crop can be located on the full display image.
package ocr
