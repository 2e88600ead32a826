// Package imaging provides the pixel operations behind region selection.
//
// It crops selected regions, builds annotated copies with corner markers and
// coordinate labels, renders the live drag preview, fits source images to
// the display size and caches decoded sources.
//
// # Coordinate System
//
// All pixel coordinates are 0-based with (0,0) at the top-left corner, X
// increasing rightward and Y increasing downward. Regions are half-open:
// Min is inclusive and Max is exclusive.
//
// # Buffers
//
// Functions never modify the image passed in. Crops, annotated copies and
// previews are freshly allocated, so callers may hand the source to several
// operations without copying it first.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. The drawing functions are stateless
// and may run concurrently on different or shared read-only sources.
package imaging
