package imaging

import (
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
)

// ImageCache holds decoded source images keyed by path so that reopening a
// session on the same file does not hit the disk again.
//
// ImageCache is safe for concurrent use.
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]image.Image
}

// NewImageCache creates an empty image cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images: make(map[string]image.Image),
	}
}

// Load returns the decoded image at path, reading it from disk on first use.
//
// The cache is keyed by the exact path string; a relative and an absolute
// path to the same file produce separate entries.
func (c *ImageCache) Load(path string) (image.Image, error) {
	c.mu.RLock()
	if img, ok := c.images[path]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	c.mu.Lock()
	c.images[path] = img
	c.mu.Unlock()

	return img, nil
}

// Evict drops path from the cache. Unknown paths are ignored.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}

// Len reports how many images are cached.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

// Source is an image prepared for interactive selection: the decoded file
// plus the buffer actually displayed to the user.
type Source struct {
	Path   string `json:"path"`
	Format string `json:"format"`

	// Width and Height are the dimensions of the file on disk.
	Width  int `json:"width"`
	Height int `json:"height"`

	// DisplayWidth and DisplayHeight are the dimensions of Display. Pointer
	// coordinates are expressed in this space.
	DisplayWidth  int `json:"display_width"`
	DisplayHeight int `json:"display_height"`

	Display image.Image `json:"-"`
}

// LoadSource loads path through cache and fits it to the requested display
// size. A zero displayWidth or displayHeight keeps the source dimensions.
func LoadSource(cache *ImageCache, path string, displayWidth, displayHeight int) (*Source, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	display := FitDisplay(img, displayWidth, displayHeight)

	return &Source{
		Path:          path,
		Format:        formatFromPath(path),
		Width:         bounds.Dx(),
		Height:        bounds.Dy(),
		DisplayWidth:  display.Bounds().Dx(),
		DisplayHeight: display.Bounds().Dy(),
		Display:       display,
	}, nil
}

// FitDisplay resizes img to exactly width x height. If either dimension is
// zero or matches the source already, img is returned unchanged.
func FitDisplay(img image.Image, width, height int) image.Image {
	b := img.Bounds()
	if width <= 0 || height <= 0 || (b.Dx() == width && b.Dy() == height) {
		return img
	}
	return imaging.Resize(img, width, height, imaging.Lanczos)
}

func formatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "png"
	case ".jpg", ".jpeg":
		return "jpeg"
	case ".gif":
		return "gif"
	case ".bmp":
		return "bmp"
	case ".tif", ".tiff":
		return "tiff"
	default:
		return "unknown"
	}
}
