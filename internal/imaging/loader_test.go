package imaging

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

// createTestImage writes a solid-color PNG into a temp dir and returns its path.
func createTestImage(t *testing.T, width, height int, c color.Color) string {
	t.Helper()
	img := createInMemoryImage(width, height, c)

	path := filepath.Join(t.TempDir(), "source.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return path
}

func createInMemoryImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// createPatternImage creates an image with different colors in each quadrant
func createPatternImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var c color.Color
			if x < width/2 && y < height/2 {
				c = color.RGBA{255, 0, 0, 255} // Red top-left
			} else if x >= width/2 && y < height/2 {
				c = color.RGBA{0, 255, 0, 255} // Green top-right
			} else if x < width/2 && y >= height/2 {
				c = color.RGBA{0, 0, 255, 255} // Blue bottom-left
			} else {
				c = color.RGBA{255, 255, 255, 255} // White bottom-right
			}
			img.Set(x, y, c)
		}
	}
	return img
}

func rgbaAt(img image.Image, x, y int) color.RGBA {
	return color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
}

func TestImageCache_Load(t *testing.T) {
	path := createTestImage(t, 40, 30, color.RGBA{255, 0, 0, 255})
	cache := NewImageCache()

	img, err := cache.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if img.Bounds().Dx() != 40 || img.Bounds().Dy() != 30 {
		t.Errorf("dimensions: got %dx%d, want 40x30", img.Bounds().Dx(), img.Bounds().Dy())
	}
	if cache.Len() != 1 {
		t.Errorf("Len: got %d, want 1", cache.Len())
	}

	again, err := cache.Load(path)
	if err != nil {
		t.Fatalf("second Load failed: %v", err)
	}
	if again != img {
		t.Error("second Load should return the cached image")
	}
}

func TestImageCache_Load_Errors(t *testing.T) {
	cache := NewImageCache()

	if _, err := cache.Load(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Error("Load should fail for a missing file")
	}

	bogus := filepath.Join(t.TempDir(), "bogus.png")
	if err := os.WriteFile(bogus, []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := cache.Load(bogus); err == nil {
		t.Error("Load should fail for undecodable data")
	}
	if cache.Len() != 0 {
		t.Errorf("failed loads must not be cached, Len=%d", cache.Len())
	}
}

func TestImageCache_Evict(t *testing.T) {
	path := createTestImage(t, 10, 10, color.White)
	cache := NewImageCache()
	if _, err := cache.Load(path); err != nil {
		t.Fatal(err)
	}
	cache.Evict(path)
	cache.Evict("never-loaded.png")
	if cache.Len() != 0 {
		t.Errorf("Len after Evict: got %d, want 0", cache.Len())
	}
}

func TestImageCache_ConcurrentAccess(t *testing.T) {
	path := createTestImage(t, 20, 20, color.White)
	cache := NewImageCache()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.Load(path); err != nil {
				t.Errorf("Load failed: %v", err)
			}
		}()
	}
	wg.Wait()
}

func TestLoadSource(t *testing.T) {
	path := createTestImage(t, 400, 300, color.RGBA{0, 0, 255, 255})
	cache := NewImageCache()

	tests := []struct {
		name         string
		dispW, dispH int
		wantW, wantH int
	}{
		{"keep size", 0, 0, 400, 300},
		{"resize", 800, 600, 800, 600},
		{"only width given", 800, 0, 400, 300},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := LoadSource(cache, path, tt.dispW, tt.dispH)
			if err != nil {
				t.Fatalf("LoadSource failed: %v", err)
			}
			if src.Width != 400 || src.Height != 300 {
				t.Errorf("source dims: got %dx%d, want 400x300", src.Width, src.Height)
			}
			if src.DisplayWidth != tt.wantW || src.DisplayHeight != tt.wantH {
				t.Errorf("display dims: got %dx%d, want %dx%d", src.DisplayWidth, src.DisplayHeight, tt.wantW, tt.wantH)
			}
			if src.Format != "png" {
				t.Errorf("Format: got %s, want png", src.Format)
			}
		})
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := map[string]string{
		"a.png":  "png",
		"a.JPG":  "jpeg",
		"a.jpeg": "jpeg",
		"a.gif":  "gif",
		"a.bmp":  "bmp",
		"a.tiff": "tiff",
		"a.webp": "unknown",
	}
	for path, want := range tests {
		if got := formatFromPath(path); got != want {
			t.Errorf("formatFromPath(%q): got %s, want %s", path, got, want)
		}
	}
}
