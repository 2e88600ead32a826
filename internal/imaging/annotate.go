package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/anthonynsimon/bild/clone"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Annotate returns a full-size copy of src with a filled marker at start and
// at end, each labelled with its coordinates as "(x, y)". src is not modified.
//
// Points are drawn exactly where given, so a drag from bottom-right to
// top-left keeps its markers on the points the user actually pressed and
// released.
func Annotate(src image.Image, start, end image.Point, style AnnotationStyle) *image.RGBA {
	out := clone.AsRGBA(src)

	for _, p := range []image.Point{start, end} {
		drawFilledCircle(out, p, style.MarkerRadius, style.MarkerColor)
	}
	for _, p := range []image.Point{start, end} {
		label := fmt.Sprintf("(%d, %d)", p.X, p.Y)
		drawText(out, p.X+style.LabelOffsetX, p.Y+style.LabelOffsetY, label, style.LabelColor)
	}
	return out
}

// PreviewOverlay returns a copy of src with the outline of r drawn on it.
// It is a disposable buffer for live feedback during a drag; src is never
// modified. r need not be normalized.
func PreviewOverlay(src image.Image, r image.Rectangle, style AnnotationStyle) *image.RGBA {
	out := clone.AsRGBA(src)
	drawRectOutline(out, r.Canon(), style.PreviewThickness, style.PreviewColor)
	return out
}

// drawFilledCircle fills every pixel within radius of center, clipped to the
// image bounds.
func drawFilledCircle(img *image.RGBA, center image.Point, radius int, col color.RGBA) {
	if radius <= 0 {
		if center.In(img.Bounds()) {
			img.SetRGBA(center.X, center.Y, col)
		}
		return
	}

	bounds := img.Bounds()
	r2 := radius * radius
	for y := center.Y - radius; y <= center.Y+radius; y++ {
		if y < bounds.Min.Y || y >= bounds.Max.Y {
			continue
		}
		for x := center.X - radius; x <= center.X+radius; x++ {
			if x < bounds.Min.X || x >= bounds.Max.X {
				continue
			}
			dx := x - center.X
			dy := y - center.Y
			if dx*dx+dy*dy <= r2 {
				img.SetRGBA(x, y, col)
			}
		}
	}
}

// drawRectOutline draws a border of the given thickness just inside r.
func drawRectOutline(img *image.RGBA, r image.Rectangle, thickness int, col color.RGBA) {
	if thickness < 1 {
		thickness = 1
	}
	u := image.NewUniform(col)
	edges := []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+thickness), // top
		image.Rect(r.Min.X, r.Max.Y-thickness, r.Max.X, r.Max.Y), // bottom
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+thickness, r.Max.Y), // left
		image.Rect(r.Max.X-thickness, r.Min.Y, r.Max.X, r.Max.Y), // right
	}
	for _, e := range edges {
		draw.Draw(img, e.Intersect(r).Intersect(img.Bounds()), u, image.Point{}, draw.Src)
	}
}

// drawText renders text with its baseline origin at (x, y). The string is
// drawn twice, one pixel apart, so it stays legible on busy photos.
func drawText(img *image.RGBA, x, y int, text string, col color.RGBA) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
	}
	for _, dx := range []int{0, 1} {
		d.Dot = fixed.P(x+dx, y)
		d.DrawString(text)
	}
}
