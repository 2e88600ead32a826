package annotate

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/cropmark-mcp/internal/imaging"
	"github.com/ironsheep/cropmark-mcp/internal/selection"
)

func solidImage(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func rect(x1, y1, x2, y2 int) selection.Rectangle {
	return selection.Rectangle{Start: selection.Pt(x1, y1), End: selection.Pt(x2, y2)}
}

func rgbaAt(img image.Image, x, y int) color.RGBA {
	return color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
}

func TestManager_SubmitScenario(t *testing.T) {
	src := solidImage(200, 200, color.RGBA{0, 0, 0, 255})
	m := NewManager()
	require.Equal(t, 1, m.NextSequence())

	res, err := m.Submit(rect(10, 10, 110, 90), src)
	require.NoError(t, err)

	assert.Equal(t, image.Rect(10, 10, 110, 90), res.Bounds)
	assert.Equal(t, 100, res.Crop.Bounds().Dx())
	assert.Equal(t, 80, res.Crop.Bounds().Dy())
	assert.Equal(t, src.Bounds(), res.Annotated.Bounds())

	style := imaging.DefaultAnnotationStyle()
	assert.Equal(t, style.MarkerColor, rgbaAt(res.Annotated, 10, 10))
	assert.Equal(t, style.MarkerColor, rgbaAt(res.Annotated, 110, 90))
	assert.Equal(t, color.RGBA{0, 0, 0, 255}, rgbaAt(src, 10, 10), "source must not be mutated")

	assert.Equal(t, ArtifactPair{Sequence: 1, CropFilename: "crop_1.png", AnnotatedFilename: "annotated_1.png"}, res.Pair)
	assert.Equal(t, 2, m.NextSequence())

	last, ok := m.Last()
	require.True(t, ok)
	assert.Equal(t, res.Pair, last)
}

func TestManager_ReverseDragCropsSamePixels(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 50, 50))
	for y := 0; y < 50; y++ {
		for x := 0; x < 50; x++ {
			src.Set(x, y, color.RGBA{uint8(x * 5), uint8(y * 5), 0, 255})
		}
	}

	forward, err := NewManager().Submit(rect(5, 8, 30, 40), src)
	require.NoError(t, err)

	for _, r := range []selection.Rectangle{rect(30, 40, 5, 8), rect(30, 8, 5, 40), rect(5, 40, 30, 8)} {
		res, err := NewManager().Submit(r, src)
		require.NoError(t, err)
		assert.Equal(t, forward.Bounds, res.Bounds)
		assert.Equal(t, rgbaAt(forward.Crop, 0, 0), rgbaAt(res.Crop, 0, 0))
		assert.Equal(t, rgbaAt(forward.Crop, 24, 31), rgbaAt(res.Crop, 24, 31))
	}
}

func TestManager_InvalidSelectionLeavesStateUnchanged(t *testing.T) {
	src := solidImage(100, 100, color.White)
	m := NewManager()

	first, err := m.Submit(rect(1, 1, 20, 20), src)
	require.NoError(t, err)

	tests := []struct {
		name string
		r    selection.Rectangle
	}{
		{"zero width", rect(5, 5, 5, 40)},
		{"zero height", rect(5, 5, 40, 5)},
		{"outside image", rect(150, 150, 180, 190)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := m.Submit(tt.r, src)
			assert.Nil(t, res)
			assert.ErrorIs(t, err, ErrInvalidSelection)
			assert.Equal(t, 2, m.NextSequence())
			last, ok := m.Last()
			assert.True(t, ok)
			assert.Equal(t, first.Pair, last)
		})
	}
}

func TestManager_ConsecutiveSubmitsIncrease(t *testing.T) {
	src := solidImage(100, 100, color.White)
	m := NewManager()

	a, err := m.Submit(rect(0, 0, 10, 10), src)
	require.NoError(t, err)
	b, err := m.Submit(rect(0, 0, 10, 10), src)
	require.NoError(t, err)

	assert.Greater(t, b.Pair.Sequence, a.Pair.Sequence)
	assert.NotEqual(t, a.Pair.CropFilename, b.Pair.CropFilename)
	assert.NotEqual(t, a.Pair.AnnotatedFilename, b.Pair.AnnotatedFilename)
	assert.NotEqual(t, a.Pair.CropFilename, b.Pair.AnnotatedFilename)
}

func TestManager_Undo(t *testing.T) {
	src := solidImage(100, 100, color.White)
	m := NewManager()

	_, ok := m.Undo()
	assert.False(t, ok, "undo with nothing submitted is a no-op")

	res, err := m.Submit(rect(10, 10, 60, 60), src)
	require.NoError(t, err)

	pair, ok := m.Undo()
	require.True(t, ok)
	assert.Equal(t, res.Pair, pair)

	_, ok = m.Last()
	assert.False(t, ok)

	_, ok = m.Undo()
	assert.False(t, ok, "second undo is a no-op")
	assert.Equal(t, 2, m.NextSequence(), "undo never rolls the counter back")
}

func TestManager_SequenceNeverReusedAfterUndo(t *testing.T) {
	src := solidImage(100, 100, color.White)
	m := NewManager()
	r := rect(10, 10, 60, 60)

	first, err := m.Submit(r, src)
	require.NoError(t, err)
	_, ok := m.Undo()
	require.True(t, ok)

	second, err := m.Submit(r, src)
	require.NoError(t, err)
	assert.Greater(t, second.Pair.Sequence, first.Pair.Sequence)
	assert.Equal(t, "crop_2.png", second.Pair.CropFilename)
}

func TestManager_OnlyLatestPairIsUndoable(t *testing.T) {
	src := solidImage(100, 100, color.White)
	m := NewManager()

	_, err := m.Submit(rect(0, 0, 10, 10), src)
	require.NoError(t, err)
	second, err := m.Submit(rect(0, 0, 20, 20), src)
	require.NoError(t, err)

	pair, ok := m.Undo()
	require.True(t, ok)
	assert.Equal(t, second.Pair, pair)

	_, ok = m.Undo()
	assert.False(t, ok, "superseded pairs are not tracked")
}

func TestManager_Rollback(t *testing.T) {
	src := solidImage(100, 100, color.White)
	m := NewManager()

	first, err := m.Submit(rect(0, 0, 10, 10), src)
	require.NoError(t, err)
	second, err := m.Submit(rect(0, 0, 20, 20), src)
	require.NoError(t, err)

	require.True(t, m.Rollback(second))
	last, ok := m.Last()
	require.True(t, ok)
	assert.Equal(t, first.Pair, last)
	assert.Equal(t, 3, m.NextSequence())

	assert.False(t, m.Rollback(second), "rollback applies once")
	assert.False(t, m.Rollback(nil))
}

func TestManager_RollbackWithoutPrevious(t *testing.T) {
	src := solidImage(100, 100, color.White)
	m := NewManager()

	res, err := m.Submit(rect(0, 0, 10, 10), src)
	require.NoError(t, err)
	require.True(t, m.Rollback(res))

	_, ok := m.Last()
	assert.False(t, ok)
}

func TestManager_Options(t *testing.T) {
	src := solidImage(100, 100, color.White)
	m := NewManager(
		WithNaming(Naming{CropPrefix: "Task_1_Cropped_", AnnotatedPrefix: "Task_1_insights_", Extension: "jpeg"}),
		WithFirstSequence(7),
	)

	res, err := m.Submit(rect(0, 0, 10, 10), src)
	require.NoError(t, err)
	assert.Equal(t, "Task_1_Cropped_7.jpeg", res.Pair.CropFilename)
	assert.Equal(t, "Task_1_insights_7.jpeg", res.Pair.AnnotatedFilename)

	assert.Equal(t, 1, NewManager(WithFirstSequence(0)).NextSequence())
}

func TestNaming_Validate(t *testing.T) {
	tests := []struct {
		name    string
		n       Naming
		wantErr bool
	}{
		{"default", DefaultNaming(), false},
		{"same prefix", Naming{CropPrefix: "x_", AnnotatedPrefix: "x_", Extension: "png"}, true},
		{"nested prefix", Naming{CropPrefix: "a", AnnotatedPrefix: "a1", Extension: "png"}, true},
		{"empty extension", Naming{CropPrefix: "c_", AnnotatedPrefix: "a_", Extension: "."}, true},
		{"path separator", Naming{CropPrefix: "out/c_", AnnotatedPrefix: "a_", Extension: "png"}, true},
		{"dotted extension", Naming{CropPrefix: "c_", AnnotatedPrefix: "a_", Extension: ".jpg"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.n.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	assert.Equal(t, "c_3.jpg", Naming{CropPrefix: "c_", AnnotatedPrefix: "a_", Extension: ".jpg"}.Pair(3).CropFilename)
}
