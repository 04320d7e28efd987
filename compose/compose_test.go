package compose

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chaos-io/photobooth/camera"
	"github.com/chaos-io/photobooth/drag"
	"github.com/chaos-io/photobooth/studio"
	"github.com/chaos-io/photobooth/util"
)

type sizes map[string]drag.Size

func (s sizes) RenderedSize(id string) (drag.Size, bool) {
	sz, ok := s[id]
	return sz, ok
}

func gradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 255 / w), G: uint8(y * 255 / h), B: 64, A: 255})
		}
	}
	return img
}

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func rgba8(img image.Image, x, y int) color.NRGBA {
	return color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
}

func newCompositor(t *testing.T) *Compositor {
	t.Helper()
	c, err := NewCompositor(nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestCaptureKeepsNativeResolution(t *testing.T) {
	c := newCompositor(t)
	out, err := c.Capture(camera.NewStill(gradient(1280, 720)), Scene{Frame: studio.FrameNone}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1280, out.Bounds().Dx())
	assert.Equal(t, 720, out.Bounds().Dy())
}

func TestCaptureNoFrame(t *testing.T) {
	c := newCompositor(t)

	_, err := c.Capture(nil, Scene{}, nil)
	assert.ErrorIs(t, err, ErrNoFrame)

	_, err = c.Capture(camera.NewStill(image.NewNRGBA(image.Rect(0, 0, 0, 0))), Scene{}, nil)
	assert.ErrorIs(t, err, ErrNoFrame)

	s := camera.NewStill(gradient(4, 4))
	require.NoError(t, s.Close())
	_, err = c.Capture(s, Scene{}, nil)
	assert.ErrorIs(t, err, ErrNoFrame)
}

func TestCaptureMirrorsVideoOnly(t *testing.T) {
	c := newCompositor(t)
	src := gradient(64, 32)

	out, err := c.Capture(camera.NewStill(src), Scene{Mirrored: true, Frame: studio.FrameNone}, nil)
	require.NoError(t, err)

	w := src.Bounds().Dx()
	for _, y := range []int{0, 10, 31} {
		for _, x := range []int{0, 7, 32, 63} {
			assert.Equal(t, src.NRGBAAt(w-1-x, y), rgba8(out, x, y), "pixel %d,%d", x, y)
		}
	}
}

func TestCaptureAppliesFilter(t *testing.T) {
	c := newCompositor(t)
	src := solid(16, 16, color.NRGBA{R: 200, G: 40, B: 40, A: 255})

	out, err := c.Capture(camera.NewStill(src), Scene{Filter: "grayscale(100%)"}, nil)
	require.NoError(t, err)
	p := rgba8(out, 8, 8)
	assert.InDelta(t, p.R, p.G, 1)
	assert.InDelta(t, p.G, p.B, 1)

	_, err = c.Capture(camera.NewStill(src), Scene{Filter: "wobble(3)"}, nil)
	assert.Error(t, err)
}

func TestCaptureWantedFrame(t *testing.T) {
	c := newCompositor(t)
	src := solid(800, 600, color.NRGBA{A: 255})

	out, err := c.Capture(camera.NewStill(src), Scene{Frame: studio.FrameWanted}, nil)
	require.NoError(t, err)

	border := rgba8(out, 20, 300)
	assert.InDelta(t, 0xd4, border.R, 8)
	assert.InDelta(t, 0xb4, border.G, 8)
	assert.InDelta(t, 0x83, border.B, 8)

	// The middle of the picture stays untouched.
	assert.Equal(t, color.NRGBA{A: 255}, rgba8(out, 400, 250))
}

func TestCapturePreviewOnlyFramesAreNotBurnedIn(t *testing.T) {
	c := newCompositor(t)
	src := gradient(80, 60)

	for _, f := range []studio.Frame{studio.FramePolaroid, studio.FrameQualified, studio.FramePodium} {
		out, err := c.Capture(camera.NewStill(src), Scene{Frame: f}, nil)
		require.NoError(t, err)
		assert.Equal(t, src.NRGBAAt(0, 0), rgba8(out, 0, 0), string(f))
		assert.Equal(t, src.NRGBAAt(79, 59), rgba8(out, 79, 59), string(f))
	}
}

func TestCaptureStickers(t *testing.T) {
	c := newCompositor(t)
	src := solid(400, 300, color.NRGBA{R: 30, G: 90, B: 160, A: 255})
	scene := Scene{
		Container: drag.Size{W: 400, H: 300},
		Stickers: []studio.Sticker{
			{ID: "a", Content: "GG", IsText: true, Color: studio.ColorYellow, X: 100, Y: 100},
		},
	}

	plain, err := c.Capture(camera.NewStill(src), Scene{}, nil)
	require.NoError(t, err)

	t.Run("unmeasured sticker is skipped", func(t *testing.T) {
		out, err := c.Capture(camera.NewStill(src), scene, sizes{})
		require.NoError(t, err)
		assert.Equal(t, plain.(*image.RGBA).Pix, out.(*image.RGBA).Pix)
	})

	t.Run("measured sticker is drawn", func(t *testing.T) {
		out, err := c.Capture(camera.NewStill(src), scene, sizes{"a": {W: 60, H: 40}})
		require.NoError(t, err)

		changed := 0
		for y := 100; y < 160; y++ {
			for x := 95; x < 180; x++ {
				if rgba8(out, x, y) != rgba8(plain, x, y) {
					changed++
				}
			}
		}
		assert.Positive(t, changed)
	})
}

func TestCaptureDataURI(t *testing.T) {
	c := newCompositor(t)
	uri, err := c.CaptureDataURI(camera.NewStill(gradient(32, 24)), Scene{}, nil)
	require.NoError(t, err)

	img, err := util.DecodeDataURIImage(uri)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 32, 24), img.Bounds())
}

func changedPixels(a, b image.Image) int {
	n := 0
	r := a.Bounds()
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if rgba8(a, x, y) != rgba8(b, x, y) {
				n++
			}
		}
	}
	return n
}

func TestCaptureCrownFrame(t *testing.T) {
	c := newCompositor(t)
	src := solid(800, 600, color.NRGBA{R: 30, G: 90, B: 160, A: 255})

	out, err := c.Capture(camera.NewStill(src), Scene{Frame: studio.FrameCrown}, nil)
	require.NoError(t, err)

	// Go Regular has no crown, so the vector crown is filled, not a hollow box.
	for _, p := range []image.Point{{400, 70}, {385, 65}, {415, 65}} {
		px := rgba8(out, p.X, p.Y)
		assert.InDelta(t, 0xff, px.R, 8, "pixel %v", p)
		assert.InDelta(t, 0xcc, px.G, 8, "pixel %v", p)
		assert.InDelta(t, 0x00, px.B, 8, "pixel %v", p)
	}
	assert.Equal(t, src.NRGBAAt(400, 120), rgba8(out, 400, 120))
	assert.Equal(t, src.NRGBAAt(10, 10), rgba8(out, 10, 10))
}

func TestCaptureEmojiStickers(t *testing.T) {
	c := newCompositor(t)
	src := solid(400, 300, color.NRGBA{R: 30, G: 90, B: 160, A: 255})
	size := sizes{"e": {W: 60, H: 60}}
	scene := func(content string, isText bool) Scene {
		return Scene{
			Container: drag.Size{W: 400, H: 300},
			Stickers:  []studio.Sticker{{ID: "e", Content: content, IsText: isText, X: 100, Y: 100}},
		}
	}
	capture := func(s Scene) image.Image {
		out, err := c.Capture(camera.NewStill(src), s, size)
		require.NoError(t, err)
		return out
	}

	require.True(t, c.glyph.Face(emojiSize).HasGlyph('♥'))
	require.False(t, c.glyph.Face(emojiSize).HasGlyph('🔥'))

	plain := capture(Scene{})

	t.Run("unmapped emoji leaves no placeholder box", func(t *testing.T) {
		assert.Zero(t, changedPixels(plain, capture(scene("🔥", false))))
	})

	t.Run("mapped glyph is drawn and unmapped runes are dropped", func(t *testing.T) {
		heart := capture(scene("♥", false))
		assert.Positive(t, changedPixels(plain, heart))
		assert.Equal(t, heart.(*image.RGBA).Pix, capture(scene("♥️🔥", false)).(*image.RGBA).Pix)
	})

	t.Run("text sticker drops unmapped runes", func(t *testing.T) {
		gg := capture(scene("GG", true))
		assert.Positive(t, changedPixels(plain, gg))
		assert.Equal(t, gg.(*image.RGBA).Pix, capture(scene("GG🔥", true)).(*image.RGBA).Pix)
	})
}
