package compose

import (
	"errors"
	"fmt"
	"image"
	"log/slog"

	"github.com/disintegration/imaging"
	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/chaos-io/photobooth/camera"
	"github.com/chaos-io/photobooth/drag"
	"github.com/chaos-io/photobooth/filter"
	"github.com/chaos-io/photobooth/studio"
	"github.com/chaos-io/photobooth/util"
)

// ErrNoFrame means the camera had nothing to draw yet. Callers treat it as a
// silent no-op.
var ErrNoFrame = errors.New("no video frame")

// Measurer reports the on-screen size of a rendered sticker.
type Measurer interface {
	RenderedSize(stickerID string) (drag.Size, bool)
}

// Scene is the visual state redrawn at capture time.
type Scene struct {
	Mirrored  bool
	Frame     studio.Frame
	Filter    string
	Stickers  []studio.Sticker
	Container drag.Size
}

type Compositor struct {
	bold  *text.FontSource
	glyph *text.FontSource
}

// NewCompositor parses the fonts used for captions and glyphs. glyphFont may
// be nil, in which case Go Regular is used; pass a color emoji font (CBDT or
// sbix) to get emoji stickers burned in. The crown falls back to a vector
// shape when the glyph font has no crown.
func NewCompositor(glyphFont []byte) (*Compositor, error) {
	bold, err := text.NewFontSource(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse bold font: %w", err)
	}
	if glyphFont == nil {
		glyphFont = goregular.TTF
	}
	glyph, err := text.NewFontSource(glyphFont)
	if err != nil {
		return nil, fmt.Errorf("parse glyph font: %w", err)
	}
	return &Compositor{bold: bold, glyph: glyph}, nil
}

func (c *Compositor) Close() error {
	return errors.Join(c.bold.Close(), c.glyph.Close())
}

// Capture redraws the scene over the current frame at the frame's native
// resolution.
func (c *Compositor) Capture(src camera.Source, scene Scene, m Measurer) (image.Image, error) {
	defer util.Trace("capture")()

	var frame image.Image
	if src != nil {
		frame = src.Frame()
	}
	if frame == nil || frame.Bounds().Empty() {
		return nil, ErrNoFrame
	}

	// Mirroring only ever touches the video pixels.
	if scene.Mirrored {
		frame = imaging.FlipH(frame)
	}
	base, err := filter.ApplyString(frame, scene.Filter)
	if err != nil {
		return nil, fmt.Errorf("apply filter: %w", err)
	}

	dc := gg.NewContextForImage(base)
	defer func() {
		_ = dc.Close()
	}()

	if err := c.drawFrame(dc, scene.Frame); err != nil {
		return nil, fmt.Errorf("draw frame %s: %w", scene.Frame, err)
	}
	if err := c.drawStickers(dc, scene, m); err != nil {
		return nil, fmt.Errorf("draw stickers: %w", err)
	}

	if err := dc.FlushGPU(); err != nil {
		return nil, fmt.Errorf("flush canvas: %w", err)
	}
	return dc.Image(), nil
}

// CaptureDataURI is Capture followed by PNG data URI encoding.
func (c *Compositor) CaptureDataURI(src camera.Source, scene Scene, m Measurer) (string, error) {
	img, err := c.Capture(src, scene, m)
	if err != nil {
		return "", err
	}
	return util.EncodePNGDataURI(img)
}

func (c *Compositor) drawStickers(dc *gg.Context, scene Scene, m Measurer) error {
	if scene.Container.Empty() || m == nil {
		return nil
	}
	w, h := float64(dc.Width()), float64(dc.Height())
	scale := w / designWidth
	sx, sy := w/scene.Container.W, h/scene.Container.H

	for _, st := range scene.Stickers {
		size, ok := m.RenderedSize(st.ID)
		if !ok {
			slog.Debug("sticker not rendered, skipped", "id", st.ID)
			continue
		}
		x := st.X * sx
		y := st.Y*sy + size.H*sy*0.8
		if st.IsText {
			if err := c.drawOutlinedText(dc, st.Content, x, y, scale, textColor(st.Color)); err != nil {
				return err
			}
			continue
		}
		run, _ := shape(st.Content, emojiSize*scale, c.glyph, c.bold)
		if len(run) == 0 {
			slog.Debug("no font maps sticker, skipped", "id", st.ID, "content", st.Content)
			continue
		}
		if err := drawRun(dc, run, x, y, black); err != nil {
			return err
		}
	}
	return nil
}
