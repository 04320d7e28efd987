package compose

import (
	"image/color"
	"math"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"

	"github.com/chaos-io/photobooth/studio"
)

// Overlay sizes are authored against an 800px wide preview and scaled to the
// canvas width.
const (
	designWidth = 800

	wantedBorder   = 40
	wantedBand     = 80
	wantedFontSize = 50
	wantedBaseline = 35
	crownSize      = 60
	crownBaseline  = 80
	textSize       = 32
	textOutline    = 4
	emojiSize      = 60

	outlineSteps = 16
)

var (
	black       = color.NRGBA{A: 255}
	wantedTan   = color.NRGBA{R: 0xd4, G: 0xb4, B: 0x83, A: 255}
	outlineInk  = color.NRGBA{R: 0x1a, G: 0x1a, B: 0x1a, A: 255}
	textYellow  = color.NRGBA{R: 0xff, G: 0xcc, B: 0x00, A: 255}
	textDefault = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
)

func textColor(c string) color.Color {
	if c == studio.ColorYellow {
		return textYellow
	}
	return textDefault
}

// drawFrame burns in the frame templates that have a canvas rendition. The
// polaroid, qualified and podium frames are preview-only.
func (c *Compositor) drawFrame(dc *gg.Context, frame studio.Frame) error {
	w, h := float64(dc.Width()), float64(dc.Height())
	scale := w / designWidth

	switch frame {
	case studio.FrameWanted:
		lw := wantedBorder * scale
		dc.SetColor(wantedTan)
		dc.SetLineWidth(lw)
		dc.DrawRectangle(lw/2, lw/2, w-lw, h-wantedBand*scale-lw/2)
		if err := dc.Stroke(); err != nil {
			return err
		}
		dc.SetColor(black)
		dc.SetFont(c.bold.Face(wantedFontSize * scale))
		dc.DrawStringAnchored("WANTED", w/2, h-wantedBaseline*scale, 0.5, 0)
	case studio.FrameCrown:
		size := crownSize * scale
		run, width := shape("👑", size, c.glyph, c.bold)
		if len(run) == 0 {
			return drawCrown(dc, w/2, crownBaseline*scale, size, scale)
		}
		return drawRun(dc, run, w/2-width/2, crownBaseline*scale, black)
	}
	return nil
}

// drawCrown is the vector crown used when no configured font maps the glyph.
func drawCrown(dc *gg.Context, cx, baseline, size, scale float64) error {
	half := size / 2
	dc.MoveTo(cx-half, baseline)
	dc.LineTo(cx-half, baseline-0.7*size)
	dc.LineTo(cx-half/2, baseline-0.35*size)
	dc.LineTo(cx, baseline-0.8*size)
	dc.LineTo(cx+half/2, baseline-0.35*size)
	dc.LineTo(cx+half, baseline-0.7*size)
	dc.LineTo(cx+half, baseline)
	dc.ClosePath()
	dc.SetColor(textYellow)
	if err := dc.FillPreserve(); err != nil {
		return err
	}
	dc.SetColor(outlineInk)
	dc.SetLineWidth(2 * scale)
	return dc.Stroke()
}

type shapedRune struct {
	s       string
	face    text.Face
	advance float64
}

// shape maps each rune of s to the first source with a glyph for it. Runes no
// source maps are dropped so they never burn in as .notdef boxes.
func shape(s string, size float64, sources ...*text.FontSource) ([]shapedRune, float64) {
	faces := make([]text.Face, len(sources))
	for i, src := range sources {
		faces[i] = src.Face(size)
	}

	var (
		run   []shapedRune
		width float64
	)
	for _, r := range s {
		for _, f := range faces {
			if !f.HasGlyph(r) {
				continue
			}
			g := shapedRune{s: string(r), face: f, advance: f.Advance(string(r))}
			run = append(run, g)
			width += g.advance
			break
		}
	}
	return run, width
}

// drawRun paints a shaped run straight into the canvas pixmap. Color bitmap
// fonts go through the emoji renderer, outline fonts through the rasterizer.
func drawRun(dc *gg.Context, run []shapedRune, x, y float64, col color.Color) error {
	if len(run) == 0 {
		return nil
	}
	if err := dc.FlushGPU(); err != nil {
		return err
	}
	dst := dc.ResizeTarget()
	for _, g := range run {
		text.DrawWithEmoji(dst, g.s, g.face, x, y, col)
		x += g.advance
	}
	return nil
}

// drawOutlinedText paints s with an outline ring of textOutline*scale width
// behind a solid fill, the raster equivalent of strokeText + fillText.
func (c *Compositor) drawOutlinedText(dc *gg.Context, s string, x, y, scale float64, fill color.Color) error {
	run, _ := shape(s, textSize*scale, c.bold, c.glyph)

	r := textOutline * scale / 2
	for i := 0; i < outlineSteps; i++ {
		a := 2 * math.Pi * float64(i) / outlineSteps
		if err := drawRun(dc, run, x+r*math.Cos(a), y+r*math.Sin(a), outlineInk); err != nil {
			return err
		}
	}
	return drawRun(dc, run, x, y, fill)
}
