package filter

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
)

// matrix is a 3x3 color matrix over linear 0..1 channels plus an offset,
// following the Filter Effects definitions of the CSS shorthand functions.
type matrix struct {
	m [3][3]float64
	b [3]float64
}

func (op Op) identity() bool {
	switch op.Kind {
	case Brightness, Saturate, Contrast:
		return op.Amount == 1
	case Sepia, Grayscale, HueRotate, Blur:
		return op.Amount == 0
	}
	return true
}

func (op Op) matrix() matrix {
	switch op.Kind {
	case Brightness:
		a := op.Amount
		return matrix{m: [3][3]float64{{a, 0, 0}, {0, a, 0}, {0, 0, a}}}
	case Contrast:
		c := op.Amount
		o := 0.5 - 0.5*c
		return matrix{m: [3][3]float64{{c, 0, 0}, {0, c, 0}, {0, 0, c}}, b: [3]float64{o, o, o}}
	case Saturate:
		s := op.Amount
		return matrix{m: [3][3]float64{
			{0.213 + 0.787*s, 0.715 - 0.715*s, 0.072 - 0.072*s},
			{0.213 - 0.213*s, 0.715 + 0.285*s, 0.072 - 0.072*s},
			{0.213 - 0.213*s, 0.715 - 0.715*s, 0.072 + 0.928*s},
		}}
	case Sepia:
		r := 1 - math.Min(1, math.Max(0, op.Amount))
		return matrix{m: [3][3]float64{
			{0.393 + 0.607*r, 0.769 - 0.769*r, 0.189 - 0.189*r},
			{0.349 - 0.349*r, 0.686 + 0.314*r, 0.168 - 0.168*r},
			{0.272 - 0.272*r, 0.534 - 0.534*r, 0.131 + 0.869*r},
		}}
	case Grayscale:
		r := 1 - math.Min(1, math.Max(0, op.Amount))
		return matrix{m: [3][3]float64{
			{0.2126 + 0.7874*r, 0.7152 - 0.7152*r, 0.0722 - 0.0722*r},
			{0.2126 - 0.2126*r, 0.7152 + 0.2848*r, 0.0722 - 0.0722*r},
			{0.2126 - 0.2126*r, 0.7152 - 0.7152*r, 0.0722 + 0.9278*r},
		}}
	case HueRotate:
		rad := op.Amount * math.Pi / 180
		c, s := math.Cos(rad), math.Sin(rad)
		return matrix{m: [3][3]float64{
			{0.213 + c*0.787 - s*0.213, 0.715 - c*0.715 - s*0.715, 0.072 - c*0.072 + s*0.928},
			{0.213 - c*0.213 + s*0.143, 0.715 + c*0.285 + s*0.140, 0.072 - c*0.072 - s*0.283},
			{0.213 - c*0.213 - s*0.787, 0.715 - c*0.715 + s*0.715, 0.072 + c*0.928 + s*0.072},
		}}
	}
	return matrix{m: [3][3]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}}
}

func (mx matrix) apply(c color.NRGBA) color.NRGBA {
	in := [3]float64{float64(c.R) / 255, float64(c.G) / 255, float64(c.B) / 255}
	var out [3]uint8
	for i := 0; i < 3; i++ {
		v := mx.m[i][0]*in[0] + mx.m[i][1]*in[1] + mx.m[i][2]*in[2] + mx.b[i]
		out[i] = uint8(math.Round(math.Min(1, math.Max(0, v)) * 255))
	}
	return color.NRGBA{R: out[0], G: out[1], B: out[2], A: c.A}
}

// Apply runs ops over img in order and returns a new image; img is untouched.
func Apply(img image.Image, ops []Op) *image.NRGBA {
	out := imaging.Clone(img)
	for _, op := range ops {
		if op.identity() {
			continue
		}
		if op.Kind == Blur {
			out = imaging.Blur(out, op.Amount)
			continue
		}
		mx := op.matrix()
		out = imaging.AdjustFunc(out, mx.apply)
	}
	return out
}

// ApplyString parses desc and applies it to img.
func ApplyString(img image.Image, desc string) (*image.NRGBA, error) {
	ops, err := Parse(desc)
	if err != nil {
		return nil, err
	}
	return Apply(img, ops), nil
}
