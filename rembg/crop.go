package rembg

import (
	"errors"
	"image"

	"golang.org/x/image/draw"
)

const subjectThreshold = 0.8

var errNoSubject = errors.New("no foreground detected")

// cropToSubject cuts a square around the opaque subject of a cutout, centred
// on the subject's bounding box.
func cropToSubject(img *image.NRGBA) (*image.NRGBA, error) {
	bbox, err := alphaBBox(img, subjectThreshold)
	if err != nil {
		return nil, err
	}
	return cropSquare(img, bbox), nil
}

// alphaBBox returns the bounds of the pixels whose alpha exceeds
// threshold*255.
func alphaBBox(img *image.NRGBA, threshold float64) (image.Rectangle, error) {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	th := uint8(threshold * 255)

	minX, minY := w, h
	maxX, maxY := 0, 0
	found := false

	for y := 0; y < h; y++ {
		row := y * img.Stride
		for x := 0; x < w; x++ {
			if img.Pix[row+x*4+3] <= th {
				continue
			}
			found = true
			minX = min(minX, x)
			minY = min(minY, y)
			maxX = max(maxX, x)
			maxY = max(maxY, y)
		}
	}

	if !found {
		return image.Rectangle{}, errNoSubject
	}
	return image.Rect(minX, minY, maxX+1, maxY+1), nil
}

// cropSquare uses the longest bbox side as the square's edge, clipped to the
// image.
func cropSquare(img *image.NRGBA, bbox image.Rectangle) *image.NRGBA {
	cx := (bbox.Min.X + bbox.Max.X) / 2
	cy := (bbox.Min.Y + bbox.Max.Y) / 2
	side := max(bbox.Dx(), bbox.Dy())
	half := side / 2

	rect := image.Rect(cx-half, cy-half, cx-half+side, cy-half+side).Intersect(img.Bounds())

	dst := image.NewNRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Draw(dst, dst.Bounds(), img, rect.Min, draw.Src)
	return dst
}
