// Package rembg removes photo backgrounds through an external AI model.
package rembg

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"

	"github.com/disintegration/imaging"

	"github.com/chaos-io/photobooth/util"
)

var (
	ErrDisabled = errors.New("background removal is disabled")
	ErrNoImage  = errors.New("AI did not return an image.")
)

type Remover interface {
	Remove(ctx context.Context, img image.Image) (image.Image, error)
}

type DisabledRemBG struct{}

func NewDisabledRemBG() *DisabledRemBG {
	return &DisabledRemBG{}
}

func (d *DisabledRemBG) Remove(context.Context, image.Image) (image.Image, error) {
	return nil, ErrDisabled
}

type Input struct {
	PhotoDataURI string `json:"photoDataUri"`
	// Crop trims the result to a square around the subject.
	Crop bool `json:"crop,omitempty"`
}

type Output struct {
	ProcessedPhotoDataURI string `json:"processedPhotoDataUri"`
}

type Service struct {
	remover Remover
}

func NewService(r Remover) *Service {
	if r == nil {
		r = NewDisabledRemBG()
	}
	return &Service{remover: r}
}

// RemoveBackground never reports success without an image.
func (s *Service) RemoveBackground(ctx context.Context, in Input) (Output, error) {
	defer util.Trace("remove background")()

	img, err := util.DecodeDataURIImage(in.PhotoDataURI)
	if err != nil {
		return Output{}, fmt.Errorf("decode photo: %w", err)
	}

	out, err := s.remover.Remove(ctx, img)
	if err != nil {
		return Output{}, err
	}
	if out == nil || out.Bounds().Empty() {
		return Output{}, ErrNoImage
	}

	cutout := imaging.Clone(out)
	transparent := hasUsefulAlpha(cutout)
	slog.Debug("background removed", "size", out.Bounds().Size(), "transparent", transparent)

	if in.Crop && transparent {
		if cropped, err := cropToSubject(cutout); err == nil {
			out = cropped
		} else {
			slog.Debug("crop skipped", "err", err)
		}
	}

	uri, err := util.EncodePNGDataURI(out)
	if err != nil {
		return Output{}, err
	}
	return Output{ProcessedPhotoDataURI: uri}, nil
}

// hasUsefulAlpha reports whether any pixel is not fully opaque, i.e. whether
// the model actually cut something out.
func hasUsefulAlpha(img *image.NRGBA) bool {
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 255 {
			return true
		}
	}
	return false
}
