// Package gallery implements the per-photo actions of a session gallery.
package gallery

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"

	"github.com/chaos-io/photobooth/rembg"
	"github.com/chaos-io/photobooth/studio"
	"github.com/chaos-io/photobooth/telegram"
	"github.com/chaos-io/photobooth/util"
)

const DefaultThumbnailSize = 320

type BackgroundRemover interface {
	RemoveBackground(ctx context.Context, in rembg.Input) (rembg.Output, error)
}

type Messenger interface {
	Send(ctx context.Context, in telegram.Input) telegram.Output
}

type Service struct {
	remover   BackgroundRemover
	messenger Messenger
	now       func() time.Time
}

func NewService(remover BackgroundRemover, messenger Messenger, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{remover: remover, messenger: messenger, now: now}
}

// File is a downloadable image.
type File struct {
	Name     string
	MimeType string
	Data     []byte
}

// Download names the file after the moment it is saved.
func (s *Service) Download(p studio.Photo) (File, error) {
	return s.download(p.DataURI, "stumble-studio-%d.png")
}

// DownloadEdited saves an AI-processed image.
func (s *Service) DownloadEdited(dataURI string) (File, error) {
	return s.download(dataURI, "stumble-studio-edited-%d.png")
}

func (s *Service) download(dataURI, pattern string) (File, error) {
	d, err := util.ParseDataURI(dataURI)
	if err != nil {
		return File{}, err
	}
	return File{
		Name:     fmt.Sprintf(pattern, s.now().UnixMilli()),
		MimeType: d.MimeType,
		Data:     d.Data,
	}, nil
}

// Thumbnail scales the photo so its longest side is at most maxSize.
func (s *Service) Thumbnail(p studio.Photo, maxSize int) (image.Image, error) {
	if maxSize <= 0 {
		maxSize = DefaultThumbnailSize
	}
	img, err := util.DecodeDataURIImage(p.DataURI)
	if err != nil {
		return nil, err
	}
	return resizeWithinMax(imaging.Clone(img), maxSize), nil
}

// RemoveBackground returns a new image. The photo and the gallery are left
// as they are.
func (s *Service) RemoveBackground(ctx context.Context, p studio.Photo, crop bool) (rembg.Output, error) {
	return s.remover.RemoveBackground(ctx, rembg.Input{PhotoDataURI: p.DataURI, Crop: crop})
}

func (s *Service) SendToTelegram(ctx context.Context, p studio.Photo, caption string) telegram.Output {
	return s.messenger.Send(ctx, telegram.Input{PhotoDataURI: p.DataURI, Caption: caption})
}

func resizeWithinMax(img *image.NRGBA, maxSize int) *image.NRGBA {
	w := img.Bounds().Dx()
	h := img.Bounds().Dy()
	longest := max(w, h)

	if longest <= maxSize {
		return img
	}

	scale := float64(maxSize) / float64(longest)
	newW := max(1, int(float64(w)*scale))
	newH := max(1, int(float64(h)*scale))

	resized := resize.Resize(uint(newW), uint(newH), img, resize.Lanczos3)
	return imaging.Clone(resized)
}
