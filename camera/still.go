package camera

import (
	"context"
	"fmt"
	"image"
	"sync"

	"github.com/chaos-io/photobooth/util"
	nhttp "github.com/chaos-io/photobooth/util/http"
)

// StillDevice serves one image from a path or URL as if it were a camera.
// Useful for kiosks without a webcam and for demos.
type StillDevice struct {
	Location string
	// Client fetches http(s) locations; nil uses the default 30s client.
	Client nhttp.IClient
}

func (d StillDevice) Open(ctx context.Context) (Stream, error) {
	img, err := util.LoadImage(ctx, d.Client, d.Location)
	if err != nil {
		return nil, fmt.Errorf("open still %s: %w", d.Location, err)
	}
	return NewStill(img), nil
}

type Still struct {
	mu  sync.RWMutex
	img image.Image
}

func NewStill(img image.Image) *Still {
	return &Still{img: img}
}

func (s *Still) Frame() image.Image {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.img
}

func (s *Still) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.img = nil
	return nil
}

// DeniedDevice always fails to open, e.g. when the camera is disabled.
type DeniedDevice struct {
	Err error
}

func (d DeniedDevice) Open(context.Context) (Stream, error) {
	if d.Err == nil {
		return nil, ErrUnsupported
	}
	return nil, d.Err
}
