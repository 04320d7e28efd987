package camera

import (
	"context"
	"image"
	"sync"
)

// FeedDevice opens streams that are fed frame by frame, typically by a
// browser uploading its getUserMedia frames.
type FeedDevice struct{}

func (FeedDevice) Open(context.Context) (Stream, error) {
	return &Feed{}, nil
}

type Feed struct {
	mu     sync.RWMutex
	frame  image.Image
	closed bool
}

// Push replaces the current frame.
func (f *Feed) Push(img image.Image) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrClosed
	}
	f.frame = img
	return nil
}

func (f *Feed) Frame() image.Image {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.closed {
		return nil
	}
	return f.frame
}

func (f *Feed) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	f.frame = nil
	return nil
}
