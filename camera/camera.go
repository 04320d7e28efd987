// Package camera provides the live video sources a session captures from.
package camera

import (
	"context"
	"errors"
	"image"
	"io"
)

var (
	ErrPermissionDenied = errors.New("camera permission denied")
	ErrUnsupported      = errors.New("camera not supported")
	ErrClosed           = errors.New("camera stream closed")
)

// Source yields the current frame at native resolution, or nil while the
// camera is not ready.
type Source interface {
	Frame() image.Image
}

// Stream is an exclusively owned, open camera. Close stops it.
type Stream interface {
	Source
	io.Closer
}

type Device interface {
	Open(ctx context.Context) (Stream, error)
}

// BlockingMessage is the persistent text shown over the preview when the
// camera cannot be used.
func BlockingMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrPermissionDenied):
		return "Camera blocked! Allow camera access in your settings."
	case errors.Is(err, ErrUnsupported):
		return "This device does not support camera access."
	default:
		return "Camera unavailable: " + err.Error()
	}
}
