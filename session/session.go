package session

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chaos-io/photobooth/camera"
	"github.com/chaos-io/photobooth/compose"
	"github.com/chaos-io/photobooth/drag"
	"github.com/chaos-io/photobooth/filter"
	"github.com/chaos-io/photobooth/shutter"
	"github.com/chaos-io/photobooth/studio"
)

var (
	ErrNotFound       = errors.New("session not found")
	ErrUnknownSticker = errors.New("unknown sticker")
	ErrReadOnlyCamera = errors.New("camera does not accept frames")
	ErrClosed         = errors.New("session closed")
)

type pusher interface {
	Push(img image.Image) error
}

type handle struct {
	ctrl    *drag.Controller
	release func()
}

// Session is one client's studio: state, pointer surface, camera stream and
// self-timer.
type Session struct {
	ID      string
	Studio  *studio.Studio
	Surface *drag.Surface
	Shutter *shutter.Shutter
	Layout  *Layout

	compositor *compose.Compositor
	onCapture  func(studio.Photo)
	stream     camera.Stream
	cameraErr  error

	ctx    context.Context
	cancel context.CancelFunc

	// mu serialises sticker creation, clearing and Close with the handles
	// they own.
	mu      sync.Mutex
	handles map[string]handle
	closed  bool

	lastSeen  atomic.Int64
	closeOnce sync.Once
}

func (s *Session) touch(now time.Time) {
	s.lastSeen.Store(now.UnixNano())
}

func (s *Session) LastSeen() time.Time {
	return time.Unix(0, s.lastSeen.Load())
}

// CameraError is the persistent failure recorded when the stream could not be
// acquired. Nil when the camera works.
func (s *Session) CameraError() error {
	return s.cameraErr
}

// CameraMessage is the blocking message shown instead of the preview.
func (s *Session) CameraMessage() string {
	if s.cameraErr == nil {
		return ""
	}
	return camera.BlockingMessage(s.cameraErr)
}

// Push hands a browser-captured frame to the session's feed.
func (s *Session) Push(img image.Image) error {
	if s.stream == nil {
		return s.cameraErr
	}
	p, ok := s.stream.(pusher)
	if !ok {
		return ErrReadOnlyCamera
	}
	return p.Push(img)
}

func (s *Session) Scene() compose.Scene {
	st := s.Studio.State()
	return compose.Scene{
		Mirrored:  st.Mirrored,
		Frame:     st.Frame,
		Filter:    filter.Build(st.Adjustments, st.Filter),
		Stickers:  st.Stickers,
		Container: s.Layout.Container(),
	}
}

// Capture composes the current frame and stores it as the newest photo. It
// reports false without error when there is nothing to capture.
func (s *Session) Capture() (studio.Photo, bool, error) {
	if s.stream == nil {
		return studio.Photo{}, false, nil
	}
	uri, err := s.compositor.CaptureDataURI(s.stream, s.Scene(), s.Layout)
	if errors.Is(err, compose.ErrNoFrame) {
		return studio.Photo{}, false, nil
	}
	if err != nil {
		return studio.Photo{}, false, fmt.Errorf("capture: %w", err)
	}
	p := s.Studio.AddPhoto(uri)
	slog.Info("photo captured", "session", s.ID, "photo", p.ID)
	if s.onCapture != nil {
		s.onCapture(p)
	}
	return p, true, nil
}

// StartTimer runs the countdown for the lifetime of the session.
func (s *Session) StartTimer() error {
	return s.Shutter.Start(s.ctx)
}

func (s *Session) shoot() {
	if _, _, err := s.Capture(); err != nil {
		slog.Error("timed capture failed", "session", s.ID, "err", err)
	}
}

// AddSticker creates a sticker at the default position and makes it draggable.
func (s *Session) AddSticker(content string, isText bool, color string) (studio.Sticker, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return studio.Sticker{}, false, ErrClosed
	}

	st, ok, err := s.Studio.AddSticker(content, isText, color, s.Layout.Container())
	if err != nil || !ok {
		return st, ok, err
	}

	id := st.ID
	ctrl := drag.NewController(
		func() drag.Point {
			cur, _ := s.Studio.State().Sticker(id)
			return cur.Position()
		},
		s.Layout.For(id),
		func(p drag.Point) {
			_, _ = s.Studio.Dispatch(studio.MoveSticker{ID: id, Pos: p})
		},
	)

	s.handles[id] = handle{ctrl: ctrl, release: ctrl.Attach(s.Surface)}
	return st, true, nil
}

func (s *Session) ClearStickers() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.Studio.Dispatch(studio.ClearStickers{}); err != nil {
		return err
	}
	s.Layout.Forget(s.releaseHandlesLocked()...)
	return nil
}

// releaseHandlesLocked detaches every drag listener. s.mu must be held.
func (s *Session) releaseHandlesLocked() []string {
	ids := make([]string, 0, len(s.handles))
	for id, h := range s.handles {
		h.release()
		ids = append(ids, id)
	}
	s.handles = map[string]handle{}
	return ids
}

// Pointer routes a pointer event. Down goes to the sticker it hit; move and up
// go to the whole surface.
func (s *Session) Pointer(ev drag.Event, stickerID string) error {
	if ev.Type != drag.PointerDown {
		s.Surface.Dispatch(ev)
		return nil
	}

	s.mu.Lock()
	h, ok := s.handles[stickerID]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownSticker, stickerID)
	}
	h.ctrl.PointerDown(ev.Point)
	return nil
}

// Close stops the countdown, detaches every drag listener and releases the
// camera. It is safe to call more than once.
func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.cancel()
		s.mu.Lock()
		s.closed = true
		s.releaseHandlesLocked()
		s.mu.Unlock()
		if s.stream != nil {
			err = s.stream.Close()
		}
	})
	return err
}
