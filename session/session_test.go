package session

import (
	"context"
	"image"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chaos-io/photobooth/camera"
	"github.com/chaos-io/photobooth/compose"
	"github.com/chaos-io/photobooth/drag"
	"github.com/chaos-io/photobooth/studio"
	"github.com/chaos-io/photobooth/util"
)

func newManager(t *testing.T, device camera.Device, opts ...Option) *Manager {
	t.Helper()
	c, err := compose.NewCompositor(nil)
	require.NoError(t, err)
	m := NewManager(device, c, append([]Option{WithCountdownInterval(time.Millisecond)}, opts...)...)
	t.Cleanup(func() {
		m.Stop()
		_ = c.Close()
	})
	return m
}

func frame(w, h int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 200
	}
	return img
}

func TestCaptureNeedsAFrame(t *testing.T) {
	m := newManager(t, camera.FeedDevice{})
	s := m.Open(context.Background())
	require.NoError(t, s.CameraError())

	_, ok, err := s.Capture()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, s.Studio.State().Photos)

	require.NoError(t, s.Push(frame(64, 48)))
	p, ok, err := s.Capture()
	require.NoError(t, err)
	require.True(t, ok)

	photos := s.Studio.State().Photos
	require.Len(t, photos, 1)
	assert.Equal(t, p, photos[0])

	img, err := util.DecodeDataURIImage(p.DataURI)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 64, 48), img.Bounds())
}

func TestCameraFailureIsPersistent(t *testing.T) {
	m := newManager(t, camera.DeniedDevice{Err: camera.ErrPermissionDenied})
	s := m.Open(context.Background())

	assert.ErrorIs(t, s.CameraError(), camera.ErrPermissionDenied)
	assert.Equal(t, "Camera blocked! Allow camera access in your settings.", s.CameraMessage())
	assert.ErrorIs(t, s.Push(frame(4, 4)), camera.ErrPermissionDenied)

	// The rest of the studio keeps working.
	_, ok, err := s.AddSticker("🔥", false, "")
	require.NoError(t, err)
	assert.True(t, ok)

	_, ok, err = s.Capture()
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := m.Get(s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.CameraMessage(), got.CameraMessage())
}

func TestReadOnlyCamera(t *testing.T) {
	m := newManager(t, stillDevice{img: frame(8, 8)})
	s := m.Open(context.Background())
	assert.ErrorIs(t, s.Push(frame(4, 4)), ErrReadOnlyCamera)

	_, ok, err := s.Capture()
	require.NoError(t, err)
	assert.True(t, ok)
}

type stillDevice struct{ img image.Image }

func (d stillDevice) Open(context.Context) (camera.Stream, error) {
	return camera.NewStill(d.img), nil
}

func TestDragSticker(t *testing.T) {
	m := newManager(t, camera.FeedDevice{})
	s := m.Open(context.Background())
	s.Layout.Update(drag.Size{W: 400, H: 300}, nil)

	st, ok, err := s.AddSticker("GG", true, studio.ColorYellow)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, drag.Point{X: 160, Y: 120}, st.Position())
	assert.Equal(t, 1, s.Surface.Len())

	position := func() drag.Point {
		cur, ok := s.Studio.State().Sticker(st.ID)
		require.True(t, ok)
		return cur.Position()
	}

	// Not rendered yet: moves are ignored.
	require.NoError(t, s.Pointer(drag.Event{Type: drag.PointerDown, Point: drag.Point{X: 10, Y: 10}}, st.ID))
	require.NoError(t, s.Pointer(drag.Event{Type: drag.PointerMove, Point: drag.Point{X: 30, Y: 10}}, ""))
	assert.Equal(t, drag.Point{X: 160, Y: 120}, position())
	require.NoError(t, s.Pointer(drag.Event{Type: drag.PointerUp}, ""))

	s.Layout.Update(drag.Size{}, map[string]drag.Size{st.ID: {W: 50, H: 40}})

	require.NoError(t, s.Pointer(drag.Event{Type: drag.PointerDown, Point: drag.Point{X: 10, Y: 10}}, st.ID))
	require.NoError(t, s.Pointer(drag.Event{Type: drag.PointerMove, Point: drag.Point{X: 30, Y: 5}}, ""))
	assert.Equal(t, drag.Point{X: 180, Y: 115}, position())

	require.NoError(t, s.Pointer(drag.Event{Type: drag.PointerMove, Point: drag.Point{X: 1000, Y: -500}}, ""))
	assert.Equal(t, drag.Point{X: 350, Y: 0}, position())

	require.NoError(t, s.Pointer(drag.Event{Type: drag.PointerUp}, ""))
	require.NoError(t, s.Pointer(drag.Event{Type: drag.PointerMove, Point: drag.Point{X: 0, Y: 0}}, ""))
	assert.Equal(t, drag.Point{X: 350, Y: 0}, position())

	assert.ErrorIs(t, s.Pointer(drag.Event{Type: drag.PointerDown}, "nope"), ErrUnknownSticker)
}

func TestClearStickersReleasesListeners(t *testing.T) {
	m := newManager(t, camera.FeedDevice{})
	s := m.Open(context.Background())
	s.Layout.Update(drag.Size{W: 100, H: 100}, nil)

	for _, e := range []string{"❤️", "🥊", "🍌"} {
		_, _, err := s.AddSticker(e, false, "")
		require.NoError(t, err)
	}
	assert.Equal(t, 3, s.Surface.Len())

	require.NoError(t, s.ClearStickers())
	assert.Zero(t, s.Surface.Len())
	assert.Empty(t, s.Studio.State().Stickers)

	_, ok, err := s.AddSticker("⚡", false, "")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Len(t, s.Studio.State().Stickers, 1)
}

func TestConcurrentAddAndClearKeepStickersDraggable(t *testing.T) {
	m := newManager(t, camera.FeedDevice{})
	s := m.Open(context.Background())
	s.Layout.Update(drag.Size{W: 400, H: 400}, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				_, _, err := s.AddSticker("🍌", false, "")
				assert.NoError(t, err)
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 5; j++ {
				assert.NoError(t, s.ClearStickers())
			}
		}()
	}
	wg.Wait()

	stickers := s.Studio.State().Stickers
	assert.Equal(t, len(stickers), s.Surface.Len())
	for _, st := range stickers {
		assert.NoError(t, s.Pointer(drag.Event{Type: drag.PointerDown, Point: drag.Point{X: st.X, Y: st.Y}}, st.ID))
	}
}

func TestAddStickerAfterClose(t *testing.T) {
	m := newManager(t, camera.FeedDevice{})
	s := m.Open(context.Background())
	require.NoError(t, s.Close())

	_, ok, err := s.AddSticker("🔥", false, "")
	assert.ErrorIs(t, err, ErrClosed)
	assert.False(t, ok)
	assert.Zero(t, s.Surface.Len())
	assert.Empty(t, s.Studio.State().Stickers)
}

func TestEmptyTextStickerIsIgnored(t *testing.T) {
	m := newManager(t, camera.FeedDevice{})
	s := m.Open(context.Background())

	_, ok, err := s.AddSticker("   ", true, "")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, s.Surface.Len())
}

func TestTimerCapturesOnce(t *testing.T) {
	var hooked atomic.Int32
	m := newManager(t, camera.FeedDevice{}, WithCaptureHook(func(studio.Photo) { hooked.Add(1) }))
	s := m.Open(context.Background())
	require.NoError(t, s.Push(frame(16, 16)))

	require.NoError(t, s.StartTimer())
	s.Shutter.Wait()

	assert.Len(t, s.Studio.State().Photos, 1)
	assert.Equal(t, int32(1), hooked.Load())
	assert.False(t, s.Shutter.Status().Counting)
}

func TestCloseReleasesEverything(t *testing.T) {
	m := newManager(t, camera.FeedDevice{}, WithCountdownInterval(time.Hour))
	s := m.Open(context.Background())
	require.NoError(t, s.Push(frame(16, 16)))
	_, _, err := s.AddSticker("🔥", false, "")
	require.NoError(t, err)
	require.NoError(t, s.StartTimer())

	require.NoError(t, m.Close(s.ID))
	s.Shutter.Wait()
	assert.False(t, s.Shutter.Status().Counting)
	assert.Empty(t, s.Studio.State().Photos)
	assert.Zero(t, s.Surface.Len())
	assert.ErrorIs(t, s.Push(frame(4, 4)), camera.ErrClosed)
	assert.ErrorIs(t, s.ctx.Err(), context.Canceled)

	_, err = m.Get(s.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, m.Close(s.ID), ErrNotFound)
	assert.NoError(t, s.Close())
}

func TestReap(t *testing.T) {
	var now atomic.Int64
	now.Store(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC).UnixNano())
	clock := func() time.Time { return time.Unix(0, now.Load()) }

	m := newManager(t, camera.FeedDevice{}, WithTTL(10*time.Minute), WithClock(clock))
	idle := m.Open(context.Background())
	busy := m.Open(context.Background())

	now.Add(int64(8 * time.Minute))
	_, err := m.Get(busy.ID)
	require.NoError(t, err)

	now.Add(int64(5 * time.Minute))
	assert.Equal(t, 1, m.Reap())
	assert.Equal(t, 1, m.Len())

	_, err = m.Get(idle.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, idle.ctx.Err(), context.Canceled)
}

func TestStartReaper(t *testing.T) {
	m := newManager(t, camera.FeedDevice{})
	assert.Error(t, m.StartReaper("not a schedule"))
	require.NoError(t, m.StartReaper(""))
}

func TestLayout(t *testing.T) {
	l := NewLayout()
	_, ok := l.RenderedSize("a")
	assert.False(t, ok)

	l.Update(drag.Size{W: 10, H: 10}, map[string]drag.Size{"a": {W: 1, H: 2}, "b": {}})
	sz, ok := l.RenderedSize("a")
	assert.True(t, ok)
	assert.Equal(t, drag.Size{W: 1, H: 2}, sz)
	_, ok = l.RenderedSize("b")
	assert.False(t, ok)

	l.Update(drag.Size{}, nil)
	assert.Equal(t, drag.Size{W: 10, H: 10}, l.Container())
	assert.Equal(t, drag.Size{W: 10, H: 10}, l.For("a").ParentSize())

	l.Forget("a")
	_, ok = l.For("a").ElementSize()
	assert.False(t, ok)
}
