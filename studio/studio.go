package studio

import (
	"sync"
	"time"

	"github.com/chaos-io/photobooth/drag"
)

// Studio owns one session's State. Every mutation goes through Reduce.
type Studio struct {
	mu    sync.RWMutex
	state State
	ids   *IDSource
}

func New(now func() time.Time) *Studio {
	return &Studio{
		state: NewState(),
		ids:   NewIDSource(now),
	}
}

func (s *Studio) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Studio) Dispatch(a Action) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := Reduce(s.state, a)
	if err != nil {
		return s.state, err
	}
	s.state = next
	return next, nil
}

// AddSticker assigns a fresh id and returns the created sticker, or false when
// the content was empty.
func (s *Studio) AddSticker(content string, isText bool, color string, container drag.Size) (Sticker, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, _ := s.ids.Next()
	next, err := Reduce(s.state, AddSticker{ID: id, Content: content, IsText: isText, Color: color, Container: container})
	if err != nil {
		return Sticker{}, false, err
	}
	s.state = next
	st, ok := next.Sticker(id)
	return st, ok, nil
}

// AddPhoto stores a captured image as the newest gallery entry.
func (s *Studio) AddPhoto(dataURI string) Photo {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, at := s.ids.Next()
	p := Photo{ID: id, DataURI: dataURI, CreatedAt: at}
	s.state, _ = Reduce(s.state, AddPhoto{Photo: p})
	return p
}
