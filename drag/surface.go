package drag

import (
	"sync"
)

type EventType string

const (
	PointerDown EventType = "down"
	PointerMove EventType = "move"
	PointerUp   EventType = "up"
)

type Event struct {
	Type  EventType `json:"type"`
	Point Point     `json:"point"`
}

// Surface is the document-level pointer hub. Move and up events are delivered
// to every live listener regardless of which element the pointer is over.
type Surface struct {
	mu        sync.RWMutex
	next      int
	listeners map[int]func(Event)
}

func NewSurface() *Surface {
	return &Surface{listeners: make(map[int]func(Event))}
}

// Listen registers fn until the returned release is called. Release is idempotent.
func (s *Surface) Listen(fn func(Event)) (release func()) {
	s.mu.Lock()
	id := s.next
	s.next++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

// Dispatch delivers ev to a snapshot of the listeners, outside the lock, so a
// listener may release itself or others while handling the event.
func (s *Surface) Dispatch(ev Event) {
	s.mu.RLock()
	fns := make([]func(Event), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		fn(ev)
	}
}

func (s *Surface) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.listeners)
}
