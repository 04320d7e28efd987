package session

import (
	"maps"
	"sync"

	"github.com/chaos-io/photobooth/drag"
)

// Layout holds the most recent on-screen measurements reported by the client:
// the sticker layer size and the rendered size of every sticker.
type Layout struct {
	mu        sync.RWMutex
	container drag.Size
	elements  map[string]drag.Size
}

func NewLayout() *Layout {
	return &Layout{elements: map[string]drag.Size{}}
}

// Update replaces the container size and merges the element sizes. A zero
// container keeps the previous one.
func (l *Layout) Update(container drag.Size, elements map[string]drag.Size) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !container.Empty() {
		l.container = container
	}
	maps.Copy(l.elements, elements)
}

func (l *Layout) Forget(ids ...string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, id := range ids {
		delete(l.elements, id)
	}
}

func (l *Layout) Container() drag.Size {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.container
}

func (l *Layout) RenderedSize(id string) (drag.Size, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	sz, ok := l.elements[id]
	if !ok || sz.Empty() {
		return drag.Size{}, false
	}
	return sz, true
}

// For returns the drag.Layout of one sticker.
func (l *Layout) For(id string) drag.Layout {
	return elementLayout{l: l, id: id}
}

type elementLayout struct {
	l  *Layout
	id string
}

func (e elementLayout) ParentSize() drag.Size { return e.l.Container() }

func (e elementLayout) ElementSize() (drag.Size, bool) { return e.l.RenderedSize(e.id) }
