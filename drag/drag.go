package drag

import (
	"sync"
)

// Layout reports the rendered sizes the clamp depends on. ElementSize returns
// false while the element is not rendered.
type Layout interface {
	ParentSize() Size
	ElementSize() (Size, bool)
}

// Controller turns pointer events into bounded positions for one element.
// It does not own the position: it reads the current one on pointer-down and
// reports every change through onDrag.
type Controller struct {
	position func() Point
	layout   Layout
	onDrag   func(Point)

	mu       sync.Mutex
	dragging bool
	start    Point
	initial  Point
	last     Point
}

func NewController(position func() Point, layout Layout, onDrag func(Point)) *Controller {
	return &Controller{
		position: position,
		layout:   layout,
		onDrag:   onDrag,
	}
}

// PointerDown starts a drag at pointer p. It is delivered by the element itself,
// not by the surface.
func (c *Controller) PointerDown(p Point) {
	initial := c.position()

	c.mu.Lock()
	c.dragging = true
	c.start = p
	c.initial = initial
	c.last = initial
	c.mu.Unlock()
}

func (c *Controller) Dragging() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dragging
}

func (c *Controller) handle(ev Event) {
	switch ev.Type {
	case PointerMove:
		c.move(ev.Point)
	case PointerUp:
		c.mu.Lock()
		c.dragging = false
		c.mu.Unlock()
	}
}

func (c *Controller) move(p Point) {
	elem, ok := c.layout.ElementSize()
	if !ok {
		return
	}
	parent := c.layout.ParentSize()

	c.mu.Lock()
	if !c.dragging {
		c.mu.Unlock()
		return
	}
	next := Bound(c.initial.Add(p.Sub(c.start)), parent, elem)
	changed := next != c.last
	c.last = next
	c.mu.Unlock()

	if changed {
		c.onDrag(next)
	}
}

// Attach subscribes the controller to the surface's global move/up stream.
func (c *Controller) Attach(s *Surface) (release func()) {
	return s.Listen(c.handle)
}

// Scope runs fn with c attached to s and always detaches afterwards.
func Scope(s *Surface, c *Controller, fn func()) {
	release := c.Attach(s)
	defer release()
	fn()
}
