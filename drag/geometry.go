package drag

// Point is a position in parent-relative pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }
func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }

// Size is a rendered width and height in pixels.
type Size struct {
	W float64 `json:"w"`
	H float64 `json:"h"`
}

func (s Size) Empty() bool { return s.W <= 0 || s.H <= 0 }

// Clamp limits v to [lo, hi]. When hi < lo the lower bound wins, so an element
// larger than its parent is pinned to the top-left corner.
func Clamp(v, lo, hi float64) float64 {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}

// Bound keeps an element of size elem fully inside parent, independently per axis.
func Bound(p Point, parent, elem Size) Point {
	return Point{
		X: Clamp(p.X, 0, parent.W-elem.W),
		Y: Clamp(p.Y, 0, parent.H-elem.H),
	}
}
