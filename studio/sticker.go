package studio

import (
	"time"

	"github.com/segmentio/ksuid"

	"github.com/chaos-io/photobooth/drag"
)

const (
	ColorWhite  = "white"
	ColorYellow = "yellow"
)

// Sticker is an emoji or text overlay positioned in sticker-layer pixels.
type Sticker struct {
	ID      string  `json:"id"`
	Content string  `json:"content"`
	IsText  bool    `json:"isText"`
	Color   string  `json:"color,omitempty"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
}

func (s Sticker) Position() drag.Point { return drag.Point{X: s.X, Y: s.Y} }

// Photo is an immutable captured image.
type Photo struct {
	ID        string    `json:"id"`
	DataURI   string    `json:"dataUri"`
	CreatedAt time.Time `json:"createdAt"`
}

// IDSource hands out KSUIDs whose timestamps never go backwards.
type IDSource struct {
	now  func() time.Time
	last time.Time
}

func NewIDSource(now func() time.Time) *IDSource {
	if now == nil {
		now = time.Now
	}
	return &IDSource{now: now}
}

func (s *IDSource) Next() (string, time.Time) {
	t := s.now()
	if t.Before(s.last) {
		t = s.last
	}
	s.last = t

	id, err := ksuid.NewRandomWithTime(t)
	if err != nil {
		id = ksuid.New()
	}
	return id.String(), t
}

func normalizeColor(c string) string {
	if c == ColorYellow {
		return ColorYellow
	}
	return ColorWhite
}
