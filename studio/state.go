package studio

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/chaos-io/photobooth/drag"
)

var ErrDuplicateSticker = errors.New("duplicate sticker id")

// State is everything the preview and the compositor read.
type State struct {
	Mirrored    bool        `json:"mirrored"`
	Frame       Frame       `json:"frame"`
	Filter      Filter      `json:"filter"`
	Adjustments Adjustments `json:"adjustments"`
	Stickers    []Sticker   `json:"stickers"`
	Photos      []Photo     `json:"-"`
}

func NewState() State {
	return State{
		Frame:       FrameNone,
		Filter:      FilterNormal,
		Adjustments: DefaultAdjustments(),
		Stickers:    []Sticker{},
		Photos:      []Photo{},
	}
}

func (s State) Sticker(id string) (Sticker, bool) {
	for _, st := range s.Stickers {
		if st.ID == id {
			return st, true
		}
	}
	return Sticker{}, false
}

func (s State) Photo(id string) (Photo, bool) {
	for _, p := range s.Photos {
		if p.ID == id {
			return p, true
		}
	}
	return Photo{}, false
}

type Action interface {
	apply(State) (State, error)
}

type SetFrame struct{ Frame Frame }

type SetFilter struct{ Filter Filter }

type SetAdjustments struct{ Adjustments Adjustments }

type ToggleMirror struct{}

// AddSticker places a new sticker at 40% of the container in each axis.
type AddSticker struct {
	ID        string
	Content   string
	IsText    bool
	Color     string
	Container drag.Size
}

type MoveSticker struct {
	ID  string
	Pos drag.Point
}

type ClearStickers struct{}

type AddPhoto struct{ Photo Photo }

// Reduce returns the state after a. The input is never modified; on error the
// returned state is s itself.
func Reduce(s State, a Action) (State, error) {
	next, err := a.apply(s)
	if err != nil {
		return s, err
	}
	return next, nil
}

func (a SetFrame) apply(s State) (State, error) {
	if _, err := ParseFrame(string(a.Frame)); err != nil {
		return s, err
	}
	s.Frame = a.Frame
	return s, nil
}

func (a SetFilter) apply(s State) (State, error) {
	if _, err := ParseFilter(string(a.Filter)); err != nil {
		return s, err
	}
	s.Filter = a.Filter
	return s, nil
}

func (a SetAdjustments) apply(s State) (State, error) {
	s.Adjustments = a.Adjustments.Clamped()
	return s, nil
}

func (ToggleMirror) apply(s State) (State, error) {
	s.Mirrored = !s.Mirrored
	return s, nil
}

func (a AddSticker) apply(s State) (State, error) {
	content := a.Content
	color := ""
	if a.IsText {
		content = strings.TrimSpace(content)
		color = normalizeColor(a.Color)
	}
	if content == "" {
		return s, nil
	}
	if _, exists := s.Sticker(a.ID); exists {
		return s, fmt.Errorf("%w: %s", ErrDuplicateSticker, a.ID)
	}

	st := Sticker{
		ID:      a.ID,
		Content: content,
		IsText:  a.IsText,
		Color:   color,
		X:       a.Container.W * 0.4,
		Y:       a.Container.H * 0.4,
	}
	s.Stickers = append(slices.Clone(s.Stickers), st)
	return s, nil
}

func (a MoveSticker) apply(s State) (State, error) {
	i := slices.IndexFunc(s.Stickers, func(st Sticker) bool { return st.ID == a.ID })
	if i < 0 {
		return s, nil
	}
	stickers := slices.Clone(s.Stickers)
	stickers[i].X = a.Pos.X
	stickers[i].Y = a.Pos.Y
	s.Stickers = stickers
	return s, nil
}

func (ClearStickers) apply(s State) (State, error) {
	s.Stickers = []Sticker{}
	return s, nil
}

func (a AddPhoto) apply(s State) (State, error) {
	photos := make([]Photo, 0, len(s.Photos)+1)
	photos = append(photos, a.Photo)
	s.Photos = append(photos, s.Photos...)
	return s, nil
}
