package studio

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownFrame  = errors.New("unknown frame")
	ErrUnknownFilter = errors.New("unknown filter")
)

type Frame string

const (
	FrameNone      Frame = "none"
	FrameWanted    Frame = "wanted"
	FramePolaroid  Frame = "polaroid"
	FrameCrown     Frame = "crown"
	FrameQualified Frame = "qualified"
	FramePodium    Frame = "podium"
)

type Filter string

const (
	FilterNormal Filter = "normal"
	FilterLava   Filter = "lava"
	FilterIce    Filter = "ice"
	FilterHoney  Filter = "honey"
	FilterRetro  Filter = "retro"
)

type Option struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

var Frames = []Option{
	{ID: string(FrameNone), Name: "Plain"},
	{ID: string(FrameWanted), Name: "Wanted Poster"},
	{ID: string(FramePolaroid), Name: "Polaroid"},
	{ID: string(FrameCrown), Name: "Crown Winner"},
	{ID: string(FrameQualified), Name: "Qualified"},
	{ID: string(FramePodium), Name: "MVP Podium"},
}

var Filters = []Option{
	{ID: string(FilterNormal), Name: "Normal"},
	{ID: string(FilterLava), Name: "Lava"},
	{ID: string(FilterIce), Name: "Ice"},
	{ID: string(FilterHoney), Name: "Honey"},
	{ID: string(FilterRetro), Name: "8-Bit Retro"},
}

var Emotes = []string{"❤️", "🥊", "🍌", "🔥", "👑", "🏆", "🏃", "⚡"}

func ParseFrame(s string) (Frame, error) {
	for _, o := range Frames {
		if o.ID == s {
			return Frame(s), nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFrame, s)
}

func ParseFilter(s string) (Filter, error) {
	for _, o := range Filters {
		if o.ID == s {
			return Filter(s), nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFilter, s)
}
