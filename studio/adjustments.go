package studio

import (
	"github.com/chaos-io/photobooth/drag"
)

// Range is the slider definition of one adjustment.
type Range struct {
	Key     string  `json:"key"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Step    float64 `json:"step"`
	Default float64 `json:"default"`
}

var (
	BrightnessRange = Range{Key: "brightness", Min: 50, Max: 150, Step: 1, Default: 100}
	SaturateRange   = Range{Key: "saturate", Min: 0, Max: 200, Step: 1, Default: 100}
	SepiaRange      = Range{Key: "sepia", Min: 0, Max: 100, Step: 1, Default: 0}
	BlurRange       = Range{Key: "blur", Min: 0, Max: 10, Step: 0.1, Default: 0}
)

var AdjustmentRanges = []Range{BrightnessRange, SaturateRange, SepiaRange, BlurRange}

func (r Range) clamp(v float64) float64 { return drag.Clamp(v, r.Min, r.Max) }

type Adjustments struct {
	Brightness float64 `json:"brightness"`
	Saturate   float64 `json:"saturate"`
	Sepia      float64 `json:"sepia"`
	Blur       float64 `json:"blur"`
}

func DefaultAdjustments() Adjustments {
	return Adjustments{
		Brightness: BrightnessRange.Default,
		Saturate:   SaturateRange.Default,
		Sepia:      SepiaRange.Default,
		Blur:       BlurRange.Default,
	}
}

// Clamped pulls every value back into its slider range.
func (a Adjustments) Clamped() Adjustments {
	return Adjustments{
		Brightness: BrightnessRange.clamp(a.Brightness),
		Saturate:   SaturateRange.clamp(a.Saturate),
		Sepia:      SepiaRange.clamp(a.Sepia),
		Blur:       BlurRange.clamp(a.Blur),
	}
}
