// Package filter builds and applies CSS-style filter descriptions.
//
// The same description string drives the live preview in the browser and the
// pixels of the captured image, so Build and Apply must agree term by term.
package filter

import (
	"strconv"
	"strings"

	"github.com/chaos-io/photobooth/studio"
)

var presets = map[studio.Filter]string{
	studio.FilterLava:  "hue-rotate(-30deg) saturate(3) contrast(1.2)",
	studio.FilterIce:   "hue-rotate(180deg) brightness(1.2)",
	studio.FilterHoney: "sepia(0.5) saturate(2)",
	studio.FilterRetro: "contrast(1.5) grayscale(0.2)",
}

// Build returns the filter description for the adjustments and preset. Unknown
// presets contribute nothing.
func Build(adj studio.Adjustments, f studio.Filter) string {
	var b strings.Builder
	b.WriteString("brightness(" + num(adj.Brightness) + "%) ")
	b.WriteString("saturate(" + num(adj.Saturate) + "%) ")
	b.WriteString("sepia(" + num(adj.Sepia) + "%) ")
	b.WriteString("blur(" + num(adj.Blur) + "px) ")
	b.WriteString(presets[f])
	return b.String()
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

type Catalog struct {
	Frames      []studio.Option `json:"frames"`
	Filters     []studio.Option `json:"filters"`
	Adjustments []studio.Range  `json:"adjustments"`
	Emotes      []string        `json:"emotes"`
}

func NewCatalog() Catalog {
	return Catalog{
		Frames:      studio.Frames,
		Filters:     studio.Filters,
		Adjustments: studio.AdjustmentRanges,
		Emotes:      studio.Emotes,
	}
}
