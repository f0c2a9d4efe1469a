// Package render turns cell states into display assets and keeps a
// bounded cache of them filled by a background worker.
package render

import (
	"strings"

	"github.com/talgya/hexworks/internal/cell"
)

// Asset is the display form of one cell state.
type Asset struct {
	Glyph    string `json:"glyph"`
	Label    string `json:"label"`
	Progress string `json:"progress,omitempty"` // Countdown segments, if building
}

var glyphs = [cell.VariantCount]string{
	cell.Hidden:         "░",
	cell.Unused:         "·",
	cell.Hot:            "H",
	cell.Insulation:     "I",
	cell.Feeder:         "F",
	cell.Seller:         "$",
	cell.WoodCutter:     "W",
	cell.WoodFarm:       "w",
	cell.Building:       "#",
	cell.Hub:            "@",
	cell.Road:           "=",
	cell.Industry:       "i",
	cell.Extract:        "e",
	cell.Infrastructure: "r",
	cell.Back:           "<",
	cell.OutOfBounds:    " ",
}

// Glyph returns the single-character symbol for v.
func Glyph(v cell.Variant) string {
	if v < cell.VariantCount {
		return glyphs[v]
	}
	return "?"
}

// Render builds the asset for s. It is pure: equal states yield equal assets.
func Render(s cell.State) Asset {
	a := Asset{Glyph: Glyph(s.Variant)}
	switch d := s.Payload().(type) {
	case cell.Unit:
		a.Label = s.Variant.String()
	case cell.Slot:
		a.Label = s.String()
		if d.Value == cell.Done {
			a.Glyph = strings.ToLower(a.Glyph)
		}
	case cell.InProgress:
		a.Label = s.String()
		a.Progress = strings.Repeat("▮", max(d.Countdown, 0))
	default:
		a.Label = s.String()
	}
	return a
}

// Placeholder is shown while the real asset is being produced.
func Placeholder(s cell.State) Asset {
	return Asset{Glyph: "?", Label: s.Variant.String()}
}
