// Package cell describes what occupies a grid position: a closed variant
// discriminant plus a payload whose shape the variant does not fully determine.
package cell

import (
	"fmt"
	"strings"
)

// Variant enumerates structure kinds and menu states.
type Variant uint8

const (
	Hidden         Variant = iota // Unexplored terrain
	Unused                        // Explored, nothing built
	Hot                           // Heat producer with a single slot
	Insulation                    // Reduces heat leak of neighbors
	Feeder                        // Starts connected Hot cells
	Seller                        // Sells finished Hot output
	WoodCutter                    // Extracts terrain wood
	WoodFarm                      // Grows wood without terrain stock
	Building                      // Construction site
	Hub                           // Logistics source: builders and logistics points
	Road                          // Extends the logistics network
	Industry                      // Menu category
	Extract                       // Menu category
	Infrastructure                // Menu category
	Back                          // Menu action: return to Unused
	OutOfBounds                   // Sentinel for unrealized storage
	VariantCount                  // Number of variants; not a variant
)

var variantNames = [VariantCount]string{
	Hidden:         "Hidden",
	Unused:         "Unused",
	Hot:            "Hot",
	Insulation:     "Insulation",
	Feeder:         "Feeder",
	Seller:         "Seller",
	WoodCutter:     "WoodCutter",
	WoodFarm:       "WoodFarm",
	Building:       "Building",
	Hub:            "Hub",
	Road:           "Road",
	Industry:       "Industry",
	Extract:        "Extract",
	Infrastructure: "Infrastructure",
	Back:           "Back",
	OutOfBounds:    "OutOfBounds",
}

func (v Variant) String() string {
	if v < VariantCount {
		return variantNames[v]
	}
	return fmt.Sprintf("Variant(%d)", uint8(v))
}

// ParseVariant resolves a variant from its name, case-insensitively.
func ParseVariant(name string) (Variant, bool) {
	for v, n := range variantNames {
		if strings.EqualFold(n, name) {
			return Variant(v), true
		}
	}
	return 0, false
}

// MarshalText encodes the variant by name.
func (v Variant) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText decodes a variant name.
func (v *Variant) UnmarshalText(b []byte) error {
	parsed, ok := ParseVariant(string(b))
	if !ok {
		return fmt.Errorf("unknown variant %q", string(b))
	}
	*v = parsed
	return nil
}

// IsMenu reports whether v is a menu category or action rather than a structure.
func (v Variant) IsMenu() bool {
	switch v {
	case Industry, Extract, Infrastructure, Back:
		return true
	}
	return false
}
