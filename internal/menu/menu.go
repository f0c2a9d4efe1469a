// Package menu lists what can be built on a cell and applies the instant
// transitions between menu categories.
package menu

import (
	"slices"

	"github.com/talgya/hexworks/internal/cell"
	"github.com/talgya/hexworks/internal/resource"
)

var (
	explore        = []cell.Variant{cell.Unused}
	categories     = []cell.Variant{cell.Industry, cell.Extract, cell.Infrastructure}
	industry       = []cell.Variant{cell.Hot, cell.Insulation, cell.Feeder, cell.Back}
	infrastructure = []cell.Variant{cell.Road, cell.Hub, cell.Back}
)

// Options returns the choices offered for s. Nothing is offered when no
// worker can reach the cell.
func Options(hasWorker bool, s cell.State) []cell.Variant {
	if !hasWorker {
		return nil
	}
	switch s.Variant {
	case cell.Hidden:
		return slices.Clone(explore)
	case cell.Unused:
		return slices.Clone(categories)
	case cell.Industry:
		return slices.Clone(industry)
	case cell.Infrastructure:
		return slices.Clone(infrastructure)
	case cell.Extract:
		return extract(s)
	}
	return nil
}

func extract(s cell.State) []cell.Variant {
	out := []cell.Variant{cell.WoodFarm, cell.Seller, cell.Back}
	if l, ok := s.Ledger(); ok && l.Get(resource.Wood) > 0 {
		out = append(out, cell.WoodCutter)
	}
	return out
}

// Offers reports whether choice is among the options for s.
func Offers(hasWorker bool, s cell.State, choice cell.Variant) bool {
	return slices.Contains(Options(hasWorker, s), choice)
}

// Transition applies an instant menu move, keeping the cell's data.
// Back returns the cell to Unused. Returns false for non-menu choices.
func Transition(choice cell.Variant, s cell.State) (cell.State, bool) {
	switch choice {
	case cell.Industry, cell.Infrastructure, cell.Extract:
		return cell.New(choice, s.Data), true
	case cell.Back:
		return cell.New(cell.Unused, s.Data), true
	}
	return s, false
}
