package cell

// leakRule is the base heat leak of a variant and the adjustment each
// neighboring variant applies.
type leakRule struct {
	base      int
	neighbors map[Variant]int
}

var leakRules = map[Variant]leakRule{
	Insulation: {base: 0, neighbors: map[Variant]int{Hot: -1}},
	Hot:        {base: 12, neighbors: map[Variant]int{Hot: -4, Insulation: -1}},
}

// LeakDelta returns how much placing v among the given neighbor variants
// changes total heat leak. ok is false for variants that do not affect leak.
func LeakDelta(v Variant, neighbors []Variant) (delta int, ok bool) {
	rule, ok := leakRules[v]
	if !ok {
		return 0, false
	}
	delta = rule.base
	for _, n := range neighbors {
		delta += rule.neighbors[n]
	}
	return delta, true
}
