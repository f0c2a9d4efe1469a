package world

import (
	"testing"

	"github.com/talgya/hexworks/internal/cell"
	"github.com/talgya/hexworks/internal/hexgrid"
	"github.com/talgya/hexworks/internal/resource"
)

func TestGenerationIsDeterministic(t *testing.T) {
	a := hexgrid.New[cell.State](NewGenerator(SmallTestConfig()), cell.UnitState(cell.OutOfBounds))
	b := hexgrid.New[cell.State](NewGenerator(SmallTestConfig()), cell.UnitState(cell.OutOfBounds))

	for _, p := range []hexgrid.Pos{{}, {X: 17, Y: -3}, {X: -300, Y: 512}, {X: 255, Y: 256}} {
		if a.Get(p) != b.Get(p) {
			t.Fatalf("cell %s differs between identical seeds: %s vs %s", p, a.Get(p), b.Get(p))
		}
	}
}

func TestGeneratedCellsAreHiddenTerrain(t *testing.T) {
	cfg := SmallTestConfig()
	g := NewGenerator(cfg)
	c := g.NewChunk(hexgrid.Pos{X: -256, Y: 0})
	if c == nil {
		t.Fatalf("NewChunk returned nil")
	}
	if g.Generated() != 1 {
		t.Fatalf("Generated = %d, want 1", g.Generated())
	}

	for i, s := range c.Cells() {
		if s.Variant != cell.Hidden {
			t.Fatalf("cell %d is %s, want Hidden", i, s.Variant)
		}
		l, ok := s.Ledger()
		if !ok {
			t.Fatalf("cell %d has no terrain ledger", i)
		}
		if w := l.Get(resource.Wood); w < 0 || w > cfg.WoodScale {
			t.Fatalf("cell %d wood %d outside 0..%d", i, w, cfg.WoodScale)
		}
	}

	counts := WoodCounts(c)
	if len(counts) < 2 {
		t.Fatalf("terrain is uniform: %v", counts)
	}
}

func TestZeroSeedIsResolved(t *testing.T) {
	g := NewGenerator(DefaultGenConfig())
	if g.Seed() == 0 {
		t.Fatalf("seed not resolved")
	}
	again := NewGenerator(g.Config())
	p := hexgrid.Pos{X: 12, Y: 40}
	if g.WoodAt(p) != again.WoodAt(p) {
		t.Fatalf("resolved seed does not reproduce terrain")
	}
}
