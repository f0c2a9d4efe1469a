// Package world generates terrain chunks from layered simplex noise.
// Every generated cell starts Hidden and carries a terrain ledger holding
// the wood available to extract there.
package world

import (
	"log/slog"
	"math"
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/hexworks/internal/cell"
	"github.com/talgya/hexworks/internal/hexgrid"
	"github.com/talgya/hexworks/internal/resource"
)

// GenConfig holds world generation parameters.
type GenConfig struct {
	Seed        int64   `yaml:"seed"`        // Noise seed (0 = random)
	Frequency   float64 `yaml:"frequency"`   // Base noise frequency per cell
	Octaves     int     `yaml:"octaves"`     // Fractal layers
	Persistence float64 `yaml:"persistence"` // Amplitude falloff per octave
	WoodScale   int     `yaml:"wood_scale"`  // Wood in the densest cells
}

// DefaultGenConfig returns the configuration used for new games.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Seed:        0,
		Frequency:   0.01,
		Octaves:     4,
		Persistence: 0.5,
		WoodScale:   6,
	}
}

// SmallTestConfig returns a fixed-seed configuration with denser features.
func SmallTestConfig() GenConfig {
	return GenConfig{
		Seed:        42,
		Frequency:   0.08,
		Octaves:     3,
		Persistence: 0.5,
		WoodScale:   6,
	}
}

// Generator produces terrain chunks. It implements hexgrid.Generator.
type Generator struct {
	cfg       GenConfig
	noise     opensimplex.Noise
	generated int
}

// NewGenerator resolves the seed and prepares the noise source.
func NewGenerator(cfg GenConfig) *Generator {
	if cfg.Seed == 0 {
		cfg.Seed = rand.Int63()
	}
	if cfg.Octaves <= 0 {
		cfg.Octaves = 1
	}
	return &Generator{
		cfg:   cfg,
		noise: opensimplex.NewNormalized(cfg.Seed),
	}
}

// Seed returns the resolved seed, needed to regenerate the same world.
func (g *Generator) Seed() int64 { return g.cfg.Seed }

// Config returns the resolved configuration.
func (g *Generator) Config() GenConfig { return g.cfg }

// Generated returns the number of chunks produced so far.
func (g *Generator) Generated() int { return g.generated }

// NewChunk fills the chunk at key with Hidden terrain cells.
func (g *Generator) NewChunk(key hexgrid.Pos) *hexgrid.Chunk[cell.State] {
	cells := make([]cell.State, hexgrid.ChunkSize*hexgrid.ChunkSize)
	for dx := 0; dx < hexgrid.ChunkSize; dx++ {
		for dy := 0; dy < hexgrid.ChunkSize; dy++ {
			p := hexgrid.Pos{X: key.X + dx, Y: key.Y + dy}
			cells[dx*hexgrid.ChunkSize+dy] = cell.Stockpile(cell.Hidden, g.Terrain(p))
		}
	}
	g.generated++
	slog.Debug("chunk generated", "key", key, "total", g.generated)
	return hexgrid.ChunkFromCells(key, cells)
}

// Terrain returns the terrain ledger of p.
func (g *Generator) Terrain(p hexgrid.Pos) resource.Ledger {
	return resource.NewLedger().WithSlot(resource.Wood, g.WoodAt(p), g.cfg.WoodScale)
}

// WoodAt samples the wood density at p, in 0..WoodScale.
func (g *Generator) WoodAt(p hexgrid.Pos) int {
	v := octaveNoise(g.noise, float64(p.X), float64(p.Y), g.cfg.Octaves, g.cfg.Frequency, g.cfg.Persistence)
	wood := int(math.Round(v * float64(g.cfg.WoodScale)))
	if wood < 0 {
		return 0
	}
	if wood > g.cfg.WoodScale {
		return g.cfg.WoodScale
	}
	return wood
}

// octaveNoise generates fractal noise by layering multiple frequencies.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}

// WoodCounts returns how many cells of the chunk hold each wood amount.
func WoodCounts(c *hexgrid.Chunk[cell.State]) map[int]int {
	counts := make(map[int]int)
	for _, s := range c.Cells() {
		l, ok := s.Ledger()
		if !ok {
			continue
		}
		counts[l.Get(resource.Wood)]++
	}
	return counts
}
