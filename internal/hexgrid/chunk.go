package hexgrid

// ChunkSize is the edge length of a chunk. Must be a power of two.
const ChunkSize = 0x100

const (
	indexMask = ChunkSize - 1
	chunkMask = ^indexMask
)

// Chunk is a dense ChunkSize x ChunkSize block of cells, the unit of lazy generation.
type Chunk[T any] struct {
	Key   Pos // Chunk-aligned top-left position
	cells []T
}

// NewChunk allocates a chunk with every cell set to fill.
func NewChunk[T any](key Pos, fill T) *Chunk[T] {
	c := &Chunk[T]{
		Key:   key,
		cells: make([]T, ChunkSize*ChunkSize),
	}
	for i := range c.cells {
		c.cells[i] = fill
	}
	return c
}

// ChunkFromCells wraps an existing cell slice. Returns nil if the slice has the wrong length.
func ChunkFromCells[T any](key Pos, cells []T) *Chunk[T] {
	if len(cells) != ChunkSize*ChunkSize {
		return nil
	}
	return &Chunk[T]{Key: key, cells: cells}
}

// At returns the cell at a chunk-local position.
func (c *Chunk[T]) At(local Pos) T {
	return c.cells[local.X*ChunkSize+local.Y]
}

// Put stores a cell at a chunk-local position.
func (c *Chunk[T]) Put(local Pos, v T) {
	c.cells[local.X*ChunkSize+local.Y] = v
}

// Cells exposes the backing slice in x-major order.
func (c *Chunk[T]) Cells() []T { return c.cells }

// ChunkKeys splits p into the key of its chunk and its chunk-local position.
func ChunkKeys(p Pos) (chunkKey, local Pos) {
	chunkKey = Pos{X: p.X & chunkMask, Y: p.Y & chunkMask}
	local = Pos{X: p.X & indexMask, Y: p.Y & indexMask}
	return chunkKey, local
}

// Generator creates chunks on demand. Implementations own their generation
// context and must be deterministic for a given key and context.
type Generator[T any] interface {
	NewChunk(key Pos) *Chunk[T]
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc[T any] func(key Pos) *Chunk[T]

func (f GeneratorFunc[T]) NewChunk(key Pos) *Chunk[T] { return f(key) }

// Fill returns a generator that fills every chunk with v.
func Fill[T any](v T) Generator[T] {
	return GeneratorFunc[T](func(key Pos) *Chunk[T] {
		return NewChunk(key, v)
	})
}
