package hexgrid

import (
	"fmt"
	"sort"
)

// Cell pairs a position with the value stored there.
type Cell[T any] struct {
	Pos   Pos
	Value T
}

// Grid is an unbounded hex grid backed by lazily generated chunks.
type Grid[T any] struct {
	chunks      map[Pos]*Chunk[T]
	gen         Generator[T]
	outOfBounds T
}

// New creates an empty grid. Reads that must not realize storage return outOfBounds.
func New[T any](gen Generator[T], outOfBounds T) *Grid[T] {
	return &Grid[T]{
		chunks:      make(map[Pos]*Chunk[T]),
		gen:         gen,
		outOfBounds: outOfBounds,
	}
}

// realize returns the chunk holding key, generating and caching it if needed.
func (g *Grid[T]) realize(key Pos) *Chunk[T] {
	if c, ok := g.chunks[key]; ok {
		return c
	}
	c := g.gen.NewChunk(key)
	if c == nil {
		// A generator that fails to produce a chunk degrades to sentinel cells.
		c = NewChunk(key, g.outOfBounds)
	}
	c.Key = key
	g.chunks[key] = c
	return c
}

// Get returns the cell at p, generating its chunk if it does not exist yet.
func (g *Grid[T]) Get(p Pos) T {
	key, local := ChunkKeys(p)
	return g.realize(key).At(local)
}

// Peek returns the cell at p without realizing storage.
// Unrealized positions yield the out-of-bounds sentinel.
func (g *Grid[T]) Peek(p Pos) T {
	key, local := ChunkKeys(p)
	c, ok := g.chunks[key]
	if !ok {
		return g.outOfBounds
	}
	return c.At(local)
}

// Set stores v at p, realizing the chunk first.
func (g *Grid[T]) Set(p Pos, v T) {
	key, local := ChunkKeys(p)
	g.realize(key).Put(local, v)
}

// Realized reports whether the chunk containing p has been generated.
func (g *Grid[T]) Realized(p Pos) bool {
	key, _ := ChunkKeys(p)
	_, ok := g.chunks[key]
	return ok
}

// OutOfBounds returns the sentinel value.
func (g *Grid[T]) OutOfBounds() T { return g.outOfBounds }

// ChunkCount returns the number of realized chunks.
func (g *Grid[T]) ChunkCount() int { return len(g.chunks) }

// Chunks returns all realized chunks ordered by key.
func (g *Grid[T]) Chunks() []*Chunk[T] {
	out := make([]*Chunk[T], 0, len(g.chunks))
	for _, c := range g.chunks {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Key.X != out[j].Key.X {
			return out[i].Key.X < out[j].Key.X
		}
		return out[i].Key.Y < out[j].Key.Y
	})
	return out
}

// PutChunk installs a previously stored chunk. The key must be chunk-aligned.
func (g *Grid[T]) PutChunk(c *Chunk[T]) error {
	key, _ := ChunkKeys(c.Key)
	if key != c.Key {
		return fmt.Errorf("chunk key %s is not aligned", c.Key)
	}
	if len(c.cells) != ChunkSize*ChunkSize {
		return fmt.Errorf("chunk %s has %d cells, want %d", c.Key, len(c.cells), ChunkSize*ChunkSize)
	}
	g.chunks[key] = c
	return nil
}
