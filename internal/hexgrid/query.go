package hexgrid

import "math"

// Neighbors returns the six adjacent cells of p, realizing chunks as needed.
func (g *Grid[T]) Neighbors(p Pos) []Cell[T] {
	positions := p.NeighborPositions()
	out := make([]Cell[T], 0, len(positions))
	for _, n := range positions {
		out = append(out, Cell[T]{Pos: n, Value: g.Get(n)})
	}
	return out
}

// Connected expands breadth-first from p's neighbors matching pred until the
// set stops growing. p itself is included only if it matches and is reached
// through a matching neighbor. Results are in discovery order.
func (g *Grid[T]) Connected(p Pos, pred func(T) bool) []Cell[T] {
	seen := map[Pos]bool{}
	var out []Cell[T]
	var frontier []Pos

	for _, n := range g.Neighbors(p) {
		if seen[n.Pos] || !pred(n.Value) {
			continue
		}
		seen[n.Pos] = true
		out = append(out, n)
		frontier = append(frontier, n.Pos)
	}

	for len(frontier) > 0 {
		var next []Pos
		for _, f := range frontier {
			for _, n := range g.Neighbors(f) {
				if seen[n.Pos] || !pred(n.Value) {
					continue
				}
				seen[n.Pos] = true
				out = append(out, n)
				next = append(next, n.Pos)
			}
		}
		frontier = next
	}
	return out
}

// Within returns every cell whose hex distance from p is at most radius,
// p included. Cells are ordered by x, then y.
func (g *Grid[T]) Within(p Pos, radius int) []Cell[T] {
	if radius < 0 {
		return nil
	}
	var out []Cell[T]
	for dx := -radius; dx <= radius; dx++ {
		for dy := -radius; dy <= radius; dy++ {
			q := Pos{X: p.X + dx, Y: p.Y + dy}
			if Distance(p, q) > radius {
				continue
			}
			out = append(out, Cell[T]{Pos: q, Value: g.Get(q)})
		}
	}
	return out
}

// ViewPort returns a read-only window of width columns by height rows starting
// at topLeft. Unrealized chunks show the out-of-bounds sentinel, as do
// positions past the edge of the coordinate range.
// The outer slice is indexed by x, the inner by y.
func (g *Grid[T]) ViewPort(topLeft Pos, width, height int) [][]Cell[T] {
	if width <= 0 || height <= 0 {
		return nil
	}
	cols := make([][]Cell[T], width)
	for dx := 0; dx < width; dx++ {
		col := make([]Cell[T], height)
		for dy := 0; dy < height; dy++ {
			x, okX := offset(topLeft.X, dx)
			y, okY := offset(topLeft.Y, dy)
			q := Pos{X: x, Y: y}
			if !okX || !okY {
				col[dy] = Cell[T]{Pos: q, Value: g.outOfBounds}
				continue
			}
			col[dy] = Cell[T]{Pos: q, Value: g.Peek(q)}
		}
		cols[dx] = col
	}
	return cols
}

// Touch realizes every chunk intersecting the width x height rectangle at
// topLeft, so a later ViewPort over it shows generated cells. The rectangle
// is clipped at the edge of the coordinate range.
// Returns the number of chunks newly generated.
func (g *Grid[T]) Touch(topLeft Pos, width, height int) int {
	if width <= 0 || height <= 0 {
		return 0
	}
	lastX, _ := offset(topLeft.X, width-1)
	lastY, _ := offset(topLeft.Y, height-1)
	first, _ := ChunkKeys(topLeft)
	last, _ := ChunkKeys(Pos{X: lastX, Y: lastY})

	// Step by chunk index so the walk never adds past the last key.
	cols := chunkSpan(first.X, last.X)
	rows := chunkSpan(first.Y, last.Y)
	created := 0
	for i := uint(0); i < cols; i++ {
		for j := uint(0); j < rows; j++ {
			key := Pos{
				X: int(uint(first.X) + i*ChunkSize),
				Y: int(uint(first.Y) + j*ChunkSize),
			}
			if _, ok := g.chunks[key]; ok {
				continue
			}
			g.realize(key)
			created++
		}
	}
	return created
}

// offset returns a+d for d >= 0, clamped to math.MaxInt. ok is false when
// the sum was clamped.
func offset(a, d int) (int, bool) {
	if a > math.MaxInt-d {
		return math.MaxInt, false
	}
	return a + d, true
}

// chunkSpan counts the chunk keys from first to last inclusive. Both must be
// chunk aligned with first <= last.
func chunkSpan(first, last int) uint {
	return (uint(last)-uint(first))/ChunkSize + 1
}
