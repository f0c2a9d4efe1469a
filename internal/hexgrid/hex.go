// Package hexgrid provides the unbounded, chunked hex grid and its spatial queries.
// Positions use an offset layout where column parity decides the diagonal neighbors.
package hexgrid

import "fmt"

// Pos is a position on the offset hex grid.
type Pos struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (p Pos) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Add returns the component-wise sum of two positions.
func (p Pos) Add(o Pos) Pos {
	return Pos{X: p.X + o.X, Y: p.Y + o.Y}
}

// Straight neighbor offsets shared by both column parities.
var straightOffsets = [4]Pos{
	{X: 1, Y: 0},
	{X: -1, Y: 0},
	{X: 0, Y: 1},
	{X: 0, Y: -1},
}

// Diagonal offsets flip with the parity of x.
var (
	evenDiagonals = [2]Pos{{X: 1, Y: 1}, {X: -1, Y: 1}}
	oddDiagonals  = [2]Pos{{X: 1, Y: -1}, {X: -1, Y: -1}}
)

// NeighborPositions returns the six positions adjacent to p.
func (p Pos) NeighborPositions() [6]Pos {
	var result [6]Pos
	for i, off := range straightOffsets {
		result[i] = p.Add(off)
	}
	diag := oddDiagonals
	if p.X&1 == 0 {
		diag = evenDiagonals
	}
	result[4] = p.Add(diag[0])
	result[5] = p.Add(diag[1])
	return result
}

// cube is a position in cube coordinates (q + r + s == 0).
type cube struct {
	q, r, s int
}

func toCube(p Pos) cube {
	q := p.X
	r := p.Y - (p.X+(p.X&1))/2
	return cube{q: q, r: r, s: -q - r}
}

// Distance returns the hex distance between two positions.
func Distance(a, b Pos) int {
	ca, cb := toCube(a), toCube(b)
	return (abs(ca.q-cb.q) + abs(ca.r-cb.r) + abs(ca.s-cb.s)) / 2
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
