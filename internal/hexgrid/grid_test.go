package hexgrid

import (
	"math"
	"testing"
)

// coordGen fills each cell with a value derived from its absolute position,
// and counts how many chunks it generated.
type coordGen struct {
	calls int
}

func (c *coordGen) NewChunk(key Pos) *Chunk[int] {
	c.calls++
	ch := NewChunk(key, 0)
	for x := 0; x < ChunkSize; x++ {
		for y := 0; y < ChunkSize; y++ {
			ax, ay := key.X+x, key.Y+y
			ch.Put(Pos{X: x, Y: y}, ax*31+ay*7)
		}
	}
	return ch
}

func TestChunkKeysNegative(t *testing.T) {
	cases := []struct {
		p         Pos
		key, local Pos
	}{
		{Pos{0, 0}, Pos{0, 0}, Pos{0, 0}},
		{Pos{255, 1}, Pos{0, 0}, Pos{255, 1}},
		{Pos{256, 0}, Pos{256, 0}, Pos{0, 0}},
		{Pos{-1, -1}, Pos{-256, -256}, Pos{255, 255}},
		{Pos{-256, 3}, Pos{-256, 0}, Pos{0, 3}},
		{Pos{-257, 0}, Pos{-512, 0}, Pos{255, 0}},
	}
	for _, tc := range cases {
		key, local := ChunkKeys(tc.p)
		if key != tc.key || local != tc.local {
			t.Errorf("ChunkKeys(%v) = %v,%v; want %v,%v", tc.p, key, local, tc.key, tc.local)
		}
	}
}

func TestGetIsDeterministic(t *testing.T) {
	a := New[int](&coordGen{}, -1)
	b := New[int](&coordGen{}, -1)
	for _, p := range []Pos{{0, 0}, {-5, 17}, {300, -400}, {-1, -1}} {
		if a.Get(p) != b.Get(p) {
			t.Fatalf("Get(%v) differs between fresh grids", p)
		}
		if want := p.X*31 + p.Y*7; a.Get(p) != want {
			t.Fatalf("Get(%v) = %d, want %d", p, a.Get(p), want)
		}
	}
}

func TestChunksGeneratedOnce(t *testing.T) {
	gen := &coordGen{}
	g := New[int](gen, -1)
	g.Get(Pos{1, 1})
	g.Set(Pos{2, 2}, 5)
	g.Get(Pos{255, 255})
	if gen.calls != 1 {
		t.Fatalf("generator called %d times, want 1", gen.calls)
	}
	if g.Get(Pos{2, 2}) != 5 {
		t.Fatalf("set value lost")
	}
}

func TestPeekDoesNotRealize(t *testing.T) {
	gen := &coordGen{}
	g := New[int](gen, -1)
	if v := g.Peek(Pos{10, 10}); v != -1 {
		t.Fatalf("Peek on empty grid = %d, want sentinel", v)
	}
	if g.ChunkCount() != 0 || gen.calls != 0 {
		t.Fatalf("Peek realized storage")
	}
	g.Get(Pos{10, 10})
	if v := g.Peek(Pos{10, 10}); v != 10*31+10*7 {
		t.Fatalf("Peek after Get = %d", v)
	}
}

func TestNeighborSymmetry(t *testing.T) {
	for x := -4; x <= 4; x++ {
		for y := -4; y <= 4; y++ {
			p := Pos{x, y}
			for _, q := range p.NeighborPositions() {
				found := false
				for _, back := range q.NeighborPositions() {
					if back == p {
						found = true
					}
				}
				if !found {
					t.Fatalf("%v is a neighbor of %v but not vice versa", q, p)
				}
				if d := Distance(p, q); d != 1 {
					t.Fatalf("Distance(%v,%v) = %d, want 1", p, q, d)
				}
			}
		}
	}
}

func TestDistance(t *testing.T) {
	cases := []struct {
		a, b Pos
		want int
	}{
		{Pos{0, 0}, Pos{0, 0}, 0},
		{Pos{0, 0}, Pos{0, 3}, 3},
		{Pos{0, 0}, Pos{3, 0}, 3},
		{Pos{0, 0}, Pos{2, 2}, 3},
		{Pos{-3, -3}, Pos{3, 3}, 9},
	}
	for _, tc := range cases {
		if got := Distance(tc.a, tc.b); got != tc.want {
			t.Errorf("Distance(%v,%v) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
		if Distance(tc.a, tc.b) != Distance(tc.b, tc.a) {
			t.Errorf("Distance not symmetric for %v,%v", tc.a, tc.b)
		}
	}
}

func TestConnectedClosure(t *testing.T) {
	g := New[int](Fill(0), -1)
	// A bent line of ones plus an isolated one.
	line := []Pos{{1, 0}, {2, 0}, {3, 0}, {3, 1}, {3, 2}, {4, 2}}
	for _, p := range line {
		g.Set(p, 1)
	}
	g.Set(Pos{10, 10}, 1)

	isOne := func(v int) bool { return v == 1 }
	got := g.Connected(Pos{0, 0}, isOne)
	if len(got) != len(line) {
		t.Fatalf("Connected found %d cells, want %d", len(got), len(line))
	}
	members := map[Pos]bool{}
	for _, c := range got {
		members[c.Pos] = true
	}
	for _, c := range got {
		for _, n := range g.Neighbors(c.Pos) {
			if isOne(n.Value) && !members[n.Pos] {
				t.Fatalf("matching neighbor %v of %v missing from component", n.Pos, c.Pos)
			}
		}
	}
	if members[Pos{10, 10}] {
		t.Fatalf("isolated cell included")
	}
}

func TestConnectedNoMatch(t *testing.T) {
	g := New[int](Fill(0), -1)
	if got := g.Connected(Pos{0, 0}, func(v int) bool { return v == 9 }); len(got) != 0 {
		t.Fatalf("expected empty component, got %d", len(got))
	}
}

func TestConnectedLargeFlood(t *testing.T) {
	g := New[int](Fill(1), -1)
	g.Set(Pos{0, 0}, 0)
	// Bound the flood with a ring of zeros at distance 40.
	for _, c := range g.Within(Pos{0, 0}, 40) {
		if Distance(Pos{0, 0}, c.Pos) == 40 {
			g.Set(c.Pos, 0)
		}
	}
	got := g.Connected(Pos{0, 0}, func(v int) bool { return v == 1 })
	// Cells with 1 <= d <= 39: 3*39*40 = 4680.
	if len(got) != 4680 {
		t.Fatalf("flood size = %d, want 4680", len(got))
	}
}

func TestWithin(t *testing.T) {
	g := New[int](Fill(0), -1)
	for r, want := range []int{1, 7, 19, 37} {
		if got := len(g.Within(Pos{5, -3}, r)); got != want {
			t.Errorf("Within radius %d = %d cells, want %d", r, got, want)
		}
	}
	if g.Within(Pos{}, -1) != nil {
		t.Errorf("negative radius should be empty")
	}
}

func TestViewPortAndTouch(t *testing.T) {
	gen := &coordGen{}
	g := New[int](gen, -1)
	view := g.ViewPort(Pos{250, 250}, 10, 3)
	if len(view) != 10 || len(view[0]) != 3 {
		t.Fatalf("viewport shape %dx%d", len(view), len(view[0]))
	}
	if view[0][0].Value != -1 {
		t.Fatalf("unrealized viewport cell should be sentinel")
	}

	if n := g.Touch(Pos{250, 250}, 10, 3); n != 2 {
		t.Fatalf("Touch created %d chunks, want 2", n)
	}
	if n := g.Touch(Pos{250, 250}, 10, 3); n != 0 {
		t.Fatalf("second Touch created %d chunks", n)
	}
	view = g.ViewPort(Pos{250, 250}, 10, 3)
	if got, want := view[9][2].Value, 259*31+252*7; got != want {
		t.Fatalf("view[9][2] = %d, want %d", got, want)
	}
	if view[9][2].Pos != (Pos{259, 252}) {
		t.Fatalf("view[9][2] pos = %v", view[9][2].Pos)
	}
}

// cappedGen fails the test once it has generated more than limit chunks.
type cappedGen struct {
	t     *testing.T
	calls int
	limit int
}

func (c *cappedGen) NewChunk(key Pos) *Chunk[int] {
	c.calls++
	if c.calls > c.limit {
		c.t.Fatalf("generated %d chunks, limit %d; last key %v", c.calls, c.limit, key)
	}
	return NewChunk(key, 0)
}

func TestTouchAtCoordinateEdge(t *testing.T) {
	tests := []struct {
		topLeft       Pos
		width, height int
		want          int
	}{
		{Pos{X: math.MaxInt - 5, Y: 0}, 16, 16, 1},
		{Pos{X: math.MaxInt - 300, Y: math.MaxInt - 300}, 64, 400, 4},
		{Pos{X: math.MinInt, Y: math.MinInt}, 16, 16, 1},
		{Pos{X: math.MaxInt, Y: math.MaxInt}, math.MaxInt, math.MaxInt, 1},
	}
	for _, tt := range tests {
		gen := &cappedGen{t: t, limit: 8}
		g := New[int](gen, -1)
		if n := g.Touch(tt.topLeft, tt.width, tt.height); n != tt.want {
			t.Errorf("Touch(%v, %d, %d) created %d chunks, want %d", tt.topLeft, tt.width, tt.height, n, tt.want)
		}
	}
}

func TestViewPortClipsAtCoordinateEdge(t *testing.T) {
	g := New[int](&cappedGen{t: t, limit: 8}, -1)
	topLeft := Pos{X: math.MaxInt - 1, Y: 0}
	g.Touch(topLeft, 4, 2)

	view := g.ViewPort(topLeft, 4, 2)
	if len(view) != 4 {
		t.Fatalf("viewport width = %d", len(view))
	}
	if view[1][0].Pos.X != math.MaxInt || view[1][0].Value != 0 {
		t.Fatalf("last column = %+v", view[1][0])
	}
	for dx := 2; dx < 4; dx++ {
		if view[dx][1].Value != -1 {
			t.Fatalf("column %d past the edge = %+v, want sentinel", dx, view[dx][1])
		}
	}
}

func TestPutChunkRejectsMisaligned(t *testing.T) {
	g := New[int](Fill(0), -1)
	if err := g.PutChunk(NewChunk(Pos{3, 0}, 1)); err == nil {
		t.Fatalf("expected error for misaligned key")
	}
	if err := g.PutChunk(NewChunk(Pos{256, -256}, 4)); err != nil {
		t.Fatalf("PutChunk: %v", err)
	}
	if g.Peek(Pos{300, -1}) != 4 {
		t.Fatalf("installed chunk not readable")
	}
}
