// Package logistics maintains the distribution plane: a grid mirroring the
// cell grid that records which positions can reach which hubs, and what each
// consumer has borrowed or taken from them.
package logistics

import (
	"sort"

	"github.com/talgya/hexworks/internal/hexgrid"
	"github.com/talgya/hexworks/internal/resource"
)

// NodeKind is the discriminant of a logistics node.
type NodeKind uint8

const (
	None      NodeKind = iota // Unreachable
	Source                    // A hub supplying capacity from its own ledger
	Available                 // Within reach of one or more sources
)

func (k NodeKind) String() string {
	switch k {
	case Source:
		return "Source"
	case Available:
		return "Available"
	}
	return "None"
}

// Node is one position on the logistics plane. Nodes are treated as immutable
// values: every change builds a fresh node so stored copies never share maps.
type Node struct {
	Kind      NodeKind
	Locations map[hexgrid.Pos]struct{}
	Borrows   map[hexgrid.Pos]resource.Packet // Capacity held until the job completes
	Taken     map[hexgrid.Pos]resource.Packet // Charges refunded at the start of each turn
}

// SourceNode is the node stored at a hub.
func SourceNode() Node { return Node{Kind: Source} }

// LocationList returns the node's locations sorted by x, then y.
func (n Node) LocationList() []hexgrid.Pos {
	out := make([]hexgrid.Pos, 0, len(n.Locations))
	for p := range n.Locations {
		out = append(out, p)
	}
	sortPositions(out)
	return out
}

// clone deep-copies the node's maps.
func (n Node) clone() Node {
	c := Node{Kind: n.Kind}
	if n.Locations != nil {
		c.Locations = make(map[hexgrid.Pos]struct{}, len(n.Locations))
		for p := range n.Locations {
			c.Locations[p] = struct{}{}
		}
	}
	c.Borrows = clonePackets(n.Borrows)
	c.Taken = clonePackets(n.Taken)
	return c
}

func clonePackets(m map[hexgrid.Pos]resource.Packet) map[hexgrid.Pos]resource.Packet {
	if m == nil {
		return nil
	}
	c := make(map[hexgrid.Pos]resource.Packet, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}

// withCharge returns a copy of n with p added to the entry for src in the
// borrows or taken map.
func (n Node) withCharge(src hexgrid.Pos, p resource.Packet, borrow bool) Node {
	c := n.clone()
	if borrow {
		if c.Borrows == nil {
			c.Borrows = make(map[hexgrid.Pos]resource.Packet)
		}
		c.Borrows[src] = resource.Sum(c.Borrows[src], p)
		return c
	}
	if c.Taken == nil {
		c.Taken = make(map[hexgrid.Pos]resource.Packet)
	}
	c.Taken[src] = resource.Sum(c.Taken[src], p)
	return c
}

func sortPositions(ps []hexgrid.Pos) {
	sort.Slice(ps, func(i, j int) bool {
		if ps[i].X != ps[j].X {
			return ps[i].X < ps[j].X
		}
		return ps[i].Y < ps[j].Y
	})
}
