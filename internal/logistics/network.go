package logistics

import (
	"log/slog"
	"sort"

	"github.com/talgya/hexworks/internal/cell"
	"github.com/talgya/hexworks/internal/hexgrid"
	"github.com/talgya/hexworks/internal/resource"
)

// Cells is the view of the cell grid the network needs: hub ledgers are read
// and written through it, and network topology is discovered with Connected.
type Cells interface {
	Get(p hexgrid.Pos) cell.State
	Set(p hexgrid.Pos, s cell.State)
	Connected(p hexgrid.Pos, pred func(cell.State) bool) []hexgrid.Cell[cell.State]
}

// Network is the logistics plane plus the set of positions holding
// outstanding per-turn charges.
type Network struct {
	plane   *hexgrid.Grid[Node]
	debtors map[hexgrid.Pos]struct{}
}

// NewNetwork creates an empty plane where every position is None.
func NewNetwork() *Network {
	return &Network{
		plane:   hexgrid.New[Node](hexgrid.Fill(Node{}), Node{}),
		debtors: make(map[hexgrid.Pos]struct{}),
	}
}

// Plane exposes the underlying grid for persistence.
func (n *Network) Plane() *hexgrid.Grid[Node] { return n.plane }

// Node returns a copy of the node at p. Unrealized positions are None.
func (n *Network) Node(p hexgrid.Pos) Node {
	return n.plane.Peek(p).clone()
}

// Restore writes a node loaded from storage.
func (n *Network) Restore(p hexgrid.Pos, node Node) {
	n.plane.Set(p, node.clone())
	if len(node.Taken) > 0 {
		n.debtors[p] = struct{}{}
	}
}

// MakeSource marks p as a hub.
func (n *Network) MakeSource(p hexgrid.Pos) {
	n.plane.Set(p, SourceNode())
	delete(n.debtors, p)
}

func isNetworkCell(s cell.State) bool {
	return s.Variant == cell.Hub || s.Variant == cell.Road
}

// Update propagates reachability after a hub or road is placed at pos.
// Every hub connected to pos through hubs and roads is pushed into each
// position adjacent to that network. Returns the number of nodes written.
func (n *Network) Update(cells Cells, pos hexgrid.Pos, isHub bool) int {
	component := cells.Connected(pos, isNetworkCell)

	hubs := make(map[hexgrid.Pos]struct{})
	members := []hexgrid.Pos{pos}
	for _, c := range component {
		if c.Value.Variant == cell.Hub {
			hubs[c.Pos] = struct{}{}
		}
		if c.Pos != pos {
			members = append(members, c.Pos)
		}
	}
	if isHub {
		hubs[pos] = struct{}{}
	}
	if len(hubs) == 0 {
		return 0
	}

	written := 0
	for _, m := range members {
		for _, nb := range m.NeighborPositions() {
			node := n.plane.Peek(nb)
			switch node.Kind {
			case Source:
				continue
			case None:
				node = Node{Kind: Available, Locations: make(map[hexgrid.Pos]struct{}, len(hubs))}
			default:
				node = node.clone()
				if node.Locations == nil {
					node.Locations = make(map[hexgrid.Pos]struct{}, len(hubs))
				}
			}
			for h := range hubs {
				node.Locations[h] = struct{}{}
			}
			n.plane.Set(nb, node)
			written++
		}
	}
	return written
}

// ConnectedSources returns every source reachable from pos, following
// Available locations transitively.
func (n *Network) ConnectedSources(pos hexgrid.Pos) []hexgrid.Pos {
	seen := make(map[hexgrid.Pos]bool)
	var out []hexgrid.Pos
	var walk func(p hexgrid.Pos)
	walk = func(p hexgrid.Pos) {
		if seen[p] {
			return
		}
		seen[p] = true
		node := n.plane.Peek(p)
		switch node.Kind {
		case Source:
			out = append(out, p)
		case Available:
			for _, l := range node.LocationList() {
				walk(l)
			}
		}
	}
	walk(pos)
	return out
}

// rankedSources orders the sources reachable from pos nearest first, ties by x then y.
func (n *Network) rankedSources(pos hexgrid.Pos) []hexgrid.Pos {
	sources := n.ConnectedSources(pos)
	sort.SliceStable(sources, func(i, j int) bool {
		di, dj := hexgrid.Distance(pos, sources[i]), hexgrid.Distance(pos, sources[j])
		if di != dj {
			return di < dj
		}
		if sources[i].X != sources[j].X {
			return sources[i].X < sources[j].X
		}
		return sources[i].Y < sources[j].Y
	})
	return sources
}

func sourceLedger(cells Cells, p hexgrid.Pos) (cell.State, resource.Ledger, bool) {
	st := cells.Get(p)
	d, ok := st.Payload().(cell.Resource)
	if !ok {
		return st, resource.Ledger{}, false
	}
	return st, d.Ledger, true
}

// HasWorker reports whether some source reachable from pos has a free builder
// and enough logistics points to cover the distance.
func (n *Network) HasWorker(cells Cells, pos hexgrid.Pos) bool {
	for _, s := range n.ConnectedSources(pos) {
		_, l, ok := sourceLedger(cells, s)
		if !ok {
			continue
		}
		if l.Get(resource.Builders) > 0 && l.Get(resource.LogisticsPoints) >= hexgrid.Distance(pos, s) {
			return true
		}
	}
	return false
}

type drawMode uint8

const (
	drawBorrow  drawMode = iota // Packet held in Borrows, distance in Taken
	drawTake                    // Packet and distance in Taken
	drawDeliver                 // Packet is permanent, distance in Taken
)

// draw charges the nearest source that can afford packet plus the distance
// cost, and records the charge against src. Returns the source used and the
// full charge applied to its ledger.
func (n *Network) draw(cells Cells, src hexgrid.Pos, p resource.Packet, mode drawMode) (hexgrid.Pos, resource.Packet, bool) {
	node := n.plane.Peek(src)
	if node.Kind != Available {
		return hexgrid.Pos{}, resource.Packet{}, false
	}
	for _, s := range n.rankedSources(src) {
		st, l, ok := sourceLedger(cells, s)
		if !ok {
			continue
		}
		lp := resource.NewPacket(resource.LogisticsPoints, -hexgrid.Distance(src, s))
		charge := resource.Sum(p, lp)
		next, ok := resource.AddPacket(charge, l)
		if !ok {
			continue
		}
		st, _ = st.WithLedger(next)
		cells.Set(s, st)

		switch mode {
		case drawBorrow:
			node = node.withCharge(s, p, true).withCharge(s, lp, false)
		case drawTake:
			node = node.withCharge(s, charge, false)
		case drawDeliver:
			node = node.withCharge(s, lp, false)
		}
		n.plane.Set(src, node)
		n.debtors[src] = struct{}{}
		return s, charge, true
	}
	return hexgrid.Pos{}, resource.Packet{}, false
}

// TryBorrow draws p from the nearest able source. The packet stays borrowed
// until ReturnBorrows; the distance cost is refunded with the turn's charges.
func (n *Network) TryBorrow(cells Cells, src hexgrid.Pos, p resource.Packet) (hexgrid.Pos, bool) {
	s, _, ok := n.draw(cells, src, p, drawBorrow)
	return s, ok
}

// TryTake draws p from the nearest able source for the current turn only.
func (n *Network) TryTake(cells Cells, src hexgrid.Pos, p resource.Packet) (hexgrid.Pos, bool) {
	s, _, ok := n.draw(cells, src, p, drawTake)
	return s, ok
}

// TryTakeN takes count packets, possibly from different sources. Either all
// are taken or the network and ledgers are left as they were.
func (n *Network) TryTakeN(cells Cells, src hexgrid.Pos, p resource.Packet, count int) bool {
	if count <= 0 {
		return true
	}
	before := n.plane.Peek(src)
	type applied struct {
		source hexgrid.Pos
		charge resource.Packet
	}
	var done []applied
	for i := 0; i < count; i++ {
		s, charge, ok := n.draw(cells, src, p, drawTake)
		if ok {
			done = append(done, applied{source: s, charge: charge})
			continue
		}
		for j := len(done) - 1; j >= 0; j-- {
			n.refund(cells, done[j].source, done[j].charge)
		}
		n.plane.Set(src, before)
		if len(before.Taken) == 0 {
			delete(n.debtors, src)
		}
		return false
	}
	return true
}

// TryDeliver moves p into the nearest source able to hold it. Only the
// distance cost is recorded; the packet itself stays with the source.
func (n *Network) TryDeliver(cells Cells, src hexgrid.Pos, p resource.Packet) (hexgrid.Pos, bool) {
	s, _, ok := n.draw(cells, src, p, drawDeliver)
	return s, ok
}

// refund applies the negation of charge to the source's ledger.
func (n *Network) refund(cells Cells, source hexgrid.Pos, charge resource.Packet) bool {
	st, l, ok := sourceLedger(cells, source)
	if !ok {
		slog.Warn("refund to a position without a ledger dropped", "source", source, "charge", charge)
		return false
	}
	next, ok := resource.AddPacket(resource.Neg(charge), l)
	if !ok {
		slog.Warn("refund exceeds source capacity, dropped", "source", source, "charge", charge, "ledger", l)
		return false
	}
	st, _ = st.WithLedger(next)
	cells.Set(source, st)
	return true
}

func (n *Network) refundAll(cells Cells, charges map[hexgrid.Pos]resource.Packet) int {
	sources := make([]hexgrid.Pos, 0, len(charges))
	for s := range charges {
		sources = append(sources, s)
	}
	sortPositions(sources)
	refunded := 0
	for _, s := range sources {
		if charges[s].IsZero() {
			continue
		}
		if n.refund(cells, s, charges[s]) {
			refunded++
		}
	}
	return refunded
}

// ReturnBorrows gives back everything pos has borrowed and clears the record.
func (n *Network) ReturnBorrows(cells Cells, pos hexgrid.Pos) int {
	node := n.plane.Peek(pos)
	if node.Kind != Available || len(node.Borrows) == 0 {
		return 0
	}
	refunded := n.refundAll(cells, node.Borrows)
	node = node.clone()
	node.Borrows = nil
	n.plane.Set(pos, node)
	return refunded
}

// ReturnTaken refunds the per-turn charges recorded for pos and clears them.
func (n *Network) ReturnTaken(cells Cells, pos hexgrid.Pos) int {
	delete(n.debtors, pos)
	node := n.plane.Peek(pos)
	if node.Kind != Available || len(node.Taken) == 0 {
		return 0
	}
	refunded := n.refundAll(cells, node.Taken)
	node = node.clone()
	node.Taken = nil
	n.plane.Set(pos, node)
	return refunded
}

// ReturnAllTaken refunds every outstanding per-turn charge on the plane.
func (n *Network) ReturnAllTaken(cells Cells) int {
	debtors := make([]hexgrid.Pos, 0, len(n.debtors))
	for p := range n.debtors {
		debtors = append(debtors, p)
	}
	sortPositions(debtors)
	refunded := 0
	for _, p := range debtors {
		refunded += n.ReturnTaken(cells, p)
	}
	return refunded
}

// Borrowed returns the sum of everything pos currently holds on loan.
func (n *Network) Borrowed(pos hexgrid.Pos) resource.Packet {
	var total resource.Packet
	for _, p := range n.plane.Peek(pos).Borrows {
		total = resource.Sum(total, p)
	}
	return total
}
