// Package actionmachine keeps the per-variant buckets of positions that are
// advanced once per turn, in a fixed category order.
package actionmachine

import (
	"sort"

	"github.com/talgya/hexworks/internal/cell"
	"github.com/talgya/hexworks/internal/hexgrid"
)

// order is the sequence buckets are processed in each turn.
var order = []cell.Variant{
	cell.Building,
	cell.WoodCutter,
	cell.WoodFarm,
	cell.Feeder,
	cell.Hot,
	cell.Seller,
}

// Order returns the schedulable variants in processing order.
func Order() []cell.Variant {
	out := make([]cell.Variant, len(order))
	copy(out, order)
	return out
}

// Prio returns the bucket index of v, or false if v is not schedulable.
func Prio(v cell.Variant) (int, bool) {
	for i, o := range order {
		if o == v {
			return i, true
		}
	}
	return 0, false
}

// bucket is an insertion-ordered position set.
type bucket struct {
	seq     map[hexgrid.Pos]uint64
	counter uint64
}

func (b *bucket) insert(p hexgrid.Pos) bool {
	if _, ok := b.seq[p]; ok {
		return false
	}
	b.counter++
	b.seq[p] = b.counter
	return true
}

func (b *bucket) members() []hexgrid.Pos {
	out := make([]hexgrid.Pos, 0, len(b.seq))
	for p := range b.seq {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return b.seq[out[i]] < b.seq[out[j]] })
	return out
}

// Machine holds one bucket per schedulable variant.
type Machine struct {
	buckets []bucket
}

// New returns a machine with every bucket empty.
func New() *Machine {
	m := &Machine{buckets: make([]bucket, len(order))}
	for i := range m.buckets {
		m.buckets[i].seq = make(map[hexgrid.Pos]uint64)
	}
	return m
}

// MaybeInsert registers p in the bucket for s's variant. Variants without a
// bucket are ignored. Returns true if p was newly added.
func (m *Machine) MaybeInsert(s cell.State, p hexgrid.Pos) bool {
	return m.Insert(s.Variant, p)
}

// Insert registers p under v, keeping its original position if already present.
func (m *Machine) Insert(v cell.Variant, p hexgrid.Pos) bool {
	i, ok := Prio(v)
	if !ok {
		return false
	}
	return m.buckets[i].insert(p)
}

// Remove drops p from v's bucket.
func (m *Machine) Remove(v cell.Variant, p hexgrid.Pos) bool {
	i, ok := Prio(v)
	if !ok {
		return false
	}
	if _, ok := m.buckets[i].seq[p]; !ok {
		return false
	}
	delete(m.buckets[i].seq, p)
	return true
}

// Contains reports whether p is registered under v.
func (m *Machine) Contains(v cell.Variant, p hexgrid.Pos) bool {
	i, ok := Prio(v)
	if !ok {
		return false
	}
	_, ok = m.buckets[i].seq[p]
	return ok
}

// Snapshot returns v's members in insertion order.
func (m *Machine) Snapshot(v cell.Variant) []hexgrid.Pos {
	i, ok := Prio(v)
	if !ok {
		return nil
	}
	return m.buckets[i].members()
}

// Len returns the total number of registered positions.
func (m *Machine) Len() int {
	n := 0
	for _, b := range m.buckets {
		n += len(b.seq)
	}
	return n
}

// Counts returns the size of each bucket keyed by variant.
func (m *Machine) Counts() map[cell.Variant]int {
	out := make(map[cell.Variant]int, len(order))
	for i, v := range order {
		out[v] = len(m.buckets[i].seq)
	}
	return out
}

// Step visits every member once, bucket by bucket. Each bucket's membership
// is captured when its pass starts; the cell is read through get at visit
// time, and members whose variant no longer matches the bucket are skipped.
func (m *Machine) Step(get func(hexgrid.Pos) cell.State, visit func(hexgrid.Pos, cell.State)) int {
	visited := 0
	for i, v := range order {
		for _, p := range m.buckets[i].members() {
			if _, ok := m.buckets[i].seq[p]; !ok {
				continue
			}
			s := get(p)
			if s.Variant != v {
				continue
			}
			visit(p, s)
			visited++
		}
	}
	return visited
}
