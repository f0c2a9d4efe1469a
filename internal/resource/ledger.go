// Package resource provides fixed-shape resource ledgers and signed delta packets.
// Ledgers are values: every operation returns a new ledger and never mutates its input.
package resource

import (
	"fmt"
	"strings"
)

// Kind enumerates the resources a ledger tracks.
type Kind uint8

const (
	LogisticsPoints Kind = iota // Distance budget of a hub, renewed every turn
	Wood                        // Terrain stock or hub storage
	Builders                    // Workers lent to construction sites
	BuildTime                   // Construction throughput per turn
	Coin                        // Currency
	KindCount                   // Number of kinds; not a resource
)

var kindNames = [KindCount]string{
	LogisticsPoints: "LogisticsPoints",
	Wood:            "Wood",
	Builders:        "Builders",
	BuildTime:       "BuildTime",
	Coin:            "Coin",
}

func (k Kind) String() string {
	if k < KindCount {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// ParseKind resolves a kind from its name.
func ParseKind(name string) (Kind, bool) {
	for k, n := range kindNames {
		if strings.EqualFold(n, name) {
			return Kind(k), true
		}
	}
	return 0, false
}

// Slot is one resource's stock and capacity.
type Slot struct {
	Current int `json:"current"`
	Max     int `json:"max"`
}

// Ledger holds the stock of every resource kind.
type Ledger [KindCount]Slot

// Packet is a signed delta for every resource kind.
type Packet [KindCount]int

// NewLedger returns an empty ledger.
func NewLedger() Ledger { return Ledger{} }

// Full returns l with kind k set to n/n.
func (l Ledger) Full(k Kind, n int) Ledger {
	l[k] = Slot{Current: n, Max: n}
	return l
}

// WithSlot returns l with kind k set to current/max.
func (l Ledger) WithSlot(k Kind, current, max int) Ledger {
	l[k] = Slot{Current: current, Max: max}
	return l
}

// WithMax returns l with kind k's capacity set to max, stock unchanged.
func (l Ledger) WithMax(k Kind, max int) Ledger {
	l[k].Max = max
	return l
}

// Get returns the current stock of kind k.
func (l Ledger) Get(k Kind) int { return l[k].Current }

// Valid reports whether every slot satisfies 0 <= current <= max.
func (l Ledger) Valid() bool {
	for _, s := range l {
		if s.Current < 0 || s.Current > s.Max {
			return false
		}
	}
	return true
}

func (l Ledger) String() string {
	var b strings.Builder
	b.WriteString("{")
	first := true
	for k, s := range l {
		if s.Max == 0 && s.Current == 0 {
			continue
		}
		if !first {
			b.WriteString(" ")
		}
		first = false
		fmt.Fprintf(&b, "%s:%d/%d", Kind(k), s.Current, s.Max)
	}
	b.WriteString("}")
	return b.String()
}

// HasCapacity reports whether adding delta to kind k keeps it within 0..max.
func HasCapacity(k Kind, l Ledger, delta int) bool {
	next := l[k].Current + delta
	return next >= 0 && next <= l[k].Max
}

// Add applies delta to kind k. Returns the unchanged ledger and false if the
// result would leave the slot's bounds.
func Add(k Kind, l Ledger, delta int) (Ledger, bool) {
	if !HasCapacity(k, l, delta) {
		return l, false
	}
	l[k].Current += delta
	return l, true
}

// AddPacket applies every delta of p. Either all slots change or none do.
func AddPacket(p Packet, l Ledger) (Ledger, bool) {
	for k, d := range p {
		if !HasCapacity(Kind(k), l, d) {
			return l, false
		}
	}
	for k, d := range p {
		l[k].Current += d
	}
	return l, true
}

// HasResources reports whether l holds at least req of every kind.
func HasResources(req Packet, l Ledger) bool {
	for k, n := range req {
		if n > l[k].Current {
			return false
		}
	}
	return true
}
