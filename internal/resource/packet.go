package resource

import (
	"fmt"
	"strings"
)

// NewPacket returns a packet with a single non-zero delta.
func NewPacket(k Kind, delta int) Packet {
	var p Packet
	p[k] = delta
	return p
}

// With returns p with kind k set to delta.
func (p Packet) With(k Kind, delta int) Packet {
	p[k] = delta
	return p
}

// Neg returns the packet that undoes p.
func Neg(p Packet) Packet {
	for k := range p {
		p[k] = -p[k]
	}
	return p
}

// Sum adds two packets component-wise.
func Sum(a, b Packet) Packet {
	for k := range a {
		a[k] += b[k]
	}
	return a
}

// Scale multiplies every delta of p by n.
func Scale(p Packet, n int) Packet {
	for k := range p {
		p[k] *= n
	}
	return p
}

// IsZero reports whether p changes nothing.
func (p Packet) IsZero() bool {
	return p == Packet{}
}

func (p Packet) String() string {
	var parts []string
	for k, d := range p {
		if d != 0 {
			parts = append(parts, fmt.Sprintf("%s:%+d", Kind(k), d))
		}
	}
	return "[" + strings.Join(parts, " ") + "]"
}
