package persistence

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/klauspost/compress/zstd"

	"github.com/talgya/hexworks/internal/cell"
	"github.com/talgya/hexworks/internal/hexgrid"
	"github.com/talgya/hexworks/internal/logistics"
	"github.com/talgya/hexworks/internal/resource"
)

// Payload shapes as stored.
const (
	payloadUnit uint8 = iota
	payloadSlot
	payloadInProgress
	payloadResource
)

// cellV1 is the flat stored form of a cell.State.
type cellV1 struct {
	Variant   uint8
	Payload   uint8
	Slot      uint8
	Countdown int
	OnDone    uint8
	Target    uint8
	HasTarget bool
	Ledger    resource.Ledger
}

func encodeCell(s cell.State) cellV1 {
	c := cellV1{Variant: uint8(s.Variant)}
	switch d := s.Payload().(type) {
	case cell.Slot:
		c.Payload = payloadSlot
		c.Slot = uint8(d.Value)
	case cell.InProgress:
		c.Payload = payloadInProgress
		c.Countdown = d.Countdown
		c.OnDone = uint8(d.OnDone.Kind)
		c.Target = uint8(d.OnDone.Target)
		c.Ledger = d.OnDone.Ledger
	case cell.Resource:
		c.Payload = payloadResource
		c.Target = uint8(d.Target)
		c.HasTarget = d.HasTarget
		c.Ledger = d.Ledger
	}
	return c
}

func decodeCell(c cellV1) (cell.State, error) {
	v := cell.Variant(c.Variant)
	if v >= cell.VariantCount {
		return cell.State{}, fmt.Errorf("unknown variant %d", c.Variant)
	}
	switch c.Payload {
	case payloadUnit:
		return cell.UnitState(v), nil
	case payloadSlot:
		return cell.SlotState(v, cell.SlotValue(c.Slot)), nil
	case payloadInProgress:
		onDone := cell.OnDone{Kind: cell.OnDoneKind(c.OnDone), Target: cell.Variant(c.Target), Ledger: c.Ledger}
		return cell.Countdown(v, c.Countdown, onDone), nil
	case payloadResource:
		return cell.New(v, cell.Resource{Ledger: c.Ledger, Target: cell.Variant(c.Target), HasTarget: c.HasTarget}), nil
	}
	return cell.State{}, fmt.Errorf("unknown payload %d", c.Payload)
}

// Shared zstd coders; EncodeAll and DecodeAll are safe for concurrent use.
var (
	encoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	decoder, _ = zstd.NewReader(nil)
)

// encodeChunk serializes a chunk's cells as zstd-compressed gob.
func encodeChunk(c *hexgrid.Chunk[cell.State]) ([]byte, error) {
	cells := c.Cells()
	stored := make([]cellV1, len(cells))
	for i, s := range cells {
		stored[i] = encodeCell(s)
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(stored); err != nil {
		return nil, fmt.Errorf("gob encode: %w", err)
	}
	return encoder.EncodeAll(buf.Bytes(), nil), nil
}

// decodeChunk restores a chunk written by encodeChunk.
func decodeChunk(key hexgrid.Pos, blob []byte) (*hexgrid.Chunk[cell.State], error) {
	raw, err := decoder.DecodeAll(blob, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decode: %w", err)
	}
	var stored []cellV1
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&stored); err != nil {
		return nil, fmt.Errorf("gob decode: %w", err)
	}
	cells := make([]cell.State, len(stored))
	for i, c := range stored {
		if cells[i], err = decodeCell(c); err != nil {
			return nil, fmt.Errorf("cell %d: %w", i, err)
		}
	}
	chunk := hexgrid.ChunkFromCells(key, cells)
	if chunk == nil {
		return nil, fmt.Errorf("chunk %s has %d cells", key, len(cells))
	}
	return chunk, nil
}

// chargeV1 is one entry of a node's borrows or taken map.
type chargeV1 struct {
	Source hexgrid.Pos     `json:"source"`
	Packet resource.Packet `json:"packet"`
}

// nodeV1 is the stored form of a non-None logistics node.
type nodeV1 struct {
	Pos       hexgrid.Pos   `json:"pos"`
	Kind      uint8         `json:"kind"`
	Locations []hexgrid.Pos `json:"locations,omitempty"`
	Borrows   []chargeV1    `json:"borrows,omitempty"`
	Taken     []chargeV1    `json:"taken,omitempty"`
}

func encodeNode(p hexgrid.Pos, n logistics.Node) nodeV1 {
	return nodeV1{
		Pos:       p,
		Kind:      uint8(n.Kind),
		Locations: n.LocationList(),
		Borrows:   encodeCharges(n.Borrows),
		Taken:     encodeCharges(n.Taken),
	}
}

func encodeCharges(m map[hexgrid.Pos]resource.Packet) []chargeV1 {
	if len(m) == 0 {
		return nil
	}
	out := make([]chargeV1, 0, len(m))
	for src, p := range m {
		out = append(out, chargeV1{Source: src, Packet: p})
	}
	return out
}

func decodeNode(v nodeV1) logistics.Node {
	n := logistics.Node{Kind: logistics.NodeKind(v.Kind)}
	if len(v.Locations) > 0 {
		n.Locations = make(map[hexgrid.Pos]struct{}, len(v.Locations))
		for _, l := range v.Locations {
			n.Locations[l] = struct{}{}
		}
	}
	n.Borrows = decodeCharges(v.Borrows)
	n.Taken = decodeCharges(v.Taken)
	return n
}

func decodeCharges(cs []chargeV1) map[hexgrid.Pos]resource.Packet {
	if len(cs) == 0 {
		return nil
	}
	m := make(map[hexgrid.Pos]resource.Packet, len(cs))
	for _, c := range cs {
		m[c.Source] = resource.Sum(m[c.Source], c.Packet)
	}
	return m
}
