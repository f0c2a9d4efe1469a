package engine

import (
	"github.com/talgya/hexworks/internal/cell"
	"github.com/talgya/hexworks/internal/hexgrid"
	"github.com/talgya/hexworks/internal/resource"
)

// advance runs one scheduled cell's transition for this turn.
func (s *Simulation) advance(p hexgrid.Pos, st cell.State) error {
	switch st.Variant {
	case cell.Building:
		d, ok := st.Payload().(cell.InProgress)
		if !ok {
			return malformed(p, st, "construction site without a countdown")
		}
		return s.doBuildProgress(p, d)

	case cell.Feeder:
		if _, ok := st.Payload().(cell.Unit); !ok {
			return malformed(p, st, "feeder carries data")
		}
		s.feed(p)
		return nil

	case cell.Seller:
		if _, ok := st.Payload().(cell.Unit); !ok {
			return malformed(p, st, "seller carries data")
		}
		s.sell(p)
		return nil

	case cell.Hot, cell.WoodCutter, cell.WoodFarm:
		switch d := st.Payload().(type) {
		case cell.Slot:
			if st.Variant == cell.Hot {
				return nil
			}
		case cell.InProgress:
			if d.Countdown > 1 {
				d.Countdown--
				s.Cells.Set(p, cell.New(st.Variant, d))
				return nil
			}
			if d.Countdown == 1 {
				return s.complete(p, st.Variant, d)
			}
		}
	}
	return malformed(p, st, "no transition for this payload")
}

// complete handles a producer whose countdown has reached its last turn.
func (s *Simulation) complete(p hexgrid.Pos, v cell.Variant, d cell.InProgress) error {
	switch v {
	case cell.Hot:
		s.Cells.Set(p, cell.SlotState(cell.Hot, cell.Done))

	case cell.WoodCutter:
		if d.OnDone.Kind != cell.OnDoneVariantLedger {
			return malformed(p, cell.New(v, d), "woodcutter without terrain")
		}
		terrain, ok := resource.Add(resource.Wood, d.OnDone.Ledger, -1)
		if !ok {
			return nil
		}
		if !s.deliverWood(p) {
			return nil
		}
		s.Cells.Set(p, cell.Countdown(cell.WoodCutter, s.Rules.WoodCutterCycle, cell.BecomeWith(cell.WoodCutter, terrain)))

	case cell.WoodFarm:
		if !s.deliverWood(p) {
			return nil
		}
		s.Cells.Set(p, cell.Countdown(cell.WoodFarm, s.Rules.WoodFarmCycle, cell.Nothing()))
	}
	return nil
}

func (s *Simulation) deliverWood(p hexgrid.Pos) bool {
	if _, ok := s.Network.TryDeliver(s.Cells, p, resource.NewPacket(resource.Wood, s.Rules.WoodYield)); !ok {
		return false
	}
	s.Resources.WoodDelivered += s.Rules.WoodYield
	return true
}

func isHot(st cell.State) bool { return st.Variant == cell.Hot }

// feed starts the first idle Hot cell connected to the feeder.
func (s *Simulation) feed(p hexgrid.Pos) {
	for _, c := range s.Cells.Connected(p, isHot) {
		if d, ok := c.Value.Payload().(cell.Slot); ok && d.Value == cell.Empty {
			s.Cells.Set(c.Pos, cell.Countdown(cell.Hot, s.Rules.HotCycle, cell.Nothing()))
			return
		}
	}
}

// sell empties the first finished Hot cell connected to the seller.
func (s *Simulation) sell(p hexgrid.Pos) {
	for _, c := range s.Cells.Connected(p, isHot) {
		if d, ok := c.Value.Payload().(cell.Slot); ok && d.Value == cell.Done {
			s.Cells.Set(c.Pos, cell.SlotState(cell.Hot, cell.Empty))
			s.Resources.Coin += s.Rules.SellPrice
			return
		}
	}
}
