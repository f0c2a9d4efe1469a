package engine

import (
	"fmt"
	"log/slog"

	"github.com/talgya/hexworks/internal/cell"
	"github.com/talgya/hexworks/internal/hexgrid"
	"github.com/talgya/hexworks/internal/menu"
	"github.com/talgya/hexworks/internal/resource"
)

var workPacket = resource.NewPacket(resource.BuildTime, -1)

// Build starts construction of target at p, or applies a menu move
// immediately. On error the world is unchanged.
func (s *Simulation) Build(target cell.Variant, p hexgrid.Pos) error {
	st := s.Cells.Get(p)
	hasWorker := s.Network.HasWorker(s.Cells, p)
	if !hasWorker {
		return fmt.Errorf("build %s at %s: %w", target, p, ErrNoWorker)
	}
	if !menu.Offers(hasWorker, st, target) {
		return fmt.Errorf("build %s at %s on %s: %w", target, p, st.Variant, ErrNotBuildable)
	}

	if target.IsMenu() {
		next, _ := menu.Transition(target, st)
		s.Cells.Set(p, next)
		return nil
	}

	if _, ok := s.Network.TryBorrow(s.Cells, p, resource.NewPacket(resource.Builders, -1)); !ok {
		return fmt.Errorf("build %s at %s: %w", target, p, ErrNoWorker)
	}

	onDone := cell.Become(target)
	if l, ok := st.Ledger(); ok {
		onDone = cell.BecomeWith(target, l)
	}
	site := cell.Countdown(cell.Building, s.Rules.BuildTime(target), onDone)
	s.Cells.Set(p, site)
	s.Machine.MaybeInsert(site, p)
	s.Resources.BuildsInProgress++

	slog.Info("construction started", "target", target, "pos", p, "turns", s.Rules.BuildTime(target))
	return nil
}

// PlaceHub puts a finished hub holding wood at p, without construction.
func (s *Simulation) PlaceHub(p hexgrid.Pos, wood int) error {
	l, ok := resource.Add(resource.Wood, s.Rules.HubLedger(), wood)
	if !ok {
		return fmt.Errorf("place hub at %s: %d wood exceeds capacity %d", p, wood, s.Rules.HubWoodCap)
	}
	s.Cells.Set(p, cell.Stockpile(cell.Hub, l))
	s.Network.MakeSource(p)
	s.Network.Update(s.Cells, p, true)
	return nil
}

// doBuildProgress spends this turn's build time on the site at p. Each
// borrowed builder works one unit; if the hubs cannot fund all of it the
// site waits for the next turn.
func (s *Simulation) doBuildProgress(p hexgrid.Pos, d cell.InProgress) error {
	switch d.OnDone.Kind {
	case cell.OnDoneVariant, cell.OnDoneVariantLedger:
	default:
		return malformed(p, cell.New(cell.Building, d), "construction site without a target")
	}

	if d.Countdown > 0 {
		builders := -s.Network.Borrowed(p)[resource.Builders]
		work := min(builders, d.Countdown)
		if work <= 0 {
			return nil
		}
		if !s.Network.TryTakeN(s.Cells, p, workPacket, work) {
			return nil
		}
		d.Countdown -= work
		if d.Countdown > 0 {
			s.Cells.Set(p, cell.New(cell.Building, d))
			return nil
		}
	}
	s.finalizeBuild(p, d.OnDone)
	return nil
}

// finalizeBuild releases the site's builders and turns it into its target.
func (s *Simulation) finalizeBuild(p hexgrid.Pos, onDone cell.OnDone) {
	s.Network.ReturnBorrows(s.Cells, p)
	s.Network.ReturnTaken(s.Cells, p)
	s.Machine.Remove(cell.Building, p)

	target := onDone.Target
	st := s.initialState(target, onDone)
	s.Cells.Set(p, st)
	s.Machine.MaybeInsert(st, p)
	s.applyLeak(p, target)

	switch target {
	case cell.Hub:
		s.Network.MakeSource(p)
		s.Network.Update(s.Cells, p, true)
	case cell.Road:
		s.Network.Update(s.Cells, p, false)
	}
	s.Resources.BuildsInProgress--

	slog.Info("construction finished", "target", target, "pos", p, "turn", s.Turn)
}

// initialState is what a finished structure starts as.
func (s *Simulation) initialState(target cell.Variant, onDone cell.OnDone) cell.State {
	terrain := resource.NewLedger()
	if onDone.Kind == cell.OnDoneVariantLedger {
		terrain = onDone.Ledger
	}
	switch target {
	case cell.Unused:
		return cell.Stockpile(cell.Unused, terrain)
	case cell.Hot:
		return cell.SlotState(cell.Hot, cell.Empty)
	case cell.WoodCutter:
		return cell.Countdown(cell.WoodCutter, s.Rules.WoodCutterCycle, cell.BecomeWith(cell.WoodCutter, terrain))
	case cell.WoodFarm:
		return cell.Countdown(cell.WoodFarm, s.Rules.WoodFarmCycle, cell.Nothing())
	case cell.Hub:
		return cell.Stockpile(cell.Hub, s.Rules.HubLedger())
	}
	return cell.UnitState(target)
}

// applyLeak updates heat leak and efficiency for a newly finished structure.
func (s *Simulation) applyLeak(p hexgrid.Pos, target cell.Variant) {
	neighbors := s.Cells.Neighbors(p)
	variants := make([]cell.Variant, 0, len(neighbors))
	for _, n := range neighbors {
		variants = append(variants, n.Value.Variant)
	}
	delta, ok := cell.LeakDelta(target, variants)
	if !ok {
		return
	}
	s.Resources.Leak += delta
	if cell.IsTile(target) {
		s.Resources.Tiles++
	}
	s.Resources.HeatEfficiency = float64(s.Resources.Tiles) / float64(max(s.Resources.Leak, 1))
}
