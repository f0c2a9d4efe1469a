// Simulation ties the cell grid, logistics network and scheduler together
// and advances them one turn at a time.
package engine

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/talgya/hexworks/internal/actionmachine"
	"github.com/talgya/hexworks/internal/cell"
	"github.com/talgya/hexworks/internal/hexgrid"
	"github.com/talgya/hexworks/internal/logistics"
	"github.com/talgya/hexworks/internal/menu"
)

// Resources are the game-wide counters that live outside any cell.
type Resources struct {
	Tiles            int     `json:"tiles"`              // Hot cells built
	Leak             int     `json:"leak"`               // Total heat leak
	HeatEfficiency   float64 `json:"heat_efficiency"`    // Tiles per unit of leak
	Coin             int     `json:"coin"`               // Earned by sellers
	WoodDelivered    int     `json:"wood_delivered"`     // Wood moved into hubs
	BuildsInProgress int     `json:"builds_in_progress"` // Open construction sites
}

// NewResources returns the counters of a new game.
func NewResources() Resources {
	return Resources{Leak: 1}
}

// Simulation holds the complete game state.
type Simulation struct {
	ID        uuid.UUID
	Seed      int64 // Generator seed, kept so reloads regenerate the same terrain
	Cells     *hexgrid.Grid[cell.State]
	Network   *logistics.Network
	Machine   *actionmachine.Machine
	Resources Resources
	Turn      uint64
	Rules     Rules
}

// TurnReport summarizes one EndTurn.
type TurnReport struct {
	Turn     uint64        `json:"turn"`
	Visited  int           `json:"visited"`  // Scheduled cells advanced
	Refunded int           `json:"refunded"` // Per-turn charges returned at the start
	Errors   []error       `json:"-"`
	Duration time.Duration `json:"duration"`
}

// NewSimulation creates an empty world over gen.
func NewSimulation(gen hexgrid.Generator[cell.State], rules Rules) *Simulation {
	return &Simulation{
		ID:        uuid.New(),
		Cells:     hexgrid.New[cell.State](gen, cell.UnitState(cell.OutOfBounds)),
		Network:   logistics.NewNetwork(),
		Machine:   actionmachine.New(),
		Resources: NewResources(),
		Rules:     rules,
	}
}

// NewGame creates a world with the starting hub at the origin.
func NewGame(gen hexgrid.Generator[cell.State], rules Rules) (*Simulation, error) {
	s := NewSimulation(gen, rules)
	if err := s.PlaceHub(hexgrid.Pos{}, rules.StartWood); err != nil {
		return nil, err
	}
	slog.Info("new game", "id", s.ID, "start_wood", rules.StartWood)
	return s, nil
}

// Cell returns the state at p without generating terrain. Cells in
// unrealized chunks read as OutOfBounds.
func (s *Simulation) Cell(p hexgrid.Pos) cell.State {
	return s.Cells.Peek(p)
}

// Options lists what can be built at p right now. Like Cell it never
// generates terrain; the network only reaches realized cells.
func (s *Simulation) Options(p hexgrid.Pos) []cell.Variant {
	return menu.Options(s.Network.HasWorker(s.Cells, p), s.Cells.Peek(p))
}

// EndTurn refunds last turn's per-turn charges, then advances every
// scheduled cell once. Cells that cannot be advanced are reported and left
// unchanged.
func (s *Simulation) EndTurn() TurnReport {
	start := time.Now()
	s.Turn++
	report := TurnReport{Turn: s.Turn}

	report.Refunded = s.Network.ReturnAllTaken(s.Cells)
	report.Visited = s.Machine.Step(s.Cells.Get, func(p hexgrid.Pos, st cell.State) {
		if err := s.advance(p, st); err != nil {
			slog.Warn("cell skipped", "turn", s.Turn, "error", err)
			report.Errors = append(report.Errors, err)
		}
	})

	report.Duration = time.Since(start)
	return report
}
