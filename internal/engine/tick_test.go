package engine

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/talgya/hexworks/internal/cell"
	"github.com/talgya/hexworks/internal/hexgrid"
)

func TestEngineAutosave(t *testing.T) {
	e := NewEngine(NewSimulation(hexgrid.Fill(cell.UnitState(cell.Unused)), DefaultRules()))
	e.SaveEvery = 3
	var saves, turns int
	e.OnSave = func(sim *Simulation) error {
		saves++
		if sim.Turn%3 != 0 {
			t.Errorf("save at turn %d", sim.Turn)
		}
		return errors.New("disk full")
	}
	e.OnTurn = func(TurnReport) { turns++ }

	for i := 0; i < 7; i++ {
		e.EndTurn()
	}
	if saves != 2 || turns != 7 {
		t.Fatalf("saves=%d turns=%d, want 2 and 7", saves, turns)
	}
}

func TestEngineRunStopsOnCancel(t *testing.T) {
	e := NewEngine(NewSimulation(hexgrid.Fill(cell.UnitState(cell.Unused)), DefaultRules()))
	e.Interval = time.Millisecond

	var turns atomic.Int64
	ctx, cancel := context.WithCancel(context.Background())
	e.OnTurn = func(TurnReport) {
		if turns.Add(1) == 5 {
			cancel()
		}
	}

	done := make(chan struct{})
	go func() {
		e.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("Run did not return after cancel")
	}
	if e.Running() {
		t.Fatalf("engine still reports running")
	}

	var turn uint64
	e.Do(func(sim *Simulation) error {
		turn = sim.Turn
		return nil
	})
	if turn < 5 {
		t.Fatalf("turn = %d, want at least 5", turn)
	}
}
