// Package engine advances the hex economy: per-cell transitions, the
// construction pipeline, and the turn loop that drives them.
package engine

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
)

// Engine owns a Simulation and serializes every access to it. Turns are
// ended on demand or, when autoplay runs, on a fixed interval.
type Engine struct {
	mu  sync.Mutex
	sim *Simulation

	Interval  time.Duration // Autoplay turn interval (0 = paused)
	SaveEvery uint64        // Turns between OnSave calls (0 = never)
	running   atomic.Bool

	// Callbacks, populated during setup.
	OnTurn func(r TurnReport)         // After every turn
	OnSave func(sim *Simulation) error // Every SaveEvery turns, with the simulation locked
}

// NewEngine wraps sim with default settings.
func NewEngine(sim *Simulation) *Engine {
	return &Engine{
		sim:      sim,
		Interval: time.Second,
	}
}

// Do runs fn with exclusive access to the simulation.
func (e *Engine) Do(fn func(sim *Simulation) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.sim)
}

// EndTurn advances the simulation by one turn and fires the callbacks.
func (e *Engine) EndTurn() TurnReport {
	e.mu.Lock()
	report := e.sim.EndTurn()
	if e.SaveEvery > 0 && report.Turn%e.SaveEvery == 0 && e.OnSave != nil {
		if err := e.OnSave(e.sim); err != nil {
			slog.Error("autosave failed", "turn", report.Turn, "error", err)
		}
	}
	e.mu.Unlock()

	if e.OnTurn != nil {
		e.OnTurn(report)
	}
	return report
}

// SetInterval changes the autoplay interval; safe while Run is active.
func (e *Engine) SetInterval(d time.Duration) {
	e.mu.Lock()
	e.Interval = d
	e.mu.Unlock()
}

// CurrentInterval returns the autoplay interval.
func (e *Engine) CurrentInterval() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Interval
}

// Running reports whether the autoplay loop is active.
func (e *Engine) Running() bool { return e.running.Load() }

// Run ends turns on the configured interval. Blocks until Stop is called or
// ctx is done.
func (e *Engine) Run(ctx context.Context) {
	e.running.Store(true)
	defer e.running.Store(false)

	var turn uint64
	e.Do(func(sim *Simulation) error {
		turn = sim.Turn
		return nil
	})
	slog.Info("turn engine started", "turn", turn, "interval", e.CurrentInterval())

	for e.running.Load() {
		interval := e.CurrentInterval()
		if interval <= 0 {
			// Paused: check again shortly.
			select {
			case <-ctx.Done():
				return
			case <-time.After(100 * time.Millisecond):
			}
			continue
		}

		start := time.Now()
		report := e.EndTurn()
		if report.Turn%100 == 0 {
			slog.Info("turn milestone", "turn", humanize.Comma(int64(report.Turn)), "visited", report.Visited)
		}

		wait := interval - time.Since(start)
		if wait < 0 {
			wait = 0
		}
		select {
		case <-ctx.Done():
			slog.Info("turn engine stopped", "turn", report.Turn)
			return
		case <-time.After(wait):
		}
	}
	slog.Info("turn engine stopped")
}

// Stop halts the autoplay loop after the current turn.
func (e *Engine) Stop() {
	e.running.Store(false)
}
