package engine

import (
	"errors"
	"fmt"

	"github.com/talgya/hexworks/internal/cell"
	"github.com/talgya/hexworks/internal/hexgrid"
)

var (
	// ErrMalformedCell marks a scheduled cell whose payload its variant cannot handle.
	ErrMalformedCell = errors.New("malformed cell")
	// ErrNotBuildable is returned when the requested structure is not offered for the cell.
	ErrNotBuildable = errors.New("not buildable here")
	// ErrNoWorker is returned when no hub in reach can lend a builder.
	ErrNoWorker = errors.New("no worker in reach")
)

// CellError reports a single cell that could not be advanced. The cell is
// left as it was and the turn continues.
type CellError struct {
	Pos    hexgrid.Pos
	State  cell.State
	Reason string
}

func (e *CellError) Error() string {
	return fmt.Sprintf("cell %s (%s): %s", e.Pos, e.State, e.Reason)
}

func (e *CellError) Unwrap() error { return ErrMalformedCell }

func malformed(p hexgrid.Pos, s cell.State, reason string) error {
	return &CellError{Pos: p, State: s, Reason: reason}
}
