package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/talgya/hexworks/internal/api"
	"github.com/talgya/hexworks/internal/cell"
	"github.com/talgya/hexworks/internal/engine"
	"github.com/talgya/hexworks/internal/hexgrid"
	"github.com/talgya/hexworks/internal/resource"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	gen := hexgrid.Fill(cell.Stockpile(cell.Hidden, resource.NewLedger().WithSlot(resource.Wood, 3, 6)))
	sim, err := engine.NewGame(gen, engine.DefaultRules())
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	s := &api.Server{Eng: engine.NewEngine(sim), AdminKey: "k"}
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func TestDriveGame(t *testing.T) {
	ts := newServer(t)
	c := New(ts.URL, "k")
	ctx := context.Background()

	if err := c.WaitReady(ctx); err != nil {
		t.Fatalf("WaitReady: %v", err)
	}
	state, err := c.Build(ctx, "Unused", 1, 0)
	if err != nil || state != "Building{2->Unused}" {
		t.Fatalf("Build = %q, %v", state, err)
	}
	for i := 0; i < 2; i++ {
		if _, err := c.EndTurn(ctx); err != nil {
			t.Fatalf("EndTurn: %v", err)
		}
	}

	st, err := c.Status(ctx)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if st.Turn != 2 || st.Resources.Leak != 1 || st.Name != "hexworks" {
		t.Fatalf("status = %+v", st)
	}

	d, err := c.Cell(ctx, 1, 0)
	if err != nil || d.Variant != "Unused" || len(d.Options) != 3 {
		t.Fatalf("Cell = %+v, %v", d, err)
	}

	v, err := c.Viewport(ctx, -1, -1, 3, 3)
	if err != nil || len(v.Columns) != 3 {
		t.Fatalf("Viewport = %+v, %v", v, err)
	}

	if err := c.SetAutoplay(ctx, 500*time.Millisecond); err != nil {
		t.Fatalf("SetAutoplay: %v", err)
	}
	if st, _ := c.Status(ctx); st.IntervalMS != 500 {
		t.Fatalf("interval = %d", st.IntervalMS)
	}
}

func TestCommandErrors(t *testing.T) {
	ts := newServer(t)
	ctx := context.Background()

	_, err := New(ts.URL, "wrong").EndTurn(ctx)
	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusUnauthorized {
		t.Fatalf("EndTurn with bad key = %v", err)
	}

	_, err = New(ts.URL, "k").Build(ctx, "WoodCutter", 1, 0)
	if !errors.As(err, &se) || se.Code != http.StatusConflict {
		t.Fatalf("unbuildable Build = %v", err)
	}

	if err := New(ts.URL, "k").Snapshot(ctx); !errors.As(err, &se) || se.Code != http.StatusServiceUnavailable {
		t.Fatalf("Snapshot without db = %v", err)
	}
}

func TestWaitReadyGivesUp(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	if err := New(ts.URL, "").WaitReady(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("WaitReady = %v, want deadline exceeded", err)
	}
}
