// Package api provides the HTTP REST surface for observing and driving the
// hex economy.
package api

import (
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/talgya/hexworks/internal/cell"
	"github.com/talgya/hexworks/internal/engine"
	"github.com/talgya/hexworks/internal/hexgrid"
	"github.com/talgya/hexworks/internal/render"
)

// maxViewport bounds the width and height of one viewport request.
const maxViewport = 64

// Per-client request limits per minute, used when the Server leaves them zero.
const (
	defaultReadsPerMinute    = 600
	defaultCommandsPerMinute = 120
)

// Saver persists the simulation on demand.
type Saver interface {
	SaveWorldState(sim *engine.Simulation) error
}

// Server serves the HTTP API.
type Server struct {
	Eng      *engine.Engine
	DB       Saver            // Nil disables POST /api/v1/snapshot
	Render   *render.Pipeline // Nil renders synchronously
	Port     int
	AdminKey string // Bearer token for POST endpoints. Empty = POST disabled.

	ReadsPerMinute    int // Per client, GET endpoints
	CommandsPerMinute int // Per client, build and end-turn
}

// Handler builds the routed handler, CORS included.
func (s *Server) Handler() http.Handler {
	reads := newLimiter(cmp.Or(s.ReadsPerMinute, defaultReadsPerMinute), time.Minute)
	commands := newLimiter(cmp.Or(s.CommandsPerMinute, defaultCommandsPerMinute), time.Minute)

	mux := http.NewServeMux()

	// Public endpoints (GET, read-only).
	mux.HandleFunc("/api/v1/status", reads.wrap(s.handleStatus))
	mux.HandleFunc("/api/v1/viewport", reads.wrap(s.handleViewport))
	mux.HandleFunc("/api/v1/cell/", reads.wrap(s.handleCell))

	// Admin endpoints (POST, require bearer token).
	mux.HandleFunc("/api/v1/build", s.adminOnly(commands.wrap(s.handleBuild)))
	mux.HandleFunc("/api/v1/end-turn", s.adminOnly(commands.wrap(s.handleEndTurn)))
	mux.HandleFunc("/api/v1/autoplay", s.adminOnly(s.handleAutoplay))
	mux.HandleFunc("/api/v1/snapshot", s.adminOnly(s.handleSnapshot))

	return corsMiddleware(mux)
}

// Start launches the HTTP server in a background goroutine.
func (s *Server) Start() {
	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	go func() {
		if err := http.ListenAndServe(addr, s.Handler()); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// Set CORS_ORIGINS env var to a comma-separated list of allowed origins.
// Localhost dev servers are always allowed.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:4173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// checkBearerToken returns true if the request has a valid admin bearer token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly wraps a handler to require bearer token auth on POST requests.
// GET requests pass through (for endpoints that support both GET and POST).
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if s.AdminKey == "" {
				http.Error(w, "admin endpoints disabled (no HEXWORKS_ADMIN_KEY set)", http.StatusForbidden)
				return
			}

			if !s.checkBearerToken(r) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}

		next(w, r)
	}
}

func (s *Server) asset(st cell.State) render.Asset {
	if s.Render == nil {
		return render.Render(st)
	}
	a, _ := s.Render.Request(st)
	return a
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	var status map[string]any
	s.Eng.Do(func(sim *engine.Simulation) error {
		status = map[string]any{
			"name":      "hexworks",
			"id":        sim.ID,
			"seed":      sim.Seed,
			"turn":      sim.Turn,
			"resources": sim.Resources,
			"scheduled": sim.Machine.Counts(),
			"chunks":    sim.Cells.ChunkCount(),
		}
		return nil
	})
	status["running"] = s.Eng.Running()
	status["interval_ms"] = s.Eng.CurrentInterval().Milliseconds()
	writeJSON(w, status)
}

// handleViewport returns glyph columns for GET /api/v1/viewport?x=&y=&w=&h=.
// Chunks around the view are realized first.
func (s *Server) handleViewport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	x, err1 := queryInt(q.Get("x"), 0)
	y, err2 := queryInt(q.Get("y"), 0)
	width, err3 := queryInt(q.Get("w"), 16)
	height, err4 := queryInt(q.Get("h"), 16)
	if err := errors.Join(err1, err2, err3, err4); err != nil {
		http.Error(w, "invalid viewport parameters", http.StatusBadRequest)
		return
	}
	if width <= 0 || height <= 0 || width > maxViewport || height > maxViewport {
		http.Error(w, fmt.Sprintf("w and h must be 1-%d", maxViewport), http.StatusBadRequest)
		return
	}
	if x > math.MaxInt-(width-1) || y > math.MaxInt-(height-1) {
		http.Error(w, "viewport extends past the coordinate range", http.StatusBadRequest)
		return
	}

	topLeft := hexgrid.Pos{X: x, Y: y}
	var view [][]hexgrid.Cell[cell.State]
	var realized int
	s.Eng.Do(func(sim *engine.Simulation) error {
		realized = sim.Cells.Touch(topLeft, width, height)
		view = sim.Cells.ViewPort(topLeft, width, height)
		return nil
	})

	// ViewPort is column-major: one string per x, one glyph per y.
	columns := make([]string, len(view))
	labels := make([][]string, len(view))
	for i, col := range view {
		var b strings.Builder
		labels[i] = make([]string, len(col))
		for j, c := range col {
			a := s.asset(c.Value)
			b.WriteString(a.Glyph)
			labels[i][j] = a.Label
		}
		columns[i] = b.String()
	}

	writeJSON(w, map[string]any{
		"x":        x,
		"y":        y,
		"w":        width,
		"h":        height,
		"realized": realized,
		"columns":  columns,
		"labels":   labels,
	})
}

// handleCell returns detail for GET /api/v1/cell/:x/:y. It never generates
// terrain: cells in unrealized chunks read as OutOfBounds with no options.
func (s *Server) handleCell(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(r.URL.Path, "/")
	// /api/v1/cell/:x/:y → parts[0]="" [1]="api" [2]="v1" [3]="cell" [4]=x [5]=y
	if len(parts) < 6 {
		http.Error(w, "usage: /api/v1/cell/:x/:y", http.StatusBadRequest)
		return
	}
	x, err1 := strconv.Atoi(parts[4])
	y, err2 := strconv.Atoi(parts[5])
	if err1 != nil || err2 != nil {
		http.Error(w, "invalid coordinates", http.StatusBadRequest)
		return
	}
	p := hexgrid.Pos{X: x, Y: y}

	var detail map[string]any
	s.Eng.Do(func(sim *engine.Simulation) error {
		st := sim.Cell(p)
		node := sim.Network.Node(p)
		detail = map[string]any{
			"x":         x,
			"y":         y,
			"variant":   st.Variant,
			"state":     st.String(),
			"options":   sim.Options(p),
			"node":      node.Kind.String(),
			"hubs":      node.LocationList(),
			"borrowed":  sim.Network.Borrowed(p).String(),
			"scheduled": sim.Machine.Contains(st.Variant, p),
		}
		if l, ok := st.Ledger(); ok {
			detail["ledger"] = l.String()
		}
		detail["asset"] = render.Render(st)
		return nil
	})
	writeJSON(w, detail)
}

func (s *Server) handleBuild(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Variant string `json:"variant"`
		X       int    `json:"x"`
		Y       int    `json:"y"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	target, ok := cell.ParseVariant(req.Variant)
	if !ok {
		http.Error(w, fmt.Sprintf("unknown variant %q", req.Variant), http.StatusBadRequest)
		return
	}

	p := hexgrid.Pos{X: req.X, Y: req.Y}
	var st cell.State
	err := s.Eng.Do(func(sim *engine.Simulation) error {
		if err := sim.Build(target, p); err != nil {
			return err
		}
		st = sim.Cell(p)
		return nil
	})
	switch {
	case errors.Is(err, engine.ErrNoWorker), errors.Is(err, engine.ErrNotBuildable):
		http.Error(w, err.Error(), http.StatusConflict)
		return
	case err != nil:
		slog.Error("build failed", "variant", target, "pos", p, "error", err)
		http.Error(w, "build failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{
		"x":     req.X,
		"y":     req.Y,
		"state": st.String(),
	})
}

func (s *Server) handleEndTurn(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	report := s.Eng.EndTurn()
	errs := make([]string, len(report.Errors))
	for i, err := range report.Errors {
		errs[i] = err.Error()
	}
	writeJSON(w, map[string]any{
		"turn":        report.Turn,
		"visited":     report.Visited,
		"refunded":    report.Refunded,
		"errors":      errs,
		"duration_us": report.Duration.Microseconds(),
	})
}

func (s *Server) handleAutoplay(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		var req struct {
			IntervalMS int64 `json:"interval_ms"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if req.IntervalMS < 0 || req.IntervalMS > 3_600_000 {
			http.Error(w, "interval_ms must be 0-3600000", http.StatusBadRequest)
			return
		}
		s.Eng.SetInterval(time.Duration(req.IntervalMS) * time.Millisecond)
		slog.Info("autoplay interval changed", "interval_ms", req.IntervalMS)
	}

	writeJSON(w, map[string]any{
		"interval_ms": s.Eng.CurrentInterval().Milliseconds(),
		"running":     s.Eng.Running(),
	})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.DB == nil {
		http.Error(w, "database not available", http.StatusServiceUnavailable)
		return
	}

	var turn uint64
	err := s.Eng.Do(func(sim *engine.Simulation) error {
		turn = sim.Turn
		return s.DB.SaveWorldState(sim)
	})
	if err != nil {
		slog.Error("snapshot save failed", "error", err)
		http.Error(w, "snapshot failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{
		"turn":    turn,
		"message": "snapshot saved",
	})
}

func queryInt(v string, def int) (int, error) {
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
