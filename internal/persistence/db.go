// Package persistence provides SQLite-based world state storage.
package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/hexworks/internal/actionmachine"
	"github.com/talgya/hexworks/internal/cell"
	"github.com/talgya/hexworks/internal/engine"
	"github.com/talgya/hexworks/internal/hexgrid"
	"github.com/talgya/hexworks/internal/logistics"
)

// ErrNoSave is returned by LoadWorldState when the database holds no world.
var ErrNoSave = errors.New("no saved world")

// DB wraps a SQLite connection for world state persistence.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS chunks (
		cx INTEGER NOT NULL,
		cy INTEGER NOT NULL,
		cells BLOB NOT NULL,
		PRIMARY KEY (cx, cy)
	);

	CREATE TABLE IF NOT EXISTS logistics (
		x INTEGER NOT NULL,
		y INTEGER NOT NULL,
		node_json TEXT NOT NULL,
		PRIMARY KEY (x, y)
	);

	CREATE TABLE IF NOT EXISTS schedule (
		variant TEXT NOT NULL,
		seq INTEGER NOT NULL,
		x INTEGER NOT NULL,
		y INTEGER NOT NULL,
		PRIMARY KEY (variant, seq)
	);

	CREATE TABLE IF NOT EXISTS world_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	_, err := db.conn.Exec(schema)
	return err
}

type chunkRow struct {
	CX    int    `db:"cx"`
	CY    int    `db:"cy"`
	Cells []byte `db:"cells"`
}

type scheduleRow struct {
	Variant string `db:"variant"`
	Seq     int    `db:"seq"`
	X       int    `db:"x"`
	Y       int    `db:"y"`
}

// saveChunks writes every realized chunk of the cell grid (full replace).
func saveChunks(tx *sqlx.Tx, cells *hexgrid.Grid[cell.State]) (int, error) {
	if _, err := tx.Exec("DELETE FROM chunks"); err != nil {
		return 0, err
	}
	stmt, err := tx.Preparex("INSERT INTO chunks (cx, cy, cells) VALUES (?, ?, ?)")
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	size := 0
	for _, c := range cells.Chunks() {
		blob, err := encodeChunk(c)
		if err != nil {
			return 0, fmt.Errorf("encode chunk %s: %w", c.Key, err)
		}
		if _, err := stmt.Exec(c.Key.X, c.Key.Y, blob); err != nil {
			return 0, fmt.Errorf("insert chunk %s: %w", c.Key, err)
		}
		size += len(blob)
	}
	return size, nil
}

// saveLogistics writes every node that is not None.
func saveLogistics(tx *sqlx.Tx, n *logistics.Network) (int, error) {
	if _, err := tx.Exec("DELETE FROM logistics"); err != nil {
		return 0, err
	}
	stmt, err := tx.Preparex("INSERT INTO logistics (x, y, node_json) VALUES (?, ?, ?)")
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	count := 0
	for _, c := range n.Plane().Chunks() {
		for i, node := range c.Cells() {
			if node.Kind == logistics.None {
				continue
			}
			p := hexgrid.Pos{X: c.Key.X + i/hexgrid.ChunkSize, Y: c.Key.Y + i%hexgrid.ChunkSize}
			nodeJSON, err := json.Marshal(encodeNode(p, node))
			if err != nil {
				return 0, fmt.Errorf("encode node %s: %w", p, err)
			}
			if _, err := stmt.Exec(p.X, p.Y, string(nodeJSON)); err != nil {
				return 0, fmt.Errorf("insert node %s: %w", p, err)
			}
			count++
		}
	}
	return count, nil
}

// saveSchedule writes every bucket in iteration order.
func saveSchedule(tx *sqlx.Tx, m *actionmachine.Machine) error {
	if _, err := tx.Exec("DELETE FROM schedule"); err != nil {
		return err
	}
	for _, v := range actionmachine.Order() {
		for seq, p := range m.Snapshot(v) {
			_, err := tx.Exec("INSERT INTO schedule (variant, seq, x, y) VALUES (?, ?, ?, ?)",
				v.String(), seq, p.X, p.Y)
			if err != nil {
				return fmt.Errorf("insert schedule %s %s: %w", v, p, err)
			}
		}
	}
	return nil
}

func saveMeta(tx *sqlx.Tx, key, value string) error {
	_, err := tx.Exec(
		"INSERT OR REPLACE INTO world_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// SaveMeta stores a key-value pair in world metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO world_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM world_meta WHERE key = ?", key)
	return value, err
}

// SavedSeed returns the generator seed of the stored world, if any.
func (db *DB) SavedSeed() (int64, bool, error) {
	v, err := db.GetMeta("seed")
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	seed, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("parse seed %q: %w", v, err)
	}
	return seed, true, nil
}

// SaveWorldState performs a full save of all world state in one transaction.
func (db *DB) SaveWorldState(sim *engine.Simulation) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	chunkBytes, err := saveChunks(tx, sim.Cells)
	if err != nil {
		return fmt.Errorf("save chunks: %w", err)
	}
	nodes, err := saveLogistics(tx, sim.Network)
	if err != nil {
		return fmt.Errorf("save logistics: %w", err)
	}
	if err := saveSchedule(tx, sim.Machine); err != nil {
		return fmt.Errorf("save schedule: %w", err)
	}

	resJSON, err := json.Marshal(sim.Resources)
	if err != nil {
		return fmt.Errorf("encode resources: %w", err)
	}
	meta := map[string]string{
		"world_id":  sim.ID.String(),
		"seed":      strconv.FormatInt(sim.Seed, 10),
		"turn":      strconv.FormatUint(sim.Turn, 10),
		"resources": string(resJSON),
	}
	for k, v := range meta {
		if err := saveMeta(tx, k, v); err != nil {
			return fmt.Errorf("save meta %s: %w", k, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	slog.Info("world state saved",
		"turn", sim.Turn,
		"chunks", sim.Cells.ChunkCount(),
		"size", humanize.Bytes(uint64(chunkBytes)),
		"nodes", nodes,
		"scheduled", sim.Machine.Len(),
	)
	return nil
}

// LoadWorldState rebuilds a simulation over gen from the stored state.
// gen must be built from the stored seed so unrealized terrain matches.
func (db *DB) LoadWorldState(gen hexgrid.Generator[cell.State], rules engine.Rules) (*engine.Simulation, error) {
	idStr, err := db.GetMeta("world_id")
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSave
	}
	if err != nil {
		return nil, fmt.Errorf("load meta: %w", err)
	}

	sim := engine.NewSimulation(gen, rules)
	if sim.ID, err = uuid.Parse(idStr); err != nil {
		return nil, fmt.Errorf("parse world id: %w", err)
	}
	seed, _, err := db.SavedSeed()
	if err != nil {
		return nil, err
	}
	sim.Seed = seed
	turnStr, err := db.GetMeta("turn")
	if err != nil {
		return nil, fmt.Errorf("load turn: %w", err)
	}
	if sim.Turn, err = strconv.ParseUint(turnStr, 10, 64); err != nil {
		return nil, fmt.Errorf("parse turn: %w", err)
	}
	resJSON, err := db.GetMeta("resources")
	if err != nil {
		return nil, fmt.Errorf("load resources: %w", err)
	}
	if err := json.Unmarshal([]byte(resJSON), &sim.Resources); err != nil {
		return nil, fmt.Errorf("parse resources: %w", err)
	}

	var chunks []chunkRow
	if err := db.conn.Select(&chunks, "SELECT cx, cy, cells FROM chunks"); err != nil {
		return nil, fmt.Errorf("load chunks: %w", err)
	}
	for _, row := range chunks {
		key := hexgrid.Pos{X: row.CX, Y: row.CY}
		c, err := decodeChunk(key, row.Cells)
		if err != nil {
			return nil, fmt.Errorf("chunk %s: %w", key, err)
		}
		if err := sim.Cells.PutChunk(c); err != nil {
			return nil, err
		}
	}

	var nodes []string
	if err := db.conn.Select(&nodes, "SELECT node_json FROM logistics"); err != nil {
		return nil, fmt.Errorf("load logistics: %w", err)
	}
	for _, raw := range nodes {
		var v nodeV1
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			return nil, fmt.Errorf("parse node: %w", err)
		}
		sim.Network.Restore(v.Pos, decodeNode(v))
	}

	var schedule []scheduleRow
	if err := db.conn.Select(&schedule, "SELECT variant, seq, x, y FROM schedule ORDER BY variant, seq"); err != nil {
		return nil, fmt.Errorf("load schedule: %w", err)
	}
	for _, row := range schedule {
		v, ok := cell.ParseVariant(row.Variant)
		if !ok {
			return nil, fmt.Errorf("schedule: unknown variant %q", row.Variant)
		}
		sim.Machine.Insert(v, hexgrid.Pos{X: row.X, Y: row.Y})
	}

	slog.Info("world state loaded",
		"id", sim.ID,
		"turn", sim.Turn,
		"chunks", len(chunks),
		"nodes", len(nodes),
		"scheduled", len(schedule),
	)
	return sim, nil
}
