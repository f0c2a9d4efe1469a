package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/talgya/hexworks/internal/cell"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hexworks.yaml")
	body := `
port: 9090
turn_interval: 250ms
rules:
  sell_price: 25
  build_times:
    Hot: 7
world:
  seed: 99
  wood_scale: 8
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 9090 || cfg.TurnInterval != 250*time.Millisecond {
		t.Fatalf("port=%d interval=%s", cfg.Port, cfg.TurnInterval)
	}
	if cfg.Rules.SellPrice != 25 || cfg.Rules.BuildTime(cell.Hot) != 7 {
		t.Fatalf("rules = %+v", cfg.Rules)
	}
	// Unlisted keys keep their defaults.
	if cfg.Rules.BuildTime(cell.Road) != 1 || cfg.Rules.HubBuilders != 3 {
		t.Fatalf("defaults lost: road=%d builders=%d", cfg.Rules.BuildTime(cell.Road), cfg.Rules.HubBuilders)
	}
	if cfg.World.Seed != 99 || cfg.World.WoodScale != 8 || cfg.World.Octaves != 4 {
		t.Fatalf("world = %+v", cfg.World)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("HEXWORKS_DB", "/tmp/other.db")
	t.Setenv("HEXWORKS_PORT", "7000")
	t.Setenv("HEXWORKS_ADMIN_KEY", "secret")
	t.Setenv("HEXWORKS_SEED", "1234")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DBPath != "/tmp/other.db" || cfg.Port != 7000 || cfg.AdminKey != "secret" || cfg.World.Seed != 1234 {
		t.Fatalf("cfg = %+v", cfg)
	}

	t.Setenv("HEXWORKS_SEED", "abc")
	if _, err := Load(""); err == nil {
		t.Fatalf("bad seed accepted")
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"port":     "port: 0\n",
		"interval": "turn_interval: -1s\n",
		"cache":    "asset_cache: 0\n",
		"hub":      "rules:\n  hub_builders: 0\n",
		"hot":      "rules:\n  hot_cycle: 0\n",
		"cutter":   "rules:\n  woodcutter_cycle: -2\n",
		"farm":     "rules:\n  woodfarm_cycle: 0\n",
		"yield":    "rules:\n  wood_yield: -1\n",
		"price":    "rules:\n  sell_price: -5\n",
		"limits":   "reads_per_minute: -1\n",
		"syntax":   "port: [\n",
	}
	for name, body := range tests {
		path := filepath.Join(t.TempDir(), name+".yaml")
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := Load(path); err == nil {
			t.Errorf("%s: Load succeeded", name)
		}
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Errorf("missing file: Load succeeded")
	}
}
