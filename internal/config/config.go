// Package config loads server settings from a YAML file with environment
// overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/talgya/hexworks/internal/engine"
	"github.com/talgya/hexworks/internal/world"
)

// Config is the full server configuration.
type Config struct {
	DBPath       string        `yaml:"db_path"`
	Port         int           `yaml:"port"`
	AdminKey     string        `yaml:"admin_key"`
	TurnInterval time.Duration `yaml:"turn_interval"` // Autoplay interval (0 = paused)
	SaveEvery    uint64        `yaml:"save_every"`    // Turns between autosaves (0 = never)
	AssetCache   int           `yaml:"asset_cache"`   // Rendered assets kept in memory
	AssetQueue   int           `yaml:"asset_queue"`   // Outstanding render requests

	ReadsPerMinute    int `yaml:"reads_per_minute"`    // Per client, public GET endpoints (0 = default)
	CommandsPerMinute int `yaml:"commands_per_minute"` // Per client, build and end-turn (0 = default)

	Rules engine.Rules    `yaml:"rules"`
	World world.GenConfig `yaml:"world"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		DBPath:       "data/hexworks.db",
		Port:         8080,
		TurnInterval: 0,
		SaveEvery:    10,
		AssetCache:   1024,
		AssetQueue:   256,
		Rules:        engine.DefaultRules(),
		World:        world.DefaultGenConfig(),
	}
}

// Load reads path over the defaults, then applies environment overrides.
// An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.DBPath = envOrDefault("HEXWORKS_DB", cfg.DBPath)
	cfg.Port = envIntOrDefault("HEXWORKS_PORT", cfg.Port)
	cfg.AdminKey = envOrDefault("HEXWORKS_ADMIN_KEY", cfg.AdminKey)
	if v := os.Getenv("HEXWORKS_SEED"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return cfg, fmt.Errorf("HEXWORKS_SEED: %w", err)
		}
		cfg.World.Seed = seed
	}

	return cfg, cfg.Validate()
}

// Validate rejects settings the server cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.DBPath == "" {
		errs = append(errs, errors.New("db_path is empty"))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if c.TurnInterval < 0 {
		errs = append(errs, fmt.Errorf("turn_interval %s is negative", c.TurnInterval))
	}
	if c.AssetCache <= 0 {
		errs = append(errs, fmt.Errorf("asset_cache must be positive, got %d", c.AssetCache))
	}
	if c.Rules.HubBuilders <= 0 || c.Rules.HubLogistics <= 0 || c.Rules.HubBuildTime <= 0 {
		errs = append(errs, errors.New("hub capacities must be positive"))
	}
	for _, cycle := range []struct {
		name  string
		turns int
	}{
		{"hot_cycle", c.Rules.HotCycle},
		{"woodcutter_cycle", c.Rules.WoodCutterCycle},
		{"woodfarm_cycle", c.Rules.WoodFarmCycle},
	} {
		if cycle.turns < 1 {
			errs = append(errs, fmt.Errorf("%s must be at least 1, got %d", cycle.name, cycle.turns))
		}
	}
	if c.Rules.WoodYield < 0 || c.Rules.SellPrice < 0 {
		errs = append(errs, errors.New("wood_yield and sell_price must not be negative"))
	}
	if c.ReadsPerMinute < 0 || c.CommandsPerMinute < 0 {
		errs = append(errs, errors.New("rate limits must not be negative"))
	}
	if c.World.WoodScale < 0 || c.World.Octaves <= 0 {
		errs = append(errs, errors.New("world: octaves must be positive and wood_scale non-negative"))
	}
	return errors.Join(errs...)
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envIntOrDefault(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}
