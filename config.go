package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"arena-server/game"
)

// Config is everything the server needs at startup
type Config struct {
	Addr      string
	ClientDir string
	DBPath    string
	PublicURL string

	AdminPassword     string
	AdminPasswordHash string

	Seed int64
	Game game.Config
}

// LoadEnvFile reads KEY=VALUE pairs from path into the process environment.
// A missing file is not an error; variables already set are kept.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	log.Printf("loaded environment from %s", path)
	return nil
}

// ApplyEnv overrides base with ARENA_* tuning and the admin/public settings
// found through getenv. Unset variables leave base untouched.
func ApplyEnv(base Config, getenv func(string) string) (Config, error) {
	cfg := base
	e := envReader{getenv: getenv}

	e.float("ARENA_WORLD_WIDTH", &cfg.Game.WorldWidth)
	e.float("ARENA_WORLD_HEIGHT", &cfg.Game.WorldHeight)
	e.int("ARENA_TICK_RATE", &cfg.Game.TickRate)
	e.int("ARENA_MAX_PLAYERS", &cfg.Game.MaxActors)
	e.int("ARENA_LIVES", &cfg.Game.InitialLives)
	e.int("ARENA_LARGE_OBSTACLES", &cfg.Game.LargeObstacleCount)
	e.float("ARENA_BONUS_CHANCE", &cfg.Game.BonusSpawnChance)
	e.float("ARENA_EJECT_CHANCE", &cfg.Game.EjectBonusChance)
	e.int64("ARENA_SEED", &cfg.Seed)

	if v := getenv("ARENA_BONUS_WEIGHTS"); v != "" {
		w, err := ParseBonusWeights(v)
		if err != nil {
			e.fail("ARENA_BONUS_WEIGHTS", err)
		} else {
			cfg.Game.BonusWeights = w
		}
	}

	if v := getenv("PORT"); v != "" {
		cfg.Addr = ":" + v
	}
	if v := getenv("ADMIN_PASSWORD"); v != "" {
		cfg.AdminPassword = v
	}
	if v := getenv("ADMIN_PASSWORD_HASH"); v != "" {
		cfg.AdminPasswordHash = v
	}
	if v := getenv("PUBLIC_URL"); v != "" {
		cfg.PublicURL = strings.TrimRight(v, "/")
	}

	if e.err != nil {
		return base, e.err
	}
	if err := cfg.Game.Validate(); err != nil {
		return base, fmt.Errorf("game config: %w", err)
	}
	return cfg, nil
}

// DefaultServerConfig returns the stock server settings with a time-based seed
func DefaultServerConfig() Config {
	return Config{
		Addr:   ":3000",
		DBPath: "arena.db",
		Seed:   time.Now().UnixNano(),
		Game:   game.DefaultConfig(),
	}
}

// ParseBonusWeights parses "A,B,C,D" weights, lowest-value variant first
func ParseBonusWeights(s string) (map[game.Variant]int, error) {
	parts := strings.Split(s, ",")
	if len(parts) != len(game.Variants) {
		return nil, fmt.Errorf("expected %d weights, got %d", len(game.Variants), len(parts))
	}
	w := make(map[game.Variant]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("weight %d: %w", i+1, err)
		}
		if n < 0 {
			return nil, fmt.Errorf("weight %d is negative", i+1)
		}
		w[game.Variants[i]] = n
	}
	return w, nil
}

// envReader collects the first parse error so ApplyEnv can report it
type envReader struct {
	getenv func(string) string
	err    error
}

func (e *envReader) fail(key string, err error) {
	if e.err == nil {
		e.err = fmt.Errorf("%s: %w", key, err)
	}
}

func (e *envReader) float(key string, dst *float64) {
	v := e.getenv(key)
	if v == "" {
		return
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		e.fail(key, err)
		return
	}
	*dst = f
}

func (e *envReader) int(key string, dst *int) {
	v := e.getenv(key)
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.fail(key, err)
		return
	}
	*dst = n
}

func (e *envReader) int64(key string, dst *int64) {
	v := e.getenv(key)
	if v == "" {
		return
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		e.fail(key, err)
		return
	}
	*dst = n
}
