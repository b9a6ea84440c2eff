package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Store kinds.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreSQLite = "sqlite"
)

// Config holds runtime settings. Defaults can be overridden by a YAML file
// (CONFIG_FILE) and then by environment variables:
//
//	PORT / GAME_PORT    listen port (default: 8081)
//	STORE               memory | file | sqlite (default: memory)
//	STORE_PATH          history file or sqlite database path
//	ROSTER_FILE         roster YAML replacing the embedded default
//	REQUIRE_PERIPHERAL  refuse new games until a gesture device reports in
//	PACE                delay multiplier for battle events (default: 1)
//	STATIC_DIR          directory served at / (default: public)
type Config struct {
	ListenAddr        string  `yaml:"listen_addr"`
	Store             string  `yaml:"store"`
	StorePath         string  `yaml:"store_path"`
	RosterFile        string  `yaml:"roster_file"`
	RequirePeripheral bool    `yaml:"require_peripheral"`
	Pace              float64 `yaml:"pace"`
	StaticDir         string  `yaml:"static_dir"`
}

func Defaults() Config {
	return Config{
		ListenAddr: ":8081",
		Store:      StoreMemory,
		Pace:       1,
		StaticDir:  "public",
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// Load builds the configuration from defaults, the optional file and the environment.
func Load() (Config, error) {
	cfg := Defaults()
	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	p := os.Getenv("PORT")
	if p == "" {
		p = os.Getenv("GAME_PORT")
	}
	if p != "" {
		cfg.ListenAddr = ":" + p
	}
	cfg.Store = strings.ToLower(getenv("STORE", cfg.Store))
	cfg.StorePath = getenv("STORE_PATH", cfg.StorePath)
	cfg.RosterFile = getenv("ROSTER_FILE", cfg.RosterFile)
	cfg.StaticDir = getenv("STATIC_DIR", cfg.StaticDir)
	if v := os.Getenv("REQUIRE_PERIPHERAL"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, fmt.Errorf("REQUIRE_PERIPHERAL: %w", err)
		}
		cfg.RequirePeripheral = b
	}
	if v := os.Getenv("PACE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return cfg, fmt.Errorf("PACE: %w", err)
		}
		cfg.Pace = f
	}
	return cfg, cfg.validate()
}

func (c *Config) validate() error {
	switch c.Store {
	case StoreMemory:
	case StoreFile, StoreSQLite:
		if strings.TrimSpace(c.StorePath) == "" {
			if c.Store == StoreFile {
				c.StorePath = "data/history.json"
			} else {
				c.StorePath = "data/history.db"
			}
		}
	default:
		return fmt.Errorf("unknown STORE %q (want memory, file or sqlite)", c.Store)
	}
	if c.Pace < 0 {
		return fmt.Errorf("PACE must not be negative, got %v", c.Pace)
	}
	return nil
}
