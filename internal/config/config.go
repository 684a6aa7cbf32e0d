// Package config loads ambient configuration for the kvs binaries from a
// YAML document, optionally layered with a .env file, falling back to
// zero-config defaults when no file is present.
package config

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// Config holds the values every kvs binary needs to construct a store and,
// where relevant, a listener.
type Config struct {
	DataDir             string `yaml:"data_dir"`
	Addr                string `yaml:"addr"`
	Engine              string `yaml:"engine"`
	CompactionThreshold uint64 `yaml:"compaction_threshold"`
	BatchSize           uint32 `yaml:"batch_size"`
	SyncInterval        uint32 `yaml:"sync_interval"`
}

// Default returns the built-in zero-config defaults.
func Default() Config {
	return Config{
		DataDir:             ".",
		Addr:                "127.0.0.1:4000",
		Engine:              "kvs",
		CompactionThreshold: 5000,
		BatchSize:           4096,
		SyncInterval:        5,
	}
}

// Load reads an optional .env file and the YAML document at path, expanding
// $VAR / ${VAR} references via os.ExpandEnv, and fills any zero-valued
// field with its default. A missing file at path is not an error: Load
// returns the defaults instead.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("config: no .env file found or error loading it", "error", err)
	} else {
		slog.Debug("config: .env file loaded")
	}

	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Debug("config: no config file found, using defaults", "path", path)
			return &cfg, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var loaded Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &loaded); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	applyOverride(&cfg.DataDir, loaded.DataDir)
	applyOverride(&cfg.Addr, loaded.Addr)
	applyOverride(&cfg.Engine, loaded.Engine)
	if loaded.CompactionThreshold != 0 {
		cfg.CompactionThreshold = loaded.CompactionThreshold
	}
	if loaded.BatchSize != 0 {
		cfg.BatchSize = loaded.BatchSize
	}
	if loaded.SyncInterval != 0 {
		cfg.SyncInterval = loaded.SyncInterval
	}

	return &cfg, nil
}

func applyOverride(dst *string, loaded string) {
	if loaded != "" {
		*dst = loaded
	}
}
