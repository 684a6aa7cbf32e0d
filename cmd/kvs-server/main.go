// Command kvs-server listens on a TCP address and serves set/get/remove
// requests against a selectable storage engine.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net"
	"os"

	"github.com/arnavsurve/kvs/internal/boltengine"
	"github.com/arnavsurve/kvs/internal/config"
	"github.com/arnavsurve/kvs/internal/engine"
	"github.com/arnavsurve/kvs/internal/server"
)

func main() {
	slogHandler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})
	slog.SetDefault(slog.New(slogHandler))

	addrFlag := flag.String("addr", "", "listen address HOST:PORT")
	engineFlag := flag.String("engine", "", "storage engine: kvs or sled")
	configFlag := flag.String("config", "config.yml", "path to config.yml")
	flag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		slog.Error("kvs-server: failed to load configuration", "error", err)
		os.Exit(1)
	}
	if *addrFlag != "" {
		cfg.Addr = *addrFlag
	}
	if *engineFlag != "" {
		cfg.Engine = *engineFlag
	}

	if err := run(cfg); err != nil {
		slog.Error("kvs-server: fatal", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	if err := server.CheckAndLockEngine(".", cfg.Engine); err != nil {
		return fmt.Errorf("kvs-server: %w", err)
	}

	eng, err := openEngine(cfg)
	if err != nil {
		return fmt.Errorf("kvs-server: %w", err)
	}
	defer func() {
		if err := eng.Close(); err != nil {
			slog.Error("kvs-server: error closing engine", "error", err)
		}
	}()

	listener, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("kvs-server: listen %s: %w", cfg.Addr, err)
	}
	defer listener.Close()

	slog.Info("kvs-server: listening", "addr", cfg.Addr, "engine", cfg.Engine, "data_dir", cfg.DataDir)

	srv := server.New(listener, eng)
	return srv.Serve()
}

func openEngine(cfg *config.Config) (engine.Engine, error) {
	switch cfg.Engine {
	case "", "kvs":
		return engine.OpenWithThreshold(cfg.DataDir, cfg.CompactionThreshold)
	case "sled":
		return boltengine.Open(cfg.DataDir)
	default:
		return nil, fmt.Errorf("unknown engine %q", cfg.Engine)
	}
}
