package main

import (
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/pefman/gesture-duel/internal/api"
	"github.com/pefman/gesture-duel/internal/config"
	"github.com/pefman/gesture-duel/internal/game"
	"github.com/pefman/gesture-duel/internal/roster"
	"github.com/pefman/gesture-duel/internal/stats"
	"github.com/pefman/gesture-duel/internal/storage"
)

// Build metadata injected via -ldflags at build time
var (
	buildVersion = "dev"
	buildTime    = ""
)

func openStore(cfg config.Config) (stats.Store, error) {
	switch cfg.Store {
	case config.StoreFile:
		return storage.NewFileStore(cfg.StorePath)
	case config.StoreSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.StorePath), 0o755); err != nil {
			return nil, err
		}
		return storage.OpenSQLite(cfg.StorePath)
	default:
		return stats.NewMemoryStore(), nil
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	r, err := roster.Load(cfg.RosterFile)
	if err != nil {
		log.Fatalf("roster: %v", err)
	}
	store, err := openStore(cfg)
	if err != nil {
		log.Fatalf("load store: %v", err)
	}
	daily := stats.NewDaily(time.Now)

	srv := &api.Server{
		Roster:            r,
		Store:             store,
		Daily:             daily,
		Recorder:          stats.NewRecorder(store, daily),
		Clock:             roster.RealClock{},
		Pacing:            game.DefaultPacing.Scale(cfg.Pace),
		RequirePeripheral: cfg.RequirePeripheral,
		StaticDir:         cfg.StaticDir,
		Version:           buildVersion,
		BuildTime:         buildTime,
	}

	log.Printf("gesture duel listening on %s (store=%s path=%q pace=%v peripheral=%v)",
		cfg.ListenAddr, cfg.Store, cfg.StorePath, cfg.Pace, cfg.RequirePeripheral)
	log.Fatal(http.ListenAndServe(cfg.ListenAddr, srv.Routes()))
}
