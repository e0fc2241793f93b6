package main

import (
	"log"
	"log/slog"
	nethttp "net/http"
	"os"
	"path/filepath"
	"strings"

	"campaignsmith/internal/config"
	"campaignsmith/internal/http"
	"campaignsmith/internal/service"
	"campaignsmith/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	opts := &slog.HandlerOptions{Level: parseLogLevel(cfg.LogLevel)}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))

	registry, err := storage.OpenRegistry(filepath.Join(cfg.ProjectsRoot, storage.RegistryFilename))
	if err != nil {
		log.Fatalf("Failed to open project registry: %v", err)
	}
	defer func() {
		_ = registry.Close()
	}()
	slog.Info("Registry initialized", "projects_root", cfg.ProjectsRoot)

	locator := storage.NewScanLocator(registry)
	limits := service.Limits{
		MaxMapImageBytes: cfg.MaxMapImageBytes,
		MaxPhotoBytes:    cfg.MaxPhotoBytes,
		MaxNoteBytes:     cfg.MaxNoteBytes,
	}

	router := http.NewRouter(&http.Deps{
		Registry:      registry,
		Projects:      service.NewProjectService(registry, cfg.ProjectsRoot),
		Maps:          service.NewMapService(registry, locator, limits),
		Markers:       service.NewMarkerService(locator, limits),
		Notes:         service.NewNoteService(registry, locator, limits),
		Characters:    service.NewCharacterService(registry, locator, limits),
		Relationships: service.NewRelationshipService(registry, locator),
		Limits:        limits,
	})

	addr := ":" + cfg.APIPort
	slog.Info("Starting server", "addr", addr)
	if err := nethttp.ListenAndServe(addr, router); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
