// Package infrastructure assembles the systems every actigraphy entry point
// needs before any domain code runs.
package infrastructure

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/JaimeStill/actigraphy/internal/config"
	"github.com/JaimeStill/actigraphy/pkg/database"
	"github.com/JaimeStill/actigraphy/pkg/lifecycle"
	"github.com/JaimeStill/actigraphy/pkg/storage"
)

// Infrastructure is shared by the server and the ingest CLI.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Database  database.System
	Storage   storage.System
}

// New builds every system from cfg without connecting anything. Database
// pings and container checks happen once Start registers their hooks.
func New(cfg *config.Config) (*Infrastructure, error) {
	logger := NewLogger(os.Stderr, &cfg.App)

	db, err := database.New(&cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}

	store, err := storage.New(&cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("storage init failed: %w", err)
	}

	return &Infrastructure{
		Lifecycle: lifecycle.New(),
		Logger:    logger,
		Database:  db,
		Storage:   store,
	}, nil
}

// NewLogger writes to w in the configured format and level, tagging every
// record with the application name.
func NewLogger(w io.Writer, cfg *config.AppConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.Level()}

	var handler slog.Handler
	if cfg.LogFormat == config.LogFormatJSON {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	logger := slog.New(handler)
	if cfg.Name != "" {
		logger = logger.With("app", cfg.Name)
	}
	return logger
}

// Start registers the database and storage hooks with the lifecycle
// coordinator, in that order.
func (i *Infrastructure) Start() error {
	systems := []struct {
		name  string
		start func(*lifecycle.Coordinator) error
	}{
		{"database", i.Database.Start},
		{"storage", i.Storage.Start},
	}

	for _, s := range systems {
		if err := s.start(i.Lifecycle); err != nil {
			return fmt.Errorf("%s start failed: %w", s.name, err)
		}
	}
	return nil
}
