package storage

import (
	"fmt"

	"github.com/rescuesim/collapse/internal/config"
	"github.com/rescuesim/collapse/internal/database"
	"github.com/rescuesim/collapse/internal/model/convert"
	"github.com/rescuesim/collapse/internal/storage/gormstore"
	"github.com/rescuesim/collapse/internal/storage/memory"
	"github.com/rs/zerolog"
)

// Options carries what the database backends need besides their settings.
type Options struct {
	DB     config.DBConfig
	Georef convert.Georeferencer
	Logger zerolog.Logger
}

// NewBackend creates a storage backend based on configuration
func NewBackend(cfg config.StorageConfig, opts Options) (Backend, error) {
	switch cfg.Type {
	case "postgres":
		db, err := database.GetPostgresDB(opts.DB, opts.Logger)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		return gormstore.New(gormstore.Dependencies{
			DB:     db,
			Georef: opts.Georef,
			Logger: opts.Logger,
		}), nil
	case "sqlite":
		// rows live in memory during the run and are vacuumed to disk at its end
		db, err := database.GetSqliteDB("", opts.Logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite: %w", err)
		}
		return gormstore.New(gormstore.Dependencies{
			DB:       db,
			Georef:   opts.Georef,
			Logger:   opts.Logger,
			DumpPath: cfg.SQLite.Path,
		}), nil
	case "memory", "":
		return memory.New(cfg.Memory), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
