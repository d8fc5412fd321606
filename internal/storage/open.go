package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

// Open returns the repository for the configured backend.
func Open(backend, dsn string) (Repository, error) {
	switch backend {
	case "memory":
		return NewMemoryRepository(), nil
	case "sqlite":
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
		repo, err := NewSQLiteRepository(dsn)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		return repo, nil
	case "postgres":
		repo, err := NewPostgresRepository(dsn)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		return repo, nil
	default:
		return nil, fmt.Errorf("storage backend: unsupported value %q", backend)
	}
}
