package database

import (
	"context"
	"fmt"

	"github.com/nfrund/rollcall/internal/config"
	"github.com/nfrund/rollcall/internal/domain"
)

// NewRepository builds the student repository selected by STORAGE_BACKEND.
// The returned closer is a no-op for the in-memory backend.
func NewRepository(ctx context.Context, cfg *config.Config) (domain.StudentRepository, func() error, error) {
	switch cfg.StorageBackend {
	case "memory":
		store := NewMemoryStore()
		if _, err := Seed(ctx, store); err != nil {
			return nil, nil, fmt.Errorf("seed memory store: %w", err)
		}
		return store, func() error { return nil }, nil

	case "postgres":
		store, err := NewPostgresStore(cfg.PostgresURL)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil

	case "surreal":
		db, err := NewSurrealDB(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		store := NewSurrealStore(db)
		return store, func() error { return db.Close(context.Background()) }, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
