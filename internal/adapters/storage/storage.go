// Package storage selects the preferences backend from configuration.
package storage

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/PabloGalante/mindweave/internal/adapters/storage/file"
	"github.com/PabloGalante/mindweave/internal/adapters/storage/firestore"
	"github.com/PabloGalante/mindweave/internal/adapters/storage/memory"
	"github.com/PabloGalante/mindweave/internal/adapters/storage/redis"
	"github.com/PabloGalante/mindweave/internal/adapters/storage/sqlite"
	"github.com/PabloGalante/mindweave/internal/config"
	"github.com/PabloGalante/mindweave/internal/domain"
)

// OpenKV builds the KVStore named by cfg.Storage.Backend. The returned close
// func is never nil.
func OpenKV(ctx context.Context, cfg *config.Config) (domain.KVStore, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Storage.Backend {
	case "", "memory":
		return memory.NewKVStore(), noop, nil

	case "file":
		return file.NewOSKVStore(cfg.Storage.Path), noop, nil

	case "sqlite":
		s, err := sqlite.Open(filepath.Join(cfg.Storage.Path, "mindweave.db"))
		if err != nil {
			return nil, noop, err
		}
		return s, s.Close, nil

	case "redis":
		s, err := redis.NewKVStore(cfg.Storage.RedisURL)
		if err != nil {
			return nil, noop, err
		}
		return s, s.Close, nil

	case "firestore":
		s, err := firestore.NewStore(ctx, cfg.GCP.ProjectID)
		if err != nil {
			return nil, noop, err
		}
		return s, s.Close, nil

	default:
		return nil, noop, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}
