// Package repository opens the configured host store.
package repository

import (
	"context"
	"fmt"
	"log/slog"

	"writersuite/internal/config"
	repo "writersuite/internal/domain/repositories/workspace"
	"writersuite/internal/repository/fsstore"
	"writersuite/internal/repository/memory"
	"writersuite/internal/repository/postgres"
)

// Options tune OpenHostStore
type Options struct {
	// Watch subscribes to changes made outside this process: fsnotify for
	// the fs backend, LISTEN for postgres
	Watch bool
}

// OpenHostStore builds the store selected by cfg.StoreBackend.
// Closing the returned store also releases its connections.
func OpenHostStore(ctx context.Context, cfg *config.Config, opts Options, logger *slog.Logger) (repo.HostStore, error) {
	switch cfg.StoreBackend {
	case config.BackendFS:
		store, err := fsstore.NewStore(cfg.VaultRoot, logger)
		if err != nil {
			return nil, err
		}
		if opts.Watch {
			if err := store.Watch(); err != nil {
				store.Close()
				return nil, fmt.Errorf("watch vault: %w", err)
			}
		}
		logger.Info("host store opened", "backend", cfg.StoreBackend, "root", store.Root())
		return store, nil

	case config.BackendPostgres:
		pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		tables := postgres.NewTableNames(cfg.TablePrefix)
		if err := postgres.EnsureSchema(ctx, pool, tables); err != nil {
			pool.Close()
			return nil, err
		}
		store := postgres.NewStore(&postgres.RepositoryConfig{Pool: pool, Tables: tables, Logger: logger})
		if opts.Watch {
			if err := store.Listen(ctx); err != nil {
				store.Close()
				pool.Close()
				return nil, fmt.Errorf("listen for workspace events: %w", err)
			}
		}
		logger.Info("host store opened", "backend", cfg.StoreBackend, "table_prefix", cfg.TablePrefix)
		return &pooledStore{Store: store, close: pool.Close}, nil

	case config.BackendMemory:
		logger.Warn("using in-memory host store, nothing will be persisted")
		return memory.NewStore(), nil

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

// pooledStore closes the connection pool after the store
type pooledStore struct {
	*postgres.Store
	close func()
}

func (p *pooledStore) Close() error {
	err := p.Store.Close()
	p.close()
	return err
}
