package repository

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"writersuite/internal/config"
	"writersuite/internal/repository/fsstore"
	"writersuite/internal/repository/memory"
)

func TestOpenHostStore(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		store, err := OpenHostStore(ctx, &config.Config{StoreBackend: config.BackendMemory}, Options{}, logger)
		if err != nil {
			t.Fatalf("OpenHostStore() error = %v", err)
		}
		defer store.Close()
		if _, ok := store.(*memory.Store); !ok {
			t.Errorf("store = %T, want *memory.Store", store)
		}
	})

	t.Run("fs with watch", func(t *testing.T) {
		cfg := &config.Config{StoreBackend: config.BackendFS, VaultRoot: t.TempDir()}
		store, err := OpenHostStore(ctx, cfg, Options{Watch: true}, logger)
		if err != nil {
			t.Fatalf("OpenHostStore() error = %v", err)
		}
		defer store.Close()
		if _, ok := store.(*fsstore.Store); !ok {
			t.Errorf("store = %T, want *fsstore.Store", store)
		}
	})

	t.Run("unknown backend", func(t *testing.T) {
		if _, err := OpenHostStore(ctx, &config.Config{StoreBackend: "s3"}, Options{}, logger); err == nil {
			t.Error("OpenHostStore(s3) error = nil, want error")
		}
	})
}
