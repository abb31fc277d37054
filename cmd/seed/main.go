package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"writersuite/internal/config"
	models "writersuite/internal/domain/models/workspace"
	"writersuite/internal/repository"
	"writersuite/internal/repository/postgres"
	"writersuite/internal/seed"
	"writersuite/internal/service/workspace"
)

func main() {
	// Parse command-line flags
	dropTables := flag.Bool("drop-tables", false, "Drop the workspace tables before seeding (postgres backend only)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up the schema, don't seed the sample workspace")
	flag.Parse()

	// Load .env file
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && *dropTables {
		log.Fatalf("🚫 BLOCKED: Cannot run destructive operations (--drop-tables) in production environment")
	}
	if *dropTables && cfg.StoreBackend != config.BackendPostgres {
		log.Fatalf("--drop-tables requires STORE_BACKEND=%s, got %s", config.BackendPostgres, cfg.StoreBackend)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	ctx := context.Background()

	if *dropTables {
		log.Printf("🗑️  Dropping workspace tables (prefix: %s)...", cfg.TablePrefix)
		pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		err = postgres.DropSchema(ctx, pool, postgres.NewTableNames(cfg.TablePrefix))
		pool.Close()
		if err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		log.Println("✅ Tables dropped")
	}

	// Opening the store ensures the schema for the postgres backend
	store, err := repository.OpenHostStore(ctx, cfg, repository.Options{}, logger)
	if err != nil {
		log.Fatalf("Failed to open host store: %v", err)
	}
	defer store.Close()

	if *schemaOnly {
		log.Println("✅ Schema setup complete (schema-only mode)")
		return
	}

	log.Printf("🌱 Seeding workspace (environment: %s, backend: %s)", cfg.Environment, cfg.StoreBackend)

	layout := models.DefaultLayout()
	settings := workspace.NewSettingsService(models.Settings{
		CountPunctuation: cfg.CountPunctuation,
		BooksPerRow:      cfg.BooksPerRow,
	}, logger)
	tree := workspace.NewTreeAggregator(store, settings, cfg.Locale(), cfg.MaxTreeDepth, logger)
	books := workspace.NewBookService(store, store, layout, logger)
	inspirations := workspace.NewInspirationService(store, store, tree, layout, logger)

	res, err := seed.NewWorkspaceSeeder(books, inspirations, store, layout, logger).Seed(ctx)
	if err != nil {
		log.Fatalf("Failed to seed workspace: %v", err)
	}

	log.Printf("✅ Seeded %d books, %d chapters, %d setting documents, %d inspirations",
		res.Books, res.Chapters, res.Settings, res.Inspirations)
}
