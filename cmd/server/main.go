package main

import (
	"context"
	"errors"
	"io"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"writersuite/internal/auth"
	"writersuite/internal/config"
	models "writersuite/internal/domain/models/workspace"
	"writersuite/internal/handler"
	"writersuite/internal/handler/sse"
	"writersuite/internal/repository"
	"writersuite/internal/service/refresh"
	"writersuite/internal/service/render"
	"writersuite/internal/service/workspace"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}

	var logOutput io.Writer = os.Stdout
	if cfg.LogDir != "" {
		logFile, err := config.SetupLogFile(cfg.LogDir, cfg.LogMaxFiles)
		if err != nil {
			log.Fatalf("Failed to setup log file: %v", err)
		}
		defer logFile.Close()
		logOutput = io.MultiWriter(os.Stdout, logFile)
	}

	logger := slog.New(slog.NewJSONHandler(logOutput, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"store_backend", cfg.StoreBackend,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Bearer auth is optional for a single-writer desktop deployment
	var verifier auth.JWTVerifier
	if cfg.AuthEnabled() {
		v, err := auth.NewJWTVerifier(ctx, cfg.AuthJWKSURL, logger)
		if err != nil {
			log.Fatalf("Failed to create JWT verifier: %v", err)
		}
		defer v.Close()
		verifier = v
	} else {
		logger.Warn("AUTH_JWKS_URL not set, API is unauthenticated")
	}

	store, err := repository.OpenHostStore(ctx, cfg, repository.Options{Watch: true}, logger)
	if err != nil {
		log.Fatalf("Failed to open host store: %v", err)
	}
	defer store.Close()

	// Create services
	layout := models.DefaultLayout()
	settings := workspace.NewSettingsService(models.Settings{
		CountPunctuation: cfg.CountPunctuation,
		Name:             cfg.WriterName,
		AvatarPath:       cfg.AvatarPath,
		BooksPerRow:      cfg.BooksPerRow,
	}, logger)
	tree := workspace.NewTreeAggregator(store, settings, cfg.Locale(), cfg.MaxTreeDepth, logger)
	classifier := workspace.NewWorkClassifier(store, layout, logger)
	shelf := workspace.NewShelfService(store, tree, classifier, settings, layout, logger)
	toc := workspace.NewTOCService(store, tree, classifier, shelf, settings, layout, cfg.MaxTreeDepth, logger)
	books := workspace.NewBookService(store, store, layout, logger)
	inspirations := workspace.NewInspirationService(store, store, tree, layout, logger)
	markdown := render.NewMarkdownRenderer(render.NewHTMLSanitizer())
	tabs := workspace.NewSettingTabService(store, tree, markdown, layout, logger)

	hub := refresh.NewHub(refresh.NewRenderer(toc, shelf, inspirations, tabs, logger), layout, logger)
	settings.OnChange(hub.SettingsListener())
	go hub.Run(ctx, store.Events())

	logger.Info("services initialized")

	h := &handler.Handlers{
		Shelf:        handler.NewShelfHandler(shelf, logger),
		Books:        handler.NewBookHandler(books, toc, tabs, logger),
		Inspirations: handler.NewInspirationHandler(inspirations, logger),
		Settings:     handler.NewSettingsHandler(settings, logger),
		Views:        handler.NewViewHandler(hub, sse.DefaultConfig(), logger),
	}

	router := handler.NewRouter(h, handler.RouterConfig{
		CORSOrigins: strings.Split(cfg.CORSOrigins, ","),
		Verifier:    verifier,
		Logger:      logger,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // Disabled to allow long-lived SSE streams
		IdleTimeout:  60 * time.Second,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "port", cfg.Port)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", "error", err)
		}
	}

	logger.Info("server stopped", "open_views", hub.Len())
}
