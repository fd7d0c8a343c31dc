// Package app initializes and runs the main application service.
// It configures logging, storage, authentication, and routing,
// and handles graceful shutdown.
package app

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dkhodos/postshare/internal/auth"
	"github.com/dkhodos/postshare/internal/config"
	"github.com/dkhodos/postshare/internal/db/memorystorage"
	"github.com/dkhodos/postshare/internal/db/mongodb"
	"github.com/dkhodos/postshare/internal/db/storage"
	"github.com/dkhodos/postshare/internal/filestorage"
	"github.com/dkhodos/postshare/internal/graphql"
	"github.com/dkhodos/postshare/internal/imagecleaner"
	"github.com/dkhodos/postshare/internal/logger"
	"github.com/dkhodos/postshare/internal/resolver"
	"github.com/dkhodos/postshare/internal/router"
	"github.com/dkhodos/postshare/internal/token"
	"github.com/dkhodos/postshare/internal/upload"
)

// App encapsulates the configuration, HTTP handler, storage backend and
// the background image cleaner needed to run the service.
type App struct {
	cfg         *config.Config
	db          storage.Storage
	cleaner     *imagecleaner.Cleaner
	stopCleaner context.CancelFunc
	httpHandler http.Handler
}

// New initializes a new instance of App by:
// - loading configuration
// - initializing logger
// - connecting to the storage backend (fatal on failure)
// - setting up file storage and the background image cleaner
// - setting up the router and middleware
func New() (*App, error) {
	var err error
	app := &App{}

	app.cfg, err = config.New()
	if err != nil {
		return nil, err
	}

	err = logger.Init(app.cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	app.db, err = getStorageByConfig(app.cfg)
	if err != nil {
		return nil, err
	}

	tokenSigningSecretKey, err := base64.URLEncoding.DecodeString(app.cfg.TokenSigningSecretKey)
	if err != nil {
		return nil, err
	}

	files, err := filestorage.New(app.cfg.ImagesDir)
	if err != nil {
		return nil, err
	}

	app.cleaner = imagecleaner.New(
		files,
		app.cfg.CleanerQueueCapacity,
		app.cfg.CleanerFlushInterval,
	)
	cleanerRunCtx, stopCleaner := context.WithCancel(context.Background())
	app.stopCleaner = stopCleaner

	app.cleaner.Run(cleanerRunCtx)
	app.cleaner.ListenErrors(func(err error) {
		logger.Log.Debugln("image cleaner error:", err)
	})

	tokens := token.New(tokenSigningSecretKey, app.cfg.TokenTTL)

	app.httpHandler = router.New(
		graphql.New(resolver.New(app.db, tokens, app.cleaner)),
		upload.New(files, app.cleaner),
		auth.New(tokens),
		app.cfg.ImagesDir,
	)

	return app, nil
}

// Run starts the HTTP server with graceful shutdown support.
// It listens for system signals and cleans up resources upon termination.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Log.Infoln("server running", "RunAddr", a.cfg.RunAddr)

	server := &http.Server{
		Addr:    a.cfg.RunAddr,
		Handler: a.httpHandler,
	}

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Log.Infoln("Received shutdown signal. Flushing the image cleaner and exiting...")
		a.stopCleaner()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}

		return a.db.Close()

	case err := <-serverErrCh:
		return fmt.Errorf("server error: %w", err)
	}
}

// Close finalizes resources used by App such as logging.
func (a *App) Close() {
	if err := logger.Sync(); err != nil {
		fmt.Println("Logger sync error:", err)
	}
}

// getStorageByConfig connects to MongoDB when a DSN is configured and
// falls back to the in-memory storage otherwise (local runs and tests).
func getStorageByConfig(cfg *config.Config) (storage.Storage, error) {
	if cfg.MongoDSN != "" {
		return mongodb.New(
			context.Background(),
			cfg.MongoDSN,
			cfg.MongoDBName,
			cfg.DBConnectionTimeout,
		)
	}

	return memorystorage.New()
}
