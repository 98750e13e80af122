// Package server initializes and runs the file storage server.
// It opens and migrates the metadata database, prepares the storage root,
// handles graceful shutdown and starts the HTTP API.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/cloudstore/internal/logging"
	"github.com/dmitrijs2005/cloudstore/internal/server/config"
	"github.com/dmitrijs2005/cloudstore/internal/server/httpapi"
	"github.com/dmitrijs2005/cloudstore/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/cloudstore/internal/server/sandbox"
	"github.com/dmitrijs2005/cloudstore/internal/server/services"
	"github.com/spf13/afero"
)

type App struct {
	config         *config.Config
	logger         logging.Logger
	db             *sql.DB
	userService    *services.UserService
	storageService *services.StorageService
}

// NewApp connects to the database, applies migrations and wires the
// services on top of the local filesystem.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger, err := logging.New(c.LogBackend, c.LogLevel, os.Stdout)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	db, rm, err := repomanager.Open(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	fsys := afero.NewOsFs()
	sb, err := sandbox.New(fsys, c.StorageRoot)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	identity := services.NewIdentityService(db, rm, c)
	us := services.NewUserService(db, rm, identity, c, logger)
	ss := services.NewStorageService(db, rm, identity, fsys, sb, c, logger)

	logger.Info(ctx, "storage ready", "root", sb.Root())

	return &App{config: c, logger: logger, db: db, userService: us, storageService: ss}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s := httpapi.NewServer(app.config.HTTPAddr, app.logger, app.userService, app.storageService, app.config.MaxFileSize)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until a termination signal arrives or ctx is cancelled, then
// closes the database.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
