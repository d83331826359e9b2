// Package server wires storage, services and transports together and runs
// the HTTP and gRPC endpoints until a shutdown signal arrives.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/gophnotes/internal/dbx"
	"github.com/dmitrijs2005/gophnotes/internal/filex"
	"github.com/dmitrijs2005/gophnotes/internal/logging"
	"github.com/dmitrijs2005/gophnotes/internal/server/cache"
	"github.com/dmitrijs2005/gophnotes/internal/server/config"
	"github.com/dmitrijs2005/gophnotes/internal/server/export"
	"github.com/dmitrijs2005/gophnotes/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophnotes/internal/server/services"
	"github.com/dmitrijs2005/gophnotes/internal/server/web"
	"github.com/redis/go-redis/v9"

	gs "github.com/dmitrijs2005/gophnotes/internal/server/grpc"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	rdb         *redis.Client
	authService *services.AuthService
	noteService *services.NoteService
	httpHandler http.Handler
}

func NewApp(c *config.Config) (*App, error) {
	logger := logging.New(os.Stdout, c.LogLevel, c.LogFormat)
	ctx := context.Background()

	rm, err := repomanager.New(c.DatabaseDriver)
	if err != nil {
		return nil, err
	}

	if c.DatabaseDriver == repomanager.DriverSQLite {
		if dir := sqliteDataDir(c.DatabaseDSN); dir != "" {
			if _, err := filex.EnsureDir(dir); err != nil {
				return nil, fmt.Errorf("data dir error: %w", err)
			}
		}
	}

	db, err := dbx.Open(ctx, c.DatabaseDriver, c.DatabaseDSN, c.DBMaxOpenConns)
	if err != nil {
		return nil, err
	}

	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	app := &App{config: c, logger: logger, db: db}

	var noteCache services.NoteCache
	if c.CacheEnabled() {
		rdb, err := cache.Connect(ctx, c.RedisURL)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		app.rdb = rdb
		noteCache = cache.NewRedisNoteCache(rdb, c.CacheTTL)
	}

	var exporter services.Exporter
	if c.ExportEnabled() {
		exporter = export.NewS3Exporter(c)
	}

	app.authService = services.NewAuthService(db, rm, c, logger)
	app.noteService = services.NewNoteService(db, rm, noteCache, exporter, logger)

	store := web.NewCookieStore(c.SessionSecret, int(c.SessionMaxAge.Seconds()))
	h, err := web.NewHandler(app.authService, app.noteService, store, exporter != nil, logger)
	if err != nil {
		app.close()
		return nil, err
	}
	app.httpHandler = h.Routes()

	return app, nil
}

// sqliteDataDir returns the directory holding a file-backed SQLite database,
// or "" for in-memory databases and files in the working directory.
func sqliteDataDir(dsn string) string {
	path := strings.TrimPrefix(dsn, "file:")
	path, query, _ := strings.Cut(path, "?")
	if path == "" || path == ":memory:" || strings.Contains(query, "mode=memory") {
		return ""
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return ""
	}
	return dir
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	srv := &http.Server{
		Addr:              app.config.EndpointAddrHTTP,
		Handler:           app.httpHandler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ListenAndServe returns as soon as Shutdown starts; stopped closes once
	// in-flight requests have drained.
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		app.logger.Info(context.Background(), "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(shutdownCtx, "HTTP shutdown error", "error", err)
		}
	}()

	app.logger.Info(ctx, "Starting HTTP server", "address", srv.Addr)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}

	<-stopped
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.authService, app.noteService)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) close() {
	if app.rdb != nil {
		if err := app.rdb.Close(); err != nil {
			app.logger.Error(context.Background(), "redis close error", "error", err)
		}
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error(context.Background(), "db close error", "error", err)
	}
}

// Run serves until ctx is cancelled, a shutdown signal arrives or one of the
// servers fails, then releases the database and cache connections.
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

	if app.config.EndpointAddrGRPC != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.startGRPCServer(ctx, cancelFunc)
		}()
	}

	wg.Wait()
	app.close()

	app.logger.Info(context.Background(), "App stopped")
}
