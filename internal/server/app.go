// Package server initializes and runs the YaMDB API: it opens storage,
// applies migrations, selects the code cache backend and runs the HTTP and
// gRPC servers until a shutdown signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/yamdb/internal/dbx"
	"github.com/dmitrijs2005/yamdb/internal/logging"
	"github.com/dmitrijs2005/yamdb/internal/server/auth"
	"github.com/dmitrijs2005/yamdb/internal/server/codecache"
	"github.com/dmitrijs2005/yamdb/internal/server/config"
	"github.com/dmitrijs2005/yamdb/internal/server/httpapi"
	"github.com/dmitrijs2005/yamdb/internal/server/mailer"
	"github.com/dmitrijs2005/yamdb/internal/server/permissions"
	"github.com/dmitrijs2005/yamdb/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/yamdb/internal/server/services"

	gs "github.com/dmitrijs2005/yamdb/internal/server/grpc"
)

// cacheMaintenanceInterval is how often expired codes are dropped.
const cacheMaintenanceInterval = time.Minute

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	cache       codecache.Cache
	closers     []io.Closer
	httpServer  *httpapi.Server
	grpcServer  *gs.GRPCServer
}

// OpenStorage returns the database handle and repository manager selected
// by dsn. dbx.MemoryDSN keeps everything in process memory.
func OpenStorage(ctx context.Context, dsn string) (*sql.DB, repomanager.RepositoryManager, error) {
	if dsn == dbx.MemoryDSN {
		db, err := dbx.OpenMemory(ctx)
		if err != nil {
			return nil, nil, err
		}
		return db, repomanager.NewInMemoryRepositoryManager(nil), nil
	}

	db, err := dbx.Open(ctx, dsn)
	if err != nil {
		return nil, nil, err
	}
	return db, repomanager.NewPostgresRepositoryManager(), nil
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, slog.LevelInfo)

	db, rm, err := OpenStorage(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	app := &App{config: c, logger: logger, db: db, repomanager: rm}

	if err := app.initCodeCache(); err != nil {
		db.Close()
		return nil, err
	}

	sender, err := mailer.New(c.Mail(), logger)
	if err != nil {
		app.close()
		return nil, fmt.Errorf("mailer init error: %w", err)
	}

	issuer, err := auth.NewIssuer(c.SecretKey, c.AccessTokenValidityDuration)
	if err != nil {
		app.close()
		return nil, fmt.Errorf("token issuer init error: %w", err)
	}

	evaluator := permissions.NewEvaluator(nil)
	svc := httpapi.Services{
		Auth:    services.NewAuthService(db, rm, app.cache, sender, issuer, c, logger),
		Users:   services.NewUserService(db, rm),
		Catalog: services.NewCatalogService(db, rm, nil),
		Reviews: services.NewReviewService(db, rm, evaluator),
	}

	app.httpServer = httpapi.NewServer(c.EndpointAddrHTTP, logger, svc, evaluator)
	app.grpcServer = gs.NewGRPCServer(c.EndpointAddrGRPC, logger, db)
	return app, nil
}

func (app *App) initCodeCache() error {
	switch app.config.CodeCacheBackend {
	case codecache.BackendPostgres:
		app.cache = app.repomanager.CodeCache(app.db)
	case codecache.BackendLevelDB:
		l, err := codecache.OpenLevelDB(app.config.CodeCachePath, nil)
		if err != nil {
			return fmt.Errorf("code cache init error: %w", err)
		}
		app.cache = l
		app.closers = append(app.closers, l)
	default:
		app.cache = codecache.NewMemory(nil)
	}
	return nil
}

// runCacheMaintenance drops expired codes for the backends that keep them
// around until read.
func (app *App) runCacheMaintenance(ctx context.Context) {
	switch c := app.cache.(type) {
	case *codecache.Memory:
		c.RunSweeper(ctx, cacheMaintenanceInterval)
	case *codecache.Postgres:
		app.purgeEvery(ctx, func() (int64, error) { return c.PurgeExpired(ctx) })
	case *codecache.LevelDB:
		app.purgeEvery(ctx, func() (int64, error) {
			n, err := c.Sweep()
			return int64(n), err
		})
	}
}

// purgeEvery runs purge on cacheMaintenanceInterval until ctx is done.
func (app *App) purgeEvery(ctx context.Context, purge func() (int64, error)) {
	ticker := time.NewTicker(cacheMaintenanceInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := purge()
			if err != nil {
				app.logger.Warn(ctx, "purge expired codes", "error", err)
				continue
			}
			if n > 0 {
				app.logger.Debug(ctx, "purged expired codes", "count", n)
			}
		}
	}
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
	if err := app.httpServer.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.grpcServer.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) close() {
	for _, c := range app.closers {
		if err := c.Close(); err != nil {
			app.logger.Error(context.Background(), "close", "error", err)
		}
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error(context.Background(), "close db", "error", err)
	}
}

// Run blocks until ctx is cancelled or a termination signal arrives, then
// waits for the servers to stop and releases storage.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(3)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.runCacheMaintenance(ctx)
	}()

	wg.Wait()
	app.close()

	app.logger.Info(context.Background(), "App stopped")
}
