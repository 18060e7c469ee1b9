// Package server wires configuration, storage and services together and runs
// the HTTP API until the process is asked to stop.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/companyhub/internal/logging"
	"github.com/dmitrijs2005/companyhub/internal/server/config"
	"github.com/dmitrijs2005/companyhub/internal/server/httpapi"
	"github.com/dmitrijs2005/companyhub/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/companyhub/internal/server/services"
	"github.com/dmitrijs2005/companyhub/internal/telemetry"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const serviceName = "companyhub"

type App struct {
	config         *config.Config
	logger         logging.Logger
	db             *sql.DB
	userService    *services.UserService
	companyService *services.CompanyService
}

// NewApp opens the database, applies pending migrations and builds the
// services. The caller owns the returned App and must call Run.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger, err := logging.New(logging.Options{
		Backend: c.LogBackend,
		Level:   c.LogLevel,
		Format:  c.LogFormat,
	})
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}
	warnInsecureDefaults(ctx, c, logger)

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	us := services.NewUserService(db, rm, c)
	cs := services.NewCompanyService(db, rm)

	return &App{config: c, logger: logger, db: db, userService: us, companyService: cs}, nil
}

// warnInsecureDefaults flags development settings left in place outside debug mode.
func warnInsecureDefaults(ctx context.Context, c *config.Config, l logging.Logger) {
	if c.UsesDefaultSecret() && !c.Debug {
		l.Warn(ctx, "JWT_SECRET is not set, tokens are signed with the built-in development secret")
	}
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
	s := httpapi.NewServer(app.config, app.logger, app.userService, app.companyService, app.db)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx is cancelled or a termination signal arrives, then
// flushes traces and closes the database.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	shutdownTracing := telemetry.Setup(ctx, telemetry.Options{
		ServiceName: serviceName,
		Endpoint:    app.config.OTLPEndpoint,
		Insecure:    app.config.OTLPInsecure,
	}, app.logger)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	sctx, cancel := context.WithTimeout(context.Background(), app.config.ShutdownTimeout)
	defer cancel()
	if err := shutdownTracing(sctx); err != nil {
		app.logger.Warn(sctx, "tracer shutdown error", "error", err)
	}
	if err := app.db.Close(); err != nil {
		app.logger.Warn(sctx, "db close error", "error", err)
	}

	app.logger.Info(sctx, "App stopped")
}
