// Package server wires configuration, storage, mail, object storage and the
// REST API into a runnable application with graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/hisabkitab/internal/logging"
	"github.com/dmitrijs2005/hisabkitab/internal/server/auth"
	"github.com/dmitrijs2005/hisabkitab/internal/server/config"
	"github.com/dmitrijs2005/hisabkitab/internal/server/httpapi"
	"github.com/dmitrijs2005/hisabkitab/internal/server/mailer"
	"github.com/dmitrijs2005/hisabkitab/internal/server/metrics"
	"github.com/dmitrijs2005/hisabkitab/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/hisabkitab/internal/server/services"
)

// seams for tests
var (
	openDB     = repomanager.OpenPostgres
	newManager = repomanager.NewPostgresRepositoryManager
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	server *httpapi.Server
}

func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	db, err := openDB(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	m := newManager()
	if err := m.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	mt := metrics.New()
	sessions := auth.NewSessions(c.SecretKey, c.SessionValidityDuration)
	issuer := services.NewOTPIssuer(mailer.NewSMTPSender(c), c.OTPValidityDuration, logger, mt)
	changelog := services.NewChangeLogRecorder(db, m, logger, mt)

	svc := httpapi.Services{
		Users:           services.NewUserService(db, m, sessions, issuer, logger),
		PasswordReset:   services.NewPasswordResetService(db, m, issuer, logger),
		ProfileImages:   services.NewProfileImageService(db, m, c, logger),
		Transactions:    services.NewTransactionService(db, m, changelog),
		TransactionLogs: services.NewTransactionLogService(db, m),
		Expenses:        services.NewExpenseService(db, m),
		Friends:         services.NewFriendService(db, m),
	}

	return &App{
		config: c,
		logger: logger,
		db:     db,
		server: httpapi.NewServer(c, logger, mt, svc),
	}, nil
}

// NewDefaultApp logs JSON to stdout at info level.
func NewDefaultApp(ctx context.Context, c *config.Config) (*App, error) {
	return NewApp(ctx, c, logging.NewJSONLogger(os.Stdout, slog.LevelInfo))
}

func (app *App) Handler() http.Handler {
	return app.server.Handler()
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
	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run blocks until ctx is cancelled or a shutdown signal arrives.
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
		app.logger.Error(ctx, "closing db", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
