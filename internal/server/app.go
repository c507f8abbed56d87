// Package server initializes and runs the account service: it opens the
// database, applies migrations, wires the session service and the HTTP
// endpoint, and handles graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/dmitrijs2005/viewtube/internal/dbx"
	"github.com/dmitrijs2005/viewtube/internal/logging"
	"github.com/dmitrijs2005/viewtube/internal/server/auth"
	"github.com/dmitrijs2005/viewtube/internal/server/config"
	"github.com/dmitrijs2005/viewtube/internal/server/httpapi"
	"github.com/dmitrijs2005/viewtube/internal/server/migrations"
	"github.com/dmitrijs2005/viewtube/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/viewtube/internal/server/services"
	"github.com/dmitrijs2005/viewtube/internal/server/storage"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	server *httpapi.Server
}

func NewApp(cfg *config.Config) (*App, error) {

	sl := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(sl)

	db, err := openDB(cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	media, err := storage.NewS3MediaStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("media store init error: %w", err)
	}

	codec := auth.NewTokenCodec(
		[]byte(cfg.AccessTokenSecret), []byte(cfg.RefreshTokenSecret),
		cfg.AccessTokenValidityDuration, cfg.RefreshTokenValidityDuration,
	)

	repoFor := func(db dbx.DBTX) accounts.Repository {
		return accounts.NewPostgresRepository(db)
	}

	sessions := services.NewSessionService(db, repoFor, media, codec, logger)
	server := httpapi.NewServer(cfg, logger, sessions, codec)

	return &App{config: cfg, logger: logger, db: db, server: server}, nil
}

func openDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.UpContext(context.Background(), db, "."); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	return db, nil
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

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.server.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, err.Error())
	}
}
