package app

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/grindgrid/grindgrid-backend/internal/data/db"
	"github.com/grindgrid/grindgrid-backend/internal/http"
	"github.com/grindgrid/grindgrid-backend/internal/observability"
	"github.com/grindgrid/grindgrid-backend/internal/platform/logger"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Cfg      Config
	Clients  Clients
	Repos    Repos
	Services Services
	Server   *http.Server

	pg           *db.PostgresService
	otelShutdown func(context.Context) error
}

// New connects to Postgres, migrates, and wires every component from cfg.
func New(ctx context.Context, log *logger.Logger, cfg Config) (*App, error) {
	otelShutdown := observability.InitOTel(ctx, log, cfg.Otel)

	pg, err := db.NewPostgresService(cfg.Postgres, log)
	if err != nil {
		_ = otelShutdown(ctx)
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	if err := db.AutoMigrateAll(pg.DB()); err != nil {
		_ = pg.Close()
		_ = otelShutdown(ctx)
		return nil, fmt.Errorf("postgres automigrate: %w", err)
	}

	clients, err := wireClients(ctx, log, cfg)
	if err != nil {
		_ = pg.Close()
		_ = otelShutdown(ctx)
		return nil, err
	}

	a, err := Assemble(log, pg.DB(), cfg, clients)
	if err != nil {
		clients.Close()
		_ = pg.Close()
		_ = otelShutdown(ctx)
		return nil, err
	}
	a.pg = pg
	a.otelShutdown = otelShutdown
	return a, nil
}

// Assemble wires repos, services and the HTTP server over an open database
// and already constructed clients.
func Assemble(log *logger.Logger, theDB *gorm.DB, cfg Config, clients Clients) (*App, error) {
	reposet := wireRepos(theDB, log)
	serviceset, err := wireServices(theDB, log, cfg, reposet, clients)
	if err != nil {
		return nil, err
	}
	mw := wireMiddleware(log, cfg, serviceset)
	handlerset := wireHandlers(log, theDB, cfg, serviceset, mw)
	server := http.NewServer(":"+cfg.Port, wireRouter(log, cfg, clients, serviceset, handlerset, mw))

	return &App{
		Log:      log,
		DB:       theDB,
		Cfg:      cfg,
		Clients:  clients,
		Repos:    reposet,
		Services: serviceset,
		Server:   server,
	}, nil
}

// Run serves HTTP until ctx is cancelled or SIGINT/SIGTERM arrives, then
// shuts the server down gracefully.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return errors.New("app not initialized")
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.Log.Info("HTTP server listening", "addr", ":"+a.Cfg.Port)
		return a.Server.Run()
	})
	g.Go(func() error {
		<-gctx.Done()
		a.Log.Info("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return a.Server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		if err := a.otelShutdown(ctx); err != nil && a.Log != nil {
			a.Log.Warn("Tracer shutdown failed", "error", err)
		}
		cancel()
	}
	a.Clients.Close()
	if a.pg != nil {
		_ = a.pg.Close()
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
