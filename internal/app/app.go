package app

import (
	"context"
	"fmt"
	"time"

	"github.com/yungbote/carebloom-backend/internal/data/db"
	"github.com/yungbote/carebloom-backend/internal/http"
	"github.com/yungbote/carebloom-backend/internal/observability"
	"github.com/yungbote/carebloom-backend/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	Cfg      Config
	DB       *db.DatabaseService
	Repos    Repos
	Services Services
	Server   *http.Server

	otelShutdown observability.ShutdownFunc
}

func New(ctx context.Context) (*App, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	return NewWithConfig(ctx, cfg)
}

func NewWithConfig(ctx context.Context, cfg Config) (*App, error) {
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	otelShutdown, err := observability.InitOTel(ctx, log, cfg.Otel)
	if err != nil {
		log.Warn("otel init failed (continuing without tracing)", "error", err)
	}

	a := &App{Log: log, Cfg: cfg, otelShutdown: otelShutdown}

	database, err := db.NewDatabaseService(cfg.DB, log)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("init database: %w", err)
	}
	a.DB = database

	reposet, err := wireRepos(database.DB(), log)
	if err != nil {
		a.Close()
		return nil, err
	}
	serviceset := wireServices(ctx, log, cfg, reposet)
	handlerset := wireHandlers(log, serviceset, database)
	server := wireServer(log, cfg, handlerset)

	a.Repos = reposet
	a.Services = serviceset
	a.Server = server
	return a, nil
}

// Run serves HTTP until ctx is cancelled or the server fails.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	return a.Server.Run(ctx)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.otelShutdown(ctx); err != nil && a.Log != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
		cancel()
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil && a.Log != nil {
			a.Log.Warn("database close failed", "error", err)
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
