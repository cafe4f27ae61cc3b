package app

import (
	"context"

	"github.com/yungbote/carebloom-backend/internal/data/db"
	"github.com/yungbote/carebloom-backend/internal/http"
	httpH "github.com/yungbote/carebloom-backend/internal/http/handlers"
	"github.com/yungbote/carebloom-backend/internal/platform/logger"
)

type Handlers struct {
	Health *httpH.HealthHandler
	Page   *httpH.PageHandler
	Chat   *httpH.ChatHandler
}

func wireHandlers(log *logger.Logger, services Services, database *db.DatabaseService) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health: httpH.NewHealthHandler(func(ctx context.Context) error { return database.Ping(ctx) }),
		Page:   httpH.NewPageHandler(),
		Chat:   httpH.NewChatHandler(services.Chat),
	}
}

func wireServer(log *logger.Logger, cfg Config, handlers Handlers) *http.Server {
	serviceName := ""
	if cfg.Otel.Enabled {
		serviceName = cfg.Otel.ServiceName
	}
	return http.NewServer(
		http.ServerConfig{
			Addr:              cfg.HTTP.Addr(),
			ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
			ShutdownTimeout:   cfg.HTTP.ShutdownTimeout,
		},
		http.RouterConfig{
			Log:           log,
			ServiceName:   serviceName,
			CORSOrigins:   cfg.HTTP.CORSOrigins,
			HealthHandler: handlers.Health,
			PageHandler:   handlers.Page,
			ChatHandler:   handlers.Chat,
		},
		log,
	)
}
