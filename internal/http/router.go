package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/carebloom-backend/internal/http/handlers"
	httpMW "github.com/yungbote/carebloom-backend/internal/http/middleware"
	"github.com/yungbote/carebloom-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	ServiceName string
	CORSOrigins []string

	PageHandler   *httpH.PageHandler
	ChatHandler   *httpH.ChatHandler
	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.TraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	// Browser UI
	if cfg.PageHandler != nil {
		r.SetHTMLTemplate(httpH.PageTemplates())
		r.StaticFS("/static", httpH.StaticFS())
		r.GET("/", cfg.PageHandler.Index)
	}

	// Chat
	if cfg.ChatHandler != nil {
		r.POST("/chat", cfg.ChatHandler.Chat)
		r.GET("/history", cfg.ChatHandler.History)
		r.POST("/delete", cfg.ChatHandler.Delete)
	}

	return r
}
