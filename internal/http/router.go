package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/yungbote/salesagent-backend/internal/http/handlers"
	"github.com/yungbote/salesagent-backend/internal/http/middleware"
	"github.com/yungbote/salesagent-backend/internal/observability"
	"github.com/yungbote/salesagent-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	Metrics     *observability.Metrics
	ServiceName string
	CORSOrigins []string

	ChatHandler   *handlers.ChatHandler
	HealthHandler *handlers.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	service := cfg.ServiceName
	if service == "" {
		service = "salesagent"
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(service))
	r.Use(middleware.AttachTraceContext())
	r.Use(middleware.RequestLogger(cfg.Log))
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.Metrics(cfg.Metrics))

	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := r.Group("/api")
	if cfg.ChatHandler != nil {
		chat := api.Group("/chat")
		chat.POST("/messages", cfg.ChatHandler.SendMessage)
		chat.GET("/sessions/:id", cfg.ChatHandler.GetSession)
	}
	return r
}
