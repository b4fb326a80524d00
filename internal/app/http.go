package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/salesagent-backend/internal/http"
	httpH "github.com/yungbote/salesagent-backend/internal/http/handlers"
	"github.com/yungbote/salesagent-backend/internal/observability"
	"github.com/yungbote/salesagent-backend/internal/platform/logger"
)

type Handlers struct {
	Health *httpH.HealthHandler
	Chat   *httpH.ChatHandler
}

func wireHandlers(log *logger.Logger, db *gorm.DB, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health: httpH.NewHealthHandler(db),
		Chat:   httpH.NewChatHandler(services.Chat),
	}
}

func wireServer(log *logger.Logger, cfg Config, handlers Handlers, metrics *observability.Metrics) *http.Server {
	return http.NewServer(http.RouterConfig{
		Log:           log,
		Metrics:       metrics,
		ServiceName:   cfg.ServiceName,
		CORSOrigins:   cfg.CORSOrigins,
		ChatHandler:   handlers.Chat,
		HealthHandler: handlers.Health,
	})
}
