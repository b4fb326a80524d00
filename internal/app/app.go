package app

import (
	"context"
	"fmt"
	"net"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/salesagent-backend/internal/clients/redis"
	"github.com/yungbote/salesagent-backend/internal/data/db"
	"github.com/yungbote/salesagent-backend/internal/http"
	"github.com/yungbote/salesagent-backend/internal/observability"
	"github.com/yungbote/salesagent-backend/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Cfg      Config
	Clients  Clients
	Repos    Repos
	Services Services
	Server   *http.Server
	Metrics  *observability.Metrics

	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

// NewLogger builds the process logger from config.
func NewLogger(cfg Config) (*logger.Logger, error) {
	log, err := logger.NewWithLevel(cfg.LogMode, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return log, nil
}

// OpenDB connects and migrates the schema.
func OpenDB(log *logger.Logger, cfg Config) (*gorm.DB, error) {
	theDB, err := db.Open(cfg.DBConfig(), log)
	if err != nil {
		return nil, fmt.Errorf("init db: %w", err)
	}
	if err := db.AutoMigrateAll(theDB); err != nil {
		_ = db.Close(theDB)
		return nil, fmt.Errorf("automigrate: %w", err)
	}
	return theDB, nil
}

func New(ctx context.Context, cfg Config) (*App, error) {
	log, err := NewLogger(cfg)
	if err != nil {
		return nil, err
	}

	otelShutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: cfg.ServiceName,
		Environment: cfg.Env,
		Version:     cfg.ServiceVersion,
	})
	metrics := observability.Init(log)

	theDB, err := OpenDB(log, cfg)
	if err != nil {
		log.Sync()
		return nil, err
	}

	clients, err := wireClients(ctx, log, cfg)
	if err != nil {
		_ = db.Close(theDB)
		log.Sync()
		return nil, err
	}

	reposet := wireRepos(theDB, log)
	serviceset, err := wireServices(theDB, log, cfg, reposet, clients)
	if err != nil {
		clients.Close()
		_ = db.Close(theDB)
		log.Sync()
		return nil, err
	}

	handlerset := wireHandlers(log, theDB, serviceset)
	server := wireServer(log, cfg, handlerset, metrics)

	return &App{
		Log:          log,
		DB:           theDB,
		Cfg:          cfg,
		Clients:      clients,
		Repos:        reposet,
		Services:     serviceset,
		Server:       server,
		Metrics:      metrics,
		otelShutdown: otelShutdown,
	}, nil
}

// Start launches background loops. The event forwarder only logs; other consumers subscribe
// to the same channel on their own.
func (a *App) Start(ctx context.Context) {
	if a == nil || a.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	if a.Clients.Events != nil {
		err := a.Clients.Events.StartForwarder(ctx, func(ev redis.TurnEvent) {
			a.Log.Debug("turn event", "session_id", ev.SessionID, "intent", ev.Intent, "worker", ev.Worker, "errors", ev.ErrorCount)
		})
		if err != nil {
			a.Log.Warn("event forwarder not started", "error", err)
		}
	}
}

func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	addr := net.JoinHostPort("", a.Cfg.Port)
	a.Log.Info("HTTP server listening", "addr", addr)
	return a.Server.Run(ctx, addr, 15*time.Second)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	a.Clients.Close()
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = a.otelShutdown(ctx)
		cancel()
	}
	_ = db.Close(a.DB)
	if a.Log != nil {
		a.Log.Sync()
	}
}
