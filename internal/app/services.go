package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/salesagent-backend/internal/chat"
	"github.com/yungbote/salesagent-backend/internal/intent"
	"github.com/yungbote/salesagent-backend/internal/orchestrator"
	"github.com/yungbote/salesagent-backend/internal/platform/logger"
	"github.com/yungbote/salesagent-backend/internal/services"
	"github.com/yungbote/salesagent-backend/internal/workers"
	"github.com/yungbote/salesagent-backend/internal/workers/cart"
	"github.com/yungbote/salesagent-backend/internal/workers/inventory"
	"github.com/yungbote/salesagent-backend/internal/workers/loyalty"
	"github.com/yungbote/salesagent-backend/internal/workers/recommendation"
)

type Services struct {
	Customers     services.CustomerService
	Catalog       services.CatalogService
	Stock         services.StockService
	Carts         services.CartService
	Loyalty       services.LoyaltyService
	Conversations services.ConversationService

	Workers      *workers.Registry
	Orchestrator *orchestrator.Orchestrator
	Chat         chat.Service
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos, c Clients) (Services, error) {
	log.Info("Wiring services...")
	timeout := cfg.DBTimeout()

	var out Services
	out.Customers = services.NewCustomerService(db, log, r.Customer, timeout, services.CustomerCacheConfig{
		Client: c.Redis,
		TTL:    cfg.CustomerCacheTTL(),
	})
	out.Catalog = services.NewCatalogService(db, log, r.Product, r.Promotion, timeout)
	out.Stock = services.NewStockService(db, log, r.Inventory, r.Product, timeout)
	out.Carts = services.NewCartService(db, log, r.Cart, timeout)
	out.Loyalty = services.NewLoyaltyService(db, log, r.Customer, r.Coupon, out.Customers, timeout)
	out.Conversations = services.NewConversationService(db, log, r.ConvLog, r.ChannelSes, timeout)

	reg, err := workers.NewRegistry(
		recommendation.New(log, out.Catalog, out.Customers, c.LLM),
		cart.New(log, out.Catalog, out.Carts, nil, c.LLM, cfg.TaxRate),
		inventory.New(log, out.Stock, out.Catalog, c.LLM),
		loyalty.New(log, out.Loyalty, c.LLM),
	)
	if err != nil {
		return Services{}, err
	}
	out.Workers = reg

	deps := orchestrator.Deps{
		Customers:     out.Customers,
		Conversations: out.Conversations,
		Classifier:    intent.NewClassifier(log, c.LLM),
		Workers:       reg,
		LLM:           c.LLM,
	}
	if c.Events != nil {
		deps.Events = c.Events
	}
	out.Orchestrator = orchestrator.New(log, deps, cfg.OrchestratorConfig())
	out.Chat = chat.NewService(log, out.Orchestrator, out.Conversations, out.Carts)
	log.Info("workers registered", "workers", reg.Names())
	return out, nil
}
