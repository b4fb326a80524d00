package services

import (
	"context"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/salesagent-backend/internal/data/repos"
	"github.com/yungbote/salesagent-backend/internal/data/repos/testutil"
	"github.com/yungbote/salesagent-backend/internal/platform/dbctx"
)

const testDBTimeout = 5 * time.Second

type fixture struct {
	ctx context.Context
	db  *gorm.DB
	dbc dbctx.Context
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	db := testutil.DB(t)
	return fixture{ctx: ctx, db: db, dbc: dbctx.Context{Ctx: ctx}}
}

func (f fixture) customers(t *testing.T) CustomerService {
	log := testutil.Logger(t)
	return NewCustomerService(f.db, log, repos.NewCustomerRepo(f.db, log), testDBTimeout, CustomerCacheConfig{})
}

func (f fixture) loyalty(t *testing.T, cache cacheInvalidator) LoyaltyService {
	log := testutil.Logger(t)
	return NewLoyaltyService(f.db, log, repos.NewCustomerRepo(f.db, log), repos.NewCouponRepo(f.db, log), cache, testDBTimeout)
}

func (f fixture) stock(t *testing.T) StockService {
	log := testutil.Logger(t)
	return NewStockService(f.db, log, repos.NewInventoryRepo(f.db, log), repos.NewProductRepo(f.db, log), testDBTimeout)
}

func (f fixture) carts(t *testing.T) CartService {
	log := testutil.Logger(t)
	return NewCartService(f.db, log, repos.NewCartRepo(f.db, log), testDBTimeout)
}

func (f fixture) catalog(t *testing.T) CatalogService {
	log := testutil.Logger(t)
	return NewCatalogService(f.db, log, repos.NewProductRepo(f.db, log), repos.NewPromotionRepo(f.db, log), testDBTimeout)
}

func (f fixture) conversations(t *testing.T) ConversationService {
	log := testutil.Logger(t)
	return NewConversationService(f.db, log, repos.NewConversationLogRepo(f.db, log), repos.NewChannelSessionRepo(f.db, log), testDBTimeout)
}
