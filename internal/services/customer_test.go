package services

import (
	"os"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"gorm.io/datatypes"

	"github.com/yungbote/salesagent-backend/internal/data/repos"
	"github.com/yungbote/salesagent-backend/internal/data/repos/testutil"
	types "github.com/yungbote/salesagent-backend/internal/domain"
	"github.com/yungbote/salesagent-backend/internal/pricing"
)

func TestCustomerGetMissing(t *testing.T) {
	f := newFixture(t)
	got, err := f.customers(t).Get(f.dbc, "nobody")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != nil {
		t.Fatalf("Get: want nil got=%+v", got)
	}
}

func TestCustomerGetMapsProfile(t *testing.T) {
	f := newFixture(t)
	row := testutil.SeedCustomer(t, f.ctx, f.db, "u1", "GOLD", 420)
	lat, lng := 40.71, -74.0
	if err := f.db.Model(row).Updates(map[string]any{
		"latitude":       lat,
		"longitude":      lng,
		"city":           "New York",
		"past_purchases": datatypes.JSON([]byte(`[{"product_id":"P1","category":"electronics"}]`)),
	}).Error; err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := f.customers(t).Get(f.dbc, "u1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.LoyaltyTier != pricing.TierGold {
		t.Fatalf("tier: want=%s got=%s", pricing.TierGold, got.LoyaltyTier)
	}
	if got.LoyaltyPoints != 420 {
		t.Fatalf("points: want=420 got=%d", got.LoyaltyPoints)
	}
	if len(got.Preferences.FavoriteCategories) != 1 || got.Preferences.FavoriteCategories[0] != "electronics" {
		t.Fatalf("preferences: got=%+v", got.Preferences)
	}
	if len(got.PastPurchases) != 1 {
		t.Fatalf("past purchases: want=1 got=%d", len(got.PastPurchases))
	}
	if got.Location == nil || got.Location.City != "New York" {
		t.Fatalf("location: got=%+v", got.Location)
	}
}

func TestCustomerContextFromRowToleratesBadJSON(t *testing.T) {
	got := CustomerContextFromRow(&types.Customer{
		UserID:      "u1",
		LoyaltyTier: "diamond",
		Preferences: datatypes.JSON([]byte(`not json`)),
	})
	if got.LoyaltyTier != pricing.TierBronze {
		t.Fatalf("tier: want=bronze got=%s", got.LoyaltyTier)
	}
	if !got.Preferences.Empty() {
		t.Fatalf("preferences: want empty got=%+v", got.Preferences)
	}
	if got.Location != nil {
		t.Fatalf("location: want nil")
	}
}

func TestCustomerCacheAside(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	f := newFixture(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: addr})
	t.Cleanup(func() { _ = rdb.Close() })

	log := testutil.Logger(t)
	prefix := "test:customer:" + time.Now().Format("150405.000000") + ":"
	svc := NewCustomerService(f.db, log, repos.NewCustomerRepo(f.db, log), testDBTimeout, CustomerCacheConfig{Client: rdb, Prefix: prefix, TTL: time.Minute})
	testutil.SeedCustomer(t, f.ctx, f.db, "u1", "silver", 10)

	if _, err := svc.Get(f.dbc, "u1"); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if n, err := rdb.Exists(f.ctx, prefix+"u1").Result(); err != nil || n != 1 {
		t.Fatalf("cache write: want key present got=%d err=%v", n, err)
	}
	// A cached read must not touch the database.
	if err := f.db.Where("user_id = ?", "u1").Delete(&types.Customer{}).Error; err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, err := svc.Get(f.dbc, "u1")
	if err != nil || got == nil || got.LoyaltyTier != pricing.TierSilver {
		t.Fatalf("cached Get: got=%+v err=%v", got, err)
	}
	svc.Invalidate(f.ctx, "u1")
	got, err = svc.Get(f.dbc, "u1")
	if err != nil || got != nil {
		t.Fatalf("after invalidate: want nil got=%+v err=%v", got, err)
	}
}
