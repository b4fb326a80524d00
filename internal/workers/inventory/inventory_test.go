package inventory

import (
	"context"
	"strings"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/salesagent-backend/internal/conversation"
	"github.com/yungbote/salesagent-backend/internal/data/repos"
	"github.com/yungbote/salesagent-backend/internal/data/repos/testutil"
	"github.com/yungbote/salesagent-backend/internal/platform/llm"
	"github.com/yungbote/salesagent-backend/internal/platform/llm/llmtest"
	"github.com/yungbote/salesagent-backend/internal/pricing"
	"github.com/yungbote/salesagent-backend/internal/services"
)

var manhattan = &conversation.Location{Lat: 40.7306, Lng: -73.9866, City: "New York"}

func newWorker(t *testing.T, db *gorm.DB, client llm.Client) *Worker {
	t.Helper()
	log := testutil.Logger(t)
	stock := services.NewStockService(db, log, repos.NewInventoryRepo(db, log), repos.NewProductRepo(db, log), 5*time.Second)
	catalog := services.NewCatalogService(db, log, repos.NewProductRepo(db, log), repos.NewPromotionRepo(db, log), 5*time.Second)
	return New(log, stock, catalog, client)
}

func record(text string, loc *conversation.Location, cart ...conversation.CartItem) *conversation.Record {
	rec := conversation.NewRecord("u1", conversation.ChannelWeb, "s1")
	rec.Customer = &conversation.CustomerContext{UserID: "u1", LoyaltyTier: pricing.TierBronze, Location: loc}
	rec.Cart = cart
	rec.AddUserMessage(text)
	return rec
}

func TestInStockWithPickup(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	testutil.SeedProduct(t, ctx, db, "LAPTOP001", "Laptop Pro 14", "electronics", 999.99, 0)
	testutil.SeedInventoryLevel(t, ctx, db, "LAPTOP001", 20, 5)
	testutil.SeedStore(t, ctx, db, "NYC01", "New York", 40.7580, -73.9855)
	testutil.SeedStoreInventory(t, ctx, db, "NYC01", "LAPTOP001", 3)

	res, err := newWorker(t, db, nil).Process(ctx, record("is product laptop001 in stock?", manhattan))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	st := res.Data["inventory_status"].(*Status)
	if st.Available != 18 {
		t.Fatalf("available: want=18 got=%d", st.Available)
	}
	opts := res.Data["fulfillment_options"].([]FulfillmentOption)
	var types []string
	for _, o := range opts {
		types = append(types, o.Type+":"+o.Method)
	}
	want := "home_delivery:Standard Shipping,home_delivery:Express Shipping,store_pickup:Store Pickup"
	if got := strings.Join(types, ","); got != want {
		t.Fatalf("options: want=%s got=%s", want, got)
	}
	if res.Confidence != 1.0 {
		t.Fatalf("confidence: want=1 got=%v", res.Confidence)
	}
	if !strings.Contains(res.Content, "plenty available (18 units") || !strings.Contains(res.Content, "Store NYC01") {
		t.Fatalf("content: %q", res.Content)
	}
}

func TestOutOfStockOffersBackorder(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	testutil.SeedProduct(t, ctx, db, "WATCH001", "Smart Watch", "electronics", 249.99, 0)

	res, err := newWorker(t, db, nil).Process(ctx, record("do you have item watch001?", nil))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	opts := res.Data["fulfillment_options"].([]FulfillmentOption)
	if len(opts) != 1 || opts[0].Type != "backorder" {
		t.Fatalf("options: %+v", opts)
	}
	if res.Confidence < 0.59 || res.Confidence > 0.61 {
		t.Fatalf("confidence: want=0.6 got=%v", res.Confidence)
	}
	if !strings.Contains(res.Content, "out of stock") || !strings.Contains(res.Content, "backorder for 1-2 weeks") {
		t.Fatalf("content: %q", res.Content)
	}
}

func TestLimitedStockFromCartLine(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	testutil.SeedProduct(t, ctx, db, "HEADPHONES001", "Headphones", "electronics", 199.99, 2)
	line := conversation.CartItem{ProductID: "HEADPHONES001", Name: "Headphones", Quantity: 1, UnitPrice: 199.99}

	res, err := newWorker(t, db, nil).Process(ctx, record("can I get 5 units of the headphones?", nil, line))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	q := res.Data["product_info"].(ProductQuery)
	if q.ProductID != "HEADPHONES001" || q.Quantity != 5 {
		t.Fatalf("query: %+v", q)
	}
	if !strings.Contains(res.Content, "limited stock") {
		t.Fatalf("content: %q", res.Content)
	}
}

func TestMissingProductFallsBackToCart(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	line := conversation.CartItem{ProductID: "P1", Name: "Mug", Quantity: 2, UnitPrice: 8}

	res, err := newWorker(t, db, nil).Process(ctx, record("is it available?", nil, line))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	q := res.Data["product_info"].(ProductQuery)
	if q.ProductID != "P1" {
		t.Fatalf("query: %+v", q)
	}

	res, err = newWorker(t, db, nil).Process(ctx, record("stock check", nil, line))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if res.Data["clarification_needed"] != true || res.Confidence != 0.8 {
		t.Fatalf("want cart clarification: data=%v confidence=%v", res.Data, res.Confidence)
	}

	res, err = newWorker(t, db, nil).Process(ctx, record("stock check", nil))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if res.Confidence != 1.0 {
		t.Fatalf("empty-cart clarification confidence: want=1 got=%v", res.Confidence)
	}
}

func TestModelAvailabilityOverrides(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	testutil.SeedProduct(t, ctx, db, "PHONE001", "Phone X", "electronics", 799.0, 4)

	fake := llmtest.New(`{"available_quantity": 7, "recommendation": "Ship it"}`)
	res, err := newWorker(t, db, fake).Process(ctx, record("product phone001", nil))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	st := res.Data["inventory_status"].(*Status)
	if st.Available != 7 || st.Recommendation != "Ship it" {
		t.Fatalf("status: %+v", st)
	}

	zero := llmtest.New(`{"available_quantity": 0}`)
	res, err = newWorker(t, db, zero).Process(ctx, record("product phone001", nil))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if st := res.Data["inventory_status"].(*Status); st.Available != 4 {
		t.Fatalf("zero from model keeps stored figure: got=%d", st.Available)
	}
}

func TestCanceledContextIsReturned(t *testing.T) {
	db := testutil.DB(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := newWorker(t, db, nil).Process(ctx, record("product phone001", nil)); err == nil {
		t.Fatalf("want context error")
	}
}

func TestDeicticNeedsWholeWord(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	testutil.SeedProduct(t, ctx, db, "LAPTOP001", "Laptop Pro 14", "electronics", 999.99, 5)
	line := conversation.CartItem{ProductID: "LAPTOP001", Name: "Laptop Pro 14", Quantity: 1, UnitPrice: 999.99}

	cases := []struct {
		text    string
		wantCtx bool
	}{
		{"do you have headphones with noise cancelling?", false},
		{"what quantity of kits do you stock?", false},
		{"is it available?", true},
		{"can I pick this up today?", true},
		{"is the item in stock?", true},
	}
	for _, tc := range cases {
		res, err := newWorker(t, db, nil).Process(ctx, record(tc.text, nil, line))
		if err != nil {
			t.Fatalf("%q: Process: %v", tc.text, err)
		}
		_, resolved := res.Data["product_info"]
		if resolved != tc.wantCtx {
			t.Fatalf("%q: want resolved=%v got=%v content=%q", tc.text, tc.wantCtx, resolved, res.Content)
		}
		if !tc.wantCtx && res.Data["clarification_needed"] != true {
			t.Fatalf("%q: want clarification, data=%v", tc.text, res.Data)
		}
	}
}

func TestUnknownProductIsNotOutOfStock(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)

	res, err := newWorker(t, db, nil).Process(ctx, record("is this item available?", nil))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if _, ok := res.Data["product_info"]; ok || res.Data["clarification_needed"] != true {
		t.Fatalf("plain words are not ids: data=%v", res.Data)
	}
	if strings.Contains(res.Content, "out of stock") {
		t.Fatalf("content: %q", res.Content)
	}

	res, err = newWorker(t, db, nil).Process(ctx, record("do you have product zz999?", nil))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if res.Data["unknown_product_id"] != "ZZ999" || res.Data["clarification_needed"] != true {
		t.Fatalf("unknown id: data=%v", res.Data)
	}
	if !strings.Contains(res.Content, "couldn't find a product with ID **ZZ999**") || strings.Contains(res.Content, "backorder") {
		t.Fatalf("content: %q", res.Content)
	}
}
