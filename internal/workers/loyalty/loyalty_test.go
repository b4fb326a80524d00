package loyalty

import (
	"context"
	"strings"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/salesagent-backend/internal/conversation"
	"github.com/yungbote/salesagent-backend/internal/data/repos"
	"github.com/yungbote/salesagent-backend/internal/data/repos/testutil"
	types "github.com/yungbote/salesagent-backend/internal/domain"
	"github.com/yungbote/salesagent-backend/internal/platform/dbctx"
	"github.com/yungbote/salesagent-backend/internal/platform/llm"
	"github.com/yungbote/salesagent-backend/internal/platform/llm/llmtest"
	"github.com/yungbote/salesagent-backend/internal/pricing"
	"github.com/yungbote/salesagent-backend/internal/services"
)

func newService(t *testing.T, db *gorm.DB) services.LoyaltyService {
	t.Helper()
	log := testutil.Logger(t)
	return services.NewLoyaltyService(db, log, repos.NewCustomerRepo(db, log), repos.NewCouponRepo(db, log), nil, 5*time.Second)
}

func newWorker(t *testing.T, db *gorm.DB, client llm.Client) *Worker {
	return New(testutil.Logger(t), newService(t, db), client)
}

func record(text string, tier pricing.Tier, cart ...conversation.CartItem) *conversation.Record {
	rec := conversation.NewRecord("u1", conversation.ChannelWeb, "s1")
	rec.Customer = &conversation.CustomerContext{UserID: "u1", LoyaltyTier: tier}
	rec.Cart = cart
	if text != "" {
		rec.AddUserMessage(text)
	}
	return rec
}

func TestDetermineAction(t *testing.T) {
	cases := []struct {
		text string
		want Action
	}{
		{"", ActionStatus},
		{"what are my points?", ActionStatus},
		{"can I use a coupon", ActionDiscount},
		{"I'd like to redeem 200 points", ActionRedeem},
		{"how do I reach platinum", ActionTierInfo},
		{"tell me about rewards", ActionAssist},
		{"how can I accumulate rewards", ActionEarning},
		{"tell me about being a member", ActionStatus},
	}
	for _, tc := range cases {
		if got := DetermineAction(record(tc.text, pricing.TierBronze)); got != tc.want {
			t.Fatalf("DetermineAction(%q): want=%s got=%s", tc.text, tc.want, got)
		}
	}
}

func TestGoldDiscountOnHundred(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	testutil.SeedCustomer(t, ctx, db, "u1", "gold", 0)

	rec := record("apply discount", pricing.TierGold, conversation.CartItem{ProductID: "P1", Name: "Jacket", Quantity: 1, UnitPrice: 100})
	res, err := newWorker(t, db, nil).Process(ctx, rec)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if res.Data["loyalty_action"] != string(ActionDiscount) {
		t.Fatalf("action: %v", res.Data["loyalty_action"])
	}
	if got := res.Data["tier_discount"].(float64); got != 10.00 {
		t.Fatalf("tier_discount: want=10 got=%v", got)
	}
	if got := res.Data["new_total"].(float64); got != 90.00 {
		t.Fatalf("new_total: want=90 got=%v", got)
	}
	if !strings.Contains(res.Content, "**New Total:** $90.00") {
		t.Fatalf("content: %q", res.Content)
	}
}

func TestDiscountWithLoyaltyAdvice(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	testutil.SeedCustomer(t, ctx, db, "u1", "silver", 0)
	fake := llmtest.New(`{"recommended_action":"tier","discount_amount":5,"message":"Use your silver discount."}`)

	rec := record("member discount please", pricing.TierSilver, conversation.CartItem{ProductID: "P1", Name: "Jacket", Quantity: 1, UnitPrice: 100})
	res, err := newWorker(t, db, fake).Process(ctx, rec)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if res.Data["loyalty_advice"] != "Use your silver discount." {
		t.Fatalf("loyalty_advice: %v", res.Data["loyalty_advice"])
	}
	if fake.CallCount() != 1 {
		t.Fatalf("model calls: want=1 got=%d", fake.CallCount())
	}
}

func TestDiscountNeedsCart(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	testutil.SeedCustomer(t, ctx, db, "u1", "gold", 0)

	res, err := newWorker(t, db, nil).Process(ctx, record("apply discount", pricing.TierGold))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if res.Data["empty_cart"] != true {
		t.Fatalf("want empty_cart, got %v", res.Data)
	}
}

func TestBestDiscountStrategyStacks(t *testing.T) {
	coupons := []services.Coupon{
		{Code: "GOLD20", Kind: types.CouponPercent, Value: 20, MinOrder: 150},
		{Code: "SAVE5", Kind: "amount", Value: 5},
	}
	plan := BestDiscountStrategy(200, pricing.TierGold, 500, coupons)
	if plan == nil {
		t.Fatalf("want plan")
	}
	// tier 20 + points 5 + best coupon 40
	if plan.TotalSavings != 65 || plan.NewTotal != 135 {
		t.Fatalf("plan: total=%v new=%v", plan.TotalSavings, plan.NewTotal)
	}
	if len(plan.Strategies) != 3 || plan.Description != "Apply coupon" {
		t.Fatalf("plan: %+v", plan)
	}

	if p := BestDiscountStrategy(0, pricing.TierGold, 500, coupons); p != nil {
		t.Fatalf("empty cart: want nil got %+v", p)
	}
	if p := BestDiscountStrategy(20, pricing.TierBronze, 50, nil); p != nil {
		t.Fatalf("nothing applies: want nil got %+v", p)
	}
}

func TestRedeemShortfall(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	testutil.SeedCustomer(t, ctx, db, "u1", "bronze", 30)

	res, err := newWorker(t, db, nil).Process(ctx, record("redeem points please", pricing.TierBronze))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if res.Data["shortage"] != 70 {
		t.Fatalf("shortage: want=70 got=%v", res.Data["shortage"])
	}
	if !strings.Contains(res.Content, "You currently have 30 points, but you need at least 100 points to redeem") {
		t.Fatalf("content: %q", res.Content)
	}
	if !strings.Contains(res.Content, "so you need 70 more points") {
		t.Fatalf("content missing shortfall: %q", res.Content)
	}
	if res.Confidence != 0.9 {
		t.Fatalf("confidence: want=0.9 got=%v", res.Confidence)
	}
}

func TestRedeemAgainstSmallCart(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	testutil.SeedCustomer(t, ctx, db, "u1", "silver", 400)
	cart := conversation.CartItem{ProductID: "P1", Name: "Pen", Quantity: 1, UnitPrice: 5}

	for _, text := range []string{"redeem points please", "redeem 100 points"} {
		res, err := newWorker(t, db, nil).Process(ctx, record(text, pricing.TierSilver, cart))
		if err != nil {
			t.Fatalf("%q: Process: %v", text, err)
		}
		if res.Data["cart_too_small"] != true || res.Data["max_redeemable"] != 50 {
			t.Fatalf("%q: data=%v", text, res.Data)
		}
		if strings.Contains(res.Content, "Choose Your Redemption") || !strings.Contains(res.Content, "too small to redeem against") {
			t.Fatalf("%q: content=%q", text, res.Content)
		}
	}
	p, _ := newService(t, db).GetProfile(dbctx.Context{Ctx: ctx}, "u1")
	if p.Points != 400 {
		t.Fatalf("balance changed: %d", p.Points)
	}
}

func TestRedeemNamedAmountDeducts(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	testutil.SeedCustomer(t, ctx, db, "u1", "silver", 300)
	svc := newService(t, db)
	w := New(testutil.Logger(t), svc, nil)

	rec := record("redeem 200 points", pricing.TierSilver)
	rec.Customer.LoyaltyPoints = 300
	res, err := w.Process(ctx, rec)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if res.Data["points_redeemed"] != 200 || res.Data["redemption_value"] != 2.0 {
		t.Fatalf("data: %v", res.Data)
	}
	p, err := svc.GetProfile(dbctx.Context{Ctx: ctx}, "u1")
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if p.Points != 100 || rec.Customer.LoyaltyPoints != 100 {
		t.Fatalf("balance: stored=%d record=%d", p.Points, rec.Customer.LoyaltyPoints)
	}
}

func TestRedeemOverCartCapIsRefused(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	testutil.SeedCustomer(t, ctx, db, "u1", "silver", 300)

	rec := record("redeem 250 points", pricing.TierSilver, conversation.CartItem{ProductID: "P1", Name: "Mug", Quantity: 1, UnitPrice: 10})
	res, err := newWorker(t, db, nil).Process(ctx, rec)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if res.Data["max_redeemable"] != 100 {
		t.Fatalf("max_redeemable: want=100 got=%v", res.Data["max_redeemable"])
	}
	p, _ := newService(t, db).GetProfile(dbctx.Context{Ctx: ctx}, "u1")
	if p.Points != 300 {
		t.Fatalf("balance changed: %d", p.Points)
	}
}

func TestRedemptionOptions(t *testing.T) {
	cases := []struct {
		balance, max int
		want         []int
	}{
		{300, 300, []int{100, 250, 300}},
		{600, 120, []int{100, 120}},
		{1000, 1000, []int{100, 250, 500, 1000}},
		{500, 500, []int{100, 250, 500}},
	}
	for _, tc := range cases {
		got := RedemptionOptions(tc.balance, tc.max)
		if len(got) != len(tc.want) {
			t.Fatalf("RedemptionOptions(%d,%d): want=%v got=%+v", tc.balance, tc.max, tc.want, got)
		}
		for i, o := range got {
			if o.Points != tc.want[i] || o.Value != pricing.RedemptionValue(o.Points) {
				t.Fatalf("RedemptionOptions(%d,%d)[%d]: %+v", tc.balance, tc.max, i, o)
			}
		}
	}
}

func TestStatusShowsProgressAndCartPotential(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	testutil.SeedCustomer(t, ctx, db, "u1", "silver", 1234)

	rec := record("loyalty status", pricing.TierSilver, conversation.CartItem{ProductID: "P1", Name: "Mug", Quantity: 2, UnitPrice: 20})
	res, err := newWorker(t, db, nil).Process(ctx, rec)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	for _, want := range []string{"**Points Balance:** 1,234 points", "Progress to Gold", "You'll earn 50 points (40 base + 10 bonus)"} {
		if !strings.Contains(res.Content, want) {
			t.Fatalf("content missing %q: %q", want, res.Content)
		}
	}
}

func TestStatusWithoutProfile(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)

	res, err := newWorker(t, db, nil).Process(ctx, record("loyalty status", pricing.TierBronze))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if res.Data["profile_not_found"] != true || res.Confidence != 0.8 {
		t.Fatalf("data=%v confidence=%v", res.Data, res.Confidence)
	}
}

func TestCommaInt(t *testing.T) {
	cases := map[int]string{0: "0", 999: "999", 1000: "1,000", 1234567: "1,234,567", -4500: "-4,500"}
	for in, want := range cases {
		if got := commaInt(in); got != want {
			t.Fatalf("commaInt(%d): want=%s got=%s", in, want, got)
		}
	}
}
