package services

import (
	"context"
	"errors"
	"testing"

	"github.com/yungbote/salesagent-backend/internal/data/repos/testutil"
	types "github.com/yungbote/salesagent-backend/internal/domain"
	pkgerrors "github.com/yungbote/salesagent-backend/internal/pkg/errors"
	"github.com/yungbote/salesagent-backend/internal/pricing"
)

type recordingInvalidator struct {
	users []string
}

func (r *recordingInvalidator) Invalidate(_ context.Context, userID string) {
	r.users = append(r.users, userID)
}

func TestGetProfileDefaults(t *testing.T) {
	f := newFixture(t)
	got, err := f.loyalty(t, nil).GetProfile(f.dbc, "ghost")
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if got.Found || got.Tier != pricing.TierBronze || got.Points != 0 {
		t.Fatalf("defaults: got=%+v", got)
	}
}

func TestDeductPoints(t *testing.T) {
	f := newFixture(t)
	testutil.SeedCustomer(t, f.ctx, f.db, "u1", "silver", 250)
	inv := &recordingInvalidator{}
	svc := f.loyalty(t, inv)

	got, err := svc.DeductPoints(f.dbc, "u1", 200)
	if err != nil {
		t.Fatalf("DeductPoints: %v", err)
	}
	if got.Points != 50 {
		t.Fatalf("balance: want=50 got=%d", got.Points)
	}
	if len(inv.users) != 1 || inv.users[0] != "u1" {
		t.Fatalf("invalidate: got=%v", inv.users)
	}
	if _, err := svc.DeductPoints(f.dbc, "u1", 100); !errors.Is(err, pkgerrors.ErrInvalidArgument) {
		t.Fatalf("overdraw: want ErrInvalidArgument got=%v", err)
	}
	if _, err := svc.DeductPoints(f.dbc, "ghost", 100); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("missing user: want ErrNotFound got=%v", err)
	}
	if _, err := svc.DeductPoints(f.dbc, "u1", 0); !errors.Is(err, pkgerrors.ErrInvalidArgument) {
		t.Fatalf("zero: want ErrInvalidArgument got=%v", err)
	}
}

func TestEarnPointsUpgradesTier(t *testing.T) {
	f := newFixture(t)
	c := testutil.SeedCustomer(t, f.ctx, f.db, "u1", "silver", 100)
	if err := f.db.Model(c).Update("total_spent", 1400.0).Error; err != nil {
		t.Fatalf("update: %v", err)
	}
	svc := f.loyalty(t, nil)

	got, err := svc.EarnPoints(f.dbc, "u1", 200)
	if err != nil {
		t.Fatalf("EarnPoints: %v", err)
	}
	if got.PointsEarned != 250 {
		t.Fatalf("points earned: want=250 got=%d", got.PointsEarned)
	}
	if got.NewBalance != 350 {
		t.Fatalf("balance: want=350 got=%d", got.NewBalance)
	}
	if !got.Upgraded || got.Tier != pricing.TierGold {
		t.Fatalf("upgrade: got=%+v", got)
	}

	var row types.Customer
	if err := f.db.Where("user_id = ?", "u1").First(&row).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if row.LoyaltyTier != "gold" || row.LoyaltyPoints != 350 || row.TotalSpent != 1600 {
		t.Fatalf("stored: tier=%s points=%d spent=%v", row.LoyaltyTier, row.LoyaltyPoints, row.TotalSpent)
	}
}

func TestEarnPointsNeverDowngrades(t *testing.T) {
	f := newFixture(t)
	testutil.SeedCustomer(t, f.ctx, f.db, "u1", "platinum", 0)
	got, err := f.loyalty(t, nil).EarnPoints(f.dbc, "u1", 10)
	if err != nil {
		t.Fatalf("EarnPoints: %v", err)
	}
	if got.Tier != pricing.TierPlatinum || got.Upgraded {
		t.Fatalf("tier: got=%+v", got)
	}
	if got.PointsEarned != 20 {
		t.Fatalf("platinum multiplier: want=20 got=%d", got.PointsEarned)
	}
}

func TestAvailableCoupons(t *testing.T) {
	f := newFixture(t)
	testutil.SeedCustomer(t, f.ctx, f.db, "u1", "gold", 0)
	rows := []*types.Coupon{
		{Code: "GOLD20", Tier: "gold", Kind: types.CouponPercent, Value: 20, MinOrder: 150, IsActive: true},
		{Code: "VIP30", Tier: "platinum", Kind: types.CouponPercent, Value: 30, IsActive: true},
	}
	if err := f.db.Create(&rows).Error; err != nil {
		t.Fatalf("seed coupons: %v", err)
	}
	got, err := f.loyalty(t, nil).AvailableCoupons(f.dbc, "u1")
	if err != nil {
		t.Fatalf("AvailableCoupons: %v", err)
	}
	if len(got) != 1 || got[0].Code != "GOLD20" {
		t.Fatalf("coupons: got=%+v", got)
	}
	if s := got[0].Savings(200); s != 40 {
		t.Fatalf("savings: want=40 got=%v", s)
	}
	if s := got[0].Savings(100); s != 0 {
		t.Fatalf("below minimum: want=0 got=%v", s)
	}
}
