package pricing

import (
	"math"
	"testing"
)

func TestDiscountRateTable(t *testing.T) {
	cases := []struct {
		tier Tier
		rate float64
	}{
		{TierBronze, 0},
		{TierSilver, 0.05},
		{TierGold, 0.10},
		{TierPlatinum, 0.15},
		{Tier("diamond"), 0},
	}
	for _, tc := range cases {
		t.Run(string(tc.tier), func(t *testing.T) {
			if got := DiscountRate(tc.tier); got != tc.rate {
				t.Fatalf("DiscountRate: want=%v got=%v", tc.rate, got)
			}
			for _, subtotal := range []float64{0, 19.99, 100, 1234.5} {
				want := Round2(subtotal * tc.rate)
				if got := TierDiscount(subtotal, tc.tier); got != want {
					t.Fatalf("TierDiscount(%v): want=%v got=%v", subtotal, want, got)
				}
			}
		})
	}
}

func TestCheckoutTotalsBronze(t *testing.T) {
	m := CartMetrics([]Line{{Quantity: 2, UnitPrice: 10}})
	got := CheckoutTotals(m.Subtotal, TierBronze, DefaultTaxRate)
	if got.Subtotal != 20 || got.Discount != 0 || got.Tax != 1.6 || got.Total != 21.6 {
		t.Fatalf("CheckoutTotals: got=%+v", got)
	}
}

func TestCheckoutTotalsTaxesRawSubtotal(t *testing.T) {
	got := CheckoutTotals(100, TierGold, DefaultTaxRate)
	if got.Discount != 10 || got.Tax != 8 || got.Total != 98 {
		t.Fatalf("CheckoutTotals(gold): got=%+v", got)
	}
}

func TestRedemption(t *testing.T) {
	cases := []struct {
		name   string
		points int
		cart   float64
		want   int
	}{
		{"below minimum", 99, 500, 0},
		{"balance bound", 250, 500, 250},
		{"cart bound", 5000, 20, 200},
		{"empty cart", 400, 0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := MaxRedeemable(tc.points, tc.cart)
			if got != tc.want {
				t.Fatalf("MaxRedeemable: want=%d got=%d", tc.want, got)
			}
			if got > tc.points || got > int(tc.cart*10) {
				t.Fatalf("MaxRedeemable exceeds bound: %d", got)
			}
		})
	}
	if got := PointsShortfall(50); got != 50 {
		t.Fatalf("PointsShortfall(50): want=50 got=%d", got)
	}
	if got := RedemptionValue(250); got != 2.5 {
		t.Fatalf("RedemptionValue(250): want=2.5 got=%v", got)
	}
}

func TestTierProgress(t *testing.T) {
	p := TierProgress(TierBronze, 250)
	if p.NextTier != TierSilver || p.Percentage != 50 || p.AmountNeeded != 250 || p.PointsNeeded != 250 {
		t.Fatalf("TierProgress(bronze,250): got=%+v", p)
	}
	p = TierProgress(TierSilver, 2000)
	if p.Percentage != 100 || p.AmountNeeded != 0 {
		t.Fatalf("TierProgress(silver,2000): got=%+v", p)
	}
	p = TierProgress(TierPlatinum, 10)
	if !p.MaxTier {
		t.Fatalf("TierProgress(platinum): want max tier")
	}
}

func TestTierForSpendAndPoints(t *testing.T) {
	if got := TierForSpend(1499.99); got != TierSilver {
		t.Fatalf("TierForSpend: want=silver got=%s", got)
	}
	if got := TierForSpend(3000); got != TierPlatinum {
		t.Fatalf("TierForSpend: want=platinum got=%s", got)
	}
	if got := PointsEarned(100, TierGold); got != 150 {
		t.Fatalf("PointsEarned: want=150 got=%d", got)
	}
}

func TestCartMetricsSum(t *testing.T) {
	lines := []Line{{Quantity: 3, UnitPrice: 1.1}, {Quantity: 1, UnitPrice: 99.99}}
	m := CartMetrics(lines)
	want := Round2(3*1.1 + 99.99)
	if math.Abs(m.Subtotal-want) > 1e-9 || m.TotalQuantity != 4 || m.TotalItems != 2 {
		t.Fatalf("CartMetrics: got=%+v", m)
	}
}

func TestCouponSavings(t *testing.T) {
	if got := CouponSavings("percent", 20, 150, 100); got != 0 {
		t.Fatalf("CouponSavings below minimum: want=0 got=%v", got)
	}
	if got := CouponSavings("percent", 20, 150, 200); got != 40 {
		t.Fatalf("CouponSavings percent: want=40 got=%v", got)
	}
	if got := CouponSavings("amount", 50, 0, 30); got != 30 {
		t.Fatalf("CouponSavings capped: want=30 got=%v", got)
	}
}
