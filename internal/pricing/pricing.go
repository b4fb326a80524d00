package pricing

import (
	"fmt"
	"math"
	"strings"
)

const (
	DefaultTaxRate = 0.08

	MinRedeemPoints = 100
	PointsPerDollar = 100

	// DisplayDiscountRate is the member shaving shown on the cart view for premium tiers.
	DisplayDiscountRate = 0.05

	FreeShippingThreshold = 50.0
)

// Line is the money-relevant view of a cart line.
type Line struct {
	Quantity  int
	UnitPrice float64
}

type Metrics struct {
	TotalItems       int     `json:"total_items"`
	TotalQuantity    int     `json:"total_quantity"`
	Subtotal         float64 `json:"subtotal"`
	AverageItemPrice float64 `json:"average_item_price"`
}

func CartMetrics(lines []Line) Metrics {
	m := Metrics{TotalItems: len(lines)}
	for _, l := range lines {
		m.TotalQuantity += l.Quantity
		m.Subtotal += float64(l.Quantity) * l.UnitPrice
	}
	m.Subtotal = Round2(m.Subtotal)
	if m.TotalQuantity > 0 {
		m.AverageItemPrice = Round2(m.Subtotal / float64(m.TotalQuantity))
	}
	return m
}

func DiscountRate(t Tier) float64 {
	return ParseTier(string(t)).Spec().DiscountRate
}

func TierDiscount(subtotal float64, t Tier) float64 {
	return Round2(subtotal * DiscountRate(t))
}

// DisplayDiscount is the cart-view member shaving. It is never written back.
func DisplayDiscount(subtotal float64, t Tier) float64 {
	if !ParseTier(string(t)).Premium() {
		return 0
	}
	return Round2(subtotal * DisplayDiscountRate)
}

func Tax(subtotal, rate float64) float64 {
	return Round2(subtotal * rate)
}

type Totals struct {
	Subtotal     float64 `json:"subtotal"`
	DiscountRate float64 `json:"discount_rate"`
	Discount     float64 `json:"discount"`
	Tax          float64 `json:"tax"`
	Total        float64 `json:"total"`
}

// CheckoutTotals taxes the raw subtotal and subtracts the tier discount afterwards:
// total = subtotal + tax(subtotal) - discount.
func CheckoutTotals(subtotal float64, t Tier, taxRate float64) Totals {
	discount := TierDiscount(subtotal, t)
	tax := Tax(subtotal, taxRate)
	return Totals{
		Subtotal:     Round2(subtotal),
		DiscountRate: DiscountRate(t),
		Discount:     discount,
		Tax:          tax,
		Total:        Round2(subtotal + tax - discount),
	}
}

// MaxRedeemable caps a redemption at min(points, cartTotal*10).
func MaxRedeemable(points int, cartTotal float64) int {
	if points < MinRedeemPoints {
		return 0
	}
	limit := int(cartTotal * 10)
	if limit < points {
		return limit
	}
	return points
}

func RedemptionValue(points int) float64 {
	if points <= 0 {
		return 0
	}
	return Round2(float64(points) / PointsPerDollar)
}

// PointsShortfall is how many points are missing before any redemption is allowed.
func PointsShortfall(points int) int {
	if points >= MinRedeemPoints {
		return 0
	}
	return MinRedeemPoints - points
}

// PointsEarned applies the tier multiplier to whole dollars spent.
func PointsEarned(amount float64, t Tier) int {
	if amount <= 0 {
		return 0
	}
	return int(math.Floor(amount * ParseTier(string(t)).Spec().Multiplier))
}

type Progress struct {
	CurrentTier  Tier    `json:"current_tier"`
	NextTier     Tier    `json:"next_tier,omitempty"`
	Percentage   float64 `json:"progress_percentage"`
	AmountNeeded float64 `json:"amount_needed"`
	PointsNeeded int     `json:"points_needed"`
	MaxTier      bool    `json:"max_tier"`
}

// TierProgress measures spend against the next threshold: min(100, spend/threshold*100).
func TierProgress(t Tier, spend float64) Progress {
	t = ParseTier(string(t))
	next, ok := NextTier(t)
	if !ok {
		return Progress{CurrentTier: t, Percentage: 100, MaxTier: true}
	}
	pct := 100.0
	if next.MinSpend > 0 {
		pct = math.Min(100, spend/next.MinSpend*100)
	}
	needed := math.Max(0, next.MinSpend-spend)
	return Progress{
		CurrentTier:  t,
		NextTier:     next.Tier,
		Percentage:   Round1(pct),
		AmountNeeded: Round2(needed),
		PointsNeeded: int(math.Ceil(needed)),
	}
}

func FormatCurrency(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}

// FormatCartSummary renders the compact summary block used after cart mutations.
func FormatCartSummary(m Metrics, totals Totals) string {
	var b strings.Builder
	b.WriteString("🛒 **Cart Summary:**\n")
	fmt.Fprintf(&b, "• Items: %d\n", m.TotalQuantity)
	fmt.Fprintf(&b, "• Subtotal: %s\n", FormatCurrency(totals.Subtotal))
	if totals.Discount > 0 {
		fmt.Fprintf(&b, "• Loyalty Discount: -%s\n", FormatCurrency(totals.Discount))
	}
	fmt.Fprintf(&b, "• Tax: %s\n", FormatCurrency(totals.Tax))
	fmt.Fprintf(&b, "• **Total: %s**", FormatCurrency(totals.Total))
	return b.String()
}

func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// CouponSavings is what a coupon takes off subtotal, or 0 when the order minimum is not met.
func CouponSavings(kind string, value, minOrder, subtotal float64) float64 {
	if subtotal <= 0 || subtotal < minOrder {
		return 0
	}
	var s float64
	switch kind {
	case "percent":
		s = subtotal * value / 100
	default:
		s = value
	}
	if s > subtotal {
		s = subtotal
	}
	return Round2(s)
}
