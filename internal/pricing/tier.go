package pricing

import "strings"

type Tier string

const (
	TierBronze   Tier = "bronze"
	TierSilver   Tier = "silver"
	TierGold     Tier = "gold"
	TierPlatinum Tier = "platinum"
)

// TierSpec is one rung of the loyalty ladder.
type TierSpec struct {
	Tier         Tier
	MinSpend     float64
	Multiplier   float64
	DiscountRate float64
	// Requirement is the short benefit summary shown next to the spend threshold.
	Requirement []string
	Benefits    []string
}

var ladder = []TierSpec{
	{
		Tier:         TierBronze,
		MinSpend:     0,
		Multiplier:   1.0,
		DiscountRate: 0,
		Requirement:  []string{"Basic point earning", "Member-only promotions"},
		Benefits:     []string{"Earn points on every purchase", "Member-only promotions", "Birthday bonus"},
	},
	{
		Tier:         TierSilver,
		MinSpend:     500,
		Multiplier:   1.25,
		DiscountRate: 0.05,
		Requirement:  []string{"1.25x point earning", "5% discount", "Free shipping over $50"},
		Benefits:     []string{"1.25x points earning", "5% discount on orders", "Free shipping on orders over $50", "Priority email support"},
	},
	{
		Tier:         TierGold,
		MinSpend:     1500,
		Multiplier:   1.5,
		DiscountRate: 0.10,
		Requirement:  []string{"1.5x point earning", "10% discount", "Priority customer service"},
		Benefits:     []string{"1.5x points earning", "10% discount on orders", "Free shipping on all orders", "Priority customer service", "Early access to sales"},
	},
	{
		Tier:         TierPlatinum,
		MinSpend:     3000,
		Multiplier:   2.0,
		DiscountRate: 0.15,
		Requirement:  []string{"2x point earning", "15% discount", "VIP support", "Early access"},
		Benefits:     []string{"2x points earning", "15% discount on orders", "Free expedited shipping", "VIP customer support", "Exclusive product access", "Personal shopping assistant"},
	},
}

// Ladder returns the tiers from lowest to highest.
func Ladder() []TierSpec {
	out := make([]TierSpec, len(ladder))
	copy(out, ladder)
	return out
}

// ParseTier normalizes a stored tier label. Unknown labels map to bronze.
func ParseTier(s string) Tier {
	switch Tier(strings.ToLower(strings.TrimSpace(s))) {
	case TierSilver:
		return TierSilver
	case TierGold:
		return TierGold
	case TierPlatinum:
		return TierPlatinum
	default:
		return TierBronze
	}
}

func (t Tier) Valid() bool {
	switch t {
	case TierBronze, TierSilver, TierGold, TierPlatinum:
		return true
	}
	return false
}

func (t Tier) Spec() TierSpec {
	for _, s := range ladder {
		if s.Tier == t {
			return s
		}
	}
	return ladder[0]
}

func (t Tier) Title() string {
	s := string(ParseTier(string(t)))
	return strings.ToUpper(s[:1]) + s[1:]
}

// NextTier returns the rung above t, or false at the top.
func NextTier(t Tier) (TierSpec, bool) {
	for i, s := range ladder {
		if s.Tier == ParseTier(string(t)) && i+1 < len(ladder) {
			return ladder[i+1], true
		}
	}
	return TierSpec{}, false
}

// TierForSpend returns the highest tier whose threshold spend reaches.
func TierForSpend(spend float64) Tier {
	out := TierBronze
	for _, s := range ladder {
		if spend >= s.MinSpend {
			out = s.Tier
		}
	}
	return out
}

// Premium reports tiers that get the member-only display treatment.
func (t Tier) Premium() bool {
	return t == TierGold || t == TierPlatinum
}
