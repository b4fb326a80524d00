package loyalty

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/yungbote/salesagent-backend/internal/conversation"
	pkgerrors "github.com/yungbote/salesagent-backend/internal/pkg/errors"
	"github.com/yungbote/salesagent-backend/internal/platform/llm"
	"github.com/yungbote/salesagent-backend/internal/platform/logger"
	"github.com/yungbote/salesagent-backend/internal/platform/prompts"
	"github.com/yungbote/salesagent-backend/internal/pricing"
	"github.com/yungbote/salesagent-backend/internal/services"
	"github.com/yungbote/salesagent-backend/internal/workers"
)

const Name = "loyalty"

const ErrorMessage = "I'm having trouble accessing your loyalty information right now. Please try again or contact support."

type Action string

const (
	ActionStatus   Action = "check_status"
	ActionDiscount Action = "apply_discount"
	ActionRedeem   Action = "redeem_points"
	ActionTierInfo Action = "tier_info"
	ActionEarning  Action = "earning_opportunities"
	ActionAssist   Action = "provide_assistance"
)

var actionRules = []workers.Rule[Action]{
	{Label: ActionStatus, Patterns: []string{"loyalty status", "my points", "loyalty points", "tier status", "member status", "benefits", "what's my status"}},
	{Label: ActionDiscount, Patterns: []string{"apply discount", "use loyalty", "member discount", "loyalty benefits", "discount", "coupon", "promo code"}},
	{Label: ActionRedeem, Patterns: []string{"redeem", "use points", "cash out", "spend points", "exchange points"}},
	{Label: ActionTierInfo, Patterns: []string{"tier", "next level", "upgrade", "progress", "how to upgrade", "gold", "silver", "platinum", "bronze"}},
	{Label: ActionEarning, Patterns: []string{"earn points", "get points", "accumulate", "how to earn", "more points", "level up"}},
}

var loyaltyTerms = []string{"loyalty", "member", "points", "tier", "benefits"}

var redeemAmountRe = regexp.MustCompile(`(?i)(\d[\d,]*)\s*(?:points?|pts)`)

// Strategy is one discount the customer can stack on the current cart.
type Strategy struct {
	Type        string  `json:"type"`
	Description string  `json:"description"`
	Savings     float64 `json:"savings"`
}

// DiscountPlan stacks every applicable strategy: savings are summed, not picked.
type DiscountPlan struct {
	Description  string     `json:"description"`
	TotalSavings float64    `json:"total_savings"`
	NewTotal     float64    `json:"new_total"`
	Strategies   []Strategy `json:"strategies"`
}

type RedemptionOption struct {
	Points      int     `json:"points"`
	Value       float64 `json:"discount"`
	Description string  `json:"description"`
}

type Worker struct {
	log     *logger.Logger
	loyalty services.LoyaltyService
	llm     llm.Client
}

// New builds the loyalty worker. client may be nil.
func New(baseLog *logger.Logger, loyalty services.LoyaltyService, client llm.Client) *Worker {
	return &Worker{
		log:     baseLog.With("worker", Name),
		loyalty: loyalty,
		llm:     client,
	}
}

func (w *Worker) Name() string { return Name }

func (w *Worker) Process(ctx context.Context, rec *conversation.Record) (workers.Result, error) {
	action := DetermineAction(rec)
	w.log.Debug("loyalty action", "action", action, "session_id", rec.SessionID)

	profile, err := w.loyalty.GetProfile(workers.DB(ctx), rec.UserID)
	if err != nil {
		return w.failed(ctx, err)
	}

	var res workers.Result
	switch action {
	case ActionStatus:
		res, err = w.status(ctx, rec, profile)
	case ActionDiscount:
		res, err = w.applyDiscount(ctx, rec, profile)
	case ActionRedeem:
		res, err = w.redeem(ctx, rec, profile)
	case ActionTierInfo:
		res = tierInfo(profile)
	case ActionEarning:
		res = earningOpportunities(rec, profile)
	default:
		res = assist(profile)
	}
	if err != nil {
		return w.failed(ctx, err)
	}
	if res.Data == nil {
		res.Data = map[string]any{}
	}
	res.Data["loyalty_action"] = string(action)
	return res, nil
}

func (w *Worker) failed(ctx context.Context, err error) (workers.Result, error) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return workers.Result{}, ctxErr
	}
	w.log.Error("loyalty action failed", "error", err)
	return workers.Result{
		Content:    ErrorMessage,
		Data:       map[string]any{"error": err.Error()},
		Confidence: 0.1,
	}, nil
}

// DetermineAction classifies the latest user message. Without any user text the status
// view is shown.
func DetermineAction(rec *conversation.Record) Action {
	text := rec.LatestUserText()
	if text == "" {
		return ActionStatus
	}
	if a, ok := workers.Match(text, actionRules); ok {
		return a
	}
	if rec.Customer != nil && workers.ContainsAny(text, loyaltyTerms...) {
		return ActionStatus
	}
	return ActionAssist
}

func (w *Worker) status(ctx context.Context, rec *conversation.Record, p *services.LoyaltyProfile) (workers.Result, error) {
	if !p.Found {
		return workers.Result{
			Content:    "I couldn't find your loyalty profile. You might not be enrolled yet. Would you like to join our loyalty program? It's free and you can start earning points immediately!",
			Data:       map[string]any{"profile_not_found": true},
			Confidence: 0.8,
		}, nil
	}
	coupons, err := w.loyalty.AvailableCoupons(workers.DB(ctx), rec.UserID)
	if err != nil {
		return workers.Result{}, err
	}
	progress := pricing.TierProgress(p.Tier, p.TotalSpent)
	cartTotal := pricing.Round2(rec.CartTotal())

	var b strings.Builder
	b.WriteString("🏆 **Your Loyalty Status**\n\n")
	fmt.Fprintf(&b, "**Current Tier:** %s\n", p.Tier.Title())
	fmt.Fprintf(&b, "**Points Balance:** %s points\n", commaInt(p.Points))
	fmt.Fprintf(&b, "**Total Spent:** %s\n", pricing.FormatCurrency(p.TotalSpent))
	if !progress.MaxTier {
		if progress.AmountNeeded > 0 {
			fmt.Fprintf(&b, "\n📈 **Progress to %s:**\n", progress.NextTier.Title())
			fmt.Fprintf(&b, "• %.1f%% complete\n", progress.Percentage)
			fmt.Fprintf(&b, "• %s more to spend\n", pricing.FormatCurrency(progress.AmountNeeded))
			fmt.Fprintf(&b, "• %d more points to earn\n", progress.PointsNeeded)
		} else {
			fmt.Fprintf(&b, "\n🎉 **Congratulations!** You're eligible for %s tier upgrade!\n", progress.NextTier.Title())
		}
	}
	fmt.Fprintf(&b, "\n💎 **%s Member Benefits:**\n", p.Tier.Title())
	for _, benefit := range p.Tier.Spec().Benefits {
		fmt.Fprintf(&b, "• %s\n", benefit)
	}
	if len(coupons) > 0 {
		b.WriteString("\n🎁 **Available Coupons:**\n")
		for i, c := range coupons {
			if i == 3 {
				break
			}
			fmt.Fprintf(&b, "• %s: %s\n", c.Code, c.Description)
		}
	}
	if cartTotal > 0 {
		writeCartPotential(&b, "\n🛒 **If you complete your current order:**\n", cartTotal, p.Tier)
	}
	b.WriteString("\nWould you like me to apply any available discounts or show you how to earn more points?")

	return workers.Result{
		Content: b.String(),
		Data: map[string]any{
			"loyalty_profile":   p,
			"available_coupons": coupons,
			"tier_progress":     progress,
			"cart_total":        cartTotal,
		},
		Confidence: 0.9,
	}, nil
}

func (w *Worker) applyDiscount(ctx context.Context, rec *conversation.Record, p *services.LoyaltyProfile) (workers.Result, error) {
	if len(rec.Cart) == 0 {
		return workers.Result{
			Content:    "You need items in your cart to apply loyalty discounts. Would you like me to show you some products first?",
			Data:       map[string]any{"empty_cart": true},
			Confidence: 0.9,
		}, nil
	}
	if !p.Found {
		return workers.Result{
			Content:    "You're not enrolled in our loyalty program yet. Joining is free and you can start earning points immediately! Would you like to join?",
			Data:       map[string]any{"not_enrolled": true},
			Confidence: 0.8,
		}, nil
	}
	coupons, err := w.loyalty.AvailableCoupons(workers.DB(ctx), rec.UserID)
	if err != nil {
		return workers.Result{}, err
	}
	cartTotal := pricing.Round2(rec.CartTotal())
	tierDiscount := pricing.TierDiscount(cartTotal, p.Tier)
	plan := BestDiscountStrategy(cartTotal, p.Tier, p.Points, coupons)

	var b strings.Builder
	b.WriteString("💎 **Loyalty Discount Analysis**\n\n")
	fmt.Fprintf(&b, "**Current Tier:** %s\n", p.Tier.Title())
	fmt.Fprintf(&b, "**Cart Total:** %s\n\n", pricing.FormatCurrency(cartTotal))
	if tierDiscount > 0 {
		b.WriteString("✅ **Automatic Tier Discount:**\n")
		fmt.Fprintf(&b, "• %s member discount: %.0f%%\n", p.Tier.Title(), pricing.DiscountRate(p.Tier)*100)
		fmt.Fprintf(&b, "• Savings: %s\n\n", pricing.FormatCurrency(tierDiscount))
	}
	if redeemable := pricing.MaxRedeemable(p.Points, cartTotal); redeemable >= pricing.MinRedeemPoints {
		b.WriteString("🎯 **Point Redemption Options:**\n")
		fmt.Fprintf(&b, "• You have %s points available\n", commaInt(p.Points))
		fmt.Fprintf(&b, "• Redeem up to %s points for %s off\n", commaInt(redeemable), pricing.FormatCurrency(pricing.RedemptionValue(redeemable)))
		fmt.Fprintf(&b, "• That's %d points = $1 off\n\n", pricing.PointsPerDollar)
	}
	if plan != nil {
		b.WriteString("💡 **Recommended Strategy:**\n")
		fmt.Fprintf(&b, "• %s\n", plan.Description)
		fmt.Fprintf(&b, "• Total savings: %s\n\n", pricing.FormatCurrency(plan.TotalSavings))
	}
	if len(coupons) > 0 {
		b.WriteString("🎁 **Additional Coupons Available:**\n")
		for i, c := range coupons {
			if i == 2 {
				break
			}
			fmt.Fprintf(&b, "• %s: %s\n", c.Code, c.Description)
		}
		b.WriteString("\n")
	}
	newTotal := pricing.Round2(cartTotal - tierDiscount)
	fmt.Fprintf(&b, "**New Total:** %s\n\n", pricing.FormatCurrency(newTotal))
	b.WriteString("Would you like me to apply the recommended discounts?")

	data := map[string]any{
		"cart_total":        cartTotal,
		"tier_discount":     tierDiscount,
		"loyalty_profile":   p,
		"available_coupons": coupons,
		"new_total":         newTotal,
	}
	if plan != nil {
		data["best_strategy"] = plan
		if advice := w.advise(ctx, rec, p, cartTotal, len(coupons), plan); advice != "" {
			data["loyalty_advice"] = advice
		}
	}
	return workers.Result{Content: b.String(), Data: data, Confidence: 0.8}, nil
}

// BestDiscountStrategy lists every applicable discount and sums their savings. It returns nil
// for an empty cart or when nothing applies.
func BestDiscountStrategy(cartTotal float64, tier pricing.Tier, points int, coupons []services.Coupon) *DiscountPlan {
	if cartTotal <= 0 {
		return nil
	}
	var strategies []Strategy
	if s := pricing.TierDiscount(cartTotal, tier); s > 0 {
		strategies = append(strategies, Strategy{Type: "tier_discount", Description: tier.Title() + " member discount", Savings: s})
	}
	if n := pricing.MaxRedeemable(points, cartTotal); n >= pricing.MinRedeemPoints {
		strategies = append(strategies, Strategy{Type: "point_redemption", Description: fmt.Sprintf("Redeem %d points", n), Savings: pricing.RedemptionValue(n)})
	}
	var best *services.Coupon
	var bestSavings float64
	for i := range coupons {
		if s := coupons[i].Savings(cartTotal); s > bestSavings {
			best, bestSavings = &coupons[i], s
		}
	}
	if best != nil {
		strategies = append(strategies, Strategy{Type: "coupon", Description: "Apply " + best.Code, Savings: bestSavings})
	}
	if len(strategies) == 0 {
		return nil
	}

	top := strategies[0]
	var total float64
	for _, s := range strategies {
		total += s.Savings
		if s.Savings > top.Savings {
			top = s
		}
	}
	total = pricing.Round2(total)
	return &DiscountPlan{
		Description:  "Apply " + strings.ReplaceAll(top.Type, "_", " "),
		TotalSavings: total,
		NewTotal:     pricing.Round2(cartTotal - total),
		Strategies:   strategies,
	}
}

// advise asks the model how to use the plan. Any failure yields "".
func (w *Worker) advise(ctx context.Context, rec *conversation.Record, p *services.LoyaltyProfile, orderTotal float64, coupons int, plan *DiscountPlan) string {
	if w.llm == nil {
		return ""
	}
	in := prompts.Input{
		LoyaltyTier:      string(p.Tier),
		LoyaltyPoints:    p.Points,
		TotalSpent:       p.TotalSpent,
		AvailableCoupons: coupons,
		OrderTotal:       orderTotal,
	}
	for _, it := range rec.Cart {
		in.CartItems = append(in.CartItems, prompts.CartLine{Name: it.Name, Quantity: it.Quantity, Price: it.UnitPrice, LineTotal: it.LineTotal()})
	}
	for _, s := range plan.Strategies {
		in.Opportunities = append(in.Opportunities, prompts.Opportunity{Description: s.Description, Savings: s.Savings})
	}
	pr, err := prompts.Build(prompts.LoyaltyAgent, in)
	if err != nil {
		return ""
	}
	obj, err := w.llm.GenerateJSON(ctx, pr.System, pr.User)
	if err != nil {
		w.log.Debug("loyalty advice unavailable", "error", err)
		return ""
	}
	return strings.TrimSpace(llm.String(obj, "message"))
}

func (w *Worker) redeem(ctx context.Context, rec *conversation.Record, p *services.LoyaltyProfile) (workers.Result, error) {
	if !p.Found {
		return workers.Result{
			Content:    "You're not enrolled in our loyalty program yet. Would you like to join? It's free and you can start earning points immediately!",
			Data:       map[string]any{"not_enrolled": true},
			Confidence: 0.8,
		}, nil
	}
	if short := pricing.PointsShortfall(p.Points); short > 0 {
		return workers.Result{
			Content: fmt.Sprintf("You currently have %d points, but you need at least %d points to redeem, so you need %d more points. Keep shopping to earn more points!", p.Points, pricing.MinRedeemPoints, short),
			Data: map[string]any{
				"current_points":   p.Points,
				"minimum_required": pricing.MinRedeemPoints,
				"shortage":         short,
			},
			Confidence: 0.9,
		}, nil
	}

	cartTotal := pricing.Round2(rec.CartTotal())
	limit := p.Points
	if cartTotal > 0 {
		limit = pricing.MaxRedeemable(p.Points, cartTotal)
	}
	if limit < pricing.MinRedeemPoints {
		return cartTooSmall(p, cartTotal, limit), nil
	}
	if n, ok := requestedPoints(rec); ok {
		return w.redeemAmount(ctx, rec, p, n, limit)
	}

	options := RedemptionOptions(p.Points, limit)
	var b strings.Builder
	b.WriteString("🎯 **Points Redemption**\n\n")
	fmt.Fprintf(&b, "**Your Balance:** %s points\n", commaInt(p.Points))
	if cartTotal > 0 {
		fmt.Fprintf(&b, "**Cart Total:** %s\n", pricing.FormatCurrency(cartTotal))
	}
	fmt.Fprintf(&b, "**Current Tier:** %s\n\n", p.Tier.Title())
	b.WriteString("**Choose Your Redemption:**\n\n")
	for i, o := range options {
		fmt.Fprintf(&b, "%d. **%s points** → %s off\n", i+1, commaInt(o.Points), pricing.FormatCurrency(o.Value))
		fmt.Fprintf(&b, "   %s\n\n", o.Description)
	}
	if p.Tier == pricing.TierBronze || p.Tier == pricing.TierSilver {
		if next, ok := pricing.NextTier(p.Tier); ok {
			fmt.Fprintf(&b, "💡 **Pro Tip:** Consider saving points to reach %s tier for better discounts!\n\n", next.Tier.Title())
		}
	}
	b.WriteString("Which redemption amount would you like to use?")

	return workers.Result{
		Content: b.String(),
		Data: map[string]any{
			"points_balance":   p.Points,
			"redemption_tiers": options,
			"cart_total":       cartTotal,
			"current_tier":     string(p.Tier),
		},
		Confidence: 0.9,
	}, nil
}

// cartTooSmall answers when the cart caps redemption below the minimum even though the
// balance would cover it.
func cartTooSmall(p *services.LoyaltyProfile, cartTotal float64, limit int) workers.Result {
	return workers.Result{
		Content: fmt.Sprintf("You have %s points, but your cart total of %s is too small to redeem against. Redemptions start at %d points (%s off) and can't exceed the cart total. Add a bit more to your cart and I can apply your points!",
			commaInt(p.Points), pricing.FormatCurrency(cartTotal), pricing.MinRedeemPoints, pricing.FormatCurrency(pricing.RedemptionValue(pricing.MinRedeemPoints))),
		Data: map[string]any{
			"points_balance":   p.Points,
			"cart_total":       cartTotal,
			"max_redeemable":   limit,
			"minimum_required": pricing.MinRedeemPoints,
			"cart_too_small":   true,
		},
		Confidence: 0.9,
	}
}

func (w *Worker) redeemAmount(ctx context.Context, rec *conversation.Record, p *services.LoyaltyProfile, n, limit int) (workers.Result, error) {
	if n < pricing.MinRedeemPoints || n > limit {
		return workers.Result{
			Content: fmt.Sprintf("I can redeem between %d and %s points for you right now. How many points would you like to use?", pricing.MinRedeemPoints, commaInt(limit)),
			Data: map[string]any{
				"requested_points": n,
				"max_redeemable":   limit,
			},
			Confidence: 0.8,
		}, nil
	}
	updated, err := w.loyalty.DeductPoints(workers.DB(ctx), rec.UserID, n)
	if errors.Is(err, pkgerrors.ErrInvalidArgument) {
		return workers.Result{
			Content:    fmt.Sprintf("It looks like your balance changed and %s points are no longer available. Please check your balance and try again.", commaInt(n)),
			Data:       map[string]any{"requested_points": n},
			Confidence: 0.7,
		}, nil
	}
	if err != nil {
		return workers.Result{}, err
	}
	if rec.Customer != nil {
		rec.Customer.LoyaltyPoints = updated.Points
	}
	value := pricing.RedemptionValue(n)
	w.log.Info("points redeemed", "user_id", rec.UserID, "points", n, "value", value)
	return workers.Result{
		Content: fmt.Sprintf("✅ Redeemed **%s points** for %s off your order.\n\n**Remaining Balance:** %s points\n\nIs there anything else I can help you with?",
			commaInt(n), pricing.FormatCurrency(value), commaInt(updated.Points)),
		Data: map[string]any{
			"points_redeemed":  n,
			"redemption_value": value,
			"points_balance":   updated.Points,
		},
		Confidence: 0.9,
	}, nil
}

// RedemptionOptions lists the fixed redemption steps plus the maximum, keeping only those the
// balance covers.
func RedemptionOptions(balance, max int) []RedemptionOption {
	steps := []RedemptionOption{
		{Points: 100, Description: "Small redemption"},
		{Points: 250, Description: "Medium redemption"},
		{Points: 500, Description: "Large redemption"},
	}
	var out []RedemptionOption
	for _, s := range steps {
		if s.Points <= balance && s.Points <= max {
			s.Value = pricing.RedemptionValue(s.Points)
			out = append(out, s)
		}
	}
	if max >= pricing.MinRedeemPoints && max <= balance && (len(out) == 0 || out[len(out)-1].Points != max) {
		out = append(out, RedemptionOption{Points: max, Value: pricing.RedemptionValue(max), Description: "Maximum redemption"})
	}
	return out
}

func requestedPoints(rec *conversation.Record) (int, bool) {
	m := redeemAmountRe.FindStringSubmatch(rec.LatestUserText())
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
	if err != nil {
		return 0, false
	}
	return n, true
}

func tierInfo(p *services.LoyaltyProfile) workers.Result {
	current := p.Tier
	var b strings.Builder
	b.WriteString("🏆 **Loyalty Tier Information**\n\n")
	next, hasNext := pricing.NextTier(current)
	for _, spec := range pricing.Ladder() {
		marker := "⬜ "
		if spec.Tier == current {
			marker = "✅ "
		}
		fmt.Fprintf(&b, "%s**%s Tier:**\n", marker, spec.Tier.Title())
		fmt.Fprintf(&b, "• Minimum spend: %s\n", pricing.FormatCurrency(spec.MinSpend))
		fmt.Fprintf(&b, "• Benefits: %s\n", strings.Join(spec.Requirement, ", "))
		if spec.Tier == current || (hasNext && spec.Tier == next.Tier) {
			if p.TotalSpent < spec.MinSpend {
				pct := p.TotalSpent / spec.MinSpend * 100
				fmt.Fprintf(&b, "• Your progress: %.1f%% (%s to go)\n", pct, pricing.FormatCurrency(spec.MinSpend-p.TotalSpent))
			} else {
				b.WriteString("• You've reached this tier! 🎉\n")
			}
		}
		b.WriteString("\n")
	}
	b.WriteString("💰 **How to Earn Points:**\n")
	b.WriteString("• 1 point per $1 spent (base rate)\n")
	b.WriteString("• Silver: 1.25x points\n• Gold: 1.5x points\n• Platinum: 2x points\n\n")
	b.WriteString("🎁 **Current Promotions:**\n")
	b.WriteString("• Double points on select categories\n")
	b.WriteString("• Birthday month bonus: 500 points\n")
	b.WriteString("• Referral bonus: 200 points per friend\n\n")
	if hasNext {
		fmt.Fprintf(&b, "Ready to level up? You're %s away from %s!", pricing.FormatCurrency(next.MinSpend-p.TotalSpent), next.Tier.Title())
	}

	return workers.Result{
		Content: strings.TrimRight(b.String(), "\n"),
		Data: map[string]any{
			"current_tier":  string(current),
			"total_spent":   p.TotalSpent,
			"tier_progress": pricing.TierProgress(current, p.TotalSpent),
		},
		Confidence: 0.9,
	}
}

func earningOpportunities(rec *conversation.Record, p *services.LoyaltyProfile) workers.Result {
	var b strings.Builder
	b.WriteString("💰 **Ways to Earn Loyalty Points**\n\n")
	b.WriteString("🛒 **Shopping:**\n")
	b.WriteString("• Earn points on every purchase\n")
	b.WriteString("• Bronze: 1 point per $1\n• Silver: 1.25 points per $1\n• Gold: 1.5 points per $1\n• Platinum: 2 points per $1\n\n")
	b.WriteString("🎁 **Bonus Point Opportunities:**\n")
	b.WriteString("• Write product reviews: 50 points per review\n")
	b.WriteString("• Refer a friend: 200 points\n")
	b.WriteString("• Follow us on social media: 100 points\n")
	b.WriteString("• Complete your profile: 150 points\n")
	b.WriteString("• Birthday bonus: 500 points (once per year)\n")
	b.WriteString("• First purchase: 100 points bonus\n\n")
	b.WriteString("🌟 **Current Promotions:**\n")
	b.WriteString("• Weekend warrior: Double points on weekends\n")
	b.WriteString("• Category bonus: 2x points on electronics this month\n")
	b.WriteString("• New customer special: 3x points on first order\n\n")
	b.WriteString("💡 **Maximize Your Earnings:**\n")
	b.WriteString("• Shop during double point promotions\n")
	b.WriteString("• Complete your profile for bonus points\n")
	b.WriteString("• Leave reviews for products you've purchased\n")
	b.WriteString("• Refer friends and family\n")
	b.WriteString("• Follow us for exclusive offers\n")

	var cartTotal float64
	if len(rec.Cart) > 0 {
		cartTotal = pricing.Round2(rec.CartTotal())
		writeCartPotential(&b, "\n🛒 **Current Cart Potential:**\n", cartTotal, p.Tier)
	}
	b.WriteString("\nStart earning today with your next purchase!")

	return workers.Result{
		Content: b.String(),
		Data: map[string]any{
			"current_tier": string(p.Tier),
			"cart_total":   cartTotal,
		},
		Confidence: 0.9,
	}
}

func assist(p *services.LoyaltyProfile) workers.Result {
	if !p.Found {
		var b strings.Builder
		b.WriteString("🎯 **Loyalty Program Overview**\n\n")
		b.WriteString("Our loyalty program is free to join and helps you save money while shopping!\n\n")
		b.WriteString("**Benefits include:**\n")
		b.WriteString("• Earn points on every purchase\n• Exclusive member discounts\n• Early access to sales\n• Birthday bonuses\n• Free shipping on orders over $50\n\n")
		b.WriteString("**How it works:**\n")
		b.WriteString("1. Join for free\n2. Shop and earn 1+ points per $1\n3. Redeem points for discounts\n4. Unlock better benefits as you spend more\n\n")
		b.WriteString("Would you like me to help you check your current status or show you how to earn more points?")
		return workers.Result{Content: b.String(), Data: map[string]any{"not_enrolled": true}, Confidence: 0.8}
	}
	var b strings.Builder
	b.WriteString("👋 **Loyalty Program Help**\n\n")
	fmt.Fprintf(&b, "**Your Status:** %s Member (%s points)\n\n", p.Tier.Title(), commaInt(p.Points))
	b.WriteString("I can help you with:\n\n")
	b.WriteString("• 🏆 Check your loyalty status and progress\n")
	b.WriteString("• 💰 Apply loyalty discounts to your cart\n")
	b.WriteString("• 🎯 Redeem points for discounts\n")
	b.WriteString("• 📈 Learn about tier upgrades\n")
	b.WriteString("• 💡 Find ways to earn more points\n\n")
	b.WriteString("What would you like to know about your loyalty benefits?")
	return workers.Result{
		Content:    b.String(),
		Data:       map[string]any{"loyalty_profile": p, "assistance_provided": true},
		Confidence: 0.8,
	}
}

func writeCartPotential(b *strings.Builder, heading string, cartTotal float64, tier pricing.Tier) {
	base := pricing.PointsEarned(cartTotal, pricing.TierBronze)
	earned := pricing.PointsEarned(cartTotal, tier)
	b.WriteString(heading)
	fmt.Fprintf(b, "• You'll earn %d points", earned)
	if earned > base {
		fmt.Fprintf(b, " (%d base + %d bonus)", base, earned-base)
	}
	fmt.Fprintf(b, "\n• That's worth %s in future discounts!\n", pricing.FormatCurrency(pricing.RedemptionValue(earned)))
}

func commaInt(n int) string {
	s := strconv.Itoa(n)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var out []byte
	for i := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, s[i])
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}
