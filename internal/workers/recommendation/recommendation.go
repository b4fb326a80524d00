package recommendation

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/salesagent-backend/internal/conversation"
	"github.com/yungbote/salesagent-backend/internal/data/repos"
	types "github.com/yungbote/salesagent-backend/internal/domain"
	"github.com/yungbote/salesagent-backend/internal/platform/llm"
	"github.com/yungbote/salesagent-backend/internal/platform/logger"
	"github.com/yungbote/salesagent-backend/internal/platform/prompts"
	"github.com/yungbote/salesagent-backend/internal/pricing"
	"github.com/yungbote/salesagent-backend/internal/services"
	"github.com/yungbote/salesagent-backend/internal/workers"
)

const Name = "recommendation"

const (
	ErrorMessage   = "I'm having trouble generating recommendations right now. Let me help you browse our products instead."
	NoMatchMessage = "I'm still learning about your preferences. Let me show you some of our popular products instead!"
)

const (
	candidateLimit     = 20
	promotionLimit     = 10
	maxRecommendations = 5
	browsingWindow     = 5

	fallbackConfidence = 0.6
	modelConfidence    = 0.8
)

var categories = []string{"electronics", "clothing", "books", "home", "sports", "beauty", "toys"}

var priceRe = regexp.MustCompile(`\$(\d+)`)

type SearchParams struct {
	Category string  `json:"category,omitempty"`
	MaxPrice float64 `json:"max_price,omitempty"`
	Featured bool    `json:"featured"`
	Limit    int     `json:"limit"`
}

type Recommendation struct {
	ProductID       string  `json:"product_id"`
	Name            string  `json:"name"`
	Description     string  `json:"description,omitempty"`
	Price           float64 `json:"price"`
	DiscountPercent float64 `json:"discount_applied,omitempty"`
	Reason          string  `json:"reason"`
	Confidence      float64 `json:"confidence"`
}

// SalePrice is the price after the product's own discount.
func (r Recommendation) SalePrice() float64 {
	if r.DiscountPercent <= 0 {
		return r.Price
	}
	return pricing.Round2(r.Price * (1 - r.DiscountPercent/100))
}

type Worker struct {
	log       *logger.Logger
	catalog   services.CatalogService
	customers services.CustomerService
	llm       llm.Client
}

// New builds the recommendation worker. customers is consulted only when the record carries no
// profile; it and client may be nil.
func New(baseLog *logger.Logger, catalog services.CatalogService, customers services.CustomerService, client llm.Client) *Worker {
	return &Worker{
		log:       baseLog.With("worker", Name),
		catalog:   catalog,
		customers: customers,
		llm:       client,
	}
}

func (w *Worker) Name() string { return Name }

func (w *Worker) Process(ctx context.Context, rec *conversation.Record) (workers.Result, error) {
	customer, err := w.customerData(ctx, rec)
	if err != nil {
		return w.failed(ctx, err)
	}
	params := SearchParameters(rec, customer)

	var (
		products   []*types.Product
		promotions []*types.Promotion
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		products, err = w.catalog.Search(workers.DB(gctx), repos.ProductFilter{
			Category: params.Category,
			MaxPrice: params.MaxPrice,
			Featured: params.Featured,
		}, params.Limit)
		return err
	})
	g.Go(func() error {
		var err error
		promotions, err = w.catalog.ActivePromotions(workers.DB(gctx), promotionLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return w.failed(ctx, err)
	}

	recs := w.rank(ctx, rec, customer, products, promotions)
	w.log.Info("recommendations generated", "user_id", rec.UserID, "category", params.Category, "candidates", len(products), "picked", len(recs))

	return workers.Result{
		Content: Format(customer, recs),
		Data: map[string]any{
			"recommendations":   recs,
			"search_parameters": params,
			"products_found":    len(products),
			"promotions_count":  len(promotions),
		},
		Confidence: Confidence(recs, customer),
	}, nil
}

func (w *Worker) failed(ctx context.Context, err error) (workers.Result, error) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return workers.Result{}, ctxErr
	}
	w.log.Error("recommendation failed", "error", err)
	return workers.Result{
		Content:    ErrorMessage,
		Data:       map[string]any{"error": err.Error()},
		Confidence: 0.1,
	}, nil
}

func (w *Worker) customerData(ctx context.Context, rec *conversation.Record) (*conversation.CustomerContext, error) {
	if rec.Customer != nil {
		return rec.Customer, nil
	}
	if w.customers == nil {
		return nil, nil
	}
	return w.customers.Get(workers.DB(ctx), rec.UserID)
}

// SearchParameters derives the catalog query: a category named in the message, then the
// customer's favourite category, then the dominant category of recent browsing, and failing all
// of those the featured list. A "$N" in the message caps the price; the last one wins.
func SearchParameters(rec *conversation.Record, c *conversation.CustomerContext) SearchParams {
	p := SearchParams{Limit: candidateLimit}
	if m, ok := rec.LatestUserMessage(); ok {
		lower := strings.ToLower(m.Content)
		for _, cat := range categories {
			if strings.Contains(lower, cat) {
				p.Category = cat
				break
			}
		}
		if all := priceRe.FindAllStringSubmatch(m.Content, -1); len(all) > 0 {
			if n, err := strconv.Atoi(all[len(all)-1][1]); err == nil {
				p.MaxPrice = float64(n)
			}
		}
	}
	if p.Category == "" && c != nil && len(c.Preferences.FavoriteCategories) > 0 {
		p.Category = c.Preferences.FavoriteCategories[0]
	}
	if p.Category == "" && c != nil {
		p.Category = browsingMode(c.BrowsingHistory)
	}
	if p.Category == "" {
		p.Featured = true
	}
	return p
}

// browsingMode returns the most frequent category among the last few browsed items. Ties go
// to the most recently viewed.
func browsingMode(history []conversation.BrowsedItem) string {
	if len(history) > browsingWindow {
		history = history[len(history)-browsingWindow:]
	}
	counts := map[string]int{}
	best, bestN := "", 0
	for i := len(history) - 1; i >= 0; i-- {
		cat := strings.TrimSpace(history[i].Category)
		if cat == "" {
			continue
		}
		counts[cat]++
	}
	for i := len(history) - 1; i >= 0; i-- {
		cat := strings.TrimSpace(history[i].Category)
		if cat != "" && counts[cat] > bestN {
			best, bestN = cat, counts[cat]
		}
	}
	return best
}

// rank asks the model to pick from the candidates and falls back to the heuristic list when the
// model is unavailable or picks nothing usable.
func (w *Worker) rank(ctx context.Context, rec *conversation.Record, c *conversation.CustomerContext, products []*types.Product, promotions []*types.Promotion) []Recommendation {
	if len(products) == 0 {
		return nil
	}
	if out := w.modelRank(ctx, rec, c, products, promotions); len(out) > 0 {
		return out
	}
	return Fallback(products, tierOf(c))
}

func (w *Worker) modelRank(ctx context.Context, rec *conversation.Record, c *conversation.CustomerContext, products []*types.Product, promotions []*types.Promotion) []Recommendation {
	if w.llm == nil {
		return nil
	}
	in := prompts.Input{
		UserMessage: rec.LatestUserText(),
		LoyaltyTier: string(tierOf(c)),
	}
	if c != nil {
		in.CustomerName = c.Name
		in.PastPurchases = len(c.PastPurchases)
		in.BrowsingHistory = len(c.BrowsingHistory)
		if b, err := json.Marshal(c.Preferences); err == nil {
			in.Preferences = string(b)
		}
	}
	byID := make(map[string]*types.Product, len(products))
	for _, p := range products {
		byID[p.ProductID] = p
		in.Products = append(in.Products, prompts.ProductLine{ID: p.ProductID, Name: p.Name, Description: p.Description, Price: p.Price})
	}
	for _, p := range promotions {
		in.Promotions = append(in.Promotions, prompts.PromotionLine{Name: p.Name, Description: p.Description})
	}
	pr, err := prompts.Build(prompts.RecommendationAgent, in)
	if err != nil {
		w.log.Warn("recommendation prompt", "error", err)
		return nil
	}
	obj, err := w.llm.GenerateJSON(ctx, pr.System, pr.User)
	if err != nil {
		w.log.Debug("model ranking unavailable", "error", err)
		return nil
	}

	var out []Recommendation
	seen := map[string]bool{}
	for _, item := range llm.Objects(obj, "recommendations") {
		id := strings.TrimSpace(llm.String(item, "product_id"))
		p, ok := byID[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		conf, ok := llm.Float(item, "confidence")
		if !ok || conf <= 0 {
			conf = modelConfidence
		}
		r := fromProduct(p, workers.Clamp(conf, 0, 1))
		if reason := strings.TrimSpace(llm.String(item, "reason")); reason != "" {
			r.Reason = reason
		} else {
			r.Reason = heuristicReason(p, tierOf(c))
		}
		out = append(out, r)
		if len(out) == maxRecommendations {
			break
		}
	}
	return out
}

// Fallback tags the first few candidates with a reason driven by tier, featured flag and
// product discount.
func Fallback(products []*types.Product, tier pricing.Tier) []Recommendation {
	n := min(len(products), maxRecommendations)
	out := make([]Recommendation, 0, n)
	for _, p := range products[:n] {
		r := fromProduct(p, fallbackConfidence)
		r.Reason = heuristicReason(p, tier)
		out = append(out, r)
	}
	return out
}

func heuristicReason(p *types.Product, tier pricing.Tier) string {
	switch {
	case p.Featured:
		return "Featured product - limited time offer"
	case p.DiscountPercent > 0:
		return fmt.Sprintf("On sale - %s%% off", trimFloat(p.DiscountPercent))
	case tier.Premium():
		return fmt.Sprintf("Premium pick for %s members", tier)
	default:
		return "Popular choice among customers"
	}
}

func fromProduct(p *types.Product, confidence float64) Recommendation {
	return Recommendation{
		ProductID:       p.ProductID,
		Name:            orDefault(p.Name, "Unknown Product"),
		Description:     p.Description,
		Price:           p.Price,
		DiscountPercent: p.DiscountPercent,
		Confidence:      confidence,
	}
}

// Format renders the customer-facing list.
func Format(c *conversation.CustomerContext, recs []Recommendation) string {
	if len(recs) == 0 {
		return NoMatchMessage
	}
	name := "there"
	if c != nil && strings.TrimSpace(c.Name) != "" {
		name = c.Name
	}
	tier := tierOf(c)

	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s! 👋\n\n", name)
	if tier.Premium() {
		fmt.Fprintf(&b, "As a %s member, I have some exclusive recommendations for you.\n\n", tier)
	} else {
		b.WriteString("Based on your interests, I think you'll love these products.\n\n")
	}
	for i, r := range recs {
		if i > 0 {
			b.WriteString("\n\n")
		}
		price := pricing.FormatCurrency(r.Price)
		if r.DiscountPercent > 0 {
			price = fmt.Sprintf("~~%s~~ %s", price, pricing.FormatCurrency(r.SalePrice()))
		}
		fmt.Fprintf(&b, "%d. **%s** - %s", i+1, r.Name, price)
		if r.Reason != "" {
			fmt.Fprintf(&b, "\n   *%s*", r.Reason)
		}
	}
	b.WriteString("\n\nWould you like more details about any of these products, or shall I show you products in a specific category?")
	return b.String()
}

// Confidence is the mean recommendation confidence plus boosts for purchase history, browsing
// history and stated preferences, capped at 1.
func Confidence(recs []Recommendation, c *conversation.CustomerContext) float64 {
	if len(recs) == 0 {
		return 0.1
	}
	var sum float64
	for _, r := range recs {
		sum += r.Confidence
	}
	conf := sum / float64(len(recs))
	if c != nil {
		if len(c.PastPurchases) > 0 {
			conf += 0.2
		}
		if len(c.BrowsingHistory) > 0 {
			conf += 0.2
		}
		if !c.Preferences.Empty() {
			conf += 0.1
		}
	}
	return math.Round(math.Min(conf, 1.0)*100) / 100
}

func tierOf(c *conversation.CustomerContext) pricing.Tier {
	if c == nil {
		return pricing.TierBronze
	}
	return pricing.ParseTier(string(c.LoyaltyTier))
}

func trimFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
