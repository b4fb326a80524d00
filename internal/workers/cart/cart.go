package cart

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/yungbote/salesagent-backend/internal/conversation"
	"github.com/yungbote/salesagent-backend/internal/platform/llm"
	"github.com/yungbote/salesagent-backend/internal/platform/logger"
	"github.com/yungbote/salesagent-backend/internal/platform/prompts"
	"github.com/yungbote/salesagent-backend/internal/pricing"
	"github.com/yungbote/salesagent-backend/internal/services"
	"github.com/yungbote/salesagent-backend/internal/workers"
)

const Name = "cart"

type Action string

const (
	ActionAdd      Action = "add_item"
	ActionUpdate   Action = "update_item"
	ActionRemove   Action = "remove_item"
	ActionView     Action = "view_cart"
	ActionCheckout Action = "checkout"
	ActionClear    Action = "clear_cart"
	ActionAssist   Action = "provide_assistance"
)

// ErrorMessage is the reply when a cart action fails outright.
const ErrorMessage = "I'm having trouble managing your cart right now. Please try again or contact support if the problem persists."

// Checked in order; update and remove come before checkout so "remove all" never checks out.
var actionRules = []workers.Rule[Action]{
	{Label: ActionAdd, Patterns: []string{"add", "buy", "purchase", "get", "order", "add to cart", "put in cart", "add it"}},
	{Label: ActionUpdate, Patterns: []string{"change", "update", "modify", "increase", "decrease", "quantity", "qty", "more", "less", "remove one"}},
	{Label: ActionRemove, Patterns: []string{"remove", "delete", "cancel", "don't want", "remove from cart"}},
	{Label: ActionCheckout, Patterns: []string{"checkout", "buy now", "purchase now", "complete order", "proceed to payment", "ready to buy", "finalize"}},
	{Label: ActionView, Patterns: []string{"show cart", "view cart", "cart total", "what's in my cart", "my cart", "cart contents", "check cart"}},
	{Label: ActionClear, Patterns: []string{"clear cart", "empty cart", "remove all", "start over"}},
}

var cartWords = []string{"cart", "order", "total", "checkout", "buy", "purchase"}

var (
	addQuantityRe = regexp.MustCompile(`(?i)(\d+)\s*(?:x|pcs?|pieces?|units?)`)

	updateQuantityRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)change\s+(?:qty|quantity)\s+to\s+(\d+)`),
		regexp.MustCompile(`(?i)update\s+to\s+(\d+)`),
		regexp.MustCompile(`(?i)set\s+quantity\s+to\s+(\d+)`),
		regexp.MustCompile(`(?i)(\d+)\s+(?:more|less|fewer)`),
	}
)

type Worker struct {
	log      *logger.Logger
	catalog  services.CatalogService
	carts    services.CartService
	resolver ProductResolver
	llm      llm.Client
	taxRate  float64
}

// New builds the cart worker. resolver defaults to a KeywordResolver over catalog; client may
// be nil, in which case the cart view skips the model summary.
func New(baseLog *logger.Logger, catalog services.CatalogService, carts services.CartService, resolver ProductResolver, client llm.Client, taxRate float64) *Worker {
	if resolver == nil {
		resolver = NewKeywordResolver(catalog)
	}
	if taxRate <= 0 {
		taxRate = pricing.DefaultTaxRate
	}
	return &Worker{
		log:      baseLog.With("worker", Name),
		catalog:  catalog,
		carts:    carts,
		resolver: resolver,
		llm:      client,
		taxRate:  taxRate,
	}
}

func (w *Worker) Name() string { return Name }

func (w *Worker) Process(ctx context.Context, rec *conversation.Record) (workers.Result, error) {
	action := DetermineAction(rec)
	w.log.Debug("cart action", "action", action, "session_id", rec.SessionID)

	var (
		res workers.Result
		err error
	)
	switch action {
	case ActionAdd:
		res, err = w.addItem(ctx, rec)
	case ActionUpdate:
		res, err = w.updateItem(ctx, rec)
	case ActionRemove:
		res, err = w.removeItem(ctx, rec)
	case ActionView:
		res, err = w.viewCart(ctx, rec)
	case ActionCheckout:
		res = w.checkout(rec)
	case ActionClear:
		res, err = w.clearCart(ctx, rec)
	default:
		res = w.assist(rec)
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return workers.Result{}, ctxErr
		}
		w.log.Error("cart action failed", "action", action, "error", err)
		res = workers.Result{
			Content:    failureMessage(action),
			Data:       map[string]any{"error": err.Error()},
			Confidence: 0.1,
		}
	}
	if res.Data == nil {
		res.Data = map[string]any{}
	}
	res.Data["cart_action"] = string(action)
	res.Data["cart_items_count"] = rec.CartItemsCount()
	return res, nil
}

// DetermineAction classifies the latest user message into a cart action.
func DetermineAction(rec *conversation.Record) Action {
	text := rec.LatestUserText()
	if text == "" {
		return ActionAssist
	}
	if a, ok := workers.Match(text, actionRules); ok {
		if a == ActionUpdate && workers.ContainsAny(text, "remove", "delete") {
			return ActionRemove
		}
		return a
	}
	if len(rec.Cart) > 0 && workers.ContainsAny(text, cartWords...) {
		return ActionView
	}
	return ActionAdd
}

func (w *Worker) addItem(ctx context.Context, rec *conversation.Record) (workers.Result, error) {
	msg, _ := rec.LatestUserMessage()
	ref, ok, err := w.resolver.Resolve(ctx, msg.Content)
	if err != nil {
		return workers.Result{}, err
	}
	if !ok {
		return workers.Result{
			Content:    "I'd be happy to add an item to your cart! Could you please specify which product you'd like to add? You can mention the product name or ID.",
			Data:       map[string]any{"clarification_needed": true},
			Confidence: 1.0,
		}, nil
	}

	p, err := w.catalog.GetByID(workers.DB(ctx), ref.ProductID)
	if err != nil {
		return workers.Result{}, err
	}
	if p == nil {
		return workers.Result{
			Content:    fmt.Sprintf("I couldn't find the product '%s'. Could you please check the product name or ID and try again?", orDefault(ref.Name, "Unknown")),
			Data:       map[string]any{"product_not_found": true, "searched_product": ref.ProductID},
			Confidence: 0.9,
		}, nil
	}

	item := conversation.CartItem{
		ProductID: p.ProductID,
		Name:      orDefault(p.Name, "Unknown Product"),
		Quantity:  extractQuantity(msg.Content),
		UnitPrice: p.Price,
	}
	if !hasLine(rec, item) && len(rec.Cart) >= conversation.MaxCartItems {
		return workers.Result{
			Content:    fmt.Sprintf("Your cart already holds the maximum of %d different items. Please remove something before adding %s.", conversation.MaxCartItems, item.Name),
			Data:       map[string]any{"cart_full": true},
			Confidence: 0.9,
		}, nil
	}
	if err := w.carts.UpsertLine(workers.DB(ctx), rec.UserID, item); err != nil {
		return workers.Result{}, err
	}
	if err := rec.AddCartItem(item); err != nil {
		return workers.Result{}, err
	}

	metrics := pricing.CartMetrics(rec.CartLines())
	totals := pricing.CheckoutTotals(metrics.Subtotal, rec.Tier(), w.taxRate)

	var b strings.Builder
	fmt.Fprintf(&b, "✅ Added **%s** to your cart!\n\n", item.Name)
	b.WriteString(pricing.FormatCartSummary(metrics, totals))
	b.WriteString("\n\nWhat would you like to do next?")

	return workers.Result{
		Content: b.String(),
		Data: map[string]any{
			"added_item": map[string]any{
				"product_id": item.ProductID,
				"name":       item.Name,
				"quantity":   item.Quantity,
				"price":      item.UnitPrice,
			},
			"cart_metrics":   metrics,
			"totals":         totals,
			"total_with_tax": totals.Total,
		},
		Confidence: 0.9,
	}, nil
}

func (w *Worker) updateItem(ctx context.Context, rec *conversation.Record) (workers.Result, error) {
	msg, _ := rec.LatestUserMessage()
	qty, ok := extractUpdateQuantity(msg.Content)
	if !ok {
		return workers.Result{
			Content:    "I'd be happy to update your cart! Could you please specify which item you want to change and the new quantity?",
			Data:       map[string]any{"clarification_needed": true},
			Confidence: 1.0,
		}, nil
	}

	target, found := namedLine(rec, msg.Content)
	if !found {
		switch len(rec.Cart) {
		case 0:
			return workers.Result{
				Content:    "I couldn't find that item in your cart. Would you like to see what's currently in your cart?",
				Data:       map[string]any{"item_not_in_cart": true},
				Confidence: 0.9,
			}, nil
		case 1:
			target = rec.Cart[0]
		default:
			return workers.Result{
				Content:    "Which item would you like to change to " + strconv.Itoa(qty) + "?\n\n" + numberedLines(rec.Cart),
				Data:       map[string]any{"clarification_needed": true, "cart_items": lineRefs(rec.Cart)},
				Confidence: 1.0,
			}, nil
		}
	}

	if err := w.carts.SetQuantity(workers.DB(ctx), rec.UserID, target.ProductID, target.Color, target.Size, qty); err != nil {
		return workers.Result{}, err
	}
	rec.SetCartQuantity(target.ProductID, target.Color, target.Size, qty)
	metrics := pricing.CartMetrics(rec.CartLines())

	var b strings.Builder
	fmt.Fprintf(&b, "✅ Updated **%s** quantity to %d\n\n", target.Name, qty)
	writeCartState(&b, rec, metrics)
	b.WriteString("\n\nWhat would you like to do next?")

	return workers.Result{
		Content: b.String(),
		Data: map[string]any{
			"updated_item": map[string]any{
				"product_id":   target.ProductID,
				"old_quantity": target.Quantity,
				"new_quantity": qty,
			},
			"cart_metrics": metrics,
		},
		Confidence: 0.9,
	}, nil
}

func (w *Worker) removeItem(ctx context.Context, rec *conversation.Record) (workers.Result, error) {
	msg, _ := rec.LatestUserMessage()
	target, found := namedLine(rec, msg.Content)
	if !found {
		switch len(rec.Cart) {
		case 0:
			return workers.Result{
				Content:    "Your cart is already empty. Would you like to browse our products instead?",
				Data:       map[string]any{"empty_cart": true},
				Confidence: 1.0,
			}, nil
		case 1:
			target = rec.Cart[0]
		default:
			return workers.Result{
				Content:    "I'd be happy to remove an item from your cart! Which item would you like to remove?\n\n" + numberedLines(rec.Cart),
				Data:       map[string]any{"clarification_needed": true, "cart_items": lineRefs(rec.Cart)},
				Confidence: 1.0,
			}, nil
		}
	}

	if err := w.carts.SetQuantity(workers.DB(ctx), rec.UserID, target.ProductID, target.Color, target.Size, 0); err != nil {
		return workers.Result{}, err
	}
	rec.RemoveCartItem(target.ProductID, target.Color, target.Size)
	metrics := pricing.CartMetrics(rec.CartLines())

	var b strings.Builder
	fmt.Fprintf(&b, "✅ Removed **%s** from your cart.\n\n", target.Name)
	writeCartState(&b, rec, metrics)
	b.WriteString("\n\nIs there anything else I can help you with?")

	return workers.Result{
		Content: b.String(),
		Data: map[string]any{
			"removed_item": map[string]any{
				"product_id": target.ProductID,
				"name":       target.Name,
				"quantity":   target.Quantity,
			},
			"cart_metrics": metrics,
		},
		Confidence: 0.9,
	}, nil
}

func (w *Worker) viewCart(ctx context.Context, rec *conversation.Record) (workers.Result, error) {
	stored, err := w.carts.Get(workers.DB(ctx), rec.UserID)
	if err != nil {
		return workers.Result{}, err
	}
	// Any count mismatch resyncs the whole cart from storage.
	if len(stored) != len(rec.Cart) {
		rec.ReplaceCart(stored)
	}
	if len(rec.Cart) == 0 {
		return workers.Result{
			Content:    "🛒 Your cart is currently empty.\n\nWould you like me to show you some products to add to your cart?",
			Data:       map[string]any{"empty_cart": true},
			Confidence: 1.0,
		}, nil
	}

	metrics := pricing.CartMetrics(rec.CartLines())
	tier := rec.Tier()
	display := pricing.DisplayDiscount(metrics.Subtotal, tier)
	tax := pricing.Tax(metrics.Subtotal, w.taxRate)

	var b strings.Builder
	b.WriteString("🛒 **Your Cart**\n\n")
	b.WriteString(lineList(rec.Cart))
	if display > 0 {
		fmt.Fprintf(&b, "\n\n💎 **%s Member Benefits:**", tier.Title())
		fmt.Fprintf(&b, "\n• Loyalty discount: -%s", pricing.FormatCurrency(display))
	}
	fmt.Fprintf(&b, "\n\n**Subtotal: %s**", pricing.FormatCurrency(metrics.Subtotal))
	fmt.Fprintf(&b, "\n**Tax (%.0f%%): %s**", w.taxRate*100, pricing.FormatCurrency(tax))
	fmt.Fprintf(&b, "\n\n**Total: %s**", pricing.FormatCurrency(pricing.Round2(metrics.Subtotal+tax)))
	fmt.Fprintf(&b, "\n\nItems: %d | Products: %d", metrics.TotalQuantity, metrics.TotalItems)
	b.WriteString("\n\nWould you like to proceed to checkout or continue shopping?")

	data := map[string]any{
		"cart_items":       rec.Cart,
		"cart_metrics":     metrics,
		"loyalty_benefits": display,
	}
	if summary, suggestions, ok := w.summarize(ctx, rec, metrics, tax, display); ok {
		data["cart_summary"] = summary
		data["suggestions"] = suggestions
	}
	return workers.Result{Content: b.String(), Data: data, Confidence: 1.0}, nil
}

// summarize asks the model for a short cart summary. Failures are ignored.
func (w *Worker) summarize(ctx context.Context, rec *conversation.Record, m pricing.Metrics, tax, discount float64) (string, []string, bool) {
	if w.llm == nil {
		return "", nil, false
	}
	in := prompts.Input{
		LoyaltyTier: string(rec.Tier()),
		Subtotal:    m.Subtotal,
		Tax:         tax,
		Discount:    discount,
		Total:       pricing.Round2(m.Subtotal + tax - discount),
	}
	if rec.Customer != nil {
		in.LoyaltyPoints = rec.Customer.LoyaltyPoints
	}
	for _, it := range rec.Cart {
		in.CartItems = append(in.CartItems, prompts.CartLine{Name: it.Name, Quantity: it.Quantity, Price: it.UnitPrice, LineTotal: it.LineTotal()})
	}
	p, err := prompts.Build(prompts.CartAgent, in)
	if err != nil {
		return "", nil, false
	}
	obj, err := w.llm.GenerateJSON(ctx, p.System, p.User)
	if err != nil {
		w.log.Debug("cart summary unavailable", "error", err)
		return "", nil, false
	}
	var suggestions []string
	if raw, ok := obj["suggestions"].([]any); ok {
		for _, s := range raw {
			if str, ok := s.(string); ok && strings.TrimSpace(str) != "" {
				suggestions = append(suggestions, str)
			}
		}
	}
	return llm.String(obj, "cart_summary"), suggestions, true
}

func (w *Worker) checkout(rec *conversation.Record) workers.Result {
	if len(rec.Cart) == 0 {
		return workers.Result{
			Content:    "Your cart is empty. Please add some items before proceeding to checkout.",
			Data:       map[string]any{"empty_cart": true},
			Confidence: 1.0,
		}
	}
	metrics := pricing.CartMetrics(rec.CartLines())
	totals := pricing.CheckoutTotals(metrics.Subtotal, rec.Tier(), w.taxRate)

	var b strings.Builder
	b.WriteString("🛒 **Checkout Summary**\n\n")
	fmt.Fprintf(&b, "**Items:** %d items (%d products)\n", metrics.TotalQuantity, metrics.TotalItems)
	fmt.Fprintf(&b, "**Subtotal:** %s\n", pricing.FormatCurrency(totals.Subtotal))
	if totals.Discount > 0 {
		fmt.Fprintf(&b, "**Loyalty Discount:** -%s (%s member)\n", pricing.FormatCurrency(totals.Discount), rec.Tier().Title())
	}
	fmt.Fprintf(&b, "**Tax:** %s\n", pricing.FormatCurrency(totals.Tax))
	if totals.Subtotal >= pricing.FreeShippingThreshold {
		b.WriteString("**Shipping:** Free (orders over $50)\n")
	} else {
		b.WriteString("**Shipping:** Calculated at checkout\n")
	}
	fmt.Fprintf(&b, "**Total:** %s\n\n", pricing.FormatCurrency(totals.Total))
	b.WriteString("✅ Ready to complete your purchase?\n\n")
	b.WriteString("I'll redirect you to our secure checkout page where you can:\n")
	b.WriteString("• Enter your shipping address\n")
	b.WriteString("• Choose payment method\n")
	b.WriteString("• Review order details\n")
	b.WriteString("• Apply any additional coupons\n\n")
	b.WriteString("Would you like to proceed to checkout?")

	return workers.Result{
		Content: b.String(),
		Data: map[string]any{
			"checkout_summary": map[string]any{
				"subtotal":         totals.Subtotal,
				"tax":              totals.Tax,
				"loyalty_discount": totals.Discount,
				"total":            totals.Total,
				"items_count":      metrics.TotalQuantity,
			},
			"ready_for_checkout": true,
		},
		Confidence: 0.9,
	}
}

func (w *Worker) clearCart(ctx context.Context, rec *conversation.Record) (workers.Result, error) {
	if err := w.carts.Clear(workers.DB(ctx), rec.UserID); err != nil {
		return workers.Result{}, err
	}
	rec.ClearCart()
	return workers.Result{
		Content:    "✅ Your cart has been cleared.\n\nReady to start fresh? I can help you find products or answer any questions you have!",
		Data:       map[string]any{"cart_cleared": true},
		Confidence: 0.9,
	}, nil
}

func (w *Worker) assist(rec *conversation.Record) workers.Result {
	var b strings.Builder
	if len(rec.Cart) > 0 {
		b.WriteString("I can help you with your cart! Here's what I can do:\n\n")
		b.WriteString("🛒 **Current Items:**\n")
		for i, it := range rec.Cart {
			if i == 3 {
				fmt.Fprintf(&b, "... and %d more items\n", len(rec.Cart)-3)
				break
			}
			fmt.Fprintf(&b, "• %s (x%d) - %s\n", it.Name, it.Quantity, pricing.FormatCurrency(it.LineTotal()))
		}
		b.WriteString("\n**I can help you:**\n")
		b.WriteString("• Add more items\n• Update quantities\n• Remove items\n• Calculate totals\n• Proceed to checkout\n\n")
	} else {
		b.WriteString("I'd be happy to help you with your cart! You can:\n\n")
		b.WriteString("• Ask me to add items to your cart\n• Browse products and get recommendations\n• Check what's in your cart\n\n")
	}
	b.WriteString("What would you like to do?")
	return workers.Result{
		Content:    b.String(),
		Data:       map[string]any{"assistance_provided": true},
		Confidence: 0.8,
	}
}

func failureMessage(a Action) string {
	switch a {
	case ActionAdd:
		return "I encountered an error while adding the item to your cart. Please try again."
	case ActionUpdate:
		return "I encountered an error while updating your cart. Please try again."
	case ActionRemove:
		return "I encountered an error while removing the item from your cart. Please try again."
	case ActionView:
		return "I had trouble loading your cart. Please try again."
	case ActionCheckout:
		return "I encountered an error while preparing your checkout. Please try again."
	case ActionClear:
		return "I encountered an error while clearing your cart. Please try again."
	}
	return ErrorMessage
}

func extractQuantity(text string) int {
	if m := addQuantityRe.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			return n
		}
	}
	return 1
}

func extractUpdateQuantity(text string) (int, bool) {
	for _, re := range updateQuantityRes {
		if m := re.FindStringSubmatch(text); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				return n, true
			}
		}
	}
	return 0, false
}

// namedLine finds the first cart line whose name appears in text.
func namedLine(rec *conversation.Record, text string) (conversation.CartItem, bool) {
	lower := strings.ToLower(text)
	for _, it := range rec.Cart {
		name := strings.ToLower(strings.TrimSpace(it.Name))
		if name != "" && strings.Contains(lower, name) {
			return it, true
		}
	}
	return conversation.CartItem{}, false
}

func hasLine(rec *conversation.Record, item conversation.CartItem) bool {
	for _, it := range rec.Cart {
		if it.ProductID == item.ProductID && it.Color == item.Color && it.Size == item.Size {
			return true
		}
	}
	return false
}

func writeCartState(b *strings.Builder, rec *conversation.Record, m pricing.Metrics) {
	if len(rec.Cart) == 0 {
		b.WriteString("🛒 Your cart is now empty.")
		return
	}
	b.WriteString(lineList(rec.Cart))
	fmt.Fprintf(b, "\n\n**Total: %s**", pricing.FormatCurrency(m.Subtotal))
}

func lineList(items []conversation.CartItem) string {
	lines := make([]string, 0, len(items))
	for _, it := range items {
		lines = append(lines, fmt.Sprintf("• %s (x%d) - %s", it.Name, it.Quantity, pricing.FormatCurrency(it.LineTotal())))
	}
	return strings.Join(lines, "\n")
}

func numberedLines(items []conversation.CartItem) string {
	lines := make([]string, 0, len(items))
	for i, it := range items {
		lines = append(lines, fmt.Sprintf("%d. %s (x%d)", i+1, it.Name, it.Quantity))
	}
	return strings.Join(lines, "\n")
}

func lineRefs(items []conversation.CartItem) []map[string]any {
	out := make([]map[string]any, 0, len(items))
	for _, it := range items {
		out = append(out, map[string]any{"name": it.Name, "product_id": it.ProductID})
	}
	return out
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
