package inventory

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/salesagent-backend/internal/conversation"
	types "github.com/yungbote/salesagent-backend/internal/domain"
	"github.com/yungbote/salesagent-backend/internal/platform/llm"
	"github.com/yungbote/salesagent-backend/internal/platform/logger"
	"github.com/yungbote/salesagent-backend/internal/platform/prompts"
	"github.com/yungbote/salesagent-backend/internal/services"
	"github.com/yungbote/salesagent-backend/internal/workers"
)

const Name = "inventory"

const ErrorMessage = "I'm having trouble checking product availability right now. Please try again or contact support."

const (
	plentyThreshold = 10
	maxStores       = 3

	pickupTimeline = "Same day (within 4 hours)"
)

var (
	productIDRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)product\s+([A-Za-z0-9_-]+)`),
		regexp.MustCompile(`(?i)item\s+([A-Za-z0-9_-]+)`),
		regexp.MustCompile(`(?i)product\s+id[:\s]+([A-Za-z0-9_-]+)`),
		regexp.MustCompile(`(?i)item\s+id[:\s]+([A-Za-z0-9_-]+)`),
	}
	quantityRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(\d+)\s+(?:pcs?|pieces?|units?|items?)`),
		regexp.MustCompile(`(?i)(?:how\s+many|qty|quantity)[:\s]*(\d+)`),
		regexp.MustCompile(`(?i)(\d+)\s+available`),
	}
	deicticRe = regexp.MustCompile(`(?i)\b(?:it|this|the item)\b`)
	digitRe   = regexp.MustCompile(`\d`)
)

// ProductQuery is what the worker understood the customer to be asking about.
type ProductQuery struct {
	ProductID string `json:"product_id"`
	Name      string `json:"product_name,omitempty"`
	Quantity  int    `json:"requested_quantity"`
	// UnknownID is an id named in the message that the catalog does not carry.
	UnknownID string `json:"unknown_id,omitempty"`
}

type FulfillmentOption struct {
	Type         string  `json:"type"`
	Method       string  `json:"method"`
	Timeline     string  `json:"timeline"`
	Cost         float64 `json:"cost"`
	StoreName    string  `json:"store_name,omitempty"`
	StoreAddress string  `json:"store_address,omitempty"`
}

type Status struct {
	ProductID      string                     `json:"product_id"`
	Available      int                        `json:"available_quantity"`
	Warehouse      int                        `json:"warehouse_stock"`
	StoreStock     int                        `json:"store_stock"`
	NearestStores  []services.NearbyStore     `json:"nearest_stores,omitempty"`
	Delivery       *services.DeliveryEstimate `json:"delivery,omitempty"`
	Recommendation string                     `json:"recommendation,omitempty"`
}

type Worker struct {
	log     *logger.Logger
	stock   services.StockService
	catalog services.CatalogService
	llm     llm.Client
}

// New builds the inventory worker. client may be nil.
func New(baseLog *logger.Logger, stock services.StockService, catalog services.CatalogService, client llm.Client) *Worker {
	return &Worker{
		log:     baseLog.With("worker", Name),
		stock:   stock,
		catalog: catalog,
		llm:     client,
	}
}

func (w *Worker) Name() string { return Name }

func (w *Worker) Process(ctx context.Context, rec *conversation.Record) (workers.Result, error) {
	q, err := w.extract(ctx, rec)
	if err != nil {
		return w.failed(ctx, err)
	}
	if q.ProductID == "" && q.UnknownID != "" {
		return unknownProduct(q.UnknownID), nil
	}
	if q.ProductID == "" {
		return missingProduct(rec), nil
	}

	var loc *conversation.Location
	if rec.Customer != nil {
		loc = rec.Customer.Location
	}
	status, product, err := w.gather(ctx, q.ProductID, loc)
	if err != nil {
		return w.failed(ctx, err)
	}
	if q.Name == "" && product != nil {
		q.Name = product.Name
	}
	w.mergeModel(ctx, q, loc, status)

	options := fulfillmentOptions(q, status)
	w.log.Info("inventory checked", "product_id", q.ProductID, "available", status.Available, "options", len(options))

	data := map[string]any{
		"product_info":        q,
		"inventory_status":    status,
		"fulfillment_options": options,
	}
	if loc != nil {
		data["customer_location"] = loc
	}
	return workers.Result{
		Content:    respond(q, status, options),
		Data:       data,
		Confidence: confidence(status, options),
	}, nil
}

func (w *Worker) failed(ctx context.Context, err error) (workers.Result, error) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return workers.Result{}, ctxErr
	}
	w.log.Error("inventory check failed", "error", err)
	return workers.Result{
		Content:    ErrorMessage,
		Data:       map[string]any{"error": err.Error()},
		Confidence: 0.1,
	}, nil
}

// extract finds the product by explicit id, then by a cart line named in the message, then by
// a reference to "it" or "this" when the cart is non-empty. Only tokens carrying a digit count
// as ids, so "item available" names nothing.
func (w *Worker) extract(ctx context.Context, rec *conversation.Record) (ProductQuery, error) {
	q := ProductQuery{Quantity: 1}
	msg, ok := rec.LatestUserMessage()
	if !ok {
		return q, nil
	}
	text := msg.Content
	lower := strings.ToLower(text)

	var unknownID string
ids:
	for _, re := range productIDRes {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			if !digitRe.MatchString(m[1]) {
				continue
			}
			id := strings.ToUpper(m[1])
			p, err := w.catalog.GetByID(workers.DB(ctx), id)
			if err != nil {
				return q, err
			}
			if p != nil {
				q.ProductID, q.Name = p.ProductID, p.Name
				break ids
			}
			if unknownID == "" {
				unknownID = id
			}
		}
	}

	if q.ProductID == "" {
		for _, it := range rec.Cart {
			if n := strings.ToLower(strings.TrimSpace(it.Name)); n != "" && strings.Contains(lower, n) {
				q.ProductID, q.Name, q.Quantity = it.ProductID, it.Name, it.Quantity
				break
			}
		}
	}

	for _, re := range quantityRes {
		if m := re.FindStringSubmatch(text); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
				q.Quantity = n
			}
			break
		}
	}

	if q.ProductID == "" && unknownID == "" && len(rec.Cart) > 0 && deicticRe.MatchString(text) {
		first := rec.Cart[0]
		q.ProductID, q.Name, q.Quantity = first.ProductID, first.Name, first.Quantity
	}
	if q.ProductID == "" {
		q.UnknownID = unknownID
	}
	return q, nil
}

func (w *Worker) gather(ctx context.Context, productID string, loc *conversation.Location) (*Status, *types.Product, error) {
	var (
		stock    *services.StockStatus
		product  *types.Product
		stores   []services.NearbyStore
		delivery *services.DeliveryEstimate
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stock, err = w.stock.CheckStock(workers.DB(gctx), productID)
		return err
	})
	g.Go(func() error {
		var err error
		product, err = w.catalog.GetByID(workers.DB(gctx), productID)
		return err
	})
	g.Go(func() error {
		var err error
		delivery, err = w.stock.EstimateDelivery(workers.DB(gctx), loc, productID)
		return err
	})
	if loc != nil {
		g.Go(func() error {
			var err error
			stores, err = w.stock.NearbyStores(workers.DB(gctx), productID, *loc, services.DefaultStoreRadiusKm)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	if len(stores) > maxStores {
		stores = stores[:maxStores]
	}
	return &Status{
		ProductID:     productID,
		Available:     stock.Available,
		Warehouse:     stock.Warehouse,
		StoreStock:    stock.StoreStock,
		NearestStores: stores,
		Delivery:      delivery,
	}, product, nil
}

// mergeModel lets the model refine the availability figure. A zero or missing figure keeps
// the stored one.
func (w *Worker) mergeModel(ctx context.Context, q ProductQuery, loc *conversation.Location, st *Status) {
	if w.llm == nil {
		return
	}
	in := prompts.Input{
		ProductID: q.ProductID,
		Quantity:  q.Quantity,
		Stock: []prompts.StockLine{
			{Name: "Warehouse", Quantity: st.Warehouse},
			{Name: "Stores", Quantity: st.StoreStock},
		},
	}
	if loc != nil {
		in.Location = locationLabel(*loc)
	}
	p, err := prompts.Build(prompts.InventoryAgent, in)
	if err != nil {
		w.log.Warn("inventory prompt", "error", err)
		return
	}
	obj, err := w.llm.GenerateJSON(ctx, p.System, p.User)
	if err != nil {
		w.log.Debug("inventory analysis unavailable", "error", err)
		return
	}
	if v, ok := llm.Float(obj, "available_quantity"); ok && v > 0 {
		st.Available = int(v)
	}
	st.Recommendation = llm.String(obj, "recommendation")
}

func fulfillmentOptions(q ProductQuery, st *Status) []FulfillmentOption {
	var out []FulfillmentOption
	if st.Available >= q.Quantity && st.Delivery != nil && st.Delivery.Available {
		for _, o := range st.Delivery.Options {
			// Pickup is offered below with the store's address.
			if o.Method == "Store Pickup" {
				continue
			}
			out = append(out, FulfillmentOption{Type: "home_delivery", Method: o.Method, Timeline: o.Timeline, Cost: o.Cost})
		}
	}
	if len(st.NearestStores) > 0 {
		s := st.NearestStores[0]
		out = append(out, FulfillmentOption{
			Type:         "store_pickup",
			Method:       "Store Pickup",
			Timeline:     pickupTimeline,
			StoreName:    orDefault(s.Name, "Nearest Store"),
			StoreAddress: orDefault(s.Address, "Address not available"),
		})
	}
	if len(out) > 0 {
		return out
	}
	if st.Available > 0 {
		return []FulfillmentOption{{Type: "home_delivery", Method: "Standard Shipping", Timeline: "2-3 business days", Cost: services.StandardShippingCost}}
	}
	return []FulfillmentOption{{Type: "backorder", Method: "Backorder", Timeline: "1-2 weeks"}}
}

func respond(q ProductQuery, st *Status, options []FulfillmentOption) string {
	name := orDefault(q.Name, "the product")
	var b strings.Builder
	switch {
	case st.Available >= q.Quantity && st.Available > 0:
		fmt.Fprintf(&b, "Great news! **%s** is in stock! 📦\n\n", name)
		if st.Available >= plentyThreshold {
			fmt.Fprintf(&b, "We have plenty available (%d units in stock).\n\n", st.Available)
		} else {
			fmt.Fprintf(&b, "We have %d units available, which covers your request of %d.\n\n", st.Available, q.Quantity)
		}
		b.WriteString("Here are your fulfillment options:\n\n")
		var pickup *FulfillmentOption
		for i, o := range options {
			cost := "Free"
			if o.Cost > 0 {
				cost = fmt.Sprintf("$%.2f", o.Cost)
			}
			fmt.Fprintf(&b, "• **%s**: %s (%s)\n", o.Method, o.Timeline, cost)
			if o.Type == "store_pickup" && pickup == nil {
				pickup = &options[i]
			}
		}
		if pickup != nil {
			fmt.Fprintf(&b, "\n📍 **Store Pickup**: Available at %s today!", pickup.StoreName)
		}
		fmt.Fprintf(&b, "\n\nWould you like me to add %s to your cart, or do you need more information?", name)
	case st.Available > 0:
		fmt.Fprintf(&b, "**%s** is currently in limited stock. ⚠️\n\n", name)
		fmt.Fprintf(&b, "We currently have %d units available (you requested %d).\n\n", st.Available, q.Quantity)
		if len(options) > 0 {
			b.WriteString("Here's what's available:\n\n")
			for _, o := range options {
				fmt.Fprintf(&b, "• **%s**: %s\n", o.Method, o.Timeline)
			}
			b.WriteString("\nI recommend ordering soon as stock is limited!")
		}
	default:
		fmt.Fprintf(&b, "Unfortunately, **%s** is currently out of stock. 😔\n\n", name)
		for _, o := range options {
			if o.Type == "backorder" {
				fmt.Fprintf(&b, "However, you can place a backorder for %s.\n\n", o.Timeline)
				break
			}
		}
		b.WriteString("Here are some alternatives:\n")
		b.WriteString("• I can notify you when it's back in stock\n")
		b.WriteString("• I can show you similar products that are available\n")
		b.WriteString("• You can check back later for updates\n\n")
		b.WriteString("What would you prefer?")
	}
	return b.String()
}

func confidence(st *Status, options []FulfillmentOption) float64 {
	c := 0.8
	if len(options) > 1 {
		c += 0.1
	}
	if len(st.NearestStores) > 0 {
		c += 0.1
	}
	if st.Available == 0 {
		c -= 0.2
	}
	return workers.Clamp(c, 0.1, 1.0)
}

func missingProduct(rec *conversation.Record) workers.Result {
	if len(rec.Cart) == 0 {
		return workers.Result{
			Content:    "I'd be happy to check product availability for you! Could you please tell me which product you're interested in? You can mention the product name or ID.",
			Data:       map[string]any{"clarification_needed": true},
			Confidence: 1.0,
		}
	}
	var b strings.Builder
	b.WriteString("I can check availability for items in your cart:\n")
	refs := make([]map[string]any, 0, len(rec.Cart))
	for _, it := range rec.Cart {
		fmt.Fprintf(&b, "• %s (x%d)\n", it.Name, it.Quantity)
		refs = append(refs, map[string]any{"name": it.Name, "product_id": it.ProductID})
	}
	b.WriteString("\nWhich item would you like me to check availability for?")
	return workers.Result{
		Content:    b.String(),
		Data:       map[string]any{"cart_items": refs, "clarification_needed": true},
		Confidence: 0.8,
	}
}

func unknownProduct(id string) workers.Result {
	return workers.Result{
		Content:    fmt.Sprintf("I couldn't find a product with ID **%s** in our catalog. Could you double-check the ID, or tell me the product name?", id),
		Data:       map[string]any{"unknown_product_id": id, "clarification_needed": true},
		Confidence: 0.6,
	}
}

func locationLabel(loc conversation.Location) string {
	if strings.TrimSpace(loc.City) != "" {
		return loc.City
	}
	return fmt.Sprintf("%.4f, %.4f", loc.Lat, loc.Lng)
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
