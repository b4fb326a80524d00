package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/salesagent-backend/internal/data/repos"
	types "github.com/yungbote/salesagent-backend/internal/domain"
	"github.com/yungbote/salesagent-backend/internal/platform/dbctx"
	"github.com/yungbote/salesagent-backend/internal/platform/logger"
	"github.com/yungbote/salesagent-backend/internal/pricing"
	"github.com/yungbote/salesagent-backend/internal/services"
)

const welcomePoints = 100

type Summary struct {
	Products   int                     `json:"products"`
	Stores     int                     `json:"stores"`
	Coupons    int                     `json:"coupons"`
	Promotions int                     `json:"promotions"`
	Customers  int                     `json:"customers"`
	Tiers      map[string]pricing.Tier `json:"tiers"`
}

type product struct {
	id, name, desc, category, brand string
	price, discount                 float64
	warehouse, reserved             int
	featured                        bool
	colors, sizes, tags             []string
}

var catalog = []product{
	{id: "LAPTOP001", name: "Laptop Pro 14", desc: "14-inch laptop with 16GB RAM and all-day battery", category: "electronics", brand: "Apex", price: 1299.99, warehouse: 25, reserved: 3, featured: true, colors: []string{"silver", "space gray"}, tags: []string{"laptop", "work"}},
	{id: "PHONE001", name: "Phone X", desc: "6.1-inch smartphone with triple camera", category: "electronics", brand: "Nova", price: 899.99, discount: 10, warehouse: 40, reserved: 5, colors: []string{"black", "blue"}, tags: []string{"phone", "5g"}},
	{id: "HEADPHONES001", name: "Noise-Cancelling Headphones", desc: "Over-ear wireless headphones with 30h battery", category: "electronics", brand: "Pulse", price: 199.99, warehouse: 8, reserved: 2, colors: []string{"black", "white"}, tags: []string{"audio", "wireless"}},
	{id: "WATCH001", name: "Smart Watch", desc: "Fitness tracking smartwatch with GPS", category: "electronics", brand: "Pulse", price: 249.99, warehouse: 0, featured: true, tags: []string{"wearable", "fitness"}},
	{id: "JACKET001", name: "Rain Jacket", desc: "Packable waterproof jacket", category: "clothing", brand: "Northfold", price: 89.99, discount: 20, warehouse: 60, reserved: 4, colors: []string{"olive", "navy"}, sizes: []string{"S", "M", "L", "XL"}, tags: []string{"outdoor"}},
	{id: "SNEAKER001", name: "Running Sneakers", desc: "Lightweight trainers for daily runs", category: "sports", brand: "Stride", price: 119.99, warehouse: 30, colors: []string{"white", "red"}, sizes: []string{"8", "9", "10", "11"}, tags: []string{"running"}},
	{id: "BOOK001", name: "The Pragmatic Shopper", desc: "A guide to buying less and better", category: "books", brand: "Linden Press", price: 24.99, warehouse: 120, tags: []string{"paperback"}},
	{id: "LAMP001", name: "Desk Lamp", desc: "Dimmable LED desk lamp with USB port", category: "home", brand: "Lumen", price: 39.99, discount: 15, warehouse: 45, reserved: 1, colors: []string{"black"}, tags: []string{"lighting"}},
}

var stores = []*types.Store{
	{StoreID: "NYC01", Name: "Midtown Store", Address: "1 Herald Sq", City: "New York", Phone: "+1-212-555-0101", Latitude: 40.7580, Longitude: -73.9855, IsActive: true},
	{StoreID: "SF01", Name: "Union Square Store", Address: "170 O'Farrell St", City: "San Francisco", Phone: "+1-415-555-0102", Latitude: 37.7880, Longitude: -122.4075, IsActive: true},
	{StoreID: "CHI01", Name: "Loop Store", Address: "111 N State St", City: "Chicago", Phone: "+1-312-555-0103", Latitude: 41.8837, Longitude: -87.6278, IsActive: true},
}

// store -> product -> units on the shelf
var shelves = map[string]map[string]int{
	"NYC01": {"LAPTOP001": 4, "PHONE001": 10, "HEADPHONES001": 3, "JACKET001": 12},
	"SF01":  {"LAPTOP001": 2, "PHONE001": 6, "SNEAKER001": 8, "LAMP001": 5},
	"CHI01": {"PHONE001": 3, "BOOK001": 20, "JACKET001": 6},
}

var coupons = []*types.Coupon{
	{Code: "WELCOME10", Tier: "bronze", Kind: types.CouponPercent, Value: 10, MinOrder: 0, Description: "10% off your order", IsActive: true},
	{Code: "SAVE5", Tier: "bronze", Kind: types.CouponAmount, Value: 5, MinOrder: 25, Description: "$5 off orders over $25", IsActive: true},
	{Code: "SILVER15", Tier: "silver", Kind: types.CouponPercent, Value: 15, MinOrder: 100, Description: "15% off orders over $100", IsActive: true},
	{Code: "FREESHIP", Tier: "silver", Kind: types.CouponAmount, Value: 9.99, MinOrder: 0, Description: "Free standard shipping", IsActive: true},
	{Code: "GOLD20", Tier: "gold", Kind: types.CouponPercent, Value: 20, MinOrder: 150, Description: "20% off orders over $150", IsActive: true},
	{Code: "EXCLUSIVE25", Tier: "gold", Kind: types.CouponAmount, Value: 25, MinOrder: 200, Description: "$25 off orders over $200", IsActive: true},
	{Code: "VIP30", Tier: "platinum", Kind: types.CouponPercent, Value: 30, MinOrder: 200, Description: "30% off orders over $200", IsActive: true},
	{Code: "PLATINUM50", Tier: "platinum", Kind: types.CouponAmount, Value: 50, MinOrder: 300, Description: "$50 off orders over $300", IsActive: true},
}

type customer struct {
	id, name, email, city string
	lat, lng              *float64
	favorites             []string
	purchases             []string // product ids
	browsed               []string
}

func coord(v float64) *float64 { return &v }

var customers = []customer{
	{id: "cust_alice", name: "Alice Johnson", email: "alice@example.com", city: "New York", lat: coord(40.7306), lng: coord(-73.9866), favorites: []string{"books", "home"}, purchases: []string{"BOOK001", "LAMP001"}, browsed: []string{"LAMP001", "BOOK001", "JACKET001"}},
	{id: "cust_bob", name: "Bob Smith", email: "bob@example.com", city: "Chicago", lat: coord(41.8781), lng: coord(-87.6298), favorites: []string{"sports"}, purchases: []string{"SNEAKER001", "JACKET001", "PHONE001"}, browsed: []string{"SNEAKER001"}},
	{id: "cust_carol", name: "Carol Davis", email: "carol@example.com", city: "San Francisco", lat: coord(37.7749), lng: coord(-122.4194), favorites: []string{"electronics"}, purchases: []string{"LAPTOP001", "HEADPHONES001"}, browsed: []string{"WATCH001", "PHONE001"}},
	{id: "cust_dan", name: "Dan Lee", email: "dan@example.com", favorites: []string{"clothing", "electronics"}},
}

// Purchase totals credited through the loyalty service so tiers come out of the ladder.
var spend = map[string]float64{
	"cust_alice": 120,
	"cust_bob":   650,
	"cust_carol": 1800,
	"cust_dan":   3500,
}

// Run loads the demo data set. It is idempotent: profiles are reset before purchases are
// credited again.
func Run(ctx context.Context, db *gorm.DB, baseLog *logger.Logger, now time.Time) (*Summary, error) {
	log := baseLog.With("component", "Seed")
	if now.IsZero() {
		now = time.Now().UTC()
	}
	out := &Summary{Tiers: map[string]pricing.Tier{}}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}

		products := make([]*types.Product, 0, len(catalog))
		levels := make([]*types.InventoryLevel, 0, len(catalog))
		for _, p := range catalog {
			products = append(products, &types.Product{
				ProductID:       p.id,
				Name:            p.name,
				Description:     p.desc,
				Category:        p.category,
				Brand:           p.brand,
				Price:           p.price,
				DiscountPercent: p.discount,
				Stock:           p.warehouse - p.reserved,
				Rating:          4.5,
				Featured:        p.featured,
				IsActive:        true,
				Colors:          jsonOf(p.colors),
				Sizes:           jsonOf(p.sizes),
				Tags:            jsonOf(p.tags),
				CreatedAt:       now,
				UpdatedAt:       now,
			})
			levels = append(levels, &types.InventoryLevel{ProductID: p.id, WarehouseStock: p.warehouse, Reserved: p.reserved, UpdatedAt: now})
		}
		if err := repos.NewProductRepo(tx, log).Upsert(dbc, products); err != nil {
			return fmt.Errorf("products: %w", err)
		}
		inv := repos.NewInventoryRepo(tx, log)
		if err := inv.UpsertLevels(dbc, levels); err != nil {
			return fmt.Errorf("inventory levels: %w", err)
		}
		if err := repos.NewStoreRepo(tx, log).Upsert(dbc, stores); err != nil {
			return fmt.Errorf("stores: %w", err)
		}
		var shelfRows []*types.StoreInventory
		for _, st := range stores {
			for pid, qty := range shelves[st.StoreID] {
				shelfRows = append(shelfRows, &types.StoreInventory{StoreID: st.StoreID, ProductID: pid, Quantity: qty, UpdatedAt: now})
			}
		}
		if err := inv.UpsertStoreInventory(dbc, shelfRows); err != nil {
			return fmt.Errorf("store inventory: %w", err)
		}
		if err := repos.NewCouponRepo(tx, log).Upsert(dbc, coupons); err != nil {
			return fmt.Errorf("coupons: %w", err)
		}
		if err := repos.NewPromotionRepo(tx, log).Upsert(dbc, promotions(now)); err != nil {
			return fmt.Errorf("promotions: %w", err)
		}

		rows := make([]*types.Customer, 0, len(customers))
		for _, c := range customers {
			rows = append(rows, customerRow(c, now))
		}
		if err := repos.NewCustomerRepo(tx, log).Upsert(dbc, rows); err != nil {
			return fmt.Errorf("customers: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	loyalty := services.NewLoyaltyService(db, log, repos.NewCustomerRepo(db, log), repos.NewCouponRepo(db, log), nil, 10*time.Second)
	for _, c := range customers {
		res, err := loyalty.EarnPoints(dbctx.Context{Ctx: ctx}, c.id, spend[c.id])
		if err != nil {
			return nil, fmt.Errorf("credit %s: %w", c.id, err)
		}
		out.Tiers[c.id] = res.Tier
	}

	out.Products = len(catalog)
	out.Stores = len(stores)
	out.Coupons = len(coupons)
	out.Promotions = len(promotions(now))
	out.Customers = len(customers)
	log.Info("seed complete",
		"products", out.Products,
		"stores", out.Stores,
		"coupons", out.Coupons,
		"customers", out.Customers,
	)
	return out, nil
}

func promotions(now time.Time) []*types.Promotion {
	return []*types.Promotion{
		{
			PromotionID:     "PROMO_TECH_WEEK",
			Name:            "Tech Week",
			Description:     "10% off phones and laptops",
			DiscountPercent: 10,
			Category:        "electronics",
			ProductIDs:      jsonOf([]string{"PHONE001", "LAPTOP001"}),
			IsActive:        true,
			StartsAt:        now.Add(-24 * time.Hour),
			EndsAt:          now.Add(14 * 24 * time.Hour),
		},
		{
			PromotionID:     "PROMO_RAINY_DAYS",
			Name:            "Rainy Days",
			Description:     "20% off outerwear",
			DiscountPercent: 20,
			Category:        "clothing",
			ProductIDs:      jsonOf([]string{"JACKET001"}),
			IsActive:        true,
			StartsAt:        now.Add(-24 * time.Hour),
			EndsAt:          now.Add(30 * 24 * time.Hour),
		},
	}
}

func customerRow(c customer, now time.Time) *types.Customer {
	byID := map[string]product{}
	for _, p := range catalog {
		byID[p.id] = p
	}
	var purchases []map[string]any
	for i, id := range c.purchases {
		p := byID[id]
		purchases = append(purchases, map[string]any{
			"product_id":   p.id,
			"name":         p.name,
			"category":     p.category,
			"price":        p.price,
			"purchased_at": now.Add(-time.Duration(30*(i+1)) * 24 * time.Hour),
		})
	}
	var browsed []map[string]any
	for i, id := range c.browsed {
		browsed = append(browsed, map[string]any{
			"product_id": id,
			"category":   byID[id].category,
			"viewed_at":  now.Add(-time.Duration(len(c.browsed)-i) * time.Hour),
		})
	}
	return &types.Customer{
		UserID:          c.id,
		Name:            c.name,
		Email:           c.email,
		LoyaltyTier:     string(pricing.TierBronze),
		LoyaltyPoints:   welcomePoints,
		TotalSpent:      0,
		Preferences:     jsonOf(map[string]any{"favorite_categories": c.favorites}),
		PastPurchases:   jsonOf(purchases),
		BrowsingHistory: jsonOf(browsed),
		City:            c.city,
		Latitude:        c.lat,
		Longitude:       c.lng,
		CreatedAt:       now,
	}
}

func jsonOf(v any) datatypes.JSON {
	raw, err := json.Marshal(v)
	if err != nil || string(raw) == "null" {
		return datatypes.JSON([]byte(`[]`))
	}
	return datatypes.JSON(raw)
}
