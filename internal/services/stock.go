package services

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/salesagent-backend/internal/conversation"
	"github.com/yungbote/salesagent-backend/internal/data/repos"
	"github.com/yungbote/salesagent-backend/internal/platform/dbctx"
	"github.com/yungbote/salesagent-backend/internal/platform/logger"
)

const (
	DefaultStoreRadiusKm = 50.0
	maxNearbyStores      = 10
	earthRadiusKm        = 6371.0

	StandardShippingCost = 5.99
	ExpressShippingCost  = 12.99
)

type StockStatus struct {
	ProductID  string    `json:"product_id"`
	Available  int       `json:"available_quantity"`
	Warehouse  int       `json:"warehouse_stock"`
	StoreStock int       `json:"store_stock"`
	UpdatedAt  time.Time `json:"last_updated,omitempty"`
}

type NearbyStore struct {
	StoreID    string  `json:"store_id"`
	Name       string  `json:"name"`
	Address    string  `json:"address,omitempty"`
	City       string  `json:"city,omitempty"`
	DistanceKm float64 `json:"distance_km"`
	Quantity   int     `json:"stock"`
}

type DeliveryOption struct {
	Method       string  `json:"method"`
	Timeline     string  `json:"timeline"`
	Cost         float64 `json:"cost"`
	NearestStore string  `json:"nearest_store,omitempty"`
}

type DeliveryEstimate struct {
	Available     bool             `json:"delivery_available"`
	Reason        string           `json:"reason,omitempty"`
	Options       []DeliveryOption `json:"options,omitempty"`
	EstimatedDays int              `json:"estimated_days,omitempty"`
}

type StockService interface {
	CheckStock(dbc dbctx.Context, productID string) (*StockStatus, error)
	// NearbyStores lists active stores within radiusKm that hold the product, nearest first.
	NearbyStores(dbc dbctx.Context, productID string, loc conversation.Location, radiusKm float64) ([]NearbyStore, error)
	EstimateDelivery(dbc dbctx.Context, loc *conversation.Location, productID string) (*DeliveryEstimate, error)
}

type stockService struct {
	db        *gorm.DB
	log       *logger.Logger
	inventory repos.InventoryRepo
	products  repos.ProductRepo
	dbTimeout time.Duration
}

func NewStockService(db *gorm.DB, baseLog *logger.Logger, inventory repos.InventoryRepo, products repos.ProductRepo, dbTimeout time.Duration) StockService {
	return &stockService{
		db:        db,
		log:       baseLog.With("service", "StockService"),
		inventory: inventory,
		products:  products,
		dbTimeout: dbTimeout,
	}
}

func (s *stockService) CheckStock(dbc dbctx.Context, productID string) (*StockStatus, error) {
	productID = strings.TrimSpace(productID)
	out := &StockStatus{ProductID: productID}
	if productID == "" {
		return out, nil
	}
	inner, cancel := dbc.WithTimeout(s.dbTimeout)
	defer cancel()

	level, err := s.inventory.GetLevel(inner, productID)
	if err != nil {
		return nil, fmt.Errorf("inventory level %s: %w", productID, err)
	}
	if level != nil {
		out.Warehouse = max(0, level.WarehouseStock-level.Reserved)
		out.UpdatedAt = level.UpdatedAt
	} else {
		// Products without a warehouse row fall back to the catalog stock figure.
		p, err := s.products.GetByID(inner, productID)
		if err != nil {
			return nil, fmt.Errorf("product %s: %w", productID, err)
		}
		if p != nil {
			out.Warehouse = max(0, p.Stock)
		}
	}

	stores, err := s.inventory.ListStoreStock(inner, productID)
	if err != nil {
		return nil, fmt.Errorf("store stock %s: %w", productID, err)
	}
	for _, st := range stores {
		if st.IsActive && st.Quantity > 0 {
			out.StoreStock += st.Quantity
		}
	}
	out.Available = out.Warehouse + out.StoreStock
	return out, nil
}

func (s *stockService) NearbyStores(dbc dbctx.Context, productID string, loc conversation.Location, radiusKm float64) ([]NearbyStore, error) {
	if radiusKm <= 0 {
		radiusKm = DefaultStoreRadiusKm
	}
	inner, cancel := dbc.WithTimeout(s.dbTimeout)
	defer cancel()
	rows, err := s.inventory.ListStoreStock(inner, productID)
	if err != nil {
		return nil, fmt.Errorf("store stock %s: %w", productID, err)
	}
	out := make([]NearbyStore, 0, len(rows))
	for _, st := range rows {
		if !st.IsActive || st.Quantity <= 0 {
			continue
		}
		d := haversineKm(loc.Lat, loc.Lng, st.Latitude, st.Longitude)
		if d > radiusKm {
			continue
		}
		out = append(out, NearbyStore{
			StoreID:    st.StoreID,
			Name:       st.Name,
			Address:    st.Address,
			City:       st.City,
			DistanceKm: math.Round(d*10) / 10,
			Quantity:   st.Quantity,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DistanceKm < out[j].DistanceKm })
	if len(out) > maxNearbyStores {
		out = out[:maxNearbyStores]
	}
	return out, nil
}

func (s *stockService) EstimateDelivery(dbc dbctx.Context, loc *conversation.Location, productID string) (*DeliveryEstimate, error) {
	stock, err := s.CheckStock(dbc, productID)
	if err != nil {
		return nil, err
	}
	if stock.Available == 0 {
		return &DeliveryEstimate{Available: false, Reason: "Out of stock"}, nil
	}
	out := &DeliveryEstimate{Available: true}
	if stock.Warehouse > 0 {
		out.Options = append(out.Options, DeliveryOption{
			Method:   "Standard Shipping",
			Timeline: "2-3 business days",
			Cost:     StandardShippingCost,
		})
		if loc != nil && isMajorCity(*loc) {
			out.Options = append(out.Options, DeliveryOption{
				Method:   "Express Shipping",
				Timeline: "Next business day",
				Cost:     ExpressShippingCost,
			})
		}
	}
	if loc != nil {
		stores, err := s.NearbyStores(dbc, productID, *loc, DefaultStoreRadiusKm)
		if err != nil {
			return nil, err
		}
		if len(stores) > 0 {
			out.Options = append(out.Options, DeliveryOption{
				Method:       "Store Pickup",
				Timeline:     "Same day",
				Cost:         0,
				NearestStore: stores[0].Name,
			})
		}
	}
	if len(out.Options) > 0 {
		out.EstimatedDays = 2
	}
	return out, nil
}

type metroArea struct {
	name     string
	lat, lng float64
	// radius in degrees
	radius float64
}

var majorCities = []metroArea{
	{name: "New York", lat: 40.7128, lng: -74.0060, radius: 0.5},
	{name: "Los Angeles", lat: 34.0522, lng: -118.2437, radius: 0.5},
	{name: "Chicago", lat: 41.8781, lng: -87.6298, radius: 0.5},
	{name: "San Francisco", lat: 37.7749, lng: -122.4194, radius: 0.3},
	{name: "Miami", lat: 25.7617, lng: -80.1918, radius: 0.3},
}

func isMajorCity(loc conversation.Location) bool {
	for _, c := range majorCities {
		if math.Hypot(loc.Lat-c.lat, loc.Lng-c.lng) < c.radius {
			return true
		}
	}
	return false
}

func haversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	toRad := func(d float64) float64 { return d * math.Pi / 180 }
	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(a)))
}
