package testutil

import (
	"context"
	"testing"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/yungbote/salesagent-backend/internal/domain"
)

func SeedCustomer(tb testing.TB, ctx context.Context, tx *gorm.DB, userID, tier string, points int) *types.Customer {
	tb.Helper()
	now := time.Now().UTC()
	c := &types.Customer{
		UserID:          userID,
		Name:            "Test Customer",
		Email:           userID + "@example.com",
		LoyaltyTier:     tier,
		LoyaltyPoints:   points,
		Preferences:     datatypes.JSON([]byte(`{"favorite_categories":["electronics"]}`)),
		PastPurchases:   datatypes.JSON([]byte(`[]`)),
		BrowsingHistory: datatypes.JSON([]byte(`[]`)),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed customer: %v", err)
	}
	return c
}

func SeedProduct(tb testing.TB, ctx context.Context, tx *gorm.DB, productID, name, category string, price float64, stock int) *types.Product {
	tb.Helper()
	now := time.Now().UTC()
	p := &types.Product{
		ProductID: productID,
		Name:      name,
		Category:  category,
		Price:     price,
		Stock:     stock,
		Rating:    4.5,
		IsActive:  true,
		Colors:    datatypes.JSON([]byte(`[]`)),
		Sizes:     datatypes.JSON([]byte(`[]`)),
		Tags:      datatypes.JSON([]byte(`[]`)),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed product: %v", err)
	}
	return p
}

func SeedStore(tb testing.TB, ctx context.Context, tx *gorm.DB, storeID, city string, lat, lng float64) *types.Store {
	tb.Helper()
	s := &types.Store{
		StoreID:   storeID,
		Name:      "Store " + storeID,
		City:      city,
		Latitude:  lat,
		Longitude: lng,
		IsActive:  true,
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed store: %v", err)
	}
	return s
}

func SeedStoreInventory(tb testing.TB, ctx context.Context, tx *gorm.DB, storeID, productID string, qty int) {
	tb.Helper()
	row := &types.StoreInventory{StoreID: storeID, ProductID: productID, Quantity: qty, UpdatedAt: time.Now().UTC()}
	if err := tx.WithContext(ctx).Create(row).Error; err != nil {
		tb.Fatalf("seed store inventory: %v", err)
	}
}

func SeedInventoryLevel(tb testing.TB, ctx context.Context, tx *gorm.DB, productID string, warehouse, reserved int) {
	tb.Helper()
	row := &types.InventoryLevel{ProductID: productID, WarehouseStock: warehouse, Reserved: reserved, UpdatedAt: time.Now().UTC()}
	if err := tx.WithContext(ctx).Create(row).Error; err != nil {
		tb.Fatalf("seed inventory level: %v", err)
	}
}
