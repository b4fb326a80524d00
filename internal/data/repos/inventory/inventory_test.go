package inventory

import (
	"context"
	"testing"

	"github.com/yungbote/salesagent-backend/internal/data/repos/testutil"
	"github.com/yungbote/salesagent-backend/internal/platform/dbctx"
)

func TestInventoryRepo(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	testutil.SeedStore(t, ctx, db, "S1", "New York", 40.75, -73.99)
	testutil.SeedStore(t, ctx, db, "S2", "Chicago", 41.88, -87.63)
	testutil.SeedStoreInventory(t, ctx, db, "S1", "P1", 4)
	testutil.SeedStoreInventory(t, ctx, db, "S2", "P2", 9)
	testutil.SeedInventoryLevel(t, ctx, db, "P1", 12, 2)

	repo := NewInventoryRepo(db, testutil.Logger(t))
	dbc := dbctx.New(ctx)

	lvl, err := repo.GetLevel(dbc, "P1")
	if err != nil || lvl == nil || lvl.WarehouseStock != 12 {
		t.Fatalf("GetLevel: got=%+v err=%v", lvl, err)
	}
	stock, err := repo.ListStoreStock(dbc, "P1")
	if err != nil {
		t.Fatalf("ListStoreStock: %v", err)
	}
	if len(stock) != 1 || stock[0].StoreID != "S1" || stock[0].Quantity != 4 {
		t.Fatalf("ListStoreStock: got=%+v", stock)
	}

	stores, err := NewStoreRepo(db, testutil.Logger(t)).ListActive(dbc)
	if err != nil || len(stores) != 2 {
		t.Fatalf("ListActive: got=%d err=%v", len(stores), err)
	}
}
