package services

import (
	"testing"
	"time"

	"gorm.io/datatypes"

	"github.com/yungbote/salesagent-backend/internal/data/repos"
	"github.com/yungbote/salesagent-backend/internal/data/repos/testutil"
	types "github.com/yungbote/salesagent-backend/internal/domain"
)

func TestCatalogLookups(t *testing.T) {
	f := newFixture(t)
	testutil.SeedProduct(t, f.ctx, f.db, "LAPTOP001", "Laptop Pro 15", "electronics", 999.99, 10)
	testutil.SeedProduct(t, f.ctx, f.db, "TEE001", "Cotton Tee", "clothing", 19.99, 50)
	svc := f.catalog(t)

	p, err := svc.GetByID(f.dbc, "LAPTOP001")
	if err != nil || p == nil || p.Name != "Laptop Pro 15" {
		t.Fatalf("GetByID: got=%+v err=%v", p, err)
	}
	if p, err := svc.GetByID(f.dbc, "MISSING"); err != nil || p != nil {
		t.Fatalf("GetByID missing: got=%+v err=%v", p, err)
	}
	byName, err := svc.FindByName(f.dbc, "tee")
	if err != nil || byName == nil || byName.ProductID != "TEE001" {
		t.Fatalf("FindByName: got=%+v err=%v", byName, err)
	}
	cheap, err := svc.Search(f.dbc, repos.ProductFilter{MaxPrice: 100}, 10)
	if err != nil || len(cheap) != 1 {
		t.Fatalf("Search: got=%d err=%v", len(cheap), err)
	}
}

func TestActivePromotions(t *testing.T) {
	f := newFixture(t)
	now := time.Now().UTC()
	rows := []*types.Promotion{
		{PromotionID: "live", Name: "Live", IsActive: true, StartsAt: now.Add(-time.Hour), EndsAt: now.Add(time.Hour), ProductIDs: datatypes.JSON([]byte(`[]`))},
		{PromotionID: "old", Name: "Old", IsActive: true, StartsAt: now.Add(-48 * time.Hour), EndsAt: now.Add(-24 * time.Hour), ProductIDs: datatypes.JSON([]byte(`[]`))},
	}
	if err := f.db.Create(&rows).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	got, err := f.catalog(t).ActivePromotions(f.dbc, 0)
	if err != nil {
		t.Fatalf("ActivePromotions: %v", err)
	}
	if len(got) != 1 || got[0].PromotionID != "live" {
		t.Fatalf("promotions: got=%+v", got)
	}
}
