package catalog

import (
	"context"
	"testing"

	"github.com/yungbote/salesagent-backend/internal/data/repos/testutil"
	"github.com/yungbote/salesagent-backend/internal/platform/dbctx"
)

func TestProductSearch(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	testutil.SeedProduct(t, ctx, db, "P1", "Budget Phone", "electronics", 199, 5)
	testutil.SeedProduct(t, ctx, db, "P2", "Pro Laptop", "electronics", 1299, 3)
	testutil.SeedProduct(t, ctx, db, "P3", "Running Shoes", "sports", 89, 20)

	repo := NewProductRepo(db, testutil.Logger(t))
	dbc := dbctx.New(ctx)

	cases := []struct {
		name string
		f    ProductFilter
		want int
	}{
		{"all", ProductFilter{}, 3},
		{"category", ProductFilter{Category: "Electronics"}, 2},
		{"ceiling", ProductFilter{Category: "electronics", MaxPrice: 500}, 1},
		{"query", ProductFilter{Query: "laptop"}, 1},
		{"featured", ProductFilter{Featured: true}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := repo.Search(dbc, tc.f, 20)
			if err != nil {
				t.Fatalf("Search: %v", err)
			}
			if len(got) != tc.want {
				t.Fatalf("Search: want=%d got=%d", tc.want, len(got))
			}
		})
	}

	p, err := repo.GetByID(dbc, "P2")
	if err != nil || p == nil || p.Name != "Pro Laptop" {
		t.Fatalf("GetByID: got=%v err=%v", p, err)
	}
}
