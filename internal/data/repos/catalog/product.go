package catalog

import (
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/salesagent-backend/internal/domain"
	"github.com/yungbote/salesagent-backend/internal/platform/dbctx"
	"github.com/yungbote/salesagent-backend/internal/platform/logger"
)

// ProductFilter narrows a catalog search. Zero values mean "no constraint".
type ProductFilter struct {
	Category string
	Query    string
	MinPrice float64
	MaxPrice float64
	Brands   []string
	Featured bool
}

type ProductRepo interface {
	GetByID(dbc dbctx.Context, productID string) (*types.Product, error)
	GetByIDs(dbc dbctx.Context, productIDs []string) ([]*types.Product, error)
	Search(dbc dbctx.Context, f ProductFilter, limit int) ([]*types.Product, error)
	Upsert(dbc dbctx.Context, rows []*types.Product) error
}

type productRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProductRepo(db *gorm.DB, baseLog *logger.Logger) ProductRepo {
	return &productRepo{db: db, log: baseLog.With("repo", "ProductRepo")}
}

func (r *productRepo) GetByID(dbc dbctx.Context, productID string) (*types.Product, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil, nil
	}
	var rows []types.Product
	if err := t.WithContext(dbc.Ctx).
		Where("product_id = ? AND is_active = ?", productID, true).
		Limit(1).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (r *productRepo) GetByIDs(dbc dbctx.Context, productIDs []string) ([]*types.Product, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Product
	if len(productIDs) == 0 {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("product_id IN ?", productIDs).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *productRepo) Search(dbc dbctx.Context, f ProductFilter, limit int) ([]*types.Product, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if limit <= 0 {
		limit = 20
	}
	q := t.WithContext(dbc.Ctx).Model(&types.Product{}).Where("is_active = ?", true)
	if c := strings.ToLower(strings.TrimSpace(f.Category)); c != "" {
		q = q.Where("LOWER(category) = ?", c)
	}
	if s := strings.ToLower(strings.TrimSpace(f.Query)); s != "" {
		like := "%" + s + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}
	if f.MinPrice > 0 {
		q = q.Where("price >= ?", f.MinPrice)
	}
	if f.MaxPrice > 0 {
		q = q.Where("price <= ?", f.MaxPrice)
	}
	if len(f.Brands) > 0 {
		q = q.Where("brand IN ?", f.Brands)
	}
	if f.Featured {
		q = q.Where("featured = ?", true)
	}
	var out []*types.Product
	if err := q.Order("featured DESC").Order("rating DESC").Order("product_id ASC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *productRepo) Upsert(dbc dbctx.Context, rows []*types.Product) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return nil
	}
	now := time.Now().UTC()
	for _, row := range rows {
		if row.CreatedAt.IsZero() {
			row.CreatedAt = now
		}
		row.UpdatedAt = now
	}
	return t.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "product_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"name", "description", "category", "brand", "price", "discount_percent",
				"stock", "rating", "featured", "is_active", "colors", "sizes", "tags", "updated_at",
			}),
		}).
		Create(&rows).Error
}
