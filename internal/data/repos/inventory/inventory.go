package inventory

import (
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/salesagent-backend/internal/domain"
	"github.com/yungbote/salesagent-backend/internal/platform/dbctx"
	"github.com/yungbote/salesagent-backend/internal/platform/logger"
)

// StoreStock is a store joined with its on-hand quantity of one product.
type StoreStock struct {
	types.Store
	Quantity int `json:"quantity"`
}

type InventoryRepo interface {
	GetLevel(dbc dbctx.Context, productID string) (*types.InventoryLevel, error)
	ListStoreStock(dbc dbctx.Context, productID string) ([]StoreStock, error)
	UpsertLevels(dbc dbctx.Context, rows []*types.InventoryLevel) error
	UpsertStoreInventory(dbc dbctx.Context, rows []*types.StoreInventory) error
}

type inventoryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewInventoryRepo(db *gorm.DB, baseLog *logger.Logger) InventoryRepo {
	return &inventoryRepo{db: db, log: baseLog.With("repo", "InventoryRepo")}
}

func (r *inventoryRepo) GetLevel(dbc dbctx.Context, productID string) (*types.InventoryLevel, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil, nil
	}
	var rows []types.InventoryLevel
	if err := t.WithContext(dbc.Ctx).
		Where("product_id = ?", productID).
		Limit(1).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (r *inventoryRepo) ListStoreStock(dbc dbctx.Context, productID string) ([]StoreStock, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []StoreStock
	if strings.TrimSpace(productID) == "" {
		return out, nil
	}
	err := t.WithContext(dbc.Ctx).
		Table("stores").
		Select("stores.*, store_inventory.quantity AS quantity").
		Joins("JOIN store_inventory ON store_inventory.store_id = stores.store_id").
		Where("store_inventory.product_id = ? AND stores.is_active = ?", productID, true).
		Order("stores.store_id ASC").
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *inventoryRepo) UpsertLevels(dbc dbctx.Context, rows []*types.InventoryLevel) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return nil
	}
	now := time.Now().UTC()
	for _, row := range rows {
		row.UpdatedAt = now
	}
	return t.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "product_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"warehouse_stock", "reserved", "updated_at"}),
		}).
		Create(&rows).Error
}

func (r *inventoryRepo) UpsertStoreInventory(dbc dbctx.Context, rows []*types.StoreInventory) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return nil
	}
	now := time.Now().UTC()
	for _, row := range rows {
		row.UpdatedAt = now
	}
	return t.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "store_id"}, {Name: "product_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"quantity", "updated_at"}),
		}).
		Create(&rows).Error
}
