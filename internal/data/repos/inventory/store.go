package inventory

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/salesagent-backend/internal/domain"
	"github.com/yungbote/salesagent-backend/internal/platform/dbctx"
	"github.com/yungbote/salesagent-backend/internal/platform/logger"
)

type StoreRepo interface {
	ListActive(dbc dbctx.Context) ([]*types.Store, error)
	Upsert(dbc dbctx.Context, rows []*types.Store) error
}

type storeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStoreRepo(db *gorm.DB, baseLog *logger.Logger) StoreRepo {
	return &storeRepo{db: db, log: baseLog.With("repo", "StoreRepo")}
}

func (r *storeRepo) ListActive(dbc dbctx.Context) ([]*types.Store, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Store
	if err := t.WithContext(dbc.Ctx).
		Where("is_active = ?", true).
		Order("store_id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *storeRepo) Upsert(dbc dbctx.Context, rows []*types.Store) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return nil
	}
	return t.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "store_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "address", "city", "phone", "latitude", "longitude", "is_active"}),
		}).
		Create(&rows).Error
}
