package catalog

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/salesagent-backend/internal/domain"
	"github.com/yungbote/salesagent-backend/internal/platform/dbctx"
	"github.com/yungbote/salesagent-backend/internal/platform/logger"
)

type PromotionRepo interface {
	ListActive(dbc dbctx.Context, at time.Time, limit int) ([]*types.Promotion, error)
	Upsert(dbc dbctx.Context, rows []*types.Promotion) error
}

type promotionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPromotionRepo(db *gorm.DB, baseLog *logger.Logger) PromotionRepo {
	return &promotionRepo{db: db, log: baseLog.With("repo", "PromotionRepo")}
}

func (r *promotionRepo) ListActive(dbc dbctx.Context, at time.Time, limit int) ([]*types.Promotion, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if limit <= 0 {
		limit = 10
	}
	var out []*types.Promotion
	if err := t.WithContext(dbc.Ctx).
		Where("is_active = ? AND starts_at <= ? AND ends_at >= ?", true, at, at).
		Order("discount_percent DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *promotionRepo) Upsert(dbc dbctx.Context, rows []*types.Promotion) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return nil
	}
	return t.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "promotion_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "description", "discount_percent", "category", "product_ids", "is_active", "starts_at", "ends_at"}),
		}).
		Create(&rows).Error
}
