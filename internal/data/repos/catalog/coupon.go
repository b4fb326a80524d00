package catalog

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/salesagent-backend/internal/domain"
	"github.com/yungbote/salesagent-backend/internal/platform/dbctx"
	"github.com/yungbote/salesagent-backend/internal/platform/logger"
)

type CouponRepo interface {
	ListByTier(dbc dbctx.Context, tier string) ([]*types.Coupon, error)
	Upsert(dbc dbctx.Context, rows []*types.Coupon) error
}

type couponRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCouponRepo(db *gorm.DB, baseLog *logger.Logger) CouponRepo {
	return &couponRepo{db: db, log: baseLog.With("repo", "CouponRepo")}
}

func (r *couponRepo) ListByTier(dbc dbctx.Context, tier string) ([]*types.Coupon, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Coupon
	if err := t.WithContext(dbc.Ctx).
		Where("tier = ? AND is_active = ?", tier, true).
		Order("code ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *couponRepo) Upsert(dbc dbctx.Context, rows []*types.Coupon) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return nil
	}
	return t.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "code"}},
			DoUpdates: clause.AssignmentColumns([]string{"tier", "kind", "value", "min_order", "description", "is_active"}),
		}).
		Create(&rows).Error
}
