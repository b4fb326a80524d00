package customer

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/salesagent-backend/internal/domain"
	pkgerrors "github.com/yungbote/salesagent-backend/internal/pkg/errors"
	"github.com/yungbote/salesagent-backend/internal/platform/dbctx"
	"github.com/yungbote/salesagent-backend/internal/platform/logger"
)

type CustomerRepo interface {
	GetByUserID(dbc dbctx.Context, userID string) (*types.Customer, error)
	Upsert(dbc dbctx.Context, rows []*types.Customer) error
	// AdjustPoints adds delta (may be negative) to the balance. A deduction that would
	// take the balance below zero fails with ErrInvalidArgument.
	AdjustPoints(dbc dbctx.Context, userID string, delta int) (*types.Customer, error)
	UpdateLoyalty(dbc dbctx.Context, userID string, updates map[string]any) error
}

type customerRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCustomerRepo(db *gorm.DB, baseLog *logger.Logger) CustomerRepo {
	return &customerRepo{
		db:  db,
		log: baseLog.With("repo", "CustomerRepo"),
	}
}

func (r *customerRepo) GetByUserID(dbc dbctx.Context, userID string) (*types.Customer, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, nil
	}
	var rows []types.Customer
	if err := t.WithContext(dbc.Ctx).
		Where("user_id = ?", userID).
		Limit(1).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (r *customerRepo) Upsert(dbc dbctx.Context, rows []*types.Customer) error {
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
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"name", "email", "phone", "loyalty_tier", "loyalty_points", "total_spent",
				"preferences", "past_purchases", "browsing_history",
				"city", "latitude", "longitude", "updated_at",
			}),
		}).
		Create(&rows).Error
}

func (r *customerRepo) AdjustPoints(dbc dbctx.Context, userID string, delta int) (*types.Customer, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	q := t.WithContext(dbc.Ctx).Model(&types.Customer{}).Where("user_id = ?", userID)
	if delta < 0 {
		q = q.Where("loyalty_points >= ?", -delta)
	}
	res := q.Updates(map[string]any{
		"loyalty_points": gorm.Expr("loyalty_points + ?", delta),
		"updated_at":     time.Now().UTC(),
	})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		existing, err := r.GetByUserID(dbc, userID)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			return nil, fmt.Errorf("customer %s: %w", userID, pkgerrors.ErrNotFound)
		}
		return nil, fmt.Errorf("insufficient points (%d < %d): %w", existing.LoyaltyPoints, -delta, pkgerrors.ErrInvalidArgument)
	}
	return r.GetByUserID(dbc, userID)
}

func (r *customerRepo) UpdateLoyalty(dbc dbctx.Context, userID string, updates map[string]any) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(updates) == 0 {
		return nil
	}
	if updates["updated_at"] == nil {
		updates["updated_at"] = time.Now().UTC()
	}
	return t.WithContext(dbc.Ctx).
		Model(&types.Customer{}).
		Where("user_id = ?", userID).
		Updates(updates).Error
}
