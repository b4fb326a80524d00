package cart

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/salesagent-backend/internal/domain"
	"github.com/yungbote/salesagent-backend/internal/platform/dbctx"
	"github.com/yungbote/salesagent-backend/internal/platform/logger"
)

type CartRepo interface {
	ListByUser(dbc dbctx.Context, userID string) ([]*types.CartLine, error)
	// AddQuantity inserts the line or increments the quantity of the existing
	// (user_id, product_id, color, size) row.
	AddQuantity(dbc dbctx.Context, line *types.CartLine) error
	// SetQuantity replaces a line's quantity. qty <= 0 deletes the row.
	SetQuantity(dbc dbctx.Context, userID, productID, color, size string, qty int) error
	Clear(dbc dbctx.Context, userID string) error
}

type cartRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCartRepo(db *gorm.DB, baseLog *logger.Logger) CartRepo {
	return &cartRepo{db: db, log: baseLog.With("repo", "CartRepo")}
}

func (r *cartRepo) ListByUser(dbc dbctx.Context, userID string) ([]*types.CartLine, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.CartLine
	if strings.TrimSpace(userID) == "" {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("user_id = ?", userID).
		Order("added_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *cartRepo) AddQuantity(dbc dbctx.Context, line *types.CartLine) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if line == nil || line.UserID == "" || line.ProductID == "" {
		return fmt.Errorf("missing user_id/product_id")
	}
	if line.Quantity < 1 {
		line.Quantity = 1
	}
	now := time.Now().UTC()
	if line.ID == uuid.Nil {
		line.ID = uuid.New()
	}
	if line.AddedAt.IsZero() {
		line.AddedAt = now
	}
	line.UpdatedAt = now
	return t.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}, {Name: "color"}, {Name: "size"}},
			DoUpdates: clause.Assignments(map[string]any{
				"quantity":   gorm.Expr("quantity + ?", line.Quantity),
				"unit_price": line.UnitPrice,
				"name":       line.Name,
				"updated_at": now,
			}),
		}).
		Create(line).Error
}

func (r *cartRepo) SetQuantity(dbc dbctx.Context, userID, productID, color, size string, qty int) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	q := t.WithContext(dbc.Ctx).
		Where("user_id = ? AND product_id = ? AND color = ? AND size = ?", userID, productID, color, size)
	if qty <= 0 {
		return q.Delete(&types.CartLine{}).Error
	}
	return q.Model(&types.CartLine{}).Updates(map[string]any{
		"quantity":   qty,
		"updated_at": time.Now().UTC(),
	}).Error
}

func (r *cartRepo) Clear(dbc dbctx.Context, userID string) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).
		Where("user_id = ?", userID).
		Delete(&types.CartLine{}).Error
}
