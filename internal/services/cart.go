package services

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/salesagent-backend/internal/conversation"
	"github.com/yungbote/salesagent-backend/internal/data/repos"
	types "github.com/yungbote/salesagent-backend/internal/domain"
	pkgerrors "github.com/yungbote/salesagent-backend/internal/pkg/errors"
	"github.com/yungbote/salesagent-backend/internal/platform/dbctx"
	"github.com/yungbote/salesagent-backend/internal/platform/logger"
)

type CartService interface {
	Get(dbc dbctx.Context, userID string) ([]conversation.CartItem, error)
	// UpsertLine adds item.Quantity to the (product, color, size) line, creating it if needed.
	UpsertLine(dbc dbctx.Context, userID string, item conversation.CartItem) error
	// SetQuantity replaces a line's quantity; qty <= 0 removes the line.
	SetQuantity(dbc dbctx.Context, userID, productID, color, size string, qty int) error
	Clear(dbc dbctx.Context, userID string) error
}

type cartService struct {
	db        *gorm.DB
	log       *logger.Logger
	repo      repos.CartRepo
	dbTimeout time.Duration
}

func NewCartService(db *gorm.DB, baseLog *logger.Logger, repo repos.CartRepo, dbTimeout time.Duration) CartService {
	return &cartService{
		db:        db,
		log:       baseLog.With("service", "CartService"),
		repo:      repo,
		dbTimeout: dbTimeout,
	}
}

func (s *cartService) Get(dbc dbctx.Context, userID string) ([]conversation.CartItem, error) {
	inner, cancel := dbc.WithTimeout(s.dbTimeout)
	defer cancel()
	rows, err := s.repo.ListByUser(inner, userID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	out := make([]conversation.CartItem, 0, len(rows))
	for _, r := range rows {
		if r == nil || r.Quantity < 1 {
			continue
		}
		out = append(out, conversation.CartItem{
			ProductID: r.ProductID,
			Name:      r.Name,
			Quantity:  r.Quantity,
			UnitPrice: r.UnitPrice,
			Color:     r.Color,
			Size:      r.Size,
			AddedAt:   r.AddedAt,
		})
	}
	return out, nil
}

func (s *cartService) UpsertLine(dbc dbctx.Context, userID string, item conversation.CartItem) error {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(item.ProductID) == "" {
		return fmt.Errorf("cart line needs user and product: %w", pkgerrors.ErrInvalidArgument)
	}
	if item.UnitPrice < 0 {
		return fmt.Errorf("negative unit price: %w", pkgerrors.ErrInvalidArgument)
	}
	inner, cancel := dbc.WithTimeout(s.dbTimeout)
	defer cancel()
	line := &types.CartLine{
		UserID:    userID,
		ProductID: item.ProductID,
		Color:     item.Color,
		Size:      item.Size,
		Name:      item.Name,
		UnitPrice: item.UnitPrice,
		Quantity:  item.Quantity,
		AddedAt:   item.AddedAt,
	}
	if err := s.repo.AddQuantity(inner, line); err != nil {
		return fmt.Errorf("upsert cart line: %w", err)
	}
	return nil
}

func (s *cartService) SetQuantity(dbc dbctx.Context, userID, productID, color, size string, qty int) error {
	inner, cancel := dbc.WithTimeout(s.dbTimeout)
	defer cancel()
	if err := s.repo.SetQuantity(inner, userID, productID, color, size, qty); err != nil {
		return fmt.Errorf("set cart quantity: %w", err)
	}
	return nil
}

func (s *cartService) Clear(dbc dbctx.Context, userID string) error {
	inner, cancel := dbc.WithTimeout(s.dbTimeout)
	defer cancel()
	if err := s.repo.Clear(inner, userID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}
