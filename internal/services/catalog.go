package services

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/salesagent-backend/internal/data/repos"
	types "github.com/yungbote/salesagent-backend/internal/domain"
	"github.com/yungbote/salesagent-backend/internal/platform/dbctx"
	"github.com/yungbote/salesagent-backend/internal/platform/logger"
)

type CatalogService interface {
	// GetByID returns an active product or nil.
	GetByID(dbc dbctx.Context, productID string) (*types.Product, error)
	// FindByName returns the best active match for a free-text product name, or nil.
	FindByName(dbc dbctx.Context, name string) (*types.Product, error)
	Search(dbc dbctx.Context, f repos.ProductFilter, limit int) ([]*types.Product, error)
	ActivePromotions(dbc dbctx.Context, limit int) ([]*types.Promotion, error)
}

type catalogService struct {
	db         *gorm.DB
	log        *logger.Logger
	products   repos.ProductRepo
	promotions repos.PromotionRepo
	dbTimeout  time.Duration
}

func NewCatalogService(db *gorm.DB, baseLog *logger.Logger, products repos.ProductRepo, promotions repos.PromotionRepo, dbTimeout time.Duration) CatalogService {
	return &catalogService{
		db:         db,
		log:        baseLog.With("service", "CatalogService"),
		products:   products,
		promotions: promotions,
		dbTimeout:  dbTimeout,
	}
}

func (s *catalogService) GetByID(dbc dbctx.Context, productID string) (*types.Product, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil, nil
	}
	inner, cancel := dbc.WithTimeout(s.dbTimeout)
	defer cancel()
	p, err := s.products.GetByID(inner, productID)
	if err != nil {
		return nil, fmt.Errorf("get product %s: %w", productID, err)
	}
	return p, nil
}

func (s *catalogService) FindByName(dbc dbctx.Context, name string) (*types.Product, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}
	rows, err := s.Search(dbc, repos.ProductFilter{Query: name}, 1)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (s *catalogService) Search(dbc dbctx.Context, f repos.ProductFilter, limit int) ([]*types.Product, error) {
	inner, cancel := dbc.WithTimeout(s.dbTimeout)
	defer cancel()
	rows, err := s.products.Search(inner, f, limit)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	return rows, nil
}

func (s *catalogService) ActivePromotions(dbc dbctx.Context, limit int) ([]*types.Promotion, error) {
	if limit <= 0 {
		limit = 10
	}
	inner, cancel := dbc.WithTimeout(s.dbTimeout)
	defer cancel()
	rows, err := s.promotions.ListActive(inner, time.Now().UTC(), limit)
	if err != nil {
		return nil, fmt.Errorf("list promotions: %w", err)
	}
	return rows, nil
}
