package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/salesagent-backend/internal/conversation"
	"github.com/yungbote/salesagent-backend/internal/data/repos"
	types "github.com/yungbote/salesagent-backend/internal/domain"
	"github.com/yungbote/salesagent-backend/internal/observability"
	"github.com/yungbote/salesagent-backend/internal/platform/dbctx"
	"github.com/yungbote/salesagent-backend/internal/platform/logger"
	"github.com/yungbote/salesagent-backend/internal/pricing"
)

const customerCacheName = "customer_profile"

type CustomerService interface {
	// Get returns the customer's profile snapshot, or nil when the user has no profile.
	Get(dbc dbctx.Context, userID string) (*conversation.CustomerContext, error)
	Invalidate(ctx context.Context, userID string)
}

type CustomerCacheConfig struct {
	Client *goredis.Client
	Prefix string
	TTL    time.Duration
}

type customerService struct {
	db        *gorm.DB
	log       *logger.Logger
	repo      repos.CustomerRepo
	dbTimeout time.Duration

	cache  *goredis.Client
	prefix string
	ttl    time.Duration
}

// NewCustomerService builds the profile lookup. cache is optional; with a nil client every
// lookup goes to the database.
func NewCustomerService(db *gorm.DB, baseLog *logger.Logger, repo repos.CustomerRepo, dbTimeout time.Duration, cache CustomerCacheConfig) CustomerService {
	prefix := strings.TrimSpace(cache.Prefix)
	if prefix == "" {
		prefix = "salesagent:customer:"
	}
	ttl := cache.TTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &customerService{
		db:        db,
		log:       baseLog.With("service", "CustomerService"),
		repo:      repo,
		dbTimeout: dbTimeout,
		cache:     cache.Client,
		prefix:    prefix,
		ttl:       ttl,
	}
}

func (s *customerService) Get(dbc dbctx.Context, userID string) (*conversation.CustomerContext, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, nil
	}
	if cached, ok := s.readCache(dbc.Ctx, userID); ok {
		return cached, nil
	}

	inner, cancel := dbc.WithTimeout(s.dbTimeout)
	defer cancel()
	row, err := s.repo.GetByUserID(inner, userID)
	if err != nil {
		return nil, fmt.Errorf("load customer: %w", err)
	}
	if row == nil {
		return nil, nil
	}
	out := CustomerContextFromRow(row)
	s.writeCache(dbc.Ctx, userID, out)
	return out, nil
}

func (s *customerService) Invalidate(ctx context.Context, userID string) {
	if s.cache == nil || strings.TrimSpace(userID) == "" {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if err := s.cache.Del(ctx, s.prefix+userID).Err(); err != nil {
		s.log.Warn("customer cache invalidate failed", "user_id", userID, "error", err)
	}
}

func (s *customerService) readCache(ctx context.Context, userID string) (*conversation.CustomerContext, bool) {
	if s.cache == nil {
		return nil, false
	}
	if ctx == nil {
		ctx = context.Background()
	}
	raw, err := s.cache.Get(ctx, s.prefix+userID).Bytes()
	switch {
	case errors.Is(err, goredis.Nil):
		observability.Current().IncCacheLookup(customerCacheName, "miss")
		return nil, false
	case err != nil:
		observability.Current().IncCacheLookup(customerCacheName, "error")
		s.log.Warn("customer cache read failed", "user_id", userID, "error", err)
		return nil, false
	}
	var out conversation.CustomerContext
	if err := json.Unmarshal(raw, &out); err != nil {
		observability.Current().IncCacheLookup(customerCacheName, "error")
		return nil, false
	}
	observability.Current().IncCacheLookup(customerCacheName, "hit")
	return &out, true
}

func (s *customerService) writeCache(ctx context.Context, userID string, c *conversation.CustomerContext) {
	if s.cache == nil || c == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	raw, err := json.Marshal(c)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, s.prefix+userID, raw, s.ttl).Err(); err != nil {
		s.log.Warn("customer cache write failed", "user_id", userID, "error", err)
	}
}

// CustomerContextFromRow maps a stored profile to the run snapshot. Malformed JSON columns
// are treated as empty.
func CustomerContextFromRow(row *types.Customer) *conversation.CustomerContext {
	if row == nil {
		return nil
	}
	out := &conversation.CustomerContext{
		UserID:        row.UserID,
		Name:          strings.TrimSpace(row.Name),
		Email:         strings.TrimSpace(row.Email),
		LoyaltyTier:   pricing.ParseTier(row.LoyaltyTier),
		LoyaltyPoints: row.LoyaltyPoints,
		TotalSpent:    row.TotalSpent,
	}
	if len(row.Preferences) > 0 {
		_ = json.Unmarshal(row.Preferences, &out.Preferences)
	}
	if len(row.PastPurchases) > 0 {
		_ = json.Unmarshal(row.PastPurchases, &out.PastPurchases)
	}
	if len(row.BrowsingHistory) > 0 {
		_ = json.Unmarshal(row.BrowsingHistory, &out.BrowsingHistory)
	}
	if out.PastPurchases == nil {
		out.PastPurchases = []conversation.Purchase{}
	}
	if out.BrowsingHistory == nil {
		out.BrowsingHistory = []conversation.BrowsedItem{}
	}
	if row.Latitude != nil && row.Longitude != nil {
		out.Location = &conversation.Location{Lat: *row.Latitude, Lng: *row.Longitude, City: row.City}
	}
	return out
}
