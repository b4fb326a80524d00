package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/salesagent-backend/internal/data/repos"
	pkgerrors "github.com/yungbote/salesagent-backend/internal/pkg/errors"
	"github.com/yungbote/salesagent-backend/internal/platform/dbctx"
	"github.com/yungbote/salesagent-backend/internal/platform/logger"
	"github.com/yungbote/salesagent-backend/internal/pricing"
)

type LoyaltyProfile struct {
	UserID     string       `json:"user_id"`
	Tier       pricing.Tier `json:"current_tier"`
	Points     int          `json:"points_balance"`
	TotalSpent float64      `json:"total_spent"`
	// Found is false when the user has no stored profile and the bronze defaults are returned.
	Found bool `json:"-"`
}

type Coupon struct {
	Code        string  `json:"code"`
	Description string  `json:"description"`
	Kind        string  `json:"kind"`
	Value       float64 `json:"value"`
	MinOrder    float64 `json:"min_order"`
}

// Savings is what this coupon takes off subtotal.
func (c Coupon) Savings(subtotal float64) float64 {
	return pricing.CouponSavings(c.Kind, c.Value, c.MinOrder, subtotal)
}

type EarnResult struct {
	PointsEarned int          `json:"points_earned"`
	Multiplier   float64      `json:"tier_multiplier"`
	NewBalance   int          `json:"new_points_balance"`
	TotalSpent   float64      `json:"total_spent"`
	Tier         pricing.Tier `json:"new_tier"`
	Upgraded     bool         `json:"tier_upgrade"`
}

type LoyaltyService interface {
	GetProfile(dbc dbctx.Context, userID string) (*LoyaltyProfile, error)
	AvailableCoupons(dbc dbctx.Context, userID string) ([]Coupon, error)
	// DeductPoints removes points from the balance. It fails with ErrInvalidArgument when
	// the balance is too small and ErrNotFound when the user has no profile.
	DeductPoints(dbc dbctx.Context, userID string, points int) (*LoyaltyProfile, error)
	// EarnPoints credits a purchase: tier-multiplied points, cumulative spend and any tier upgrade.
	EarnPoints(dbc dbctx.Context, userID string, amount float64) (*EarnResult, error)
}

type cacheInvalidator interface {
	Invalidate(ctx context.Context, userID string)
}

type loyaltyService struct {
	db        *gorm.DB
	log       *logger.Logger
	customers repos.CustomerRepo
	coupons   repos.CouponRepo
	cache     cacheInvalidator
	dbTimeout time.Duration
}

// NewLoyaltyService builds the loyalty store. cache may be nil.
func NewLoyaltyService(db *gorm.DB, baseLog *logger.Logger, customers repos.CustomerRepo, coupons repos.CouponRepo, cache cacheInvalidator, dbTimeout time.Duration) LoyaltyService {
	return &loyaltyService{
		db:        db,
		log:       baseLog.With("service", "LoyaltyService"),
		customers: customers,
		coupons:   coupons,
		cache:     cache,
		dbTimeout: dbTimeout,
	}
}

func (s *loyaltyService) GetProfile(dbc dbctx.Context, userID string) (*LoyaltyProfile, error) {
	inner, cancel := dbc.WithTimeout(s.dbTimeout)
	defer cancel()
	row, err := s.customers.GetByUserID(inner, userID)
	if err != nil {
		return nil, fmt.Errorf("loyalty profile: %w", err)
	}
	if row == nil {
		return &LoyaltyProfile{UserID: userID, Tier: pricing.TierBronze}, nil
	}
	return &LoyaltyProfile{
		UserID:     row.UserID,
		Tier:       pricing.ParseTier(row.LoyaltyTier),
		Points:     row.LoyaltyPoints,
		TotalSpent: row.TotalSpent,
		Found:      true,
	}, nil
}

func (s *loyaltyService) AvailableCoupons(dbc dbctx.Context, userID string) ([]Coupon, error) {
	profile, err := s.GetProfile(dbc, userID)
	if err != nil {
		return nil, err
	}
	if !profile.Found {
		return nil, nil
	}
	inner, cancel := dbc.WithTimeout(s.dbTimeout)
	defer cancel()
	rows, err := s.coupons.ListByTier(inner, string(profile.Tier))
	if err != nil {
		return nil, fmt.Errorf("list coupons: %w", err)
	}
	out := make([]Coupon, 0, len(rows))
	for _, r := range rows {
		out = append(out, Coupon{
			Code:        r.Code,
			Description: r.Description,
			Kind:        r.Kind,
			Value:       r.Value,
			MinOrder:    r.MinOrder,
		})
	}
	return out, nil
}

func (s *loyaltyService) DeductPoints(dbc dbctx.Context, userID string, points int) (*LoyaltyProfile, error) {
	if points <= 0 {
		return nil, fmt.Errorf("points must be positive: %w", pkgerrors.ErrInvalidArgument)
	}
	inner, cancel := dbc.WithTimeout(s.dbTimeout)
	defer cancel()
	row, err := s.customers.AdjustPoints(inner, userID, -points)
	if err != nil {
		return nil, err
	}
	s.invalidate(dbc.Ctx, userID)
	s.log.Info("loyalty points deducted", "user_id", userID, "points", points, "balance", row.LoyaltyPoints)
	return &LoyaltyProfile{
		UserID:     row.UserID,
		Tier:       pricing.ParseTier(row.LoyaltyTier),
		Points:     row.LoyaltyPoints,
		TotalSpent: row.TotalSpent,
		Found:      true,
	}, nil
}

func (s *loyaltyService) EarnPoints(dbc dbctx.Context, userID string, amount float64) (*EarnResult, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("purchase amount must be positive: %w", pkgerrors.ErrInvalidArgument)
	}
	userID = strings.TrimSpace(userID)
	inner, cancel := dbc.WithTimeout(s.dbTimeout)
	defer cancel()

	var out *EarnResult
	err := s.inTx(inner, func(tx dbctx.Context) error {
		row, err := s.customers.GetByUserID(tx, userID)
		if err != nil {
			return err
		}
		if row == nil {
			return fmt.Errorf("customer %s: %w", userID, pkgerrors.ErrNotFound)
		}
		current := pricing.ParseTier(row.LoyaltyTier)
		earned := pricing.PointsEarned(amount, current)
		spent := pricing.Round2(row.TotalSpent + amount)
		next := current
		if reached := pricing.TierForSpend(spent); tierRank(reached) > tierRank(current) {
			next = reached
		}
		if _, err := s.customers.AdjustPoints(tx, userID, earned); err != nil {
			return err
		}
		if err := s.customers.UpdateLoyalty(tx, userID, map[string]any{
			"loyalty_tier": string(next),
			"total_spent":  spent,
		}); err != nil {
			return err
		}
		out = &EarnResult{
			PointsEarned: earned,
			Multiplier:   current.Spec().Multiplier,
			NewBalance:   row.LoyaltyPoints + earned,
			TotalSpent:   spent,
			Tier:         next,
			Upgraded:     next != current,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(dbc.Ctx, userID)
	if out.Upgraded {
		s.log.Info("loyalty tier upgraded", "user_id", userID, "tier", out.Tier)
	}
	return out, nil
}

func (s *loyaltyService) inTx(dbc dbctx.Context, fn func(dbctx.Context) error) error {
	if dbc.Tx != nil {
		return fn(dbc)
	}
	return s.db.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		return fn(dbctx.Context{Ctx: dbc.Ctx, Tx: tx})
	})
}

func (s *loyaltyService) invalidate(ctx context.Context, userID string) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, userID)
	}
}

func tierRank(t pricing.Tier) int {
	for i, spec := range pricing.Ladder() {
		if spec.Tier == t {
			return i
		}
	}
	return 0
}
