package customer

import (
	"time"

	"gorm.io/datatypes"
)

// Customer is the profile row consumed by context retrieval and the loyalty worker.
type Customer struct {
	UserID string `gorm:"type:text;primaryKey" json:"user_id"`
	Name   string `gorm:"type:text;not null" json:"name"`
	Email  string `gorm:"type:text;index" json:"email"`
	Phone  string `gorm:"type:text" json:"phone,omitempty"`

	LoyaltyTier   string  `gorm:"type:text;not null;index" json:"loyalty_tier"` // bronze|silver|gold|platinum
	LoyaltyPoints int     `gorm:"not null" json:"loyalty_points"`
	TotalSpent    float64 `gorm:"not null" json:"total_spent"`

	// Preferences: {"favorite_categories":[...], "price_range":{"min":..,"max":..}, "brands":[...]}
	Preferences     datatypes.JSON `json:"preferences"`
	PastPurchases   datatypes.JSON `json:"past_purchases"`
	BrowsingHistory datatypes.JSON `json:"browsing_history"`

	City      string   `gorm:"type:text" json:"city,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Customer) TableName() string { return "customers" }
