package commerce

import (
	"time"

	"gorm.io/datatypes"
)

type Product struct {
	ProductID   string `gorm:"type:text;primaryKey" json:"product_id"`
	Name        string `gorm:"type:text;not null;index" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	Category    string `gorm:"type:text;not null;index" json:"category"`
	Brand       string `gorm:"type:text" json:"brand"`

	Price           float64 `gorm:"not null" json:"price"`
	DiscountPercent float64 `gorm:"not null" json:"discount_percent"`
	Stock           int     `gorm:"not null" json:"stock"`
	Rating          float64 `gorm:"not null" json:"rating"`
	Featured        bool    `gorm:"not null;index" json:"featured"`
	IsActive        bool    `gorm:"not null;index" json:"is_active"`

	Colors datatypes.JSON `json:"colors"`
	Sizes  datatypes.JSON `json:"sizes"`
	Tags   datatypes.JSON `json:"tags"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Product) TableName() string { return "products" }

type Promotion struct {
	PromotionID     string         `gorm:"type:text;primaryKey" json:"promotion_id"`
	Name            string         `gorm:"type:text;not null" json:"name"`
	Description     string         `gorm:"type:text" json:"description"`
	DiscountPercent float64        `gorm:"not null" json:"discount_percent"`
	Category        string         `gorm:"type:text;index" json:"category,omitempty"`
	ProductIDs      datatypes.JSON `json:"product_ids"`
	IsActive        bool           `gorm:"not null;index" json:"is_active"`
	StartsAt        time.Time      `gorm:"not null" json:"starts_at"`
	EndsAt          time.Time      `gorm:"not null;index" json:"ends_at"`
}

func (Promotion) TableName() string { return "promotions" }

type Coupon struct {
	Code        string  `gorm:"type:text;primaryKey" json:"code"`
	Tier        string  `gorm:"type:text;not null;index" json:"tier"`
	Kind        string  `gorm:"type:text;not null" json:"kind"` // percent|amount
	Value       float64 `gorm:"not null" json:"value"`
	MinOrder    float64 `gorm:"not null" json:"min_order"`
	Description string  `gorm:"type:text" json:"description"`
	IsActive    bool    `gorm:"not null;index" json:"is_active"`
}

func (Coupon) TableName() string { return "coupons" }

const (
	CouponPercent = "percent"
	CouponAmount  = "amount"
)
