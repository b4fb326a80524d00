package commerce

import (
	"time"

	"github.com/google/uuid"
)

// CartLine is one persisted cart row. Color and Size use "" for "not specified" so the
// unique key works on every driver.
type CartLine struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    string    `gorm:"type:text;not null;uniqueIndex:idx_cart_line_key,priority:1" json:"user_id"`
	ProductID string    `gorm:"type:text;not null;uniqueIndex:idx_cart_line_key,priority:2" json:"product_id"`
	Color     string    `gorm:"type:text;not null;uniqueIndex:idx_cart_line_key,priority:3" json:"color"`
	Size      string    `gorm:"type:text;not null;uniqueIndex:idx_cart_line_key,priority:4" json:"size"`

	Name      string  `gorm:"type:text;not null" json:"name"`
	UnitPrice float64 `gorm:"not null" json:"unit_price"`
	Quantity  int     `gorm:"not null" json:"quantity"`

	AddedAt   time.Time `gorm:"not null;index" json:"added_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (CartLine) TableName() string { return "cart_lines" }
