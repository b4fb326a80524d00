package commerce

import "time"

type InventoryLevel struct {
	ProductID      string    `gorm:"type:text;primaryKey" json:"product_id"`
	WarehouseStock int       `gorm:"not null" json:"warehouse_stock"`
	Reserved       int       `gorm:"not null" json:"reserved"`
	UpdatedAt      time.Time `gorm:"not null" json:"updated_at"`
}

func (InventoryLevel) TableName() string { return "inventory_levels" }

type Store struct {
	StoreID   string  `gorm:"type:text;primaryKey" json:"store_id"`
	Name      string  `gorm:"type:text;not null" json:"name"`
	Address   string  `gorm:"type:text" json:"address"`
	City      string  `gorm:"type:text;index" json:"city"`
	Phone     string  `gorm:"type:text" json:"phone,omitempty"`
	Latitude  float64 `gorm:"not null" json:"latitude"`
	Longitude float64 `gorm:"not null" json:"longitude"`
	IsActive  bool    `gorm:"not null" json:"is_active"`
}

func (Store) TableName() string { return "stores" }

type StoreInventory struct {
	StoreID   string    `gorm:"type:text;primaryKey" json:"store_id"`
	ProductID string    `gorm:"type:text;primaryKey;index" json:"product_id"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (StoreInventory) TableName() string { return "store_inventory" }
