package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/salesagent-backend/internal/data/repos/cart"
	"github.com/yungbote/salesagent-backend/internal/data/repos/catalog"
	"github.com/yungbote/salesagent-backend/internal/data/repos/chat"
	"github.com/yungbote/salesagent-backend/internal/data/repos/customer"
	"github.com/yungbote/salesagent-backend/internal/data/repos/inventory"
	"github.com/yungbote/salesagent-backend/internal/platform/logger"
)

type CustomerRepo = customer.CustomerRepo

type ProductRepo = catalog.ProductRepo
type ProductFilter = catalog.ProductFilter
type PromotionRepo = catalog.PromotionRepo
type CouponRepo = catalog.CouponRepo

type InventoryRepo = inventory.InventoryRepo
type StoreRepo = inventory.StoreRepo
type StoreStock = inventory.StoreStock

type CartRepo = cart.CartRepo

type ConversationLogRepo = chat.ConversationLogRepo
type ChannelSessionRepo = chat.ChannelSessionRepo

func NewCustomerRepo(db *gorm.DB, baseLog *logger.Logger) CustomerRepo {
	return customer.NewCustomerRepo(db, baseLog)
}

func NewProductRepo(db *gorm.DB, baseLog *logger.Logger) ProductRepo {
	return catalog.NewProductRepo(db, baseLog)
}
func NewPromotionRepo(db *gorm.DB, baseLog *logger.Logger) PromotionRepo {
	return catalog.NewPromotionRepo(db, baseLog)
}
func NewCouponRepo(db *gorm.DB, baseLog *logger.Logger) CouponRepo {
	return catalog.NewCouponRepo(db, baseLog)
}

func NewInventoryRepo(db *gorm.DB, baseLog *logger.Logger) InventoryRepo {
	return inventory.NewInventoryRepo(db, baseLog)
}
func NewStoreRepo(db *gorm.DB, baseLog *logger.Logger) StoreRepo {
	return inventory.NewStoreRepo(db, baseLog)
}

func NewCartRepo(db *gorm.DB, baseLog *logger.Logger) CartRepo {
	return cart.NewCartRepo(db, baseLog)
}

func NewConversationLogRepo(db *gorm.DB, baseLog *logger.Logger) ConversationLogRepo {
	return chat.NewConversationLogRepo(db, baseLog)
}
func NewChannelSessionRepo(db *gorm.DB, baseLog *logger.Logger) ChannelSessionRepo {
	return chat.NewChannelSessionRepo(db, baseLog)
}
