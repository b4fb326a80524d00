package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/salesagent-backend/internal/data/repos"
	"github.com/yungbote/salesagent-backend/internal/platform/logger"
)

type Repos struct {
	Customer   repos.CustomerRepo
	Product    repos.ProductRepo
	Promotion  repos.PromotionRepo
	Coupon     repos.CouponRepo
	Inventory  repos.InventoryRepo
	Store      repos.StoreRepo
	Cart       repos.CartRepo
	ConvLog    repos.ConversationLogRepo
	ChannelSes repos.ChannelSessionRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Customer:   repos.NewCustomerRepo(db, log),
		Product:    repos.NewProductRepo(db, log),
		Promotion:  repos.NewPromotionRepo(db, log),
		Coupon:     repos.NewCouponRepo(db, log),
		Inventory:  repos.NewInventoryRepo(db, log),
		Store:      repos.NewStoreRepo(db, log),
		Cart:       repos.NewCartRepo(db, log),
		ConvLog:    repos.NewConversationLogRepo(db, log),
		ChannelSes: repos.NewChannelSessionRepo(db, log),
	}
}
