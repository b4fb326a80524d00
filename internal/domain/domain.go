package domain

import (
	"github.com/yungbote/salesagent-backend/internal/domain/chat"
	"github.com/yungbote/salesagent-backend/internal/domain/commerce"
	"github.com/yungbote/salesagent-backend/internal/domain/customer"
)

type (
	Customer = customer.Customer

	Product        = commerce.Product
	Promotion      = commerce.Promotion
	Coupon         = commerce.Coupon
	InventoryLevel = commerce.InventoryLevel
	Store          = commerce.Store
	StoreInventory = commerce.StoreInventory
	CartLine       = commerce.CartLine

	ConversationLog = chat.ConversationLog
	ChannelSession  = chat.ChannelSession
)

const (
	CouponPercent = commerce.CouponPercent
	CouponAmount  = commerce.CouponAmount
)

// Models lists every table owned by the service, in migration order.
func Models() []any {
	return []any{
		&Customer{},
		&Product{},
		&Promotion{},
		&Coupon{},
		&InventoryLevel{},
		&Store{},
		&StoreInventory{},
		&CartLine{},
		&ConversationLog{},
		&ChannelSession{},
	}
}
