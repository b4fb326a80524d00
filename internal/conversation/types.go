package conversation

import (
	"strings"
	"time"

	"github.com/yungbote/salesagent-backend/internal/pricing"
)

const (
	MaxCartItems           = 50
	MaxConversationHistory = 100
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

type Intent string

const (
	IntentGreeting       Intent = "greeting"
	IntentBrowse         Intent = "browse"
	IntentSearch         Intent = "search"
	IntentRecommend      Intent = "recommend"
	IntentAddToCart      Intent = "add_to_cart"
	IntentCheckout       Intent = "checkout"
	IntentInventoryCheck Intent = "inventory_check"
	IntentLoyalty        Intent = "loyalty"
	IntentSupport        Intent = "support"
	IntentGeneralChat    Intent = "general_chat"
)

var intents = []Intent{
	IntentGreeting,
	IntentBrowse,
	IntentSearch,
	IntentRecommend,
	IntentAddToCart,
	IntentCheckout,
	IntentInventoryCheck,
	IntentLoyalty,
	IntentSupport,
	IntentGeneralChat,
}

// Intents returns the fixed intent vocabulary.
func Intents() []Intent {
	out := make([]Intent, len(intents))
	copy(out, intents)
	return out
}

func ParseIntent(s string) (Intent, bool) {
	v := Intent(strings.ToLower(strings.TrimSpace(s)))
	for _, i := range intents {
		if i == v {
			return i, true
		}
	}
	return "", false
}

type Channel string

const (
	ChannelWeb      Channel = "web"
	ChannelMobile   Channel = "mobile"
	ChannelWhatsApp Channel = "whatsapp"
	ChannelTelegram Channel = "telegram"
	ChannelSMS      Channel = "sms"
	ChannelEmail    Channel = "email"
)

func ParseChannel(s string) (Channel, bool) {
	switch c := Channel(strings.ToLower(strings.TrimSpace(s))); c {
	case ChannelWeb, ChannelMobile, ChannelWhatsApp, ChannelTelegram, ChannelSMS, ChannelEmail:
		return c, true
	}
	return "", false
}

type Message struct {
	Role      Role           `json:"role"`
	Content   string         `json:"content"`
	Timestamp time.Time      `json:"timestamp"`
	Worker    string         `json:"agent_name,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

type CartItem struct {
	ProductID string    `json:"product_id"`
	Name      string    `json:"name"`
	Quantity  int       `json:"quantity"`
	UnitPrice float64   `json:"price"`
	Color     string    `json:"color,omitempty"`
	Size      string    `json:"size,omitempty"`
	AddedAt   time.Time `json:"added_at"`
}

func (c CartItem) LineTotal() float64 {
	return float64(c.Quantity) * c.UnitPrice
}

func (c CartItem) sameKey(productID, color, size string) bool {
	return c.ProductID == productID && c.Color == color && c.Size == size
}

type Location struct {
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
	City string  `json:"city,omitempty"`
}

type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

type Preferences struct {
	FavoriteCategories []string    `json:"favorite_categories,omitempty"`
	Brands             []string    `json:"brands,omitempty"`
	PriceRange         *PriceRange `json:"price_range,omitempty"`
}

func (p Preferences) Empty() bool {
	return len(p.FavoriteCategories) == 0 && len(p.Brands) == 0 && p.PriceRange == nil
}

type Purchase struct {
	ProductID   string    `json:"product_id"`
	Name        string    `json:"name,omitempty"`
	Category    string    `json:"category,omitempty"`
	Price       float64   `json:"price,omitempty"`
	PurchasedAt time.Time `json:"purchased_at,omitempty"`
}

type BrowsedItem struct {
	ProductID string    `json:"product_id"`
	Category  string    `json:"category,omitempty"`
	ViewedAt  time.Time `json:"viewed_at,omitempty"`
}

// CustomerContext is the profile snapshot threaded through a run.
type CustomerContext struct {
	UserID          string        `json:"user_id"`
	Name            string        `json:"name,omitempty"`
	Email           string        `json:"email,omitempty"`
	LoyaltyTier     pricing.Tier  `json:"loyalty_tier"`
	LoyaltyPoints   int           `json:"loyalty_points"`
	TotalSpent      float64       `json:"total_spent"`
	Preferences     Preferences   `json:"preferences"`
	PastPurchases   []Purchase    `json:"past_purchases,omitempty"`
	BrowsingHistory []BrowsedItem `json:"browsing_history,omitempty"`
	Location        *Location     `json:"location,omitempty"`
}

type WorkerOutput struct {
	Worker     string         `json:"agent_name"`
	Content    string         `json:"content"`
	Data       map[string]any `json:"structured_data,omitempty"`
	Confidence float64        `json:"confidence"`
	Latency    time.Duration  `json:"latency"`
	Timestamp  time.Time      `json:"timestamp"`
}

type ErrorRecord struct {
	Message   string    `json:"message"`
	Worker    string    `json:"agent_name,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
