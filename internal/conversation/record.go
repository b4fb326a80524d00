package conversation

import (
	"errors"
	"strings"
	"time"

	"github.com/yungbote/salesagent-backend/internal/pricing"
)

var ErrCartFull = errors.New("cart is full")

// Record is the conversation state owned by exactly one pipeline run.
type Record struct {
	SessionID     string
	UserID        string
	Channel       Channel
	Messages      []Message
	CurrentIntent Intent
	LastWorker    string
	Cart          []CartItem
	Customer      *CustomerContext
	Outputs       []WorkerOutput
	Errors        []ErrorRecord
	WorkflowStep  string
	IsActive      bool

	// Metadata is run-scoped scratch space (routing decision, final response). It is not
	// part of the persisted conversation shape.
	Metadata map[string]any
}

func NewRecord(userID string, channel Channel, sessionID string) *Record {
	return &Record{
		SessionID: sessionID,
		UserID:    userID,
		Channel:   channel,
		IsActive:  true,
		Metadata:  map[string]any{},
	}
}

func now() time.Time { return time.Now().UTC() }

func (r *Record) AddMessage(role Role, content, worker string, meta map[string]any) {
	r.Messages = append(r.Messages, Message{
		Role:      role,
		Content:   content,
		Timestamp: now(),
		Worker:    worker,
		Metadata:  meta,
	})
}

func (r *Record) AddUserMessage(content string) {
	r.AddMessage(RoleUser, content, "", nil)
}

func (r *Record) AddSystemMessage(content string) {
	r.AddMessage(RoleSystem, content, "", nil)
}

func (r *Record) AddError(message, worker string) {
	r.Errors = append(r.Errors, ErrorRecord{Message: message, Worker: worker, Timestamp: now()})
}

func (r *Record) ErrorCount() int { return len(r.Errors) }

func (r *Record) HasErrors() bool { return len(r.Errors) > 0 }

// SetIntent sets the current intent once per run. Labels outside the vocabulary are refused.
func (r *Record) SetIntent(i Intent) bool {
	if r.CurrentIntent != "" {
		return false
	}
	if _, ok := ParseIntent(string(i)); !ok {
		return false
	}
	r.CurrentIntent = i
	return true
}

// LatestUserMessage scans newest-first and returns the first user-authored message.
func (r *Record) LatestUserMessage() (Message, bool) {
	for i := len(r.Messages) - 1; i >= 0; i-- {
		if r.Messages[i].Role == RoleUser {
			return r.Messages[i], true
		}
	}
	return Message{}, false
}

func (r *Record) HasUserMessage() bool {
	_, ok := r.LatestUserMessage()
	return ok
}

// LatestUserText returns the lowercased latest user message, or "".
func (r *Record) LatestUserText() string {
	m, ok := r.LatestUserMessage()
	if !ok {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(m.Content))
}

func (r *Record) RecentMessages(n int) []Message {
	if n <= 0 || len(r.Messages) <= n {
		return r.Messages
	}
	return r.Messages[len(r.Messages)-n:]
}

// TrimHistory keeps the newest max messages.
func (r *Record) TrimHistory(max int) {
	if max > 0 && len(r.Messages) > max {
		r.Messages = append([]Message(nil), r.Messages[len(r.Messages)-max:]...)
	}
}

// AddCartItem merges on (product_id, color, size) or appends a new line.
func (r *Record) AddCartItem(item CartItem) error {
	if item.Quantity < 1 {
		item.Quantity = 1
	}
	for i := range r.Cart {
		if r.Cart[i].sameKey(item.ProductID, item.Color, item.Size) {
			r.Cart[i].Quantity += item.Quantity
			return nil
		}
	}
	if len(r.Cart) >= MaxCartItems {
		return ErrCartFull
	}
	if item.AddedAt.IsZero() {
		item.AddedAt = now()
	}
	r.Cart = append(r.Cart, item)
	return nil
}

// SetCartQuantity replaces a line's quantity; qty <= 0 removes the line.
func (r *Record) SetCartQuantity(productID, color, size string, qty int) bool {
	for i := range r.Cart {
		if r.Cart[i].sameKey(productID, color, size) {
			if qty <= 0 {
				r.Cart = append(r.Cart[:i], r.Cart[i+1:]...)
			} else {
				r.Cart[i].Quantity = qty
			}
			return true
		}
	}
	return false
}

func (r *Record) RemoveCartItem(productID, color, size string) bool {
	return r.SetCartQuantity(productID, color, size, 0)
}

// ReplaceCart resyncs the in-memory cart, dropping lines with quantity < 1.
func (r *Record) ReplaceCart(items []CartItem) {
	out := make([]CartItem, 0, len(items))
	for _, it := range items {
		if it.Quantity >= 1 {
			out = append(out, it)
		}
	}
	r.Cart = out
}

func (r *Record) ClearCart() {
	r.Cart = nil
}

func (r *Record) CartTotal() float64 {
	var total float64
	for _, it := range r.Cart {
		total += it.LineTotal()
	}
	return total
}

// CartItemsCount is the number of distinct cart lines.
func (r *Record) CartItemsCount() int { return len(r.Cart) }

func (r *Record) CartLines() []pricing.Line {
	out := make([]pricing.Line, 0, len(r.Cart))
	for _, it := range r.Cart {
		out = append(out, pricing.Line{Quantity: it.Quantity, UnitPrice: it.UnitPrice})
	}
	return out
}

// MergeCustomer folds a profile lookup into the snapshot. Non-empty fields overwrite;
// balances are always carried by a lookup and overwrite too.
func (r *Record) MergeCustomer(c CustomerContext) {
	if r.Customer == nil {
		cp := c
		if !cp.LoyaltyTier.Valid() {
			cp.LoyaltyTier = pricing.ParseTier(string(cp.LoyaltyTier))
		}
		r.Customer = &cp
		return
	}
	cur := r.Customer
	if c.UserID != "" {
		cur.UserID = c.UserID
	}
	if c.Name != "" {
		cur.Name = c.Name
	}
	if c.Email != "" {
		cur.Email = c.Email
	}
	if c.LoyaltyTier != "" {
		cur.LoyaltyTier = pricing.ParseTier(string(c.LoyaltyTier))
	}
	cur.LoyaltyPoints = c.LoyaltyPoints
	cur.TotalSpent = c.TotalSpent
	if !c.Preferences.Empty() {
		cur.Preferences = c.Preferences
	}
	if c.PastPurchases != nil {
		cur.PastPurchases = c.PastPurchases
	}
	if c.BrowsingHistory != nil {
		cur.BrowsingHistory = c.BrowsingHistory
	}
	if c.Location != nil {
		cur.Location = c.Location
	}
}

// Tier returns the customer's tier, bronze when no profile is loaded.
func (r *Record) Tier() pricing.Tier {
	if r.Customer == nil {
		return pricing.TierBronze
	}
	return pricing.ParseTier(string(r.Customer.LoyaltyTier))
}

// CustomerName returns the profile name or fallback.
func (r *Record) CustomerName(fallback string) string {
	if r.Customer != nil && strings.TrimSpace(r.Customer.Name) != "" {
		return r.Customer.Name
	}
	return fallback
}

// AddWorkerOutput appends an output and marks its worker as the last one.
func (r *Record) AddWorkerOutput(out WorkerOutput) {
	if out.Timestamp.IsZero() {
		out.Timestamp = now()
	}
	r.Outputs = append(r.Outputs, out)
	r.LastWorker = out.Worker
}

func (r *Record) LastWorkerOutput() (WorkerOutput, bool) {
	if len(r.Outputs) == 0 {
		return WorkerOutput{}, false
	}
	return r.Outputs[len(r.Outputs)-1], true
}

func (r *Record) SetMeta(key string, v any) {
	if r.Metadata == nil {
		r.Metadata = map[string]any{}
	}
	r.Metadata[key] = v
}

func (r *Record) MetaString(key string) string {
	if r.Metadata == nil {
		return ""
	}
	s, _ := r.Metadata[key].(string)
	return s
}
