package dbctx

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// Context bundles a request context with an optional GORM transaction.
type Context struct {
	Ctx context.Context
	Tx  *gorm.DB
}

func New(ctx context.Context) Context {
	return Context{Ctx: ctx}
}

// WithTimeout bounds the request context. A non-positive timeout leaves it unchanged.
func (c Context) WithTimeout(d time.Duration) (Context, context.CancelFunc) {
	ctx := c.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	if d <= 0 {
		return Context{Ctx: ctx, Tx: c.Tx}, func() {}
	}
	tctx, cancel := context.WithTimeout(ctx, d)
	return Context{Ctx: tctx, Tx: c.Tx}, cancel
}
