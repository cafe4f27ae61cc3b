package dbctx

import (
	"context"

	"gorm.io/gorm"
)

// Context bundles a request context with an optional GORM transaction.
type Context struct {
	Ctx context.Context
	Tx  *gorm.DB
}

// Background is a Context with no transaction, for startup and tests.
func Background() Context {
	return Context{Ctx: context.Background()}
}

// WithoutCancel keeps the values and transaction of c but drops its deadline
// and cancellation, for writes that must land after the caller has gone away.
func (c Context) WithoutCancel() Context {
	if c.Ctx == nil {
		return Context{Ctx: context.Background(), Tx: c.Tx}
	}
	return Context{Ctx: context.WithoutCancel(c.Ctx), Tx: c.Tx}
}
