package page

import (
	"context"
	"errors"
	"sync/atomic"
)

// MaxDepth is the number of nested generations allowed per request
const MaxDepth = 3

// ErrRecursionLimit is returned by Enter when generation re-enters
// itself too deeply
var ErrRecursionLimit = errors.New("schema generation recursion limit reached")

type guardKey struct{}

type guard struct {
	depth atomic.Int32
}

// Enter marks the start of a generation. The returned context carries
// the request's guard and leave must be called when generation ends.
// Enter refuses once MaxDepth generations are active on the context.
func Enter(ctx context.Context) (context.Context, func(), error) {
	g, ok := ctx.Value(guardKey{}).(*guard)
	if !ok {
		g = &guard{}
		ctx = context.WithValue(ctx, guardKey{}, g)
	}
	if g.depth.Add(1) > MaxDepth {
		g.depth.Add(-1)
		return ctx, func() {}, ErrRecursionLimit
	}
	return ctx, func() { g.depth.Add(-1) }, nil
}

// Depth returns the number of active generations on the context
func Depth(ctx context.Context) int {
	if g, ok := ctx.Value(guardKey{}).(*guard); ok {
		return int(g.depth.Load())
	}
	return 0
}
