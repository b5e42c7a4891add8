package dispatch

import (
	"context"

	"github.com/zjrosen/conddispatch/internal/pubsub"
)

// Resolver picks the candidate that handles a call.
type Resolver interface {
	Resolve(group string, args Args) (*Candidate, error)
}

// Dispatcher resolves a call and invokes the winning implementation.
type Dispatcher interface {
	Dispatch(ctx context.Context, group string, args Args) (any, error)
}

// Invalidator is notified whenever a group's candidate list changes.
// InvalidateGroup is called while the group is still locked, so it must not
// call back into the registry for the same group.
type Invalidator interface {
	InvalidateGroup(group string)
}

// DispatcherFunc adapts a function to the Dispatcher interface.
type DispatcherFunc func(ctx context.Context, group string, args Args) (any, error)

// Dispatch calls f.
func (f DispatcherFunc) Dispatch(ctx context.Context, group string, args Args) (any, error) {
	return f(ctx, group, args)
}

// Compile-time checks.
var (
	_ Resolver                  = (*Registry)(nil)
	_ Dispatcher                = (*Registry)(nil)
	_ pubsub.Subscriber[Change] = (*Registry)(nil)
)

// Middleware decorates a Dispatcher.
type Middleware func(next Dispatcher) Dispatcher

// Chain wraps d with mws. The first middleware is the outermost.
func Chain(d Dispatcher, mws ...Middleware) Dispatcher {
	for i := len(mws) - 1; i >= 0; i-- {
		d = mws[i](d)
	}
	return d
}
