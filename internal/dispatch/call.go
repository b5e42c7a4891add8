package dispatch

import (
	"context"
	"fmt"
	"sync"
)

// Call dispatches through d and asserts the result to R.
// A nil result yields the zero R without error.
func Call[R any](ctx context.Context, d Dispatcher, group string, args Args) (R, error) {
	var zero R
	res, err := d.Dispatch(ctx, group, args)
	if err != nil {
		return zero, err
	}
	if res == nil {
		return zero, nil
	}
	v, ok := res.(R)
	if !ok {
		return zero, fmt.Errorf("dispatch %q: %w: got %T, want %T", group, ErrResultType, res, zero)
	}
	return v, nil
}

var (
	defaultMu       sync.Mutex
	defaultRegistry *Registry
)

// Default returns the process-wide registry, creating it on first use.
func Default() *Registry {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultRegistry == nil {
		defaultRegistry = NewRegistry()
	}
	return defaultRegistry
}

// ResetDefault discards the process-wide registry. The next Default call
// returns a fresh, empty one.
func ResetDefault() {
	defaultMu.Lock()
	old := defaultRegistry
	defaultRegistry = nil
	defaultMu.Unlock()
	if old != nil {
		old.Reset()
		old.Close()
	}
}
