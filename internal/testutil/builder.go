// Package testutil builds dispatch registries for tests, with counters on
// every predicate and implementation.
package testutil

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/zjrosen/conddispatch/internal/dispatch"
)

// Counter records how often a candidate's predicate and implementation ran.
type Counter struct {
	Evaluated atomic.Int64
	Invoked   atomic.Int64
}

type candidateData struct {
	group     string
	label     string
	pred      func(dispatch.Args) bool
	result    any
	err       error
	isDefault bool
}

// Builder accumulates candidates and registers them in declaration order.
type Builder struct {
	t          *testing.T
	candidates []candidateData
}

// NewBuilder creates an empty builder.
func NewBuilder(t *testing.T) *Builder {
	t.Helper()
	return &Builder{t: t}
}

// WithCandidate adds a candidate to group that returns result when pred accepts.
func (b *Builder) WithCandidate(group, label string, pred func(dispatch.Args) bool, result any) *Builder {
	b.candidates = append(b.candidates, candidateData{group: group, label: label, pred: pred, result: result})
	return b
}

// WithFailing adds a candidate whose implementation returns err.
func (b *Builder) WithFailing(group, label string, pred func(dispatch.Args) bool, err error) *Builder {
	b.candidates = append(b.candidates, candidateData{group: group, label: label, pred: pred, err: err})
	return b
}

// WithDefault sets the default of group.
func (b *Builder) WithDefault(group, label string, result any) *Builder {
	b.candidates = append(b.candidates, candidateData{group: group, label: label, result: result, isDefault: true})
	return b
}

// Build registers every candidate on a fresh registry. Counters are keyed by label.
func (b *Builder) Build() (*dispatch.Registry, map[string]*Counter) {
	b.t.Helper()
	reg := dispatch.NewRegistry()
	b.t.Cleanup(reg.Close)
	counters := make(map[string]*Counter, len(b.candidates))

	for _, c := range b.candidates {
		cnt := &Counter{}
		counters[c.label] = cnt

		impl := func(context.Context, dispatch.Args) (any, error) {
			cnt.Invoked.Add(1)
			return c.result, c.err
		}
		if c.isDefault {
			reg.RegisterDefault(c.group, impl, dispatch.WithLabel(c.label))
			continue
		}
		pred := c.pred
		reg.Register(c.group, func(args dispatch.Args) (bool, error) {
			cnt.Evaluated.Add(1)
			return pred(args), nil
		}, impl, dispatch.WithLabel(c.label))
	}
	return reg, counters
}
