// Package declare lets host code declare dispatch variants next to the
// functions that implement them. Every helper performs exactly one
// registration per declared variant and hands the function back unchanged.
package declare

import (
	"context"

	"github.com/zjrosen/conddispatch/internal/dispatch"
)

// Func registers impl for group under pred and returns impl unchanged.
func Func(reg *dispatch.Registry, group string, pred dispatch.Predicate, impl dispatch.Implementation, opts ...dispatch.CandidateOption) dispatch.Implementation {
	reg.Register(group, pred, impl, opts...)
	return impl
}

// On registers fn for calls whose first positional argument is a T, and
// returns fn unchanged so it can still be called directly.
func On[T any, R any](reg *dispatch.Registry, group string, fn func(ctx context.Context, v T) (R, error), opts ...dispatch.CandidateOption) func(ctx context.Context, v T) (R, error) {
	pred := dispatch.When(func(args dispatch.Args) bool {
		_, ok := dispatch.Arg[T](args, 0)
		return ok
	})
	impl := func(ctx context.Context, args dispatch.Args) (any, error) {
		v, _ := dispatch.Arg[T](args, 0)
		return fn(ctx, v)
	}
	reg.Register(group, pred, impl, opts...)
	return fn
}

type variant struct {
	pred dispatch.Predicate
	impl dispatch.Implementation
	opts []dispatch.CandidateOption
}

// Set collects the variants of one group and registers them together, in
// declaration order.
type Set struct {
	reg      *dispatch.Registry
	group    string
	variants []variant
	fallback *variant
}

// Group starts a declaration set for name.
func Group(reg *dispatch.Registry, name string) *Set {
	return &Set{reg: reg, group: name}
}

// When declares a variant.
func (s *Set) When(pred dispatch.Predicate, impl dispatch.Implementation, opts ...dispatch.CandidateOption) *Set {
	s.variants = append(s.variants, variant{pred: pred, impl: impl, opts: opts})
	return s
}

// Otherwise declares the group default.
func (s *Set) Otherwise(impl dispatch.Implementation, opts ...dispatch.CandidateOption) *Set {
	s.fallback = &variant{impl: impl, opts: opts}
	return s
}

// Register performs the registrations and returns the created candidates,
// default last.
func (s *Set) Register() []*dispatch.Candidate {
	out := make([]*dispatch.Candidate, 0, len(s.variants)+1)
	for _, v := range s.variants {
		out = append(out, s.reg.Register(s.group, v.pred, v.impl, v.opts...))
	}
	if s.fallback != nil {
		out = append(out, s.reg.RegisterDefault(s.group, s.fallback.impl, s.fallback.opts...))
	}
	return out
}
