package dispatch

import (
	"context"
	"strconv"

	"github.com/google/uuid"
)

// Predicate decides whether a candidate accepts a call.
// Predicates must be side-effect free; the registry does not check this.
type Predicate func(args Args) (bool, error)

// Implementation is the function invoked for the winning candidate.
type Implementation func(ctx context.Context, args Args) (any, error)

// When adapts an infallible boolean function into a Predicate.
func When(fn func(args Args) bool) Predicate {
	return func(args Args) (bool, error) {
		return fn(args), nil
	}
}

// Always matches every call.
func Always() Predicate {
	return func(Args) (bool, error) { return true, nil }
}

// Candidate is one registered variant of a dispatch group.
type Candidate struct {
	ID      uuid.UUID
	Group   string
	Order   int
	Label   string
	Default bool

	predicate Predicate
	impl      Implementation
}

// CandidateOption customizes a candidate at registration time.
type CandidateOption func(*Candidate)

// WithLabel attaches a human-readable label, used in listings and errors.
func WithLabel(label string) CandidateOption {
	return func(c *Candidate) {
		c.Label = label
	}
}

// Matches evaluates the candidate's predicate against args.
// A panicking predicate is reported as an error. Default candidates always match.
func (c *Candidate) Matches(args Args) (ok bool, err error) {
	if c.Default {
		return true, nil
	}
	defer func() {
		if r := recover(); r != nil {
			ok, err = false, panicError(r)
		}
	}()
	return c.predicate(args)
}

// Invoke runs the candidate's implementation. Errors and panics are not
// intercepted.
func (c *Candidate) Invoke(ctx context.Context, args Args) (any, error) {
	return c.impl(ctx, args)
}

// Name returns the label, or a positional name when no label was given.
func (c *Candidate) Name() string {
	if c.Label != "" {
		return c.Label
	}
	if c.Default {
		return "default"
	}
	return "candidate-" + strconv.Itoa(c.Order)
}
