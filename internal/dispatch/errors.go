package dispatch

import (
	"errors"
	"fmt"
)

// Dispatch errors
var (
	ErrNoMatch           = errors.New("no matching candidate")
	ErrPredicate         = errors.New("predicate failed")
	ErrCandidateNotFound = errors.New("candidate not registered")
	ErrResultType        = errors.New("unexpected result type")
)

// NoMatchError is returned when every candidate of a group declined the call
// and the group has no default.
type NoMatchError struct {
	Group     string
	Evaluated int
	Args      Args
}

func (e *NoMatchError) Error() string {
	return fmt.Sprintf("dispatch %q: %s among %d candidates for %s", e.Group, ErrNoMatch, e.Evaluated, e.Args)
}

// Is reports whether target is ErrNoMatch.
func (e *NoMatchError) Is(target error) bool {
	return target == ErrNoMatch
}

// PredicateError is returned when a predicate fails while being evaluated.
// Err is the predicate's own error, or a wrapped panic value.
type PredicateError struct {
	Group string
	Order int
	Label string
	Err   error
}

func (e *PredicateError) Error() string {
	name := fmt.Sprintf("#%d", e.Order)
	if e.Label != "" {
		name = fmt.Sprintf("#%d (%s)", e.Order, e.Label)
	}
	return fmt.Sprintf("dispatch %q: candidate %s: %s: %v", e.Group, name, ErrPredicate, e.Err)
}

// Unwrap returns the underlying predicate failure.
func (e *PredicateError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrPredicate.
func (e *PredicateError) Is(target error) bool {
	return target == ErrPredicate
}

// panicError converts a recovered panic value into an error, keeping the
// chain intact when the value already is one.
func panicError(r any) error {
	if err, ok := r.(error); ok {
		return fmt.Errorf("panic: %w", err)
	}
	return fmt.Errorf("panic: %v", r)
}

// Outcome classifies how a dispatch call ended, for spans and metrics.
type Outcome string

const (
	OutcomeOK                  Outcome = "ok"
	OutcomeNoMatch             Outcome = "no_match"
	OutcomePredicateError      Outcome = "predicate_error"
	OutcomeImplementationError Outcome = "implementation_error"
)

// Classify maps the error returned by Dispatch to an Outcome by inspecting
// its chain alone, so an implementation error wrapping ErrNoMatch reads as
// no_match. Middlewares use Observation.Outcome for exact labels.
func Classify(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, ErrNoMatch):
		return OutcomeNoMatch
	case errors.Is(err, ErrPredicate):
		return OutcomePredicateError
	default:
		return OutcomeImplementationError
	}
}
