// Package dispatch implements conditional dispatch: choosing, at call time,
// which of several registered implementations of a logical operation runs,
// based on predicates evaluated against the call's arguments.
//
// # Core Types
//
// Registry owns every dispatch group. A group is an ordered list of
// Candidates, each pairing a Predicate with an Implementation, plus at most
// one default candidate that is considered only after every other candidate
// declined.
//
// Resolution is first-registered-match-wins: candidates are tried in
// registration order and the first predicate returning true wins. Later
// predicates are never evaluated for that call. There is no specificity
// ranking.
//
// # Failure Modes
//
//   - *NoMatchError (errors.Is ErrNoMatch): nothing matched and the group has no default.
//   - *PredicateError (errors.Is ErrPredicate): a predicate returned an error or
//     panicked; resolution stops immediately.
//   - Implementation errors are returned to the caller untouched.
//
// # Concurrency
//
// Each group publishes an immutable Snapshot through an atomic pointer, so
// resolution never takes a lock. Mutations are serialized per group, and the
// registry notifies its Invalidators before releasing the group lock, which
// is how the resolution cache in package rescache stays coherent.
//
// # Process Scope
//
// Default returns a lazily constructed process-wide registry and ResetDefault
// discards it. Library code should accept a *Registry (or the Resolver and
// Dispatcher interfaces) instead of reaching for Default.
package dispatch
