// Package rescache memoizes dispatch resolutions.
//
// A Cache wraps a dispatch.Registry. Each call is reduced to a Fingerprint
// describing the kinds of its arguments; the first resolution for a
// (group, fingerprint) pair is stored and later calls with the same
// fingerprint reuse it without evaluating any predicate.
//
// This is only sound when predicates look at argument kinds, never at
// argument values. The cache cannot detect a value-inspecting predicate;
// supply WithFingerprint to encode whatever such a predicate depends on, or
// disable caching for that registry.
//
// Entries are keyed by the group's snapshot version as well, and every
// registry mutation deletes the group's entries before the mutation becomes
// visible. Failed resolutions are never stored.
package rescache
