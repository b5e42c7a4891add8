package testutil

import "github.com/zjrosen/conddispatch/internal/dispatch"

// IsKind reports whether the first positional argument is a T.
func IsKind[T any](args dispatch.Args) bool {
	_, ok := dispatch.Arg[T](args, 0)
	return ok
}

// KindGroup returns a builder preset for group with int, string and float64
// candidates, labeled by kind, and no default.
func (b *Builder) KindGroup(group string) *Builder {
	return b.
		WithCandidate(group, "int", IsKind[int], "int").
		WithCandidate(group, "string", IsKind[string], "string").
		WithCandidate(group, "float64", IsKind[float64], "float64")
}
