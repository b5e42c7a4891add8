package dispatch

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Args carries the positional and keyword arguments of a single call.
type Args struct {
	Positional []any
	Keyword    map[string]any
}

// Positional builds Args from positional values only.
func Positional(vals ...any) Args {
	return Args{Positional: vals}
}

// With returns a copy of a with the keyword argument name set to v.
// The receiver is not modified.
func (a Args) With(name string, v any) Args {
	kw := make(map[string]any, len(a.Keyword)+1)
	maps.Copy(kw, a.Keyword)
	kw[name] = v
	return Args{Positional: a.Positional, Keyword: kw}
}

// Len returns the number of positional arguments.
func (a Args) Len() int {
	return len(a.Positional)
}

// At returns the i-th positional argument.
func (a Args) At(i int) (any, bool) {
	if i < 0 || i >= len(a.Positional) {
		return nil, false
	}
	return a.Positional[i], true
}

// Kw returns the keyword argument called name.
func (a Args) Kw(name string) (any, bool) {
	v, ok := a.Keyword[name]
	return v, ok
}

// KeywordNames returns the keyword names in sorted order.
func (a Args) KeywordNames() []string {
	return slices.Sorted(maps.Keys(a.Keyword))
}

func (a Args) String() string {
	parts := make([]string, 0, len(a.Positional)+len(a.Keyword))
	for _, v := range a.Positional {
		parts = append(parts, fmt.Sprintf("%v", v))
	}
	for _, name := range a.KeywordNames() {
		parts = append(parts, fmt.Sprintf("%s=%v", name, a.Keyword[name]))
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Arg returns the i-th positional argument as a T.
// ok is false when the argument is missing or has a different type.
func Arg[T any](a Args, i int) (T, bool) {
	var zero T
	v, ok := a.At(i)
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	return t, ok
}

// Kwarg returns the keyword argument called name as a T.
func Kwarg[T any](a Args, name string) (T, bool) {
	var zero T
	v, ok := a.Kw(name)
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	return t, ok
}
