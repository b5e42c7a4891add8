package rescache_test

import (
	"errors"
	"testing"

	"pgregory.net/rapid"

	"github.com/zjrosen/conddispatch/internal/dispatch"
	"github.com/zjrosen/conddispatch/internal/rescache"
)

type triangle struct{}

// kinds are the argument values the generated calls draw from.
var kinds = []any{circle{}, square{}, triangle{}, 1, "s", 2.5, nil}

// kindPredicates only look at argument kinds, which is the precondition for
// caching to be sound.
var kindPredicates = []dispatch.Predicate{
	isA[circle](nil),
	isA[square](nil),
	isA[int](nil),
	dispatch.When(func(a dispatch.Args) bool { return a.Len() == 2 }),
	dispatch.When(func(a dispatch.Args) bool { _, ok := a.Kw("unit"); return ok }),
	dispatch.When(func(a dispatch.Args) bool { _, ok := dispatch.Arg[string](a, 1); return ok }),
}

func drawArgs(t *rapid.T) dispatch.Args {
	n := rapid.IntRange(0, 3).Draw(t, "positional")
	args := dispatch.Args{}
	for range n {
		args.Positional = append(args.Positional, kinds[rapid.IntRange(0, len(kinds)-1).Draw(t, "kind")])
	}
	if rapid.Bool().Draw(t, "unit") {
		args = args.With("unit", kinds[rapid.IntRange(0, len(kinds)-1).Draw(t, "unitKind")])
	}
	return args
}

// TestProperty_CacheIsTransparent checks that, for a fixed registry, cached
// and uncached resolution always agree, interleaved with registrations.
func TestProperty_CacheIsTransparent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		reg := dispatch.NewRegistry()
		c := rescache.New(reg)

		steps := rapid.IntRange(1, 40).Draw(t, "steps")
		for range steps {
			if rapid.IntRange(0, 4).Draw(t, "op") == 0 {
				if rapid.IntRange(0, 5).Draw(t, "defaultOp") == 0 {
					reg.RegisterDefault("g", returns("default"))
				} else {
					p := kindPredicates[rapid.IntRange(0, len(kindPredicates)-1).Draw(t, "pred")]
					reg.Register("g", p, returns("candidate"))
				}
				continue
			}

			args := drawArgs(t)
			want, wantErr := reg.Resolve("g", args)
			got, gotErr := c.Resolve("g", args)
			if (wantErr == nil) != (gotErr == nil) {
				t.Fatalf("error mismatch for %s: registry=%v cache=%v", args, wantErr, gotErr)
			}
			if wantErr != nil {
				if !errors.Is(gotErr, dispatch.ErrNoMatch) {
					t.Fatalf("expected ErrNoMatch from cache, got %v", gotErr)
				}
				continue
			}
			if want != got {
				t.Fatalf("candidate mismatch for %s: registry=%s cache=%s", args, want.Name(), got.Name())
			}
		}
	})
}
