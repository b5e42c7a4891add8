package declare_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/conddispatch/internal/declare"
	"github.com/zjrosen/conddispatch/internal/dispatch"
)

type celsius float64
type fahrenheit float64

func TestFunc_RegistersOnceAndReturnsImplementation(t *testing.T) {
	reg := dispatch.NewRegistry()
	impl := declare.Func(reg, "greet", dispatch.Always(), func(context.Context, dispatch.Args) (any, error) {
		return "hi", nil
	}, dispatch.WithLabel("hello"))

	require.Len(t, reg.Candidates("greet"), 1)
	require.Equal(t, "hello", reg.Candidates("greet")[0].Label)

	direct, err := impl(context.Background(), dispatch.Positional())
	require.NoError(t, err)
	require.Equal(t, "hi", direct)
}

func TestOn_DispatchesByFirstArgumentType(t *testing.T) {
	reg := dispatch.NewRegistry()
	toKelvinC := declare.On(reg, "kelvin", func(_ context.Context, c celsius) (float64, error) {
		return float64(c) + 273.15, nil
	})
	declare.On(reg, "kelvin", func(_ context.Context, f fahrenheit) (float64, error) {
		return (float64(f)-32)*5/9 + 273.15, nil
	})

	k, err := dispatch.Call[float64](context.Background(), reg, "kelvin", dispatch.Positional(fahrenheit(32)))
	require.NoError(t, err)
	require.InDelta(t, 273.15, k, 1e-9)

	k, err = toKelvinC(context.Background(), celsius(0))
	require.NoError(t, err)
	require.InDelta(t, 273.15, k, 1e-9)

	_, err = reg.Dispatch(context.Background(), "kelvin", dispatch.Positional(42))
	require.ErrorIs(t, err, dispatch.ErrNoMatch)
}

func TestOn_PropagatesError(t *testing.T) {
	reg := dispatch.NewRegistry()
	want := errors.New("below absolute zero")
	declare.On(reg, "kelvin", func(_ context.Context, c celsius) (float64, error) {
		return 0, want
	})

	_, err := reg.Dispatch(context.Background(), "kelvin", dispatch.Positional(celsius(-300)))
	require.Same(t, want, err)
}

func TestSet_RegistersInDeclarationOrder(t *testing.T) {
	reg := dispatch.NewRegistry()
	ret := func(v string) dispatch.Implementation {
		return func(context.Context, dispatch.Args) (any, error) { return v, nil }
	}

	cands := declare.Group(reg, "classify").
		Otherwise(ret("other")).
		When(dispatch.When(func(a dispatch.Args) bool { _, ok := dispatch.Arg[int](a, 0); return ok }), ret("int")).
		When(dispatch.When(func(a dispatch.Args) bool { _, ok := dispatch.Arg[string](a, 0); return ok }), ret("string")).
		Register()

	require.Len(t, cands, 3)
	require.Equal(t, 0, cands[0].Order)
	require.Equal(t, 1, cands[1].Order)
	require.True(t, cands[2].Default)

	for arg, want := range map[any]string{1: "int", "x": "string", 2.5: "other"} {
		got, err := reg.Dispatch(context.Background(), "classify", dispatch.Positional(arg))
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}
