package shapes

import (
	"context"
	"fmt"
	"math"

	"github.com/zjrosen/conddispatch/internal/declare"
	"github.com/zjrosen/conddispatch/internal/dispatch"
)

// Group names.
const (
	AreaGroup      = "area"
	PerimeterGroup = "perimeter"
)

// CircleArea returns πr².
func CircleArea(_ context.Context, c Circle) (float64, error) {
	return math.Pi * c.Radius * c.Radius, nil
}

// RectangleArea returns w×h.
func RectangleArea(_ context.Context, r Rectangle) (float64, error) {
	return r.Width * r.Height, nil
}

// SquareArea returns s².
func SquareArea(_ context.Context, s Square) (float64, error) {
	return s.Side * s.Side, nil
}

// RegisterArea registers the area variants. Triangles are deliberately left
// out and there is no default, so they resolve to a NoMatchError.
func RegisterArea(reg *dispatch.Registry) {
	declare.On(reg, AreaGroup, CircleArea, dispatch.WithLabel("circle"))
	declare.On(reg, AreaGroup, RectangleArea, dispatch.WithLabel("rectangle"))
	declare.On(reg, AreaGroup, SquareArea, dispatch.WithLabel("square"))
}

func isA[T any](args dispatch.Args) bool {
	_, ok := dispatch.Arg[T](args, 0)
	return ok
}

// RegisterPerimeter registers the perimeter variants, with a default that
// rejects anything that is not a known shape.
func RegisterPerimeter(reg *dispatch.Registry) []*dispatch.Candidate {
	return declare.Group(reg, PerimeterGroup).
		When(dispatch.When(isA[Circle]), func(_ context.Context, a dispatch.Args) (any, error) {
			c, _ := dispatch.Arg[Circle](a, 0)
			return 2 * math.Pi * c.Radius, nil
		}, dispatch.WithLabel("circle")).
		When(dispatch.When(isA[Rectangle]), func(_ context.Context, a dispatch.Args) (any, error) {
			r, _ := dispatch.Arg[Rectangle](a, 0)
			return 2 * (r.Width + r.Height), nil
		}, dispatch.WithLabel("rectangle")).
		When(dispatch.When(isA[Square]), func(_ context.Context, a dispatch.Args) (any, error) {
			s, _ := dispatch.Arg[Square](a, 0)
			return 4 * s.Side, nil
		}, dispatch.WithLabel("square")).
		When(dispatch.When(isA[Triangle]), func(_ context.Context, a dispatch.Args) (any, error) {
			t, _ := dispatch.Arg[Triangle](a, 0)
			return t.A + t.B + t.C, nil
		}, dispatch.WithLabel("triangle")).
		Otherwise(func(_ context.Context, a dispatch.Args) (any, error) {
			v, _ := a.At(0)
			return nil, fmt.Errorf("perimeter: not a shape: %T", v)
		}, dispatch.WithLabel("reject")).
		Register()
}

// Register installs every built-in group on reg.
func Register(reg *dispatch.Registry) {
	RegisterArea(reg)
	RegisterPerimeter(reg)
}
