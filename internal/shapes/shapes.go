// Package shapes is the built-in dispatch workload used by the CLI: plane
// shapes and the "area" and "perimeter" groups over them.
package shapes

import (
	"fmt"
	"strings"
)

// Circle is a circle of the given radius.
type Circle struct{ Radius float64 }

// Rectangle is an axis-aligned rectangle.
type Rectangle struct{ Width, Height float64 }

// Square is a square of the given side.
type Square struct{ Side float64 }

// Triangle is a triangle given by its three side lengths. No area variant
// handles it.
type Triangle struct{ A, B, C float64 }

func (c Circle) String() string    { return fmt.Sprintf("circle(r=%g)", c.Radius) }
func (r Rectangle) String() string { return fmt.Sprintf("rectangle(%gx%g)", r.Width, r.Height) }
func (s Square) String() string    { return fmt.Sprintf("square(%g)", s.Side) }
func (t Triangle) String() string  { return fmt.Sprintf("triangle(%g,%g,%g)", t.A, t.B, t.C) }

// Kinds lists the shape names accepted by New.
var Kinds = []string{"circle", "rectangle", "square", "triangle"}

// New builds the shape named kind from its dimensions.
func New(kind string, dims []float64) (any, error) {
	want := map[string]int{"circle": 1, "rectangle": 2, "square": 1, "triangle": 3}
	kind = strings.ToLower(kind)
	n, ok := want[kind]
	if !ok {
		return nil, fmt.Errorf("unknown shape %q (want one of %s)", kind, strings.Join(Kinds, ", "))
	}
	if len(dims) != n {
		return nil, fmt.Errorf("%s takes %d dimension(s), got %d", kind, n, len(dims))
	}
	for _, d := range dims {
		if d < 0 {
			return nil, fmt.Errorf("%s: negative dimension %g", kind, d)
		}
	}

	switch kind {
	case "circle":
		return Circle{Radius: dims[0]}, nil
	case "rectangle":
		return Rectangle{Width: dims[0], Height: dims[1]}, nil
	case "square":
		return Square{Side: dims[0]}, nil
	default:
		return Triangle{A: dims[0], B: dims[1], C: dims[2]}, nil
	}
}
