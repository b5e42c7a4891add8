package shapes

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/zjrosen/conddispatch/internal/dispatch"
)

// Call is one entry of a calls file.
//
//	- group: area
//	  shape: circle
//	  dims: [2]
//	- group: perimeter
//	  args: [3, "x"]
//	  kwargs: {unit: cm}
type Call struct {
	Group  string         `yaml:"group"`
	Shape  string         `yaml:"shape,omitempty"`
	Dims   []float64      `yaml:"dims,omitempty"`
	Args   []any          `yaml:"args,omitempty"`
	Kwargs map[string]any `yaml:"kwargs,omitempty"`
}

// DispatchArgs builds the call's arguments. A shape, when given, is the
// first positional argument, followed by Args.
func (c Call) DispatchArgs() (dispatch.Args, error) {
	var pos []any
	if c.Shape != "" {
		s, err := New(c.Shape, c.Dims)
		if err != nil {
			return dispatch.Args{}, err
		}
		pos = append(pos, s)
	}
	pos = append(pos, c.Args...)
	return dispatch.Args{Positional: pos, Keyword: c.Kwargs}, nil
}

// LoadCalls reads a YAML list of calls from path.
func LoadCalls(path string) ([]Call, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-supplied calls file
	if err != nil {
		return nil, fmt.Errorf("reading calls: %w", err)
	}
	return ParseCalls(data)
}

// ParseCalls decodes a YAML list of calls. Unknown fields are rejected.
func ParseCalls(data []byte) ([]Call, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var calls []Call
	if err := dec.Decode(&calls); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing calls: %w", err)
	}
	for i, c := range calls {
		if c.Group == "" {
			return nil, fmt.Errorf("call %d: group is required", i+1)
		}
	}
	return calls, nil
}
