package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/zjrosen/conddispatch/internal/dispatch"
	"github.com/zjrosen/conddispatch/internal/presentation"
	"github.com/zjrosen/conddispatch/internal/shapes"
)

func newAreaCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "area <shape> [dims...]",
		Short: "Compute the area of a shape through the area group",
		Long: `Dispatch one call to the built-in "area" group.

Circles, rectangles and squares have area variants. Triangles are accepted as
input but no variant handles them, so they fail with a no-match error.

Examples:
  conddispatch area circle 2
  conddispatch area rectangle 3 4
  conddispatch area triangle 3 4 5`,
		Args:      cobra.MinimumNArgs(1),
		ValidArgs: shapes.Kinds,
		RunE: func(cmd *cobra.Command, args []string) error {
			dims := make([]float64, 0, len(args)-1)
			for _, s := range args[1:] {
				f, err := strconv.ParseFloat(s, 64)
				if err != nil {
					return fmt.Errorf("dimension %q: %w", s, err)
				}
				dims = append(dims, f)
			}
			shape, err := shapes.New(args[0], dims)
			if err != nil {
				return err
			}

			eng, err := newEngine(a.cfg)
			if err != nil {
				return err
			}
			defer func() { _ = eng.Close(cmd.Context()) }()

			callArgs := dispatch.Positional(shape)
			v, err := eng.Dispatch(cmd.Context(), shapes.AreaGroup, callArgs)
			if err != nil {
				return err
			}
			return presentation.NewFormatter(cmd.OutOrStdout()).
				RenderValue(presentation.NewResult(1, shapes.AreaGroup, callArgs, v, nil))
		},
	}
}
