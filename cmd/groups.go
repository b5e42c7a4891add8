package cmd

import (
	"github.com/spf13/cobra"

	"github.com/zjrosen/conddispatch/internal/presentation"
)

func newGroupsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "groups",
		Short: "List dispatch groups and their candidates as JSON",
		Long: `List the built-in dispatch groups and their candidates, in resolution order, as JSON.

Examples:
  conddispatch groups
  conddispatch groups | jq '.[].candidates[].name'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			eng, err := newEngine(a.cfg)
			if err != nil {
				return err
			}
			defer func() { _ = eng.Close(cmd.Context()) }()

			return presentation.NewFormatter(cmd.OutOrStdout()).
				FormatGroups(presentation.FromRegistry(eng.reg))
		},
	}
}
