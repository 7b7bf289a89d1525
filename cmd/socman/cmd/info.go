package cmd

import (
	"fmt"

	"github.com/NullInfinity/society-event-manager/internal/app"

	"github.com/spf13/cobra"
)

func newInfoCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show how many members are in the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withApp(cmd, func(a *app.App) error {
				n, err := a.Store().Count(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "There are %d members in the database.\n", n)
				return nil
			})
		},
	}
}
