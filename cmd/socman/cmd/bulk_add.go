package cmd

import (
	"fmt"

	"github.com/NullInfinity/society-event-manager/internal/app"
	"github.com/NullInfinity/society-event-manager/internal/checkin"

	"github.com/spf13/cobra"
)

func newBulkAddCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "bulk-add",
		Short: "Enrol members from first name, last name and barcode entries",
		Long: `Bulk-add reads a first name, last name and barcode for each member
from standard input until end of input. Entries missing any of the three
are skipped. Members already in the database are reconciled instead of
being added twice.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withApp(cmd, func(a *app.App) error {
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Opening %s\n", a.Config().Database.Path)

				result, err := checkin.BulkAdd(cmd.Context(), a.Store(), cmd.InOrStdin(), out, a.Logger())
				if err != nil {
					return err
				}

				fmt.Fprintf(out, "Done adding %d members.\n", result.Total())
				if result.AlreadyPresent > 0 {
					fmt.Fprintf(out, "%d of them were already in the database.\n", result.AlreadyPresent)
				}
				return nil
			})
		},
	}
}
