package cmd

import (
	"errors"

	"github.com/NullInfinity/society-event-manager/internal/app"

	"github.com/spf13/cobra"
)

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	configFile string
	dbPath     string
	unsafe     bool
}

// NewRootCommand creates the socman command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "socman",
		Short: "Society membership check-in and records",
		Long: `socman keeps a society's membership list in a SQLite file.

Members are looked up by barcode first and by name second. When the two
disagree the stored record is corrected from the facet that did not find
it, and every check-in stamps the member's last attendance.`,
		Version:       app.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file (default is ./configs/config.<ENV>.yaml)")
	rootCmd.PersistentFlags().StringVar(&opts.dbPath, "db", "", "membership database file (overrides database.path)")
	rootCmd.PersistentFlags().BoolVar(&opts.unsafe, "unsafe", false, "commit attendance only on exit")

	rootCmd.SetVersionTemplate("socman {{.Version}}\n")

	rootCmd.AddCommand(
		newCheckinCommand(opts),
		newBulkAddCommand(opts),
		newInfoCommand(opts),
	)
	return rootCmd
}

// withApp opens the application for one command run and closes it after,
// joining any close error into the command's result.
func (o *rootOptions) withApp(cmd *cobra.Command, run func(a *app.App) error) (err error) {
	a, err := app.New(cmd.Context(), app.Options{
		ConfigFile: o.configFile,
		DBPath:     o.dbPath,
		Unsafe:     o.unsafe,
		LogOutput:  cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, a.Close())
	}()

	return run(a)
}
