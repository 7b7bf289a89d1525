package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/NullInfinity/society-event-manager/internal/app"
	"github.com/NullInfinity/society-event-manager/internal/checkin"

	"github.com/spf13/cobra"
)

func newCheckinCommand(opts *rootOptions) *cobra.Command {
	var reportPath string

	cmd := &cobra.Command{
		Use:   "checkin",
		Short: "Check attendees in at an event",
		Long: `Checkin prompts for barcodes until QUIT or end of input.

Unknown barcodes are offered for enrolment; enter a blank first and last
name to skip. Enter ONE to count a non-member. New members are recorded
in a dated log file in checkin.log_dir, and the attendance summary can be
appended to a report file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withApp(cmd, func(a *app.App) (err error) {
				cfg := a.Config()
				out := cmd.OutOrStdout()
				today := time.Now()

				fmt.Fprintf(out, "Opening %s\n", cfg.Database.Path)

				logPath := filepath.Join(cfg.CheckIn.LogDir, checkin.MemberLogName(today))
				memberLog, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
				if err != nil {
					return fmt.Errorf("open member log: %w", err)
				}
				defer func() {
					err = errors.Join(err, memberLog.Close())
				}()

				session := checkin.NewSession(a.Store(), cmd.InOrStdin(), out,
					checkin.WithBarcodeLength(cfg.CheckIn.BarcodeLength),
					checkin.WithMemberLog(memberLog),
					checkin.WithLogger(a.Logger()),
				)
				summary, err := session.Run(cmd.Context())
				fmt.Fprintln(out, summary)
				if err != nil {
					return err
				}

				report := reportPath
				if report == "" {
					report = cfg.CheckIn.ReportPath
				}
				if report == "" {
					return nil
				}
				fmt.Fprintf(out, "Writing summary to %s\n", report)
				return checkin.WriteReport(report, today, summary)
			})
		},
	}

	cmd.Flags().StringVar(&reportPath, "report", "", "append the attendance summary to this file")
	return cmd
}
