package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teemow/meetbook/internal/scheduling"
)

func newBookCmd() *cobra.Command {
	var (
		date     string
		clock    string
		subject  string
		duration int
	)

	cmd := &cobra.Command{
		Use:   "book",
		Short: "Book a meeting",
		Long: `Book a Google Meet meeting on the shared calendar. The time accepts
"14:00", "2:00 PM" or "2:00PM" and is interpreted as UTC.`,
		Example: `  meetbook book --date 2026-03-02 --time 14:00 --subject "Intro call"
  meetbook book --date 2026-03-02 --time "2:30 PM" --subject Demo --duration 30`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := cliApplication()
			if err != nil {
				return err
			}

			ctx, cancel := cliContext(cmd.Context(), app.cfg.Calendar.Timeout)
			defer cancel()

			msg, out := app.desk.Schedule(ctx, scheduling.BookingRequest{
				Date:            date,
				Time:            clock,
				Subject:         subject,
				DurationMinutes: duration,
			})
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			if out.Status == scheduling.StatusFailed {
				return errors.New("booking failed")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Meeting day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&clock, "time", "", "Start time in UTC")
	cmd.Flags().StringVar(&subject, "subject", "", "Meeting subject")
	cmd.Flags().IntVar(&duration, "duration", 0, "Meeting length in minutes (default from config)")
	_ = cmd.MarkFlagRequired("date")
	_ = cmd.MarkFlagRequired("time")
	_ = cmd.MarkFlagRequired("subject")

	return cmd
}
