package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

func newAvailabilityCmd() *cobra.Command {
	var (
		date     string
		duration int
		suggest  bool
	)

	cmd := &cobra.Command{
		Use:   "availability",
		Short: "Show open meeting slots",
		Long: `Show the open slots on a day, or with --suggest the next free
preferred start times over the coming days.`,
		Example: `  meetbook availability --date 2026-03-02
  meetbook availability --date 2026-03-02 --duration 30
  meetbook availability --suggest`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !suggest && date == "" {
				return errors.New("either --date or --suggest is required")
			}

			app, err := cliApplication()
			if err != nil {
				return err
			}

			ctx, cancel := cliContext(cmd.Context(), app.cfg.Calendar.Timeout)
			defer cancel()

			if suggest {
				fmt.Fprintln(cmd.OutOrStdout(), app.desk.GetFormattedSuggestions(ctx))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), app.desk.GetFormattedAvailability(ctx, date, duration))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Day to check (YYYY-MM-DD)")
	cmd.Flags().IntVar(&duration, "duration", 0, "Meeting length in minutes (default from config)")
	cmd.Flags().BoolVar(&suggest, "suggest", false, "Suggest open slots over the coming days instead")

	return cmd
}

// cliApplication builds the application for a one-shot command.
func cliApplication() (*application, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return newApplication(cfg, newLogger(debugMode, os.Stderr), nil)
}

// cliContext bounds a one-shot command by twice the calendar timeout, one
// for the lookup and one for a booking or alternatives fetch.
func cliContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, 2*timeout+time.Second)
}
