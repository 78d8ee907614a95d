package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/apetrov/orderflow/internal/cli/formatter"
)

func newCalendarCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Maintain the working-day calendar used for deadlines",
	}

	cmd.AddCommand(newCalendarSetCmd(app))
	return cmd
}

func newCalendarSetCmd(app *App) *cobra.Command {
	var nonWorking bool
	var until string

	cmd := &cobra.Command{
		Use:   "set <day>",
		Short: "Mark a day (or range) as working or non-working",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := time.Parse("2006-01-02", args[0])
			if err != nil {
				return fmt.Errorf("invalid day %q: %w", args[0], err)
			}
			to := from
			if until != "" {
				to, err = time.Parse("2006-01-02", until)
				if err != nil {
					return fmt.Errorf("invalid end day %q: %w", until, err)
				}
			}
			if to.Before(from) {
				return fmt.Errorf("end day %s precedes %s", until, args[0])
			}

			ctx := context.Background()
			count := 0
			for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
				if err := app.Calendar.SetDay(ctx, day, !nonWorking); err != nil {
					return err
				}
				count++
			}

			kind := "working"
			if nonWorking {
				kind = "non-working"
			}
			fmt.Printf("Marked %d day(s) as %s\n", count, formatter.Bold(kind))
			return nil
		},
	}

	cmd.Flags().BoolVar(&nonWorking, "non-working", false, "Mark as non-working instead of working")
	cmd.Flags().StringVar(&until, "until", "", "End of the range (YYYY-MM-DD, inclusive)")
	return cmd
}
