package plan

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/felixgeelhaar/memoryplanner/adapter/cli"
	"github.com/felixgeelhaar/memoryplanner/internal/planning/application/queries"
	"github.com/felixgeelhaar/memoryplanner/internal/planning/domain"
	"github.com/spf13/cobra"
)

var (
	weekFrom string
	weekDays int
)

var weekCmd = &cobra.Command{
	Use:   "week",
	Short: "Summarize the plans of the coming days",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.ListPlansHandler == nil {
			return errors.New("application not initialized - database connection required")
		}

		from := domain.DateOf(time.Now())
		if weekFrom != "" {
			var err error
			if from, err = domain.ParseDate(weekFrom); err != nil {
				return fmt.Errorf("invalid date format, use YYYY-MM-DD: %w", err)
			}
		}

		days, err := app.ListPlansHandler.Handle(cmd.Context(), queries.ListPlansQuery{
			UserID: app.CurrentUserID,
			From:   from,
			Days:   weekDays,
		})
		if err != nil {
			return fmt.Errorf("failed to list plans: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out)
		fmt.Fprintf(out, "  WEEK FROM %s\n", from)
		fmt.Fprintln(out, strings.Repeat("=", 60))
		for _, day := range days {
			if day.Plan == nil {
				fmt.Fprintf(out, "  %-9s %s  -\n", day.Weekday, day.Date)
				continue
			}
			fmt.Fprintf(out, "  %-9s %s  %2d items  %4d min  %d done\n",
				day.Weekday, day.Date, countWork(day.Plan.Items), day.Plan.PlannedMinutes, day.Plan.CompletedCount)
		}
		fmt.Fprintln(out)
		return nil
	},
}

func init() {
	weekCmd.Flags().StringVar(&weekFrom, "from", "", "first day (YYYY-MM-DD, default today)")
	weekCmd.Flags().IntVar(&weekDays, "days", queries.DefaultRangeDays, "number of days")
}
