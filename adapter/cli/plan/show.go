package plan

import (
	"errors"
	"fmt"
	"time"

	"github.com/felixgeelhaar/memoryplanner/adapter/cli"
	"github.com/felixgeelhaar/memoryplanner/internal/planning/application/queries"
	"github.com/felixgeelhaar/memoryplanner/internal/planning/domain"
	"github.com/spf13/cobra"
)

var showDate string

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the stored plan for a day",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.GetPlanHandler == nil {
			return errors.New("application not initialized - database connection required")
		}

		date, err := cli.ParseDateFlag(showDate, time.Now())
		if err != nil {
			return err
		}

		plan, err := app.GetPlanHandler.Handle(cmd.Context(), queries.GetPlanQuery{
			UserID: app.CurrentUserID,
			Date:   date,
		})
		if errors.Is(err, domain.ErrPlanNotFound) {
			fmt.Fprintf(cmd.OutOrStdout(), "No plan for %s. Generate one with: planner plan generate --date %s\n", date, date)
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to load plan: %w", err)
		}

		printPlan(cmd.OutOrStdout(), date, plan)
		return nil
	},
}

func init() {
	showCmd.Flags().StringVarP(&showDate, "date", "d", "", "date to show (YYYY-MM-DD, default tomorrow)")
}
