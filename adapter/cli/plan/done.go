package plan

import (
	"errors"
	"fmt"
	"time"

	"github.com/felixgeelhaar/memoryplanner/adapter/cli"
	"github.com/felixgeelhaar/memoryplanner/internal/planning/application/commands"
	"github.com/felixgeelhaar/memoryplanner/internal/planning/application/queries"
	"github.com/felixgeelhaar/memoryplanner/internal/planning/domain"
	"github.com/spf13/cobra"
)

var (
	doneDate string
	doneUndo bool
)

var doneCmd = &cobra.Command{
	Use:   "done <item-id-prefix>",
	Short: "Mark a plan item as done",
	Long: `Tick off a plan item using the first characters of its ID, as shown
by "planner plan show". Completing a sub-step also completes it in its
project.

Examples:
  planner plan done 1a2b3c4d                 # Tick an item of tomorrow's plan
  planner plan done 1a2b --date 2025-03-10   # Item of another day
  planner plan done 1a2b --undo              # Untick`,
	Aliases: []string{"complete", "x"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.SetItemCompletedHandler == nil || app.GetPlanHandler == nil {
			return errors.New("application not initialized - database connection required")
		}

		date, err := cli.ParseDateFlag(doneDate, time.Now())
		if err != nil {
			return err
		}
		plan, err := app.GetPlanHandler.Handle(cmd.Context(), queries.GetPlanQuery{UserID: app.CurrentUserID, Date: date})
		if errors.Is(err, domain.ErrPlanNotFound) {
			return fmt.Errorf("no plan for %s", date)
		}
		if err != nil {
			return fmt.Errorf("failed to load plan: %w", err)
		}
		itemID, err := cli.MatchItem(plan.Items, args[0])
		if err != nil {
			return err
		}

		result, err := app.SetItemCompletedHandler.Handle(cmd.Context(), commands.SetItemCompletedCommand{
			UserID:    app.CurrentUserID,
			Date:      date,
			ItemID:    itemID,
			Completed: !doneUndo,
		})
		if err != nil {
			return fmt.Errorf("failed to update item: %w", err)
		}
		if err := app.Flush(cmd.Context()); err != nil {
			return fmt.Errorf("failed to deliver item events: %w", err)
		}

		out := cmd.OutOrStdout()
		switch {
		case !result.Changed:
			fmt.Fprintf(out, "Unchanged: %s\n", result.Item.Title)
		case result.Item.Completed:
			fmt.Fprintf(out, "Done: %s\n", result.Item.Title)
		default:
			fmt.Fprintf(out, "Reopened: %s\n", result.Item.Title)
		}
		return nil
	},
}

func init() {
	doneCmd.Flags().StringVarP(&doneDate, "date", "d", "", "plan date (YYYY-MM-DD, default tomorrow)")
	doneCmd.Flags().BoolVar(&doneUndo, "undo", false, "mark the item as not done")
}
