package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/memoryplanner/internal/planning/domain"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	activityDuration    string
	activityDescription string
	activityCombine     bool
)

var activityCmd = &cobra.Command{
	Use:   "activity",
	Short: "Manage custom activities",
}

var activityAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add a custom activity",
	Long: `Add an activity that can be appended to a plan with
"planner plan generate --activity <id>".

Example:
  planner settings activity add "Piano practice" --duration 40min`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := settingsApp()
		if err != nil {
			return err
		}
		if app.Activities == nil {
			return errors.New("activities not configured")
		}
		title := strings.TrimSpace(args[0])
		if title == "" {
			return errors.New("title must not be empty")
		}

		activity := domain.CustomActivity{
			ID:           uuid.New(),
			Title:        title,
			Description:  activityDescription,
			DurationText: activityDuration,
			CanCombine:   activityCombine,
		}
		if err := app.Activities.AddActivity(cmd.Context(), app.CurrentUserID, activity); err != nil {
			return fmt.Errorf("failed to add activity: %w", err)
		}
		if settingsJSON {
			return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
				"id":       activity.ID.String(),
				"duration": domain.ParseDuration(activity.DurationText),
			})
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%d min): %s\n", title, domain.ParseDuration(activity.DurationText), activity.ID)
		return nil
	},
}

func init() {
	activityAddCmd.Flags().StringVar(&activityDuration, "duration", "", "duration, e.g. 45min or 1h30")
	activityAddCmd.Flags().StringVar(&activityDescription, "description", "", "description")
	activityAddCmd.Flags().BoolVar(&activityCombine, "combine", false, "can be combined with other activities")

	activityCmd.AddCommand(activityAddCmd)
}
