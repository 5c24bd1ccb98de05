package plan

import (
	"errors"
	"fmt"
	"time"

	"github.com/felixgeelhaar/memoryplanner/adapter/cli"
	"github.com/felixgeelhaar/memoryplanner/internal/planning/application/commands"
	"github.com/felixgeelhaar/memoryplanner/internal/planning/application/queries"
	"github.com/felixgeelhaar/memoryplanner/internal/planning/domain"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	generateDate      string
	generateStyle     string
	generateIntensity string
	generateActivity  []string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate the plan for a day",
	Long: `Generate (or regenerate) the plan for a day. An existing plan for the
same date is replaced.

Examples:
  planner plan generate                         # Plan tomorrow
  planner plan generate --date 2025-03-10       # Plan a specific date
  planner plan generate --intensity light       # Override the profile
  planner plan generate --activity <id>         # Append a custom activity`,
	Aliases: []string{"gen"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.GeneratePlanHandler == nil {
			return errors.New("application not initialized - database connection required")
		}

		date, err := cli.ParseDateFlag(generateDate, time.Now())
		if err != nil {
			return err
		}
		activityIDs := make([]uuid.UUID, 0, len(generateActivity))
		for _, raw := range generateActivity {
			id, err := uuid.Parse(raw)
			if err != nil {
				return fmt.Errorf("invalid activity id %q: %w", raw, err)
			}
			activityIDs = append(activityIDs, id)
		}

		result, err := app.GeneratePlanHandler.Handle(cmd.Context(), commands.GeneratePlanCommand{
			UserID:      app.CurrentUserID,
			Date:        date,
			Style:       generateStyle,
			Intensity:   generateIntensity,
			ActivityIDs: activityIDs,
		})
		if errors.Is(err, domain.ErrGenerationInProgress) {
			return fmt.Errorf("a plan for %s is already being generated, try again shortly", date)
		}
		if err != nil {
			return fmt.Errorf("failed to generate plan: %w", err)
		}
		if err := app.Flush(cmd.Context()); err != nil {
			return fmt.Errorf("failed to deliver plan events: %w", err)
		}

		dto := queries.ToPlanDTO(result.Plan)
		out := cmd.OutOrStdout()
		printPlan(out, date, &dto)
		printRejections(out, result.Rejections)
		return nil
	},
}

func init() {
	generateCmd.Flags().StringVarP(&generateDate, "date", "d", "", "date to plan (YYYY-MM-DD, default tomorrow)")
	generateCmd.Flags().StringVar(&generateStyle, "style", "", "plan style (mixed, thematic_blocks)")
	generateCmd.Flags().StringVar(&generateIntensity, "intensity", "", "plan intensity (light, moderate, intense)")
	generateCmd.Flags().StringArrayVar(&generateActivity, "activity", nil, "custom activity id to append (repeatable)")
}
