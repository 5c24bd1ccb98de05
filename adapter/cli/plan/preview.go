package plan

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/memoryplanner/adapter/cli"
	"github.com/felixgeelhaar/memoryplanner/internal/planning/application/queries"
	"github.com/felixgeelhaar/memoryplanner/internal/planning/application/services"
	"github.com/felixgeelhaar/memoryplanner/internal/planning/domain"
	"github.com/spf13/cobra"
)

var (
	previewInput string
	previewTrace bool
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Preview a plan from a YAML file",
	Long: `Run the planner on a self-contained YAML description of a day and
print the result. Nothing is read from or written to the database.

Example:
  planner plan preview --input day.yaml --trace`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if previewInput == "" {
			return errors.New("missing --input")
		}
		in, skip, err := services.LoadInputFile(previewInput, time.Now())
		if err != nil {
			return err
		}

		opts := []domain.EngineOption{}
		if skip {
			opts = append(opts, domain.WithRejectionPolicy(domain.SkipOnReject))
		}
		if previewTrace || cli.Verbose() {
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelDebug}))
			opts = append(opts, domain.WithTracer(services.NewSlogTracer(cmd.Context(), logger)))
		}
		result := domain.NewEngine(opts...).Run(in)

		items := make([]queries.PlanItemDTO, 0, len(result.Items))
		for _, item := range result.Items {
			items = append(items, queries.ToItemDTO(item))
		}

		out := cmd.OutOrStdout()
		printHeader(out, in.Date)
		fmt.Fprintf(out, "  Window: %s-%s   Available: %d min   Placed: %d min\n",
			result.Availability.WindowStart, result.Availability.WindowEnd,
			result.Availability.AvailableMinutes, result.PlacedMinutes())
		fmt.Fprintln(out)
		printItems(out, items)
		fmt.Fprintln(out)
		printRejections(out, result.Rejections)
		return nil
	},
}

func init() {
	previewCmd.Flags().StringVarP(&previewInput, "input", "i", "", "YAML plan input file")
	previewCmd.Flags().BoolVar(&previewTrace, "trace", false, "log every placement decision to stderr")
}
