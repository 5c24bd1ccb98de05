package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/memoryplanner/internal/planning/application/services"
	"github.com/felixgeelhaar/memoryplanner/internal/planning/domain"
	"github.com/spf13/cobra"
)

var (
	blockStart string
	blockEnd   string
	blockDays  []string
	blockLabel string
)

var blockCmd = &cobra.Command{
	Use:   "block",
	Short: "Manage recurring blocked time",
}

var blockListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List blocked intervals",
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := settingsApp()
		if err != nil {
			return err
		}
		if app.Blocked == nil {
			return errors.New("blocked time not configured")
		}
		intervals, err := app.Blocked.ListBlocked(cmd.Context(), app.CurrentUserID)
		if err != nil {
			return fmt.Errorf("failed to list blocked time: %w", err)
		}

		out := cmd.OutOrStdout()
		if settingsJSON {
			type blockJSON struct {
				Start string   `json:"start"`
				End   string   `json:"end"`
				Days  []string `json:"days"`
				Label string   `json:"label,omitempty"`
			}
			rows := make([]blockJSON, len(intervals))
			for i, b := range intervals {
				rows[i] = blockJSON{Start: b.Start.String(), End: b.End.String(), Days: weekdayNames(b.Days), Label: b.Label}
			}
			return json.NewEncoder(out).Encode(rows)
		}
		if len(intervals) == 0 {
			fmt.Fprintln(out, "No blocked time.")
			return nil
		}
		for _, b := range intervals {
			days := "every day"
			if len(b.Days) > 0 {
				days = strings.Join(weekdayNames(b.Days), ", ")
			}
			fmt.Fprintf(out, "%s-%s  %-20s %s\n", b.Start, b.End, b.Label, days)
		}
		return nil
	},
}

var blockAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Block a recurring interval",
	Long: `Block a recurring interval. Without --days it applies every day.

Examples:
  planner settings block add --start 07:00 --end 08:00 --label gym --days mon,wed,fri
  planner settings block add --start 19:00 --end 20:00 --label dinner`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := settingsApp()
		if err != nil {
			return err
		}
		if app.Blocked == nil {
			return errors.New("blocked time not configured")
		}

		start, err := domain.ParseClock(blockStart)
		if err != nil {
			return fmt.Errorf("--start: %w", err)
		}
		end, err := domain.ParseClock(blockEnd)
		if err != nil {
			return fmt.Errorf("--end: %w", err)
		}
		days, err := services.ParseWeekdays(splitList(blockDays))
		if err != nil {
			return fmt.Errorf("--days: %w", err)
		}
		interval, err := domain.NewBlockedInterval(start, end, days, blockLabel)
		if err != nil {
			return err
		}

		id, err := app.Blocked.Add(cmd.Context(), app.CurrentUserID, interval)
		if err != nil {
			return fmt.Errorf("failed to block time: %w", err)
		}
		if settingsJSON {
			return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{"id": id.String()})
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Blocked %s-%s (%s)\n", start, end, id)
		return nil
	},
}

func init() {
	blockAddCmd.Flags().StringVar(&blockStart, "start", "", "start time (HH:MM)")
	blockAddCmd.Flags().StringVar(&blockEnd, "end", "", "end time (HH:MM)")
	blockAddCmd.Flags().StringSliceVar(&blockDays, "days", nil, "weekdays (mon,tue,...)")
	blockAddCmd.Flags().StringVar(&blockLabel, "label", "", "label")

	blockCmd.AddCommand(blockListCmd)
	blockCmd.AddCommand(blockAddCmd)
}
