package plan

import (
	"fmt"
	"io"
	"strings"

	"github.com/felixgeelhaar/memoryplanner/internal/planning/application/queries"
	"github.com/felixgeelhaar/memoryplanner/internal/planning/domain"
	"github.com/spf13/cobra"
)

// Cmd is the plan command group
var Cmd = &cobra.Command{
	Use:   "plan",
	Short: "Generate and review daily plans",
	Long: `Generate a timed plan for a day from your open project sub-steps,
then review it and tick items off as you go.`,
}

func init() {
	Cmd.AddCommand(generateCmd)
	Cmd.AddCommand(showCmd)
	Cmd.AddCommand(weekCmd)
	Cmd.AddCommand(doneCmd)
	Cmd.AddCommand(previewCmd)
}

func printHeader(w io.Writer, date domain.Date) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  PLAN: %s %s\n", date.Weekday(), date)
	fmt.Fprintln(w, strings.Repeat("=", 60))
}

func printPlan(w io.Writer, date domain.Date, plan *queries.PlanDTO) {
	printHeader(w, date)
	fmt.Fprintf(w, "  Available: %d min   Planned: %d min   Done: %d/%d\n",
		plan.AvailableMinutes, plan.PlannedMinutes, plan.CompletedCount, countWork(plan.Items))
	fmt.Fprintf(w, "  Intensity: %s   Style: %s\n", plan.Intensity, plan.Style)
	fmt.Fprintln(w, strings.Repeat("-", 60))
	printItems(w, plan.Items)
	fmt.Fprintln(w)
}

func printItems(w io.Writer, items []queries.PlanItemDTO) {
	if len(items) == 0 {
		fmt.Fprintln(w, "    Nothing fits in this day.")
		return
	}
	for _, item := range items {
		fmt.Fprintf(w, "  %s %s-%s  %s%s  [%s]\n",
			checkbox(item), item.StartTime, item.EndTime, item.Title, itemContext(item), shortID(item.ID.String()))
	}
}

func checkbox(item queries.PlanItemDTO) string {
	switch {
	case item.Type == string(domain.ItemTypeBreak):
		return "   "
	case item.Completed:
		return "[x]"
	default:
		return "[ ]"
	}
}

func itemContext(item queries.PlanItemDTO) string {
	switch {
	case item.ProjectTitle != "":
		return " (" + item.ProjectTitle + ")"
	case item.Location != nil:
		return " @ " + item.Location.Name
	default:
		return ""
	}
}

func countWork(items []queries.PlanItemDTO) int {
	n := 0
	for _, item := range items {
		if item.Type != string(domain.ItemTypeBreak) {
			n++
		}
	}
	return n
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func printRejections(w io.Writer, rejections []domain.Rejection) {
	if len(rejections) == 0 {
		return
	}
	fmt.Fprintf(w, "  Left out (%d):\n", len(rejections))
	for _, r := range rejections {
		fmt.Fprintf(w, "    - %s (%s)\n", r.Title, r.Reason)
	}
	fmt.Fprintln(w)
}
