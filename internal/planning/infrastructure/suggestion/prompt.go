package suggestion

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/memoryplanner/internal/planning/domain"
)

const systemPrompt = `You suggest one relaxing activity to end a planned day.
Answer with a single JSON object and nothing else:
{"title": "...", "description": "...", "duration": "30min", "location": {"name": "...", "address": "...", "type": "..."}}
Omit "location" when no place fits. Keep the duration under one hour.`

func buildPrompt(req domain.SuggestionRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Date: %s (%s)\n", req.Date, req.Date.Weekday())
	fmt.Fprintf(&b, "Free from %s, time of day: %s\n", req.Cursor, req.TimeOfDay)

	if len(req.PlanTitles) > 0 {
		b.WriteString("Already planned today:\n")
		for _, title := range req.PlanTitles {
			fmt.Fprintf(&b, "- %s\n", title)
		}
	}
	if req.City != "" {
		fmt.Fprintf(&b, "City: %s\n", req.City)
	}
	if len(req.Locations) > 0 {
		b.WriteString("Places nearby:\n")
		for _, l := range req.Locations {
			fmt.Fprintf(&b, "- %s (%s)", l.Name, l.Type)
			if l.Address != "" {
				fmt.Fprintf(&b, ", %s", l.Address)
			}
			b.WriteString("\n")
		}
	}
	if req.ContextNotes != "" {
		fmt.Fprintf(&b, "About the user: %s\n", req.ContextNotes)
	}
	return b.String()
}
