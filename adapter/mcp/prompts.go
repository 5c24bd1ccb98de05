package mcp

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/mcp-go"
)

// RegisterPrompts registers MCP prompts for common planning workflows.
func RegisterPrompts(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return fmt.Errorf("server is required")
	}

	// Daily planning prompt
	srv.Prompt("daily_planning").
		Description("Plan tomorrow: generate the plan, review what was left out and adjust.").
		Handler(func(ctx context.Context, args map[string]string) (*mcp.PromptResult, error) {
			return userPrompt("Daily Planning Session", `Help me plan tomorrow. Please:

1. Check my settings using the planner://user/profile resource
2. Generate the plan with the plan.generate tool
3. Walk me through the schedule from wake-up to bedtime

If tasks were left out, tell me which ones and why, and suggest
whether a lighter or more intense day would fit better. Regenerate
with plan.generate and a different intensity if I agree.`), nil
		})

	// Evening check-in prompt
	srv.Prompt("evening_checkin").
		Description("Review today's plan, tick off finished items and prepare tomorrow.").
		Handler(func(ctx context.Context, args map[string]string) (*mcp.PromptResult, error) {
			return userPrompt("Evening Check-in", `Let's close the day. Please:

1. Show today's plan using the planner://plan/today resource
2. Ask me which items I finished and mark them with plan.complete_item
3. Summarize how much of the planned time got done

Then generate tomorrow's plan with plan.generate so the unfinished
work is picked up again.`), nil
		})

	// Weekly overview prompt
	srv.Prompt("weekly_overview").
		Description("Look at the coming days and spot the ones without a plan.").
		Argument("days", "Number of days to review (default: 7)", false).
		Handler(func(ctx context.Context, args map[string]string) (*mcp.PromptResult, error) {
			days := args["days"]
			if days == "" {
				days = "7"
			}
			return userPrompt("Weekly Overview", fmt.Sprintf(`Give me an overview of the next %s days. Please:

1. Call plan.week with days=%s
2. List the days that have no plan yet
3. For planned days, show the planned minutes and how many items are done

Offer to generate the missing plans with plan.generate.`, days, days)), nil
		})

	return nil
}

func userPrompt(description, text string) *mcp.PromptResult {
	return &mcp.PromptResult{
		Description: description,
		Messages: []mcp.PromptMessage{
			{
				Role: string(mcp.RoleUser),
				Content: mcp.TextContent{
					Type: "text",
					Text: text,
				},
			},
		},
	}
}
