package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/memoryplanner/internal/planning/domain"
)

// RegisterResources registers MCP resources that expose planner data.
func RegisterResources(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return fmt.Errorf("server is required")
	}

	registerPlanResources(srv, deps)
	registerProfileResources(srv, deps)
	return nil
}

func registerPlanResources(srv *mcp.Server, deps ToolDependencies) {
	tools := planTools{app: deps.App, now: time.Now}

	planFor := func(offset int) func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
		return func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
			date := domain.DateOf(tools.now()).AddDays(offset)
			plan, err := tools.show(ctx, planDateInput{Date: date.String()})
			if err != nil {
				return nil, err
			}
			return jsonContent(uri, plan)
		}
	}

	srv.Resource("planner://plan/today").
		Name("Today's Plan").
		Description("The stored plan for today").
		MimeType("application/json").
		Handler(planFor(0))

	srv.Resource("planner://plan/tomorrow").
		Name("Tomorrow's Plan").
		Description("The stored plan for tomorrow").
		MimeType("application/json").
		Handler(planFor(1))

	srv.Resource("planner://plans/week").
		Name("This Week").
		Description("Plan summaries for the next seven days, starting today").
		MimeType("application/json").
		Handler(func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
			week, err := tools.week(ctx, planWeekInput{})
			if err != nil {
				return nil, err
			}
			return jsonContent(uri, week)
		})
}

func registerProfileResources(srv *mcp.Server, deps ToolDependencies) {
	app := deps.App

	srv.Resource("planner://user/profile").
		Name("User Profile").
		Description("Planning settings of the current user").
		MimeType("application/json").
		Handler(func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
			if app == nil || app.Profiles == nil {
				return nil, fmt.Errorf("profile requires database connection")
			}
			profile, err := app.Profiles.FindByUserID(ctx, app.CurrentUserID)
			if err != nil {
				return nil, err
			}
			if profile == nil {
				p := domain.DefaultProfile(app.CurrentUserID)
				profile = &p
			}

			return jsonContent(uri, map[string]any{
				"user_id":    app.CurrentUserID.String(),
				"wake_up":    profile.WakeUp.String(),
				"sleep":      profile.Sleep.String(),
				"work_start": profile.Work.Start.String(),
				"work_end":   profile.Work.End.String(),
				"intensity":  string(profile.Intensity),
				"style":      string(profile.Style),
				"city":       profile.City,
				"auto_plan":  profile.AutoPlan,
			})
		})
}

func jsonContent(uri string, v any) (*mcp.ResourceContent, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return &mcp.ResourceContent{
		URI:      uri,
		MimeType: "application/json",
		Text:     string(data),
	}, nil
}
