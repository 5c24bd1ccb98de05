package mcp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/memoryplanner/adapter/cli"
	"github.com/felixgeelhaar/memoryplanner/internal/planning/application/commands"
	"github.com/felixgeelhaar/memoryplanner/internal/planning/application/queries"
	"github.com/felixgeelhaar/memoryplanner/internal/planning/domain"
	"github.com/google/uuid"
)

type planGenerateInput struct {
	Date        string   `json:"date,omitempty"`
	Style       string   `json:"style,omitempty"`
	Intensity   string   `json:"intensity,omitempty"`
	ActivityIDs []string `json:"activity_ids,omitempty"`
}

type planDateInput struct {
	Date string `json:"date,omitempty"`
}

type planWeekInput struct {
	From string `json:"from,omitempty"`
	Days int    `json:"days,omitempty"`
}

type planCompleteInput struct {
	Date      string `json:"date,omitempty"`
	ItemID    string `json:"item_id" jsonschema:"required"`
	Completed *bool  `json:"completed,omitempty"`
}

type rejectionOutput struct {
	SourceID uuid.UUID `json:"source_id"`
	Title    string    `json:"title"`
	Reason   string    `json:"reason"`
}

type planGenerateOutput struct {
	Plan          queries.PlanDTO   `json:"plan"`
	Rejections    []rejectionOutput `json:"rejections"`
	PlacedMinutes int               `json:"placed_minutes"`
}

type planCompleteOutput struct {
	Item    queries.PlanItemDTO `json:"item"`
	Changed bool                `json:"changed"`
}

// planTools holds the plan tool handlers. Dates default to tomorrow.
type planTools struct {
	app *cli.App
	now func() time.Time
}

func registerPlanTools(srv *mcp.Server, deps ToolDependencies) {
	tools := planTools{app: deps.App, now: time.Now}

	srv.Tool("plan.generate").
		Description("Generate or regenerate the daily plan for a date (YYYY-MM-DD, default tomorrow)").
		Handler(tools.generate)

	srv.Tool("plan.show").
		Description("Show the stored daily plan for a date (default tomorrow)").
		Handler(tools.show)

	srv.Tool("plan.week").
		Description("Summarize the plans of consecutive days").
		Handler(tools.week)

	srv.Tool("plan.complete_item").
		Description("Mark a plan item done, or not done with completed=false. The item ID may be a prefix").
		Handler(tools.completeItem)
}

func (t planTools) date(value string) (domain.Date, error) {
	return cli.ParseDateFlag(value, t.now())
}

func (t planTools) generate(ctx context.Context, input planGenerateInput) (*planGenerateOutput, error) {
	if t.app == nil || t.app.GeneratePlanHandler == nil {
		return nil, errors.New("plan generation requires database connection")
	}
	date, err := t.date(input.Date)
	if err != nil {
		return nil, err
	}
	activityIDs := make([]uuid.UUID, 0, len(input.ActivityIDs))
	for _, raw := range input.ActivityIDs {
		id, err := parseUUID(raw)
		if err != nil {
			return nil, fmt.Errorf("activity %q: %w", raw, err)
		}
		activityIDs = append(activityIDs, id)
	}

	result, err := t.app.GeneratePlanHandler.Handle(ctx, commands.GeneratePlanCommand{
		UserID:      t.app.CurrentUserID,
		Date:        date,
		Style:       input.Style,
		Intensity:   input.Intensity,
		ActivityIDs: activityIDs,
	})
	if err != nil {
		return nil, err
	}
	if err := t.app.Flush(ctx); err != nil {
		return nil, err
	}

	out := &planGenerateOutput{
		Plan:          queries.ToPlanDTO(result.Plan),
		Rejections:    make([]rejectionOutput, 0, len(result.Rejections)),
		PlacedMinutes: result.PlacedMinutes,
	}
	for _, r := range result.Rejections {
		out.Rejections = append(out.Rejections, rejectionOutput{SourceID: r.SourceID, Title: r.Title, Reason: string(r.Reason)})
	}
	return out, nil
}

func (t planTools) show(ctx context.Context, input planDateInput) (*queries.PlanDTO, error) {
	if t.app == nil || t.app.GetPlanHandler == nil {
		return nil, errors.New("plan lookup requires database connection")
	}
	date, err := t.date(input.Date)
	if err != nil {
		return nil, err
	}
	plan, err := t.app.GetPlanHandler.Handle(ctx, queries.GetPlanQuery{UserID: t.app.CurrentUserID, Date: date})
	if errors.Is(err, domain.ErrPlanNotFound) {
		return nil, fmt.Errorf("no plan for %s, call plan.generate first", date)
	}
	return plan, err
}

func (t planTools) week(ctx context.Context, input planWeekInput) ([]queries.DaySummaryDTO, error) {
	if t.app == nil || t.app.ListPlansHandler == nil {
		return nil, errors.New("plan listing requires database connection")
	}
	from := domain.DateOf(t.now())
	if input.From != "" {
		d, err := domain.ParseDate(input.From)
		if err != nil {
			return nil, fmt.Errorf("invalid from date, use YYYY-MM-DD: %w", err)
		}
		from = d
	}
	return t.app.ListPlansHandler.Handle(ctx, queries.ListPlansQuery{
		UserID: t.app.CurrentUserID,
		From:   from,
		Days:   input.Days,
	})
}

func (t planTools) completeItem(ctx context.Context, input planCompleteInput) (*planCompleteOutput, error) {
	if t.app == nil || t.app.SetItemCompletedHandler == nil {
		return nil, errors.New("item completion requires database connection")
	}
	plan, err := t.show(ctx, planDateInput{Date: input.Date})
	if err != nil {
		return nil, err
	}
	itemID, err := cli.MatchItem(plan.Items, input.ItemID)
	if err != nil {
		return nil, err
	}
	date, err := domain.ParseDate(plan.Date)
	if err != nil {
		return nil, err
	}
	completed := true
	if input.Completed != nil {
		completed = *input.Completed
	}

	result, err := t.app.SetItemCompletedHandler.Handle(ctx, commands.SetItemCompletedCommand{
		UserID:    t.app.CurrentUserID,
		Date:      date,
		ItemID:    itemID,
		Completed: completed,
	})
	if err != nil {
		return nil, err
	}
	if err := t.app.Flush(ctx); err != nil {
		return nil, err
	}
	return &planCompleteOutput{Item: queries.ToItemDTO(result.Item), Changed: result.Changed}, nil
}

func parseUUID(value string) (uuid.UUID, error) {
	if value == "" {
		return uuid.UUID{}, errors.New("id is required")
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.UUID{}, fmt.Errorf("invalid id: %w", err)
	}
	return id, nil
}
