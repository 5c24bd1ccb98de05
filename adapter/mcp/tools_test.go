package mcp

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/mcp-go/testutil"
	"github.com/felixgeelhaar/memoryplanner/adapter/cli"
	internalApp "github.com/felixgeelhaar/memoryplanner/internal/app"
	"github.com/felixgeelhaar/memoryplanner/internal/planning/domain"
	"github.com/felixgeelhaar/memoryplanner/pkg/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testUserID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

func TestRegisterCLITools_ListTools(t *testing.T) {
	srv := mcp.NewServer(mcp.ServerInfo{
		Name:    "test",
		Version: "1.0.0",
		Capabilities: mcp.Capabilities{
			Tools: true,
		},
	})

	app := &cli.App{}
	require.NoError(t, RegisterCLITools(srv, ToolDependencies{App: app}))

	tc := testutil.NewTestClient(t, srv)
	defer tc.Close()

	tools, err := tc.ListTools()
	require.NoError(t, err)

	names := make(map[any]bool, len(tools))
	for _, tool := range tools {
		names[tool["name"]] = true
	}
	for _, want := range []string{"cli.health", "cli.version", "plan.generate", "plan.show", "plan.week", "plan.complete_item"} {
		assert.True(t, names[want], "%s tool should be registered", want)
	}
}

func TestRegisterCLITools_RequiresDependencies(t *testing.T) {
	srv := mcp.NewServer(mcp.ServerInfo{Name: "test", Version: "1.0.0"})

	assert.Error(t, RegisterCLITools(nil, ToolDependencies{App: &cli.App{}}))
	assert.Error(t, RegisterCLITools(srv, ToolDependencies{}))
}

func setupPlanTools(t *testing.T) (planTools, *internalApp.Container) {
	t.Helper()

	cfg := &config.Config{
		AppEnv:            "test",
		LocalMode:         true,
		DatabaseDriver:    "sqlite",
		SQLitePath:        filepath.Join(t.TempDir(), "test.db"),
		LogLevel:          "error",
		UserID:            testUserID.String(),
		GenerationLockTTL: 30 * time.Second,
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	container, err := internalApp.NewContainer(context.Background(), cfg, logger)
	require.NoError(t, err)
	t.Cleanup(container.Close)

	app := cli.NewApp(
		container.GeneratePlanHandler,
		container.SetItemCompletedHandler,
		container.GetPlanHandler,
		container.ListPlansHandler,
	)
	app.SetCurrentUserID(testUserID)
	app.SetFlusher(container)

	return planTools{app: app, now: time.Now}, container
}

func seedSubstep(t *testing.T, c *internalApp.Container, title, duration string) uuid.UUID {
	t.Helper()
	ctx := context.Background()
	projectID, stepID, substepID := uuid.New(), uuid.New(), uuid.New()
	created := "2025-01-01T00:00:00.000000Z"

	_, err := c.DB.Exec(ctx, `INSERT INTO projects (id, user_id, title, category, status, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		projectID.String(), testUserID.String(), "Garden", "home", "active", created)
	require.NoError(t, err)
	_, err = c.DB.Exec(ctx, `INSERT INTO steps (id, project_id, title, order_index) VALUES ($1, $2, $3, $4)`,
		stepID.String(), projectID.String(), "Spring", 0)
	require.NoError(t, err)
	_, err = c.DB.Exec(ctx, `INSERT INTO substeps (id, step_id, title, duration_text, status, order_index, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		substepID.String(), stepID.String(), title, duration, "pending", 0, created)
	require.NoError(t, err)
	return substepID
}

func TestPlanTools_Workflow(t *testing.T) {
	tools, container := setupPlanTools(t)
	ctx := context.Background()
	substepID := seedSubstep(t, container, "prune roses", "45min")
	tomorrow := domain.DateOf(time.Now()).AddDays(1)

	generated, err := tools.generate(ctx, planGenerateInput{Intensity: "light"})
	require.NoError(t, err)
	assert.Equal(t, tomorrow.String(), generated.Plan.Date)
	assert.Equal(t, "light", generated.Plan.Intensity)
	assert.Empty(t, generated.Rejections)
	assert.Equal(t, 45, generated.PlacedMinutes)

	shown, err := tools.show(ctx, planDateInput{Date: tomorrow.String()})
	require.NoError(t, err)
	assert.Equal(t, generated.Plan.ID, shown.ID)

	var itemID uuid.UUID
	for _, item := range shown.Items {
		if item.SourceID != nil && *item.SourceID == substepID {
			itemID = item.ID
		}
	}
	require.NotEqual(t, uuid.Nil, itemID)

	done, err := tools.completeItem(ctx, planCompleteInput{ItemID: itemID.String()[:8]})
	require.NoError(t, err)
	assert.True(t, done.Changed)
	assert.True(t, done.Item.Completed)

	again, err := tools.completeItem(ctx, planCompleteInput{ItemID: itemID.String()[:8]})
	require.NoError(t, err)
	assert.False(t, again.Changed)

	reopen := false
	reopened, err := tools.completeItem(ctx, planCompleteInput{ItemID: itemID.String(), Completed: &reopen})
	require.NoError(t, err)
	assert.True(t, reopened.Changed)
	assert.False(t, reopened.Item.Completed)

	week, err := tools.week(ctx, planWeekInput{Days: 3})
	require.NoError(t, err)
	require.Len(t, week, 3)
	assert.Nil(t, week[0].Plan)
	require.NotNil(t, week[1].Plan)
	assert.Equal(t, generated.Plan.ID, week[1].Plan.ID)
}

func TestPlanTools_Errors(t *testing.T) {
	tools, _ := setupPlanTools(t)
	ctx := context.Background()

	_, err := tools.show(ctx, planDateInput{Date: "2030-01-01"})
	assert.ErrorContains(t, err, "no plan for 2030-01-01")

	_, err = tools.show(ctx, planDateInput{Date: "01/01/2030"})
	assert.ErrorContains(t, err, "invalid date format")

	_, err = tools.generate(ctx, planGenerateInput{ActivityIDs: []string{"nope"}})
	assert.ErrorContains(t, err, `activity "nope"`)

	_, err = tools.week(ctx, planWeekInput{From: "tomorrow"})
	assert.ErrorContains(t, err, "invalid from date")

	_, err = tools.completeItem(ctx, planCompleteInput{Date: "2030-01-01", ItemID: "abcd"})
	assert.ErrorContains(t, err, "no plan for")
}

func TestPlanTools_RequireApp(t *testing.T) {
	tools := planTools{app: &cli.App{}, now: time.Now}
	ctx := context.Background()

	_, err := tools.generate(ctx, planGenerateInput{})
	assert.ErrorContains(t, err, "database connection")
	_, err = tools.show(ctx, planDateInput{})
	assert.ErrorContains(t, err, "database connection")
	_, err = tools.week(ctx, planWeekInput{})
	assert.ErrorContains(t, err, "database connection")
	_, err = tools.completeItem(ctx, planCompleteInput{ItemID: "x"})
	assert.ErrorContains(t, err, "database connection")
}

func TestParseUUID(t *testing.T) {
	id := uuid.New()

	got, err := parseUUID(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = parseUUID("")
	assert.ErrorContains(t, err, "id is required")
	_, err = parseUUID("zzz")
	assert.ErrorContains(t, err, "invalid id")
}
