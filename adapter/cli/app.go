package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/felixgeelhaar/memoryplanner/internal/planning/application/commands"
	"github.com/felixgeelhaar/memoryplanner/internal/planning/application/queries"
	"github.com/felixgeelhaar/memoryplanner/internal/planning/domain"
	"github.com/google/uuid"
)

// BlockedSlotStore lists and adds blocked intervals.
type BlockedSlotStore interface {
	domain.BlockedSlotSource
	Add(ctx context.Context, userID uuid.UUID, b domain.BlockedInterval) (uuid.UUID, error)
}

// ActivityStore adds custom activities.
type ActivityStore interface {
	AddActivity(ctx context.Context, userID uuid.UUID, a domain.CustomActivity) error
}

// Flusher delivers pending outbox messages before the process exits.
type Flusher interface {
	Flush(ctx context.Context) error
}

// App holds the CLI application dependencies.
type App struct {
	// Plan Command Handlers
	GeneratePlanHandler     *commands.GeneratePlanHandler
	SetItemCompletedHandler *commands.SetItemCompletedHandler

	// Plan Query Handlers
	GetPlanHandler   *queries.GetPlanHandler
	ListPlansHandler *queries.ListPlansHandler

	// Settings
	Profiles   domain.ProfileRepository
	Blocked    BlockedSlotStore
	Activities ActivityStore

	Flusher       Flusher
	CurrentUserID uuid.UUID
}

// NewApp creates a new CLI application with the given handlers.
func NewApp(
	generatePlanHandler *commands.GeneratePlanHandler,
	setItemCompletedHandler *commands.SetItemCompletedHandler,
	getPlanHandler *queries.GetPlanHandler,
	listPlansHandler *queries.ListPlansHandler,
) *App {
	return &App{
		GeneratePlanHandler:     generatePlanHandler,
		SetItemCompletedHandler: setItemCompletedHandler,
		GetPlanHandler:          getPlanHandler,
		ListPlansHandler:        listPlansHandler,
	}
}

// SetCurrentUserID sets the current user ID for CLI operations.
func (a *App) SetCurrentUserID(id uuid.UUID) {
	a.CurrentUserID = id
}

// SetSettingsStores wires the repositories behind the settings commands.
func (a *App) SetSettingsStores(profiles domain.ProfileRepository, blocked BlockedSlotStore, activities ActivityStore) {
	a.Profiles = profiles
	a.Blocked = blocked
	a.Activities = activities
}

// SetFlusher sets the outbox flusher run after commands that emit events.
func (a *App) SetFlusher(f Flusher) {
	a.Flusher = f
}

// Flush delivers pending events when a flusher is configured.
func (a *App) Flush(ctx context.Context) error {
	if a.Flusher == nil {
		return nil
	}
	return a.Flusher.Flush(ctx)
}

// Global app instance (set during initialization)
var app *App

// SetApp sets the global CLI application instance.
func SetApp(a *App) {
	app = a
}

// GetApp returns the global CLI application instance.
func GetApp() *App {
	return app
}

// ParseDateFlag parses a YYYY-MM-DD flag value. An empty value means
// tomorrow, relative to now.
func ParseDateFlag(value string, now time.Time) (domain.Date, error) {
	if value == "" {
		return domain.DateOf(now).AddDays(1), nil
	}
	date, err := domain.ParseDate(value)
	if err != nil {
		return domain.Date{}, fmt.Errorf("invalid date format, use YYYY-MM-DD: %w", err)
	}
	return date, nil
}
