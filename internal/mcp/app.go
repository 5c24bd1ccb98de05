package mcp

import (
	"github.com/felixgeelhaar/memoryplanner/adapter/cli"
	"github.com/felixgeelhaar/memoryplanner/internal/app"
	"github.com/google/uuid"
)

// NewCLIApp creates a CLI application instance backed by the provided container.
func NewCLIApp(container *app.Container, currentUser uuid.UUID) *cli.App {
	cliApp := cli.NewApp(
		container.GeneratePlanHandler,
		container.SetItemCompletedHandler,
		container.GetPlanHandler,
		container.ListPlansHandler,
	)

	cliApp.SetCurrentUserID(currentUser)
	cliApp.SetSettingsStores(container.ProfileRepo, container.BlockedRepo, container.ActivityRepo)
	cliApp.SetFlusher(container)

	return cliApp
}
