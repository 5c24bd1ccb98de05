package mcp

import (
	"context"
	"errors"

	"github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/memoryplanner/adapter/cli"
)

// ToolDependencies provides handlers and context for MCP tools.
type ToolDependencies struct {
	App *cli.App
}

// RegisterCLITools registers MCP tools that mirror CLI functionality.
func RegisterCLITools(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return errors.New("server is required")
	}
	if deps.App == nil {
		return errors.New("app is required")
	}

	registerCoreTools(srv, deps)
	registerPlanTools(srv, deps)
	return nil
}

func registerCoreTools(srv *mcp.Server, deps ToolDependencies) {
	app := deps.App

	srv.Tool("cli.health").
		Description("Check CLI wiring health").
		Handler(func(ctx context.Context, input struct{}) (map[string]string, error) {
			if app == nil || app.GeneratePlanHandler == nil {
				return nil, errors.New("app not initialized")
			}
			return map[string]string{"status": "ok"}, nil
		})

	srv.Tool("cli.version").
		Description("Get CLI version information").
		Handler(func(ctx context.Context, input struct{}) (map[string]string, error) {
			return map[string]string{
				"version":   cli.Version,
				"commit":    cli.Commit,
				"buildDate": cli.BuildDate,
			}, nil
		})
}
