package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/felixgeelhaar/memoryplanner/pkg/observability"
	"github.com/spf13/cobra"
)

var (
	verbose bool
	logger  *slog.Logger
)

type startedAtKey struct{}

func cliLogger() *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

var rootCmd = &cobra.Command{
	Use:   "planner",
	Short: "Memo'ry Planner - daily plans from your projects",
	Long: `Planner turns the open sub-steps of your projects, your routines and
your blocked time into a timed plan for one day.

Plans are stored per date and regenerated on demand.`,
	// Each command gets a fresh correlation ID and its path as the operation.
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		ctx = observability.NewRequestContext(ctx, "")
		ctx = observability.WithOperation(ctx, cmd.CommandPath())
		ctx = context.WithValue(ctx, startedAtKey{}, time.Now())
		cmd.SetContext(ctx)
		cliLogger().DebugContext(ctx, "command start")
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		startedAt, ok := ctx.Value(startedAtKey{}).(time.Time)
		if !ok {
			return
		}
		cliLogger().DebugContext(ctx, "command end", "duration_ms", time.Since(startedAt).Milliseconds())
	},
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// AddCommand adds a command to the root command.
func AddCommand(cmd *cobra.Command) {
	rootCmd.AddCommand(cmd)
}

// SetLogger sets the CLI logger.
func SetLogger(l *slog.Logger) {
	logger = l
}

// Verbose reports whether --verbose was given.
func Verbose() bool {
	return verbose
}
