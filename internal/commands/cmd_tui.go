package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/taskdeck/internal/core/logging"
	"github.com/hay-kot/taskdeck/internal/tracker"
	"github.com/hay-kot/taskdeck/internal/tui"
	"github.com/hay-kot/taskdeck/pkg/profiler"
)

type TuiCmd struct {
	flags *Flags
	app   *tracker.App
}

// NewTuiCmd creates a new tui command
func NewTuiCmd(flags *Flags, app *tracker.App) *TuiCmd {
	return &TuiCmd{
		flags: flags,
		app:   app,
	}
}

// Flags returns the TUI-specific flags for registration on the root command
func (cmd *TuiCmd) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:        "profiler-port",
			Usage:       "enable pprof HTTP endpoint on specified port (e.g., 6060)",
			Sources:     cli.EnvVars("TASKDECK_PROFILER_PORT"),
			Destination: &cmd.flags.ProfilerPort,
		},
	}
}

// Register adds the tui command to the application
func (cmd *TuiCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "tui",
		Usage:     "Open the interactive task board",
		UsageText: "taskdeck tui",
		Description: `Opens the task board. This is also what runs when taskdeck is started without
a command. Press ? inside the board for key bindings.`,
		Action: cmd.run,
	})
	return app
}

// Run executes the TUI. Exported for use as default command.
func (cmd *TuiCmd) Run(ctx context.Context, c *cli.Command) error {
	return cmd.run(ctx, c)
}

func (cmd *TuiCmd) run(ctx context.Context, _ *cli.Command) error {
	// Start profiler server if enabled
	if cmd.flags.ProfilerPort > 0 {
		plog := logging.Component("profiler")
		profServer := profiler.New(cmd.flags.ProfilerPort, plog)
		if err := profServer.Start(ctx); err != nil {
			return fmt.Errorf("failed to start profiler: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := profServer.Shutdown(shutdownCtx); err != nil {
				plog.Error().Err(err).Msg("failed to shutdown profiler server")
			}
		}()
		plog.Info().
			Str("url", fmt.Sprintf("http://%s/debug/pprof/", profServer.Addr())).
			Msg("profiler endpoint available")
	}

	return tui.Run(ctx, cmd.app, tui.Options{Logger: log.Logger})
}
