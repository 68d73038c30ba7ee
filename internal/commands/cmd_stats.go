package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/taskdeck/internal/core/task"
	"github.com/hay-kot/taskdeck/internal/tracker"
	"github.com/hay-kot/taskdeck/internal/tui"
	"github.com/hay-kot/taskdeck/pkg/iojson"
)

type StatsCmd struct {
	flags *Flags
	app   *tracker.App

	// flags
	remote     bool
	jsonOutput bool
}

// NewStatsCmd creates a new stats command
func NewStatsCmd(flags *Flags, app *tracker.App) *StatsCmd {
	return &StatsCmd{flags: flags, app: app}
}

// Register adds the stats command to the application
func (cmd *StatsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "stats",
		Usage:     "Show task counts per status",
		UsageText: "taskdeck stats [--remote] [--json]",
		Description: `Counts tasks per status. By default the counts are computed from the task
list; --remote asks the server's statistics endpoint instead (statistics.source in
the config sets the default).`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "remote",
				Usage:       "use the server's statistics endpoint",
				Destination: &cmd.remote,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.run,
	})

	return app
}

// statsInfo is the JSON output format for taskdeck stats --json.
type statsInfo struct {
	Todo       int `json:"todo"`
	InProgress int `json:"in_progress"`
	Completed  int `json:"completed"`
	Total      int `json:"total"`
}

func (cmd *StatsCmd) run(ctx context.Context, c *cli.Command) error {
	stats, err := cmd.load(ctx)
	if err != nil {
		return failureExit(errWriter(c), cmd.app.Notify, err)
	}

	out := c.Root().Writer
	if cmd.jsonOutput {
		return iojson.WriteLine(out, statsInfo{
			Todo:       stats.Todo,
			InProgress: stats.InProgress,
			Completed:  stats.Completed,
			Total:      stats.Total(),
		})
	}

	_, _ = fmt.Fprintln(out, tui.StatsChart(stats, 40))
	return nil
}

func (cmd *StatsCmd) load(ctx context.Context) (task.Statistics, error) {
	if cmd.remote {
		return cmd.app.Tasks.RemoteStatistics(ctx)
	}

	if cmd.app.Config.Statistics.Source != string(tracker.StatisticsRemote) {
		if err := cmd.app.Tasks.Refresh(ctx); err != nil {
			return task.Statistics{}, err
		}
	}
	return cmd.app.Tasks.Statistics(ctx)
}
