package commands

import (
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/taskdeck/internal/tracker"
)

// GlobalFlags returns the root flags bound to flags.
func GlobalFlags(flags *Flags) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error, fatal, panic)",
			Sources:     cli.EnvVars("TASKDECK_LOG_LEVEL"),
			Value:       "info",
			Destination: &flags.LogLevel,
		},
		&cli.StringFlag{
			Name:        "log-file",
			Usage:       "path to log file (defaults to <data-dir>/taskdeck.log, '-' for stderr)",
			Sources:     cli.EnvVars("TASKDECK_LOG_FILE"),
			Destination: &flags.LogFile,
		},
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "path to config file",
			Sources:     cli.EnvVars("TASKDECK_CONFIG"),
			Value:       DefaultConfigPath(),
			Destination: &flags.ConfigPath,
		},
		&cli.StringFlag{
			Name:        "data-dir",
			Usage:       "path to data directory",
			Sources:     cli.EnvVars("TASKDECK_DATA_DIR"),
			Value:       DefaultDataDir(),
			Destination: &flags.DataDir,
		},
		&cli.StringFlag{
			Name:        "server",
			Usage:       "task server base URL (overrides server.base_url)",
			Sources:     cli.EnvVars("TASKDECK_SERVER"),
			Destination: &flags.Server,
		},
	}
}

// RegisterAll adds every command to root and returns the board command, which
// callers use as the default action. app may still be empty; it is populated
// in root's Before hook.
func RegisterAll(root *cli.Command, flags *Flags, app *tracker.App) *TuiCmd {
	tuiCmd := NewTuiCmd(flags, app)

	NewAuthCmd(flags, app).Register(root)
	NewTaskCmd(flags, app).Register(root)
	NewStatsCmd(flags, app).Register(root)
	NewDoctorCmd(flags, app).Register(root)
	tuiCmd.Register(root)

	root.Flags = append(root.Flags, tuiCmd.Flags()...)
	return tuiCmd
}
