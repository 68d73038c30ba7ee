package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/taskdeck/internal/core/doctor"
	"github.com/hay-kot/taskdeck/internal/core/styles"
	"github.com/hay-kot/taskdeck/internal/tracker"
	"github.com/hay-kot/taskdeck/pkg/iojson"
)

type DoctorCmd struct {
	flags   *Flags
	app     *tracker.App
	format  string
	autofix bool
}

func NewDoctorCmd(flags *Flags, app *tracker.App) *DoctorCmd {
	return &DoctorCmd{flags: flags, app: app}
}

func (cmd *DoctorCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "doctor",
		Usage:       "Run health checks on your taskdeck setup",
		UsageText:   "taskdeck doctor [options]",
		Description: "Runs diagnostic checks on configuration, server connectivity, and the stored session.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "format",
				Usage:       "output format (text, json)",
				Value:       "text",
				Destination: &cmd.format,
			},
			&cli.BoolFlag{
				Name:        "autofix",
				Usage:       "automatically fix issues (e.g., remove an expired session)",
				Destination: &cmd.autofix,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *DoctorCmd) checks() []doctor.Check {
	return []doctor.Check{
		doctor.NewConfigCheck(cmd.app.Config, cmd.flags.ConfigPath),
		doctor.NewServerCheck(cmd.app.Client),
		doctor.NewSessionCheck(cmd.app.Session, cmd.autofix),
	}
}

func (cmd *DoctorCmd) run(ctx context.Context, c *cli.Command) error {
	report := doctor.RunAll(ctx, cmd.checks())

	var err error
	if cmd.format == "json" {
		err = iojson.WriteWith(c.Root().Writer, errWriter(c), report)
	} else {
		cmd.outputText(c, report)
	}
	if err != nil {
		return err
	}

	if !report.Healthy() {
		return cli.Exit("", 1)
	}
	return nil
}

func (cmd *DoctorCmd) outputText(c *cli.Command, report doctor.Report) {
	w := errWriter(c)
	divider := styles.DividerStyle.Render(strings.Repeat("─", 40))

	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, styles.TitleStyle.Render("Taskdeck Doctor"))
	_, _ = fmt.Fprintln(w, divider)
	_, _ = fmt.Fprintln(w)

	for _, result := range report.Checks {
		_, _ = fmt.Fprintln(w, styles.HeaderStyle.Render(result.Name))

		for _, item := range result.Items {
			var detail string
			if item.Detail != "" {
				detail = " " + styles.MutedStyle.Render(item.Detail)
			}

			var icon string
			switch item.Status {
			case doctor.StatusPass:
				icon = styles.SuccessStyle.Render("✔")
			case doctor.StatusWarn:
				icon = styles.WarningStyle.Render("●")
			case doctor.StatusFail:
				icon = styles.ErrorStyle.Render("✘")
			}

			_, _ = fmt.Fprintf(w, "  %s %s%s\n", icon, item.Label, detail)
		}

		_, _ = fmt.Fprintln(w)
	}

	totals := report.Totals
	_, _ = fmt.Fprintf(w, "%s  %s  %s\n",
		styles.SuccessStyle.Render(fmt.Sprintf("%d passed", totals.Passed)),
		styles.WarningStyle.Render(fmt.Sprintf("%d warnings", totals.Warned)),
		styles.ErrorStyle.Render(fmt.Sprintf("%d failed", totals.Failed)),
	)

	if !cmd.autofix && totals.Fixable > 0 {
		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprintln(w, styles.MutedStyle.Render(
			fmt.Sprintf("Run 'taskdeck doctor --autofix' to fix %d issue(s)", totals.Fixable)))
	}
}
