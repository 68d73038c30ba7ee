package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/taskdeck/internal/core/task"
	"github.com/hay-kot/taskdeck/internal/tracker"
)

// TaskIDCompleter returns a ShellCompleteFunc that suggests task ids as
// positional completions, with the title as the zsh/fish description. Set this
// as the ShellComplete field on any cli.Command that accepts a task id.
//
// When the user's last typed argument starts with "-", it falls back to the
// default flag completion behavior.
func TaskIDCompleter(app *tracker.App) cli.ShellCompleteFunc {
	return func(ctx context.Context, cmd *cli.Command) {
		// Delegate to default flag completion when typing a flag. Args is nil
		// until the command has been parsed.
		if args := cmd.Args(); args != nil && args.Present() {
			last := args.Slice()[args.Len()-1]
			if len(last) > 0 && last[0] == '-' {
				cli.DefaultCompleteWithFlags(ctx, cmd)
				return
			}
		}

		// Completion must stay quiet: no notification output, no error.
		if app.Tasks == nil || app.Tasks.Refresh(ctx) != nil {
			return
		}

		w := cmd.Root().Writer
		for _, t := range app.Tasks.Tasks() {
			if cmd.Name != "rm" && cmd.Name != "show" && cmd.Name != "edit" && len(task.Transitions(t.Status)) == 0 {
				continue
			}
			_, _ = fmt.Fprintf(w, "%s:%s\n", t.ID, t.Title)
		}
	}
}
