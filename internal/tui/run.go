package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hay-kot/taskdeck/internal/store/jsonfile"
	"github.com/hay-kot/taskdeck/internal/tracker"
)

// Run starts the board and blocks until the user quits or ctx is cancelled.
// Changes to the session file made by other taskdeck processes are picked up
// while the board runs.
func Run(ctx context.Context, app *tracker.App, opts Options) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	opts.Context = ctx

	watcher, err := jsonfile.NewFileWatcher(app.SessionStore.Path())
	if err != nil {
		opts.Logger.Warn().Err(err).Msg("session watcher unavailable")
	} else {
		defer func() { _ = watcher.Close() }()
		opts.SessionEvents = watcher.Watch(ctx)
	}

	p := tea.NewProgram(New(app, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("run board: %w", err)
	}
	return nil
}
