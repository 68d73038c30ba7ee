package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/taskdeck/internal/core/styles"
	"github.com/hay-kot/taskdeck/internal/core/task"
	"github.com/hay-kot/taskdeck/internal/tracker"
	"github.com/hay-kot/taskdeck/internal/tui"
	"github.com/hay-kot/taskdeck/pkg/iojson"
)

type TaskCmd struct {
	flags *Flags
	app   *tracker.App

	// ls/show flags
	status     string
	match      string
	jsonOutput bool

	// add/edit flags
	title       string
	description string
	newStatus   string
	due         string
	dryRun      bool

	// rm flags
	yes bool

	importer iojson.FileReader[[]task.Fields]
}

// NewTaskCmd creates the task command group.
func NewTaskCmd(flags *Flags, app *tracker.App) *TaskCmd {
	return &TaskCmd{flags: flags, app: app}
}

// Register adds the task command group to the application
func (cmd *TaskCmd) Register(app *cli.Command) *cli.Command {
	jsonFlag := func() cli.Flag {
		return &cli.BoolFlag{
			Name:        "json",
			Usage:       "output as JSON lines",
			Destination: &cmd.jsonOutput,
		}
	}

	app.Commands = append(app.Commands, &cli.Command{
		Name:    "task",
		Aliases: []string{"t"},
		Usage:   "List and change tasks",
		Commands: []*cli.Command{
			{
				Name:      "ls",
				Aliases:   []string{"list"},
				Usage:     "List tasks",
				UsageText: "taskdeck task ls [--status <status>] [--match <glob>] [--json]",
				Description: `Fetches the task list from the server and prints it as a table.

--match filters titles case-insensitively. Plain text matches anywhere in the
title; glob characters switch to a full match, e.g. --match 'fix *'.`,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "status",
						Aliases:     []string{"s"},
						Usage:       "only show tasks with this status (todo, in_progress, completed)",
						Destination: &cmd.status,
					},
					&cli.StringFlag{
						Name:        "match",
						Aliases:     []string{"m"},
						Usage:       "only show tasks whose title matches the glob",
						Destination: &cmd.match,
					},
					jsonFlag(),
				},
				Action: cmd.runList,
			},
			{
				Name:          "show",
				Usage:         "Show a task with its rendered description",
				UsageText:     "taskdeck task show <id> [--json]",
				Flags:         []cli.Flag{jsonFlag()},
				ShellComplete: TaskIDCompleter(cmd.app),
				Action:        cmd.runShow,
			},
			{
				Name:      "add",
				Aliases:   []string{"new"},
				Usage:     "Create a task",
				UsageText: "taskdeck task add [--title <title>] [--description <text>] [--status <status>] [--due YYYY-MM-DD]",
				Description: `Creates a task on the server.

Without --title on a terminal an interactive form is shown.`,
				Flags:  cmd.fieldFlags(),
				Action: cmd.runAdd,
			},
			{
				Name:      "edit",
				Usage:     "Edit a task",
				UsageText: "taskdeck task edit <id> [--title ...] [--description ...] [--status ...] [--due ...] [--dry-run]",
				Description: `Replaces a task's fields. Flags that are not given keep their current value.

Without any field flags on a terminal an interactive form is shown.
--dry-run prints the change as a diff and does not contact the server for the update.`,
				Flags: append(cmd.fieldFlags(), &cli.BoolFlag{
					Name:        "dry-run",
					Usage:       "show the change without saving it",
					Destination: &cmd.dryRun,
				}),
				ShellComplete: TaskIDCompleter(cmd.app),
				Action:        cmd.runEdit,
			},
			cmd.transitionCommand("start", "Move a task to In Progress"),
			cmd.transitionCommand("complete", "Mark a task completed"),
			cmd.transitionCommand("stop", "Move an in progress task back to To Do"),
			{
				Name:      "rm",
				Aliases:   []string{"delete"},
				Usage:     "Delete a task",
				UsageText: "taskdeck task rm <id> [--yes]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:        "yes",
						Aliases:     []string{"y"},
						Usage:       "skip the confirmation prompt",
						Destination: &cmd.yes,
					},
				},
				ShellComplete: TaskIDCompleter(cmd.app),
				Action:        cmd.runRemove,
			},
			{
				Name:      "import",
				Usage:     "Create tasks from a JSON array",
				UsageText: "taskdeck task import [-f tasks.json]",
				Description: `Reads a JSON array of {"title", "description", "status", "due_date"} objects
from a file or stdin and creates each task. Invalid entries are reported and skipped.`,
				Flags:  []cli.Flag{cmd.importer.Flag()},
				Action: cmd.runImport,
			},
		},
	})

	return app
}

func (cmd *TaskCmd) fieldFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "task title", Destination: &cmd.title},
		&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Usage: "task description (markdown)", Destination: &cmd.description},
		&cli.StringFlag{Name: "status", Aliases: []string{"s"}, Usage: "todo, in_progress or completed", Destination: &cmd.newStatus},
		&cli.StringFlag{Name: "due", Usage: "due date (YYYY-MM-DD)", Destination: &cmd.due},
	}
}

func (cmd *TaskCmd) transitionCommand(verb, usage string) *cli.Command {
	return &cli.Command{
		Name:          verb,
		Usage:         usage,
		UsageText:     fmt.Sprintf("taskdeck task %s <id>", verb),
		ShellComplete: TaskIDCompleter(cmd.app),
		Action: func(ctx context.Context, c *cli.Command) error {
			return cmd.runTransition(ctx, c, verb)
		},
	}
}

// taskInfo is the JSON output format for task ls/show --json.
type taskInfo struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Status      task.Status `json:"status"`
	DueDate     string      `json:"due_date,omitempty"`
	Overdue     bool        `json:"overdue,omitempty"`
}

func newTaskInfo(t task.Task, now time.Time) taskInfo {
	return taskInfo{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		DueDate:     t.DueDate.String(),
		Overdue:     t.Overdue(now),
	}
}

func (cmd *TaskCmd) runList(ctx context.Context, c *cli.Command) error {
	tasks, err := cmd.load(ctx, c)
	if err != nil {
		return err
	}

	filter, err := tracker.NewFilter(cmd.status, cmd.match)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	tasks = filter.Apply(tasks)

	out := c.Root().Writer
	now := time.Now()

	if cmd.jsonOutput {
		for _, t := range tasks {
			if err := iojson.WriteLine(out, newTaskInfo(t, now)); err != nil {
				return fmt.Errorf("encode task: %w", err)
			}
		}
		return nil
	}

	if len(tasks) == 0 {
		_, _ = fmt.Fprintln(errWriter(c), "No tasks found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tSTATUS\tDUE\tTITLE")
	for _, t := range tasks {
		due := t.DueDate.String()
		if t.Overdue(now) {
			due += " !"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s %s\t%s\t%s\n", t.ID, styles.StatusIcon(t.Status), t.Status.Label(), due, t.Title)
	}
	return w.Flush()
}

func (cmd *TaskCmd) runShow(ctx context.Context, c *cli.Command) error {
	t, err := cmd.find(ctx, c)
	if err != nil {
		return err
	}

	out := c.Root().Writer
	if cmd.jsonOutput {
		return iojson.WriteLine(out, newTaskInfo(t, time.Now()))
	}

	_, _ = fmt.Fprintln(out, styles.TitleStyle.Render(t.Title))
	_, _ = fmt.Fprintf(out, "%s  %s\n", styles.StatusBadge(t.Status), styles.MutedStyle.Render("#"+t.ID))
	if t.HasDueDate() {
		due := styles.IconDue + " due " + t.DueDate.String()
		if t.Overdue(time.Now()) {
			due = styles.OverdueStyle.Render(due + " (overdue)")
		}
		_, _ = fmt.Fprintln(out, due)
	}
	if next := task.Transitions(t.Status); len(next) > 0 {
		verbs := make([]string, 0, len(next))
		for _, to := range next {
			verbs = append(verbs, task.TransitionVerb(t.Status, to))
		}
		_, _ = fmt.Fprintln(out, styles.MutedStyle.Render("next: "+strings.Join(verbs, ", ")))
	}

	if t.Description != "" {
		_, _ = fmt.Fprintln(out)
		_, _ = fmt.Fprintln(out, tui.RenderMarkdown(t.Description, 80))
	}
	return nil
}

func (cmd *TaskCmd) runAdd(ctx context.Context, c *cli.Command) error {
	w := errWriter(c)
	fields := task.Fields{
		Title:       cmd.title,
		Description: cmd.description,
		Status:      cmd.newStatus,
		DueDate:     cmd.due,
	}

	if fields.Title == "" && stdinIsTerminal() {
		if err := tui.NewTaskForm(&fields, cmd.app.Tasks.Validator()).Run(); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return nil
			}
			return fmt.Errorf("form: %w", err)
		}
	}

	created, err := cmd.app.Tasks.Create(ctx, fields)
	if err != nil {
		if task.IsValidationError(err) {
			return validationExit(w, err)
		}
		return failureExit(w, cmd.app.Notify, err)
	}

	printNotification(w, cmd.app.Notify)
	_, _ = fmt.Fprintln(c.Root().Writer, created.ID)
	return nil
}

func (cmd *TaskCmd) runEdit(ctx context.Context, c *cli.Command) error {
	w := errWriter(c)

	current, err := cmd.find(ctx, c)
	if err != nil {
		return err
	}

	before := task.FieldsFromTask(current)
	fields := before

	overridden := false
	for name, v := range map[string]struct {
		dst *string
		val string
	}{
		"title":       {&fields.Title, cmd.title},
		"description": {&fields.Description, cmd.description},
		"status":      {&fields.Status, cmd.newStatus},
		"due":         {&fields.DueDate, cmd.due},
	} {
		if c.IsSet(name) {
			*v.dst = v.val
			overridden = true
		}
	}

	if !overridden && !cmd.dryRun && stdinIsTerminal() {
		if err := tui.NewTaskForm(&fields, cmd.app.Tasks.Validator()).Run(); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return nil
			}
			return fmt.Errorf("form: %w", err)
		}
	}

	if cmd.dryRun {
		draft, err := cmd.app.Tasks.Validator().Validate(fields)
		if err != nil {
			return validationExit(w, err)
		}
		after := task.Fields{
			Title:       draft.Title,
			Description: draft.Description,
			Status:      string(draft.Status),
			DueDate:     draft.DueDate.String(),
		}
		writeFieldsDiff(c.Root().Writer, before, after)
		return nil
	}

	if _, err := cmd.app.Tasks.Update(ctx, current.ID, fields); err != nil {
		if task.IsValidationError(err) {
			return validationExit(w, err)
		}
		return failureExit(w, cmd.app.Notify, err)
	}

	printNotification(w, cmd.app.Notify)
	return nil
}

func (cmd *TaskCmd) runTransition(ctx context.Context, c *cli.Command, verb string) error {
	to, ok := task.StatusForVerb(verb)
	if !ok {
		return fmt.Errorf("unknown transition %q", verb)
	}

	current, err := cmd.find(ctx, c)
	if err != nil {
		return err
	}

	if _, err := cmd.app.Tasks.Transition(ctx, current.ID, to); err != nil {
		if errors.Is(err, task.ErrInvalidTransition) {
			return cli.Exit(fmt.Sprintf("cannot %s a task that is %s", verb, current.Status.Label()), 1)
		}
		return failureExit(errWriter(c), cmd.app.Notify, err)
	}

	printNotification(errWriter(c), cmd.app.Notify)
	return nil
}

func (cmd *TaskCmd) runRemove(ctx context.Context, c *cli.Command) error {
	id, err := requireArg(c, "id")
	if err != nil {
		return err
	}

	if !cmd.yes && stdinIsTerminal() {
		confirmed := false
		err := huh.NewConfirm().
			Title(fmt.Sprintf("Delete task %s?", id)).
			Affirmative("Delete").
			Negative("Cancel").
			Value(&confirmed).
			WithTheme(styles.HuhTheme()).
			Run()
		if err != nil && !errors.Is(err, huh.ErrUserAborted) {
			return fmt.Errorf("confirm: %w", err)
		}
		if !confirmed {
			return nil
		}
	}

	if err := cmd.app.Tasks.Delete(ctx, id); err != nil {
		return failureExit(errWriter(c), cmd.app.Notify, err)
	}

	printNotification(errWriter(c), cmd.app.Notify)
	return nil
}

func (cmd *TaskCmd) runImport(ctx context.Context, c *cli.Command) error {
	w := errWriter(c)

	if cmd.importer.Stdin == nil && c.Root().Reader != nil {
		cmd.importer.Stdin = c.Root().Reader
	}
	items, err := cmd.importer.Read()
	if err != nil {
		return err
	}

	var created, failed int
	for i, fields := range items {
		t, err := cmd.app.Tasks.Create(ctx, fields)
		if err != nil {
			failed++
			if task.IsValidationError(err) {
				_, _ = fmt.Fprintf(w, "%s entry %d: %s\n", styles.ErrorStyle.Render("✘"), i+1, joinFieldMessages(err))
				continue
			}
			_, _ = fmt.Fprintf(w, "%s entry %d: %v\n", styles.ErrorStyle.Render("✘"), i+1, err)
			continue
		}
		created++
		_, _ = fmt.Fprintln(c.Root().Writer, t.ID)
	}

	_, _ = fmt.Fprintf(w, "%d created, %d failed\n", created, failed)
	if failed > 0 {
		return cli.Exit("", 1)
	}
	return nil
}

func joinFieldMessages(err error) string {
	msgs := task.FieldMessages(err)
	parts := make([]string, 0, len(msgs))
	for _, f := range []string{"title", "description", "status", "due_date"} {
		if m, ok := msgs[f]; ok {
			parts = append(parts, f+": "+m)
		}
	}
	return strings.Join(parts, "; ")
}

// load refreshes the cache from the server.
func (cmd *TaskCmd) load(ctx context.Context, c *cli.Command) ([]task.Task, error) {
	if err := cmd.app.Tasks.Refresh(ctx); err != nil {
		return nil, failureExit(errWriter(c), cmd.app.Notify, err)
	}
	return cmd.app.Tasks.Tasks(), nil
}

// find refreshes the cache and returns the task named by the first argument.
func (cmd *TaskCmd) find(ctx context.Context, c *cli.Command) (task.Task, error) {
	id, err := requireArg(c, "id")
	if err != nil {
		return task.Task{}, err
	}

	if _, err := cmd.load(ctx, c); err != nil {
		return task.Task{}, err
	}

	t, ok := cmd.app.Tasks.Task(id)
	if !ok {
		return task.Task{}, cli.Exit(fmt.Sprintf("task %q not found", id), 1)
	}
	return t, nil
}

// writeFieldsDiff prints a line diff between two field sets.
func writeFieldsDiff(w io.Writer, before, after task.Fields) {
	diff := fieldsDiff(before, after)
	if diff == "" {
		_, _ = fmt.Fprintln(w, "No changes")
		return
	}
	_, _ = fmt.Fprint(w, diff)
}
