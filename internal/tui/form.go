package tui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/hay-kot/taskdeck/internal/core/styles"
	"github.com/hay-kot/taskdeck/internal/core/task"
)

// NewTaskForm builds the add/edit form bound to fields. The same form is run
// standalone by the CLI and embedded in the board.
func NewTaskForm(fields *task.Fields, v task.Validator) *huh.Form {
	if fields.Status == "" {
		fields.Status = string(task.StatusTodo)
	}

	options := make([]huh.Option[string], 0, len(task.Statuses()))
	for _, st := range task.Statuses() {
		options = append(options, huh.NewOption(st.Label(), string(st)))
	}

	description := huh.NewText().
		Title("Description").
		Description("Markdown is supported").
		Value(&fields.Description)
	if v.DescriptionRequired {
		description = description.Validate(func(s string) error {
			if strings.TrimSpace(s) == "" {
				return errors.New("description is required")
			}
			return nil
		})
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Validate(task.Title).
				Value(&fields.Title),
			description,
			huh.NewSelect[string]().
				Title("Status").
				Options(options...).
				Value(&fields.Status),
			huh.NewInput().
				Title("Due date").
				Placeholder(task.DateLayout).
				Validate(task.DueDate).
				Value(&fields.DueDate),
		),
	).WithTheme(styles.HuhTheme())
}

// newLoginForm builds the board's login form.
func newLoginForm(email, password *string) *huh.Form {
	required := func(name string) func(string) error {
		return func(s string) error {
			if strings.TrimSpace(s) == "" {
				return errors.New(name + " is required")
			}
			return nil
		}
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Validate(required("email")).
				Value(email),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Validate(required("password")).
				Value(password),
		),
	).WithTheme(styles.HuhTheme())
}
