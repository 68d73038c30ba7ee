package commands

import (
	"fmt"
	"io"
	"slices"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/taskdeck/internal/core/notify"
	"github.com/hay-kot/taskdeck/internal/core/styles"
	"github.com/hay-kot/taskdeck/internal/core/task"
)

// printNotification writes the channel's current notification, if any.
func printNotification(w io.Writer, ch *notify.Channel) {
	n, ok := ch.Current()
	if !ok {
		return
	}

	switch n.Severity {
	case notify.SeverityError:
		_, _ = fmt.Fprintln(w, styles.ErrorStyle.Render("✘ "+n.Message))
	default:
		_, _ = fmt.Fprintln(w, styles.SuccessStyle.Render("✔ "+n.Message))
	}
}

// validationExit prints field errors and returns an exit error. Non-validation
// errors are returned unchanged.
func validationExit(w io.Writer, err error) error {
	if !task.IsValidationError(err) {
		return err
	}

	msgs := task.FieldMessages(err)
	fields := make([]string, 0, len(msgs))
	for f := range msgs {
		fields = append(fields, f)
	}
	slices.Sort(fields)

	for _, f := range fields {
		_, _ = fmt.Fprintf(w, "%s %s\n", styles.ErrorStyle.Render(f+":"), msgs[f])
	}
	return cli.Exit("invalid task", 1)
}

// failureExit turns a store failure that was already reported on the
// notification channel into a silent exit.
func failureExit(w io.Writer, ch *notify.Channel, err error) error {
	if err == nil {
		return nil
	}
	if n, ok := ch.Current(); ok && n.Severity == notify.SeverityError {
		printNotification(w, ch)
		return cli.Exit("", 1)
	}
	return err
}
