package commands

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/hay-kot/taskdeck/internal/core/styles"
	"github.com/hay-kot/taskdeck/internal/core/task"
)

// fieldsText renders fields one per line so edits diff line by line.
func fieldsText(f task.Fields) string {
	var b strings.Builder
	fmt.Fprintf(&b, "title: %s\n", f.Title)
	fmt.Fprintf(&b, "status: %s\n", f.Status)
	fmt.Fprintf(&b, "due_date: %s\n", f.DueDate)
	b.WriteString("description:\n")
	for _, line := range strings.Split(strings.TrimRight(f.Description, "\n"), "\n") {
		if line == "" {
			b.WriteString("\n")
			continue
		}
		b.WriteString("  " + line + "\n")
	}
	return b.String()
}

// fieldsDiff returns a +/- line diff between two field sets, or "" when they
// are equal.
func fieldsDiff(before, after task.Fields) string {
	a, b := fieldsText(before), fieldsText(after)
	if a == b {
		return ""
	}

	dmp := diffmatchpatch.New()
	ca, cb, lines := dmp.DiffLinesToChars(a, b)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(ca, cb, false), lines)

	var out strings.Builder
	for _, d := range diffs {
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			line = strings.TrimSuffix(line, "\n")
			switch d.Type {
			case diffmatchpatch.DiffInsert:
				out.WriteString(styles.SuccessStyle.Render("+ "+line) + "\n")
			case diffmatchpatch.DiffDelete:
				out.WriteString(styles.ErrorStyle.Render("- "+line) + "\n")
			default:
				out.WriteString("  " + line + "\n")
			}
		}
	}
	return out.String()
}
