package tracker

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/hay-kot/taskdeck/internal/core/task"
)

// Filter selects tasks by status and a case-insensitive title glob.
// The zero value matches everything.
type Filter struct {
	Status task.Status
	Match  string
}

// NewFilter parses user supplied filter values.
func NewFilter(status, match string) (Filter, error) {
	var f Filter
	if status != "" {
		st, ok := task.ParseStatus(status)
		if !ok {
			return Filter{}, fmt.Errorf("unknown status %q", status)
		}
		f.Status = st
	}

	f.Match = strings.ToLower(strings.TrimSpace(match))
	if f.Match != "" && !doublestar.ValidatePattern(f.Match) {
		return Filter{}, fmt.Errorf("invalid glob %q", match)
	}
	return f, nil
}

// Matches reports whether t passes the filter. A pattern without glob
// characters matches as a substring.
func (f Filter) Matches(t task.Task) bool {
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.Match == "" {
		return true
	}

	title := strings.ToLower(t.Title)
	if !f.isGlob() {
		return strings.Contains(title, f.Match)
	}
	ok, _ := doublestar.Match(f.Match, title)
	return ok
}

func (f Filter) isGlob() bool {
	return strings.ContainsAny(f.Match, "*?[{")
}

// Apply returns the tasks that pass the filter, preserving order.
func (f Filter) Apply(tasks []task.Task) []task.Task {
	out := make([]task.Task, 0, len(tasks))
	for _, t := range tasks {
		if f.Matches(t) {
			out = append(out, t)
		}
	}
	return out
}
