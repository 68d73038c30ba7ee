package task

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Status represents the lifecycle state of a task.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// ErrInvalidTransition is returned when a status change is not offered by the
// lifecycle.
var ErrInvalidTransition = errors.New("invalid status transition")

// transitions lists the forward moves offered to the user from each state.
// Completed tasks only change through a full edit.
var transitions = map[Status][]Status{
	StatusTodo:       {StatusInProgress, StatusCompleted},
	StatusInProgress: {StatusTodo, StatusCompleted},
	StatusCompleted:  {},
}

// Statuses returns all statuses in display order.
func Statuses() []Status {
	return []Status{StatusTodo, StatusInProgress, StatusCompleted}
}

// ParseStatus parses s strictly after trimming and lowercasing. It returns false
// for anything that is not one of the three known statuses.
func ParseStatus(s string) (Status, bool) {
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_") {
	case "todo":
		return StatusTodo, true
	case "in_progress", "inprogress":
		return StatusInProgress, true
	case "completed":
		return StatusCompleted, true
	default:
		return "", false
	}
}

// NormalizeStatus maps s onto the closed enumeration. Unknown or empty values
// collapse to StatusTodo.
func NormalizeStatus(s string) Status {
	if st, ok := ParseStatus(s); ok {
		return st
	}
	return StatusTodo
}

// IsValid reports whether s is one of the known statuses.
func (s Status) IsValid() bool {
	_, ok := transitions[s]
	return ok
}

// Label returns the human readable name of the status.
func (s Status) Label() string {
	switch s {
	case StatusInProgress:
		return "In Progress"
	case StatusCompleted:
		return "Completed"
	default:
		return "To Do"
	}
}

// Transitions returns the statuses reachable from s.
func Transitions(from Status) []Status {
	return slices.Clone(transitions[NormalizeStatus(string(from))])
}

// CanTransition reports whether moving from -> to is offered.
func CanTransition(from, to Status) bool {
	return slices.Contains(transitions[NormalizeStatus(string(from))], to)
}

// TransitionVerb names the user action that moves a task from -> to.
func TransitionVerb(from, to Status) string {
	switch {
	case to == StatusCompleted:
		return "complete"
	case from == StatusTodo && to == StatusInProgress:
		return "start"
	case from == StatusInProgress && to == StatusTodo:
		return "stop"
	default:
		return "move to " + to.Label()
	}
}

// StatusForVerb returns the target status for a transition verb.
func StatusForVerb(verb string) (Status, bool) {
	switch verb {
	case "start":
		return StatusInProgress, true
	case "complete":
		return StatusCompleted, true
	case "stop":
		return StatusTodo, true
	default:
		return "", false
	}
}

// Transition builds the full replacement draft that moves t to the given
// status. The task itself is not modified.
func Transition(t Task, to Status) (Draft, error) {
	from := NormalizeStatus(string(t.Status))
	if !CanTransition(from, to) {
		return Draft{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}

	d := DraftFromTask(t)
	d.Status = to
	return d, nil
}
