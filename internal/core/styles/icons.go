package styles

import "github.com/hay-kot/taskdeck/internal/core/task"

// Tip: To find icons use https://github.com/loichyan/nerdfix

var (
	IconTodo       = "○"
	IconInProgress = "◐"
	IconCompleted  = "●"
	IconDue        = "⏲"
	IconUser       = "👤"
)

// StatusIcon returns the glyph for a status.
func StatusIcon(s task.Status) string {
	switch task.NormalizeStatus(string(s)) {
	case task.StatusInProgress:
		return IconInProgress
	case task.StatusCompleted:
		return IconCompleted
	default:
		return IconTodo
	}
}
