package tui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/taskdeck/internal/core/notify"
	"github.com/hay-kot/taskdeck/internal/core/task"
	"github.com/hay-kot/taskdeck/pkg/tuitest"
)

func TestStatsChart(t *testing.T) {
	out := tuitest.StripANSI(StatsChart(task.Statistics{Todo: 4, InProgress: 2, Completed: 2}, 20))
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 4)

	assert.Contains(t, lines[0], "To Do")
	assert.Equal(t, 20, strings.Count(lines[0], barGlyph), "largest count fills the bar")
	assert.True(t, strings.HasSuffix(lines[0], " 4"))

	assert.Contains(t, lines[1], "In Progress")
	assert.Equal(t, 10, strings.Count(lines[1], barGlyph))

	assert.Equal(t, "8 tasks, 25% completed", lines[3])
}

func TestStatsChart_Empty(t *testing.T) {
	out := tuitest.StripANSI(StatsChart(task.Statistics{}, 5))
	assert.NotContains(t, out, barGlyph)
	assert.Contains(t, out, "0 tasks, 0% completed")
}

func TestStatsChart_SmallCountsStayVisible(t *testing.T) {
	out := tuitest.StripANSI(StatsChart(task.Statistics{Todo: 100, Completed: 1}, 10))
	lines := strings.Split(out, "\n")
	assert.Equal(t, 1, strings.Count(lines[2], barGlyph))
}

func TestRenderMarkdown(t *testing.T) {
	assert.Empty(t, RenderMarkdown("  \n", 40))

	out := tuitest.StripANSI(RenderMarkdown("# Plan\n\n- buy *milk*", 40))
	assert.Contains(t, out, "Plan")
	assert.Contains(t, out, "milk")
	assert.NotContains(t, out, "*milk*")
}

func TestRenderToast(t *testing.T) {
	ch := notify.NewChannel(nil, 0)
	assert.Empty(t, renderToast(ch, 80))

	ch.Errorf("Failed to delete task")
	out := tuitest.StripANSI(renderToast(ch, 80))
	assert.Contains(t, out, "✘ Failed to delete task")

	ch.Successf("Task deleted")
	out = tuitest.StripANSI(renderToast(ch, 80))
	assert.Contains(t, out, "✔ Task deleted")
	assert.NotContains(t, out, "Failed")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
}

func TestNextStatusFilter(t *testing.T) {
	got := []task.Status{}
	st := task.Status("")
	for range 4 {
		st = nextStatusFilter(st)
		got = append(got, st)
	}
	assert.Equal(t, []task.Status{task.StatusTodo, task.StatusInProgress, task.StatusCompleted, ""}, got)
}

func TestNewTaskForm_DefaultsStatus(t *testing.T) {
	fields := task.Fields{Title: "x"}
	form := NewTaskForm(&fields, task.Validator{})
	require.NotNil(t, form)
	assert.Equal(t, string(task.StatusTodo), fields.Status)
}
