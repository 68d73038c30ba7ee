package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/hay-kot/taskdeck/internal/core/styles"
	"github.com/hay-kot/taskdeck/internal/core/task"
)

const (
	barGlyph      = "█"
	barEmptyGlyph = "░"
	labelWidth    = 14
)

// StatsChart renders per-status counts as a horizontal bar chart with bars
// up to width cells long.
func StatsChart(stats task.Statistics, width int) string {
	if width < 10 {
		width = 10
	}

	maxCount := 0
	for _, st := range task.Statuses() {
		maxCount = max(maxCount, stats.Count(st))
	}

	var b strings.Builder
	for _, st := range task.Statuses() {
		n := stats.Count(st)
		filled := 0
		if maxCount > 0 {
			filled = n * width / maxCount
		}
		if n > 0 && filled == 0 {
			filled = 1
		}

		label := lipgloss.NewStyle().Width(labelWidth).Render(styles.StatusIcon(st) + " " + st.Label())
		bar := lipgloss.NewStyle().Foreground(styles.StatusColor(st)).Render(strings.Repeat(barGlyph, filled))
		rest := styles.MutedStyle.Render(strings.Repeat(barEmptyGlyph, width-filled))
		fmt.Fprintf(&b, "%s %s%s %d\n", label, bar, rest, n)
	}

	total := stats.Total()
	done := 0
	if total > 0 {
		done = stats.Completed * 100 / total
	}
	fmt.Fprintf(&b, "%s", styles.MutedStyle.Render(fmt.Sprintf("%d tasks, %d%% completed", total, done)))
	return b.String()
}
