package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/hay-kot/taskdeck/internal/core/styles"
	"github.com/hay-kot/taskdeck/internal/core/task"
)

const (
	appName         = "taskdeck"
	detailMinWidth  = 90
	listTitleMargin = 24
)

// View renders the board.
func (m Model) View() string {
	sections := []string{m.renderHeader()}

	switch m.state {
	case stateForm, stateLogin:
		sections = append(sections, m.renderForm())
	case stateConfirm:
		sections = append(sections, m.renderBody(), m.confirm.View())
	default:
		sections = append(sections, m.renderBody())
	}

	if toast := renderToast(m.app.Notify, m.width); toast != "" {
		sections = append(sections, toast)
	}
	if m.state == stateNormal || m.state == stateFilter {
		sections = append(sections, m.help.View(m.keys))
	}

	return strings.Join(sections, "\n")
}

func (m Model) renderHeader() string {
	colors := styles.Gradient(len(appName))
	var title strings.Builder
	for i, r := range appName {
		title.WriteString(lipgloss.NewStyle().Foreground(colors[i]).Bold(true).Render(string(r)))
	}

	tabs := []string{"Tasks", "Stats"}
	rendered := make([]string, 0, len(tabs))
	for i, name := range tabs {
		if page(i) == m.page {
			rendered = append(rendered, styles.TabActiveStyle.Render(name))
		} else {
			rendered = append(rendered, styles.TabInactiveStyle.Render(name))
		}
	}

	user := styles.MutedStyle.Render("not logged in (L to log in)")
	if p, ok := m.app.Session.Profile(); ok {
		user = styles.IconUser + " " + styles.HeaderStyle.Render(p.DisplayName())
	}

	left := title.String() + "  " + strings.Join(rendered, " ")
	if m.pending > 0 {
		left += " " + m.spinner.View()
	}

	gap := max(1, m.width-lipgloss.Width(left)-lipgloss.Width(user))
	return left + strings.Repeat(" ", gap) + user + "\n" +
		styles.DividerStyle.Render(strings.Repeat("─", max(m.width, 1)))
}

func (m Model) renderBody() string {
	if m.page == pageStats {
		return m.renderStats()
	}

	list := m.renderList()
	if !m.detail {
		return list
	}

	t, ok := m.selected()
	if !ok {
		return list
	}

	if m.width < detailMinWidth {
		return list + "\n" + m.renderDetail(t, m.width-4)
	}

	listWidth := m.width / 2
	return lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(listWidth).Render(list),
		m.renderDetail(t, m.width-listWidth-4),
	)
}

func (m Model) renderList() string {
	var b strings.Builder

	if m.state == stateFilter {
		b.WriteString(m.search.View() + "\n")
	} else if m.filter.Match != "" || m.filter.Status != "" {
		parts := []string{}
		if m.filter.Status != "" {
			parts = append(parts, "status: "+m.filter.Status.Label())
		}
		if m.filter.Match != "" {
			parts = append(parts, "title: "+m.filter.Match)
		}
		b.WriteString(styles.MutedStyle.Render("filter "+strings.Join(parts, ", ")+" (esc to clear)") + "\n")
	}

	tasks := m.visibleTasks()
	switch {
	case !m.loaded && m.pending > 0:
		b.WriteString(styles.MutedStyle.Render(m.spinner.View() + " loading tasks"))
		return b.String()
	case len(tasks) == 0 && m.loadErr != nil:
		b.WriteString(styles.ErrorStyle.Render("Could not load tasks. Press r to retry."))
		return b.String()
	case len(tasks) == 0:
		b.WriteString(styles.MutedStyle.Render("No tasks. Press n to create one."))
		return b.String()
	}

	now := m.now()
	titleWidth := max(10, m.width-listTitleMargin)
	if m.detail && m.width >= detailMinWidth {
		titleWidth = max(10, m.width/2-listTitleMargin)
	}

	for i, t := range tasks {
		cursor := "  "
		titleStyle := styles.NormalStyle
		if i == m.cursor {
			cursor = styles.SelectedStyle.Render("▸ ")
			titleStyle = styles.SelectedStyle
		}
		if t.Status == task.StatusCompleted {
			titleStyle = titleStyle.Strikethrough(true)
		}

		icon := lipgloss.NewStyle().Foreground(styles.StatusColor(t.Status)).Render(styles.StatusIcon(t.Status))
		line := cursor + icon + " " + titleStyle.Render(truncate(t.Title, titleWidth))
		if t.HasDueDate() {
			due := styles.IconDue + " " + t.DueDate.String()
			if t.Overdue(now) {
				due = styles.OverdueStyle.Render(due + " overdue")
			} else {
				due = styles.MutedStyle.Render(due)
			}
			line += "  " + due
		}
		b.WriteString(line)
		if i < len(tasks)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m Model) renderDetail(t task.Task, width int) string {
	width = max(width, 20)

	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render(t.Title) + "\n")
	b.WriteString(styles.StatusBadge(t.Status))
	if t.HasDueDate() {
		b.WriteString("  " + styles.MutedStyle.Render(styles.IconDue+" due "+t.DueDate.String()))
	}
	b.WriteString("\n")

	if next := task.Transitions(t.Status); len(next) > 0 {
		actions := make([]string, 0, len(next))
		for _, to := range next {
			actions = append(actions, fmt.Sprintf("[%s] %s", transitionKey(to), task.TransitionVerb(t.Status, to)))
		}
		b.WriteString(styles.MutedStyle.Render(strings.Join(actions, "  ")) + "\n")
	}

	if desc := RenderMarkdown(t.Description, width-4); desc != "" {
		b.WriteString("\n" + desc)
	}

	return styles.PanelStyle.Width(width).Render(strings.TrimRight(b.String(), "\n"))
}

// transitionKey returns the board key that performs a move to status to.
func transitionKey(to task.Status) string {
	switch to {
	case task.StatusInProgress:
		return "s"
	case task.StatusCompleted:
		return "c"
	default:
		return "x"
	}
}

func (m Model) renderStats() string {
	if m.statsErr != nil {
		return styles.ErrorStyle.Render("Could not load statistics. Press r to retry.")
	}
	return StatsChart(m.stats, max(10, min(m.width-30, 50)))
}

func (m Model) renderForm() string {
	if m.form == nil {
		return ""
	}

	title := "New task"
	switch {
	case m.state == stateLogin:
		title = "Log in"
	case m.formTaskID != "":
		title = "Edit task #" + m.formTaskID
	}
	return styles.HeaderStyle.Render(title) + "\n\n" + m.form.View() + "\n" +
		styles.MutedStyle.Render("esc to cancel")
}

func truncate(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}
	r := []rune(s)
	if width <= 1 || len(r) <= width {
		return s
	}
	return string(r[:width-1]) + "…"
}
