package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hay-kot/taskdeck/internal/core/notify"
	"github.com/hay-kot/taskdeck/internal/core/styles"
)

const (
	toastTickInterval = 100 * time.Millisecond
	toastWidth        = 50
)

type toastTickMsg time.Time

func scheduleToastTick() tea.Cmd {
	return tea.Tick(toastTickInterval, func(t time.Time) tea.Msg {
		return toastTickMsg(t)
	})
}

// renderToast renders the channel's visible notification, or "".
func renderToast(ch *notify.Channel, maxWidth int) string {
	n, ok := ch.Current()
	if !ok {
		return ""
	}

	var (
		icon  string
		style lipgloss.Style
	)
	switch n.Severity {
	case notify.SeverityError:
		icon = "✘"
		style = styles.ToastErrorStyle
	default:
		icon = "✔"
		style = styles.ToastSuccessStyle
	}

	width := min(toastWidth, max(maxWidth-2, 20))
	return style.Width(width).Render(icon + " " + n.Message)
}
