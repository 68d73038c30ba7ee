package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/hay-kot/taskdeck/internal/core/task"
)

// Each command runs one intent through the tracker. The tracker patches the
// cache and emits the notification; the message only tells the board to
// re-render.

func (m Model) refreshCmd() tea.Cmd {
	return func() tea.Msg {
		return tasksLoadedMsg{err: m.app.Tasks.Refresh(m.ctx)}
	}
}

func (m Model) createCmd(fields task.Fields) tea.Cmd {
	return func() tea.Msg {
		_, err := m.app.Tasks.Create(m.ctx, fields)
		return intentDoneMsg{err: err}
	}
}

func (m Model) updateCmd(id string, fields task.Fields) tea.Cmd {
	return func() tea.Msg {
		_, err := m.app.Tasks.Update(m.ctx, id, fields)
		return intentDoneMsg{err: err}
	}
}

func (m Model) transitionCmd(id string, to task.Status) tea.Cmd {
	return func() tea.Msg {
		_, err := m.app.Tasks.Transition(m.ctx, id, to)
		return intentDoneMsg{err: err}
	}
}

func (m Model) deleteCmd(id string) tea.Cmd {
	return func() tea.Msg {
		return intentDoneMsg{err: m.app.Tasks.Delete(m.ctx, id)}
	}
}

func (m Model) statsCmd() tea.Cmd {
	return func() tea.Msg {
		stats, err := m.app.Tasks.Statistics(m.ctx)
		return statsLoadedMsg{stats: stats, err: err}
	}
}

func (m Model) loginCmd(email, password string) tea.Cmd {
	return func() tea.Msg {
		_, err := m.app.Auth.Login(m.ctx, email, password)
		return loginDoneMsg{err: err}
	}
}

func (m Model) logoutCmd() tea.Cmd {
	return func() tea.Msg {
		err := m.app.Auth.Logout(m.ctx)
		if err != nil {
			m.app.Notify.Errorf("Logout failed: %v", err)
		} else {
			m.app.Notify.Successf("Logged out")
		}
		return logoutDoneMsg{err: err}
	}
}

// waitForSessionEvent blocks until the session file changes on disk.
func (m Model) waitForSessionEvent() tea.Cmd {
	if m.sessionEvents == nil {
		return nil
	}
	events := m.sessionEvents
	return func() tea.Msg {
		ev, ok := <-events
		return sessionEventMsg{event: ev, ok: ok}
	}
}

func (m Model) reloadSessionCmd() tea.Cmd {
	return func() tea.Msg {
		changed, err := m.app.Session.Reload(m.ctx)
		return sessionReloadedMsg{changed: changed, err: err}
	}
}
