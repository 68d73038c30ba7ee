package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/hay-kot/taskdeck/internal/core/task"
	"github.com/hay-kot/taskdeck/internal/tracker"
	"github.com/hay-kot/taskdeck/internal/tui/components"
)

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.state {
	case stateForm, stateLogin:
		if msg.Type == tea.KeyEsc {
			m.closeForm()
			return m, nil
		}
		return m.updateForm(msg)
	case stateFilter:
		return m.handleFilterKey(msg)
	case stateConfirm:
		return m.handleConfirmKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.Dismiss):
		if _, ok := m.app.Notify.Current(); ok {
			m.app.Notify.Dismiss()
			return m, nil
		}
		if m.filter != (tracker.Filter{}) {
			m.filter = tracker.Filter{}
			m.search.SetValue("")
			m.clampCursor()
		}
		return m, nil
	case key.Matches(msg, m.keys.Tab):
		return m.togglePage()
	case key.Matches(msg, m.keys.Refresh):
		cmd := m.start(m.refreshCmd())
		return m, cmd
	case key.Matches(msg, m.keys.Login):
		return m.toggleLogin()
	}

	if m.page != pageTasks {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.visibleTasks())-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Detail):
		m.detail = !m.detail
	case key.Matches(msg, m.keys.Filter):
		m.state = stateFilter
		cmd := m.search.Focus()
		return m, cmd
	case key.Matches(msg, m.keys.Status):
		m.filter.Status = nextStatusFilter(m.filter.Status)
		m.clampCursor()
	case key.Matches(msg, m.keys.New):
		return m.openTaskForm(task.Fields{}, "")
	case key.Matches(msg, m.keys.Edit):
		if t, ok := m.selected(); ok {
			return m.openTaskForm(task.FieldsFromTask(t), t.ID)
		}
	case key.Matches(msg, m.keys.Start):
		return m.transition(task.StatusInProgress)
	case key.Matches(msg, m.keys.Complete):
		return m.transition(task.StatusCompleted)
	case key.Matches(msg, m.keys.Stop):
		return m.transition(task.StatusTodo)
	case key.Matches(msg, m.keys.Delete):
		if t, ok := m.selected(); ok {
			m.confirm = components.NewConfirmModal(fmt.Sprintf("Delete task %q?", t.Title))
			m.confirmID = t.ID
			m.state = stateConfirm
		}
	}

	return m, nil
}

// nextStatusFilter cycles all -> todo -> in progress -> completed -> all.
func nextStatusFilter(current task.Status) task.Status {
	statuses := task.Statuses()
	if current == "" {
		return statuses[0]
	}
	for i, st := range statuses {
		if st == current && i+1 < len(statuses) {
			return statuses[i+1]
		}
	}
	return ""
}

// transition moves the selected task when the state machine offers the move.
// Moves it does not offer are ignored without contacting the store.
func (m Model) transition(to task.Status) (tea.Model, tea.Cmd) {
	t, ok := m.selected()
	if !ok || !task.CanTransition(t.Status, to) {
		return m, nil
	}

	cmd := m.start(m.transitionCmd(t.ID, to))
	return m, cmd
}

func (m Model) togglePage() (tea.Model, tea.Cmd) {
	if m.page == pageStats {
		m.page = pageTasks
		return m, nil
	}

	m.page = pageStats
	cmd := m.start(m.statsCmd())
	return m, cmd
}

func (m Model) toggleLogin() (tea.Model, tea.Cmd) {
	if m.app.Session.Authenticated() {
		cmd := m.start(m.logoutCmd())
		return m, cmd
	}

	email, password := "", ""
	m.loginEmail, m.loginPassword = &email, &password
	m.form = newLoginForm(m.loginEmail, m.loginPassword)
	m.state = stateLogin
	cmd := m.form.Init()
	return m, cmd
}

func (m Model) openTaskForm(fields task.Fields, id string) (tea.Model, tea.Cmd) {
	m.formFields = &fields
	m.formTaskID = id
	m.form = NewTaskForm(m.formFields, m.app.Tasks.Validator())
	m.form.WithWidth(min(m.width, 80))
	m.state = stateForm
	cmd := m.form.Init()
	return m, cmd
}

func (m *Model) closeForm() {
	m.form = nil
	m.formFields = nil
	m.formTaskID = ""
	m.loginEmail, m.loginPassword = nil, nil
	m.state = stateNormal
}

// updateForm forwards msg to the embedded form and submits it on completion.
func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.form == nil {
		m.state = stateNormal
		return m, nil
	}

	updated, cmd := m.form.Update(msg)
	if f, ok := updated.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateAborted:
		m.closeForm()
		return m, nil
	case huh.StateCompleted:
		return m.submitForm()
	}
	return m, cmd
}

func (m Model) submitForm() (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.state {
	case stateLogin:
		cmd = m.start(m.loginCmd(*m.loginEmail, *m.loginPassword))
	case stateForm:
		fields := *m.formFields
		if m.formTaskID == "" {
			cmd = m.start(m.createCmd(fields))
		} else {
			cmd = m.start(m.updateCmd(m.formTaskID, fields))
		}
	}

	m.closeForm()
	return m, cmd
}

func (m Model) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.search.SetValue("")
		m.search.Blur()
		m.filter.Match = ""
		m.state = stateNormal
		m.clampCursor()
		return m, nil
	case tea.KeyEnter:
		m.search.Blur()
		m.state = stateNormal
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)

	// Keep the last valid pattern while a glob is half typed.
	if f, err := tracker.NewFilter(string(m.filter.Status), m.search.Value()); err == nil {
		m.filter = f
		m.cursor = 0
	}
	return m, cmd
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.confirm, _ = m.confirm.Update(msg)
	if !m.confirm.Done() {
		return m, nil
	}

	m.state = stateNormal
	id := m.confirmID
	m.confirmID = ""
	if !m.confirm.Confirmed() {
		return m, nil
	}

	cmd := m.start(m.deleteCmd(id))
	return m, cmd
}

func (m Model) handleSessionReloaded(msg sessionReloadedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.log.Warn().Err(msg.err).Msg("session reload failed")
		return m, nil
	}
	if !msg.changed {
		return m, nil
	}

	if !m.app.Session.Authenticated() {
		m.app.Cache.Replace(nil)
		m.clampCursor()
	}
	cmd := m.start(m.refreshCmd())
	return m, cmd
}

func (m Model) handleToastTick() (tea.Model, tea.Cmd) {
	if m.app.Notify.Tick(toastTickInterval) {
		return m, scheduleToastTick()
	}
	m.ticking = false
	return m, nil
}

// ensureToastTick starts the countdown chain when a notification is visible
// and no chain is running.
func (m *Model) ensureToastTick() tea.Cmd {
	if m.ticking {
		return nil
	}
	if _, ok := m.app.Notify.Current(); !ok {
		return nil
	}
	m.ticking = true
	return scheduleToastTick()
}
