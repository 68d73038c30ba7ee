// Package tui implements the interactive task board.
//
// The board is a bubbletea program. Every user intent runs its network call in
// a tea.Cmd and reports back with a message; the view always renders from the
// tracker's cache snapshot, so results apply in the order they resolve.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/hay-kot/taskdeck/internal/core/logging"
	"github.com/hay-kot/taskdeck/internal/core/styles"
	"github.com/hay-kot/taskdeck/internal/core/task"
	"github.com/hay-kot/taskdeck/internal/store/jsonfile"
	"github.com/hay-kot/taskdeck/internal/tracker"
	"github.com/hay-kot/taskdeck/internal/tui/components"
)

// UIState is the board's input mode.
type UIState int

const (
	stateNormal UIState = iota
	stateFilter
	stateForm
	stateLogin
	stateConfirm
)

// page is the board's top level tab.
type page int

const (
	pageTasks page = iota
	pageStats
)

// Options configures the board.
type Options struct {
	// Context bounds every network call started by the board.
	Context context.Context
	Logger  zerolog.Logger
	// SessionEvents delivers changes to the session file made by other
	// processes. May be nil.
	SessionEvents <-chan jsonfile.FileEvent
	// Now is used for overdue markers, mostly for tests.
	Now func() time.Time
}

// Model is the root bubbletea model of the board.
type Model struct {
	app  *tracker.App
	ctx  context.Context
	log  zerolog.Logger
	now  func() time.Time
	keys keyMap

	help    help.Model
	spinner spinner.Model
	search  textinput.Model

	state   UIState
	page    page
	filter  tracker.Filter
	cursor  int
	detail  bool
	pending int
	loaded  bool
	loadErr error

	stats    task.Statistics
	statsErr error

	form       *huh.Form
	formFields *task.Fields
	formTaskID string

	loginEmail    *string
	loginPassword *string

	confirm   components.ConfirmModal
	confirmID string

	ticking       bool
	sessionEvents <-chan jsonfile.FileEvent

	width  int
	height int
}

// tasksLoadedMsg reports the end of a refresh. The cache holds the result.
type tasksLoadedMsg struct {
	err error
}

// intentDoneMsg reports the end of a create, update, transition or delete.
type intentDoneMsg struct {
	err error
}

type statsLoadedMsg struct {
	stats task.Statistics
	err   error
}

type loginDoneMsg struct {
	err error
}

type logoutDoneMsg struct {
	err error
}

type sessionEventMsg struct {
	event jsonfile.FileEvent
	ok    bool
}

type sessionReloadedMsg struct {
	changed bool
	err     error
}

// New creates the board model.
func New(app *tracker.App, opts Options) Model {
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "filter titles"

	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(styles.CurrentPalette.Primary)),
	)

	return Model{
		app:           app,
		ctx:           opts.Context,
		log:           logging.Named(opts.Logger, "tui"),
		now:           opts.Now,
		keys:          defaultKeyMap(),
		help:          help.New(),
		spinner:       sp,
		search:        search,
		sessionEvents: opts.SessionEvents,
		pending:       1, // initial refresh started by Init
		width:         100,
		height:        30,
	}
}

// Init starts the spinner, the first refresh and the session watcher.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.refreshCmd(),
		m.waitForSessionEvent(),
	)
}

// Update routes messages to the active mode.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case toastTickMsg:
		return m.handleToastTick()

	case tasksLoadedMsg:
		m.pending = max(0, m.pending-1)
		m.loaded = true
		m.loadErr = msg.err
		m.clampCursor()
		cmds := []tea.Cmd{m.ensureToastTick()}
		if m.page == pageStats {
			cmds = append(cmds, m.start(m.statsCmd()))
		}
		return m, tea.Batch(cmds...)

	case intentDoneMsg:
		m.pending = max(0, m.pending-1)
		m.clampCursor()
		cmd := m.ensureToastTick()
		return m, cmd

	case statsLoadedMsg:
		m.pending = max(0, m.pending-1)
		m.stats, m.statsErr = msg.stats, msg.err
		cmd := m.ensureToastTick()
		return m, cmd

	case loginDoneMsg:
		m.pending = max(0, m.pending-1)
		cmds := []tea.Cmd{m.ensureToastTick()}
		if msg.err == nil {
			cmds = append(cmds, m.start(m.refreshCmd()))
		}
		return m, tea.Batch(cmds...)

	case logoutDoneMsg:
		m.pending = max(0, m.pending-1)
		m.clampCursor()
		cmd := m.ensureToastTick()
		return m, cmd

	case sessionEventMsg:
		if !msg.ok {
			m.sessionEvents = nil
			return m, nil
		}
		return m, tea.Batch(m.reloadSessionCmd(), m.waitForSessionEvent())

	case sessionReloadedMsg:
		return m.handleSessionReloaded(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.state == stateForm || m.state == stateLogin {
		return m.updateForm(msg)
	}
	return m, nil
}

// start counts cmd as an in-flight network call.
func (m *Model) start(cmd tea.Cmd) tea.Cmd {
	m.pending++
	return cmd
}

// visibleTasks returns the cached tasks that pass the active filter.
func (m Model) visibleTasks() []task.Task {
	return m.filter.Apply(m.app.Tasks.Tasks())
}

// selected returns the task under the cursor.
func (m Model) selected() (task.Task, bool) {
	tasks := m.visibleTasks()
	if m.cursor < 0 || m.cursor >= len(tasks) {
		return task.Task{}, false
	}
	return tasks[m.cursor], true
}

func (m *Model) clampCursor() {
	n := len(m.visibleTasks())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}
