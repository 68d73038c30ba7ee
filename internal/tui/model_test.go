package tui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/taskdeck/internal/core/config"
	"github.com/hay-kot/taskdeck/internal/core/notify"
	"github.com/hay-kot/taskdeck/internal/core/session"
	"github.com/hay-kot/taskdeck/internal/core/task"
	"github.com/hay-kot/taskdeck/internal/data/remote/remotetest"
	"github.com/hay-kot/taskdeck/internal/store/jsonfile"
	"github.com/hay-kot/taskdeck/internal/tracker"
	"github.com/hay-kot/taskdeck/pkg/tuitest"
)

var testNow = time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)

func newTestApp(t *testing.T, srv *remotetest.Server) *tracker.App {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.Server.BaseURL = srv.URL
	require.NoError(t, cfg.Validate())

	app, err := tracker.NewApp(context.Background(), &cfg, nil, zerolog.Nop())
	require.NoError(t, err)
	return app
}

// newLoadedModel returns a board that finished its first refresh.
func newLoadedModel(t *testing.T, tasks ...remotetest.Task) (Model, *tracker.App, *remotetest.Server) {
	t.Helper()

	srv := remotetest.New(t)
	srv.Seed(tasks...)
	app := newTestApp(t, srv)

	m := New(app, Options{Now: func() time.Time { return testNow }})
	m, _ = send(m, tuitest.WindowSize(120, 40))
	m, _ = send(m, m.refreshCmd()())
	require.True(t, m.loaded)
	require.Zero(t, m.pending)
	return m, app, srv
}

func send(m Model, msg tea.Msg) (Model, tea.Cmd) {
	updated, cmd := m.Update(msg)
	return updated.(Model), cmd
}

// run executes an intent command and feeds its result back into the board.
func run(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	require.NotNil(t, cmd)
	m, _ = send(m, cmd())
	return m
}

func view(m Model) string {
	return tuitest.StripANSI(m.View())
}

func seedTasks() []remotetest.Task {
	return []remotetest.Task{
		{Title: "Write report", Description: "quarterly **numbers**", Status: "todo", DueDate: "2024-05-01"},
		{Title: "Ship release", Status: "in_progress"},
		{Title: "Book flights", Status: "completed", DueDate: "2024-07-01"},
	}
}

func TestModel_InitialLoad(t *testing.T) {
	m, _, _ := newLoadedModel(t, seedTasks()...)

	out := view(m)
	assert.Contains(t, out, "taskdeck")
	assert.Contains(t, out, "not logged in")
	assert.Contains(t, out, "Write report")
	assert.Contains(t, out, "Ship release")
	assert.Contains(t, out, "2024-05-01 overdue")
	assert.NotContains(t, out, "2024-07-01 overdue", "completed and future tasks are never overdue")
}

func TestModel_Loading(t *testing.T) {
	srv := remotetest.New(t)
	app := newTestApp(t, srv)

	m := New(app, Options{})
	assert.Equal(t, 1, m.pending)
	assert.Contains(t, view(m), "loading tasks")
}

func TestModel_LoadFailure(t *testing.T) {
	srv := remotetest.New(t)
	srv.Fail(remotetest.RouteList, 1)
	app := newTestApp(t, srv)

	m := New(app, Options{})
	m, cmd := send(m, m.refreshCmd()())

	require.Error(t, m.loadErr)
	assert.NotNil(t, cmd, "toast countdown starts")
	out := view(m)
	assert.Contains(t, out, "Could not load tasks")
	assert.Contains(t, out, "Failed to load tasks")

	// Retrying recovers.
	m, cmd = send(m, tuitest.KeyPress('r'))
	assert.Equal(t, 1, m.pending)
	m = run(t, m, cmd)
	assert.NoError(t, m.loadErr)
}

func TestModel_CursorMovement(t *testing.T) {
	m, _, _ := newLoadedModel(t, seedTasks()...)

	m, _ = send(m, tuitest.KeyDown())
	m, _ = send(m, tuitest.KeyPress('j'))
	m, _ = send(m, tuitest.KeyDown())
	assert.Equal(t, 2, m.cursor, "cursor stops at the last task")

	m, _ = send(m, tuitest.KeyPress('k'))
	sel, ok := m.selected()
	require.True(t, ok)
	assert.Equal(t, "Ship release", sel.Title)
}

func TestModel_Transition(t *testing.T) {
	m, app, srv := newLoadedModel(t, seedTasks()...)

	m, cmd := send(m, tuitest.KeyPress('s'))
	assert.Equal(t, 1, m.pending)
	m = run(t, m, cmd)

	assert.Zero(t, m.pending)
	assert.Equal(t, "in_progress", srv.Tasks()[0].Status)
	cached, _ := app.Tasks.Task(srv.Tasks()[0].ID)
	assert.Equal(t, task.StatusInProgress, cached.Status)
	assert.Contains(t, view(m), `Task "Write report" moved to In Progress`)
	assert.True(t, m.ticking)
}

func TestModel_Transition_not_offered(t *testing.T) {
	m, _, srv := newLoadedModel(t, seedTasks()...)
	before := srv.Count(remotetest.RouteUpdate)

	// Ship release is already in progress.
	m, _ = send(m, tuitest.KeyDown())
	m, cmd := send(m, tuitest.KeyPress('s'))
	assert.Nil(t, cmd)

	// Completed tasks offer no moves at all.
	m, _ = send(m, tuitest.KeyDown())
	for _, k := range []rune{'s', 'c', 'x'} {
		var cmd tea.Cmd
		m, cmd = send(m, tuitest.KeyPress(k))
		assert.Nil(t, cmd, "key %q", k)
	}

	assert.Zero(t, m.pending)
	assert.Equal(t, before, srv.Count(remotetest.RouteUpdate))
}

func TestModel_Transition_failure(t *testing.T) {
	m, app, srv := newLoadedModel(t, seedTasks()...)
	srv.Fail(remotetest.RouteUpdate, 1)

	m, cmd := send(m, tuitest.KeyPress('c'))
	m = run(t, m, cmd)

	n, ok := app.Notify.Current()
	require.True(t, ok)
	assert.Equal(t, notify.SeverityError, n.Severity)
	assert.Contains(t, view(m), "Failed to update task status")

	cached, _ := app.Tasks.Task(srv.Tasks()[0].ID)
	assert.Equal(t, task.StatusTodo, cached.Status, "cache keeps the confirmed state")
}

func TestModel_ToastExpires(t *testing.T) {
	m, app, _ := newLoadedModel(t, seedTasks()...)

	m, cmd := send(m, tuitest.KeyPress('s'))
	m = run(t, m, cmd)
	require.True(t, m.ticking)

	ticks := int(app.Notify.TTL()/toastTickInterval) + 1
	for range ticks {
		m, _ = send(m, toastTickMsg(testNow))
	}

	_, visible := app.Notify.Current()
	assert.False(t, visible)
	assert.False(t, m.ticking)
	assert.NotContains(t, view(m), "moved to")
}

func TestModel_DismissToast(t *testing.T) {
	m, app, _ := newLoadedModel(t, seedTasks()...)
	app.Notify.Successf("hello")

	m, _ = send(m, tuitest.KeyEsc())
	_, visible := app.Notify.Current()
	assert.False(t, visible)
	assert.NotContains(t, view(m), "hello")
}

func TestModel_Delete(t *testing.T) {
	m, _, srv := newLoadedModel(t, seedTasks()...)

	m, _ = send(m, tuitest.KeyPress('d'))
	require.Equal(t, stateConfirm, m.state)
	assert.Contains(t, view(m), `Delete task "Write report"?`)

	m, cmd := send(m, tuitest.KeyPress('y'))
	assert.Equal(t, stateNormal, m.state)
	m = run(t, m, cmd)

	assert.Len(t, srv.Tasks(), 2)
	assert.NotContains(t, view(m), "Write report")
	assert.Contains(t, view(m), "Task deleted")
}

func TestModel_Delete_cancel(t *testing.T) {
	m, _, srv := newLoadedModel(t, seedTasks()...)

	m, _ = send(m, tuitest.KeyPress('d'))
	m, cmd := send(m, tuitest.KeyPress('n'))

	assert.Nil(t, cmd)
	assert.Equal(t, stateNormal, m.state)
	assert.Zero(t, srv.Count(remotetest.RouteDelete))
	assert.Len(t, srv.Tasks(), 3)
}

func TestModel_Filter(t *testing.T) {
	m, _, _ := newLoadedModel(t, seedTasks()...)

	m, _ = send(m, tuitest.KeyPress('/'))
	require.Equal(t, stateFilter, m.state)
	for _, msg := range tuitest.KeyPressString("ship") {
		m, _ = send(m, msg)
	}
	m, _ = send(m, tuitest.KeyEnter())

	assert.Equal(t, stateNormal, m.state)
	out := view(m)
	assert.Contains(t, out, "filter title: ship")
	assert.Contains(t, out, "Ship release")
	assert.NotContains(t, out, "Write report")

	m, _ = send(m, tuitest.KeyEsc())
	assert.Contains(t, view(m), "Write report")
}

func TestModel_StatusFilter(t *testing.T) {
	m, _, _ := newLoadedModel(t, seedTasks()...)

	m, _ = send(m, tuitest.KeyPress('f'))
	m, _ = send(m, tuitest.KeyPress('f'))
	assert.Equal(t, task.StatusInProgress, m.filter.Status)
	require.Len(t, m.visibleTasks(), 1)
	assert.Equal(t, "Ship release", m.visibleTasks()[0].Title)

	m, _ = send(m, tuitest.KeyPress('f'))
	m, _ = send(m, tuitest.KeyPress('f'))
	assert.Empty(t, m.filter.Status, "cycles back to all")
}

func TestModel_Detail(t *testing.T) {
	m, _, _ := newLoadedModel(t, seedTasks()...)

	m, _ = send(m, tuitest.KeyEnter())
	out := view(m)
	assert.Contains(t, out, "quarterly")
	assert.Contains(t, out, "[s] start")
	assert.Contains(t, out, "[c] complete")
}

func TestModel_StatsPage(t *testing.T) {
	m, _, _ := newLoadedModel(t, seedTasks()...)

	m, cmd := send(m, tuitest.KeyTab())
	require.Equal(t, pageStats, m.page)
	m = run(t, m, cmd)

	assert.Equal(t, 3, m.stats.Total())
	out := view(m)
	assert.Contains(t, out, "3 tasks, 33% completed")
	assert.NotContains(t, out, "Write report")

	m, _ = send(m, tuitest.KeyTab())
	assert.Equal(t, pageTasks, m.page)
}

func TestModel_CreateFromForm(t *testing.T) {
	m, _, srv := newLoadedModel(t, seedTasks()...)

	m, _ = send(m, tuitest.KeyPress('n'))
	require.Equal(t, stateForm, m.state)
	assert.Contains(t, view(m), "New task")

	m.formFields.Title = "Water plants"
	m.formFields.DueDate = "2024-06-02"
	updated, cmd := m.submitForm()
	m = run(t, updated.(Model), cmd)

	assert.Equal(t, stateNormal, m.state)
	assert.Nil(t, m.form)
	require.Len(t, srv.Tasks(), 4)
	assert.Equal(t, "Water plants", srv.Tasks()[3].Title)
	assert.Contains(t, view(m), "Water plants")
}

func TestModel_EditForm(t *testing.T) {
	m, _, srv := newLoadedModel(t, seedTasks()...)

	m, _ = send(m, tuitest.KeyPress('e'))
	require.Equal(t, stateForm, m.state)
	assert.Equal(t, "Write report", m.formFields.Title)
	assert.Contains(t, view(m), "Edit task #"+srv.Tasks()[0].ID)

	m.formFields.Title = "Write summary"
	updated, cmd := m.submitForm()
	m = run(t, updated.(Model), cmd)

	assert.Equal(t, "Write summary", srv.Tasks()[0].Title)
	assert.Equal(t, "2024-05-01", srv.Tasks()[0].DueDate, "unchanged fields are resubmitted")
}

func TestModel_FormEscape(t *testing.T) {
	m, _, srv := newLoadedModel(t, seedTasks()...)

	m, _ = send(m, tuitest.KeyPress('n'))
	m, cmd := send(m, tuitest.KeyEsc())

	assert.Nil(t, cmd)
	assert.Equal(t, stateNormal, m.state)
	assert.Zero(t, srv.Count(remotetest.RouteCreate))
}

func TestModel_Login(t *testing.T) {
	m, app, _ := newLoadedModel(t, seedTasks()...)

	m, _ = send(m, tuitest.KeyPress('L'))
	require.Equal(t, stateLogin, m.state)
	assert.Contains(t, view(m), "Log in")

	*m.loginEmail = "ana@example.com"
	*m.loginPassword = "secret"
	updated, cmd := m.submitForm()
	m = updated.(Model)
	m, cmd = send(m, cmd())

	assert.True(t, app.Session.Authenticated())
	assert.NotNil(t, cmd)
	assert.Equal(t, 1, m.pending, "login starts a refresh")
	assert.Contains(t, view(m), "ana")

	// Pressing L again logs out.
	m, cmd = send(m, tuitest.KeyPress('L'))
	m = run(t, m, cmd)
	assert.False(t, app.Session.Authenticated())
	assert.Empty(t, m.visibleTasks())
}

func TestModel_SessionReload(t *testing.T) {
	m, app, _ := newLoadedModel(t, seedTasks()...)
	ctx := context.Background()

	// Another process logs in.
	other := jsonfile.NewSessionStore(app.SessionStore.Path())
	require.NoError(t, other.Save(ctx, session.Credentials{
		Token:   "other-token",
		Profile: session.Profile{Username: "bea"},
	}))

	m, _ = send(m, sessionEventMsg{ok: true})
	m, cmd := send(m, m.reloadSessionCmd()())
	require.NotNil(t, cmd, "a changed session refreshes the list")
	assert.True(t, app.Session.Authenticated())
	assert.Contains(t, view(m), "bea")
	m = run(t, m, cmd)
	assert.Len(t, m.visibleTasks(), 3)

	// And logs out again.
	require.NoError(t, other.Clear(ctx))
	m, _ = send(m, m.reloadSessionCmd()())
	assert.False(t, app.Session.Authenticated())
	assert.Empty(t, app.Cache.Tasks(), "cache is dropped with the session")
	assert.Contains(t, view(m), "not logged in")
}

func TestModel_SessionEvents_closed(t *testing.T) {
	srv := remotetest.New(t)
	app := newTestApp(t, srv)

	events := make(chan jsonfile.FileEvent)
	m := New(app, Options{SessionEvents: events})
	close(events)

	msg := m.waitForSessionEvent()()
	m, cmd := send(m, msg)
	assert.Nil(t, cmd)
	assert.Nil(t, m.sessionEvents)
	assert.Nil(t, m.waitForSessionEvent())
}

func TestModel_Quit(t *testing.T) {
	m, _, _ := newLoadedModel(t)

	_, cmd := send(m, tuitest.KeyPress('q'))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestModel_Empty(t *testing.T) {
	m, _, _ := newLoadedModel(t)
	assert.Contains(t, view(m), "No tasks. Press n to create one.")
}
