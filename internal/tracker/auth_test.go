package tracker

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/taskdeck/internal/core/config"
	"github.com/hay-kot/taskdeck/internal/core/notify"
	"github.com/hay-kot/taskdeck/internal/core/session"
	"github.com/hay-kot/taskdeck/internal/data/remote"
	"github.com/hay-kot/taskdeck/internal/data/remote/remotetest"
)

func newTestApp(t *testing.T, srv *remotetest.Server) *App {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.Server.BaseURL = srv.URL
	require.NoError(t, cfg.Validate())

	app, err := NewApp(context.Background(), &cfg, nil, zerolog.Nop())
	require.NoError(t, err)
	return app
}

func TestAuthService_Login(t *testing.T) {
	srv := remotetest.New(t)
	app := newTestApp(t, srv)
	ctx := context.Background()

	profile, err := app.Auth.Login(ctx, " ana@example.com ", "secret")
	require.NoError(t, err)
	assert.Equal(t, "ana", profile.Username)
	assert.True(t, app.Session.Authenticated())

	n, ok := app.Notify.Current()
	require.True(t, ok)
	assert.Equal(t, notify.SeveritySuccess, n.Severity)
	assert.Contains(t, n.Message, "ana")

	// Persisted for the next invocation.
	next := session.New(app.SessionStore)
	require.NoError(t, next.Restore(ctx))
	token, ok := next.Token()
	require.True(t, ok)
	assert.Equal(t, "test-token", token)

	// Subsequent requests carry the credential.
	require.NoError(t, app.Tasks.Refresh(ctx))
	reqs := srv.Requests()
	assert.Equal(t, "Bearer test-token", reqs[len(reqs)-1].Authorization)
}

func TestAuthService_Login_failure_is_hard(t *testing.T) {
	srv := remotetest.New(t)
	app := newTestApp(t, srv)

	_, err := app.Auth.Login(context.Background(), "ana@example.com", "wrong")
	require.ErrorIs(t, err, remote.ErrUnauthorized)
	assert.False(t, app.Session.Authenticated(), "no session is fabricated")

	n, ok := app.Notify.Current()
	require.True(t, ok)
	assert.Equal(t, notify.SeverityError, n.Severity)

	_, err = app.SessionStore.Load(context.Background())
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestAuthService_Login_unreachable(t *testing.T) {
	srv := remotetest.New(t)
	app := newTestApp(t, srv)
	srv.Close()

	_, err := app.Auth.Login(context.Background(), "ana@example.com", "secret")
	require.Error(t, err)
	assert.False(t, app.Session.Authenticated())
}

func TestAuthService_Login_missing_fields(t *testing.T) {
	srv := remotetest.New(t)
	app := newTestApp(t, srv)

	_, err := app.Auth.Login(context.Background(), "", "secret")
	require.ErrorIs(t, err, ErrMissingCredentials)
	assert.Zero(t, srv.Count(remotetest.RouteLogin))
}

func TestAuthService_Logout(t *testing.T) {
	srv := remotetest.New(t)
	srv.Seed(remotetest.Task{Title: "a"})
	app := newTestApp(t, srv)
	ctx := context.Background()

	_, err := app.Auth.Login(ctx, "ana@example.com", "secret")
	require.NoError(t, err)
	require.NoError(t, app.Tasks.Refresh(ctx))
	require.Equal(t, 1, app.Cache.Len())

	require.NoError(t, app.Auth.Logout(ctx))

	assert.False(t, app.Session.Authenticated())
	assert.Zero(t, app.Cache.Len())
	_, visible := app.Notify.Current()
	assert.False(t, visible, "release dismisses the notification")
	assert.NoFileExists(t, filepath.Join(app.Config.DataDir, "session.json"))
}

func TestNewApp_rejects_bad_url(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.Server.BaseURL = "not a url"
	cfg.Server.Timeout = time.Second

	_, err := NewApp(context.Background(), &cfg, nil, zerolog.Nop())
	require.Error(t, err)
}
