package remote

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/taskdeck/internal/core/session"
	"github.com/hay-kot/taskdeck/internal/core/task"
	"github.com/hay-kot/taskdeck/internal/data/remote/remotetest"
)

func newTestClient(t *testing.T, baseURL string, sess *session.Session) *Client {
	t.Helper()
	c, err := New(Options{BaseURL: baseURL, APIPrefix: "/api", Timeout: 5 * time.Second}, sess, zerolog.Nop())
	require.NoError(t, err)
	return c
}

func TestNew_rejects_bad_base_url(t *testing.T) {
	for _, raw := range []string{"", "localhost:3001", "/just/a/path"} {
		_, err := New(Options{BaseURL: raw}, nil, zerolog.Nop())
		assert.Error(t, err, "base url %q", raw)
	}
}

func TestClient_List(t *testing.T) {
	srv := remotetest.New(t)
	srv.Seed(
		remotetest.Task{Title: "a", Status: "todo", DueDate: "2025-03-01T00:00:00.000Z"},
		remotetest.Task{Title: "b", Status: "in_progress"},
		remotetest.Task{Title: "c", Status: "bogus"},
	)

	c := newTestClient(t, srv.URL, nil)
	got, err := c.List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "1", got[0].ID)
	assert.Equal(t, "a", got[0].Title)
	assert.Equal(t, "2025-03-01", got[0].DueDate.String())
	assert.Equal(t, task.StatusInProgress, got[1].Status)
	assert.Equal(t, task.Status("bogus"), got[2].Status, "normalization is left to the cache")
}

func TestClient_bearer_attached_when_authenticated(t *testing.T) {
	srv := remotetest.New(t)
	ctx := context.Background()

	sess := session.New(nil)
	c := newTestClient(t, srv.URL, sess)

	_, err := c.List(ctx)
	require.NoError(t, err)

	require.NoError(t, sess.Acquire(ctx, session.Credentials{Token: "abc"}))
	_, err = c.List(ctx)
	require.NoError(t, err)

	reqs := srv.Requests()
	require.Len(t, reqs, 2)
	assert.Empty(t, reqs[0].Authorization)
	assert.Equal(t, "Bearer abc", reqs[1].Authorization)
	assert.NotEmpty(t, reqs[1].RequestID)
	assert.NotEqual(t, reqs[0].RequestID, reqs[1].RequestID)
}

func TestClient_Create(t *testing.T) {
	srv := remotetest.New(t)
	c := newTestClient(t, srv.URL, nil)

	due, err := task.ParseDate("2025-06-30")
	require.NoError(t, err)

	got, err := c.Create(context.Background(), task.Draft{
		Title:       "Buy milk",
		Description: "2L",
		Status:      task.StatusTodo,
		DueDate:     due,
	})
	require.NoError(t, err)

	assert.Equal(t, "1", got.ID)
	assert.Equal(t, "Buy milk", got.Title)
	assert.Equal(t, "2025-06-30", got.DueDate.String())

	stored := srv.Tasks()
	require.Len(t, stored, 1)
	assert.Equal(t, "2025-06-30", stored[0].DueDate)
}

func TestClient_Create_missing_id(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"title":"x","status":"todo"}`))
	}))
	t.Cleanup(srv.Close)

	c := newTestClient(t, srv.URL, nil)
	_, err := c.Create(context.Background(), task.Draft{Title: "x", Status: task.StatusTodo})
	require.ErrorIs(t, err, ErrMissingID)
}

func TestClient_numeric_ids(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":42,"title":"n","status":"completed"},{"_id":"abc","title":"s","status":"todo"}]`))
	}))
	t.Cleanup(srv.Close)

	c := newTestClient(t, srv.URL, nil)
	got, err := c.List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "42", got[0].ID)
	assert.Equal(t, "abc", got[1].ID)
}

func TestClient_Update(t *testing.T) {
	srv := remotetest.New(t)
	srv.Seed(remotetest.Task{Title: "a", Status: "todo"})
	c := newTestClient(t, srv.URL, nil)

	got, err := c.Update(context.Background(), "1", task.Draft{Title: "a", Status: task.StatusInProgress})
	require.NoError(t, err)
	assert.Equal(t, "1", got.ID)
	assert.Equal(t, task.StatusInProgress, got.Status)
	assert.Equal(t, "in_progress", srv.Tasks()[0].Status)
}

func TestClient_Update_not_found(t *testing.T) {
	srv := remotetest.New(t)
	c := newTestClient(t, srv.URL, nil)

	_, err := c.Update(context.Background(), "missing", task.Draft{Title: "a", Status: task.StatusTodo})
	require.ErrorIs(t, err, ErrNotFound)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusNotFound, se.StatusCode)
}

func TestClient_Remove(t *testing.T) {
	srv := remotetest.New(t)
	srv.Seed(remotetest.Task{Title: "a"}, remotetest.Task{Title: "b"})
	c := newTestClient(t, srv.URL, nil)

	require.NoError(t, c.Remove(context.Background(), "1"))

	stored := srv.Tasks()
	require.Len(t, stored, 1)
	assert.Equal(t, "b", stored[0].Title)
}

func TestClient_server_error(t *testing.T) {
	srv := remotetest.New(t)
	srv.Fail(remotetest.RouteList, 1)
	c := newTestClient(t, srv.URL, nil)

	_, err := c.List(context.Background())
	require.Error(t, err)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusInternalServerError, se.StatusCode)
	assert.Equal(t, "injected failure", se.Body)
	assert.Contains(t, err.Error(), "list tasks")

	_, err = c.List(context.Background())
	assert.NoError(t, err, "failure only injected once")
}

func TestClient_unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "token expired", http.StatusUnauthorized)
	}))
	t.Cleanup(srv.Close)

	c := newTestClient(t, srv.URL, nil)
	_, err := c.List(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestClient_Aggregate(t *testing.T) {
	tests := []struct {
		name  string
		camel bool
	}{
		{name: "snake case", camel: false},
		{name: "camel case", camel: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := remotetest.New(t)
			srv.CamelStats = tt.camel
			srv.Seed(
				remotetest.Task{Title: "a", Status: "todo"},
				remotetest.Task{Title: "b", Status: "in_progress"},
				remotetest.Task{Title: "c", Status: "in_progress"},
				remotetest.Task{Title: "d", Status: "completed"},
			)

			c := newTestClient(t, srv.URL, nil)
			got, err := c.Aggregate(context.Background())
			require.NoError(t, err)
			assert.Equal(t, task.Statistics{Todo: 1, InProgress: 2, Completed: 1}, got)
		})
	}
}

func TestClient_Login(t *testing.T) {
	srv := remotetest.New(t)
	c := newTestClient(t, srv.URL, nil)

	creds, err := c.Login(context.Background(), "ana@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "test-token", creds.Token)
	assert.Equal(t, session.Profile{ID: "u1", Email: "ana@example.com", Username: "ana", Role: "user"}, creds.Profile)
}

func TestClient_Login_failure_is_not_masked(t *testing.T) {
	srv := remotetest.New(t)
	c := newTestClient(t, srv.URL, nil)

	creds, err := c.Login(context.Background(), "ana@example.com", "wrong")
	require.ErrorIs(t, err, ErrUnauthorized)
	assert.Empty(t, creds.Token)
}

func TestClient_Login_unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := newTestClient(t, url, nil)
	creds, err := c.Login(context.Background(), "ana@example.com", "secret")
	require.Error(t, err)
	assert.Empty(t, creds.Token)
}

func TestClient_Login_missing_token(t *testing.T) {
	srv := remotetest.New(t)
	srv.Token = ""
	c := newTestClient(t, srv.URL, nil)

	_, err := c.Login(context.Background(), "ana@example.com", "secret")
	require.ErrorIs(t, err, ErrMissingToken)
}

func TestClient_Health(t *testing.T) {
	srv := remotetest.New(t)
	c := newTestClient(t, srv.URL, nil)

	require.NoError(t, c.Health(context.Background()))
	assert.Equal(t, 1, srv.Count(remotetest.RouteHealth))

	srv.Fail(remotetest.RouteHealth, 1)
	assert.Error(t, c.Health(context.Background()))
}

func TestClient_escapes_ids(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)

	c := newTestClient(t, srv.URL, nil)
	require.NoError(t, c.Remove(context.Background(), "a/b"))
	assert.Equal(t, "/api/tasks/a%2Fb", gotPath)
}

func TestStatusError_Error(t *testing.T) {
	err := &StatusError{Method: "GET", Path: "/api/tasks", StatusCode: 500, Body: "boom"}
	assert.Equal(t, "GET /api/tasks: 500 Internal Server Error: boom", err.Error())
}
