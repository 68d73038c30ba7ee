// Package remote is the HTTP client for the remote task store.
package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hay-kot/taskdeck/internal/core/logging"
	"github.com/hay-kot/taskdeck/internal/core/session"
	"github.com/hay-kot/taskdeck/internal/core/task"
)

const (
	headerRequestID = "X-Request-ID"
	maxErrorBody    = 4 << 10
)

// Options configures a Client.
type Options struct {
	BaseURL   string
	APIPrefix string
	Timeout   time.Duration
	// HTTPClient overrides the default client, mostly for tests.
	HTTPClient *http.Client
}

// Client talks to the remote task store. It attaches the session's bearer
// credential to every request when one is held and never masks failures.
type Client struct {
	base    *url.URL
	prefix  string
	http    *http.Client
	session *session.Session
	log     zerolog.Logger
}

var _ task.Store = (*Client)(nil)

// New creates a Client. sess may be nil for unauthenticated use.
func New(opts Options, sess *session.Session, log zerolog.Logger) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url %q must include scheme and host", opts.BaseURL)
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}

	prefix := "/" + strings.Trim(opts.APIPrefix, "/")
	if prefix == "/" {
		prefix = ""
	}

	return &Client{
		base:    base,
		prefix:  prefix,
		http:    hc,
		session: sess,
		log:     logging.Named(log, "remote"),
	}, nil
}

// BaseURL returns the store's base URL.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// List returns all tasks in the store's order.
func (c *Client) List(ctx context.Context) ([]task.Task, error) {
	var out []taskDTO
	if err := c.do(ctx, http.MethodGet, c.api("tasks"), nil, &out); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	tasks := make([]task.Task, 0, len(out))
	for _, dto := range out {
		tasks = append(tasks, dto.toTask())
	}
	return tasks, nil
}

// Create submits a draft and returns the created task.
func (c *Client) Create(ctx context.Context, draft task.Draft) (task.Task, error) {
	var out taskDTO
	if err := c.do(ctx, http.MethodPost, c.api("tasks"), draftDTOFrom(draft), &out); err != nil {
		return task.Task{}, fmt.Errorf("create task: %w", err)
	}
	if out.id() == "" {
		return task.Task{}, fmt.Errorf("create task: %w", ErrMissingID)
	}
	return out.toTask(), nil
}

// Update replaces the task with id and returns the stored result.
func (c *Client) Update(ctx context.Context, id string, draft task.Draft) (task.Task, error) {
	ctx = logging.WithTaskID(ctx, id)

	var out taskDTO
	if err := c.do(ctx, http.MethodPut, c.api("tasks", id), draftDTOFrom(draft), &out); err != nil {
		return task.Task{}, fmt.Errorf("update task %s: %w", id, err)
	}
	if out.id() == "" {
		out.ID = flexID(id)
	}
	return out.toTask(), nil
}

// Remove deletes the task with id.
func (c *Client) Remove(ctx context.Context, id string) error {
	ctx = logging.WithTaskID(ctx, id)

	if err := c.do(ctx, http.MethodDelete, c.api("tasks", id), nil, nil); err != nil {
		return fmt.Errorf("delete task %s: %w", id, err)
	}
	return nil
}

// Aggregate returns the store's per-status counts.
func (c *Client) Aggregate(ctx context.Context) (task.Statistics, error) {
	var out statisticsDTO
	if err := c.do(ctx, http.MethodGet, c.api("tasks", "statistics"), nil, &out); err != nil {
		return task.Statistics{}, fmt.Errorf("task statistics: %w", err)
	}
	return out.toStatistics(), nil
}

// Login exchanges email and password for credentials. Any failure is returned
// as-is; no session is fabricated.
func (c *Client) Login(ctx context.Context, email, password string) (session.Credentials, error) {
	body := loginRequest{Email: email, Password: password}

	var out loginResponse
	if err := c.do(ctx, http.MethodPost, c.api("auth", "login"), body, &out); err != nil {
		return session.Credentials{}, fmt.Errorf("login: %w", err)
	}
	if strings.TrimSpace(out.Token) == "" {
		return session.Credentials{}, fmt.Errorf("login: %w", ErrMissingToken)
	}

	return session.Credentials{Token: out.Token, Profile: out.User.toProfile()}, nil
}

// Health checks that the store is reachable.
func (c *Client) Health(ctx context.Context) error {
	if err := c.do(ctx, http.MethodGet, c.endpoint("health"), nil, nil); err != nil {
		return fmt.Errorf("health check: %w", err)
	}
	return nil
}

func (c *Client) api(segments ...string) string {
	return c.prefix + c.endpoint(segments...)
}

func (c *Client) endpoint(segments ...string) string {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	return "/" + strings.Join(escaped, "/")
}

// do performs a single round trip. in is encoded as the JSON body when non-nil;
// out receives the decoded response when non-nil.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	requestID := uuid.NewString()
	ctx = logging.WithRequestID(ctx, requestID)

	var body io.Reader
	if in != nil {
		data, err := sonic.ConfigStd.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(headerRequestID, requestID)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.session != nil {
		if token, ok := c.session.Token(); ok {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn().Ctx(ctx).Err(err).Str("method", method).Str("path", path).Msg("request failed")
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	c.log.Debug().Ctx(ctx).
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(data)),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := sonic.ConfigStd.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("decode response: %w", ErrEmptyResponse)
		}
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
