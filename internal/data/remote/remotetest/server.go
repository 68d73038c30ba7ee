// Package remotetest provides an in-memory fake of the remote task store for
// tests. It speaks the same HTTP shapes as the real store and supports failure
// injection per route.
package remotetest

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
)

// Task is the stored shape, using the document-store "_id" key.
type Task struct {
	ID          string `json:"_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	DueDate     string `json:"dueDate,omitempty"`
}

// Route identifies an endpoint for failure injection.
type Route string

const (
	RouteList   Route = "GET /tasks"
	RouteCreate Route = "POST /tasks"
	RouteUpdate Route = "PUT /tasks/:id"
	RouteDelete Route = "DELETE /tasks/:id"
	RouteStats  Route = "GET /tasks/statistics"
	RouteLogin  Route = "POST /auth/login"
	RouteHealth Route = "GET /health"
)

// Request records what the server received.
type Request struct {
	Route         Route
	Authorization string
	RequestID     string
}

// Server is a fake task store. All methods are safe for concurrent use.
type Server struct {
	*httptest.Server

	// Token and User are returned by a successful login for Password.
	Token    string
	User     map[string]any
	Password string

	// CamelStats makes the statistics endpoint use "inProgress".
	CamelStats bool

	mu       sync.Mutex
	tasks    []Task
	nextID   int
	failures map[Route]int
	requests []Request
}

// New starts a fake store and registers cleanup with t.
func New(t testing.TB) *Server {
	t.Helper()

	s := &Server{
		Token:    "test-token",
		Password: "secret",
		User:     map[string]any{"_id": "u1", "email": "ana@example.com", "username": "ana", "role": "user"},
		failures: map[Route]int{},
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	api := e.Group("/api")
	api.GET("/tasks", s.handle(RouteList, s.list))
	api.POST("/tasks", s.handle(RouteCreate, s.create))
	api.GET("/tasks/statistics", s.handle(RouteStats, s.stats))
	api.PUT("/tasks/:id", s.handle(RouteUpdate, s.update))
	api.DELETE("/tasks/:id", s.handle(RouteDelete, s.remove))
	api.POST("/auth/login", s.handle(RouteLogin, s.login))
	e.GET("/health", s.handle(RouteHealth, func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	}))

	s.Server = httptest.NewServer(e)
	t.Cleanup(s.Close)
	return s
}

// Seed replaces the stored tasks. Empty IDs are assigned.
func (s *Server) Seed(tasks ...Task) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tasks = s.tasks[:0]
	for _, t := range tasks {
		if t.ID == "" {
			t.ID = s.newID()
		}
		s.tasks = append(s.tasks, t)
	}
}

// Tasks returns a copy of the stored tasks.
func (s *Server) Tasks() []Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Fail makes the next n requests to route answer with 500.
func (s *Server) Fail(route Route, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[route] = n
}

// Requests returns the recorded requests.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// Count returns how many requests reached route.
func (s *Server) Count(route Route) int {
	n := 0
	for _, r := range s.Requests() {
		if r.Route == route {
			n++
		}
	}
	return n
}

func (s *Server) handle(route Route, next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Route:         route,
			Authorization: c.Request().Header.Get("Authorization"),
			RequestID:     c.Request().Header.Get("X-Request-ID"),
		})
		failing := s.failures[route] > 0
		if failing {
			s.failures[route]--
		}
		s.mu.Unlock()

		if failing {
			return c.String(http.StatusInternalServerError, "injected failure")
		}
		return next(c)
	}
}

func (s *Server) list(c echo.Context) error {
	return c.JSON(http.StatusOK, s.Tasks())
}

func (s *Server) create(c echo.Context) error {
	var in Task
	if err := c.Bind(&in); err != nil {
		return c.String(http.StatusBadRequest, "invalid body")
	}
	if in.Title == "" {
		return c.String(http.StatusBadRequest, "title is required")
	}
	if in.Status == "" {
		in.Status = "todo"
	}

	s.mu.Lock()
	in.ID = s.newID()
	s.tasks = append(s.tasks, in)
	s.mu.Unlock()

	return c.JSON(http.StatusCreated, in)
}

func (s *Server) update(c echo.Context) error {
	id := c.Param("id")

	var in Task
	if err := c.Bind(&in); err != nil {
		return c.String(http.StatusBadRequest, "invalid body")
	}
	in.ID = id

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks[i] = in
			return c.JSON(http.StatusOK, in)
		}
	}
	return c.String(http.StatusNotFound, "task not found")
}

func (s *Server) remove(c echo.Context) error {
	id := c.Param("id")

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			return c.JSON(http.StatusOK, map[string]string{"message": "task deleted"})
		}
	}
	return c.String(http.StatusNotFound, "task not found")
}

func (s *Server) stats(c echo.Context) error {
	counts := map[string]int{"todo": 0, "in_progress": 0, "completed": 0}
	for _, t := range s.Tasks() {
		switch t.Status {
		case "in_progress", "completed":
			counts[t.Status]++
		default:
			counts["todo"]++
		}
	}

	if s.CamelStats {
		counts["inProgress"] = counts["in_progress"]
		delete(counts, "in_progress")
	}
	return c.JSON(http.StatusOK, counts)
}

func (s *Server) login(c echo.Context) error {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&in); err != nil {
		return c.String(http.StatusBadRequest, "invalid body")
	}
	if in.Password != s.Password {
		return c.String(http.StatusUnauthorized, "invalid credentials")
	}
	return c.JSON(http.StatusOK, map[string]any{"token": s.Token, "user": s.User})
}

// newID must be called with s.mu held.
func (s *Server) newID() string {
	s.nextID++
	return strconv.Itoa(s.nextID)
}
