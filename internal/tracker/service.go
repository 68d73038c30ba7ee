// Package tracker keeps the client's view of the task collection in sync with
// the remote store. Every mutation goes through the store first; the cache is
// only patched with confirmed results, and each outcome is reported on the
// notification channel.
package tracker

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/hay-kot/taskdeck/internal/core/logging"
	"github.com/hay-kot/taskdeck/internal/core/notify"
	"github.com/hay-kot/taskdeck/internal/core/task"
)

// ErrTaskNotFound is returned when an intent names a task the cache does not hold.
var ErrTaskNotFound = errors.New("task not found")

// StatisticsSource selects where Service.Statistics reads counts from.
type StatisticsSource string

const (
	StatisticsLocal  StatisticsSource = "local"
	StatisticsRemote StatisticsSource = "remote"
)

// Options tunes a Service.
type Options struct {
	DescriptionRequired bool
	Statistics          StatisticsSource
}

// Service mediates every task intent through the remote store.
type Service struct {
	store     task.Store
	cache     *Cache
	notify    *notify.Channel
	validator task.Validator
	stats     StatisticsSource
	log       zerolog.Logger
}

// NewService creates a Service over store, patching cache and reporting on ch.
func NewService(store task.Store, cache *Cache, ch *notify.Channel, opts Options, log zerolog.Logger) *Service {
	if opts.Statistics == "" {
		opts.Statistics = StatisticsLocal
	}

	return &Service{
		store:     store,
		cache:     cache,
		notify:    ch,
		validator: task.Validator{DescriptionRequired: opts.DescriptionRequired},
		stats:     opts.Statistics,
		log:       logging.Named(log, "tracker"),
	}
}

// Validator returns the validator applied to every submitted form.
func (s *Service) Validator() task.Validator {
	return s.validator
}

// Tasks returns a snapshot of the cached tasks.
func (s *Service) Tasks() []task.Task {
	return s.cache.Tasks()
}

// Task returns the cached task with id.
func (s *Service) Task(id string) (task.Task, bool) {
	return s.cache.Get(id)
}

// Refresh replaces the cache with the store's listing. On failure the cache is
// left as it was.
func (s *Service) Refresh(ctx context.Context) error {
	tasks, err := s.store.List(ctx)
	if err != nil {
		s.fail(ctx, err, "Failed to load tasks")
		return err
	}

	s.cache.Replace(tasks)
	s.log.Debug().Int("count", s.cache.Len()).Msg("tasks refreshed")
	return nil
}

// Create validates fields, submits them and inserts the created task.
// Validation failures return criterio.FieldErrors without contacting the store.
func (s *Service) Create(ctx context.Context, fields task.Fields) (task.Task, error) {
	draft, err := s.validator.Validate(fields)
	if err != nil {
		return task.Task{}, err
	}

	created, err := s.store.Create(ctx, draft)
	if err != nil {
		s.fail(ctx, err, "Failed to create task")
		return task.Task{}, err
	}

	s.cache.ApplyCreate(created)
	created, _ = s.cache.Get(created.ID)

	s.log.Info().Ctx(logging.WithTaskID(ctx, created.ID)).Msg("task created")
	s.notify.Successf("Task %q created", created.Title)
	return created, nil
}

// Update validates fields and replaces the task at id. When id is not cached
// the store result is still returned but the cache is not touched.
func (s *Service) Update(ctx context.Context, id string, fields task.Fields) (task.Task, error) {
	draft, err := s.validator.Validate(fields)
	if err != nil {
		return task.Task{}, err
	}

	return s.submit(ctx, id, draft, "Task %q updated", "Failed to update task")
}

// Transition moves the cached task at id to status to. Transitions the state
// machine does not allow fail with task.ErrInvalidTransition before any
// network call.
func (s *Service) Transition(ctx context.Context, id string, to task.Status) (task.Task, error) {
	current, ok := s.cache.Get(id)
	if !ok {
		return task.Task{}, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}

	draft, err := task.Transition(current, to)
	if err != nil {
		return task.Task{}, err
	}

	return s.submit(ctx, id, draft, "Task %q moved to "+to.Label(), "Failed to update task status")
}

// Delete removes the task at id from the store and then from the cache.
func (s *Service) Delete(ctx context.Context, id string) error {
	ctx = logging.WithTaskID(ctx, id)

	if err := s.store.Remove(ctx, id); err != nil {
		s.fail(ctx, err, "Failed to delete task")
		return err
	}

	s.cache.ApplyDelete(id)
	s.log.Info().Ctx(ctx).Msg("task deleted")
	s.notify.Successf("Task deleted")
	return nil
}

// Statistics returns per-status counts from the configured source.
func (s *Service) Statistics(ctx context.Context) (task.Statistics, error) {
	if s.stats != StatisticsRemote {
		return task.Aggregate(s.cache.Tasks()), nil
	}
	return s.RemoteStatistics(ctx)
}

// RemoteStatistics asks the store for its own counts.
func (s *Service) RemoteStatistics(ctx context.Context) (task.Statistics, error) {
	stats, err := s.store.Aggregate(ctx)
	if err != nil {
		s.fail(ctx, err, "Failed to load statistics")
		return task.Statistics{}, err
	}
	return stats, nil
}

func (s *Service) submit(ctx context.Context, id string, draft task.Draft, success, failure string) (task.Task, error) {
	ctx = logging.WithTaskID(ctx, id)

	updated, err := s.store.Update(ctx, id, draft)
	if err != nil {
		s.fail(ctx, err, failure)
		return task.Task{}, err
	}

	if !s.cache.ApplyUpdate(id, updated) {
		s.log.Debug().Ctx(ctx).Msg("updated task is not cached")
	}
	updated = updated.Normalize()
	updated.ID = id

	s.log.Info().Ctx(ctx).Str("status", string(updated.Status)).Msg("task updated")
	s.notify.Successf(success, updated.Title)
	return updated, nil
}

func (s *Service) fail(ctx context.Context, err error, msg string) {
	s.log.Error().Ctx(ctx).Err(err).Msg(msg)
	s.notify.Errorf("%s: %v", msg, err)
}
