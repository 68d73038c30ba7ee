package tracker

import (
	"slices"
	"sync"

	"github.com/hay-kot/taskdeck/internal/core/task"
)

// Cache is the in-memory mirror of the remote task collection. It is only
// mutated with results the store has confirmed. Safe for concurrent use.
type Cache struct {
	mu    sync.RWMutex
	tasks []task.Task
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{}
}

// Replace swaps the whole collection for tasks, keeping the store's order.
// When a listing repeats an id, the first occurrence wins.
func (c *Cache) Replace(tasks []task.Task) {
	next := make([]task.Task, 0, len(tasks))
	seen := make(map[string]struct{}, len(tasks))
	for _, t := range tasks {
		if _, dup := seen[t.ID]; dup {
			continue
		}
		seen[t.ID] = struct{}{}
		next = append(next, t.Normalize())
	}

	c.mu.Lock()
	c.tasks = next
	c.mu.Unlock()
}

// ApplyCreate inserts t, or replaces the entry already holding t.ID.
func (c *Cache) ApplyCreate(t task.Task) {
	t = t.Normalize()

	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.index(t.ID); i >= 0 {
		c.tasks[i] = t
		return
	}
	c.tasks = append(c.tasks, t)
}

// ApplyUpdate replaces the entry at id with t. It reports false and leaves the
// cache untouched when id is absent.
func (c *Cache) ApplyUpdate(id string, t task.Task) bool {
	t = t.Normalize()
	t.ID = id

	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.index(id)
	if i < 0 {
		return false
	}
	c.tasks[i] = t
	return true
}

// ApplyDelete removes the entry at id, reporting whether one was present.
func (c *Cache) ApplyDelete(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.index(id)
	if i < 0 {
		return false
	}
	c.tasks = slices.Delete(c.tasks, i, i+1)
	return true
}

// Tasks returns a snapshot of the collection.
func (c *Cache) Tasks() []task.Task {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.tasks)
}

// Get returns the task with id.
func (c *Cache) Get(id string) (task.Task, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if i := c.index(id); i >= 0 {
		return c.tasks[i], true
	}
	return task.Task{}, false
}

// Len returns the number of cached tasks.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.tasks)
}

func (c *Cache) index(id string) int {
	return slices.IndexFunc(c.tasks, func(t task.Task) bool { return t.ID == id })
}
