// Package notify implements the single-slot notification channel that reports
// the outcome of the last user intent.
package notify

import (
	"fmt"
	"sync"
	"time"

	"github.com/hay-kot/taskdeck/internal/core/session"
)

// Severity represents the outcome reported by a notification.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// DefaultTTL is how long a notification stays visible unless dismissed.
const DefaultTTL = 6 * time.Second

// Notification is the currently displayed outcome message.
type Notification struct {
	Visible   bool
	Message   string
	Severity  Severity
	CreatedAt time.Time
}

// Subscriber is invoked whenever the visible notification changes.
type Subscriber func(Notification)

// Channel holds at most one visible notification. Emitting supersedes the
// current notification instead of queueing. Visibility counts down through
// Tick, which the UI loop drives.
type Channel struct {
	ttl time.Duration
	now func() time.Time

	mu          sync.Mutex
	current     Notification
	remaining   time.Duration
	subscribers []Subscriber
}

// NewChannel creates a channel whose notifications expire after ttl. A
// non-positive ttl uses DefaultTTL. When sess is non-nil, releasing the session
// dismisses any visible notification.
func NewChannel(sess *session.Session, ttl time.Duration) *Channel {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	c := &Channel{ttl: ttl, now: time.Now}
	if sess != nil {
		sess.OnRelease(c.Dismiss)
	}
	return c
}

// TTL returns the configured visibility duration.
func (c *Channel) TTL() time.Duration {
	return c.ttl
}

// Subscribe registers fn to be called on every change.
func (c *Channel) Subscribe(fn Subscriber) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subscribers = append(c.subscribers, fn)
}

// Emit replaces the visible notification with a new one and restarts the TTL.
func (c *Channel) Emit(message string, severity Severity) Notification {
	n := Notification{
		Visible:   true,
		Message:   message,
		Severity:  severity,
		CreatedAt: c.now(),
	}

	c.mu.Lock()
	c.current = n
	c.remaining = c.ttl
	c.mu.Unlock()

	c.publish(n)
	return n
}

// Successf emits a success notification.
func (c *Channel) Successf(format string, args ...any) Notification {
	return c.Emit(fmt.Sprintf(format, args...), SeveritySuccess)
}

// Errorf emits an error notification.
func (c *Channel) Errorf(format string, args ...any) Notification {
	return c.Emit(fmt.Sprintf(format, args...), SeverityError)
}

// Dismiss hides the visible notification. Dismissing an empty channel is a no-op.
func (c *Channel) Dismiss() {
	c.mu.Lock()
	if !c.current.Visible {
		c.mu.Unlock()
		return
	}
	c.current.Visible = false
	c.remaining = 0
	n := c.current
	c.mu.Unlock()

	c.publish(n)
}

// Current returns the visible notification, if any.
func (c *Channel) Current() (Notification, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current, c.current.Visible
}

// Remaining returns the time left before the visible notification expires.
func (c *Channel) Remaining() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

// Tick decrements the remaining TTL by d and dismisses the notification once it
// runs out. It reports whether a notification is still visible.
func (c *Channel) Tick(d time.Duration) bool {
	c.mu.Lock()
	if !c.current.Visible {
		c.mu.Unlock()
		return false
	}
	c.remaining -= d
	if c.remaining > 0 {
		c.mu.Unlock()
		return true
	}
	c.current.Visible = false
	c.remaining = 0
	n := c.current
	c.mu.Unlock()

	c.publish(n)
	return false
}

func (c *Channel) publish(n Notification) {
	c.mu.Lock()
	subs := make([]Subscriber, len(c.subscribers))
	copy(subs, c.subscribers)
	c.mu.Unlock()

	for _, fn := range subs {
		fn(n)
	}
}
