package notify

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/taskdeck/internal/core/session"
)

func newTestChannel(t *testing.T) *Channel {
	t.Helper()
	c := NewChannel(nil, 0)
	fixed := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return fixed }
	return c
}

func TestChannel_Emit(t *testing.T) {
	c := newTestChannel(t)

	c.Successf("Task %q created", "Buy milk")

	n, ok := c.Current()
	require.True(t, ok)
	assert.Equal(t, `Task "Buy milk" created`, n.Message)
	assert.Equal(t, SeveritySuccess, n.Severity)
	assert.True(t, n.Visible)
	assert.Equal(t, DefaultTTL, c.Remaining())
}

func TestChannel_Emit_supersedes(t *testing.T) {
	c := newTestChannel(t)

	c.Errorf("first")
	c.Tick(2 * time.Second)
	c.Successf("second")

	n, ok := c.Current()
	require.True(t, ok)
	assert.Equal(t, "second", n.Message)
	assert.Equal(t, SeveritySuccess, n.Severity)
	assert.Equal(t, DefaultTTL, c.Remaining(), "ttl restarts for the new notification")
}

func TestChannel_Dismiss(t *testing.T) {
	c := newTestChannel(t)
	c.Errorf("boom")

	c.Dismiss()

	_, ok := c.Current()
	assert.False(t, ok)
	assert.Zero(t, c.Remaining())

	c.Dismiss() // no-op on empty channel
}

func TestChannel_Tick_expires_at_TTL(t *testing.T) {
	c := newTestChannel(t)
	c.Errorf("expires")

	ticks := 0
	for c.Tick(100 * time.Millisecond) {
		ticks++
		require.Less(t, ticks, 1000, "tick loop did not terminate")
	}

	// The final tick that expires the notification is not counted by the loop.
	assert.Equal(t, int(DefaultTTL/(100*time.Millisecond))-1, ticks)
	_, ok := c.Current()
	assert.False(t, ok)
}

func TestChannel_Tick_publishes_expiry(t *testing.T) {
	c := newTestChannel(t)

	var got []Notification
	c.Subscribe(func(n Notification) { got = append(got, n) })

	c.Errorf("expires")
	assert.False(t, c.Tick(DefaultTTL))

	require.Len(t, got, 2)
	assert.False(t, got[1].Visible)
	assert.Equal(t, "expires", got[1].Message)
}

func TestChannel_Emit_racing_expiry_stays_visible(t *testing.T) {
	for i := 0; i < 500; i++ {
		c := newTestChannel(t)
		c.Errorf("first")
		require.True(t, c.Tick(DefaultTTL-time.Millisecond))

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			c.Tick(time.Millisecond)
		}()
		go func() {
			defer wg.Done()
			c.Successf("second")
		}()
		wg.Wait()

		// Either order leaves the newer notification on screen.
		n, ok := c.Current()
		require.True(t, ok, "iteration %d", i)
		assert.Equal(t, "second", n.Message)
	}
}

func TestChannel_Tick_without_notification(t *testing.T) {
	c := newTestChannel(t)
	assert.False(t, c.Tick(time.Second))
}

func TestChannel_CustomTTL(t *testing.T) {
	c := NewChannel(nil, time.Second)
	assert.Equal(t, time.Second, c.TTL())

	c.Successf("short")
	assert.True(t, c.Tick(500*time.Millisecond))
	assert.False(t, c.Tick(500*time.Millisecond))
}

func TestChannel_Subscribe(t *testing.T) {
	c := newTestChannel(t)

	var got []Notification
	c.Subscribe(func(n Notification) { got = append(got, n) })

	c.Successf("one")
	c.Errorf("two")
	c.Dismiss()

	require.Len(t, got, 3)
	assert.Equal(t, "one", got[0].Message)
	assert.Equal(t, "two", got[1].Message)
	assert.False(t, got[2].Visible)
	assert.Equal(t, "two", got[2].Message)
}

func TestChannel_session_release_dismisses(t *testing.T) {
	ctx := context.Background()
	sess := session.New(nil)
	require.NoError(t, sess.Acquire(ctx, session.Credentials{Token: "tok"}))

	c := NewChannel(sess, 0)
	c.Successf("logged in")

	require.NoError(t, sess.Release(ctx))

	_, ok := c.Current()
	assert.False(t, ok)
}
