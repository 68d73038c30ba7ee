// Package task defines the task domain model, its status lifecycle, draft
// validation, and statistics.
package task

import (
	"fmt"
	"strings"
	"time"
)

// Task is a unit of work mirrored from the remote task store.
type Task struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Status      Status `json:"status"`
	DueDate     Date   `json:"due_date,omitzero"`
}

// Normalize collapses the status into the closed enumeration. It is applied
// once when a task enters the cache.
func (t Task) Normalize() Task {
	t.Status = NormalizeStatus(string(t.Status))
	return t
}

// HasDueDate reports whether the task carries a due date.
func (t Task) HasDueDate() bool {
	return !t.DueDate.IsZero()
}

// Overdue reports whether the task is past its due date and not completed.
func (t Task) Overdue(now time.Time) bool {
	if !t.HasDueDate() || t.Status == StatusCompleted {
		return false
	}
	today := DateOf(now)
	return t.DueDate.Before(today)
}

// Draft is a validated set of fields ready to be submitted for create or update.
type Draft struct {
	Title       string
	Description string
	Status      Status
	DueDate     Date
}

// DraftFromTask returns a full replacement draft for t.
func DraftFromTask(t Task) Draft {
	return Draft{
		Title:       t.Title,
		Description: t.Description,
		Status:      NormalizeStatus(string(t.Status)),
		DueDate:     t.DueDate,
	}
}

// Date is a calendar date without a time component. The zero value means no date.
type Date struct {
	t time.Time
}

// DateLayout is the canonical serialized form of a Date.
const DateLayout = "2006-01-02"

// NewDate returns the date for the given year, month and day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar date of t in its own location.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate parses a calendar date. It accepts the canonical YYYY-MM-DD form and
// RFC 3339 timestamps, which are reduced to their UTC calendar day. An empty
// string yields the zero Date.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, nil
	}

	if t, err := time.Parse(DateLayout, s); err == nil {
		return DateOf(t), nil
	}

	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return Date{}, &DateError{Value: s}
	}
	return DateOf(t.UTC()), nil
}

// IsZero reports whether d is unset.
func (d Date) IsZero() bool {
	return d.t.IsZero()
}

// String returns the canonical YYYY-MM-DD form, or "" for the zero Date.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(DateLayout)
}

// Before reports whether d is strictly earlier than other.
func (d Date) Before(other Date) bool {
	return d.t.Before(other.t)
}

// Time returns midnight UTC of the date.
func (d Date) Time() time.Time {
	return d.t
}

// MarshalText implements encoding.TextMarshaler.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DateError is returned when a string is not a recognizable calendar date.
type DateError struct {
	Value string
}

func (e *DateError) Error() string {
	return fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", e.Value)
}
