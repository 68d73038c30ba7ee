package remote

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/hay-kot/taskdeck/internal/core/session"
	"github.com/hay-kot/taskdeck/internal/core/task"
)

// flexID decodes an identifier sent either as a JSON string or number.
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}

	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexID(n.String())
	return nil
}

// taskDTO is the wire shape of a task. Document stores send "_id"; other
// backends send "id".
type taskDTO struct {
	MongoID     flexID `json:"_id,omitempty"`
	ID          flexID `json:"id,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	DueDate     string `json:"dueDate,omitempty"`
}

func (d taskDTO) id() string {
	if d.MongoID != "" {
		return string(d.MongoID)
	}
	return string(d.ID)
}

// toTask converts the wire shape without normalizing the status; the cache
// normalizes on ingest. An unparseable due date is dropped.
func (d taskDTO) toTask() task.Task {
	due, _ := task.ParseDate(d.DueDate)
	return task.Task{
		ID:          d.id(),
		Title:       d.Title,
		Description: d.Description,
		Status:      task.Status(strings.TrimSpace(d.Status)),
		DueDate:     due,
	}
}

type draftDTO struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	DueDate     string `json:"dueDate,omitempty"`
}

func draftDTOFrom(d task.Draft) draftDTO {
	return draftDTO{
		Title:       d.Title,
		Description: d.Description,
		Status:      string(d.Status),
		DueDate:     d.DueDate.String(),
	}
}

// statisticsDTO accepts both snake and camel case for the in-progress bucket.
type statisticsDTO struct {
	Todo            int  `json:"todo"`
	InProgress      *int `json:"in_progress,omitempty"`
	InProgressCamel *int `json:"inProgress,omitempty"`
	Completed       int  `json:"completed"`
}

func (d statisticsDTO) toStatistics() task.Statistics {
	s := task.Statistics{Todo: d.Todo, Completed: d.Completed}
	switch {
	case d.InProgress != nil:
		s.InProgress = *d.InProgress
	case d.InProgressCamel != nil:
		s.InProgress = *d.InProgressCamel
	}
	return s
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string  `json:"token"`
	User  userDTO `json:"user"`
}

type userDTO struct {
	MongoID  flexID `json:"_id,omitempty"`
	ID       flexID `json:"id,omitempty"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

func (u userDTO) toProfile() session.Profile {
	id := string(u.MongoID)
	if id == "" {
		id = string(u.ID)
	}
	return session.Profile{ID: id, Email: u.Email, Username: u.Username, Role: u.Role}
}
