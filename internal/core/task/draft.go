package task

import (
	"errors"
	"strings"

	"github.com/hay-kot/criterio"
)

// Fields holds raw, unvalidated user input for a task form.
type Fields struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status,omitempty"`
	DueDate     string `json:"due_date,omitempty"`
}

// FieldsFromTask populates form fields from an existing task. The due date is
// rendered in canonical form and the status normalized.
func FieldsFromTask(t Task) Fields {
	return Fields{
		Title:       t.Title,
		Description: t.Description,
		Status:      string(NormalizeStatus(string(t.Status))),
		DueDate:     t.DueDate.String(),
	}
}

// Validator turns Fields into a Draft.
type Validator struct {
	// DescriptionRequired rejects drafts with an empty description.
	DescriptionRequired bool
}

// Validate returns a draft or a criterio.FieldErrors describing every invalid
// field, never both.
func (v Validator) Validate(f Fields) (Draft, error) {
	var (
		draft Draft
		errs  criterio.FieldErrorsBuilder
	)

	draft.Title = strings.TrimSpace(f.Title)
	if err := Title(draft.Title); err != nil {
		errs = errs.Append("title", err)
	}

	draft.Description = strings.TrimSpace(f.Description)
	if v.DescriptionRequired && draft.Description == "" {
		errs = errs.Append("description", errors.New("description is required"))
	}

	if strings.TrimSpace(f.Status) == "" {
		draft.Status = StatusTodo
	} else if st, ok := ParseStatus(f.Status); ok {
		draft.Status = st
	} else {
		errs = errs.Append("status", errors.New("must be one of todo, in_progress, completed"))
	}

	due, err := ParseDate(f.DueDate)
	if err != nil {
		errs = errs.Append("due_date", err)
	}
	draft.DueDate = due

	if err := errs.ToError(); err != nil {
		return Draft{}, err
	}
	return draft, nil
}

// Title validates a task title is non-empty after trimming whitespace.
func Title(title string) error {
	if strings.TrimSpace(title) == "" {
		return errors.New("title is required")
	}
	return nil
}

// DueDate validates an optional due date string.
func DueDate(s string) error {
	_, err := ParseDate(s)
	return err
}

// FieldMessages flattens a validation error into field -> message pairs. Errors
// that are not field errors are returned under the empty key.
func FieldMessages(err error) map[string]string {
	if err == nil {
		return nil
	}

	var fieldErrs criterio.FieldErrors
	if !errors.As(err, &fieldErrs) {
		return map[string]string{"": err.Error()}
	}

	out := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		out[fe.Field] = fe.Err.Error()
	}
	return out
}

// IsValidationError reports whether err carries field-level validation errors.
func IsValidationError(err error) bool {
	var fieldErrs criterio.FieldErrors
	return errors.As(err, &fieldErrs)
}
