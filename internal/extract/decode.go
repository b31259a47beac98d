package extract

import (
	"fmt"
	"strings"

	"github.com/taskwise/taskwise/internal/model"
)

// Field names the model is asked to produce.
const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldPriority    = "priority"
	FieldStatus      = "status"
	FieldDueDate     = "dueDate"
)

var createRequired = []string{FieldTitle, FieldDescription, FieldPriority}

// DecodeCreate builds a draft from an extracted object.
// Title, description and priority must be present and non-empty.
// Any status in the reply is ignored; new tasks always start pending.
func DecodeCreate(fields map[string]any) (*model.TaskDraft, error) {
	for _, name := range createRequired {
		if isBlank(fields[name]) {
			return nil, &MissingFieldError{Field: name}
		}
	}

	title, err := stringField(fields, FieldTitle)
	if err != nil {
		return nil, err
	}
	description, err := stringField(fields, FieldDescription)
	if err != nil {
		return nil, err
	}
	priority, err := priorityField(fields)
	if err != nil {
		return nil, err
	}

	draft := &model.TaskDraft{
		Title:       title,
		Description: description,
		Priority:    priority,
	}

	if !isBlank(fields[FieldDueDate]) {
		due, err := dateField(fields)
		if err != nil {
			return nil, err
		}
		draft.DueDate = &due
	}

	return draft, nil
}

// DecodeUpdate builds a patch from an extracted object.
// Explicit nulls mean "leave unchanged" and are dropped first.
// Keys outside the task field set, including any owner reference, are ignored.
func DecodeUpdate(fields map[string]any) (model.TaskPatch, error) {
	fields = DropNulls(fields)

	var patch model.TaskPatch

	if _, ok := fields[FieldTitle]; ok {
		title, err := stringField(fields, FieldTitle)
		if err != nil {
			return model.TaskPatch{}, err
		}
		patch.Title = &title
	}

	if _, ok := fields[FieldDescription]; ok {
		description, err := stringField(fields, FieldDescription)
		if err != nil {
			return model.TaskPatch{}, err
		}
		patch.Description = &description
	}

	if _, ok := fields[FieldPriority]; ok {
		priority, err := priorityField(fields)
		if err != nil {
			return model.TaskPatch{}, err
		}
		patch.Priority = &priority
	}

	if _, ok := fields[FieldStatus]; ok {
		raw, err := stringField(fields, FieldStatus)
		if err != nil {
			return model.TaskPatch{}, err
		}
		status := model.ParseStatus(raw)
		if !status.IsValid() {
			return model.TaskPatch{}, fmt.Errorf("%w: %s", ErrInvalidField, model.ErrInvalidStatus)
		}
		patch.Status = &status
	}

	// An empty date string carries no instruction.
	if !isBlank(fields[FieldDueDate]) {
		due, err := dateField(fields)
		if err != nil {
			return model.TaskPatch{}, err
		}
		patch.DueDate = &due
	}

	return patch, nil
}

// DropNulls returns a copy of fields without explicit null values.
func DropNulls(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		if v != nil {
			out[k] = v
		}
	}
	return out
}

func isBlank(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(val) == ""
	case bool:
		return !val
	default:
		return false
	}
}

func stringField(fields map[string]any, name string) (string, error) {
	s, ok := fields[name].(string)
	if !ok {
		return "", fmt.Errorf("%w: %s must be a string", ErrInvalidField, name)
	}
	return s, nil
}

func priorityField(fields map[string]any) (model.Priority, error) {
	raw, err := stringField(fields, FieldPriority)
	if err != nil {
		return "", err
	}
	priority := model.ParsePriority(raw)
	if !priority.IsValid() {
		return "", fmt.Errorf("%w: %s", ErrInvalidField, model.ErrInvalidPriority)
	}
	return priority, nil
}

func dateField(fields map[string]any) (model.Date, error) {
	raw, err := stringField(fields, FieldDueDate)
	if err != nil {
		return model.Date{}, err
	}
	due, err := model.ParseDate(raw)
	if err != nil {
		return model.Date{}, fmt.Errorf("%w: %s: %v", ErrInvalidField, FieldDueDate, err)
	}
	return due, nil
}
