package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidStatus   = errors.New("invalid todo status")
	ErrInvalidPriority = errors.New("invalid todo priority")
)

// Status is the progress state of a todo. It travels as 0, 1 or 2.
type Status int

const (
	StatusTodo Status = iota
	StatusInProgress
	StatusCompleted
)

var statusNames = []string{"TODO", "IN_PROGRESS", "COMPLETED"}

// Valid reports whether s is one of the known states.
func (s Status) Valid() bool {
	return s >= StatusTodo && s <= StatusCompleted
}

// Next returns the following state in the TODO -> IN_PROGRESS -> COMPLETED -> TODO cycle.
func (s Status) Next() Status {
	switch s {
	case StatusTodo:
		return StatusInProgress
	case StatusInProgress:
		return StatusCompleted
	default:
		return StatusTodo
	}
}

func (s Status) String() string {
	if !s.Valid() {
		return fmt.Sprintf("Status(%d)", int(s))
	}
	return statusNames[s]
}

// UnmarshalJSON accepts either the numeric value or the state name.
func (s *Status) UnmarshalJSON(data []byte) error {
	v, err := decodeEnum(data, statusNames)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidStatus, err)
	}
	if v < 0 {
		return nil
	}
	*s = Status(v)
	return nil
}

// Priority is the urgency of a todo. It travels as 0, 1 or 2.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityMedium
	PriorityHigh
)

var priorityNames = []string{"LOW", "MEDIUM", "HIGH"}

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	return p >= PriorityLow && p <= PriorityHigh
}

func (p Priority) String() string {
	if !p.Valid() {
		return fmt.Sprintf("Priority(%d)", int(p))
	}
	return priorityNames[p]
}

// UnmarshalJSON accepts either the numeric value or the priority name.
func (p *Priority) UnmarshalJSON(data []byte) error {
	v, err := decodeEnum(data, priorityNames)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPriority, err)
	}
	if v < 0 {
		return nil
	}
	*p = Priority(v)
	return nil
}

// decodeEnum returns the index of a JSON number or name in names, or -1 for null.
func decodeEnum(data []byte, names []string) (int, error) {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return -1, nil
	}
	if len(data) > 0 && data[0] == '"' {
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return 0, err
		}
		for i, n := range names {
			if strings.EqualFold(n, name) {
				return i, nil
			}
		}
		return 0, fmt.Errorf("unknown name %q", name)
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return 0, err
	}
	if n < 0 || n >= len(names) {
		return 0, fmt.Errorf("value %d out of range", n)
	}
	return n, nil
}

// Todo is a single item in a todo list.
type Todo struct {
	ID       string   `json:"id"`
	Text     string   `json:"text"`
	Status   Status   `json:"status"`
	Priority Priority `json:"priority"`
}

// TodoPatch is a shallow update. A nil field is left alone; a non-nil field
// overwrites, including fields that were sent as an explicit null.
type TodoPatch struct {
	Text     *string
	Status   *Status
	Priority *Priority
}

// Apply returns t with the patch merged in. The id is never changed.
func (p TodoPatch) Apply(t Todo) Todo {
	if p.Text != nil {
		t.Text = *p.Text
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	return t
}

// Empty reports whether the patch changes nothing.
func (p TodoPatch) Empty() bool {
	return p.Text == nil && p.Status == nil && p.Priority == nil
}

// ParseTodoPatch decodes an update body. "title" is an alias for "text" and
// "completed" maps onto status; the canonical keys win when both are present.
// Unknown keys, including "id", are ignored.
func ParseTodoPatch(raw []byte) (TodoPatch, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return TodoPatch{}, err
	}

	var patch TodoPatch

	if v, ok := fields["title"]; ok {
		var title string
		if !isNull(v) {
			if err := json.Unmarshal(v, &title); err != nil {
				return TodoPatch{}, fmt.Errorf("title: %w", err)
			}
		}
		if title != "" {
			patch.Text = &title
		}
	}
	if v, ok := fields["text"]; ok {
		var text string
		if !isNull(v) {
			if err := json.Unmarshal(v, &text); err != nil {
				return TodoPatch{}, fmt.Errorf("text: %w", err)
			}
		}
		patch.Text = &text
	}

	if v, ok := fields["completed"]; ok {
		var completed bool
		if !isNull(v) {
			if err := json.Unmarshal(v, &completed); err != nil {
				return TodoPatch{}, fmt.Errorf("completed: %w", err)
			}
		}
		status := StatusTodo
		if completed {
			status = StatusCompleted
		}
		patch.Status = &status
	}
	if v, ok := fields["status"]; ok {
		var status Status
		if err := json.Unmarshal(v, &status); err != nil {
			return TodoPatch{}, err
		}
		patch.Status = &status
	}

	if v, ok := fields["priority"]; ok {
		var priority Priority
		if err := json.Unmarshal(v, &priority); err != nil {
			return TodoPatch{}, err
		}
		patch.Priority = &priority
	}

	return patch, nil
}

func isNull(v json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}
