// Package service defines the backend-agnostic types and interfaces for task operations.
package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Priority is the task priority level.
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// Priorities lists the accepted priorities in ascending order.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// ParsePriority matches s case-insensitively against the known priorities.
func ParsePriority(s string) (Priority, error) {
	s = strings.TrimSpace(s)
	for _, p := range Priorities {
		if strings.EqualFold(s, string(p)) {
			return p, nil
		}
	}
	return "", fmt.Errorf("invalid priority: %s", s)
}

// Rank orders priorities Low < Medium < High. Unknown values rank 0.
func (p Priority) Rank() int {
	for i, known := range Priorities {
		if p == known {
			return i + 1
		}
	}
	return 0
}

// Task is a task as returned by the API.
type Task struct {
	ID         int64      `json:"id"`
	Title      string     `json:"title"`
	Content    *string    `json:"content,omitempty"`
	Deadline   *time.Time `json:"deadline,omitempty"`
	Priority   *Priority  `json:"priority,omitempty"`
	SubtaskIDs []int64    `json:"subtaskIds,omitempty"`
}

// Overdue reports whether the task deadline is strictly before now.
// Tasks without a deadline are never overdue.
func (t Task) Overdue(now time.Time) bool {
	return t.Deadline != nil && t.Deadline.Before(now)
}

// TaskInput is the create/update payload for a task. Absent optional fields
// are left out, so an update keeps their stored values; ClearDeadline and
// ClearPriority send an explicit null instead.
type TaskInput struct {
	Title    string     `json:"title"`
	Content  *string    `json:"content,omitempty"`
	Deadline *time.Time `json:"deadline,omitempty"`
	Priority *Priority  `json:"priority,omitempty"`

	ClearDeadline bool `json:"-"`
	ClearPriority bool `json:"-"`
}

var jsonNull = json.RawMessage("null")

// MarshalJSON writes null for cleared fields.
func (in TaskInput) MarshalJSON() ([]byte, error) {
	type plain TaskInput
	out := struct {
		plain
		Deadline json.RawMessage `json:"deadline,omitempty"`
		Priority json.RawMessage `json:"priority,omitempty"`
	}{plain: plain(in)}

	var err error
	switch {
	case in.Deadline != nil:
		if out.Deadline, err = json.Marshal(in.Deadline); err != nil {
			return nil, err
		}
	case in.ClearDeadline:
		out.Deadline = jsonNull
	}
	switch {
	case in.Priority != nil:
		if out.Priority, err = json.Marshal(in.Priority); err != nil {
			return nil, err
		}
	case in.ClearPriority:
		out.Priority = jsonNull
	}
	return json.Marshal(out)
}

// ListTasksParams are the query parameters for listing tasks.
// Zero values are not sent.
type ListTasksParams struct {
	Page   int
	Size   int
	Search string
}

// LoginRequest is the login payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the signup payload.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResult is the response of login and register.
type AuthResult struct {
	Token string `json:"token"`
}

// Team is a team record. Only the id is interpreted; every other field is kept
// verbatim in Fields so that updates round-trip what the server sent.
type Team struct {
	ID     string
	Fields map[string]json.RawMessage
}

// Name returns the "name" field if it is a JSON string.
func (t Team) Name() string {
	raw, ok := t.Fields["name"]
	if !ok {
		return ""
	}
	var name string
	if err := json.Unmarshal(raw, &name); err != nil {
		return ""
	}
	return name
}

// UnmarshalJSON accepts a numeric or string id.
func (t *Team) UnmarshalJSON(data []byte) error {
	fields := make(map[string]json.RawMessage)
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	t.ID = ""
	if raw, ok := fields["id"]; ok {
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		var v any
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("invalid team id: %w", err)
		}
		switch id := v.(type) {
		case string:
			t.ID = id
		case json.Number:
			t.ID = id.String()
		case nil:
		default:
			return fmt.Errorf("invalid team id: %s", raw)
		}
		delete(fields, "id")
	}
	t.Fields = fields
	return nil
}

// MarshalJSON writes the opaque fields plus the id when set.
func (t Team) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(t.Fields)+1)
	for k, v := range t.Fields {
		out[k] = v
	}
	if t.ID != "" {
		id, err := json.Marshal(t.ID)
		if err != nil {
			return nil, err
		}
		out["id"] = id
	}
	return json.Marshal(out)
}
