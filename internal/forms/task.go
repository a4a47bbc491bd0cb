package forms

import (
	"fmt"
	"strings"
	"time"

	"taskdash/internal/service"
)

// DeadlineLayout is the datetime-local layout used to show a deadline in the form.
const DeadlineLayout = "2006-01-02T15:04"

// Accepted deadline layouts besides RFC 3339.
var deadlineLayouts = []string{
	DeadlineLayout,
	"2006-01-02 15:04",
	"2006-01-02",
}

// MsgTitleRequired is shown when the title is blank.
const MsgTitleRequired = "Title is required"

// Submission is the validated result of the task modal.
type Submission struct {
	// ID is the task being edited; zero when creating.
	ID    int64
	Input service.TaskInput
}

// Editing reports whether the submission updates an existing task.
func (s Submission) Editing() bool { return s.ID != 0 }

// TaskModal holds the create/edit task form. Field values are kept as the
// text the user typed; Submit parses them.
type TaskModal struct {
	Title    string
	Content  string
	Deadline string
	Priority string

	// Location interprets deadlines typed without a zone. Defaults to time.Local.
	Location *time.Location

	open   bool
	editID int64
	errs   Errors

	// set on the edit target, so blanking them clears the stored value
	hadDeadline bool
	hadPriority bool
}

// Open shows the modal. With a task it is pre-populated for editing;
// with nil every field is reset for a new task. Nothing from a previous
// target survives.
func (m *TaskModal) Open(task *service.Task) {
	m.Title, m.Content, m.Deadline, m.Priority = "", "", "", ""
	m.editID = 0
	m.errs = nil
	m.hadDeadline, m.hadPriority = false, false
	m.open = true

	if task == nil {
		return
	}
	m.editID = task.ID
	m.Title = task.Title
	if task.Content != nil {
		m.Content = *task.Content
	}
	if task.Deadline != nil {
		m.Deadline = task.Deadline.In(m.location()).Format(DeadlineLayout)
		m.hadDeadline = true
	}
	if task.Priority != nil {
		m.Priority = string(*task.Priority)
		m.hadPriority = true
	}
}

// Close hides the modal.
func (m *TaskModal) Close() {
	m.open = false
}

// IsOpen reports whether the modal is shown.
func (m *TaskModal) IsOpen() bool { return m.open }

// EditingID returns the id of the task being edited.
func (m *TaskModal) EditingID() (int64, bool) {
	return m.editID, m.editID != 0
}

// Heading is the modal title.
func (m *TaskModal) Heading() string {
	if m.editID != 0 {
		return "Edit Task"
	}
	return "Add New Task"
}

// SubmitLabel is the text of the submit button.
func (m *TaskModal) SubmitLabel() string {
	if m.editID != 0 {
		return "Update Task"
	}
	return "Create Task"
}

// FieldErrors returns the errors of the last Submit.
func (m *TaskModal) FieldErrors() Errors { return m.errs }

func (m *TaskModal) location() *time.Location {
	if m.Location != nil {
		return m.Location
	}
	return time.Local
}

// Validate parses the fields into a payload.
func (m *TaskModal) Validate() (Submission, Errors) {
	errs := Errors{}
	sub := Submission{ID: m.editID}

	sub.Input.Title = strings.TrimSpace(m.Title)
	if sub.Input.Title == "" {
		errs["title"] = MsgTitleRequired
	}

	content := m.Content
	sub.Input.Content = &content

	if strings.TrimSpace(m.Deadline) == "" {
		sub.Input.ClearDeadline = m.hadDeadline
	} else {
		d, err := ParseDeadline(m.Deadline, m.location())
		if err != nil {
			errs["deadline"] = err.Error()
		} else {
			sub.Input.Deadline = &d
		}
	}

	if strings.TrimSpace(m.Priority) == "" {
		sub.Input.ClearPriority = m.hadPriority
	} else {
		p, err := service.ParsePriority(m.Priority)
		if err != nil {
			errs["priority"] = "Priority must be Low, Medium or High"
		} else {
			sub.Input.Priority = &p
		}
	}

	return sub, errs
}

// Submit validates the fields and hands the payload to fn. The modal closes
// when fn succeeds; on a validation error fn is not called and the modal
// stays open.
func (m *TaskModal) Submit(fn func(Submission) error) error {
	sub, errs := m.Validate()
	m.errs = errs
	if len(errs) > 0 {
		return errs
	}
	if err := fn(sub); err != nil {
		return err
	}
	m.Close()
	return nil
}

// ParseDeadline accepts RFC 3339 or one of the local layouts.
func ParseDeadline(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	for _, layout := range deadlineLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid deadline: %s", s)
}
