// Package forms holds the input state and validation of the login, signup
// and task forms. Forms never call the API; they hand a validated payload to
// a submit function supplied by the caller.
package forms

import (
	"errors"
	"sort"
	"strings"

	"taskdash/internal/service"
)

// ErrPending is returned when a form is submitted while a submission is in flight.
var ErrPending = errors.New("submission already in progress")

// Errors maps a field name to its validation message. A non-empty Errors is
// returned from Submit and blocks the submission.
type Errors map[string]string

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+e[f])
	}
	return strings.Join(parts, "; ")
}

// Field returns the message for one field, or "".
func (e Errors) Field(name string) string {
	return e[name]
}

// AlertMessage turns a submit failure into the text shown in an alert banner.
func AlertMessage(err error) string {
	var rerr *service.RequestError
	if errors.As(err, &rerr) && rerr.Message != "" {
		return rerr.Message
	}
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		return verr.Message
	}
	return err.Error()
}
