package forms

import (
	"context"
	"net/mail"
	"strings"
	"sync"

	"taskdash/internal/service"
)

// Validation messages.
const (
	MsgInvalidEmail     = "Invalid email address"
	MsgPasswordRequired = "Password is required"
	MsgWeakPassword     = "Password should contain lowercase, uppercase and number"
)

// ValidEmail reports whether s is a bare address with a dotted domain.
func ValidEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s || addr.Name != "" {
		return false
	}
	at := strings.LastIndexByte(s, '@')
	domain := s[at+1:]
	dot := strings.LastIndexByte(domain, '.')
	return dot > 0 && dot < len(domain)-1
}

// StrongPassword reports whether s has a lowercase letter, an uppercase letter and a digit.
func StrongPassword(s string) bool {
	var lower, upper, digit bool
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		}
	}
	return lower && upper && digit
}

// submitState tracks the pending flag and server-side alerts shared by the auth forms.
type submitState struct {
	mu      sync.Mutex
	pending bool
	errs    Errors
	alerts  []string
}

// Pending reports whether a submission is in flight. Views disable the submit
// control and show a spinner while it is true.
func (s *submitState) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// FieldErrors returns the errors of the last validation.
func (s *submitState) FieldErrors() Errors {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errs
}

// Alerts returns the banners to render above the fields.
func (s *submitState) Alerts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.alerts...)
}

// run validates, then calls submit with the pending flag set.
func (s *submitState) run(errs Errors, submit func() error) error {
	s.mu.Lock()
	if s.pending {
		s.mu.Unlock()
		return ErrPending
	}
	s.errs = errs
	if len(errs) > 0 {
		s.mu.Unlock()
		return errs
	}
	s.pending = true
	s.mu.Unlock()

	err := submit()

	s.mu.Lock()
	s.pending = false
	if err != nil {
		s.alerts = []string{AlertMessage(err)}
	} else {
		s.alerts = nil
	}
	s.mu.Unlock()
	return err
}

// LoginForm collects login credentials.
type LoginForm struct {
	Email    string
	Password string

	submitState
}

// Validate checks the fields without side effects.
func (f *LoginForm) Validate() Errors {
	errs := Errors{}
	if !ValidEmail(strings.TrimSpace(f.Email)) {
		errs["email"] = MsgInvalidEmail
	}
	if f.Password == "" {
		errs["password"] = MsgPasswordRequired
	}
	return errs
}

// Submit validates and, when valid, calls fn once with the payload.
func (f *LoginForm) Submit(ctx context.Context, fn func(context.Context, service.LoginRequest) error) error {
	req := service.LoginRequest{Email: strings.TrimSpace(f.Email), Password: f.Password}
	return f.run(f.Validate(), func() error { return fn(ctx, req) })
}

// SignupForm collects new account credentials.
type SignupForm struct {
	Email    string
	Password string

	submitState
}

// Validate checks the fields without side effects. The password rule is a
// convenience; the server may enforce more.
func (f *SignupForm) Validate() Errors {
	errs := Errors{}
	if !ValidEmail(strings.TrimSpace(f.Email)) {
		errs["email"] = MsgInvalidEmail
	}
	if !StrongPassword(f.Password) {
		errs["password"] = MsgWeakPassword
	}
	return errs
}

// Submit validates and, when valid, calls fn once with the payload.
func (f *SignupForm) Submit(ctx context.Context, fn func(context.Context, service.RegisterRequest) error) error {
	req := service.RegisterRequest{Email: strings.TrimSpace(f.Email), Password: f.Password}
	return f.run(f.Validate(), func() error { return fn(ctx, req) })
}
