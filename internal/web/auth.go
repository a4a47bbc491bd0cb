package web

import (
	"context"
	"errors"
	"net/http"

	"taskdash/internal/forms"
	"taskdash/internal/service"
)

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, "login.html", s.newPage(r, "Login"))
}

func (s *Server) handleSignupPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, "signup.html", s.newPage(r, "Sign up"))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	form := &forms.LoginForm{Email: r.PostFormValue("email"), Password: r.PostFormValue("password")}
	err := form.Submit(r.Context(), func(ctx context.Context, req service.LoginRequest) error {
		token, err := s.app.Auth.Login(ctx, req)
		if err != nil {
			return err
		}
		s.app.Tokens.Set(token)
		return nil
	})
	s.finishAuth(w, r, "login.html", "Login", form.Email, form.FieldErrors(), form.Alerts(), err)
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	form := &forms.SignupForm{Email: r.PostFormValue("email"), Password: r.PostFormValue("password")}
	err := form.Submit(r.Context(), func(ctx context.Context, req service.RegisterRequest) error {
		token, err := s.app.Auth.Register(ctx, req)
		if err != nil {
			return err
		}
		s.app.Tokens.Set(token)
		return nil
	})
	s.finishAuth(w, r, "signup.html", "Sign up", form.Email, form.FieldErrors(), form.Alerts(), err)
}

// finishAuth redirects to the task table on success and re-renders the form
// with its field errors or alert banners otherwise.
func (s *Server) finishAuth(w http.ResponseWriter, r *http.Request, page, title, email string, fieldErrs forms.Errors, alerts []string, err error) {
	if err == nil {
		http.Redirect(w, r, "/dashboard/tasks", http.StatusSeeOther)
		return
	}

	data := s.newPage(r, title)
	data.Email = email
	status := http.StatusOK
	var ferrs forms.Errors
	if errors.As(err, &ferrs) {
		data.Errors = fieldErrs
		status = http.StatusUnprocessableEntity
	} else {
		data.Alerts = alerts
		if errors.Is(err, service.ErrUnauthorized) {
			status = http.StatusUnauthorized
		}
	}
	s.render(w, status, page, data)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.app.Tokens.Clear()
	http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
}
