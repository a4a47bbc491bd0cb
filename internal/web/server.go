// Package web serves the local task dashboard: the auth pages and the
// task table, rendered server-side over the same hooks the CLI uses.
package web

import (
	"bytes"
	"embed"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"taskdash/internal/hooks"
	"taskdash/internal/table"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page layouts.
const (
	layoutAuth      = "auth"
	layoutDashboard = "dashboard"
	layoutPlain     = "plain"
)

var pageLayouts = map[string]string{
	"home.html":      layoutPlain,
	"login.html":     layoutAuth,
	"signup.html":    layoutAuth,
	"dashboard.html": layoutDashboard,
	"tasks.html":     layoutDashboard,
}

type navItem struct {
	Title  string
	URL    string
	Active bool
}

var navigation = []navItem{
	{Title: "Dashboard", URL: "/dashboard"},
	{Title: "Tasks", URL: "/dashboard/tasks"},
}

// Server holds the dashboard state shared by all requests.
type Server struct {
	app           *hooks.App
	logger        *slog.Logger
	now           func() time.Time
	loc           *time.Location
	confirmDelete bool
	pages         map[string]*template.Template
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger for request logs.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock sets the clock used for overdue marks.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// WithLocation sets the zone deadlines are shown and entered in.
func WithLocation(loc *time.Location) Option {
	return func(s *Server) { s.loc = loc }
}

// WithConfirmDelete asks for confirmation before deleting a task.
func WithConfirmDelete(confirm bool) Option {
	return func(s *Server) { s.confirmDelete = confirm }
}

// NewServer parses the page templates and returns a Server over app.
func NewServer(app *hooks.App, opts ...Option) *Server {
	s := &Server{
		app:    app,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    time.Now,
		loc:    time.Local,
		pages:  make(map[string]*template.Template),
	}
	for _, opt := range opts {
		opt(s)
	}

	for page := range pageLayouts {
		s.pages[page] = template.Must(template.New(page).ParseFS(templateFS, "templates/layout.html", "templates/"+page))
	}
	return s
}

// NewRouter returns the dashboard routes.
func NewRouter(app *hooks.App, opts ...Option) *mux.Router {
	return NewServer(app, opts...).Router()
}

// Router wires the routes. Dashboard routes require a stored credential.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.logRequests)

	r.HandleFunc("/", s.handleHome).Methods(http.MethodGet)

	r.HandleFunc("/auth/login", s.handleLoginPage).Methods(http.MethodGet)
	r.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/auth/signup", s.handleSignupPage).Methods(http.MethodGet)
	r.HandleFunc("/auth/signup", s.handleSignup).Methods(http.MethodPost)
	r.HandleFunc("/auth/logout", s.handleLogout).Methods(http.MethodPost)

	r.Handle("/dashboard", s.requireAuth(s.handleDashboard)).Methods(http.MethodGet)
	r.Handle("/dashboard/tasks", s.requireAuth(s.handleTasks)).Methods(http.MethodGet)
	r.Handle("/dashboard/tasks", s.requireAuth(s.handleCreateTask)).Methods(http.MethodPost)
	r.Handle("/dashboard/tasks/{id:[0-9]+}", s.requireAuth(s.handleUpdateTask)).Methods(http.MethodPost)
	r.Handle("/dashboard/tasks/{id:[0-9]+}/delete", s.requireAuth(s.handleDeleteTask)).Methods(http.MethodPost)

	return r
}

func (s *Server) requireAuth(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.app.LoggedIn() {
			http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
			return
		}
		next(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("dashboard request",
			"id", uuid.NewString(),
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start))
	})
}

// pageData is the template input shared by every page.
type pageData struct {
	Title    string
	Nav      []navItem
	LoggedIn bool
	Alerts   []string

	// auth pages
	Email  string
	Errors map[string]string

	Summary *summary
	Tasks   *tasksPage
}

func (s *Server) newPage(r *http.Request, title string) *pageData {
	nav := make([]navItem, len(navigation))
	for i, item := range navigation {
		item.Active = r.URL.Path == item.URL
		nav[i] = item
	}
	return &pageData{Title: title, Nav: nav, LoggedIn: s.app.LoggedIn()}
}

// render executes page inside its layout and writes it with status.
func (s *Server) render(w http.ResponseWriter, status int, page string, data *pageData) {
	var buf bytes.Buffer
	if err := s.pages[page].ExecuteTemplate(&buf, pageLayouts[page], data); err != nil {
		s.logger.Error("render failed", "page", page, "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, "home.html", s.newPage(r, "taskdash"))
}

// newView returns a task view configured for this server.
func (s *Server) newView() *table.View {
	v := table.NewView(s.app.Tasks, listParams)
	v.Location = s.loc
	v.Modal.Location = s.loc
	if s.confirmDelete {
		v.Policy = table.ConfirmDelete
	}
	return v
}
