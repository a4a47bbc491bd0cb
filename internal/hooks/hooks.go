// Package hooks wraps the API clients with query caching and cache
// invalidation. Views call hooks; hooks never navigate or store credentials.
package hooks

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"taskdash/internal/query"
	"taskdash/internal/service"
	"taskdash/internal/tokenstore"
)

// Auth wraps the auth endpoints.
type Auth struct {
	svc service.AuthService
}

// NewAuth creates an Auth hook.
func NewAuth(svc service.AuthService) *Auth {
	return &Auth{svc: svc}
}

// Login returns the token for the given credentials. Storing it is the caller's job.
func (a *Auth) Login(ctx context.Context, req service.LoginRequest) (string, error) {
	res, err := a.svc.Login(ctx, req)
	if err != nil {
		return "", err
	}
	return tokenOf(res)
}

// Register creates an account and returns its token.
func (a *Auth) Register(ctx context.Context, req service.RegisterRequest) (string, error) {
	res, err := a.svc.Register(ctx, req)
	if err != nil {
		return "", err
	}
	return tokenOf(res)
}

func tokenOf(res service.AuthResult) (string, error) {
	if res.Token == "" {
		return "", errors.New("server returned no token")
	}
	return res.Token, nil
}

// Tasks wraps the task endpoints.
type Tasks struct {
	svc   service.TaskService
	cache *query.Cache
}

// NewTasks creates a Tasks hook.
func NewTasks(svc service.TaskService, cache *query.Cache) *Tasks {
	return &Tasks{svc: svc, cache: cache}
}

// List returns the task list for params.
func (t *Tasks) List(ctx context.Context, params service.ListTasksParams) query.Result[[]service.Task] {
	return query.Fetch(ctx, t.cache, query.TaskList(params), func(ctx context.Context) ([]service.Task, error) {
		return t.svc.ListTasks(ctx, params)
	})
}

// Get returns one task.
func (t *Tasks) Get(ctx context.Context, id int64) query.Result[service.Task] {
	return query.Fetch(ctx, t.cache, query.TaskDetail(id), func(ctx context.Context) (service.Task, error) {
		return t.svc.GetTask(ctx, id)
	})
}

// Create posts a task and invalidates the task lists.
func (t *Tasks) Create(ctx context.Context, in service.TaskInput) error {
	if strings.TrimSpace(in.Title) == "" {
		return &service.ValidationError{Field: "title", Message: "Title is required"}
	}
	if err := t.svc.CreateTask(ctx, in); err != nil {
		return err
	}
	t.cache.Invalidate(ctx, query.ListsOf(query.ResourceTasks))
	return nil
}

// Update patches a task and invalidates the task lists and its detail.
func (t *Tasks) Update(ctx context.Context, id int64, in service.TaskInput) error {
	if strings.TrimSpace(in.Title) == "" {
		return &service.ValidationError{Field: "title", Message: "Title is required"}
	}
	if err := t.svc.UpdateTask(ctx, id, in); err != nil {
		return err
	}
	t.invalidateTask(ctx, id)
	return nil
}

// Delete removes a task and invalidates the task lists and its detail.
func (t *Tasks) Delete(ctx context.Context, id int64) error {
	if err := t.svc.DeleteTask(ctx, id); err != nil {
		return err
	}
	t.invalidateTask(ctx, id)
	return nil
}

func (t *Tasks) invalidateTask(ctx context.Context, id int64) {
	t.cache.Invalidate(ctx, query.ListsOf(query.ResourceTasks))
	t.cache.Invalidate(ctx, query.DetailOf(query.ResourceTasks, strconv.FormatInt(id, 10)))
}

// Teams wraps the team endpoints.
type Teams struct {
	svc   service.TeamService
	cache *query.Cache
}

// NewTeams creates a Teams hook.
func NewTeams(svc service.TeamService, cache *query.Cache) *Teams {
	return &Teams{svc: svc, cache: cache}
}

// List returns all teams.
func (t *Teams) List(ctx context.Context) query.Result[[]service.Team] {
	return query.Fetch(ctx, t.cache, query.TeamList(), t.svc.ListTeams)
}

// Get returns one team.
func (t *Teams) Get(ctx context.Context, id string) query.Result[service.Team] {
	return query.Fetch(ctx, t.cache, query.TeamDetail(id), func(ctx context.Context) (service.Team, error) {
		return t.svc.GetTeam(ctx, id)
	})
}

// Create posts a team and invalidates the team list.
func (t *Teams) Create(ctx context.Context, team service.Team) error {
	if err := t.svc.CreateTeam(ctx, team); err != nil {
		return err
	}
	t.cache.Invalidate(ctx, query.ListsOf(query.ResourceTeams))
	return nil
}

// Update replaces a team and invalidates every team query.
func (t *Teams) Update(ctx context.Context, id string, team service.Team) error {
	if err := t.svc.UpdateTeam(ctx, id, team); err != nil {
		return err
	}
	t.cache.Invalidate(ctx, query.AllOf(query.ResourceTeams))
	return nil
}

// Delete removes a team and invalidates every team query.
func (t *Teams) Delete(ctx context.Context, id string) error {
	if err := t.svc.DeleteTeam(ctx, id); err != nil {
		return err
	}
	t.cache.Invalidate(ctx, query.AllOf(query.ResourceTeams))
	return nil
}

// App bundles the hooks with the shared token store and cache.
type App struct {
	Tokens *tokenstore.Store
	Cache  *query.Cache
	Auth   *Auth
	Tasks  *Tasks
	Teams  *Teams

	unsubscribe func()
}

// New wires the hooks over svc. Cached data is dropped whenever the
// credential changes so one account never sees another's results.
func New(svc service.Service, tokens *tokenstore.Store, cache *query.Cache) *App {
	app := &App{
		Tokens: tokens,
		Cache:  cache,
		Auth:   NewAuth(svc.Auth()),
		Tasks:  NewTasks(svc.Tasks(), cache),
		Teams:  NewTeams(svc.Teams(), cache),
	}
	app.unsubscribe = tokens.Subscribe(func(string, bool) {
		cache.Reset()
	})
	return app
}

// LoggedIn reports whether a credential is stored.
func (a *App) LoggedIn() bool {
	_, ok := a.Tokens.Get()
	return ok
}

// Close detaches the app from the token store.
func (a *App) Close() {
	a.unsubscribe()
}
