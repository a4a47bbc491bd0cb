package httpapi

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"taskdash/internal/service"
)

// AuthClient calls the auth endpoints.
type AuthClient struct{ f *Factory }

// Login posts credentials to auth/login.
func (c *AuthClient) Login(ctx context.Context, req service.LoginRequest) (service.AuthResult, error) {
	var res service.AuthResult
	err := c.f.do(ctx, call{method: http.MethodPost, path: pathLogin, body: req, out: &res})
	if err != nil {
		return service.AuthResult{}, err
	}
	return res, nil
}

// Register posts a new account to auth/register.
func (c *AuthClient) Register(ctx context.Context, req service.RegisterRequest) (service.AuthResult, error) {
	var res service.AuthResult
	err := c.f.do(ctx, call{method: http.MethodPost, path: pathRegister, body: req, out: &res})
	if err != nil {
		return service.AuthResult{}, err
	}
	return res, nil
}

// TaskClient calls the task endpoints.
type TaskClient struct{ f *Factory }

// ListTasks returns tasks in API order.
func (c *TaskClient) ListTasks(ctx context.Context, params service.ListTasksParams) ([]service.Task, error) {
	q := url.Values{}
	if params.Page > 0 {
		q.Set("page", strconv.Itoa(params.Page))
	}
	if params.Size > 0 {
		q.Set("size", strconv.Itoa(params.Size))
	}
	if params.Search != "" {
		q.Set("searchString", params.Search)
	}

	var tasks []service.Task
	if err := c.f.do(ctx, call{method: http.MethodGet, path: pathTasks, query: q, out: &tasks}); err != nil {
		return nil, err
	}
	return tasks, nil
}

// GetTask returns a task by id.
func (c *TaskClient) GetTask(ctx context.Context, id int64) (service.Task, error) {
	var task service.Task
	if err := c.f.do(ctx, call{method: http.MethodGet, path: pathTask, params: idParam(id), out: &task}); err != nil {
		return service.Task{}, err
	}
	return task, nil
}

// CreateTask posts a new task.
func (c *TaskClient) CreateTask(ctx context.Context, in service.TaskInput) error {
	return c.f.do(ctx, call{method: http.MethodPost, path: pathTasks, body: in})
}

// UpdateTask patches a task.
func (c *TaskClient) UpdateTask(ctx context.Context, id int64, in service.TaskInput) error {
	return c.f.do(ctx, call{method: http.MethodPatch, path: pathTask, params: idParam(id), body: in})
}

// DeleteTask deletes a task.
func (c *TaskClient) DeleteTask(ctx context.Context, id int64) error {
	return c.f.do(ctx, call{method: http.MethodDelete, path: pathTask, params: idParam(id)})
}

// TeamClient calls the team endpoints.
type TeamClient struct{ f *Factory }

// ListTeams returns all teams.
func (c *TeamClient) ListTeams(ctx context.Context) ([]service.Team, error) {
	var teams []service.Team
	if err := c.f.do(ctx, call{method: http.MethodGet, path: pathTeams, out: &teams}); err != nil {
		return nil, err
	}
	return teams, nil
}

// GetTeam returns a team by id.
func (c *TeamClient) GetTeam(ctx context.Context, id string) (service.Team, error) {
	var team service.Team
	err := c.f.do(ctx, call{method: http.MethodGet, path: pathTeam, params: map[string]string{"id": id}, out: &team})
	if err != nil {
		return service.Team{}, err
	}
	return team, nil
}

// CreateTeam posts a new team.
func (c *TeamClient) CreateTeam(ctx context.Context, team service.Team) error {
	return c.f.do(ctx, call{method: http.MethodPost, path: pathTeams, body: team})
}

// UpdateTeam replaces a team.
func (c *TeamClient) UpdateTeam(ctx context.Context, id string, team service.Team) error {
	return c.f.do(ctx, call{method: http.MethodPut, path: pathTeam, params: map[string]string{"id": id}, body: team})
}

// DeleteTeam deletes a team.
func (c *TeamClient) DeleteTeam(ctx context.Context, id string) error {
	return c.f.do(ctx, call{method: http.MethodDelete, path: pathTeam, params: map[string]string{"id": id}})
}
