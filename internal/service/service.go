// Package service defines the backend-agnostic types and interfaces for task operations.
package service

import "context"

// AuthService covers the auth endpoints.
type AuthService interface {
	// Login exchanges credentials for a bearer token.
	Login(ctx context.Context, req LoginRequest) (AuthResult, error)

	// Register creates an account and returns its bearer token.
	Register(ctx context.Context, req RegisterRequest) (AuthResult, error)
}

// TaskService covers the task endpoints.
type TaskService interface {
	// ListTasks returns tasks in API order.
	ListTasks(ctx context.Context, params ListTasksParams) ([]Task, error)

	// GetTask returns one task. A missing task is a RequestError matching ErrNotFound.
	GetTask(ctx context.Context, id int64) (Task, error)

	CreateTask(ctx context.Context, in TaskInput) error
	UpdateTask(ctx context.Context, id int64, in TaskInput) error
	DeleteTask(ctx context.Context, id int64) error
}

// TeamService covers the team endpoints. Teams are passed through untouched.
type TeamService interface {
	ListTeams(ctx context.Context) ([]Team, error)
	GetTeam(ctx context.Context, id string) (Team, error)
	CreateTeam(ctx context.Context, team Team) error
	UpdateTeam(ctx context.Context, id string, team Team) error
	DeleteTeam(ctx context.Context, id string) error
}

// Service groups the three resource clients.
// Commands and views never talk HTTP directly; they go through this interface.
type Service interface {
	Auth() AuthService
	Tasks() TaskService
	Teams() TeamService
}
