// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"

	"taskdash/internal/service"
)

// NotFound is the error the fake returns for missing ids.
func NotFound(what string) error {
	return &service.RequestError{Status: http.StatusNotFound, Message: what + " not found"}
}

// FakeService is an in-memory implementation of service.Service for testing.
type FakeService struct {
	mu     sync.RWMutex
	tasks  map[int64]service.Task
	teams  map[string]service.Team
	nextID int64

	// Users maps email -> password for Login; Register adds to it.
	Users map[string]string

	// Calls counts backend calls by method name.
	Calls map[string]int

	// LastInput is the payload of the latest CreateTask or UpdateTask.
	LastInput service.TaskInput

	// Error injection for testing
	LoginErr      error
	RegisterErr   error
	ListTasksErr  error
	GetTaskErr    error
	CreateTaskErr error
	UpdateTaskErr error
	DeleteTaskErr error
	ListTeamsErr  error
	CreateTeamErr error
}

// NewFakeService creates an empty FakeService.
func NewFakeService() *FakeService {
	return &FakeService{
		tasks:  make(map[int64]service.Task),
		teams:  make(map[string]service.Team),
		nextID: 1,
		Users:  make(map[string]string),
		Calls:  make(map[string]int),
	}
}

// AddTask stores a task and returns its id.
func (f *FakeService) AddTask(task service.Task) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if task.ID == 0 {
		task.ID = f.nextID
	}
	if task.ID >= f.nextID {
		f.nextID = task.ID + 1
	}
	f.tasks[task.ID] = task
	return task.ID
}

// AddTeam stores a team with a name.
func (f *FakeService) AddTeam(id, name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	raw, _ := json.Marshal(name)
	f.teams[id] = service.Team{ID: id, Fields: map[string]json.RawMessage{"name": raw}}
}

// Task returns a stored task.
func (f *FakeService) Task(id int64) (service.Task, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	t, ok := f.tasks[id]
	return t, ok
}

// TotalCalls sums all recorded calls.
func (f *FakeService) TotalCalls() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	n := 0
	for _, c := range f.Calls {
		n += c
	}
	return n
}

func (f *FakeService) record(name string) {
	f.Calls[name]++
}

// Auth implements service.Service.
func (f *FakeService) Auth() service.AuthService { return fakeAuth{f} }

// Tasks implements service.Service.
func (f *FakeService) Tasks() service.TaskService { return fakeTasks{f} }

// Teams implements service.Service.
func (f *FakeService) Teams() service.TeamService { return fakeTeams{f} }

type fakeAuth struct{ f *FakeService }

func (a fakeAuth) Login(ctx context.Context, req service.LoginRequest) (service.AuthResult, error) {
	f := a.f
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Login")
	if f.LoginErr != nil {
		return service.AuthResult{}, f.LoginErr
	}
	if pw, ok := f.Users[req.Email]; !ok || pw != req.Password {
		return service.AuthResult{}, &service.RequestError{Status: http.StatusUnauthorized, Message: "invalid credentials"}
	}
	return service.AuthResult{Token: "token-" + req.Email}, nil
}

func (a fakeAuth) Register(ctx context.Context, req service.RegisterRequest) (service.AuthResult, error) {
	f := a.f
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Register")
	if f.RegisterErr != nil {
		return service.AuthResult{}, f.RegisterErr
	}
	if _, ok := f.Users[req.Email]; ok {
		return service.AuthResult{}, &service.RequestError{Status: http.StatusConflict, Message: "email already registered"}
	}
	f.Users[req.Email] = req.Password
	return service.AuthResult{Token: "token-" + req.Email}, nil
}

type fakeTasks struct{ f *FakeService }

func (t fakeTasks) ListTasks(ctx context.Context, params service.ListTasksParams) ([]service.Task, error) {
	f := t.f
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ListTasks")
	if f.ListTasksErr != nil {
		return nil, f.ListTasksErr
	}

	var out []service.Task
	for _, task := range f.tasks {
		if params.Search != "" && !strings.Contains(strings.ToLower(task.Title), strings.ToLower(params.Search)) {
			continue
		}
		out = append(out, task)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	if params.Size > 0 {
		page := params.Page
		if page < 1 {
			page = 1
		}
		start := (page - 1) * params.Size
		if start >= len(out) {
			return []service.Task{}, nil
		}
		end := start + params.Size
		if end > len(out) {
			end = len(out)
		}
		out = out[start:end]
	}
	return out, nil
}

func (t fakeTasks) GetTask(ctx context.Context, id int64) (service.Task, error) {
	f := t.f
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetTask")
	if f.GetTaskErr != nil {
		return service.Task{}, f.GetTaskErr
	}
	task, ok := f.tasks[id]
	if !ok {
		return service.Task{}, NotFound("task")
	}
	return task, nil
}

func (t fakeTasks) CreateTask(ctx context.Context, in service.TaskInput) error {
	f := t.f
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreateTask")
	f.LastInput = in
	if f.CreateTaskErr != nil {
		return f.CreateTaskErr
	}
	id := f.nextID
	f.nextID++
	f.tasks[id] = service.Task{
		ID:       id,
		Title:    in.Title,
		Content:  in.Content,
		Deadline: in.Deadline,
		Priority: in.Priority,
	}
	return nil
}

func (t fakeTasks) UpdateTask(ctx context.Context, id int64, in service.TaskInput) error {
	f := t.f
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UpdateTask")
	f.LastInput = in
	if f.UpdateTaskErr != nil {
		return f.UpdateTaskErr
	}
	task, ok := f.tasks[id]
	if !ok {
		return NotFound("task")
	}
	task.Title = in.Title
	if in.Content != nil {
		task.Content = in.Content
	}
	if in.Deadline != nil || in.ClearDeadline {
		task.Deadline = in.Deadline
	}
	if in.Priority != nil || in.ClearPriority {
		task.Priority = in.Priority
	}
	f.tasks[id] = task
	return nil
}

func (t fakeTasks) DeleteTask(ctx context.Context, id int64) error {
	f := t.f
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteTask")
	if f.DeleteTaskErr != nil {
		return f.DeleteTaskErr
	}
	if _, ok := f.tasks[id]; !ok {
		return NotFound("task")
	}
	delete(f.tasks, id)
	return nil
}

type fakeTeams struct{ f *FakeService }

func (t fakeTeams) ListTeams(ctx context.Context) ([]service.Team, error) {
	f := t.f
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ListTeams")
	if f.ListTeamsErr != nil {
		return nil, f.ListTeamsErr
	}
	out := make([]service.Team, 0, len(f.teams))
	for _, team := range f.teams {
		out = append(out, team)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (t fakeTeams) GetTeam(ctx context.Context, id string) (service.Team, error) {
	f := t.f
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetTeam")
	team, ok := f.teams[id]
	if !ok {
		return service.Team{}, NotFound("team")
	}
	return team, nil
}

func (t fakeTeams) CreateTeam(ctx context.Context, team service.Team) error {
	f := t.f
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreateTeam")
	if f.CreateTeamErr != nil {
		return f.CreateTeamErr
	}
	team.ID = strconv.Itoa(len(f.teams) + 1)
	for {
		if _, taken := f.teams[team.ID]; !taken {
			break
		}
		team.ID += "0"
	}
	f.teams[team.ID] = team
	return nil
}

func (t fakeTeams) UpdateTeam(ctx context.Context, id string, team service.Team) error {
	f := t.f
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UpdateTeam")
	if _, ok := f.teams[id]; !ok {
		return NotFound("team")
	}
	team.ID = id
	f.teams[id] = team
	return nil
}

func (t fakeTeams) DeleteTeam(ctx context.Context, id string) error {
	f := t.f
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteTeam")
	if _, ok := f.teams[id]; !ok {
		return NotFound("team")
	}
	delete(f.teams, id)
	return nil
}
