package table

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"taskdash/internal/forms"
	"taskdash/internal/hooks"
	"taskdash/internal/query"
	"taskdash/internal/service"
)

// DeletePolicy controls whether a delete asks for confirmation first.
type DeletePolicy int

const (
	DeleteImmediately DeletePolicy = iota
	ConfirmDelete
)

// Confirmer is asked before a delete under ConfirmDelete.
type Confirmer func(task service.Task) bool

var (
	// ErrInvalidID is returned for task ids that cannot exist.
	ErrInvalidID = errors.New("invalid task id")
	// ErrDeclined is returned when the confirmer refuses a delete.
	ErrDeclined = errors.New("delete cancelled")
)

// View binds a Model to the task hooks. Rows always come from the hooks;
// mutations invalidate the cache and the view reloads instead of patching
// its own rows.
//
// Rows and the last result may be updated from another goroutine while the
// view is attached. Modal and Policy belong to the caller's goroutine.
type View struct {
	*Model

	Policy DeletePolicy
	Modal  forms.TaskModal

	tasks  *hooks.Tasks
	params service.ListTasksParams

	mu     sync.Mutex
	result query.Result[[]service.Task]
}

// NewView returns a view over the task list selected by params.
func NewView(tasks *hooks.Tasks, params service.ListTasksParams) *View {
	return &View{Model: &Model{}, tasks: tasks, params: params}
}

// Load fetches the task list through the hooks. Data from an earlier
// success is kept when the fetch fails.
func (v *View) Load(ctx context.Context) query.Result[[]service.Task] {
	res := v.tasks.List(ctx, v.params)
	v.apply(res)
	return res
}

// Result returns the last list result seen by the view.
func (v *View) Result() query.Result[[]service.Task] {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.result
}

func (v *View) apply(res query.Result[[]service.Task]) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.result = res
	if res.HasData() {
		v.SetTasks(res.Data)
	}
}

// Attach keeps the rows in step with the cached list until the returned
// function is called.
func (v *View) Attach(cache *query.Cache) (detach func()) {
	return cache.Subscribe(query.TaskList(v.params), func(_ query.Key, s query.State) {
		res := query.Result[[]service.Task]{Status: s.Status, Err: s.Err, Stale: s.Stale, UpdatedAt: s.UpdatedAt}
		if data, ok := s.Data.([]service.Task); ok {
			res.Data = data
		}
		v.apply(res)
	})
}

// OpenCreate opens the modal for a new task.
func (v *View) OpenCreate() {
	v.Modal.Open(nil)
}

// OpenEdit opens the modal pre-populated with the task with id.
func (v *View) OpenEdit(id int64) error {
	task, ok := v.Find(id)
	if !ok {
		return fmt.Errorf("task %d: %w", id, service.ErrNotFound)
	}
	v.Modal.Open(&task)
	return nil
}

// SubmitModal validates the modal and creates or updates the task, then
// reloads the rows.
func (v *View) SubmitModal(ctx context.Context) error {
	err := v.Modal.Submit(func(sub forms.Submission) error {
		if sub.Editing() {
			return v.tasks.Update(ctx, sub.ID, sub.Input)
		}
		return v.tasks.Create(ctx, sub.Input)
	})
	if err != nil {
		return err
	}
	v.reload(ctx)
	return nil
}

// Delete removes the task with id and reloads the rows. Under ConfirmDelete
// confirm is asked first; a nil confirmer refuses.
func (v *View) Delete(ctx context.Context, id int64, confirm Confirmer) error {
	if id <= 0 {
		return ErrInvalidID
	}
	if v.Policy == ConfirmDelete {
		task, ok := v.Find(id)
		if !ok {
			task = service.Task{ID: id}
		}
		if confirm == nil || !confirm(task) {
			return ErrDeclined
		}
	}
	if err := v.tasks.Delete(ctx, id); err != nil {
		return err
	}
	v.reload(ctx)
	return nil
}

// reload refreshes rows that were loaded before. A view that never loaded
// stays empty.
func (v *View) reload(ctx context.Context) {
	if v.Result().Status != query.StatusIdle {
		v.Load(ctx)
	}
}
