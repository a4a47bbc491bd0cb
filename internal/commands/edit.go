package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskdash/internal/config"
	"taskdash/internal/exitcode"
	"taskdash/internal/hooks"
	"taskdash/internal/query"
	"taskdash/internal/service"
	"taskdash/internal/table"
)

func init() {
	Register(&EditCmd{})
}

// optString is a string flag that remembers whether it was given, so an
// explicit empty value can be told apart from an absent flag.
type optString struct {
	set bool
	val string
}

func (o *optString) String() string { return o.val }

func (o *optString) Set(v string) error {
	o.set, o.val = true, v
	return nil
}

// EditCmd implements the edit command.
type EditCmd struct {
	title    optString
	content  optString
	deadline optString
	priority optString
}

func (c *EditCmd) Name() string      { return "edit" }
func (c *EditCmd) Aliases() []string { return nil }
func (c *EditCmd) Synopsis() string  { return "Update a task" }
func (c *EditCmd) Usage() string {
	return "taskdash edit [--title <text>] [--content <text>] [--deadline <time>] [--priority <Low|Medium|High>] <id>"
}
func (c *EditCmd) NeedsAuth() bool { return true }

func (c *EditCmd) RegisterFlags(fs *flag.FlagSet) {
	c.title, c.content, c.deadline, c.priority = optString{}, optString{}, optString{}, optString{}
	fs.Var(&c.title, "title", "")
	fs.Var(&c.content, "content", "")
	fs.Var(&c.deadline, "deadline", "")
	fs.Var(&c.priority, "priority", "")
}

func (c *EditCmd) Run(ctx context.Context, cfg *config.Config, app *hooks.App, args []string, out, errOut io.Writer) int {
	id, err := ParseTaskID(args)
	if err != nil {
		return usageError(errOut, err)
	}
	if !c.title.set && !c.content.set && !c.deadline.set && !c.priority.set {
		fmt.Fprintln(errOut, "error: nothing to change")
		return exitcode.UserError
	}

	current := app.Tasks.Get(ctx, id)
	if current.Status == query.StatusError {
		return reportError(errOut, current.Err)
	}

	view := table.NewView(app.Tasks, service.ListTasksParams{})
	view.Modal.Open(&current.Data)
	for _, f := range []struct {
		opt   optString
		field *string
	}{
		{c.title, &view.Modal.Title},
		{c.content, &view.Modal.Content},
		{c.deadline, &view.Modal.Deadline},
		{c.priority, &view.Modal.Priority},
	} {
		if f.opt.set {
			*f.field = f.opt.val
		}
	}

	if err := view.SubmitModal(ctx); err != nil {
		return reportError(errOut, err)
	}
	return ok(cfg, out)
}
