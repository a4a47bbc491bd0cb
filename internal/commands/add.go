package commands

import (
	"context"
	"flag"
	"io"
	"strings"

	"taskdash/internal/config"
	"taskdash/internal/hooks"
	"taskdash/internal/service"
	"taskdash/internal/table"
)

func init() {
	Register(&AddCmd{})
}

// AddCmd implements the add command.
type AddCmd struct {
	content  string
	deadline string
	priority string
}

func (c *AddCmd) Name() string      { return "add" }
func (c *AddCmd) Aliases() []string { return []string{"create"} }
func (c *AddCmd) Synopsis() string  { return "Create a task" }
func (c *AddCmd) Usage() string {
	return "taskdash add [--content <text>] [--deadline <time>] [--priority <Low|Medium|High>] <title...>"
}
func (c *AddCmd) NeedsAuth() bool { return true }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.content, "content", "", "")
	fs.StringVar(&c.deadline, "deadline", "", "")
	fs.StringVar(&c.priority, "priority", "", "")
}

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, app *hooks.App, args []string, out, errOut io.Writer) int {
	view := table.NewView(app.Tasks, service.ListTasksParams{})
	view.OpenCreate()
	view.Modal.Title = strings.Join(args, " ")
	view.Modal.Content = c.content
	view.Modal.Deadline = c.deadline
	view.Modal.Priority = c.priority

	if err := view.SubmitModal(ctx); err != nil {
		return reportError(errOut, err)
	}
	return ok(cfg, out)
}
