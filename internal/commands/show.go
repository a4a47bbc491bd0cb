package commands

import (
	"context"
	"flag"
	"io"
	"time"

	"taskdash/internal/config"
	"taskdash/internal/exitcode"
	"taskdash/internal/hooks"
	"taskdash/internal/output"
	"taskdash/internal/query"
)

func init() {
	Register(&ShowCmd{})
}

// ShowCmd implements the show command.
type ShowCmd struct{}

func (c *ShowCmd) Name() string      { return "show" }
func (c *ShowCmd) Aliases() []string { return nil }
func (c *ShowCmd) Synopsis() string  { return "Show one task" }
func (c *ShowCmd) Usage() string     { return "taskdash show <id>" }
func (c *ShowCmd) NeedsAuth() bool   { return true }

func (c *ShowCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ShowCmd) Run(ctx context.Context, cfg *config.Config, app *hooks.App, args []string, out, errOut io.Writer) int {
	id, err := ParseTaskID(args)
	if err != nil {
		return usageError(errOut, err)
	}

	res := app.Tasks.Get(ctx, id)
	if res.Status == query.StatusError {
		return reportError(errOut, res.Err)
	}
	output.FormatTask(out, res.Data, now(), time.Local)
	return exitcode.Success
}
