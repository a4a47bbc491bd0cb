package commands

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"taskdash/internal/config"
	"taskdash/internal/hooks"
	"taskdash/internal/query"
	"taskdash/internal/service"
	"taskdash/internal/table"
)

func init() {
	Register(&RmCmd{})
}

// RmCmd implements the rm command.
type RmCmd struct {
	// In answers the confirmation prompt. Defaults to os.Stdin.
	In io.Reader

	yes bool
}

func (c *RmCmd) Name() string      { return "rm" }
func (c *RmCmd) Aliases() []string { return []string{"delete"} }
func (c *RmCmd) Synopsis() string  { return "Delete a task" }
func (c *RmCmd) Usage() string     { return "taskdash rm [--yes] <id>" }
func (c *RmCmd) NeedsAuth() bool   { return true }

func (c *RmCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.yes, "yes", false, "")
	fs.BoolVar(&c.yes, "y", false, "")
}

func (c *RmCmd) Run(ctx context.Context, cfg *config.Config, app *hooks.App, args []string, out, errOut io.Writer) int {
	id, err := ParseTaskID(args)
	if err != nil {
		return usageError(errOut, err)
	}

	view := table.NewView(app.Tasks, service.ListTasksParams{})
	var confirm table.Confirmer
	if cfg.ConfirmDelete && !c.yes {
		view.Policy = table.ConfirmDelete

		current := app.Tasks.Get(ctx, id)
		if current.Status == query.StatusError {
			return reportError(errOut, current.Err)
		}
		confirm = func(service.Task) bool {
			return c.ask(errOut, fmt.Sprintf("delete task %d %q? [y/N] ", id, current.Data.Title))
		}
	}

	if err := view.Delete(ctx, id, confirm); err != nil {
		return reportError(errOut, err)
	}
	return ok(cfg, out)
}

func (c *RmCmd) ask(prompt io.Writer, question string) bool {
	in := c.In
	if in == nil {
		in = os.Stdin
	}
	fmt.Fprint(prompt, question)
	line, _ := bufio.NewReader(in).ReadString('\n')
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
