package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"taskdash/internal/config"
	"taskdash/internal/exitcode"
	"taskdash/internal/hooks"
	"taskdash/internal/output"
	"taskdash/internal/query"
	"taskdash/internal/service"
	"taskdash/internal/table"
)

// now is the clock used for overdue marks.
var now = time.Now

func init() {
	Register(&TasksCmd{})
}

// filterFlags collects repeated --filter col=value flags.
type filterFlags []string

func (f *filterFlags) String() string { return strings.Join(*f, ",") }

func (f *filterFlags) Set(v string) error {
	if _, _, ok := strings.Cut(v, "="); !ok {
		return fmt.Errorf("want column=value, got %q", v)
	}
	*f = append(*f, v)
	return nil
}

// TasksCmd implements the tasks command.
type TasksCmd struct {
	search  string
	grep    string
	sortCol string
	desc    bool
	filters filterFlags
	page    int
	size    int
}

func (c *TasksCmd) Name() string      { return "tasks" }
func (c *TasksCmd) Aliases() []string { return []string{"ls"} }
func (c *TasksCmd) Synopsis() string  { return "List tasks" }
func (c *TasksCmd) Usage() string {
	return "taskdash tasks [--search <text>] [--grep <text>] [--sort <column>] [--desc] [--filter <column=value>] [--page <n>] [--size <n>]"
}
func (c *TasksCmd) NeedsAuth() bool { return true }

func (c *TasksCmd) RegisterFlags(fs *flag.FlagSet) {
	c.filters = nil
	fs.StringVar(&c.search, "search", "", "")
	fs.StringVar(&c.grep, "grep", "", "")
	fs.StringVar(&c.sortCol, "sort", "", "")
	fs.BoolVar(&c.desc, "desc", false, "")
	fs.Var(&c.filters, "filter", "")
	fs.IntVar(&c.page, "page", 0, "")
	fs.IntVar(&c.size, "size", 0, "")
}

func (c *TasksCmd) Run(ctx context.Context, cfg *config.Config, app *hooks.App, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}
	if c.page < 0 || c.size < 0 {
		fmt.Fprintln(errOut, "error: --page and --size must not be negative")
		return exitcode.UserError
	}

	view := table.NewView(app.Tasks, service.ListTasksParams{Page: c.page, Size: c.size, Search: c.search})

	switch {
	case c.sortCol != "":
		col, err := table.ParseColumn(c.sortCol)
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
		dir := table.Ascending
		if c.desc {
			dir = table.Descending
		}
		view.SetSort(table.SortState{Column: col, Dir: dir})
	case c.desc:
		fmt.Fprintln(errOut, "error: --desc requires --sort")
		return exitcode.UserError
	}

	view.SetGlobalFilter(c.grep)
	for _, f := range c.filters {
		name, value, _ := strings.Cut(f, "=")
		col, err := table.ParseColumn(name)
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
		view.SetColumnFilter(col, value)
	}

	res := view.Load(ctx)
	if res.Status == query.StatusError {
		return reportError(errOut, res.Err)
	}

	output.FormatTaskTable(out, view.Rows(now()))
	return exitcode.Success
}
