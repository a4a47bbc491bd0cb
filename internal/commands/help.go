package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"taskdash/internal/config"
	"taskdash/internal/exitcode"
	"taskdash/internal/hooks"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string      { return "help" }
func (c *HelpCmd) Aliases() []string { return nil }
func (c *HelpCmd) Synopsis() string  { return "Print usage" }
func (c *HelpCmd) Usage() string     { return "taskdash help" }
func (c *HelpCmd) NeedsAuth() bool   { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, app *hooks.App, args []string, out, errOut io.Writer) int {
	fmt.Fprint(out, helpText)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Commands:")
	for _, cmd := range DefaultRegistry.All() {
		line := fmt.Sprintf("  %-8s %s", cmd.Name(), cmd.Synopsis())
		if aliases := cmd.Aliases(); len(aliases) > 0 {
			line += " (alias: " + strings.Join(aliases, ", ") + ")"
		}
		fmt.Fprintln(out, line)
	}
	return exitcode.Success
}

const helpText = `Usage:
  taskdash                                   List tasks
  taskdash tasks [common flags] [--search <text>] [--grep <text>] [--sort <column>] [--desc]
                 [--filter <column=value>] [--page <n>] [--size <n>]
  taskdash show [common flags] <id>
  taskdash add [common flags] [--content <text>] [--deadline <time>] [--priority <p>] <title...>
  taskdash edit [common flags] [--title <text>] [--content <text>] [--deadline <time>]
                [--priority <p>] <id>
  taskdash rm [common flags] [--yes] <id>
  taskdash teams [common flags]
  taskdash team [common flags] show <id>
  taskdash team [common flags] add [--data <json>] <name>
  taskdash team [common flags] edit --data <json> <id>
  taskdash team [common flags] rm <id>
  taskdash login [common flags] --email <email> --password <password>
  taskdash signup [common flags] --email <email> --password <password>
  taskdash logout [common flags]
  taskdash serve [common flags] [--addr <host:port>]
  taskdash help
  taskdash version

Columns: title, description, deadline, priority, subtasks
Deadlines: RFC 3339, 2006-01-02T15:04, 2006-01-02 15:04 or 2006-01-02
Priorities: Low, Medium, High
edit --deadline "" or --priority "" clears the field

Common flags:
  --config <dir>   Override config directory
  --api <url>      Override the API base address
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr

Environment:
  TASKDASH_API_URL, TASKDASH_CONFIRM_DELETE, TASKDASH_STALE_TIME, TASKDASH_ADDR
`
