package commands

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"taskdash/internal/config"
	"taskdash/internal/exitcode"
	"taskdash/internal/hooks"
	"taskdash/internal/output"
	"taskdash/internal/query"
	"taskdash/internal/service"
)

func init() {
	Register(&TeamsCmd{})
	Register(&TeamCmd{})
}

// TeamsCmd implements the teams command.
type TeamsCmd struct{}

func (c *TeamsCmd) Name() string      { return "teams" }
func (c *TeamsCmd) Aliases() []string { return nil }
func (c *TeamsCmd) Synopsis() string  { return "List teams" }
func (c *TeamsCmd) Usage() string     { return "taskdash teams" }
func (c *TeamsCmd) NeedsAuth() bool   { return true }

func (c *TeamsCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *TeamsCmd) Run(ctx context.Context, cfg *config.Config, app *hooks.App, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}
	res := app.Teams.List(ctx)
	if res.Status == query.StatusError {
		return reportError(errOut, res.Err)
	}
	output.FormatTeams(out, res.Data)
	return exitcode.Success
}

// TeamCmd implements the team subcommands: show, add, edit and rm.
type TeamCmd struct{}

func (c *TeamCmd) Name() string      { return "team" }
func (c *TeamCmd) Aliases() []string { return nil }
func (c *TeamCmd) Synopsis() string  { return "Show, create, update or delete a team" }
func (c *TeamCmd) Usage() string {
	return "taskdash team show <id> | add [--data <json>] <name> | edit --data <json> <id> | rm <id>"
}
func (c *TeamCmd) NeedsAuth() bool { return true }

func (c *TeamCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *TeamCmd) Run(ctx context.Context, cfg *config.Config, app *hooks.App, args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "error: team subcommand required (show, add, edit, rm)")
		return exitcode.UserError
	}

	sub, rest := args[0], args[1:]
	fs := flag.NewFlagSet("team "+sub, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	data := fs.String("data", "", "")
	if err := fs.Parse(rest); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	rest = fs.Args()

	switch sub {
	case "show":
		return c.show(ctx, app, rest, out, errOut)
	case "add", "create":
		return c.add(ctx, cfg, app, *data, rest, out, errOut)
	case "edit":
		return c.edit(ctx, cfg, app, *data, rest, out, errOut)
	case "rm", "delete":
		id, err := ParseTeamID(rest)
		if err != nil {
			return usageError(errOut, err)
		}
		if err := app.Teams.Delete(ctx, id); err != nil {
			return reportError(errOut, err)
		}
		return ok(cfg, out)
	}
	fmt.Fprintf(errOut, "error: unknown team subcommand: %s\n", sub)
	return exitcode.UserError
}

func (c *TeamCmd) show(ctx context.Context, app *hooks.App, args []string, out, errOut io.Writer) int {
	id, err := ParseTeamID(args)
	if err != nil {
		return usageError(errOut, err)
	}
	res := app.Teams.Get(ctx, id)
	if res.Status == query.StatusError {
		return reportError(errOut, res.Err)
	}
	if err := output.FormatTeam(out, res.Data); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.BackendError
	}
	return exitcode.Success
}

func (c *TeamCmd) add(ctx context.Context, cfg *config.Config, app *hooks.App, data string, args []string, out, errOut io.Writer) int {
	name := strings.TrimSpace(strings.Join(args, " "))
	if name == "" {
		fmt.Fprintln(errOut, "error: team name required")
		return exitcode.UserError
	}
	team, err := parseTeamData(data)
	if err != nil {
		return usageError(errOut, err)
	}
	raw, _ := json.Marshal(name)
	team.Fields["name"] = raw

	if err := app.Teams.Create(ctx, team); err != nil {
		return reportError(errOut, err)
	}
	return ok(cfg, out)
}

// edit overlays the given fields on the current team and writes it back.
func (c *TeamCmd) edit(ctx context.Context, cfg *config.Config, app *hooks.App, data string, args []string, out, errOut io.Writer) int {
	id, err := ParseTeamID(args)
	if err != nil {
		return usageError(errOut, err)
	}
	if data == "" {
		fmt.Fprintln(errOut, "error: --data required")
		return exitcode.UserError
	}
	patch, err := parseTeamData(data)
	if err != nil {
		return usageError(errOut, err)
	}

	current := app.Teams.Get(ctx, id)
	if current.Status == query.StatusError {
		return reportError(errOut, current.Err)
	}
	team := service.Team{ID: id, Fields: make(map[string]json.RawMessage)}
	for k, v := range current.Data.Fields {
		team.Fields[k] = v
	}
	for k, v := range patch.Fields {
		team.Fields[k] = v
	}

	if err := app.Teams.Update(ctx, id, team); err != nil {
		return reportError(errOut, err)
	}
	return ok(cfg, out)
}

// parseTeamData decodes a JSON object of team fields. An id in the object
// is ignored.
func parseTeamData(data string) (service.Team, error) {
	team := service.Team{Fields: make(map[string]json.RawMessage)}
	if data == "" {
		return team, nil
	}
	if err := json.Unmarshal([]byte(data), &team); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			return team, fmt.Errorf("invalid --data: %v", err)
		}
		return team, fmt.Errorf("invalid --data: want a JSON object")
	}
	team.ID = ""
	if team.Fields == nil {
		team.Fields = make(map[string]json.RawMessage)
	}
	return team, nil
}
