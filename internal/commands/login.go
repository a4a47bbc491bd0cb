package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"taskdash/internal/config"
	"taskdash/internal/exitcode"
	"taskdash/internal/forms"
	"taskdash/internal/hooks"
	"taskdash/internal/service"
)

func init() {
	Register(&LoginCmd{})
	Register(&SignupCmd{})
}

// LoginCmd implements the login command.
type LoginCmd struct {
	email    string
	password string
}

func (c *LoginCmd) Name() string      { return "login" }
func (c *LoginCmd) Aliases() []string { return nil }
func (c *LoginCmd) Synopsis() string  { return "Sign in and store the access token" }
func (c *LoginCmd) Usage() string     { return "taskdash login --email <email> --password <password>" }
func (c *LoginCmd) NeedsAuth() bool   { return false }

func (c *LoginCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.email, "email", "", "")
	fs.StringVar(&c.password, "password", "", "")
}

func (c *LoginCmd) Run(ctx context.Context, cfg *config.Config, app *hooks.App, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	form := &forms.LoginForm{Email: c.email, Password: c.password}
	err := form.Submit(ctx, func(ctx context.Context, req service.LoginRequest) error {
		token, err := app.Auth.Login(ctx, req)
		if err != nil {
			return err
		}
		app.Tokens.Set(token)
		return nil
	})
	if err != nil {
		return reportAuthError(errOut, err)
	}
	return ok(cfg, out)
}

// SignupCmd implements the signup command.
type SignupCmd struct {
	email    string
	password string
}

func (c *SignupCmd) Name() string      { return "signup" }
func (c *SignupCmd) Aliases() []string { return []string{"register"} }
func (c *SignupCmd) Synopsis() string  { return "Create an account and store the access token" }
func (c *SignupCmd) Usage() string     { return "taskdash signup --email <email> --password <password>" }
func (c *SignupCmd) NeedsAuth() bool   { return false }

func (c *SignupCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.email, "email", "", "")
	fs.StringVar(&c.password, "password", "", "")
}

func (c *SignupCmd) Run(ctx context.Context, cfg *config.Config, app *hooks.App, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	form := &forms.SignupForm{Email: c.email, Password: c.password}
	err := form.Submit(ctx, func(ctx context.Context, req service.RegisterRequest) error {
		token, err := app.Auth.Register(ctx, req)
		if err != nil {
			return err
		}
		app.Tokens.Set(token)
		return nil
	})
	if err != nil {
		return reportAuthError(errOut, err)
	}
	return ok(cfg, out)
}

// reportAuthError is reportError without the login hint: a rejected
// login is reported with the server's message alone.
func reportAuthError(errOut io.Writer, err error) int {
	if errors.Is(err, service.ErrUnauthorized) {
		fmt.Fprintf(errOut, "error: auth error: %s\n", forms.AlertMessage(err))
		return exitcode.AuthError
	}
	return reportError(errOut, err)
}
