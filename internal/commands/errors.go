package commands

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"taskdash/internal/config"
	"taskdash/internal/exitcode"
	"taskdash/internal/forms"
	"taskdash/internal/service"
	"taskdash/internal/table"
)

// reportError prints err to errOut and returns the matching exit code.
//
// Local validation and not-found errors are user errors, rejected
// credentials are auth errors, everything else from the API or the
// network is a backend error.
func reportError(errOut io.Writer, err error) int {
	var fieldErrs forms.Errors
	if errors.As(err, &fieldErrs) {
		fields := make([]string, 0, len(fieldErrs))
		for f := range fieldErrs {
			fields = append(fields, f)
		}
		sort.Strings(fields)
		for _, f := range fields {
			fmt.Fprintf(errOut, "error: %s: %s\n", f, fieldErrs[f])
		}
		return exitcode.UserError
	}

	var verr *service.ValidationError
	if errors.As(err, &verr) {
		fmt.Fprintf(errOut, "error: %s: %s\n", verr.Field, verr.Message)
		return exitcode.UserError
	}

	if errors.Is(err, table.ErrInvalidID) || errors.Is(err, table.ErrDeclined) {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	if errors.Is(err, service.ErrUnauthorized) {
		fmt.Fprintf(errOut, "error: auth error: %s (run: taskdash login)\n", forms.AlertMessage(err))
		return exitcode.AuthError
	}

	if errors.Is(err, service.ErrNotFound) {
		fmt.Fprintf(errOut, "error: not found: %s\n", forms.AlertMessage(err))
		return exitcode.UserError
	}

	fmt.Fprintf(errOut, "error: backend error: %v\n", err)
	return exitcode.BackendError
}

// ok prints the success line unless quiet.
func ok(cfg *config.Config, out io.Writer) int {
	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}

// usageError reports a bad positional argument.
func usageError(errOut io.Writer, err error) int {
	fmt.Fprintf(errOut, "error: %v\n", err)
	return exitcode.UserError
}
