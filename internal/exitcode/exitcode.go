// Package exitcode defines the process exit codes shared by the CLI
// dispatcher and the commands.
package exitcode

const (
	// Success means the command finished.
	Success = 0

	// UserError covers bad arguments, failed validation, unknown ids and
	// declined confirmations.
	UserError = 1

	// AuthError means no stored token or a token the server rejected.
	AuthError = 2

	// BackendError covers transport failures and unexpected server replies.
	BackendError = 3
)
