package commands

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrTaskIDRequired indicates no task id was provided.
	ErrTaskIDRequired = errors.New("task id required")

	// ErrTeamIDRequired indicates no team id was provided.
	ErrTeamIDRequired = errors.New("team id required")
)

// ParseTaskID parses the task id from the first positional argument.
// Ids are positive integers; a leading '#' is accepted ("#12").
func ParseTaskID(args []string) (int64, error) {
	if len(args) == 0 {
		return 0, ErrTaskIDRequired
	}
	if len(args) > 1 {
		return 0, fmt.Errorf("unexpected argument: %s", args[1])
	}

	raw := strings.TrimPrefix(args[0], "#")
	if !isAllDigits(raw) {
		return 0, fmt.Errorf("invalid task id: %s", args[0])
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid task id: %s", args[0])
	}
	return id, nil
}

// ParseTeamID returns the team id from the first positional argument. Team
// ids are opaque; only blank ids are rejected.
func ParseTeamID(args []string) (string, error) {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return "", ErrTeamIDRequired
	}
	if len(args) > 1 {
		return "", fmt.Errorf("unexpected argument: %s", args[1])
	}
	return args[0], nil
}

// isAllDigits returns true if s consists only of ASCII digits and is non-empty.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
