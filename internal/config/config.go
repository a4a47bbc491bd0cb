// Package config handles the configuration directory, environment and file paths.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	// AppName is the application directory name.
	AppName = "taskdash"

	// TokenFile is the persisted auth store filename.
	TokenFile = "auth-store.json"

	// EnvFile is the optional dotenv file read from the working and config directories.
	EnvFile = ".env"

	// DefaultAPIURL is the remote API base address.
	DefaultAPIURL = "http://localhost:5010"

	// DefaultAddr is the listen address of the local dashboard.
	DefaultAddr = "localhost:3000"

	// DefaultStaleTime is how long a cached query result is considered fresh.
	DefaultStaleTime = 30 * time.Second
)

// Environment variables.
const (
	EnvAPIURL        = "TASKDASH_API_URL"
	EnvConfirmDelete = "TASKDASH_CONFIRM_DELETE"
	EnvStaleTime     = "TASKDASH_STALE_TIME"
	EnvAddr          = "TASKDASH_ADDR"
)

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// APIURL is the base address of the remote API.
	APIURL string

	// Addr is the listen address for `serve`.
	Addr string

	// ConfirmDelete requires an explicit confirmation before deleting a task.
	ConfirmDelete bool

	// StaleTime bounds how long query results are reused.
	StaleTime time.Duration

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool

	// Logger receives diagnostics. Never nil after New.
	Logger *slog.Logger
}

// New creates a new Config with the default or specified config directory.
// If configDir is empty, uses XDG_CONFIG_HOME/taskdash or $HOME/.config/taskdash.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	return &Config{
		Dir:       dir,
		APIURL:    DefaultAPIURL,
		Addr:      DefaultAddr,
		StaleTime: DefaultStaleTime,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, nil
}

// LoadEnv reads .env files from the working directory and the config directory,
// then applies the TASKDASH_* variables. Variables already set in the process
// environment take precedence over .env files.
func (c *Config) LoadEnv() error {
	for _, path := range []string{EnvFile, filepath.Join(c.Dir, EnvFile)} {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
	}

	if v := os.Getenv(EnvAPIURL); v != "" {
		c.APIURL = v
	}
	if v := os.Getenv(EnvAddr); v != "" {
		c.Addr = v
	}
	if v := os.Getenv(EnvConfirmDelete); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %s", EnvConfirmDelete, v)
		}
		c.ConfirmDelete = b
	}
	if v := os.Getenv(EnvStaleTime); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			return fmt.Errorf("invalid %s: %s", EnvStaleTime, v)
		}
		c.StaleTime = d
	}
	return nil
}

// SetAPIURL validates and sets the API base address.
func (c *Config) SetAPIURL(raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid api url: %s", raw)
	}
	c.APIURL = u.String()
	return nil
}

// SetupLogger points Logger at w. Debug enables debug level, otherwise only
// warnings and errors are written.
func (c *Config) SetupLogger(w io.Writer) {
	level := slog.LevelWarn
	if c.Debug {
		level = slog.LevelDebug
	}
	c.Logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// TokenPath returns the path to the persisted auth store.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Dir, TokenFile)
}
