// Package httpapi implements the service interfaces against the remote JSON API.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"

	"taskdash/internal/service"
)

// Endpoint templates, relative to the base address.
const (
	pathLogin    = "auth/login"
	pathRegister = "auth/register"
	pathTasks    = "tasks"
	pathTask     = "tasks/{id}"
	pathTeams    = "teams"
	pathTeam     = "teams/{id}"
)

// RequestIDHeader carries a per-request correlation id.
const RequestIDHeader = "X-Request-Id"

// maxMessageLen caps error messages taken from plain-text bodies.
const maxMessageLen = 200

// Group names one of the resource clients.
type Group int

const (
	GroupAuth Group = iota
	GroupTask
	GroupTeam
)

func (g Group) String() string {
	switch g {
	case GroupAuth:
		return "auth"
	case GroupTask:
		return "task"
	case GroupTeam:
		return "team"
	}
	return "group(" + strconv.Itoa(int(g)) + ")"
}

// Factory builds the resource clients. All clients share one HTTP client whose
// transport asks the token source for the bearer token on every request.
type Factory struct {
	basePath string
	hc       *http.Client
	logger   *slog.Logger
}

var _ service.Service = (*Factory)(nil)

// Option configures a Factory.
type Option func(*Factory)

// WithLogger sets the logger used for per-request debug lines.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Factory) {
		f.logger = logger
	}
}

// NewFactory creates a Factory for the API at baseURL.
func NewFactory(baseURL string, tokens oauth2.TokenSource, opts ...Option) (*Factory, error) {
	if tokens == nil {
		return nil, errors.New("token source is nil")
	}
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid api url: %s", baseURL)
	}
	// ResolveRelative replaces the last path segment unless the base ends in a slash.
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}

	f := &Factory{
		basePath: u.String(),
		hc:       &http.Client{Transport: &oauth2.Transport{Source: tokens}},
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Client returns the client for a resource group: *AuthClient, *TaskClient or *TeamClient.
func (f *Factory) Client(g Group) (any, error) {
	switch g {
	case GroupAuth:
		return f.Auth(), nil
	case GroupTask:
		return f.Tasks(), nil
	case GroupTeam:
		return f.Teams(), nil
	}
	return nil, fmt.Errorf("unknown client group: %s", g)
}

// Auth implements service.Service.
func (f *Factory) Auth() service.AuthService { return &AuthClient{f: f} }

// Tasks implements service.Service.
func (f *Factory) Tasks() service.TaskService { return &TaskClient{f: f} }

// Teams implements service.Service.
func (f *Factory) Teams() service.TeamService { return &TeamClient{f: f} }

// call describes one API request.
type call struct {
	method string
	path   string
	params map[string]string
	query  url.Values
	body   any
	out    any
}

// do performs exactly one request. Non-2xx responses and transport failures
// come back as *service.RequestError.
func (f *Factory) do(ctx context.Context, c call) error {
	urls := googleapi.ResolveRelative(f.basePath, c.path)
	if len(c.query) > 0 {
		urls += "?" + c.query.Encode()
	}

	var body io.Reader
	if c.body != nil {
		buf, err := json.Marshal(c.body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, c.method, urls, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	googleapi.Expand(req.URL, c.params)

	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, reqID)
	if c.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	res, err := f.hc.Do(req)
	if err != nil {
		f.logger.Debug("api request failed",
			"method", c.method, "url", req.URL.String(), "request_id", reqID, "err", err)
		return &service.RequestError{Message: transportMessage(err), Err: err}
	}
	defer googleapi.CloseBody(res)

	f.logger.Debug("api request",
		"method", c.method, "url", req.URL.String(), "request_id", reqID,
		"status", res.StatusCode, "duration", time.Since(start))

	if err := googleapi.CheckResponse(res); err != nil {
		return wrapError(res.StatusCode, err)
	}
	if c.out == nil {
		return nil
	}

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return &service.RequestError{Status: res.StatusCode, Message: "failed to read response", Err: err}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return &service.RequestError{Status: res.StatusCode, Message: "empty response body"}
	}
	if err := json.Unmarshal(data, c.out); err != nil {
		return &service.RequestError{Status: res.StatusCode, Message: "invalid response body", Err: err}
	}
	return nil
}

// transportMessage gives a short message for a failed round trip.
func transportMessage(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "request timed out"
	case errors.Is(err, context.Canceled):
		return "request cancelled"
	}
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return uerr.Err.Error()
	}
	return err.Error()
}

// wrapError converts a googleapi error into a RequestError with a readable message.
func wrapError(status int, err error) error {
	msg := http.StatusText(status)
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		if m := errorMessage(gerr); m != "" {
			msg = m
		}
	}
	return &service.RequestError{Status: status, Message: msg, Err: err}
}

// errorMessage picks the most specific message available in the error body.
func errorMessage(gerr *googleapi.Error) string {
	if gerr.Message != "" {
		return gerr.Message
	}
	body := strings.TrimSpace(gerr.Body)
	if body == "" {
		return ""
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(body), &fields); err == nil {
		for _, key := range []string{"message", "detail", "title", "error"} {
			if s, ok := fields[key].(string); ok && s != "" {
				return s
			}
		}
		return ""
	}

	if len(body) > maxMessageLen {
		body = body[:maxMessageLen]
	}
	return body
}

func idParam(id int64) map[string]string {
	return map[string]string{"id": strconv.FormatInt(id, 10)}
}
