// Package tokenstore holds the current bearer credential, persists it across
// runs and notifies subscribers when it changes.
package tokenstore

import (
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/oauth2"
)

const (
	// Name is the namespace of the persisted record.
	Name = "auth-store"

	// Version is the schema version of the persisted record. Records with any
	// other version are ignored.
	Version = 1
)

// record is the persisted shape: {"name":..., "version":1, "state":{"accessToken":...}}.
type record struct {
	Name    string `json:"name"`
	Version int    `json:"version"`
	State   state  `json:"state"`
}

type state struct {
	AccessToken *string `json:"accessToken"`
}

// Listener is called with the new credential after every change.
// ok is false when the credential was cleared.
type Listener func(token string, ok bool)

// Store is a typed, observable holder for a single credential.
// It implements oauth2.TokenSource; each call to Token reads the current value.
type Store struct {
	path   string
	logger *slog.Logger

	mu        sync.RWMutex
	token     *string
	listeners map[int]Listener
	nextID    int
}

var _ oauth2.TokenSource = (*Store)(nil)

// Open loads the store persisted at path. A missing, unreadable, or
// version-mismatched file yields an empty store. An empty path gives an
// in-memory store.
func Open(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		path:      path,
		logger:    logger,
		listeners: make(map[int]Listener),
	}
	s.token = s.load()
	return s
}

// NewMemory returns a store that is never persisted.
func NewMemory() *Store {
	return Open("", nil)
}

func (s *Store) load() *string {
	if s.path == "" {
		return nil
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Debug("token store unreadable", "path", s.path, "err", err)
		}
		return nil
	}
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		s.logger.Debug("token store corrupt", "path", s.path, "err", err)
		return nil
	}
	if rec.Name != Name || rec.Version != Version {
		s.logger.Debug("token store schema mismatch", "name", rec.Name, "version", rec.Version)
		return nil
	}
	return rec.State.AccessToken
}

// Get returns the current credential.
func (s *Store) Get() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == nil {
		return "", false
	}
	return *s.token, true
}

// Set replaces the credential, persists it and notifies subscribers.
func (s *Store) Set(token string) {
	s.update(&token)
}

// Clear removes the credential.
func (s *Store) Clear() {
	s.update(nil)
}

func (s *Store) update(token *string) {
	s.mu.Lock()
	s.token = token
	s.persist(token)
	listeners := make([]Listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	value, ok := "", token != nil
	if ok {
		value = *token
	}
	for _, fn := range listeners {
		fn(value, ok)
	}
}

// persist writes the record. Failures are logged and otherwise ignored.
// Must be called with mu held.
func (s *Store) persist(token *string) {
	if s.path == "" {
		return
	}
	data, err := json.MarshalIndent(record{
		Name:    Name,
		Version: Version,
		State:   state{AccessToken: token},
	}, "", "  ")
	if err != nil {
		s.logger.Debug("token store encode failed", "err", err)
		return
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		s.logger.Debug("token store dir create failed", "path", s.path, "err", err)
		return
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		s.logger.Debug("token store write failed", "path", s.path, "err", err)
	}
}

// Subscribe registers fn for change notifications. The returned function
// removes it; calling it more than once is a no-op.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

// Token implements oauth2.TokenSource. An absent credential yields an empty
// bearer token rather than an error, so unauthenticated calls still reach the API.
func (s *Store) Token() (*oauth2.Token, error) {
	token, _ := s.Get()
	return &oauth2.Token{AccessToken: token, TokenType: "Bearer"}, nil
}
