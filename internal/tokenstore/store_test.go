package tokenstore_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"taskdash/internal/tokenstore"
)

func TestStore_SetGetPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "auth-store.json")

	s := tokenstore.Open(path, nil)
	if _, ok := s.Get(); ok {
		t.Fatal("new store should have no credential")
	}

	s.Set("T1")
	if got, ok := s.Get(); !ok || got != "T1" {
		t.Fatalf("Get()=(%q, %v), want (T1, true)", got, ok)
	}

	reopened := tokenstore.Open(path, nil)
	if got, ok := reopened.Get(); !ok || got != "T1" {
		t.Fatalf("reopened Get()=(%q, %v), want (T1, true)", got, ok)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("file mode=%v, want 0600", info.Mode().Perm())
	}
}

func TestStore_ClearPersistsNull(t *testing.T) {
	path := filepath.Join(t.TempDir(), "auth-store.json")
	s := tokenstore.Open(path, nil)
	s.Set("T1")
	s.Clear()

	if _, ok := tokenstore.Open(path, nil).Get(); ok {
		t.Fatal("cleared credential should not survive reopen")
	}
	data, _ := os.ReadFile(path)
	want := `"accessToken": null`
	if !strings.Contains(string(data), want) {
		t.Errorf("persisted record %s does not contain %s", data, want)
	}
}

func TestStore_VersionMismatchIgnored(t *testing.T) {
	path := filepath.Join(t.TempDir(), "auth-store.json")
	old := `{"name":"auth-store","version":0,"state":{"accessToken":"OLD"}}`
	if err := os.WriteFile(path, []byte(old), 0600); err != nil {
		t.Fatal(err)
	}
	if _, ok := tokenstore.Open(path, nil).Get(); ok {
		t.Fatal("record with another version must read as no credential")
	}
}

func TestStore_CorruptFileIgnored(t *testing.T) {
	path := filepath.Join(t.TempDir(), "auth-store.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, ok := tokenstore.Open(path, nil).Get(); ok {
		t.Fatal("corrupt record must read as no credential")
	}
}

func TestStore_WriteFailureSwallowed(t *testing.T) {
	// Parent is a regular file, so MkdirAll fails.
	parent := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(parent, nil, 0600); err != nil {
		t.Fatal(err)
	}
	s := tokenstore.Open(filepath.Join(parent, "auth-store.json"), nil)
	s.Set("T1")
	if got, _ := s.Get(); got != "T1" {
		t.Fatalf("in-memory value should still update, got %q", got)
	}
}

func TestStore_Subscribe(t *testing.T) {
	s := tokenstore.NewMemory()

	var seen []string
	unsubscribe := s.Subscribe(func(token string, ok bool) {
		if !ok {
			token = "<none>"
		}
		seen = append(seen, token)
	})

	s.Set("A")
	s.Clear()
	unsubscribe()
	unsubscribe()
	s.Set("B")

	if len(seen) != 2 || seen[0] != "A" || seen[1] != "<none>" {
		t.Fatalf("listener saw %v, want [A <none>]", seen)
	}
}

func TestStore_TokenReadsLatestValue(t *testing.T) {
	s := tokenstore.NewMemory()

	tok, err := s.Token()
	if err != nil {
		t.Fatalf("Token() err=%v", err)
	}
	if tok.AccessToken != "" || tok.Type() != "Bearer" {
		t.Errorf("empty store token=%+v", tok)
	}

	s.Set("T2")
	tok, _ = s.Token()
	if tok.AccessToken != "T2" {
		t.Errorf("AccessToken=%q, want T2", tok.AccessToken)
	}
}
