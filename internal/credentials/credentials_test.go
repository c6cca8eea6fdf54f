package credentials

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return s
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	s := newTestStore(t)

	if err := s.Save("192.168.1.2", "user1"); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, found, err := s.Load("192.168.1.2")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !found {
		t.Fatal("expected username to be found")
	}
	if got != "user1" {
		t.Fatalf("got %q, want user1", got)
	}
}

func TestLoadNonexistentFile(t *testing.T) {
	s := newTestStore(t)

	_, found, err := s.Load("192.168.1.2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found {
		t.Fatal("expected username not found")
	}
}

func TestLoadOtherBridge(t *testing.T) {
	s := newTestStore(t)

	if err := s.Save("bridge-1", "u"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	_, found, err := s.Load("bridge-2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found {
		t.Fatal("expected username not found for other bridge")
	}
}

func TestMultipleBridgesPreserved(t *testing.T) {
	s := newTestStore(t)

	if err := s.Save("bridge-1", "user1"); err != nil {
		t.Fatalf("Save bridge-1: %v", err)
	}
	if err := s.Save("bridge-2", "user2"); err != nil {
		t.Fatalf("Save bridge-2: %v", err)
	}
	if err := s.Save("bridge-1", "user1b"); err != nil {
		t.Fatalf("Save bridge-1 again: %v", err)
	}

	got1, _, _ := s.Load("bridge-1")
	got2, _, _ := s.Load("bridge-2")
	if got1 != "user1b" || got2 != "user2" {
		t.Fatalf("got %q and %q, want user1b and user2", got1, got2)
	}
}

func TestLoadTrimsHandEditedUsername(t *testing.T) {
	s := newTestStore(t)

	data := "bridge-1:\n  username: \"  abc123 \"\n"
	if err := os.WriteFile(s.Path(), []byte(data), 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, found, err := s.Load("bridge-1")
	if err != nil || !found {
		t.Fatalf("Load: found=%v err=%v", found, err)
	}
	if got != "abc123" {
		t.Fatalf("got %q, want abc123", got)
	}
}

func TestLoadCorruptFile(t *testing.T) {
	s := newTestStore(t)

	if err := os.WriteFile(s.Path(), []byte("- not\n- a map\n"), 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, _, err := s.Load("bridge-1"); err == nil {
		t.Fatal("expected error for corrupt file")
	}
}

func TestSaveCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "dir")
	s, err := NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	if err := s.Save("b1", "u"); err != nil {
		t.Fatalf("Save: %v", err)
	}

	info, err := os.Stat(filepath.Join(dir, "credentials.yaml"))
	if err != nil {
		t.Fatalf("credentials file not created: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Fatalf("file permissions: got %o, want 0600", info.Mode().Perm())
	}
}

func TestCredentialError(t *testing.T) {
	cause := errors.New("link button not pressed")
	err := &CredentialError{Bridge: "10.0.0.2", Err: cause}
	if !errors.Is(err, cause) {
		t.Error("expected CredentialError to unwrap to its cause")
	}
	if !strings.Contains(err.Error(), "10.0.0.2") {
		t.Errorf("expected bridge in message, got %q", err.Error())
	}
	if got := (&CredentialError{Bridge: "b"}).Error(); got != "no username for bridge b" {
		t.Errorf("unexpected message %q", got)
	}
}
