package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestFile_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "creds", "console.json")

	f1, err := NewFile(path)
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}
	if err := f1.Set(ctx, KeyAccessToken, "tok-1"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := f1.Set(ctx, KeyUser, `{"userId":"u1"}`); err != nil {
		t.Fatalf("Set: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("expected state file written: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("expected state file mode 0600, got %o", info.Mode().Perm())
	}

	f2, err := NewFile(path)
	if err != nil {
		t.Fatalf("NewFile(reload): %v", err)
	}
	tok, ok, err := f2.Get(ctx, KeyAccessToken)
	if err != nil || !ok || tok != "tok-1" {
		t.Fatalf("unexpected token after reload: %q %v %v", tok, ok, err)
	}
	user, ok, _ := f2.Get(ctx, KeyUser)
	if !ok || user != `{"userId":"u1"}` {
		t.Fatalf("unexpected user after reload: %q", user)
	}
}

func TestFile_RemovePersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "console.json")

	f1, err := NewFile(path)
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}
	for _, k := range SessionKeys {
		if err := f1.Set(ctx, k, "v-"+k); err != nil {
			t.Fatalf("Set(%s): %v", k, err)
		}
	}
	if err := f1.Remove(ctx, SessionKeys...); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := f1.Remove(ctx, "missing"); err != nil {
		t.Fatalf("Remove(missing): %v", err)
	}

	f2, err := NewFile(path)
	if err != nil {
		t.Fatalf("NewFile(reload): %v", err)
	}
	for _, k := range SessionKeys {
		if _, ok, _ := f2.Get(ctx, k); ok {
			t.Fatalf("expected %s removed", k)
		}
	}
}

func TestFile_RejectsUnknownVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "console.json")
	if err := os.WriteFile(path, []byte(`{"version":9,"values":{}}`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := NewFile(path); err == nil {
		t.Fatalf("expected error")
	}
}

func TestFile_RequiresPath(t *testing.T) {
	if _, err := NewFile(""); err == nil {
		t.Fatalf("expected error")
	}
}
