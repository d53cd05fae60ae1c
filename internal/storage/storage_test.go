package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestMemory_GetSetRemove(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	if _, ok, _ := m.Get(ctx, KeyAccessToken); ok {
		t.Fatalf("expected empty store")
	}
	_ = m.Set(ctx, KeyAccessToken, "tok")
	v, ok, err := m.Get(ctx, KeyAccessToken)
	if err != nil || !ok || v != "tok" {
		t.Fatalf("unexpected value: %q %v %v", v, ok, err)
	}
	_ = m.Remove(ctx, KeyAccessToken, KeyUser)
	if _, ok, _ := m.Get(ctx, KeyAccessToken); ok {
		t.Fatalf("expected removed")
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	st, err := Open(ctx, Options{Backend: "memory"})
	if err != nil {
		t.Fatalf("Open(memory): %v", err)
	}
	if _, ok := st.(*Memory); !ok {
		t.Fatalf("expected *Memory, got %T", st)
	}

	st, err = Open(ctx, Options{File: filepath.Join(t.TempDir(), "c.json")})
	if err != nil {
		t.Fatalf("Open(default): %v", err)
	}
	if _, ok := st.(*File); !ok {
		t.Fatalf("expected *File, got %T", st)
	}

	_, err = Open(ctx, Options{Backend: "etcd"})
	if !errors.Is(err, ErrUnknownBackend) {
		t.Fatalf("expected ErrUnknownBackend, got %v", err)
	}
}

func TestRedis_RoundTrip(t *testing.T) {
	addr := os.Getenv("CONSOLE_TEST_REDIS_URL")
	if addr == "" {
		t.Skip("CONSOLE_TEST_REDIS_URL not set")
	}
	ctx := context.Background()
	r, err := DialRedis(ctx, RedisOptions{Addr: addr, Prefix: "purecerts:test:" + t.Name() + ":"})
	if err != nil {
		t.Fatalf("DialRedis: %v", err)
	}
	defer r.Close()
	defer func() { _ = r.Remove(ctx, SessionKeys...) }()

	if err := r.Set(ctx, KeyRefreshToken, "rt"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	v, ok, err := r.Get(ctx, KeyRefreshToken)
	if err != nil || !ok || v != "rt" {
		t.Fatalf("unexpected value: %q %v %v", v, ok, err)
	}
	if err := r.Remove(ctx, KeyRefreshToken); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, ok, err := r.Get(ctx, KeyRefreshToken); ok || err != nil {
		t.Fatalf("expected missing key, got ok=%v err=%v", ok, err)
	}
}
