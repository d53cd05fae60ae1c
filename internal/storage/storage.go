package storage

import (
	"context"
	"errors"
	"fmt"
)

// Keys of the persisted client state.
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	KeyUser         = "user"
)

// SessionKeys lists every key owned by the session; sign-out purges all of them.
var SessionKeys = []string{KeyAccessToken, KeyRefreshToken, KeyUser}

var ErrUnknownBackend = errors.New("unknown credentials backend")

// Storage is the key-value store that survives a console restart.
// Get reports ok=false for a missing key; Remove ignores missing keys.
type Storage interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, keys ...string) error
}

type Options struct {
	Backend       string
	File          string
	RedisAddr     string
	RedisPassword string
	RedisPrefix   string
}

// Open builds the backend named by opts.Backend ("file", "redis" or "memory").
func Open(ctx context.Context, opts Options) (Storage, error) {
	switch opts.Backend {
	case "", "file":
		return NewFile(opts.File)
	case "redis":
		return DialRedis(ctx, RedisOptions{Addr: opts.RedisAddr, Password: opts.RedisPassword, Prefix: opts.RedisPrefix})
	case "memory":
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
}
