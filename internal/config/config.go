package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

type Config struct {
	// ListenHost is the interface the console binds to; loopback unless overridden.
	ListenHost  string
	Port        int
	GinMode     string
	TLSCertFile string
	TLSKeyFile  string

	// APIBaseURL is where the remote PureCerts service answers.
	APIBaseURL string

	CredentialsBackend string
	CredentialsFile    string
	RedisAddr          string
	RedisPassword      string
	RedisKeyPrefix     string

	RevokeTimeout time.Duration
	// LoginRateLimit is sign-in attempts per minute per client; 0 disables it.
	LoginRateLimit int
}

type Env interface {
	Getenv(key string) string
}

type osEnv struct{}

func (osEnv) Getenv(key string) string { return os.Getenv(key) }

// LoadConfig reads an optional .env file from the working directory and then
// the process environment. Variables already set win over the file.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("config: ignoring .env: %v", err)
	}
	return LoadConfigFromEnv(osEnv{})
}

func LoadConfigFromEnv(env Env) (Config, error) {
	cfg := Config{
		ListenHost:         "127.0.0.1",
		Port:               3000,
		GinMode:            "release",
		CredentialsBackend: BackendFile,
		RedisAddr:          "localhost:6379",
		RedisKeyPrefix:     "purecerts:console:",
		RevokeTimeout:      5 * time.Second,
		LoginRateLimit:     10,
	}

	if raw := env.Getenv("PORT"); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil || port <= 0 || port > 65535 {
			return Config{}, fmt.Errorf("invalid PORT")
		}
		cfg.Port = port
	}

	if raw := env.Getenv("LISTEN_HOST"); raw != "" {
		cfg.ListenHost = raw
	}

	if raw := env.Getenv("GIN_MODE"); raw != "" {
		cfg.GinMode = raw
	}

	cfg.TLSCertFile = env.Getenv("TLS_CERT_FILE")
	cfg.TLSKeyFile = env.Getenv("TLS_KEY_FILE")
	if (cfg.TLSCertFile == "") != (cfg.TLSKeyFile == "") {
		return Config{}, fmt.Errorf("TLS_CERT_FILE and TLS_KEY_FILE must be set together")
	}

	cfg.APIBaseURL = strings.TrimRight(env.Getenv("API_BASE_URL"), "/")
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = "http://localhost:" + strconv.Itoa(cfg.Port)
	}
	if u, err := url.Parse(cfg.APIBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return Config{}, fmt.Errorf("invalid API_BASE_URL")
	}

	if raw := env.Getenv("CREDENTIALS_BACKEND"); raw != "" {
		cfg.CredentialsBackend = strings.ToLower(raw)
	}
	switch cfg.CredentialsBackend {
	case BackendFile:
		cfg.CredentialsFile = env.Getenv("CREDENTIALS_FILE")
		if cfg.CredentialsFile == "" {
			home := env.Getenv("HOME")
			if home == "" {
				return Config{}, fmt.Errorf("CREDENTIALS_FILE is required when HOME is unset")
			}
			cfg.CredentialsFile = filepath.Join(home, ".purecerts", "console-credentials.json")
		}
	case BackendRedis:
		if raw := env.Getenv("REDIS_URL"); raw != "" {
			cfg.RedisAddr = raw
		}
		cfg.RedisPassword = env.Getenv("REDIS_PASSWORD")
		if raw := env.Getenv("REDIS_KEY_PREFIX"); raw != "" {
			cfg.RedisKeyPrefix = raw
		}
	case BackendMemory:
	default:
		return Config{}, fmt.Errorf("invalid CREDENTIALS_BACKEND %q", cfg.CredentialsBackend)
	}

	if raw := env.Getenv("REVOKE_TIMEOUT_SECONDS"); raw != "" {
		seconds, err := strconv.Atoi(raw)
		if err != nil || seconds <= 0 {
			return Config{}, fmt.Errorf("invalid REVOKE_TIMEOUT_SECONDS")
		}
		cfg.RevokeTimeout = time.Duration(seconds) * time.Second
	}

	if raw := env.Getenv("LOGIN_RATE_LIMIT"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return Config{}, fmt.Errorf("invalid LOGIN_RATE_LIMIT")
		}
		cfg.LoginRateLimit = limit
	}

	return cfg, nil
}
