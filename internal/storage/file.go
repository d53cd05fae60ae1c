package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const fileVersion = 1

// File keeps the credentials in memory and rewrites a JSON state file on every
// change. Writes go through a temp file + rename so a crash never leaves a
// half-written file behind.
type File struct {
	path string

	mu     sync.RWMutex
	values map[string]string

	persistMu sync.Mutex
}

type persistedFile struct {
	Version int               `json:"version"`
	Values  map[string]string `json:"values"`
	SavedAt int64             `json:"savedAt"`
}

func NewFile(path string) (*File, error) {
	if path == "" {
		return nil, errors.New("storage: credentials file path is required")
	}
	f := &File{path: path, values: make(map[string]string)}
	if err := f.load(); err != nil {
		return nil, fmt.Errorf("storage: load %s: %w", path, err)
	}
	return f, nil
}

func (f *File) Path() string { return f.path }

func (f *File) load() error {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if len(data) == 0 {
		return nil
	}

	var file persistedFile
	if err := json.Unmarshal(data, &file); err != nil {
		return err
	}
	if file.Version != fileVersion {
		return errors.New("unsupported credentials file version")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for k, v := range file.Values {
		f.values[k] = v
	}
	return nil
}

func (f *File) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	v, ok := f.values[key]
	return v, ok, nil
}

func (f *File) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	f.values[key] = value
	snapshot := f.snapshotLocked()
	f.mu.Unlock()
	return f.persist(snapshot)
}

func (f *File) Remove(_ context.Context, keys ...string) error {
	f.mu.Lock()
	changed := false
	for _, k := range keys {
		if _, ok := f.values[k]; ok {
			delete(f.values, k)
			changed = true
		}
	}
	snapshot := f.snapshotLocked()
	f.mu.Unlock()
	if !changed {
		return nil
	}
	return f.persist(snapshot)
}

func (f *File) snapshotLocked() map[string]string {
	out := make(map[string]string, len(f.values))
	for k, v := range f.values {
		out[k] = v
	}
	return out
}

func (f *File) persist(values map[string]string) error {
	f.persistMu.Lock()
	defer f.persistMu.Unlock()

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("storage: mkdir %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(persistedFile{Version: fileVersion, Values: values, SavedAt: time.Now().UnixMilli()}, "", "  ")
	if err != nil {
		return fmt.Errorf("storage: marshal: %w", err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("storage: chmod temp: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("storage: sync temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	return nil
}
