// Package file stores all keys in one JSON object document, the on-disk
// counterpart of browser local storage.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/frahmantamala/employee-management/internal/storage"
	"github.com/spf13/afero"
)

var _ storage.KV = (*Store)(nil)

type Store struct {
	fs     afero.Fs
	path   string
	mu     sync.Mutex
	data   map[string]string
	closed bool
}

// Open loads the document at path, creating its directory if needed. A missing
// file is an empty store; an unparsable one fails with storage.ErrCorrupt.
//
// Other processes may write the same file, so every operation re-reads the
// document before using it and writes merge into what is on disk.
func Open(fs afero.Fs, path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("file store: create dir %s: %w", dir, err)
		}
	}

	s := &Store{fs: fs, path: path}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// OpenOS opens path on the real filesystem.
func OpenOS(path string) (*Store, error) {
	return Open(afero.NewOsFs(), path)
}

func (s *Store) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", false, storage.ErrClosed
	}
	if err := s.load(); err != nil {
		return "", false, err
	}
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *Store) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return storage.ErrClosed
	}
	if err := s.load(); err != nil {
		return err
	}
	prev, had := s.data[key]
	s.data[key] = value
	if err := s.flush(); err != nil {
		if had {
			s.data[key] = prev
		} else {
			delete(s.data, key)
		}
		return err
	}
	return nil
}

func (s *Store) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return storage.ErrClosed
	}
	if err := s.load(); err != nil {
		return err
	}
	prev, had := s.data[key]
	if !had {
		return nil
	}
	delete(s.data, key)
	if err := s.flush(); err != nil {
		s.data[key] = prev
		return err
	}
	return nil
}

func (s *Store) Ping(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return storage.ErrClosed
	}
	dir := filepath.Dir(s.path)
	if dir == "." || dir == "" {
		return nil
	}
	_, err := s.fs.Stat(dir)
	return err
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// load replaces the cached document with the one on disk. Caller holds mu.
func (s *Store) load() error {
	data := make(map[string]string)

	raw, err := afero.ReadFile(s.fs, s.path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return fmt.Errorf("file store: read %s: %w", s.path, err)
	case len(raw) > 0:
		if err := json.Unmarshal(raw, &data); err != nil {
			return fmt.Errorf("%w: document %s: %v", storage.ErrCorrupt, s.path, err)
		}
	}
	if data == nil {
		data = make(map[string]string)
	}

	s.data = data
	return nil
}

// flush writes the whole document through a temp file and rename. Caller holds mu.
func (s *Store) flush() error {
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("file store: encode: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, raw, 0o600); err != nil {
		return fmt.Errorf("file store: write %s: %w", tmp, err)
	}
	if err := s.fs.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("file store: rename %s: %w", tmp, err)
	}
	return nil
}
