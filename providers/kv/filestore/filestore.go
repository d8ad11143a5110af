// Package filestore keeps every key in one JSON document on disk, so the
// saved configuration and history survive restarts without a database.
//
// Values must be valid JSON; they are embedded verbatim so the file stays
// readable and hand-editable. Writes go to a temporary file that is renamed
// over the original.
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/leofalp/sqlcopilot/providers/kv"
)

// Store is a kv.Store backed by a single JSON file.
type Store struct {
	path string
	mu   sync.Mutex
}

var _ kv.Store = (*Store)(nil)

// New returns a Store for path, creating the parent directory. The file
// itself is created on first write.
func New(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("filestore: empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("filestore: create directory: %w", err)
	}
	return &Store{path: path}, nil
}

// Path returns the backing file.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	document, err := s.load()
	if err != nil {
		return nil, err
	}
	value, ok := document[key]
	if !ok {
		return nil, kv.ErrNotFound
	}
	return slices.Clone([]byte(value)), nil
}

func (s *Store) Set(_ context.Context, key string, value []byte) error {
	if !json.Valid(value) {
		return fmt.Errorf("filestore: value for %q is not valid JSON", key)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	document, err := s.load()
	if err != nil {
		return err
	}
	document[key] = json.RawMessage(slices.Clone(value))
	return s.save(document)
}

func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	document, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := document[key]; !ok {
		return nil
	}
	delete(document, key)
	return s.save(document)
}

// load reads the whole document. A missing or empty file is an empty store.
func (s *Store) load() (map[string]json.RawMessage, error) {
	document := make(map[string]json.RawMessage)

	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return document, nil
	}
	if err != nil {
		return nil, fmt.Errorf("filestore: read %s: %w", s.path, err)
	}
	if len(raw) == 0 {
		return document, nil
	}
	if err := json.Unmarshal(raw, &document); err != nil {
		return nil, fmt.Errorf("filestore: decode %s: %w", s.path, err)
	}
	return document, nil
}

func (s *Store) save(document map[string]json.RawMessage) error {
	raw, err := json.MarshalIndent(document, "", "  ")
	if err != nil {
		return fmt.Errorf("filestore: encode: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("filestore: create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("filestore: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("filestore: close: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("filestore: replace %s: %w", s.path, err)
	}
	return nil
}
