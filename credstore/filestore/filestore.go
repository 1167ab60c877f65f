// Package filestore provides a credential store backed by a YAML file.
//
// The whole file is rewritten on every change through a temporary file and
// a rename, so a crash never leaves a half-written document behind.
package filestore

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/jrsteele09/go-booking-client/credstore"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

var _ credstore.Store = (*FileStore)(nil)

// FileStore keeps credentials in a single YAML document.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// New returns a FileStore for path. The file and its directory are created
// on the first write.
func New(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Get(ctx context.Context, name string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, credstore.Wrap(credstore.OpGet, name, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		return "", false, credstore.Wrap(credstore.OpGet, name, err)
	}
	v, ok := values[name]
	return v, ok, nil
}

func (s *FileStore) Set(ctx context.Context, name, value string) error {
	if err := ctx.Err(); err != nil {
		return credstore.Wrap(credstore.OpSet, name, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		return credstore.Wrap(credstore.OpSet, name, err)
	}
	values[name] = value
	return credstore.Wrap(credstore.OpSet, name, s.save(values))
}

func (s *FileStore) Remove(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return credstore.Wrap(credstore.OpRemove, name, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		return credstore.Wrap(credstore.OpRemove, name, err)
	}
	if _, ok := values[name]; !ok {
		return nil
	}
	delete(values, name)
	return credstore.Wrap(credstore.OpRemove, name, s.save(values))
}

func (s *FileStore) load() (map[string]string, error) {
	values := make(map[string]string)
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return values, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "load os.ReadFile")
	}
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, errors.Wrap(err, "load yaml.Unmarshal")
	}
	if values == nil {
		values = make(map[string]string)
	}
	return values, nil
}

func (s *FileStore) save(values map[string]string) error {
	data, err := yaml.Marshal(values)
	if err != nil {
		return errors.Wrap(err, "save yaml.Marshal")
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return errors.Wrap(err, "save os.MkdirAll")
	}

	tmp, err := os.CreateTemp(dir, ".credentials-*")
	if err != nil {
		return errors.Wrap(err, "save os.CreateTemp")
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op once renamed

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "save tmp.Write")
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return errors.Wrap(err, "save tmp.Chmod")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "save tmp.Close")
	}
	return errors.Wrap(os.Rename(tmpName, s.path), "save os.Rename")
}
