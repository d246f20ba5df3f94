package state

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/grovetools/focus/errors"
	"golang.org/x/sys/unix"
	"gopkg.in/yaml.v3"
)

// FileStore keeps all keys in a single YAML document.
// Every operation re-reads the file so writes from other processes are seen.
// Writes hold an exclusive flock on "<path>.lock" across read and write, so
// concurrent focus processes never drop each other's keys.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore returns a store backed by the YAML file at path.
// The file is created on first write.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

// load reads the document. Returns an empty map if the file doesn't exist.
func (s *FileStore) load() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]string), nil
		}
		return nil, errors.Wrap(err, errors.ErrCodeStorageRead, "read state file").
			WithDetail("path", s.path)
	}

	var values map[string]string
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageRead, "parse state file").
			WithDetail("path", s.path)
	}
	if values == nil {
		values = make(map[string]string)
	}
	return values, nil
}

// save writes the document via a temp file and rename so readers never
// observe a partial write.
func (s *FileStore) save(values map[string]string) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageWrite, "create state directory").
			WithDetail("path", dir)
	}

	data, err := yaml.Marshal(values)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageWrite, "marshal state")
	}

	tmp, err := os.CreateTemp(dir, ".state-*.yml")
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageWrite, "create temp state file")
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrap(err, errors.ErrCodeStorageWrite, "write state file")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, errors.ErrCodeStorageWrite, "close state file")
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, errors.ErrCodeStorageWrite, "replace state file").
			WithDetail("path", s.path)
	}
	return nil
}

// lockPath returns the sidecar file used for cross-process locking. The
// document itself is replaced by rename, so it cannot carry the lock.
func (s *FileStore) lockPath() string {
	return s.path + ".lock"
}

// withLock runs fn while holding the cross-process lock.
func (s *FileStore) withLock(fn func() error) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageWrite, "create state directory").
			WithDetail("path", filepath.Dir(s.path))
	}
	f, err := os.OpenFile(s.lockPath(), os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageWrite, "open state lock").
			WithDetail("path", s.lockPath())
	}
	defer f.Close()

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX); err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageWrite, "lock state file").
			WithDetail("path", s.lockPath())
	}
	defer unix.Flock(int(f.Fd()), unix.LOCK_UN)

	return fn()
}

// Get retrieves a value by key.
func (s *FileStore) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		return "", false, err
	}
	val, ok := values[key]
	return val, ok, nil
}

// Set sets a value.
func (s *FileStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withLock(func() error {
		values, err := s.load()
		if err != nil {
			return err
		}
		values[key] = value
		return s.save(values)
	})
}

// Delete removes a key.
func (s *FileStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withLock(func() error {
		values, err := s.load()
		if err != nil {
			return err
		}
		if _, ok := values[key]; !ok {
			return nil
		}
		delete(values, key)
		return s.save(values)
	})
}

// Close is a no-op for FileStore.
func (s *FileStore) Close() error {
	return nil
}
