package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofrs/flock"

	"github.com/preston-bernstein/f1-data-service/internal/document"
)

const (
	defaultLockTimeout = 5 * time.Second
	lockRetryDelay     = 25 * time.Millisecond
)

// FileStore keeps the canonical teams document in a single JSON file.
// Reads take a shared lock and read-modify-write cycles an exclusive one,
// on a sibling ".lock" file so the data file itself can be replaced by rename.
type FileStore struct {
	path        string
	lockPath    string
	lockTimeout time.Duration
}

// NewFileStore constructs a store for the document at path.
func NewFileStore(path string, lockTimeout time.Duration) *FileStore {
	if lockTimeout <= 0 {
		lockTimeout = defaultLockTimeout
	}
	return &FileStore{
		path:        path,
		lockPath:    path + ".lock",
		lockTimeout: lockTimeout,
	}
}

// Path exposes the data file location.
func (s *FileStore) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// View loads the current document without modifying the file.
func (s *FileStore) View(ctx context.Context) (*document.Document, error) {
	if s == nil {
		return nil, errors.New("file store not configured")
	}
	unlock, err := s.acquire(ctx, false)
	if err != nil {
		if readOnlyLock(err) {
			return s.read()
		}
		return nil, err
	}
	defer unlock()
	return s.read()
}

// Update loads the document, applies fn, and persists the result.
// If fn fails the file is not touched and fn's error is returned as is.
func (s *FileStore) Update(ctx context.Context, fn func(*document.Document) error) error {
	if s == nil {
		return errors.New("file store not configured")
	}
	unlock, err := s.acquire(ctx, true)
	if err != nil {
		return err
	}
	defer unlock()

	doc, err := s.read()
	if err != nil {
		return err
	}
	if err := fn(doc); err != nil {
		return err
	}
	return s.write(doc.Bytes())
}

func (s *FileStore) acquire(ctx context.Context, exclusive bool) (func(), error) {
	ctx, cancel := context.WithTimeout(ctx, s.lockTimeout)
	defer cancel()

	lock := flock.New(s.lockPath)
	var (
		ok  bool
		err error
	)
	if exclusive {
		ok, err = lock.TryLockContext(ctx, lockRetryDelay)
	} else {
		ok, err = lock.TryRLockContext(ctx, lockRetryDelay)
	}
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, &Error{Op: "lock", Path: s.lockPath, Err: ErrLockTimeout}
		}
		return nil, &Error{Op: "lock", Path: s.lockPath, Err: err}
	}
	if !ok {
		return nil, &Error{Op: "lock", Path: s.lockPath, Err: ErrLockTimeout}
	}
	return func() { _ = lock.Unlock() }, nil
}

// readOnlyLock reports whether the lock file could not be created because the
// data directory is not writable. Readers then proceed without a lock.
func readOnlyLock(err error) bool {
	return errors.Is(err, fs.ErrPermission) || errors.Is(err, syscall.EROFS)
}

func (s *FileStore) read() (*document.Document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, &Error{Op: "read", Path: s.path, Err: err}
	}
	doc, err := document.Parse(data)
	if err != nil {
		return nil, &Error{Op: "parse", Path: s.path, Err: err}
	}
	return doc, nil
}

func (s *FileStore) write(data []byte) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(s.path); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return &Error{Op: "write", Path: s.path, Err: err}
	}
	tmpName := tmp.Name()
	fail := func(err error) error {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return &Error{Op: "write", Path: s.path, Err: err}
	}

	if _, err := tmp.Write(document.Pretty(data)); err != nil {
		return fail(err)
	}
	if err := tmp.Sync(); err != nil {
		return fail(err)
	}
	if err := tmp.Chmod(mode); err != nil {
		return fail(err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return &Error{Op: "write", Path: s.path, Err: err}
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return &Error{Op: "write", Path: s.path, Err: fmt.Errorf("replace: %w", err)}
	}
	return nil
}
