package httpx

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// FileStore is the storage behind /files/. Names are slash-separated and
// relative to the store's root.
type FileStore interface {
	Exists(name string) bool
	Read(name string) ([]byte, error)
	Write(name string, data []byte) error
}

// CheckName rejects names that are empty, absolute, contain NUL or
// backslashes, or have empty, "." or ".." segments.
func CheckName(name string) error {
	if name == "" || strings.ContainsAny(name, "\x00\\") {
		return fmt.Errorf("%w: %q", ErrInvalidPath, name)
	}
	for _, seg := range strings.Split(name, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return fmt.Errorf("%w: %q", ErrInvalidPath, name)
		}
	}
	return nil
}

// DirStore is a FileStore rooted at a local directory. Writes replace the
// whole file atomically and never create parent directories. Operations on
// the same name are serialized: one writer or many readers.
type DirStore struct {
	root  string
	locks pathLocks
}

func NewDirStore(root string) (*DirStore, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	fi, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("httpx: %s is not a directory", abs)
	}
	return &DirStore{root: abs}, nil
}

// Root returns the absolute base directory.
func (s *DirStore) Root() string { return s.root }

func (s *DirStore) resolve(name string) (string, error) {
	if err := CheckName(name); err != nil {
		return "", err
	}
	p := filepath.Join(s.root, filepath.FromSlash(name))
	rel, err := filepath.Rel(s.root, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q escapes store", ErrInvalidPath, name)
	}
	return p, nil
}

func (s *DirStore) Exists(name string) bool {
	p, err := s.resolve(name)
	if err != nil {
		return false
	}
	unlock := s.locks.rlock(p)
	defer unlock()
	fi, err := os.Stat(p)
	return err == nil && fi.Mode().IsRegular()
}

func (s *DirStore) Read(name string) ([]byte, error) {
	p, err := s.resolve(name)
	if err != nil {
		return nil, err
	}
	unlock := s.locks.rlock(p)
	defer unlock()
	fi, err := os.Stat(p)
	if errors.Is(err, fs.ErrNotExist) || (err == nil && !fi.Mode().IsRegular()) {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, name)
	}
	if err != nil {
		return nil, err
	}
	return os.ReadFile(p)
}

func (s *DirStore) Write(name string, data []byte) error {
	p, err := s.resolve(name)
	if err != nil {
		return err
	}
	unlock := s.locks.lock(p)
	defer unlock()
	if err := writeFileAtomic(p, data); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrFileWrite, name, err)
	}
	return nil
}

// writeFileAtomic writes to a temp file next to p and renames it over p.
func writeFileAtomic(p string, data []byte) error {
	f, err := os.CreateTemp(filepath.Dir(p), ".tinyhttp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer os.Remove(tmp) // no-op after a successful rename
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Chmod(0o644); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, p)
}

// pathLocks hands out a RWMutex per path and drops it once unused.
type pathLocks struct {
	mu sync.Mutex
	m  map[string]*pathLock
}

type pathLock struct {
	sync.RWMutex
	refs int
}

func (l *pathLocks) acquire(p string) *pathLock {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.m == nil {
		l.m = make(map[string]*pathLock)
	}
	pl := l.m[p]
	if pl == nil {
		pl = &pathLock{}
		l.m[p] = pl
	}
	pl.refs++
	return pl
}

func (l *pathLocks) release(p string, pl *pathLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	pl.refs--
	if pl.refs == 0 {
		delete(l.m, p)
	}
}

func (l *pathLocks) lock(p string) func() {
	pl := l.acquire(p)
	pl.Lock()
	return func() {
		pl.Unlock()
		l.release(p, pl)
	}
}

func (l *pathLocks) rlock(p string) func() {
	pl := l.acquire(p)
	pl.RLock()
	return func() {
		pl.RUnlock()
		l.release(p, pl)
	}
}

func (l *pathLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.m)
}
