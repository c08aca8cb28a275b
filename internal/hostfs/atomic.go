package hostfs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/hnrobert/ttylogin/internal/logger"
)

// locks serializes access per path within this process.
var locks sync.Map // map[string]*sync.Mutex

func lockPath(path string) func() {
	v, _ := locks.LoadOrStore(filepath.Clean(path), &sync.Mutex{})
	m := v.(*sync.Mutex)
	m.Lock()
	return m.Unlock
}

func ReadFile(path string) ([]byte, error) {
	defer lockPath(path)()
	return os.ReadFile(path)
}

// Exists reports whether path can be stat'ed.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// WriteFileAtomic replaces path with data, creating the parent directory when
// missing. Readers see either the old or the new content, except on
// filesystems that refuse the rename (bind mounts, read-only directories),
// where the file is rewritten in place.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	defer lockPath(path)()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmpName, err := writeTemp(dir, data, perm)
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	defer func() { _ = os.Remove(tmpName) }()

	if err := os.Rename(tmpName, path); err != nil {
		if !renameRefused(err) {
			return err
		}
		logger.Warn("rename over %s refused (%v); rewriting in place", path, err)
		return rewriteInPlace(path, data, perm)
	}
	syncDir(dir)
	return nil
}

// writeTemp stores data in a synced hidden file inside dir and returns its name.
func writeTemp(dir string, data []byte, perm os.FileMode) (string, error) {
	tmp, err := os.CreateTemp(dir, ".ttylogin-*")
	if err != nil {
		return "", err
	}
	name := tmp.Name()
	err = errors.Join(
		writeAll(tmp, data),
		tmp.Chmod(perm),
		tmp.Sync(),
	)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(name)
		return "", err
	}
	return name, nil
}

func writeAll(f *os.File, data []byte) error {
	_, err := f.Write(data)
	return err
}

func renameRefused(err error) bool {
	return errors.Is(err, syscall.EBUSY) || errors.Is(err, syscall.EXDEV) || errors.Is(err, syscall.EPERM)
}

func rewriteInPlace(path string, data []byte, perm os.FileMode) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, perm)
	if err != nil {
		return err
	}
	if err := writeAll(f, data); err != nil {
		_ = f.Close()
		return err
	}
	_ = f.Sync()
	return f.Close()
}

// syncDir makes a completed rename durable. Failures are ignored; the data
// itself is already synced.
func syncDir(dir string) {
	if d, err := os.Open(dir); err == nil {
		_ = d.Sync()
		_ = d.Close()
	}
}
