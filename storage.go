package content

import (
	"io"
	"os"
	"path/filepath"
)

// Storage abstracts the bytes-on-disk side of media handling so tests
// and future providers can swap the backend.
type Storage interface {
	Write(key string, body io.Reader) error
	Unlink(key string) error
	Exists(key string) (bool, error)
}

// LocalStorage writes files under a root directory. Keys use forward
// slashes and resolve relative to the root.
type LocalStorage struct {
	RootPath string
}

func NewLocalStorage(root string) *LocalStorage {
	_ = os.MkdirAll(root, 0755)
	return &LocalStorage{RootPath: root}
}

func (l *LocalStorage) path(key string) string {
	return filepath.Join(l.RootPath, filepath.FromSlash(key))
}

func (l *LocalStorage) Write(key string, body io.Reader) error {
	path := l.path(key)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = io.Copy(f, body)
	return err
}

// Unlink removes the file. A key that is already gone is not an error.
func (l *LocalStorage) Unlink(key string) error {
	err := os.Remove(l.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (l *LocalStorage) Exists(key string) (bool, error) {
	_, err := os.Stat(l.path(key))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

var _ Storage = (*LocalStorage)(nil)
