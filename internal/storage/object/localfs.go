// internal/storage/object/localfs.go
package object

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jtrask/folio/internal/core"
)

// LocalFS implements Store on a local directory
type LocalFS struct {
	basePath string
}

// NewLocalFS creates a LocalFS store rooted at basePath
func NewLocalFS(basePath string) (*LocalFS, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("creating base path: %w", err)
	}
	return &LocalFS{basePath: basePath}, nil
}

func (l *LocalFS) fullPath(key string) string {
	return filepath.Join(l.basePath, filepath.FromSlash(key))
}

func (l *LocalFS) Put(ctx context.Context, key string, data []byte) error {
	full := l.fullPath(key)
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return fmt.Errorf("creating directories: %w", err)
	}
	return os.WriteFile(full, data, 0644)
}

func (l *LocalFS) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(l.fullPath(key))
	if os.IsNotExist(err) {
		return nil, core.WrapError(core.ErrObjectNotFound, err)
	}
	if err != nil {
		return nil, core.WrapError(core.ErrStorageFailed, err)
	}
	return data, nil
}

func (l *LocalFS) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	searchPath := l.fullPath(prefix)

	err := filepath.Walk(searchPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			rel, _ := filepath.Rel(l.basePath, path)
			keys = append(keys, filepath.ToSlash(rel))
		}
		return nil
	})

	if os.IsNotExist(err) {
		return []string{}, nil
	}
	if err != nil {
		return nil, core.WrapError(core.ErrStorageFailed, err)
	}
	return keys, nil
}

func (l *LocalFS) Delete(ctx context.Context, key string) error {
	err := os.Remove(l.fullPath(key))
	if os.IsNotExist(err) {
		return core.WrapError(core.ErrObjectNotFound, err)
	}
	return err
}

func (l *LocalFS) Exists(ctx context.Context, key string) (bool, error) {
	_, err := os.Stat(l.fullPath(key))
	if os.IsNotExist(err) {
		return false, nil
	}
	return err == nil, err
}
