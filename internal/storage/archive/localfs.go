// internal/storage/archive/localfs.go
package archive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mfaber/hindsight/internal/core"
)

// LocalFS stores artifacts as plain files under a root directory.
type LocalFS struct {
	basePath string
}

// NewLocalFS creates the root directory if needed and returns a store
// rooted there.
func NewLocalFS(basePath string) (*LocalFS, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, core.WrapError(core.ErrStorageFailed, fmt.Errorf("creating artifact root: %w", err))
	}
	return &LocalFS{basePath: basePath}, nil
}

// fullPath resolves a store path against the root, rejecting anything that
// would escape it.
func (l *LocalFS) fullPath(path string) (string, error) {
	full := filepath.Join(l.basePath, filepath.FromSlash(path))
	if full != l.basePath && !strings.HasPrefix(full, l.basePath+string(filepath.Separator)) {
		return "", core.WrapError(core.ErrStorageFailed, fmt.Errorf("path %q escapes artifact root", path))
	}
	return full, nil
}

func (l *LocalFS) Write(_ context.Context, path string, data []byte) error {
	full, err := l.fullPath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return core.WrapError(core.ErrStorageFailed, err)
	}
	if err := os.WriteFile(full, data, 0644); err != nil {
		return core.WrapError(core.ErrStorageFailed, err)
	}
	return nil
}

func (l *LocalFS) Read(_ context.Context, path string) ([]byte, error) {
	full, err := l.fullPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(full)
	if os.IsNotExist(err) {
		return nil, core.WrapError(core.ErrNotFound, fmt.Errorf("artifact %s", path))
	}
	if err != nil {
		return nil, core.WrapError(core.ErrStorageFailed, err)
	}
	return data, nil
}

func (l *LocalFS) List(_ context.Context, prefix string) ([]string, error) {
	root, err := l.fullPath(prefix)
	if err != nil {
		return nil, err
	}

	var paths []string
	walkErr := filepath.Walk(root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			rel, _ := filepath.Rel(l.basePath, p)
			paths = append(paths, filepath.ToSlash(rel))
		}
		return nil
	})
	if os.IsNotExist(walkErr) {
		return []string{}, nil
	}
	if walkErr != nil {
		return nil, core.WrapError(core.ErrStorageFailed, walkErr)
	}
	return paths, nil
}

func (l *LocalFS) Delete(_ context.Context, path string) error {
	full, err := l.fullPath(path)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil {
		if os.IsNotExist(err) {
			return core.WrapError(core.ErrNotFound, fmt.Errorf("artifact %s", path))
		}
		return core.WrapError(core.ErrStorageFailed, err)
	}
	return nil
}

func (l *LocalFS) Exists(_ context.Context, path string) (bool, error) {
	full, err := l.fullPath(path)
	if err != nil {
		return false, err
	}
	_, statErr := os.Stat(full)
	if os.IsNotExist(statErr) {
		return false, nil
	}
	if statErr != nil {
		return false, core.WrapError(core.ErrStorageFailed, statErr)
	}
	return true, nil
}
