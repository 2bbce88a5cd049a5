package storage

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// LocalStorage serves a warehouse rooted at a local directory.
type LocalStorage struct {
	root string
}

func NewLocalStorage(root string) *LocalStorage {
	return &LocalStorage{root: root}
}

func (l *LocalStorage) fullPath(p string) string {
	return filepath.Join(l.root, filepath.FromSlash(p))
}

func (l *LocalStorage) Write(ctx context.Context, path string, data io.Reader) error {
	fullPath := l.fullPath(path)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("creating directories: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, data); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}

	return nil
}

func (l *LocalStorage) Read(ctx context.Context, path string) (io.ReadCloser, error) {
	file, err := os.Open(l.fullPath(path))
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	return file, nil
}

func (l *LocalStorage) List(ctx context.Context, prefix string) ([]string, error) {
	var files []string
	dir := l.fullPath(prefix)

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(l.root, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing files: %w", err)
	}

	return files, nil
}

func (l *LocalStorage) Exists(ctx context.Context, path string) (bool, error) {
	_, err := os.Stat(l.fullPath(path))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking file: %w", err)
	}
	return true, nil
}

func (l *LocalStorage) Delete(ctx context.Context, path string) error {
	if err := os.Remove(l.fullPath(path)); err != nil {
		return fmt.Errorf("deleting file: %w", err)
	}
	return nil
}

func (l *LocalStorage) RemoveAll(ctx context.Context, prefix string) error {
	if err := os.RemoveAll(l.fullPath(prefix)); err != nil {
		return fmt.Errorf("removing %s: %w", prefix, err)
	}
	return nil
}

func (l *LocalStorage) Rename(ctx context.Context, oldPrefix, newPrefix string) error {
	newPath := l.fullPath(newPrefix)
	if err := os.MkdirAll(filepath.Dir(newPath), 0755); err != nil {
		return fmt.Errorf("creating directories: %w", err)
	}
	if err := os.Rename(l.fullPath(oldPrefix), newPath); err != nil {
		return fmt.Errorf("renaming %s to %s: %w", oldPrefix, newPrefix, err)
	}
	return nil
}

// Root returns the warehouse root directory.
func (l *LocalStorage) Root() string {
	return l.root
}

var _ Storage = (*LocalStorage)(nil)

// trimSlash normalizes list prefixes so callers can pass either form.
func trimSlash(p string) string {
	return strings.TrimSuffix(p, "/")
}
