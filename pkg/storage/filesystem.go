package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
)

// LocalStorage reads material files from a base directory on disk. Files are
// put there by the upload pipeline; this module only serves them.
type LocalStorage struct {
	baseDir string
}

// NewLocalStorage ensures the base directory exists and returns a handle.
func NewLocalStorage(baseDir string) (*LocalStorage, error) {
	if baseDir == "" {
		baseDir = "./materials"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create materials directory: %w", err)
	}
	return &LocalStorage{baseDir: baseDir}, nil
}

// Exists reports whether the file is present in storage.
func (s *LocalStorage) Exists(filename string) bool {
	info, err := os.Stat(s.resolve(filename))
	return err == nil && !info.IsDir()
}

// Open returns a read-only handle for the stored file and its size.
func (s *LocalStorage) Open(filename string) (io.ReadCloser, int64, error) {
	file, err := os.Open(s.resolve(filename))
	if err != nil {
		return nil, 0, fmt.Errorf("open material file: %w", err)
	}
	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, 0, fmt.Errorf("stat material file: %w", err)
	}
	return file, info.Size(), nil
}

// ListMatching returns the names of files directly under dir whose base name
// matches the pattern, sorted. A missing directory yields an empty list.
func (s *LocalStorage) ListMatching(dir string, pattern *regexp.Regexp) ([]string, error) {
	entries, err := os.ReadDir(s.resolve(dir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read materials directory: %w", err)
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if pattern.MatchString(entry.Name()) {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

func (s *LocalStorage) resolve(filename string) string {
	if filepath.IsAbs(filename) {
		return filename
	}
	return filepath.Join(s.baseDir, filename)
}
